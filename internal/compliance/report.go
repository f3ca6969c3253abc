package compliance

import "time"

// DocumentSummary carries the document-stage booleans the report and the
// risk reasons are derived from.
type DocumentSummary struct {
	Age               int
	DocumentValid     bool
	TamperingDetected bool
	CDDCompleted      bool
}

// BiometricSummary carries the biometric-stage outcome.
type BiometricSummary struct {
	LivenessPassed  bool
	SimilarityScore float64
}

// GDPRSection reports the GDPR posture. Encryption, consent, and human
// review labels are fixed statements about the deployment, not computed.
type GDPRSection struct {
	DataMinimization         string `json:"data_minimization"`
	Encryption               string `json:"encryption"`
	Consent                  string `json:"consent"`
	Article22RightToHumanRev string `json:"article_22_right_to_human_review"`
}

// AMLSection reports 6th AML Directive checks.
type AMLSection struct {
	CDDCompleted  string `json:"cdd_completed"`
	AgeVerified   string `json:"age_verified"`
	DocumentValid string `json:"document_valid"`
}

// DSASection reports the Digital Services Act age gate.
type DSASection struct {
	AgeOver18          bool   `json:"age_over_18"`
	DigitalServicesAct string `json:"digital_services_act"`
}

// Regulation2023Section reports Regulation 2023/1113 integrity checks.
type Regulation2023Section struct {
	TamperingCheck string `json:"tampering_check"`
	LivenessCheck  string `json:"liveness_check"`
}

// Report is the composite compliance report attached to the final decision.
type Report struct {
	Timestamp          string                `json:"timestamp"`
	GDPR               GDPRSection           `json:"gdpr"`
	AML                AMLSection            `json:"aml"`
	DSA                DSASection            `json:"dsa"`
	Regulation20231113 Regulation2023Section `json:"regulation_2023_1113"`
}

// BuildReport relabels the already-computed stage booleans into the
// categorical report format. No new decision logic lives here.
func BuildReport(doc DocumentSummary, bio BiometricSummary, now time.Time) Report {
	adult := doc.Age >= MinimumAge

	return Report{
		Timestamp: now.Format(time.RFC3339),
		GDPR: GDPRSection{
			DataMinimization:         "PASS",
			Encryption:               "AES-256 + TLS 1.3",
			Consent:                  "OBTAINED",
			Article22RightToHumanRev: "AVAILABLE",
		},
		AML: AMLSection{
			CDDCompleted:  passFail(doc.CDDCompleted),
			AgeVerified:   passFail(adult),
			DocumentValid: passFail(doc.DocumentValid),
		},
		DSA: DSASection{
			AgeOver18:          adult,
			DigitalServicesAct: compliant(adult),
		},
		Regulation20231113: Regulation2023Section{
			TamperingCheck: passFail(!doc.TamperingDetected),
			LivenessCheck:  passFail(bio.LivenessPassed),
		},
	}
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

func compliant(ok bool) string {
	if ok {
		return "COMPLIANT"
	}
	return "NON_COMPLIANT"
}
