// Package risk implements the scoring functions that combine calibrated risk
// factors into component and overall risk scores and the final decision
// label.
//
// This is pure domain logic - no I/O, no side effects. All scores are
// bounded in [0,1], rounded to 3 decimal places, lower is safer.
package risk

import "verigate/internal/compliance"

// Decision is the terminal output of risk aggregation.
type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionReview   Decision = "REVIEW"
	DecisionRejected Decision = "REJECTED"
)

// Decision thresholds. Part of the wire contract; boundary values belong to
// the upper bucket (strict less-than).
const (
	ApproveThreshold = 0.30
	ReviewThreshold  = 0.60
)

// Document risk factor weights.
const (
	weightTampering = 0.4
	weightValidity  = 0.3
	weightAge       = 0.2
	weightCountry   = 0.1
)

// Biometric risk factor weights. A failed liveness check contributes a 0.8
// risk at 0.6 weight; the face-match factor is the inverted similarity.
const (
	weightLiveness   = 0.6
	weightFaceMatch  = 0.4
	livenessFailRisk = 0.8
)

// Behavioral risk factor weights. First-time subjects carry a small fixed
// risk for being unknown.
const (
	weightFirstTime = 0.5
	weightVelocity  = 0.3
	weightDevice    = 0.2
	firstTimeRisk   = 0.2
)

// Scores aggregates the component and overall risk scores for a session.
type Scores struct {
	Document   float64 `json:"document"`
	Biometric  float64 `json:"biometric"`
	Behavioral float64 `json:"behavioral"`
	Overall    float64 `json:"overall"`
}

// DocumentRisk scores the document stage from tampering suspicion, expiry
// validity, age verification, and country risk.
func DocumentRisk(tamperingScore float64, documentValid, ageVerified bool, countryRisk float64) float64 {
	validityRisk := 0.0
	if !documentValid {
		validityRisk = 1.0
	}
	ageRisk := 0.0
	if !ageVerified {
		ageRisk = 1.0
	}

	return compliance.Round3(
		tamperingScore*weightTampering +
			validityRisk*weightValidity +
			ageRisk*weightAge +
			countryRisk*weightCountry,
	)
}

// BiometricRisk scores the biometric stage from liveness and face-match
// similarity.
func BiometricRisk(livenessPassed bool, faceMatchScore float64) float64 {
	livenessRisk := livenessFailRisk
	if livenessPassed {
		livenessRisk = 0.0
	}
	faceRisk := 1.0 - faceMatchScore

	return compliance.Round3(livenessRisk*weightLiveness + faceRisk*weightFaceMatch)
}

// BehavioralRisk scores the behavioral signals: whether the subject is new,
// how many recent verification attempts they made, and device risk.
func BehavioralRisk(firstVerification bool, velocityCheck, deviceRisk float64) float64 {
	firstRisk := 0.0
	if firstVerification {
		firstRisk = firstTimeRisk
	}

	return compliance.Round3(firstRisk*weightFirstTime + velocityCheck*weightVelocity + deviceRisk*weightDevice)
}

// OverallRisk is the unweighted mean of the three component scores.
func OverallRisk(documentRisk, biometricRisk, behavioralRisk float64) float64 {
	return compliance.Round3((documentRisk + biometricRisk + behavioralRisk) / 3)
}

// Decide maps an overall risk score to the decision label.
func Decide(overallRisk float64) Decision {
	switch {
	case overallRisk < ApproveThreshold:
		return DecisionApproved
	case overallRisk < ReviewThreshold:
		return DecisionReview
	default:
		return DecisionRejected
	}
}
