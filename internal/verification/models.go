// Package verification holds the verification-session domain: the session
// state machine, the session store contract, and the orchestrator that
// drives the three pipeline stages.
package verification

import (
	"time"

	"verigate/internal/analyzer"
	"verigate/internal/compliance"
	"verigate/internal/risk"
)

// Stage is the session lifecycle position. Stages only ever advance, in the
// order they are declared here.
type Stage string

const (
	StageCreated       Stage = "CREATED"
	StageDocumentDone  Stage = "DOCUMENT_DONE"
	StageBiometricDone Stage = "BIOMETRIC_DONE"
	StageDecided       Stage = "DECIDED"
)

// ordinal gives stages their total order for transition checks.
func (s Stage) ordinal() int {
	switch s {
	case StageCreated:
		return 0
	case StageDocumentDone:
		return 1
	case StageBiometricDone:
		return 2
	case StageDecided:
		return 3
	default:
		return -1
	}
}

// DocumentCompliance bundles the document-stage check results stored with
// the extracted fields.
type DocumentCompliance struct {
	Age          compliance.AgeCheck
	Validity     compliance.ValidityCheck
	Tampering    compliance.TamperingCheck
	Minimization compliance.MinimizationResult
	CDD          compliance.CDDResult
	Confidence   float64
}

// BiometricResult is the biometric-stage outcome stored on the session.
type BiometricResult struct {
	Status          string
	SimilarityScore float64
	LivenessPassed  bool
	LivenessChecks  analyzer.LivenessChecks
}

// Session is the central entity, one per verification attempt. Stage-scoped
// fields are write-once: DocumentFields and DocumentCompliance at
// DOCUMENT_DONE, BiometricResult at BIOMETRIC_DONE, RiskScores and Decision
// at DECIDED.
type Session struct {
	ID                 string
	Stage              Stage
	DocumentFields     map[string]string
	DocumentCompliance DocumentCompliance
	BiometricResult    *BiometricResult
	RiskScores         *risk.Scores
	Decision           risk.Decision
	CreatedAt          time.Time
}

// DocumentSummary projects the stored compliance results into the shape the
// risk reasons and the report builder consume.
func (s *Session) DocumentSummary() compliance.DocumentSummary {
	return compliance.DocumentSummary{
		Age:               s.DocumentCompliance.Age.Age,
		DocumentValid:     s.DocumentCompliance.Validity.Valid,
		TamperingDetected: s.DocumentCompliance.Tampering.Detected,
		CDDCompleted:      s.DocumentCompliance.CDD.Completed,
	}
}

// BiometricSummary projects the stored biometric result.
func (s *Session) BiometricSummary() compliance.BiometricSummary {
	if s.BiometricResult == nil {
		return compliance.BiometricSummary{}
	}
	return compliance.BiometricSummary{
		LivenessPassed:  s.BiometricResult.LivenessPassed,
		SimilarityScore: s.BiometricResult.SimilarityScore,
	}
}
