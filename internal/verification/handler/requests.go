package handler

import (
	"encoding/base64"

	"verigate/internal/analyzer"
	"verigate/internal/audit"
	"verigate/internal/verification"
	dErrors "verigate/pkg/domain-errors"
)

// documentTypes accepted at intake.
var documentTypes = map[string]bool{
	"Passport":         true,
	"National ID Card": true,
	"Driver License":   true,
}

// CreateVerificationRequest starts a session: document image (base64) plus
// the declared document type.
type CreateVerificationRequest struct {
	DocumentImage string `json:"document_image"`
	DocumentType  string `json:"document_type"`
}

func (r CreateVerificationRequest) validate() ([]byte, error) {
	if !documentTypes[r.DocumentType] {
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown document_type")
	}
	if r.DocumentImage == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "document_image is required")
	}
	image, err := base64.StdEncoding.DecodeString(r.DocumentImage)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "document_image is not valid base64")
	}
	return image, nil
}

// SubmitBiometricRequest carries the selfie sample for an existing session.
type SubmitBiometricRequest struct {
	Selfie string `json:"selfie"`
}

func (r SubmitBiometricRequest) validate() ([]byte, error) {
	if r.Selfie == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "selfie is required")
	}
	sample, err := base64.StdEncoding.DecodeString(r.Selfie)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "selfie is not valid base64")
	}
	return sample, nil
}

// CreateVerificationResponse mirrors DocumentStageResult on the wire.
type CreateVerificationResponse struct {
	VerificationID string                         `json:"verification_id"`
	Status         string                         `json:"status"`
	ExtractedData  map[string]string              `json:"extracted_data"`
	Confidence     float64                        `json:"confidence"`
	Compliance     verification.ComplianceSummary `json:"compliance"`
}

// SubmitBiometricResponse mirrors BiometricStageResult on the wire.
type SubmitBiometricResponse struct {
	VerificationID  string                  `json:"verification_id"`
	Status          string                  `json:"status"`
	SimilarityScore float64                 `json:"similarity_score"`
	LivenessPassed  bool                    `json:"liveness_passed"`
	LivenessDetails analyzer.LivenessChecks `json:"liveness_details"`
}

// RiskAssessmentResponse mirrors RiskAssessmentResult on the wire.
type RiskAssessmentResponse struct {
	VerificationID   string   `json:"verification_id"`
	Decision         string   `json:"decision"`
	OverallRiskScore float64  `json:"overall_risk_score"`
	DocumentRisk     float64  `json:"document_risk"`
	BiometricRisk    float64  `json:"biometric_risk"`
	BehavioralRisk   float64  `json:"behavioral_risk"`
	ComplianceReport any      `json:"compliance_report"`
	Reasons          []string `json:"reasons"`
}

// SessionResponse is the read-only session view.
type SessionResponse struct {
	VerificationID string            `json:"verification_id"`
	Stage          string            `json:"stage"`
	Decision       string            `json:"decision,omitempty"`
	ExtractedData  map[string]string `json:"extracted_data,omitempty"`
	CreatedAt      string            `json:"created_at"`
}

// AuditLogResponse wraps the ordered audit trail.
type AuditLogResponse struct {
	Entries []audit.Entry `json:"entries"`
}
