package audit

import "time"

// Stage names recorded in the audit trail. One terminal event per pipeline
// stage; internal transient failures are not recorded.
const (
	StageDocumentExtraction = "document_extraction"
	StageFaceVerification   = "face_verification"
	StageRiskAssessment     = "risk_assessment"
)

// Entry is an append-only audit record. Entries are never mutated or removed
// after creation; ordering is insertion order.
type Entry struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	Stage     string         `json:"stage"`
	Outcome   string         `json:"outcome"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}
