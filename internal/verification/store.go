package verification

import (
	"context"

	"verigate/internal/risk"
	"verigate/pkg/platform/sentinel"
)

// Store-level errors. Services translate these into coded domain errors.
var (
	ErrNotFound          = sentinel.ErrNotFound
	ErrInvalidTransition = sentinel.ErrInvalidTransition
)

// SessionStore is the keyed registry of verification sessions. Each Apply*
// call is atomic with respect to other calls on the same session id and
// rejects writes whose stage preconditions are unmet, so the stage order and
// the write-once fields cannot be violated by callers.
type SessionStore interface {
	// Create registers a new session at stage CREATED and returns it.
	Create(ctx context.Context) (Session, error)

	// Get returns a copy of the session or ErrNotFound.
	Get(ctx context.Context, id string) (Session, error)

	// ApplyDocumentStage records the extracted fields and document-stage
	// compliance results, advancing CREATED -> DOCUMENT_DONE. Only
	// allow-listed field keys are persisted.
	ApplyDocumentStage(ctx context.Context, id string, fields map[string]string, comp DocumentCompliance) (Session, error)

	// ApplyBiometricStage records the biometric outcome, advancing
	// DOCUMENT_DONE -> BIOMETRIC_DONE.
	ApplyBiometricStage(ctx context.Context, id string, result BiometricResult) (Session, error)

	// ApplyDecision records the risk scores and decision, advancing
	// BIOMETRIC_DONE -> DECIDED. The decision is write-once.
	ApplyDecision(ctx context.Context, id string, scores risk.Scores, decision risk.Decision) (Session, error)
}
