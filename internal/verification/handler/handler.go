package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"verigate/internal/audit"
	"verigate/internal/verification"
	"verigate/pkg/platform/httputil"
	"verigate/pkg/requestcontext"
)

// Service defines the orchestration operations the HTTP layer exposes.
type Service interface {
	CreateAndExtract(ctx context.Context, image []byte, documentType string) (*verification.DocumentStageResult, error)
	SubmitBiometric(ctx context.Context, sessionID string, sample []byte) (*verification.BiometricStageResult, error)
	AssessRisk(ctx context.Context, sessionID string) (*verification.RiskAssessmentResult, error)
	GetSession(ctx context.Context, sessionID string) (verification.Session, error)
	ListAuditEntries(ctx context.Context) ([]audit.Entry, error)
}

// Handler wires verification endpoints to the orchestrator. It delegates to
// the service without embedding business logic so transport concerns remain
// isolated.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a verification handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts verification endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/verifications", h.HandleCreate)
	r.Post("/v1/verifications/{id}/biometric", h.HandleBiometric)
	r.Post("/v1/verifications/{id}/risk-assessment", h.HandleRiskAssessment)
	r.Get("/v1/verifications/{id}", h.HandleGet)
	r.Get("/v1/audit-log", h.HandleAuditLog)
}

// HandleCreate handles POST /v1/verifications.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[CreateVerificationRequest](w, r)
	if !ok {
		return
	}
	image, err := req.validate()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.CreateAndExtract(ctx, image, req.DocumentType)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, CreateVerificationResponse{
		VerificationID: result.SessionID,
		Status:         result.Status,
		ExtractedData:  result.ExtractedFields,
		Confidence:     result.Confidence,
		Compliance:     result.Compliance,
	})
}

// HandleBiometric handles POST /v1/verifications/{id}/biometric.
func (h *Handler) HandleBiometric(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "id")

	req, ok := httputil.Decode[SubmitBiometricRequest](w, r)
	if !ok {
		return
	}
	sample, err := req.validate()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.SubmitBiometric(ctx, sessionID, sample)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, SubmitBiometricResponse{
		VerificationID:  result.SessionID,
		Status:          result.Status,
		SimilarityScore: result.SimilarityScore,
		LivenessPassed:  result.LivenessPassed,
		LivenessDetails: result.LivenessChecks,
	})
}

// HandleRiskAssessment handles POST /v1/verifications/{id}/risk-assessment.
func (h *Handler) HandleRiskAssessment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "id")
	start := time.Now()

	result, err := h.service.AssessRisk(ctx, sessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "risk assessment served",
		"request_id", requestcontext.RequestID(ctx),
		"session_id", sessionID,
		"decision", result.Decision,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, RiskAssessmentResponse{
		VerificationID:   result.SessionID,
		Decision:         string(result.Decision),
		OverallRiskScore: result.Scores.Overall,
		DocumentRisk:     result.Scores.Document,
		BiometricRisk:    result.Scores.Biometric,
		BehavioralRisk:   result.Scores.Behavioral,
		ComplianceReport: result.Report,
		Reasons:          result.Reasons,
	})
}

// HandleGet handles GET /v1/verifications/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := chi.URLParam(r, "id")

	session, err := h.service.GetSession(ctx, sessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, SessionResponse{
		VerificationID: session.ID,
		Stage:          string(session.Stage),
		Decision:       string(session.Decision),
		ExtractedData:  session.DocumentFields,
		CreatedAt:      session.CreatedAt.Format(time.RFC3339),
	})
}

// HandleAuditLog handles GET /v1/audit-log.
func (h *Handler) HandleAuditLog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListAuditEntries(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	httputil.WriteJSON(w, http.StatusOK, AuditLogResponse{Entries: entries})
}
