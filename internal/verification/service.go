package verification

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"verigate/internal/analyzer"
	"verigate/internal/audit"
	"verigate/internal/compliance"
	"verigate/internal/risk"
	"verigate/internal/velocity"
	"verigate/internal/verification/metrics"
	dErrors "verigate/pkg/domain-errors"
	"verigate/pkg/requestcontext"
)

// faceConfidenceThreshold is the similarity above which the biometric stage
// reports VERIFIED.
const faceConfidenceThreshold = 0.85

// defaultCountryRisk is the country risk factor. There is no country risk
// feed; every document carries the same baseline.
const defaultCountryRisk = 0.1

// Metric stage labels.
const (
	stageLabelDocument  = "document"
	stageLabelBiometric = "biometric"
	stageLabelRisk      = "risk"
)

// Service orchestrates the three verification stages: document intake,
// biometric check, and risk aggregation. It owns no business rules itself -
// scoring lives in internal/risk and rule evaluation in internal/compliance.
type Service struct {
	store      SessionStore
	documents  analyzer.DocumentAnalyzer
	biometrics analyzer.BiometricAnalyzer
	audit      *audit.Service
	velocity   *velocity.Service
	logger     *slog.Logger
	metrics    *metrics.Metrics
	deviceRisk float64
}

// NewService constructs the orchestrator with its collaborators.
func NewService(
	store SessionStore,
	documents analyzer.DocumentAnalyzer,
	biometrics analyzer.BiometricAnalyzer,
	auditSvc *audit.Service,
	velocitySvc *velocity.Service,
	logger *slog.Logger,
	m *metrics.Metrics,
	deviceRisk float64,
) *Service {
	return &Service{
		store:      store,
		documents:  documents,
		biometrics: biometrics,
		audit:      auditSvc,
		velocity:   velocitySvc,
		logger:     logger,
		metrics:    m,
		deviceRisk: deviceRisk,
	}
}

// ComplianceSummary is the document-stage compliance view returned to the
// caller.
type ComplianceSummary struct {
	AgeVerification   compliance.AgeCheck `json:"age_verification"`
	DocumentValid     bool                `json:"document_valid"`
	TamperingDetected bool                `json:"tampering_detected"`
	DataMinimization  bool                `json:"data_minimization"`
	DocumentRiskScore float64             `json:"document_risk_score"`
}

// DocumentStageResult is the outcome of document intake.
type DocumentStageResult struct {
	SessionID       string
	Status          string
	ExtractedFields map[string]string
	Confidence      float64
	Compliance      ComplianceSummary
}

// BiometricStageResult is the outcome of the biometric stage.
type BiometricStageResult struct {
	SessionID       string
	Status          string
	SimilarityScore float64
	LivenessPassed  bool
	LivenessChecks  analyzer.LivenessChecks
}

// RiskAssessmentResult is the terminal decision payload.
type RiskAssessmentResult struct {
	SessionID string
	Decision  risk.Decision
	Scores    risk.Scores
	Report    compliance.Report
	Reasons   []string
}

// CreateAndExtract runs the document stage: extract identity fields, run the
// document compliance checks, create the session, and persist the minimized
// fields. The session is only created once extraction succeeded.
func (s *Service) CreateAndExtract(ctx context.Context, image []byte, documentType string) (*DocumentStageResult, error) {
	start := time.Now()
	now := requestcontext.Now(ctx)

	fields, confidence, err := s.documents.Extract(ctx, image, documentType)
	if err != nil {
		return nil, s.collaboratorFailure(ctx, stageLabelDocument, "document analysis failed", err)
	}
	sharpness, err := s.documents.MeasureSharpness(image)
	if err != nil {
		return nil, s.collaboratorFailure(ctx, stageLabelDocument, "sharpness measurement failed", err)
	}

	comp := DocumentCompliance{
		Age:          compliance.CheckAge(fields["dob"], now),
		Validity:     compliance.CheckDocumentValidity(fields["expiry"], now),
		Tampering:    compliance.DetectTampering(sharpness),
		Minimization: compliance.DataMinimization(fields),
		CDD:          compliance.CustomerDueDiligence(fields),
		Confidence:   confidence,
	}

	session, err := s.store.Create(ctx)
	if err != nil {
		return nil, s.internalFailure(ctx, stageLabelDocument, "create session", err)
	}
	session, err = s.store.ApplyDocumentStage(ctx, session.ID, fields, comp)
	if err != nil {
		return nil, s.internalFailure(ctx, stageLabelDocument, "apply document stage", err)
	}

	// Velocity is a behavioral signal, not a gate: failure to record an
	// attempt must not fail the stage.
	subject := session.DocumentFields["document_id"]
	if err := s.velocity.RecordAttempt(ctx, subject); err != nil {
		s.logger.WarnContext(ctx, "velocity record failed",
			"request_id", requestcontext.RequestID(ctx),
			"session_id", session.ID,
			"error", err,
		)
	}

	if err := s.audit.Record(ctx, audit.Entry{
		SessionID: session.ID,
		Stage:     audit.StageDocumentExtraction,
		Outcome:   "success",
		Payload:   map[string]any{"country": session.DocumentFields["country"]},
	}); err != nil {
		return nil, s.internalFailure(ctx, stageLabelDocument, "audit append", err)
	}

	s.metrics.IncrementSessionsCreated()
	s.metrics.ObserveStageLatency(stageLabelDocument, time.Since(start))
	s.logger.InfoContext(ctx, "document stage completed",
		"request_id", requestcontext.RequestID(ctx),
		"session_id", session.ID,
		"document_type", documentType,
		"tampering_detected", comp.Tampering.Detected,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &DocumentStageResult{
		SessionID:       session.ID,
		Status:          "SUCCESS",
		ExtractedFields: session.DocumentFields,
		Confidence:      confidence,
		Compliance: ComplianceSummary{
			AgeVerification:   comp.Age,
			DocumentValid:     comp.Validity.Valid,
			TamperingDetected: comp.Tampering.Detected,
			DataMinimization:  comp.Minimization.Passed,
			DocumentRiskScore: comp.Tampering.Score,
		},
	}, nil
}

// SubmitBiometric runs the biometric stage: liveness detection and face
// comparison, in parallel, then records the outcome on the session.
func (s *Service) SubmitBiometric(ctx context.Context, sessionID string, sample []byte) (*BiometricStageResult, error) {
	start := time.Now()

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, s.translateStoreErr(stageLabelBiometric, err)
	}
	// Check the stage before spending collaborator calls. The store
	// re-checks under its per-session lock.
	if session.Stage != StageDocumentDone {
		s.metrics.IncrementStageFailure(stageLabelBiometric, string(dErrors.CodeInvalidTransition))
		return nil, dErrors.New(dErrors.CodeInvalidTransition, "biometric submission requires a completed document stage")
	}

	var liveness analyzer.LivenessResult
	var similarity float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		liveness, err = s.biometrics.CheckLiveness(gctx, sample)
		return err
	})
	g.Go(func() error {
		var err error
		similarity, err = s.biometrics.CompareFaces(gctx, sample, sample)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.collaboratorFailure(ctx, stageLabelBiometric, "biometric analysis failed", err)
	}

	status := "REJECTED"
	if similarity > faceConfidenceThreshold && liveness.Passed {
		status = "VERIFIED"
	}

	session, err = s.store.ApplyBiometricStage(ctx, sessionID, BiometricResult{
		Status:          status,
		SimilarityScore: similarity,
		LivenessPassed:  liveness.Passed,
		LivenessChecks:  liveness.Checks,
	})
	if err != nil {
		return nil, s.translateStoreErr(stageLabelBiometric, err)
	}

	if err := s.audit.Record(ctx, audit.Entry{
		SessionID: sessionID,
		Stage:     audit.StageFaceVerification,
		Outcome:   strings.ToLower(status),
	}); err != nil {
		return nil, s.internalFailure(ctx, stageLabelBiometric, "audit append", err)
	}

	s.metrics.ObserveStageLatency(stageLabelBiometric, time.Since(start))
	s.logger.InfoContext(ctx, "biometric stage completed",
		"request_id", requestcontext.RequestID(ctx),
		"session_id", sessionID,
		"status", status,
		"liveness_passed", liveness.Passed,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &BiometricStageResult{
		SessionID:       sessionID,
		Status:          status,
		SimilarityScore: similarity,
		LivenessPassed:  liveness.Passed,
		LivenessChecks:  liveness.Checks,
	}, nil
}

// AssessRisk runs the terminal stage: compute the risk scores, decide, build
// the compliance report, and record the decision. Once a session is DECIDED
// the stored decision is replayed, never recomputed.
func (s *Service) AssessRisk(ctx context.Context, sessionID string) (*RiskAssessmentResult, error) {
	start := time.Now()
	now := requestcontext.Now(ctx)

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, s.translateStoreErr(stageLabelRisk, err)
	}

	switch session.Stage {
	case StageDecided:
		return s.replayDecision(session, now), nil
	case StageBiometricDone:
		// proceed
	default:
		s.metrics.IncrementStageFailure(stageLabelRisk, string(dErrors.CodeInvalidTransition))
		return nil, dErrors.New(dErrors.CodeInvalidTransition, "risk assessment requires a completed biometric stage")
	}

	signals := s.behavioralSignals(ctx, session)

	docRisk := risk.DocumentRisk(
		session.DocumentCompliance.Tampering.Score,
		session.DocumentCompliance.Validity.Valid,
		session.DocumentCompliance.Age.IsAdult,
		defaultCountryRisk,
	)
	bioRisk := risk.BiometricRisk(session.BiometricResult.LivenessPassed, session.BiometricResult.SimilarityScore)
	behavioralRisk := risk.BehavioralRisk(signals.FirstVerification, signals.VelocityCheck, s.deviceRisk)
	overall := risk.OverallRisk(docRisk, bioRisk, behavioralRisk)
	decision := risk.Decide(overall)

	scores := risk.Scores{
		Document:   docRisk,
		Biometric:  bioRisk,
		Behavioral: behavioralRisk,
		Overall:    overall,
	}

	session, err = s.store.ApplyDecision(ctx, sessionID, scores, decision)
	if err != nil {
		// A concurrent assessment may have decided first; serve its result.
		if errors.Is(err, ErrInvalidTransition) {
			if decided, getErr := s.store.Get(ctx, sessionID); getErr == nil && decided.Stage == StageDecided {
				return s.replayDecision(decided, now), nil
			}
		}
		return nil, s.translateStoreErr(stageLabelRisk, err)
	}

	report := compliance.BuildReport(session.DocumentSummary(), session.BiometricSummary(), now)
	reasons := risk.Reasons(decision, session.DocumentSummary(), session.BiometricSummary(), scores)

	if err := s.audit.Record(ctx, audit.Entry{
		SessionID: sessionID,
		Stage:     audit.StageRiskAssessment,
		Outcome:   strings.ToLower(string(decision)),
		Payload: map[string]any{
			"decision":          string(decision),
			"risk_score":        overall,
			"compliance_checks": report,
			"country":           session.DocumentFields["country"],
		},
	}); err != nil {
		return nil, s.internalFailure(ctx, stageLabelRisk, "audit append", err)
	}

	s.metrics.IncrementDecision(string(decision))
	s.metrics.ObserveStageLatency(stageLabelRisk, time.Since(start))
	s.logger.InfoContext(ctx, "risk assessment completed",
		"request_id", requestcontext.RequestID(ctx),
		"session_id", sessionID,
		"decision", decision,
		"overall_risk", overall,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &RiskAssessmentResult{
		SessionID: sessionID,
		Decision:  decision,
		Scores:    scores,
		Report:    report,
		Reasons:   reasons,
	}, nil
}

// GetSession returns a read-only view of a session.
func (s *Service) GetSession(ctx context.Context, sessionID string) (Session, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, dErrors.New(dErrors.CodeNotFound, "unknown session id")
		}
		return Session{}, dErrors.New(dErrors.CodeInternal, err.Error())
	}
	return session, nil
}

// ListAuditEntries returns the full audit trail in insertion order.
func (s *Service) ListAuditEntries(ctx context.Context) ([]audit.Entry, error) {
	entries, err := s.audit.List(ctx)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInternal, err.Error())
	}
	return entries, nil
}

// replayDecision rebuilds the terminal payload from stored state. Scores and
// decision come from the write-once fields; reasons are deterministic given
// the same stored inputs.
func (s *Service) replayDecision(session Session, now time.Time) *RiskAssessmentResult {
	scores := *session.RiskScores
	return &RiskAssessmentResult{
		SessionID: session.ID,
		Decision:  session.Decision,
		Scores:    scores,
		Report:    compliance.BuildReport(session.DocumentSummary(), session.BiometricSummary(), now),
		Reasons:   risk.Reasons(session.Decision, session.DocumentSummary(), session.BiometricSummary(), scores),
	}
}

// behavioralSignals reads the velocity signals, degrading to first-attempt
// defaults when the store is unavailable.
func (s *Service) behavioralSignals(ctx context.Context, session Session) velocity.Signals {
	subject := session.DocumentFields["document_id"]
	signals, err := s.velocity.Signals(ctx, subject)
	if err != nil {
		s.logger.WarnContext(ctx, "velocity lookup failed, using defaults",
			"request_id", requestcontext.RequestID(ctx),
			"session_id", session.ID,
			"error", err,
		)
		return velocity.Signals{FirstVerification: true}
	}
	return signals
}

func (s *Service) collaboratorFailure(ctx context.Context, stage, msg string, err error) error {
	s.metrics.IncrementStageFailure(stage, string(dErrors.CodeCollaborator))
	s.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"stage", stage,
		"error", err,
	)
	return dErrors.New(dErrors.CodeCollaborator, msg)
}

func (s *Service) internalFailure(ctx context.Context, stage, op string, err error) error {
	s.metrics.IncrementStageFailure(stage, string(dErrors.CodeInternal))
	s.logger.ErrorContext(ctx, op+" failed",
		"request_id", requestcontext.RequestID(ctx),
		"stage", stage,
		"error", err,
	)
	return dErrors.New(dErrors.CodeInternal, op+" failed")
}

func (s *Service) translateStoreErr(stage string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		s.metrics.IncrementStageFailure(stage, string(dErrors.CodeNotFound))
		return dErrors.New(dErrors.CodeNotFound, "unknown session id")
	case errors.Is(err, ErrInvalidTransition):
		s.metrics.IncrementStageFailure(stage, string(dErrors.CodeInvalidTransition))
		return dErrors.New(dErrors.CodeInvalidTransition, "session stage does not allow this operation")
	default:
		s.metrics.IncrementStageFailure(stage, string(dErrors.CodeInternal))
		return dErrors.New(dErrors.CodeInternal, err.Error())
	}
}
