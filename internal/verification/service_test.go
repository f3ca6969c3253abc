package verification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"verigate/internal/analyzer"
	"verigate/internal/audit"
	"verigate/internal/velocity"
	dErrors "verigate/pkg/domain-errors"
	"verigate/pkg/requestcontext"
)

var evalTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type stubDocumentAnalyzer struct {
	fields       map[string]string
	confidence   float64
	sharpness    float64
	extractErr   error
	sharpnessErr error
}

func (a *stubDocumentAnalyzer) Extract(_ context.Context, _ []byte, docType string) (map[string]string, float64, error) {
	if a.extractErr != nil {
		return nil, 0, a.extractErr
	}
	fields := make(map[string]string, len(a.fields)+1)
	for k, v := range a.fields {
		fields[k] = v
	}
	fields["document_type"] = docType
	return fields, a.confidence, nil
}

func (a *stubDocumentAnalyzer) MeasureSharpness(_ []byte) (float64, error) {
	if a.sharpnessErr != nil {
		return 0, a.sharpnessErr
	}
	return a.sharpness, nil
}

type stubBiometricAnalyzer struct {
	liveness    analyzer.LivenessResult
	similarity  float64
	livenessErr error
	compareErr  error
}

func (a *stubBiometricAnalyzer) CheckLiveness(_ context.Context, _ []byte) (analyzer.LivenessResult, error) {
	if a.livenessErr != nil {
		return analyzer.LivenessResult{}, a.livenessErr
	}
	return a.liveness, nil
}

func (a *stubBiometricAnalyzer) CompareFaces(_ context.Context, _, _ []byte) (float64, error) {
	if a.compareErr != nil {
		return 0, a.compareErr
	}
	return a.similarity, nil
}

type ServiceSuite struct {
	suite.Suite
	ctx        context.Context
	store      *InMemorySessionStore
	auditStore *audit.InMemoryStore
	documents  *stubDocumentAnalyzer
	biometrics *stubBiometricAnalyzer
	service    *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), evalTime)
	s.store = NewInMemorySessionStore()
	s.auditStore = audit.NewInMemoryStore()
	s.documents = &stubDocumentAnalyzer{
		fields: map[string]string{
			"name":        "John Doe",
			"dob":         "1990-01-15",
			"document_id": "AB1234567",
			"country":     "DE",
			"expiry":      "2030-12-31",
		},
		confidence: 0.95,
		sharpness:  1200, // sharp capture, tampering score 0
	}
	s.biometrics = &stubBiometricAnalyzer{
		liveness: analyzer.LivenessResult{
			Passed:     true,
			Confidence: 0.92,
			Checks:     analyzer.LivenessChecks{FaceDetected: true, BlinkDetected: true, HeadMovement: true, TextureAnalysis: true},
		},
		similarity: 0.9,
	}
	s.service = NewService(
		s.store,
		s.documents,
		s.biometrics,
		audit.NewService(s.auditStore),
		velocity.NewService(velocity.NewInMemoryStore(), time.Hour, 5),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		nil, // metrics are nil-safe
		0.1,
	)
}

func (s *ServiceSuite) errCode(err error) dErrors.Code {
	var de *dErrors.Error
	s.Require().ErrorAs(err, &de)
	return de.Code
}

func (s *ServiceSuite) runDocumentStage() *DocumentStageResult {
	result, err := s.service.CreateAndExtract(s.ctx, []byte("doc-image"), "Passport")
	s.Require().NoError(err)
	return result
}

func (s *ServiceSuite) TestDocumentStage() {
	result := s.runDocumentStage()

	s.NotEmpty(result.SessionID)
	s.Equal("SUCCESS", result.Status)
	s.Equal(0.95, result.Confidence)
	s.Equal("John Doe", result.ExtractedFields["name"])
	s.Equal("Passport", result.ExtractedFields["document_type"])
	s.True(result.Compliance.AgeVerification.IsAdult)
	s.Equal(34, result.Compliance.AgeVerification.Age)
	s.True(result.Compliance.DocumentValid)
	s.False(result.Compliance.TamperingDetected)
	s.True(result.Compliance.DataMinimization)
	s.Zero(result.Compliance.DocumentRiskScore)

	session, err := s.service.GetSession(s.ctx, result.SessionID)
	s.Require().NoError(err)
	s.Equal(StageDocumentDone, session.Stage)
}

func (s *ServiceSuite) TestDocumentStageStripsExtraFields() {
	s.documents.fields["ssn"] = "123-45-6789"

	result := s.runDocumentStage()
	s.NotContains(result.ExtractedFields, "ssn")
	s.False(result.Compliance.DataMinimization)

	session, err := s.service.GetSession(s.ctx, result.SessionID)
	s.Require().NoError(err)
	s.NotContains(session.DocumentFields, "ssn")
}

func (s *ServiceSuite) TestDocumentAnalyzerFailure() {
	s.documents.extractErr = errors.New("ocr backend down")

	_, err := s.service.CreateAndExtract(s.ctx, []byte("doc-image"), "Passport")
	s.Equal(dErrors.CodeCollaborator, s.errCode(err))

	entries, listErr := s.auditStore.List(s.ctx)
	s.Require().NoError(listErr)
	s.Empty(entries, "failed stages are not audited")
}

func (s *ServiceSuite) TestBiometricStage() {
	doc := s.runDocumentStage()

	result, err := s.service.SubmitBiometric(s.ctx, doc.SessionID, []byte("selfie"))
	s.Require().NoError(err)
	s.Equal("VERIFIED", result.Status)
	s.Equal(0.9, result.SimilarityScore)
	s.True(result.LivenessPassed)
	s.True(result.LivenessChecks.FaceDetected)

	session, err := s.service.GetSession(s.ctx, doc.SessionID)
	s.Require().NoError(err)
	s.Equal(StageBiometricDone, session.Stage)
}

func (s *ServiceSuite) TestBiometricRejectedOnPoorMatch() {
	doc := s.runDocumentStage()
	s.biometrics.similarity = 0.5

	result, err := s.service.SubmitBiometric(s.ctx, doc.SessionID, []byte("selfie"))
	s.Require().NoError(err)
	s.Equal("REJECTED", result.Status)
}

func (s *ServiceSuite) TestBiometricUnknownSession() {
	_, err := s.service.SubmitBiometric(s.ctx, "no-such-session", []byte("selfie"))
	s.Equal(dErrors.CodeNotFound, s.errCode(err))
}

func (s *ServiceSuite) TestBiometricCannotRepeat() {
	doc := s.runDocumentStage()
	_, err := s.service.SubmitBiometric(s.ctx, doc.SessionID, []byte("selfie"))
	s.Require().NoError(err)

	_, err = s.service.SubmitBiometric(s.ctx, doc.SessionID, []byte("selfie"))
	s.Equal(dErrors.CodeInvalidTransition, s.errCode(err))
}

func (s *ServiceSuite) TestBiometricAnalyzerFailureLeavesStage() {
	doc := s.runDocumentStage()
	s.biometrics.livenessErr = errors.New("liveness model crashed")

	_, err := s.service.SubmitBiometric(s.ctx, doc.SessionID, []byte("selfie"))
	s.Equal(dErrors.CodeCollaborator, s.errCode(err))

	session, getErr := s.service.GetSession(s.ctx, doc.SessionID)
	s.Require().NoError(getErr)
	s.Equal(StageDocumentDone, session.Stage, "failed stage leaves the session where it was")

	// Retry succeeds once the collaborator recovers.
	s.biometrics.livenessErr = nil
	_, err = s.service.SubmitBiometric(s.ctx, doc.SessionID, []byte("selfie"))
	s.NoError(err)
}

func (s *ServiceSuite) TestRiskBeforeBiometric() {
	doc := s.runDocumentStage()

	_, err := s.service.AssessRisk(s.ctx, doc.SessionID)
	s.Equal(dErrors.CodeInvalidTransition, s.errCode(err))
}

func (s *ServiceSuite) TestRiskAssessmentApproves() {
	doc := s.runDocumentStage()
	_, err := s.service.SubmitBiometric(s.ctx, doc.SessionID, []byte("selfie"))
	s.Require().NoError(err)

	result, err := s.service.AssessRisk(s.ctx, doc.SessionID)
	s.Require().NoError(err)

	// documentRisk = 0.4*0 + 0 + 0 + 0.1*0.1 = 0.01
	// biometricRisk = 0 + 0.4*(1-0.9) = 0.04
	// behavioralRisk = 0.5*0.2 + 0 + 0.2*0.1 = 0.12 (first verification)
	s.Equal(0.01, result.Scores.Document)
	s.Equal(0.04, result.Scores.Biometric)
	s.Equal(0.12, result.Scores.Behavioral)
	s.Equal(0.057, result.Scores.Overall)
	s.Equal("APPROVED", string(result.Decision))
	s.Len(result.Reasons, 6)
	s.Equal("PASS", result.Report.AML.AgeVerified)

	session, err := s.service.GetSession(s.ctx, doc.SessionID)
	s.Require().NoError(err)
	s.Equal(StageDecided, session.Stage)
}

func (s *ServiceSuite) TestRiskAssessmentRejects() {
	// Minor, expired document, fully blurred capture, failed biometrics.
	s.documents.fields["dob"] = "2010-01-15"
	s.documents.fields["expiry"] = "2020-01-01"
	s.documents.sharpness = 0
	s.biometrics.liveness.Passed = false
	s.biometrics.similarity = 0.2

	doc := s.runDocumentStage()
	_, err := s.service.SubmitBiometric(s.ctx, doc.SessionID, []byte("selfie"))
	s.Require().NoError(err)

	result, err := s.service.AssessRisk(s.ctx, doc.SessionID)
	s.Require().NoError(err)

	// documentRisk = 0.4 + 0.3 + 0.2 + 0.01 = 0.91
	// biometricRisk = 0.6*0.8 + 0.4*0.8 = 0.8
	// overall = (0.91 + 0.8 + 0.12) / 3 = 0.61
	s.Equal(0.91, result.Scores.Document)
	s.Equal(0.8, result.Scores.Biometric)
	s.Equal(0.61, result.Scores.Overall)
	s.Equal("REJECTED", string(result.Decision))
}

func (s *ServiceSuite) TestRepeatedAssessmentReplaysDecision() {
	doc := s.runDocumentStage()
	_, err := s.service.SubmitBiometric(s.ctx, doc.SessionID, []byte("selfie"))
	s.Require().NoError(err)

	first, err := s.service.AssessRisk(s.ctx, doc.SessionID)
	s.Require().NoError(err)

	// Collaborator inputs changing after the decision must not matter.
	s.biometrics.similarity = 0.1

	second, err := s.service.AssessRisk(s.ctx, doc.SessionID)
	s.Require().NoError(err)
	s.Equal(first.Decision, second.Decision)
	s.Equal(first.Scores, second.Scores)
	s.Equal(first.Reasons, second.Reasons)

	session, err := s.service.GetSession(s.ctx, doc.SessionID)
	s.Require().NoError(err)
	s.Equal(first.Scores, *session.RiskScores)
}

func (s *ServiceSuite) TestVelocityRaisesBehavioralRisk() {
	first := s.runDocumentStage()
	_, err := s.service.SubmitBiometric(s.ctx, first.SessionID, []byte("selfie"))
	s.Require().NoError(err)

	// Same document id again: two attempts in the window.
	second := s.runDocumentStage()
	_, err = s.service.SubmitBiometric(s.ctx, second.SessionID, []byte("selfie"))
	s.Require().NoError(err)

	result, err := s.service.AssessRisk(s.ctx, second.SessionID)
	s.Require().NoError(err)

	// Not a first verification anymore; velocity = (2-1)/5 = 0.2.
	// behavioralRisk = 0 + 0.3*0.2 + 0.2*0.1 = 0.08
	s.Equal(0.08, result.Scores.Behavioral)
}

func (s *ServiceSuite) TestAuditTrail() {
	doc := s.runDocumentStage()
	_, err := s.service.SubmitBiometric(s.ctx, doc.SessionID, []byte("selfie"))
	s.Require().NoError(err)
	_, err = s.service.AssessRisk(s.ctx, doc.SessionID)
	s.Require().NoError(err)

	// A replayed assessment emits no additional entry.
	_, err = s.service.AssessRisk(s.ctx, doc.SessionID)
	s.Require().NoError(err)

	entries, err := s.service.ListAuditEntries(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)

	s.Equal(audit.StageDocumentExtraction, entries[0].Stage)
	s.Equal("success", entries[0].Outcome)
	s.Equal("DE", entries[0].Payload["country"])

	s.Equal(audit.StageFaceVerification, entries[1].Stage)
	s.Equal("verified", entries[1].Outcome)

	s.Equal(audit.StageRiskAssessment, entries[2].Stage)
	s.Equal("approved", entries[2].Outcome)
	s.Equal("APPROVED", entries[2].Payload["decision"])

	for _, entry := range entries {
		s.Equal(doc.SessionID, entry.SessionID)
		s.NotEmpty(entry.ID)
		s.False(entry.Timestamp.IsZero())
	}
}
