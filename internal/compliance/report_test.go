package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildReport(t *testing.T) {
	t.Run("all checks passing", func(t *testing.T) {
		report := BuildReport(
			DocumentSummary{Age: 34, DocumentValid: true, TamperingDetected: false, CDDCompleted: true},
			BiometricSummary{LivenessPassed: true, SimilarityScore: 0.9},
			evalTime,
		)

		assert.Equal(t, evalTime.Format("2006-01-02T15:04:05Z07:00"), report.Timestamp)
		assert.Equal(t, "PASS", report.AML.CDDCompleted)
		assert.Equal(t, "PASS", report.AML.AgeVerified)
		assert.Equal(t, "PASS", report.AML.DocumentValid)
		assert.True(t, report.DSA.AgeOver18)
		assert.Equal(t, "COMPLIANT", report.DSA.DigitalServicesAct)
		assert.Equal(t, "PASS", report.Regulation20231113.TamperingCheck)
		assert.Equal(t, "PASS", report.Regulation20231113.LivenessCheck)
		assert.Equal(t, "PASS", report.GDPR.DataMinimization)
		assert.Equal(t, "AES-256 + TLS 1.3", report.GDPR.Encryption)
	})

	t.Run("failing checks relabel without new logic", func(t *testing.T) {
		report := BuildReport(
			DocumentSummary{Age: 16, DocumentValid: false, TamperingDetected: true, CDDCompleted: false},
			BiometricSummary{LivenessPassed: false, SimilarityScore: 0.2},
			evalTime,
		)

		assert.Equal(t, "FAIL", report.AML.CDDCompleted)
		assert.Equal(t, "FAIL", report.AML.AgeVerified)
		assert.Equal(t, "FAIL", report.AML.DocumentValid)
		assert.False(t, report.DSA.AgeOver18)
		assert.Equal(t, "NON_COMPLIANT", report.DSA.DigitalServicesAct)
		assert.Equal(t, "FAIL", report.Regulation20231113.TamperingCheck)
		assert.Equal(t, "FAIL", report.Regulation20231113.LivenessCheck)
	})
}
