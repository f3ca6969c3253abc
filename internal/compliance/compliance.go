// Package compliance implements the regulatory rule evaluators for the
// verification pipeline: age verification (DSA Art. 28), document validity
// and customer due diligence (6th AML Directive), data minimization (GDPR
// Art. 5), and tampering detection (Regulation 2023/1113).
//
// Everything here is pure domain logic - no I/O, no side effects. Evaluation
// time is an explicit argument so results are reproducible.
package compliance

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// MinimumAge is the adulthood threshold applied by age verification.
const MinimumAge = 18

// tamperingThreshold is the score above which a document is flagged as
// suspected tampered.
const tamperingThreshold = 0.6

// sharpnessScale normalizes the analyzer's sharpness measure into the
// tampering score. A measure at or above this value scores 0 (authentic).
const sharpnessScale = 1000.0

// AllowedDocumentFields is the GDPR data-minimization allow-list. It is part
// of the wire contract; only these keys may be persisted for a session.
var AllowedDocumentFields = []string{"country", "dob", "document_id", "document_type", "expiry", "name"}

// cddRequiredFields are the fields customer due diligence needs collected.
var cddRequiredFields = []string{"name", "dob", "document_id", "country"}

// AgeCheck is the result of age verification against a date of birth.
type AgeCheck struct {
	Age     int    `json:"age"`
	IsAdult bool   `json:"is_adult"`
	Err     string `json:"error,omitempty"`
}

// CheckAge computes whole years between the date of birth and now using
// floor division by 365 days. Intentionally approximate, not calendar-aware.
// An unparseable date degrades the check to failed instead of erroring out.
func CheckAge(dateOfBirth string, now time.Time) AgeCheck {
	dob, err := time.Parse("2006-01-02", dateOfBirth)
	if err != nil {
		return AgeCheck{Err: fmt.Sprintf("unparseable date of birth: %q", dateOfBirth)}
	}
	age := int(now.Sub(dob).Hours() / 24 / 365)
	return AgeCheck{Age: age, IsAdult: age >= MinimumAge}
}

// ValidityCheck is the result of document expiry validation.
type ValidityCheck struct {
	Valid           bool   `json:"document_valid"`
	DaysUntilExpiry int    `json:"days_until_expiry"`
	Err             string `json:"error,omitempty"`
}

// CheckDocumentValidity verifies the document has not expired. An
// unparseable expiry date yields valid=false with an error marker.
func CheckDocumentValidity(expiryDate string, now time.Time) ValidityCheck {
	exp, err := time.Parse("2006-01-02", expiryDate)
	if err != nil {
		return ValidityCheck{Err: fmt.Sprintf("unparseable expiry date: %q", expiryDate)}
	}
	return ValidityCheck{
		Valid:           exp.After(now),
		DaysUntilExpiry: int(exp.Sub(now).Hours() / 24),
	}
}

// MinimizationResult is the outcome of the GDPR data-minimization check.
// Minimized holds the input restricted to the allow-list and is the only
// field set that may be persisted.
type MinimizationResult struct {
	Passed        bool              `json:"data_minimization_passed"`
	AllowedFields []string          `json:"allowed_fields"`
	ExtraFields   []string          `json:"extra_fields"`
	Minimized     map[string]string `json:"-"`
}

// DataMinimization restricts extracted fields to the allow-list. Passed
// reports whether the input carried anything beyond it. Idempotent: running
// it on its own output yields no extra fields and an unchanged field set.
func DataMinimization(fields map[string]string) MinimizationResult {
	allowed := make(map[string]bool, len(AllowedDocumentFields))
	for _, k := range AllowedDocumentFields {
		allowed[k] = true
	}

	minimized := make(map[string]string, len(fields))
	var extra []string
	for k, v := range fields {
		if allowed[k] {
			minimized[k] = v
		} else {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)

	return MinimizationResult{
		Passed:        len(extra) == 0,
		AllowedFields: AllowedDocumentFields,
		ExtraFields:   extra,
		Minimized:     minimized,
	}
}

// CDDResult is the outcome of the customer due diligence check.
type CDDResult struct {
	Completed bool              `json:"cdd_completed"`
	Collected map[string]string `json:"collected_fields"`
}

// CustomerDueDiligence verifies the identity baseline fields were all
// collected and non-empty.
func CustomerDueDiligence(fields map[string]string) CDDResult {
	collected := make(map[string]string, len(cddRequiredFields))
	completed := true
	for _, k := range cddRequiredFields {
		v := fields[k]
		if v == "" {
			completed = false
			continue
		}
		collected[k] = v
	}
	return CDDResult{Completed: completed, Collected: collected}
}

// TamperingCheck is the outcome of sharpness-based tampering detection.
type TamperingCheck struct {
	Score    float64 `json:"tampering_score"`
	Detected bool    `json:"tampering_detected"`
}

// DetectTampering derives a tampering suspicion score from the analyzer's
// sharpness measure. Lower sharpness means a blurrier capture and higher
// suspicion of a copy or fake.
func DetectTampering(sharpness float64) TamperingCheck {
	score := Round3(clamp01(1 - sharpness/sharpnessScale))
	return TamperingCheck{
		Score:    score,
		Detected: score > tamperingThreshold,
	}
}

// Round3 rounds to 3 decimal places, the precision all scores in the wire
// contract carry.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
