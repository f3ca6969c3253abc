package risk

import (
	"fmt"

	"verigate/internal/compliance"
)

// goodMatchThreshold separates good from poor face matches in the generated
// reasons. Matches the face verification confidence threshold.
const goodMatchThreshold = 0.85

// Reasons produces the ordered, human-readable explanation of a decision:
// one line per check (age, validity, tampering, liveness, face match) plus
// the overall score line. Deterministic for the same inputs.
func Reasons(decision Decision, doc compliance.DocumentSummary, bio compliance.BiometricSummary, scores Scores) []string {
	reasons := make([]string, 0, 6)

	if doc.Age >= compliance.MinimumAge {
		reasons = append(reasons, fmt.Sprintf("Age verification: %d years (>= 18) passed", doc.Age))
	} else {
		reasons = append(reasons, fmt.Sprintf("Age verification: %d years (< 18) failed", doc.Age))
	}

	if doc.DocumentValid {
		reasons = append(reasons, "Document validity: Current and valid")
	} else {
		reasons = append(reasons, "Document validity: Expired or invalid")
	}

	if !doc.TamperingDetected {
		reasons = append(reasons, "Document integrity: No tampering detected")
	} else {
		reasons = append(reasons, "Document integrity: Tampering suspected")
	}

	if bio.LivenessPassed {
		reasons = append(reasons, "Biometric verification: Liveness passed")
	} else {
		reasons = append(reasons, "Biometric verification: Liveness failed")
	}

	if bio.SimilarityScore > goodMatchThreshold {
		reasons = append(reasons, fmt.Sprintf("Face match: %.0f%% similarity (good match)", bio.SimilarityScore*100))
	} else {
		reasons = append(reasons, fmt.Sprintf("Face match: %.0f%% similarity (poor match)", bio.SimilarityScore*100))
	}

	switch decision {
	case DecisionApproved:
		reasons = append(reasons, fmt.Sprintf("Overall risk score: %.0f%% (below threshold)", scores.Overall*100))
	case DecisionReview:
		reasons = append(reasons, fmt.Sprintf("Overall risk score: %.0f%% (manual review recommended)", scores.Overall*100))
	default:
		reasons = append(reasons, fmt.Sprintf("Overall risk score: %.0f%% (exceeds threshold)", scores.Overall*100))
	}

	return reasons
}
