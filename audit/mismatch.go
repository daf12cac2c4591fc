package audit

import "fmt"

// MismatchCategory is the finding category the engine uses for
// experiment-type mismatches. Categories are engine-controlled, so the
// presence of this category is the stable signal that a mismatch has
// already been described.
const MismatchCategory = "Protocol Mismatch"

// DetectMismatch reconciles the independent signals about what
// experiment the image depicts against what the protocol expects.
// Signal priority: the vision model's explicit tag when it is not
// OTHER, then keyword search over the description text. Filenames are
// deliberately not a signal; naming conventions produce false
// positives. A mismatch requires a confident non-OTHER detected type on
// both sides of the comparison.
func DetectMismatch(declared ExperimentType, description string, expected ExperimentType) (detected ExperimentType, isMismatch bool) {
	detected = declared
	if detected == ExperimentOther {
		detected = ClassifyDescription(description)
	}
	if expected == ExperimentOther || detected == ExperimentOther {
		return detected, false
	}
	return detected, detected != expected
}

// ApplyMismatchOverride clamps an already-scored record down to a FAIL
// verdict. It always runs after scoring, never before: the
// checklist-based result is the baseline the override clamps. A
// synthetic CRITICAL finding is prepended unless one already describes
// the mismatch, so repeated invocation cannot duplicate it.
func (p Policy) ApplyMismatchOverride(rec *Record, detected, expected ExperimentType) {
	score := min(rec.ScoreValue(), p.MismatchCeiling)
	rec.Score = intPtr(score)
	rec.Status = RecordFail

	for _, f := range rec.Findings {
		if f.Category == MismatchCategory {
			return
		}
	}

	rec.Findings = append([]Finding{{
		ID:             "F000",
		Severity:       SeverityCritical,
		Category:       MismatchCategory,
		Observation:    fmt.Sprintf("The image depicts a %s experiment.", detected),
		SOPRequirement: fmt.Sprintf("The selected protocol covers a %s experiment.", expected),
		Discrepancy:    fmt.Sprintf("Detected experiment type %s does not match the protocol's expected type %s.", detected, expected),
		Impact:         "The audit compares evidence against the wrong procedure; none of its compliance conclusions are valid.",
		Recommendation: "Select the protocol that matches this experiment type and re-run the audit.",
	}}, rec.Findings...)
}
