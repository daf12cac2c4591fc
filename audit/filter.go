package audit

import "strings"

// Reasoning models tend to restate UNABLE_TO_ASSESS checklist items as
// low-severity "findings", double-penalizing the score for the same
// missing information. An inability to assess is a checklist fact, not
// a finding, so such phantoms are dropped. Phrases are matched against
// the lowercased concatenation of observation, discrepancy, and impact.
var nonSubstantivePhrases = []string{
	"unable to assess",
	"unable to verify",
	"unable to determine",
	"unable to confirm",
	"cannot be assessed",
	"cannot be verified",
	"cannot be determined",
	"cannot be confirmed",
	"cannot assess",
	"cannot verify",
	"cannot determine",
	"cannot confirm",
	"not possible to assess",
	"not possible to verify",
	"not possible to determine",
	"impossible to assess",
	"impossible to verify",
	"impossible to determine",
	"not visible in the image",
	"not visible from the image",
	"not discernible from the image",
	"from a static image",
	"from a single image",
	"from the image alone",
	"no information available",
	"insufficient information to",
	"insufficient visual information",
}

// FilterFindings removes findings that merely restate an inability to
// verify rather than describing a genuine defect. CRITICAL and MAJOR
// findings are never dropped regardless of phrasing; severity is a
// safety floor. Filtering an already-filtered list returns it unchanged.
func FilterFindings(findings []Finding) []Finding {
	kept := make([]Finding, 0, len(findings))
	for _, f := range findings {
		if isPhantom(f) {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

func isPhantom(f Finding) bool {
	if f.Severity != SeverityMinor && f.Severity != SeverityObservation {
		return false
	}
	text := strings.ToLower(f.Observation + " " + f.Discrepancy + " " + f.Impact)
	for _, phrase := range nonSubstantivePhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
