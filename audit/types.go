// Package audit implements the audit reconciliation engine: it turns the
// free-form output of the vision and reasoning inference calls into a
// reproducible, engine-computed compliance verdict. The model's own score
// is never trusted; the engine recomputes it from checklist tallies and
// filtered findings.
package audit

import (
	"encoding/json"
	"strings"
)

// Severity ranks a finding by its impact on data integrity.
type Severity string

const (
	SeverityCritical    Severity = "CRITICAL"
	SeverityMajor       Severity = "MAJOR"
	SeverityMinor       Severity = "MINOR"
	SeverityObservation Severity = "OBSERVATION"
)

// ParseSeverity normalizes a model-produced severity string.
// Unknown values map to OBSERVATION, the lowest rank.
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToUpper(strings.TrimSpace(s))) {
	case SeverityCritical:
		return SeverityCritical
	case SeverityMajor:
		return SeverityMajor
	case SeverityMinor:
		return SeverityMinor
	default:
		return SeverityObservation
	}
}

// UnmarshalJSON accepts any casing the model produces.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseSeverity(raw)
	return nil
}

// ChecklistStatus is the tri-state assessment of one protocol criterion.
type ChecklistStatus string

const (
	StatusCompliant      ChecklistStatus = "COMPLIANT"
	StatusNonCompliant   ChecklistStatus = "NON_COMPLIANT"
	StatusUnableToAssess ChecklistStatus = "UNABLE_TO_ASSESS"
)

// ParseChecklistStatus normalizes the status variants LLMs emit:
// "NON-COMPLIANT", "UNABLE TO ASSESS", lowercase, extra whitespace.
// Unrecognized values map to UNABLE_TO_ASSESS so they neither credit
// nor fully penalize the score.
func ParseChecklistStatus(s string) ChecklistStatus {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, "-", "_")
	norm = strings.ReplaceAll(norm, " ", "_")
	switch ChecklistStatus(norm) {
	case StatusCompliant:
		return StatusCompliant
	case StatusNonCompliant:
		return StatusNonCompliant
	default:
		return StatusUnableToAssess
	}
}

func (c *ChecklistStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = ParseChecklistStatus(raw)
	return nil
}

// RecordStatus is the overall verdict of an audit.
type RecordStatus string

const (
	RecordPass        RecordStatus = "PASS"
	RecordInvestigate RecordStatus = "INVESTIGATE"
	RecordFail        RecordStatus = "FAIL"
	RecordError       RecordStatus = "ERROR"
	RecordParseError  RecordStatus = "PARSE_ERROR"
)

// ChecklistItem is one protocol-derived compliance criterion with its
// assessment. The engine consumes whatever the reasoning call returned;
// it never invents or drops items.
type ChecklistItem struct {
	Criterion string          `json:"criterion"`
	Status    ChecklistStatus `json:"status"`
	Notes     string          `json:"notes,omitempty"`
}

// Finding is a discrete, severity-ranked discrepancy between observed
// evidence and the protocol. Findings are mutable only through filtering
// (removal), never edited in place.
type Finding struct {
	ID             string   `json:"id"`
	Severity       Severity `json:"severity"`
	Category       string   `json:"category"`
	Observation    string   `json:"observation"`
	SOPRequirement string   `json:"sop_requirement"`
	Discrepancy    string   `json:"discrepancy"`
	Impact         string   `json:"impact"`
	Recommendation string   `json:"recommendation"`
}

// Record is the canonical audit output. Score and Status are always
// engine-computed; the inference call's own score is discarded. On
// PARSE_ERROR the score is absent and RawResponse preserves the model
// text for human review.
type Record struct {
	Score              *int            `json:"data_integrity_score"`
	Status             RecordStatus    `json:"overall_status"`
	Summary            string          `json:"summary"`
	Findings           []Finding       `json:"findings"`
	Checklist          []ChecklistItem `json:"sop_compliance_checklist"`
	RiskAssessment     string          `json:"risk_assessment"`
	RecommendedActions []string        `json:"recommended_actions"`
	RawResponse        string          `json:"raw_response,omitempty"`
}

// ScoreValue returns the score, or 0 if it is absent (PARSE_ERROR).
func (r *Record) ScoreValue() int {
	if r.Score == nil {
		return 0
	}
	return *r.Score
}

func intPtr(v int) *int { return &v }
