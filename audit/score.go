package audit

import (
	"fmt"
	"math"
)

// Policy holds the scoring constants. The numbers encode stated policy
// (an unverifiable criterion counts closer to non-compliant than
// compliant; findings deduct by severity) rather than any external
// standard, so they are injectable. What must hold is determinism: the
// same checklist and findings always yield the same score.
type Policy struct {
	// UnableCredit is the fractional credit an UNABLE_TO_ASSESS item
	// earns relative to a COMPLIANT one. Kept below 0.5 so absence of
	// evidence of compliance is treated conservatively.
	UnableCredit float64 `yaml:"unable_credit"`

	// SeverityPenalties are the points deducted per finding.
	SeverityPenalties map[Severity]int `yaml:"severity_penalties"`

	// PassThreshold and InvestigateThreshold split the 0-100 range into
	// PASS / INVESTIGATE / FAIL.
	PassThreshold        int `yaml:"pass_threshold"`
	InvestigateThreshold int `yaml:"investigate_threshold"`

	// NeutralScore is used when the checklist is empty: there is no
	// evidence to compute from.
	NeutralScore int `yaml:"neutral_score"`

	// MismatchCeiling caps the score when the image does not match the
	// selected protocol.
	MismatchCeiling int `yaml:"mismatch_ceiling"`
}

// DefaultPolicy returns the documented scoring constants.
func DefaultPolicy() Policy {
	return Policy{
		UnableCredit: 0.25,
		SeverityPenalties: map[Severity]int{
			SeverityCritical:    15,
			SeverityMajor:       10,
			SeverityMinor:       5,
			SeverityObservation: 2,
		},
		PassThreshold:        80,
		InvestigateThreshold: 50,
		NeutralScore:         50,
		MismatchCeiling:      15,
	}
}

// Validate checks that the policy constants are usable.
func (p Policy) Validate() error {
	if p.UnableCredit < 0 || p.UnableCredit > 1 {
		return fmt.Errorf("unable_credit must be between 0 and 1")
	}
	if p.PassThreshold < p.InvestigateThreshold {
		return fmt.Errorf("pass_threshold must be at least investigate_threshold")
	}
	if p.NeutralScore < 0 || p.NeutralScore > 100 {
		return fmt.Errorf("neutral_score must be between 0 and 100")
	}
	if p.MismatchCeiling < 0 || p.MismatchCeiling > 100 {
		return fmt.Errorf("mismatch_ceiling must be between 0 and 100")
	}
	for sev, pts := range p.SeverityPenalties {
		if pts < 0 {
			return fmt.Errorf("severity penalty for %s must not be negative", sev)
		}
	}
	return nil
}

// Score computes the integrity score and status purely from checklist
// tallies and (already filtered) findings. Pure function: no clock, no
// randomness, no external state.
func (p Policy) Score(checklist []ChecklistItem, findings []Finding) (int, RecordStatus) {
	var compliant, unable, total int
	for _, item := range checklist {
		total++
		switch item.Status {
		case StatusCompliant:
			compliant++
		case StatusUnableToAssess:
			unable++
		}
	}

	var score int
	if total == 0 {
		score = p.NeutralScore
	} else {
		raw := (float64(compliant) + float64(unable)*p.UnableCredit) / float64(total) * 100

		penalty := 0
		for _, f := range findings {
			penalty += p.SeverityPenalties[f.Severity]
		}

		score = clamp(int(math.Round(raw-float64(penalty))), 0, 100)
	}

	return score, p.statusFor(score)
}

func (p Policy) statusFor(score int) RecordStatus {
	switch {
	case score >= p.PassThreshold:
		return RecordPass
	case score >= p.InvestigateThreshold:
		return RecordInvestigate
	default:
		return RecordFail
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
