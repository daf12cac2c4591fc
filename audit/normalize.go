package audit

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Reasoning models frequently wrap their JSON in commentary or markdown
// fences despite instructions. Extraction is maximally permissive on
// input and strict on output shape: three strategies in order of
// preference, first successful parse wins.
var (
	// fencedBlockPattern matches JSON inside a markdown code block:
	// ```json { ... } ```
	fencedBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*?\\})\\s*```")
	// objectPattern matches any JSON object span (greedy fallback).
	objectPattern = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	// trailingCommaPattern matches trailing commas before ] or }.
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// Normalize extracts a canonical Record from the reasoning call's raw
// text. On success the returned record carries the model's findings and
// checklist with its subjective score and status cleared; the caller
// recomputes both. When no strategy yields parseable JSON, Normalize
// returns a terminal PARSE_ERROR record preserving the raw text.
func Normalize(raw string) *Record {
	for _, extract := range []func(string) (string, bool){
		extractWhole,
		extractFenced,
		extractGreedy,
	} {
		candidate, ok := extract(raw)
		if !ok {
			continue
		}
		rec, err := decodeRecord(candidate)
		if err != nil {
			continue
		}
		return rec
	}

	return &Record{
		Status:             RecordParseError,
		Summary:            "The model generated a response but it could not be parsed as structured data.",
		Findings:           []Finding{},
		Checklist:          []ChecklistItem{},
		RiskAssessment:     raw,
		RecommendedActions: []string{"Review raw model output manually"},
		RawResponse:        raw,
	}
}

// extractWhole treats the entire text as JSON.
func extractWhole(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

// extractFenced pulls the contents of the first triple-backtick block,
// optionally tagged json.
func extractFenced(raw string) (string, bool) {
	if m := fencedBlockPattern.FindStringSubmatch(raw); len(m) > 1 {
		return m[1], true
	}
	return "", false
}

// extractGreedy takes the widest {...} span in the text.
func extractGreedy(raw string) (string, bool) {
	if m := objectPattern.FindString(raw); m != "" {
		return m, true
	}
	return "", false
}

// decodeRecord parses a JSON candidate into a Record, tolerating the
// trailing commas models commonly emit, and discards the model's own
// score and status.
func decodeRecord(candidate string) (*Record, error) {
	var rec Record
	if err := json.Unmarshal([]byte(candidate), &rec); err != nil {
		// The comma pattern can match inside string values, so the
		// cleanup only runs when the candidate fails to parse as-is.
		cleaned := trailingCommaPattern.ReplaceAllString(candidate, "$1")
		if retryErr := json.Unmarshal([]byte(cleaned), &rec); retryErr != nil {
			return nil, err
		}
	}

	// The model's subjective numbers are never passed through.
	rec.Score = nil
	rec.Status = ""

	if rec.Findings == nil {
		rec.Findings = []Finding{}
	}
	if rec.Checklist == nil {
		rec.Checklist = []ChecklistItem{}
	}
	return &rec, nil
}
