package audit

import (
	"fmt"
	"strconv"
	"strings"
)

// markerScanLines bounds how far into the vision output the tag scan
// looks. The prompt asks for the tags on the leading lines; anything
// deeper is prose that may mention the marker words incidentally.
const markerScanLines = 5

// Observation is the structured view of a vision call's description.
// Type and Quality are independently optional: a missing type tag reads
// as OTHER and a missing quality tag leaves Quality nil (unknown, not
// zero).
type Observation struct {
	// Type is the experiment type the vision model declared, or OTHER.
	Type ExperimentType `json:"experiment_type"`

	// Quality is the declared image quality on a 1-10 scale, nil when
	// the model did not declare one.
	Quality *int `json:"image_quality,omitempty"`

	// Text is the full description, including any marker lines.
	Text string `json:"text"`
}

// ParseObservation extracts the EXPERIMENT_TYPE and IMAGE_QUALITY
// markers from vision output. Absence of either marker never fails.
func ParseObservation(text string) Observation {
	obs := Observation{Type: ExperimentOther, Text: text}

	lines := strings.Split(text, "\n")
	if len(lines) > markerScanLines {
		lines = lines[:markerScanLines]
	}
	for _, line := range lines {
		if value, ok := markerValue(line, "EXPERIMENT_TYPE:"); ok {
			obs.Type = ParseExperimentType(value)
			continue
		}
		if value, ok := markerValue(line, "IMAGE_QUALITY:"); ok {
			// Tolerate forms like "7/10" or "7 (sharp, well lit)". A
			// bare marker with no value leaves Quality unknown.
			fields := strings.FieldsFunc(strings.TrimSpace(value), func(r rune) bool {
				return r == '/' || r == ' ' || r == '('
			})
			if len(fields) == 0 {
				continue
			}
			if q, err := strconv.Atoi(fields[0]); err == nil && q >= 1 && q <= 10 {
				obs.Quality = intPtr(q)
			}
		}
	}
	return obs
}

// markerValue locates an ASCII marker in line case-insensitively and
// returns the text after it. Matching runs on the original line, so
// byte offsets stay valid when the surrounding text is not ASCII.
func markerValue(line, marker string) (string, bool) {
	for i := 0; i+len(marker) <= len(line); i++ {
		if strings.EqualFold(line[i:i+len(marker)], marker) {
			return line[i+len(marker):], true
		}
	}
	return "", false
}

// VisionResult is the tagged outcome of the vision stage. Downstream
// code branches on Failed instead of scanning the text for error
// markers.
type VisionResult struct {
	Observation Observation
	Failed      bool
	Reason      string
}

// OkVision wraps a successful vision description.
func OkVision(text string) VisionResult {
	return VisionResult{Observation: ParseObservation(text)}
}

// FailedVision records that every vision model attempt failed.
func FailedVision(reason string) VisionResult {
	return VisionResult{Failed: true, Reason: reason}
}

// Text renders the result as the string handed to the reasoning call.
// A failed vision stage still yields text, so the comparison runs and
// produces a low-signal record rather than an exception path.
func (v VisionResult) Text() string {
	if v.Failed {
		return fmt.Sprintf("Vision analysis error: %s. All vision models unavailable.", v.Reason)
	}
	return v.Observation.Text
}
