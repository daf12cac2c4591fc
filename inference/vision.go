// Package inference provides the two hosted model calls the audit
// pipeline consumes: image analysis and protocol comparison. The
// pipeline treats both as black-box, possibly-failing functions
// returning strings; everything here is prompt construction and
// transport plumbing over the llm client.
package inference

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/c360studio/labsentinel/llm"
	"github.com/c360studio/labsentinel/model"
)

// visionPrompt instructs the vision model to open with the machine-
// readable experiment type and image quality tags the engine parses.
const visionPrompt = `You are an expert pharmaceutical laboratory analyst with 20 years
of experience in quality control and GMP compliance. Analyze this laboratory image in precise scientific detail.

FIRST, identify the experiment type. State ONE of these on the very first line:
EXPERIMENT_TYPE: MTT_CELL_VIABILITY (if you see a multi-well plate with purple/blue colored wells)
EXPERIMENT_TYPE: GEL_ELECTROPHORESIS (if you see a gel with bands/lanes under UV or visible light)
EXPERIMENT_TYPE: HPLC_CHROMATOGRAPHY (if you see a chromatogram chart with peaks)
EXPERIMENT_TYPE: COLONY_COUNTING (if you see petri dishes with bacterial colonies)
EXPERIMENT_TYPE: OTHER (if none of the above)

SECOND, rate the image on the next line:
IMAGE_QUALITY: <integer 1-10, where 10 = perfectly sharp and well lit>

THEN describe EXACTLY what you observe:
1. Overall image quality and clarity
2. Sample conditions (color, turbidity, uniformity, morphology)
3. Any visible anomalies, contamination, or irregularities
4. Equipment/setup observations (if visible)
5. Any signs of procedural deviation

Be extremely specific and quantitative where possible. Flag anything
that looks unusual, inconsistent, or potentially problematic.
Your observations will be compared against the Standard Operating Procedure.`

// deterministicTemperature pins sampling to 0 so identical inputs keep
// producing identical outputs, which the cache layer depends on.
var deterministicTemperature = 0.0

// Vision analyzes lab images through the vision capability's model
// fallback chain.
type Vision struct {
	client llm.Completer
}

// NewVision creates a vision analyzer over the given completion client.
func NewVision(client llm.Completer) *Vision {
	return &Vision{client: client}
}

// AnalyzeImage sends the image to the vision chain and returns the
// description text. The image travels as a base64 data URI because the
// hosted APIs cannot receive raw files.
func (v *Vision) AnalyzeImage(ctx context.Context, image []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	dataURI := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	resp, err := v.client.Complete(ctx, llm.Request{
		Capability: model.CapabilityVision.String(),
		Messages: []llm.Message{
			{Role: "user", Content: visionPrompt, ImageURL: dataURI},
		},
		Temperature: &deterministicTemperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
