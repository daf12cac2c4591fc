package inference

import (
	"context"
	"fmt"

	"github.com/c360studio/labsentinel/llm"
	"github.com/c360studio/labsentinel/model"
)

const reasoningSystemPrompt = `You are LabSentinel, an AI-powered pharmaceutical data integrity auditor.
Your role is to compare laboratory visual evidence against Standard Operating Procedures (SOPs)
to detect data integrity issues, procedural deviations, and potential reproducibility failures.

You must be thorough, precise, and unbiased. You flag issues that human reviewers might miss
due to confirmation bias or time pressure.

IMPORTANT: Always respond with the structured JSON format requested. Be specific about
which SOP criteria each finding relates to.`

const reasoningUserPrompt = `Perform a complete data integrity audit by comparing the laboratory image analysis
against the Standard Operating Procedure.

## LABORATORY IMAGE ANALYSIS (from vision model):
%s

## STANDARD OPERATING PROCEDURE:
%s

## YOUR TASK:
Generate a comprehensive audit report in the following JSON format:

{
    "data_integrity_score": <integer 0-100, where 100 = perfect compliance>,
    "overall_status": "<PASS | INVESTIGATE | FAIL>",
    "summary": "<2-3 sentence executive summary>",
    "findings": [
        {
            "id": "F001",
            "severity": "<CRITICAL | MAJOR | MINOR | OBSERVATION>",
            "category": "<Contamination | Procedural Deviation | Data Discrepancy | Equipment Issue | Documentation Gap>",
            "observation": "<what was observed in the image>",
            "sop_requirement": "<what the SOP specifies>",
            "discrepancy": "<specific mismatch between observation and SOP>",
            "impact": "<potential impact on data integrity and reproducibility>",
            "recommendation": "<specific corrective action>"
        }
    ],
    "sop_compliance_checklist": [
        {
            "criterion": "<SOP requirement>",
            "status": "<COMPLIANT | NON-COMPLIANT | UNABLE TO ASSESS>",
            "notes": "<brief explanation>"
        }
    ],
    "risk_assessment": "<brief paragraph on overall risk to data integrity>",
    "recommended_actions": ["<action 1>", "<action 2>", "<action 3>"]
}

Be thorough but fair. Only flag genuine concerns, not speculative issues.
If the image quality prevents assessment of certain criteria, mark them as UNABLE TO ASSESS.
Respond ONLY with the JSON object, no additional text before or after it.`

// Comparer runs the structured comparison through the reasoning
// capability.
type Comparer struct {
	client llm.Completer
}

// NewComparer creates a protocol comparer over the given completion client.
func NewComparer(client llm.Completer) *Comparer {
	return &Comparer{client: client}
}

// CompareAgainstProtocol asks the reasoning model to audit the vision
// description against the protocol text and returns its raw output.
// The caller normalizes; no parsing happens here.
func (c *Comparer) CompareAgainstProtocol(ctx context.Context, visionText, protocolText string) (string, error) {
	resp, err := c.client.Complete(ctx, llm.Request{
		Capability: model.CapabilityReasoning.String(),
		Messages: []llm.Message{
			{Role: "system", Content: reasoningSystemPrompt},
			{Role: "user", Content: fmt.Sprintf(reasoningUserPrompt, visionText, protocolText)},
		},
		Temperature: &deterministicTemperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}
