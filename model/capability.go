// Package model provides capability-based model selection for the two
// inference calls. Instead of hardcoding model names, callers specify a
// capability (vision, reasoning) and the registry resolves it to
// available models with fallback chains.
package model

// Capability represents a semantic capability for model selection.
type Capability string

const (
	// CapabilityVision is for describing lab images in scientific detail.
	CapabilityVision Capability = "vision"

	// CapabilityReasoning is for the structured comparison of a
	// description against protocol text.
	CapabilityReasoning Capability = "reasoning"
)

// IsValid checks if a capability string is a known capability.
func (c Capability) IsValid() bool {
	switch c {
	case CapabilityVision, CapabilityReasoning:
		return true
	}
	return false
}

// String returns the string representation of the capability.
func (c Capability) String() string {
	return string(c)
}

// ParseCapability converts a string to a Capability, returning empty
// for invalid values.
func ParseCapability(s string) Capability {
	cap := Capability(s)
	if cap.IsValid() {
		return cap
	}
	return ""
}
