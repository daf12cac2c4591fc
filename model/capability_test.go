package model

import "testing"

func TestCapabilityIsValid(t *testing.T) {
	tests := []struct {
		capability Capability
		valid      bool
	}{
		{CapabilityVision, true},
		{CapabilityReasoning, true},
		{Capability("planning"), false},
		{Capability(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.capability), func(t *testing.T) {
			if got := tt.capability.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestParseCapability(t *testing.T) {
	if got := ParseCapability("vision"); got != CapabilityVision {
		t.Errorf("ParseCapability(vision) = %q", got)
	}
	if got := ParseCapability("reasoning"); got != CapabilityReasoning {
		t.Errorf("ParseCapability(reasoning) = %q", got)
	}
	if got := ParseCapability("unknown"); got != "" {
		t.Errorf("ParseCapability(unknown) = %q, want empty", got)
	}
}
