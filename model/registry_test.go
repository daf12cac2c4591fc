package model

import (
	"encoding/json"
	"testing"
)

func TestNewDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()

	endpoints := r.ListEndpoints()
	if len(endpoints) != 5 {
		t.Errorf("expected 5 endpoints, got %d", len(endpoints))
	}

	for _, name := range endpoints {
		ep := r.GetEndpoint(name)
		if ep.Provider != "openai" {
			t.Errorf("endpoint %s: provider = %q, want openai", name, ep.Provider)
		}
		if ep.Model == "" || ep.URL == "" {
			t.Errorf("endpoint %s incomplete: %+v", name, ep)
		}
	}
}

func TestRegistryGetFallbackChain(t *testing.T) {
	r := NewDefaultRegistry()

	vision := r.GetFallbackChain(CapabilityVision)
	if len(vision) != 4 {
		t.Fatalf("expected 4 vision models, got %d", len(vision))
	}
	if vision[0] != "nemotron-vl" {
		t.Errorf("first vision model should be the preferred one, got %q", vision[0])
	}

	reasoning := r.GetFallbackChain(CapabilityReasoning)
	if len(reasoning) != 1 || reasoning[0] != "nemotron-nano" {
		t.Errorf("unexpected reasoning chain: %v", reasoning)
	}

	if chain := r.GetFallbackChain(Capability("unknown")); chain != nil {
		t.Errorf("unknown capability should have no chain, got %v", chain)
	}
}

func TestRegistryGetEndpoint(t *testing.T) {
	r := NewDefaultRegistry()

	ep := r.GetEndpoint("nemotron-nano")
	if ep == nil {
		t.Fatal("expected nemotron-nano endpoint to exist")
	}
	if ep.Model != "nvidia/nemotron-3-nano-30b-a3b" {
		t.Errorf("unexpected model: %q", ep.Model)
	}

	if missing := r.GetEndpoint("nonexistent"); missing != nil {
		t.Error("expected nil for nonexistent endpoint")
	}
}

func TestRegistrySetCapability(t *testing.T) {
	r := NewDefaultRegistry()

	r.SetCapability(CapabilityVision, &CapabilityConfig{
		Preferred: []string{"custom-a"},
		Fallback:  []string{"custom-b"},
	})

	chain := r.GetFallbackChain(CapabilityVision)
	if len(chain) != 2 || chain[0] != "custom-a" || chain[1] != "custom-b" {
		t.Errorf("unexpected chain after override: %v", chain)
	}
}

func TestRegistrySetEndpoint(t *testing.T) {
	r := NewDefaultRegistry()

	r.SetEndpoint("local-vlm", &EndpointConfig{
		Provider:  "ollama",
		URL:       "http://localhost:11434/v1",
		Model:     "llava:13b",
		MaxTokens: 2048,
	})

	ep := r.GetEndpoint("local-vlm")
	if ep == nil {
		t.Fatal("expected local-vlm endpoint to exist")
	}
	if ep.Provider != "ollama" {
		t.Errorf("unexpected provider: %q", ep.Provider)
	}
}

func TestRegistryJSONRoundtrip(t *testing.T) {
	original := NewDefaultRegistry()

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	restored := &Registry{}
	if err := json.Unmarshal(data, restored); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if len(restored.ListEndpoints()) != len(original.ListEndpoints()) {
		t.Error("endpoint count changed across roundtrip")
	}
	if chain := restored.GetFallbackChain(CapabilityVision); len(chain) != 4 {
		t.Errorf("vision chain lost in roundtrip: %v", chain)
	}
}
