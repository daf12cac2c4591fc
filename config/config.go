// Package config provides configuration loading and management for LabSentinel.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/labsentinel/audit"
)

// Config represents the complete LabSentinel configuration
type Config struct {
	Inference InferenceConfig `yaml:"inference"`
	Cache     CacheConfig     `yaml:"cache"`
	Protocols ProtocolConfig  `yaml:"protocols"`
	Scoring   audit.Policy    `yaml:"scoring"`
}

// InferenceConfig configures the LLM inference settings
type InferenceConfig struct {
	// BaseURL is the OpenAI-compatible API endpoint
	BaseURL string `yaml:"base_url"`
	// VisionModels overrides the vision fallback chain (preferred first)
	VisionModels []string `yaml:"vision_models"`
	// ReasoningModel overrides the reasoning model
	ReasoningModel string `yaml:"reasoning_model"`
	// Temperature controls randomness (0.0 keeps audits reproducible)
	Temperature float64 `yaml:"temperature"`
	// Timeout is the maximum time to wait for model responses
	Timeout time.Duration `yaml:"timeout"`
	// MaxRetries is the per-endpoint retry count for transient failures
	MaxRetries int `yaml:"max_retries"`
}

// CacheConfig configures the inference cache backend
type CacheConfig struct {
	// Backend selects the cache implementation: "file", "nats", or "memory"
	Backend string `yaml:"backend"`
	// Path is the snapshot file location for the file backend
	Path string `yaml:"path"`
	// NATSURL is the NATS server URL for the nats backend
	NATSURL string `yaml:"nats_url"`
}

// ProtocolConfig configures SOP discovery
type ProtocolConfig struct {
	// Dir is a directory of protocol files watched for changes (empty = builtins only)
	Dir string `yaml:"dir"`
	// Globs select protocol files within Dir
	Globs []string `yaml:"globs"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Inference: InferenceConfig{
			BaseURL:     "https://integrate.api.nvidia.com/v1",
			Temperature: 0.0,
			Timeout:     3 * time.Minute,
			MaxRetries:  3,
		},
		Cache: CacheConfig{
			Backend: "file",
			Path:    "labsentinel_cache.json",
		},
		Protocols: ProtocolConfig{
			Dir:   "",
			Globs: nil, // protocol.DefaultGlobs
		},
		Scoring: audit.DefaultPolicy(),
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Inference.BaseURL == "" {
		return fmt.Errorf("inference.base_url is required")
	}
	if c.Inference.Temperature < 0 || c.Inference.Temperature > 1 {
		return fmt.Errorf("inference.temperature must be between 0 and 1")
	}
	if c.Inference.MaxRetries < 1 {
		return fmt.Errorf("inference.max_retries must be at least 1")
	}
	switch c.Cache.Backend {
	case "file":
		if c.Cache.Path == "" {
			return fmt.Errorf("cache.path is required for the file backend")
		}
	case "nats":
		if c.Cache.NATSURL == "" {
			return fmt.Errorf("cache.nats_url is required for the nats backend")
		}
	case "memory":
	default:
		return fmt.Errorf("cache.backend must be one of: file, nats, memory")
	}
	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
