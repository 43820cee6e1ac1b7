// Package config loads the storymesh YAML configuration: model provider
// settings, retry policy knobs, router threshold/fallback and the render
// provider. Defaults are applied on load so a minimal file (api key plus
// provider) is enough to get started.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/storymesh/storymesh/core"
	"github.com/storymesh/storymesh/retry"
)

// RetryConfig holds the retry policy knobs for external calls.
type RetryConfig struct {
	Enabled         bool    `yaml:"enabled"`
	MaxRetries      int     `yaml:"max_retries"`
	InitialDelay    float64 `yaml:"initial_delay"` // seconds
	MaxDelay        float64 `yaml:"max_delay"`     // seconds
	ExponentialBase float64 `yaml:"exponential_base"`
}

// Policy converts the config into a retry.Policy.
func (c RetryConfig) Policy() *retry.Policy {
	return &retry.Policy{
		Enabled:         c.Enabled,
		MaxRetries:      c.MaxRetries,
		InitialDelay:    time.Duration(c.InitialDelay * float64(time.Second)),
		MaxDelay:        time.Duration(c.MaxDelay * float64(time.Second)),
		ExponentialBase: c.ExponentialBase,
	}
}

// LLMConfig selects and parameterizes the generation provider.
type LLMConfig struct {
	Provider string      `yaml:"provider"` // anthropic | openai | gemini | mock
	APIKey   string      `yaml:"api_key"`
	APIBase  string      `yaml:"api_base"`
	Model    string      `yaml:"model"`
	Retry    RetryConfig `yaml:"retry"`
}

// RouterConfig parameterizes director routing.
type RouterConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	FallbackWorker      string  `yaml:"fallback_worker"`
}

// Fallback returns the configured fallback worker kind.
func (c RouterConfig) Fallback() core.WorkerKind {
	return core.WorkerKind(c.FallbackWorker)
}

// RenderConfig selects and parameterizes the video render provider.
type RenderConfig struct {
	Provider string `yaml:"provider"` // sora | runway | pika | mock
	APIKey   string `yaml:"api_key"`
	APIBase  string `yaml:"api_base"`
}

// MemoryConfig controls the in-process run memory.
type MemoryConfig struct {
	Enabled    bool `yaml:"enabled"`
	MaxEntries int  `yaml:"max_entries"` // 0 = unlimited
}

// Config is the root storymesh configuration.
type Config struct {
	LLM    LLMConfig    `yaml:"llm"`
	Router RouterConfig `yaml:"router"`
	Render RenderConfig `yaml:"render"`
	Memory MemoryConfig `yaml:"memory"`
}

// Default returns the baseline configuration: mock providers, standard
// retry policy, planner fallback at threshold 0.6.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "mock",
			Retry: RetryConfig{
				Enabled:         true,
				MaxRetries:      3,
				InitialDelay:    1.0,
				MaxDelay:        60.0,
				ExponentialBase: 2.0,
			},
		},
		Router: RouterConfig{
			ConfidenceThreshold: 0.6,
			FallbackWorker:      string(core.WorkerPlanner),
		},
		Render: RenderConfig{Provider: "mock"},
		Memory: MemoryConfig{Enabled: true},
	}
}

// Load reads and validates a YAML config file, filling unset fields with
// defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse decodes YAML config bytes and validates. Decoding happens over a
// Default() value, so absent fields keep their defaults while explicitly
// written values, zero included, are preserved as written.
func Parse(b []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the runtime would fail on later.
func (c *Config) Validate() error {
	if c.Router.ConfidenceThreshold < 0 || c.Router.ConfidenceThreshold > 1 {
		return fmt.Errorf("router.confidence_threshold must be in [0,1], got %v", c.Router.ConfidenceThreshold)
	}
	fallback := c.Router.Fallback()
	if !fallback.Valid() || fallback == core.WorkerTerminal {
		return fmt.Errorf("router.fallback_worker %q is not a routable worker", c.Router.FallbackWorker)
	}
	if c.LLM.Retry.MaxRetries < 0 {
		return fmt.Errorf("llm.retry.max_retries must be >= 0, got %d", c.LLM.Retry.MaxRetries)
	}
	if c.LLM.Retry.Enabled {
		if c.LLM.Retry.ExponentialBase < 1 {
			return fmt.Errorf("llm.retry.exponential_base must be >= 1, got %v", c.LLM.Retry.ExponentialBase)
		}
		if c.LLM.Retry.InitialDelay < 0 || c.LLM.Retry.MaxDelay < 0 {
			return fmt.Errorf("llm.retry delays must be >= 0")
		}
	}
	switch c.LLM.Provider {
	case "anthropic", "openai", "gemini", "mock":
	default:
		return fmt.Errorf("unsupported llm.provider: %q", c.LLM.Provider)
	}
	switch c.Render.Provider {
	case "sora", "runway", "pika", "mock":
	default:
		return fmt.Errorf("unsupported render.provider: %q", c.Render.Provider)
	}
	return nil
}
