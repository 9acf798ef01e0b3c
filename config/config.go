package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// LLMConfig selects the generative model used for synthesis and the built-in
// agents.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // "openai", "anthropic", "mock"
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int64   `yaml:"max_tokens"`
}

// LoggingConfig tunes the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// Config carries all engine knobs.
type Config struct {
	// MaxAttempts bounds validator-triggered retries per query.
	MaxAttempts int `yaml:"max_attempts"`

	// AgentTimeoutSeconds bounds one collaborator Process call.
	AgentTimeoutSeconds int `yaml:"agent_timeout_seconds"`

	// QueueCapacity bounds each per-role protocol message queue.
	QueueCapacity int `yaml:"queue_capacity"`

	// Validation gate thresholds.
	MinConfidence     float64 `yaml:"min_confidence"`
	MinResponseLength int     `yaml:"min_response_length"`
	MaxErrors         int     `yaml:"max_errors"`

	LLM     LLMConfig     `yaml:"llm"`
	Logging LoggingConfig `yaml:"logging"`
}

// Default returns the baseline configuration. Retry and timeout defaults
// mirror the reference deployment (3 attempts, 30s agent timeout).
func Default() *Config {
	return &Config{
		MaxAttempts:         3,
		AgentTimeoutSeconds: 30,
		QueueCapacity:       128,
		MinConfidence:       0.3,
		MinResponseLength:   50,
		MaxErrors:           2,
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   2000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads a YAML config file, layering it over Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that would break engine invariants.
func (c *Config) Validate() error {
	if c.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must be >= 0, got %d", c.MaxAttempts)
	}
	if c.AgentTimeoutSeconds <= 0 {
		return fmt.Errorf("agent_timeout_seconds must be > 0, got %d", c.AgentTimeoutSeconds)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be in [0,1], got %f", c.MinConfidence)
	}
	if c.MinResponseLength < 0 {
		return fmt.Errorf("min_response_length must be >= 0, got %d", c.MinResponseLength)
	}
	if c.MaxErrors < 0 {
		return fmt.Errorf("max_errors must be >= 0, got %d", c.MaxErrors)
	}
	return nil
}

// AgentTimeout returns the collaborator timeout as a duration.
func (c *Config) AgentTimeout() time.Duration {
	return time.Duration(c.AgentTimeoutSeconds) * time.Second
}
