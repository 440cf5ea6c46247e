// Package config handles configuration loading and validation for symposium.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider names accepted in the providers section.
const (
	ProviderTemplate  = "template"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds the application configuration.
type Config struct {
	Providers Providers `yaml:"providers"`
	Engine    Engine    `yaml:"engine"`
	Forums    Forums    `yaml:"forums"`
	Hooks     Hooks     `yaml:"hooks"`
	DataDir   string    `yaml:"-"` // set by caller, not from config file
}

// Providers selects and tunes the content backend.
type Providers struct {
	Provider       string  `yaml:"provider"`
	Model          string  `yaml:"model"`
	OpenAIKey      string  `yaml:"openai_api_key"`
	AnthropicKey   string  `yaml:"anthropic_api_key"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	ContextTokens  int     `yaml:"context_tokens"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// Timeout returns the per-produce deadline.
func (p Providers) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// APIKey returns the key for the configured provider, if any.
func (p Providers) APIKey() string {
	return p.APIKeyFor(p.Provider)
}

// APIKeyFor returns the key for a specific provider, if any.
func (p Providers) APIKeyFor(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return p.OpenAIKey
	case ProviderAnthropic:
		return p.AnthropicKey
	}
	return ""
}

// Engine tunes the coordinator's selection algorithm.
type Engine struct {
	TurnCeiling    int     `yaml:"turn_ceiling"`
	CrowdThreshold float64 `yaml:"crowd_threshold"`
	SmallThreshold float64 `yaml:"small_threshold"`
	RelaxedFloor   float64 `yaml:"relaxed_floor"`
	TopWeight      float64 `yaml:"top_weight"`
	SecondWeight   float64 `yaml:"second_weight"`
}

// Forums controls forum naming and retention.
type Forums struct {
	// NamePattern renders default forum names; {{ .Topic }}, {{ .Mode }},
	// and {{ .Date }} are available.
	NamePattern string `yaml:"name_pattern"`
	// RetentionDays is how long ended forums survive before prune removes
	// them. Zero disables pruning.
	RetentionDays int `yaml:"retention_days"`
}

// Hooks defines shell commands run on forum lifecycle events. Commands are
// templates; {{ .ID }}, {{ .Name }}, {{ .Mode }}, and {{ .Topic }} are
// available.
type Hooks struct {
	OnForumCreate []string `yaml:"on_forum_create"`
	OnForumEnd    []string `yaml:"on_forum_end"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Providers: Providers{
			Provider:       ProviderTemplate,
			Temperature:    0.7,
			MaxTokens:      500,
			ContextTokens:  2048,
			TimeoutSeconds: 60,
		},
		Engine: Engine{
			TurnCeiling:    20,
			CrowdThreshold: 0.3,
			SmallThreshold: 0.6,
			RelaxedFloor:   0.2,
			TopWeight:      0.4,
			SecondWeight:   0.3,
		},
		Forums: Forums{
			NamePattern:   "{{ .Topic }} ({{ .Date }})",
			RetentionDays: 0,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the
// provided dataDir. Environment variables override file values for the
// provider selection and API keys.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyEnv layers environment overrides on top of the file values. Secrets
// normally live in the environment rather than the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("SYMPOSIUM_PROVIDER"); v != "" {
		c.Providers.Provider = v
	}
	if v := os.Getenv("SYMPOSIUM_MODEL"); v != "" {
		c.Providers.Model = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Providers.OpenAIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.Providers.AnthropicKey = v
	}
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Providers.Provider == "" {
		c.Providers.Provider = defaults.Providers.Provider
	}
	if c.Providers.Temperature == 0 {
		c.Providers.Temperature = defaults.Providers.Temperature
	}
	if c.Providers.MaxTokens == 0 {
		c.Providers.MaxTokens = defaults.Providers.MaxTokens
	}
	if c.Providers.ContextTokens == 0 {
		c.Providers.ContextTokens = defaults.Providers.ContextTokens
	}
	if c.Providers.TimeoutSeconds == 0 {
		c.Providers.TimeoutSeconds = defaults.Providers.TimeoutSeconds
	}
	if c.Engine.TurnCeiling == 0 {
		c.Engine.TurnCeiling = defaults.Engine.TurnCeiling
	}
	if c.Engine.CrowdThreshold == 0 {
		c.Engine.CrowdThreshold = defaults.Engine.CrowdThreshold
	}
	if c.Engine.SmallThreshold == 0 {
		c.Engine.SmallThreshold = defaults.Engine.SmallThreshold
	}
	if c.Engine.RelaxedFloor == 0 {
		c.Engine.RelaxedFloor = defaults.Engine.RelaxedFloor
	}
	if c.Engine.TopWeight == 0 {
		c.Engine.TopWeight = defaults.Engine.TopWeight
	}
	if c.Engine.SecondWeight == 0 {
		c.Engine.SecondWeight = defaults.Engine.SecondWeight
	}
	if c.Forums.NamePattern == "" {
		c.Forums.NamePattern = defaults.Forums.NamePattern
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	switch c.Providers.Provider {
	case ProviderTemplate, ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("providers.provider %q is not one of template, openai, anthropic", c.Providers.Provider)
	}

	if c.Providers.Temperature < 0 || c.Providers.Temperature > 2 {
		return fmt.Errorf("providers.temperature must be between 0 and 2")
	}
	if c.Providers.MaxTokens < 1 {
		return fmt.Errorf("providers.max_tokens must be at least 1")
	}
	if c.Providers.ContextTokens < 1 {
		return fmt.Errorf("providers.context_tokens must be at least 1")
	}
	if c.Providers.TimeoutSeconds < 1 {
		return fmt.Errorf("providers.timeout_seconds must be at least 1")
	}

	if c.Engine.TurnCeiling < 1 {
		return fmt.Errorf("engine.turn_ceiling must be at least 1")
	}
	for name, v := range map[string]float64{
		"engine.crowd_threshold": c.Engine.CrowdThreshold,
		"engine.small_threshold": c.Engine.SmallThreshold,
		"engine.relaxed_floor":   c.Engine.RelaxedFloor,
		"engine.top_weight":      c.Engine.TopWeight,
		"engine.second_weight":   c.Engine.SecondWeight,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}
	if c.Engine.TopWeight+c.Engine.SecondWeight > 1 {
		return fmt.Errorf("engine.top_weight + engine.second_weight cannot exceed 1")
	}

	if c.Forums.RetentionDays < 0 {
		return fmt.Errorf("forums.retention_days cannot be negative")
	}

	return nil
}

// DatabaseFile returns the path to the SQLite database.
func (c *Config) DatabaseFile() string {
	return filepath.Join(c.DataDir, "symposium.db")
}

// JournalFile returns the path to the decision journal.
func (c *Config) JournalFile() string {
	return filepath.Join(c.DataDir, "journal.json")
}

// PersonasDir returns the path where user persona definitions are stored.
func (c *Config) PersonasDir() string {
	return filepath.Join(c.DataDir, "personas")
}

// LogsDir returns the path where per-batch log files are written.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}
