// Package config loads the application configuration from YAML with
// environment-variable fallbacks. The engine itself never reads the
// environment; it receives one immutable Config threaded through run().
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	// Model binding
	Provider     string  `yaml:"provider"` // openai, anthropic, ollama, mock
	ModelName    string  `yaml:"model_name"`
	Temperature  float64 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
	OpenAIKey    string  `yaml:"openai_key"`
	AnthropicKey string  `yaml:"anthropic_key"`
	OllamaURL    string  `yaml:"ollama_url"`

	// Research configuration
	DefaultStrategy    int     `yaml:"default_strategy"`
	MaxConcurrentUnits int     `yaml:"max_concurrent_units"`
	MaxIterations      int     `yaml:"max_iterations"` // 0 = per-strategy default
	QualityThreshold   float64 `yaml:"quality_threshold"`

	// Per-invocation limits
	InvokeTimeout  time.Duration `yaml:"invoke_timeout"`
	InvokesPerMin  int           `yaml:"invokes_per_minute"` // 0 = unlimited
	KnowledgeDir   string        `yaml:"knowledge_dir"`

	// Report history storage
	History HistoryConfig `yaml:"history"`
}

// HistoryConfig configures report persistence.
type HistoryConfig struct {
	// Backend selects the store: "memory", "sqlite", or "redis".
	Backend string `yaml:"backend"`

	// Path is the sqlite database path.
	Path string `yaml:"path"`

	// RedisAddr is the redis server address (host:port).
	RedisAddr string `yaml:"redis_addr"`
}

// Load reads configuration from a YAML file and applies environment
// fallbacks and defaults. A missing file is not an error; the returned
// config is then environment plus defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 - path comes from the CLI flag
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if c.ModelName == "" {
		c.ModelName = os.Getenv("MODEL_NAME")
	}
	if c.Provider == "" {
		c.Provider = os.Getenv("MODEL_PROVIDER")
	}
	if c.OpenAIKey == "" {
		c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.AnthropicKey == "" {
		c.AnthropicKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if c.OllamaURL == "" {
		c.OllamaURL = os.Getenv("OLLAMA_URL")
	}
	if c.KnowledgeDir == "" {
		c.KnowledgeDir = os.Getenv("RAG_DIR")
	}
	if c.Temperature == 0 {
		c.Temperature = envFloat("TEMPERATURE", 0)
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = envInt("MAX_TOKENS", 0)
	}
	if c.DefaultStrategy == 0 {
		c.DefaultStrategy = envInt("RESEARCH_STRATEGY", 0)
	}
	if c.MaxConcurrentUnits == 0 {
		c.MaxConcurrentUnits = envInt("MAX_CONCURRENT_RESEARCH_UNITS", 0)
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = envInt("MAX_RESEARCHER_ITERATIONS", 0)
	}
	if c.QualityThreshold == 0 {
		c.QualityThreshold = envFloat("QUALITY_THRESHOLD", 0)
	}
}

func (c *Config) applyDefaults() {
	if c.Provider == "" {
		c.Provider = "openai"
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 4096
	}
	if c.DefaultStrategy == 0 {
		c.DefaultStrategy = 4
	}
	if c.MaxConcurrentUnits == 0 {
		c.MaxConcurrentUnits = 3
	}
	if c.QualityThreshold == 0 {
		c.QualityThreshold = 7.0
	}
	if c.InvokeTimeout == 0 {
		c.InvokeTimeout = 5 * time.Minute
	}
	if c.History.Backend == "" {
		c.History.Backend = "memory"
	}
}

// Validate checks whether the configuration can drive a run.
func (c *Config) Validate() error {
	switch c.Provider {
	case "openai", "anthropic", "ollama", "mock":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.Provider == "openai" && c.OpenAIKey == "" {
		return fmt.Errorf("openai provider requires an API key")
	}
	if c.Provider == "anthropic" && c.AnthropicKey == "" {
		return fmt.Errorf("anthropic provider requires an API key")
	}
	if c.MaxConcurrentUnits < 1 {
		return fmt.Errorf("max_concurrent_units must be positive, got %d", c.MaxConcurrentUnits)
	}
	if c.QualityThreshold < 0 || c.QualityThreshold > 10 {
		return fmt.Errorf("quality_threshold must be in [0,10], got %g", c.QualityThreshold)
	}
	return nil
}

// Save writes the configuration to a YAML file.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
