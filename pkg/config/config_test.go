package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MODEL_PROVIDER", "")
	t.Setenv("RESEARCH_STRATEGY", "")
	t.Setenv("QUALITY_THRESHOLD", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, 4096, cfg.MaxTokens)
	assert.Equal(t, 4, cfg.DefaultStrategy)
	assert.Equal(t, 3, cfg.MaxConcurrentUnits)
	assert.InDelta(t, 7.0, cfg.QualityThreshold, 0.001)
	assert.Equal(t, 5*time.Minute, cfg.InvokeTimeout)
	assert.Equal(t, "memory", cfg.History.Backend)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nami.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
provider: ollama
model_name: llama3.2
temperature: 0.3
default_strategy: 7
max_concurrent_units: 5
history:
  backend: sqlite
  path: /tmp/reports.db
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.Provider)
	assert.Equal(t, "llama3.2", cfg.ModelName)
	assert.InDelta(t, 0.3, cfg.Temperature, 0.001)
	assert.Equal(t, 7, cfg.DefaultStrategy)
	assert.Equal(t, 5, cfg.MaxConcurrentUnits)
	assert.Equal(t, "sqlite", cfg.History.Backend)
	assert.Equal(t, "/tmp/reports.db", cfg.History.Path)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Provider)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvironmentFallbacks(t *testing.T) {
	t.Setenv("MODEL_NAME", "gpt-4o")
	t.Setenv("MODEL_PROVIDER", "mock")
	t.Setenv("RESEARCH_STRATEGY", "9")
	t.Setenv("MAX_CONCURRENT_RESEARCH_UNITS", "6")
	t.Setenv("MAX_RESEARCHER_ITERATIONS", "2")
	t.Setenv("QUALITY_THRESHOLD", "8.5")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.ModelName)
	assert.Equal(t, "mock", cfg.Provider)
	assert.Equal(t, 9, cfg.DefaultStrategy)
	assert.Equal(t, 6, cfg.MaxConcurrentUnits)
	assert.Equal(t, 2, cfg.MaxIterations)
	assert.InDelta(t, 8.5, cfg.QualityThreshold, 0.001)
}

func TestFileWinsOverEnvironment(t *testing.T) {
	t.Setenv("RESEARCH_STRATEGY", "9")

	path := filepath.Join(t.TempDir(), "nami.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_strategy: 2\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.DefaultStrategy)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, _ := Load("")
		cfg.Provider = "mock"
		return cfg
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Provider = "watson"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Provider = "openai"
	cfg.OpenAIKey = ""
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.MaxConcurrentUnits = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.QualityThreshold = 11
	assert.Error(t, cfg.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Provider = "mock"
	cfg.ModelName = "test-model"

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mock", loaded.Provider)
	assert.Equal(t, "test-model", loaded.ModelName)
}
