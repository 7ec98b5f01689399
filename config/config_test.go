package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "TAVILY_API_KEY", "GOOGLE_PLACES_API_KEY", "UNSPLASH_API_KEY"} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tripgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearProviderEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Model.Provider)
	assert.Equal(t, 5, cfg.Tools.MaxSearchResults)
	assert.Equal(t, 8, cfg.Planner.MaxToolPasses)
	assert.Equal(t, 100, cfg.Planner.MaxSteps)
	assert.Equal(t, 4, cfg.Tools.MaxParallel)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Store.TTL)
	assert.Empty(t, cfg.Store.RedisAddr)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearProviderEnv(t)

	path := writeConfig(t, `
model:
  provider: anthropic
  name: claude-sonnet-4-20250514
  temperature: 0.2
tools:
  tavily_api_key: from-file
  max_search_results: 3
  timeout: 5s
store:
  redis_addr: localhost:6379
  ttl: 1h
`)

	t.Setenv("TRIPGRAPH_TOOLS_TAVILY_API_KEY", "from-env")
	t.Setenv("TRIPGRAPH_PLANNER_MAX_TOOL_PASSES", "3")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderAnthropic, cfg.Model.Provider)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Model.Name)
	assert.InDelta(t, 0.2, cfg.Model.Temperature, 1e-9)
	assert.Equal(t, "sk-ant", cfg.Model.APIKey())
	assert.Equal(t, "from-env", cfg.Tools.TavilyAPIKey)
	assert.Equal(t, 3, cfg.Tools.MaxSearchResults)
	assert.Equal(t, 5*time.Second, cfg.Tools.Timeout)
	assert.Equal(t, 3, cfg.Planner.MaxToolPasses)
	assert.Equal(t, "localhost:6379", cfg.Store.RedisAddr)
	assert.Equal(t, time.Hour, cfg.Store.TTL)
}

func TestLoad_Invalid(t *testing.T) {
	clearProviderEnv(t)

	path := writeConfig(t, `
model:
  provider: llama
log:
  format: xml
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model.provider")
	assert.Contains(t, err.Error(), "log.format")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "model.provider", envKey("TRIPGRAPH_MODEL_PROVIDER"))
	assert.Equal(t, "tools.google_places_api_key", envKey("TRIPGRAPH_TOOLS_GOOGLE_PLACES_API_KEY"))
	assert.Equal(t, "debug", envKey("TRIPGRAPH_DEBUG"))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Model.Temperature = 3
	cfg.Planner.MaxToolPasses = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model.temperature")
	assert.Contains(t, err.Error(), "planner.max_tool_passes")
}

func TestValidate_MaxStepsCoversToolPasses(t *testing.T) {
	cfg := Default()
	cfg.Planner.MaxToolPasses = 20
	cfg.Planner.MaxSteps = 100

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "planner.max_steps must be at least 129")

	cfg.Planner.MaxSteps = 129
	assert.NoError(t, cfg.Validate())
}
