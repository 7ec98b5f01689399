// Package config loads tripgraph configuration.
//
// Precedence (highest to lowest):
//  1. Environment variables prefixed with TRIPGRAPH_
//  2. YAML config file
//  3. Defaults
//
// Environment variables map to keys by dropping the prefix and splitting
// section from field on the first underscore:
//
//	TRIPGRAPH_MODEL_PROVIDER        -> model.provider
//	TRIPGRAPH_TOOLS_TAVILY_API_KEY  -> tools.tavily_api_key
//	TRIPGRAPH_STORE_REDIS_ADDR      -> store.redis_addr
//
// Provider keys also fall back to the conventional OPENAI_API_KEY,
// ANTHROPIC_API_KEY, TAVILY_API_KEY, GOOGLE_PLACES_API_KEY and
// UNSPLASH_API_KEY variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/tripgraph/logging"
	"github.com/hupe1980/tripgraph/planner"
)

// Supported completion providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config is the complete tripgraph configuration.
type Config struct {
	Model   ModelConfig   `koanf:"model"`
	Tools   ToolsConfig   `koanf:"tools"`
	Planner PlannerConfig `koanf:"planner"`
	Store   StoreConfig   `koanf:"store"`
	Server  ServerConfig  `koanf:"server"`
	Log     LogConfig     `koanf:"log"`
}

// ModelConfig selects and configures the completion provider.
type ModelConfig struct {
	Provider        string  `koanf:"provider"`
	Name            string  `koanf:"name"`
	Temperature     float64 `koanf:"temperature"`
	MaxTokens       int     `koanf:"max_tokens"`
	BaseURL         string  `koanf:"base_url"`
	OpenAIAPIKey    string  `koanf:"openai_api_key"`
	AnthropicAPIKey string  `koanf:"anthropic_api_key"`
}

// APIKey returns the key of the selected provider.
func (m ModelConfig) APIKey() string {
	if m.Provider == ProviderAnthropic {
		return m.AnthropicAPIKey
	}
	return m.OpenAIAPIKey
}

// ToolsConfig configures the research tools. A tool whose key is empty is
// not offered to the model.
type ToolsConfig struct {
	TavilyAPIKey       string        `koanf:"tavily_api_key"`
	GooglePlacesAPIKey string        `koanf:"google_places_api_key"`
	UnsplashAPIKey     string        `koanf:"unsplash_api_key"`
	MaxSearchResults   int           `koanf:"max_search_results"`
	MaxPageChars       int           `koanf:"max_page_chars"`
	RatePerSecond      float64       `koanf:"rate_per_second"`
	Burst              int           `koanf:"burst"`
	MaxRetries         int           `koanf:"max_retries"`
	Timeout            time.Duration `koanf:"timeout"`
	MaxParallel        int           `koanf:"max_parallel"`
}

// PlannerConfig bounds a single planning run.
type PlannerConfig struct {
	MaxToolPasses int           `koanf:"max_tool_passes"`
	MaxModelCalls int           `koanf:"max_model_calls"`
	MaxSteps      int           `koanf:"max_steps"`
	RunTimeout    time.Duration `koanf:"run_timeout"`
}

// StoreConfig selects the run store. An empty RedisAddr keeps runs in memory.
type StoreConfig struct {
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db"`
	TTL           time.Duration `koanf:"ttl"`
	MaxRuns       int           `koanf:"max_runs"`
}

// ServerConfig configures the HTTP boundary.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Model.Provider == "" {
		cfg.Model.Provider = ProviderOpenAI
	}
	if cfg.Model.MaxTokens == 0 {
		cfg.Model.MaxTokens = 4096
	}

	if cfg.Tools.MaxSearchResults == 0 {
		cfg.Tools.MaxSearchResults = 5
	}
	if cfg.Tools.MaxPageChars == 0 {
		cfg.Tools.MaxPageChars = 8000
	}
	if cfg.Tools.RatePerSecond == 0 {
		cfg.Tools.RatePerSecond = 5
	}
	if cfg.Tools.Burst == 0 {
		cfg.Tools.Burst = 5
	}
	if cfg.Tools.MaxRetries == 0 {
		cfg.Tools.MaxRetries = 3
	}
	if cfg.Tools.Timeout == 0 {
		cfg.Tools.Timeout = 30 * time.Second
	}
	if cfg.Tools.MaxParallel == 0 {
		cfg.Tools.MaxParallel = 4
	}

	if cfg.Planner.MaxToolPasses == 0 {
		cfg.Planner.MaxToolPasses = 8
	}
	if cfg.Planner.MaxModelCalls == 0 {
		cfg.Planner.MaxModelCalls = 40
	}
	if cfg.Planner.MaxSteps == 0 {
		cfg.Planner.MaxSteps = 100
	}
	if cfg.Planner.RunTimeout == 0 {
		cfg.Planner.RunTimeout = 10 * time.Minute
	}

	if cfg.Store.TTL == 0 {
		cfg.Store.TTL = 24 * time.Hour
	}
	if cfg.Store.MaxRuns == 0 {
		cfg.Store.MaxRuns = 1000
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	var errs []error

	switch c.Model.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		errs = append(errs, fmt.Errorf("model.provider must be %q or %q, got %q", ProviderOpenAI, ProviderAnthropic, c.Model.Provider))
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		errs = append(errs, fmt.Errorf("model.temperature must be within [0, 2], got %v", c.Model.Temperature))
	}
	if c.Model.MaxTokens < 1 {
		errs = append(errs, errors.New("model.max_tokens must be positive"))
	}

	if c.Tools.MaxSearchResults < 1 || c.Tools.MaxSearchResults > 20 {
		errs = append(errs, fmt.Errorf("tools.max_search_results must be within [1, 20], got %d", c.Tools.MaxSearchResults))
	}
	if c.Tools.MaxParallel < 1 {
		errs = append(errs, errors.New("tools.max_parallel must be positive"))
	}
	if c.Tools.MaxRetries < 0 {
		errs = append(errs, errors.New("tools.max_retries must not be negative"))
	}
	if c.Tools.RatePerSecond < 0 {
		errs = append(errs, errors.New("tools.rate_per_second must not be negative"))
	}

	if c.Planner.MaxToolPasses < 1 {
		errs = append(errs, errors.New("planner.max_tool_passes must be positive"))
	}
	if c.Planner.MaxModelCalls < 0 {
		errs = append(errs, errors.New("planner.max_model_calls must not be negative"))
	}
	if c.Planner.MaxSteps < 1 {
		errs = append(errs, errors.New("planner.max_steps must be positive"))
	} else if c.Planner.MaxToolPasses >= 1 && c.Planner.MaxSteps < planner.MinSteps(c.Planner.MaxToolPasses) {
		errs = append(errs, fmt.Errorf("planner.max_steps must be at least %d for max_tool_passes %d, got %d",
			planner.MinSteps(c.Planner.MaxToolPasses), c.Planner.MaxToolPasses, c.Planner.MaxSteps))
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if f := strings.ToLower(c.Log.Format); f != "json" && f != "text" {
		errs = append(errs, fmt.Errorf("log.format must be json or text, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
