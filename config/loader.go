package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of tripgraph environment variables.
const EnvPrefix = "TRIPGRAPH_"

const maxConfigFileSize = 1024 * 1024

// Load reads the YAML file at path (optional; empty skips it), applies
// TRIPGRAPH_ environment overrides, fills defaults and validates.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if len(content) > maxConfigFileSize {
			return nil, fmt.Errorf("config file too large: %d bytes (max %d)", len(content), maxConfigFileSize)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvFallbacks(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// envKey maps TRIPGRAPH_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))

	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	return section + "." + field
}

func applyEnvFallbacks(cfg *Config) {
	fallback := func(dst *string, name string) {
		if *dst == "" {
			*dst = os.Getenv(name)
		}
	}

	fallback(&cfg.Model.OpenAIAPIKey, "OPENAI_API_KEY")
	fallback(&cfg.Model.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	fallback(&cfg.Tools.TavilyAPIKey, "TAVILY_API_KEY")
	fallback(&cfg.Tools.GooglePlacesAPIKey, "GOOGLE_PLACES_API_KEY")
	fallback(&cfg.Tools.UnsplashAPIKey, "UNSPLASH_API_KEY")
}
