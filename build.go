package tripgraph

import (
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/tripgraph/config"
	"github.com/hupe1980/tripgraph/flow"
	"github.com/hupe1980/tripgraph/logging"
	"github.com/hupe1980/tripgraph/metrics"
	"github.com/hupe1980/tripgraph/model"
	anthropicmodel "github.com/hupe1980/tripgraph/model/anthropic"
	openaimodel "github.com/hupe1980/tripgraph/model/openai"
	"github.com/hupe1980/tripgraph/planner"
	"github.com/hupe1980/tripgraph/session"
	"github.com/hupe1980/tripgraph/session/redis"
	"github.com/hupe1980/tripgraph/tool"
	"github.com/hupe1980/tripgraph/tool/travel"
)

// Deps are the optional collaborators of NewFromConfig.
type Deps struct {
	// Model overrides the provider selected in the configuration.
	Model model.Model

	// Registerer receives the metrics collectors (nil disables metrics).
	Registerer prometheus.Registerer

	// HTTPClient is used by the research tools.
	HTTPClient *http.Client

	Logger logging.Logger
}

// NewFromConfig wires a TripGraph from configuration: provider model,
// research tools, dispatcher, run store and metrics.
func NewFromConfig(cfg *config.Config, deps Deps) (*TripGraph, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if deps.Logger == nil {
		deps.Logger = logging.NoOpLogger{}
	}

	m := deps.Model
	if m == nil {
		var err error
		if m, err = NewModel(cfg.Model); err != nil {
			return nil, err
		}
	}

	var collector *metrics.Collector
	if deps.Registerer != nil {
		collector = metrics.NewCollector(deps.Registerer)
	}

	client := travel.NewClient(func(o *travel.ClientOptions) {
		o.HTTPClient = deps.HTTPClient
		if o.HTTPClient == nil {
			o.HTTPClient = &http.Client{Timeout: cfg.Tools.Timeout}
		}
		o.RatePerSecond = cfg.Tools.RatePerSecond
		o.Burst = cfg.Tools.Burst
		o.MaxRetries = uint64(cfg.Tools.MaxRetries)
	})

	registry, err := tool.NewRegistry(travel.NewTools(func(o *travel.Options) {
		o.TavilyAPIKey = cfg.Tools.TavilyAPIKey
		o.GooglePlacesAPIKey = cfg.Tools.GooglePlacesAPIKey
		o.UnsplashAPIKey = cfg.Tools.UnsplashAPIKey
		o.MaxSearchResults = cfg.Tools.MaxSearchResults
		o.MaxPageChars = cfg.Tools.MaxPageChars
		o.Client = client
	})...)
	if err != nil {
		return nil, err
	}

	deps.Logger.Info("tools.registered", "tools", registry.Names())

	dispatcher := flow.NewDispatcher(func(o *flow.DispatcherOptions) {
		o.MaxParallel = cfg.Tools.MaxParallel
		o.Logger = logging.With(deps.Logger, "component", "tools")
		if collector != nil {
			o.Observers = append(o.Observers, collector.ToolObserver())
		}
	})

	return New(m, func(o *Options) {
		o.Store = NewStore(cfg.Store)
		o.RunTimeout = cfg.Planner.RunTimeout
		o.Metrics = collector
		o.Logger = deps.Logger
		o.Planner = append(o.Planner, func(po *planner.Options) {
			po.Tools = registry
			po.Dispatcher = dispatcher
			po.MaxToolPasses = cfg.Planner.MaxToolPasses
			po.MaxModelCalls = cfg.Planner.MaxModelCalls
			po.MaxSteps = cfg.Planner.MaxSteps
		})
	})
}

// NewModel builds the configured provider adapter.
func NewModel(cfg config.ModelConfig) (model.Model, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openaimodel.NewModel(func(o *openaimodel.Options) {
			if cfg.Name != "" {
				o.Model = cfg.Name
			}
			o.Temperature = cfg.Temperature
			o.MaxCompletionTokens = int64(cfg.MaxTokens)
			o.APIKey = cfg.OpenAIAPIKey
			o.BaseURL = cfg.BaseURL
		}), nil
	case config.ProviderAnthropic:
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			if cfg.Name != "" {
				o.Model = anthropic.Model(cfg.Name)
			}
			o.Temperature = cfg.Temperature
			o.MaxTokens = int64(cfg.MaxTokens)
			o.APIKey = cfg.AnthropicAPIKey
		}), nil
	default:
		return nil, fmt.Errorf("tripgraph: unknown model provider %q", cfg.Provider)
	}
}

// NewStore returns a Redis store when an address is configured and an
// in-memory store otherwise.
func NewStore(cfg config.StoreConfig) session.Store {
	if cfg.RedisAddr != "" {
		return redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redis.WithTTL(cfg.TTL))
	}
	return session.NewInMemoryStore(func(o *session.InMemoryOptions) { o.MaxRuns = cfg.MaxRuns })
}
