package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/tripgraph/core"
	"github.com/hupe1980/tripgraph/flow"
	"github.com/hupe1980/tripgraph/graph"
	"github.com/hupe1980/tripgraph/logging"
	"github.com/hupe1980/tripgraph/model"
	"github.com/hupe1980/tripgraph/tool"
)

// Stage names.
const (
	StageValidate = "validate"
	StageProfile  = "profile"
	StageOptimize = "optimize"
	StageResearch = "research"
	StageTools    = "tools"
	StageReview   = "review"
)

// Defaults for the defensive bounds.
const (
	DefaultMaxToolPasses = 8
	DefaultMaxModelCalls = 40
)

// Options configure a Planner.
type Options struct {
	// Tools offered to the research stage. Nil means no tools.
	Tools *tool.Registry

	// Dispatcher executes tool batches. Nil uses a default dispatcher.
	Dispatcher *flow.Dispatcher

	// MaxToolPasses bounds tool batches per research round; once reached,
	// research is asked for a final answer without tools. Review starts a
	// fresh round when it sends the itinerary back.
	MaxToolPasses int

	// MaxModelCalls bounds completion calls per run (0 = unlimited).
	MaxModelCalls int

	// MaxSteps bounds graph steps per run. 0 derives a limit no shorter than
	// MinSteps(MaxToolPasses); explicit values below that are rejected.
	MaxSteps int

	// Hooks observe stage execution.
	Hooks []graph.Hooks

	// Clock supplies "today" for prompts.
	Clock func() time.Time

	Logger logging.Logger
}

// Planner runs the travel planning graph against a model.
type Planner struct {
	model model.Model
	graph *graph.Graph
	opts  Options
}

// New builds and validates the planning graph.
func New(m model.Model, optFns ...func(o *Options)) (*Planner, error) {
	if m == nil {
		return nil, errors.New("planner: model is required")
	}

	opts := Options{
		MaxToolPasses: DefaultMaxToolPasses,
		MaxModelCalls: DefaultMaxModelCalls,
		Clock:         time.Now,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Tools == nil {
		reg, err := tool.NewRegistry()
		if err != nil {
			return nil, err
		}
		opts.Tools = reg
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = flow.NewDispatcher(func(o *flow.DispatcherOptions) { o.Logger = opts.Logger })
	}

	minSteps := MinSteps(opts.MaxToolPasses)
	switch {
	case opts.MaxSteps == 0:
		opts.MaxSteps = max(graph.DefaultMaxSteps, minSteps)
	case opts.MaxSteps < minSteps:
		return nil, fmt.Errorf("planner: max steps %d is below %d, the worst case for %d tool passes", opts.MaxSteps, minSteps, opts.MaxToolPasses)
	}

	p := &Planner{model: m, opts: opts}

	g, err := p.build()
	if err != nil {
		return nil, err
	}
	p.graph = g

	return p, nil
}

// MinSteps returns the stage executions a run needs in the worst case: the
// three intake stages, then MaxRevisions+1 research rounds of maxToolPasses
// research/tools pairs closed by a final research and a review.
func MinSteps(maxToolPasses int) int {
	return 3 + (MaxRevisions+1)*(2*max(maxToolPasses, 0)+2)
}

func (p *Planner) build() (*graph.Graph, error) {
	return graph.NewBuilder().
		AddStage(StageValidate, graph.StageFunc(p.validate), graph.WithTargets(StageProfile, graph.End)).
		AddStage(StageProfile, graph.StageFunc(p.profile)).
		AddStage(StageOptimize, graph.StageFunc(p.optimize)).
		AddStage(StageResearch, graph.StageFunc(p.research)).
		AddStage(StageTools, graph.StageFunc(p.tools)).
		AddStage(StageReview, graph.StageFunc(p.review), graph.WithTargets(StageResearch, graph.End)).
		SetEntry(StageValidate).
		AddEdge(StageProfile, StageOptimize).
		AddEdge(StageOptimize, StageResearch).
		AddConditionalEdges(StageResearch, RouteResearch, map[string]string{
			OutcomeContinue: StageTools,
			OutcomeEnd:      StageReview,
		}).
		AddEdge(StageTools, StageResearch).
		Compile(func(o *graph.Options) {
			o.MaxSteps = p.opts.MaxSteps
			o.Logger = p.opts.Logger
			o.Hooks = append(o.Hooks, p.opts.Hooks...)
		})
}

// Graph exposes the compiled graph for introspection.
func (p *Planner) Graph() *graph.Graph { return p.graph }

// Run starts a new run seeded with msgs and returns the final state. The
// state is returned on error as well so callers can inspect partial progress.
func (p *Planner) Run(ctx context.Context, msgs []core.Message) (*core.State, error) {
	return p.RunState(ctx, core.NewState(msgs...))
}

// RunState drives an existing state through the graph.
func (p *Planner) RunState(ctx context.Context, s *core.State) (*core.State, error) {
	if core.CallLimiterFrom(ctx) == nil && p.opts.MaxModelCalls > 0 {
		ctx = core.WithCallLimiter(ctx, core.NewCallLimiter(p.opts.MaxModelCalls))
	}
	return p.graph.Run(ctx, s)
}

func (p *Planner) today() string {
	return p.opts.Clock().Format("2006-01-02")
}

// complete performs one completion call, charging it to the run's budget.
func (p *Planner) complete(ctx context.Context, stage string, req model.Request) (model.Response, error) {
	if err := p.charge(ctx); err != nil {
		return model.Response{}, err
	}

	start := time.Now()
	resp, err := model.Invoke(ctx, p.model, req)
	p.logCall(ctx, stage, start, resp.Usage, err)

	return resp, err
}

// completeStructured performs one structured completion call.
func (p *Planner) completeStructured(ctx context.Context, stage string, req model.Request, schema model.ResponseSchema) (map[string]any, error) {
	if err := p.charge(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	obj, err := model.InvokeStructured(ctx, p.model, req, schema)
	p.logCall(ctx, stage, start, nil, err)

	return obj, err
}

func (p *Planner) charge(ctx context.Context) error {
	if l := core.CallLimiterFrom(ctx); l != nil {
		return l.Increment()
	}
	return nil
}

func (p *Planner) logCall(ctx context.Context, stage string, start time.Time, usage *model.TokenUsage, err error) {
	fields := []any{
		"stage", stage,
		"model", p.model.Info().Name,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if usage != nil {
		fields = append(fields, "tokens", usage.TotalTokens)
	}
	if l := core.CallLimiterFrom(ctx); l != nil && l.Remaining() >= 0 {
		fields = append(fields, "calls_remaining", l.Remaining())
	}
	if err != nil {
		p.opts.Logger.Error("model.call.error", append(fields, "error", err.Error())...)
		return
	}
	p.opts.Logger.Debug("model.call", fields...)
}
