// Package tripgraph provides a high-level façade over the travel planning
// graph and its supporting services (run store, metrics and logging).
// Most applications interact with this package by:
//  1. Creating a TripGraph via New() or NewFromConfig()
//  2. Calling Run with a session id and the traveler's new messages
//  3. Looking up finished runs with Get
//
// Runs of the same session continue the conversation: the user and assistant
// text turns of the session's latest run are replayed ahead of the new ones,
// so a traveler can answer a clarifying question from the validation stage.
package tripgraph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/tripgraph/core"
	"github.com/hupe1980/tripgraph/graph"
	"github.com/hupe1980/tripgraph/logging"
	"github.com/hupe1980/tripgraph/metrics"
	"github.com/hupe1980/tripgraph/model"
	"github.com/hupe1980/tripgraph/planner"
	"github.com/hupe1980/tripgraph/session"
)

// ApologyMessage is appended to the conversation when a run fails on
// malformed model output.
const ApologyMessage = "Sorry, something went wrong while planning your trip. Please try again."

// ApologyAuthor is the author of the apology message.
const ApologyAuthor = "tripgraph"

// DefaultMaxConcurrentRuns bounds simultaneous runs when unset.
const DefaultMaxConcurrentRuns = 10

// Options configures the TripGraph instance.
type Options struct {
	// Store persists finished runs (defaults to an in-memory store).
	Store session.Store

	// MaxConcurrentRuns limits runs executing at once. Excess callers wait
	// until a slot frees up or their context ends.
	MaxConcurrentRuns int

	// RunTimeout bounds a single run (0 = no timeout beyond ctx).
	RunTimeout time.Duration

	// Metrics, if set, is fed with stage, tool and run outcomes. Tool metrics
	// need the collector's ToolObserver on the planner's dispatcher.
	Metrics *metrics.Collector

	// Planner options applied after the façade's own.
	Planner []func(o *planner.Options)

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// TripGraph is the high-level façade aggregating the planner and services.
type TripGraph struct {
	opts    Options
	planner *planner.Planner
	sem     chan struct{}

	mu     sync.Mutex
	active map[string]context.CancelFunc
}

// New creates a TripGraph around m. Any unset service is initialized with an
// in-memory implementation.
func New(m model.Model, optFns ...func(o *Options)) (*TripGraph, error) {
	opts := Options{
		MaxConcurrentRuns: DefaultMaxConcurrentRuns,
		Logger:            logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Store == nil {
		opts.Store = session.NewInMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.MaxConcurrentRuns < 1 {
		opts.MaxConcurrentRuns = DefaultMaxConcurrentRuns
	}

	plannerOpts := append([]func(o *planner.Options){func(o *planner.Options) {
		o.Logger = opts.Logger
		if opts.Metrics != nil {
			o.Hooks = append(o.Hooks, opts.Metrics.GraphHooks())
		}
	}}, opts.Planner...)

	p, err := planner.New(m, plannerOpts...)
	if err != nil {
		return nil, err
	}

	return &TripGraph{
		opts:    opts,
		planner: p,
		sem:     make(chan struct{}, opts.MaxConcurrentRuns),
		active:  make(map[string]context.CancelFunc),
	}, nil
}

// Graph exposes the compiled planning graph.
func (t *TripGraph) Graph() *graph.Graph { return t.planner.Graph() }

// Store returns the run store.
func (t *TripGraph) Store() session.Store { return t.opts.Store }

// Run plans a trip for the session. An empty sessionID starts a new
// session. The returned record carries the final state also when err is
// non-nil; if the run failed on malformed model output, the state ends with
// ApologyMessage.
func (t *TripGraph) Run(ctx context.Context, sessionID string, msgs []core.Message) (*session.Record, error) {
	if len(msgs) == 0 {
		return nil, errors.New("tripgraph: at least one message is required")
	}

	select {
	case t.sem <- struct{}{}:
		defer func() { <-t.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if sessionID == "" {
		sessionID = core.NewID()
	}

	rec := &session.Record{
		RunID:     core.NewID(),
		SessionID: sessionID,
		CreatedAt: time.Now().UTC(),
	}

	history, err := t.history(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := t.runContext(ctx)
	defer cancel()

	t.track(rec.RunID, cancel)
	defer t.untrack(rec.RunID)

	logger := logging.With(t.opts.Logger, "session_id", sessionID, "run_id", rec.RunID)
	logger.Info("run.start", "history", len(history))

	state, runErr := t.planner.Run(runCtx, append(history, msgs...))

	if errors.Is(runErr, core.ErrMalformedOutput) {
		state.Apply(core.Update{Messages: []core.Message{core.NewAssistantMessage(ApologyAuthor, ApologyMessage)}})
	}

	rec.State = state
	rec.Status = session.StatusCompleted
	if runErr != nil {
		rec.Status = session.StatusFailed
		rec.Error = runErr.Error()
		logger.Error("run.error", "error", runErr.Error())
	} else {
		logger.Info("run.end", "valid", state.IsValid, "revisions", state.IterationCounter, "tool_passes", state.ToolPasses)
	}

	if t.opts.Metrics != nil {
		t.opts.Metrics.ObserveRun(state, runErr)
	}

	// Persist even if the caller went away; the run already happened.
	if err := t.opts.Store.Save(context.WithoutCancel(ctx), rec); err != nil {
		return rec, errors.Join(runErr, fmt.Errorf("tripgraph: save run: %w", err))
	}

	return rec, runErr
}

// Get returns a stored run.
func (t *TripGraph) Get(ctx context.Context, runID string) (*session.Record, error) {
	return t.opts.Store.Get(ctx, runID)
}

// Stop cancels an active run. It reports whether the run was found.
func (t *TripGraph) Stop(runID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cancel, ok := t.active[runID]
	if ok {
		cancel()
	}
	return ok
}

// ActiveRuns returns the ids of runs in flight.
func (t *TripGraph) ActiveRuns() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]string, 0, len(t.active))
	for id := range t.active {
		ids = append(ids, id)
	}
	return ids
}

func (t *TripGraph) history(ctx context.Context, sessionID string) ([]core.Message, error) {
	prev, err := t.opts.Store.Latest(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tripgraph: load session: %w", err)
	}
	if prev.State == nil {
		return nil, nil
	}
	return conversation(prev.State.Messages), nil
}

// FinalReply is the text shown to the traveler: the clarifying question of
// an invalid request, the apology of a failed run or the final research
// answer. Review feedback and tool traffic are skipped.
func FinalReply(s *core.State) string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		m := s.Messages[i]
		if m.Role() != core.RoleAssistant || m.Author == planner.StageReview || len(m.GetFunctionCalls()) > 0 {
			continue
		}
		if text := strings.TrimSpace(m.Text()); text != "" {
			return text
		}
	}
	return ""
}

// conversation keeps the user and assistant text turns of a previous run.
// Tool traffic is dropped so a replay never starts with dangling calls, and
// reviewer feedback and apologies never reach the next run's stages.
func conversation(msgs []core.Message) []core.Message {
	out := make([]core.Message, 0, len(msgs))
	for _, m := range msgs {
		switch {
		case m.Author == planner.StageReview || m.Author == ApologyAuthor:
		case m.Role() == core.RoleUser:
			out = append(out, m)
		case m.Role() == core.RoleAssistant && len(m.GetFunctionCalls()) == 0 && m.Text() != "":
			out = append(out, m)
		}
	}
	return out
}

func (t *TripGraph) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.opts.RunTimeout > 0 {
		return context.WithTimeout(ctx, t.opts.RunTimeout)
	}
	return context.WithCancel(ctx)
}

func (t *TripGraph) track(runID string, cancel context.CancelFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active[runID] = cancel
}

func (t *TripGraph) untrack(runID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.active, runID)
}
