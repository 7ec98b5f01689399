package graph

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hupe1980/tripgraph/core"
	"github.com/hupe1980/tripgraph/logging"
)

// DefaultMaxSteps bounds the number of stage executions per run.
const DefaultMaxSteps = 100

// Hooks observe stage execution. Either callback may be nil.
type Hooks struct {
	OnStageStart func(ctx context.Context, stage string, s *core.State)
	OnStageEnd   func(ctx context.Context, stage, next string, dur time.Duration, err error)
}

// Options configure a compiled Graph.
type Options struct {
	MaxSteps int
	Logger   logging.Logger
	Hooks    []Hooks
}

func defaultOptions() Options {
	return Options{
		MaxSteps: DefaultMaxSteps,
		Logger:   logging.NoOpLogger{},
	}
}

// Graph is a compiled, immutable stage graph. It is safe for concurrent use
// as long as each Run receives its own state.
type Graph struct {
	entry  string
	order  []string
	stages map[string]*stageSpec
	edges  map[string]string
	conds  map[string]*conditional
	opts   Options
}

// Run drives s from the entry stage until End. The same state pointer is
// returned, also on error, so callers can inspect partial progress.
func (g *Graph) Run(ctx context.Context, s *core.State) (*core.State, error) {
	logger := g.opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	current := g.entry

	for step := 0; current != End; step++ {
		if g.opts.MaxSteps > 0 && step >= g.opts.MaxSteps {
			logger.Error("graph.step_limit", "stage", current, "max_steps", g.opts.MaxSteps)
			return s, fmt.Errorf("%w: %d steps, next stage %q", ErrStepLimit, g.opts.MaxSteps, current)
		}

		if err := ctx.Err(); err != nil {
			return s, err
		}

		spec := g.stages[current]

		for _, h := range g.opts.Hooks {
			if h.OnStageStart != nil {
				h.OnStageStart(ctx, current, s)
			}
		}

		logger.Debug("graph.stage.start", "stage", current, "step", step)
		start := time.Now()

		cmd, err := spec.stage.Run(ctx, s)

		var next string
		if err == nil {
			s.Apply(cmd.Update)
			next, err = g.resolve(spec, cmd, s)
		} else {
			err = &StageError{Stage: current, Err: err}
		}

		dur := time.Since(start)

		for _, h := range g.opts.Hooks {
			if h.OnStageEnd != nil {
				h.OnStageEnd(ctx, current, next, dur, err)
			}
		}

		if err != nil {
			logger.Error("graph.stage.error", "stage", current, "duration_ms", dur.Milliseconds(), "error", err.Error())
			return s, err
		}

		logger.Debug("graph.stage.end", "stage", current, "next", next, "duration_ms", dur.Milliseconds())

		current = next
	}

	return s, nil
}

func (g *Graph) resolve(spec *stageSpec, cmd Command, s *core.State) (string, error) {
	if cmd.Goto != "" {
		if !slices.Contains(spec.targets, cmd.Goto) {
			return "", fmt.Errorf("%w: stage %q jumped to undeclared target %q", ErrUnknownStage, spec.name, cmd.Goto)
		}
		return cmd.Goto, nil
	}

	if to, ok := g.edges[spec.name]; ok {
		return to, nil
	}

	if c, ok := g.conds[spec.name]; ok {
		outcome := c.router(s)
		to, ok := c.mapping[outcome]
		if !ok {
			return "", fmt.Errorf("%w: stage %q router outcome %q is not mapped", ErrUnknownStage, spec.name, outcome)
		}
		return to, nil
	}

	return "", fmt.Errorf("%w: stage %q returned no successor", ErrUnknownStage, spec.name)
}

// Entry returns the entry stage name.
func (g *Graph) Entry() string { return g.entry }

// Stages returns stage names in registration order.
func (g *Graph) Stages() []string { return append([]string(nil), g.order...) }

// Edges lists every possible transition in a stable order.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, name := range g.order {
		for _, t := range g.stages[name].targets {
			out = append(out, Edge{From: name, To: t, Kind: EdgeGoto})
		}
		if to, ok := g.edges[name]; ok {
			out = append(out, Edge{From: name, To: to, Kind: EdgeFixed})
		}
		if c, ok := g.conds[name]; ok {
			for _, outcome := range sortedKeys(c.mapping) {
				out = append(out, Edge{From: name, To: c.mapping[outcome], Kind: EdgeConditional, Label: outcome})
			}
		}
	}
	return out
}

// Mermaid renders the graph as a Mermaid flowchart.
func (g *Graph) Mermaid() string {
	var b strings.Builder

	b.WriteString("flowchart TD\n")
	b.WriteString("    __start__([start])\n")
	for _, name := range g.order {
		fmt.Fprintf(&b, "    %s[%s]\n", name, name)
	}
	fmt.Fprintf(&b, "    %s([end])\n", End)
	fmt.Fprintf(&b, "    __start__ --> %s\n", g.entry)

	for _, e := range g.Edges() {
		switch e.Kind {
		case EdgeFixed:
			fmt.Fprintf(&b, "    %s --> %s\n", e.From, e.To)
		case EdgeConditional:
			fmt.Fprintf(&b, "    %s -- %s --> %s\n", e.From, e.Label, e.To)
		case EdgeGoto:
			fmt.Fprintf(&b, "    %s -.-> %s\n", e.From, e.To)
		}
	}

	return b.String()
}
