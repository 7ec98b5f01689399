package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/tripgraph/core"
)

// End is the terminal sentinel. Reaching it stops the run.
const End = "__end__"

var (
	// ErrInvalidGraph is returned by Compile for malformed graphs.
	ErrInvalidGraph = errors.New("invalid graph")

	// ErrUnknownStage is returned by Run when a stage names an undeclared
	// successor or a router yields an unmapped outcome.
	ErrUnknownStage = errors.New("unknown stage")

	// ErrStepLimit is returned by Run when the step budget is exhausted.
	ErrStepLimit = errors.New("step limit exceeded")
)

// Command is the result of one stage execution.
type Command struct {
	// Update is merged into the session state.
	Update core.Update

	// Goto names the next stage. Empty means "consult the edge table".
	Goto string
}

// Stage is one unit of work in the graph.
type Stage interface {
	Run(ctx context.Context, s *core.State) (Command, error)
}

// StageFunc adapts a function to the Stage interface.
type StageFunc func(ctx context.Context, s *core.State) (Command, error)

// Run implements Stage.
func (f StageFunc) Run(ctx context.Context, s *core.State) (Command, error) { return f(ctx, s) }

// Router picks an outcome label from the current state. Routers must be pure.
type Router func(s *core.State) string

// StageError wraps an error returned by a stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage %q: %v", e.Stage, e.Err) }

// Unwrap returns the stage's error.
func (e *StageError) Unwrap() error { return e.Err }

// EdgeKind distinguishes how a transition is taken.
type EdgeKind int

const (
	// EdgeFixed is an unconditional edge.
	EdgeFixed EdgeKind = iota
	// EdgeConditional is selected by a router outcome.
	EdgeConditional
	// EdgeGoto is a declared explicit-goto target.
	EdgeGoto
)

// Edge describes one possible transition, for introspection.
type Edge struct {
	From  string
	To    string
	Kind  EdgeKind
	Label string // router outcome for conditional edges
}
