package planner

import (
	"github.com/hupe1980/tripgraph/core"
	"github.com/hupe1980/tripgraph/flow"
)

// Router outcomes after the research stage.
const (
	OutcomeContinue = "continue"
	OutcomeEnd      = "end"
)

// MaxRevisions caps how often review may send the itinerary back to research.
// With the initial pass, research runs at most MaxRevisions+1 times per run
// (tool loop re-entries aside).
const MaxRevisions = 2

// RouteResearch returns OutcomeContinue iff the last message carries pending
// tool calls, OutcomeEnd otherwise.
func RouteResearch(s *core.State) string {
	if flow.HasPendingCalls(s) {
		return OutcomeContinue
	}
	return OutcomeEnd
}

// revisionsExhausted is the iteration guard consulted by the review stage.
func revisionsExhausted(s *core.State) bool {
	return s.IterationCounter >= MaxRevisions
}
