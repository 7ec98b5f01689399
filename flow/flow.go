// Package flow provides the tool invocation loop machinery used by the
// planner: detection of pending function calls on the latest message and a
// dispatcher that executes a batch of calls against a closed tool set.
package flow

import "github.com/hupe1980/tripgraph/core"

// HasPendingCalls reports whether the most recent message requests at least
// one tool call. It is the routing predicate that keeps the research loop
// going.
func HasPendingCalls(s *core.State) bool {
	last, ok := s.LastMessage()
	if !ok {
		return false
	}
	return len(last.GetFunctionCalls()) > 0
}

// PendingCalls returns the function calls of the most recent message.
func PendingCalls(s *core.State) []core.FunctionCall {
	last, ok := s.LastMessage()
	if !ok {
		return nil
	}
	return last.GetFunctionCalls()
}
