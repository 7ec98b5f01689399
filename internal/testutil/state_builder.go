package testutil

import (
	"github.com/hupe1980/tripgraph/core"
)

// StateBuilder helps construct planning state with fluent chaining for tests.
// Example:
//
//	s := NewStateBuilder().User("Japan for 5 days").Valid(true).Build()
type StateBuilder struct {
	update   core.Update
	messages []core.Message
}

// NewStateBuilder creates a builder seeded like core.NewState.
func NewStateBuilder() *StateBuilder { return &StateBuilder{} }

// User appends a user text message (chainable).
func (b *StateBuilder) User(text string) *StateBuilder {
	b.messages = append(b.messages, core.NewUserMessage(text))
	return b
}

// Messages appends prebuilt messages (chainable).
func (b *StateBuilder) Messages(msgs ...core.Message) *StateBuilder {
	b.messages = append(b.messages, msgs...)
	return b
}

// Valid sets the validation flag (chainable).
func (b *StateBuilder) Valid(v bool) *StateBuilder { b.update.IsValid = core.Ptr(v); return b }

// Profile sets the traveler profile (chainable).
func (b *StateBuilder) Profile(p core.TravelerProfile) *StateBuilder {
	b.update.UserProfile = &p
	return b
}

// Itinerary sets the itinerary (chainable).
func (b *StateBuilder) Itinerary(it map[string]any) *StateBuilder {
	b.update.Itinerary = it
	return b
}

// Revisions sets the iteration counter (chainable).
func (b *StateBuilder) Revisions(n int) *StateBuilder {
	b.update.IterationCounter = core.Ptr(n)
	return b
}

// ToolPasses sets the run-wide tool pass counter (chainable).
func (b *StateBuilder) ToolPasses(n int) *StateBuilder {
	b.update.ToolPasses = core.Ptr(n)
	return b
}

// LoopPasses sets the tool pass counter of the current research round (chainable).
func (b *StateBuilder) LoopPasses(n int) *StateBuilder {
	b.update.LoopPasses = core.Ptr(n)
	return b
}

// Build returns a *core.State with the configured history and fields.
func (b *StateBuilder) Build() *core.State {
	s := core.NewState(b.messages...)
	s.Apply(b.update)
	return s
}
