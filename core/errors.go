package core

import "errors"

// ErrMalformedOutput is returned when a structured completion does not match
// the requested schema. It is fatal for the current run.
var ErrMalformedOutput = errors.New("malformed model output")

// ErrToolNotFound is recorded (never returned from a run) when the model
// requests a tool that is not registered.
var ErrToolNotFound = errors.New("tool not found")

// ErrCallBudgetExceeded is returned when a run exhausts its completion-call budget.
var ErrCallBudgetExceeded = errors.New("model call budget exceeded")
