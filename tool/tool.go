// Package tool implements the tool calling subsystem used by the research
// stage: named capabilities with a JSON schema, validated arguments and
// uniform error codes.
package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/tripgraph/internal/util"
	"github.com/hupe1980/tripgraph/logging"
)

// Tool is a named capability the model may invoke during research.
//
// Implementations must be safe for concurrent use; the dispatcher may run
// several calls of the same tool at once.
type Tool interface {
	// Name returns the unique identifier offered to the model (snake_case).
	Name() string

	// Description tells the model when and how to use the tool.
	Description() string

	// Parameters returns the JSON schema of the expected arguments.
	Parameters() map[string]any

	// Call executes the tool with decoded arguments.
	Call(tc *Context, args map[string]any) (any, error)
}

// Context carries per-call information into a tool.
type Context struct {
	ctx    context.Context
	callID string
	logger logging.Logger
}

// NewContext creates a tool context. A nil logger is replaced by a no-op one.
func NewContext(ctx context.Context, callID string, logger logging.Logger) *Context {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Context{ctx: ctx, callID: callID, logger: logger}
}

// Context returns the cancellation context of the run.
func (c *Context) Context() context.Context { return c.ctx }

// FunctionCallID returns the provider id of the call being served.
func (c *Context) FunctionCallID() string { return c.callID }

// Logger returns the run-scoped logger.
func (c *Context) Logger() logging.Logger { return c.logger }

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// Error codes carried by ToolError.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeExecution  = "EXECUTION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodePanic      = "PANIC"
)

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *ToolError) Unwrap() error { return e.cause }

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}

// WrapError converts err into a *ToolError with the given code, keeping err
// reachable through errors.Is / errors.As.
func WrapError(tool, code string, err error) *ToolError {
	return &ToolError{Tool: tool, Message: err.Error(), Code: code, cause: err}
}
