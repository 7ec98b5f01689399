package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/tripgraph/core"
	"github.com/hupe1980/tripgraph/logging"
	"github.com/hupe1980/tripgraph/tool"
)

// ToolAuthor is the Author of tool result messages.
const ToolAuthor = "tools"

// ToolSet resolves tool names to implementations. *tool.Registry satisfies it.
type ToolSet interface {
	Lookup(name string) (tool.Tool, error)
}

// CallObserver is notified after every executed call.
type CallObserver func(name string, dur time.Duration, err error)

// DispatcherOptions configure a Dispatcher.
type DispatcherOptions struct {
	// MaxParallel bounds concurrent tool calls within a batch (default 4).
	MaxParallel int
	Logger      logging.Logger
	Observers   []CallObserver
}

// Dispatcher executes a batch of function calls. It guarantees:
//   - exactly one tool-role message per call, in request order
//   - unknown tools, tool errors and panics become error results, never run errors
//   - cancellation is checked before each call and after the batch
type Dispatcher struct {
	opts DispatcherOptions
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(optFns ...func(o *DispatcherOptions)) *Dispatcher {
	opts := DispatcherOptions{
		MaxParallel: 4,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxParallel < 1 {
		opts.MaxParallel = 1
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Dispatcher{opts: opts}
}

// Dispatch runs calls against tools and returns their result messages in
// request order. The error is non-nil only when ctx was cancelled.
func (d *Dispatcher) Dispatch(ctx context.Context, tools ToolSet, calls []core.FunctionCall) ([]core.Message, error) {
	results := make([]core.Message, len(calls))
	if len(calls) == 0 {
		return results, ctx.Err()
	}

	start := time.Now()

	var g errgroup.Group
	g.SetLimit(d.opts.MaxParallel)

	for i, fc := range calls {
		if err := ctx.Err(); err != nil {
			results[i] = core.NewFunctionResponseMessage(ToolAuthor, fc.ID, fc.Name, nil, err)
			continue
		}

		g.Go(func() error {
			results[i] = d.execute(ctx, tools, fc)
			return nil
		})
	}

	_ = g.Wait()

	d.opts.Logger.Debug(
		"tool.batch.complete",
		"count", len(calls),
		"parallelism", d.opts.MaxParallel,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return results, ctx.Err()
}

func (d *Dispatcher) execute(ctx context.Context, tools ToolSet, fc core.FunctionCall) core.Message {
	logger := d.opts.Logger
	start := time.Now()

	var (
		result any
		err    error
	)

	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	} else {
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = &panicError{tool: fc.Name, val: r, stack: debug.Stack()}
					logger.Error("tool.call.panic", "tool", fc.Name, "fc_id", fc.ID, "recover", fmt.Sprint(r))
				}
			}()
			result, err = callTool(ctx, tools, fc, logger)
		}()
	}

	dur := time.Since(start)

	if err != nil {
		logger.Warn("tool.call.failed", "tool", fc.Name, "fc_id", fc.ID, "duration_ms", dur.Milliseconds(), "error", err.Error())
	} else {
		logger.Info("tool.call.executed", "tool", fc.Name, "fc_id", fc.ID, "duration_ms", dur.Milliseconds())
	}

	for _, obs := range d.opts.Observers {
		obs(fc.Name, dur, err)
	}

	return core.NewFunctionResponseMessage(ToolAuthor, fc.ID, fc.Name, result, err)
}

func callTool(ctx context.Context, tools ToolSet, fc core.FunctionCall, logger logging.Logger) (any, error) {
	impl, err := tools.Lookup(fc.Name)
	if err != nil {
		return nil, tool.WrapError(fc.Name, tool.CodeNotFound, err)
	}

	args := map[string]any{}
	if fc.Arguments != "" {
		if err := json.Unmarshal([]byte(fc.Arguments), &args); err != nil {
			return nil, tool.WrapError(fc.Name, tool.CodeValidation, fmt.Errorf("invalid arguments: %w", err))
		}
	}

	return impl.Call(tool.NewContext(ctx, fc.ID, logger), args)
}

type panicError struct {
	tool  string
	val   any
	stack []byte
}

func (p *panicError) Error() string { return fmt.Sprintf("tool %s panicked: %v", p.tool, p.val) }
