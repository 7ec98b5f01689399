package core

import (
	"context"
	"fmt"
	"sync"
)

// CallLimiter enforces a maximum number of completion-service calls per run.
type CallLimiter struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewCallLimiter creates a new limiter with a max number of calls.
// If max == 0, unlimited calls are allowed.
func NewCallLimiter(max int) *CallLimiter {
	return &CallLimiter{max: max}
}

// Increment increases the call counter and returns an error wrapping
// ErrCallBudgetExceeded if the limit is exceeded.
func (cl *CallLimiter) Increment() error {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	cl.count++
	if cl.max > 0 && cl.count > cl.max {
		return fmt.Errorf("%w: %d", ErrCallBudgetExceeded, cl.max)
	}

	return nil
}

// Count returns the current number of calls made.
func (cl *CallLimiter) Count() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	return cl.count
}

// Remaining returns how many calls are left before hitting the limit, or -1
// when the limiter is unlimited. It never drops below zero.
func (cl *CallLimiter) Remaining() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.max == 0 {
		return -1
	}

	return max(cl.max-cl.count, 0)
}

type limiterKey struct{}

// WithCallLimiter attaches a limiter to ctx for the duration of one run.
func WithCallLimiter(ctx context.Context, l *CallLimiter) context.Context {
	return context.WithValue(ctx, limiterKey{}, l)
}

// CallLimiterFrom returns the limiter attached to ctx, or nil.
func CallLimiterFrom(ctx context.Context) *CallLimiter {
	l, _ := ctx.Value(limiterKey{}).(*CallLimiter)
	return l
}
