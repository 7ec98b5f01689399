package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallLimiter(t *testing.T) {
	l := NewCallLimiter(2)
	assert.NoError(t, l.Increment())
	assert.NoError(t, l.Increment())
	assert.Equal(t, 0, l.Remaining())

	err := l.Increment()
	assert.True(t, errors.Is(err, ErrCallBudgetExceeded))
	assert.Equal(t, 3, l.Count())
	assert.Equal(t, 0, l.Remaining())

	unlimited := NewCallLimiter(0)
	for i := 0; i < 10; i++ {
		assert.NoError(t, unlimited.Increment())
	}
	assert.Equal(t, -1, unlimited.Remaining())
}

func TestCallLimiter_Context(t *testing.T) {
	assert.Nil(t, CallLimiterFrom(context.Background()))

	l := NewCallLimiter(1)
	ctx := WithCallLimiter(context.Background(), l)
	assert.Same(t, l, CallLimiterFrom(ctx))
}
