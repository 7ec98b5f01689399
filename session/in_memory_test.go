package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tripgraph/core"
)

var _ Store = (*InMemoryStore)(nil)

func record(runID, sessionID, text string) *Record {
	return &Record{
		RunID:     runID,
		SessionID: sessionID,
		Status:    StatusCompleted,
		State:     core.NewState(core.NewUserMessage(text)),
	}
}

func TestInMemoryStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	require.NoError(t, s.Save(ctx, record("r1", "s1", "hello")))

	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.SessionID)
	assert.Equal(t, "hello", got.State.Messages[0].Text())

	_, err = s.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryStore_ReturnsClones(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	rec := record("r1", "s1", "hello")
	require.NoError(t, s.Save(ctx, rec))
	rec.State.Apply(core.Update{Messages: []core.Message{core.NewUserMessage("mutated")}})

	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	got.State.IterationCounter = 9

	again, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, again.State.Messages, 1)
	assert.Equal(t, 0, again.State.IterationCounter)
}

func TestInMemoryStore_Latest(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	require.NoError(t, s.Save(ctx, record("r1", "s1", "first")))
	require.NoError(t, s.Save(ctx, record("r2", "s1", "second")))
	require.NoError(t, s.Save(ctx, record("r3", "s2", "other")))

	got, err := s.Latest(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "r2", got.RunID)

	require.NoError(t, s.Delete(ctx, "r2"))
	_, err = s.Latest(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Latest(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryStore_Eviction(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore(func(o *InMemoryOptions) { o.MaxRuns = 2 })

	require.NoError(t, s.Save(ctx, record("r1", "s1", "a")))
	require.NoError(t, s.Save(ctx, record("r2", "s2", "b")))
	require.NoError(t, s.Save(ctx, record("r3", "s3", "c")))

	assert.Equal(t, 2, s.Len())
	_, err := s.Get(ctx, "r1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Latest(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryStore_RejectsMissingRunID(t *testing.T) {
	s := NewInMemoryStore()
	assert.Error(t, s.Save(context.Background(), &Record{}))
}
