// Package redis provides a Redis backed session.Store.
//
// Each run is stored as one JSON document under "<prefix>run:<run id>" and
// each session keeps a pointer to its latest run under
// "<prefix>session:<session id>". Both keys share the configured TTL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/hupe1980/tripgraph/session"
)

// DefaultPrefix namespaces all keys written by the store.
const DefaultPrefix = "tripgraph:"

// Store implements session.Store on top of Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

var _ session.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the expiration of stored runs (0 = no expiration).
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New connects to a Redis server.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) runKey(runID string) string { return s.prefix + "run:" + runID }

func (s *Store) sessionKey(sessionID string) string { return s.prefix + "session:" + sessionID }

// Save persists rec and moves the session pointer to it.
func (s *Store) Save(ctx context.Context, rec *session.Record) error {
	if rec == nil || rec.RunID == "" {
		return errors.New("session: record without run id")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.runKey(rec.RunID), data, s.ttl)
	if rec.SessionID != "" {
		pipe.Set(ctx, s.sessionKey(rec.SessionID), rec.RunID, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}

	return nil
}

// Get loads a run record.
func (s *Store) Get(ctx context.Context, runID string) (*session.Record, error) {
	val, err := s.client.Get(ctx, s.runKey(runID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var rec session.Record
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}

	return &rec, nil
}

// Latest follows the session pointer to the newest run.
func (s *Store) Latest(ctx context.Context, sessionID string) (*session.Record, error) {
	runID, err := s.client.Get(ctx, s.sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	return s.Get(ctx, runID)
}

// Delete removes a run and, if it is the latest of its session, the pointer.
func (s *Store) Delete(ctx context.Context, runID string) error {
	rec, err := s.Get(ctx, runID)
	if errors.Is(err, session.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.runKey(runID))

	if rec.SessionID != "" {
		latest, err := s.client.Get(ctx, s.sessionKey(rec.SessionID)).Result()
		if err == nil && latest == runID {
			pipe.Del(ctx, s.sessionKey(rec.SessionID))
		}
	}

	_, err = pipe.Exec(ctx)
	return err
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
