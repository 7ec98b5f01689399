package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/tripgraph/core"
)

// ErrScriptExhausted is returned by ScriptedModel when no reply is queued.
var ErrScriptExhausted = errors.New("scripted model: no reply queued")

// Reply is one canned answer of a ScriptedModel.
type Reply struct {
	Response Response
	Err      error
}

// TextReply answers with plain assistant text.
func TextReply(text string) Reply {
	return Reply{Response: Response{
		Content:      core.Content{Role: core.RoleAssistant, Parts: []core.Part{core.TextPart{Text: text}}},
		FinishReason: "stop",
	}}
}

// JSONReply answers with v encoded as JSON text, the way providers return
// structured output.
func JSONReply(v any) Reply {
	b, err := json.Marshal(v)
	if err != nil {
		return ErrorReply(err)
	}
	return TextReply(string(b))
}

// ToolCallReply answers with one function call part per call.
func ToolCallReply(calls ...core.FunctionCall) Reply {
	parts := make([]core.Part, 0, len(calls))
	for _, c := range calls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: c})
	}
	return Reply{Response: Response{
		Content:      core.Content{Role: core.RoleAssistant, Parts: parts},
		FinishReason: "tool_calls",
	}}
}

// ErrorReply fails the call with err.
func ErrorReply(err error) Reply { return Reply{Err: err} }

// ScriptedModel is a deterministic in‑memory Model for tests & examples.
// Replies are queued per response schema name; requests without a schema use
// the empty key. Every request is recorded for later assertions.
type ScriptedModel struct {
	mu       sync.Mutex
	info     Info
	queues   map[string][]Reply
	fallback *Reply
	requests []Request
}

// NewScriptedModel constructs an empty ScriptedModel.
func NewScriptedModel() *ScriptedModel {
	return &ScriptedModel{
		info:   Info{Name: "scripted", Provider: "scripted", SupportsTools: true},
		queues: make(map[string][]Reply),
	}
}

// On queues replies for requests carrying the named response schema
// ("" for free text / tool calling requests). It returns the model for chaining.
func (m *ScriptedModel) On(schemaName string, replies ...Reply) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queues[schemaName] = append(m.queues[schemaName], replies...)
	return m
}

// Otherwise sets a reply used whenever a queue is empty.
func (m *ScriptedModel) Otherwise(r Reply) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = &r
	return m
}

// Requests returns a copy of all recorded requests in call order.
func (m *ScriptedModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestsFor returns the recorded requests for one schema key.
func (m *ScriptedModel) RequestsFor(schemaName string) []Request {
	var out []Request
	for _, r := range m.Requests() {
		if schemaKey(r) == schemaName {
			out = append(out, r)
		}
	}
	return out
}

func schemaKey(req Request) string {
	if req.Schema == nil {
		return ""
	}
	return req.Schema.Name
}

func (m *ScriptedModel) next(req Request) (Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	key := schemaKey(req)
	q := m.queues[key]
	if len(q) == 0 {
		if m.fallback != nil {
			return *m.fallback, nil
		}
		return Reply{}, fmt.Errorf("%w (schema %q)", ErrScriptExhausted, key)
	}
	m.queues[key] = q[1:]
	return q[0], nil
}

// Generate implements Model by emitting the next queued reply.
func (m *ScriptedModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)

		if err := ctx.Err(); err != nil {
			errCh <- err
			return
		}

		r, err := m.next(req)
		if err != nil {
			errCh <- err
			return
		}
		if r.Err != nil {
			errCh <- r.Err
			return
		}
		respCh <- r.Response
	}()

	return respCh, errCh
}

// Info implements Model interface.
func (m *ScriptedModel) Info() Info { return m.info }
