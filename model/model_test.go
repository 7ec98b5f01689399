package model

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/tripgraph/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var verdictSchema = ResponseSchema{
	Name: "verdict",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"ok":   map[string]any{"type": "boolean"},
			"note": map[string]any{"type": "string"},
		},
		"required": []string{"ok"},
	},
}

func TestInvoke_ReturnsFinalResponse(t *testing.T) {
	m := NewScriptedModel().On("", TextReply("hello"))

	resp, err := Invoke(context.Background(), m, Request{})
	require.NoError(t, err)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Len(t, m.Requests(), 1)
}

func TestInvoke_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	m := NewScriptedModel().On("", ErrorReply(boom))

	_, err := Invoke(context.Background(), m, Request{})
	assert.ErrorIs(t, err, boom)
}

func TestInvoke_ScriptExhausted(t *testing.T) {
	_, err := Invoke(context.Background(), NewScriptedModel(), Request{})
	assert.ErrorIs(t, err, ErrScriptExhausted)
}

func TestInvoke_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Invoke(ctx, NewScriptedModel().On("", TextReply("x")), Request{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInvokeStructured_Valid(t *testing.T) {
	m := NewScriptedModel().On("verdict", JSONReply(map[string]any{"ok": true, "note": "fine"}))

	obj, err := InvokeStructured(context.Background(), m, Request{}, verdictSchema)
	require.NoError(t, err)
	assert.Equal(t, true, obj["ok"])

	reqs := m.RequestsFor("verdict")
	require.Len(t, reqs, 1)
	assert.NotNil(t, reqs[0].Schema)
}

func TestInvokeStructured_Malformed(t *testing.T) {
	cases := map[string]Reply{
		"not json":         TextReply("certainly! here you go"),
		"missing required": JSONReply(map[string]any{"note": "x"}),
		"wrong type":       JSONReply(map[string]any{"ok": "yes"}),
	}

	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			m := NewScriptedModel().On("verdict", reply)
			_, err := InvokeStructured(context.Background(), m, Request{}, verdictSchema)
			assert.ErrorIs(t, err, core.ErrMalformedOutput)
		})
	}
}

func TestStructuredPayload_PrefersDataPart(t *testing.T) {
	obj, err := StructuredPayload(core.Content{Parts: []core.Part{
		core.TextPart{Text: "ignored"},
		core.DataPart{Data: map[string]any{"ok": true}},
	}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ok": true}, obj)
}

func TestParseJSONObject(t *testing.T) {
	obj, err := ParseJSONObject("Here is the plan:\n```json\n{\"destination\": \"Ella\"}\n```\nEnjoy!")
	require.NoError(t, err)
	assert.Equal(t, "Ella", obj["destination"])

	obj, err = ParseJSONObject(`prefix {"a": {"b": 1}} suffix`)
	require.NoError(t, err)
	assert.Contains(t, obj, "a")

	_, err = ParseJSONObject("no object at all")
	assert.Error(t, err)
}

func TestFunctionResponseText(t *testing.T) {
	assert.Equal(t, "plain", FunctionResponseText(core.FunctionResponse{Response: "plain"}))
	assert.Equal(t, `{"n":1}`, FunctionResponseText(core.FunctionResponse{Response: map[string]int{"n": 1}}))
	assert.Equal(t, `{"error":"boom"}`, FunctionResponseText(core.FunctionResponse{Response: "ignored", Error: "boom"}))
	assert.Equal(t, "{}", FunctionResponseText(core.FunctionResponse{}))
}
