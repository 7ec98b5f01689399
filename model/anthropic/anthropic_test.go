package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tripgraph/core"
	"github.com/hupe1980/tripgraph/model"
)

func TestToMessages_ToolResultsTravelInUserTurn(t *testing.T) {
	msgs := toMessages([]core.Content{
		{Role: core.RoleSystem, Parts: []core.Part{core.TextPart{Text: "ignored here"}}},
		{Role: core.RoleUser, Parts: []core.Part{core.TextPart{Text: "5 days in Japan"}}},
		{Role: core.RoleAssistant, Parts: []core.Part{
			core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "tu_1", Name: "search", Arguments: `{"q":"kyoto"}`}},
			core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: "tu_2", Name: "places", Arguments: "not json"}},
		}},
		{Role: core.RoleTool, Parts: []core.Part{core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{ID: "tu_1", Name: "search", Response: "ok"}}}},
		{Role: core.RoleTool, Parts: []core.Part{core.FunctionResponsePart{FunctionResponse: core.FunctionResponse{ID: "tu_2", Name: "places", Error: "quota"}}}},
	})

	require.Len(t, msgs, 3)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[1].Role)
	require.Len(t, msgs[1].Content, 2)
	require.NotNil(t, msgs[1].Content[1].OfToolUse)
	assert.Equal(t, map[string]any{"raw": "not json"}, msgs[1].Content[1].OfToolUse.Input)

	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[2].Role)
	require.Len(t, msgs[2].Content, 2)
	require.NotNil(t, msgs[2].Content[0].OfToolResult)
	assert.Equal(t, "tu_1", msgs[2].Content[0].OfToolResult.ToolUseID)
	assert.Equal(t, "tu_2", msgs[2].Content[1].OfToolResult.ToolUseID)
}

func TestSystemBlocks(t *testing.T) {
	blocks := systemBlocks(model.Request{
		Instructions: "plan trips",
		Contents:     []core.Content{{Role: core.RoleSystem, Parts: []core.Part{core.TextPart{Text: "be brief"}}}},
	})
	require.Len(t, blocks, 2)
	assert.Equal(t, "plan trips", blocks[0].Text)
	assert.Equal(t, "be brief", blocks[1].Text)
}

func TestGenerate_StructuredOutputAsDataPart(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "id": "msg_1", "type": "message", "role": "assistant", "model": "claude-sonnet-4-20250514",
  "content": [{"type": "tool_use", "id": "tu_9", "name": "traveler_profile", "input": {"destination": "Japan", "number_of_days": 5}}],
  "stop_reason": "tool_use", "stop_sequence": null,
  "usage": {"input_tokens": 12, "output_tokens": 8}
}`))
	}))
	defer srv.Close()

	client := anthropic.NewClient(option.WithBaseURL(srv.URL+"/"), option.WithAPIKey("test"), option.WithMaxRetries(0))
	m := NewModelFromClient(&client)

	resp, err := model.Invoke(context.Background(), m, model.Request{
		Instructions: "Fill in the profile.",
		Contents:     []core.Content{{Role: core.RoleUser, Parts: []core.Part{core.TextPart{Text: "Japan for 5 days"}}}},
		Schema: &model.ResponseSchema{
			Name:   "traveler_profile",
			Schema: map[string]any{"type": "object", "properties": map[string]any{"destination": map[string]any{"type": "string"}}, "required": []string{"destination"}},
		},
	})
	require.NoError(t, err)

	require.Len(t, resp.Content.Parts, 1)
	data, ok := resp.Content.Parts[0].(core.DataPart)
	require.True(t, ok)
	assert.Equal(t, "Japan", data.Data["destination"])
	assert.Equal(t, "tool_use", resp.FinishReason)
	assert.Equal(t, 20, resp.Usage.TotalTokens)

	choice := captured["tool_choice"].(map[string]any)
	assert.Equal(t, "tool", choice["type"])
	assert.Equal(t, "traveler_profile", choice["name"])
	assert.Len(t, captured["tools"], 1)
}

func TestInfo(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "test" })
	assert.Equal(t, "anthropic", m.Info().Provider)
	assert.True(t, m.Info().SupportsTools)
}
