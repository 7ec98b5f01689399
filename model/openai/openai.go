// Package openai implements model.Model on top of the OpenAI Chat Completions
// API. It supports tool calling, streaming and JSON schema constrained output.
package openai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/tripgraph/core"
	"github.com/hupe1980/tripgraph/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// pendingCall accumulates streamed tool call deltas by index.
type pendingCall struct{ id, name, args string }

// Options configure the OpenAI model adapter.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string // Empty falls back to OPENAI_API_KEY
	BaseURL             string
}

// Model adapts the OpenAI Chat Completions API to model.Model.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel creates a model backed by a fresh OpenAI client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var reqOpts []option.RequestOption
	if opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	client := openai.NewClient(reqOpts...)
	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a model from an existing client.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0,
		MaxCompletionTokens: 4096,
	}
}

// Generate implements model.Model.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		params := m.buildParams(req, toMessages(req))
		if req.Stream {
			m.stream(ctx, params, out, errCh)
			return
		}
		m.complete(ctx, params, out, errCh)
	}()

	return out, errCh
}

// toMessages converts the normalized request into chat messages. Tool results
// are attached directly after the assistant turn that requested them; orphans
// are flushed at the end in first-seen order.
func toMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	results := map[string]string{}
	var order []string
	for _, c := range req.Contents {
		if c.Role != core.RoleTool {
			continue
		}
		for _, p := range c.Parts {
			fr, ok := p.(core.FunctionResponsePart)
			if !ok || fr.FunctionResponse.ID == "" {
				continue
			}
			if _, seen := results[fr.FunctionResponse.ID]; seen {
				continue
			}
			results[fr.FunctionResponse.ID] = model.FunctionResponseText(fr.FunctionResponse)
			order = append(order, fr.FunctionResponse.ID)
		}
	}

	var msgs []openai.ChatCompletionMessageParamUnion
	if req.Instructions != "" {
		msgs = append(msgs, openai.SystemMessage(req.Instructions))
	}

	for _, c := range req.Contents {
		text := contentText(c)
		switch c.Role {
		case core.RoleTool:
			continue
		case core.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(text))
		case core.RoleUser:
			msgs = append(msgs, openai.UserMessage(text))
		case core.RoleAssistant:
			calls := toolCalls(c)
			if len(calls) == 0 {
				if text != "" {
					msgs = append(msgs, openai.AssistantMessage(text))
				}
				continue
			}
			asst := &openai.ChatCompletionAssistantMessageParam{ToolCalls: calls}
			if text != "" {
				asst.Content.OfString = openai.String(text)
			}
			msgs = append(msgs, openai.ChatCompletionMessageParamUnion{OfAssistant: asst})
			for _, tc := range calls {
				if res, ok := results[tc.ID]; ok {
					msgs = append(msgs, openai.ToolMessage(res, tc.ID))
					delete(results, tc.ID)
				}
			}
		default:
			if text != "" {
				msgs = append(msgs, openai.UserMessage(text))
			}
		}
	}

	for _, id := range order {
		if res, ok := results[id]; ok {
			msgs = append(msgs, openai.ToolMessage(res, id))
		}
	}

	return msgs
}

func contentText(c core.Content) string {
	var b strings.Builder
	for _, p := range c.Parts {
		if tp, ok := p.(core.TextPart); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}

func toolCalls(c core.Content) []openai.ChatCompletionMessageToolCallParam {
	var calls []openai.ChatCompletionMessageToolCallParam
	for _, p := range c.Parts {
		fc, ok := p.(core.FunctionCallPart)
		if !ok {
			continue
		}
		calls = append(calls, openai.ChatCompletionMessageToolCallParam{
			ID: fc.FunctionCall.ID,
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      fc.FunctionCall.Name,
				Arguments: fc.FunctionCall.Arguments,
			},
		})
	}
	return calls
}

// buildParams assembles request parameters: tools when offered, otherwise a
// JSON schema response format when the caller asked for structured output.
func (m *Model) buildParams(req model.Request, msgs []openai.ChatCompletionMessageParamUnion) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages:            msgs,
		Model:               m.opts.Model,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}

	if req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        req.Schema.Name,
					Description: openai.String(req.Schema.Description),
					Schema:      req.Schema.Schema,
					Strict:      openai.Bool(false),
				},
			},
		}
	}

	if len(req.Tools) > 0 {
		tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
		for i, td := range req.Tools {
			tools[i] = openai.ChatCompletionToolParam{
				Function: openai.FunctionDefinitionParam{
					Name:        td.Function.Name,
					Description: openai.String(td.Function.Description),
					Parameters:  td.Function.Parameters,
				},
			}
		}
		params.Tools = tools
	}

	return params
}

// stream forwards text and tool call deltas as partial responses and emits a
// final aggregated response once a finish reason arrives.
func (m *Model) stream(ctx context.Context, params openai.ChatCompletionNewParams, out chan<- model.Response, errCh chan<- error) {
	s := m.client.Chat.Completions.NewStreaming(ctx, params)
	defer s.Close()

	var (
		text    strings.Builder
		pending = map[int64]*pendingCall{}
		usage   *model.TokenUsage
		finish  string
	)

	for s.Next() {
		chunk := s.Current()
		if chunk.Usage.TotalTokens > 0 {
			usage = toUsage(chunk.Usage)
		}
		for _, ch := range chunk.Choices {
			if ch.Delta.Content != "" {
				text.WriteString(ch.Delta.Content)
				out <- model.Response{
					Partial: true,
					Content: core.Content{Role: core.RoleAssistant, Parts: []core.Part{core.TextPart{Text: ch.Delta.Content}}},
				}
			}
			for _, tc := range ch.Delta.ToolCalls {
				pc, ok := pending[tc.Index]
				if !ok {
					pc = &pendingCall{}
					pending[tc.Index] = pc
				}
				if tc.ID != "" {
					pc.id = tc.ID
				}
				if tc.Function.Name != "" {
					pc.name = tc.Function.Name
				}
				pc.args += tc.Function.Arguments
			}
			if ch.FinishReason != "" {
				finish = ch.FinishReason
			}
		}
	}

	if err := s.Err(); err != nil {
		errCh <- fmt.Errorf("openai stream: %w", err)
		return
	}

	parts := make([]core.Part, 0, len(pending)+1)
	if text.Len() > 0 {
		parts = append(parts, core.TextPart{Text: text.String()})
	}

	idx := make([]int64, 0, len(pending))
	for i := range pending {
		idx = append(idx, i)
	}
	sort.Slice(idx, func(a, b int) bool { return idx[a] < idx[b] })

	for _, i := range idx {
		pc := pending[i]
		parts = append(parts, core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: pc.id, Name: pc.name, Arguments: pc.args}})
	}

	out <- model.Response{
		Content:      core.Content{Role: core.RoleAssistant, Parts: parts},
		FinishReason: finish,
		Usage:        usage,
	}
}

func (m *Model) complete(ctx context.Context, params openai.ChatCompletionNewParams, out chan<- model.Response, errCh chan<- error) {
	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		errCh <- fmt.Errorf("openai: %w", err)
		return
	}
	if len(resp.Choices) == 0 {
		errCh <- fmt.Errorf("openai: %w", model.ErrNoResponse)
		return
	}

	choice := resp.Choices[0]
	parts := make([]core.Part, 0, len(choice.Message.ToolCalls)+1)
	if choice.Message.Content != "" {
		parts = append(parts, core.TextPart{Text: choice.Message.Content})
	}
	for _, tc := range choice.Message.ToolCalls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: core.FunctionCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}})
	}

	out <- model.Response{
		ID:           resp.ID,
		Content:      core.Content{Role: core.RoleAssistant, Parts: parts},
		FinishReason: choice.FinishReason,
		Usage:        toUsage(resp.Usage),
	}
}

func toUsage(u openai.CompletionUsage) *model.TokenUsage {
	return &model.TokenUsage{
		PromptTokens:     int(u.PromptTokens),
		CompletionTokens: int(u.CompletionTokens),
		TotalTokens:      int(u.TotalTokens),
	}
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "openai", SupportsTools: true}
}
