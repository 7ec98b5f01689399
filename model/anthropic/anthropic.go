// Package anthropic implements model.Model on top of the Anthropic Messages API.
//
// Structured output is requested by offering a single tool shaped like the
// response schema and forcing the model to call it; the tool input is returned
// as a core.DataPart.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"github.com/hupe1980/tripgraph/core"
	"github.com/hupe1980/tripgraph/internal/util"
	"github.com/hupe1980/tripgraph/model"
)

// Options configures the Anthropic model adapter.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string // Empty falls back to ANTHROPIC_API_KEY
}

// Model adapts the Anthropic Messages API to model.Model.
type Model struct {
	client *anthropic.Client
	opts   Options
}

// NewModel creates a model backed by a fresh Anthropic client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var reqOpts []option.RequestOption
	if opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(reqOpts...)
	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a model from an existing client.
func NewModelFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.Model("claude-sonnet-4-20250514"),
		Temperature: 0,
		MaxTokens:   4096,
	}
}

// Generate implements model.Model. Streaming requests are served with a
// single final response.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		params := anthropic.MessageNewParams{
			Model:       m.opts.Model,
			Messages:    toMessages(req.Contents),
			MaxTokens:   m.opts.MaxTokens,
			Temperature: anthropic.Float(m.opts.Temperature),
			System:      systemBlocks(req),
		}

		if len(req.Tools) > 0 {
			params.Tools = toTools(req.Tools)
		}

		if req.Schema != nil {
			params.Tools = []anthropic.ToolUnionParam{
				toTool(req.Schema.Name, req.Schema.Description, req.Schema.Schema),
			}
			params.ToolChoice = anthropic.ToolChoiceUnionParam{
				OfTool: &anthropic.ToolChoiceToolParam{Name: req.Schema.Name},
			}
		}

		resp, err := m.client.Messages.New(ctx, params)
		if err != nil {
			errCh <- fmt.Errorf("anthropic: %w", err)
			return
		}

		var parts []core.Part
		for _, block := range resp.Content {
			switch block.Type {
			case "text":
				if t := block.AsText().Text; t != "" {
					parts = append(parts, core.TextPart{Text: t})
				}
			case "tool_use":
				tu := block.AsToolUse()
				if req.Schema != nil && tu.Name == req.Schema.Name {
					var data map[string]any
					if err := json.Unmarshal(tu.Input, &data); err == nil {
						parts = append(parts, core.DataPart{Data: data})
						continue
					}
				}
				parts = append(parts, core.FunctionCallPart{FunctionCall: core.FunctionCall{
					ID:        tu.ID,
					Name:      tu.Name,
					Arguments: string(tu.Input),
				}})
			}
		}

		finish := "stop"
		if resp.StopReason != "" {
			finish = string(resp.StopReason)
		}

		out <- model.Response{
			ID:           resp.ID,
			Content:      core.Content{Role: core.RoleAssistant, Parts: parts},
			FinishReason: finish,
			Usage: &model.TokenUsage{
				PromptTokens:     int(resp.Usage.InputTokens),
				CompletionTokens: int(resp.Usage.OutputTokens),
				TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
			},
		}
	}()

	return out, errCh
}

func systemBlocks(req model.Request) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	if req.Instructions != "" {
		blocks = append(blocks, anthropic.TextBlockParam{Text: req.Instructions})
	}
	for _, c := range req.Contents {
		if c.Role != core.RoleSystem {
			continue
		}
		for _, p := range c.Parts {
			if tp, ok := p.(core.TextPart); ok && tp.Text != "" {
				blocks = append(blocks, anthropic.TextBlockParam{Text: tp.Text})
			}
		}
	}
	return blocks
}

// toMessages converts contents into alternating user/assistant turns. Tool
// results travel in the user turn that follows the requesting assistant turn.
func toMessages(contents []core.Content) []anthropic.MessageParam {
	var msgs []anthropic.MessageParam

	for _, c := range contents {
		switch c.Role {
		case core.RoleSystem:
			continue
		case core.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			for _, p := range c.Parts {
				switch v := p.(type) {
				case core.TextPart:
					if v.Text != "" {
						blocks = append(blocks, anthropic.NewTextBlock(v.Text))
					}
				case core.FunctionCallPart:
					var input any = map[string]any{}
					if v.FunctionCall.Arguments != "" {
						if err := json.Unmarshal([]byte(v.FunctionCall.Arguments), &input); err != nil {
							input = map[string]any{"raw": v.FunctionCall.Arguments}
						}
					}
					blocks = append(blocks, anthropic.NewToolUseBlock(v.FunctionCall.ID, input, v.FunctionCall.Name))
				}
			}
			if len(blocks) > 0 {
				msgs = append(msgs, anthropic.NewAssistantMessage(blocks...))
			}
		case core.RoleTool:
			var blocks []anthropic.ContentBlockParamUnion
			for _, p := range c.Parts {
				if fr, ok := p.(core.FunctionResponsePart); ok {
					blocks = append(blocks, anthropic.NewToolResultBlock(
						fr.FunctionResponse.ID,
						model.FunctionResponseText(fr.FunctionResponse),
						fr.FunctionResponse.Error != "",
					))
				}
			}
			msgs = appendUser(msgs, blocks)
		default:
			var blocks []anthropic.ContentBlockParamUnion
			for _, p := range c.Parts {
				if tp, ok := p.(core.TextPart); ok && tp.Text != "" {
					blocks = append(blocks, anthropic.NewTextBlock(tp.Text))
				}
			}
			msgs = appendUser(msgs, blocks)
		}
	}

	return msgs
}

// appendUser merges consecutive user turns; the API rejects two in a row.
func appendUser(msgs []anthropic.MessageParam, blocks []anthropic.ContentBlockParamUnion) []anthropic.MessageParam {
	if len(blocks) == 0 {
		return msgs
	}
	if n := len(msgs); n > 0 && msgs[n-1].Role == anthropic.MessageParamRoleUser {
		msgs[n-1].Content = append(msgs[n-1].Content, blocks...)
		return msgs
	}
	return append(msgs, anthropic.NewUserMessage(blocks...))
}

func toTools(defs []model.ToolDefinition) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, len(defs))
	for i, d := range defs {
		tools[i] = toTool(d.Function.Name, d.Function.Description, d.Function.Parameters)
	}
	return tools
}

func toTool(name, description string, schema map[string]any) anthropic.ToolUnionParam {
	input := anthropic.ToolInputSchemaParam{Type: constant.Object("object")}
	if schema != nil {
		input.Properties = schema["properties"]
		input.Required = util.RequiredFields(schema)
	}

	t := anthropic.ToolUnionParamOfTool(input, name)
	if description != "" && t.OfTool != nil {
		t.OfTool.Description = anthropic.String(description)
	}
	return t
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{Name: string(m.opts.Model), Provider: "anthropic", SupportsTools: true}
}
