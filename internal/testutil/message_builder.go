package testutil

import (
	"github.com/hupe1980/tripgraph/core"
)

// MessageBuilder provides a fluent helper for constructing messages in tests.
// Example:
//
//	msg := NewMessageBuilder().Author("research").AssistantText("hello").Build()
//
// Chain only the parts you need; sensible defaults are applied.
type MessageBuilder struct {
	author        string
	id            string
	role          string
	textParts     []string
	funcCalls     []core.FunctionCall
	funcResponses []core.FunctionResponse
}

// NewMessageBuilder creates a builder with default author "research".
func NewMessageBuilder() *MessageBuilder { return &MessageBuilder{author: "research"} }

// Author sets the author name for the message (chainable).
func (b *MessageBuilder) Author(a string) *MessageBuilder { b.author = a; return b }

// ID overrides the auto-generated message ID (chainable).
func (b *MessageBuilder) ID(id string) *MessageBuilder { b.id = id; return b }

// Role overrides the derived role (chainable).
func (b *MessageBuilder) Role(r string) *MessageBuilder { b.role = r; return b }

// UserText appends a text part and marks the message as user-authored.
func (b *MessageBuilder) UserText(t string) *MessageBuilder {
	b.author = core.RoleUser
	b.role = core.RoleUser
	b.textParts = append(b.textParts, t)
	return b
}

// AssistantText appends an assistant text part (chainable).
func (b *MessageBuilder) AssistantText(t string) *MessageBuilder {
	b.textParts = append(b.textParts, t)
	return b
}

// FunctionCall appends a tool call part (chainable).
func (b *MessageBuilder) FunctionCall(id, name, args string) *MessageBuilder {
	b.funcCalls = append(b.funcCalls, core.FunctionCall{ID: id, Name: name, Arguments: args})
	return b
}

// FunctionResponse appends a tool result part and switches the role to tool.
func (b *MessageBuilder) FunctionResponse(id, name string, result any, errMsg string) *MessageBuilder {
	b.funcResponses = append(b.funcResponses, core.FunctionResponse{ID: id, Name: name, Response: result, Error: errMsg})
	if b.role == "" {
		b.role = core.RoleTool
	}
	return b
}

// Build assembles the message.
func (b *MessageBuilder) Build() core.Message {
	parts := make([]core.Part, 0, len(b.textParts)+len(b.funcCalls)+len(b.funcResponses))
	for _, t := range b.textParts {
		parts = append(parts, core.TextPart{Text: t})
	}
	for _, fc := range b.funcCalls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: fc})
	}
	for _, fr := range b.funcResponses {
		parts = append(parts, core.FunctionResponsePart{FunctionResponse: fr})
	}

	role := b.role
	if role == "" {
		role = core.RoleAssistant
	}

	m := core.NewMessage(b.author, role, parts...)
	if b.id != "" {
		m.ID = b.id
	}
	return m
}
