package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is one entry of the append-only conversation history kept in State.
// After it has been appended it should be treated as immutable. It captures:
//   - Correlation (ID, Author: the stage or "user" that produced it)
//   - Conversational content (role-based Parts)
//   - High precision UTC timestamp
type Message struct {
	ID        string    `json:"id"`
	Author    string    `json:"author,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Content   Content   `json:"content"`
}

// NewMessage creates a message with the given role and parts.
// Prefer the helper constructors for common semantic categories.
func NewMessage(author, role string, parts ...Part) Message {
	return Message{
		ID:        NewID(),
		Author:    author,
		Timestamp: time.Now().UTC(),
		Content:   Content{Role: role, Parts: parts},
	}
}

// NewUserMessage creates a user-authored text message.
func NewUserMessage(text string) Message {
	return NewMessage(RoleUser, RoleUser, TextPart{Text: text})
}

// NewSystemMessage creates a system instruction message. System messages are
// built per completion request and are never appended to State.
func NewSystemMessage(text string) Message {
	return NewMessage(RoleSystem, RoleSystem, TextPart{Text: text})
}

// NewAssistantMessage creates a non-user assistant message with a single text part.
func NewAssistantMessage(author, text string) Message {
	return NewMessage(author, RoleAssistant, TextPart{Text: text})
}

// NewContentMessage wraps arbitrary Content, typically a completion response.
func NewContentMessage(author string, content Content) Message {
	m := NewMessage(author, content.Role)
	m.Content = content
	return m
}

// NewFunctionResponseMessage records the completion result (or error) of a
// tool invocation. If err is non-nil its message is copied into the Error field.
func NewFunctionResponseMessage(author, id, functionName string, result any, err error) Message {
	fr := FunctionResponse{ID: id, Name: functionName, Response: result}
	if err != nil {
		fr.Error = err.Error()
	}
	return NewMessage(author, RoleTool, FunctionResponsePart{FunctionResponse: fr})
}

// NewID generates a new unique identifier for messages, runs and sessions.
func NewID() string { return uuid.NewString() }

// Role returns the conversation role of the message content.
func (m Message) Role() string { return m.Content.Role }

// Text concatenates all text parts in order.
func (m Message) Text() string {
	var b strings.Builder
	for _, p := range m.Content.Parts {
		if tp, ok := p.(TextPart); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}

// GetFunctionCalls returns any FunctionCall parts contained within the message
// preserving their original order.
func (m Message) GetFunctionCalls() []FunctionCall {
	var calls []FunctionCall
	for _, p := range m.Content.Parts {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

// GetFunctionResponses returns any FunctionResponse parts contained within the
// message preserving their original order.
func (m Message) GetFunctionResponses() []FunctionResponse {
	var responses []FunctionResponse
	for _, p := range m.Content.Parts {
		if fr, ok := p.(FunctionResponsePart); ok {
			responses = append(responses, fr.FunctionResponse)
		}
	}
	return responses
}
