package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tripgraph/core"
)

func TestGraphCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"graph", "--log-level", "error"})

	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "flowchart TD"))
	assert.Contains(t, out.String(), "research -- continue --> tools")
	assert.Contains(t, out.String(), "review -.-> research")
}

func TestRunCommand_RequiresMessage(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"run"})

	assert.Error(t, cmd.Execute())
}

func TestMarkdown(t *testing.T) {
	s := core.NewState(core.NewUserMessage("Lisbon"))
	s.Apply(core.Update{
		IsValid: core.Ptr(true),
		Itinerary: map[string]any{
			"destination": "Lisbon",
			"days": []any{
				map[string]any{
					"day_number":          1.0,
					"attractions":         []any{map[string]any{"name": "Belém Tower", "location": "Belém", "rating": 4.6}},
					"dining":              []any{"Pastéis de Belém"},
					"daily_cost_estimate": 120.0,
				},
			},
			"total_cost_estimate": 600.0,
			"tips":                []any{"Buy a Viva Viagem card"},
		},
	})

	md := Markdown(s)
	assert.Contains(t, md, "# Trip to Lisbon")
	assert.Contains(t, md, "## Day 1")
	assert.Contains(t, md, "- **Belém Tower**, Belém (rating 4.6)")
	assert.Contains(t, md, "- Pastéis de Belém")
	assert.Contains(t, md, "- Buy a Viva Viagem card")
}

func TestMarkdown_InvalidRequest(t *testing.T) {
	s := core.NewState(core.NewUserMessage("hi"), core.NewAssistantMessage("validate", "Where to?"))
	assert.Equal(t, "Where to?", Markdown(s))
}

func TestMarkdown_Summary(t *testing.T) {
	s := core.NewState()
	s.Apply(core.Update{IsValid: core.Ptr(true), Itinerary: map[string]any{"summary": "Go north."}})
	assert.Equal(t, "Go north.", Markdown(s))
}
