package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tripgraph/core"
	"github.com/hupe1980/tripgraph/graph"
	"github.com/hupe1980/tripgraph/internal/testutil"
	"github.com/hupe1980/tripgraph/logging"
	"github.com/hupe1980/tripgraph/model"
	"github.com/hupe1980/tripgraph/tool"
)

var fixedNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func validReply() model.Reply {
	return model.JSONReply(map[string]any{"is_valid": true})
}

func profileReply() model.Reply {
	return model.JSONReply(map[string]any{
		"destination":      "Japan",
		"number_of_people": 2,
		"number_of_adults": 2,
		"number_of_days":   10,
		"budget":           4000,
		"currency":         "JPY",
		"preferences":      []string{"food", "temples"},
	})
}

func itineraryReply(dest string, days int) model.Reply {
	return model.JSONReply(map[string]any{
		"destination":   dest,
		"trip_duration": days,
		"days":          []any{map[string]any{"day_number": 1}},
	})
}

func verdict(ok bool, feedback string) model.Reply {
	return model.JSONReply(map[string]any{"is_satisfactory": ok, "feedback": feedback})
}

type stageRecorder struct {
	mu     sync.Mutex
	stages []string
}

func (r *stageRecorder) hooks() graph.Hooks {
	return graph.Hooks{OnStageStart: func(_ context.Context, stage string, _ *core.State) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.stages = append(r.stages, stage)
	}}
}

func (r *stageRecorder) count(stage string) int {
	n := 0
	for _, s := range r.stages {
		if s == stage {
			n++
		}
	}
	return n
}

func newPlanner(t *testing.T, m model.Model, rec *stageRecorder, optFns ...func(o *Options)) *Planner {
	t.Helper()
	fns := append([]func(o *Options){func(o *Options) {
		o.Clock = func() time.Time { return fixedNow }
		if rec != nil {
			o.Hooks = append(o.Hooks, rec.hooks())
		}
	}}, optFns...)
	p, err := New(m, fns...)
	require.NoError(t, err)
	return p
}

func echoTool(name string, fail bool) tool.Tool {
	return tool.NewFunctionTool(name, "test tool", map[string]any{
		"type":       "object",
		"properties": map[string]any{"query": map[string]any{"type": "string"}},
		"required":   []string{"query"},
	}, func(_ *tool.Context, args map[string]any) (any, error) {
		if fail {
			return nil, errors.New("upstream unavailable")
		}
		return map[string]any{"tool": name, "query": args["query"]}, nil
	})
}

func testRegistry(t *testing.T, tools ...tool.Tool) *tool.Registry {
	t.Helper()
	r, err := tool.NewRegistry(tools...)
	require.NoError(t, err)
	return r
}

func TestNew_RequiresModel(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestNew_DefaultsToEmptyRegistry(t *testing.T) {
	p, err := New(model.NewScriptedModel())
	require.NoError(t, err)
	require.NotNil(t, p.opts.Tools)
	assert.Empty(t, p.opts.Tools.Definitions())
}

func TestRun_LogsRemainingCallBudget(t *testing.T) {
	m := model.NewScriptedModel().
		On("request_validation", validReply()).
		On("traveler_profile", profileReply()).
		On("", model.TextReply("brief"), itineraryReply("Japan", 10)).
		On("itinerary_review", verdict(true, ""))

	var buf bytes.Buffer
	p := newPlanner(t, m, nil, func(o *Options) {
		o.MaxModelCalls = 10
		o.Logger = logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelDebug, Format: "json", Output: &buf})
	})

	_, err := p.Run(context.Background(), []core.Message{core.NewUserMessage("Japan, 10 days, 4000 EUR")})
	require.NoError(t, err)

	var remaining []float64
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(line, &rec))
		if rec["msg"] == "model.call" {
			remaining = append(remaining, rec["calls_remaining"].(float64))
		}
	}
	assert.Equal(t, []float64{9, 8, 7, 6, 5}, remaining)
}

func TestMinSteps(t *testing.T) {
	assert.Equal(t, 57, MinSteps(DefaultMaxToolPasses))
	assert.Equal(t, 9, MinSteps(0))
	assert.LessOrEqual(t, MinSteps(DefaultMaxToolPasses), graph.DefaultMaxSteps)
}

func TestNew_RejectsStepLimitBelowWorstCase(t *testing.T) {
	_, err := New(model.NewScriptedModel(), func(o *Options) {
		o.MaxToolPasses = 20
		o.MaxSteps = graph.DefaultMaxSteps
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below 129")

	p, err := New(model.NewScriptedModel(), func(o *Options) { o.MaxToolPasses = 20 })
	require.NoError(t, err)
	assert.Equal(t, 129, p.opts.MaxSteps)
}

func TestRun_WorstCaseFitsStepLimit(t *testing.T) {
	call := func(id string) model.Reply {
		return model.ToolCallReply(core.FunctionCall{ID: id, Name: "search", Arguments: `{"query":"q"}`})
	}

	// every research round spends its whole tool budget, review always rejects
	replies := []model.Reply{model.TextReply("brief")}
	for round := 0; round <= MaxRevisions; round++ {
		replies = append(replies, call("a"), call("b"), itineraryReply("Japan", 10))
	}

	m := model.NewScriptedModel().
		On("request_validation", validReply()).
		On("traveler_profile", profileReply()).
		On("", replies...).
		On("itinerary_review", verdict(false, "a"), verdict(false, "b"), verdict(false, "c"))

	rec := &stageRecorder{}
	p := newPlanner(t, m, rec, func(o *Options) {
		o.Tools = testRegistry(t, echoTool("search", false))
		o.MaxToolPasses = 2
		o.MaxModelCalls = 0
		o.MaxSteps = MinSteps(2)
	})

	s, err := p.Run(context.Background(), []core.Message{core.NewUserMessage("Japan, 10 days, 4000 EUR")})
	require.NoError(t, err)

	assert.Len(t, rec.stages, MinSteps(2))
	assert.Equal(t, MaxRevisions, s.IterationCounter)
	assert.Equal(t, 6, s.ToolPasses)
}

func TestGraphShape(t *testing.T) {
	p := newPlanner(t, model.NewScriptedModel(), nil)

	assert.Equal(t, StageValidate, p.Graph().Entry())
	assert.Equal(t, []string{StageValidate, StageProfile, StageOptimize, StageResearch, StageTools, StageReview}, p.Graph().Stages())
	assert.Contains(t, p.Graph().Mermaid(), "research -- continue --> tools")
}

func TestRun_AcceptedOnFirstReview(t *testing.T) {
	m := model.NewScriptedModel().
		On("request_validation", validReply()).
		On("traveler_profile", profileReply()).
		On("", model.TextReply("  Research 10 days in Japan for two food lovers.  "), itineraryReply("Japan", 10)).
		On("itinerary_review", verdict(true, ""))

	rec := &stageRecorder{}
	p := newPlanner(t, m, rec)

	s, err := p.Run(context.Background(), []core.Message{
		core.NewUserMessage("Plan 10 days in Japan for two people, budget 4000 EUR"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{StageValidate, StageProfile, StageOptimize, StageResearch, StageReview}, rec.stages)
	assert.True(t, s.IsValid)
	assert.True(t, s.ProfileSet)
	assert.Equal(t, "Japan", s.UserProfile.Destination)
	assert.Equal(t, 2, s.UserProfile.NumberOfPeople)
	assert.Equal(t, 10, s.UserProfile.NumberOfDays)
	assert.Equal(t, 4000.0, s.UserProfile.Budget)
	assert.Equal(t, []string{"food", "temples"}, s.UserProfile.Preferences)
	assert.Equal(t, "Research 10 days in Japan for two food lovers.", s.OptimizedPrompt)
	assert.True(t, s.HasItinerary())
	assert.Equal(t, "Japan", s.Itinerary["destination"])
	assert.Equal(t, 0, s.IterationCounter)
	assert.Equal(t, 1, s.ResearchPasses)
	assert.Equal(t, 0, s.ToolPasses)
	assert.Empty(t, s.ItineraryFeedback)

	require.Len(t, s.Messages, 2)
	assert.Equal(t, StageResearch, s.Messages[1].Author)
	assert.Equal(t, OutcomeEnd, RouteResearch(s))
}

func TestRun_InvalidRequestEndsAfterValidation(t *testing.T) {
	m := model.NewScriptedModel().
		On("request_validation", model.JSONReply(map[string]any{
			"is_valid":     false,
			"llm_response": "What budget do you have in mind?",
		}))

	rec := &stageRecorder{}
	p := newPlanner(t, m, rec)

	s, err := p.Run(context.Background(), []core.Message{core.NewUserMessage("I want to see Peru for a week")})
	require.NoError(t, err)

	assert.Equal(t, []string{StageValidate}, rec.stages)
	assert.False(t, s.IsValid)
	assert.False(t, s.ProfileSet)
	assert.Equal(t, core.DefaultProfile(), s.UserProfile)
	assert.False(t, s.HasItinerary())
	assert.Empty(t, s.OptimizedPrompt)

	require.Len(t, s.Messages, 2)
	assert.Equal(t, core.RoleAssistant, s.Messages[1].Role())
	assert.Equal(t, "What budget do you have in mind?", s.Messages[1].Text())
	assert.Len(t, m.Requests(), 1)
}

func TestRun_InvalidRequestFallbackReply(t *testing.T) {
	m := model.NewScriptedModel().On("request_validation", model.JSONReply(map[string]any{"is_valid": false}))
	p := newPlanner(t, m, nil)

	s, err := p.Run(context.Background(), []core.Message{core.NewUserMessage("hello")})
	require.NoError(t, err)

	last, ok := s.LastMessage()
	require.True(t, ok)
	assert.Equal(t, FallbackClarification, last.Text())
}

func TestRun_ToolLoop(t *testing.T) {
	m := model.NewScriptedModel().
		On("request_validation", validReply()).
		On("traveler_profile", profileReply()).
		On("",
			model.TextReply("brief"),
			model.ToolCallReply(
				core.FunctionCall{ID: "call_1", Name: "search", Arguments: `{"query":"kyoto ryokan"}`},
				core.FunctionCall{ID: "call_2", Name: "places", Arguments: `{"query":"fushimi inari"}`},
			),
			itineraryReply("Japan", 10),
		).
		On("itinerary_review", verdict(true, ""))

	rec := &stageRecorder{}
	p := newPlanner(t, m, rec, func(o *Options) {
		o.Tools = testRegistry(t, echoTool("search", false), echoTool("places", false))
	})

	s, err := p.Run(context.Background(), []core.Message{core.NewUserMessage("Japan, 10 days, 4000 EUR")})
	require.NoError(t, err)

	assert.Equal(t, []string{
		StageValidate, StageProfile, StageOptimize,
		StageResearch, StageTools, StageResearch, StageReview,
	}, rec.stages)

	require.Len(t, s.Messages, 5)
	assert.Len(t, s.Messages[1].GetFunctionCalls(), 2)

	first := s.Messages[2].GetFunctionResponses()
	second := s.Messages[3].GetFunctionResponses()
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, "call_1", first[0].ID)
	assert.Equal(t, "call_2", second[0].ID)
	assert.Empty(t, first[0].Error)

	assert.Equal(t, 1, s.ToolPasses)
	assert.Equal(t, 2, s.ResearchPasses)
	assert.Equal(t, OutcomeEnd, RouteResearch(s))
	assert.True(t, s.HasItinerary())

	research := m.RequestsFor("")[1:]
	require.Len(t, research, 2)
	assert.Len(t, research[0].Tools, 2)
	// Second research call sees the tool results.
	assert.Len(t, research[1].Contents, 4)
	assert.Equal(t, core.RoleTool, research[1].Contents[3].Role)
}

func TestRun_ToolFailureIsNotFatal(t *testing.T) {
	m := model.NewScriptedModel().
		On("request_validation", validReply()).
		On("traveler_profile", profileReply()).
		On("",
			model.TextReply("brief"),
			model.ToolCallReply(
				core.FunctionCall{ID: "a", Name: "search", Arguments: `{"query":"x"}`},
				core.FunctionCall{ID: "b", Name: "missing", Arguments: `{}`},
			),
			itineraryReply("Japan", 10),
		).
		On("itinerary_review", verdict(true, ""))

	p := newPlanner(t, m, nil, func(o *Options) {
		o.Tools = testRegistry(t, echoTool("search", true))
	})

	s, err := p.Run(context.Background(), []core.Message{core.NewUserMessage("Japan, 10 days, 4000 EUR")})
	require.NoError(t, err)

	failed := s.Messages[2].GetFunctionResponses()[0]
	missing := s.Messages[3].GetFunctionResponses()[0]
	assert.Contains(t, failed.Error, "upstream unavailable")
	assert.Contains(t, missing.Error, "tool not found")
	assert.True(t, s.HasItinerary())
}

func TestRun_ToolPassesBounded(t *testing.T) {
	call := func(id string) model.Reply {
		return model.ToolCallReply(core.FunctionCall{ID: id, Name: "search", Arguments: `{"query":"q"}`})
	}

	m := model.NewScriptedModel().
		On("request_validation", validReply()).
		On("traveler_profile", profileReply()).
		On("", model.TextReply("brief"), call("1"), call("2"), call("3")).
		On("itinerary_review", verdict(true, ""))

	rec := &stageRecorder{}
	p := newPlanner(t, m, rec, func(o *Options) {
		o.Tools = testRegistry(t, echoTool("search", false))
		o.MaxToolPasses = 2
	})

	s, err := p.Run(context.Background(), []core.Message{core.NewUserMessage("Japan, 10 days, 4000 EUR")})
	require.NoError(t, err)

	assert.Equal(t, 2, s.ToolPasses)
	assert.Equal(t, 2, s.LoopPasses)
	assert.Equal(t, 2, rec.count(StageTools))
	assert.Equal(t, 3, rec.count(StageResearch))
	assert.False(t, RouteResearch(s) == OutcomeContinue)

	research := m.RequestsFor("")
	last := research[len(research)-1]
	assert.Empty(t, last.Tools)
	assert.Contains(t, last.Instructions, "research budget is used up")
}

func TestRun_RevisionGetsFreshToolBudget(t *testing.T) {
	call := func(id string) model.Reply {
		return model.ToolCallReply(core.FunctionCall{ID: id, Name: "search", Arguments: `{"query":"q"}`})
	}

	m := model.NewScriptedModel().
		On("request_validation", validReply()).
		On("traveler_profile", profileReply()).
		On("",
			model.TextReply("brief"),
			call("1"),
			call("2"),
			itineraryReply("Japan", 10),
			call("3"),
			itineraryReply("Japan", 10),
		).
		On("itinerary_review",
			verdict(false, "Need vegetarian restaurants, research them."),
			verdict(true, ""),
		)

	rec := &stageRecorder{}
	p := newPlanner(t, m, rec, func(o *Options) {
		o.Tools = testRegistry(t, echoTool("search", false))
		o.MaxToolPasses = 2
	})

	s, err := p.Run(context.Background(), []core.Message{core.NewUserMessage("Japan, 10 days, 4000 EUR")})
	require.NoError(t, err)

	assert.Equal(t, 1, s.IterationCounter)
	assert.Equal(t, 3, s.ToolPasses)
	assert.Equal(t, 1, s.LoopPasses)
	assert.Equal(t, 3, rec.count(StageTools))

	// brief, two tool rounds, forced answer, revision with tools, revision answer
	research := m.RequestsFor("")
	require.Len(t, research, 6)

	forced := research[3]
	assert.Empty(t, forced.Tools)
	assert.Contains(t, forced.Instructions, "research budget is used up")

	revision := research[4]
	assert.NotEmpty(t, revision.Tools)
	assert.NotContains(t, revision.Instructions, "research budget is used up")
	assert.Contains(t, revision.Instructions, "Need vegetarian restaurants, research them.")
}

func TestResearch_ToolBudgetIsPerRound(t *testing.T) {
	m := model.NewScriptedModel().On("", itineraryReply("Japan", 10), itineraryReply("Japan", 10))
	p := newPlanner(t, m, nil, func(o *Options) {
		o.Tools = testRegistry(t, echoTool("search", false))
		o.MaxToolPasses = 2
	})
	ctx := core.WithCallLimiter(context.Background(), core.NewCallLimiter(0))

	fresh := testutil.NewStateBuilder().User("Japan").ToolPasses(5).Build()
	_, err := p.research(ctx, fresh)
	require.NoError(t, err)

	spent := testutil.NewStateBuilder().User("Japan").ToolPasses(5).LoopPasses(2).Build()
	_, err = p.research(ctx, spent)
	require.NoError(t, err)

	reqs := m.RequestsFor("")
	require.Len(t, reqs, 2)
	assert.NotEmpty(t, reqs[0].Tools)
	assert.Empty(t, reqs[1].Tools)
}

func TestRun_RevisionCap(t *testing.T) {
	m := model.NewScriptedModel().
		On("request_validation", validReply()).
		On("traveler_profile", profileReply()).
		On("",
			model.TextReply("brief"),
			itineraryReply("Japan", 7),
			itineraryReply("Japan", 9),
			itineraryReply("Japan", 10),
		).
		On("itinerary_review",
			verdict(false, "Trip must last 10 days."),
			verdict(false, "Add vegetarian dining."),
			verdict(false, "Still not great."),
		)

	rec := &stageRecorder{}
	p := newPlanner(t, m, rec)

	s, err := p.Run(context.Background(), []core.Message{core.NewUserMessage("Japan, 10 days, 4000 EUR")})
	require.NoError(t, err)

	assert.Equal(t, MaxRevisions, s.IterationCounter)
	assert.Equal(t, 3, rec.count(StageResearch))
	assert.Equal(t, 3, rec.count(StageReview))
	assert.Len(t, m.RequestsFor("itinerary_review"), 3)

	assert.Equal(t, "Add vegetarian dining.", s.ItineraryFeedback)
	assert.EqualValues(t, 10, s.Itinerary["trip_duration"])

	var feedback []string
	for _, msg := range s.Messages {
		if msg.Author == StageReview {
			feedback = append(feedback, msg.Text())
		}
	}
	assert.Equal(t, []string{
		FeedbackPrefix + "Trip must last 10 days.",
		FeedbackPrefix + "Add vegetarian dining.",
	}, feedback)

	research := m.RequestsFor("")[1:]
	require.Len(t, research, 3)
	assert.Contains(t, research[1].Instructions, "Trip must last 10 days.")
	assert.Contains(t, research[2].Instructions, "Add vegetarian dining.")
	assert.Contains(t, research[2].Instructions, `"trip_duration": 9`)
}

func TestRun_ReviewSeesResearchAsUserTurn(t *testing.T) {
	m := model.NewScriptedModel().
		On("request_validation", validReply()).
		On("traveler_profile", profileReply()).
		On("", model.TextReply("brief"), model.TextReply("Day 1: Tokyo. Day 2: Kyoto.")).
		On("itinerary_review", verdict(true, ""))

	p := newPlanner(t, m, nil)

	s, err := p.Run(context.Background(), []core.Message{core.NewUserMessage("Japan, 2 days, 500 EUR")})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"summary": "Day 1: Tokyo. Day 2: Kyoto."}, s.Itinerary)

	reviews := m.RequestsFor("itinerary_review")
	require.Len(t, reviews, 1)
	require.Len(t, reviews[0].Contents, 1)
	assert.Equal(t, core.RoleUser, reviews[0].Contents[0].Role)
	assert.Contains(t, reviews[0].Instructions, "brief")
}

func TestRun_PromptsCarryToday(t *testing.T) {
	m := model.NewScriptedModel().
		On("request_validation", validReply()).
		On("traveler_profile", profileReply()).
		On("", model.TextReply("brief"), itineraryReply("Japan", 10)).
		On("itinerary_review", verdict(true, ""))

	p := newPlanner(t, m, nil)

	_, err := p.Run(context.Background(), []core.Message{core.NewUserMessage("Japan, 10 days, 4000 EUR")})
	require.NoError(t, err)

	for _, req := range m.Requests() {
		assert.Contains(t, req.Instructions, "2026-03-14")
	}
	assert.Contains(t, m.RequestsFor("traveler_profile")[0].Instructions, `"destination": "Sri Lanka"`)
}

func TestRun_OptimizeSeesOnlyUserMessages(t *testing.T) {
	m := model.NewScriptedModel().
		On("request_validation", validReply()).
		On("traveler_profile", profileReply()).
		On("", model.TextReply("brief"), itineraryReply("Japan", 10)).
		On("itinerary_review", verdict(true, ""))

	p := newPlanner(t, m, nil)

	_, err := p.Run(context.Background(), []core.Message{
		core.NewUserMessage("Japan"),
		core.NewAssistantMessage("validate", "What is your budget?"),
		core.NewUserMessage("4000 EUR for 10 days"),
	})
	require.NoError(t, err)

	optimize := m.RequestsFor("")[0]
	require.Len(t, optimize.Contents, 2)
	for _, c := range optimize.Contents {
		assert.Equal(t, core.RoleUser, c.Role)
	}
}

func TestRun_MalformedOutputIsFatal(t *testing.T) {
	m := model.NewScriptedModel().
		On("request_validation", validReply()).
		On("traveler_profile", model.TextReply("sorry, I cannot do that"))

	p := newPlanner(t, m, nil)

	s, err := p.Run(context.Background(), []core.Message{core.NewUserMessage("Japan, 10 days, 4000 EUR")})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrMalformedOutput)

	var se *graph.StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageProfile, se.Stage)
	assert.True(t, s.IsValid)
	assert.False(t, s.ProfileSet)
}

func TestRun_CallBudget(t *testing.T) {
	m := model.NewScriptedModel().
		On("request_validation", validReply()).
		On("traveler_profile", profileReply()).
		Otherwise(model.TextReply("unused"))

	p := newPlanner(t, m, nil, func(o *Options) { o.MaxModelCalls = 2 })

	_, err := p.Run(context.Background(), []core.Message{core.NewUserMessage("Japan, 10 days, 4000 EUR")})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrCallBudgetExceeded)
	assert.Len(t, m.Requests(), 2)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newPlanner(t, model.NewScriptedModel(), nil)

	_, err := p.Run(ctx, []core.Message{core.NewUserMessage("Japan")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRouteResearch_Deterministic(t *testing.T) {
	withCalls := testutil.NewStateBuilder().
		User("Japan").
		Messages(testutil.NewMessageBuilder().Author(StageResearch).FunctionCall("1", "search", `{"query":"kyoto"}`).Build()).
		Build()
	withText := testutil.NewStateBuilder().
		User("Japan").
		Messages(testutil.NewMessageBuilder().Author(StageResearch).AssistantText("done").Build()).
		Build()

	for range 10 {
		assert.Equal(t, OutcomeContinue, RouteResearch(withCalls))
		assert.Equal(t, OutcomeEnd, RouteResearch(withText))
	}
	assert.Equal(t, OutcomeEnd, RouteResearch(core.NewState()))
}

func TestRevisionsExhausted(t *testing.T) {
	assert.False(t, revisionsExhausted(testutil.NewStateBuilder().Build()))
	assert.False(t, revisionsExhausted(testutil.NewStateBuilder().Revisions(MaxRevisions-1).Build()))
	assert.True(t, revisionsExhausted(testutil.NewStateBuilder().Revisions(MaxRevisions).Build()))
}

func TestDecodeProfile(t *testing.T) {
	prof, err := DecodeProfile(map[string]any{
		"destination":      "Portugal",
		"number_of_people": "3",
		"budget":           2500.5,
		"currency":         nil,
		"has_kids":         true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Portugal", prof.Destination)
	assert.Equal(t, 3, prof.NumberOfPeople)
	assert.Equal(t, 2500.5, prof.Budget)
	assert.Equal(t, core.DefaultTripDays, prof.NumberOfDays)
	assert.Empty(t, prof.Currency)
	assert.True(t, prof.HasKids)
	assert.NotNil(t, prof.Preferences)
}

func TestParseItinerary(t *testing.T) {
	assert.Nil(t, ParseItinerary("   "))
	assert.Equal(t, map[string]any{"a": 1.0}, ParseItinerary("```json\n{\"a\": 1}\n```"))
	assert.Equal(t, map[string]any{"summary": "plain text"}, ParseItinerary("plain text"))
}
