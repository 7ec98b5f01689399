package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/hupe1980/tripgraph/core"
	"github.com/hupe1980/tripgraph/flow"
	"github.com/hupe1980/tripgraph/graph"
	"github.com/hupe1980/tripgraph/internal/util"
	"github.com/hupe1980/tripgraph/model"
)

// FallbackClarification is sent when validation rejects a request without
// saying why.
const FallbackClarification = "Could you tell me where you would like to go, your budget and how many days you plan to travel?"

// FeedbackPrefix starts the message review appends when it sends the
// itinerary back for revision.
const FeedbackPrefix = "FEEDBACK based on last itinerary: "

func (p *Planner) render(tmpl *util.Template, data map[string]any) (string, error) {
	data["Today"] = p.today()
	return tmpl.Render(data)
}

func (p *Planner) validate(ctx context.Context, s *core.State) (graph.Command, error) {
	instructions, err := p.render(validateTemplate, map[string]any{})
	if err != nil {
		return graph.Command{}, err
	}

	verdict, err := p.completeStructured(ctx, StageValidate, model.Request{
		Instructions: instructions,
		Contents:     model.ContentsFromMessages(s.Messages),
	}, validationSchema)
	if err != nil {
		return graph.Command{}, err
	}

	if valid, _ := verdict["is_valid"].(bool); valid {
		return graph.Command{
			Update: core.Update{IsValid: core.Ptr(true)},
			Goto:   StageProfile,
		}, nil
	}

	reply, _ := verdict["llm_response"].(string)
	if strings.TrimSpace(reply) == "" {
		reply = FallbackClarification
	}

	return graph.Command{
		Update: core.Update{
			IsValid:  core.Ptr(false),
			Messages: []core.Message{core.NewAssistantMessage(StageValidate, reply)},
		},
		Goto: graph.End,
	}, nil
}

func (p *Planner) profile(ctx context.Context, s *core.State) (graph.Command, error) {
	instructions, err := p.render(profileTemplate, map[string]any{"Defaults": core.DefaultProfile()})
	if err != nil {
		return graph.Command{}, err
	}

	raw, err := p.completeStructured(ctx, StageProfile, model.Request{
		Instructions: instructions,
		Contents:     model.ContentsFromMessages(s.Messages),
	}, profileSchema)
	if err != nil {
		return graph.Command{}, err
	}

	prof, err := DecodeProfile(raw)
	if err != nil {
		return graph.Command{}, fmt.Errorf("%w: %s: %v", core.ErrMalformedOutput, profileSchema.Name, err)
	}

	return graph.Command{Update: core.Update{UserProfile: &prof}}, nil
}

// DecodeProfile overlays a structured answer onto the default profile.
// Absent or null fields keep their defaults; numbers are accepted as strings.
func DecodeProfile(raw map[string]any) (core.TravelerProfile, error) {
	prof := core.DefaultProfile()

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &prof,
	})
	if err != nil {
		return core.TravelerProfile{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return core.TravelerProfile{}, err
	}

	if prof.Preferences == nil {
		prof.Preferences = []string{}
	}

	return prof, nil
}

func (p *Planner) optimize(ctx context.Context, s *core.State) (graph.Command, error) {
	instructions, err := p.render(optimizeTemplate, map[string]any{})
	if err != nil {
		return graph.Command{}, err
	}

	resp, err := p.complete(ctx, StageOptimize, model.Request{
		Instructions: instructions,
		Contents:     model.ContentsFromMessages(s.UserMessages()),
	})
	if err != nil {
		return graph.Command{}, err
	}

	brief := strings.TrimSpace(core.NewContentMessage(StageOptimize, resp.Content).Text())

	return graph.Command{Update: core.Update{OptimizedPrompt: &brief}}, nil
}

func (p *Planner) research(ctx context.Context, s *core.State) (graph.Command, error) {
	exhausted := s.LoopPasses >= p.opts.MaxToolPasses

	instructions, err := p.render(researchTemplate, map[string]any{
		"Brief":          s.OptimizedPrompt,
		"Itinerary":      s.Itinerary,
		"Feedback":       s.ItineraryFeedback,
		"ToolsExhausted": exhausted,
	})
	if err != nil {
		return graph.Command{}, err
	}

	req := model.Request{
		Instructions: instructions,
		Contents:     model.ContentsFromMessages(s.Messages),
	}
	if !exhausted {
		req.Tools = p.opts.Tools.Definitions()
	} else {
		p.opts.Logger.Warn("research.tools_exhausted", "loop_passes", s.LoopPasses, "max_tool_passes", p.opts.MaxToolPasses)
	}

	resp, err := p.complete(ctx, StageResearch, req)
	if err != nil {
		return graph.Command{}, err
	}

	msg := core.NewContentMessage(StageResearch, resp.Content)
	if msg.Role() == "" {
		msg.Content.Role = core.RoleAssistant
	}

	if exhausted && len(msg.GetFunctionCalls()) > 0 {
		// Tools were not offered; drop stray calls so the loop cannot restart.
		msg.Content.Parts = textParts(msg.Content.Parts)
	}

	update := core.Update{
		Messages:       []core.Message{msg},
		ResearchPasses: core.Ptr(s.ResearchPasses + 1),
	}

	if len(msg.GetFunctionCalls()) == 0 {
		update.Itinerary = ParseItinerary(msg.Text())
	}

	return graph.Command{Update: update}, nil
}

// ParseItinerary extracts the itinerary object from a final research answer.
// Non-JSON answers are kept as {"summary": text}; an empty answer yields nil
// so the previous itinerary is retained.
func ParseItinerary(text string) map[string]any {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if obj, err := model.ParseJSONObject(text); err == nil && len(obj) > 0 {
		return obj
	}
	return map[string]any{"summary": text}
}

func textParts(parts []core.Part) []core.Part {
	out := make([]core.Part, 0, len(parts))
	for _, p := range parts {
		if _, ok := p.(core.FunctionCallPart); !ok {
			out = append(out, p)
		}
	}
	return out
}

func (p *Planner) tools(ctx context.Context, s *core.State) (graph.Command, error) {
	calls := flow.PendingCalls(s)

	results, err := p.opts.Dispatcher.Dispatch(ctx, p.opts.Tools, calls)
	if err != nil {
		return graph.Command{}, err
	}

	return graph.Command{Update: core.Update{
		Messages:   results,
		ToolPasses: core.Ptr(s.ToolPasses + 1),
		LoopPasses: core.Ptr(s.LoopPasses + 1),
	}}, nil
}

func (p *Planner) review(ctx context.Context, s *core.State) (graph.Command, error) {
	instructions, err := p.render(reviewTemplate, map[string]any{
		"Brief":    s.OptimizedPrompt,
		"Feedback": s.ItineraryFeedback,
	})
	if err != nil {
		return graph.Command{}, err
	}

	verdict, err := p.completeStructured(ctx, StageReview, model.Request{
		Instructions: instructions,
		Contents:     []core.Content{reviewSubject(s)},
	}, reviewSchema)
	if err != nil {
		return graph.Command{}, err
	}

	satisfied, _ := verdict["is_satisfactory"].(bool)
	if satisfied || revisionsExhausted(s) {
		p.opts.Logger.Info("review.done", "satisfactory", satisfied, "revisions", s.IterationCounter)
		return graph.Command{Goto: graph.End}, nil
	}

	feedback, _ := verdict["feedback"].(string)
	feedback = strings.TrimSpace(feedback)

	p.opts.Logger.Info("review.revise", "revision", s.IterationCounter+1)

	return graph.Command{
		Update: core.Update{
			ItineraryFeedback: &feedback,
			IterationCounter:  core.Ptr(s.IterationCounter + 1),
			LoopPasses:        core.Ptr(0),
			Messages:          []core.Message{core.NewAssistantMessage(StageReview, FeedbackPrefix+feedback)},
		},
		Goto: StageResearch,
	}, nil
}

// reviewSubject presents the last research answer to the reviewer as a user
// turn, since providers expect conversations to open with the user.
func reviewSubject(s *core.State) core.Content {
	var b strings.Builder

	if last, ok := s.LastMessage(); ok {
		b.WriteString(last.Text())
	}

	if s.HasItinerary() {
		if data, err := json.Marshal(s.Itinerary); err == nil && !strings.Contains(b.String(), string(data)) {
			if b.Len() > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString("Itinerary:\n")
			b.Write(data)
		}
	}

	text := b.String()
	if strings.TrimSpace(text) == "" {
		text = "(empty itinerary)"
	}

	return core.Content{Role: core.RoleUser, Parts: []core.Part{core.TextPart{Text: text}}}
}
