package planner

import (
	"github.com/hupe1980/tripgraph/core"
	"github.com/hupe1980/tripgraph/internal/util"
	"github.com/hupe1980/tripgraph/model"
)

var validationSchema = model.ResponseSchema{
	Name:        "request_validation",
	Description: "Whether the travel request is complete, plus a reply if it is not",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"is_valid": map[string]any{
				"type":        "boolean",
				"description": "True if the request is about travel and states destination, budget and number of days",
			},
			"llm_response": map[string]any{
				"type":        "string",
				"description": "Reply to the traveler when the request is invalid or incomplete",
			},
		},
		"required": []string{"is_valid"},
	},
}

var reviewSchema = model.ResponseSchema{
	Name:        "itinerary_review",
	Description: "Verdict on the itinerary and feedback for a revision",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"is_satisfactory": map[string]any{
				"type":        "boolean",
				"description": "True if the itinerary can be handed to the traveler",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "Concrete changes needed when the itinerary is not satisfactory",
			},
		},
		"required": []string{"is_satisfactory"},
	},
}

var profileSchema = model.ResponseSchema{
	Name:        "traveler_profile",
	Description: "Traveler attributes inferred from the conversation",
	Schema:      util.CreateSchema(core.TravelerProfile{}),
}
