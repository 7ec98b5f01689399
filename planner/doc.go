// Package planner wires the travel planning pipeline onto the graph engine.
//
// The pipeline is:
//
//	validate ─┬─> profile ─> optimize ─> research ─┬─> tools ─> research
//	          └─> end                              └─> review ─┬─> research
//	                                                           └─> end
//
// validate and review pick their successor explicitly; research is routed by
// RouteResearch, which keeps the tool loop going while the model asks for
// tools. Review sends the itinerary back at most MaxRevisions times.
package planner
