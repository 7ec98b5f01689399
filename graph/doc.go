// Package graph implements the stage graph engine that drives a planning run.
//
// A graph is a static table of named stages plus their outgoing edges. Each
// stage returns a Command: a partial state update and, optionally, the name
// of the next stage. The engine runs as a trampoline: it applies the update,
// resolves the next stage and loops until the End sentinel is reached.
//
// Next stage resolution, in order:
//  1. an explicit Command.Goto (must be one of the stage's declared targets)
//  2. the stage's fixed edge
//  3. the stage's router, whose outcome is mapped to a target
//
// Graphs are validated when compiled so wiring mistakes surface at startup
// instead of mid run:
//
//	b := graph.NewBuilder()
//	b.AddStage("validate", validate, graph.WithTargets("profile", graph.End))
//	b.AddStage("profile", profile)
//	b.AddEdge("profile", graph.End)
//	b.SetEntry("validate")
//	g, err := b.Compile()
package graph
