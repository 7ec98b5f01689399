// Package core provides the foundational domain types shared by every layer of
// tripgraph. It defines:
//
//   - Messages (role-based Content built from a closed set of Parts)
//   - State (the single mutable record threaded through one planning run)
//   - Update (a partial state change produced by a stage, merged by Apply)
//   - TravelerProfile (the structured traveler attributes extracted from a conversation)
//   - CallLimiter (a per-run budget for completion-service calls)
//
// The package intentionally keeps orchestration (graph), tool dispatch (flow)
// and provider concerns (model) out of scope so the types can be consumed by
// custom stages, stores and transports without pulling in implementations.
package core
