// Package model defines the provider‑agnostic abstractions and concrete
// helpers for interacting with the completion service inside tripgraph.
//
// Core goals:
//   - Unify streaming + non‑streaming generation behind a single interface
//   - Normalize tool / function call representation (ToolDefinition)
//   - Carry an optional output schema for structured responses and validate
//     the returned payload before stages consume it (InvokeStructured)
//   - Facilitate deterministic tests (ScriptedModel)
//
// Providers (OpenAI, Anthropic) implement the Model interface from this
// package so higher layers (stages, graph) remain decoupled from vendor SDKs.
package model
