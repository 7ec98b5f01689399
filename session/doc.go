// Package session stores finished planning runs.
//
// A Record captures the final state of one run together with the session it
// belongs to. Stores keep the latest record per session so a follow-up run
// (for example after validation asked for a missing budget) can continue the
// conversation.
//
// InMemoryStore lives here; the Redis backend is in session/redis. Callers
// depend on the Store interface only and the wiring layer picks a backend.
package session
