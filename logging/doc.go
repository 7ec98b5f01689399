// Package logging provides a minimal logging interface and adapters for tripgraph.
//
// The graph engine, tool dispatcher, stages and the HTTP boundary log through
// the Logger interface using dotted event names ("graph.stage.start",
// "tool.call.failed") and slog-style key/value pairs. This package includes:
//
//   - Logger interface for dependency injection
//   - With for scoping any Logger to a run, session or component
//   - SlogAdapter and NewLogger for JSON or text output via log/slog
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelDebug, Format: "text", Output: os.Stderr})
//	tg, err := tripgraph.New(m, func(o *tripgraph.Options) { o.Logger = logger })
package logging
