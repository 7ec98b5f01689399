package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal(line, &rec))
		out = append(out, rec)
	}
	return out
}

func TestNewLogger_ScopesAndLevels(t *testing.T) {
	var buf bytes.Buffer
	l := With(NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf, Component: "graph"}),
		"session_id", "s1", "run_id", "r1")

	l.Debug("hidden")
	l.Info("graph.stage.start", "stage", "validate")

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "graph.stage.start", recs[0]["msg"])
	assert.Equal(t, "graph", recs[0]["component"])
	assert.Equal(t, "s1", recs[0]["session_id"])
	assert.Equal(t, "r1", recs[0]["run_id"])
	assert.Equal(t, "validate", recs[0]["stage"])
}

func TestNewLogger_ErrorKeyRenamed(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "json", Output: &buf})

	l.Error("tool.call.failed", "tool", "search", "error", errors.New("boom").Error())

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "boom", recs[0]["err"])
	assert.NotContains(t, recs[0], "error")
}

type recorder struct {
	msgs []string
	args [][]any
}

func (r *recorder) record(msg string, args []any) {
	r.msgs = append(r.msgs, msg)
	r.args = append(r.args, args)
}

func (r *recorder) Debug(msg string, args ...any) { r.record(msg, args) }
func (r *recorder) Info(msg string, args ...any)  { r.record(msg, args) }
func (r *recorder) Warn(msg string, args ...any)  { r.record(msg, args) }
func (r *recorder) Error(msg string, args ...any) { r.record(msg, args) }

func TestWith_WrapsForeignLoggers(t *testing.T) {
	rec := &recorder{}
	l := With(With(rec, "run_id", "r1"), "stage", "research")

	l.Warn("research.tools_exhausted", "tool_passes", 8)

	require.Len(t, rec.msgs, 1)
	assert.Equal(t, []any{"run_id", "r1", "stage", "research", "tool_passes", 8}, rec.args[0])
	assert.Same(t, rec, With(rec))
}

func TestWith_NoOp(t *testing.T) {
	assert.Equal(t, NoOpLogger{}, With(NoOpLogger{}, "k", "v"))
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("WARN")
	assert.NoError(t, err)
	assert.Equal(t, LogLevelWarn, lvl)
	assert.Equal(t, "WARN", lvl.String())

	lvl, err = ParseLevel("")
	assert.NoError(t, err)
	assert.Equal(t, LogLevelInfo, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}
