package clustering

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/hemajv/insights-clustering/partition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var m map[string]any
		require.NoError(t, dec.Decode(&m))
		out = append(out, m)
	}
	return out
}

func TestLogger_Context(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, slog.LevelInfo).WithK(4).WithDimension(2).WithRunID("r1")
	l.Info("hello")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "hello", lines[0]["msg"])
	assert.Equal(t, 4.0, lines[0]["k"])
	assert.Equal(t, 2.0, lines[0]["dimension"])
	assert.Equal(t, "r1", lines[0]["run_id"])
}

func TestLogger_LogDay(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, slog.LevelInfo)
	ctx := context.Background()

	l.LogDay(ctx, "d1", &DayResult{Rows: 10, Features: 3, Inertia: 1.5, Silhouette: 0.7}, nil)
	l.LogDay(ctx, "d2", nil, errors.New("boom"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, 10.0, lines[0]["rows"])
	assert.Equal(t, "ERROR", lines[1]["level"])
	assert.Equal(t, "boom", lines[1]["error"])
	assert.Equal(t, "d2", lines[1]["observation"])
}

func TestLogger_LogComparison(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(&buf, slog.LevelInfo)
	ctx := context.Background()

	l.LogComparison(ctx, &Comparison{
		Shared:    4,
		Stability: 75,
		Alignment: &partition.Alignment{TotalMismatch: 1},
	}, nil)
	l.LogComparison(ctx, nil, ErrEmptyUniverse)
	l.LogDropped(ctx, &LabelRangeError{Observation: "d1", K: 2, Labels: []partition.Labeled{{ID: "a", Label: 7}}})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 3)
	assert.Equal(t, 75.0, lines[0]["stability"])
	assert.Equal(t, 1.0, lines[0]["total_mismatch"])
	assert.Equal(t, "ERROR", lines[1]["level"])
	assert.Equal(t, "WARN", lines[2]["level"])
	assert.Equal(t, 1.0, lines[2]["count"])
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf, slog.LevelWarn)
	l.Info("hidden")
	l.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	NewTerminalLogger(&buf, slog.LevelInfo).Info("colour", "k", 1)
	assert.Contains(t, buf.String(), "colour")

	NoopLogger().Error("nothing")
}

func TestLabelRangeError_Message(t *testing.T) {
	labels := make([]partition.Labeled, 7)
	for i := range labels {
		labels[i] = partition.Labeled{ID: partition.EntityID(string(rune('a' + i))), Label: 9}
	}
	e := &LabelRangeError{Observation: "d1", K: 3, Labels: labels}
	assert.Equal(t,
		"observation d1: 7 labels outside [0, 3): a=9, b=9, c=9, d=9, e=9, ... (2 more)",
		e.Error())
}

func TestConfigError_Unwrap(t *testing.T) {
	e := &ConfigError{Key: "K_CLUSTERS", cause: errRequired}
	assert.Equal(t, "config K_CLUSTERS: required", e.Error())
	assert.ErrorIs(t, e, errRequired)

	e = &ConfigError{Key: "K_CLUSTERS", Value: "x", cause: errors.New("bad")}
	assert.Equal(t, `config K_CLUSTERS="x": bad`, e.Error())
}
