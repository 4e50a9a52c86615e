package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobs(t *testing.T) {
	rng := NewRNG(4711)

	points, truth := rng.Blobs(9, 3, 3, 0.1)
	require.Len(t, points, 9)
	require.Len(t, truth, 9)
	assert.Len(t, points[0], 3)
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2, 0, 1, 2}, truth)

	// Centre 2 sits at 30 on axis 2.
	assert.InDelta(t, 30, points[2][2], 1)
}

func TestBlobs_Reset(t *testing.T) {
	rng := NewRNG(1)
	a, _ := rng.Blobs(4, 2, 2, 1)
	rng.Reset()
	b, _ := rng.Blobs(4, 2, 2, 1)
	assert.Equal(t, a, b)
}

func TestRuleRows(t *testing.T) {
	rows := RuleRows([]string{"a", "b"}, [][]float64{{1, 2}, {3, 4, 5, 6}})
	require.Len(t, rows, 2)
	assert.Equal(t, 2.0, rows[0].RuleB)
	assert.Equal(t, 0.0, rows[0].RuleC)
	assert.Equal(t, 6.0, rows[1].RuleD)
	assert.Equal(t, "b", rows[1].SystemID)
}

func TestWriteCSV(t *testing.T) {
	out := string(WriteCSV(RuleRows([]string{"x"}, [][]float64{{1.5}})))
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(RuleColumns, ","), lines[0])
	assert.Equal(t, "0,1.5,0,0,0,x,1577836800", lines[1])
}

func TestWriteParquet(t *testing.T) {
	data, err := WriteParquet(RuleRows(IDs(0, 3), [][]float64{{1}, {2}, {3}}))
	require.NoError(t, err)
	assert.Equal(t, "PAR1", string(data[:4]))
}

func TestIDs(t *testing.T) {
	assert.Equal(t, []string{"sys-5", "sys-6"}, IDs(5, 2))
}
