package clustering

import (
	"testing"

	"github.com/hemajv/insights-clustering/partition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(obs string, labels map[string]int) *DayResult {
	ids := make([]partition.EntityID, 0, len(labels))
	for id := range labels {
		ids = append(ids, partition.EntityID(id))
	}
	partition.SortIDs(ids)
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = labels[string(id)]
	}
	return &DayResult{Observation: obs, IDs: ids, Labels: out}
}

func TestCompare_WorkedExample(t *testing.T) {
	d1 := day("d1", map[string]int{"1": 0, "2": 0, "3": 1, "4": 1, "9": 1})
	d2 := day("d2", map[string]int{"1": 0, "2": 0, "3": 0, "4": 1, "7": 0})

	cmp, err := Compare(d1, d2, 2)
	require.NoError(t, err)

	assert.Equal(t, 4, cmp.Shared)
	assert.InDelta(t, 75.0, cmp.Stability, 1e-12)
	assert.Equal(t, 1, cmp.Alignment.TotalMismatch)
	assert.Equal(t, []partition.Match{
		{Source: 0, Target: 0, Mismatch: 0},
		{Source: 1, Target: 0, Mismatch: 1},
	}, cmp.Alignment.Matches)
}

func TestCompare_Identical(t *testing.T) {
	labels := map[string]int{"a": 0, "b": 0, "c": 1, "d": 1, "e": 2}
	cmp, err := Compare(day("d1", labels), day("d2", labels), 3)
	require.NoError(t, err)

	assert.Equal(t, 100.0, cmp.Stability)
	assert.InDelta(t, 1, cmp.AdjustedRand, 1e-12)
	assert.InDelta(t, 1, cmp.FowlkesMallows, 1e-12)
	assert.InDelta(t, 0, cmp.VariationOfInformation, 1e-12)
}

func TestCompare_Relabeled(t *testing.T) {
	d1 := day("d1", map[string]int{"1": 0, "2": 0, "3": 1, "4": 1})
	d2 := day("d2", map[string]int{"1": 1, "2": 1, "3": 0, "4": 0})

	cmp, err := Compare(d1, d2, 2)
	require.NoError(t, err)
	assert.Equal(t, 100.0, cmp.Stability)
	assert.InDelta(t, 1, cmp.AdjustedRand, 1e-12)
}

func TestCompare_PairsBySortedID(t *testing.T) {
	// Same assignment presented in different row orders.
	d1 := &DayResult{
		IDs:    []partition.EntityID{"10", "2", "1"},
		Labels: []int{1, 0, 0},
	}
	d2 := &DayResult{
		IDs:    []partition.EntityID{"1", "10", "2"},
		Labels: []int{0, 1, 0},
	}
	cmp, err := Compare(d1, d2, 2)
	require.NoError(t, err)
	assert.Equal(t, 100.0, cmp.Stability)
	assert.InDelta(t, 1, cmp.AdjustedRand, 1e-12)
}

func TestCompare_Errors(t *testing.T) {
	d := day("d", map[string]int{"1": 0, "2": 1})

	_, err := Compare(d, d, 0)
	assert.ErrorIs(t, err, ErrInvalidK)

	_, err = Compare(&DayResult{}, d, 2)
	assert.ErrorIs(t, err, ErrEmptyAssignment)

	other := day("o", map[string]int{"3": 0, "4": 1})
	_, err = Compare(d, other, 2)
	assert.ErrorIs(t, err, ErrEmptyUniverse)

	bad := day("bad", map[string]int{"1": 0, "2": 5})
	_, err = Compare(d, bad, 2)
	var lre *LabelRangeError
	require.ErrorAs(t, err, &lre)
	assert.Equal(t, "bad", lre.Observation)
	assert.Equal(t, 2, lre.K)
	assert.Equal(t, []partition.Labeled{{ID: "2", Label: 5}}, lre.Labels)
}
