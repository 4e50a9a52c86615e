package partition

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// groupPair groups two label maps over their shared universe.
func groupPair(t *testing.T, k int, a, b map[int]int) (*Partition, *Partition, *Universe) {
	t.Helper()
	aa, bb := assign(a), assign(b)
	u := Shared(aa, bb)
	pa, err := Group(u, aa.Restrict(u), k)
	require.NoError(t, err)
	pb, err := Group(u, bb.Restrict(u), k)
	require.NoError(t, err)
	return pa, pb, u
}

func TestScore_WorkedExample(t *testing.T) {
	// A = {0:{1,2}, 1:{3,4}}, B = {0:{1,2,3}, 1:{4}}
	pa, pb, u := groupPair(t, 2,
		map[int]int{1: 0, 2: 0, 3: 1, 4: 1},
		map[int]int{1: 0, 2: 0, 3: 0, 4: 1},
	)
	require.Equal(t, 4, u.Len())

	al, err := Align(pa, pb, 2)
	require.NoError(t, err)
	assert.Equal(t, []Match{
		{Source: 0, Target: 0, Mismatch: 0},
		// |{3,4}\{1,2,3}| == |{3,4}\{4}| == 1; the first index wins.
		{Source: 1, Target: 0, Mismatch: 1},
	}, al.Matches)
	assert.Equal(t, 1, al.TotalMismatch)

	score, err := Score(pa, pb, 2, u.Len())
	require.NoError(t, err)
	assert.Equal(t, 75.0, score)
}

func TestScore_Identical(t *testing.T) {
	labels := map[int]int{0: 0, 1: 0, 2: 1, 3: 1, 4: 1, 5: 2, 6: 2, 7: 2, 8: 0, 9: 1}
	pa, pb, u := groupPair(t, 3, labels, labels)
	require.Equal(t, 10, u.Len())

	score, err := Score(pa, pb, 3, u.Len())
	require.NoError(t, err)
	assert.Equal(t, 100.0, score)

	self, err := Score(pa, pa, 3, u.Len())
	require.NoError(t, err)
	assert.Equal(t, 100.0, self)
}

func TestScore_RelabeledIsStable(t *testing.T) {
	// Same grouping, labels permuted: alignment recovers the correspondence.
	pa, pb, u := groupPair(t, 3,
		map[int]int{1: 0, 2: 0, 3: 1, 4: 1, 5: 2, 6: 2},
		map[int]int{1: 2, 2: 2, 3: 0, 4: 0, 5: 1, 6: 1},
	)
	score, err := Score(pa, pb, 3, u.Len())
	require.NoError(t, err)
	assert.Equal(t, 100.0, score)
}

func TestScore_Asymmetric(t *testing.T) {
	// A lumps everything together; B splits it in two.
	pa, pb, u := groupPair(t, 2,
		map[int]int{1: 0, 2: 0, 3: 0, 4: 0},
		map[int]int{1: 0, 2: 0, 3: 1, 4: 1},
	)

	ab, err := Score(pa, pb, 2, u.Len())
	require.NoError(t, err)
	ba, err := Score(pb, pa, 2, u.Len())
	require.NoError(t, err)

	assert.Equal(t, 50.0, ab)
	assert.Equal(t, 100.0, ba)
	assert.NotEqual(t, ab, ba)
}

func TestScore_Monotonic(t *testing.T) {
	base := map[int]int{1: 0, 2: 0, 3: 1, 4: 1, 5: 1, 6: 0}
	pa, pb, u := groupPair(t, 2, base, base)
	before, err := Score(pa, pb, 2, u.Len())
	require.NoError(t, err)

	for id := range base {
		moved := make(map[int]int, len(base))
		for k, v := range base {
			moved[k] = v
		}
		moved[id] = 1 - moved[id]

		pa, pb, u := groupPair(t, 2, base, moved)
		after, err := Score(pa, pb, 2, u.Len())
		require.NoError(t, err)
		assert.LessOrEqualf(t, after, before, "moving entity %d raised the score", id)
	}
}

func TestScore_Disjoint(t *testing.T) {
	u := NewUniverse(ids(1, 2, 3, 4))
	pa, err := Group(u, NewAssignment(ids(1, 2, 3, 4), []int{0, 0, 1, 1}), 2)
	require.NoError(t, err)
	// Every label of B is out of range, so no A cluster overlaps anything.
	pb, err := Group(u, NewAssignment(ids(1, 2, 3, 4), []int{7, 7, 8, 8}), 2)
	require.NoError(t, err)

	score, err := Score(pa, pb, 2, u.Len())
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)

	// Normalising by a universe smaller than the mismatch goes negative.
	neg, err := Score(pa, pb, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, -100.0, neg)
}

func TestScore_EmptyUniverse(t *testing.T) {
	u := NewUniverse(nil)
	pa, err := Group(u, nil, 2)
	require.NoError(t, err)

	score, err := Score(pa, pa, 2, 0)
	assert.ErrorIs(t, err, ErrEmptyUniverse)
	assert.False(t, math.IsNaN(score))

	al, err := Align(pa, pa, 2)
	require.NoError(t, err)
	_, err = al.Score(0)
	assert.ErrorIs(t, err, ErrEmptyUniverse)
}

func TestAlign_Errors(t *testing.T) {
	pa, err := GroupAll(NewAssignment(ids(1), []int{0}), 1)
	require.NoError(t, err)
	pb, err := GroupAll(NewAssignment(ids(1), []int{0}), 1)
	require.NoError(t, err)

	_, err = Align(pa, pb, 1)
	assert.ErrorIs(t, err, ErrUniverseMismatch)

	_, err = Align(pa, pa, 0)
	assert.ErrorIs(t, err, ErrInvalidK)
}

func TestAlign_KBeyondPartition(t *testing.T) {
	// Labels the partitions have no bucket for behave as empty clusters.
	pa, pb, u := groupPair(t, 2,
		map[int]int{1: 0, 2: 1},
		map[int]int{1: 1, 2: 0},
	)
	score, err := Score(pa, pb, 3, u.Len())
	require.NoError(t, err)
	assert.Equal(t, 100.0, score)
}
