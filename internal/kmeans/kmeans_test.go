package kmeans

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrain(t *testing.T) {
	ctx := context.Background()
	// 2 clusters: (0,0) and (10,10)
	vecs := []float64{
		0, 0, 0, 1, 1, 0, // near 0,0
		10, 10, 10, 11, 11, 10, // near 10,10
	}
	k := 2
	dim := 2

	res, err := Train(ctx, vecs, dim, k, Options{Seed: 1, NInit: 5})
	require.NoError(t, err)
	assert.Len(t, res.Centroids, k*dim)
	require.Len(t, res.Labels, 6)

	assert.Equal(t, res.Labels[0], res.Labels[1])
	assert.Equal(t, res.Labels[0], res.Labels[2])
	assert.Equal(t, res.Labels[3], res.Labels[4])
	assert.Equal(t, res.Labels[3], res.Labels[5])
	assert.NotEqual(t, res.Labels[0], res.Labels[3])

	// Each cluster's points sit at squared distances 2/9, 5/9 and 5/9 from
	// its centroid.
	assert.InDelta(t, 8.0/3.0, res.Inertia, 1e-9)

	p1, _ := Assign([]float64{0.5, 0.5}, res.Centroids, dim)
	p2, _ := Assign([]float64{10.5, 10.5}, res.Centroids, dim)
	assert.Equal(t, res.Labels[0], p1)
	assert.Equal(t, res.Labels[3], p2)
}

func TestTrain_Deterministic(t *testing.T) {
	ctx := context.Background()
	vecs := make([]float64, 0, 200*2)
	for i := 0; i < 200; i++ {
		vecs = append(vecs, float64(i%7), float64(i%13))
	}

	a, err := Train(ctx, vecs, 2, 4, Options{Seed: 42, NInit: 3})
	require.NoError(t, err)
	b, err := Train(ctx, vecs, 2, 4, Options{Seed: 42, NInit: 3})
	require.NoError(t, err)

	assert.Equal(t, a.Labels, b.Labels)
	assert.Equal(t, a.Inertia, b.Inertia)
	for _, l := range a.Labels {
		assert.GreaterOrEqual(t, l, 0)
		assert.Less(t, l, 4)
	}
}

func TestTrain_DuplicatePoints(t *testing.T) {
	vecs := []float64{1, 1, 1, 1, 1, 1}
	res, err := Train(context.Background(), vecs, 2, 2, Options{Seed: 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Inertia)
	assert.Len(t, res.Labels, 3)
}

func TestTrain_NotEnoughVectors(t *testing.T) {
	ctx := context.Background()
	vecs := []float64{0, 0}
	_, err := Train(ctx, vecs, 2, 2, Options{})
	assert.ErrorIs(t, err, ErrNotEnoughPoints)
}

func TestTrain_Error(t *testing.T) {
	ctx := context.Background()
	_, err := Train(ctx, []float64{0, 0, 0}, 2, 1, Options{})
	assert.Error(t, err)

	_, err = Train(ctx, []float64{0, 0}, 2, 0, Options{})
	assert.Error(t, err)
}

func TestTrain_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	// Large enough to require iteration
	vecs := make([]float64, 1000*2)
	for i := range vecs {
		vecs[i] = float64(i)
	}

	_, err := Train(ctx, vecs, 2, 10, Options{MaxIter: 1000})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAssign(t *testing.T) {
	centroids := []float64{
		0, 0, // 0
		10, 10, // 1
		20, 20, // 2
	}

	idx, d := Assign([]float64{19, 19}, centroids, 2)
	assert.Equal(t, 2, idx)
	assert.Equal(t, 2.0, d)

	idx, _ = Assign([]float64{1, 1}, centroids, 2)
	assert.Equal(t, 0, idx)
}
