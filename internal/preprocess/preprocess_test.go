package preprocess

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestStandardize(t *testing.T) {
	x := mat.NewDense(4, 3, []float64{
		1, 10, 5,
		2, 20, 5,
		3, 30, 5,
		4, 40, 5,
	})
	out := Standardize(x)

	col := make([]float64, 4)
	for j := 0; j < 2; j++ {
		mat.Col(col, j, out)
		assert.InDelta(t, 0, stat.Mean(col, nil), 1e-12)
		assert.InDelta(t, 1, stat.PopStdDev(col, nil), 1e-12)
	}

	// Constant column is centered, not scaled.
	mat.Col(col, 2, out)
	assert.Equal(t, []float64{0, 0, 0, 0}, col)

	// Input untouched.
	assert.Equal(t, 10.0, x.At(0, 1))
}

func TestPCA_RankOne(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{
		1, 2,
		2, 4,
		3, 6,
		4, 8,
	})
	proj, err := PCA(x, 1)
	require.NoError(t, err)

	r, c := proj.Points.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 1, c)
	require.Len(t, proj.ExplainedVarianceRatio, 1)
	assert.InDelta(t, 1, proj.ExplainedVarianceRatio[0], 1e-9)

	// A rank-one projection preserves pairwise distances.
	gap := math.Abs(proj.Points.At(1, 0) - proj.Points.At(0, 0))
	assert.InDelta(t, math.Sqrt(5), gap, 1e-9)

	// Projected coordinates are centered.
	col := mat.Col(nil, 0, proj.Points)
	assert.InDelta(t, 0, stat.Mean(col, nil), 1e-9)
}

func TestPCA_VarianceOrder(t *testing.T) {
	x := mat.NewDense(6, 3, []float64{
		10, 1, 0.1,
		-10, -1, -0.1,
		20, 1, 0.2,
		-20, -1, 0.1,
		5, 2, -0.2,
		-5, -2, -0.1,
	})
	proj, err := PCA(x, 3)
	require.NoError(t, err)

	ratios := proj.ExplainedVarianceRatio
	assert.GreaterOrEqual(t, ratios[0], ratios[1])
	assert.GreaterOrEqual(t, ratios[1], ratios[2])
	assert.InDelta(t, 1, ratios[0]+ratios[1]+ratios[2], 1e-9)
}

func TestPCA_InvalidComponents(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})

	_, err := PCA(x, 0)
	assert.ErrorIs(t, err, ErrComponents)

	_, err = PCA(x, 3)
	assert.ErrorIs(t, err, ErrComponents)
}

func TestStandardize_PopulationScale(t *testing.T) {
	// Mean 5, population standard deviation 2.
	x := mat.NewDense(8, 1, []float64{2, 4, 4, 4, 5, 5, 7, 9})
	out := Standardize(x)

	assert.InDeltaSlice(t, []float64{-1.5, -0.5, -0.5, -0.5, 0, 0, 1, 2}, mat.Col(nil, 0, out), 1e-12)
}
