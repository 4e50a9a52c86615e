// Package preprocess standardizes feature matrices and projects them onto
// their leading principal components.
package preprocess

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrComponents is returned when the requested component count is not
	// in [1, min(rows, cols)].
	ErrComponents = errors.New("preprocess: invalid number of components")

	// ErrDecomposition is returned when the SVD behind PCA fails.
	ErrDecomposition = errors.New("preprocess: principal component decomposition failed")
)

// Standardize returns a copy of x with every column shifted to zero mean
// and scaled to unit population variance. Constant columns are only
// centered.
func Standardize(x mat.Matrix) *mat.Dense {
	r, c := x.Dims()
	out := mat.DenseCopyOf(x)
	if r == 0 {
		return out
	}

	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, out)
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 {
			std = 1
		}
		for i := range col {
			col[i] = (col[i] - mean) / std
		}
		out.SetCol(j, col)
	}
	return out
}

// Projection is the outcome of a PCA reduction.
type Projection struct {
	// Points holds the rows expressed in the leading components.
	Points *mat.Dense
	// ExplainedVarianceRatio is each kept component's share of the total
	// variance, in decreasing order.
	ExplainedVarianceRatio []float64
}

// PCA centers x and projects it onto its first components principal axes.
func PCA(x mat.Matrix, components int) (*Projection, error) {
	r, c := x.Dims()
	if components < 1 || components > min(r, c) {
		return nil, fmt.Errorf("%w: %d for a %dx%d matrix", ErrComponents, components, r, c)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(x, nil); !ok {
		return nil, ErrDecomposition
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := pc.VarsTo(nil)

	centered := mat.DenseCopyOf(x)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, centered)
		mean := stat.Mean(col, nil)
		for i := range col {
			col[i] -= mean
		}
		centered.SetCol(j, col)
	}

	var points mat.Dense
	points.Mul(centered, vecs.Slice(0, c, 0, components))

	total := 0.0
	for _, v := range vars {
		total += v
	}
	ratio := make([]float64, components)
	for i := range ratio {
		if total > 0 {
			ratio[i] = vars[i] / total
		}
	}

	return &Projection{Points: &points, ExplainedVarianceRatio: ratio}, nil
}
