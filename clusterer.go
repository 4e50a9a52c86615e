package clustering

import (
	"context"

	"github.com/hemajv/insights-clustering/internal/kmeans"
	"gonum.org/v1/gonum/mat"
)

// Clustering is the result of assigning every row of a point matrix to one
// of k clusters.
type Clustering struct {
	// Labels holds the cluster of each row, in [0, k).
	Labels []int
	// Inertia is the sum of squared distances of rows to their centroid.
	Inertia float64
	// Centroids is k x dim.
	Centroids *mat.Dense
	// Iterations is the number of refinement passes performed.
	Iterations int
}

// Clusterer assigns the rows of points to k clusters.
type Clusterer interface {
	Cluster(ctx context.Context, points *mat.Dense, k int) (*Clustering, error)
}

// KMeans clusters with k-means++ seeding and Lloyd iterations.
// The zero value uses 300 iterations, tolerance 1e-4, one restart and a
// random seed.
type KMeans struct {
	MaxIter int
	Tol     float64
	NInit   int
	// Seed makes clustering deterministic when non-zero.
	Seed uint64
}

// Cluster implements Clusterer.
func (km KMeans) Cluster(ctx context.Context, points *mat.Dense, k int) (*Clustering, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}
	n, dim := points.Dims()
	raw := points.RawMatrix()
	data := raw.Data
	if raw.Stride != dim {
		data = make([]float64, 0, n*dim)
		for i := 0; i < n; i++ {
			data = append(data, points.RawRowView(i)...)
		}
	}

	res, err := kmeans.Train(ctx, data[:n*dim], dim, k, kmeans.Options{
		MaxIter: km.MaxIter,
		Tol:     km.Tol,
		NInit:   km.NInit,
		Seed:    km.Seed,
	})
	if err != nil {
		return nil, err
	}
	return &Clustering{
		Labels:     res.Labels,
		Inertia:    res.Inertia,
		Centroids:  mat.NewDense(k, dim, res.Centroids),
		Iterations: res.Iterations,
	}, nil
}
