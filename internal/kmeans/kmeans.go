package kmeans

import (
	"context"
	"errors"
	"fmt"
	"math"
	rand "math/rand/v2"
)

// ErrNotEnoughPoints is returned when there are fewer points than clusters.
var ErrNotEnoughPoints = errors.New("kmeans: fewer points than clusters")

// Options tunes training.
type Options struct {
	// MaxIter bounds Lloyd iterations per restart. Defaults to 300.
	MaxIter int
	// Tol is the convergence threshold on the squared centroid shift,
	// relative to the mean per-feature variance of the data. Defaults to 1e-4.
	Tol float64
	// NInit is the number of seeded restarts; the lowest inertia wins.
	// Defaults to 1.
	NInit int
	// Seed makes training deterministic when non-zero.
	Seed uint64
}

func (o Options) withDefaults() Options {
	if o.MaxIter <= 0 {
		o.MaxIter = 300
	}
	if o.Tol <= 0 {
		o.Tol = 1e-4
	}
	if o.NInit <= 0 {
		o.NInit = 1
	}
	return o
}

// Result is a fitted clustering.
type Result struct {
	// Centroids are flattened (k * dim).
	Centroids []float64
	// Labels holds the cluster index in [0, k) of every point.
	Labels []int
	// Inertia is the sum of squared distances of points to their centroid.
	Inertia float64
	// Iterations is the Lloyd iteration count of the winning restart.
	Iterations int
}

// Train clusters the n = len(vectors)/dim points into k clusters.
func Train(ctx context.Context, vectors []float64, dim, k int, opts Options) (*Result, error) {
	if dim <= 0 || len(vectors)%dim != 0 {
		return nil, fmt.Errorf("kmeans: %d values do not form rows of dimension %d", len(vectors), dim)
	}
	if k <= 0 {
		return nil, fmt.Errorf("kmeans: k must be positive, got %d", k)
	}
	n := len(vectors) / dim
	if n < k {
		return nil, fmt.Errorf("%w: %d points, k=%d", ErrNotEnoughPoints, n, k)
	}

	opts = opts.withDefaults()
	rng := newRNG(opts.Seed)
	shiftTol := opts.Tol * meanVariance(vectors, dim)

	var best *Result
	for run := 0; run < opts.NInit; run++ {
		res, err := lloyd(ctx, vectors, dim, k, opts.MaxIter, shiftTol, rng)
		if err != nil {
			return nil, err
		}
		if best == nil || res.Inertia < best.Inertia {
			best = res
		}
	}
	return best, nil
}

func lloyd(ctx context.Context, vectors []float64, dim, k, maxIter int, shiftTol float64, rng *rand.Rand) (*Result, error) {
	n := len(vectors) / dim
	centroids := seedPlusPlus(vectors, dim, k, rng)

	assignments := make([]int, n)
	for i := range assignments {
		assignments[i] = -1
	}
	counts := make([]int, k)
	sums := make([]float64, k*dim)

	iter := 0
	for iter < maxIter {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		iter++

		// Assignment step
		changed := false
		for i := 0; i < n; i++ {
			best, _ := Assign(vectors[i*dim:(i+1)*dim], centroids, dim)
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		// Update step
		clear(sums)
		clear(counts)
		for i := 0; i < n; i++ {
			c := assignments[i]
			vec := vectors[i*dim : (i+1)*dim]
			for d := 0; d < dim; d++ {
				sums[c*dim+d] += vec[d]
			}
			counts[c]++
		}

		shift := 0.0
		for j := 0; j < k; j++ {
			center := centroids[j*dim : (j+1)*dim]
			if counts[j] == 0 {
				// Relocate an empty cluster onto the point worst served by
				// its current centroid.
				far := farthestPoint(vectors, dim, centroids, assignments)
				shift += squaredL2(center, vectors[far*dim:(far+1)*dim])
				copy(center, vectors[far*dim:(far+1)*dim])
				assignments[far] = j
				continue
			}
			scale := 1.0 / float64(counts[j])
			for d := 0; d < dim; d++ {
				next := sums[j*dim+d] * scale
				delta := next - center[d]
				shift += delta * delta
				center[d] = next
			}
		}
		if shift <= shiftTol {
			break
		}
	}

	// Final assignment against the converged centroids.
	inertia := 0.0
	for i := 0; i < n; i++ {
		best, d := Assign(vectors[i*dim:(i+1)*dim], centroids, dim)
		assignments[i] = best
		inertia += d
	}

	return &Result{
		Centroids:  centroids,
		Labels:     assignments,
		Inertia:    inertia,
		Iterations: iter,
	}, nil
}

// seedPlusPlus picks k initial centroids, each new one drawn with
// probability proportional to its squared distance from the nearest
// centroid chosen so far.
func seedPlusPlus(vectors []float64, dim, k int, rng *rand.Rand) []float64 {
	n := len(vectors) / dim
	centroids := make([]float64, k*dim)

	first := rng.IntN(n)
	copy(centroids[:dim], vectors[first*dim:(first+1)*dim])

	closest := make([]float64, n)
	total := 0.0
	for i := 0; i < n; i++ {
		closest[i] = squaredL2(vectors[i*dim:(i+1)*dim], centroids[:dim])
		total += closest[i]
	}

	for c := 1; c < k; c++ {
		pick := n - 1
		if total > 0 {
			target := rng.Float64() * total
			for i, d := range closest {
				target -= d
				if target <= 0 {
					pick = i
					break
				}
			}
		} else {
			// All points coincide with chosen centroids.
			pick = rng.IntN(n)
		}

		center := centroids[c*dim : (c+1)*dim]
		copy(center, vectors[pick*dim:(pick+1)*dim])

		total = 0
		for i := 0; i < n; i++ {
			if d := squaredL2(vectors[i*dim:(i+1)*dim], center); d < closest[i] {
				closest[i] = d
			}
			total += closest[i]
		}
	}
	return centroids
}

// Assign returns the index of the centroid closest to vec and the squared
// distance to it.
func Assign(vec, centroids []float64, dim int) (int, float64) {
	k := len(centroids) / dim
	bestCluster := -1
	minDist := math.Inf(1)

	for j := 0; j < k; j++ {
		d := squaredL2(vec, centroids[j*dim:(j+1)*dim])
		if d < minDist {
			minDist = d
			bestCluster = j
		}
	}
	return bestCluster, minDist
}

func farthestPoint(vectors []float64, dim int, centroids []float64, assignments []int) int {
	n := len(vectors) / dim
	far, farDist := 0, -1.0
	for i := 0; i < n; i++ {
		c := assignments[i]
		d := squaredL2(vectors[i*dim:(i+1)*dim], centroids[c*dim:(c+1)*dim])
		if d > farDist {
			far, farDist = i, d
		}
	}
	return far
}

func squaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func meanVariance(vectors []float64, dim int) float64 {
	n := float64(len(vectors) / dim)
	total := 0.0
	for d := 0; d < dim; d++ {
		mean := 0.0
		for i := d; i < len(vectors); i += dim {
			mean += vectors[i]
		}
		mean /= n
		for i := d; i < len(vectors); i += dim {
			diff := vectors[i] - mean
			total += diff * diff
		}
	}
	return total / n / float64(dim)
}

//nolint:gosec
func newRNG(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
