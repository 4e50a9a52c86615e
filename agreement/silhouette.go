package agreement

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrSilhouetteLabels is returned when the number of distinct labels is not
// in [2, n-1]; the silhouette is undefined there.
var ErrSilhouetteLabels = errors.New("agreement: silhouette needs between 2 and n-1 distinct labels")

// Silhouette returns the mean silhouette coefficient of the rows of points
// under labels, using euclidean distance. For each point with own-cluster
// mean distance a and nearest other-cluster mean distance b the coefficient
// is (b-a)/max(a,b); points alone in their cluster score 0.
func Silhouette(points *mat.Dense, labels []int) (float64, error) {
	n, _ := points.Dims()
	if n != len(labels) {
		return 0, fmt.Errorf("%w: %d points, %d labels", ErrLengthMismatch, n, len(labels))
	}
	if n == 0 {
		return 0, ErrEmpty
	}

	idx := indexLabels(labels)
	nl := len(idx)
	if nl < 2 || nl > n-1 {
		return 0, fmt.Errorf("%w: got %d for %d points", ErrSilhouetteLabels, nl, n)
	}

	cluster := make([]int, n)
	sizes := make([]int, nl)
	for i, l := range labels {
		cluster[i] = idx[l]
		sizes[cluster[i]]++
	}

	// dist[i*nl+c] accumulates the distance from point i to every member of c.
	dist := make([]float64, n*nl)
	for i := 0; i < n; i++ {
		ri := points.RawRowView(i)
		for j := i + 1; j < n; j++ {
			d := floats.Distance(ri, points.RawRowView(j), 2)
			dist[i*nl+cluster[j]] += d
			dist[j*nl+cluster[i]] += d
		}
	}

	total := 0.0
	for i := 0; i < n; i++ {
		own := cluster[i]
		if sizes[own] < 2 {
			continue
		}
		a := dist[i*nl+own] / float64(sizes[own]-1)
		b := math.Inf(1)
		for c := 0; c < nl; c++ {
			if c == own {
				continue
			}
			b = math.Min(b, dist[i*nl+c]/float64(sizes[c]))
		}
		if m := math.Max(a, b); m > 0 {
			total += (b - a) / m
		}
	}
	return total / float64(n), nil
}
