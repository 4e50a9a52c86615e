// Package agreement computes external clustering-agreement metrics over two
// paired label sequences: index i of both sequences must describe the same
// entity.
package agreement

import (
	"errors"
	"math"
)

var (
	// ErrLengthMismatch is returned when the label sequences differ in length.
	ErrLengthMismatch = errors.New("agreement: label sequences differ in length")

	// ErrEmpty is returned when the label sequences are empty.
	ErrEmpty = errors.New("agreement: label sequences are empty")
)

// Contingency is the joint label count table of two clusterings.
type Contingency struct {
	N int
	// Counts[i][j] is the number of entities with the i-th distinct label of
	// the first clustering and the j-th distinct label of the second.
	Counts  [][]int
	RowSums []int
	ColSums []int
}

// NewContingency builds the contingency table of a and b.
func NewContingency(a, b []int) (*Contingency, error) {
	if len(a) != len(b) {
		return nil, ErrLengthMismatch
	}
	if len(a) == 0 {
		return nil, ErrEmpty
	}

	aIdx := indexLabels(a)
	bIdx := indexLabels(b)

	c := &Contingency{
		N:       len(a),
		Counts:  make([][]int, len(aIdx)),
		RowSums: make([]int, len(aIdx)),
		ColSums: make([]int, len(bIdx)),
	}
	for i := range c.Counts {
		c.Counts[i] = make([]int, len(bIdx))
	}
	for k := range a {
		i, j := aIdx[a[k]], bIdx[b[k]]
		c.Counts[i][j]++
		c.RowSums[i]++
		c.ColSums[j]++
	}
	return c, nil
}

// indexLabels maps each distinct label to its first-appearance index.
func indexLabels(labels []int) map[int]int {
	idx := make(map[int]int)
	for _, l := range labels {
		if _, ok := idx[l]; !ok {
			idx[l] = len(idx)
		}
	}
	return idx
}

// MutualInfo returns the mutual information of a and b in nats.
func MutualInfo(a, b []int) (float64, error) {
	c, err := NewContingency(a, b)
	if err != nil {
		return 0, err
	}
	return c.MutualInfo(), nil
}

// MutualInfo returns sum_ij p_ij * ln(p_ij / (p_i * p_j)), clipped at zero.
func (c *Contingency) MutualInfo() float64 {
	n := float64(c.N)
	mi := 0.0
	for i, row := range c.Counts {
		for j, nij := range row {
			if nij == 0 {
				continue
			}
			pij := float64(nij) / n
			mi += pij * (math.Log(float64(nij)*n) - math.Log(float64(c.RowSums[i])*float64(c.ColSums[j])))
		}
	}
	return math.Max(mi, 0)
}

// FowlkesMallows returns the geometric mean of pairwise precision and
// recall between a and b.
func FowlkesMallows(a, b []int) (float64, error) {
	c, err := NewContingency(a, b)
	if err != nil {
		return 0, err
	}
	return c.FowlkesMallows(), nil
}

// FowlkesMallows returns sqrt(tk/pk) * sqrt(tk/qk), or 0 when no pair of
// entities shares a cluster in both clusterings.
func (c *Contingency) FowlkesMallows() float64 {
	n := float64(c.N)

	tk := -n
	for _, row := range c.Counts {
		for _, nij := range row {
			tk += float64(nij) * float64(nij)
		}
	}
	if tk == 0 {
		return 0
	}

	pk, qk := -n, -n
	for _, s := range c.ColSums {
		pk += float64(s) * float64(s)
	}
	for _, s := range c.RowSums {
		qk += float64(s) * float64(s)
	}
	return math.Sqrt(tk/pk) * math.Sqrt(tk/qk)
}

// AdjustedRandIndex returns the chance-corrected Rand index of a and b.
// 1 is perfect agreement, 0 is what random labelling scores on average,
// and negative values are worse than random.
func AdjustedRandIndex(a, b []int) (float64, error) {
	c, err := NewContingency(a, b)
	if err != nil {
		return 0, err
	}
	return c.AdjustedRandIndex(), nil
}

// AdjustedRandIndex computes (index - expected) / (max - expected) from
// pair counts of the table.
func (c *Contingency) AdjustedRandIndex() float64 {
	sumNij := 0.0
	for _, row := range c.Counts {
		for _, nij := range row {
			sumNij += comb2(nij)
		}
	}
	sumA := 0.0
	for _, s := range c.RowSums {
		sumA += comb2(s)
	}
	sumB := 0.0
	for _, s := range c.ColSums {
		sumB += comb2(s)
	}

	nC2 := comb2(c.N)
	if nC2 == 0 {
		// A single entity: both clusterings trivially agree.
		return 1.0
	}

	expected := sumA * sumB / nC2
	maxIndex := 0.5 * (sumA + sumB)
	denominator := maxIndex - expected
	if math.Abs(denominator) < 1e-12 {
		// Both all-singletons or both a single cluster.
		return 1.0
	}
	return (sumNij - expected) / denominator
}

// VariationOfInformation returns H(A|B) + H(B|A) in bits. 0 means the
// clusterings are identical up to relabelling.
func VariationOfInformation(a, b []int) (float64, error) {
	c, err := NewContingency(a, b)
	if err != nil {
		return 0, err
	}
	return c.VariationOfInformation(), nil
}

// VariationOfInformation computes the conditional entropies from the table.
func (c *Contingency) VariationOfInformation() float64 {
	n := float64(c.N)
	vi := 0.0
	for i, row := range c.Counts {
		for j, nij := range row {
			if nij == 0 {
				continue
			}
			pij := float64(nij) / n
			vi -= pij * math.Log2(float64(nij)/float64(c.ColSums[j]))
			vi -= pij * math.Log2(float64(nij)/float64(c.RowSums[i]))
		}
	}
	return vi
}

// comb2 computes C(n, 2).
func comb2(n int) float64 {
	if n < 2 {
		return 0
	}
	return float64(n) * float64(n-1) / 2.0
}
