package clustering

import (
	"github.com/hemajv/insights-clustering/agreement"
	"github.com/hemajv/insights-clustering/partition"
)

// Comparison is the agreement between two days' clusterings over the
// entities they share.
type Comparison struct {
	// Shared is the number of entities present on both days.
	Shared int

	MutualInfo             float64
	FowlkesMallows         float64
	AdjustedRand           float64
	VariationOfInformation float64

	// Alignment maps each day-1 cluster to its best day-2 match.
	Alignment *partition.Alignment
	// Stability is (1 - mismatch/shared) * 100.
	Stability float64
}

// Compare scores how well day1's clustering is preserved in day2's.
//
// Only entities present on both days take part. Their rows are ordered by
// entity id so the two label sequences are paired. Any label outside
// [0, k) on either day fails the comparison with a *LabelRangeError.
func Compare(day1, day2 *DayResult, k int) (*Comparison, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}
	a1, a2 := day1.Assignment(), day2.Assignment()
	if len(a1) == 0 || len(a2) == 0 {
		return nil, ErrEmptyAssignment
	}
	for _, d := range []struct {
		obs string
		a   partition.Assignment
	}{{day1.Observation, a1}, {day2.Observation, a2}} {
		if bad := d.a.OutOfRange(k); len(bad) > 0 {
			return nil, &LabelRangeError{Observation: d.obs, K: k, Labels: bad}
		}
	}

	u := partition.Shared(a1, a2)
	if u.Len() == 0 {
		return nil, ErrEmptyUniverse
	}
	r1, r2 := a1.Restrict(u), a2.Restrict(u)

	p1, err := partition.Group(u, r1, k)
	if err != nil {
		return nil, err
	}
	p2, err := partition.Group(u, r2, k)
	if err != nil {
		return nil, err
	}

	ct, err := agreement.NewContingency(r1.Labels(), r2.Labels())
	if err != nil {
		return nil, err
	}

	al, err := partition.Align(p1, p2, k)
	if err != nil {
		return nil, err
	}
	score, err := al.Score(u.Len())
	if err != nil {
		return nil, err
	}

	return &Comparison{
		Shared:                 u.Len(),
		MutualInfo:             ct.MutualInfo(),
		FowlkesMallows:         ct.FowlkesMallows(),
		AdjustedRand:           ct.AdjustedRandIndex(),
		VariationOfInformation: ct.VariationOfInformation(),
		Alignment:              al,
		Stability:              score,
	}, nil
}
