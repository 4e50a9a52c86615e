package partition

import "math"

// Match pairs a source cluster with its best-overlapping target cluster.
type Match struct {
	Source int
	Target int
	// Mismatch is |A_source \ B_target|.
	Mismatch int
}

// Alignment is the directional best-match of every source cluster.
type Alignment struct {
	Matches       []Match
	TotalMismatch int
}

// Align matches each cluster i of a, for i in [0, k), to the cluster j of b
// that minimises |A_i \ B_j|. Ties go to the smallest j. Several source
// clusters may pick the same target; no global assignment is solved.
func Align(a, b *Partition, k int) (*Alignment, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}
	if a.universe != b.universe {
		return nil, ErrUniverseMismatch
	}

	al := &Alignment{Matches: make([]Match, 0, k)}
	for i := 0; i < k; i++ {
		src := a.cluster(i)
		srcCard := src.GetCardinality()

		best := Match{Source: i, Target: -1}
		smallest := uint64(math.MaxUint64)
		for j := 0; j < k; j++ {
			diff := srcCard - src.AndCardinality(b.cluster(j))
			if diff < smallest {
				smallest = diff
				best.Target = j
			}
		}
		best.Mismatch = int(smallest)

		al.Matches = append(al.Matches, best)
		al.TotalMismatch += best.Mismatch
	}
	return al, nil
}

// Score returns (1 - total_mismatch/universeSize) * 100 for the alignment
// of a onto b. 100 means every source cluster is contained in some target
// cluster. The value goes negative when the total mismatch exceeds the
// universe size.
func Score(a, b *Partition, k, universeSize int) (float64, error) {
	if universeSize <= 0 {
		return 0, ErrEmptyUniverse
	}
	al, err := Align(a, b, k)
	if err != nil {
		return 0, err
	}
	return al.Score(universeSize)
}

// Score normalises the alignment's total mismatch by universeSize.
func (al *Alignment) Score(universeSize int) (float64, error) {
	if universeSize <= 0 {
		return 0, ErrEmptyUniverse
	}
	return (1 - float64(al.TotalMismatch)/float64(universeSize)) * 100.0, nil
}
