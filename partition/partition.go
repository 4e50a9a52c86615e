package partition

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// emptyCluster stands in for labels a partition has no bucket for.
var emptyCluster = roaring.New()

// Partition maps each label in [0, k) to the set of entities carrying it.
// Sets are pairwise disjoint. Partitions are immutable once grouped.
type Partition struct {
	universe *Universe
	clusters []*roaring.Bitmap
	dropped  []Labeled
	outside  []Labeled
}

// Group partitions the rows of a whose id is in u into k clusters keyed by
// label.
//
// Rows with a label outside [0, k) are placed in no bucket and are reported
// by Dropped. Rows whose id is not in u are placed in no bucket and are
// reported by Outside. Labels nobody carries map to empty sets.
func Group(u *Universe, a Assignment, k int) (*Partition, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}

	p := &Partition{
		universe: u,
		clusters: make([]*roaring.Bitmap, k),
	}
	for i := range p.clusters {
		p.clusters[i] = roaring.New()
	}

	first := make(map[EntityID]int, len(a))
	for _, e := range a {
		if prev, ok := first[e.ID]; ok {
			return nil, &DuplicateEntityError{ID: e.ID, Labels: [2]int{prev, e.Label}}
		}
		first[e.ID] = e.Label

		o, ok := u.Ordinal(e.ID)
		if !ok {
			p.outside = append(p.outside, e)
			continue
		}
		if e.Label < 0 || e.Label >= k {
			p.dropped = append(p.dropped, e)
			continue
		}
		p.clusters[e.Label].Add(o)
	}

	for _, c := range p.clusters {
		c.RunOptimize()
	}
	return p, nil
}

// GroupAll groups a over its own ids.
func GroupAll(a Assignment, k int) (*Partition, error) {
	return Group(NewUniverse(a.IDs()), a, k)
}

// K returns the number of buckets.
func (p *Partition) K() int { return len(p.clusters) }

// Universe returns the universe the partition was grouped over.
func (p *Partition) Universe() *Universe { return p.universe }

// cluster returns the bitmap for label, or an empty set when the partition
// has no such bucket. Callers must not modify the result.
func (p *Partition) cluster(label int) *roaring.Bitmap {
	if label < 0 || label >= len(p.clusters) {
		return emptyCluster
	}
	return p.clusters[label]
}

// Size returns the number of entities carrying label.
func (p *Partition) Size(label int) int {
	return int(p.cluster(label).GetCardinality())
}

// Sizes returns the bucket sizes in label order.
func (p *Partition) Sizes() []int {
	sizes := make([]int, len(p.clusters))
	for i, c := range p.clusters {
		sizes[i] = int(c.GetCardinality())
	}
	return sizes
}

// Len returns the number of entities placed in some bucket.
func (p *Partition) Len() int {
	n := 0
	for _, c := range p.clusters {
		n += int(c.GetCardinality())
	}
	return n
}

// Members returns the ids carrying label in ascending order.
func (p *Partition) Members(label int) []EntityID {
	c := p.cluster(label)
	ids := make([]EntityID, 0, c.GetCardinality())
	it := c.Iterator()
	for it.HasNext() {
		ids = append(ids, p.universe.ID(it.Next()))
	}
	return ids
}

// Contains reports whether id was placed under label.
func (p *Partition) Contains(label int, id EntityID) bool {
	o, ok := p.universe.Ordinal(id)
	return ok && p.cluster(label).Contains(o)
}

// Dropped returns the rows left out because their label was outside [0, k).
func (p *Partition) Dropped() []Labeled { return p.dropped }

// Outside returns the rows left out because their id was not in the universe.
func (p *Partition) Outside() []Labeled { return p.outside }
