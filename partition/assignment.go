package partition

import "slices"

// Labeled is one row of a clustering result.
type Labeled struct {
	ID    EntityID
	Label int
}

// Assignment is the ordered output of one clustering run. Ids are expected
// to be unique; labels are expected in [0, k).
type Assignment []Labeled

// NewAssignment zips ids and labels row by row. It panics if the slices
// differ in length, which is a programming error in the caller.
func NewAssignment(ids []EntityID, labels []int) Assignment {
	if len(ids) != len(labels) {
		panic("partition: ids and labels differ in length")
	}
	a := make(Assignment, len(ids))
	for i := range ids {
		a[i] = Labeled{ID: ids[i], Label: labels[i]}
	}
	return a
}

// IDs returns the entity ids in row order.
func (a Assignment) IDs() []EntityID {
	ids := make([]EntityID, len(a))
	for i, e := range a {
		ids[i] = e.ID
	}
	return ids
}

// Labels returns the labels in row order.
func (a Assignment) Labels() []int {
	labels := make([]int, len(a))
	for i, e := range a {
		labels[i] = e.Label
	}
	return labels
}

// Restrict keeps the rows whose id is in u and sorts them by id ascending.
// Two assignments restricted to the same universe are therefore paired row
// by row: index i names the same entity in both.
func (a Assignment) Restrict(u *Universe) Assignment {
	out := make(Assignment, 0, min(len(a), u.Len()))
	for _, e := range a {
		if u.Contains(e.ID) {
			out = append(out, e)
		}
	}
	// Ordinals are ranks in CompareIDs order, so sorting by them avoids
	// reparsing ids.
	slices.SortStableFunc(out, func(x, y Labeled) int {
		ox, _ := u.Ordinal(x.ID)
		oy, _ := u.Ordinal(y.ID)
		switch {
		case ox < oy:
			return -1
		case ox > oy:
			return 1
		default:
			return 0
		}
	})
	return out
}

// OutOfRange returns the rows whose label is not in [0, k).
func (a Assignment) OutOfRange(k int) []Labeled {
	var bad []Labeled
	for _, e := range a {
		if e.Label < 0 || e.Label >= k {
			bad = append(bad, e)
		}
	}
	return bad
}
