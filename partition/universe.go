package partition

import (
	"cmp"
	"slices"
	"strconv"
)

// EntityID identifies a clustered subject. It is stable across observation
// days for any entity present on both.
type EntityID string

// CompareIDs orders entity ids ascending. Ids that parse as base-10
// integers compare numerically and sort before any non-integer id; all
// other ids compare lexically.
func CompareIDs(a, b EntityID) int {
	return compareKeys(keyOf(a), keyOf(b))
}

type idKey struct {
	id    EntityID
	num   int64
	isNum bool
}

func keyOf(id EntityID) idKey {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return idKey{id: id, num: n, isNum: err == nil}
}

func compareKeys(a, b idKey) int {
	switch {
	case a.isNum && b.isNum:
		if c := cmp.Compare(a.num, b.num); c != 0 {
			return c
		}
		// "007" and "7" parse equal; fall back to the text for a total order.
		return cmp.Compare(a.id, b.id)
	case a.isNum:
		return -1
	case b.isNum:
		return 1
	default:
		return cmp.Compare(a.id, b.id)
	}
}

// SortIDs sorts ids ascending in place using CompareIDs.
func SortIDs(ids []EntityID) {
	keys := make([]idKey, len(ids))
	for i, id := range ids {
		keys[i] = keyOf(id)
	}
	slices.SortFunc(keys, compareKeys)
	for i := range keys {
		ids[i] = keys[i].id
	}
}

// Universe is an ordered, duplicate-free set of entity ids. Each member has
// a dense uint32 ordinal (its rank in ascending id order) that partitions
// use as bitmap positions.
type Universe struct {
	ids []EntityID
	ord map[EntityID]uint32
}

// NewUniverse builds a universe from ids. Duplicates collapse.
func NewUniverse(ids []EntityID) *Universe {
	seen := make(map[EntityID]struct{}, len(ids))
	uniq := make([]EntityID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	SortIDs(uniq)

	ord := make(map[EntityID]uint32, len(uniq))
	for i, id := range uniq {
		ord[id] = uint32(i)
	}
	return &Universe{ids: uniq, ord: ord}
}

// Shared returns the universe of ids present in both assignments.
func Shared(a, b Assignment) *Universe {
	inB := make(map[EntityID]struct{}, len(b))
	for _, e := range b {
		inB[e.ID] = struct{}{}
	}
	both := make([]EntityID, 0, min(len(a), len(b)))
	for _, e := range a {
		if _, ok := inB[e.ID]; ok {
			both = append(both, e.ID)
		}
	}
	return NewUniverse(both)
}

// Len returns the number of ids in the universe.
func (u *Universe) Len() int {
	if u == nil {
		return 0
	}
	return len(u.ids)
}

// Contains reports whether id is a member.
func (u *Universe) Contains(id EntityID) bool {
	_, ok := u.Ordinal(id)
	return ok
}

// Ordinal returns the bitmap position of id.
func (u *Universe) Ordinal(id EntityID) (uint32, bool) {
	if u == nil {
		return 0, false
	}
	o, ok := u.ord[id]
	return o, ok
}

// ID returns the id at ordinal o. It panics if o is out of range.
func (u *Universe) ID(o uint32) EntityID {
	return u.ids[o]
}

// IDs returns the members in ascending order. The slice must not be modified.
func (u *Universe) IDs() []EntityID {
	if u == nil {
		return nil
	}
	return u.ids
}
