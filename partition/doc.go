// Package partition groups clustered entities by label and scores how well
// two independent clusterings of the same population line up.
//
// Cluster labels from independent fits are arbitrary: cluster 0 in one run
// need not be cluster 0 in the next. Align matches every source cluster to
// the target cluster it overlaps best, greedily and in one direction only.
// The first target achieving the smallest set difference wins, so
// Score(a, b) and Score(b, a) may differ.
//
// # Usage
//
//	u := partition.Shared(day1, day2)
//	p1, _ := partition.Group(u, day1.Restrict(u), k)
//	p2, _ := partition.Group(u, day2.Restrict(u), k)
//	score, err := partition.Score(p1, p2, k, u.Len())
//
// Cluster sets are roaring bitmaps over the ordinals of a Universe, so set
// differences cost a bitmap intersection rather than a hash-set walk.
package partition
