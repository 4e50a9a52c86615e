// Package testutil provides fixtures for tests.
//
// This package is intended for use in tests only. It generates
// well-separated gaussian blobs and encodes them as the feature tables the
// pipeline reads.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	points, truth := rng.Blobs(90, 4, 3, 0.2)
//
// # Tables
//
//	rows := testutil.RuleRows(ids, points)
//	data, err := testutil.WriteParquet(rows)
package testutil
