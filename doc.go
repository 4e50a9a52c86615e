// Package clustering measures how stable a clustering of systems is from
// one day to the next.
//
// Each day's rule-hit table is standardized, reduced with PCA and clustered
// with k-means. The two days are then compared over the systems they share:
// every day-1 cluster is matched to the day-2 cluster that loses the fewest
// of its members, and the lost members are summed into a stability score
//
//	stability = (1 - mismatch / shared) * 100
//
// where 100 means every day-1 cluster survived intact. Mutual information,
// Fowlkes-Mallows, the adjusted Rand index and the variation of information
// are reported alongside.
//
// # Quick Start
//
//	store := blobstore.NewLocalStore("./data")
//	p, _ := clustering.NewPipeline(store, 3, 2)
//	r := clustering.NewRunner(p, tracking.NewLogSink(nil), "stability")
//	report, err := r.Run(ctx, "2020-01-01", "2020-01-02")
//	fmt.Println(report.Comparison.Stability)
//
// # Scoring Only
//
// The matching rule is available without the pipeline:
//
//	a := partition.NewAssignment(ids1, labels1)
//	b := partition.NewAssignment(ids2, labels2)
//	u := partition.Shared(a, b)
//	pa, _ := partition.Group(u, a.Restrict(u), k)
//	pb, _ := partition.Group(u, b.Restrict(u), k)
//	score, _ := partition.Score(pa, pb, k, u.Len())
//
// # Errors
//
// Failures are reported with errors.Is / errors.As compatible values:
// *ConfigError, *DataAccessError, *LabelRangeError, ErrEmptyUniverse,
// ErrEmptyAssignment, ErrInvalidK and ErrInvalidDimensions. A run that fails
// records nothing.
package clustering
