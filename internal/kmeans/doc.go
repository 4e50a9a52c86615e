// Package kmeans implements k-means clustering over row-major float64 data.
//
// Seeding is k-means++; refinement is Lloyd's algorithm. The comparison
// driver uses it as the default clustering procedure for each day's
// reduced feature table.
package kmeans
