// Package table decodes the feature tables a day's dataset is stored in and
// turns them into an entity id column plus a numeric feature matrix.
//
// Supported objects, selected by name suffix:
//
//   - .parquet (any codec parquet-go understands)
//   - .csv with a header row
//   - .csv.gz, .csv.zst, .csv.lz4
//
// A Layout picks the id and feature columns by position. DefaultLayout drops
// the first column, takes the second to last as the id and drops the last.
package table
