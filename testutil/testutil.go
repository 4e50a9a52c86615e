package testutil

import (
	"bytes"
	"encoding/csv"
	"math/rand"
	"strconv"
	"sync"

	"github.com/parquet-go/parquet-go"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Blobs generates num points of dimension dim around centers cluster
// centres. Centre c sits at 10*(c+1) on axis c%dim, so centres are at least
// 10 apart. Point i belongs to centre i%centers; spread is the standard
// deviation of the gaussian noise. The second result holds each point's
// centre.
func (r *RNG) Blobs(num, dim, centers int, spread float64) ([][]float64, []int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dim)
	points := make([][]float64, num)
	truth := make([]int, num)

	for i := range num {
		c := i % centers
		vec := data[i*dim : (i+1)*dim]
		for j := range vec {
			vec[j] = r.rand.NormFloat64() * spread
		}
		vec[c%dim] += 10 * float64(c+1)
		points[i] = vec
		truth[i] = c
	}
	return points, truth
}

// RuleRow is one row of a rule-hit feature table: a record index, four
// feature columns, the system id and a timestamp.
type RuleRow struct {
	Index     int64   `parquet:"index"`
	RuleA     float64 `parquet:"rule_a"`
	RuleB     float64 `parquet:"rule_b"`
	RuleC     float64 `parquet:"rule_c"`
	RuleD     float64 `parquet:"rule_d"`
	SystemID  string  `parquet:"system_id"`
	Timestamp int64   `parquet:"timestamp"`
}

// RuleColumns is the header of a RuleRow table.
var RuleColumns = []string{"index", "rule_a", "rule_b", "rule_c", "rule_d", "system_id", "timestamp"}

// RuleWidth is the number of feature columns in a RuleRow.
const RuleWidth = 4

// RuleRows pairs ids with points of dimension RuleWidth or less; missing
// features are 0.
func RuleRows(ids []string, points [][]float64) []RuleRow {
	rows := make([]RuleRow, len(ids))
	for i, id := range ids {
		var f [RuleWidth]float64
		copy(f[:], points[i])
		rows[i] = RuleRow{
			Index:     int64(i),
			RuleA:     f[0],
			RuleB:     f[1],
			RuleC:     f[2],
			RuleD:     f[3],
			SystemID:  id,
			Timestamp: 1577836800 + int64(i),
		}
	}
	return rows
}

// WriteParquet encodes rows as a parquet file.
func WriteParquet(rows []RuleRow) ([]byte, error) {
	var buf bytes.Buffer
	if err := parquet.Write(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCSV encodes rows as CSV with a RuleColumns header.
func WriteCSV(rows []RuleRow) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(RuleColumns)
	for _, r := range rows {
		_ = w.Write([]string{
			strconv.FormatInt(r.Index, 10),
			strconv.FormatFloat(r.RuleA, 'g', -1, 64),
			strconv.FormatFloat(r.RuleB, 'g', -1, 64),
			strconv.FormatFloat(r.RuleC, 'g', -1, 64),
			strconv.FormatFloat(r.RuleD, 'g', -1, 64),
			r.SystemID,
			strconv.FormatInt(r.Timestamp, 10),
		})
	}
	w.Flush()
	return buf.Bytes()
}

// IDs returns "sys-0" .. "sys-(n-1)" offset by start.
func IDs(start, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = "sys-" + strconv.Itoa(start+i)
	}
	return ids
}
