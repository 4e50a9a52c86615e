package table

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hemajv/insights-clustering/partition"
	"gonum.org/v1/gonum/mat"
)

// ErrNoRows is returned when a table holds no data rows.
var ErrNoRows = errors.New("table: no rows")

// Layout selects columns by position.
type Layout struct {
	// SkipLeading columns are dropped from the front.
	SkipLeading int
	// SkipTrailing columns are dropped from the back. They include the id.
	SkipTrailing int
	// IDFromEnd is the 1-based position of the id column counted from the
	// last column.
	IDFromEnd int
}

// DefaultLayout drops the record index, takes the second to last column as
// the entity id and drops the trailing timestamp.
func DefaultLayout() Layout {
	return Layout{SkipLeading: 1, SkipTrailing: 2, IDFromEnd: 2}
}

// Frame is a table split into identifiers and numeric features.
type Frame struct {
	// Columns names the feature columns.
	Columns []string
	// IDs holds the entity id of each row.
	IDs []partition.EntityID
	// Features is rows x len(Columns).
	Features *mat.Dense
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.IDs)
}

func (l Layout) validate(width int) error {
	if l.SkipLeading < 0 || l.SkipTrailing < 0 || l.IDFromEnd < 1 {
		return fmt.Errorf("table: invalid layout %+v", l)
	}
	if l.IDFromEnd > width {
		return fmt.Errorf("%w: id column %d from end of %d columns", ErrSchemaMismatch, l.IDFromEnd, width)
	}
	if width-l.SkipLeading-l.SkipTrailing < 1 {
		return fmt.Errorf("%w: %d columns leave no features under %+v", ErrSchemaMismatch, width, l)
	}
	return nil
}

// Apply extracts ids and features from rec. Feature cells that do not parse
// as numbers, and non-finite ones, become 0.
func (l Layout) Apply(rec *Records) (*Frame, error) {
	if rec.Len() == 0 {
		return nil, ErrNoRows
	}
	width := len(rec.Header)
	if err := l.validate(width); err != nil {
		return nil, err
	}

	lo, hi := l.SkipLeading, width-l.SkipTrailing
	idCol := width - l.IDFromEnd
	nf := hi - lo

	f := &Frame{
		Columns:  append([]string(nil), rec.Header[lo:hi]...),
		IDs:      make([]partition.EntityID, len(rec.Rows)),
		Features: mat.NewDense(len(rec.Rows), nf, nil),
	}
	for i, row := range rec.Rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, header %d", ErrSchemaMismatch, i, len(row), width)
		}
		f.IDs[i] = partition.EntityID(strings.TrimSpace(row[idCol]))
		dst := f.Features.RawRowView(i)
		for j := range dst {
			dst[j] = numeric(row[lo+j])
		}
	}
	return f, nil
}

func numeric(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
