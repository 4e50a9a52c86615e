package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/parquet-go/parquet-go"
	"github.com/pierrec/lz4/v4"
)

var (
	// ErrUnsupportedFormat is returned for object names with no known suffix.
	ErrUnsupportedFormat = errors.New("table: unsupported format")
	// ErrSchemaMismatch is returned when the parts of a dataset disagree on
	// their column count.
	ErrSchemaMismatch = errors.New("table: schema mismatch")
)

// Records is a decoded table of raw cells. Null cells are empty strings.
type Records struct {
	Header []string
	Rows   [][]string
}

// Len returns the number of rows.
func (r *Records) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

type format int

const (
	formatUnknown format = iota
	formatParquet
	formatCSV
	formatCSVGzip
	formatCSVZstd
	formatCSVLZ4
)

func formatOf(name string) format {
	switch {
	case strings.HasSuffix(name, ".parquet"):
		return formatParquet
	case strings.HasSuffix(name, ".csv"):
		return formatCSV
	case strings.HasSuffix(name, ".csv.gz"):
		return formatCSVGzip
	case strings.HasSuffix(name, ".csv.zst"):
		return formatCSVZstd
	case strings.HasSuffix(name, ".csv.lz4"):
		return formatCSVLZ4
	default:
		return formatUnknown
	}
}

// Supported reports whether Decode understands name.
func Supported(name string) bool {
	return formatOf(name) != formatUnknown
}

// Decode decodes data according to the suffix of name.
func Decode(name string, data []byte) (*Records, error) {
	switch formatOf(name) {
	case formatParquet:
		return DecodeParquet(data)
	case formatCSV:
		return DecodeCSV(bytes.NewReader(data))
	case formatCSVGzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("table: gzip %s: %w", name, err)
		}
		defer func() { _ = zr.Close() }()
		return DecodeCSV(zr)
	case formatCSVZstd:
		zr, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("table: zstd %s: %w", name, err)
		}
		defer zr.Close()
		return DecodeCSV(zr)
	case formatCSVLZ4:
		return DecodeCSV(lz4.NewReader(bytes.NewReader(data)))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// DecodeCSV reads a CSV table whose first record is the header.
func DecodeCSV(r io.Reader) (*Records, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Records{}, nil
		}
		return nil, fmt.Errorf("table: csv header: %w", err)
	}
	rec := &Records{Header: header}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rec, nil
		}
		if err != nil {
			return nil, fmt.Errorf("table: csv row %d: %w", len(rec.Rows)+1, err)
		}
		rec.Rows = append(rec.Rows, row)
	}
}

// DecodeParquet reads every row group of a parquet file. Columns are the
// leaf columns of the schema in order; repeated columns keep their first
// value.
func DecodeParquet(data []byte) (*Records, error) {
	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("table: open parquet: %w", err)
	}

	leaves := f.Schema().Columns()
	rec := &Records{Header: make([]string, len(leaves))}
	for i, path := range leaves {
		rec.Header[i] = strings.Join(path, ".")
	}

	buf := make([]parquet.Row, 256)
	for _, rg := range f.RowGroups() {
		if err := readRowGroup(rg, buf, rec); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

func readRowGroup(rg parquet.RowGroup, buf []parquet.Row, rec *Records) error {
	rows := rg.Rows()
	defer func() { _ = rows.Close() }()

	width := len(rec.Header)
	for {
		n, err := rows.ReadRows(buf)
		for _, row := range buf[:n] {
			rec.Rows = append(rec.Rows, cells(row, width))
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("table: read parquet rows: %w", err)
		}
		if n == 0 {
			return nil
		}
	}
}

func cells(row parquet.Row, width int) []string {
	out := make([]string, width)
	seen := make([]bool, width)
	for _, v := range row {
		c := v.Column()
		if c < 0 || c >= width || seen[c] {
			continue
		}
		seen[c] = true
		out[c] = cell(v)
	}
	return out
}

func cell(v parquet.Value) string {
	if v.IsNull() {
		return ""
	}
	switch v.Kind() {
	case parquet.Boolean:
		if v.Boolean() {
			return "1"
		}
		return "0"
	case parquet.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case parquet.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case parquet.Float:
		return strconv.FormatFloat(float64(v.Float()), 'g', -1, 32)
	case parquet.Double:
		return strconv.FormatFloat(v.Double(), 'g', -1, 64)
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}
