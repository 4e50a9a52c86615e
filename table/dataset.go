package table

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hemajv/insights-clustering/blobstore"
	"golang.org/x/sync/errgroup"
)

// ErrNoObjects is returned when a dataset prefix lists no supported objects.
var ErrNoObjects = errors.New("table: no objects")

// Dataset is the decoded content of every part under a prefix.
type Dataset struct {
	Parts   []string
	Records *Records
}

// DatasetPath joins the object prefix of one day's dataset.
func DatasetPath(root, observation, parser string) string {
	p := observation + "/" + parser + "/"
	if root == "" {
		return p
	}
	return strings.TrimSuffix(root, "/") + "/" + p
}

// ReadRecords lists prefix and decodes every supported part in name order.
// Parts are fetched concurrently; the store governs how many at once.
func ReadRecords(ctx context.Context, store blobstore.BlobStore, prefix string) (*Dataset, error) {
	names, err := store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("table: list %s: %w", prefix, err)
	}
	var parts []string
	for _, name := range names {
		if Supported(name) {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoObjects, prefix)
	}

	decoded := make([]*Records, len(parts))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range parts {
		g.Go(func() error {
			data, err := blobstore.ReadAll(gctx, store, name)
			if err != nil {
				return fmt.Errorf("table: read %s: %w", name, err)
			}
			rec, err := Decode(name, data)
			if err != nil {
				return fmt.Errorf("table: decode %s: %w", name, err)
			}
			decoded[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Records{}
	first := ""
	for i, rec := range decoded {
		if rec.Header == nil {
			continue
		}
		if out.Header == nil {
			out.Header, first = rec.Header, parts[i]
		} else if !slices.Equal(rec.Header, out.Header) {
			return nil, fmt.Errorf("%w: %s has columns [%s], %s has [%s]",
				ErrSchemaMismatch, parts[i], strings.Join(rec.Header, ", "), first, strings.Join(out.Header, ", "))
		}
		out.Rows = append(out.Rows, rec.Rows...)
	}
	return &Dataset{Parts: parts, Records: out}, nil
}

// ReadDataset reads prefix and applies layout to the concatenated parts.
func ReadDataset(ctx context.Context, store blobstore.BlobStore, prefix string, layout Layout) (*Frame, error) {
	ds, err := ReadRecords(ctx, store, prefix)
	if err != nil {
		return nil, err
	}
	return layout.Apply(ds.Records)
}
