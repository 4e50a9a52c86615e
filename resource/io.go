package resource

import (
	"context"
	"io"
)

// RateLimitedReader wraps an io.ReadCloser with the controller's byte rate.
type RateLimitedReader struct {
	r   io.ReadCloser
	rc  *Controller
	ctx context.Context
}

// NewRateLimitedReader creates a new RateLimitedReader.
func NewRateLimitedReader(ctx context.Context, r io.ReadCloser, rc *Controller) *RateLimitedReader {
	return &RateLimitedReader{
		r:   r,
		rc:  rc,
		ctx: ctx,
	}
}

// Read charges the bytes actually read against the limit, so a short read
// never waits for bytes it did not deliver.
func (r *RateLimitedReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		if werr := r.rc.AcquireIO(r.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}

// Close closes the underlying reader.
func (r *RateLimitedReader) Close() error {
	return r.r.Close()
}
