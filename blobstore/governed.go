package blobstore

import (
	"context"
	"errors"
	"io"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/hemajv/insights-clustering/resource"
)

// RetryPolicy controls how GovernedStore retries failed calls.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// BaseDelay is the first backoff delay. Defaults to 100ms.
	BaseDelay time.Duration
	// MaxDelay caps a single backoff delay. Defaults to 5s.
	MaxDelay time.Duration
	// Multiplier grows the delay between attempts. Defaults to 2.
	Multiplier float64
	// Seed makes jitter deterministic when non-zero.
	Seed uint64
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Multiplier: 2,
	}
}

// GovernedStore wraps a BlobStore with the limits of a resource.Controller
// and retries transient failures. Missing blobs and context errors are
// returned immediately.
type GovernedStore struct {
	inner  BlobStore
	rc     *resource.Controller
	policy RetryPolicy

	mu  sync.Mutex
	rng *rand.Rand // nil uses the package-level source
}

// NewGovernedStore creates a GovernedStore. rc may be nil.
func NewGovernedStore(inner BlobStore, rc *resource.Controller, policy RetryPolicy) *GovernedStore {
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = 100 * time.Millisecond
	}
	if policy.MaxDelay <= 0 {
		policy.MaxDelay = 5 * time.Second
	}
	if policy.Multiplier < 1 {
		policy.Multiplier = 2
	}
	g := &GovernedStore{inner: inner, rc: rc, policy: policy}
	if policy.Seed != 0 {
		g.rng = rand.New(rand.NewPCG(policy.Seed, policy.Seed^0x9e3779b97f4a7c15)) //nolint:gosec
	}
	return g
}

// Open opens a blob, retrying transient errors.
func (g *GovernedStore) Open(ctx context.Context, name string) (Blob, error) {
	var blob Blob
	err := g.retry(ctx, func() error {
		var err error
		blob, err = g.inner.Open(ctx, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &governedBlob{Blob: blob, g: g}, nil
}

// List lists blobs under prefix, retrying transient errors.
func (g *GovernedStore) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	err := g.retry(ctx, func() error {
		var err error
		names, err = g.inner.List(ctx, prefix)
		return err
	})
	return names, err
}

// Download reads a whole blob while holding one read slot. The bytes are
// charged against the rate limit as they arrive for ranged reads, or in
// one block when the inner store downloads natively.
func (g *GovernedStore) Download(ctx context.Context, name string) ([]byte, error) {
	if err := g.rc.AcquireRead(ctx); err != nil {
		return nil, err
	}
	defer g.rc.ReleaseRead()

	var data []byte
	err := g.retry(ctx, func() error {
		var err error
		if d, ok := g.inner.(Downloader); ok {
			data, err = d.Download(ctx, name)
			if err == nil {
				err = g.rc.AcquireIO(ctx, len(data))
			}
			return err
		}
		data, err = g.readRanged(ctx, name)
		return err
	})
	return data, err
}

func (g *GovernedStore) readRanged(ctx context.Context, name string) ([]byte, error) {
	b, err := g.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = b.Close() }()

	rc, err := b.ReadRange(ctx, 0, b.Size())
	if err != nil {
		return nil, err
	}
	r := resource.NewRateLimitedReader(ctx, rc, g.rc)
	defer func() { _ = r.Close() }()

	data := make([]byte, b.Size())
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (g *GovernedStore) retry(ctx context.Context, fn func() error) error {
	var delay time.Duration
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !retryable(err) || attempt >= g.policy.MaxRetries {
			return err
		}

		delay = g.nextDelay(delay)
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// nextDelay draws base + jitter in [0, prev*mult - base), capped at MaxDelay.
func (g *GovernedStore) nextDelay(prev time.Duration) time.Duration {
	base, capDur := g.policy.BaseDelay, g.policy.MaxDelay
	if capDur < base {
		return capDur
	}
	if prev <= 0 {
		return base
	}
	span := time.Duration(float64(prev)*g.policy.Multiplier) - base
	if span <= 0 {
		span = base
	}

	var jitter int64
	if g.rng != nil {
		g.mu.Lock()
		jitter = g.rng.Int64N(int64(span))
		g.mu.Unlock()
	} else {
		jitter = rand.Int64N(int64(span)) //nolint:gosec // non-crypto backoff jitter
	}
	return min(base+time.Duration(jitter), capDur)
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

// governedBlob holds a read slot for the lifetime of each range reader.
type governedBlob struct {
	Blob
	g *GovernedStore
}

func (b *governedBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := b.g.rc.AcquireRead(ctx); err != nil {
		return 0, err
	}
	defer b.g.rc.ReleaseRead()

	n, err := b.Blob.ReadAt(ctx, p, off)
	if n > 0 {
		if werr := b.g.rc.AcquireIO(ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}

func (b *governedBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if err := b.g.rc.AcquireRead(ctx); err != nil {
		return nil, err
	}
	rc, err := b.Blob.ReadRange(ctx, off, length)
	if err != nil {
		b.g.rc.ReleaseRead()
		return nil, err
	}
	return &slotReader{
		RateLimitedReader: resource.NewRateLimitedReader(ctx, rc, b.g.rc),
		release:           b.g.rc.ReleaseRead,
	}, nil
}

type slotReader struct {
	*resource.RateLimitedReader
	once    sync.Once
	release func()
}

func (r *slotReader) Close() error {
	err := r.RateLimitedReader.Close()
	r.once.Do(r.release)
	return err
}
