package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MaxConcurrentReads is the maximum number of object reads in flight.
	// If 0, reads are not bounded.
	MaxConcurrentReads int64

	// ReadBytesPerSec is the maximum read throughput.
	// If 0, unlimited.
	ReadBytesPerSec int64
}

// Controller enforces a Config. A nil *Controller imposes no limits.
type Controller struct {
	cfg Config

	readSem  *semaphore.Weighted // nil if unbounded
	inFlight atomic.Int64
	read     atomic.Int64

	ioLimiter *rate.Limiter // nil if unlimited
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MaxConcurrentReads > 0 {
		c.readSem = semaphore.NewWeighted(cfg.MaxConcurrentReads)
	}
	if cfg.ReadBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.ReadBytesPerSec), int(cfg.ReadBytesPerSec))
	}
	return c
}

// AcquireRead reserves a read slot, blocking until one is free or ctx is
// canceled.
func (c *Controller) AcquireRead(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.readSem != nil {
		if err := c.readSem.Acquire(ctx, 1); err != nil {
			return err
		}
	}
	c.inFlight.Add(1)
	return nil
}

// ReleaseRead returns a slot taken by AcquireRead.
func (c *Controller) ReleaseRead() {
	if c == nil {
		return
	}
	if c.readSem != nil {
		c.readSem.Release(1)
	}
	c.inFlight.Add(-1)
}

// InFlight returns the number of reads holding a slot.
func (c *Controller) InFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}

// AcquireIO waits until the rate limit allows bytes more bytes. Requests
// larger than the limiter's burst are split.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || bytes <= 0 {
		return nil
	}
	c.read.Add(int64(bytes))
	if c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

// BytesRead returns the total bytes admitted by AcquireIO.
func (c *Controller) BytesRead() int64 {
	if c == nil {
		return 0
	}
	return c.read.Load()
}
