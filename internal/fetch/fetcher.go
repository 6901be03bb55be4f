// Package fetch runs the planned request segments through a bounded
// worker pool with per-segment retries. The pool size is the only
// shared admission control: each of the MaxConcurrency workers holds at
// most one request in flight, so the remote endpoint never sees more
// than MaxConcurrency simultaneous calls.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"candlefeed/internal/logger"
	"candlefeed/internal/market"
	"candlefeed/internal/plan"

	"golang.org/x/sync/errgroup"
)

// ErrInvalidConfig rejects a fetcher configuration before any network
// activity happens.
var ErrInvalidConfig = errors.New("invalid fetcher config")

// Source fetches the candles for one descriptor window.
type Source interface {
	Name() string
	Fetch(ctx context.Context, desc plan.Descriptor) ([]market.Candle, error)
}

type Config struct {
	MaxConcurrency int
	MaxRetries     int
	AttemptTimeout time.Duration
	RetryDelay     time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.AttemptTimeout <= 0 {
		out.AttemptTimeout = 30 * time.Second
	}
	if out.RetryDelay <= 0 {
		out.RetryDelay = time.Second
	}
	return out
}

// Outcome is the terminal result for one descriptor. Exactly one
// outcome exists per planned descriptor, success or not.
type Outcome struct {
	Index    int
	Candles  []market.Candle
	Attempts int
	Err      error
}

func (o Outcome) Failed() bool { return o.Err != nil }

// Stats summarizes a batch so the caller can judge coverage.
type Stats struct {
	Planned   int
	Succeeded int
	Failed    int
	Attempts  int
}

type Fetcher struct {
	source Source
	cfg    Config
}

func New(source Source, cfg Config) (*Fetcher, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: source is required", ErrInvalidConfig)
	}
	if cfg.MaxConcurrency < 1 {
		return nil, fmt.Errorf("%w: max concurrency must be >= 1, got %d", ErrInvalidConfig, cfg.MaxConcurrency)
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("%w: max retries must be >= 0, got %d", ErrInvalidConfig, cfg.MaxRetries)
	}
	return &Fetcher{source: source, cfg: cfg.withDefaults()}, nil
}

// FetchAll fetches every descriptor and returns the outcomes ordered by
// Descriptor.Index, regardless of completion order. A segment that
// exhausts its retries is reported as a failed outcome, not an error:
// partial failure never aborts the batch. After ctx is canceled no new
// segment is dispatched; in-flight attempts finish or time out on their
// own and undispatched segments are recorded as failed so the outcome
// set always matches the descriptor set.
func (f *Fetcher) FetchAll(ctx context.Context, descs []plan.Descriptor) ([]Outcome, Stats, error) {
	outcomes := make([]Outcome, len(descs))
	if len(descs) == 0 {
		return outcomes, Stats{}, nil
	}
	seen := make(map[int]bool, len(descs))
	for _, d := range descs {
		if d.Index < 0 || d.Index >= len(descs) || seen[d.Index] {
			return nil, Stats{}, fmt.Errorf("%w: descriptor indices must be a permutation of 0..%d", ErrInvalidConfig, len(descs)-1)
		}
		seen[d.Index] = true
	}

	workers := f.cfg.MaxConcurrency
	if workers > len(descs) {
		workers = len(descs)
	}
	jobs := make(chan plan.Descriptor)
	var group errgroup.Group
	for i := 0; i < workers; i++ {
		group.Go(func() error {
			for desc := range jobs {
				outcomes[desc.Index] = f.fetchOne(ctx, desc)
			}
			return nil
		})
	}

feed:
	for _, desc := range descs {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- desc:
		}
	}
	close(jobs)
	_ = group.Wait()

	// Segments the feeder never handed out still owe an outcome.
	for _, desc := range descs {
		if outcomes[desc.Index].Attempts == 0 && outcomes[desc.Index].Err == nil {
			outcomes[desc.Index] = Outcome{Index: desc.Index, Err: context.Cause(ctx)}
		}
	}

	stats := Stats{Planned: len(descs)}
	for _, out := range outcomes {
		stats.Attempts += out.Attempts
		if out.Failed() {
			stats.Failed++
		} else {
			stats.Succeeded++
		}
	}
	return outcomes, stats, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, desc plan.Descriptor) Outcome {
	out := Outcome{Index: desc.Index}
	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if !sleepWithContext(ctx, f.cfg.RetryDelay) {
				return out
			}
		}
		out.Attempts++
		attemptCtx, cancel := context.WithTimeout(ctx, f.cfg.AttemptTimeout)
		candles, err := f.source.Fetch(attemptCtx, desc)
		cancel()
		if err == nil {
			out.Candles = candles
			out.Err = nil
			return out
		}
		out.Err = err
		logger.Warnf("[fetch] segment %d (%s) attempt %d/%d failed: %v",
			desc.Index, desc.WindowStart.Format("2006-01-02"), out.Attempts, f.cfg.MaxRetries+1, err)
		if ctx.Err() != nil {
			return out
		}
	}
	logger.Errorf("[fetch] segment %d (%s) gave up after %d attempts: %v",
		desc.Index, desc.WindowStart.Format("2006-01-02"), out.Attempts, out.Err)
	return out
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = time.Second
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
