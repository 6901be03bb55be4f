// Package aggregate flattens the ordered fetch outcomes into one candle
// stream and partitions it into fixed-size groups.
package aggregate

import (
	"errors"
	"fmt"
	"time"

	"candlefeed/internal/fetch"
	"candlefeed/internal/market"
)

// GapPolicy decides what happens to segments that failed after
// exhausting their retries.
type GapPolicy string

const (
	// GapSkip drops failed segments, leaving a time gap in the stream.
	GapSkip GapPolicy = "skip"
	// GapFail aborts the run on the first failed segment.
	GapFail GapPolicy = "fail"
)

// ErrGapPolicy is returned under GapFail when any segment failed.
var ErrGapPolicy = errors.New("candle stream has gaps")

// Collect concatenates the successful payloads in sequence order.
// Outcomes must already be index-ordered, which the fetcher guarantees.
func Collect(outcomes []fetch.Outcome, policy GapPolicy) ([]market.Candle, error) {
	switch policy {
	case GapSkip, GapFail:
	default:
		return nil, fmt.Errorf("unknown gap policy %q", policy)
	}
	failed := 0
	total := 0
	for _, out := range outcomes {
		if out.Failed() {
			failed++
			continue
		}
		total += len(out.Candles)
	}
	if failed > 0 && policy == GapFail {
		return nil, fmt.Errorf("%w: %d of %d segments failed", ErrGapPolicy, failed, len(outcomes))
	}
	candles := make([]market.Candle, 0, total)
	for _, out := range outcomes {
		if out.Failed() {
			continue
		}
		candles = append(candles, out.Candles...)
	}
	return candles, nil
}

// Group is a consecutive run of exactly the configured number of
// candles. Start is the open time of the first candle.
type Group struct {
	Index   int
	Start   time.Time
	Candles []market.Candle
}

// End returns the close time of the last candle in the group.
func (g Group) End() time.Time {
	if len(g.Candles) == 0 {
		return g.Start
	}
	return g.Candles[len(g.Candles)-1].ClosedAt()
}

// Groups chunks the stream into consecutive, non-overlapping groups of
// exactly size candles. A trailing remainder shorter than size is
// dropped; fewer than size candles in total yields an empty slice.
func Groups(candles []market.Candle, size int) ([]Group, error) {
	if size < 1 {
		return nil, fmt.Errorf("group size must be >= 1, got %d", size)
	}
	count := len(candles) / size
	groups := make([]Group, 0, count)
	for i := 0; i < count; i++ {
		chunk := candles[i*size : (i+1)*size]
		groups = append(groups, Group{
			Index:   i,
			Start:   chunk[0].OpenedAt(),
			Candles: append([]market.Candle(nil), chunk...),
		})
	}
	return groups, nil
}
