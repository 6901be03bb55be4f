// Package plan turns a date range into the per-day request descriptors
// consumed by the fetcher. Planning is pure: the same inputs always
// produce the same descriptor sequence.
package plan

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"candlefeed/internal/market"
)

const klinesPath = "/api/v3/uiKlines"

// ErrInvalidRange is returned when the requested range is unusable.
var ErrInvalidRange = errors.New("invalid date range")

// Descriptor identifies one daily fetch segment. Index is assigned in
// chronological order starting at 0 and is the key every downstream
// stage uses to re-order concurrent results.
type Descriptor struct {
	Index       int
	WindowStart time.Time
	WindowEnd   time.Time // exclusive
	SourceURI   string
}

type Config struct {
	BaseURL   string
	Symbol    string
	Interval  string
	PageLimit int
}

// Daily produces one descriptor per calendar day from start to end
// inclusive. Each window is capped so a single page can hold it: the
// remote endpoint silently truncates past its per-call limit, so a
// window never spans more than PageLimit intervals.
func Daily(cfg Config, start, end time.Time) ([]Descriptor, error) {
	start = start.UTC()
	end = end.UTC()
	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange,
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	interval, ok := market.ParseInterval(cfg.Interval)
	if !ok {
		return nil, fmt.Errorf("%w: unrecognized interval %q", ErrInvalidRange, cfg.Interval)
	}
	if cfg.PageLimit < 1 {
		return nil, fmt.Errorf("%w: page limit must be >= 1, got %d", ErrInvalidRange, cfg.PageLimit)
	}
	span := interval * time.Duration(cfg.PageLimit)
	if span > 24*time.Hour {
		span = 24 * time.Hour
	}
	var descs []Descriptor
	for cur := start; !cur.After(end); cur = cur.Add(24 * time.Hour) {
		d := Descriptor{
			Index:       len(descs),
			WindowStart: cur,
			WindowEnd:   cur.Add(span),
		}
		d.SourceURI = buildURI(cfg, d)
		descs = append(descs, d)
	}
	return descs, nil
}

func buildURI(cfg Config, d Descriptor) string {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		u = &url.URL{Scheme: "https", Host: "www.binance.com"}
	}
	u.Path = klinesPath
	q := u.Query()
	q.Set("symbol", cfg.Symbol)
	q.Set("interval", cfg.Interval)
	q.Set("limit", strconv.Itoa(cfg.PageLimit))
	q.Set("startTime", strconv.FormatInt(d.WindowStart.UnixMilli(), 10))
	q.Set("endTime", strconv.FormatInt(d.WindowEnd.UnixMilli()-1, 10))
	u.RawQuery = q.Encode()
	return u.String()
}
