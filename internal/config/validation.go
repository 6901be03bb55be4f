package config

import (
	"fmt"

	"candlefeed/internal/market"
)

// validate rejects configurations before any network activity starts.
func validate(c *Config) error {
	if err := c.Source.validate(); err != nil {
		return err
	}
	if err := c.Range.validate(); err != nil {
		return err
	}
	if err := c.Fetch.validate(); err != nil {
		return err
	}
	if err := c.Aggregate.validate(); err != nil {
		return err
	}
	return nil
}

func (s *SourceConfig) validate() error {
	switch s.Kind {
	case "rest", "sdk":
	default:
		return fmt.Errorf("source.kind must be rest or sdk, got %q", s.Kind)
	}
	if _, ok := market.ParseInterval(s.Interval); !ok {
		return fmt.Errorf("source.interval %q is not a valid kline interval", s.Interval)
	}
	if s.PageLimit < 1 {
		return fmt.Errorf("source.page_limit must be >= 1")
	}
	return nil
}

func (r *RangeConfig) validate() error {
	start, end, err := r.Window()
	if err != nil {
		return err
	}
	if start.After(end) {
		return fmt.Errorf("range.start %s is after range.end %s", r.Start, r.End)
	}
	return nil
}

func (f *FetchConfig) validate() error {
	if f.MaxConcurrency < 1 {
		return fmt.Errorf("fetch.max_concurrency must be >= 1, got %d", f.MaxConcurrency)
	}
	if f.MaxRetries < 0 {
		return fmt.Errorf("fetch.max_retries must be >= 0, got %d", f.MaxRetries)
	}
	return nil
}

func (a *AggregateConfig) validate() error {
	if a.GroupSize < 1 {
		return fmt.Errorf("aggregate.group_size must be >= 1, got %d", a.GroupSize)
	}
	switch a.GapPolicy {
	case "skip", "fail":
	default:
		return fmt.Errorf("aggregate.gap_policy must be skip or fail, got %q", a.GapPolicy)
	}
	return nil
}
