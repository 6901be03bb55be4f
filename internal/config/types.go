package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the top-level configuration for a candlefeed run.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Source    SourceConfig    `mapstructure:"source"`
	Range     RangeConfig     `mapstructure:"range"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Aggregate AggregateConfig `mapstructure:"aggregate"`
	Feature   FeatureConfig   `mapstructure:"feature"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Output    OutputConfig    `mapstructure:"output"`
}

type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
	LogPath  string `mapstructure:"log_path"`
}

type SourceConfig struct {
	Kind           string `mapstructure:"kind"`
	BaseURL        string `mapstructure:"base_url"`
	Symbol         string `mapstructure:"symbol"`
	Interval       string `mapstructure:"interval"`
	PageLimit      int    `mapstructure:"page_limit"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	ProxyURL       string `mapstructure:"proxy_url"`
}

func (s SourceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// RangeConfig holds the inclusive date range to scrape. Values accept
// either a plain date ("2024-01-01") or RFC 3339.
type RangeConfig struct {
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
}

// Window parses the configured range as UTC.
func (r RangeConfig) Window() (time.Time, time.Time, error) {
	start, err := parseDate(r.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("range.start: %w", err)
	}
	end, err := parseDate(r.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("range.end: %w", err)
	}
	return start, end, nil
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("value is required")
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

type FetchConfig struct {
	MaxConcurrency        int `mapstructure:"max_concurrency"`
	MaxRetries            int `mapstructure:"max_retries"`
	AttemptTimeoutSeconds int `mapstructure:"attempt_timeout_seconds"`
	RetryDelayMillis      int `mapstructure:"retry_delay_ms"`
}

func (f FetchConfig) AttemptTimeout() time.Duration {
	return time.Duration(f.AttemptTimeoutSeconds) * time.Second
}

func (f FetchConfig) RetryDelay() time.Duration {
	return time.Duration(f.RetryDelayMillis) * time.Millisecond
}

type AggregateConfig struct {
	GroupSize int    `mapstructure:"group_size"`
	GapPolicy string `mapstructure:"gap_policy"`
}

type FeatureConfig struct {
	TrendThreshold float64 `mapstructure:"trend_threshold"`
}

type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type OutputConfig struct {
	Path string `mapstructure:"path"`
}
