package config

import "strings"

const (
	defaultBaseURL   = "https://www.binance.com"
	defaultSymbol    = "BTCUSDT"
	defaultInterval  = "1m"
	defaultPageLimit = 1000
)

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.App.LogLevel) == "" {
		c.App.LogLevel = "info"
	}
	if strings.TrimSpace(c.Source.Kind) == "" {
		c.Source.Kind = "rest"
	}
	if strings.TrimSpace(c.Source.BaseURL) == "" {
		c.Source.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(c.Source.Symbol) == "" {
		c.Source.Symbol = defaultSymbol
	}
	if strings.TrimSpace(c.Source.Interval) == "" {
		c.Source.Interval = defaultInterval
	}
	if c.Source.PageLimit <= 0 {
		c.Source.PageLimit = defaultPageLimit
	}
	if c.Source.TimeoutSeconds <= 0 {
		c.Source.TimeoutSeconds = 30
	}
	if c.Fetch.MaxConcurrency == 0 {
		c.Fetch.MaxConcurrency = 10
	}
	if c.Fetch.AttemptTimeoutSeconds <= 0 {
		c.Fetch.AttemptTimeoutSeconds = 30
	}
	if c.Fetch.RetryDelayMillis <= 0 {
		c.Fetch.RetryDelayMillis = 1000
	}
	if c.Aggregate.GroupSize == 0 {
		c.Aggregate.GroupSize = 5
	}
	if strings.TrimSpace(c.Aggregate.GapPolicy) == "" {
		c.Aggregate.GapPolicy = "skip"
	}
	if strings.TrimSpace(c.Cache.Path) == "" {
		c.Cache.Path = "data/candles.db"
	}
	if strings.TrimSpace(c.Output.Path) == "" {
		c.Output.Path = "data/candles.csv"
	}
}
