package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
range:
  start: "2024-01-01"
  end: "2024-01-31"
`

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "rest", cfg.Source.Kind)
	assert.Equal(t, "BTCUSDT", cfg.Source.Symbol)
	assert.Equal(t, "1m", cfg.Source.Interval)
	assert.Equal(t, 1000, cfg.Source.PageLimit)
	assert.Equal(t, 10, cfg.Fetch.MaxConcurrency)
	assert.Equal(t, 0, cfg.Fetch.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Fetch.AttemptTimeout())
	assert.Equal(t, time.Second, cfg.Fetch.RetryDelay())
	assert.Equal(t, 5, cfg.Aggregate.GroupSize)
	assert.Equal(t, "skip", cfg.Aggregate.GapPolicy)
	assert.Equal(t, "data/candles.csv", cfg.Output.Path)
	assert.False(t, cfg.Cache.Enabled)
}

func TestLoad_FullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
app:
  log_level: debug
source:
  kind: sdk
  symbol: ETHUSDT
  interval: 5m
  page_limit: 500
range:
  start: "2024-01-01T01:00:00Z"
  end: "2024-06-01T01:00:00Z"
fetch:
  max_concurrency: 4
  max_retries: 2
  attempt_timeout_seconds: 10
  retry_delay_ms: 250
aggregate:
  group_size: 8
  gap_policy: fail
feature:
  trend_threshold: 0.001
cache:
  enabled: true
  path: /tmp/cache.db
output:
  path: /tmp/out.csv
`))
	require.NoError(t, err)

	assert.Equal(t, "sdk", cfg.Source.Kind)
	assert.Equal(t, "ETHUSDT", cfg.Source.Symbol)
	assert.Equal(t, 500, cfg.Source.PageLimit)
	assert.Equal(t, 4, cfg.Fetch.MaxConcurrency)
	assert.Equal(t, 2, cfg.Fetch.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.Fetch.AttemptTimeout())
	assert.Equal(t, 250*time.Millisecond, cfg.Fetch.RetryDelay())
	assert.Equal(t, 8, cfg.Aggregate.GroupSize)
	assert.Equal(t, "fail", cfg.Aggregate.GapPolicy)
	assert.Equal(t, 0.001, cfg.Feature.TrendThreshold)
	assert.True(t, cfg.Cache.Enabled)

	start, end, err := cfg.Range.Window()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 6, 1, 1, 0, 0, 0, time.UTC), end)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"bad kind": `
source:
  kind: ftp
range: {start: "2024-01-01", end: "2024-01-02"}
`,
		"bad interval": `
source:
  interval: 1x
range: {start: "2024-01-01", end: "2024-01-02"}
`,
		"reversed range": `
range: {start: "2024-02-01", end: "2024-01-01"}
`,
		"missing range": `
app: {log_level: info}
`,
		"negative concurrency": `
range: {start: "2024-01-01", end: "2024-01-02"}
fetch: {max_concurrency: -1}
`,
		"negative retries": `
range: {start: "2024-01-01", end: "2024-01-02"}
fetch: {max_retries: -1}
`,
		"bad gap policy": `
range: {start: "2024-01-01", end: "2024-01-02"}
aggregate: {gap_policy: maybe}
`,
		"negative group size": `
range: {start: "2024-01-01", end: "2024-01-02"}
aggregate: {group_size: -5}
`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
