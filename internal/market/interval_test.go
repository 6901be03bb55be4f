package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseInterval(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"1m", time.Minute, true},
		{"15m", 15 * time.Minute, true},
		{"1h", time.Hour, true},
		{"4h", 4 * time.Hour, true},
		{"1d", 24 * time.Hour, true},
		{"1w", 7 * 24 * time.Hour, true},
		{" 4H ", 4 * time.Hour, true},
		{"1mo", 0, false},
		{"", 0, false},
		{"m", 0, false},
		{"0m", 0, false},
		{"-5m", 0, false},
		{"1x", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseInterval(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestCandleHelpers(t *testing.T) {
	open := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := Candle{
		OpenTime:  open.UnixMilli(),
		CloseTime: open.Add(time.Minute).UnixMilli() - 1,
		Open:      100,
		Close:     101,
	}
	assert.True(t, c.Bullish())
	assert.Equal(t, open, c.OpenedAt())
	assert.Equal(t, open.Add(time.Minute).Add(-time.Millisecond), c.ClosedAt())

	c.Close = 100
	assert.False(t, c.Bullish(), "flat candle is not bullish")
}
