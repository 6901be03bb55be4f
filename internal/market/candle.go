package market

import "time"

// Candle is one OHLC observation over a fixed interval. Times are Unix
// milliseconds, matching the Binance klines payload.
type Candle struct {
	OpenTime  int64   `json:"open_time"`
	CloseTime int64   `json:"close_time"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	Trades    int64   `json:"trades"`
}

// Bullish reports whether the candle closed above its open.
func (c Candle) Bullish() bool {
	return c.Close > c.Open
}

// OpenedAt returns the candle open time in UTC.
func (c Candle) OpenedAt() time.Time {
	return time.UnixMilli(c.OpenTime).UTC()
}

// ClosedAt returns the candle close time in UTC.
func (c Candle) ClosedAt() time.Time {
	return time.UnixMilli(c.CloseTime).UTC()
}
