// Package feature derives the per-group feature rows of the output
// table. Everything here is a pure function of one candle group.
package feature

import (
	"errors"
	"fmt"
	"time"

	"candlefeed/internal/aggregate"

	"github.com/shopspring/decimal"
)

// ErrZeroOpen marks a candle whose open price is zero. Returns divide
// by the open, so this is a data-integrity fault and is surfaced
// instead of emitting Inf or NaN.
var ErrZeroOpen = errors.New("candle open price is zero")

// weekdayNames is indexed with Monday = 0.
var weekdayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

var hundred = decimal.NewFromInt(100)

// Position holds the extracted features of one candle at its 1-based
// position inside a group. ReturnPct is in percent, rounded to four
// decimal places.
type Position struct {
	Entry     float64
	Exit      float64
	High      float64
	Low       float64
	ReturnPct float64
}

// Record is one row of the output table.
type Record struct {
	GroupIndex   int
	Start        time.Time
	End          time.Time
	Positions    []Position
	TotalReturn  float64 // (last close - first open) / first open, a ratio
	BullishCount int
	Day          int
	Month        int
	Year         int
	Weekday      string
	Trend        int // 1 iff TotalReturn strictly exceeds the threshold
}

// Compute builds the feature record for one group. Identical inputs
// always produce identical records.
func Compute(group aggregate.Group, threshold float64) (Record, error) {
	if len(group.Candles) == 0 {
		return Record{}, fmt.Errorf("group %d is empty", group.Index)
	}
	rec := Record{
		GroupIndex: group.Index,
		Start:      group.Start,
		End:        group.End(),
		Positions:  make([]Position, 0, len(group.Candles)),
	}
	for i, candle := range group.Candles {
		if candle.Open == 0 {
			return Record{}, fmt.Errorf("%w: group %d position %d", ErrZeroOpen, group.Index, i+1)
		}
		rec.Positions = append(rec.Positions, Position{
			Entry:     candle.Open,
			Exit:      candle.Close,
			High:      candle.High,
			Low:       candle.Low,
			ReturnPct: returnPct(candle.Open, candle.Close),
		})
		if candle.Bullish() {
			rec.BullishCount++
		}
	}

	first := group.Candles[0]
	last := group.Candles[len(group.Candles)-1]
	open := decimal.NewFromFloat(first.Open)
	rec.TotalReturn = decimal.NewFromFloat(last.Close).Sub(open).Div(open).InexactFloat64()
	if rec.TotalReturn > threshold {
		rec.Trend = 1
	}

	start := group.Start.UTC()
	rec.Day = start.Day()
	rec.Month = int(start.Month())
	rec.Year = start.Year()
	rec.Weekday = weekdayNames[(int(start.Weekday())+6)%7]
	return rec, nil
}

// ComputeAll maps Compute over every group, preserving order.
func ComputeAll(groups []aggregate.Group, threshold float64) ([]Record, error) {
	records := make([]Record, 0, len(groups))
	for _, group := range groups {
		rec, err := Compute(group, threshold)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func returnPct(open, close float64) float64 {
	o := decimal.NewFromFloat(open)
	pct := decimal.NewFromFloat(close).Sub(o).Div(o).Mul(hundred)
	return pct.Round(4).InexactFloat64()
}
