// Package export writes the feature table to CSV for the downstream
// grouper. One row per group, sorted ascending by group start time.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"candlefeed/internal/feature"
)

// WriteCSV writes records to path, creating parent directories as
// needed. size is the configured group size and fixes the positional
// column count even when records is empty.
func WriteCSV(path string, size int, records []feature.Record) error {
	if size < 1 {
		return fmt.Errorf("group size must be >= 1, got %d", size)
	}
	for _, rec := range records {
		if len(rec.Positions) != size {
			return fmt.Errorf("record for group %d has %d positions, want %d", rec.GroupIndex, len(rec.Positions), size)
		}
	}
	sorted := append([]feature.Record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header(size)); err != nil {
		return err
	}
	for _, rec := range sorted {
		if err := w.Write(row(rec)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func header(size int) []string {
	cols := []string{"date", "start_time", "end_time"}
	for i := 1; i <= size; i++ {
		cols = append(cols,
			fmt.Sprintf("entry_%d", i),
			fmt.Sprintf("exit_%d", i),
			fmt.Sprintf("high_%d", i),
			fmt.Sprintf("low_%d", i),
			fmt.Sprintf("return_pct_%d", i),
		)
	}
	return append(cols,
		"total_return_pct", "bullish_count", "day", "month", "year", "weekday", "trend")
}

func row(rec feature.Record) []string {
	cols := []string{
		rec.Start.Format("2006-01-02"),
		rec.Start.Format("15:04:05"),
		rec.End.Format("15:04:05"),
	}
	for _, pos := range rec.Positions {
		cols = append(cols,
			formatFloat(pos.Entry),
			formatFloat(pos.Exit),
			formatFloat(pos.High),
			formatFloat(pos.Low),
			formatFloat(pos.ReturnPct),
		)
	}
	return append(cols,
		formatFloat(rec.TotalReturn),
		strconv.Itoa(rec.BullishCount),
		strconv.Itoa(rec.Day),
		strconv.Itoa(rec.Month),
		strconv.Itoa(rec.Year),
		rec.Weekday,
		strconv.Itoa(rec.Trend),
	)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
