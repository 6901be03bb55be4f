package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"candlefeed/internal/feature"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(start time.Time, index int) feature.Record {
	return feature.Record{
		GroupIndex: index,
		Start:      start,
		End:        start.Add(5 * time.Minute),
		Positions: []feature.Position{
			{Entry: 1, Exit: 2, High: 2.5, Low: 0.5, ReturnPct: 100},
			{Entry: 2, Exit: 3, High: 3.5, Low: 1.5, ReturnPct: 50},
		},
		TotalReturn:  2,
		BullishCount: 2,
		Day:          start.Day(),
		Month:        int(start.Month()),
		Year:         start.Year(),
		Weekday:      "Monday",
		Trend:        1,
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "candles.csv")
	start := time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)
	records := []feature.Record{sampleRecord(start, 0)}

	require.NoError(t, WriteCSV(path, 2, records))

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{
		"date", "start_time", "end_time",
		"entry_1", "exit_1", "high_1", "low_1", "return_pct_1",
		"entry_2", "exit_2", "high_2", "low_2", "return_pct_2",
		"total_return_pct", "bullish_count", "day", "month", "year", "weekday", "trend",
	}, rows[0])

	row := rows[1]
	assert.Equal(t, "2024-01-01", row[0])
	assert.Equal(t, "01:00:00", row[1])
	assert.Equal(t, "01:05:00", row[2])
	assert.Equal(t, "1", row[3])
	assert.Equal(t, "100", row[7])
	assert.Equal(t, "2", row[13])  // total_return_pct
	assert.Equal(t, "Monday", row[18])
	assert.Equal(t, "1", row[19])
}

func TestWriteCSV_SortsByGroupStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.csv")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []feature.Record{
		sampleRecord(base.Add(10*time.Minute), 2),
		sampleRecord(base, 0),
		sampleRecord(base.Add(5*time.Minute), 1),
	}

	require.NoError(t, WriteCSV(path, 2, records))

	rows := readCSV(t, path)
	require.Len(t, rows, 4)
	assert.Equal(t, "00:00:00", rows[1][1])
	assert.Equal(t, "00:05:00", rows[2][1])
	assert.Equal(t, "00:10:00", rows[3][1])
}

func TestWriteCSV_EmptyRecordsStillWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.csv")
	require.NoError(t, WriteCSV(path, 5, nil))

	rows := readCSV(t, path)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], 3+5*5+7)
}

func TestWriteCSV_RejectsMismatchedPositions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.csv")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	err := WriteCSV(path, 3, []feature.Record{sampleRecord(start, 0)})
	assert.Error(t, err)
}

func TestWriteCSV_InvalidSize(t *testing.T) {
	assert.Error(t, WriteCSV(filepath.Join(t.TempDir(), "x.csv"), 0, nil))
}
