package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWritesHeaderOnceAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trade_log.csv")
	exit := time.Date(2025, 8, 29, 14, 30, 0, 0, time.UTC)

	j, err := NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, j.RecordTrade(testRecord(t, "trade-1", exit, 800)))
	require.NoError(t, j.Close())

	// Reopening must append without a second header.
	j, err = NewCSV(path)
	require.NoError(t, err)
	require.NoError(t, j.RecordTrade(testRecord(t, "trade-2", exit.Add(time.Minute), -100)))
	require.NoError(t, j.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus two records")

	assert.Equal(t, "trade_id", rows[0][0])
	assert.Len(t, rows[0], 17)
	assert.Equal(t, "trade-1", rows[1][0])
	assert.Equal(t, "trade-2", rows[2][0])
	assert.Equal(t, "LONG", rows[1][2])
	assert.Equal(t, exit.Format(time.RFC3339), rows[1][8])
}
