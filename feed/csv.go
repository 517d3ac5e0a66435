package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/dtsys/intraday/market"
)

// CSVFeed reads canonical minute-bar rows:
//
//	time,symbol,open,high,low,close,volume
//
// where time is RFC3339. Rows must be sorted by time; consecutive rows with
// the same timestamp are grouped into one tick. A header row is allowed.
// Files ending in .xz are decompressed transparently.
type CSVFeed struct {
	f *os.File
	r *csv.Reader

	pending  []string // first row of the next tick, already read
	sawFirst bool
	done     bool
}

func NewCSVFeed(path string) (*CSVFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var src io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open xz feed %s: %w", path, err)
		}
		src = xr
	}

	r := csv.NewReader(src)
	r.FieldsPerRecord = -1

	return &CSVFeed{f: f, r: r}, nil
}

func (c *CSVFeed) Close() error {
	if c.f != nil {
		return c.f.Close()
	}
	return nil
}

// Next returns all bars sharing the next timestamp.
func (c *CSVFeed) Next() (time.Time, map[string]market.Bar, bool, error) {
	if c.done {
		return time.Time{}, nil, false, nil
	}

	var ts time.Time
	bars := make(map[string]market.Bar)

	emit := func() (time.Time, map[string]market.Bar, bool, error) {
		if len(bars) == 0 {
			return time.Time{}, nil, false, nil
		}
		return ts, bars, true, nil
	}

	for {
		var row []string
		if c.pending != nil {
			row = c.pending
			c.pending = nil
		} else {
			var err error
			row, err = c.r.Read()
			if err == io.EOF {
				c.done = true
				return emit()
			}
			if err != nil {
				return time.Time{}, nil, false, err
			}
		}

		if len(row) == 0 {
			continue
		}
		if !c.sawFirst {
			c.sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}

		b, rowTime, ok, err := parseBarRow(row)
		if err != nil {
			return time.Time{}, nil, false, err
		}
		if !ok {
			continue
		}

		if len(bars) == 0 {
			ts = rowTime
		} else if !rowTime.Equal(ts) {
			// First row of the next minute; hold it for the next call.
			c.pending = row
			return emit()
		}
		bars[b.Symbol] = b
	}
}

func parseBarRow(row []string) (market.Bar, time.Time, bool, error) {
	// Need at least: time,symbol,open,high,low,close
	if len(row) < 6 {
		return market.Bar{}, time.Time{}, false, nil
	}

	raw := strings.TrimSpace(row[0])
	if raw == "" {
		return market.Bar{}, time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return market.Bar{}, time.Time{}, false, fmt.Errorf("bad time %q: %w", raw, err)
	}

	sym := strings.TrimSpace(row[1])
	if sym == "" {
		return market.Bar{}, time.Time{}, false, nil
	}

	vals := make([]float64, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[2+i]), 64)
		if err != nil {
			return market.Bar{}, time.Time{}, false, fmt.Errorf("bad field %q: %w", row[2+i], err)
		}
		vals[i] = v
	}

	var volume float64
	if len(row) > 6 {
		volume, _ = strconv.ParseFloat(strings.TrimSpace(row[6]), 64)
	}

	return market.Bar{
		Symbol: sym,
		Time:   t,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: volume,
	}, t, true, nil
}
