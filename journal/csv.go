package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSV appends audit records to a single trade-log file. The column set
// matches the SQLite schema so reports can be built from either sink.
type CSV struct {
	w *csv.Writer
	f *os.File
}

func NewCSV(path string) (*CSV, error) {
	// Append if the file already has rows; write the header only once.
	info, statErr := os.Stat(path)
	fresh := statErr != nil || info.Size() == 0

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write([]string{
			"trade_id", "symbol", "direction", "quantity", "leverage",
			"entry_price", "exit_price", "entry_time", "exit_time", "pnl",
			"duration_secs", "exit_reason", "strategy_id", "ai_confidence",
			"sentiment", "safety_flag", "ai_metrics",
		}); err != nil {
			f.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, err
		}
	}

	return &CSV{w: w, f: f}, nil
}

func (j *CSV) RecordTrade(r Record) error {
	err := j.w.Write([]string{
		r.TradeID,
		r.Symbol,
		r.Direction,
		f(r.Quantity),
		f(r.Leverage),
		f(r.EntryPrice),
		f(r.ExitPrice),
		r.EntryTime.Format(time.RFC3339),
		r.ExitTime.Format(time.RFC3339),
		f(r.PnL),
		f(r.Duration.Seconds()),
		r.Reason,
		r.StrategyID,
		f(r.AIScore),
		f(r.Sentiment),
		r.SafetyFlag,
		r.AIMetrics,
	})
	if err != nil {
		return err
	}
	j.w.Flush()
	return j.w.Error()
}

func (j *CSV) Close() error {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		return err
	}
	return j.f.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
