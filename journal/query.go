package journal

import (
	"database/sql"
	"fmt"
	"time"
)

func scanRecord(scan func(dest ...any) error) (Record, error) {
	var rec Record
	var durationSecs float64
	err := scan(
		&rec.TradeID,
		&rec.Symbol,
		&rec.Direction,
		&rec.Quantity,
		&rec.Leverage,
		&rec.EntryPrice,
		&rec.ExitPrice,
		&rec.EntryTime,
		&rec.ExitTime,
		&rec.PnL,
		&durationSecs,
		&rec.Reason,
		&rec.StrategyID,
		&rec.AIScore,
		&rec.Sentiment,
		&rec.SafetyFlag,
		&rec.AIMetrics,
	)
	rec.Duration = time.Duration(durationSecs * float64(time.Second))
	return rec, err
}

const selectCols = `trade_id, symbol, direction, quantity, leverage, entry_price, exit_price,
	entry_time, exit_time, pnl, duration_secs, exit_reason, strategy_id,
	ai_confidence, sentiment, safety_flag, ai_metrics`

// GetTrade returns a single audit record by trade ID.
func (j *SQLite) GetTrade(tradeID string) (Record, error) {
	row := j.db.QueryRow(`SELECT `+selectCols+` FROM trades WHERE trade_id = ?`, tradeID)

	rec, err := scanRecord(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return Record{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return Record{}, err
	}
	return rec, nil
}

// ListTrades returns every audit record ordered by exit time.
func (j *SQLite) ListTrades() ([]Record, error) {
	rows, err := j.db.Query(`SELECT ` + selectCols + ` FROM trades ORDER BY exit_time ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTradesClosedBetween returns records whose exit_time is within [start, end).
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]Record, error) {
	rows, err := j.db.Query(`
		SELECT `+selectCols+`
		FROM trades
		WHERE exit_time >= ? AND exit_time < ?
		ORDER BY exit_time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
