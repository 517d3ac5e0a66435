package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(r Record) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, symbol, direction, quantity, leverage, entry_price, exit_price,
		 entry_time, exit_time, pnl, duration_secs, exit_reason, strategy_id,
		 ai_confidence, sentiment, safety_flag, ai_metrics)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.TradeID, r.Symbol, r.Direction, r.Quantity, r.Leverage,
		r.EntryPrice, r.ExitPrice, r.EntryTime, r.ExitTime, r.PnL,
		r.Duration.Seconds(), r.Reason, r.StrategyID,
		r.AIScore, r.Sentiment, r.SafetyFlag, r.AIMetrics,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
