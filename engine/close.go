package engine

import (
	"log/slog"
	"time"

	"github.com/dtsys/intraday/journal"
	"github.com/dtsys/intraday/notify"
	"github.com/dtsys/intraday/position"
)

// closePosition is the single authoritative OPEN → CLOSED transition. It
// removes the position from the store, releases the capital reserved at
// open, writes the audit record and publishes the exit event. A second
// close attempt for the same symbol is an idempotent no-op with a warning.
func (e *Engine) closePosition(p *position.Position, exitPrice float64, ts time.Time, reason position.ExitReason) {
	if _, ok := e.store.Remove(p.Symbol); !ok {
		e.log.Warn("close requested for symbol with no open position",
			slog.String("symbol", p.Symbol),
			slog.String("reason", string(reason)))
		return
	}

	ct := p.Close(exitPrice, ts, reason, e.params.StrategyID)

	// Release exactly the values reserved at open.
	e.ledger.Release(ct.Notional, ct.Leverage, ct.PnL)

	if e.params.Cooldown > 0 {
		e.cooldownUntil[p.Symbol] = ts.Add(e.params.Cooldown)
	}

	e.log.Info("position closed",
		slog.String("symbol", ct.Symbol),
		slog.String("direction", string(ct.Direction)),
		slog.Float64("exit_price", ct.ExitPrice),
		slog.Float64("pnl", ct.PnL),
		slog.String("reason", string(ct.Reason)))

	rec := journal.FromClosedTrade(ct)

	// The audit sink must never halt trading: failures are logged and
	// swallowed.
	if err := e.journal.RecordTrade(rec); err != nil {
		e.log.Warn("audit journal write failed",
			slog.String("trade_id", ct.ID), slog.Any("err", err))
	}

	if e.metrics != nil {
		e.metrics.TradesClosed.WithLabelValues(string(ct.Reason), string(ct.Direction)).Inc()
	}
	if e.notifier != nil {
		e.notifier.Notify(notify.Event{
			SignalType: notify.SignalExit,
			Symbol:     ct.Symbol,
			Direction:  string(ct.Direction),
			Price:      ct.ExitPrice,
			Quantity:   ct.Quantity,
			Leverage:   ct.Leverage,
			Reason:     string(ct.Reason),
			Time:       ts,
		})
	}
	if e.mirror != nil {
		ctx, cancel := mirrorCtx()
		defer cancel()
		if err := e.mirror.RemoveOpenPosition(ctx, ct.Symbol); err != nil {
			e.log.Warn("open-position mirror removal failed",
				slog.String("symbol", ct.Symbol), slog.Any("err", err))
		}
		if err := e.mirror.PushClosedTrade(ctx, rec); err != nil {
			e.log.Warn("closed-trade mirror write failed",
				slog.String("trade_id", ct.ID), slog.Any("err", err))
		}
		if e.params.Cooldown > 0 {
			if err := e.mirror.SetCooldown(ctx, ct.Symbol, e.params.Cooldown); err != nil {
				e.log.Warn("cooldown mirror write failed",
					slog.String("symbol", ct.Symbol), slog.Any("err", err))
			}
		}
	}
}
