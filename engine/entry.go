package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/dtsys/intraday/ai"
	"github.com/dtsys/intraday/broker"
	"github.com/dtsys/intraday/market"
	"github.com/dtsys/intraday/notify"
	"github.com/dtsys/intraday/pkg/id"
	"github.com/dtsys/intraday/position"
)

// evaluateEntries scans every known symbol for a new entry signal. All
// rejections are local no-ops: logged, counted, never raised.
func (e *Engine) evaluateEntries(ts time.Time, bars map[string]market.Bar) {
	for _, sym := range e.symbols {
		if sym == e.params.BenchmarkSymbol {
			continue
		}
		bar, ok := bars[sym]
		if !ok {
			continue // no data this tick, skip this tick only
		}
		e.evaluateEntry(ts, sym, bar)
	}
}

func (e *Engine) evaluateEntry(ts time.Time, symbol string, bar market.Bar) {
	if _, open := e.store.Get(symbol); open {
		return
	}
	if e.store.Count() >= e.params.MaxActivePositions {
		e.reject(symbol, "max_positions")
		return
	}
	if until, ok := e.cooldownUntil[symbol]; ok && ts.Before(until) {
		return
	}

	senti := e.sentiment.Score(symbol)
	if senti < e.params.SentimentFloor {
		e.reject(symbol, "sentiment")
		return
	}

	h := e.histories[symbol]
	m := e.advisor.MetricsFor(symbol, h, senti)

	threshold := e.params.EntryThreshold
	if m.CircuitPotential > e.params.CircuitTrigger {
		threshold = e.params.LoweredEntryThreshold
	}

	dir, hasDir := e.advisor.TradeDirection(symbol)
	if !hasDir || m.Score <= threshold {
		return
	}

	levCap := e.ledger.LeverageCap()
	lev := ai.ResolveLeverage(m, levCap)
	lev *= e.entryLeverageMultiplier()
	if levCap > 0 && lev > levCap {
		lev = levCap
	}

	price := bar.Close
	qty := e.sizeQuantity(price, lev)
	if qty < 1 {
		e.reject(symbol, "zero_quantity")
		return
	}
	notional := qty * price

	if !e.ledger.Reserve(notional, lev) {
		e.reject(symbol, "capacity")
		e.log.Info("entry rejected by capital ledger",
			slog.String("symbol", symbol),
			slog.Float64("notional", notional),
			slog.Float64("leverage", lev))
		return
	}

	orderID, err := e.transport.PlaceOrder(context.Background(), broker.Order{
		Symbol:    symbol,
		Direction: dir,
		Quantity:  qty,
		Price:     price,
	})
	if err != nil {
		// Order transport failure aborts this entry only.
		e.ledger.Release(notional, lev, 0)
		e.reject(symbol, "order_failed")
		e.log.Error("order placement failed",
			slog.String("symbol", symbol), slog.Any("err", err))
		return
	}

	p := &position.Position{
		ID:         id.New(),
		Symbol:     symbol,
		Direction:  dir,
		EntryPrice: price,
		Quantity:   qty,
		Leverage:   lev,
		Notional:   notional,
		EntryTime:  ts,
		StopPct:    e.params.StopLossPct,
		TargetPct:  e.params.TargetPct,
		Metrics: position.AIMetrics{
			Score:            m.Score,
			Leverage:         m.Leverage,
			Trend:            string(m.Trend),
			CircuitPotential: m.CircuitPotential,
		},
		Sentiment: senti,
		Safety:    position.SafetyNone,
		Open:      true,
	}
	if e.session.crashActive {
		p.Safety = position.SafetyCrash
	}

	// Seed the trailing stop at the configured stop-loss distance.
	if dir == position.Long {
		p.TrailingStop = price * (1 - p.StopPct/100)
	} else {
		p.TrailingStop = price * (1 + p.StopPct/100)
	}

	e.store.Add(p)

	e.log.Info("position opened",
		slog.String("symbol", symbol),
		slog.String("direction", string(dir)),
		slog.Float64("price", price),
		slog.Float64("quantity", qty),
		slog.Float64("leverage", lev),
		slog.String("order_id", orderID))

	if e.metrics != nil {
		e.metrics.TradesOpened.WithLabelValues(string(dir)).Inc()
	}
	if e.notifier != nil {
		e.notifier.Notify(notify.Event{
			SignalType: notify.SignalEntry,
			Symbol:     symbol,
			Direction:  string(dir),
			Price:      price,
			Quantity:   qty,
			Leverage:   lev,
			Reason:     "entry_signal",
			Time:       ts,
		})
	}
	if e.mirror != nil {
		ctx, cancel := mirrorCtx()
		defer cancel()
		if err := e.mirror.AddOpenPosition(ctx, p); err != nil {
			e.log.Warn("open-position mirror write failed",
				slog.String("symbol", symbol), slog.Any("err", err))
		}
	}
}

func (e *Engine) sizeQuantity(price, leverage float64) float64 {
	if price <= 0 {
		return 0
	}
	if e.params.Sizer != nil {
		return floorQty(e.params.Sizer(price, leverage))
	}
	tradeCapital := e.ledger.Initial() * e.params.CapitalPerTradePct / 100
	return floorQty(tradeCapital * leverage / price)
}

func (e *Engine) reject(symbol, cause string) {
	if e.metrics != nil {
		e.metrics.EntriesRejected.WithLabelValues(cause).Inc()
	}
}
