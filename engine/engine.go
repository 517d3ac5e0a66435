// Package engine is the position and risk lifecycle core: it evaluates
// entry signals, runs the ordered exit-rule pipeline over open positions,
// applies session-level safety dampeners and keeps the capital ledger
// consistent. It is strictly synchronous — one OnMinute call per tick from
// a single driver goroutine.
package engine

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/dtsys/intraday/ai"
	"github.com/dtsys/intraday/broker"
	"github.com/dtsys/intraday/config"
	"github.com/dtsys/intraday/journal"
	"github.com/dtsys/intraday/ledger"
	"github.com/dtsys/intraday/market"
	"github.com/dtsys/intraday/metrics"
	"github.com/dtsys/intraday/notify"
	"github.com/dtsys/intraday/position"
	"github.com/dtsys/intraday/state"
)

// SentimentSource supplies the per-symbol news sentiment score in [-1, 1].
type SentimentSource interface {
	Score(symbol string) float64
}

// SessionCalendar answers the holiday/special-session check once per day.
type SessionCalendar interface {
	IsHolidayOrSpecialSession(t time.Time) bool
}

// Params are the rule thresholds. Zero-value fields are filled in from
// DefaultParams by New.
type Params struct {
	StopLossPct float64
	TargetPct   float64
	BaseTSLPct  float64

	CapitalPerTradePct float64
	MaxActivePositions int

	EntryThreshold        float64 // 0.70
	LoweredEntryThreshold float64 // 0.60 when circuit potential is high
	CircuitTrigger        float64 // circuit potential above this lowers the threshold
	SentimentFloor        float64 // entries below this sentiment are vetoed

	MinProfitMode    bool
	MinProfitPct     float64
	MinProfitLockPct float64

	ProfitLockPct    float64
	ProfitLockTSLPct float64

	BenchmarkSymbol   string
	CrashThresholdPct float64
	CrashDampener     float64
	HolidayDampener   float64

	AutoExitTime     string // "15:04" clock format
	Cooldown         time.Duration
	VolatilityWindow int

	StrategyID string

	// Sizer converts (price, leverage) into a share quantity. Nil selects
	// the default fixed-fraction policy over initial capital.
	Sizer func(price, leverage float64) float64
}

func DefaultParams() Params {
	return Params{
		StopLossPct:           2.0,
		TargetPct:             10.0,
		BaseTSLPct:            1.0,
		CapitalPerTradePct:    10.0,
		MaxActivePositions:    10,
		EntryThreshold:        0.70,
		LoweredEntryThreshold: 0.60,
		CircuitTrigger:        0.70,
		SentimentFloor:        -0.5,
		MinProfitPct:          3.0,
		MinProfitLockPct:      1.0,
		ProfitLockPct:         5.0,
		ProfitLockTSLPct:      0.5,
		BenchmarkSymbol:       "NIFTY50",
		CrashThresholdPct:     3.0,
		CrashDampener:         0.1,
		HolidayDampener:       0.5,
		AutoExitTime:          "15:20",
		Cooldown:              5 * time.Minute,
		VolatilityWindow:      10,
		StrategyID:            "intraday-ai",
	}
}

// ParamsFromConfig maps the file configuration onto engine parameters.
func ParamsFromConfig(cfg *config.Config) Params {
	p := DefaultParams()
	p.StopLossPct = cfg.Strategy.StopLossPct
	p.TargetPct = cfg.Strategy.TargetPct
	p.BaseTSLPct = cfg.Strategy.BaseTSLPct
	p.CapitalPerTradePct = cfg.Strategy.CapitalPerTradePct
	p.MaxActivePositions = cfg.Strategy.MaxActivePositions
	p.MinProfitMode = cfg.Strategy.MinProfitMode
	p.MinProfitPct = cfg.Strategy.MinProfitPct
	p.MinProfitLockPct = cfg.Strategy.MinProfitLockPct
	p.Cooldown = cfg.Cooldown()
	p.StrategyID = cfg.Strategy.StrategyID
	p.BenchmarkSymbol = cfg.Safety.BenchmarkSymbol
	p.CrashThresholdPct = cfg.Safety.CrashThresholdPct
	p.CrashDampener = cfg.Safety.CrashDampener
	p.HolidayDampener = cfg.Safety.HolidayDampener
	p.ProfitLockPct = cfg.Safety.ProfitLockPct
	p.ProfitLockTSLPct = cfg.Safety.ProfitLockTSLPct
	p.AutoExitTime = cfg.Session.AutoExitTime
	return p
}

// Deps are the external collaborators. Only the ledger is mandatory; nil
// fields get working defaults (paper broker, neutral sentiment, no-op
// journal) so backtests can wire just what they care about.
type Deps struct {
	Advisor   ai.Advisor
	Sentiment SentimentSource
	Calendar  SessionCalendar
	Transport broker.Transport
	Journal   journal.Journal
	Notifier  notify.Notifier
	Mirror    *state.Mirror
	Metrics   *metrics.Set
	Log       *slog.Logger
}

type session struct {
	date          string // "2006-01-02" of the current trading day
	holidayMult   float64
	benchmarkOpen float64
	crashActive   bool
}

type Engine struct {
	params Params
	ledger *ledger.Ledger
	store  *position.Store

	advisor   ai.Advisor
	sentiment SentimentSource
	calendar  SessionCalendar
	transport broker.Transport
	journal   journal.Journal
	notifier  notify.Notifier
	mirror    *state.Mirror
	metrics   *metrics.Set
	log       *slog.Logger

	histories map[string]*market.History
	symbols   []string // first-seen order, stable across ticks

	cooldownUntil map[string]time.Time

	session session
}

func New(params Params, led *ledger.Ledger, deps Deps) *Engine {
	if deps.Advisor == nil {
		deps.Advisor = ai.NewMomentum()
	}
	if deps.Sentiment == nil {
		deps.Sentiment = neutralSentiment{}
	}
	if deps.Transport == nil {
		deps.Transport = broker.NewPaper()
	}
	if deps.Journal == nil {
		deps.Journal = discardJournal{}
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}

	return &Engine{
		params:        params,
		ledger:        led,
		store:         position.NewStore(),
		advisor:       deps.Advisor,
		sentiment:     deps.Sentiment,
		calendar:      deps.Calendar,
		transport:     deps.Transport,
		journal:       deps.Journal,
		notifier:      deps.Notifier,
		mirror:        deps.Mirror,
		metrics:       deps.Metrics,
		log:           deps.Log.With(slog.String("component", "engine")),
		histories:     make(map[string]*market.History),
		cooldownUntil: make(map[string]time.Time),
		session:       session{holidayMult: 1.0},
	}
}

// Positions exposes the open-position store (read-mostly; the driver should
// not mutate it directly).
func (e *Engine) Positions() *position.Store { return e.store }

// Ledger exposes the capital ledger for reporting.
func (e *Engine) Ledger() *ledger.Ledger { return e.ledger }

// History returns the bar history the engine has accumulated for a symbol.
func (e *Engine) History(symbol string) *market.History {
	return e.histories[symbol]
}

// OnMinute advances the whole engine by one tick: ingest bars, run the exit
// pipeline over a snapshot of open positions, refresh the safety overlay,
// then look for new entries. Symbols with no bar this tick are skipped for
// this tick only.
func (e *Engine) OnMinute(ts time.Time, bars map[string]market.Bar) {
	e.rollSession(ts)
	e.ingest(bars)

	eod := e.autoExitReached(ts)

	e.runExitPipeline(ts, bars, eod)
	e.applySafetyOverlay(ts, bars)
	if !eod {
		e.evaluateEntries(ts, bars)
	}

	e.publishGauges()
}

// CloseAll force-closes every remaining open position at the last known
// price. The backtest driver uses it as an end-of-day backstop.
func (e *Engine) CloseAll(ts time.Time, reason position.ExitReason) {
	for _, p := range e.store.Snapshot() {
		e.closePosition(p, e.lastPrice(p), ts, reason)
	}
}

func (e *Engine) ingest(bars map[string]market.Bar) {
	// New symbols join the iteration order sorted, so a tick introducing
	// several at once is still deterministic.
	var fresh []string
	for sym := range bars {
		if _, ok := e.histories[sym]; !ok {
			fresh = append(fresh, sym)
		}
	}
	sort.Strings(fresh)
	for _, sym := range fresh {
		e.histories[sym] = market.NewHistory(0)
		e.symbols = append(e.symbols, sym)
	}

	for _, sym := range e.symbols {
		if b, ok := bars[sym]; ok {
			e.histories[sym].Add(b)
		}
	}
}

func (e *Engine) rollSession(ts time.Time) {
	day := ts.Format("2006-01-02")
	if day == e.session.date {
		return
	}

	mult := 1.0
	if e.calendar != nil && e.calendar.IsHolidayOrSpecialSession(ts) {
		mult = e.params.HolidayDampener
		e.log.Info("holiday or special session, dampening entry leverage",
			slog.String("date", day), slog.Float64("multiplier", mult))
	}

	e.session = session{date: day, holidayMult: mult}
	if e.metrics != nil {
		e.metrics.CrashGuardActive.Set(0)
	}
}

// autoExitReached reports whether the wall clock is at or past the
// configured liquidation time. A malformed time is a config defect: it is
// logged and the end-of-day rule is skipped for this tick.
func (e *Engine) autoExitReached(ts time.Time) bool {
	cutoff, err := time.Parse("15:04", e.params.AutoExitTime)
	if err != nil {
		e.log.Error("unparsable auto-exit time, skipping end-of-day rule",
			slog.String("auto_exit_time", e.params.AutoExitTime), slog.Any("err", err))
		return false
	}
	mins := ts.Hour()*60 + ts.Minute()
	return mins >= cutoff.Hour()*60+cutoff.Minute()
}

// lastPrice is the best price available for a close outside a live bar:
// the latest history close, or entry price (flat PnL) if the symbol never
// printed this session.
func (e *Engine) lastPrice(p *position.Position) float64 {
	if h, ok := e.histories[p.Symbol]; ok {
		if b, err := h.Last(); err == nil {
			return b.Close
		}
	}
	return p.EntryPrice
}

func (e *Engine) publishGauges() {
	if e.metrics == nil {
		e.mirrorCapital()
		return
	}
	e.metrics.OpenPositions.Set(float64(e.store.Count()))
	e.metrics.AvailableCapital.Set(e.ledger.Available())
	e.metrics.AggregateExposure.Set(e.ledger.AggregateExposure())
	e.metrics.AggregateLeverage.Set(e.ledger.AggregateLeverage())
	e.mirrorCapital()
}

func (e *Engine) mirrorCapital() {
	if e.mirror == nil {
		return
	}
	ctx, cancel := mirrorCtx()
	defer cancel()
	if err := e.mirror.SetCapital(ctx, e.ledger.Available()); err != nil {
		e.log.Warn("capital mirror write failed", slog.Any("err", err))
	}
}

func mirrorCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Second)
}

func floorQty(x float64) float64 {
	return math.Floor(x)
}

type neutralSentiment struct{}

func (neutralSentiment) Score(string) float64 { return 0 }

type discardJournal struct{}

func (discardJournal) RecordTrade(journal.Record) error { return nil }
func (discardJournal) Close() error                     { return nil }
