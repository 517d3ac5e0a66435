// Package notify publishes structured entry/exit events for external
// consumers (dashboards, chat alerts). Delivery is fire-and-forget; a
// failing notifier must never stall the engine.
package notify

import (
	"log/slog"
	"time"
)

type SignalType string

const (
	SignalEntry SignalType = "entry"
	SignalExit  SignalType = "exit"
)

// Event is one position state transition.
type Event struct {
	SignalType SignalType
	Symbol     string
	Direction  string
	Price      float64
	Quantity   float64
	Leverage   float64
	Reason     string
	Time       time.Time
}

type Notifier interface {
	Notify(Event)
}

// LogNotifier writes events to structured logs. It is the default sink;
// chat/webhook senders implement Notifier the same way.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log.With(slog.String("component", "notify"))}
}

func (n *LogNotifier) Notify(e Event) {
	n.log.Info("signal",
		slog.String("signal_type", string(e.SignalType)),
		slog.String("symbol", e.Symbol),
		slog.String("direction", e.Direction),
		slog.Float64("price", e.Price),
		slog.Float64("quantity", e.Quantity),
		slog.Float64("leverage", e.Leverage),
		slog.String("reason", e.Reason),
		slog.Time("time", e.Time),
	)
}

// Multi fans one event out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(e Event) {
	for _, n := range m {
		n.Notify(e)
	}
}
