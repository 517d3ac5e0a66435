package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dtsys/intraday/market"
)

// tickMessage is the broker stream payload for one traded print.
type tickMessage struct {
	Symbol string  `json:"symbol"`
	LTP    float64 `json:"ltp"`
	Volume float64 `json:"volume"`
	TS     int64   `json:"ts"` // unix seconds
}

// LiveStream ingests real-time prints from a broker websocket and rolls
// them into minute bars. The driver consumes completed minutes from Bars.
type LiveStream struct {
	URL     string
	Symbols []string
	Log     *slog.Logger

	// Bars receives one map per completed minute.
	Bars chan TimedBars

	current map[string]market.Bar
	minute  time.Time
}

// TimedBars is one completed minute of bars.
type TimedBars struct {
	Time time.Time
	Bars map[string]market.Bar
}

func NewLiveStream(url string, symbols []string, log *slog.Logger) *LiveStream {
	if log == nil {
		log = slog.Default()
	}
	return &LiveStream{
		URL:     url,
		Symbols: symbols,
		Log:     log.With(slog.String("component", "livestream")),
		Bars:    make(chan TimedBars, 16),
		current: make(map[string]market.Bar),
	}
}

// Run dials the stream, subscribes, and pumps prints into minute bars until
// the context is cancelled or the connection drops. Callers own reconnects.
func (s *LiveStream) Run(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.URL, err)
	}
	defer conn.Close()
	s.Log.Info("connected to market stream", slog.String("url", s.URL))

	sub, err := json.Marshal(map[string]any{"action": "subscribe", "symbols": s.Symbols})
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var msg tickMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				s.flush()
				return ctx.Err()
			}
			return fmt.Errorf("read stream: %w", err)
		}
		s.ingest(msg)
	}
}

func (s *LiveStream) ingest(msg tickMessage) {
	t := time.Unix(msg.TS, 0).Truncate(time.Minute)

	if !s.minute.IsZero() && t.After(s.minute) {
		s.flush()
	}
	if s.minute.IsZero() || t.After(s.minute) {
		s.minute = t
	}

	b, ok := s.current[msg.Symbol]
	if !ok {
		b = market.Bar{
			Symbol: msg.Symbol,
			Time:   s.minute,
			Open:   msg.LTP,
			High:   msg.LTP,
			Low:    msg.LTP,
		}
	}
	if msg.LTP > b.High {
		b.High = msg.LTP
	}
	if msg.LTP < b.Low {
		b.Low = msg.LTP
	}
	b.Close = msg.LTP
	b.Volume += msg.Volume
	s.current[msg.Symbol] = b
}

func (s *LiveStream) flush() {
	if len(s.current) == 0 {
		return
	}
	out := TimedBars{Time: s.minute, Bars: s.current}
	s.current = make(map[string]market.Bar)

	select {
	case s.Bars <- out:
	default:
		// Consumer fell behind a full buffer; dropping the oldest minute
		// is better than stalling ingestion.
		s.Log.Warn("bar buffer full, dropping minute", slog.Time("minute", out.Time))
	}
}
