// Package feed supplies minute bars to the tick driver. Backtests read CSV
// day files (plain, xz-compressed or zip archives); live sessions stream
// from a broker websocket.
package feed

import (
	"time"

	"github.com/dtsys/intraday/market"
)

// Source yields one tick at a time: the minute timestamp and the bars for
// every symbol that printed in that minute. ok is false at end of data.
// Implementations must be deterministic.
type Source interface {
	Next() (ts time.Time, bars map[string]market.Bar, ok bool, err error)
	Close() error
}
