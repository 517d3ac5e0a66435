package market

import "errors"

// History keeps a bounded window of recent bars for one symbol.
// The engine appends one bar per minute; old bars fall off the front.
type History struct {
	bars []Bar
	max  int
}

var ErrNoBars = errors.New("no bars")

func NewHistory(max int) *History {
	if max <= 0 {
		max = 390 // one full session of minute bars
	}
	return &History{max: max}
}

func (h *History) Add(b Bar) {
	h.bars = append(h.bars, b)
	if len(h.bars) > h.max {
		h.bars = h.bars[len(h.bars)-h.max:]
	}
}

func (h *History) Len() int { return len(h.bars) }

func (h *History) Last() (Bar, error) {
	if len(h.bars) == 0 {
		return Bar{}, ErrNoBars
	}
	return h.bars[len(h.bars)-1], nil
}

// At returns the bar n steps back from the latest (At(0) == Last).
func (h *History) At(n int) (Bar, error) {
	i := len(h.bars) - 1 - n
	if i < 0 {
		return Bar{}, ErrNoBars
	}
	return h.bars[i], nil
}

// Closes returns up to n most recent close prices, oldest first.
func (h *History) Closes(n int) []float64 {
	if n > len(h.bars) {
		n = len(h.bars)
	}
	out := make([]float64, 0, n)
	for _, b := range h.bars[len(h.bars)-n:] {
		out = append(out, b.Close)
	}
	return out
}
