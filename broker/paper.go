package broker

import (
	"context"
	"fmt"
	"sync"
)

// Paper fills every order instantly with a synthetic order ID. It keeps the
// orders it saw so backtests can assert on them.
type Paper struct {
	mu     sync.Mutex
	orders []Order
	seq    int
}

func NewPaper() *Paper {
	return &Paper{}
}

func (p *Paper) PlaceOrder(ctx context.Context, o Order) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	p.orders = append(p.orders, o)
	return fmt.Sprintf("PAPER-%s-%d", o.Symbol, p.seq), nil
}

// Orders returns a copy of everything placed so far.
func (p *Paper) Orders() []Order {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Order, len(p.orders))
	copy(out, p.orders)
	return out
}
