// Package broker defines the order transport contract. The engine only
// needs PlaceOrder; everything else about the broker lives outside the core.
package broker

import (
	"context"

	"github.com/dtsys/intraday/position"
)

type Order struct {
	Symbol    string
	Direction position.Direction
	Quantity  float64
	Price     float64
}

type Transport interface {
	// PlaceOrder submits a market order and returns the broker order ID.
	// An error aborts the entry that requested it, nothing more.
	PlaceOrder(ctx context.Context, o Order) (string, error)
}
