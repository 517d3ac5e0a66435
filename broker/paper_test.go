package broker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtsys/intraday/position"
)

func TestPaperAssignsSequentialIDs(t *testing.T) {
	p := NewPaper()
	ctx := context.Background()

	id1, err := p.PlaceOrder(ctx, Order{Symbol: "TCS", Direction: position.Long, Quantity: 10, Price: 100})
	require.NoError(t, err)
	id2, err := p.PlaceOrder(ctx, Order{Symbol: "INFY", Direction: position.Short, Quantity: 5, Price: 200})
	require.NoError(t, err)

	assert.Equal(t, "PAPER-TCS-1", id1)
	assert.Equal(t, "PAPER-INFY-2", id2)
}

func TestPaperRecordsOrders(t *testing.T) {
	p := NewPaper()
	ctx := context.Background()

	_, err := p.PlaceOrder(ctx, Order{Symbol: "TCS", Direction: position.Long, Quantity: 10, Price: 100})
	require.NoError(t, err)

	orders := p.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, "TCS", orders[0].Symbol)
	assert.Equal(t, position.Long, orders[0].Direction)

	// The returned slice is a copy; mutating it must not touch the broker.
	orders[0].Symbol = "MUTATED"
	assert.Equal(t, "TCS", p.Orders()[0].Symbol)
}
