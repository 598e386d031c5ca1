package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderPending, OrderProcessing, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderShipping, false},
		{OrderPending, OrderDelivered, false},
		{OrderProcessing, OrderShipping, true},
		{OrderProcessing, OrderCancelled, true},
		{OrderProcessing, OrderPending, false},
		{OrderShipping, OrderDelivered, true},
		{OrderShipping, OrderCancelled, true},
		{OrderShipping, OrderProcessing, false},
		{OrderDelivered, OrderCancelled, false},
		{OrderCancelled, OrderPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}

	assert.True(t, OrderDelivered.IsTerminal())
	assert.True(t, OrderCancelled.IsTerminal())
	assert.False(t, OrderShipping.IsTerminal())
	assert.Empty(t, OrderCancelled.NextStatuses())
	assert.ElementsMatch(t, []OrderStatus{OrderProcessing, OrderCancelled}, OrderPending.NextStatuses())
	assert.False(t, OrderStatus("completed").Valid())
}

func TestOrderRecalculateTotal(t *testing.T) {
	order := &Order{Items: []OrderItem{
		{Quantity: 3, UnitPrice: 2500},
		{Quantity: 1, UnitPrice: 999},
	}}
	order.RecalculateTotal()

	assert.Equal(t, int64(7500), order.Items[0].Subtotal)
	assert.Equal(t, int64(8499), order.TotalAmount)
}

func TestStockMovementDerivedState(t *testing.T) {
	actor := "u1"

	in := &StockIn{Quantity: 5, UpdatedQuantity: 12}
	assert.Equal(t, MovementDraft, in.Status())
	in.ApprovedBy = &actor
	assert.Equal(t, MovementConfirmed, in.Status())
	assert.Equal(t, 7, in.OldQuantity())
	in.IsDisabled = true
	assert.Equal(t, MovementCancelled, in.Status())

	out := &StockOut{Quantity: 3, UpdatedQuantity: 7}
	assert.Equal(t, 10, out.OldQuantity())
	assert.True(t, StockOutDamaged.NeedsElevatedApproval())
	assert.False(t, StockOutPromotion.NeedsElevatedApproval())
	assert.False(t, StockOutType("gift").Valid())

	inv := NewInventory(in.ProductID)
	inv.Quantity = DefaultMinQuantity
	assert.True(t, inv.IsLowStock())
	inv.Quantity++
	assert.False(t, inv.IsLowStock())
}
