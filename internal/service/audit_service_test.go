package service

import (
	"sync/atomic"
	"testing"
	"time"

	"go-warehouse-inventory/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRecountMatchesMovements(t *testing.T) {
	env := newTestEnv(t)
	x := env.product("X", 10)
	y := env.product("Y", 4)

	// a draft stock-in does not count
	env.stockIn(x.ID, 50)

	_, err := env.stock.CreateStockOut(env.ctx, &CreateStockOutRequest{
		ProductID: y.ID, Quantity: 1, Type: model.StockOutPromotion,
	}, clerk)
	require.NoError(t, err)

	order := env.order(item(x.ID, 2))
	_, err = env.orders.Confirm(env.ctx, order.ID, admin)
	require.NoError(t, err)

	drifts, err := env.audit.Recount(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestRecountReportsDrift(t *testing.T) {
	env := newTestEnv(t)
	x := env.product("X", 10)
	env.product("Y", 3)

	require.NoError(t, env.db.Model(&model.Inventory{}).
		Where("product_id = ?", x.ID).
		Update("quantity", 12).Error)

	drifts, err := env.audit.Recount(env.ctx)
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, x.ID, drifts[0].ProductID)
	assert.Equal(t, "X", drifts[0].ProductCode)
	assert.Equal(t, 12, drifts[0].Ledger)
	assert.Equal(t, 10, drifts[0].Expected)
}

func TestRecountIgnoresMovementCommittedMidway(t *testing.T) {
	env := newTestEnv(t)
	x := env.product("X", 10)
	draft := env.stockIn(x.ID, 5)

	var armed atomic.Bool
	armed.Store(true)
	confirmed := make(chan error, 1)
	// once the ledger rows are read, confirm a stock-in before the movement sums run
	require.NoError(t, env.db.Callback().Query().After("gorm:query").Register("audit:interleave", func(db *gorm.DB) {
		if db.Statement.Table != "inventories" || !armed.CompareAndSwap(true, false) {
			return
		}
		go func() {
			_, err := env.stock.ConfirmStockIn(env.ctx, draft.ID, admin)
			confirmed <- err
		}()
		time.Sleep(50 * time.Millisecond)
	}))

	drifts, err := env.audit.Recount(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, drifts)

	require.NoError(t, <-confirmed)
	assert.Equal(t, 15, env.quantity(x.ID))

	drifts, err = env.audit.Recount(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}
