package service

import (
	"context"
	"testing"

	"go-warehouse-inventory/internal/model"
	"go-warehouse-inventory/internal/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestDashboardStats(t *testing.T) {
	env := newTestEnv(t)
	x := env.product("X", 10)
	env.product("Y", 20)
	env.stockIn(x.ID, 5)

	order := env.order(item(x.ID, 9))
	_, err := env.orders.Confirm(env.ctx, order.ID, admin)
	require.NoError(t, err)
	env.order(item(x.ID, 1))

	d, err := env.dashboard.GetDashboard(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), d.Stats.TotalProducts)
	assert.Equal(t, int64(1), d.Stats.LowStockCount)
	assert.Equal(t, int64(21*1500), d.Stats.TotalValuation)
	assert.Equal(t, int64(2), d.Stats.TotalOrders)
	assert.Equal(t, int64(1), d.Stats.PendingOrders)
	assert.Equal(t, int64(1), d.Stats.DraftStockIns)
	assert.Equal(t, int64(1), d.OrdersByStatus[model.OrderPending])
	assert.Equal(t, int64(1), d.OrdersByStatus[model.OrderProcessing])
	assert.Len(t, d.RecentOrders, 2)
	require.Len(t, d.LowStock, 1)
	assert.Equal(t, x.ID, d.LowStock[0].ProductID)
}

func TestDashboardStockMovement(t *testing.T) {
	env := newTestEnv(t)
	x := env.product("X", 10)
	_, err := env.stock.CreateStockOut(env.ctx, &CreateStockOutRequest{
		ProductID: x.ID, Quantity: 4, Type: model.StockOutDamaged,
	}, admin)
	require.NoError(t, err)

	rows, err := env.dashboard.GetStockMovement(env.ctx, 0)
	require.NoError(t, err)
	inbound, outbound := 0, 0
	for _, r := range rows {
		assert.Len(t, r.Date, 10)
		inbound += r.Inbound
		outbound += r.Outbound
	}
	assert.Equal(t, 10, inbound)
	assert.Equal(t, 4, outbound)

	fin, err := env.dashboard.GetFinancialSummary(env.ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), fin.Revenue)
	assert.Equal(t, int64(10*1000), fin.Cost)
	assert.Equal(t, int64(-10000), fin.Net)
}

func TestDashboardForecasts(t *testing.T) {
	env := newTestEnv(t)
	x := env.product("X", 10)
	y := env.product("Y", 10)

	order := env.order(item(x.ID, 9))
	_, err := env.orders.Confirm(env.ctx, order.ID, admin)
	require.NoError(t, err)

	// manual stock-outs are not demand
	_, err = env.stock.CreateStockOut(env.ctx, &CreateStockOutRequest{
		ProductID: y.ID, Quantity: 6, Type: model.StockOutDamaged,
	}, admin)
	require.NoError(t, err)

	forecasts, err := env.dashboard.GetForecasts(env.ctx)
	require.NoError(t, err)
	byID := map[uuid.UUID]ProductForecast{}
	for _, f := range forecasts {
		byID[f.ProductID] = f
	}
	require.Len(t, byID, 2)

	assert.Equal(t, 3, byID[x.ID].Forecast30d)
	assert.Equal(t, 1, byID[x.ID].Quantity)
	assert.Equal(t, 2, byID[x.ID].SuggestedReorder)
	assert.Equal(t, "X", byID[x.ID].ProductCode)

	assert.Equal(t, 0, byID[y.ID].Forecast30d)
	assert.Equal(t, 0, byID[y.ID].SuggestedReorder)
}

type failingPredictor struct{}

func (failingPredictor) PredictDemand(context.Context, uuid.UUID) (int, error) {
	return 0, errors.New("model unavailable")
}

func TestDashboardForecastFailureIsZero(t *testing.T) {
	env := newTestEnv(t)
	env.product("X", 10)

	svc := NewDashboardService(
		repository.NewDashboardRepo(env.db),
		repository.NewOrderRepo(env.db),
		repository.NewInventoryRepo(env.db),
		failingPredictor{},
		zaptest.NewLogger(t),
	)
	forecasts, err := svc.GetForecasts(env.ctx)
	require.NoError(t, err)
	require.Len(t, forecasts, 1)
	assert.Equal(t, 0, forecasts[0].Forecast30d)
	assert.Equal(t, 0, forecasts[0].SuggestedReorder)
}
