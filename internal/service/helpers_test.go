package service

import (
	"context"
	"sync"
	"testing"

	"go-warehouse-inventory/internal/forecast"
	"go-warehouse-inventory/internal/model"
	"go-warehouse-inventory/internal/repository"
	"go-warehouse-inventory/internal/ws"
	"go-warehouse-inventory/pkg/database"
	"go-warehouse-inventory/pkg/keylock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

var (
	admin = model.Actor{ID: "admin", Name: "Admin", Elevated: true}
	clerk = model.Actor{ID: "clerk", Name: "Clerk"}
)

type recorder struct {
	mu     sync.Mutex
	events []ws.Event
}

func (r *recorder) Publish(ev ws.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Action
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type testEnv struct {
	t         *testing.T
	ctx       context.Context
	db        *gorm.DB
	ledger    *Ledger
	catalog   CatalogService
	stock     StockService
	orders    OrderService
	audit     AuditService
	dashboard DashboardService
	stockRepo repository.StockRepository
	events    *recorder

	category *model.Category
	supplier *model.Supplier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.OpenMemory()
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	events := &recorder{}

	productRepo := repository.NewProductRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	inventoryRepo := repository.NewInventoryRepo(db)
	stockRepo := repository.NewStockRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	dashboardRepo := repository.NewDashboardRepo(db)

	ledger := NewLedger(db, inventoryRepo, keylock.New(), log)

	env := &testEnv{
		t:         t,
		ctx:       context.Background(),
		db:        db,
		ledger:    ledger,
		catalog:   NewCatalogService(db, ledger, productRepo, categoryRepo, supplierRepo, inventoryRepo, events, log),
		stock:     NewStockService(ledger, stockRepo, productRepo, supplierRepo, orderRepo, events, log),
		orders:    NewOrderService(db, ledger, orderRepo, productRepo, inventoryRepo, stockRepo, events, log),
		audit:     NewAuditService(db, inventoryRepo, stockRepo),
		dashboard: NewDashboardService(dashboardRepo, orderRepo, inventoryRepo, forecast.NewMovingAverage(stockRepo, 90), log),
		stockRepo: stockRepo,
		events:    events,
	}

	env.category, err = env.catalog.CreateCategory(env.ctx, &CategoryRequest{Code: "GEN", Name: "General"}, admin)
	require.NoError(t, err)
	env.supplier, err = env.catalog.CreateSupplier(env.ctx, &SupplierRequest{Name: "Acme"}, admin)
	require.NoError(t, err)
	return env
}

// product creates an active product and, when stock > 0, confirms a stock-in for it.
func (e *testEnv) product(code string, stock int) *model.Product {
	e.t.Helper()
	p, err := e.catalog.CreateProduct(e.ctx, &ProductRequest{
		Code:       code,
		Name:       "Product " + code,
		CategoryID: e.category.ID,
		Unit:       "pcs",
		Price:      1500,
	}, admin)
	require.NoError(e.t, err)

	if stock > 0 {
		in := e.stockIn(p.ID, stock)
		_, err := e.stock.ConfirmStockIn(e.ctx, in.ID, admin)
		require.NoError(e.t, err)
	}
	e.events.reset()
	return p
}

func (e *testEnv) stockIn(productID uuid.UUID, qty int) *model.StockIn {
	e.t.Helper()
	in, err := e.stock.CreateStockIn(e.ctx, &CreateStockInRequest{
		ProductID:  productID,
		SupplierID: e.supplier.ID,
		Quantity:   qty,
		UnitPrice:  1000,
	}, clerk)
	require.NoError(e.t, err)
	return in
}

func (e *testEnv) quantity(productID uuid.UUID) int {
	e.t.Helper()
	inv, err := e.ledger.Get(e.ctx, productID)
	require.NoError(e.t, err)
	return inv.Quantity
}

func (e *testEnv) order(items ...OrderItemRequest) *model.Order {
	e.t.Helper()
	o, err := e.orders.Create(e.ctx, orderRequest(items...), clerk)
	require.NoError(e.t, err)
	return o
}

func orderRequest(items ...OrderItemRequest) *OrderRequest {
	return &OrderRequest{
		CustomerName:  "Jane Doe",
		CustomerEmail: "jane@example.com",
		PaymentMethod: model.PaymentTransfer,
		Items:         items,
	}
}

func item(productID uuid.UUID, qty int) OrderItemRequest {
	return OrderItemRequest{ProductID: productID, Quantity: qty}
}

func (e *testEnv) orderStockOuts(orderID uuid.UUID) []model.StockOut {
	e.t.Helper()
	outs, err := e.stockRepo.ListOuts(e.ctx, repository.StockOutFilter{OrderID: &orderID})
	require.NoError(e.t, err)
	return outs
}
