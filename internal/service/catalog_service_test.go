package service

import (
	"testing"
	"time"

	"go-warehouse-inventory/internal/model"
	"go-warehouse-inventory/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProductStartsAtZero(t *testing.T) {
	env := newTestEnv(t)

	p, err := env.catalog.CreateProduct(env.ctx, &ProductRequest{
		Code: "P-1", Name: "Widget", CategoryID: env.category.ID, Unit: "pcs", Price: 2500,
	}, admin)
	require.NoError(t, err)
	assert.True(t, p.IsActive)
	require.NotNil(t, p.Category)
	assert.Equal(t, "GEN", p.Category.Code)
	assert.Equal(t, 0, env.quantity(p.ID))
	assert.Equal(t, []string{"product_created"}, env.events.actions())

	_, err = env.catalog.CreateProduct(env.ctx, &ProductRequest{
		Code: "P-1", Name: "Other", CategoryID: env.category.ID, Unit: "pcs",
	}, admin)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateProductChecksCategory(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.catalog.CreateProduct(env.ctx, &ProductRequest{
		Code: "P-1", Name: "Widget", CategoryID: uuid.New(), Unit: "pcs",
	}, admin)
	assert.ErrorIs(t, err, ErrNotFound)

	inactive := false
	_, err = env.catalog.UpdateCategory(env.ctx, env.category.ID, &CategoryRequest{
		Code: "GEN", Name: "General", IsActive: &inactive,
	}, admin)
	require.NoError(t, err)

	_, err = env.catalog.CreateProduct(env.ctx, &ProductRequest{
		Code: "P-1", Name: "Widget", CategoryID: env.category.ID, Unit: "pcs",
	}, admin)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.catalog.CreateProduct(env.ctx, &ProductRequest{Code: "P-2"}, admin)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteProduct(t *testing.T) {
	env := newTestEnv(t)
	unused := env.product("UNUSED", 0)
	stocked := env.product("STOCKED", 5)

	res, err := env.catalog.DeleteProduct(env.ctx, unused.ID, admin)
	require.NoError(t, err)
	assert.True(t, res.Deleted)
	_, err = env.catalog.GetProduct(env.ctx, unused.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// the code is free again
	env.product("UNUSED", 0)

	res, err = env.catalog.DeleteProduct(env.ctx, stocked.ID, admin)
	require.NoError(t, err)
	assert.True(t, res.Deactivated)
	p, err := env.catalog.GetProduct(env.ctx, stocked.ID)
	require.NoError(t, err)
	assert.False(t, p.IsActive)
	assert.Equal(t, 5, env.quantity(stocked.ID))

	_, err = env.catalog.DeleteProduct(env.ctx, uuid.New(), admin)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteProductSeesReferenceAddedWhileWaiting(t *testing.T) {
	env := newTestEnv(t)
	p := env.product("RACE", 0)

	unlock := env.ledger.locks.Lock(productKey(p.ID))

	type result struct {
		res *DeleteResult
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := env.catalog.DeleteProduct(env.ctx, p.ID, admin)
		done <- result{res, err}
	}()

	time.Sleep(50 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("delete ran while the product lock was held")
	default:
	}

	// a writer inside the critical section adds a reference
	require.NoError(t, env.stockRepo.CreateIn(env.db, &model.StockIn{
		ProductID: p.ID, SupplierID: env.supplier.ID, Quantity: 5, UnitPrice: 1000,
	}))
	unlock()

	r := <-done
	require.NoError(t, r.err)
	assert.True(t, r.res.Deactivated)
	assert.False(t, r.res.Deleted)

	got, err := env.catalog.GetProduct(env.ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestStockInForDeletedProduct(t *testing.T) {
	env := newTestEnv(t)
	p := env.product("GONE", 0)

	_, err := env.catalog.DeleteProduct(env.ctx, p.ID, admin)
	require.NoError(t, err)

	_, err = env.stock.CreateStockIn(env.ctx, &CreateStockInRequest{
		ProductID: p.ID, SupplierID: env.supplier.ID, Quantity: 3, UnitPrice: 1000,
	}, clerk)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListProductsFilters(t *testing.T) {
	env := newTestEnv(t)
	env.product("AAA", 0)
	off := env.product("BBB", 0)
	_, err := env.catalog.SetProductActive(env.ctx, off.ID, false, admin)
	require.NoError(t, err)

	active := true
	products, err := env.catalog.ListProducts(env.ctx, repository.ProductFilter{Active: &active})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "AAA", products[0].Code)

	products, err = env.catalog.ListProducts(env.ctx, repository.ProductFilter{Search: "BB"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, off.ID, products[0].ID)
}

func TestDeleteCategory(t *testing.T) {
	env := newTestEnv(t)
	env.product("P", 0)

	res, err := env.catalog.DeleteCategory(env.ctx, env.category.ID, admin)
	require.NoError(t, err)
	assert.True(t, res.Deactivated)
	c, err := env.catalog.GetCategory(env.ctx, env.category.ID)
	require.NoError(t, err)
	assert.False(t, c.IsActive)

	empty, err := env.catalog.CreateCategory(env.ctx, &CategoryRequest{Code: "TMP", Name: "Temp"}, admin)
	require.NoError(t, err)
	res, err = env.catalog.DeleteCategory(env.ctx, empty.ID, admin)
	require.NoError(t, err)
	assert.True(t, res.Deleted)

	_, err = env.catalog.CreateCategory(env.ctx, &CategoryRequest{Code: "TMP", Name: "Temp again"}, admin)
	require.NoError(t, err)
}

func TestDeleteSupplier(t *testing.T) {
	env := newTestEnv(t)
	env.product("P", 3)

	res, err := env.catalog.DeleteSupplier(env.ctx, env.supplier.ID, admin)
	require.NoError(t, err)
	assert.True(t, res.Deactivated)

	fresh, err := env.catalog.CreateSupplier(env.ctx, &SupplierRequest{Name: "Unused Ltd", Email: "sales@unused.test"}, admin)
	require.NoError(t, err)
	res, err = env.catalog.DeleteSupplier(env.ctx, fresh.ID, admin)
	require.NoError(t, err)
	assert.True(t, res.Deleted)

	_, err = env.catalog.CreateSupplier(env.ctx, &SupplierRequest{Name: "Bad", Email: "not-an-email"}, admin)
	assert.ErrorIs(t, err, ErrValidation)
}
