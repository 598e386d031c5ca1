package service

import (
	"testing"

	"go-warehouse-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestLedgerAdjust(t *testing.T) {
	env := newTestEnv(t)
	p := env.product("P1", 3)

	var adj Adjustment
	err := env.ledger.locked(env.ctx, []uuid.UUID{p.ID}, nil, func(tx *gorm.DB) error {
		var err error
		adj, err = env.ledger.adjust(tx, p.ID, 4)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 3, adj.Old)
	assert.Equal(t, 7, adj.New)
	assert.Equal(t, 7, env.quantity(p.ID))

	err = env.ledger.locked(env.ctx, []uuid.UUID{p.ID}, nil, func(tx *gorm.DB) error {
		_, err := env.ledger.adjust(tx, p.ID, -8)
		return err
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 7, env.quantity(p.ID))
}

func TestLedgerAdjustRollsBackWithTransaction(t *testing.T) {
	env := newTestEnv(t)
	a := env.product("A", 5)
	b := env.product("B", 1)

	err := env.ledger.locked(env.ctx, []uuid.UUID{a.ID, b.ID}, nil, func(tx *gorm.DB) error {
		if _, err := env.ledger.adjust(tx, a.ID, -5); err != nil {
			return err
		}
		_, err := env.ledger.adjust(tx, b.ID, -2)
		return err
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 5, env.quantity(a.ID))
	assert.Equal(t, 1, env.quantity(b.ID))
}

func TestLedgerAdjustMissingRow(t *testing.T) {
	env := newTestEnv(t)
	p := env.product("P1", 0)
	require.NoError(t, env.db.Where("product_id = ?", p.ID).Delete(&model.Inventory{}).Error)

	err := env.ledger.locked(env.ctx, []uuid.UUID{p.ID}, nil, func(tx *gorm.DB) error {
		_, err := env.ledger.adjust(tx, p.ID, -1)
		return err
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	err = env.ledger.locked(env.ctx, []uuid.UUID{p.ID}, nil, func(tx *gorm.DB) error {
		_, err := env.ledger.adjust(tx, p.ID, 6)
		return err
	})
	require.NoError(t, err)

	inv, err := env.ledger.Get(env.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, inv.Quantity)
	assert.Equal(t, model.DefaultMinQuantity, inv.MinQuantity)
	assert.Equal(t, model.DefaultMaxQuantity, inv.MaxQuantity)
}

func TestLedgerThresholds(t *testing.T) {
	env := newTestEnv(t)
	p := env.product("P1", 5)

	inv, err := env.ledger.Get(env.ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, inv.IsLowStock)

	inv, err = env.ledger.UpdateThresholds(env.ctx, p.ID, 2, 50, admin)
	require.NoError(t, err)
	assert.Equal(t, 2, inv.MinQuantity)
	assert.Equal(t, 50, inv.MaxQuantity)
	assert.False(t, inv.IsLowStock)

	_, err = env.ledger.UpdateThresholds(env.ctx, p.ID, 10, 5, admin)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.ledger.UpdateThresholds(env.ctx, p.ID, -1, 5, admin)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.ledger.UpdateThresholds(env.ctx, uuid.New(), 1, 5, admin)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedgerListLowStock(t *testing.T) {
	env := newTestEnv(t)
	low := env.product("LOW", 2)
	env.product("OK", 20)

	all, err := env.ledger.List(env.ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	lows, err := env.ledger.List(env.ctx, true)
	require.NoError(t, err)
	require.Len(t, lows, 1)
	assert.Equal(t, low.ID, lows[0].ProductID)
	assert.Equal(t, "LOW", lows[0].ProductCode)
}
