package service

import (
	"context"

	"go-warehouse-inventory/internal/model"
	"go-warehouse-inventory/internal/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// InventoryService is the read side of the ledger plus threshold maintenance.
// Quantities only change through stock movements and orders.
type InventoryService interface {
	Get(ctx context.Context, productID uuid.UUID) (*model.InventoryResponse, error)
	List(ctx context.Context, lowOnly bool) ([]model.InventoryResponse, error)
	UpdateThresholds(ctx context.Context, productID uuid.UUID, min, max int, actor model.Actor) (*model.InventoryResponse, error)
}

var _ InventoryService = (*Ledger)(nil)

func (l *Ledger) Get(ctx context.Context, productID uuid.UUID) (*model.InventoryResponse, error) {
	inv, err := l.inventoryRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, lookupErr(err, "inventory")
	}
	resp := inv.ToResponse()
	return &resp, nil
}

// List returns every ledger row. With lowOnly it keeps active products at or below their minimum.
func (l *Ledger) List(ctx context.Context, lowOnly bool) ([]model.InventoryResponse, error) {
	items, err := l.inventoryRepo.FindAll(ctx, repository.InventoryFilter{LowStockOnly: lowOnly, ActiveOnly: lowOnly})
	if err != nil {
		return nil, errors.Wrap(err, "list inventory")
	}
	result := make([]model.InventoryResponse, len(items))
	for i := range items {
		result[i] = items[i].ToResponse()
	}
	return result, nil
}

func (l *Ledger) UpdateThresholds(ctx context.Context, productID uuid.UUID, min, max int, actor model.Actor) (*model.InventoryResponse, error) {
	if min < 0 || min > max {
		return nil, errors.Wrapf(ErrValidation, "thresholds must satisfy 0 <= min <= max, got min=%d max=%d", min, max)
	}
	if err := l.inventoryRepo.UpdateThresholds(ctx, productID, min, max); err != nil {
		return nil, lookupErr(err, "inventory")
	}
	l.log.Info("thresholds updated",
		zap.Stringer("product_id", productID),
		zap.Int("min", min), zap.Int("max", max),
		zap.String("actor", actor.ID))
	return l.Get(ctx, productID)
}
