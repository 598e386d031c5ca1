package service

import (
	"context"

	"go-warehouse-inventory/internal/model"
	"go-warehouse-inventory/internal/repository"
	"go-warehouse-inventory/pkg/keylock"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Ledger owns every write to inventory quantities.
// Writes happen only inside locked(), which holds a per-product critical section
// in-process and SELECT ... FOR UPDATE on the rows inside one transaction.
type Ledger struct {
	db            *gorm.DB
	inventoryRepo repository.InventoryRepository
	locks         *keylock.Locker
	log           *zap.Logger
}

func NewLedger(db *gorm.DB, inventoryRepo repository.InventoryRepository, locks *keylock.Locker, log *zap.Logger) *Ledger {
	return &Ledger{
		db:            db,
		inventoryRepo: inventoryRepo,
		locks:         locks,
		log:           log.Named("ledger"),
	}
}

// Adjustment is the result of one ledger write.
type Adjustment struct {
	ProductID uuid.UUID
	Old       int
	New       int
}

func productKey(id uuid.UUID) string { return "product:" + id.String() }
func orderKey(id uuid.UUID) string   { return "order:" + id.String() }

// locked runs fn in a single transaction while holding the keys of every product
// plus any extra keys. fn must only use the tx it is given.
func (l *Ledger) locked(ctx context.Context, productIDs []uuid.UUID, extra []string, fn func(tx *gorm.DB) error) error {
	keys := make([]string, 0, len(productIDs)+len(extra))
	for _, id := range productIDs {
		keys = append(keys, productKey(id))
	}
	keys = append(keys, extra...)

	unlock := l.locks.Lock(keys...)
	defer unlock()

	return l.db.WithContext(ctx).Transaction(fn)
}

// productsExist fails with ErrNotFound when any id has no product row. It must run inside locked().
func productsExist(tx *gorm.DB, repo repository.ProductRepository, ids ...uuid.UUID) error {
	found, err := repo.FindByIDs(tx, ids)
	if err != nil {
		return errors.Wrap(err, "load products")
	}
	have := make(map[uuid.UUID]bool, len(found))
	for _, p := range found {
		have[p.ID] = true
	}
	for _, id := range ids {
		if !have[id] {
			return errors.Wrapf(ErrNotFound, "product %s", id)
		}
	}
	return nil
}

// adjust applies delta to the product's quantity. It must run inside locked().
// A missing row is created for a positive delta and is insufficient stock otherwise.
func (l *Ledger) adjust(tx *gorm.DB, productID uuid.UUID, delta int) (Adjustment, error) {
	adj := Adjustment{ProductID: productID}

	inv, err := l.inventoryRepo.LockByProduct(tx, productID)
	if err != nil {
		return adj, errors.Wrap(err, "lock inventory")
	}

	if inv == nil {
		if delta < 0 {
			return adj, errors.Wrapf(ErrInsufficientStock, "product %s: available 0, requested %d", productID, -delta)
		}
		inv = model.NewInventory(productID)
		inv.Quantity = delta
		if err := l.inventoryRepo.Create(tx, inv); err != nil {
			return adj, errors.Wrap(err, "create inventory")
		}
		adj.New = delta
		l.log.Debug("inventory created", zap.Stringer("product_id", productID), zap.Int("quantity", delta))
		return adj, nil
	}

	adj.Old = inv.Quantity
	adj.New = inv.Quantity + delta
	if adj.New < 0 {
		return adj, errors.Wrapf(ErrInsufficientStock, "product %s: available %d, requested %d", productID, inv.Quantity, -delta)
	}
	if err := l.inventoryRepo.UpdateQuantity(tx, inv.ID, adj.New); err != nil {
		return adj, errors.Wrap(err, "update inventory")
	}

	l.log.Debug("inventory adjusted",
		zap.Stringer("product_id", productID),
		zap.Int("delta", delta),
		zap.Int("quantity", adj.New))
	return adj, nil
}

func (a Adjustment) event(reference string) StockChange {
	return StockChange{
		ProductID:   a.ProductID.String(),
		OldQuantity: a.Old,
		NewQuantity: a.New,
		Reference:   reference,
	}
}
