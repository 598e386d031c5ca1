package service

import (
	"context"
	"database/sql"
	"sort"

	"go-warehouse-inventory/internal/model"
	"go-warehouse-inventory/internal/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Drift is a product whose ledger disagrees with its movement history.
type Drift struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductCode string    `json:"product_code"`
	Ledger      int       `json:"ledger"`
	Expected    int       `json:"expected"`
}

type AuditService interface {
	// Recount compares every ledger row with confirmed stock-ins minus live stock-outs.
	Recount(ctx context.Context) ([]Drift, error)
}

type auditService struct {
	db            *gorm.DB
	inventoryRepo repository.InventoryRepository
	stockRepo     repository.StockRepository
}

func NewAuditService(db *gorm.DB, inventoryRepo repository.InventoryRepository, stockRepo repository.StockRepository) AuditService {
	return &auditService{db: db, inventoryRepo: inventoryRepo, stockRepo: stockRepo}
}

func (s *auditService) Recount(ctx context.Context) ([]Drift, error) {
	var items []model.Inventory
	var totals []repository.LedgerTotals
	// ledger rows and movement sums come from one snapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if items, err = s.inventoryRepo.FindAllTx(tx, repository.InventoryFilter{}); err != nil {
			return errors.Wrap(err, "list inventory")
		}
		totals, err = s.stockRepo.LedgerTotals(tx)
		return errors.Wrap(err, "sum movements")
	}, s.snapshotOptions())
	if err != nil {
		return nil, err
	}

	expected := make(map[uuid.UUID]int, len(totals))
	for _, t := range totals {
		expected[t.ProductID] = t.Inbound - t.Outbound
	}

	var drifts []Drift
	for _, inv := range items {
		want := expected[inv.ProductID]
		delete(expected, inv.ProductID)
		if inv.Quantity == want {
			continue
		}
		d := Drift{ProductID: inv.ProductID, Ledger: inv.Quantity, Expected: want}
		if inv.Product != nil {
			d.ProductCode = inv.Product.Code
		}
		drifts = append(drifts, d)
	}
	// movements for a product that has no ledger row at all
	for id, want := range expected {
		if want != 0 {
			drifts = append(drifts, Drift{ProductID: id, Expected: want})
		}
	}

	sort.Slice(drifts, func(i, j int) bool { return drifts[i].ProductID.String() < drifts[j].ProductID.String() })
	return drifts, nil
}

// snapshotOptions is nil on sqlite, which serializes everything on one connection.
func (s *auditService) snapshotOptions() *sql.TxOptions {
	if s.db.Dialector.Name() != "postgres" {
		return nil
	}
	return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
}
