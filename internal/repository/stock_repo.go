package repository

import (
	"context"
	"time"

	"go-warehouse-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockInFilter struct {
	ProductID  *uuid.UUID
	SupplierID *uuid.UUID
	Status     model.MovementStatus
}

type StockOutFilter struct {
	ProductID *uuid.UUID
	OrderID   *uuid.UUID
	Type      model.StockOutType
}

// LedgerTotals is the per-product movement sum used to audit the ledger.
type LedgerTotals struct {
	ProductID uuid.UUID
	Inbound   int
	Outbound  int
}

type StockRepository interface {
	CreateIn(tx *gorm.DB, in *model.StockIn) error
	FindInByID(ctx context.Context, id uuid.UUID) (*model.StockIn, error)
	LockInByID(tx *gorm.DB, id uuid.UUID) (*model.StockIn, error)
	SaveIn(tx *gorm.DB, in *model.StockIn) error
	ListIns(ctx context.Context, f StockInFilter) ([]model.StockIn, error)

	CreateOut(tx *gorm.DB, out *model.StockOut) error
	FindOutByID(ctx context.Context, id uuid.UUID) (*model.StockOut, error)
	LockOutByID(tx *gorm.DB, id uuid.UUID) (*model.StockOut, error)
	SaveOut(tx *gorm.DB, out *model.StockOut) error
	ListOuts(ctx context.Context, f StockOutFilter) ([]model.StockOut, error)
	LockActiveOutsByOrder(tx *gorm.DB, orderID uuid.UUID) ([]model.StockOut, error)
	CountOutsByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)

	LedgerTotals(tx *gorm.DB) ([]LedgerTotals, error)
	OrderDemandSince(ctx context.Context, productID uuid.UUID, since time.Time) (int, error)
}

type stockRepo struct {
	db *gorm.DB
}

func NewStockRepo(db *gorm.DB) StockRepository {
	return &stockRepo{db}
}

func (r *stockRepo) CreateIn(tx *gorm.DB, in *model.StockIn) error {
	return tx.Omit("Product", "Supplier").Create(in).Error
}

func (r *stockRepo) FindInByID(ctx context.Context, id uuid.UUID) (*model.StockIn, error) {
	var in model.StockIn
	err := r.db.WithContext(ctx).
		Preload("Product").Preload("Product.Category").Preload("Supplier").
		First(&in, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (r *stockRepo) LockInByID(tx *gorm.DB, id uuid.UUID) (*model.StockIn, error) {
	var in model.StockIn
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Take(&in, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &in, nil
}

func (r *stockRepo) SaveIn(tx *gorm.DB, in *model.StockIn) error {
	return tx.Omit(clause.Associations).Save(in).Error
}

func (r *stockRepo) ListIns(ctx context.Context, f StockInFilter) ([]model.StockIn, error) {
	var ins []model.StockIn
	q := r.db.WithContext(ctx).Preload("Product").Preload("Supplier")
	if f.ProductID != nil {
		q = q.Where("product_id = ?", *f.ProductID)
	}
	if f.SupplierID != nil {
		q = q.Where("supplier_id = ?", *f.SupplierID)
	}
	switch f.Status {
	case model.MovementDraft:
		q = q.Where("approved_by IS NULL AND is_disabled = ?", false)
	case model.MovementConfirmed:
		q = q.Where("approved_by IS NOT NULL AND is_disabled = ?", false)
	case model.MovementCancelled:
		q = q.Where("is_disabled = ?", true)
	}
	err := q.Order("created_at DESC").Find(&ins).Error
	return ins, err
}

func (r *stockRepo) CreateOut(tx *gorm.DB, out *model.StockOut) error {
	return tx.Omit(clause.Associations).Create(out).Error
}

func (r *stockRepo) FindOutByID(ctx context.Context, id uuid.UUID) (*model.StockOut, error) {
	var out model.StockOut
	err := r.db.WithContext(ctx).
		Preload("Product").Preload("Product.Category").Preload("Order").
		First(&out, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *stockRepo) LockOutByID(tx *gorm.DB, id uuid.UUID) (*model.StockOut, error) {
	var out model.StockOut
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Take(&out, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *stockRepo) SaveOut(tx *gorm.DB, out *model.StockOut) error {
	return tx.Omit(clause.Associations).Save(out).Error
}

func (r *stockRepo) ListOuts(ctx context.Context, f StockOutFilter) ([]model.StockOut, error) {
	var outs []model.StockOut
	q := r.db.WithContext(ctx).Preload("Product").Preload("Order")
	if f.ProductID != nil {
		q = q.Where("product_id = ?", *f.ProductID)
	}
	if f.OrderID != nil {
		q = q.Where("order_id = ?", *f.OrderID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	err := q.Order("created_at DESC").Find(&outs).Error
	return outs, err
}

func (r *stockRepo) LockActiveOutsByOrder(tx *gorm.DB, orderID uuid.UUID) ([]model.StockOut, error) {
	var outs []model.StockOut
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ? AND is_disabled = ?", orderID, false).
		Order("product_id ASC").
		Find(&outs).Error
	return outs, err
}

func (r *stockRepo) CountOutsByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.StockOut{}).Where("order_id = ?", orderID).Count(&count).Error
	return count, err
}

func (r *stockRepo) LedgerTotals(tx *gorm.DB) ([]LedgerTotals, error) {
	totals := map[uuid.UUID]*LedgerTotals{}

	type row struct {
		ProductID uuid.UUID
		Total     int
	}

	var ins []row
	err := tx.Model(&model.StockIn{}).
		Select("product_id, COALESCE(SUM(quantity), 0) AS total").
		Where("approved_by IS NOT NULL AND is_disabled = ?", false).
		Group("product_id").
		Scan(&ins).Error
	if err != nil {
		return nil, err
	}
	for _, in := range ins {
		totals[in.ProductID] = &LedgerTotals{ProductID: in.ProductID, Inbound: in.Total}
	}

	var outs []row
	err = tx.Model(&model.StockOut{}).
		Select("product_id, COALESCE(SUM(quantity), 0) AS total").
		Where("is_disabled = ?", false).
		Group("product_id").
		Scan(&outs).Error
	if err != nil {
		return nil, err
	}
	for _, out := range outs {
		t, ok := totals[out.ProductID]
		if !ok {
			t = &LedgerTotals{ProductID: out.ProductID}
			totals[out.ProductID] = t
		}
		t.Outbound = out.Total
	}

	result := make([]LedgerTotals, 0, len(totals))
	for _, t := range totals {
		result = append(result, *t)
	}
	return result, nil
}

func (r *stockRepo) OrderDemandSince(ctx context.Context, productID uuid.UUID, since time.Time) (int, error) {
	var total int
	err := r.db.WithContext(ctx).Model(&model.StockOut{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("product_id = ? AND type = ? AND is_disabled = ? AND created_at >= ?",
			productID, model.StockOutOrder, false, since).
		Where("approved_by IS NOT NULL").
		Scan(&total).Error
	return total, err
}
