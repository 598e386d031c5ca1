package repository

import (
	"context"
	"errors"

	"go-warehouse-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryFilter struct {
	LowStockOnly bool
	ActiveOnly   bool
}

type InventoryRepository interface {
	FindByProduct(ctx context.Context, productID uuid.UUID) (*model.Inventory, error)
	FindAll(ctx context.Context, f InventoryFilter) ([]model.Inventory, error)
	// FindAllTx is FindAll on the caller's transaction.
	FindAllTx(tx *gorm.DB, f InventoryFilter) ([]model.Inventory, error)
	Create(tx *gorm.DB, inv *model.Inventory) error

	// LockByProduct reads the row with SELECT ... FOR UPDATE. Returns (nil, nil) when absent.
	LockByProduct(tx *gorm.DB, productID uuid.UUID) (*model.Inventory, error)
	UpdateQuantity(tx *gorm.DB, id uuid.UUID, quantity int) error
	UpdateThresholds(ctx context.Context, productID uuid.UUID, min, max int) error
}

type inventoryRepo struct {
	db *gorm.DB
}

func NewInventoryRepo(db *gorm.DB) InventoryRepository {
	return &inventoryRepo{db}
}

func (r *inventoryRepo) FindByProduct(ctx context.Context, productID uuid.UUID) (*model.Inventory, error) {
	var inv model.Inventory
	err := r.db.WithContext(ctx).Preload("Product").First(&inv, "product_id = ?", productID).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *inventoryRepo) FindAll(ctx context.Context, f InventoryFilter) ([]model.Inventory, error) {
	return r.FindAllTx(r.db.WithContext(ctx), f)
}

func (r *inventoryRepo) FindAllTx(tx *gorm.DB, f InventoryFilter) ([]model.Inventory, error) {
	var items []model.Inventory
	q := tx.Model(&model.Inventory{}).Preload("Product").Preload("Product.Category")
	if f.ActiveOnly {
		q = q.Joins("JOIN products ON products.id = inventories.product_id AND products.deleted_at IS NULL").
			Where("products.is_active = ?", true)
	}
	if f.LowStockOnly {
		q = q.Where("inventories.quantity <= inventories.min_quantity")
	}
	err := q.Order("inventories.quantity ASC").Find(&items).Error
	return items, err
}

func (r *inventoryRepo) Create(tx *gorm.DB, inv *model.Inventory) error {
	return tx.Omit("Product").Create(inv).Error
}

func (r *inventoryRepo) LockByProduct(tx *gorm.DB, productID uuid.UUID) (*model.Inventory, error) {
	var inv model.Inventory
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", productID).
		Take(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *inventoryRepo) UpdateQuantity(tx *gorm.DB, id uuid.UUID, quantity int) error {
	return tx.Model(&model.Inventory{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
}

func (r *inventoryRepo) UpdateThresholds(ctx context.Context, productID uuid.UUID, min, max int) error {
	res := r.db.WithContext(ctx).Model(&model.Inventory{}).
		Where("product_id = ?", productID).
		Updates(map[string]interface{}{"min_quantity": min, "max_quantity": max})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
