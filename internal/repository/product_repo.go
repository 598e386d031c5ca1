package repository

import (
	"context"

	"go-warehouse-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductFilter struct {
	Active     *bool
	CategoryID *uuid.UUID
	Search     string
}

type ProductRepository interface {
	Create(tx *gorm.DB, product *model.Product) error
	FindAll(ctx context.Context, f ProductFilter) ([]model.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByIDs(tx *gorm.DB, ids []uuid.UUID) ([]model.Product, error)
	FindByCode(ctx context.Context, code string) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	SetActive(tx *gorm.DB, id uuid.UUID, active bool, updatedBy string) error
	Delete(tx *gorm.DB, id uuid.UUID) error
	// IsInUse reports whether any order item or stock movement references the product.
	IsInUse(tx *gorm.DB, id uuid.UUID) (bool, error)
	ExistsInCategory(ctx context.Context, categoryID uuid.UUID) (bool, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(tx *gorm.DB, product *model.Product) error {
	return tx.Omit("Category", "Inventory").Create(product).Error
}

func (r *productRepo) FindAll(ctx context.Context, f ProductFilter) ([]model.Product, error) {
	var products []model.Product
	q := r.db.WithContext(ctx).Preload("Category").Preload("Inventory")
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("name LIKE ? OR code LIKE ?", like, like)
	}
	err := q.Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Preload("Category").Preload("Inventory").First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByIDs(tx *gorm.DB, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := tx.Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *productRepo) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Model(product).
		Select("code", "name", "category_id", "description", "unit", "price", "updated_by").
		Updates(product).Error
}

func (r *productRepo) SetActive(tx *gorm.DB, id uuid.UUID, active bool, updatedBy string) error {
	return tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": active, "updated_by": updatedBy}).Error
}

func (r *productRepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("product_id = ?", id).Delete(&model.Inventory{}).Error; err != nil {
		return err
	}
	// hard delete frees the unique code
	return tx.Unscoped().Delete(&model.Product{}, "id = ?", id).Error
}

func (r *productRepo) IsInUse(tx *gorm.DB, id uuid.UUID) (bool, error) {
	for _, m := range []interface{}{&model.OrderItem{}, &model.StockIn{}, &model.StockOut{}} {
		var count int64
		if err := tx.Model(m).Where("product_id = ?", id).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (r *productRepo) ExistsInCategory(ctx context.Context, categoryID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count > 0, err
}
