package repository

import (
	"context"

	"go-warehouse-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	FindAll(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	Update(ctx context.Context, category *model.Category) error
	Deactivate(ctx context.Context, id uuid.UUID, updatedBy string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type SupplierRepository interface {
	Create(ctx context.Context, supplier *model.Supplier) error
	FindAll(ctx context.Context) ([]model.Supplier, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	Update(ctx context.Context, supplier *model.Supplier) error
	Deactivate(ctx context.Context, id uuid.UUID, updatedBy string) error
	Delete(ctx context.Context, id uuid.UUID) error
	HasStockIns(ctx context.Context, id uuid.UUID) (bool, error)
}

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db}
}

func (r *categoryRepo) Create(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepo) FindAll(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *categoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) Update(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Model(category).
		Select("code", "name", "description", "is_active", "updated_by").
		Updates(category).Error
}

func (r *categoryRepo) Deactivate(ctx context.Context, id uuid.UUID, updatedBy string) error {
	return r.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "updated_by": updatedBy}).Error
}

func (r *categoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&model.Category{}, "id = ?", id).Error
}

type supplierRepo struct {
	db *gorm.DB
}

func NewSupplierRepo(db *gorm.DB) SupplierRepository {
	return &supplierRepo{db}
}

func (r *supplierRepo) Create(ctx context.Context, supplier *model.Supplier) error {
	return r.db.WithContext(ctx).Create(supplier).Error
}

func (r *supplierRepo) FindAll(ctx context.Context) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	err := r.db.WithContext(ctx).Order("name ASC").Find(&suppliers).Error
	return suppliers, err
}

func (r *supplierRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var supplier model.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *supplierRepo) Update(ctx context.Context, supplier *model.Supplier) error {
	return r.db.WithContext(ctx).Model(supplier).
		Select("name", "contact_person", "phone", "email", "address", "is_active", "updated_by").
		Updates(supplier).Error
}

func (r *supplierRepo) Deactivate(ctx context.Context, id uuid.UUID, updatedBy string) error {
	return r.db.WithContext(ctx).Model(&model.Supplier{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "updated_by": updatedBy}).Error
}

func (r *supplierRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Supplier{}, "id = ?", id).Error
}

func (r *supplierRepo) HasStockIns(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.StockIn{}).Where("supplier_id = ?", id).Count(&count).Error
	return count > 0, err
}
