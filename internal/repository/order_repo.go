package repository

import (
	"context"

	"go-warehouse-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderFilter struct {
	Status model.OrderStatus
	Search string
	Limit  int
}

type OrderRepository interface {
	Create(tx *gorm.DB, order *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindByOrderNo(ctx context.Context, orderNo string) (*model.Order, error)
	FindAll(ctx context.Context, f OrderFilter) ([]model.Order, error)

	// LockByID locks the order row and loads its items.
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Order, error)
	UpdateStatus(tx *gorm.DB, id uuid.UUID, status model.OrderStatus, updatedBy string) error
	UpdateDetails(tx *gorm.DB, order *model.Order) error
	ReplaceItems(tx *gorm.DB, orderID uuid.UUID, items []model.OrderItem) error
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) Create(tx *gorm.DB, order *model.Order) error {
	// items are inserted through the association; callers leave Items[i].Product nil
	return tx.Create(order).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").Preload("Items.Product").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) FindByOrderNo(ctx context.Context, orderNo string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").Preload("Items.Product").
		First(&order, "order_no = ?", orderNo).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) FindAll(ctx context.Context, f OrderFilter) ([]model.Order, error) {
	var orders []model.Order
	q := r.db.WithContext(ctx).Preload("Items")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("order_no LIKE ? OR customer_name LIKE ?", like, like)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	err := q.Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Take(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("order_id = ?", id).Order("product_id ASC").Find(&order.Items).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) UpdateStatus(tx *gorm.DB, id uuid.UUID, status model.OrderStatus, updatedBy string) error {
	return tx.Model(&model.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_by": updatedBy}).Error
}

func (r *orderRepo) UpdateDetails(tx *gorm.DB, order *model.Order) error {
	return tx.Model(order).Omit(clause.Associations).
		Select("customer_name", "customer_email", "customer_phone", "customer_address",
			"note", "payment_method", "total_amount", "updated_by").
		Updates(order).Error
}

func (r *orderRepo) ReplaceItems(tx *gorm.DB, orderID uuid.UUID, items []model.OrderItem) error {
	if err := tx.Where("order_id = ?", orderID).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = orderID
		items[i].ID = uuid.Nil
	}
	return tx.Omit("Product").Create(&items).Error
}
