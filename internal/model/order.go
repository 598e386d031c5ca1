package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipping   OrderStatus = "shipping"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipping, OrderCancelled},
	OrderShipping:   {OrderDelivered, OrderCancelled},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipping, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// NextStatuses lists the reachable states, empty for terminal ones.
func (s OrderStatus) NextStatuses() []OrderStatus {
	return append([]OrderStatus(nil), orderTransitions[s]...)
}

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCOD      PaymentMethod = "cod"
)

type Order struct {
	BaseModel
	OrderNo         string        `gorm:"type:varchar(20);uniqueIndex;not null" json:"order_no"`
	CustomerName    string        `gorm:"type:varchar(200);not null" json:"customer_name"`
	CustomerEmail   string        `gorm:"type:varchar(50)" json:"customer_email"`
	CustomerPhone   string        `gorm:"type:varchar(20)" json:"customer_phone"`
	CustomerAddress string        `gorm:"type:text" json:"customer_address"`
	Note            string        `gorm:"type:text" json:"note"`
	PaymentMethod   PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`
	TotalAmount     int64         `gorm:"not null;default:0" json:"total_amount"`
	Status          OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	Items           []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// RecalculateTotal refreshes every subtotal and the order total.
func (o *Order) RecalculateTotal() {
	var total int64
	for i := range o.Items {
		o.Items[i].Subtotal = int64(o.Items[i].Quantity) * o.Items[i].UnitPrice
		total += o.Items[i].Subtotal
	}
	o.TotalAmount = total
}

func (o *Order) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(o.Items))
	for _, item := range o.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// OrderItem is unique per (order, product). UnitPrice is a snapshot taken when the line is written.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_order_items_order_product" json:"order_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_order_items_order_product;index" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"product,omitempty"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	UnitPrice int64     `gorm:"not null" json:"unit_price"`
	Subtotal  int64     `gorm:"not null" json:"subtotal"`
}

func (item *OrderItem) BeforeSave(tx *gorm.DB) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.Subtotal = int64(item.Quantity) * item.UnitPrice
	return nil
}
