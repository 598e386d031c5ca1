package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultMinQuantity = 10
	DefaultMaxQuantity = 1000
)

// Inventory is the ledger row of a product: the single mutable stock counter.
type Inventory struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"product_id"`
	Product     *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity    int       `gorm:"not null;check:chk_inventories_quantity,quantity >= 0" json:"quantity"`
	MinQuantity int       `gorm:"not null" json:"min_quantity"`
	MaxQuantity int       `gorm:"not null" json:"max_quantity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewInventory(productID uuid.UUID) *Inventory {
	return &Inventory{
		ProductID:   productID,
		MinQuantity: DefaultMinQuantity,
		MaxQuantity: DefaultMaxQuantity,
	}
}

func (inv *Inventory) BeforeCreate(tx *gorm.DB) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	return nil
}

func (inv *Inventory) IsLowStock() bool {
	return inv.Quantity <= inv.MinQuantity
}

type InventoryResponse struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductCode string    `json:"product_code,omitempty"`
	ProductName string    `json:"product_name,omitempty"`
	Unit        string    `json:"unit,omitempty"`
	Quantity    int       `json:"quantity"`
	MinQuantity int       `json:"min_quantity"`
	MaxQuantity int       `json:"max_quantity"`
	IsLowStock  bool      `json:"is_low_stock"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (inv *Inventory) ToResponse() InventoryResponse {
	resp := InventoryResponse{
		ProductID:   inv.ProductID,
		Quantity:    inv.Quantity,
		MinQuantity: inv.MinQuantity,
		MaxQuantity: inv.MaxQuantity,
		IsLowStock:  inv.IsLowStock(),
		UpdatedAt:   inv.UpdatedAt,
	}
	if inv.Product != nil {
		resp.ProductCode = inv.Product.Code
		resp.ProductName = inv.Product.Name
		resp.Unit = inv.Product.Unit
	}
	return resp
}
