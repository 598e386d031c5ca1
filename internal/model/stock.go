package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementStatus string

const (
	MovementDraft     MovementStatus = "draft"
	MovementConfirmed MovementStatus = "confirmed"
	MovementCancelled MovementStatus = "cancelled"
)

// StockIn is an incoming shipment. It only reaches the ledger once approved.
type StockIn struct {
	BaseModel
	ProductID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"product_id"`
	Product         *Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	SupplierID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Supplier        *Supplier  `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Quantity        int        `gorm:"not null" json:"quantity"`
	UnitPrice       int64      `gorm:"not null" json:"unit_price"`
	TotalCost       int64      `gorm:"not null" json:"total_cost"`
	UpdatedQuantity int        `gorm:"not null;default:0" json:"updated_quantity"`
	Note            string     `gorm:"type:text" json:"note"`
	ApprovedBy      *string    `gorm:"type:varchar(255)" json:"approved_by"`
	ApprovedAt      *time.Time `json:"approved_at"`
	IsDisabled      bool       `gorm:"not null;default:false;index" json:"is_disabled"`
}

func (s *StockIn) BeforeSave(tx *gorm.DB) error {
	s.TotalCost = int64(s.Quantity) * s.UnitPrice
	return nil
}

func (s *StockIn) IsConfirmed() bool {
	return s.ApprovedBy != nil
}

func (s *StockIn) Status() MovementStatus {
	switch {
	case s.IsDisabled:
		return MovementCancelled
	case s.IsConfirmed():
		return MovementConfirmed
	default:
		return MovementDraft
	}
}

// OldQuantity is the ledger value before this record was applied.
func (s *StockIn) OldQuantity() int {
	return s.UpdatedQuantity - s.Quantity
}

type StockOutType string

const (
	StockOutOrder          StockOutType = "order"
	StockOutDamaged        StockOutType = "damaged"
	StockOutReturnSupplier StockOutType = "return_supplier"
	StockOutPromotion      StockOutType = "promotion"
	StockOutInternal       StockOutType = "internal"
	StockOutTransfer       StockOutType = "transfer"
	StockOutAdjustment     StockOutType = "adjustment"
	StockOutOther          StockOutType = "other"
)

var StockOutTypes = []StockOutType{
	StockOutOrder, StockOutDamaged, StockOutReturnSupplier, StockOutPromotion,
	StockOutInternal, StockOutTransfer, StockOutAdjustment, StockOutOther,
}

func (t StockOutType) Valid() bool {
	for _, v := range StockOutTypes {
		if v == t {
			return true
		}
	}
	return false
}

// NeedsElevatedApproval reports types that only an elevated actor may approve on creation.
func (t StockOutType) NeedsElevatedApproval() bool {
	return t == StockOutDamaged || t == StockOutAdjustment
}

// StockOut is an outgoing movement. The ledger is decremented when the record is created.
type StockOut struct {
	BaseModel
	ProductID       uuid.UUID    `gorm:"type:uuid;not null;index" json:"product_id"`
	Product         *Product     `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	OrderID         *uuid.UUID   `gorm:"type:uuid;index" json:"order_id,omitempty"`
	Order           *Order       `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Type            StockOutType `gorm:"type:varchar(20);not null;default:'order'" json:"type"`
	Quantity        int          `gorm:"not null" json:"quantity"`
	UpdatedQuantity int          `gorm:"not null;default:0" json:"updated_quantity"`
	Reason          string       `gorm:"type:varchar(200)" json:"reason"`
	Note            string       `gorm:"type:text" json:"note"`
	ApprovedBy      *string      `gorm:"type:varchar(255)" json:"approved_by"`
	ApprovedAt      *time.Time   `json:"approved_at"`
	IsDisabled      bool         `gorm:"not null;default:false;index" json:"is_disabled"`
}

func (s *StockOut) IsApproved() bool {
	return s.ApprovedBy != nil
}

func (s *StockOut) OldQuantity() int {
	return s.UpdatedQuantity + s.Quantity
}
