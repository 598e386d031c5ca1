package model

import "github.com/google/uuid"

type Category struct {
	BaseModel
	Code        string `gorm:"type:varchar(20);uniqueIndex;not null" json:"code" validate:"required,max=20"`
	Name        string `gorm:"type:varchar(100);not null" json:"name" validate:"required,max=100"`
	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `gorm:"not null;default:true" json:"is_active"`
}

type Supplier struct {
	BaseModel
	Name          string `gorm:"type:varchar(200);not null" json:"name" validate:"required,max=200"`
	ContactPerson string `gorm:"type:varchar(100)" json:"contact_person" validate:"max=100"`
	Phone         string `gorm:"type:varchar(20)" json:"phone" validate:"max=20"`
	Email         string `gorm:"type:varchar(50)" json:"email" validate:"omitempty,email,max=50"`
	Address       string `gorm:"type:text" json:"address"`
	IsActive      bool   `gorm:"not null;default:true" json:"is_active"`
}

// Product is never hard-deleted once an order item references it; it is deactivated instead.
type Product struct {
	BaseModel
	Code        string     `gorm:"type:varchar(20);uniqueIndex;not null" json:"code" validate:"required,max=20"`
	Name        string     `gorm:"type:varchar(200);not null" json:"name" validate:"required,max=200"`
	CategoryID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"category_id" validate:"uuid_required"`
	Category    *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty" validate:"-"`
	Description string     `gorm:"type:text" json:"description"`
	Unit        string     `gorm:"type:varchar(10);not null" json:"unit" validate:"required,max=10"`
	Price       int64      `gorm:"not null" json:"price" validate:"gte=0"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	Inventory   *Inventory `gorm:"foreignKey:ProductID" json:"inventory,omitempty" validate:"-"`
}
