package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel handles ID (UUID) and standard Audit Trails
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CreatedBy string `gorm:"type:varchar(255)" json:"created_by"`
	UpdatedBy string `gorm:"type:varchar(255)" json:"updated_by"`
}

func (base *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	return nil
}

// Actor is the opaque identity attached to approvals and audit columns.
// Elevated is decided by the auth layer; the core never inspects roles.
type Actor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Elevated bool   `json:"elevated"`
}

// SystemActor is used by seeders and the CLI.
var SystemActor = Actor{ID: "system", Name: "System", Elevated: true}
