package model

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User represents an authenticated user in the system
type User struct {
	BaseModel
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password     string `gorm:"type:varchar(255);not null" json:"-"`
	FullName     string `gorm:"type:varchar(255)" json:"full_name" validate:"required"`
	Phone        string `gorm:"type:varchar(20)" json:"phone"`
	RoleID       *uint  `gorm:"index" json:"role_id"`
	Role         *Role  `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	IsActive     bool   `gorm:"not null;default:true" json:"is_active"`
	TokenVersion string `gorm:"type:varchar(255);default:''" json:"-"` // single session enforcement
}

func (u *User) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// PrivilegeCodes returns the codes granted by the user's role.
func (u *User) PrivilegeCodes() []string {
	if u.Role == nil {
		return []string{}
	}
	codes := make([]string, len(u.Role.Privileges))
	for i, p := range u.Role.Privileges {
		codes[i] = p.Code
	}
	return codes
}

func (u *User) HasPrivilege(code string) bool {
	for _, c := range u.PrivilegeCodes() {
		if c == code {
			return true
		}
	}
	return false
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	Phone      string    `json:"phone"`
	RoleCode   string    `json:"role_code"`
	IsActive   bool      `json:"is_active"`
	Privileges []string  `json:"privileges"`
}

func (u *User) ToResponse() UserResponse {
	resp := UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		Phone:      u.Phone,
		IsActive:   u.IsActive,
		Privileges: u.PrivilegeCodes(),
	}
	if u.Role != nil {
		resp.RoleCode = u.Role.Code
	}
	return resp
}
