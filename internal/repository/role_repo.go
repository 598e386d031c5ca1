package repository

import (
	"context"
	"errors"

	"go-warehouse-inventory/internal/model"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindAll(ctx context.Context) ([]model.Role, error)
	FindByID(ctx context.Context, id uint) (*model.Role, error)
	FindByCode(ctx context.Context, code string) (*model.Role, error)
	SeedDefaults(ctx context.Context) error
}

type roleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) FindAll(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := r.db.WithContext(ctx).Preload("Privileges").Order("id ASC").Find(&roles).Error
	return roles, err
}

func (r *roleRepo) FindByID(ctx context.Context, id uint) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).Preload("Privileges").First(&role, id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepo) FindByCode(ctx context.Context, code string) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).Preload("Privileges").Where("code = ?", code).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// SeedDefaults creates missing roles and (re)binds their privilege sets.
// Privileges must already be seeded.
func (r *roleRepo) SeedDefaults(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var all []model.Privilege
		if err := tx.Find(&all).Error; err != nil {
			return err
		}

		for _, def := range model.DefaultRoles {
			var role model.Role
			err := tx.Where("code = ?", def.Code).First(&role).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				role = model.Role{Code: def.Code, Name: def.Name, Description: def.Description}
				err = tx.Create(&role).Error
			}
			if err != nil {
				return err
			}

			privileges := all
			if def.Code != model.RoleAdmin {
				privileges = pickPrivileges(all, model.RolePrivileges[def.Code])
			}
			if err := tx.Model(&role).Association("Privileges").Replace(privileges); err != nil {
				return err
			}
		}
		return nil
	})
}

func pickPrivileges(all []model.Privilege, codes []string) []model.Privilege {
	wanted := make(map[string]bool, len(codes))
	for _, c := range codes {
		wanted[c] = true
	}
	picked := make([]model.Privilege, 0, len(codes))
	for _, p := range all {
		if wanted[p.Code] {
			picked = append(picked, p)
		}
	}
	return picked
}
