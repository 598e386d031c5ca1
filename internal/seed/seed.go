// Package seed installs the default privileges, roles and admin account.
package seed

import (
	"context"

	"go-warehouse-inventory/config"
	"go-warehouse-inventory/internal/model"
	"go-warehouse-inventory/internal/repository"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Run is idempotent. The admin account is only created when its email is unused.
func Run(ctx context.Context, db *gorm.DB, cfg config.SeedConfig, log *zap.Logger) error {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	userRepo := repository.NewUserRepo(db)

	if err := privilegeRepo.SeedDefaults(ctx); err != nil {
		return errors.Wrap(err, "seed privileges")
	}
	if err := roleRepo.SeedDefaults(ctx); err != nil {
		return errors.Wrap(err, "seed roles")
	}

	_, err := userRepo.FindByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(err, "look up admin")
	}

	role, err := roleRepo.FindByCode(ctx, model.RoleAdmin)
	if err != nil {
		return errors.Wrap(err, "load admin role")
	}
	admin := &model.User{
		Email:    cfg.AdminEmail,
		FullName: "Administrator",
		RoleID:   &role.ID,
		IsActive: true,
	}
	admin.CreatedBy = model.SystemActor.ID
	admin.UpdatedBy = model.SystemActor.ID
	if err := admin.SetPassword(cfg.AdminPassword); err != nil {
		return errors.Wrap(err, "hash admin password")
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		return errors.Wrap(err, "create admin")
	}

	log.Info("admin account created", zap.String("email", admin.Email))
	return nil
}
