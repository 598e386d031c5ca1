package seed

import (
	"context"
	"testing"

	"go-warehouse-inventory/config"
	"go-warehouse-inventory/internal/model"
	"go-warehouse-inventory/internal/repository"
	"go-warehouse-inventory/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRunIsIdempotent(t *testing.T) {
	db, err := database.OpenMemory()
	require.NoError(t, err)
	ctx := context.Background()
	cfg := config.SeedConfig{AdminEmail: "admin@example.com", AdminPassword: "secret123"}

	require.NoError(t, Run(ctx, db, cfg, zaptest.NewLogger(t)))
	require.NoError(t, Run(ctx, db, cfg, zaptest.NewLogger(t)))

	roles, err := repository.NewRoleRepo(db).FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, roles, len(model.DefaultRoles))

	byCode := map[string]model.Role{}
	for _, r := range roles {
		byCode[r.Code] = r
	}
	assert.Len(t, byCode[model.RoleAdmin].Privileges, len(model.DefaultPrivileges))
	assert.Len(t, byCode[model.RoleSales].Privileges, len(model.RolePrivileges[model.RoleSales]))

	admin, err := repository.NewUserRepo(db).FindByEmail(ctx, cfg.AdminEmail)
	require.NoError(t, err)
	assert.True(t, admin.CheckPassword("secret123"))
	assert.True(t, admin.HasPrivilege(model.PrivStockOutApprove))

	users, err := repository.NewUserRepo(db).FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
