package model

// Role represents user roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

const (
	RoleAdmin     = "ADMIN"
	RoleWarehouse = "WAREHOUSE"
	RoleSales     = "SALES"
)

var DefaultRoles = []Role{
	{Code: RoleAdmin, Name: "Administrator", Description: "Full system access with all privileges"},
	{Code: RoleWarehouse, Name: "Warehouse", Description: "Stock movements and order fulfilment"},
	{Code: RoleSales, Name: "Sales", Description: "Order entry and tracking"},
}

// RolePrivileges maps each non-admin role to its seeded privilege codes. ADMIN gets everything.
var RolePrivileges = map[string][]string{
	RoleWarehouse: {
		PrivCatalogView, PrivInventoryView, PrivDashboardView,
		PrivStockInView, PrivStockInCreate,
		PrivStockOutView, PrivStockOutCreate,
		PrivOrderView, PrivOrderConfirm, PrivOrderUpdate,
	},
	RoleSales: {
		PrivCatalogView, PrivInventoryView, PrivDashboardView,
		PrivOrderView, PrivOrderCreate, PrivOrderUpdate,
	},
}
