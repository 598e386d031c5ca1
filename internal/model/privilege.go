package model

// Privilege represents a permission granted through a role
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "stock_in:confirm"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivUserView   = "user:view"
	PrivUserCreate = "user:create"
	PrivUserUpdate = "user:update"
	PrivUserDelete = "user:delete"

	PrivCatalogView   = "catalog:view"
	PrivCatalogManage = "catalog:manage"

	PrivInventoryView   = "inventory:view"
	PrivInventoryManage = "inventory:manage"

	PrivStockInView    = "stock_in:view"
	PrivStockInCreate  = "stock_in:create"
	PrivStockInConfirm = "stock_in:confirm"
	PrivStockInCancel  = "stock_in:cancel"

	PrivStockOutView    = "stock_out:view"
	PrivStockOutCreate  = "stock_out:create"
	PrivStockOutApprove = "stock_out:approve" // also marks the actor as elevated
	PrivStockOutCancel  = "stock_out:cancel"

	PrivOrderView    = "order:view"
	PrivOrderCreate  = "order:create"
	PrivOrderUpdate  = "order:update"
	PrivOrderConfirm = "order:confirm"
	PrivOrderCancel  = "order:cancel"

	PrivDashboardView = "dashboard:view"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	{Code: PrivUserView, Name: "View User"},
	{Code: PrivUserCreate, Name: "Create User"},
	{Code: PrivUserUpdate, Name: "Update User"},
	{Code: PrivUserDelete, Name: "Delete User"},
	{Code: PrivCatalogView, Name: "View Catalog"},
	{Code: PrivCatalogManage, Name: "Manage Products, Categories and Suppliers"},
	{Code: PrivInventoryView, Name: "View Inventory"},
	{Code: PrivInventoryManage, Name: "Manage Inventory Thresholds"},
	{Code: PrivStockInView, Name: "View Stock In"},
	{Code: PrivStockInCreate, Name: "Create Stock In"},
	{Code: PrivStockInConfirm, Name: "Confirm Stock In"},
	{Code: PrivStockInCancel, Name: "Cancel Stock In"},
	{Code: PrivStockOutView, Name: "View Stock Out"},
	{Code: PrivStockOutCreate, Name: "Create Stock Out"},
	{Code: PrivStockOutApprove, Name: "Approve Stock Out"},
	{Code: PrivStockOutCancel, Name: "Cancel Stock Out"},
	{Code: PrivOrderView, Name: "View Order"},
	{Code: PrivOrderCreate, Name: "Create Order"},
	{Code: PrivOrderUpdate, Name: "Update Order"},
	{Code: PrivOrderConfirm, Name: "Confirm Order"},
	{Code: PrivOrderCancel, Name: "Cancel Order"},
	{Code: PrivDashboardView, Name: "View Dashboard"},
}
