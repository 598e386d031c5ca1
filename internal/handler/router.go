package handler

import (
	"go-warehouse-inventory/internal/middleware"
	"go-warehouse-inventory/internal/model"
	"go-warehouse-inventory/internal/service"
	"go-warehouse-inventory/internal/ws"

	"github.com/gofiber/fiber/v2"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Auth      service.AuthService
	Users     service.UserService
	Catalog   service.CatalogService
	Inventory service.InventoryService
	Stock     service.StockService
	Orders    service.OrderService
	Dashboard service.DashboardService
	Audit     service.AuditService
	Hub       *ws.Hub
}

// ErrorHandler answers unmapped errors with 500 and fiber errors with their own code.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal Server Error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		msg = e.Message
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

// Register mounts every route under /api/v1 and the stock feed under /ws.
func Register(app *fiber.App, s Services) {
	authHandler := NewAuthHandler(s.Auth)
	userHandler := NewUserHandler(s.Users)
	roleHandler := NewRoleHandler(s.Users)
	catalogHandler := NewCatalogHandler(s.Catalog)
	invHandler := NewInventoryHandler(s.Inventory)
	stockHandler := NewStockHandler(s.Stock)
	orderHandler := NewOrderHandler(s.Orders)
	dashHandler := NewDashboardHandler(s.Dashboard, s.Audit)

	can := middleware.RequirePrivilege

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(s.Auth))
	protected.Get("/auth/me", authHandler.Me)

	// Dashboard
	protected.Get("/dashboard", can(model.PrivDashboardView), dashHandler.GetDashboard)
	protected.Get("/dashboard/stock-movement", can(model.PrivDashboardView), dashHandler.GetStockMovement)
	protected.Get("/dashboard/financial", can(model.PrivDashboardView), dashHandler.GetFinancialSummary)
	protected.Get("/dashboard/forecast", can(model.PrivDashboardView), dashHandler.GetForecasts)
	protected.Get("/dashboard/recount", can(model.PrivInventoryManage), dashHandler.Recount)

	// Catalog
	protected.Get("/products", can(model.PrivCatalogView), catalogHandler.GetProducts)
	protected.Get("/products/:id", can(model.PrivCatalogView), catalogHandler.GetProduct)
	protected.Post("/products", can(model.PrivCatalogManage), catalogHandler.CreateProduct)
	protected.Put("/products/:id", can(model.PrivCatalogManage), catalogHandler.UpdateProduct)
	protected.Patch("/products/:id/active", can(model.PrivCatalogManage), catalogHandler.SetProductActive)
	protected.Delete("/products/:id", can(model.PrivCatalogManage), catalogHandler.DeleteProduct)

	protected.Get("/categories", can(model.PrivCatalogView), catalogHandler.GetCategories)
	protected.Get("/categories/:id", can(model.PrivCatalogView), catalogHandler.GetCategory)
	protected.Post("/categories", can(model.PrivCatalogManage), catalogHandler.CreateCategory)
	protected.Put("/categories/:id", can(model.PrivCatalogManage), catalogHandler.UpdateCategory)
	protected.Delete("/categories/:id", can(model.PrivCatalogManage), catalogHandler.DeleteCategory)

	protected.Get("/suppliers", can(model.PrivCatalogView), catalogHandler.GetSuppliers)
	protected.Get("/suppliers/:id", can(model.PrivCatalogView), catalogHandler.GetSupplier)
	protected.Post("/suppliers", can(model.PrivCatalogManage), catalogHandler.CreateSupplier)
	protected.Put("/suppliers/:id", can(model.PrivCatalogManage), catalogHandler.UpdateSupplier)
	protected.Delete("/suppliers/:id", can(model.PrivCatalogManage), catalogHandler.DeleteSupplier)

	// Inventory ledger
	protected.Get("/inventory", can(model.PrivInventoryView), invHandler.GetInventory)
	protected.Get("/inventory/:id", can(model.PrivInventoryView), invHandler.GetProductInventory)
	protected.Put("/inventory/:id/thresholds", can(model.PrivInventoryManage), invHandler.UpdateThresholds)

	// Stock movements
	protected.Get("/stock-ins", can(model.PrivStockInView), stockHandler.GetStockIns)
	protected.Get("/stock-ins/:id", can(model.PrivStockInView), stockHandler.GetStockIn)
	protected.Post("/stock-ins", can(model.PrivStockInCreate), stockHandler.CreateStockIn)
	protected.Post("/stock-ins/:id/confirm", can(model.PrivStockInConfirm), stockHandler.ConfirmStockIn)
	protected.Post("/stock-ins/:id/cancel", can(model.PrivStockInCancel), stockHandler.CancelStockIn)

	protected.Get("/stock-outs", can(model.PrivStockOutView), stockHandler.GetStockOuts)
	protected.Get("/stock-outs/:id", can(model.PrivStockOutView), stockHandler.GetStockOut)
	protected.Post("/stock-outs", can(model.PrivStockOutCreate), stockHandler.CreateStockOut)
	protected.Post("/stock-outs/:id/approve", can(model.PrivStockOutApprove), stockHandler.ConfirmStockOut)
	protected.Post("/stock-outs/:id/cancel", can(model.PrivStockOutCancel), stockHandler.CancelStockOut)

	// Orders
	protected.Get("/orders", can(model.PrivOrderView), orderHandler.GetOrders)
	protected.Get("/orders/:id", can(model.PrivOrderView), orderHandler.GetOrder)
	protected.Post("/orders", can(model.PrivOrderCreate), orderHandler.CreateOrder)
	protected.Put("/orders/:id", can(model.PrivOrderUpdate), orderHandler.UpdateOrder)
	protected.Post("/orders/:id/confirm", can(model.PrivOrderConfirm), orderHandler.ConfirmOrder)
	protected.Post("/orders/:id/cancel", can(model.PrivOrderCancel), orderHandler.CancelOrder)
	protected.Patch("/orders/:id/status", middleware.RequireAnyPrivilege(model.PrivOrderConfirm, model.PrivOrderCancel), orderHandler.UpdateStatus)

	// User management
	protected.Get("/users", can(model.PrivUserView), userHandler.GetUsers)
	protected.Get("/users/:id", can(model.PrivUserView), userHandler.GetUser)
	protected.Post("/users", can(model.PrivUserCreate), userHandler.CreateUser)
	protected.Put("/users/:id", can(model.PrivUserUpdate), userHandler.UpdateUser)
	protected.Delete("/users/:id", can(model.PrivUserDelete), userHandler.DeleteUser)
	protected.Get("/roles", can(model.PrivUserView), roleHandler.GetRoles)

	// WebSocket
	if s.Hub != nil {
		app.Use("/ws", upgradeOnly)
		app.Get("/ws", StockFeed(s.Hub))
	}
}
