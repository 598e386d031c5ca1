package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-warehouse-inventory/config"
	"go-warehouse-inventory/internal/forecast"
	"go-warehouse-inventory/internal/handler"
	"go-warehouse-inventory/internal/repository"
	"go-warehouse-inventory/internal/seed"
	"go-warehouse-inventory/internal/service"
	"go-warehouse-inventory/internal/ws"
	"go-warehouse-inventory/pkg/database"
	"go-warehouse-inventory/pkg/jwt"
	"go-warehouse-inventory/pkg/keylock"
	"go-warehouse-inventory/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	// 1. Load config (.env then environment)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.Logger, cfg.Server.IsDevelopment())
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	// 2. Setup Database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		zl.Fatal("connect database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zl.Fatal("migrate", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Seed default privileges, roles, and admin user
	if err := seed.Run(ctx, db, cfg.Seed, zl); err != nil {
		zl.Fatal("seed", zap.Error(err))
	}

	// 4. Setup WebSocket Hub
	hub := ws.NewHub(zl)
	go hub.Run(ctx)

	// 5. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	productRepo := repository.NewProductRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	inventoryRepo := repository.NewInventoryRepo(db)
	stockRepo := repository.NewStockRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	dashboardRepo := repository.NewDashboardRepo(db)

	ledger := service.NewLedger(db, inventoryRepo, keylock.New(), zl)
	predictor := forecast.NewMovingAverage(stockRepo, cfg.Forecast.WindowDays)

	services := handler.Services{
		Auth:      service.NewAuthService(userRepo, jwt.NewManager(cfg.JWT), zl),
		Users:     service.NewUserService(userRepo, roleRepo, zl),
		Catalog:   service.NewCatalogService(db, ledger, productRepo, categoryRepo, supplierRepo, inventoryRepo, hub, zl),
		Inventory: ledger,
		Stock:     service.NewStockService(ledger, stockRepo, productRepo, supplierRepo, orderRepo, hub, zl),
		Orders:    service.NewOrderService(db, ledger, orderRepo, productRepo, inventoryRepo, stockRepo, hub, zl),
		Dashboard: service.NewDashboardService(dashboardRepo, orderRepo, inventoryRepo, predictor, zl),
		Audit:     service.NewAuditService(db, inventoryRepo, stockRepo),
		Hub:       hub,
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:      cfg.Server.AppName,
		ErrorHandler: handler.ErrorHandler,
	})

	// Middleware
	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New())        // CORS

	// 7. Routes
	handler.Register(app, services)

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			zl.Panic("listen", zap.Error(err))
		}
	}()
	zl.Info("server started", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.AppEnv))

	<-ctx.Done()

	zl.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		zl.Fatal("server forced to shutdown", zap.Error(err))
	}
	zl.Info("server exited")
}
