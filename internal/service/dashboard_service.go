package service

import (
	"context"
	"time"

	"go-warehouse-inventory/internal/forecast"
	"go-warehouse-inventory/internal/model"
	"go-warehouse-inventory/internal/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const dashboardListSize = 5

type ProductForecast struct {
	ProductID        uuid.UUID `json:"product_id"`
	ProductCode      string    `json:"product_code"`
	ProductName      string    `json:"product_name"`
	Quantity         int       `json:"quantity"`
	Forecast30d      int       `json:"forecast_30d"`
	SuggestedReorder int       `json:"suggested_reorder"`
}

type Dashboard struct {
	Stats          *repository.DashboardStats  `json:"stats"`
	OrdersByStatus map[model.OrderStatus]int64 `json:"orders_by_status"`
	RecentOrders   []model.Order               `json:"recent_orders"`
	LowStock       []model.InventoryResponse   `json:"low_stock"`
}

type FinancialSummary struct {
	Revenue int64 `json:"revenue"`
	Cost    int64 `json:"cost"`
	Net     int64 `json:"net"`
}

type DashboardService interface {
	GetDashboard(ctx context.Context) (*Dashboard, error)
	GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error)
	GetFinancialSummary(ctx context.Context, days int) (*FinancialSummary, error)
	GetForecasts(ctx context.Context) ([]ProductForecast, error)
}

type dashboardService struct {
	dashboardRepo repository.DashboardRepository
	orderRepo     repository.OrderRepository
	inventoryRepo repository.InventoryRepository
	predictor     forecast.Predictor
	log           *zap.Logger
	now           func() time.Time
}

func NewDashboardService(
	dashboardRepo repository.DashboardRepository,
	orderRepo repository.OrderRepository,
	inventoryRepo repository.InventoryRepository,
	predictor forecast.Predictor,
	log *zap.Logger,
) DashboardService {
	return &dashboardService{
		dashboardRepo: dashboardRepo,
		orderRepo:     orderRepo,
		inventoryRepo: inventoryRepo,
		predictor:     predictor,
		log:           log.Named("dashboard"),
		now:           time.Now,
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context) (*Dashboard, error) {
	stats, err := s.dashboardRepo.GetDashboardStats(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load stats")
	}
	byStatus, err := s.dashboardRepo.CountOrdersByStatus(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "count orders")
	}
	recent, err := s.orderRepo.FindAll(ctx, repository.OrderFilter{Limit: dashboardListSize})
	if err != nil {
		return nil, errors.Wrap(err, "load recent orders")
	}
	low, err := s.inventoryRepo.FindAll(ctx, repository.InventoryFilter{LowStockOnly: true, ActiveOnly: true})
	if err != nil {
		return nil, errors.Wrap(err, "load low stock")
	}
	if len(low) > dashboardListSize {
		low = low[:dashboardListSize]
	}

	lowStock := make([]model.InventoryResponse, len(low))
	for i := range low {
		lowStock[i] = low[i].ToResponse()
	}
	return &Dashboard{
		Stats:          stats,
		OrdersByStatus: byStatus,
		RecentOrders:   recent,
		LowStock:       lowStock,
	}, nil
}

func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error) {
	if days <= 0 {
		days = 7
	}
	endDate := s.now()
	startDate := endDate.AddDate(0, 0, -days)

	data, err := s.dashboardRepo.GetStockMovement(ctx, startDate, endDate)
	return data, errors.Wrap(err, "load stock movement")
}

func (s *dashboardService) GetFinancialSummary(ctx context.Context, days int) (*FinancialSummary, error) {
	if days <= 0 {
		days = 30
	}
	endDate := s.now()
	startDate := endDate.AddDate(0, 0, -days)

	revenue, cost, err := s.dashboardRepo.GetFinancialSummary(ctx, startDate, endDate)
	if err != nil {
		return nil, errors.Wrap(err, "load financial summary")
	}
	return &FinancialSummary{Revenue: revenue, Cost: cost, Net: revenue - cost}, nil
}

// GetForecasts returns a demand estimate for every active product. A failed
// estimate is logged and reported as zero.
func (s *dashboardService) GetForecasts(ctx context.Context) ([]ProductForecast, error) {
	items, err := s.inventoryRepo.FindAll(ctx, repository.InventoryFilter{ActiveOnly: true})
	if err != nil {
		return nil, errors.Wrap(err, "list inventory")
	}

	result := make([]ProductForecast, 0, len(items))
	for _, inv := range items {
		demand, err := s.predictor.PredictDemand(ctx, inv.ProductID)
		if err != nil {
			s.log.Warn("forecast failed", zap.Stringer("product_id", inv.ProductID), zap.Error(err))
			demand = 0
		}
		pf := ProductForecast{
			ProductID:        inv.ProductID,
			Quantity:         inv.Quantity,
			Forecast30d:      demand,
			SuggestedReorder: forecast.SuggestedReorder(demand, inv.Quantity),
		}
		if inv.Product != nil {
			pf.ProductCode = inv.Product.Code
			pf.ProductName = inv.Product.Name
		}
		result = append(result, pf)
	}
	return result, nil
}
