package repository

import (
	"context"
	"sort"
	"time"

	"go-warehouse-inventory/internal/model"

	"gorm.io/gorm"
)

type DashboardRepository interface {
	GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
	GetFinancialSummary(ctx context.Context, startDate, endDate time.Time) (int64, int64, error)
	CountOrdersByStatus(ctx context.Context) (map[model.OrderStatus]int64, error)
}

// StockMovementData is one day of the movement chart.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

type DashboardStats struct {
	TotalProducts  int64 `json:"total_products"`
	LowStockCount  int64 `json:"low_stock_count"`
	TotalValuation int64 `json:"total_valuation"`
	TotalOrders    int64 `json:"total_orders"`
	PendingOrders  int64 `json:"pending_orders"`
	DraftStockIns  int64 `json:"draft_stock_ins"`
}

type dashboardRepo struct {
	db *gorm.DB
}

func NewDashboardRepo(db *gorm.DB) DashboardRepository {
	return &dashboardRepo{db}
}

type dailyTotal struct {
	Date  string
	Total int
}

func (r *dashboardRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error) {
	db := r.db.WithContext(ctx)

	var ins []dailyTotal
	err := db.Model(&model.StockIn{}).
		Select("DATE(created_at) AS date, COALESCE(SUM(quantity), 0) AS total").
		Where("approved_by IS NOT NULL AND is_disabled = ?", false).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Scan(&ins).Error
	if err != nil {
		return nil, err
	}

	var outs []dailyTotal
	err = db.Model(&model.StockOut{}).
		Select("DATE(created_at) AS date, COALESCE(SUM(quantity), 0) AS total").
		Where("is_disabled = ?", false).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Scan(&outs).Error
	if err != nil {
		return nil, err
	}

	byDate := map[string]*StockMovementData{}
	row := func(date string) *StockMovementData {
		// postgres hands DATE back as a timestamp string
		if len(date) > 10 {
			date = date[:10]
		}
		d, ok := byDate[date]
		if !ok {
			d = &StockMovementData{Date: date}
			byDate[date] = d
		}
		return d
	}
	for _, in := range ins {
		row(in.Date).Inbound += in.Total
	}
	for _, out := range outs {
		row(out.Date).Outbound += out.Total
	}

	results := make([]StockMovementData, 0, len(byDate))
	for _, d := range byDate {
		results = append(results, *d)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Date < results[j].Date })
	return results, nil
}

func (r *dashboardRepo) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Product{}).Where("is_active = ?", true).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}

	err := db.Model(&model.Inventory{}).
		Joins("JOIN products ON products.id = inventories.product_id AND products.deleted_at IS NULL").
		Where("products.is_active = ? AND inventories.quantity <= inventories.min_quantity", true).
		Count(&stats.LowStockCount).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&model.Inventory{}).
		Joins("JOIN products ON products.id = inventories.product_id AND products.deleted_at IS NULL").
		Select("COALESCE(SUM(inventories.quantity * products.price), 0)").
		Scan(&stats.TotalValuation).Error
	if err != nil {
		return nil, err
	}

	if err := db.Model(&model.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Order{}).Where("status = ?", model.OrderPending).Count(&stats.PendingOrders).Error; err != nil {
		return nil, err
	}

	err = db.Model(&model.StockIn{}).
		Where("approved_by IS NULL AND is_disabled = ?", false).
		Count(&stats.DraftStockIns).Error
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// GetFinancialSummary returns revenue from delivered orders and the cost of confirmed stock-ins.
func (r *dashboardRepo) GetFinancialSummary(ctx context.Context, startDate, endDate time.Time) (int64, int64, error) {
	var revenue int64
	var cost int64
	db := r.db.WithContext(ctx)

	err := db.Model(&model.Order{}).
		Where("status = ? AND created_at BETWEEN ? AND ?", model.OrderDelivered, startDate, endDate).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&revenue).Error
	if err != nil {
		return 0, 0, err
	}

	err = db.Model(&model.StockIn{}).
		Where("approved_by IS NOT NULL AND is_disabled = ?", false).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Select("COALESCE(SUM(total_cost), 0)").
		Scan(&cost).Error
	if err != nil {
		return 0, 0, err
	}

	return revenue, cost, nil
}

func (r *dashboardRepo) CountOrdersByStatus(ctx context.Context) (map[model.OrderStatus]int64, error) {
	var rows []struct {
		Status model.OrderStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[model.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
