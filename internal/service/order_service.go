package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go-warehouse-inventory/internal/model"
	"go-warehouse-inventory/internal/repository"
	"go-warehouse-inventory/internal/ws"
	"go-warehouse-inventory/pkg/validator"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"gt=0"`
	// UnitPrice defaults to the product price when omitted.
	UnitPrice *int64 `json:"unit_price" validate:"omitempty,gte=0"`
}

type OrderRequest struct {
	CustomerName    string              `json:"customer_name" validate:"required,max=200"`
	CustomerEmail   string              `json:"customer_email" validate:"omitempty,email,max=50"`
	CustomerPhone   string              `json:"customer_phone" validate:"max=20"`
	CustomerAddress string              `json:"customer_address"`
	Note            string              `json:"note"`
	PaymentMethod   model.PaymentMethod `json:"payment_method" validate:"required,oneof=cash transfer cod"`
	Items           []OrderItemRequest  `json:"items" validate:"required,min=1,dive"`
}

// OrderDetail is an order with its reachable statuses and stock-outs.
type OrderDetail struct {
	*model.Order
	NextStatuses []model.OrderStatus `json:"next_statuses"`
	StockOuts    []model.StockOut    `json:"stock_outs"`
}

type OrderService interface {
	Create(ctx context.Context, req *OrderRequest, actor model.Actor) (*model.Order, error)
	Update(ctx context.Context, id uuid.UUID, req *OrderRequest, actor model.Actor) (*model.Order, error)
	Confirm(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.Order, error)
	Cancel(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next model.OrderStatus, actor model.Actor) (*model.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderDetail, error)
	List(ctx context.Context, f repository.OrderFilter) ([]model.Order, error)
}

// NewOrderNo returns ORD<yyyymmdd><6 upper hex>.
func NewOrderNo(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "ORD" + now.Format("20060102") + suffix
}

type orderService struct {
	db            *gorm.DB
	ledger        *Ledger
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	inventoryRepo repository.InventoryRepository
	stockRepo     repository.StockRepository
	notifier      Notifier
	log           *zap.Logger
	now           func() time.Time
	newOrderNo    func(time.Time) string
}

func NewOrderService(
	db *gorm.DB,
	ledger *Ledger,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	inventoryRepo repository.InventoryRepository,
	stockRepo repository.StockRepository,
	notifier Notifier,
	log *zap.Logger,
) OrderService {
	return &orderService{
		db:            db,
		ledger:        ledger,
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		stockRepo:     stockRepo,
		notifier:      notifier,
		log:           log.Named("order"),
		now:           time.Now,
		newOrderNo:    NewOrderNo,
	}
}

func (s *orderService) Create(ctx context.Context, req *OrderRequest, actor model.Actor) (*model.Order, error) {
	items, err := s.buildItems(ctx, req)
	if err != nil {
		return nil, err
	}

	orderNo, err := s.uniqueOrderNo(ctx)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		OrderNo:         orderNo,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		Note:            req.Note,
		PaymentMethod:   req.PaymentMethod,
		Status:          model.OrderPending,
		Items:           items,
	}
	order.CreatedBy = actor.ID
	order.UpdatedBy = actor.ID
	order.RecalculateTotal()

	productIDs := order.ProductIDs()
	err = s.ledger.locked(ctx, productIDs, nil, func(tx *gorm.DB) error {
		if err := productsExist(tx, s.productRepo, productIDs...); err != nil {
			return err
		}
		return errors.Wrap(s.orderRepo.Create(tx, order), "create order")
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.String("order_id", order.OrderNo),
		zap.Int("items", len(order.Items)),
		zap.Int64("total_amount", order.TotalAmount),
		zap.String("actor", actor.ID))
	s.publishOrder("order_created", order, actor)
	return order, nil
}

func (s *orderService) Update(ctx context.Context, id uuid.UUID, req *OrderRequest, actor model.Actor) (*model.Order, error) {
	items, err := s.buildItems(ctx, req)
	if err != nil {
		return nil, err
	}

	productIDs := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}

	var order *model.Order
	err = s.ledger.locked(ctx, productIDs, []string{orderKey(id)}, func(tx *gorm.DB) error {
		if err := productsExist(tx, s.productRepo, productIDs...); err != nil {
			return err
		}
		var err error
		order, err = s.orderRepo.LockByID(tx, id)
		if err != nil {
			return lookupErr(err, "order")
		}
		if order.Status != model.OrderPending {
			return errors.Wrapf(ErrAlreadyProcessed, "order %s is %s", order.OrderNo, order.Status)
		}

		order.CustomerName = req.CustomerName
		order.CustomerEmail = req.CustomerEmail
		order.CustomerPhone = req.CustomerPhone
		order.CustomerAddress = req.CustomerAddress
		order.Note = req.Note
		order.PaymentMethod = req.PaymentMethod
		order.UpdatedBy = actor.ID
		order.Items = items
		order.RecalculateTotal()

		if err := s.orderRepo.ReplaceItems(tx, order.ID, order.Items); err != nil {
			return errors.Wrap(err, "replace order items")
		}
		return errors.Wrap(s.orderRepo.UpdateDetails(tx, order), "update order")
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order updated",
		zap.String("order_id", order.OrderNo),
		zap.Int64("total_amount", order.TotalAmount),
		zap.String("actor", actor.ID))
	s.publishOrder("order_updated", order, actor)
	return order, nil
}

// Confirm creates one order stock-out per item and moves the order to processing.
// Either every item is decremented or nothing is.
func (s *orderService) Confirm(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.Order, error) {
	unlock := s.ledger.locks.Lock(orderKey(id))
	defer unlock()

	current, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "order")
	}
	if current.Status != model.OrderPending {
		return nil, errors.Wrapf(ErrAlreadyProcessed, "order %s is %s", current.OrderNo, current.Status)
	}

	var order *model.Order
	var adjustments []Adjustment
	err = s.ledger.locked(ctx, current.ProductIDs(), nil, func(tx *gorm.DB) error {
		var err error
		order, err = s.orderRepo.LockByID(tx, id)
		if err != nil {
			return lookupErr(err, "order")
		}
		if order.Status != model.OrderPending {
			return errors.Wrapf(ErrAlreadyProcessed, "order %s is %s", order.OrderNo, order.Status)
		}

		now := s.now()
		adjustments = adjustments[:0]
		// items come back ordered by product id, matching the row lock order
		for _, item := range order.Items {
			orderID := order.ID
			out := &model.StockOut{
				ProductID:  item.ProductID,
				OrderID:    &orderID,
				Type:       model.StockOutOrder,
				Quantity:   item.Quantity,
				Reason:     "Order " + order.OrderNo,
				ApprovedBy: &actor.ID,
				ApprovedAt: &now,
			}
			adj, err := recordStockOut(tx, s.ledger, s.stockRepo, out, actor)
			if err != nil {
				return errors.WithMessagef(err, "order %s", order.OrderNo)
			}
			adjustments = append(adjustments, adj)
		}

		order.Status = model.OrderProcessing
		order.UpdatedBy = actor.ID
		return errors.Wrap(s.orderRepo.UpdateStatus(tx, order.ID, order.Status, actor.ID), "update order status")
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order confirmed",
		zap.String("order_id", order.OrderNo),
		zap.Int("stock_outs", len(adjustments)),
		zap.String("actor", actor.ID))
	for _, adj := range adjustments {
		publishStock(s.notifier, "order_confirmed", adj, order.OrderNo, actor,
			fmt.Sprintf("%s confirmed order %s", actor.Name, order.OrderNo))
	}
	s.publishOrder("order_confirmed", order, actor)
	return order, nil
}

// Cancel disables the order's live stock-outs, returning their quantity once, and marks it cancelled.
func (s *orderService) Cancel(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.Order, error) {
	unlock := s.ledger.locks.Lock(orderKey(id))
	defer unlock()

	current, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "order")
	}
	if current.Status.IsTerminal() {
		return nil, errors.Wrapf(ErrTerminalState, "order %s is %s", current.OrderNo, current.Status)
	}

	outs, err := s.stockRepo.ListOuts(ctx, repository.StockOutFilter{OrderID: &id})
	if err != nil {
		return nil, errors.Wrap(err, "list order stock outs")
	}
	productIDs := make([]uuid.UUID, 0, len(outs))
	for _, out := range outs {
		if !out.IsDisabled {
			productIDs = append(productIDs, out.ProductID)
		}
	}

	var order *model.Order
	var adjustments []Adjustment
	err = s.ledger.locked(ctx, productIDs, nil, func(tx *gorm.DB) error {
		var err error
		order, err = s.orderRepo.LockByID(tx, id)
		if err != nil {
			return lookupErr(err, "order")
		}
		if order.Status.IsTerminal() {
			return errors.Wrapf(ErrTerminalState, "order %s is %s", order.OrderNo, order.Status)
		}

		active, err := s.stockRepo.LockActiveOutsByOrder(tx, id)
		if err != nil {
			return errors.Wrap(err, "lock order stock outs")
		}
		adjustments = adjustments[:0]
		for i := range active {
			out := &active[i]
			adj, err := s.ledger.adjust(tx, out.ProductID, out.Quantity)
			if err != nil {
				return err
			}
			out.IsDisabled = true
			out.UpdatedBy = actor.ID
			if err := s.stockRepo.SaveOut(tx, out); err != nil {
				return errors.Wrap(err, "save stock out")
			}
			adjustments = append(adjustments, adj)
		}

		order.Status = model.OrderCancelled
		order.UpdatedBy = actor.ID
		return errors.Wrap(s.orderRepo.UpdateStatus(tx, order.ID, order.Status, actor.ID), "update order status")
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order cancelled",
		zap.String("order_id", order.OrderNo),
		zap.Int("stock_outs_reversed", len(adjustments)),
		zap.String("actor", actor.ID))
	for _, adj := range adjustments {
		publishStock(s.notifier, "order_cancelled", adj, order.OrderNo, actor,
			fmt.Sprintf("%s cancelled order %s", actor.Name, order.OrderNo))
	}
	s.publishOrder("order_cancelled", order, actor)
	return order, nil
}

// UpdateStatus moves an order along the transition table. Leaving pending goes
// through Confirm and cancelling goes through Cancel; other steps only change status.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, next model.OrderStatus, actor model.Actor) (*model.Order, error) {
	if !next.Valid() {
		return nil, errors.Wrapf(ErrValidation, "unknown order status %q", next)
	}

	current, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "order")
	}
	if err := checkTransition(current, next); err != nil {
		return nil, err
	}

	switch {
	case next == model.OrderCancelled:
		return s.Cancel(ctx, id, actor)
	case current.Status == model.OrderPending && next == model.OrderProcessing:
		return s.Confirm(ctx, id, actor)
	}

	unlock := s.ledger.locks.Lock(orderKey(id))
	defer unlock()

	var order *model.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.orderRepo.LockByID(tx, id)
		if err != nil {
			return lookupErr(err, "order")
		}
		if err := checkTransition(order, next); err != nil {
			return err
		}
		order.Status = next
		order.UpdatedBy = actor.ID
		return errors.Wrap(s.orderRepo.UpdateStatus(tx, id, next, actor.ID), "update order status")
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order status changed",
		zap.String("order_id", order.OrderNo),
		zap.String("status", string(next)),
		zap.String("actor", actor.ID))
	s.publishOrder("order_status_changed", order, actor)
	return order, nil
}

func checkTransition(order *model.Order, next model.OrderStatus) error {
	if order.Status.IsTerminal() {
		return errors.Wrapf(ErrTerminalState, "order %s is %s", order.OrderNo, order.Status)
	}
	if !order.Status.CanTransitionTo(next) {
		return errors.Wrapf(ErrInvalidTransition, "order %s: %s -> %s", order.OrderNo, order.Status, next)
	}
	return nil
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*OrderDetail, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "order")
	}
	outs, err := s.stockRepo.ListOuts(ctx, repository.StockOutFilter{OrderID: &id})
	if err != nil {
		return nil, errors.Wrap(err, "list order stock outs")
	}
	return &OrderDetail{Order: order, NextStatuses: order.Status.NextStatuses(), StockOuts: outs}, nil
}

func (s *orderService) List(ctx context.Context, f repository.OrderFilter) ([]model.Order, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, errors.Wrapf(ErrValidation, "unknown order status %q", f.Status)
	}
	orders, err := s.orderRepo.FindAll(ctx, f)
	return orders, errors.Wrap(err, "list orders")
}

// buildItems validates the request and snapshots unit prices. The stock check is
// advisory: nothing is reserved until the order is confirmed.
func (s *orderService) buildItems(ctx context.Context, req *OrderRequest) ([]model.OrderItem, error) {
	if err := validator.Validate(req); err != nil {
		return nil, validationErr(err)
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	seen := make(map[uuid.UUID]bool, len(req.Items))
	for _, item := range req.Items {
		if seen[item.ProductID] {
			return nil, errors.Wrapf(ErrValidation, "product %s appears more than once", item.ProductID)
		}
		seen[item.ProductID] = true
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.FindByIDs(s.db.WithContext(ctx), ids)
	if err != nil {
		return nil, errors.Wrap(err, "load products")
	}
	byID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]model.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, errors.Wrapf(ErrNotFound, "product %s", line.ProductID)
		}
		if !product.IsActive {
			return nil, errors.Wrapf(ErrInactiveProduct, "product %s", product.Code)
		}

		available := 0
		inv, err := s.inventoryRepo.FindByProduct(ctx, product.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(err, "load inventory")
		}
		if inv != nil {
			available = inv.Quantity
		}
		if available < line.Quantity {
			return nil, errors.Wrapf(ErrInsufficientStock, "product %s: available %d, requested %d",
				product.Code, available, line.Quantity)
		}

		price := product.Price
		if line.UnitPrice != nil {
			price = *line.UnitPrice
		}
		items = append(items, model.OrderItem{
			ProductID: product.ID,
			Quantity:  line.Quantity,
			UnitPrice: price,
		})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ProductID.String() < items[j].ProductID.String() })
	return items, nil
}

func (s *orderService) uniqueOrderNo(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		no := s.newOrderNo(s.now())
		_, err := s.orderRepo.FindByOrderNo(ctx, no)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return no, nil
		}
		if err != nil {
			return "", errors.Wrap(err, "check order number")
		}
	}
	return "", errors.Wrap(ErrConflict, "could not generate a unique order number")
}

func (s *orderService) publishOrder(action string, order *model.Order, actor model.Actor) {
	s.notifier.Publish(ws.Event{
		Type:   ws.TypeOrderUpdate,
		Action: action,
		Data: map[string]interface{}{
			"id":           order.ID,
			"order_no":     order.OrderNo,
			"status":       order.Status,
			"total_amount": order.TotalAmount,
		},
		User:    eventUser(actor),
		Message: fmt.Sprintf("%s: order %s is %s", actor.Name, order.OrderNo, order.Status),
	})
}
