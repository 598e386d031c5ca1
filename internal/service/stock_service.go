package service

import (
	"context"
	"fmt"
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

type CreateStockInRequest struct {
	ProductID  uuid.UUID `json:"product_id" validate:"uuid_required"`
	SupplierID uuid.UUID `json:"supplier_id" validate:"uuid_required"`
	Quantity   int       `json:"quantity" validate:"gt=0"`
	UnitPrice  int64     `json:"unit_price" validate:"gte=0"`
	Note       string    `json:"note"`
}

type CreateStockOutRequest struct {
	ProductID uuid.UUID          `json:"product_id" validate:"uuid_required"`
	Quantity  int                `json:"quantity" validate:"gt=0"`
	Type      model.StockOutType `json:"type" validate:"required"`
	Reason    string             `json:"reason" validate:"max=200"`
	Note      string             `json:"note"`
}

// StockInDetail is the detail/print view of a stock-in.
type StockInDetail struct {
	*model.StockIn
	Status      model.MovementStatus `json:"status"`
	OldQuantity int                  `json:"old_quantity"`
}

// StockOutDetail is the detail/print view of a stock-out.
type StockOutDetail struct {
	*model.StockOut
	OldQuantity int `json:"old_quantity"`
}

type StockService interface {
	CreateStockIn(ctx context.Context, req *CreateStockInRequest, actor model.Actor) (*model.StockIn, error)
	ConfirmStockIn(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.StockIn, error)
	CancelStockIn(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.StockIn, error)
	GetStockIn(ctx context.Context, id uuid.UUID) (*StockInDetail, error)
	ListStockIns(ctx context.Context, f repository.StockInFilter) ([]model.StockIn, error)

	CreateStockOut(ctx context.Context, req *CreateStockOutRequest, actor model.Actor) (*model.StockOut, error)
	ConfirmStockOut(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.StockOut, error)
	CancelStockOut(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.StockOut, error)
	GetStockOut(ctx context.Context, id uuid.UUID) (*StockOutDetail, error)
	ListStockOuts(ctx context.Context, f repository.StockOutFilter) ([]model.StockOut, error)
}

type stockService struct {
	ledger       *Ledger
	stockRepo    repository.StockRepository
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
	orderRepo    repository.OrderRepository
	notifier     Notifier
	log          *zap.Logger
	now          func() time.Time
}

func NewStockService(
	ledger *Ledger,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
	orderRepo repository.OrderRepository,
	notifier Notifier,
	log *zap.Logger,
) StockService {
	return &stockService{
		ledger:       ledger,
		stockRepo:    stockRepo,
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		orderRepo:    orderRepo,
		notifier:     notifier,
		log:          log.Named("stock"),
		now:          time.Now,
	}
}

func (s *stockService) CreateStockIn(ctx context.Context, req *CreateStockInRequest, actor model.Actor) (*model.StockIn, error) {
	if err := validator.Validate(req); err != nil {
		return nil, validationErr(err)
	}

	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, lookupErr(err, "product")
	}
	if !product.IsActive {
		return nil, errors.Wrapf(ErrInactiveProduct, "product %s", product.Code)
	}

	supplier, err := s.supplierRepo.FindByID(ctx, req.SupplierID)
	if err != nil {
		return nil, lookupErr(err, "supplier")
	}
	if !supplier.IsActive {
		return nil, errors.Wrapf(ErrInactiveSupplier, "supplier %s", supplier.Name)
	}

	in := &model.StockIn{
		ProductID:  req.ProductID,
		SupplierID: req.SupplierID,
		Quantity:   req.Quantity,
		UnitPrice:  req.UnitPrice,
		Note:       req.Note,
	}
	in.CreatedBy = actor.ID
	in.UpdatedBy = actor.ID

	err = s.ledger.locked(ctx, []uuid.UUID{in.ProductID}, nil, func(tx *gorm.DB) error {
		if err := productsExist(tx, s.productRepo, in.ProductID); err != nil {
			return err
		}
		return errors.Wrap(s.stockRepo.CreateIn(tx, in), "create stock in")
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("stock in drafted",
		zap.Stringer("stock_in_id", in.ID),
		zap.Stringer("product_id", in.ProductID),
		zap.Int("quantity", in.Quantity),
		zap.String("actor", actor.ID))
	return in, nil
}

func (s *stockService) ConfirmStockIn(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.StockIn, error) {
	current, err := s.stockRepo.FindInByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "stock in")
	}
	if current.IsConfirmed() || current.IsDisabled {
		return nil, errors.Wrapf(ErrAlreadyProcessed, "stock in %s is %s", id, current.Status())
	}

	var in *model.StockIn
	var adj Adjustment
	err = s.ledger.locked(ctx, []uuid.UUID{current.ProductID}, nil, func(tx *gorm.DB) error {
		var err error
		in, err = s.stockRepo.LockInByID(tx, id)
		if err != nil {
			return lookupErr(err, "stock in")
		}
		// re-check under the lock, another confirm may have won
		if in.IsConfirmed() || in.IsDisabled {
			return errors.Wrapf(ErrAlreadyProcessed, "stock in %s is %s", id, in.Status())
		}

		adj, err = s.ledger.adjust(tx, in.ProductID, in.Quantity)
		if err != nil {
			return err
		}

		now := s.now()
		in.ApprovedBy = &actor.ID
		in.ApprovedAt = &now
		in.UpdatedQuantity = adj.New
		in.UpdatedBy = actor.ID
		return errors.Wrap(s.stockRepo.SaveIn(tx, in), "save stock in")
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("stock in confirmed",
		zap.Stringer("stock_in_id", id),
		zap.Stringer("product_id", in.ProductID),
		zap.Int("delta", in.Quantity),
		zap.Int("quantity", adj.New),
		zap.String("actor", actor.ID))
	publishStock(s.notifier, "stock_in_confirmed", adj, id.String(), actor,
		fmt.Sprintf("%s confirmed stock in of %d", actor.Name, in.Quantity))
	return in, nil
}

func (s *stockService) CancelStockIn(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.StockIn, error) {
	current, err := s.stockRepo.FindInByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "stock in")
	}
	if current.IsDisabled {
		return nil, errors.Wrapf(ErrAlreadyCancelled, "stock in %s", id)
	}

	var in *model.StockIn
	var adj *Adjustment
	err = s.ledger.locked(ctx, []uuid.UUID{current.ProductID}, nil, func(tx *gorm.DB) error {
		var err error
		in, err = s.stockRepo.LockInByID(tx, id)
		if err != nil {
			return lookupErr(err, "stock in")
		}
		if in.IsDisabled {
			return errors.Wrapf(ErrAlreadyCancelled, "stock in %s", id)
		}

		if in.IsConfirmed() {
			a, err := s.ledger.adjust(tx, in.ProductID, -in.Quantity)
			if errors.Is(err, ErrInsufficientStock) {
				return errors.Wrapf(ErrReversalConflict, "stock in %s: %v", id, err)
			}
			if err != nil {
				return err
			}
			adj = &a
		}

		in.IsDisabled = true
		in.UpdatedBy = actor.ID
		return errors.Wrap(s.stockRepo.SaveIn(tx, in), "save stock in")
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("stock in cancelled",
		zap.Stringer("stock_in_id", id),
		zap.Stringer("product_id", in.ProductID),
		zap.Bool("reversed", adj != nil),
		zap.String("actor", actor.ID))
	if adj != nil {
		publishStock(s.notifier, "stock_in_cancelled", *adj, id.String(), actor,
			fmt.Sprintf("%s cancelled stock in of %d", actor.Name, in.Quantity))
	}
	return in, nil
}

func (s *stockService) GetStockIn(ctx context.Context, id uuid.UUID) (*StockInDetail, error) {
	in, err := s.stockRepo.FindInByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "stock in")
	}
	return &StockInDetail{StockIn: in, Status: in.Status(), OldQuantity: in.OldQuantity()}, nil
}

func (s *stockService) ListStockIns(ctx context.Context, f repository.StockInFilter) ([]model.StockIn, error) {
	ins, err := s.stockRepo.ListIns(ctx, f)
	return ins, errors.Wrap(err, "list stock ins")
}

func (s *stockService) CreateStockOut(ctx context.Context, req *CreateStockOutRequest, actor model.Actor) (*model.StockOut, error) {
	if err := validator.Validate(req); err != nil {
		return nil, validationErr(err)
	}
	if !req.Type.Valid() {
		return nil, errors.Wrapf(ErrValidation, "unknown stock out type %q", req.Type)
	}
	if req.Type == model.StockOutOrder {
		return nil, errors.Wrap(ErrValidation, "order stock outs are created by confirming the order")
	}

	if _, err := s.productRepo.FindByID(ctx, req.ProductID); err != nil {
		return nil, lookupErr(err, "product")
	}

	out := &model.StockOut{
		ProductID: req.ProductID,
		Type:      req.Type,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
		Note:      req.Note,
	}
	if req.Type.NeedsElevatedApproval() && actor.Elevated {
		now := s.now()
		out.ApprovedBy = &actor.ID
		out.ApprovedAt = &now
	}

	var adj Adjustment
	err := s.ledger.locked(ctx, []uuid.UUID{req.ProductID}, nil, func(tx *gorm.DB) error {
		if err := productsExist(tx, s.productRepo, req.ProductID); err != nil {
			return err
		}
		var err error
		adj, err = recordStockOut(tx, s.ledger, s.stockRepo, out, actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("stock out created",
		zap.Stringer("stock_out_id", out.ID),
		zap.Stringer("product_id", out.ProductID),
		zap.String("type", string(out.Type)),
		zap.Int("delta", -out.Quantity),
		zap.Int("quantity", adj.New),
		zap.Bool("approved", out.IsApproved()),
		zap.String("actor", actor.ID))
	publishStock(s.notifier, "stock_out_created", adj, out.ID.String(), actor,
		fmt.Sprintf("%s removed %d (%s)", actor.Name, out.Quantity, out.Type))
	return out, nil
}

// recordStockOut decrements the ledger and persists out. It must run inside locked().
func recordStockOut(tx *gorm.DB, ledger *Ledger, stockRepo repository.StockRepository, out *model.StockOut, actor model.Actor) (Adjustment, error) {
	adj, err := ledger.adjust(tx, out.ProductID, -out.Quantity)
	if err != nil {
		return adj, err
	}
	out.UpdatedQuantity = adj.New
	out.CreatedBy = actor.ID
	out.UpdatedBy = actor.ID
	if err := stockRepo.CreateOut(tx, out); err != nil {
		return adj, errors.Wrap(err, "create stock out")
	}
	return adj, nil
}

func (s *stockService) ConfirmStockOut(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.StockOut, error) {
	current, err := s.stockRepo.FindOutByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "stock out")
	}

	var out *model.StockOut
	err = s.ledger.locked(ctx, []uuid.UUID{current.ProductID}, nil, func(tx *gorm.DB) error {
		var err error
		out, err = s.stockRepo.LockOutByID(tx, id)
		if err != nil {
			return lookupErr(err, "stock out")
		}
		if out.IsApproved() || out.IsDisabled {
			return errors.Wrapf(ErrAlreadyProcessed, "stock out %s", id)
		}

		now := s.now()
		out.ApprovedBy = &actor.ID
		out.ApprovedAt = &now
		out.UpdatedBy = actor.ID
		return errors.Wrap(s.stockRepo.SaveOut(tx, out), "save stock out")
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("stock out approved", zap.Stringer("stock_out_id", id), zap.String("actor", actor.ID))
	return out, nil
}

func (s *stockService) CancelStockOut(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.StockOut, error) {
	current, err := s.stockRepo.FindOutByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "stock out")
	}

	var extra []string
	if current.OrderID != nil {
		extra = append(extra, orderKey(*current.OrderID))
	}

	var out *model.StockOut
	var adj Adjustment
	err = s.ledger.locked(ctx, []uuid.UUID{current.ProductID}, extra, func(tx *gorm.DB) error {
		var err error
		out, err = s.stockRepo.LockOutByID(tx, id)
		if err != nil {
			return lookupErr(err, "stock out")
		}

		if out.OrderID != nil {
			order, err := s.orderRepo.LockByID(tx, *out.OrderID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.Wrap(err, "load order")
			}
			if order != nil && order.Status != model.OrderCancelled {
				return errors.Wrapf(ErrOrderActive, "order %s is %s", order.OrderNo, order.Status)
			}
		}
		if out.IsDisabled {
			return errors.Wrapf(ErrAlreadyCancelled, "stock out %s", id)
		}

		adj, err = s.ledger.adjust(tx, out.ProductID, out.Quantity)
		if err != nil {
			return err
		}
		out.IsDisabled = true
		out.UpdatedBy = actor.ID
		return errors.Wrap(s.stockRepo.SaveOut(tx, out), "save stock out")
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("stock out cancelled",
		zap.Stringer("stock_out_id", id),
		zap.Stringer("product_id", out.ProductID),
		zap.Int("delta", out.Quantity),
		zap.Int("quantity", adj.New),
		zap.String("actor", actor.ID))
	publishStock(s.notifier, "stock_out_cancelled", adj, id.String(), actor,
		fmt.Sprintf("%s returned %d to stock", actor.Name, out.Quantity))
	return out, nil
}

func (s *stockService) GetStockOut(ctx context.Context, id uuid.UUID) (*StockOutDetail, error) {
	out, err := s.stockRepo.FindOutByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "stock out")
	}
	return &StockOutDetail{StockOut: out, OldQuantity: out.OldQuantity()}, nil
}

func (s *stockService) ListStockOuts(ctx context.Context, f repository.StockOutFilter) ([]model.StockOut, error) {
	outs, err := s.stockRepo.ListOuts(ctx, f)
	return outs, errors.Wrap(err, "list stock outs")
}

func publishStock(n Notifier, action string, adj Adjustment, ref string, actor model.Actor, msg string) {
	n.Publish(ws.Event{
		Type:    ws.TypeStockUpdate,
		Action:  action,
		Data:    adj.event(ref),
		User:    eventUser(actor),
		Message: msg,
	})
}
