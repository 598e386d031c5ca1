package service

import (
	"context"

	"go-warehouse-inventory/internal/model"
	"go-warehouse-inventory/internal/repository"
	"go-warehouse-inventory/internal/ws"
	"go-warehouse-inventory/pkg/validator"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProductRequest struct {
	Code        string    `json:"code" validate:"required,max=20"`
	Name        string    `json:"name" validate:"required,max=200"`
	CategoryID  uuid.UUID `json:"category_id" validate:"uuid_required"`
	Description string    `json:"description"`
	Unit        string    `json:"unit" validate:"required,max=10"`
	Price       int64     `json:"price" validate:"gte=0"`
}

type CategoryRequest struct {
	Code        string `json:"code" validate:"required,max=20"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

type SupplierRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	ContactPerson string `json:"contact_person" validate:"max=100"`
	Phone         string `json:"phone" validate:"max=20"`
	Email         string `json:"email" validate:"omitempty,email,max=50"`
	Address       string `json:"address"`
	IsActive      *bool  `json:"is_active"`
}

// DeleteResult tells the caller whether a record was removed or only deactivated.
type DeleteResult struct {
	Deleted     bool `json:"deleted"`
	Deactivated bool `json:"deactivated"`
}

type CatalogService interface {
	CreateProduct(ctx context.Context, req *ProductRequest, actor model.Actor) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductRequest, actor model.Actor) (*model.Product, error)
	SetProductActive(ctx context.Context, id uuid.UUID, active bool, actor model.Actor) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID, actor model.Actor) (*DeleteResult, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListProducts(ctx context.Context, f repository.ProductFilter) ([]model.Product, error)

	CreateCategory(ctx context.Context, req *CategoryRequest, actor model.Actor) (*model.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req *CategoryRequest, actor model.Actor) (*model.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID, actor model.Actor) (*DeleteResult, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)

	CreateSupplier(ctx context.Context, req *SupplierRequest, actor model.Actor) (*model.Supplier, error)
	UpdateSupplier(ctx context.Context, id uuid.UUID, req *SupplierRequest, actor model.Actor) (*model.Supplier, error)
	DeleteSupplier(ctx context.Context, id uuid.UUID, actor model.Actor) (*DeleteResult, error)
	GetSupplier(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	ListSuppliers(ctx context.Context) ([]model.Supplier, error)
}

type catalogService struct {
	db            *gorm.DB
	ledger        *Ledger
	productRepo   repository.ProductRepository
	categoryRepo  repository.CategoryRepository
	supplierRepo  repository.SupplierRepository
	inventoryRepo repository.InventoryRepository
	notifier      Notifier
	log           *zap.Logger
}

func NewCatalogService(
	db *gorm.DB,
	ledger *Ledger,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
	inventoryRepo repository.InventoryRepository,
	notifier Notifier,
	log *zap.Logger,
) CatalogService {
	return &catalogService{
		db:            db,
		ledger:        ledger,
		productRepo:   productRepo,
		categoryRepo:  categoryRepo,
		supplierRepo:  supplierRepo,
		inventoryRepo: inventoryRepo,
		notifier:      notifier,
		log:           log.Named("catalog"),
	}
}

func (s *catalogService) CreateProduct(ctx context.Context, req *ProductRequest, actor model.Actor) (*model.Product, error) {
	if err := validator.Validate(req); err != nil {
		return nil, validationErr(err)
	}
	if err := s.checkCode(ctx, req.Code, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	product := &model.Product{
		Code:        req.Code,
		Name:        req.Name,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Unit:        req.Unit,
		Price:       req.Price,
		IsActive:    true,
	}
	product.CreatedBy = actor.ID
	product.UpdatedBy = actor.ID

	// the ledger row is born with the product, at zero
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.Create(tx, product); err != nil {
			return errors.Wrap(err, "create product")
		}
		return errors.Wrap(s.inventoryRepo.Create(tx, model.NewInventory(product.ID)), "create inventory")
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("product created", zap.Stringer("product_id", product.ID), zap.String("code", product.Code))
	s.notifier.Publish(ws.Event{
		Type:    ws.TypeStockUpdate,
		Action:  "product_created",
		Data:    map[string]interface{}{"id": product.ID, "code": product.Code, "name": product.Name},
		User:    eventUser(actor),
		Message: actor.Name + " created product '" + product.Name + "'",
	})
	return s.GetProduct(ctx, product.ID)
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductRequest, actor model.Actor) (*model.Product, error) {
	if err := validator.Validate(req); err != nil {
		return nil, validationErr(err)
	}
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "product")
	}
	if err := s.checkCode(ctx, req.Code, id); err != nil {
		return nil, err
	}
	if req.CategoryID != product.CategoryID {
		if err := s.checkCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
	}

	product.Code = req.Code
	product.Name = req.Name
	product.CategoryID = req.CategoryID
	product.Description = req.Description
	product.Unit = req.Unit
	product.Price = req.Price
	product.UpdatedBy = actor.ID
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, errors.Wrap(err, "update product")
	}
	return s.GetProduct(ctx, id)
}

func (s *catalogService) SetProductActive(ctx context.Context, id uuid.UUID, active bool, actor model.Actor) (*model.Product, error) {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return nil, lookupErr(err, "product")
	}
	if err := s.productRepo.SetActive(s.db.WithContext(ctx), id, active, actor.ID); err != nil {
		return nil, errors.Wrap(err, "update product")
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct only deactivates a product that an order item or stock movement references.
// The reference check and the delete run under the product's lock.
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID, actor model.Actor) (*DeleteResult, error) {
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return nil, lookupErr(err, "product")
	}

	result := &DeleteResult{}
	err := s.ledger.locked(ctx, []uuid.UUID{id}, nil, func(tx *gorm.DB) error {
		if err := productsExist(tx, s.productRepo, id); err != nil {
			return err
		}

		referenced, err := s.productRepo.IsInUse(tx, id)
		if err != nil {
			return errors.Wrap(err, "check product references")
		}
		if referenced {
			result.Deactivated = true
			return errors.Wrap(s.productRepo.SetActive(tx, id, false, actor.ID), "deactivate product")
		}
		result.Deleted = true
		return errors.Wrap(s.productRepo.Delete(tx, id), "delete product")
	})
	if err != nil {
		return nil, err
	}

	if result.Deactivated {
		s.log.Info("product deactivated", zap.Stringer("product_id", id), zap.String("actor", actor.ID))
	} else {
		s.log.Info("product deleted", zap.Stringer("product_id", id), zap.String("actor", actor.ID))
	}
	return result, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "product")
	}
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context, f repository.ProductFilter) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(ctx, f)
	return products, errors.Wrap(err, "list products")
}

func (s *catalogService) checkCode(ctx context.Context, code string, self uuid.UUID) error {
	existing, err := s.productRepo.FindByCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "check product code")
	}
	if existing.ID != self {
		return errors.Wrapf(ErrConflict, "product code %s", code)
	}
	return nil
}

func (s *catalogService) checkCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return lookupErr(err, "category")
	}
	if !category.IsActive {
		return errors.Wrapf(ErrValidation, "category %s is inactive", category.Code)
	}
	return nil
}

func (s *catalogService) CreateCategory(ctx context.Context, req *CategoryRequest, actor model.Actor) (*model.Category, error) {
	if err := validator.Validate(req); err != nil {
		return nil, validationErr(err)
	}
	category := &model.Category{Code: req.Code, Name: req.Name, Description: req.Description, IsActive: true}
	category.CreatedBy = actor.ID
	category.UpdatedBy = actor.ID
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, errors.Wrap(err, "create category")
	}
	return category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req *CategoryRequest, actor model.Actor) (*model.Category, error) {
	if err := validator.Validate(req); err != nil {
		return nil, validationErr(err)
	}
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "category")
	}
	category.Code = req.Code
	category.Name = req.Name
	category.Description = req.Description
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	category.UpdatedBy = actor.ID
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, errors.Wrap(err, "update category")
	}
	return category, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID, actor model.Actor) (*DeleteResult, error) {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		return nil, lookupErr(err, "category")
	}
	inUse, err := s.productRepo.ExistsInCategory(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "check category products")
	}
	if inUse {
		if err := s.categoryRepo.Deactivate(ctx, id, actor.ID); err != nil {
			return nil, errors.Wrap(err, "deactivate category")
		}
		return &DeleteResult{Deactivated: true}, nil
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return nil, errors.Wrap(err, "delete category")
	}
	return &DeleteResult{Deleted: true}, nil
}

func (s *catalogService) GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "category")
	}
	return category, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	return categories, errors.Wrap(err, "list categories")
}

func (s *catalogService) CreateSupplier(ctx context.Context, req *SupplierRequest, actor model.Actor) (*model.Supplier, error) {
	if err := validator.Validate(req); err != nil {
		return nil, validationErr(err)
	}
	supplier := &model.Supplier{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		IsActive:      true,
	}
	supplier.CreatedBy = actor.ID
	supplier.UpdatedBy = actor.ID
	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, errors.Wrap(err, "create supplier")
	}
	return supplier, nil
}

func (s *catalogService) UpdateSupplier(ctx context.Context, id uuid.UUID, req *SupplierRequest, actor model.Actor) (*model.Supplier, error) {
	if err := validator.Validate(req); err != nil {
		return nil, validationErr(err)
	}
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "supplier")
	}
	supplier.Name = req.Name
	supplier.ContactPerson = req.ContactPerson
	supplier.Phone = req.Phone
	supplier.Email = req.Email
	supplier.Address = req.Address
	if req.IsActive != nil {
		supplier.IsActive = *req.IsActive
	}
	supplier.UpdatedBy = actor.ID
	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, errors.Wrap(err, "update supplier")
	}
	return supplier, nil
}

func (s *catalogService) DeleteSupplier(ctx context.Context, id uuid.UUID, actor model.Actor) (*DeleteResult, error) {
	if _, err := s.supplierRepo.FindByID(ctx, id); err != nil {
		return nil, lookupErr(err, "supplier")
	}
	inUse, err := s.supplierRepo.HasStockIns(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "check supplier stock ins")
	}
	if inUse {
		if err := s.supplierRepo.Deactivate(ctx, id, actor.ID); err != nil {
			return nil, errors.Wrap(err, "deactivate supplier")
		}
		return &DeleteResult{Deactivated: true}, nil
	}
	if err := s.supplierRepo.Delete(ctx, id); err != nil {
		return nil, errors.Wrap(err, "delete supplier")
	}
	return &DeleteResult{Deleted: true}, nil
}

func (s *catalogService) GetSupplier(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "supplier")
	}
	return supplier, nil
}

func (s *catalogService) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	suppliers, err := s.supplierRepo.FindAll(ctx)
	return suppliers, errors.Wrap(err, "list suppliers")
}
