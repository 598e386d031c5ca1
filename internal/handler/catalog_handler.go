package handler

import (
	"go-warehouse-inventory/internal/repository"
	"go-warehouse-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(s service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: s}
}

// GET /api/v1/products?active=true&category_id=...&search=...
func (h *CatalogHandler) GetProducts(c *fiber.Ctx) error {
	var f repository.ProductFilter
	if v := c.Query("active"); v != "" {
		active := c.QueryBool("active")
		f.Active = &active
	}
	if v := c.Query("category_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return badRequest(c, "Invalid category ID")
		}
		f.CategoryID = &id
	}
	f.Search = c.Query("search")

	products, err := h.service.ListProducts(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.JSON(products)
}

func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}
	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(product)
}

func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	product, err := h.service.CreateProduct(c.UserContext(), &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	product, err := h.service.UpdateProduct(c.UserContext(), id, &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": product})
}

// PATCH /api/v1/products/:id/active
func (h *CatalogHandler) SetProductActive(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}
	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	product, err := h.service.SetProductActive(c.UserContext(), id, req.IsActive, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": product})
}

func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}
	res, err := h.service.DeleteProduct(c.UserContext(), id, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(deleteMessage("Product", res))
}

func (h *CatalogHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(categories)
}

func (h *CatalogHandler) GetCategory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid category ID")
	}
	category, err := h.service.GetCategory(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(category)
}

func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req service.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	category, err := h.service.CreateCategory(c.UserContext(), &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Category created", "data": category})
}

func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid category ID")
	}
	var req service.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	category, err := h.service.UpdateCategory(c.UserContext(), id, &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Category updated", "data": category})
}

func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid category ID")
	}
	res, err := h.service.DeleteCategory(c.UserContext(), id, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(deleteMessage("Category", res))
}

func (h *CatalogHandler) GetSuppliers(c *fiber.Ctx) error {
	suppliers, err := h.service.ListSuppliers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(suppliers)
}

func (h *CatalogHandler) GetSupplier(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid supplier ID")
	}
	supplier, err := h.service.GetSupplier(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(supplier)
}

func (h *CatalogHandler) CreateSupplier(c *fiber.Ctx) error {
	var req service.SupplierRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	supplier, err := h.service.CreateSupplier(c.UserContext(), &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Supplier created", "data": supplier})
}

func (h *CatalogHandler) UpdateSupplier(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid supplier ID")
	}
	var req service.SupplierRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	supplier, err := h.service.UpdateSupplier(c.UserContext(), id, &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Supplier updated", "data": supplier})
}

func (h *CatalogHandler) DeleteSupplier(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid supplier ID")
	}
	res, err := h.service.DeleteSupplier(c.UserContext(), id, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(deleteMessage("Supplier", res))
}

func deleteMessage(what string, res *service.DeleteResult) fiber.Map {
	msg := what + " deleted"
	if res.Deactivated {
		msg = what + " is referenced and was deactivated instead"
	}
	return fiber.Map{"message": msg, "data": res}
}
