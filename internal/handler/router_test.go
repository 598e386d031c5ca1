package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-warehouse-inventory/config"
	"go-warehouse-inventory/internal/forecast"
	"go-warehouse-inventory/internal/repository"
	"go-warehouse-inventory/internal/seed"
	"go-warehouse-inventory/internal/service"
	"go-warehouse-inventory/pkg/database"
	"go-warehouse-inventory/pkg/jwt"
	"go-warehouse-inventory/pkg/keylock"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "secret123"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	log := zaptest.NewLogger(t)
	require.NoError(t, seed.Run(context.Background(), db,
		config.SeedConfig{AdminEmail: adminEmail, AdminPassword: adminPassword}, log))

	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	productRepo := repository.NewProductRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	inventoryRepo := repository.NewInventoryRepo(db)
	stockRepo := repository.NewStockRepo(db)
	orderRepo := repository.NewOrderRepo(db)

	ledger := service.NewLedger(db, inventoryRepo, keylock.New(), log)
	notifier := service.NopNotifier
	tokens := jwt.NewManager(config.JWTConfig{Secret: "test-secret", TTL: time.Hour, Issuer: "test"})

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	Register(app, Services{
		Auth:      service.NewAuthService(userRepo, tokens, log),
		Users:     service.NewUserService(userRepo, roleRepo, log),
		Catalog:   service.NewCatalogService(db, ledger, productRepo, categoryRepo, supplierRepo, inventoryRepo, notifier, log),
		Inventory: ledger,
		Stock:     service.NewStockService(ledger, stockRepo, productRepo, supplierRepo, orderRepo, notifier, log),
		Orders:    service.NewOrderService(db, ledger, orderRepo, productRepo, inventoryRepo, stockRepo, notifier, log),
		Dashboard: service.NewDashboardService(repository.NewDashboardRepo(db), orderRepo, inventoryRepo, forecast.NewMovingAverage(stockRepo, 90), log),
		Audit:     service.NewAuditService(db, inventoryRepo, stockRepo),
	})
	return app
}

type client struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func (c *client) do(method, path string, body interface{}) (int, map[string]interface{}) {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if c.token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	out := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(c.t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func dataID(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "response has no data: %v", body)
	id, ok := data["id"].(string)
	require.True(t, ok)
	return id
}

func login(t *testing.T, app *fiber.App) *client {
	c := &client{t: t, app: app}
	status, body := c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": adminEmail, "password": adminPassword,
	})
	require.Equal(t, http.StatusOK, status, body)
	c.token = body["token"].(string)
	return c
}

func TestRequiresAuth(t *testing.T) {
	app := newTestApp(t)
	anon := &client{t: t, app: app}

	status, _ := anon.do(http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	anon.token = "not-a-jwt"
	status, _ = anon.do(http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = anon.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": adminEmail, "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestOrderFlowOverHTTP(t *testing.T) {
	app := newTestApp(t)
	c := login(t, app)

	status, body := c.do(http.MethodPost, "/api/v1/categories", map[string]string{"code": "GEN", "name": "General"})
	require.Equal(t, http.StatusCreated, status, body)
	categoryID := dataID(t, body)

	status, body = c.do(http.MethodPost, "/api/v1/suppliers", map[string]string{"name": "Acme"})
	require.Equal(t, http.StatusCreated, status, body)
	supplierID := dataID(t, body)

	status, body = c.do(http.MethodPost, "/api/v1/products", map[string]interface{}{
		"code": "X", "name": "Widget", "category_id": categoryID, "unit": "pcs", "price": 1500,
	})
	require.Equal(t, http.StatusCreated, status, body)
	productID := dataID(t, body)

	status, body = c.do(http.MethodPost, "/api/v1/stock-ins", map[string]interface{}{
		"product_id": productID, "supplier_id": supplierID, "quantity": 10, "unit_price": 1000,
	})
	require.Equal(t, http.StatusCreated, status, body)
	stockInID := dataID(t, body)

	status, body = c.do(http.MethodPost, "/api/v1/stock-ins/"+stockInID+"/confirm", nil)
	require.Equal(t, http.StatusOK, status, body)
	status, _ = c.do(http.MethodPost, "/api/v1/stock-ins/"+stockInID+"/confirm", nil)
	assert.Equal(t, http.StatusConflict, status)

	status, body = c.do(http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"customer_name":  "Jane Doe",
		"payment_method": "cash",
		"items":          []map[string]interface{}{{"product_id": productID, "quantity": 3}},
	})
	require.Equal(t, http.StatusCreated, status, body)
	orderID := dataID(t, body)

	status, body = c.do(http.MethodPatch, "/api/v1/orders/"+orderID+"/status", map[string]string{"status": "delivered"})
	assert.Equal(t, http.StatusUnprocessableEntity, status, body)

	status, body = c.do(http.MethodPost, "/api/v1/orders/"+orderID+"/confirm", nil)
	require.Equal(t, http.StatusOK, status, body)

	status, body = c.do(http.MethodGet, "/api/v1/inventory/"+productID, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.EqualValues(t, 7, body["quantity"])

	status, body = c.do(http.MethodPost, "/api/v1/stock-outs", map[string]interface{}{
		"product_id": productID, "quantity": 8, "type": "damaged",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status, body)

	status, body = c.do(http.MethodPost, "/api/v1/orders/"+orderID+"/cancel", nil)
	require.Equal(t, http.StatusOK, status, body)

	status, body = c.do(http.MethodGet, "/api/v1/inventory/"+productID, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.EqualValues(t, 10, body["quantity"])

	status, body = c.do(http.MethodGet, "/api/v1/dashboard/recount", nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["consistent"])
}

func TestErrorStatuses(t *testing.T) {
	app := newTestApp(t)
	c := login(t, app)

	status, _ := c.do(http.MethodGet, "/api/v1/orders/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = c.do(http.MethodGet, "/api/v1/orders/9b2f0a4e-2f55-4a44-8a57-1d7c1b9b3c11", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = c.do(http.MethodPost, "/api/v1/orders", map[string]interface{}{"customer_name": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
}

// userWithRole creates a user holding the seeded role code and logs them in.
func userWithRole(t *testing.T, app *fiber.App, admin *client, code, email string) *client {
	t.Helper()
	roles := []map[string]interface{}{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/roles", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+admin.token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&roles))
	resp.Body.Close()

	var roleID float64
	for _, r := range roles {
		if r["code"] == code {
			roleID = r["id"].(float64)
		}
	}
	require.NotZero(t, roleID, "role %s not seeded", code)

	status, body := admin.do(http.MethodPost, "/api/v1/users", map[string]interface{}{
		"email": email, "password": "pass1234", "full_name": code, "role_id": roleID,
	})
	require.Equal(t, http.StatusCreated, status, body)

	u := &client{t: t, app: app}
	status, body = u.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": email, "password": "pass1234",
	})
	require.Equal(t, http.StatusOK, status, body)
	u.token = body["token"].(string)
	return u
}

// stockedProduct creates a product with qty units confirmed in and returns its id.
func stockedProduct(t *testing.T, c *client, code string, qty int) string {
	t.Helper()
	status, body := c.do(http.MethodPost, "/api/v1/categories", map[string]string{"code": "C-" + code, "name": "Category " + code})
	require.Equal(t, http.StatusCreated, status, body)
	categoryID := dataID(t, body)

	status, body = c.do(http.MethodPost, "/api/v1/suppliers", map[string]string{"name": "Supplier " + code})
	require.Equal(t, http.StatusCreated, status, body)
	supplierID := dataID(t, body)

	status, body = c.do(http.MethodPost, "/api/v1/products", map[string]interface{}{
		"code": code, "name": "Product " + code, "category_id": categoryID, "unit": "pcs", "price": 1500,
	})
	require.Equal(t, http.StatusCreated, status, body)
	productID := dataID(t, body)

	status, body = c.do(http.MethodPost, "/api/v1/stock-ins", map[string]interface{}{
		"product_id": productID, "supplier_id": supplierID, "quantity": qty, "unit_price": 1000,
	})
	require.Equal(t, http.StatusCreated, status, body)
	status, body = c.do(http.MethodPost, "/api/v1/stock-ins/"+dataID(t, body)+"/confirm", nil)
	require.Equal(t, http.StatusOK, status, body)
	return productID
}

func TestPrivilegeGate(t *testing.T) {
	app := newTestApp(t)
	admin := login(t, app)
	sales := userWithRole(t, app, admin, "SALES", "sales@example.com")

	status, _ := sales.do(http.MethodGet, "/api/v1/orders", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = sales.do(http.MethodPost, "/api/v1/stock-ins", map[string]interface{}{})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = sales.do(http.MethodGet, "/api/v1/users", nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestStatusRouteChecksTargetPrivilege(t *testing.T) {
	app := newTestApp(t)
	admin := login(t, app)
	warehouse := userWithRole(t, app, admin, "WAREHOUSE", "warehouse@example.com")
	productID := stockedProduct(t, admin, "W1", 10)

	status, body := admin.do(http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"customer_name":  "Jane Doe",
		"payment_method": "cash",
		"items":          []map[string]interface{}{{"product_id": productID, "quantity": 4}},
	})
	require.Equal(t, http.StatusCreated, status, body)
	orderID := dataID(t, body)

	status, _ = warehouse.do(http.MethodPost, "/api/v1/orders/"+orderID+"/cancel", nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = warehouse.do(http.MethodPatch, "/api/v1/orders/"+orderID+"/status", map[string]string{"status": "cancelled"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = admin.do(http.MethodGet, "/api/v1/orders/"+orderID, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "pending", body["status"])

	// warehouse holds order:confirm, so the forward step goes through
	status, body = warehouse.do(http.MethodPatch, "/api/v1/orders/"+orderID+"/status", map[string]string{"status": "processing"})
	require.Equal(t, http.StatusOK, status, body)

	status, body = admin.do(http.MethodGet, "/api/v1/inventory/"+productID, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.EqualValues(t, 6, body["quantity"])

	status, _ = warehouse.do(http.MethodPatch, "/api/v1/orders/"+orderID+"/status", map[string]string{"status": "cancelled"})
	assert.Equal(t, http.StatusForbidden, status)
	status, body = admin.do(http.MethodPatch, "/api/v1/orders/"+orderID+"/status", map[string]string{"status": "cancelled"})
	require.Equal(t, http.StatusOK, status, body)
}
