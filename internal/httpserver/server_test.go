package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/supplysathi/marketplace/internal/auth"
	"github.com/supplysathi/marketplace/internal/catalog"
	"github.com/supplysathi/marketplace/internal/ledger"
	"github.com/supplysathi/marketplace/internal/models"
	"github.com/supplysathi/marketplace/internal/payment"
	"github.com/supplysathi/marketplace/internal/pricing"
	"github.com/supplysathi/marketplace/internal/repo"
	"github.com/supplysathi/marketplace/internal/transport"
)

type testEnv struct {
	t  *testing.T
	e  *echo.Echo
	db *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.Transaction{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	r := &repo.GormRepo{DB: db}
	policy := pricing.DefaultPolicy()
	sim := payment.NewSimulator(policy.CODSurcharge)
	sim.Sleep = func(time.Duration) {}
	sim.Rand = func() float64 { return 0.0 }

	secret := []byte("test-jwt-secret")
	ledgerSvc := ledger.NewService(r, policy, sim, nil)

	e := echo.New()
	Register(e, &Deps{
		AuthHandler:    &AuthHTTP{Svc: &auth.Service{Repo: r, JWTSecret: secret}},
		ProductHandler: &ProductHTTP{Svc: &catalog.Service{Repo: r}},
		OrderHandler:   &OrderHTTP{Svc: ledgerSvc},
		PaymentHandler: &PaymentHTTP{Svc: ledgerSvc},
		JWTSecret:      secret,
	})

	return &testEnv{t: t, e: e, db: db}
}

func (env *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	env.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) register(username, role string) string {
	env.t.Helper()

	rec := env.do(http.MethodPost, "/api/register", "", transport.RegisterRequest{
		Username: username,
		Password: "Secret123",
		Role:     role,
	})
	require.Equal(env.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(http.MethodPost, "/api/login", "", transport.LoginRequest{
		Username: username,
		Password: "Secret123",
	})
	require.Equal(env.t, http.StatusOK, rec.Code, rec.Body.String())

	var resp transport.LoginResponse
	require.NoError(env.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func TestOrderFlowOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	supplierToken := env.register("fresh_veg_co", models.RoleSupplier)
	vendorToken := env.register("raju_chaat", models.RoleVendor)

	// supplier lists a product
	rec := env.do(http.MethodPost, "/api/products", supplierToken, transport.ProductRequest{
		Name:  "Fresh Red Onions",
		Unit:  "kg",
		Price: 25,
		Stock: 40,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var product models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &product))

	// vendor cannot create products
	rec = env.do(http.MethodPost, "/api/products", vendorToken, transport.ProductRequest{
		Name: "x", Unit: "kg", Price: 1, Stock: 1,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// vendor places an order
	deliveryDate := time.Now().UTC().Add(48 * time.Hour).Format("2006-01-02")
	rec = env.do(http.MethodPost, "/api/orders", vendorToken, transport.PlaceOrderRequest{
		ProductID:    product.ID,
		Quantity:     10,
		DeliveryDate: deliveryDate,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.EqualValues(t, 323, order.Total)
	assert.Equal(t, "Processing", order.Status)

	// stock got decremented with the placement
	rec = env.do(http.MethodGet, "/api/products/"+product.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var after models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &after))
	assert.Equal(t, 30, after.Stock)

	// vendor pays, order auto-confirms
	rec = env.do(http.MethodPost, "/api/orders/"+order.ID.String()+"/pay", vendorToken, transport.PayRequest{Method: "UPI"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var txn models.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txn))
	assert.EqualValues(t, 323, txn.Amount)

	// the transaction shows up for both parties
	rec = env.do(http.MethodGet, "/api/transactions", vendorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var txns []models.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txns))
	require.Len(t, txns, 1)
	assert.Equal(t, "UPI", txns[0].Method)

	// paying twice conflicts
	rec = env.do(http.MethodPost, "/api/orders/"+order.ID.String()+"/pay", vendorToken, transport.PayRequest{Method: "Card"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// supplier walks the remaining lifecycle
	rec = env.do(http.MethodPost, "/api/orders/"+order.ID.String()+"/in-transit", supplierToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = env.do(http.MethodPost, "/api/orders/"+order.ID.String()+"/delivered", supplierToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// rejecting a delivered order conflicts
	rec = env.do(http.MethodPost, "/api/orders/"+order.ID.String()+"/reject", supplierToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// vendor rates the delivered order
	rec = env.do(http.MethodPost, "/api/orders/"+order.ID.String()+"/rating", vendorToken, transport.RateRequest{Rating: 5})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// both parties see the order
	rec = env.do(http.MethodGet, "/api/orders", vendorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(http.MethodGet, "/api/orders", supplierToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	require.NotNil(t, orders[0].Rating)
	assert.Equal(t, 5, *orders[0].Rating)
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodGet, "/api/orders", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSearchUnavailableWithoutES(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/products/search?q=onion", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
