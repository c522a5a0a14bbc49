package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-textile-inventory/internal/analytics"
	"github.com/ariefcatur/go-textile-inventory/internal/auth"
	"github.com/ariefcatur/go-textile-inventory/internal/inventory"
)

type testEnv struct {
	router     *chi.Mux
	store      *inventory.MemoryStore
	adminToken string
	buyerToken string
	buyerID    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := inventory.NewMemoryStore()
	svc := inventory.NewService(store)
	engine := analytics.NewEngine(store)
	authSvc := auth.NewService(store, auth.NewTokenManager("test-secret", time.Hour, "textile-api"))

	ctx := context.Background()
	require.NoError(t, authSvc.EnsureAdmin(ctx, "Admin User", "admin@intellitextile.com", "admin123"))
	adminSess, err := authSvc.Login(ctx, "admin@intellitextile.com", "admin123")
	require.NoError(t, err)
	buyerSess, err := authSvc.Signup(ctx, "Buyer", "buyer@example.com", "buyerpw", "")
	require.NoError(t, err)

	router := NewRouter()
	gate := &AuthGate{Svc: authSvc}
	(&AuthHandler{Svc: authSvc, Users: store}).Register(router)
	(&ProductsHandler{Svc: svc}).Register(router, gate)
	(&OrdersHandler{Svc: svc, Service: "textile-api-test"}).Register(router, gate)
	(&AnalyticsHandler{Engine: engine}).Register(router)

	return &testEnv{
		router:     router,
		store:      store,
		adminToken: adminSess.Token,
		buyerToken: buyerSess.Token,
		buyerID:    buyerSess.User.ID,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func (e *testEnv) createProduct(t *testing.T, in inventory.NewProduct) string {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/products", e.adminToken, in)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	body := decodeBody(t, rr)
	return body["product"].(map[string]any)["id"].(string)
}

func TestProducts_ListEmpty(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"products":[]}`, rr.Body.String())
}

func TestProducts_CreateRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	in := inventory.NewProduct{Name: "Cotton", Category: "Fabric", Quantity: 10, Price: 2}

	rr := env.do(t, http.MethodPost, "/products", "", in)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodPost, "/products", env.buyerToken, in)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = env.do(t, http.MethodPost, "/products", env.adminToken, in)
	require.Equal(t, http.StatusCreated, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "Product created", body["message"])
	product := body["product"].(map[string]any)
	assert.Equal(t, "Cotton", product["name"])
	assert.Equal(t, float64(10), product["quantity"])
}

func TestProducts_CreateValidation(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/products", env.adminToken,
		inventory.NewProduct{Name: "Cotton", Category: "Fabric", Quantity: -1, Price: 2})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Quantity must be 0 or greater", decodeBody(t, rr)["error"])
}

func TestProducts_DeleteMissing(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodDelete, "/products/nope", env.adminToken, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Product not found", decodeBody(t, rr)["error"])
}

func TestProducts_DeleteReturnsID(t *testing.T) {
	env := newTestEnv(t)
	id := env.createProduct(t, inventory.NewProduct{Name: "Silk", Category: "Fabric", Quantity: 5, Price: 9})

	rr := env.do(t, http.MethodDelete, "/products/"+id, env.adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "Product deleted", body["message"])
	assert.Equal(t, id, body["product"].(map[string]any)["id"])
}

func TestOrders_CreateAndDefaultBuyer(t *testing.T) {
	env := newTestEnv(t)
	id := env.createProduct(t, inventory.NewProduct{Name: "Widget", Category: "Parts", Quantity: 10, ReorderLevel: 5, Price: 100})

	rr := env.do(t, http.MethodPost, "/orders", env.buyerToken,
		inventory.NewOrder{ProductID: id, Quantity: 3})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	body := decodeBody(t, rr)
	assert.Equal(t, "Order created", body["message"])

	order := body["order"].(map[string]any)
	assert.Equal(t, "Widget", order["productName"])
	assert.Equal(t, float64(300), order["totalPrice"])
	assert.Equal(t, "confirmed", order["status"])
	// attributed to the token identity when the body names no buyer
	assert.Equal(t, env.buyerID, order["buyerId"])

	// stock is down to 7
	p, err := env.store.GetProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 7, p.Quantity)
}

func TestOrders_InsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	id := env.createProduct(t, inventory.NewProduct{Name: "Linen", Category: "Fabric", Quantity: 2, Price: 8})

	rr := env.do(t, http.MethodPost, "/orders", env.buyerToken,
		inventory.NewOrder{ProductID: id, Quantity: 5})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Insufficient stock", decodeBody(t, rr)["error"])

	p, err := env.store.GetProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Quantity)
}

func TestOrders_UnknownProduct(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/orders", env.buyerToken,
		inventory.NewOrder{ProductID: "nope", Quantity: 1})
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Product not found", decodeBody(t, rr)["error"])
}

func TestOrders_ListFilterByBuyer(t *testing.T) {
	env := newTestEnv(t)
	id := env.createProduct(t, inventory.NewProduct{Name: "Velvet", Category: "Fabric", Quantity: 30, Price: 4})

	rr := env.do(t, http.MethodPost, "/orders", env.buyerToken,
		inventory.NewOrder{ProductID: id, Quantity: 1})
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = env.do(t, http.MethodPost, "/orders", env.adminToken,
		inventory.NewOrder{ProductID: id, Quantity: 2})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = env.do(t, http.MethodGet, "/orders?buyerId="+env.buyerID, env.buyerToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	orders := decodeBody(t, rr)["orders"].([]any)
	require.Len(t, orders, 1)
	assert.Equal(t, float64(1), orders[0].(map[string]any)["quantity"])

	rr = env.do(t, http.MethodGet, "/orders", env.buyerToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody(t, rr)["orders"].([]any), 2)
}

func TestAnalytics_EndpointsWrapPayload(t *testing.T) {
	env := newTestEnv(t)
	id := env.createProduct(t, inventory.NewProduct{Name: "Cotton", Category: "Fabric", Quantity: 100, ReorderLevel: 200, Price: 10})

	rr := env.do(t, http.MethodPost, "/orders", env.buyerToken,
		inventory.NewOrder{ProductID: id, Quantity: 6})
	require.Equal(t, http.StatusCreated, rr.Code)

	for path, key := range map[string]string{
		"/sales-trends":     "salesTrends",
		"/inventory-alerts": "inventoryAlerts",
		"/demand-forecasts": "forecasts",
		"/waste-analysis":   "wasteData",
	} {
		rr := env.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, rr.Code, path)
		body := decodeBody(t, rr)
		_, ok := body[key]
		assert.True(t, ok, "%s response missing %q", path, key)
	}

	rr = env.do(t, http.MethodGet, "/demand-forecasts", "", nil)
	forecasts := decodeBody(t, rr)["forecasts"].([]any)
	require.Len(t, forecasts, 3)
	first := forecasts[0].(map[string]any)
	assert.Equal(t, "Week 1", first["week"])
	assert.Equal(t, float64(2), first["predictedDemand"]) // round(6/3)
	assert.Equal(t, 0.82, first["confidence"])
}

func TestAuth_SignupLoginVerify(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/auth/signup", "",
		map[string]string{"name": "Carol", "email": "Carol@Example.com", "password": "pw123456"})
	require.Equal(t, http.StatusCreated, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "Signup successful", body["message"])
	token := body["token"].(string)
	user := body["user"].(map[string]any)
	assert.Equal(t, "carol@example.com", user["email"])
	assert.Equal(t, "buyer", user["role"])

	rr = env.do(t, http.MethodPost, "/auth/login", "",
		map[string]string{"email": "carol@example.com", "password": "pw123456"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Login successful", decodeBody(t, rr)["message"])

	rr = env.do(t, http.MethodPost, "/auth/verify", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decodeBody(t, rr)["valid"])

	rr = env.do(t, http.MethodPost, "/auth/verify", "bogus", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_LoginRejectsBadPassword(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/auth/login", "",
		map[string]string{"email": "admin@intellitextile.com", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid credentials", decodeBody(t, rr)["error"])
}

func TestHealthz_ReportsUsers(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "Server is running", body["status"])
	// seeded admin + test buyer
	assert.Equal(t, float64(2), body["users"])
}

func TestOrders_RequireAuthentication(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodPost, "/orders", "", inventory.NewOrder{ProductID: "x", Quantity: 1})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestProducts_BadJSON(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBufferString("{nope"))
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", env.adminToken))
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
