package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ombor-api/internal/application/auth"
	"github.com/jhoicas/Ombor-api/internal/application/inventory"
	"github.com/jhoicas/Ombor-api/internal/application/usecase"
	"github.com/jhoicas/Ombor-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Ombor-api/internal/interfaces/http"
)

// api arma el router completo sobre el almacenamiento en memoria.
type api struct {
	t   *testing.T
	app *fiber.App
}

func newAPI(t *testing.T) *api {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repos()
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		CompanyUC:  usecase.NewCompanyUseCase(store.Companies()),
		ProductUC:  usecase.NewProductUseCase(repos.Products, store, nil, zerolog.Nop()),
		SupplierUC: usecase.NewSupplierUseCase(repos.Suppliers),
		CustomerUC: usecase.NewCustomerUseCase(repos.Customers),
		UserUC:     usecase.NewUserUseCase(store.Users()),
		LedgerUC:   inventory.NewLedgerUseCase(store, repos, nil, zerolog.Nop(), "USD"),
		AuthUC: auth.NewAuthUseCase(store.Users(), store.Companies(), auth.JWTConfig{
			Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
		}),
		JWTSecret: testJWTSecret,
	})
	return &api{t: t, app: app}
}

// do envía la petición y decodifica el cuerpo JSON (si lo hay) en un map.
func (a *api) do(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	out := map[string]any{}
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp.StatusCode, out
}

// login registra un usuario con el rol dado y devuelve su token.
func (a *api) login(companyID, username, role string) string {
	a.t.Helper()
	status, _ := a.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": username, "password": "password123", "company_id": companyID, "role": role,
	})
	require.Equal(a.t, http.StatusCreated, status)
	status, body := a.do(http.MethodPost, "/api/auth/login", "", map[string]any{
		"username": username, "password": "password123",
	})
	require.Equal(a.t, http.StatusOK, status)
	return body["token"].(string)
}

type session struct {
	*api
	admin, seller string
	companyID     string
	customerID    string
	supplierID    string
}

func newSession(t *testing.T) *session {
	a := newAPI(t)
	status, company := a.do(http.MethodPost, "/api/companies", "", map[string]any{"name": "Ombor LLC"})
	require.Equal(t, http.StatusCreated, status)
	companyID := company["id"].(string)

	s := &session{api: a, companyID: companyID}
	s.admin = a.login(companyID, "admin1", "admin")
	s.seller = a.login(companyID, "seller1", "seller")

	status, cust := a.do(http.MethodPost, "/api/customers", s.seller, map[string]any{
		"name": "Cliente", "region": "Tashkent", "phone_number": "+998900000000",
	})
	require.Equal(t, http.StatusCreated, status)
	s.customerID = cust["id"].(string)

	status, sup := a.do(http.MethodPost, "/api/suppliers", s.admin, map[string]any{
		"name": "Proveedor", "region": "Samarkand", "phone_number": "+998911111111",
	})
	require.Equal(t, http.StatusCreated, status)
	s.supplierID = sup["id"].(string)
	return s
}

func (s *session) product(name string) string {
	s.t.Helper()
	status, p := s.do(http.MethodPost, "/api/products", s.admin, map[string]any{"name": name})
	require.Equal(s.t, http.StatusCreated, status)
	return p["id"].(string)
}

func line(productID string, qty int64, price string) map[string]any {
	return map[string]any{
		"product_id": productID,
		"quantity":   qty,
		"unit_price": map[string]any{"amount": price, "currency": "USD"},
	}
}

func (s *session) onHand(productID string) float64 {
	s.t.Helper()
	status, b := s.do(http.MethodGet, "/api/inventory/"+productID, s.seller, nil)
	require.Equal(s.t, http.StatusOK, status)
	return b["quantity_on_hand"].(float64)
}

func TestAPI_SellerNoPuedeCrearProductos(t *testing.T) {
	s := newSession(t)
	status, body := s.do(http.MethodPost, "/api/products", s.seller, map[string]any{"name": "X"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])
}

func TestAPI_ImportacionVentaYReversion(t *testing.T) {
	s := newSession(t)
	p := s.product("Tornillo")

	status, imp := s.do(http.MethodPost, "/api/imports", s.admin, map[string]any{
		"counterparty_id": s.supplierID,
		"payment_method":  "transfer",
		"lines":           []any{line(p, 10, "100")},
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Len(t, imp["entry_ids"], 1)
	assert.Equal(t, float64(10), s.onHand(p))

	status, sale := s.do(http.MethodPost, "/api/sales", s.seller, map[string]any{
		"counterparty_id": s.customerID,
		"payment_method":  "cash",
		"lines":           []any{line(p, 4, "150")},
	})
	require.Equal(t, http.StatusCreated, status)
	saleID := sale["id"].(string)
	assert.Equal(t, float64(6), s.onHand(p))

	status, got := s.do(http.MethodGet, "/api/sales/"+saleID, s.seller, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, got["entries"], 1)

	// Una venta no se encuentra bajo /imports.
	status, _ = s.do(http.MethodGet, "/api/imports/"+saleID, s.seller, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, upd := s.do(http.MethodPatch, "/api/sales/"+saleID, s.seller, map[string]any{"payment_method": "card"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "card", upd["payment_method"])

	status, _ = s.do(http.MethodDelete, "/api/sales/"+saleID, s.seller, nil)
	require.Equal(t, http.StatusNoContent, status)
	assert.Equal(t, float64(10), s.onHand(p))

	status, rec := s.do(http.MethodGet, "/api/inventory/"+p+"/reconcile", s.seller, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, rec["consistent"])
	assert.Equal(t, float64(10), rec["expected"])
}

func TestAPI_VentaSinStockEsTodoONada(t *testing.T) {
	s := newSession(t)
	a, b := s.product("A"), s.product("B")

	status, _ := s.do(http.MethodPost, "/api/inventory/incoming", s.admin, map[string]any{
		"product_id": a, "quantity": 5, "unit_price": map[string]any{"amount": "10", "currency": "USD"},
	})
	require.Equal(t, http.StatusCreated, status)
	status, _ = s.do(http.MethodPost, "/api/inventory/incoming", s.admin, map[string]any{
		"product_id": b, "quantity": 1, "unit_price": map[string]any{"amount": "10", "currency": "USD"},
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := s.do(http.MethodPost, "/api/sales", s.seller, map[string]any{
		"counterparty_id": s.customerID,
		"payment_method":  "cash",
		"lines":           []any{line(a, 2, "20"), line(b, 3, "20")},
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	assert.Equal(t, float64(5), s.onHand(a))
	assert.Equal(t, float64(1), s.onHand(b))

	status, list := s.do(http.MethodGet, "/api/sales", s.seller, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, list["items"])
}

func TestAPI_SalidaSueltaSinStock(t *testing.T) {
	s := newSession(t)
	p := s.product("C")
	status, body := s.do(http.MethodPost, "/api/inventory/outgoing", s.seller, map[string]any{
		"product_id": p, "quantity": 1, "unit_price": map[string]any{"amount": "10", "currency": "USD"},
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
}

func TestAPI_ErroresDeEntrada(t *testing.T) {
	s := newSession(t)
	p := s.product("D")

	status, body := s.do(http.MethodPost, "/api/inventory/incoming", s.admin, map[string]any{
		"product_id": p, "quantity": 0, "unit_price": map[string]any{"amount": "10", "currency": "USD"},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])

	status, _ = s.do(http.MethodGet, "/api/inventory/no-es-uuid", s.seller, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(http.MethodGet, "/api/sales?days=ayer", s.seller, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(http.MethodGet, "/api/sales", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_ReportesYListados(t *testing.T) {
	s := newSession(t)
	p := s.product("Tuerca")
	status, _ := s.do(http.MethodPost, "/api/imports", s.admin, map[string]any{
		"payment_method": "cash",
		"lines":          []any{line(p, 8, "5")},
	})
	require.Equal(t, http.StatusCreated, status)
	status, _ = s.do(http.MethodPost, "/api/sales", s.seller, map[string]any{
		"counterparty_id": s.customerID,
		"payment_method":  "cash",
		"lines":           []any{line(p, 3, "9")},
	})
	require.Equal(t, http.StatusCreated, status)

	status, inc := s.do(http.MethodGet, "/api/inventory/reports/income", s.seller, nil)
	require.Equal(t, http.StatusOK, status)
	items := inc["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, float64(8), items[0].(map[string]any)["total_income"])

	status, rep := s.do(http.MethodGet, "/api/sales/report", s.seller, nil)
	require.Equal(t, http.StatusOK, status)
	sales := rep["items"].([]any)
	require.Len(t, sales, 1)
	assert.Equal(t, float64(3), sales[0].(map[string]any)["total_quantity"])

	status, bal := s.do(http.MethodGet, "/api/inventory?search=tuer", s.seller, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, bal["items"], 1)

	status, imports := s.do(http.MethodGet, "/api/imports?days=today", s.seller, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, imports["items"], 1)
}

func TestAPI_DesactivarProducto(t *testing.T) {
	s := newSession(t)
	p := s.product("E")
	status, _ := s.do(http.MethodPost, "/api/inventory/incoming", s.admin, map[string]any{
		"product_id": p, "quantity": 2, "unit_price": map[string]any{"amount": "10", "currency": "USD"},
	})
	require.Equal(t, http.StatusCreated, status)

	status, _ = s.do(http.MethodDelete, "/api/products/"+p, s.admin, nil)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = s.do(http.MethodGet, "/api/products/"+p, s.seller, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = s.do(http.MethodGet, "/api/inventory/"+p, s.seller, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPI_GestionDeUsuarios(t *testing.T) {
	s := newSession(t)

	status, created := s.do(http.MethodPost, "/api/users", s.admin, map[string]any{
		"username": "seller2", "password": "password123", "phone_number": "+998933333333",
	})
	require.Equal(t, http.StatusCreated, status)
	id := created["id"].(string)
	assert.Equal(t, "seller", created["role"])
	assert.Equal(t, s.companyID, created["company_id"])
	assert.NotContains(t, created, "password_hash")

	status, _ = s.do(http.MethodPost, "/api/users", s.admin, map[string]any{
		"username": "seller2", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, list := s.do(http.MethodGet, "/api/users", s.admin, nil)
	require.Equal(t, http.StatusOK, status)
	items := list["items"].([]any)
	require.Len(t, items, 3)
	assert.Equal(t, "admin1", items[0].(map[string]any)["username"])

	status, got := s.do(http.MethodGet, "/api/users/"+id, s.admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "seller2", got["username"])

	// El password nuevo reemplaza al anterior.
	status, upd := s.do(http.MethodPut, "/api/users/"+id, s.admin, map[string]any{
		"name": "Vendedor Dos", "password": "otraClave99",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Vendedor Dos", upd["name"])
	status, _ = s.do(http.MethodPost, "/api/auth/login", "", map[string]any{"username": "seller2", "password": "password123"})
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = s.do(http.MethodPost, "/api/auth/login", "", map[string]any{"username": "seller2", "password": "otraClave99"})
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(http.MethodDelete, "/api/users/"+id, s.admin, nil)
	require.Equal(t, http.StatusNoContent, status)
	status, _ = s.do(http.MethodGet, "/api/users/"+id, s.admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, body := s.do(http.MethodPost, "/api/auth/login", "", map[string]any{"username": "seller2", "password": "otraClave99"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])
}

func TestAPI_UsuariosSoloParaGerencia(t *testing.T) {
	s := newSession(t)
	status, body := s.do(http.MethodGet, "/api/users", s.seller, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])

	status, _ = s.do(http.MethodGet, "/api/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// Un admin no asciende a nadie a ceo; un ceo sí.
	status, _ = s.do(http.MethodPost, "/api/users", s.admin, map[string]any{
		"username": "jefe", "password": "password123", "role": "ceo",
	})
	assert.Equal(t, http.StatusForbidden, status)

	ceo := s.login(s.companyID, "ceo1", "ceo")
	status, created := s.do(http.MethodPost, "/api/users", ceo, map[string]any{
		"username": "jefe", "password": "password123", "role": "ceo",
	})
	require.Equal(t, http.StatusCreated, status)
	status, _ = s.do(http.MethodDelete, "/api/users/"+created["id"].(string), s.admin, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestAPI_PerfilYValidarToken(t *testing.T) {
	s := newSession(t)

	status, me := s.do(http.MethodGet, "/api/auth/profile", s.admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "admin1", me["username"])
	assert.Equal(t, "admin", me["role"])

	// Nadie se desactiva a sí mismo.
	status, body := s.do(http.MethodDelete, "/api/users/"+me["id"].(string), s.admin, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body["code"])

	status, info := s.do(http.MethodGet, "/api/auth/validate-token", s.seller, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, info["valid"])
	assert.Equal(t, "seller", info["role"])
	assert.Equal(t, s.companyID, info["company_id"])

	status, _ = s.do(http.MethodGet, "/api/auth/validate-token", "no-es-un-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
