package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/jhoicas/inventario-sucursales/docs"
	"github.com/jhoicas/inventario-sucursales/internal/application/analytics"
	"github.com/jhoicas/inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/application/usecase"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	"github.com/jhoicas/inventario-sucursales/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/inventario-sucursales/internal/interfaces/http"
	"github.com/jhoicas/inventario-sucursales/pkg/logger"
)

type body = map[string]interface{}

// newAPI monta la API completa sobre el almacenamiento en memoria.
func newAPI(t *testing.T, secret string) *fiber.App {
	t.Helper()
	store := memory.NewStore(time.Second)
	productRepo := memory.NewProductRepository(store)
	variantRepo := memory.NewVariantRepository(store)
	branchRepo := memory.NewBranchRepository(store)
	inventoryRepo := memory.NewInventoryRepository(store)
	snapshotRepo := memory.NewSnapshotRepository(store)

	recorder := inventory.NewRecorder(memory.NewTxRunner(store), variantRepo, productRepo, branchRepo,
		logger.Nop(), inventory.RecorderConfig{SaleMotive: entity.MotiveSale})
	ledger := inventory.NewLedger(inventoryRepo, memory.NewTransactionRepository(store), snapshotRepo, variantRepo, branchRepo)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC: usecase.NewProductUseCase(productRepo, variantRepo, branchRepo, recorder),
		BranchUC:  usecase.NewBranchUseCase(branchRepo),
		Recorder:  recorder,
		Ledger:    ledger,
		Engine:    analytics.NewEngine(snapshotRepo, inventoryRepo, time.UTC, 10),
		Logger:    logger.Nop(),
		JWTSecret: secret,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path string, in interface{}, auth string) (int, body) {
	t.Helper()
	var reader *bytes.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out body
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

// seed crea una sucursal y un producto con una variante y stock inicial; devuelve (branchID, variantID).
func seed(t *testing.T, app *fiber.App, initial int, auth string) (string, string) {
	t.Helper()
	status, branch := call(t, app, http.MethodPost, "/api/v1/branches", body{"name": "Centro", "location": "Calle 10"}, auth)
	require.Equal(t, http.StatusCreated, status, branch)
	branchID := branch["id"].(string)

	status, product := call(t, app, http.MethodPost, "/api/v1/products", body{
		"sku":  "CAM-001",
		"name": "Camisa Oxford",
		"variants": []body{{
			"sku": "CAM-001-AZ-M", "model": "Oxford", "color": "Azul", "barcode": "7700001",
			"acquisition_cost": 10, "label_price": 25,
			"branch_id": branchID, "initial_stock": initial,
		}},
		"user_id": testUserID, "user_name": testUserName,
	}, auth)
	require.Equal(t, http.StatusCreated, status, product)
	variants := product["variants"].([]interface{})
	return branchID, variants[0].(map[string]interface{})["id"].(string)
}

func sale(variantID, branchID string, qty interface{}) body {
	return body{
		"variant_id": variantID, "branch_id": branchID, "quantity": qty,
		"unit_sale_price": 20, "user_id": testUserID, "user_name": testUserName,
	}
}

func TestAPI_VentaConStockInsuficiente(t *testing.T) {
	app := newAPI(t, "")
	branchID, variantID := seed(t, app, 5, "")

	status, out := call(t, app, http.MethodPost, "/api/v1/sales", sale(variantID, branchID, 3), "")
	require.Equal(t, http.StatusCreated, status, out)
	assert.NotEmpty(t, out["transaction_id"])
	assert.Equal(t, float64(2), out["resulting_quantity"])

	status, out = call(t, app, http.MethodPost, "/api/v1/sales", sale(variantID, branchID, 3), "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", out["code"])
	assert.Equal(t, float64(2), out["available"])

	status, out = call(t, app, http.MethodGet, "/api/v1/inventory/variants/"+variantID+"/branches/"+branchID, nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), out["quantity"])

	status, out = call(t, app, http.MethodGet, "/api/v1/inventory/reconcile", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, out["consistent"])
}

func TestAPI_CantidadFraccionaria(t *testing.T) {
	app := newAPI(t, "")
	branchID, variantID := seed(t, app, 5, "")

	status, out := call(t, app, http.MethodPost, "/api/v1/sales", sale(variantID, branchID, 1.5), "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_QUANTITY", out["code"])
}

func TestAPI_CantidadFueraDeRango(t *testing.T) {
	app := newAPI(t, "")
	branchID, variantID := seed(t, app, 5, "")

	huge := []json.Number{"18446744073709551611", "9223372036854775808", "-9223372036854775809", "1e30", "1000000001"}
	for _, n := range huge {
		t.Run(string(n), func(t *testing.T) {
			status, out := call(t, app, http.MethodPost, "/api/v1/sales", sale(variantID, branchID, n), "")
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "INVALID_QUANTITY", out["code"])

			status, out = call(t, app, http.MethodPost, "/api/v1/inventory/adjustments", body{
				"variant_id": variantID, "branch_id": branchID, "quantity": n,
				"motive": "ADJUSTMENT_SHORTAGE", "user_id": testUserID,
			}, "")
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "INVALID_QUANTITY", out["code"])

			status, out = call(t, app, http.MethodPost, "/api/v1/inventory/counts", body{
				"variant_id": variantID, "branch_id": branchID, "counted_quantity": n, "user_id": testUserID,
			}, "")
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "INVALID_QUANTITY", out["code"])

			status, out = call(t, app, http.MethodPost, "/api/v1/products", body{
				"name": "Pantalón", "user_id": testUserID,
				"variants": []body{{
					"sku": "PAN-" + string(n), "model": "Slim", "color": "Negro",
					"acquisition_cost": 10, "label_price": 25,
					"branch_id": branchID, "initial_stock": n,
				}},
			}, "")
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "INVALID_QUANTITY", out["code"])
		})
	}

	status, out := call(t, app, http.MethodGet, "/api/v1/inventory/variants/"+variantID+"/branches/"+branchID, nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(5), out["quantity"], "ningún movimiento fuera de rango se registra")

	status, out = call(t, app, http.MethodGet, "/api/v1/transactions", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, out["items"], 1, "solo el stock inicial")

	status, out = call(t, app, http.MethodGet, "/api/v1/products", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, out["items"], 1)
}

func TestAPI_AjusteConNombresAlternativos(t *testing.T) {
	app := newAPI(t, "")
	branchID, variantID := seed(t, app, 5, "")

	status, out := call(t, app, http.MethodPost, "/api/v1/inventory/adjustments", body{
		"variant_id": variantID, "branch_id": branchID, "signed_quantity": -5,
		"motive_id": "adjustment_surplus", "user_id": testUserID,
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_MOTIVE", out["code"])

	status, out = call(t, app, http.MethodPost, "/api/v1/inventory/adjustments", body{
		"variant_id": variantID, "branch_id": branchID, "signed_quantity": -2,
		"motive_id": "ADJUSTMENT_SHORTAGE", "user_id": testUserID,
	}, "")
	require.Equal(t, http.StatusCreated, status, out)
	assert.Equal(t, float64(3), out["resulting_quantity"])

	in := sale(variantID, branchID, 1)
	in["motive_id"] = "DIRECT_SALE"
	status, out = call(t, app, http.MethodPost, "/api/v1/sales", in, "")
	require.Equal(t, http.StatusCreated, status, out)

	status, out = call(t, app, http.MethodGet, "/api/v1/transactions?motive=DIRECT_SALE", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, out["items"], 1)
}

func TestAPI_AjusteConMotivoDeVenta(t *testing.T) {
	app := newAPI(t, "")
	branchID, variantID := seed(t, app, 5, "")

	status, out := call(t, app, http.MethodPost, "/api/v1/inventory/adjustments", body{
		"variant_id": variantID, "branch_id": branchID, "quantity": -1, "motive": "SALE", "user_id": testUserID,
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_MOTIVE", out["code"])

	status, out = call(t, app, http.MethodPost, "/api/v1/inventory/adjustments", body{
		"variant_id": variantID, "branch_id": branchID, "quantity": -2, "motive": "DAMAGE_LOSS", "user_id": testUserID,
	}, "")
	require.Equal(t, http.StatusCreated, status, out)
	assert.Equal(t, float64(3), out["resulting_quantity"])
}

func TestAPI_ConteoFisico(t *testing.T) {
	app := newAPI(t, "")
	branchID, variantID := seed(t, app, 5, "")

	status, out := call(t, app, http.MethodPost, "/api/v1/inventory/counts", body{
		"variant_id": variantID, "branch_id": branchID, "counted_quantity": 7, "user_id": testUserID,
	}, "")
	require.Equal(t, http.StatusCreated, status, out)
	assert.Equal(t, float64(7), out["resulting_quantity"])

	status, out = call(t, app, http.MethodGet, "/api/v1/transactions?motive=ADJUSTMENT_SURPLUS", nil, "")
	require.Equal(t, http.StatusOK, status)
	items := out["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, float64(2), items[0].(map[string]interface{})["quantity_delta"])
}

func TestAPI_VarianteInexistente(t *testing.T) {
	app := newAPI(t, "")
	branchID, _ := seed(t, app, 5, "")

	status, out := call(t, app, http.MethodPost, "/api/v1/sales", sale("no-existe", branchID, 1), "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", out["code"])
}

func TestAPI_SinUsuarioEnModoDesarrollo(t *testing.T) {
	app := newAPI(t, "")
	branchID, variantID := seed(t, app, 5, "")

	in := sale(variantID, branchID, 1)
	delete(in, "user_id")
	status, out := call(t, app, http.MethodPost, "/api/v1/sales", in, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", out["code"])
	details := out["details"].([]interface{})
	require.Len(t, details, 1)
	assert.Equal(t, "user_id", details[0].(map[string]interface{})["field"])
}

func TestAPI_EliminarProductoConStock(t *testing.T) {
	app := newAPI(t, "")
	_, variantID := seed(t, app, 5, "")

	status, variant := call(t, app, http.MethodGet, "/api/v1/variants/"+variantID, nil, "")
	require.Equal(t, http.StatusOK, status)
	productID := variant["product_id"].(string)

	status, out := call(t, app, http.MethodDelete, "/api/v1/products/"+productID, nil, "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "PRODUCT_HAS_STOCK", out["code"])
}

func TestAPI_SucursalDesactivadaRechazaMovimientos(t *testing.T) {
	app := newAPI(t, "")
	branchID, variantID := seed(t, app, 5, "")

	status, out := call(t, app, http.MethodDelete, "/api/v1/branches/"+branchID, nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, out["active"])

	status, out = call(t, app, http.MethodPost, "/api/v1/sales", sale(variantID, branchID, 1), "")
	assert.Equal(t, http.StatusBadRequest, status)
	details := out["details"].([]interface{})
	assert.Equal(t, "branch_id", details[0].(map[string]interface{})["field"])
}

func TestAPI_CodigoDeBarrasYMotivos(t *testing.T) {
	app := newAPI(t, "")
	_, variantID := seed(t, app, 0, "")

	status, out := call(t, app, http.MethodGet, "/api/v1/variants/barcode/7700001", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, variantID, out["id"])

	req := httptest.NewRequest(http.MethodGet, "/api/v1/motives", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var motives []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&motives))
	assert.Len(t, motives, len(entity.Motives))
	assert.Equal(t, "SALE", motives[0]["code"])
	assert.Equal(t, true, motives[0]["is_sale"])
}

func TestAPI_AgregacionTopSellersYRangoInvalido(t *testing.T) {
	app := newAPI(t, "")
	branchID, variantID := seed(t, app, 10, "")
	status, _ := call(t, app, http.MethodPost, "/api/v1/sales", sale(variantID, branchID, 4), "")
	require.Equal(t, http.StatusCreated, status)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/aggregation/top-sellers", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var top []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&top))
	require.Len(t, top, 1)
	assert.Equal(t, variantID, top[0]["variant_id"])
	assert.Equal(t, float64(4), top[0]["units_sold"])

	status, out := call(t, app, http.MethodGet, "/api/v1/aggregation/daily-trend?start=2026-13-01", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", out["code"])

	status, out = call(t, app, http.MethodGet, "/api/v1/dashboard/stats", nil, "")
	require.Equal(t, http.StatusOK, status)
	profit := out["profit"].(map[string]interface{})
	assert.Equal(t, float64(4), profit["units_sold"])
}

func TestAPI_RolesConJWT(t *testing.T) {
	app := newAPI(t, testJWTSecret)
	admin := tokenForRole(t, apphttp.RoleAdmin)
	branchID, variantID := seed(t, app, 5, admin)

	// bodeguero no vende
	status, out := call(t, app, http.MethodPost, "/api/v1/sales", sale(variantID, branchID, 1), tokenForRole(t, apphttp.RoleBodeguero))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", out["code"])

	// vendedor no ajusta
	status, _ = call(t, app, http.MethodPost, "/api/v1/inventory/adjustments", body{
		"variant_id": variantID, "branch_id": branchID, "quantity": 1, "motive": "ADJUSTMENT_SURPLUS",
	}, tokenForRole(t, apphttp.RoleVendedor))
	assert.Equal(t, http.StatusForbidden, status)

	// el usuario del movimiento sale del token, no del body
	in := sale(variantID, branchID, 1)
	in["user_id"] = "otro-usuario"
	status, out = call(t, app, http.MethodPost, "/api/v1/sales", in, tokenForRole(t, apphttp.RoleVendedor))
	require.Equal(t, http.StatusCreated, status, out)

	status, out = call(t, app, http.MethodGet, "/api/v1/sales/history", nil, tokenForRole(t, apphttp.RoleVendedor))
	require.Equal(t, http.StatusOK, status)
	items := out["items"].([]interface{})
	require.Len(t, items, 1)
	line := items[0].(map[string]interface{})
	assert.Equal(t, testUserID, line["user_id"])
	assert.Equal(t, float64(1), line["quantity"])

	// sin token
	status, _ = call(t, app, http.MethodGet, "/api/v1/inventory", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_OpenAPI(t *testing.T) {
	app := newAPI(t, testJWTSecret)
	status, out := call(t, app, http.MethodGet, "/api/v1/openapi.json", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2.0", out["swagger"])
	paths := out["paths"].(map[string]interface{})
	assert.Contains(t, paths, "/api/v1/sales")
	assert.Contains(t, paths, "/api/v1/dashboard/stats")
}
