package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/bizsuite/ledger-api/internal/application/analytics"
	"github.com/bizsuite/ledger-api/internal/application/billing"
	"github.com/bizsuite/ledger-api/internal/application/inventory"
	"github.com/bizsuite/ledger-api/internal/application/usecase"
	"github.com/bizsuite/ledger-api/internal/domain/entity"
	"github.com/bizsuite/ledger-api/internal/domain/transfer"
	"github.com/bizsuite/ledger-api/internal/infrastructure/memory"
	"github.com/bizsuite/ledger-api/internal/infrastructure/metrics"
	"github.com/bizsuite/ledger-api/internal/infrastructure/resilience"
	apphttp "github.com/bizsuite/ledger-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testOrg   = "org-1"
	testActor = "user-1"
)

type testEnv struct {
	app     *fiber.App
	backend *memory.Backend
	metrics *metrics.Metrics
}

// newTestEnv arma la API completa sobre el backend en memoria. wrap permite
// envolver el almacén que usa la conciliación; nil usa el del backend.
func newTestEnv(t *testing.T, wrap func(*memory.InventoryStore, *metrics.Metrics) transfer.InventoryStore) *testEnv {
	t.Helper()
	b := memory.NewBackend()
	m := metrics.New(metrics.Config{})
	log := zerolog.Nop()

	var store transfer.InventoryStore = b.Inventory
	if wrap != nil {
		store = wrap(b.Inventory, m)
	}

	app := fiber.New()
	app.Use(apphttp.RequestID(), apphttp.RequestLogger(log, m))
	apphttp.Router(app, apphttp.RouterDeps{
		InvoiceUC:       billing.NewInvoiceUseCase(b, b.Invoices, billing.InvoiceConfig{DisplayLocale: "en-US"}, m, log),
		TransferUC:      inventory.NewTransferUseCase(b.Transfers, b.Locations, store, m, log).WithLedger(b.Inventory),
		StockUC:         inventory.NewStockUseCase(b.Inventory, b.Locations, b.Inventory, log),
		ReplenishmentUC: inventory.NewReplenishmentUseCase(b.Inventory, b.Locations),
		LocationUC:      usecase.NewLocationUseCase(b.Locations, usecase.LocationConfig{SingleHeadquarters: true}, log),
		AnalyticsUC:     usecase.NewAnalyticsUseCase(b),
		DashboardUC:     appanalytics.NewDashboardUseCase(b),
	})
	return &testEnv{app: app, backend: b, metrics: m}
}

// do lanza la petición con las cabeceras de organización y actor y decodifica el JSON.
func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if headers == nil {
		headers = map[string]string{apphttp.HeaderOrganizationID: testOrg, apphttp.HeaderActorID: testActor}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (e *testEnv) createLocation(t *testing.T, code string, hq bool) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/locations", map[string]any{
		"code": code, "name": "Sede " + code, "is_headquarters": hq,
	}, nil)
	require.Equal(t, http.StatusCreated, status, body)
	return body["id"].(string)
}

func (e *testEnv) approvedTransfer(t *testing.T, from, to string, items ...map[string]any) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/transfers", map[string]any{
		"from_location_id": from, "to_location_id": to, "submit": true, "items": items,
	}, nil)
	require.Equal(t, http.StatusCreated, status, body)
	require.Equal(t, "pending", body["status"])
	id := body["id"].(string)

	status, body = e.do(t, http.MethodPost, "/api/transfers/"+id+"/approve", nil, nil)
	require.Equal(t, http.StatusOK, status, body)
	return id
}

// ──────────────────────────────────────────────────────────────────────────────
// Contexto de organización
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_SinOrganizacion_Retorna401(t *testing.T) {
	env := newTestEnv(t, nil)
	status, body := env.do(t, http.MethodGet, "/api/transfers", nil, map[string]string{})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_ORGANIZATION", body["code"])
}

func TestRouter_MutacionSinActor_Retorna401(t *testing.T) {
	env := newTestEnv(t, nil)
	status, body := env.do(t, http.MethodPost, "/api/transfers", map[string]any{},
		map[string]string{apphttp.HeaderOrganizationID: testOrg})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_ACTOR", body["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Facturas
// ──────────────────────────────────────────────────────────────────────────────

func TestInvoices_PreviewVehiculo(t *testing.T) {
	env := newTestEnv(t, nil)
	status, body := env.do(t, http.MethodPost, "/api/invoices/preview", map[string]any{
		"items":                 []map[string]any{{"name": "Scooter", "quantity": "1", "unit_rate": "650000", "gst_rate_percent": 18}},
		"rto_charges":           "15000",
		"insurance_charges":     "25000",
		"hypothecation_charges": "5000",
	}, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "812000", body["grand_total"])
	assert.Equal(t, "117000", body["total_gst"])
	display := body["display"].(map[string]any)
	assert.Equal(t, "812,000.00", display["grand_total"])
}

func TestInvoices_PreviewConNumerosJSON(t *testing.T) {
	env := newTestEnv(t, nil)
	status, body := env.do(t, http.MethodPost, "/api/invoices/preview", map[string]any{
		"items": []map[string]any{{"name": "Arandela", "quantity": 3, "unit_rate": 0.1, "gst_rate_percent": 0}},
	}, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "0.3", body["grand_total"], "los números JSON se leen como decimales exactos")
}

func TestInvoices_TasaInvalida_Retorna400(t *testing.T) {
	env := newTestEnv(t, nil)
	status, body := env.do(t, http.MethodPost, "/api/invoices/preview", map[string]any{
		"items": []map[string]any{{"quantity": "1", "unit_rate": "10", "gst_rate_percent": 19}},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])
}

func TestInvoices_CrearConsultarYDuplicado(t *testing.T) {
	env := newTestEnv(t, nil)
	req := map[string]any{
		"customer_id":    "cust-1",
		"invoice_number": "INV-0001",
		"invoice_date":   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		"items":          []map[string]any{{"name": "Casco", "quantity": "4", "unit_rate": "8500", "gst_rate_percent": 18}},
	}
	status, body := env.do(t, http.MethodPost, "/api/invoices", req, nil)
	require.Equal(t, http.StatusCreated, status, body)
	id := body["id"].(string)

	status, body = env.do(t, http.MethodGet, "/api/invoices/"+id, nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "INV-0001", body["invoice_number"])

	status, body = env.do(t, http.MethodPost, "/api/invoices", req, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", body["code"])

	status, _ = env.do(t, http.MethodGet, "/api/invoices/"+id, nil,
		map[string]string{apphttp.HeaderOrganizationID: "otra"})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestInvoices_CuerpoSinCampos_DetallePorCampo(t *testing.T) {
	env := newTestEnv(t, nil)
	status, body := env.do(t, http.MethodPost, "/api/invoices", map[string]any{"items": []any{}}, nil)
	require.Equal(t, http.StatusBadRequest, status)
	fields := body["fields"].(map[string]any)
	assert.Contains(t, fields, "customer_id")
	assert.Contains(t, fields, "invoice_number")
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslados
// ──────────────────────────────────────────────────────────────────────────────

func TestTransfers_FlujoCompletoConDiferencia(t *testing.T) {
	env := newTestEnv(t, nil)
	hq := env.createLocation(t, "HQ", true)
	br := env.createLocation(t, "BR1", false)
	env.backend.Inventory.Seed(hq, "helmet", decimal.NewFromInt(50))

	id := env.approvedTransfer(t, hq, br, map[string]any{"inventory_item_id": "helmet", "requested_quantity": "10"})

	status, body := env.do(t, http.MethodPost, "/api/transfers/"+id+"/complete", map[string]any{
		"items": []map[string]any{{"inventory_item_id": "helmet", "transferred_quantity": "10", "received_quantity": "8"}},
	}, nil)
	require.Equal(t, http.StatusOK, status, body)
	tr := body["transfer"].(map[string]any)
	assert.Equal(t, "completed", tr["status"])
	assert.Equal(t, "2", tr["total_transit_variance"])

	status, body = env.do(t, http.MethodGet, "/api/locations/"+hq+"/stock/helmet", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "40", body["current_stock"])
	_, body = env.do(t, http.MethodGet, "/api/locations/"+br+"/stock/helmet", nil, nil)
	assert.Equal(t, "8", body["current_stock"])

	status, body = env.do(t, http.MethodGet, "/api/transfers/"+id+"/ledger", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["entries"], 2)

	// Completar otra vez: transición inválida.
	status, body = env.do(t, http.MethodPost, "/api/transfers/"+id+"/complete", nil, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", body["code"])
}

func TestTransfers_MismaSede_Retorna400(t *testing.T) {
	env := newTestEnv(t, nil)
	hq := env.createLocation(t, "HQ", true)
	status, body := env.do(t, http.MethodPost, "/api/transfers", map[string]any{
		"from_location_id": hq, "to_location_id": hq,
		"items": []map[string]any{{"inventory_item_id": "a", "requested_quantity": "1"}},
	}, nil)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["fields"], "to_location_id")
}

func TestTransfers_AprobarBorrador_Retorna409(t *testing.T) {
	env := newTestEnv(t, nil)
	hq := env.createLocation(t, "HQ", true)
	br := env.createLocation(t, "BR1", false)
	status, body := env.do(t, http.MethodPost, "/api/transfers", map[string]any{
		"from_location_id": hq, "to_location_id": br,
		"items": []map[string]any{{"inventory_item_id": "a", "requested_quantity": "1"}},
	}, nil)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "draft", body["status"])

	status, body = env.do(t, http.MethodPost, "/api/transfers/"+body["id"].(string)+"/approve", nil, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", body["code"])
}

// failingDestination falla una sola vez el ingreso en destino de cada ítem que aún no está en failed.
type failingDestination struct {
	*memory.InventoryStore
	failed map[string]bool
}

func (f *failingDestination) Adjust(ctx context.Context, key entity.AdjustmentKey, delta decimal.Decimal) (decimal.Decimal, error) {
	if key.Direction == entity.DirectionIn && !f.failed[key.ItemID] {
		f.failed[key.ItemID] = true
		return decimal.Zero, errors.New("timeout de escritura")
	}
	return f.InventoryStore.Adjust(ctx, key, delta)
}

func TestTransfers_FallaParcial207YReintento(t *testing.T) {
	env := newTestEnv(t, func(s *memory.InventoryStore, _ *metrics.Metrics) transfer.InventoryStore {
		return &failingDestination{InventoryStore: s, failed: map[string]bool{"gloves": true}}
	})

	hq := env.createLocation(t, "HQ", true)
	br := env.createLocation(t, "BR1", false)
	env.backend.Inventory.Seed(hq, "helmet", decimal.NewFromInt(20))
	env.backend.Inventory.Seed(hq, "gloves", decimal.NewFromInt(20))

	id := env.approvedTransfer(t, hq, br,
		map[string]any{"inventory_item_id": "helmet", "requested_quantity": "5"},
		map[string]any{"inventory_item_id": "gloves", "requested_quantity": "5"},
	)

	status, body := env.do(t, http.MethodPost, "/api/transfers/"+id+"/complete", nil, nil)
	require.Equal(t, http.StatusMultiStatus, status, body)
	assert.Equal(t, "approved", body["transfer"].(map[string]any)["status"])
	failures := body["failures"].([]any)
	require.Len(t, failures, 1)
	assert.Equal(t, "helmet", failures[0].(map[string]any)["inventory_item_id"])
	assert.Equal(t, "destination", failures[0].(map[string]any)["side"])

	status, body = env.do(t, http.MethodPost, "/api/transfers/"+id+"/complete", nil, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "completed", body["transfer"].(map[string]any)["status"])

	// El reintento no descuenta dos veces en origen.
	_, body = env.do(t, http.MethodGet, "/api/locations/"+hq+"/stock/helmet", nil, nil)
	assert.Equal(t, "15", body["current_stock"])
	_, body = env.do(t, http.MethodGet, "/api/locations/"+br+"/stock/helmet", nil, nil)
	assert.Equal(t, "5", body["current_stock"])
}

type downStore struct{ *memory.InventoryStore }

func (downStore) Adjust(ctx context.Context, key entity.AdjustmentKey, delta decimal.Decimal) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("connection refused")
}

func TestTransfers_BreakerAbierto_Retorna503(t *testing.T) {
	env := newTestEnv(t, func(s *memory.InventoryStore, m *metrics.Metrics) transfer.InventoryStore {
		return resilience.NewBreakerStore(downStore{s},
			resilience.BreakerConfig{Name: "inventory", FailureThreshold: 1, Timeout: time.Minute},
			zerolog.Nop(), m)
	})

	hq := env.createLocation(t, "HQ", true)
	br := env.createLocation(t, "BR1", false)
	id := env.approvedTransfer(t, hq, br,
		map[string]any{"inventory_item_id": "a", "requested_quantity": "1"},
		map[string]any{"inventory_item_id": "b", "requested_quantity": "1"},
	)

	status, body := env.do(t, http.MethodPost, "/api/transfers/"+id+"/complete", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "STORE_UNAVAILABLE", body["code"])

	status, body = env.do(t, http.MethodGet, "/api/transfers/"+id, nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "approved", body["status"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Sedes, stock y reportes
// ──────────────────────────────────────────────────────────────────────────────

func TestLocations_CodigoDuplicadoYSegundaPrincipal(t *testing.T) {
	env := newTestEnv(t, nil)
	env.createLocation(t, "HQ", true)

	status, body := env.do(t, http.MethodPost, "/api/locations", map[string]any{"code": "HQ", "name": "Otra"}, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", body["code"])

	status, body = env.do(t, http.MethodPost, "/api/locations", map[string]any{"code": "HQ2", "name": "Otra", "is_headquarters": true}, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "HEADQUARTERS_TAKEN", body["code"])
}

func TestInventory_AjusteManualYReposicion(t *testing.T) {
	env := newTestEnv(t, nil)
	hq := env.createLocation(t, "HQ", true)

	status, body := env.do(t, http.MethodPut, "/api/locations/"+hq+"/stock/oil/levels",
		map[string]any{"min_stock_level": "10", "max_stock_level": "30"}, nil)
	require.Equal(t, http.StatusOK, status, body)

	status, body = env.do(t, http.MethodPost, "/api/locations/"+hq+"/stock/oil/adjust",
		map[string]any{"delta": "4", "reason": "conteo físico"}, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "4", body["current_stock"])
	assert.Equal(t, true, body["below_minimum"])

	req := httptest.NewRequest(http.MethodGet, "/api/locations/"+hq+"/replenishment", nil)
	req.Header.Set(apphttp.HeaderOrganizationID, testOrg)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "oil", list[0]["item_id"])
	assert.Equal(t, "26", list[0]["suggested_order_qty"])
}

func TestDashboardYAnalitica(t *testing.T) {
	env := newTestEnv(t, nil)
	env.createLocation(t, "HQ", true)

	status, body := env.do(t, http.MethodGet, "/api/dashboard/summary", nil, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.EqualValues(t, 1, body["active_locations"])

	status, body = env.do(t, http.MethodGet, "/api/analytics/transit-variance?start_date=2026-13-01", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])
}

func TestRequestID_SePropaga(t *testing.T) {
	env := newTestEnv(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/locations", nil)
	req.Header.Set(apphttp.HeaderOrganizationID, testOrg)
	req.Header.Set(apphttp.HeaderRequestID, "req-123")
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "req-123", resp.Header.Get(apphttp.HeaderRequestID))
}
