package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/tienda-api/internal/application/analytics"
	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/application/sales"
	"github.com/jhoicas/tienda-api/internal/application/usecase"
	"github.com/jhoicas/tienda-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/tienda-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/tienda-api/internal/interfaces/http"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// buildTestApp arma la API completa sobre el store en memoria.
func buildTestApp(t *testing.T, locker *inventory.ItemLocker) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	log := logger.Nop()
	if locker == nil {
		locker = inventory.NewItemLocker(time.Second)
	}
	itemUC := usecase.NewItemUseCase(store.Items(), store, locker, 10)
	deps := apphttp.RouterDeps{
		ItemUC:          itemUC,
		MoveUC:          inventory.NewMoveUseCase(store, store.Items(), store.Movements(), locker, log),
		ReplenishmentUC: inventory.NewReplenishmentUseCase(store.Items(), store.Transactions(), 10),
		SellUC:          sales.NewSellUseCase(store, locker, nil, log),
		LedgerUC:        sales.NewLedgerUseCase(store.Transactions(), nil, time.Minute, log),
		DashboardUC:     appanalytics.NewDashboardUseCase(itemUC, store.Transactions()),
		ReportUC:        appanalytics.NewReportUseCase(store.Transactions(), infrapdf.NewMarotoPDFGenerator("test")),
	}
	app := fiber.New(fiber.Config{Immutable: true, ErrorHandler: apphttp.ErrorHandler})
	app.Use(apphttp.RequestLogger(log))
	apphttp.Router(app, deps)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rdr = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			rdr = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func createItem(t *testing.T, app *fiber.App, name, location string, qty int64) dto.ItemResponse {
	t.Helper()
	resp, raw := doJSON(t, app, http.MethodPost, "/items", map[string]any{
		"name": name, "category": "bebidas", "buy_price": 10, "sell_price": 25,
		"weight": 1, "quantity": qty, "location": location,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	return decode[dto.ItemResponse](t, raw)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestItems_CrearListarObtener(t *testing.T) {
	app := buildTestApp(t, nil)
	created := createItem(t, app, "Café", "warehouse", 10)
	assert.NotEmpty(t, created.ID)

	resp, raw := doJSON(t, app, http.MethodGet, "/items?location=warehouse", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	list := decode[[]dto.ItemResponse](t, raw)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	resp, _ = doJSON(t, app, http.MethodGet, "/items/"+created.ID, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, raw = doJSON(t, app, http.MethodGet, "/items/missing", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, raw).Code)
}

func TestItems_ErroresDeEntrada(t *testing.T) {
	app := buildTestApp(t, nil)

	resp, raw := doJSON(t, app, http.MethodPost, "/items", "{not json")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", decode[dto.ErrorResponse](t, raw).Code)

	resp, raw = doJSON(t, app, http.MethodPost, "/items", map[string]any{"name": "x", "category": "y", "location": "roof"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, raw).Code)

	resp, _ = doJSON(t, app, http.MethodGet, "/items?location=roof", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestItems_BulkYStats(t *testing.T) {
	app := buildTestApp(t, nil)
	resp, raw := doJSON(t, app, http.MethodPost, "/items/bulk", []map[string]any{
		{"name": "Té", "category": "bebidas", "quantity": 0, "location": "shop"},
		{"name": "Agua", "category": "bebidas", "quantity": 3, "location": "shop"},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	assert.Len(t, decode[[]dto.ItemResponse](t, raw), 2)

	resp, raw = doJSON(t, app, http.MethodGet, "/items/stats", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	st := decode[dto.ItemStatsResponse](t, raw)
	assert.Equal(t, 1, st.OutOfStockItems)
	assert.Equal(t, 1, st.LowStockItems)
}

func TestItems_UpdateYDelete(t *testing.T) {
	app := buildTestApp(t, nil)
	created := createItem(t, app, "Café", "shop", 5)

	resp, raw := doJSON(t, app, http.MethodPut, "/items/"+created.ID, map[string]any{"name": "Café molido"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "Café molido", decode[dto.ItemResponse](t, raw).Name)

	resp, _ = doJSON(t, app, http.MethodPut, "/items/"+created.ID, map[string]any{"quantity": 50})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/items/"+created.ID, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodDelete, "/items/"+created.ID, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestMoveYSell_FlujoCompleto(t *testing.T) {
	app := buildTestApp(t, nil)
	created := createItem(t, app, "Café", "warehouse", 10)

	resp, raw := doJSON(t, app, http.MethodPut, "/items/"+created.ID+"/move", map[string]any{"to_location": "shop", "quantity": 4})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	moved := decode[dto.MoveItemResponse](t, raw)
	assert.Equal(t, int64(6), moved.Source.Quantity)
	assert.Equal(t, int64(4), moved.Destination.Quantity)
	shopID := moved.Destination.ID

	resp, raw = doJSON(t, app, http.MethodPut, "/items/"+created.ID+"/move", map[string]any{"to_location": "warehouse", "quantity": 1})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "INVALID_DESTINATION", decode[dto.ErrorResponse](t, raw).Code)

	resp, raw = doJSON(t, app, http.MethodPut, "/items/"+created.ID+"/move", map[string]any{"to_location": "shop", "quantity": 99})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", decode[dto.ErrorResponse](t, raw).Code)

	resp, raw = doJSON(t, app, http.MethodPost, "/items/"+shopID+"/sell", map[string]any{"quantity": 2, "discount": 10})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	tx := decode[dto.TransactionResponse](t, raw)
	assert.True(t, decimal.RequireFromString("45").Equal(tx.Total), "2 * 25 * 0.9")

	resp, raw = doJSON(t, app, http.MethodPost, "/items/"+shopID+"/sell", map[string]any{"quantity": 1, "discount": 150})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "INVALID_DISCOUNT", decode[dto.ErrorResponse](t, raw).Code)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/movements?item_id="+created.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.MovementResponse](t, raw), 1)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/transactions", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.TransactionResponse](t, raw), 1)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/transactions/"+tx.ID, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodGet, "/api/transactions/missing", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/transactions/item/"+shopID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.TransactionResponse](t, raw), 1)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/reports/summary", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	sum := decode[dto.SalesSummaryDTO](t, raw)
	assert.Equal(t, 1, sum.TransactionCount)
	assert.True(t, decimal.RequireFromString("25").Equal(sum.Profit))

	resp, raw = doJSON(t, app, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	dash := decode[dto.DashboardSummaryDTO](t, raw)
	assert.Equal(t, 1, dash.Today.TransactionCount)
	assert.Len(t, dash.TopItems, 1)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/reports/replenishment", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	repl := decode[struct {
		Total          int                              `json:"total"`
		Replenishments []dto.ReplenishmentSuggestionDTO `json:"replenishments"`
	}](t, raw)
	require.Equal(t, 1, repl.Total)
	assert.Equal(t, shopID, repl.Replenishments[0].ShopItemID)
	assert.Equal(t, int64(6), repl.Replenishments[0].SuggestedMoveQty)
}

func TestReports_SalesPDF(t *testing.T) {
	app := buildTestApp(t, nil)

	resp, raw := doJSON(t, app, http.MethodGet, "/api/reports/sales.pdf?from=2026-01-01", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "ventas_")
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))

	resp, _ = doJSON(t, app, http.MethodGet, "/api/reports/summary?from=2026-05-01&to=2026-01-01", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestConcurrencyTimeout_Devuelve503ConRetryAfter(t *testing.T) {
	locker := inventory.NewItemLocker(20 * time.Millisecond)
	app := buildTestApp(t, locker)
	created := createItem(t, app, "Café", "shop", 5)

	unlock, err := locker.Lock(t.Context(), created.ID)
	require.NoError(t, err)
	defer unlock()

	resp, raw := doJSON(t, app, http.MethodPost, "/items/"+created.ID+"/sell", map[string]any{"quantity": 1})
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get(fiber.HeaderRetryAfter))
	assert.Equal(t, "CONCURRENCY_TIMEOUT", decode[dto.ErrorResponse](t, raw).Code)
}

func TestListados_SinLimitDevuelvenTodo(t *testing.T) {
	app := buildTestApp(t, nil)
	for i := range 30 {
		createItem(t, app, fmt.Sprintf("Item %02d", i), "shop", 1)
	}
	stock := createItem(t, app, "Galletas", "warehouse", 40)

	resp, raw := doJSON(t, app, http.MethodGet, "/items", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.ItemResponse](t, raw), 31)

	resp, raw = doJSON(t, app, http.MethodGet, "/items?limit=5&offset=28", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.ItemResponse](t, raw), 3)

	// 25 traslados de 1 unidad: el primero crea el registro de tienda, el resto se fusiona
	var shopID string
	for range 25 {
		resp, raw = doJSON(t, app, http.MethodPut, "/items/"+stock.ID+"/move", map[string]any{"to_location": "shop", "quantity": 1})
		require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
		shopID = decode[dto.MoveItemResponse](t, raw).Destination.ID
	}
	for range 22 {
		resp, raw = doJSON(t, app, http.MethodPost, "/items/"+shopID+"/sell", map[string]any{"quantity": 1})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	}

	resp, raw = doJSON(t, app, http.MethodGet, "/api/movements", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.MovementResponse](t, raw), 25)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/transactions", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.TransactionResponse](t, raw), 22)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/transactions/item/"+shopID+"?limit=10", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.TransactionResponse](t, raw), 10)
}

func TestMovimientos_ItemIDSobreviveAOtrosRequests(t *testing.T) {
	app := buildTestApp(t, nil)
	created := createItem(t, app, "Café", "warehouse", 10)

	resp, raw := doJSON(t, app, http.MethodPut, "/items/"+created.ID+"/move", map[string]any{"to_location": "shop", "quantity": 3})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))

	// Requests intermedios que reutilizan los buffers de la conexión
	other := createItem(t, app, "Té", "shop", 2)
	doJSON(t, app, http.MethodGet, "/items/"+other.ID, nil)
	doJSON(t, app, http.MethodGet, "/api/transactions/item/ffffffff-ffff-ffff-ffff-ffffffffffff", nil)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/movements", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	all := decode[[]dto.MovementResponse](t, raw)
	require.Len(t, all, 1)
	assert.Equal(t, created.ID, all[0].ItemID)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/movements?item_id="+created.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.MovementResponse](t, raw), 1)

	// El lock del ítem sigue siendo uno solo: otro traslado del mismo ítem funciona
	resp, raw = doJSON(t, app, http.MethodPut, "/items/"+created.ID+"/move", map[string]any{"to_location": "shop", "quantity": 2})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
}

func TestTransacciones_RutasSinPrefijoApi(t *testing.T) {
	app := buildTestApp(t, nil)
	created := createItem(t, app, "Café", "shop", 5)
	resp, raw := doJSON(t, app, http.MethodPost, "/items/"+created.ID+"/sell", map[string]any{"quantity": 2})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(raw))
	tx := decode[dto.TransactionResponse](t, raw)

	resp, raw = doJSON(t, app, http.MethodGet, "/transactions/"+tx.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, tx.ID, decode[dto.TransactionResponse](t, raw).ID)

	resp, raw = doJSON(t, app, http.MethodGet, "/transactions/item/"+created.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.TransactionResponse](t, raw), 1)

	resp, _ = doJSON(t, app, http.MethodGet, "/transactions/missing", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRutaInexistente(t *testing.T) {
	app := buildTestApp(t, nil)
	resp, raw := doJSON(t, app, http.MethodGet, "/nope", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, raw).Code)
}
