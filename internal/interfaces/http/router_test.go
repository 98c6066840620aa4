package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/Mayorista-api/internal/application/analytics"
	"github.com/jhoicas/Mayorista-api/internal/application/auth"
	"github.com/jhoicas/Mayorista-api/internal/application/billing"
	"github.com/jhoicas/Mayorista-api/internal/application/credit"
	"github.com/jhoicas/Mayorista-api/internal/application/crm"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/application/feed"
	"github.com/jhoicas/Mayorista-api/internal/application/notify"
	"github.com/jhoicas/Mayorista-api/internal/application/sales"
	"github.com/jhoicas/Mayorista-api/internal/application/standing"
	"github.com/jhoicas/Mayorista-api/internal/application/usecase"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/cache"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/memory"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/storage"
	apphttp "github.com/jhoicas/Mayorista-api/internal/interfaces/http"
)

const webhookSecret = "whsec_router_test"

type nopSender struct{}

func (nopSender) Send(context.Context, notify.EmailMessage) (int, error) { return 1, nil }

type webhookCounter struct{ results []string }

func (w *webhookCounter) WebhookHandled(result string) { w.results = append(w.results, result) }

type apiFixture struct {
	app      *fiber.App
	db       *memory.DB
	quotes   *sales.QuoteUseCase
	webhooks *webhookCounter
	customer string
	product  string
}

// newAPI arma la API completa sobre la base en memoria, con la empresa del token de prueba.
func newAPI(t *testing.T, modules ...string) *apiFixture {
	t.Helper()
	db := memory.NewDB()
	store := db.Store()
	ctx := context.Background()
	log := zerolog.Nop()

	require.NoError(t, store.Companies.Create(ctx, &entity.Company{ID: testCompanyID, Name: "Distribuidora", NIT: "900123456", Status: "active"}))
	for _, m := range modules {
		require.NoError(t, store.Companies.EnableModule(ctx, &entity.CompanyModule{ID: uuid.NewString(), CompanyID: testCompanyID, ModuleName: m, ActivatedAt: time.Now()}))
	}
	f := &apiFixture{db: db, customer: uuid.NewString(), product: uuid.NewString(), webhooks: &webhookCounter{}}
	require.NoError(t, store.Customers.Create(ctx, &entity.Customer{ID: f.customer, CompanyID: testCompanyID, Name: "Tienda Norte", TaxID: "800111222", Status: entity.CustomerActive}))
	require.NoError(t, store.Products.Create(ctx, &entity.Product{
		ID: f.product, CompanyID: testCompanyID, SKU: "ARZ-500", Name: "Arroz 500g",
		Price: decimal.NewFromInt(100), TaxRate: decimal.NewFromInt(19), Unit: "und", Active: true,
	}))

	notifier := notify.NewService(store.Notifications, store.Users, nopSender{}, log)
	creditUC := credit.NewUseCase(store, db, notifier, log)
	f.quotes = sales.NewQuoteUseCase(store, db, creditUC, notifier, sales.LinkConfig{
		Secret: testJWTSecret, Issuer: testIssuer, BaseURL: "http://localhost:8080", TTL: time.Hour,
	}, log)
	deps := apphttp.RouterDeps{
		CompanyUC:     usecase.NewCompanyUseCase(store.Companies),
		ProductUC:     usecase.NewProductUseCase(store.Products),
		CustomerUC:    usecase.NewCustomerUseCase(store.Customers),
		AuthUC:        auth.NewAuthUseCase(store.Users, store.Companies, auth.JWTConfig{Secret: testJWTSecret, Issuer: testIssuer, ExpMinutes: testExpMin}),
		ModuleService: usecase.NewModuleService(store.Companies, time.Minute),
		LeadUC:        crm.NewLeadUseCase(store, db, nil),
		QuoteUC:       f.quotes,
		OrderUC:       sales.NewOrderUseCase(store, db, creditUC),
		StandingUC:    standing.NewUseCase(store, db, f.quotes, creditUC, notifier, cache.NewMemoryLocker(), 2, log),
		CreditUC:      creditUC,
		DocumentUC:    billing.NewDocumentUseCase(store, pdf.NewRenderer(), storage.NewMemoryStore(), log),
		PaymentUC:     billing.NewPaymentUseCase(store, db, creditUC, cache.NewMemoryIdempotencyStore(), notifier, webhookSecret, log),
		Notifications: notifier,
		DashboardUC:   appanalytics.NewDashboardUseCase(db.Analytics()),
		Hub:           feed.NewHub(),
		Webhooks:      f.webhooks,
		JWTSecret:     testJWTSecret,
		PublicLimit:   3,
		Log:           log,
	}
	f.app = fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(f.app, deps)
	t.Cleanup(notifier.Wait)
	return f
}

func (f *apiFixture) do(t *testing.T, method, path, role string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func (f *apiFixture) orderBody(method string) dto.CreateOrderRequest {
	return dto.CreateOrderRequest{
		CustomerID:    f.customer,
		PaymentMethod: method,
		Items:         []dto.LineItemRequest{{ProductID: f.product, Quantity: decimal.NewFromInt(3)}},
	}
}

func decodeError(t *testing.T, raw []byte) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &e))
	return e
}

func TestRouter_ModuloNoContratado(t *testing.T) {
	f := newAPI(t)
	resp, body := f.do(t, http.MethodGet, "/api/orders", entity.RoleAdmin, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "MODULE_DISABLED", decodeError(t, body).Code)

	resp, _ = f.do(t, http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_ValidacionConDetalles(t *testing.T) {
	f := newAPI(t, entity.ModuleOrders)
	resp, body := f.do(t, http.MethodPost, "/api/orders", entity.RoleVentas, dto.CreateOrderRequest{PaymentMethod: "cheque"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	e := decodeError(t, body)
	assert.Equal(t, "VALIDATION", e.Code)
	fields := map[string]string{}
	for _, d := range e.Details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "campo requerido", fields["customer_id"])
	assert.Equal(t, "debe ser uno de: credit prepaid", fields["payment_method"])
	assert.Contains(t, fields, "items")
}

func TestRouter_PedidosFlujoYErrores(t *testing.T) {
	f := newAPI(t, entity.ModuleOrders)

	resp, _ := f.do(t, http.MethodPost, "/api/orders", entity.RoleFinanzas, f.orderBody(entity.PaymentMethodPrepaid))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "finanzas no crea pedidos")

	resp, body := f.do(t, http.MethodPost, "/api/orders", entity.RoleVentas, f.orderBody(entity.PaymentMethodPrepaid))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	var order dto.OrderResponse
	require.NoError(t, json.Unmarshal(body, &order))
	assert.Equal(t, entity.OrderPending, order.Status)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(357)), order.Total.String())

	resp, body = f.do(t, http.MethodPatch, "/api/orders/"+order.ID+"/status", entity.RoleVentas, dto.UpdateOrderStatusRequest{Status: entity.OrderDelivered})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", decodeError(t, body).Code)

	resp, _ = f.do(t, http.MethodGet, "/api/orders/"+uuid.NewString(), entity.RoleVentas, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	missing := uuid.NewString()
	resp, body = f.do(t, http.MethodPost, "/api/orders/bulk-status", entity.RoleVentas, dto.BulkUpdateStatusRequest{
		OrderIDs: []string{order.ID, missing}, Status: entity.OrderConfirmed,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var bulk dto.BulkUpdateStatusResponse
	require.NoError(t, json.Unmarshal(body, &bulk))
	assert.Equal(t, []string{order.ID}, bulk.Succeeded)
	require.Len(t, bulk.Failed, 1)
	assert.Equal(t, missing, bulk.Failed[0].OrderID)
	assert.Equal(t, "NOT_FOUND", bulk.Failed[0].Reason)

	resp, body = f.do(t, http.MethodGet, "/api/orders/"+order.ID+"/history", entity.RoleVentas, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), entity.OrderConfirmed)
}

func TestRouter_CreditoSinTerminos(t *testing.T) {
	f := newAPI(t, entity.ModuleOrders, entity.ModuleCredit)
	resp, body := f.do(t, http.MethodPost, "/api/orders", entity.RoleVentas, f.orderBody(entity.PaymentMethodCredit))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, "sin términos de crédito")
	assert.Equal(t, "CREDIT_NOT_FOUND", decodeError(t, body).Code)

	resp, _ = f.do(t, http.MethodGet, "/api/credit", entity.RoleVentas, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode, "solo finanzas lista créditos")
}

func TestRouter_WebhookDePagos(t *testing.T) {
	f := newAPI(t, entity.ModuleOrders)
	_, body := f.do(t, http.MethodPost, "/api/orders", entity.RoleVentas, f.orderBody(entity.PaymentMethodPrepaid))
	var order dto.OrderResponse
	require.NoError(t, json.Unmarshal(body, &order))

	payload := []byte(`{"id":"evt_1","type":"payment.succeeded","data":{"order_id":"` + order.ID + `","amount":"357","method":"pse"}}`)
	send := func(signature string) (*http.Response, []byte) {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewReader(payload))
		req.Header.Set(apphttp.SignatureHeader, signature)
		resp, err := f.app.Test(req, -1)
		require.NoError(t, err)
		raw, _ := io.ReadAll(resp.Body)
		return resp, raw
	}

	resp, raw := send("00ff")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_SIGNATURE", decodeError(t, raw).Code)

	sig := billing.Sign([]byte(webhookSecret), payload)
	resp, raw = send(sig)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	assert.JSONEq(t, `{"status":"processed"}`, string(raw))

	resp, raw = send(sig)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"duplicate"}`, string(raw))

	assert.Equal(t, []string{"invalid_signature", "processed", "duplicate"}, f.webhooks.results)
}

func TestRouter_PaginaPublicaDeCotizacion(t *testing.T) {
	f := newAPI(t, entity.ModuleOrders)

	req := httptest.NewRequest(http.MethodGet, "/public/quotes/respond?token=no-es-un-token", nil)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"))
	assert.Contains(t, string(raw), "Enlace inválido")
}

func TestRouter_FormularioPublicoConLimite(t *testing.T) {
	f := newAPI(t, entity.ModuleCRM)
	lead := dto.PublicLeadRequest{CompanyID: testCompanyID, ContactName: "Ana", Email: "ana@tienda.co"}

	resp, body := f.do(t, http.MethodPost, "/public/leads", "", lead)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	var out dto.LeadResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, entity.SourceWebForm, out.Source)

	f.do(t, http.MethodPost, "/public/leads", "", lead)
	f.do(t, http.MethodPost, "/public/leads", "", lead)
	resp, body = f.do(t, http.MethodPost, "/public/leads", "", lead)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMITED", decodeError(t, body).Code)
}

func TestRouter_NotificacionesYTablero(t *testing.T) {
	f := newAPI(t)
	resp, body := f.do(t, http.MethodGet, "/api/notifications/unread-count", entity.RoleFinanzas, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"unread":0}`, string(body))

	resp, body = f.do(t, http.MethodGet, "/api/dashboard/summary", entity.RoleAdmin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var summary dto.DashboardSummaryDTO
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Zero(t, summary.OpenQuotes)
}
