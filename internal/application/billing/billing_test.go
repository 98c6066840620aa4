package billing_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mayorista-api/internal/application/billing"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/cache"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/memory"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/storage"
)

const secret = "whsec_test"

type creditSpy struct {
	mu       sync.Mutex
	payments []decimal.Decimal
	err      error
}

func (c *creditSpy) RecordPaymentInTx(_ context.Context, _ repository.Store, _ string, amount decimal.Decimal, _ *string, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.payments = append(c.payments, amount)
	return nil
}

type roleSpy struct {
	mu    sync.Mutex
	kinds []string
}

func (n *roleSpy) NotifyRole(_ context.Context, _, _, kind, _, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, kind)
	return nil
}

type fakeRenderer struct{ invoices, packing int }

func (r *fakeRenderer) RenderInvoice(_ context.Context, inv *entity.Invoice, _ *entity.Order, _ *entity.Company, _ *entity.Customer) ([]byte, error) {
	r.invoices++
	return []byte("%PDF-factura " + inv.Number), nil
}

func (r *fakeRenderer) RenderPackingList(_ context.Context, o *entity.Order, _ *entity.Company, _ *entity.Customer) ([]byte, error) {
	r.packing++
	return []byte("%PDF-empaque " + o.Number), nil
}

type fixture struct {
	db       *memory.DB
	store    repository.Store
	credit   *creditSpy
	notifier *roleSpy
	payments *billing.PaymentUseCase
	docs     *billing.DocumentUseCase
	renderer *fakeRenderer
	files    *storage.MemoryStore
	company  string
	customer string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.NewDB()
	store := db.Store()
	ctx := context.Background()
	f := &fixture{
		db: db, store: store,
		credit: &creditSpy{}, notifier: &roleSpy{},
		renderer: &fakeRenderer{}, files: storage.NewMemoryStore(),
		company: uuid.NewString(), customer: uuid.NewString(),
	}
	require.NoError(t, store.Companies.Create(ctx, &entity.Company{ID: f.company, Name: "Distribuidora", NIT: "900123456", Status: "active"}))
	require.NoError(t, store.Customers.Create(ctx, &entity.Customer{
		ID: f.customer, CompanyID: f.company, Name: "Tienda La 14", TaxID: "800555111", Status: entity.CustomerActive,
	}))
	f.payments = billing.NewPaymentUseCase(store, db, f.credit, cache.NewMemoryIdempotencyStore(), f.notifier, secret, zerolog.Nop())
	f.docs = billing.NewDocumentUseCase(store, f.renderer, f.files, zerolog.Nop())
	return f
}

func (f *fixture) order(t *testing.T, method string, total int64) *entity.Order {
	t.Helper()
	o := &entity.Order{
		ID: uuid.NewString(), CompanyID: f.company, CustomerID: f.customer,
		Number: "PED-" + uuid.NewString()[:8], Status: entity.OrderConfirmed,
		PaymentMethod: method, PaymentStatus: entity.PaymentUnpaid,
		Subtotal: decimal.NewFromInt(total), Total: decimal.NewFromInt(total),
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	require.NoError(t, f.store.Orders.Create(context.Background(), o))
	return o
}

func body(eventID, typ, orderID, amount string) []byte {
	return []byte(fmt.Sprintf(`{"id":%q,"type":%q,"data":{"order_id":%q,"amount":%q,"method":"pse"}}`, eventID, typ, orderID, amount))
}

func (f *fixture) deliver(raw []byte) (string, error) {
	return f.payments.HandleWebhook(context.Background(), raw, billing.Sign([]byte(secret), raw))
}

func TestVerifySignature(t *testing.T) {
	raw := []byte(`{"id":"evt_1"}`)
	sig := billing.Sign([]byte(secret), raw)

	assert.True(t, billing.VerifySignature([]byte(secret), raw, sig))
	assert.True(t, billing.VerifySignature([]byte(secret), raw, "sha256="+sig))
	assert.False(t, billing.VerifySignature([]byte(secret), []byte(`{"id":"evt_2"}`), sig))
	assert.False(t, billing.VerifySignature([]byte("otro"), raw, sig))
	assert.False(t, billing.VerifySignature([]byte(secret), raw, "zz"))
	assert.False(t, billing.VerifySignature(nil, raw, sig))
}

func TestHandleWebhook_FirmaInvalida(t *testing.T) {
	f := newFixture(t)
	_, err := f.payments.HandleWebhook(context.Background(), body("evt_1", billing.EventPaymentSucceeded, "x", "10"), "deadbeef")
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestHandleWebhook_PagoTotalMarcaFacturaPagada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.order(t, entity.PaymentMethodPrepaid, 500)
	inv, err := f.docs.IssueInvoice(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, entity.InvoiceIssued, inv.Status)

	res, err := f.deliver(body("evt_1", billing.EventPaymentSucceeded, o.ID, "200"))
	require.NoError(t, err)
	assert.Equal(t, billing.ResultProcessed, res)
	got, _ := f.store.Orders.GetByID(ctx, o.ID)
	assert.Equal(t, entity.PaymentPartial, got.PaymentStatus)

	res, err = f.deliver(body("evt_2", billing.EventPaymentSucceeded, o.ID, "300"))
	require.NoError(t, err)
	assert.Equal(t, billing.ResultProcessed, res)

	got, _ = f.store.Orders.GetByID(ctx, o.ID)
	assert.Equal(t, entity.PaymentPaid, got.PaymentStatus)
	assert.True(t, got.AmountPaid.Equal(decimal.NewFromInt(500)))
	paid, _ := f.store.Invoices.GetByOrderID(ctx, o.ID)
	assert.Equal(t, entity.InvoicePaid, paid.Status)
	assert.Empty(t, f.credit.payments, "prepago no toca el libro de crédito")
	assert.Equal(t, []string{"payment_received", "payment_received"}, f.notifier.kinds)
}

func TestHandleWebhook_EventoRepetido(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, entity.PaymentMethodPrepaid, 500)
	raw := body("evt_1", billing.EventPaymentSucceeded, o.ID, "100")

	res, err := f.deliver(raw)
	require.NoError(t, err)
	assert.Equal(t, billing.ResultProcessed, res)
	res, err = f.deliver(raw)
	require.NoError(t, err)
	assert.Equal(t, billing.ResultDuplicate, res)

	payments, _ := f.store.Payments.ListByOrder(context.Background(), o.ID)
	assert.Len(t, payments, 1)
}

func TestHandleWebhook_PagosConcurrentesSumanTodo(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, entity.PaymentMethodPrepaid, 500)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.deliver(body(fmt.Sprintf("evt_%d", i), billing.EventPaymentSucceeded, o.ID, "50"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := f.store.Orders.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.True(t, got.AmountPaid.Equal(decimal.NewFromInt(500)), "amount_paid = %s", got.AmountPaid)
	assert.Equal(t, entity.PaymentPaid, got.PaymentStatus)
	payments, _ := f.store.Payments.ListByOrder(context.Background(), o.ID)
	assert.Len(t, payments, 10)
}

func TestHandleWebhook_PedidoACreditoAbonaAlLibro(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, entity.PaymentMethodCredit, 800)

	_, err := f.deliver(body("evt_1", billing.EventPaymentSucceeded, o.ID, "800"))
	require.NoError(t, err)
	require.Len(t, f.credit.payments, 1)
	assert.True(t, f.credit.payments[0].Equal(decimal.NewFromInt(800)))
}

func TestHandleWebhook_FallaLiberaIdempotencia(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, entity.PaymentMethodCredit, 800)
	raw := body("evt_1", billing.EventPaymentSucceeded, o.ID, "800")
	f.credit.err = errors.New("libro bloqueado")

	_, err := f.deliver(raw)
	require.Error(t, err)
	got, _ := f.store.Orders.GetByID(context.Background(), o.ID)
	assert.True(t, got.AmountPaid.IsZero(), "la transacción se revierte")

	// La pasarela reintenta y esta vez se procesa.
	f.credit.err = nil
	res, err := f.deliver(raw)
	require.NoError(t, err)
	assert.Equal(t, billing.ResultProcessed, res)
}

func TestHandleWebhook_Validaciones(t *testing.T) {
	f := newFixture(t)
	_, err := f.deliver([]byte(`no-json`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.deliver([]byte(`{"type":"payment.succeeded"}`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.deliver(body("evt_1", billing.EventPaymentSucceeded, uuid.NewString(), "0"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.deliver(body("evt_2", billing.EventPaymentSucceeded, uuid.NewString(), "10"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	res, err := f.deliver(body("evt_3", "refund.created", uuid.NewString(), "10"))
	require.NoError(t, err)
	assert.Equal(t, billing.ResultIgnored, res)
}

func TestHandleWebhook_PagoRechazadoAvisaAFinanzas(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, entity.PaymentMethodPrepaid, 500)
	res, err := f.deliver(body("evt_1", billing.EventPaymentFailed, o.ID, "500"))
	require.NoError(t, err)
	assert.Equal(t, billing.ResultProcessed, res)
	assert.Equal(t, []string{"payment_failed"}, f.notifier.kinds)
}

func TestIssueInvoice_Idempotente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.order(t, entity.PaymentMethodPrepaid, 500)

	first, err := f.docs.IssueInvoice(ctx, o.ID)
	require.NoError(t, err)
	second, err := f.docs.IssueInvoice(ctx, o.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, f.renderer.invoices)
	assert.True(t, first.Total.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, first.IssueDate, first.DueDate, "prepago vence el mismo día")
	require.Len(t, f.files.Keys(), 1)

	doc, data, err := f.docs.GetDocument(ctx, f.company, o.ID, entity.DocumentInvoice)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Contains(t, string(data), first.Number)
}

func TestPackingList_YConsultaDeDocumentos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.order(t, entity.PaymentMethodPrepaid, 500)

	doc, err := f.docs.PackingList(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DocumentPackingList, doc.Kind)

	_, _, err = f.docs.GetDocument(ctx, f.company, o.ID, "remision")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, _, err = f.docs.GetDocument(ctx, uuid.NewString(), o.ID, entity.DocumentPackingList)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, _, err = f.docs.GetDocument(ctx, f.company, o.ID, entity.DocumentInvoice)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.docs.PackingList(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
