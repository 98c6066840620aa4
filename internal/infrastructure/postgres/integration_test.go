//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/Mayorista-api/internal/application/billing"
	"github.com/jhoicas/Mayorista-api/internal/application/credit"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/application/feed"
	"github.com/jhoicas/Mayorista-api/internal/application/sales"
	"github.com/jhoicas/Mayorista-api/internal/application/standing"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/cache"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/migration"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Mayorista-api/pkg/config"
)

// Ejecutar con: go test -tags integration ./internal/infrastructure/postgres/...

type env struct {
	cfg      config.DBConfig
	store    repository.Store
	tx       *postgres.TxRunner
	company  string
	customer string
	product  string
}

func startPostgres(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("mayorista_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "levantar PostgreSQL")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	mg, err := migration.New(dsn, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, mg.Up())
	require.NoError(t, mg.Close())

	cfg := config.DBConfig{DatabaseURL: dsn}
	pool, err := postgres.NewPool(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	e := &env{cfg: cfg, store: postgres.NewStore(pool), tx: postgres.NewTxRunner(pool),
		company: uuid.NewString(), customer: uuid.NewString(), product: uuid.NewString()}
	now := time.Now()
	require.NoError(t, e.store.Companies.Create(ctx, &entity.Company{ID: e.company, Name: "Distribuidora", NIT: "900123456", Status: "active", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, e.store.Customers.Create(ctx, &entity.Customer{
		ID: e.customer, CompanyID: e.company, Name: "Tienda Norte", TaxID: "800111222",
		Status: entity.CustomerActive, CreatedAt: now.AddDate(-1, 0, 0), UpdatedAt: now,
	}))
	require.NoError(t, e.store.Products.Create(ctx, &entity.Product{
		ID: e.product, CompanyID: e.company, SKU: "ARZ-500", Name: "Arroz 500g",
		Price: decimal.NewFromInt(100), TaxRate: decimal.NewFromInt(19), Unit: "und", Active: true,
		CreatedAt: now, UpdatedAt: now,
	}))
	return e
}

type nopNotifier struct{}

func (nopNotifier) NotifyRole(context.Context, string, string, string, string, string) error { return nil }

type chanBus chan feed.OrderEvent

func (b chanBus) Publish(_ context.Context, ev feed.OrderEvent) { b <- ev }

func TestIntegracion_CreditoYPedidos(t *testing.T) {
	e := startPostgres(t)
	ctx := context.Background()
	creditUC := credit.NewUseCase(e.store, e.tx, nopNotifier{}, zerolog.Nop())
	orders := sales.NewOrderUseCase(e.store, e.tx, creditUC)

	req, err := creditUC.Request(ctx, e.company, e.customer)
	require.NoError(t, err)
	_, err = creditUC.Approve(ctx, e.company, req.ID, "finanzas-1", dto.ApproveCreditRequest{
		CreditLimit: decimal.NewFromInt(1000), PaymentTermsDays: 30,
	})
	require.NoError(t, err)

	in := dto.CreateOrderRequest{
		CustomerID:    e.customer,
		PaymentMethod: entity.PaymentMethodCredit,
		Items:         []dto.LineItemRequest{{ProductID: e.product, Quantity: decimal.NewFromInt(5)}},
	}
	o, err := orders.Create(ctx, e.company, "ventas-1", in)
	require.NoError(t, err)
	assert.True(t, o.Total.Equal(decimal.NewFromInt(595)))

	// 595 + 595 supera el cupo de 1000: la segunda orden no queda registrada.
	_, err = orders.Create(ctx, e.company, "ventas-1", in)
	assert.ErrorIs(t, err, domain.ErrCreditLimitExceeded)
	list, err := orders.List(ctx, e.company, "", "", dto.PageRequest{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	_, err = orders.UpdateStatus(ctx, e.company, "ventas-1", o.ID, dto.UpdateOrderStatusRequest{Status: entity.OrderCancelled, Reason: "cliente desiste"})
	require.NoError(t, err)
	terms, err := creditUC.GetByCustomer(ctx, e.company, e.customer)
	require.NoError(t, err)
	assert.True(t, terms.Balance.IsZero(), "cancelar libera el cupo")

	ledger, err := creditUC.Ledger(ctx, e.company, e.customer, 10, 0)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, entity.LedgerRelease, ledger[0].Type)
	assert.Equal(t, entity.LedgerCharge, ledger[1].Type)
}

func TestIntegracion_PagosConcurrentesNoPierdenMonto(t *testing.T) {
	e := startPostgres(t)
	ctx := context.Background()
	now := time.Now()
	o := &entity.Order{
		ID: uuid.NewString(), CompanyID: e.company, CustomerID: e.customer, Number: "PED-9001",
		Status: entity.OrderConfirmed, PaymentMethod: entity.PaymentMethodPrepaid, PaymentStatus: entity.PaymentUnpaid,
		Subtotal: decimal.NewFromInt(400), Total: decimal.NewFromInt(400), CreatedBy: uuid.NewString(),
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, e.store.Orders.Create(ctx, o))

	const secret = "whsec_test"
	payments := billing.NewPaymentUseCase(e.store, e.tx, nil, cache.NewMemoryIdempotencyStore(), nopNotifier{}, secret, zerolog.Nop())
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			raw := []byte(fmt.Sprintf(`{"id":"evt_%d","type":%q,"data":{"order_id":%q,"amount":"50","method":"pse"}}`,
				i, billing.EventPaymentSucceeded, o.ID))
			_, err := payments.HandleWebhook(ctx, raw, billing.Sign([]byte(secret), raw))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := e.store.Orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, got.AmountPaid.Equal(decimal.NewFromInt(400)), "amount_paid = %s", got.AmountPaid)
	assert.Equal(t, entity.PaymentPaid, got.PaymentStatus)
}

type quoteSink struct{}

func (quoteSink) SendQuote(context.Context, *entity.Quote) error  { return nil }
func (quoteSink) EmailQuote(context.Context, *entity.Quote) error { return nil }

type creditOK struct{}

func (creditOK) CheckAvailable(context.Context, string, decimal.Decimal) error { return nil }

func TestIntegracion_GeneracionUnicaPorFecha(t *testing.T) {
	e := startPostgres(t)
	ctx := context.Background()
	uc := standing.NewUseCase(e.store, e.tx, quoteSink{}, creditOK{}, nopNotifier{}, cache.NewMemoryLocker(), 2, zerolog.Nop())

	dow := int(time.Now().Weekday())
	so, err := uc.Create(ctx, e.company, "ventas-1", dto.CreateStandingOrderRequest{
		CustomerID: e.customer,
		Name:       "Reposición semanal",
		Frequency:  "weekly",
		DayOfWeek:  &dow,
		StartDate:  time.Now().Format("2006-01-02"),
		Items:      []dto.StandingItemRequest{{ProductID: e.product, Quantity: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)

	_, err = uc.GenerateNow(ctx, e.company, so.ID)
	require.NoError(t, err)
	_, err = uc.GenerateNow(ctx, e.company, so.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyGenerated, "el índice único parcial impide duplicar la fecha")
}

func TestIntegracion_ListenerRecibeCambiosDeEstado(t *testing.T) {
	e := startPostgres(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connCfg, err := postgres.ConnConfig(e.cfg)
	require.NoError(t, err)
	bus := make(chanBus, 4)
	listener := postgres.NewListener(connCfg, config.FeedConfig{Channel: "order_events", MaxReconnects: 3, BaseBackoff: 100 * time.Millisecond}, bus, nil, zerolog.Nop())
	done := make(chan error, 1)
	go func() { done <- listener.Run(ctx) }()

	orders := sales.NewOrderUseCase(e.store, e.tx, nil)
	o, err := orders.Create(ctx, e.company, "ventas-1", dto.CreateOrderRequest{
		CustomerID:    e.customer,
		PaymentMethod: entity.PaymentMethodPrepaid,
		Items:         []dto.LineItemRequest{{ProductID: e.product, Quantity: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)
	time.Sleep(500 * time.Millisecond) // LISTEN activo antes del cambio

	_, err = orders.UpdateStatus(ctx, e.company, "ventas-1", o.ID, dto.UpdateOrderStatusRequest{Status: entity.OrderConfirmed})
	require.NoError(t, err)

	select {
	case ev := <-bus:
		assert.Equal(t, o.ID, ev.OrderID)
		assert.Equal(t, e.company, ev.CompanyID)
		assert.Equal(t, entity.OrderPending, ev.OldStatus)
		assert.Equal(t, entity.OrderConfirmed, ev.NewStatus)
	case <-time.After(10 * time.Second):
		t.Fatal("no llegó la notificación de order_events")
	}

	cancel()
	assert.NoError(t, <-done)
}
