package credit_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mayorista-api/internal/application/credit"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/memory"
)

type notice struct{ companyID, role, kind string }

type recordingNotifier struct {
	mu     sync.Mutex
	sent   []notice
	bodies []string
	err    error
}

func (n *recordingNotifier) NotifyRole(_ context.Context, companyID, role, kind, _, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notice{companyID, role, kind})
	n.bodies = append(n.bodies, body)
	return n.err
}

type brokenCustomers struct {
	repository.CustomerRepository
}

func (brokenCustomers) GetByID(context.Context, string) (*entity.Customer, error) {
	return nil, errors.New("conexión cerrada")
}

type fixture struct {
	db       *memory.DB
	store    repository.Store
	uc       *credit.UseCase
	notifier *recordingNotifier
	company  string
	customer string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.NewDB()
	store := db.Store()
	ctx := context.Background()
	companyID, customerID := uuid.NewString(), uuid.NewString()
	require.NoError(t, store.Companies.Create(ctx, &entity.Company{ID: companyID, Name: "Distribuidora", NIT: "900123456", Status: "active"}))
	require.NoError(t, store.Customers.Create(ctx, &entity.Customer{
		ID: customerID, CompanyID: companyID, Name: "Tienda La 14", TaxID: "800555111",
		Status: entity.CustomerActive, CreatedAt: time.Now().AddDate(-1, 0, 0),
	}))
	n := &recordingNotifier{}
	return &fixture{
		db: db, store: store, notifier: n, company: companyID, customer: customerID,
		uc: credit.NewUseCase(store, db, n, zerolog.Nop()),
	}
}

// activeTerms solicita y aprueba crédito por limit a 30 días.
func (f *fixture) activeTerms(t *testing.T, limit int64) *dto.CreditTermsResponse {
	t.Helper()
	ctx := context.Background()
	req, err := f.uc.Request(ctx, f.company, f.customer)
	require.NoError(t, err)
	out, err := f.uc.Approve(ctx, f.company, req.ID, "finanzas-1", dto.ApproveCreditRequest{
		CreditLimit: decimal.NewFromInt(limit), PaymentTermsDays: 30,
	})
	require.NoError(t, err)
	return out
}

func (f *fixture) charge(t *testing.T, amount int64) string {
	t.Helper()
	orderID := uuid.NewString()
	err := f.db.RunTx(context.Background(), func(tx repository.Store) error {
		return f.uc.ApplyInTx(context.Background(), tx, f.customer, orderID, decimal.NewFromInt(amount), "ventas-1")
	})
	require.NoError(t, err)
	return orderID
}

func TestRequest_CreaPendienteYAvisaAFinanzas(t *testing.T) {
	f := newFixture(t)
	out, err := f.uc.Request(context.Background(), f.company, f.customer)
	require.NoError(t, err)

	assert.Equal(t, entity.CreditPending, out.Status)
	assert.True(t, out.CreditLimit.IsZero())
	assert.Greater(t, out.EligibilityScore, 0)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, entity.RoleFinanzas, f.notifier.sent[0].role)

	_, err = f.uc.Request(context.Background(), f.company, f.customer)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestRequest_FallaDelAvisoNoRevierteLaSolicitud(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp caído")

	out, err := f.uc.Request(context.Background(), f.company, f.customer)
	require.NoError(t, err)
	assert.Equal(t, entity.CreditPending, out.Status)
	assert.Len(t, f.notifier.sent, 1)

	got, err := f.uc.GetByCustomer(context.Background(), f.company, f.customer)
	require.NoError(t, err)
	assert.Equal(t, out.ID, got.ID)
}

func TestRequest_ClienteDeOtraEmpresa(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Request(context.Background(), uuid.NewString(), f.customer)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRequest_RechazadoPuedeVolverASolicitar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req, err := f.uc.Request(ctx, f.company, f.customer)
	require.NoError(t, err)
	_, err = f.uc.Reject(ctx, f.company, req.ID)
	require.NoError(t, err)

	again, err := f.uc.Request(ctx, f.company, f.customer)
	require.NoError(t, err)
	assert.Equal(t, req.ID, again.ID)
	assert.Equal(t, entity.CreditPending, again.Status)
}

func TestApprove_ValidaPlazoYCupo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req, err := f.uc.Request(ctx, f.company, f.customer)
	require.NoError(t, err)

	cases := []dto.ApproveCreditRequest{
		{CreditLimit: decimal.NewFromInt(1000), PaymentTermsDays: 0},
		{CreditLimit: decimal.NewFromInt(1000), PaymentTermsDays: 181},
		{CreditLimit: decimal.Zero, PaymentTermsDays: 30},
	}
	for _, in := range cases {
		_, err := f.uc.Approve(ctx, f.company, req.ID, "u", in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}

	out, err := f.uc.Approve(ctx, f.company, req.ID, "u", dto.ApproveCreditRequest{CreditLimit: decimal.NewFromInt(1000), PaymentTermsDays: 180})
	require.NoError(t, err)
	assert.Equal(t, entity.CreditActive, out.Status)
	assert.True(t, out.Available.Equal(decimal.NewFromInt(1000)))
	require.NotNil(t, out.ApprovedAt)
}

func TestApplyInTx_RespetaDisponible(t *testing.T) {
	f := newFixture(t)
	f.activeTerms(t, 1000)
	f.charge(t, 600)

	err := f.db.RunTx(context.Background(), func(tx repository.Store) error {
		return f.uc.ApplyInTx(context.Background(), tx, f.customer, uuid.NewString(), decimal.NewFromInt(401), "u")
	})
	assert.ErrorIs(t, err, domain.ErrCreditLimitExceeded)

	got, err := f.uc.GetByCustomer(context.Background(), f.company, f.customer)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(600)), "el cargo rechazado no modifica el saldo")
	assert.True(t, got.Available.Equal(decimal.NewFromInt(400)))
}

func TestApplyInTx_CreditoSuspendido(t *testing.T) {
	f := newFixture(t)
	terms := f.activeTerms(t, 1000)
	_, err := f.uc.Suspend(context.Background(), f.company, terms.ID, "revisión")
	require.NoError(t, err)

	err = f.uc.CheckAvailable(context.Background(), f.customer, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrCreditNotActive)
}

func TestReleaseInTx_DevuelveLoPendiente(t *testing.T) {
	f := newFixture(t)
	f.activeTerms(t, 1000)
	orderID := f.charge(t, 300)
	ctx := context.Background()

	require.NoError(t, f.db.RunTx(ctx, func(tx repository.Store) error {
		return f.uc.ReleaseInTx(ctx, tx, orderID, "u")
	}))
	// Segunda liberación no hace nada.
	require.NoError(t, f.db.RunTx(ctx, func(tx repository.Store) error {
		return f.uc.ReleaseInTx(ctx, tx, orderID, "u")
	}))

	got, err := f.uc.GetByCustomer(ctx, f.company, f.customer)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())

	ledger, err := f.uc.Ledger(ctx, f.company, f.customer, 10, 0)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, entity.LedgerRelease, ledger[0].Type)
	assert.Equal(t, entity.LedgerCharge, ledger[1].Type)
}

func TestRecordPaymentInTx_PrimeroElPedidoLuegoLosAntiguos(t *testing.T) {
	f := newFixture(t)
	f.activeTerms(t, 5000)
	first := f.charge(t, 500)
	second := f.charge(t, 700)
	ctx := context.Background()

	// 900 al segundo pedido: salda 700 y aplica 200 al primero.
	require.NoError(t, f.db.RunTx(ctx, func(tx repository.Store) error {
		return f.uc.RecordPaymentInTx(ctx, tx, f.customer, decimal.NewFromInt(900), &second, "pasarela")
	}))

	c1, err := f.store.Credit.ChargeByOrder(ctx, first)
	require.NoError(t, err)
	c2, err := f.store.Credit.ChargeByOrder(ctx, second)
	require.NoError(t, err)
	assert.True(t, c2.Outstanding.IsZero())
	assert.NotNil(t, c2.SettledAt)
	assert.True(t, c1.Outstanding.Equal(decimal.NewFromInt(300)))

	got, err := f.uc.GetByCustomer(ctx, f.company, f.customer)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(300)))
}

func TestRecordPaymentInTx_ExcedenteNoDejaSaldoNegativo(t *testing.T) {
	f := newFixture(t)
	f.activeTerms(t, 5000)
	f.charge(t, 100)
	ctx := context.Background()

	require.NoError(t, f.db.RunTx(ctx, func(tx repository.Store) error {
		return f.uc.RecordPaymentInTx(ctx, tx, f.customer, decimal.NewFromInt(250), nil, "pasarela")
	}))
	got, err := f.uc.GetByCustomer(ctx, f.company, f.customer)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())

	ledger, err := f.uc.Ledger(ctx, f.company, f.customer, 10, 0)
	require.NoError(t, err)
	assert.Contains(t, ledger[0].Description, "excedente")
}

func TestAdjustLimit_NoPorDebajoDelSaldo(t *testing.T) {
	f := newFixture(t)
	terms := f.activeTerms(t, 1000)
	f.charge(t, 800)
	ctx := context.Background()

	_, err := f.uc.AdjustLimit(ctx, f.company, terms.ID, "u", dto.AdjustLimitRequest{CreditLimit: decimal.NewFromInt(700)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err := f.uc.AdjustLimit(ctx, f.company, terms.ID, "u", dto.AdjustLimitRequest{CreditLimit: decimal.NewFromInt(2000), Reason: "buen historial"})
	require.NoError(t, err)
	assert.True(t, out.Available.Equal(decimal.NewFromInt(1200)))

	ledger, err := f.uc.Ledger(ctx, f.company, f.customer, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, entity.LedgerAdjustment, ledger[0].Type)
	assert.True(t, ledger[0].Amount.Equal(decimal.NewFromInt(1000)))
}

// overdueCharge agrega un cargo vencido hace una semana directamente al libro.
func (f *fixture) overdueCharge(t *testing.T, termsID string) {
	t.Helper()
	due := time.Now().AddDate(0, 0, -7)
	oid := uuid.NewString()
	require.NoError(t, f.store.Credit.AddEntry(context.Background(), &entity.CreditLedgerEntry{
		ID: uuid.NewString(), CreditTermsID: termsID, CompanyID: f.company, CustomerID: f.customer,
		OrderID: &oid, Type: entity.LedgerCharge, Amount: decimal.NewFromInt(100), Outstanding: decimal.NewFromInt(100),
		BalanceAfter: decimal.NewFromInt(100), DueDate: &due, CreatedAt: due.AddDate(0, 0, -30),
	}))
}

func TestScanOverdue_SuspendeYNoReactivaConMora(t *testing.T) {
	f := newFixture(t)
	terms := f.activeTerms(t, 1000)
	f.overdueCharge(t, terms.ID)
	ctx := context.Background()

	n, err := f.uc.ScanOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.uc.GetByCustomer(ctx, f.company, f.customer)
	require.NoError(t, err)
	assert.Equal(t, entity.CreditSuspended, got.Status)
	assert.Equal(t, entity.SuspensionOverdue, got.SuspensionReason)

	_, err = f.uc.Reactivate(ctx, f.company, terms.ID)
	assert.ErrorIs(t, err, domain.ErrOverdueCharges)

	// Segunda corrida: ya no hay términos activos vencidos.
	n, err = f.uc.ScanOverdue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestScanOverdue_ClienteIlegibleAvisaConSuID(t *testing.T) {
	f := newFixture(t)
	terms := f.activeTerms(t, 1000)
	f.overdueCharge(t, terms.ID)

	store := f.store
	store.Customers = brokenCustomers{CustomerRepository: f.store.Customers}
	uc := credit.NewUseCase(store, f.db, f.notifier, zerolog.Nop())

	n, err := uc.ScanOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NotEmpty(t, f.notifier.bodies)
	assert.Contains(t, f.notifier.bodies[len(f.notifier.bodies)-1], f.customer)
}

func TestSuspend_RequiereMotivoYEstadoActivo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req, err := f.uc.Request(ctx, f.company, f.customer)
	require.NoError(t, err)

	_, err = f.uc.Suspend(ctx, f.company, req.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.Suspend(ctx, f.company, req.ID, "mora")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestLedger_SinTerminos(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Ledger(context.Background(), f.company, f.customer, 10, 0)
	assert.ErrorIs(t, err, domain.ErrCreditNotFound)
}
