package standing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/application/standing"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/cache"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/memory"
)

const day = "2006-01-02"

type sentQuotes struct {
	mu  sync.Mutex
	ids []string
}

func (s *sentQuotes) SendQuote(_ context.Context, q *entity.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = append(s.ids, q.ID)
	return nil
}

func (s *sentQuotes) EmailQuote(_ context.Context, q *entity.Quote) error {
	if q.Status != entity.QuoteSent {
		return domain.ErrInvalidTransition
	}
	return s.SendQuote(context.Background(), q)
}

func (s *sentQuotes) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

type creditStub struct{ err error }

func (c creditStub) CheckAvailable(context.Context, string, decimal.Decimal) error { return c.err }

type roleNotices struct {
	mu    sync.Mutex
	kinds []string
}

func (n *roleNotices) NotifyRole(_ context.Context, _, role, kind, _, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, role+":"+kind)
	return nil
}

type busyLocker struct{}

func (busyLocker) TryLock(context.Context, string, time.Duration) (func(), bool, error) {
	return func() {}, false, nil
}

type fixture struct {
	store    repository.Store
	quotes   *sentQuotes
	notices  *roleNotices
	uc       *standing.UseCase
	company  string
	customer string
	product  string
}

func newFixture(t *testing.T, credit standing.CreditChecker, locker standing.Locker) *fixture {
	t.Helper()
	ctx := context.Background()
	db := memory.NewDB()
	store := db.Store()
	f := &fixture{store: store, quotes: &sentQuotes{}, notices: &roleNotices{},
		company: uuid.NewString(), customer: uuid.NewString(), product: uuid.NewString()}
	require.NoError(t, store.Companies.Create(ctx, &entity.Company{ID: f.company, Name: "Distribuidora", NIT: "900333444"}))
	require.NoError(t, store.Customers.Create(ctx, &entity.Customer{ID: f.customer, CompanyID: f.company, Name: "Panadería Central", TaxID: "1", Status: entity.CustomerActive}))
	require.NoError(t, store.Products.Create(ctx, &entity.Product{
		ID: f.product, CompanyID: f.company, SKU: "HAR-1K", Name: "Harina 1kg",
		Price: decimal.NewFromInt(50), TaxRate: decimal.Zero, Active: true,
	}))
	if credit == nil {
		credit = creditStub{}
	}
	if locker == nil {
		locker = cache.NewMemoryLocker()
	}
	f.uc = standing.NewUseCase(store, db, f.quotes, credit, f.notices, locker, 4, zerolog.Nop())
	return f
}

// weekly plantilla semanal que arrancó hace 4 semanas (su primera ocurrencia ya venció).
func (f *fixture) weekly(t *testing.T, mutate func(*dto.CreateStandingOrderRequest)) *dto.StandingOrderResponse {
	t.Helper()
	start := time.Now().AddDate(0, 0, -28)
	dow := int(start.Weekday())
	in := dto.CreateStandingOrderRequest{
		CustomerID: f.customer,
		Name:       "Reposición semanal",
		Frequency:  "weekly",
		DayOfWeek:  &dow,
		StartDate:  start.Format(day),
		Items:      []dto.StandingItemRequest{{ProductID: f.product, Quantity: decimal.NewFromInt(20)}},
	}
	if mutate != nil {
		mutate(&in)
	}
	out, err := f.uc.Create(context.Background(), f.company, "ventas-1", in)
	require.NoError(t, err)
	return out
}

func TestCreate_ValidaCalendario(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	base := dto.CreateStandingOrderRequest{
		CustomerID: f.customer, Name: "x", StartDate: time.Now().Format(day),
		Items: []dto.StandingItemRequest{{ProductID: f.product, Quantity: decimal.NewFromInt(1)}},
	}

	in := base
	in.Frequency = "weekly"
	_, err := f.uc.Create(ctx, f.company, "u", in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "weekly sin day_of_week")

	in = base
	in.Frequency = "monthly"
	_, err = f.uc.Create(ctx, f.company, "u", in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "monthly sin day_of_month")

	dom := 15
	in = base
	in.Frequency = "monthly"
	in.DayOfMonth = &dom
	in.EndDate = time.Now().AddDate(0, 0, -1).Format(day)
	_, err = f.uc.Create(ctx, f.company, "u", in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "end_date antes de start_date")
}

func TestCreate_CalculaProximaFecha(t *testing.T) {
	f := newFixture(t, nil, nil)
	so := f.weekly(t, nil)
	require.NotNil(t, so.NextRunDate)
	assert.Equal(t, so.StartDate, *so.NextRunDate)
	assert.Equal(t, entity.StandingActive, so.Status)
}

func TestRunDue_GeneraYAvanza(t *testing.T) {
	f := newFixture(t, nil, nil)
	so := f.weekly(t, nil)
	ctx := context.Background()

	res, err := f.uc.RunDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, dto.RunDueResponse{Processed: 1, Generated: 1}, *res)
	assert.Equal(t, 1, f.quotes.count())

	got, err := f.uc.Get(ctx, f.company, so.ID)
	require.NoError(t, err)
	start, _ := time.Parse(day, so.StartDate)
	assert.Equal(t, start.AddDate(0, 0, 7).Format(day), *got.NextRunDate)
	assert.NotNil(t, got.LastRunAt)

	history, err := f.uc.History(ctx, f.company, so.ID, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entity.GenerationGenerated, history[0].Status)
	assert.Equal(t, so.StartDate, history[0].ScheduledFor)
	assert.True(t, history[0].Total.Equal(decimal.NewFromInt(1000)))
}

func TestRunDue_WorkersConcurrentes(t *testing.T) {
	f := newFixture(t, nil, nil)
	for range 10 {
		f.weekly(t, nil)
	}
	res, err := f.uc.RunDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, res.Processed)
	assert.Equal(t, 10, res.Generated)
	assert.Equal(t, 10, f.quotes.count())
}

func TestGenerateNow_MismaOcurrenciaUnaVez(t *testing.T) {
	f := newFixture(t, nil, nil)
	so := f.weekly(t, nil)
	ctx := context.Background()

	g, err := f.uc.GenerateNow(ctx, f.company, so.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Now().Format(day), g.ScheduledFor)

	_, err = f.uc.GenerateNow(ctx, f.company, so.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyGenerated)
	assert.Equal(t, 1, f.quotes.count())
}

func TestGenerateNow_LockTomado(t *testing.T) {
	f := newFixture(t, nil, busyLocker{})
	so := f.weekly(t, nil)

	_, err := f.uc.GenerateNow(context.Background(), f.company, so.ID)
	assert.ErrorIs(t, err, domain.ErrGenerationInProgress)
	assert.Zero(t, f.quotes.count())
}

func TestGenerate_RequiereAprobacion(t *testing.T) {
	f := newFixture(t, nil, nil)
	so := f.weekly(t, func(in *dto.CreateStandingOrderRequest) { in.RequiresApproval = true })
	ctx := context.Background()

	g, err := f.uc.GenerateNow(ctx, f.company, so.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.GenerationPendingApproval, g.Status)
	assert.Zero(t, f.quotes.count(), "no se envía hasta aprobar")
	assert.Contains(t, f.notices.kinds, entity.RoleAdmin+":standing_pending_approval")

	approved, err := f.uc.ApproveGeneration(ctx, f.company, g.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, entity.GenerationApproved, approved.Status)
	assert.Equal(t, "admin-1", approved.DecidedBy)
	assert.Equal(t, 1, f.quotes.count())

	_, err = f.uc.ApproveGeneration(ctx, f.company, g.ID, "admin-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestApproveGeneration_CotizacionEnviadaEnLaMismaTransaccion(t *testing.T) {
	f := newFixture(t, nil, nil)
	so := f.weekly(t, func(in *dto.CreateStandingOrderRequest) { in.RequiresApproval = true })
	ctx := context.Background()

	g, err := f.uc.GenerateNow(ctx, f.company, so.ID)
	require.NoError(t, err)
	_, err = f.uc.ApproveGeneration(ctx, f.company, g.ID, "admin-1")
	require.NoError(t, err)

	q, err := f.store.Quotes.GetByID(ctx, *g.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, entity.QuoteSent, q.Status)
}

func TestApproveGeneration_CotizacionYaNoEsBorradorNoAprueba(t *testing.T) {
	f := newFixture(t, nil, nil)
	so := f.weekly(t, func(in *dto.CreateStandingOrderRequest) { in.RequiresApproval = true })
	ctx := context.Background()

	g, err := f.uc.GenerateNow(ctx, f.company, so.ID)
	require.NoError(t, err)
	ok, err := f.store.Quotes.UpdateStatus(ctx, *g.QuoteID, entity.QuoteDraft, entity.QuoteRejected, nil)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.uc.ApproveGeneration(ctx, f.company, g.ID, "admin-1")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Zero(t, f.quotes.count())

	history, err := f.uc.History(ctx, f.company, so.ID, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entity.GenerationPendingApproval, history[0].Status, "la generación queda pendiente para reintentar")
	assert.Empty(t, history[0].DecidedBy)
}

func TestGenerate_RechazoRechazaLaCotizacion(t *testing.T) {
	f := newFixture(t, nil, nil)
	so := f.weekly(t, func(in *dto.CreateStandingOrderRequest) { in.RequiresApproval = true })
	ctx := context.Background()

	g, err := f.uc.GenerateNow(ctx, f.company, so.ID)
	require.NoError(t, err)
	rejected, err := f.uc.RejectGeneration(ctx, f.company, g.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, entity.GenerationRejected, rejected.Status)

	q, err := f.store.Quotes.GetByID(ctx, *g.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, entity.QuoteRejected, q.Status)
}

func TestGenerate_RetenidaPorCredito(t *testing.T) {
	f := newFixture(t, creditStub{err: domain.ErrCreditLimitExceeded}, nil)
	so := f.weekly(t, func(in *dto.CreateStandingOrderRequest) { in.ApplyCredit = true })

	res, err := f.uc.RunDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.OnHold)
	assert.Zero(t, f.quotes.count())
	assert.Contains(t, f.notices.kinds, entity.RoleFinanzas+":standing_credit_hold")

	history, err := f.uc.History(context.Background(), f.company, so.ID, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entity.GenerationCreditHold, history[0].Status)
}

func TestGenerate_ProductoInactivoRegistraFalla(t *testing.T) {
	f := newFixture(t, nil, nil)
	so := f.weekly(t, nil)
	ctx := context.Background()
	p, err := f.store.Products.GetByID(ctx, f.product)
	require.NoError(t, err)
	p.Active = false
	require.NoError(t, f.store.Products.Update(ctx, p))

	res, err := f.uc.RunDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)

	got, err := f.uc.Get(ctx, f.company, so.ID)
	require.NoError(t, err)
	assert.Equal(t, so.NextRunDate, got.NextRunDate, "la próxima fecha no avanza tras una falla")

	history, err := f.uc.History(ctx, f.company, so.ID, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entity.GenerationFailed, history[0].Status)
	assert.NotEmpty(t, history[0].Error)
}

func TestPauseResumeCancel(t *testing.T) {
	f := newFixture(t, nil, nil)
	so := f.weekly(t, nil)
	ctx := context.Background()

	_, err := f.uc.Resume(ctx, f.company, so.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	paused, err := f.uc.Pause(ctx, f.company, so.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StandingPaused, paused.Status)

	res, err := f.uc.RunDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Processed, "las plantillas pausadas no se generan")

	resumed, err := f.uc.Resume(ctx, f.company, so.ID)
	require.NoError(t, err)
	require.NotNil(t, resumed.NextRunDate)
	assert.GreaterOrEqual(t, *resumed.NextRunDate, time.Now().Format(day), "al reanudar no se generan las semanas perdidas")

	cancelled, err := f.uc.Cancel(ctx, f.company, so.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StandingCancelled, cancelled.Status)
	assert.Nil(t, cancelled.NextRunDate)

	_, err = f.uc.Update(ctx, f.company, so.ID, dto.UpdateStandingOrderRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestResume_MismoDiaDeUnaGeneracionNoSeAtasca(t *testing.T) {
	f := newFixture(t, nil, nil)
	so := f.weekly(t, nil)
	ctx := context.Background()
	today := time.Now()

	_, err := f.uc.GenerateNow(ctx, f.company, so.ID)
	require.NoError(t, err)
	_, err = f.uc.Pause(ctx, f.company, so.ID)
	require.NoError(t, err)
	resumed, err := f.uc.Resume(ctx, f.company, so.ID)
	require.NoError(t, err)
	require.NotNil(t, resumed.NextRunDate)
	assert.Equal(t, today.AddDate(0, 0, 7).Format(day), *resumed.NextRunDate, "la ocurrencia de hoy ya se generó")

	for range 3 {
		res, err := f.uc.RunDue(ctx)
		require.NoError(t, err)
		assert.Zero(t, res.Processed)
	}
	assert.Equal(t, 1, f.quotes.count())
}

func TestRunDue_FechaYaGeneradaAvanza(t *testing.T) {
	f := newFixture(t, nil, nil)
	created := f.weekly(t, nil)
	ctx := context.Background()
	today := time.Now()

	_, err := f.uc.GenerateNow(ctx, f.company, created.ID)
	require.NoError(t, err)

	// Próxima fecha vuelta atrás a una ocurrencia que ya tiene generación.
	so, err := f.store.StandingOrders.GetByID(ctx, created.ID)
	require.NoError(t, err)
	stale := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local)
	so.NextRunDate = &stale
	require.NoError(t, f.store.StandingOrders.Update(ctx, so))

	res, err := f.uc.RunDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, dto.RunDueResponse{Processed: 1, Skipped: 1}, *res)

	got, err := f.uc.Get(ctx, f.company, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.NextRunDate)
	assert.Equal(t, today.AddDate(0, 0, 7).Format(day), *got.NextRunDate)

	res, err = f.uc.RunDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Processed)
}

func TestUpdate_CambioDeCalendarioRecalcula(t *testing.T) {
	f := newFixture(t, nil, nil)
	so := f.weekly(t, nil)
	freq, dom := "monthly", 1

	out, err := f.uc.Update(context.Background(), f.company, so.ID, dto.UpdateStandingOrderRequest{Frequency: &freq, DayOfMonth: &dom})
	require.NoError(t, err)
	require.NotNil(t, out.NextRunDate)
	next, err := time.Parse(day, *out.NextRunDate)
	require.NoError(t, err)
	assert.Equal(t, 1, next.Day())
	assert.GreaterOrEqual(t, *out.NextRunDate, time.Now().Format(day))
}

func TestUpdate_FinAnteriorAlInicio(t *testing.T) {
	f := newFixture(t, nil, nil)
	so := f.weekly(t, nil)
	start, err := time.Parse(day, so.StartDate)
	require.NoError(t, err)
	end := start.AddDate(0, 0, -1).Format(day)

	_, err = f.uc.Update(context.Background(), f.company, so.ID, dto.UpdateStandingOrderRequest{EndDate: &end})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := f.uc.Get(context.Background(), f.company, so.ID)
	require.NoError(t, err)
	assert.Nil(t, got.EndDate)
}

func TestGet_OtraEmpresa(t *testing.T) {
	f := newFixture(t, nil, nil)
	so := f.weekly(t, nil)
	_, err := f.uc.Get(context.Background(), uuid.NewString(), so.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
