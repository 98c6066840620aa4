// Package standing casos de uso de pedidos recurrentes: plantillas, generación programada,
// aprobación de ocurrencias y corrida del generador.
package standing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/application/sales"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
	"github.com/jhoicas/Mayorista-api/internal/domain/schedule"
)

const dateLayout = "2006-01-02"

// LockTTL vida máxima del lock de una ocurrencia.
const LockTTL = 2 * time.Minute

// Locker lock distribuido por clave. ok=false si otro proceso lo tiene.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

// QuoteSender envía una cotización generada al cliente.
type QuoteSender interface {
	SendQuote(ctx context.Context, q *entity.Quote) error
	// EmailQuote envía al cliente los enlaces de una cotización que ya está en sent.
	EmailQuote(ctx context.Context, q *entity.Quote) error
}

// CreditChecker verifica crédito activo con disponible suficiente.
type CreditChecker interface {
	CheckAvailable(ctx context.Context, customerID string, amount decimal.Decimal) error
}

// Notifier avisos internos.
type Notifier interface {
	NotifyRole(ctx context.Context, companyID, role, kind, title, body string) error
}

// UseCase casos de uso de pedidos recurrentes.
type UseCase struct {
	store    repository.Store
	tx       repository.TxRunner
	quotes   QuoteSender
	credit   CreditChecker
	notifier Notifier
	locker   Locker
	workers  int
	log      zerolog.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso. workers acota las generaciones concurrentes de RunDue.
func NewUseCase(store repository.Store, tx repository.TxRunner, quotes QuoteSender, credit CreditChecker,
	notifier Notifier, locker Locker, workers int, log zerolog.Logger) *UseCase {
	if workers <= 0 {
		workers = 1
	}
	return &UseCase{
		store:    store,
		tx:       tx,
		quotes:   quotes,
		credit:   credit,
		notifier: notifier,
		locker:   locker,
		workers:  workers,
		log:      log.With().Str("component", "standing_orders").Logger(),
		now:      time.Now,
	}
}

// Create valida la frecuencia y sus días, y calcula la primera ejecución.
func (uc *UseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateStandingOrderRequest) (*dto.StandingOrderResponse, error) {
	if err := schedule.Validate(in.Frequency, in.DayOfWeek, in.DayOfMonth); err != nil {
		return nil, err
	}
	start, err := time.ParseInLocation(dateLayout, in.StartDate, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date", domain.ErrInvalidInput)
	}
	end, err := parseOptionalDate(in.EndDate)
	if err != nil {
		return nil, err
	}
	if end != nil && end.Before(start) {
		return nil, fmt.Errorf("%w: end_date anterior a start_date", domain.ErrInvalidInput)
	}
	customer, err := uc.store.Customers.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	if customer.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	items, err := uc.items(ctx, companyID, in.Items)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	so := &entity.StandingOrder{
		ID:               uuid.New().String(),
		CompanyID:        companyID,
		CustomerID:       customer.ID,
		Name:             in.Name,
		Frequency:        in.Frequency,
		DayOfWeek:        in.DayOfWeek,
		DayOfMonth:       in.DayOfMonth,
		StartDate:        start,
		EndDate:          end,
		Status:           entity.StandingActive,
		RequiresApproval: in.RequiresApproval,
		ApplyCredit:      in.ApplyCredit,
		Notes:            in.Notes,
		CreatedBy:        userID,
		Items:            items,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	first, err := schedule.FirstRunDate(so.Frequency, so.DayOfWeek, so.DayOfMonth, start)
	if err != nil {
		return nil, err
	}
	uc.setNext(so, first)
	if err := uc.store.StandingOrders.Create(ctx, so); err != nil {
		return nil, err
	}
	return toResponse(so), nil
}

// Get devuelve la plantilla con sus líneas.
func (uc *UseCase) Get(ctx context.Context, companyID, id string) (*dto.StandingOrderResponse, error) {
	so, err := uc.load(ctx, uc.store, companyID, id)
	if err != nil {
		return nil, err
	}
	return toResponse(so), nil
}

// List plantillas de la empresa (filtro opcional por estado).
func (uc *UseCase) List(ctx context.Context, companyID, status string, page dto.PageRequest) ([]*dto.StandingOrderResponse, error) {
	page.DefaultPage()
	list, err := uc.store.StandingOrders.List(ctx, companyID, status, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.StandingOrderResponse, 0, len(list))
	for _, so := range list {
		out = append(out, toResponse(so))
	}
	return out, nil
}

// Update modifica líneas, notas, banderas o calendario. Si cambia el calendario se recalcula la próxima fecha.
func (uc *UseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateStandingOrderRequest) (*dto.StandingOrderResponse, error) {
	so, err := uc.load(ctx, uc.store, companyID, id)
	if err != nil {
		return nil, err
	}
	if so.Status == entity.StandingCancelled || so.Status == entity.StandingCompleted {
		return nil, fmt.Errorf("%w: pedido recurrente %s", domain.ErrInvalidTransition, so.Status)
	}
	scheduleChanged := false
	if in.Name != nil {
		so.Name = *in.Name
	}
	if in.Frequency != nil && *in.Frequency != so.Frequency {
		so.Frequency = *in.Frequency
		scheduleChanged = true
	}
	if in.DayOfWeek != nil {
		so.DayOfWeek = in.DayOfWeek
		scheduleChanged = true
	}
	if in.DayOfMonth != nil {
		so.DayOfMonth = in.DayOfMonth
		scheduleChanged = true
	}
	if in.EndDate != nil {
		end, err := parseOptionalDate(*in.EndDate)
		if err != nil {
			return nil, err
		}
		if end != nil && end.Before(so.StartDate) {
			return nil, fmt.Errorf("%w: end_date anterior a start_date", domain.ErrInvalidInput)
		}
		so.EndDate = end
		scheduleChanged = true
	}
	if in.RequiresApproval != nil {
		so.RequiresApproval = *in.RequiresApproval
	}
	if in.ApplyCredit != nil {
		so.ApplyCredit = *in.ApplyCredit
	}
	if in.Notes != nil {
		so.Notes = *in.Notes
	}
	if len(in.Items) > 0 {
		items, err := uc.items(ctx, companyID, in.Items)
		if err != nil {
			return nil, err
		}
		so.Items = items
	}
	if err := schedule.Validate(so.Frequency, so.DayOfWeek, so.DayOfMonth); err != nil {
		return nil, err
	}
	if scheduleChanged && so.Status == entity.StandingActive {
		if err := uc.reschedule(so); err != nil {
			return nil, err
		}
	}
	so.UpdatedAt = uc.now()
	if err := uc.store.StandingOrders.Update(ctx, so); err != nil {
		return nil, err
	}
	return toResponse(so), nil
}

// Pause active → paused. La próxima fecha se conserva solo como referencia.
func (uc *UseCase) Pause(ctx context.Context, companyID, id string) (*dto.StandingOrderResponse, error) {
	return uc.setStatus(ctx, companyID, id, entity.StandingActive, entity.StandingPaused)
}

// Resume paused → active, recalculando la próxima fecha desde hoy.
func (uc *UseCase) Resume(ctx context.Context, companyID, id string) (*dto.StandingOrderResponse, error) {
	return uc.setStatus(ctx, companyID, id, entity.StandingPaused, entity.StandingActive)
}

// Cancel active|paused → cancelled.
func (uc *UseCase) Cancel(ctx context.Context, companyID, id string) (*dto.StandingOrderResponse, error) {
	return uc.setStatus(ctx, companyID, id, "", entity.StandingCancelled)
}

func (uc *UseCase) setStatus(ctx context.Context, companyID, id, from, to string) (*dto.StandingOrderResponse, error) {
	so, err := uc.load(ctx, uc.store, companyID, id)
	if err != nil {
		return nil, err
	}
	switch {
	case from != "" && so.Status != from:
		return nil, fmt.Errorf("%w: pedido recurrente %s → %s", domain.ErrInvalidTransition, so.Status, to)
	case from == "" && so.Status != entity.StandingActive && so.Status != entity.StandingPaused:
		return nil, fmt.Errorf("%w: pedido recurrente %s → %s", domain.ErrInvalidTransition, so.Status, to)
	}
	so.Status = to
	switch to {
	case entity.StandingActive:
		if err := uc.reschedule(so); err != nil {
			return nil, err
		}
	case entity.StandingCancelled:
		so.NextRunDate = nil
	}
	so.UpdatedAt = uc.now()
	if err := uc.store.StandingOrders.Update(ctx, so); err != nil {
		return nil, err
	}
	return toResponse(so), nil
}

// GenerateNow genera manualmente la ocurrencia de hoy.
func (uc *UseCase) GenerateNow(ctx context.Context, companyID, id string) (*dto.GenerationResponse, error) {
	so, err := uc.load(ctx, uc.store, companyID, id)
	if err != nil {
		return nil, err
	}
	if so.Status != entity.StandingActive {
		return nil, fmt.Errorf("%w: el pedido recurrente está %s", domain.ErrInvalidTransition, so.Status)
	}
	g, err := uc.Generate(ctx, so, schedule.Day(uc.now()))
	if err != nil {
		return nil, err
	}
	return toGenerationResponse(g), nil
}

// History filas de generación de la plantilla (más recientes primero).
func (uc *UseCase) History(ctx context.Context, companyID, id string, page dto.PageRequest) ([]*dto.GenerationResponse, error) {
	if _, err := uc.load(ctx, uc.store, companyID, id); err != nil {
		return nil, err
	}
	page.DefaultPage()
	rows, err := uc.store.StandingOrders.ListGenerations(ctx, id, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.GenerationResponse, 0, len(rows))
	for _, g := range rows {
		out = append(out, toGenerationResponse(g))
	}
	return out, nil
}

// ApproveGeneration pending_approval → approved y la cotización draft → sent en la misma transacción;
// luego envía los enlaces al cliente.
func (uc *UseCase) ApproveGeneration(ctx context.Context, companyID, generationID, userID string) (*dto.GenerationResponse, error) {
	var g *entity.StandingOrderGeneration
	var q *entity.Quote
	err := uc.tx.RunTx(ctx, func(tx repository.Store) error {
		var err error
		if g, q, err = uc.decideInTx(ctx, tx, companyID, generationID, userID, entity.GenerationApproved); err != nil {
			return err
		}
		ok, err := tx.Quotes.UpdateStatus(ctx, q.ID, entity.QuoteDraft, entity.QuoteSent, nil)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: la cotización ya no está en borrador", domain.ErrConflict)
		}
		q.Status = entity.QuoteSent
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := uc.quotes.EmailQuote(ctx, q); err != nil {
		uc.log.Error().Err(err).Str("quote_id", q.ID).Msg("enviar cotización aprobada")
	}
	return toGenerationResponse(g), nil
}

// RejectGeneration pending_approval → rejected y rechaza la cotización en borrador.
func (uc *UseCase) RejectGeneration(ctx context.Context, companyID, generationID, userID string) (*dto.GenerationResponse, error) {
	var out *entity.StandingOrderGeneration
	err := uc.tx.RunTx(ctx, func(tx repository.Store) error {
		g, q, err := uc.decideInTx(ctx, tx, companyID, generationID, userID, entity.GenerationRejected)
		if err != nil {
			return err
		}
		ok, err := tx.Quotes.UpdateStatus(ctx, q.ID, entity.QuoteDraft, entity.QuoteRejected, nil)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: la cotización ya no está en borrador", domain.ErrConflict)
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toGenerationResponse(out), nil
}

func (uc *UseCase) decideInTx(ctx context.Context, tx repository.Store, companyID, generationID, userID, to string) (*entity.StandingOrderGeneration, *entity.Quote, error) {
	g, err := tx.StandingOrders.GetGeneration(ctx, generationID)
	if err != nil {
		return nil, nil, err
	}
	if g == nil {
		return nil, nil, domain.ErrNotFound
	}
	if g.CompanyID != companyID {
		return nil, nil, domain.ErrForbidden
	}
	if g.Status != entity.GenerationPendingApproval || g.QuoteID == nil {
		return nil, nil, fmt.Errorf("%w: generación %s", domain.ErrInvalidTransition, g.Status)
	}
	q, err := tx.Quotes.GetByID(ctx, *g.QuoteID)
	if err != nil {
		return nil, nil, err
	}
	if q == nil {
		return nil, nil, domain.ErrNotFound
	}
	now := uc.now()
	g.Status = to
	g.DecidedBy = userID
	g.DecidedAt = &now
	if err := tx.StandingOrders.UpdateGeneration(ctx, g); err != nil {
		return nil, nil, err
	}
	return g, q, nil
}

// RunDue genera todas las plantillas activas con próxima fecha <= hoy usando un pool de workers.
// Cada plantilla genera la ocurrencia de su próxima fecha; las atrasadas se ponen al día en corridas sucesivas.
func (uc *UseCase) RunDue(ctx context.Context) (*dto.RunDueResponse, error) {
	today := schedule.Day(uc.now())
	due, err := uc.store.StandingOrders.ListDue(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("listar pedidos recurrentes pendientes: %w", err)
	}
	res := &dto.RunDueResponse{}
	if len(due) == 0 {
		return res, nil
	}

	jobs := make(chan *entity.StandingOrder)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < min(uc.workers, len(due)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for so := range jobs {
				g, err := uc.Generate(ctx, so, *so.NextRunDate)
				mu.Lock()
				res.Processed++
				switch {
				case errors.Is(err, domain.ErrGenerationInProgress), errors.Is(err, domain.ErrAlreadyGenerated):
					res.Skipped++
				case err != nil:
					res.Failed++
				case g.Status == entity.GenerationGenerated:
					res.Generated++
				case g.Status == entity.GenerationPendingApproval:
					res.Pending++
				case g.Status == entity.GenerationCreditHold:
					res.OnHold++
				}
				mu.Unlock()
			}
		}()
	}
	for _, so := range due {
		if so.NextRunDate == nil {
			continue
		}
		select {
		case jobs <- so:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	uc.log.Info().
		Int("processed", res.Processed).
		Int("generated", res.Generated).
		Int("pending_approval", res.Pending).
		Int("credit_hold", res.OnHold).
		Int("failed", res.Failed).
		Int("skipped", res.Skipped).
		Msg("corrida de pedidos recurrentes")
	return res, ctx.Err()
}

// Generate materializa la ocurrencia scheduledFor de la plantilla como una cotización en borrador.
// El lock standing:<id>:<fecha> impide generar la misma ocurrencia en paralelo y la fila única de
// generación impide repetirla. Una falla queda registrada como generación failed y la próxima fecha
// no avanza, así la corrida siguiente la reintenta.
func (uc *UseCase) Generate(ctx context.Context, so *entity.StandingOrder, scheduledFor time.Time) (*entity.StandingOrderGeneration, error) {
	scheduledFor = schedule.Day(scheduledFor)
	key := fmt.Sprintf("standing:%s:%s", so.ID, scheduledFor.Format(dateLayout))
	release, ok, err := uc.locker.TryLock(ctx, key, LockTTL)
	if err != nil {
		return nil, fmt.Errorf("tomar lock %s: %w", key, err)
	}
	if !ok {
		return nil, domain.ErrGenerationInProgress
	}
	defer release()

	log := uc.log.With().Str("standing_order_id", so.ID).Str("scheduled_for", scheduledFor.Format(dateLayout)).Logger()

	items, err := sales.PriceLines(ctx, uc.store.Products, so.CompanyID, lineInputs(so.Items))
	if err != nil {
		return uc.fail(ctx, so, scheduledFor, err, log)
	}
	q := sales.NewDraftQuote(so.CompanyID, so.CustomerID, so.CreatedBy, so.Notes, 0, items, uc.now())
	soID := so.ID
	q.StandingOrderID = &soID

	status := entity.GenerationGenerated
	if so.ApplyCredit {
		if err := uc.credit.CheckAvailable(ctx, so.CustomerID, q.Total); err != nil {
			if !isCreditError(err) {
				return uc.fail(ctx, so, scheduledFor, err, log)
			}
			status = entity.GenerationCreditHold
			log.Warn().Err(err).Msg("generación retenida por crédito")
		}
	}
	if status == entity.GenerationGenerated && so.RequiresApproval {
		status = entity.GenerationPendingApproval
	}

	quoteID := q.ID
	g := &entity.StandingOrderGeneration{
		ID:              uuid.New().String(),
		StandingOrderID: so.ID,
		CompanyID:       so.CompanyID,
		ScheduledFor:    scheduledFor,
		QuoteID:         &quoteID,
		Status:          status,
		Total:           q.Total,
		CreatedAt:       uc.now(),
	}
	err = uc.tx.RunTx(ctx, func(tx repository.Store) error {
		if err := tx.StandingOrders.CreateGeneration(ctx, g); err != nil {
			return err
		}
		if err := tx.Quotes.Create(ctx, q); err != nil {
			return err
		}
		uc.advance(so, scheduledFor)
		return tx.StandingOrders.Update(ctx, so)
	})
	if errors.Is(err, domain.ErrAlreadyGenerated) {
		uc.skipGenerated(ctx, so, scheduledFor, log)
		return nil, err
	}
	if err != nil {
		return uc.fail(ctx, so, scheduledFor, err, log)
	}

	switch status {
	case entity.GenerationGenerated:
		if err := uc.quotes.SendQuote(ctx, q); err != nil {
			log.Error().Err(err).Str("quote_id", q.ID).Msg("enviar cotización generada")
		}
	case entity.GenerationPendingApproval:
		uc.notify(ctx, so, entity.RoleAdmin, "standing_pending_approval", "Pedido recurrente por aprobar",
			fmt.Sprintf("La ocurrencia %s de %q espera aprobación (cotización %s).", scheduledFor.Format(dateLayout), so.Name, q.Number))
	case entity.GenerationCreditHold:
		uc.notify(ctx, so, entity.RoleFinanzas, "standing_credit_hold", "Pedido recurrente retenido por crédito",
			fmt.Sprintf("La ocurrencia %s de %q quedó retenida: crédito insuficiente para %s.", scheduledFor.Format(dateLayout), so.Name, q.Total.StringFixed(2)))
	}
	log.Info().Str("status", status).Str("quote_id", q.ID).Msg("ocurrencia generada")
	return g, nil
}

func (uc *UseCase) fail(ctx context.Context, so *entity.StandingOrder, scheduledFor time.Time, cause error, log zerolog.Logger) (*entity.StandingOrderGeneration, error) {
	g := &entity.StandingOrderGeneration{
		ID:              uuid.New().String(),
		StandingOrderID: so.ID,
		CompanyID:       so.CompanyID,
		ScheduledFor:    scheduledFor,
		Status:          entity.GenerationFailed,
		Error:           cause.Error(),
		Total:           decimal.Zero,
		CreatedAt:       uc.now(),
	}
	if err := uc.store.StandingOrders.CreateGeneration(ctx, g); err != nil {
		log.Error().Err(err).Msg("registrar generación fallida")
	}
	log.Error().Err(cause).Msg("generación de pedido recurrente fallida")
	return nil, fmt.Errorf("generar pedido recurrente %s: %w", so.ID, cause)
}

// advance mueve la próxima fecha después de scheduledFor (solo si no está ya más adelante)
// o completa la plantilla cuando supera la fecha fin.
func (uc *UseCase) advance(so *entity.StandingOrder, scheduledFor time.Time) {
	now := uc.now()
	so.LastRunAt = &now
	so.UpdatedAt = now
	if so.NextRunDate != nil && so.NextRunDate.After(scheduledFor) {
		return
	}
	next, err := schedule.NextDate(so.Frequency, so.DayOfWeek, so.DayOfMonth, scheduledFor)
	if err != nil {
		so.Status = entity.StandingCompleted
		so.NextRunDate = nil
		return
	}
	uc.setNext(so, next)
}

// skipGenerated mueve la próxima fecha cuando apunta a una ocurrencia que ya tiene generación;
// si no, ListDue devolvería la misma fecha en cada corrida.
func (uc *UseCase) skipGenerated(ctx context.Context, so *entity.StandingOrder, scheduledFor time.Time, log zerolog.Logger) {
	if so.Status != entity.StandingActive || so.NextRunDate == nil || schedule.Day(*so.NextRunDate).After(scheduledFor) {
		return
	}
	next, err := schedule.NextDate(so.Frequency, so.DayOfWeek, so.DayOfMonth, scheduledFor)
	if err != nil {
		so.Status = entity.StandingCompleted
		so.NextRunDate = nil
	} else {
		uc.setNext(so, next)
	}
	so.UpdatedAt = uc.now()
	if err := uc.store.StandingOrders.Update(ctx, so); err != nil {
		log.Error().Err(err).Msg("avanzar próxima fecha ya generada")
		return
	}
	log.Warn().Msg("ocurrencia ya generada, próxima fecha avanzada")
}

// reschedule recalcula la próxima fecha desde hoy (o desde el inicio si aún no llega). Si ya hubo
// una corrida hoy, parte de mañana para no volver a una fecha generada.
func (uc *UseCase) reschedule(so *entity.StandingOrder) error {
	now := uc.now()
	from := schedule.Day(now)
	if so.StartDate.After(from) {
		from = so.StartDate
	}
	if so.LastRunAt != nil {
		if after := schedule.Day(so.LastRunAt.In(now.Location())).AddDate(0, 0, 1); after.After(from) {
			from = after
		}
	}
	next, err := schedule.FirstRunDate(so.Frequency, so.DayOfWeek, so.DayOfMonth, from)
	if err != nil {
		return err
	}
	uc.setNext(so, next)
	return nil
}

func (uc *UseCase) setNext(so *entity.StandingOrder, next time.Time) {
	if schedule.PastEnd(next, so.EndDate) {
		so.Status = entity.StandingCompleted
		so.NextRunDate = nil
		return
	}
	so.NextRunDate = &next
}

func (uc *UseCase) notify(ctx context.Context, so *entity.StandingOrder, role, kind, title, body string) {
	if err := uc.notifier.NotifyRole(ctx, so.CompanyID, role, kind, title, body); err != nil {
		uc.log.Warn().Err(err).Str("standing_order_id", so.ID).Msg("avisar generación")
	}
}

func (uc *UseCase) items(ctx context.Context, companyID string, in []dto.StandingItemRequest) ([]entity.StandingOrderItem, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: se requiere al menos una línea", domain.ErrInvalidInput)
	}
	out := make([]entity.StandingOrderItem, 0, len(in))
	for _, it := range in {
		if !it.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: cantidad debe ser mayor a cero", domain.ErrInvalidInput)
		}
		if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: precio negativo", domain.ErrInvalidInput)
		}
		p, err := uc.store.Products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil || p.CompanyID != companyID {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, it.ProductID)
		}
		out = append(out, entity.StandingOrderItem{
			ID:        uuid.New().String(),
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return out, nil
}

func (uc *UseCase) load(ctx context.Context, store repository.Store, companyID, id string) (*entity.StandingOrder, error) {
	so, err := store.StandingOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if so == nil {
		return nil, domain.ErrNotFound
	}
	if so.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return so, nil
}

func lineInputs(items []entity.StandingOrderItem) []sales.LineInput {
	out := make([]sales.LineInput, 0, len(items))
	for _, it := range items {
		out = append(out, sales.LineInput{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return out
}

func isCreditError(err error) bool {
	return errors.Is(err, domain.ErrCreditNotFound) ||
		errors.Is(err, domain.ErrCreditNotActive) ||
		errors.Is(err, domain.ErrCreditLimitExceeded)
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha %q", domain.ErrInvalidInput, s)
	}
	return &t, nil
}

func toResponse(so *entity.StandingOrder) *dto.StandingOrderResponse {
	r := &dto.StandingOrderResponse{
		ID:               so.ID,
		CustomerID:       so.CustomerID,
		Name:             so.Name,
		Frequency:        so.Frequency,
		DayOfWeek:        so.DayOfWeek,
		DayOfMonth:       so.DayOfMonth,
		StartDate:        so.StartDate.Format(dateLayout),
		LastRunAt:        so.LastRunAt,
		Status:           so.Status,
		RequiresApproval: so.RequiresApproval,
		ApplyCredit:      so.ApplyCredit,
		Notes:            so.Notes,
		Items:            make([]dto.StandingItemResponse, 0, len(so.Items)),
		CreatedAt:        so.CreatedAt,
		UpdatedAt:        so.UpdatedAt,
	}
	if so.EndDate != nil {
		s := so.EndDate.Format(dateLayout)
		r.EndDate = &s
	}
	if so.NextRunDate != nil {
		s := so.NextRunDate.Format(dateLayout)
		r.NextRunDate = &s
	}
	for _, it := range so.Items {
		r.Items = append(r.Items, dto.StandingItemResponse{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return r
}

func toGenerationResponse(g *entity.StandingOrderGeneration) *dto.GenerationResponse {
	return &dto.GenerationResponse{
		ID:              g.ID,
		StandingOrderID: g.StandingOrderID,
		ScheduledFor:    g.ScheduledFor.Format(dateLayout),
		QuoteID:         g.QuoteID,
		Status:          g.Status,
		Error:           g.Error,
		Total:           g.Total,
		DecidedBy:       g.DecidedBy,
		DecidedAt:       g.DecidedAt,
		CreatedAt:       g.CreatedAt,
	}
}
