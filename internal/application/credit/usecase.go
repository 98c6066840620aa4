// Package credit casos de uso de términos de crédito y del libro de crédito por cliente.
package credit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	domcredit "github.com/jhoicas/Mayorista-api/internal/domain/credit"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

// Notifier avisos internos usados por crédito.
type Notifier interface {
	NotifyRole(ctx context.Context, companyID, role, kind, title, body string) error
}

// UseCase casos de uso de crédito.
type UseCase struct {
	store    repository.Store
	tx       repository.TxRunner
	notifier Notifier
	log      zerolog.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(store repository.Store, tx repository.TxRunner, notifier Notifier, log zerolog.Logger) *UseCase {
	return &UseCase{
		store:    store,
		tx:       tx,
		notifier: notifier,
		log:      log.With().Str("component", "credit").Logger(),
		now:      time.Now,
	}
}

// Request crea términos pending para el cliente con su puntaje de elegibilidad.
// Un cliente con términos rechazados puede volver a solicitar.
func (uc *UseCase) Request(ctx context.Context, companyID, customerID string) (*dto.CreditTermsResponse, error) {
	customer, err := uc.store.Customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	if customer.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	score, suggested, err := uc.eligibility(ctx, customer)
	if err != nil {
		return nil, err
	}
	now := uc.now()

	terms, err := uc.store.Credit.GetTermsByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if terms != nil {
		if terms.Status != entity.CreditRejected {
			return nil, domain.ErrDuplicate
		}
		terms.Status = entity.CreditPending
		terms.EligibilityScore = score
		terms.UpdatedAt = now
		if err := uc.store.Credit.UpdateTerms(ctx, terms); err != nil {
			return nil, err
		}
		return toTermsResponse(terms, suggested), nil
	}

	terms = &entity.CreditTerms{
		ID:               uuid.New().String(),
		CompanyID:        companyID,
		CustomerID:       customerID,
		Status:           entity.CreditPending,
		CreditLimit:      decimal.Zero,
		Balance:          decimal.Zero,
		EligibilityScore: score,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.store.Credit.CreateTerms(ctx, terms); err != nil {
		return nil, err
	}
	if err := uc.notifier.NotifyRole(ctx, companyID, entity.RoleFinanzas, "credit_request",
		"Nueva solicitud de crédito", fmt.Sprintf("%s solicitó crédito (puntaje %d).", customer.Name, score),
	); err != nil {
		uc.log.Warn().Err(err).Str("credit_terms_id", terms.ID).Msg("avisar a finanzas")
	}
	return toTermsResponse(terms, suggested), nil
}

// Approve activa los términos con el cupo y plazo indicados.
func (uc *UseCase) Approve(ctx context.Context, companyID, termsID, userID string, in dto.ApproveCreditRequest) (*dto.CreditTermsResponse, error) {
	if !in.CreditLimit.IsPositive() || in.PaymentTermsDays < domcredit.MinTermsDays || in.PaymentTermsDays > domcredit.MaxTermsDays {
		return nil, domain.ErrInvalidInput
	}
	return uc.transition(ctx, companyID, termsID, func(t *entity.CreditTerms) error {
		if t.Status != entity.CreditPending && t.Status != entity.CreditRejected {
			return fmt.Errorf("%w: crédito %s → active", domain.ErrInvalidTransition, t.Status)
		}
		if in.CreditLimit.LessThan(t.Balance) {
			return fmt.Errorf("%w: el cupo no puede ser menor al saldo", domain.ErrInvalidInput)
		}
		now := uc.now()
		t.Status = entity.CreditActive
		t.CreditLimit = in.CreditLimit
		t.PaymentTermsDays = in.PaymentTermsDays
		t.SuspensionReason = ""
		t.ApprovedBy = userID
		t.ApprovedAt = &now
		return nil
	})
}

// Reject rechaza una solicitud pendiente.
func (uc *UseCase) Reject(ctx context.Context, companyID, termsID string) (*dto.CreditTermsResponse, error) {
	return uc.transition(ctx, companyID, termsID, func(t *entity.CreditTerms) error {
		if t.Status != entity.CreditPending {
			return fmt.Errorf("%w: crédito %s → rejected", domain.ErrInvalidTransition, t.Status)
		}
		t.Status = entity.CreditRejected
		return nil
	})
}

// Suspend suspende términos activos. El motivo es obligatorio.
func (uc *UseCase) Suspend(ctx context.Context, companyID, termsID, reason string) (*dto.CreditTermsResponse, error) {
	if reason == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.transition(ctx, companyID, termsID, func(t *entity.CreditTerms) error {
		if t.Status != entity.CreditActive {
			return fmt.Errorf("%w: crédito %s → suspended", domain.ErrInvalidTransition, t.Status)
		}
		t.Status = entity.CreditSuspended
		t.SuspensionReason = reason
		return nil
	})
}

// Reactivate reactiva términos suspendidos si el cliente no tiene cargos vencidos.
func (uc *UseCase) Reactivate(ctx context.Context, companyID, termsID string) (*dto.CreditTermsResponse, error) {
	return uc.transition(ctx, companyID, termsID, func(t *entity.CreditTerms) error {
		if t.Status != entity.CreditSuspended {
			return fmt.Errorf("%w: crédito %s → active", domain.ErrInvalidTransition, t.Status)
		}
		hist, err := uc.store.Credit.PaymentHistory(ctx, t.CustomerID, uc.now())
		if err != nil {
			return err
		}
		if hist.HasOverdue {
			return domain.ErrOverdueCharges
		}
		t.Status = entity.CreditActive
		t.SuspensionReason = ""
		return nil
	})
}

// AdjustLimit cambia el cupo (>= 0 y >= saldo) y deja un movimiento de ajuste en el libro.
func (uc *UseCase) AdjustLimit(ctx context.Context, companyID, termsID, userID string, in dto.AdjustLimitRequest) (*dto.CreditTermsResponse, error) {
	if in.CreditLimit.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.CreditTerms
	err := uc.tx.RunTx(ctx, func(tx repository.Store) error {
		t, err := uc.lockTerms(ctx, tx, companyID, termsID)
		if err != nil {
			return err
		}
		if in.CreditLimit.LessThan(t.Balance) {
			return fmt.Errorf("%w: el cupo no puede ser menor al saldo %s", domain.ErrInvalidInput, t.Balance.StringFixed(2))
		}
		delta := in.CreditLimit.Sub(t.CreditLimit)
		now := uc.now()
		t.CreditLimit = in.CreditLimit
		t.UpdatedAt = now
		if err := tx.Credit.UpdateTerms(ctx, t); err != nil {
			return err
		}
		desc := "Ajuste de cupo"
		if in.Reason != "" {
			desc += ": " + in.Reason
		}
		if err := tx.Credit.AddEntry(ctx, &entity.CreditLedgerEntry{
			ID:            uuid.New().String(),
			CreditTermsID: t.ID,
			CompanyID:     t.CompanyID,
			CustomerID:    t.CustomerID,
			Type:          entity.LedgerAdjustment,
			Amount:        delta,
			BalanceAfter:  t.Balance,
			Description:   desc,
			CreatedBy:     userID,
			CreatedAt:     now,
		}); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toTermsResponse(out, decimal.Zero), nil
}

// GetByCustomer términos del cliente con cupo sugerido actualizado.
func (uc *UseCase) GetByCustomer(ctx context.Context, companyID, customerID string) (*dto.CreditTermsResponse, error) {
	t, err := uc.store.Credit.GetTermsByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrCreditNotFound
	}
	if t.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	customer, err := uc.store.Customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	suggested := decimal.Zero
	if customer != nil {
		if _, suggested, err = uc.eligibility(ctx, customer); err != nil {
			return nil, err
		}
	}
	return toTermsResponse(t, suggested), nil
}

// List términos de la empresa (filtro opcional por estado).
func (uc *UseCase) List(ctx context.Context, companyID, status string, limit, offset int) ([]*dto.CreditTermsResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	list, err := uc.store.Credit.ListTerms(ctx, companyID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CreditTermsResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toTermsResponse(t, decimal.Zero))
	}
	return out, nil
}

// Ledger movimientos del libro de crédito del cliente (más recientes primero).
func (uc *UseCase) Ledger(ctx context.Context, companyID, customerID string, limit, offset int) ([]*dto.LedgerEntryResponse, error) {
	t, err := uc.store.Credit.GetTermsByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrCreditNotFound
	}
	if t.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	entries, err := uc.store.Credit.ListEntries(ctx, t.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		r := &dto.LedgerEntryResponse{
			ID:           e.ID,
			OrderID:      e.OrderID,
			Type:         e.Type,
			Amount:       e.Amount,
			Outstanding:  e.Outstanding,
			BalanceAfter: e.BalanceAfter,
			Description:  e.Description,
			CreatedAt:    e.CreatedAt,
		}
		if e.DueDate != nil {
			d := e.DueDate.Format("2006-01-02")
			r.DueDate = &d
		}
		out = append(out, r)
	}
	return out, nil
}

// CheckAvailable informa si el cliente tiene crédito activo con disponible >= amount (sin reservar).
func (uc *UseCase) CheckAvailable(ctx context.Context, customerID string, amount decimal.Decimal) error {
	t, err := uc.store.Credit.GetTermsByCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	return checkTerms(t, amount)
}

// ApplyInTx carga amount al crédito del cliente por el pedido (bloqueo FOR UPDATE de los términos).
func (uc *UseCase) ApplyInTx(ctx context.Context, tx repository.Store, customerID, orderID string, amount decimal.Decimal, userID string) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidInput
	}
	t, err := tx.Credit.LockTermsByCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	if err := checkTerms(t, amount); err != nil {
		return err
	}
	now := uc.now()
	due := dayOf(now).AddDate(0, 0, t.PaymentTermsDays)
	t.Balance = t.Balance.Add(amount)
	t.UpdatedAt = now
	if err := tx.Credit.UpdateTerms(ctx, t); err != nil {
		return err
	}
	oid := orderID
	return tx.Credit.AddEntry(ctx, &entity.CreditLedgerEntry{
		ID:            uuid.New().String(),
		CreditTermsID: t.ID,
		CompanyID:     t.CompanyID,
		CustomerID:    t.CustomerID,
		OrderID:       &oid,
		Type:          entity.LedgerCharge,
		Amount:        amount,
		Outstanding:   amount,
		BalanceAfter:  t.Balance,
		DueDate:       &due,
		Description:   "Cargo por pedido",
		CreatedBy:     userID,
		CreatedAt:     now,
	})
}

// ReleaseInTx revierte la parte pendiente del cargo del pedido (cancelación). Sin cargo no hace nada.
func (uc *UseCase) ReleaseInTx(ctx context.Context, tx repository.Store, orderID, userID string) error {
	charge, err := tx.Credit.ChargeByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if charge == nil || !charge.Outstanding.IsPositive() {
		return nil
	}
	t, err := tx.Credit.LockTermsByCustomer(ctx, charge.CustomerID)
	if err != nil {
		return err
	}
	if t == nil {
		return domain.ErrCreditNotFound
	}
	now := uc.now()
	released := charge.Outstanding
	charge.Outstanding = decimal.Zero
	if err := tx.Credit.UpdateOutstanding(ctx, charge); err != nil {
		return err
	}
	t.Balance = decimal.Max(t.Balance.Sub(released), decimal.Zero)
	t.UpdatedAt = now
	if err := tx.Credit.UpdateTerms(ctx, t); err != nil {
		return err
	}
	oid := orderID
	return tx.Credit.AddEntry(ctx, &entity.CreditLedgerEntry{
		ID:            uuid.New().String(),
		CreditTermsID: t.ID,
		CompanyID:     t.CompanyID,
		CustomerID:    t.CustomerID,
		OrderID:       &oid,
		Type:          entity.LedgerRelease,
		Amount:        released,
		BalanceAfter:  t.Balance,
		Description:   "Liberación por cancelación del pedido",
		CreatedBy:     userID,
		CreatedAt:     now,
	})
}

// RecordPaymentInTx aplica un pago: primero al cargo del pedido, luego a los más antiguos.
// El excedente queda registrado en el movimiento pero no deja el saldo en negativo.
func (uc *UseCase) RecordPaymentInTx(ctx context.Context, tx repository.Store, customerID string, amount decimal.Decimal, orderID *string, userID string) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidInput
	}
	t, err := tx.Credit.LockTermsByCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	if t == nil {
		return domain.ErrCreditNotFound
	}
	charges, err := tx.Credit.OpenCharges(ctx, t.ID)
	if err != nil {
		return err
	}
	now := uc.now()
	allocs, applied, excess := domcredit.AllocatePayment(amount, charges, orderID)
	for _, a := range allocs {
		a.Entry.Outstanding = a.Entry.Outstanding.Sub(a.Amount)
		if a.Entry.Outstanding.IsZero() {
			settled := now
			a.Entry.SettledAt = &settled
		}
		if err := tx.Credit.UpdateOutstanding(ctx, a.Entry); err != nil {
			return err
		}
	}
	t.Balance = decimal.Max(t.Balance.Sub(applied), decimal.Zero)
	t.UpdatedAt = now
	if err := tx.Credit.UpdateTerms(ctx, t); err != nil {
		return err
	}
	desc := "Pago recibido"
	if excess.IsPositive() {
		desc = fmt.Sprintf("Pago recibido (excedente no aplicado: %s)", excess.StringFixed(2))
	}
	return tx.Credit.AddEntry(ctx, &entity.CreditLedgerEntry{
		ID:            uuid.New().String(),
		CreditTermsID: t.ID,
		CompanyID:     t.CompanyID,
		CustomerID:    t.CustomerID,
		OrderID:       orderID,
		Type:          entity.LedgerPayment,
		Amount:        amount,
		BalanceAfter:  t.Balance,
		Description:   desc,
		CreatedBy:     userID,
		CreatedAt:     now,
	})
}

// ScanOverdue suspende (motivo overdue) los términos activos con cargos vencidos y avisa a finanzas.
// Devuelve la cantidad de términos suspendidos.
func (uc *UseCase) ScanOverdue(ctx context.Context) (int, error) {
	today := dayOf(uc.now())
	list, err := uc.store.Credit.ListOverdueTerms(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("listar cartera vencida: %w", err)
	}
	suspended := 0
	for _, t := range list {
		if t.Status != entity.CreditActive {
			continue
		}
		t.Status = entity.CreditSuspended
		t.SuspensionReason = entity.SuspensionOverdue
		t.UpdatedAt = uc.now()
		if err := uc.store.Credit.UpdateTerms(ctx, t); err != nil {
			uc.log.Error().Err(err).Str("credit_terms_id", t.ID).Msg("suspender crédito vencido")
			continue
		}
		suspended++
		name := t.CustomerID
		c, err := uc.store.Customers.GetByID(ctx, t.CustomerID)
		switch {
		case err != nil:
			uc.log.Warn().Err(err).Str("customer_id", t.CustomerID).Msg("leer cliente para el aviso de mora")
		case c != nil:
			name = c.Name
		}
		if err := uc.notifier.NotifyRole(ctx, t.CompanyID, entity.RoleFinanzas, "credit_overdue",
			"Crédito suspendido por mora",
			fmt.Sprintf("El crédito de %s fue suspendido por cargos vencidos (saldo %s).", name, t.Balance.StringFixed(2)),
		); err != nil {
			uc.log.Warn().Err(err).Str("credit_terms_id", t.ID).Msg("avisar a finanzas")
		}
	}
	if suspended > 0 {
		uc.log.Info().Int("suspended", suspended).Msg("escaneo de cartera vencida")
	}
	return suspended, nil
}

func (uc *UseCase) eligibility(ctx context.Context, customer *entity.Customer) (int, decimal.Decimal, error) {
	stats, err := uc.store.Orders.CustomerStats(ctx, customer.ID)
	if err != nil {
		return 0, decimal.Zero, err
	}
	now := uc.now()
	hist, err := uc.store.Credit.PaymentHistory(ctx, customer.ID, now)
	if err != nil {
		return 0, decimal.Zero, err
	}
	score := domcredit.EligibilityScore(domcredit.History{
		CustomerSince:     customer.CreatedAt,
		DeliveredOrders:   stats.DeliveredOrders,
		SettledCharges:    hist.SettledCharges,
		SettledOnTime:     hist.SettledOnTime,
		HasOverdue:        hist.HasOverdue,
		AverageOrderTotal: stats.AverageOrderTotal,
	}, now)
	return score, domcredit.SuggestedLimit(stats.AverageOrderTotal, score), nil
}

// transition aplica fn sobre los términos bloqueados y persiste.
func (uc *UseCase) transition(ctx context.Context, companyID, termsID string, fn func(t *entity.CreditTerms) error) (*dto.CreditTermsResponse, error) {
	var out *entity.CreditTerms
	err := uc.tx.RunTx(ctx, func(tx repository.Store) error {
		t, err := uc.lockTerms(ctx, tx, companyID, termsID)
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
		t.UpdatedAt = uc.now()
		if err := tx.Credit.UpdateTerms(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toTermsResponse(out, decimal.Zero), nil
}

func (uc *UseCase) lockTerms(ctx context.Context, tx repository.Store, companyID, termsID string) (*entity.CreditTerms, error) {
	t, err := tx.Credit.GetTermsByID(ctx, termsID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrCreditNotFound
	}
	if t.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return tx.Credit.LockTermsByCustomer(ctx, t.CustomerID)
}

func checkTerms(t *entity.CreditTerms, amount decimal.Decimal) error {
	if t == nil {
		return domain.ErrCreditNotFound
	}
	if t.Status != entity.CreditActive {
		return domain.ErrCreditNotActive
	}
	if amount.GreaterThan(t.Available()) {
		return fmt.Errorf("%w: disponible %s, requerido %s", domain.ErrCreditLimitExceeded,
			t.Available().StringFixed(2), amount.StringFixed(2))
	}
	return nil
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func toTermsResponse(t *entity.CreditTerms, suggested decimal.Decimal) *dto.CreditTermsResponse {
	return &dto.CreditTermsResponse{
		ID:               t.ID,
		CustomerID:       t.CustomerID,
		Status:           t.Status,
		CreditLimit:      t.CreditLimit,
		Balance:          t.Balance,
		Available:        t.Available(),
		PaymentTermsDays: t.PaymentTermsDays,
		EligibilityScore: t.EligibilityScore,
		SuggestedLimit:   suggested,
		SuspensionReason: t.SuspensionReason,
		ApprovedBy:       t.ApprovedBy,
		ApprovedAt:       t.ApprovedAt,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}
