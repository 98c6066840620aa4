package sales

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/order"
	"github.com/jhoicas/Mayorista-api/internal/domain/quote"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
	"github.com/jhoicas/Mayorista-api/pkg/jwt"
	"github.com/jhoicas/Mayorista-api/pkg/money"
)

// Acciones de los enlaces mágicos de cotización.
const (
	ActionQuoteAccept = "quote_accept"
	ActionQuoteReject = "quote_reject"
)

// Notifier avisos a clientes y equipos internos.
type Notifier interface {
	EmailCustomer(ctx context.Context, customer *entity.Customer, kind, subject, body string) error
	NotifyRole(ctx context.Context, companyID, role, kind, title, body string) error
}

// LinkConfig firma y URL pública de los enlaces mágicos.
type LinkConfig struct {
	Secret  string
	Issuer  string
	BaseURL string
	TTL     time.Duration
}

// QuoteUseCase casos de uso de cotizaciones.
type QuoteUseCase struct {
	store    repository.Store
	tx       repository.TxRunner
	credit   CreditLedger
	notifier Notifier
	links    LinkConfig
	log      zerolog.Logger
	now      func() time.Time
}

// NewQuoteUseCase construye el caso de uso.
func NewQuoteUseCase(store repository.Store, tx repository.TxRunner, credit CreditLedger, notifier Notifier, links LinkConfig, log zerolog.Logger) *QuoteUseCase {
	if links.TTL <= 0 {
		links.TTL = 7 * 24 * time.Hour
	}
	return &QuoteUseCase{
		store:    store,
		tx:       tx,
		credit:   credit,
		notifier: notifier,
		links:    links,
		log:      log.With().Str("component", "quotes").Logger(),
		now:      time.Now,
	}
}

// Create registra una cotización en borrador.
func (uc *QuoteUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateQuoteRequest) (*dto.QuoteResponse, error) {
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
	items, err := PriceLines(ctx, uc.store.Products, companyID, linesFromRequest(in.Items))
	if err != nil {
		return nil, err
	}
	q := NewDraftQuote(companyID, customer.ID, userID, in.Notes, in.ValidityDays, items, uc.now())
	if err := uc.store.Quotes.Create(ctx, q); err != nil {
		return nil, err
	}
	return ToQuoteResponse(q), nil
}

// NewDraftQuote arma una cotización en borrador con totales y vigencia (0 = 15 días).
func NewDraftQuote(companyID, customerID, userID, notes string, validityDays int, items []entity.LineItem, now time.Time) *entity.Quote {
	if validityDays <= 0 {
		validityDays = quote.ValidityDays
	}
	subtotal, tax, total := order.Totals(items)
	y, m, d := now.Date()
	return &entity.Quote{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		CustomerID: customerID,
		Number:     order.NewNumber(order.PrefixQuote, now),
		Status:     entity.QuoteDraft,
		ValidUntil: time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, validityDays),
		Subtotal:   subtotal,
		Tax:        tax,
		Total:      total,
		Notes:      notes,
		CreatedBy:  userID,
		Items:      items,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Get devuelve la cotización con sus líneas.
func (uc *QuoteUseCase) Get(ctx context.Context, companyID, id string) (*dto.QuoteResponse, error) {
	q, err := loadQuote(ctx, uc.store, companyID, id)
	if err != nil {
		return nil, err
	}
	return ToQuoteResponse(q), nil
}

// List cotizaciones de la empresa.
func (uc *QuoteUseCase) List(ctx context.Context, companyID, status, customerID string, page dto.PageRequest) ([]*dto.QuoteResponse, error) {
	page.DefaultPage()
	if page.Limit > 100 {
		page.Limit = 100
	}
	list, err := uc.store.Quotes.List(ctx, repository.QuoteFilter{
		CompanyID:  companyID,
		CustomerID: customerID,
		Status:     status,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]*dto.QuoteResponse, 0, len(list))
	for _, q := range list {
		out = append(out, ToQuoteResponse(q))
	}
	return out, nil
}

// Send pasa la cotización a sent y envía al cliente los enlaces de aprobación y rechazo.
func (uc *QuoteUseCase) Send(ctx context.Context, companyID, id string) (*dto.QuoteResponse, error) {
	q, err := loadQuote(ctx, uc.store, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := uc.move(ctx, uc.store, q, entity.QuoteSent, nil); err != nil {
		return nil, err
	}
	if err := uc.emailLinks(ctx, q); err != nil {
		// La cotización ya quedó enviada; el correo fallido queda registrado en notificaciones.
		uc.log.Error().Err(err).Str("quote_id", q.ID).Msg("enviar enlaces de cotización")
	}
	return ToQuoteResponse(q), nil
}

// Accept aprobación registrada por el equipo comercial.
func (uc *QuoteUseCase) Accept(ctx context.Context, companyID, id string) (*dto.QuoteResponse, error) {
	return uc.staffMove(ctx, companyID, id, entity.QuoteAccepted)
}

// Reject rechazo registrado por el equipo comercial.
func (uc *QuoteUseCase) Reject(ctx context.Context, companyID, id string) (*dto.QuoteResponse, error) {
	return uc.staffMove(ctx, companyID, id, entity.QuoteRejected)
}

func (uc *QuoteUseCase) staffMove(ctx context.Context, companyID, id, to string) (*dto.QuoteResponse, error) {
	q, err := loadQuote(ctx, uc.store, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := uc.move(ctx, uc.store, q, to, nil); err != nil {
		return nil, err
	}
	return ToQuoteResponse(q), nil
}

// QuoteLinks enlaces de aprobación y rechazo de una cotización.
type QuoteLinks struct {
	AcceptURL string
	RejectURL string
}

// Links firma los enlaces mágicos de la cotización.
func (uc *QuoteUseCase) Links(quoteID string) (QuoteLinks, error) {
	accept, err := jwt.GenerateAction(uc.links.Secret, uc.links.Issuer, ActionQuoteAccept, quoteID, uc.links.TTL)
	if err != nil {
		return QuoteLinks{}, err
	}
	reject, err := jwt.GenerateAction(uc.links.Secret, uc.links.Issuer, ActionQuoteReject, quoteID, uc.links.TTL)
	if err != nil {
		return QuoteLinks{}, err
	}
	base := uc.links.BaseURL + "/public/quotes/respond?token="
	return QuoteLinks{AcceptURL: base + url.QueryEscape(accept), RejectURL: base + url.QueryEscape(reject)}, nil
}

// QuoteAction resultado de leer un enlace mágico.
type QuoteAction struct {
	Action string
	Quote  *entity.Quote
}

// Preview valida el token y devuelve la cotización y la acción sin modificar nada.
func (uc *QuoteUseCase) Preview(ctx context.Context, token string) (*QuoteAction, error) {
	action, quoteID, err := jwt.ParseAction(uc.links.Secret, token)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if action != ActionQuoteAccept && action != ActionQuoteReject {
		return nil, domain.ErrInvalidToken
	}
	q, err := uc.store.Quotes.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrInvalidToken
	}
	return &QuoteAction{Action: action, Quote: q}, nil
}

// Respond aplica la acción del enlace mágico (sent → accepted|rejected) y avisa al equipo comercial.
func (uc *QuoteUseCase) Respond(ctx context.Context, token string) (*QuoteAction, error) {
	qa, err := uc.Preview(ctx, token)
	if err != nil {
		return nil, err
	}
	to := entity.QuoteAccepted
	if qa.Action == ActionQuoteReject {
		to = entity.QuoteRejected
	}
	if qa.Quote.Status == entity.QuoteSent && uc.now().After(qa.Quote.ValidUntil.AddDate(0, 0, 1)) {
		return nil, fmt.Errorf("%w: la cotización %s venció", domain.ErrInvalidTransition, qa.Quote.Number)
	}
	if err := uc.move(ctx, uc.store, qa.Quote, to, nil); err != nil {
		return nil, err
	}
	verb := "aceptó"
	if to == entity.QuoteRejected {
		verb = "rechazó"
	}
	name := qa.Quote.CustomerID
	if c, _ := uc.store.Customers.GetByID(ctx, qa.Quote.CustomerID); c != nil {
		name = c.Name
	}
	if err := uc.notifier.NotifyRole(ctx, qa.Quote.CompanyID, entity.RoleVentas, "quote_"+to,
		"Respuesta a cotización", fmt.Sprintf("%s %s la cotización %s.", name, verb, qa.Quote.Number)); err != nil {
		uc.log.Warn().Err(err).Str("quote_id", qa.Quote.ID).Msg("avisar respuesta de cotización")
	}
	return qa, nil
}

// Convert crea el pedido a partir de una cotización aceptada. Con medio credit se carga el total
// al cupo del cliente; cualquier error de crédito revierte toda la conversión.
func (uc *QuoteUseCase) Convert(ctx context.Context, companyID, userID, id string, in dto.ConvertQuoteRequest) (*dto.OrderResponse, error) {
	if in.PaymentMethod != entity.PaymentMethodCredit && in.PaymentMethod != entity.PaymentMethodPrepaid {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.Order
	err := uc.tx.RunTx(ctx, func(tx repository.Store) error {
		q, err := loadQuote(ctx, tx, companyID, id)
		if err != nil {
			return err
		}
		if err := quote.ValidateTransition(q.Status, entity.QuoteConverted); err != nil {
			return err
		}
		customer, err := tx.Customers.GetByID(ctx, q.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return domain.ErrNotFound
		}
		now := uc.now()
		items := make([]entity.LineItem, len(q.Items))
		for i, it := range q.Items {
			it.ID = uuid.New().String()
			items[i] = it
		}
		shipping := in.ShippingAddress
		if shipping == "" {
			shipping = customer.ShippingAddress
		}
		quoteID := q.ID
		o := &entity.Order{
			ID:              uuid.New().String(),
			CompanyID:       q.CompanyID,
			CustomerID:      q.CustomerID,
			QuoteID:         &quoteID,
			Number:          order.NewNumber(order.PrefixOrder, now),
			Status:          entity.OrderPending,
			PaymentMethod:   in.PaymentMethod,
			PaymentStatus:   entity.PaymentUnpaid,
			Subtotal:        q.Subtotal,
			Tax:             q.Tax,
			Total:           q.Total,
			AmountPaid:      decimal.Zero,
			ShippingAddress: shipping,
			Notes:           q.Notes,
			CreatedBy:       userID,
			Items:           items,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := createOrderInTx(ctx, tx, uc.credit, o, "Creado desde cotización "+q.Number); err != nil {
			return err
		}
		if err := uc.move(ctx, tx, q, entity.QuoteConverted, &o.ID); err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(out), nil
}

// ExpireDue marca expired las cotizaciones enviadas con vigencia vencida. Devuelve cuántas cambiaron.
func (uc *QuoteUseCase) ExpireDue(ctx context.Context) (int, error) {
	y, m, d := uc.now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, uc.now().Location())
	list, err := uc.store.Quotes.ListExpired(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("listar cotizaciones vencidas: %w", err)
	}
	n := 0
	for _, q := range list {
		ok, err := uc.store.Quotes.UpdateStatus(ctx, q.ID, entity.QuoteSent, entity.QuoteExpired, nil)
		if err != nil {
			uc.log.Error().Err(err).Str("quote_id", q.ID).Msg("expirar cotización")
			continue
		}
		if ok {
			n++
		}
	}
	if n > 0 {
		uc.log.Info().Int("expired", n).Msg("cotizaciones vencidas")
	}
	return n, nil
}

// SendQuote envía una cotización ya cargada (usado por la generación de pedidos recurrentes).
func (uc *QuoteUseCase) SendQuote(ctx context.Context, q *entity.Quote) error {
	if err := uc.move(ctx, uc.store, q, entity.QuoteSent, nil); err != nil {
		return err
	}
	if err := uc.emailLinks(ctx, q); err != nil {
		uc.log.Error().Err(err).Str("quote_id", q.ID).Msg("enviar enlaces de cotización")
	}
	return nil
}

// EmailQuote envía al cliente los enlaces de aceptación y rechazo de una cotización enviada.
func (uc *QuoteUseCase) EmailQuote(ctx context.Context, q *entity.Quote) error {
	if q.Status != entity.QuoteSent {
		return fmt.Errorf("%w: cotización %s", domain.ErrInvalidTransition, q.Status)
	}
	return uc.emailLinks(ctx, q)
}

// move valida la transición y la aplica con control optimista sobre el estado actual.
func (uc *QuoteUseCase) move(ctx context.Context, store repository.Store, q *entity.Quote, to string, orderID *string) error {
	if err := quote.ValidateTransition(q.Status, to); err != nil {
		return err
	}
	ok, err := store.Quotes.UpdateStatus(ctx, q.ID, q.Status, to, orderID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: la cotización cambió de estado", domain.ErrConflict)
	}
	q.Status = to
	if orderID != nil {
		q.OrderID = orderID
	}
	q.UpdatedAt = uc.now()
	return nil
}

func (uc *QuoteUseCase) emailLinks(ctx context.Context, q *entity.Quote) error {
	customer, err := uc.store.Customers.GetByID(ctx, q.CustomerID)
	if err != nil || customer == nil {
		return err
	}
	links, err := uc.Links(q.ID)
	if err != nil {
		return err
	}
	body := fmt.Sprintf(
		"Hola %s,\n\nLe enviamos la cotización %s por %s, válida hasta %s.\n\nAceptar: %s\nRechazar: %s\n",
		customer.Name, q.Number, money.Format(q.Total), q.ValidUntil.Format("02/01/2006"),
		links.AcceptURL, links.RejectURL,
	)
	return uc.notifier.EmailCustomer(ctx, customer, "quote_sent", "Cotización "+q.Number, body)
}

func loadQuote(ctx context.Context, store repository.Store, companyID, id string) (*entity.Quote, error) {
	q, err := store.Quotes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, domain.ErrNotFound
	}
	if q.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return q, nil
}
