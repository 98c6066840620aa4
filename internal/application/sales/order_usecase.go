package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/order"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

// Motivos de rechazo en la actualización masiva.
const (
	BulkInvalidTransition = "INVALID_TRANSITION"
	BulkNotFound          = "NOT_FOUND"
	BulkForbidden         = "FORBIDDEN"
	BulkCreditRejected    = "CREDIT_REJECTED"
	BulkInternal          = "INTERNAL"
)

// MaxBulkOrders límite de ids por actualización masiva.
const MaxBulkOrders = 100

// CreditLedger operaciones de crédito que se ejecutan dentro de la transacción del pedido.
type CreditLedger interface {
	ApplyInTx(ctx context.Context, tx repository.Store, customerID, orderID string, amount decimal.Decimal, userID string) error
	ReleaseInTx(ctx context.Context, tx repository.Store, orderID, userID string) error
}

// OrderUseCase casos de uso de pedidos.
type OrderUseCase struct {
	store  repository.Store
	tx     repository.TxRunner
	credit CreditLedger
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(store repository.Store, tx repository.TxRunner, credit CreditLedger) *OrderUseCase {
	return &OrderUseCase{store: store, tx: tx, credit: credit}
}

// Create registra un pedido directo. Queda pending (aplicando crédito si el medio es credit)
// o en borrador si in.Draft.
func (uc *OrderUseCase) Create(ctx context.Context, companyID, userID string, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if in.PaymentMethod != entity.PaymentMethodCredit && in.PaymentMethod != entity.PaymentMethodPrepaid {
		return nil, domain.ErrInvalidInput
	}
	customer, err := uc.customer(ctx, companyID, in.CustomerID)
	if err != nil {
		return nil, err
	}
	items, err := PriceLines(ctx, uc.store.Products, companyID, linesFromRequest(in.Items))
	if err != nil {
		return nil, err
	}
	subtotal, tax, total := order.Totals(items)
	now := time.Now()
	status := entity.OrderPending
	if in.Draft {
		status = entity.OrderDraft
	}
	shipping := strings.TrimSpace(in.ShippingAddress)
	if shipping == "" {
		shipping = customer.ShippingAddress
	}
	o := &entity.Order{
		ID:              uuid.New().String(),
		CompanyID:       companyID,
		CustomerID:      customer.ID,
		Number:          order.NewNumber(order.PrefixOrder, now),
		Status:          status,
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   entity.PaymentUnpaid,
		Subtotal:        subtotal,
		Tax:             tax,
		Total:           total,
		AmountPaid:      decimal.Zero,
		ShippingAddress: shipping,
		Notes:           in.Notes,
		CreatedBy:       userID,
		Items:           items,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err = uc.tx.RunTx(ctx, func(tx repository.Store) error {
		return createOrderInTx(ctx, tx, uc.credit, o, "")
	})
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(o), nil
}

// createOrderInTx persiste el pedido con su primera fila de historial y, si está pending y es a crédito,
// carga el total al cupo del cliente.
func createOrderInTx(ctx context.Context, tx repository.Store, credit CreditLedger, o *entity.Order, reason string) error {
	if err := tx.Orders.Create(ctx, o); err != nil {
		return fmt.Errorf("crear pedido: %w", err)
	}
	if err := tx.Orders.AddHistory(ctx, &entity.OrderStatusChange{
		ID:        uuid.New().String(),
		OrderID:   o.ID,
		ToStatus:  o.Status,
		ChangedBy: o.CreatedBy,
		Reason:    reason,
		ChangedAt: o.CreatedAt,
	}); err != nil {
		return err
	}
	if o.Status == entity.OrderPending && o.PaymentMethod == entity.PaymentMethodCredit {
		return credit.ApplyInTx(ctx, tx, o.CustomerID, o.ID, o.Total, o.CreatedBy)
	}
	return nil
}

// Get devuelve el pedido con sus líneas.
func (uc *OrderUseCase) Get(ctx context.Context, companyID, id string) (*dto.OrderResponse, error) {
	o, err := loadOrder(ctx, uc.store, companyID, id)
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(o), nil
}

// List pedidos de la empresa filtrados por estado y/o cliente.
func (uc *OrderUseCase) List(ctx context.Context, companyID, status, customerID string, page dto.PageRequest) (*dto.OrderListResponse, error) {
	page.DefaultPage()
	if page.Limit > 100 {
		page.Limit = 100
	}
	if status != "" && !order.IsValidStatus(status) {
		return nil, domain.ErrInvalidInput
	}
	list, total, err := uc.store.Orders.List(ctx, repository.OrderFilter{
		CompanyID:  companyID,
		CustomerID: customerID,
		Status:     status,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.OrderListResponse{
		Items: make([]dto.OrderResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, o := range list {
		out.Items = append(out.Items, *ToOrderResponse(o))
	}
	return out, nil
}

// UpdateStatus cambia el estado validando la tabla de transiciones y registra el historial.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, companyID, userID, id string, in dto.UpdateOrderStatusRequest) (*dto.OrderResponse, error) {
	var out *entity.Order
	err := uc.tx.RunTx(ctx, func(tx repository.Store) error {
		o, err := uc.changeStatus(ctx, tx, companyID, userID, id, in.Status, in.Reason)
		out = o
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToOrderResponse(out), nil
}

// BulkUpdateStatus aplica el mismo estado a varios pedidos. Cada id se valida y se aplica en su propia
// transacción: los válidos se confirman y los demás se informan con su motivo.
func (uc *OrderUseCase) BulkUpdateStatus(ctx context.Context, companyID, userID string, in dto.BulkUpdateStatusRequest) (*dto.BulkUpdateStatusResponse, error) {
	if len(in.OrderIDs) == 0 || len(in.OrderIDs) > MaxBulkOrders {
		return nil, fmt.Errorf("%w: entre 1 y %d pedidos", domain.ErrInvalidInput, MaxBulkOrders)
	}
	if !order.IsValidStatus(in.Status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}
	res := &dto.BulkUpdateStatusResponse{Succeeded: []string{}, Failed: []dto.BulkFailure{}}
	seen := make(map[string]bool, len(in.OrderIDs))
	for _, id := range in.OrderIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		err := uc.tx.RunTx(ctx, func(tx repository.Store) error {
			_, err := uc.changeStatus(ctx, tx, companyID, userID, id, in.Status, in.Reason)
			return err
		})
		if err != nil {
			res.Failed = append(res.Failed, dto.BulkFailure{OrderID: id, Reason: bulkReason(err), Detail: err.Error()})
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}
	return res, nil
}

// History historial de estados del pedido (más antiguo primero).
func (uc *OrderUseCase) History(ctx context.Context, companyID, id string) ([]dto.OrderStatusChangeResponse, error) {
	if _, err := loadOrder(ctx, uc.store, companyID, id); err != nil {
		return nil, err
	}
	rows, err := uc.store.Orders.History(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderStatusChangeResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.OrderStatusChangeResponse{
			FromStatus: r.FromStatus,
			ToStatus:   r.ToStatus,
			ChangedBy:  r.ChangedBy,
			Reason:     r.Reason,
			ChangedAt:  r.ChangedAt,
		})
	}
	return out, nil
}

func (uc *OrderUseCase) changeStatus(ctx context.Context, tx repository.Store, companyID, userID, id, to, reason string) (*entity.Order, error) {
	o, err := loadOrder(ctx, tx, companyID, id)
	if err != nil {
		return nil, err
	}
	from := o.Status
	if err := order.ValidateTransition(from, to); err != nil {
		return nil, err
	}
	ok, err := tx.Orders.UpdateStatus(ctx, o.ID, from, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: el pedido cambió de estado", domain.ErrConflict)
	}
	now := time.Now()
	if err := tx.Orders.AddHistory(ctx, &entity.OrderStatusChange{
		ID:         uuid.New().String(),
		OrderID:    o.ID,
		FromStatus: from,
		ToStatus:   to,
		ChangedBy:  userID,
		Reason:     reason,
		ChangedAt:  now,
	}); err != nil {
		return nil, err
	}
	if o.PaymentMethod == entity.PaymentMethodCredit {
		switch {
		case to == entity.OrderCancelled:
			if err := uc.credit.ReleaseInTx(ctx, tx, o.ID, userID); err != nil {
				return nil, err
			}
		case from == entity.OrderDraft && to == entity.OrderPending:
			if err := uc.credit.ApplyInTx(ctx, tx, o.CustomerID, o.ID, o.Total, userID); err != nil {
				return nil, err
			}
		}
	}
	o.Status = to
	o.UpdatedAt = now
	return o, nil
}

func (uc *OrderUseCase) customer(ctx context.Context, companyID, customerID string) (*entity.Customer, error) {
	c, err := uc.store.Customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if c.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	if c.Status != entity.CustomerActive {
		return nil, fmt.Errorf("%w: cliente inactivo", domain.ErrInvalidInput)
	}
	return c, nil
}

func loadOrder(ctx context.Context, store repository.Store, companyID, id string) (*entity.Order, error) {
	o, err := store.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	if o.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return o, nil
}

func bulkReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return BulkNotFound
	case errors.Is(err, domain.ErrForbidden):
		return BulkForbidden
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrConflict):
		return BulkInvalidTransition
	case errors.Is(err, domain.ErrCreditLimitExceeded), errors.Is(err, domain.ErrCreditNotActive),
		errors.Is(err, domain.ErrCreditNotFound):
		return BulkCreditRejected
	default:
		return BulkInternal
	}
}
