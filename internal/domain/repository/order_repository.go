package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

// OrderFilter filtros del listado de pedidos.
type OrderFilter struct {
	CompanyID  string
	CustomerID string
	Status     string
	Limit      int
	Offset     int
}

// CustomerOrderStats agregados de pedidos de un cliente (elegibilidad de crédito).
type CustomerOrderStats struct {
	DeliveredOrders   int
	AverageOrderTotal decimal.Decimal
}

// OrderRepository define el puerto de persistencia para Order, sus líneas e historial.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// GetForUpdate lee el pedido bloqueando la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	// UpdateStatus cambia el estado solo si el actual es from (control optimista). Devuelve false si no coincidió.
	UpdateStatus(ctx context.Context, id, from, to string) (bool, error)
	// UpdatePayment persiste AmountPaid y PaymentStatus.
	UpdatePayment(ctx context.Context, order *entity.Order) error
	List(ctx context.Context, f OrderFilter) ([]*entity.Order, int, error)
	AddHistory(ctx context.Context, change *entity.OrderStatusChange) error
	History(ctx context.Context, orderID string) ([]*entity.OrderStatusChange, error)
	CustomerStats(ctx context.Context, customerID string) (CustomerOrderStats, error)
}
