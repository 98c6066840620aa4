package feed

import (
	"context"
	"fmt"

	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

// DocumentIssuer genera los documentos de un pedido.
type DocumentIssuer interface {
	IssueInvoice(ctx context.Context, orderID string) (*entity.Invoice, error)
	PackingList(ctx context.Context, orderID string) (*entity.Document, error)
}

// DocumentHandler emite la factura al confirmar y la lista de empaque al despachar.
func DocumentHandler(docs DocumentIssuer) Handler {
	return HandlerFunc(func(ctx context.Context, ev OrderEvent) error {
		switch ev.NewStatus {
		case entity.OrderConfirmed:
			_, err := docs.IssueInvoice(ctx, ev.OrderID)
			return err
		case entity.OrderShipped:
			_, err := docs.PackingList(ctx, ev.OrderID)
			return err
		}
		return nil
	})
}

// CustomerEmailer envía correos a clientes.
type CustomerEmailer interface {
	EmailCustomer(ctx context.Context, customer *entity.Customer, kind, subject, body string) error
}

var statusLabels = map[string]string{
	entity.OrderDraft:      "borrador",
	entity.OrderPending:    "pendiente",
	entity.OrderConfirmed:  "confirmado",
	entity.OrderProcessing: "en preparación",
	entity.OrderShipped:    "despachado",
	entity.OrderDelivered:  "entregado",
	entity.OrderCancelled:  "cancelado",
}

// CustomerNotificationHandler avisa al cliente por correo de cada cambio de estado de su pedido.
func CustomerNotificationHandler(store repository.Store, mailer CustomerEmailer) Handler {
	return HandlerFunc(func(ctx context.Context, ev OrderEvent) error {
		o, err := store.Orders.GetByID(ctx, ev.OrderID)
		if err != nil {
			return err
		}
		if o == nil {
			return nil
		}
		c, err := store.Customers.GetByID(ctx, o.CustomerID)
		if err != nil || c == nil {
			return err
		}
		label := statusLabels[ev.NewStatus]
		if label == "" {
			label = ev.NewStatus
		}
		return mailer.EmailCustomer(ctx, c, "order_status",
			fmt.Sprintf("Pedido %s %s", o.Number, label),
			fmt.Sprintf("Hola %s,\n\nSu pedido %s cambió a estado: %s.\n", c.Name, o.Number, label))
	})
}
