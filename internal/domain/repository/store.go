package repository

import "context"

// Store agrupa los repositorios atados a una misma conexión (pool o transacción).
type Store struct {
	Companies      CompanyRepository
	Users          UserRepository
	Products       ProductRepository
	Customers      CustomerRepository
	Leads          LeadRepository
	Quotes         QuoteRepository
	Orders         OrderRepository
	StandingOrders StandingOrderRepository
	Credit         CreditRepository
	Notifications  NotificationRepository
	Invoices       InvoiceRepository
	Payments       PaymentRepository
	Documents      DocumentRepository
}

// TxRunner ejecuta fn con repositorios atados a una transacción; error = rollback.
type TxRunner interface {
	RunTx(ctx context.Context, fn func(tx Store) error) error
}
