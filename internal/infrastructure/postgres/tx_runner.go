package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

var _ repository.TxRunner = (*TxRunner)(nil)

// NewStore arma todos los repositorios sobre el mismo Querier (pool o tx).
func NewStore(q Querier) repository.Store {
	return repository.Store{
		Companies:      NewCompanyRepository(q),
		Users:          NewUserRepository(q),
		Products:       NewProductRepository(q),
		Customers:      NewCustomerRepository(q),
		Leads:          NewLeadRepository(q),
		Quotes:         NewQuoteRepository(q),
		Orders:         NewOrderRepository(q),
		StandingOrders: NewStandingOrderRepository(q),
		Credit:         NewCreditRepository(q),
		Notifications:  NewNotificationRepository(q),
		Invoices:       NewInvoiceRepository(q),
		Payments:       NewPaymentRepository(q),
		Documents:      NewDocumentRepository(q),
	}
}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunTx inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) RunTx(ctx context.Context, fn func(tx repository.Store) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewStore(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
