package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

// PaymentHistory hábito de pago del cliente sobre cargos de crédito.
type PaymentHistory struct {
	SettledCharges int
	SettledOnTime  int
	HasOverdue     bool
}

// CreditRepository define el puerto de persistencia de términos y libro de crédito.
type CreditRepository interface {
	CreateTerms(ctx context.Context, terms *entity.CreditTerms) error
	GetTermsByID(ctx context.Context, id string) (*entity.CreditTerms, error)
	GetTermsByCustomer(ctx context.Context, customerID string) (*entity.CreditTerms, error)
	// LockTermsByCustomer lee los términos con SELECT ... FOR UPDATE (usar dentro de una transacción).
	LockTermsByCustomer(ctx context.Context, customerID string) (*entity.CreditTerms, error)
	UpdateTerms(ctx context.Context, terms *entity.CreditTerms) error
	ListTerms(ctx context.Context, companyID, status string, limit, offset int) ([]*entity.CreditTerms, error)

	AddEntry(ctx context.Context, entry *entity.CreditLedgerEntry) error
	// UpdateOutstanding persiste Outstanding y SettledAt de un cargo.
	UpdateOutstanding(ctx context.Context, entry *entity.CreditLedgerEntry) error
	ListEntries(ctx context.Context, termsID string, limit, offset int) ([]*entity.CreditLedgerEntry, error)
	// OpenCharges cargos con saldo pendiente, del más antiguo al más reciente.
	OpenCharges(ctx context.Context, termsID string) ([]*entity.CreditLedgerEntry, error)
	ChargeByOrder(ctx context.Context, orderID string) (*entity.CreditLedgerEntry, error)
	// ListOverdueTerms términos activos con algún cargo vencido antes de today.
	ListOverdueTerms(ctx context.Context, today time.Time) ([]*entity.CreditTerms, error)
	PaymentHistory(ctx context.Context, customerID string, today time.Time) (PaymentHistory, error)
}
