package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

// QuoteFilter filtros del listado de cotizaciones.
type QuoteFilter struct {
	CompanyID  string
	CustomerID string
	Status     string
	Limit      int
	Offset     int
}

// QuoteRepository define el puerto de persistencia para Quote y sus líneas.
type QuoteRepository interface {
	// Create persiste cabecera y líneas.
	Create(ctx context.Context, quote *entity.Quote) error
	// GetByID devuelve la cotización con sus líneas, o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Quote, error)
	// UpdateStatus cambia el estado solo si el actual es from. Devuelve false si no coincidió.
	UpdateStatus(ctx context.Context, id, from, to string, orderID *string) (bool, error)
	List(ctx context.Context, f QuoteFilter) ([]*entity.Quote, error)
	// ListExpired cotizaciones enviadas con vigencia anterior a today.
	ListExpired(ctx context.Context, today time.Time) ([]*entity.Quote, error)
}
