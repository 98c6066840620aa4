package repository

import (
	"context"

	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// ListByRole usuarios activos de la empresa con el rol dado (destinatarios de avisos internos).
	ListByRole(ctx context.Context, companyID, role string) ([]*entity.User, error)
}
