package repository

import (
	"context"

	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

// NotificationRepository define el puerto de persistencia para Notification.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	// UpdateDelivery persiste Status, Attempts y LastError.
	UpdateDelivery(ctx context.Context, n *entity.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	// MarkRead devuelve domain.ErrNotFound si la notificación no pertenece al usuario.
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}
