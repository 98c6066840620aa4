package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

const notificationColumns = `id, company_id, user_id, customer_id, channel, kind, title, body, recipient,
	status, attempts, last_error, read_at, created_at`

// NotificationRepo avisos in-app y registro de correos.
type NotificationRepo struct {
	q Querier
}

// NewNotificationRepository construye el adaptador.
func NewNotificationRepository(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

func (r *NotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		n.ID, n.CompanyID, n.UserID, n.CustomerID, n.Channel, n.Kind, n.Title, n.Body, n.Recipient,
		n.Status, n.Attempts, n.LastError, n.ReadAt, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepo) UpdateDelivery(ctx context.Context, n *entity.Notification) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE notifications SET status = $2, attempts = $3, last_error = $4 WHERE id = $1`,
		n.ID, n.Status, n.Attempts, n.LastError)
	if err != nil {
		return fmt.Errorf("update notification delivery: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *NotificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*entity.Notification, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE user_id = $1 AND channel = 'in_app' AND (NOT $2 OR read_at IS NULL)
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`, userID, unreadOnly, limitOrAll(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()
	var list []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		if err := rows.Scan(&n.ID, &n.CompanyID, &n.UserID, &n.CustomerID, &n.Channel, &n.Kind, &n.Title, &n.Body,
			&n.Recipient, &n.Status, &n.Attempts, &n.LastError, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}

func (r *NotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT count(*) FROM notifications
		WHERE user_id = $1 AND channel = 'in_app' AND read_at IS NULL`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

// MarkRead idempotente; devuelve domain.ErrNotFound si la notificación no es del usuario.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE notifications SET read_at = COALESCE(read_at, now())
		WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE notifications SET read_at = now()
		WHERE user_id = $1 AND channel = 'in_app' AND read_at IS NULL`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return cmd.RowsAffected(), nil
}
