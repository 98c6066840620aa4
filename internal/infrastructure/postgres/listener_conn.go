package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgconnCommandTag = pgconn.CommandTag

// pgxNotificationConn adapta *pgx.Conn a notificationConn.
type pgxNotificationConn struct {
	conn *pgx.Conn
}

func (c pgxNotificationConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return c.conn.Exec(ctx, sql, args...)
}

func (c pgxNotificationConn) WaitForNotification(ctx context.Context) (string, error) {
	n, err := c.conn.WaitForNotification(ctx)
	if err != nil {
		return "", err
	}
	return n.Payload, nil
}

func (c pgxNotificationConn) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}
