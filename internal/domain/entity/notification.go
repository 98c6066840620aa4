package entity

import "time"

// Canales y estados de Notification.
const (
	ChannelInApp = "in_app"
	ChannelEmail = "email"

	NotificationPending = "pending"
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
)

// Notification aviso in-app o correo a un usuario o cliente.
type Notification struct {
	ID         string
	CompanyID  string
	UserID     *string
	CustomerID *string
	Channel    string
	Kind       string // order_status, quote_sent, credit_overdue, approval_required...
	Title      string
	Body       string
	Recipient  string // email destino cuando Channel = email
	Status     string
	Attempts   int
	LastError  string
	ReadAt     *time.Time
	CreatedAt  time.Time
}
