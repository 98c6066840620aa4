package dto

import "time"

// NotificationResponse notificación in-app.
type NotificationResponse struct {
	ID        string     `json:"id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Channel   string     `json:"channel"`
	Status    string     `json:"status"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// UnreadCountResponse contador de no leídas.
type UnreadCountResponse struct {
	Unread int `json:"unread"`
}
