// Package notify persiste notificaciones in-app y despacha las de correo en segundo plano.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

// EmailMessage correo saliente.
type EmailMessage struct {
	To      string
	Subject string
	Body    string // texto plano
}

// EmailSender puerto de envío de correo. Devuelve los intentos realizados (reintentos incluidos).
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) (attempts int, err error)
}

// Service casos de uso de notificaciones.
type Service struct {
	repo   repository.NotificationRepository
	users  repository.UserRepository
	sender EmailSender
	log    zerolog.Logger

	sendTimeout time.Duration
	wg          sync.WaitGroup
}

// NewService construye el servicio.
func NewService(repo repository.NotificationRepository, users repository.UserRepository, sender EmailSender, log zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		users:       users,
		sender:      sender,
		log:         log.With().Str("component", "notify").Logger(),
		sendTimeout: 2 * time.Minute,
	}
}

// Notify persiste la notificación. Las de correo se envían de forma asíncrona.
func (s *Service) Notify(ctx context.Context, n *entity.Notification) error {
	if n.CompanyID == "" || n.Title == "" {
		return domain.ErrInvalidInput
	}
	if n.Channel == "" {
		n.Channel = entity.ChannelInApp
	}
	if n.Channel == entity.ChannelEmail && n.Recipient == "" {
		return fmt.Errorf("%w: destinatario vacío", domain.ErrInvalidInput)
	}
	n.ID = uuid.New().String()
	n.CreatedAt = time.Now()
	n.Status = entity.NotificationPending
	if n.Channel == entity.ChannelInApp {
		n.Status = entity.NotificationSent
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("guardar notificación: %w", err)
	}
	if n.Channel == entity.ChannelEmail {
		s.wg.Add(1)
		go s.deliver(n)
	}
	return nil
}

// NotifyRole crea una notificación in-app para cada usuario activo con el rol indicado.
func (s *Service) NotifyRole(ctx context.Context, companyID, role, kind, title, body string) error {
	users, err := s.users.ListByRole(ctx, companyID, role)
	if err != nil {
		return fmt.Errorf("usuarios con rol %s: %w", role, err)
	}
	for _, u := range users {
		userID := u.ID
		if err := s.Notify(ctx, &entity.Notification{
			CompanyID: companyID,
			UserID:    &userID,
			Channel:   entity.ChannelInApp,
			Kind:      kind,
			Title:     title,
			Body:      body,
		}); err != nil {
			return err
		}
	}
	return nil
}

// EmailCustomer encola un correo al cliente. Sin email registrado no hace nada.
func (s *Service) EmailCustomer(ctx context.Context, customer *entity.Customer, kind, subject, body string) error {
	if customer == nil || customer.Email == "" {
		return nil
	}
	customerID := customer.ID
	return s.Notify(ctx, &entity.Notification{
		CompanyID:  customer.CompanyID,
		CustomerID: &customerID,
		Channel:    entity.ChannelEmail,
		Kind:       kind,
		Title:      subject,
		Body:       body,
		Recipient:  customer.Email,
	})
}

// Wait bloquea hasta que terminen los envíos en curso (apagado ordenado y tests).
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) deliver(n *entity.Notification) {
	defer s.wg.Done()
	ctx, cancel := context.WithTimeout(context.Background(), s.sendTimeout)
	defer cancel()

	attempts, err := s.sender.Send(ctx, EmailMessage{To: n.Recipient, Subject: n.Title, Body: n.Body})
	n.Attempts += attempts
	if err != nil {
		n.Status = entity.NotificationFailed
		n.LastError = err.Error()
		s.log.Error().Err(err).Str("notification_id", n.ID).Int("attempt", n.Attempts).Msg("envío de correo fallido")
	} else {
		n.Status = entity.NotificationSent
		n.LastError = ""
	}
	if err := s.repo.UpdateDelivery(ctx, n); err != nil {
		s.log.Error().Err(err).Str("notification_id", n.ID).Msg("actualizar estado de notificación")
	}
}

// ListMine notificaciones in-app del usuario.
func (s *Service) ListMine(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]dto.NotificationResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	list, err := s.repo.ListByUser(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, dto.NotificationResponse{
			ID:        n.ID,
			Kind:      n.Kind,
			Title:     n.Title,
			Body:      n.Body,
			Channel:   n.Channel,
			Status:    n.Status,
			ReadAt:    n.ReadAt,
			CreatedAt: n.CreatedAt,
		})
	}
	return out, nil
}

// UnreadCount cantidad de notificaciones sin leer del usuario.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead marca una notificación como leída.
func (s *Service) MarkRead(ctx context.Context, id, userID string) error {
	return s.repo.MarkRead(ctx, id, userID)
}

// MarkAllRead marca todas las notificaciones del usuario como leídas.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
