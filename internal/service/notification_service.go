package service

import (
	"context"

	"github.com/Samuel1505/Event-Ticketing/internal/domain"
	"github.com/Samuel1505/Event-Ticketing/internal/journal"
)

const (
	DefaultNotificationLimit = 100
	MaxNotificationLimit     = 1000
)

// notificationService implements NotificationService by reading the journal
type notificationService struct {
	reader journal.Reader
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(reader journal.Reader) NotificationService {
	return &notificationService{reader: reader}
}

// ListNotifications returns notifications with seq greater than afterSeq in
// commit order
func (s *notificationService) ListNotifications(ctx context.Context, afterSeq uint64, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	if limit > MaxNotificationLimit {
		limit = MaxNotificationLimit
	}

	records, err := s.reader.Since(ctx, afterSeq, limit)
	if err != nil {
		return nil, err
	}

	notifications := make([]domain.Notification, 0, len(records))
	for _, rec := range records {
		notifications = append(notifications, rec.Notification())
	}
	return notifications, nil
}
