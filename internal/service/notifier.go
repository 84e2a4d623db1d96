package service

import (
	"context"
	"log"
	"time"

	"github.com/Gabinights/AutoMarket-sub000/internal/model"
	"github.com/Gabinights/AutoMarket-sub000/internal/queue"
	"github.com/Gabinights/AutoMarket-sub000/internal/repository"
)

type notificationStore interface {
	Insert(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID uint64) ([]model.Notification, error)
	MarkRead(ctx context.Context, id, userID uint64) error
	CountUnread(ctx context.Context, userID uint64) (int, error)
}

// NotificationService persists notifications and fans them out to the
// message broker. Delivery is best-effort on both legs: a failed insert or
// publish is logged and swallowed so the business operation that triggered
// the notification never fails because of it.
type NotificationService struct {
	Store notificationStore
	// Publish is swappable for tests; defaults to the broker publisher.
	Publish func(ctx context.Context, ev queue.NotificationQueuedEvent) error
}

func NewNotificationService(store *repository.NotificationRepo) *NotificationService {
	return &NotificationService{
		Store:   store,
		Publish: queue.PublishNotificationQueued,
	}
}

// Notify writes the notification row and publishes the queued event.
func (s *NotificationService) Notify(ctx context.Context, n model.Notification) {
	if err := s.Store.Insert(ctx, &n); err != nil {
		log.Printf("notify: insert failed for user %d kind %s: %v", n.UserID, n.Kind, err)
		return
	}
	if s.Publish == nil {
		return
	}
	ev := queue.NotificationQueuedEvent{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Kind:           n.Kind,
		Subject:        n.Subject,
		Body:           n.Body,
		QueuedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	if n.EntityType != nil {
		ev.EntityType = *n.EntityType
	}
	if n.EntityID != nil {
		ev.EntityID = *n.EntityID
	}
	if err := s.Publish(ctx, ev); err != nil {
		log.Printf("notify: publish failed for notification %d: %v", n.ID, err)
	}
}

// ListForUser returns the user's most recent notifications.
func (s *NotificationService) ListForUser(ctx context.Context, userID uint64) ([]model.Notification, error) {
	return s.Store.ListByUser(ctx, userID)
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uint64) error {
	return s.Store.MarkRead(ctx, id, userID)
}

// CountUnread returns the number of unread notifications for badges.
func (s *NotificationService) CountUnread(ctx context.Context, userID uint64) (int, error) {
	return s.Store.CountUnread(ctx, userID)
}
