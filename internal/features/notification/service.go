package notification

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type NotificationService interface {
	CreateNotification(ctx context.Context, userID, title, message string, notifType NotificationType) error
	GetUserNotifications(ctx context.Context, userID string, page, limit int64) ([]Notification, int64, error)
	GetUnreadCount(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, id string, userID string) error
	MarkAllAsRead(ctx context.Context, userID string) error

	// Success and Error are the fire-and-forget hooks other features call
	// when a long-running job finishes.
	Success(ctx context.Context, userID, title, message string)
	Error(ctx context.Context, userID, title, message string)
}

type NotificationServiceImpl struct {
	repo NotificationRepository
	hub  *Hub
	log  *zap.Logger
}

func NewNotificationService(repo NotificationRepository, hub *Hub, log *zap.Logger) NotificationService {
	return &NotificationServiceImpl{
		repo: repo,
		hub:  hub,
		log:  log,
	}
}

func (s *NotificationServiceImpl) CreateNotification(ctx context.Context, userID, title, message string, notifType NotificationType) error {
	n := &Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    notifType,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	s.hub.Push(n)
	return nil
}

func (s *NotificationServiceImpl) GetUserNotifications(ctx context.Context, userID string, page, limit int64) ([]Notification, int64, error) {
	return s.repo.GetByUserID(ctx, userID, page, limit)
}

func (s *NotificationServiceImpl) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

func (s *NotificationServiceImpl) MarkAsRead(ctx context.Context, id string, userID string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	return s.repo.MarkAsRead(ctx, objID, userID)
}

func (s *NotificationServiceImpl) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *NotificationServiceImpl) Success(ctx context.Context, userID, title, message string) {
	if err := s.CreateNotification(ctx, userID, title, message, NotificationTypeSuccess); err != nil {
		s.log.Warn("failed to create notification",
			zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *NotificationServiceImpl) Error(ctx context.Context, userID, title, message string) {
	if err := s.CreateNotification(ctx, userID, title, message, NotificationTypeError); err != nil {
		s.log.Warn("failed to create notification",
			zap.String("user_id", userID), zap.Error(err))
	}
}
