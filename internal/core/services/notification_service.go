package services

import (
	"context"

	"susu-collect/internal/adapters/persistence/models"
	"susu-collect/internal/adapters/persistence/repositories"
	"susu-collect/internal/core/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NotificationService writes in-app notifications. Every Notify* method is
// best-effort: a failed insert is logged and swallowed so the originating
// mutation never fails because of it.
type NotificationService struct {
	notificationRepo repositories.NotificationRepository
	userRepo         repositories.UserRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
	}
}

// NotifyUser writes one notification for a single recipient
func (s *NotificationService) NotifyUser(ctx context.Context, recipientID uint, notifyType, title, message string, relatedID *uint) {
	if s == nil {
		return
	}

	notification := &models.Notification{
		RecipientID:     recipientID,
		NotifyType:      notifyType,
		Title:           title,
		Message:         message,
		RelatedObjectID: relatedID,
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"recipient_id": recipientID,
			"notify_type":  notifyType,
		}).Warn("failed to write notification")
	}
}

// NotifyAdmins fans one notification out to every admin account
func (s *NotificationService) NotifyAdmins(ctx context.Context, notifyType, title, message string, relatedID *uint) {
	if s == nil {
		return
	}

	admins, err := s.userRepo.ListByRole(ctx, string(domain.RoleAdmin))
	if err != nil {
		logrus.WithError(err).Warn("failed to list admins for notification")
		return
	}

	for _, admin := range admins {
		s.NotifyUser(ctx, admin.ID, notifyType, title, message, relatedID)
	}
}

// List returns a user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, recipientID uint, offset, limit int) ([]*models.Notification, int64, error) {
	return s.notificationRepo.ListByRecipient(ctx, recipientID, offset, limit)
}

// MarkRead marks one of the user's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID uint) error {
	err := s.notificationRepo.MarkRead(ctx, id, recipientID)
	if err == gorm.ErrRecordNotFound {
		return domain.ErrNotFound
	}
	return err
}

// CountUnread counts a user's unread notifications
func (s *NotificationService) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, recipientID)
}
