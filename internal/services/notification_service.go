package services

import (
	"errors"

	"factory_crm_backend/internal/models"
	"factory_crm_backend/internal/repositories"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService exposes the caller's own notifications.
type NotificationService interface {
	List(userID int64, unreadOnly bool, page, pageSize int) ([]models.Notification, int, error)
	UnreadCount(userID int64) (int, error)
	MarkRead(userID, notificationID int64) (*models.Notification, error)
	MarkAllRead(userID int64) (int64, error)
}

type notificationService struct {
	repo repositories.NotificationRepository
}

// NewNotificationService creates a new instance of NotificationService.
func NewNotificationService(repo repositories.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) List(userID int64, unreadOnly bool, page, pageSize int) ([]models.Notification, int, error) {
	return s.repo.ListForUser(userID, unreadOnly, page, pageSize)
}

func (s *notificationService) UnreadCount(userID int64) (int, error) {
	return s.repo.CountUnread(userID)
}

// MarkRead fails with ErrNotificationNotFound when the notification belongs to another user.
func (s *notificationService) MarkRead(userID, notificationID int64) (*models.Notification, error) {
	n, err := s.repo.MarkRead(userID, notificationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return n, nil
}

func (s *notificationService) MarkAllRead(userID int64) (int64, error) {
	return s.repo.MarkAllRead(userID)
}
