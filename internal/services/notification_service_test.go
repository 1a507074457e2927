package services

import (
	"testing"
	"time"

	"factory_crm_backend/internal/models"
	"factory_crm_backend/internal/repositories"

	"github.com/stretchr/testify/require"
)

// inboxRepo keeps notifications per owner the way the SQL repository scopes them.
type inboxRepo struct {
	items []models.Notification
}

func (r *inboxRepo) CreateBatch(ns []models.Notification) error {
	for _, n := range ns {
		n.ID = int64(len(r.items) + 1)
		r.items = append(r.items, n)
	}
	return nil
}

func (r *inboxRepo) ListForUser(userID int64, unreadOnly bool, _, _ int) ([]models.Notification, int, error) {
	var out []models.Notification
	for _, n := range r.items {
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			out = append(out, n)
		}
	}
	return out, len(out), nil
}

func (r *inboxRepo) CountUnread(userID int64) (int, error) {
	_, n, err := r.ListForUser(userID, true, 1, 100)
	return n, err
}

func (r *inboxRepo) MarkRead(userID, id int64) (*models.Notification, error) {
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			now := time.Now()
			r.items[i].Read, r.items[i].ReadAt = true, &now
			n := r.items[i]
			return &n, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *inboxRepo) MarkAllRead(userID int64) (int64, error) {
	var n int64
	for i := range r.items {
		if r.items[i].UserID == userID && !r.items[i].Read {
			r.items[i].Read = true
			n++
		}
	}
	return n, nil
}

func TestNotificationReadState(t *testing.T) {
	repo := &inboxRepo{}
	require.NoError(t, repo.CreateBatch([]models.Notification{
		{UserID: 1, Type: string(EventOrderCreated), Message: "Order #1 created"},
		{UserID: 1, Type: string(EventOrderUpdated), Message: "Order #1 updated"},
		{UserID: 2, Type: string(EventOrderCreated), Message: "Order #1 created"},
	}))
	svc := NewNotificationService(repo)

	count, err := svc.UnreadCount(1)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	// notification 3 belongs to user 2
	_, err = svc.MarkRead(1, 3)
	require.ErrorIs(t, err, ErrNotificationNotFound)
	_, err = svc.MarkRead(1, 404)
	require.ErrorIs(t, err, ErrNotificationNotFound)

	n, err := svc.MarkRead(1, 1)
	require.NoError(t, err)
	require.True(t, n.Read)
	require.NotNil(t, n.ReadAt)

	unread, total, err := svc.List(1, true, 1, 20)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, int64(2), unread[0].ID)

	updated, err := svc.MarkAllRead(1)
	require.NoError(t, err)
	require.Equal(t, int64(1), updated)

	count, err = svc.UnreadCount(2)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
