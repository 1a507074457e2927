package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"factory_crm_backend/internal/models"
	"factory_crm_backend/internal/repositories"

	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users []models.User
	err   error
}

func (r *fakeUserRepo) CreateUser(_ repositories.SQLExecutor, u *models.User, _ string) (int64, error) {
	u.ID = int64(len(r.users) + 1)
	r.users = append(r.users, *u)
	return u.ID, nil
}

func (r *fakeUserRepo) FindByUsername(string) (*models.User, string, error) {
	return nil, "", repositories.ErrNotFound
}

func (r *fakeUserRepo) FindByID(id int64) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) ListActiveByRoles(roles []string) ([]models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []models.User
	for _, u := range r.users {
		for _, role := range roles {
			if u.IsActive && u.Role == role {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []models.Notification
	batches int
}

func (r *fakeNotificationRepo) CreateBatch(ns []models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches++
	r.created = append(r.created, ns...)
	return nil
}

func (r *fakeNotificationRepo) ListForUser(int64, bool, int, int) ([]models.Notification, int, error) {
	return nil, 0, nil
}

func (r *fakeNotificationRepo) CountUnread(int64) (int, error) { return 0, nil }

func (r *fakeNotificationRepo) MarkRead(int64, int64) (*models.Notification, error) {
	return nil, repositories.ErrNotFound
}

func (r *fakeNotificationRepo) MarkAllRead(int64) (int64, error) { return 0, nil }

func (r *fakeNotificationRepo) recipients() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, 0, len(r.created))
	for _, n := range r.created {
		out = append(out, n.UserID)
	}
	return out
}

func staff() *fakeUserRepo {
	return &fakeUserRepo{users: []models.User{
		{ID: 1, Role: models.RoleAdmin, IsActive: true},
		{ID: 2, Role: models.RoleDesigner, IsActive: true},
		{ID: 3, Role: models.RoleWorker, IsActive: true},
		{ID: 4, Role: models.RoleFinancial, IsActive: true},
		{ID: 5, Role: models.RoleReceptionist, IsActive: true},
		{ID: 6, Role: models.RoleWorker, IsActive: false},
	}}
}

func TestDispatcherFansOutToRolesExceptActor(t *testing.T) {
	notifications := &fakeNotificationRepo{}
	hub := NewRealtimeHub(4)
	financeSub := hub.Subscribe(4, models.RoleFinancial)
	workerSub := hub.Subscribe(3, models.RoleWorker)

	d := NewNotificationDispatcher(staff(), notifications, hub, 8, 2)
	d.Start()
	d.Publish(NewDomainEvent(EventOrderCreated, 2, 10, "order", "New order #10"))
	d.Publish(NewDomainEvent(EventInvoiceUpdated, 1, 7, "invoice", "Invoice #7 updated"))
	d.Stop()

	// order.created reaches admin and worker (designer is the actor); invoice.updated reaches financial.
	require.ElementsMatch(t, []int64{1, 3, 4}, notifications.recipients())
	require.Equal(t, 2, notifications.batches)

	select {
	case e := <-financeSub.Events:
		require.Equal(t, EventInvoiceUpdated, e.Type)
	default:
		t.Fatal("financial subscriber received nothing")
	}
	select {
	case e := <-workerSub.Events:
		require.Equal(t, EventOrderCreated, e.Type)
	default:
		t.Fatal("worker subscriber received nothing")
	}
	require.Len(t, workerSub.Events, 0)
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	notifications := &fakeNotificationRepo{}
	d := NewNotificationDispatcher(staff(), notifications, nil, 1, 1)

	d.Publish(NewDomainEvent(EventMaterialLowStock, 0, 1, "material", "low"))
	d.Publish(NewDomainEvent(EventMaterialLowStock, 0, 2, "material", "low"))
	d.Start()
	d.Stop()

	require.Equal(t, 1, notifications.batches)
	require.Equal(t, []int64{1}, notifications.recipients())

	// Publishing after Stop is a no-op.
	d.Publish(NewDomainEvent(EventMaterialLowStock, 0, 3, "material", "low"))
	d.Stop()
}

func TestDispatcherSurvivesRecipientLookupFailure(t *testing.T) {
	users := staff()
	users.err = errors.New("connection reset")
	notifications := &fakeNotificationRepo{}
	hub := NewRealtimeHub(1)
	sub := hub.Subscribe(1, models.RoleAdmin)

	d := NewNotificationDispatcher(users, notifications, hub, 4, 1)
	d.Start()
	d.Publish(NewDomainEvent(EventOrderDeleted, 2, 5, "order", "Order #5 deleted"))
	d.Stop()

	require.Empty(t, notifications.recipients())
	select {
	case e := <-sub.Events:
		require.Equal(t, EventOrderDeleted, e.Type)
	case <-time.After(time.Second):
		t.Fatal("event was not broadcast")
	}
}

func TestRealtimeHubSkipsSlowSubscribers(t *testing.T) {
	hub := NewRealtimeHub(1)
	sub := hub.Subscribe(1, models.RoleAdmin)
	other := hub.Subscribe(2, models.RoleReceptionist)

	hub.Broadcast(NewDomainEvent(EventMaterialLowStock, 0, 1, "material", "a"))
	hub.Broadcast(NewDomainEvent(EventMaterialLowStock, 0, 2, "material", "b"))

	require.Len(t, sub.Events, 1)
	require.Len(t, other.Events, 0)
	require.Equal(t, 2, hub.SubscriberCount())

	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)
	require.Equal(t, 1, hub.SubscriberCount())
	_, open := <-sub.Events
	require.True(t, open)
	_, open = <-sub.Events
	require.False(t, open)
}

func TestNewDomainEventRecipients(t *testing.T) {
	e := NewDomainEvent(EventOrderUpdated, 1, 2, "order", "m")
	require.Len(t, e.ID, 26)
	require.True(t, e.TargetsRole(models.RoleFinancial))
	require.False(t, e.TargetsRole(models.RoleReceptionist))

	created := NewDomainEvent(EventOrderCreated, 1, 2, "order", "m")
	require.False(t, created.TargetsRole(models.RoleFinancial))
}

func TestRealtimeHubCloseEndsStreams(t *testing.T) {
	hub := NewRealtimeHub(2)
	a := hub.Subscribe(1, models.RoleAdmin)
	b := hub.Subscribe(2, models.RoleWorker)

	hub.Close()
	hub.Close()

	for _, sub := range []*Subscription{a, b} {
		_, open := <-sub.Events
		require.False(t, open)
	}
	require.Zero(t, hub.SubscriberCount())

	late := hub.Subscribe(3, models.RoleAdmin)
	_, open := <-late.Events
	require.False(t, open)
	require.Zero(t, hub.SubscriberCount())

	hub.Unsubscribe(a)
	hub.Broadcast(NewDomainEvent(EventMaterialLowStock, 0, 1, "material", "after close"))
}
