package services

import (
	"sync"

	"factory_crm_backend/internal/models"
	"factory_crm_backend/internal/repositories"

	"github.com/rs/zerolog/log"
)

// Broadcaster pushes events to live subscribers.
type Broadcaster interface {
	Broadcast(event DomainEvent)
}

// NotificationDispatcher fans events out to per-user notifications from a
// bounded queue drained by a fixed set of workers.
type NotificationDispatcher struct {
	userRepo         repositories.UserRepository
	notificationRepo repositories.NotificationRepository
	hub              Broadcaster

	queue   chan DomainEvent
	workers int
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewNotificationDispatcher creates a dispatcher. hub may be nil.
func NewNotificationDispatcher(userRepo repositories.UserRepository, notificationRepo repositories.NotificationRepository, hub Broadcaster, queueSize, workers int) *NotificationDispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	if workers <= 0 {
		workers = 1
	}
	return &NotificationDispatcher{
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		hub:              hub,
		queue:            make(chan DomainEvent, queueSize),
		workers:          workers,
	}
}

// Start launches the workers.
func (d *NotificationDispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for event := range d.queue {
				d.deliver(event)
			}
		}()
	}
}

// Publish enqueues the event. A full queue or a stopped dispatcher drops it.
func (d *NotificationDispatcher) Publish(event DomainEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		log.Warn().Str("event_id", event.ID).Str("type", string(event.Type)).Msg("Dispatcher stopped, dropping event")
		return
	}
	select {
	case d.queue <- event:
	default:
		log.Warn().Str("event_id", event.ID).Str("type", string(event.Type)).Msg("Event queue full, dropping event")
	}
}

// Stop closes the queue and waits for queued events to be delivered.
func (d *NotificationDispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *NotificationDispatcher) deliver(event DomainEvent) {
	logger := log.With().Str("event_id", event.ID).Str("type", string(event.Type)).Logger()

	users, err := d.userRepo.ListActiveByRoles(event.Roles)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to resolve notification recipients")
	} else {
		notifications := make([]models.Notification, 0, len(users))
		for _, u := range users {
			if u.ID == event.ActorID {
				continue
			}
			relatedID, relatedType := event.RelatedID, event.RelatedType
			notifications = append(notifications, models.Notification{
				UserID:      u.ID,
				Type:        string(event.Type),
				Message:     event.Message,
				RelatedID:   &relatedID,
				RelatedType: &relatedType,
				CreatedAt:   event.OccurredAt,
			})
		}
		if err := d.notificationRepo.CreateBatch(notifications); err != nil {
			logger.Error().Err(err).Int("recipients", len(notifications)).Msg("Failed to create notifications")
		} else {
			logger.Debug().Int("recipients", len(notifications)).Msg("Notifications created")
		}
	}

	if d.hub != nil {
		d.hub.Broadcast(event)
	}
}
