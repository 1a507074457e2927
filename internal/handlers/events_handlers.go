package handlers

import (
	"io"
	"time"

	"factory_crm_backend/internal/services"
	"factory_crm_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// EventsHandler streams domain events to connected clients over SSE.
type EventsHandler struct {
	hub       *services.RealtimeHub
	keepAlive time.Duration
}

func NewEventsHandler(hub *services.RealtimeHub, keepAlive time.Duration) *EventsHandler {
	if keepAlive <= 0 {
		keepAlive = 25 * time.Second
	}
	return &EventsHandler{hub: hub, keepAlive: keepAlive}
}

// Stream holds the connection open until the client goes away.
func (h *EventsHandler) Stream(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	sub := h.hub.Subscribe(actor.UserID, actor.Role)
	defer h.hub.Unsubscribe(sub)

	utils.LogDebug("events stream opened", map[string]interface{}{"user_id": actor.UserID, "role": actor.Role})

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()
	done := c.Request.Context().Done()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-done:
			return false
		case ev, open := <-sub.Events:
			if !open {
				return false
			}
			c.SSEvent(string(ev.Type), ev)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"time": time.Now().UTC()})
			return true
		}
	})
	utils.LogDebug("events stream closed", map[string]interface{}{"user_id": actor.UserID})
}
