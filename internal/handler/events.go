package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/events"
)

// EventsHandler streams broadcast events to HTTP clients over SSE.
type EventsHandler struct {
	broadcaster *events.Broadcaster
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(broadcaster *events.Broadcaster) *EventsHandler {
	return &EventsHandler{broadcaster: broadcaster}
}

var streamableTopics = map[string]bool{
	events.TopicRideRequested:         true,
	events.TopicRideStatusUpdated:     true,
	events.TopicDriverLocationUpdated: true,
}

// Stream handles GET /v1/events/:topic. It holds the connection open and
// writes each published event as an SSE message until the client goes away.
func (h *EventsHandler) Stream(c *gin.Context) {
	topic := c.Param("topic")
	if !streamableTopics[topic] {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown topic: " + topic})
		return
	}

	ch, cancel := h.broadcaster.Subscribe(topic)
	defer cancel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(event.Topic, event.Payload)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
