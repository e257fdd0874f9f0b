package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BorisNikolic/timeline-app-sub001/internal/middleware"
	"github.com/BorisNikolic/timeline-app-sub001/internal/services"
	"github.com/BorisNikolic/timeline-app-sub001/pkg/response"
)

type EventHandler struct {
	eventService *services.EventService
}

func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// List returns a timeline's events in date order
// GET /api/timelines/:id/events
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.eventService.List(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, events)
}

// Create adds an event to a timeline
// POST /api/timelines/:id/events
func (h *EventHandler) Create(c *gin.Context) {
	var req services.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	event, err := h.eventService.Create(c.Param("id"), middleware.GetUserID(c), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, event)
}

// Update patches an event
// PUT /api/timelines/:id/events/:eventId
func (h *EventHandler) Update(c *gin.Context) {
	var req services.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	event, err := h.eventService.Update(c.Param("id"), c.Param("eventId"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, event)
}

// Delete removes an event
// DELETE /api/timelines/:id/events/:eventId
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.eventService.Delete(c.Param("id"), c.Param("eventId")); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
