package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BorisNikolic/timeline-app-sub001/internal/middleware"
	"github.com/BorisNikolic/timeline-app-sub001/internal/services"
	"github.com/BorisNikolic/timeline-app-sub001/pkg/response"
)

type TimelineHandler struct {
	timelineService *services.TimelineService
}

func NewTimelineHandler(timelineService *services.TimelineService) *TimelineHandler {
	return &TimelineHandler{timelineService: timelineService}
}

// List returns all non-archived timelines the caller belongs to
// GET /api/timelines
func (h *TimelineHandler) List(c *gin.Context) {
	timelines, err := h.timelineService.GetAccessible(middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, timelines)
}

// Create creates a timeline with the caller as its first Admin
// POST /api/timelines
func (h *TimelineHandler) Create(c *gin.Context) {
	var req services.CreateTimelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	timeline, err := h.timelineService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, timeline)
}

// Get returns one timeline with its stats
// GET /api/timelines/:id
func (h *TimelineHandler) Get(c *gin.Context) {
	timeline, err := h.timelineService.GetByID(c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if timeline == nil {
		response.NotFound(c, "timeline not found")
		return
	}
	response.Success(c, timeline)
}

// Update patches timeline fields, optionally conditionally on a version stamp
// PUT /api/timelines/:id
func (h *TimelineHandler) Update(c *gin.Context) {
	var req services.UpdateTimelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	timeline, err := h.timelineService.Update(c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, timeline)
}

// Delete removes a timeline and everything under it
// DELETE /api/timelines/:id
func (h *TimelineHandler) Delete(c *gin.Context) {
	if err := h.timelineService.Delete(c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// Unarchive moves an archived timeline back to Completed
// POST /api/timelines/:id/unarchive
func (h *TimelineHandler) Unarchive(c *gin.Context) {
	timeline, err := h.timelineService.Unarchive(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, timeline)
}

// Copy duplicates a timeline into a new date range
// POST /api/timelines/:id/copy
func (h *TimelineHandler) Copy(c *gin.Context) {
	var req services.CopyTimelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.timelineService.Copy(c.Param("id"), middleware.GetUserID(c), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, result)
}

// SetTemplate marks or unmarks a timeline as template
// PUT /api/timelines/:id/template
func (h *TimelineHandler) SetTemplate(c *gin.Context) {
	var req struct {
		IsTemplate bool `json:"is_template"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	timeline, err := h.timelineService.SetTemplate(c.Param("id"), req.IsTemplate)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, timeline)
}

// ListTemplates lists all template timelines
// GET /api/templates
func (h *TimelineHandler) ListTemplates(c *gin.Context) {
	templates, err := h.timelineService.ListTemplates()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, templates)
}
