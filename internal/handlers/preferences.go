package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BorisNikolic/timeline-app-sub001/internal/middleware"
	"github.com/BorisNikolic/timeline-app-sub001/internal/services"
	"github.com/BorisNikolic/timeline-app-sub001/pkg/response"
)

type PreferencesHandler struct {
	preferencesService *services.PreferencesService
}

func NewPreferencesHandler(preferencesService *services.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{preferencesService: preferencesService}
}

// Get returns the caller's preferences
// GET /api/preferences
func (h *PreferencesHandler) Get(c *gin.Context) {
	prefs, err := h.preferencesService.Get(middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, prefs)
}

// SetLastTimeline remembers the caller's last opened timeline
// PUT /api/preferences/last-timeline
func (h *PreferencesHandler) SetLastTimeline(c *gin.Context) {
	var req struct {
		TimelineID *string `json:"timeline_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pref, err := h.preferencesService.SetLastTimeline(middleware.GetUserID(c), req.TimelineID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, pref)
}
