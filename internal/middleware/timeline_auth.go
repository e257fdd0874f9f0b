package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BorisNikolic/timeline-app-sub001/internal/models"
	"github.com/BorisNikolic/timeline-app-sub001/internal/services"
	"github.com/BorisNikolic/timeline-app-sub001/pkg/response"
)

const (
	ContextTimeline     = "timeline"
	ContextTimelineRole = "timeline_role"
)

// AccessCodeDenied and AccessCodeArchived distinguish the two 403 outcomes:
// no (sufficient) membership versus a write blocked by archived status.
const (
	AccessCodeDenied   = "ACCESS_DENIED"
	AccessCodeArchived = "TIMELINE_ARCHIVED"
)

// RequireTimelineRole resolves the caller's membership on the :id timeline
// and enforces a minimum role. On an archived timeline, reads stay open to
// any member with the required role but writes are restricted to Admins, so
// an archive can still be inspected and unarchived without being editable.
func RequireTimelineRole(timelines *services.TimelineService, minRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		timelineID := c.Param("id")

		role, timeline, err := timelines.VerifyAccess(userID, timelineID, minRole)
		if err != nil {
			var forbidden *services.ForbiddenError
			if errors.As(err, &forbidden) {
				c.JSON(http.StatusForbidden, response.Response{
					Code:      http.StatusForbidden,
					Message:   forbidden.Message,
					ErrorCode: AccessCodeDenied,
				})
			} else {
				c.JSON(http.StatusInternalServerError, response.Response{
					Code:    http.StatusInternalServerError,
					Message: "internal server error",
				})
			}
			c.Abort()
			return
		}

		if timeline.Status == models.StatusArchived && c.Request.Method != http.MethodGet && role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, response.Response{
				Code:      http.StatusForbidden,
				Message:   "this timeline is archived and read-only",
				ErrorCode: AccessCodeArchived,
			})
			c.Abort()
			return
		}

		c.Set(ContextTimeline, timeline)
		c.Set(ContextTimelineRole, role)

		c.Next()
	}
}

// GetTimeline returns the timeline resolved by RequireTimelineRole.
func GetTimeline(c *gin.Context) *models.Timeline {
	if t, exists := c.Get(ContextTimeline); exists {
		return t.(*models.Timeline)
	}
	return nil
}

// GetTimelineRole returns the caller's role on the resolved timeline.
func GetTimelineRole(c *gin.Context) string {
	if r, exists := c.Get(ContextTimelineRole); exists {
		return r.(string)
	}
	return ""
}
