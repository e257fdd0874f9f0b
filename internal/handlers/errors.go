package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BorisNikolic/timeline-app-sub001/internal/services"
	"github.com/BorisNikolic/timeline-app-sub001/pkg/response"
)

// respondServiceError translates the typed service errors into HTTP
// responses with stable error codes. Anything unrecognized is a 500 with no
// internals leaked.
func respondServiceError(c *gin.Context, err error) {
	var (
		forbidden  *services.ForbiddenError
		conflict   *services.ConflictError
		notFound   *services.NotFoundError
		lastAdmin  *services.LastAdminError
		validation *services.ValidationError
		invitation *services.InvitationError
	)

	switch {
	case errors.As(err, &forbidden):
		response.Forbidden(c, "ACCESS_DENIED", forbidden.Message)
	case errors.As(err, &conflict):
		response.Conflict(c, "", conflict.Message)
	case errors.As(err, &notFound):
		response.NotFound(c, notFound.Message)
	case errors.As(err, &lastAdmin):
		response.Conflict(c, "LAST_ADMIN", lastAdmin.Message)
	case errors.As(err, &validation):
		response.BadRequest(c, validation.Message)
	case errors.As(err, &invitation):
		respondInvitationError(c, invitation)
	default:
		response.ServerError(c, "internal server error")
	}
}

func respondInvitationError(c *gin.Context, invErr *services.InvitationError) {
	status := http.StatusBadRequest
	switch invErr.Code {
	case services.CodeInvalidToken:
		status = http.StatusNotFound
	case services.CodeInvitationExpired, services.CodeInvitationCancelled:
		status = http.StatusGone
	case services.CodeEmailMismatch:
		status = http.StatusForbidden
	case services.CodeAlreadyMember:
		status = http.StatusConflict
	case services.CodeEmailSendFailed:
		status = http.StatusInternalServerError
	}

	c.JSON(status, response.Response{
		Code:      status,
		ErrorCode: invErr.Code,
		Message:   invErr.Message,
	})
}
