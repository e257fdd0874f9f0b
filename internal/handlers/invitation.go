package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BorisNikolic/timeline-app-sub001/internal/middleware"
	"github.com/BorisNikolic/timeline-app-sub001/internal/services"
	"github.com/BorisNikolic/timeline-app-sub001/pkg/response"
)

type InvitationHandler struct {
	invitationService *services.InvitationService
}

func NewInvitationHandler(invitationService *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

// Create invites an email address to a timeline
// POST /api/timelines/:id/invitations
func (h *InvitationHandler) Create(c *gin.Context) {
	var req services.CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	invitation, err := h.invitationService.Create(c.Param("id"), middleware.GetUserID(c), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, invitation)
}

// ListPending lists a timeline's pending invitations
// GET /api/timelines/:id/invitations
func (h *InvitationHandler) ListPending(c *gin.Context) {
	invitations, err := h.invitationService.ListPending(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, invitations)
}

// Resend reissues a pending invitation and sends a fresh email
// POST /api/timelines/:id/invitations/:invitationId/resend
func (h *InvitationHandler) Resend(c *gin.Context) {
	invitation, err := h.invitationService.Resend(c.Param("id"), c.Param("invitationId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, invitation)
}

// Cancel revokes a pending invitation. Already-settled invitations report
// cancelled=false rather than an error.
// DELETE /api/timelines/:id/invitations/:invitationId
func (h *InvitationHandler) Cancel(c *gin.Context) {
	changed, err := h.invitationService.Cancel(c.Param("id"), c.Param("invitationId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"cancelled": changed})
}

// ValidateToken resolves an invitation token for the public accept page
// GET /api/invitations/validate/:token
func (h *InvitationHandler) ValidateToken(c *gin.Context) {
	result, err := h.invitationService.ValidateToken(c.Param("token"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, result)
}

// AcceptNewUser redeems an invitation by creating a new account
// POST /api/invitations/accept/:token
func (h *InvitationHandler) AcceptNewUser(c *gin.Context) {
	var req services.AcceptNewUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.invitationService.AcceptNewUser(c.Param("token"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, result)
}

// AcceptExistingUser redeems an invitation for the signed-in account
// POST /api/invitations/accept-existing/:token
func (h *InvitationHandler) AcceptExistingUser(c *gin.Context) {
	timeline, err := h.invitationService.AcceptExistingUser(c.Param("token"), middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"timeline": timeline})
}
