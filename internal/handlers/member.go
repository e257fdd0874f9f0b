package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BorisNikolic/timeline-app-sub001/internal/middleware"
	"github.com/BorisNikolic/timeline-app-sub001/internal/services"
	"github.com/BorisNikolic/timeline-app-sub001/pkg/response"
)

type MemberHandler struct {
	memberService *services.MemberService
}

func NewMemberHandler(memberService *services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// List returns a timeline's members, admins first
// GET /api/timelines/:id/members
func (h *MemberHandler) List(c *gin.Context) {
	members, err := h.memberService.ListMembers(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, members)
}

// UpdateRole changes a member's role
// PUT /api/timelines/:id/members/:userId
func (h *MemberHandler) UpdateRole(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	member, err := h.memberService.UpdateRole(c.Param("id"), c.Param("userId"), req.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, member)
}

// Remove removes a member from a timeline
// DELETE /api/timelines/:id/members/:userId
func (h *MemberHandler) Remove(c *gin.Context) {
	if err := h.memberService.RemoveMember(c.Param("id"), c.Param("userId")); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"removed": true})
}

// Leave removes the caller's own membership
// POST /api/timelines/:id/leave
func (h *MemberHandler) Leave(c *gin.Context) {
	if err := h.memberService.Leave(middleware.GetUserID(c), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"left": true})
}
