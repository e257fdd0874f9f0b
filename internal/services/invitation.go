package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/BorisNikolic/timeline-app-sub001/internal/models"
	"github.com/BorisNikolic/timeline-app-sub001/internal/utils"
	"github.com/BorisNikolic/timeline-app-sub001/pkg/logger"
)

// invitationTTL is how long an invitation stays redeemable.
const invitationTTL = 7 * 24 * time.Hour

// InvitationMail is everything the outbound message needs.
type InvitationMail struct {
	To           string
	InviterName  string
	TimelineName string
	Role         string
	InviteLink   string
}

// InvitationMailer delivers invitation emails. Delivery failure must be
// reported; the caller treats it as fatal for the invitation.
type InvitationMailer interface {
	SendInvitation(mail InvitationMail) error
	InviteLink(token string) string
}

// InvitationService manages the timeline invitation lifecycle: issue, remind,
// validate, redeem, cancel, and expire.
type InvitationService struct {
	db             *gorm.DB
	mailer         InvitationMailer
	jwtExpireHours int
}

func NewInvitationService(db *gorm.DB, mailer InvitationMailer, jwtExpireHours int) *InvitationService {
	return &InvitationService{db: db, mailer: mailer, jwtExpireHours: jwtExpireHours}
}

type CreateInvitationRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

type AcceptNewUserRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Password string `json:"password" binding:"required,min=8"`
}

// TokenValidation is what the public validate endpoint exposes: enough for
// the accept page to render, nothing that would let a token holder act.
type TokenValidation struct {
	Valid          bool   `json:"valid"`
	Expired        bool   `json:"expired,omitempty"`
	Email          string `json:"email,omitempty"`
	Role           string `json:"role,omitempty"`
	TimelineID     string `json:"timeline_id,omitempty"`
	TimelineName   string `json:"timeline_name,omitempty"`
	InviterName    string `json:"inviter_name,omitempty"`
	IsExistingUser bool   `json:"is_existing_user,omitempty"`
}

// AcceptResult is returned when an invitation is redeemed by a new account;
// the token logs the fresh user straight in.
type AcceptResult struct {
	User     *models.User     `json:"user"`
	Token    string           `json:"token"`
	Timeline *models.Timeline `json:"timeline"`
}

// Create issues (or refreshes) an invitation and sends the email. If the
// address already has a pending invitation for this timeline the existing row
// is reused with a fresh token and expiry instead of piling up duplicates.
// Email delivery is part of the contract: on send failure the invitation is
// rolled back to its prior state and the caller gets EMAIL_SEND_FAILED.
func (s *InvitationService) Create(timelineID, inviterID string, req *CreateInvitationRequest) (*models.Invitation, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !models.IsValidRole(req.Role) {
		return nil, &InvitationError{Code: CodeValidationError, Message: "invalid role: " + req.Role}
	}

	// Already a member, by account email, case-insensitively.
	var memberCount int64
	err := s.db.Model(&models.TimelineMember{}).
		Joins("JOIN users ON users.id = timeline_members.user_id").
		Where("timeline_members.timeline_id = ? AND LOWER(users.email) = ?", timelineID, email).
		Count(&memberCount).Error
	if err != nil {
		return nil, err
	}
	if memberCount > 0 {
		return nil, &InvitationError{Code: CodeAlreadyMember, Message: "this user is already a member of the timeline"}
	}

	var targetUserID *string
	var existing models.User
	err = s.db.Where("email = ?", email).Take(&existing).Error
	if err == nil {
		targetUserID = &existing.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	token, tokenHash, err := utils.IssueInviteToken()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().Add(invitationTTL)

	var invitation models.Invitation
	var prior *models.Invitation

	err = s.db.Where("timeline_id = ? AND email = ? AND status = ?", timelineID, email, models.InvitationPending).
		Take(&invitation).Error
	switch {
	case err == nil:
		// Reuse the pending row; remember its fields so a failed send can
		// put them back.
		snapshot := invitation
		prior = &snapshot
		invitation.Role = req.Role
		invitation.TokenHash = tokenHash
		invitation.ExpiresAt = expiresAt
		invitation.InvitedBy = inviterID
		invitation.TargetUserID = targetUserID
		if err := s.db.Save(&invitation).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		invitation = models.Invitation{
			Email:        email,
			TokenHash:    tokenHash,
			Role:         req.Role,
			Status:       models.InvitationPending,
			TimelineID:   timelineID,
			InvitedBy:    inviterID,
			TargetUserID: targetUserID,
			ExpiresAt:    expiresAt,
		}
		if err := s.db.Create(&invitation).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.sendMail(&invitation, token); err != nil {
		if prior != nil {
			if rbErr := s.db.Save(prior).Error; rbErr != nil {
				logger.For("invitations").Error().Err(rbErr).Str("invitation_id", prior.ID).Msg("rollback after send failure failed")
			}
		} else {
			if rbErr := s.db.Delete(&models.Invitation{}, "id = ?", invitation.ID).Error; rbErr != nil {
				logger.For("invitations").Error().Err(rbErr).Str("invitation_id", invitation.ID).Msg("rollback after send failure failed")
			}
		}
		return nil, &InvitationError{Code: CodeEmailSendFailed, Message: "failed to send invitation email"}
	}

	return &invitation, nil
}

func (s *InvitationService) sendMail(inv *models.Invitation, token string) error {
	var timeline models.Timeline
	if err := s.db.First(&timeline, "id = ?", inv.TimelineID).Error; err != nil {
		return err
	}
	var inviter models.User
	if err := s.db.First(&inviter, "id = ?", inv.InvitedBy).Error; err != nil {
		return err
	}

	return s.mailer.SendInvitation(InvitationMail{
		To:           inv.Email,
		InviterName:  inviter.Name,
		TimelineName: timeline.Name,
		Role:         inv.Role,
		InviteLink:   s.mailer.InviteLink(token),
	})
}

// findPendingByToken scans pending invitations and bcrypt-compares the
// candidate against each stored hash. The hash comparison is the expensive
// part, so the scan short-circuits on the first match.
func (s *InvitationService) findPendingByToken(token string) (*models.Invitation, error) {
	var pending []models.Invitation
	if err := s.db.Where("status = ?", models.InvitationPending).Find(&pending).Error; err != nil {
		return nil, err
	}
	for i := range pending {
		if utils.VerifyInviteToken(token, pending[i].TokenHash) {
			return &pending[i], nil
		}
	}
	return nil, nil
}

// ValidateToken resolves an invitation token for the public accept page.
// An overdue pending invitation is flipped to expired here, lazily, and
// reported as such rather than as unknown.
func (s *InvitationService) ValidateToken(token string) (*TokenValidation, error) {
	inv, err := s.findPendingByToken(token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, &InvitationError{Code: CodeInvalidToken, Message: "invitation not found or no longer valid"}
	}

	if time.Now().After(inv.ExpiresAt) {
		if err := s.db.Model(inv).Update("status", models.InvitationExpired).Error; err != nil {
			return nil, err
		}
		return &TokenValidation{Valid: false, Expired: true}, nil
	}

	var timeline models.Timeline
	if err := s.db.First(&timeline, "id = ?", inv.TimelineID).Error; err != nil {
		return nil, err
	}
	var inviter models.User
	if err := s.db.First(&inviter, "id = ?", inv.InvitedBy).Error; err != nil {
		return nil, err
	}

	var userCount int64
	if err := s.db.Model(&models.User{}).Where("email = ?", inv.Email).Count(&userCount).Error; err != nil {
		return nil, err
	}

	return &TokenValidation{
		Valid:          true,
		Email:          inv.Email,
		Role:           inv.Role,
		TimelineID:     inv.TimelineID,
		TimelineName:   timeline.Name,
		InviterName:    inviter.Name,
		IsExistingUser: userCount > 0,
	}, nil
}

// resolveForAccept fetches and checks an invitation for redemption, flipping
// overdue rows to expired on the way.
func (s *InvitationService) resolveForAccept(token string) (*models.Invitation, error) {
	inv, err := s.findPendingByToken(token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, &InvitationError{Code: CodeInvalidToken, Message: "invitation not found or no longer valid"}
	}
	if time.Now().After(inv.ExpiresAt) {
		if err := s.db.Model(inv).Update("status", models.InvitationExpired).Error; err != nil {
			return nil, err
		}
		return nil, &InvitationError{Code: CodeInvitationExpired, Message: "this invitation has expired"}
	}
	return inv, nil
}

// AcceptNewUser redeems an invitation by creating a brand-new account for the
// invited address. If an account already exists for that address the caller
// is redirected to the existing-user flow instead of silently hijacking it.
// Account, membership, and invitation state change in one transaction, and a
// signed session token is returned so the new user lands logged in.
func (s *InvitationService) AcceptNewUser(token string, req *AcceptNewUserRequest) (*AcceptResult, error) {
	inv, err := s.resolveForAccept(token)
	if err != nil {
		return nil, err
	}

	var existingCount int64
	if err := s.db.Model(&models.User{}).Where("email = ?", inv.Email).Count(&existingCount).Error; err != nil {
		return nil, err
	}
	if existingCount > 0 {
		return nil, &InvitationError{Code: CodeEmailMismatch, Message: "an account already exists for this email, please sign in to accept"}
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        inv.Email,
		Name:         req.Name,
		PasswordHash: hash,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return s.redeem(tx, inv, user.ID)
	})
	if err != nil {
		return nil, err
	}

	jwt, err := utils.GenerateToken(user.ID, user.Email, user.Name, s.jwtExpireHours)
	if err != nil {
		return nil, err
	}

	var timeline models.Timeline
	if err := s.db.First(&timeline, "id = ?", inv.TimelineID).Error; err != nil {
		return nil, err
	}

	logger.For("invitations").Info().
		Str("invitation_id", inv.ID).
		Str("timeline_id", inv.TimelineID).
		Msg("invitation accepted by new user")

	return &AcceptResult{User: &user, Token: jwt, Timeline: &timeline}, nil
}

// AcceptExistingUser redeems an invitation on behalf of a signed-in account.
// The account's email must match the invited address, case-insensitively.
func (s *InvitationService) AcceptExistingUser(token, userID string) (*models.Timeline, error) {
	inv, err := s.resolveForAccept(token)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	if !strings.EqualFold(user.Email, inv.Email) {
		return nil, &InvitationError{Code: CodeEmailMismatch, Message: "this invitation was issued for a different email address"}
	}

	var memberCount int64
	err = s.db.Model(&models.TimelineMember{}).
		Where("timeline_id = ? AND user_id = ?", inv.TimelineID, userID).
		Count(&memberCount).Error
	if err != nil {
		return nil, err
	}
	if memberCount > 0 {
		return nil, &InvitationError{Code: CodeAlreadyMember, Message: "you are already a member of this timeline"}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.redeem(tx, inv, userID)
	})
	if err != nil {
		return nil, err
	}

	var timeline models.Timeline
	if err := s.db.First(&timeline, "id = ?", inv.TimelineID).Error; err != nil {
		return nil, err
	}

	logger.For("invitations").Info().
		Str("invitation_id", inv.ID).
		Str("timeline_id", inv.TimelineID).
		Str("user_id", userID).
		Msg("invitation accepted by existing user")

	return &timeline, nil
}

// redeem marks the invitation accepted and records the membership.
func (s *InvitationService) redeem(tx *gorm.DB, inv *models.Invitation, userID string) error {
	now := time.Now()
	res := tx.Model(&models.Invitation{}).
		Where("id = ? AND status = ?", inv.ID, models.InvitationPending).
		Updates(map[string]interface{}{
			"status":              models.InvitationAccepted,
			"accepted_at":         now,
			"accepted_by_user_id": userID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &InvitationError{Code: CodeInvalidToken, Message: "invitation not found or no longer valid"}
	}

	member := models.TimelineMember{
		TimelineID: inv.TimelineID,
		UserID:     userID,
		Role:       inv.Role,
		InvitedBy:  &inv.InvitedBy,
	}
	return tx.Create(&member).Error
}

// ListPending returns all pending invitations for a timeline, newest first.
func (s *InvitationService) ListPending(timelineID string) ([]models.Invitation, error) {
	var invitations []models.Invitation
	err := s.db.Where("timeline_id = ? AND status = ?", timelineID, models.InvitationPending).
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, err
	}
	return invitations, nil
}

// Resend reissues a pending invitation's token and expiry and sends a fresh
// email. Like Create, a failed send restores the previous token so the
// original email keeps working.
func (s *InvitationService) Resend(timelineID, invitationID string) (*models.Invitation, error) {
	var invitation models.Invitation
	err := s.db.Where("id = ? AND timeline_id = ?", invitationID, timelineID).
		Take(&invitation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Message: "invitation not found"}
		}
		return nil, err
	}
	if invitation.Status != models.InvitationPending {
		return nil, &InvitationError{Code: CodeValidationError, Message: fmt.Sprintf("cannot resend a %s invitation", invitation.Status)}
	}

	prior := invitation

	token, tokenHash, err := utils.IssueInviteToken()
	if err != nil {
		return nil, err
	}
	invitation.TokenHash = tokenHash
	invitation.ExpiresAt = time.Now().Add(invitationTTL)
	if err := s.db.Save(&invitation).Error; err != nil {
		return nil, err
	}

	if err := s.sendMail(&invitation, token); err != nil {
		if rbErr := s.db.Save(&prior).Error; rbErr != nil {
			logger.For("invitations").Error().Err(rbErr).Str("invitation_id", prior.ID).Msg("rollback after resend failure failed")
		}
		return nil, &InvitationError{Code: CodeEmailSendFailed, Message: "failed to send invitation email"}
	}

	return &invitation, nil
}

// Cancel marks a pending invitation cancelled. Cancelling an invitation that
// is not pending is a no-op; the returned bool reports whether a row changed.
func (s *InvitationService) Cancel(timelineID, invitationID string) (bool, error) {
	res := s.db.Model(&models.Invitation{}).
		Where("id = ? AND timeline_id = ? AND status = ?", invitationID, timelineID, models.InvitationPending).
		Update("status", models.InvitationCancelled)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ExpireOverdue flips every overdue pending invitation to expired and
// returns how many rows changed. Run from the scheduler as a backstop to the
// lazy expiry in the token paths.
func (s *InvitationService) ExpireOverdue() (int64, error) {
	res := s.db.Model(&models.Invitation{}).
		Where("status = ? AND expires_at < ?", models.InvitationPending, time.Now()).
		Update("status", models.InvitationExpired)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
