package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invitation statuses. pending is the only non-terminal state.
const (
	InvitationPending   = "pending"
	InvitationAccepted  = "accepted"
	InvitationExpired   = "expired"
	InvitationCancelled = "cancelled"
)

// Invitation is an emailed offer to join a timeline. Only the bcrypt hash of
// the token is persisted; the raw token exists solely inside the invite link.
// At most one pending invitation exists per (timeline, email).
type Invitation struct {
	ID               string     `gorm:"primaryKey;size:36" json:"id"`
	Email            string     `gorm:"index;size:255;not null" json:"email"`
	TokenHash        string     `gorm:"size:255;not null" json:"-"`
	Role             string     `gorm:"size:20;not null" json:"role"`
	Status           string     `gorm:"size:20;default:pending;index" json:"status"`
	TimelineID       string     `gorm:"index;size:36;not null" json:"timeline_id"`
	Timeline         *Timeline  `gorm:"foreignKey:TimelineID;constraint:OnDelete:CASCADE" json:"-"`
	InvitedBy        string     `gorm:"size:36;not null" json:"invited_by"`
	TargetUserID     *string    `gorm:"size:36" json:"target_user_id,omitempty"`
	ExpiresAt        time.Time  `gorm:"not null" json:"expires_at"`
	AcceptedAt       *time.Time `json:"accepted_at,omitempty"`
	AcceptedByUserID *string    `gorm:"size:36" json:"accepted_by_user_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (Invitation) TableName() string { return "timeline_invitations" }

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
