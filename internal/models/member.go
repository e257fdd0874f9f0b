package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TimelineMember represents a user's membership and role within a timeline.
// InvitedBy records who brought the user in; it is a back-reference, not
// ownership. Every non-empty timeline must retain at least one Admin.
type TimelineMember struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	TimelineID string    `gorm:"uniqueIndex:idx_timeline_user;size:36;not null" json:"timeline_id"`
	Timeline   *Timeline `gorm:"foreignKey:TimelineID;constraint:OnDelete:CASCADE" json:"timeline,omitempty"`
	UserID     string    `gorm:"uniqueIndex:idx_timeline_user;size:36;not null" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role       string    `gorm:"size:20;not null" json:"role"` // Admin, Editor, Viewer
	InvitedBy  *string   `gorm:"size:36" json:"invited_by"`
	JoinedAt   time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

func (TimelineMember) TableName() string { return "timeline_members" }

func (m *TimelineMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
