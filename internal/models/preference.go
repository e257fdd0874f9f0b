package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserPreference stores per-user UI state, currently the last active timeline.
type UserPreference struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	UserID         string    `gorm:"uniqueIndex;size:36;not null" json:"user_id"`
	LastTimelineID *string   `gorm:"size:36" json:"last_timeline_id"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (UserPreference) TableName() string { return "user_preferences" }

func (p *UserPreference) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
