package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Timeline is a named, dated collection of categorized events with its own
// membership and status lifecycle. Dates are ISO strings (YYYY-MM-DD).
// UpdatedAt doubles as the optimistic-concurrency version stamp.
type Timeline struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	StartDate   string    `gorm:"size:10;not null" json:"start_date"`
	EndDate     string    `gorm:"size:10;not null" json:"end_date"`
	ThemeColor  string    `gorm:"size:20;default:blue" json:"theme_color"`
	Status      string    `gorm:"size:20;default:Planning" json:"status"`
	IsTemplate  bool      `gorm:"default:false" json:"is_template"`
	OwnerID     string    `gorm:"size:36;not null" json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Timeline) TableName() string { return "timelines" }

func (t *Timeline) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TimelineWithStats carries aggregate counts for list and detail views.
type TimelineWithStats struct {
	Timeline
	MemberCount          int64  `json:"member_count"`
	EventCount           int64  `json:"event_count"`
	CompletedEventCount  int64  `json:"completed_event_count"`
	CompletionPercentage int    `json:"completion_percentage"`
	UserRole             string `json:"user_role,omitempty"`
}
