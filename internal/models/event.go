package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event statuses.
const (
	EventNotStarted = "Not Started"
	EventInProgress = "In Progress"
	EventCompleted  = "Completed"
)

// Event is a dated entry in a timeline. SourceEventID links a copied event
// back to the original for traceability.
type Event struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	TimelineID     string    `gorm:"index;size:36;not null" json:"timeline_id"`
	Timeline       *Timeline `gorm:"foreignKey:TimelineID;constraint:OnDelete:CASCADE" json:"-"`
	Title          string    `gorm:"size:200;not null" json:"title"`
	Date           string    `gorm:"size:10;not null" json:"date"`
	Time           string    `gorm:"size:8" json:"time"`
	EndTime        string    `gorm:"size:8" json:"end_time"`
	Description    string    `gorm:"type:text" json:"description"`
	CategoryID     string    `gorm:"index;size:36" json:"category_id"`
	Category       *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	AssignedPerson string    `gorm:"size:100" json:"assigned_person"`
	Status         string    `gorm:"size:20;default:Not Started" json:"status"`
	Priority       string    `gorm:"size:20" json:"priority"`
	SourceEventID  *string   `gorm:"size:36" json:"source_event_id,omitempty"`
	CreatedBy      string    `gorm:"size:36" json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Event) TableName() string { return "events" }

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
