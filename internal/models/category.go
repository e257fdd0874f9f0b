package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups events within a timeline.
type Category struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	TimelineID string    `gorm:"index;size:36;not null" json:"timeline_id"`
	Timeline   *Timeline `gorm:"foreignKey:TimelineID;constraint:OnDelete:CASCADE" json:"-"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Color      string    `gorm:"size:20;default:blue" json:"color"`
	CreatedBy  string    `gorm:"size:36" json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Category) TableName() string { return "categories" }

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
