package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/BorisNikolic/timeline-app-sub001/internal/models"
)

// PreferencesService stores per-user UI state, currently the last active
// timeline. Member removal clears the preference so the client never lands
// on a timeline the user can no longer see.
type PreferencesService struct {
	db *gorm.DB
}

func NewPreferencesService(db *gorm.DB) *PreferencesService {
	return &PreferencesService{db: db}
}

// Get returns the user's preferences, or nil when none exist yet.
func (s *PreferencesService) Get(userID string) (*models.UserPreference, error) {
	var pref models.UserPreference
	if err := s.db.Where("user_id = ?", userID).First(&pref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pref, nil
}

// SetLastTimeline records the user's last active timeline. The timeline must
// be one the user belongs to and must not be archived.
func (s *PreferencesService) SetLastTimeline(userID string, timelineID *string) (*models.UserPreference, error) {
	if timelineID != nil {
		var count int64
		s.db.Model(&models.TimelineMember{}).
			Where("timeline_id = ? AND user_id = ?", *timelineID, userID).
			Count(&count)
		if count == 0 {
			return nil, &ForbiddenError{Message: "cannot set preference: no access to timeline"}
		}

		var timeline models.Timeline
		if err := s.db.First(&timeline, "id = ?", *timelineID).Error; err != nil {
			return nil, &NotFoundError{Message: "timeline not found"}
		}
		if timeline.Status == models.StatusArchived {
			return nil, &ValidationError{Message: "cannot set preference: timeline is archived"}
		}
	}

	var pref models.UserPreference
	err := s.db.Where("user_id = ?", userID).First(&pref).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		pref = models.UserPreference{UserID: userID, LastTimelineID: timelineID}
		if err := s.db.Create(&pref).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := s.db.Model(&pref).Updates(map[string]interface{}{
			"last_timeline_id": timelineID,
			"updated_at":       time.Now(),
		}).Error; err != nil {
			return nil, err
		}
		pref.LastTimelineID = timelineID
	}

	return &pref, nil
}

// ClearIfLastTimeline nulls the preference when it points at the given
// timeline. Called after a member is removed or leaves; the conditional
// update makes it a no-op for everyone else.
func (s *PreferencesService) ClearIfLastTimeline(userID, timelineID string) error {
	return s.db.Model(&models.UserPreference{}).
		Where("user_id = ? AND last_timeline_id = ?", userID, timelineID).
		Updates(map[string]interface{}{
			"last_timeline_id": nil,
			"updated_at":       time.Now(),
		}).Error
}
