package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/BorisNikolic/timeline-app-sub001/internal/models"
	"github.com/BorisNikolic/timeline-app-sub001/internal/utils"
	"github.com/BorisNikolic/timeline-app-sub001/pkg/logger"
)

// copyBatchSize bounds the transaction and memory footprint when duplicating
// a timeline's events.
const copyBatchSize = 50

// TimelineService owns timeline records: creation with the creator as first
// Admin, optimistic-concurrency updates, status lifecycle, and duplication
// into a new date range.
type TimelineService struct {
	db *gorm.DB
}

func NewTimelineService(db *gorm.DB) *TimelineService {
	return &TimelineService{db: db}
}

type CreateTimelineRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	ThemeColor  string `json:"theme_color"`
}

type UpdateTimelineRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	ThemeColor  *string `json:"theme_color"`
	Status      *string `json:"status"`
	// ExpectedUpdatedAt, when present, makes the write conditional on the
	// stored version stamp (optimistic concurrency).
	ExpectedUpdatedAt *time.Time `json:"expected_updated_at"`
}

type CopyTimelineRequest struct {
	Name               string `json:"name" binding:"required,max=200"`
	StartDate          string `json:"start_date" binding:"required"`
	EndDate            string `json:"end_date" binding:"required"`
	IncludeCategories  *bool  `json:"include_categories"`
	IncludeEvents      *bool  `json:"include_events"`
	IncludeAssignments *bool  `json:"include_assignments"`
}

// CopyResult reports what the duplication actually produced. A partial copy
// is possible on failure mid-batch; the counts keep that honest.
type CopyResult struct {
	Timeline          *models.Timeline `json:"timeline"`
	CategoriesCopied  int              `json:"categories_copied"`
	EventsCopied      int              `json:"events_copied"`
	EventsSkipped     int              `json:"events_skipped"`
}

// nameTaken reports whether the user already owns or belongs to a timeline
// with the same name, compared case-insensitively.
func nameTaken(tx *gorm.DB, userID, name string) (bool, error) {
	var count int64
	err := tx.Model(&models.Timeline{}).
		Joins("JOIN timeline_members tm ON tm.timeline_id = timelines.id").
		Where("LOWER(timelines.name) = LOWER(?) AND tm.user_id = ?", name, userID).
		Count(&count).Error
	return count > 0, err
}

// Create inserts a timeline and its creator's Admin membership atomically.
func (s *TimelineService) Create(ownerID string, req *CreateTimelineRequest) (*models.Timeline, error) {
	if !utils.ValidDateRange(req.StartDate, req.EndDate) {
		return nil, &ValidationError{Message: "invalid date range"}
	}

	timeline := models.Timeline{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		ThemeColor:  req.ThemeColor,
		Status:      models.StatusPlanning,
		OwnerID:     ownerID,
	}
	if timeline.ThemeColor == "" {
		timeline.ThemeColor = "blue"
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		taken, err := nameTaken(tx, ownerID, req.Name)
		if err != nil {
			return err
		}
		if taken {
			return &ConflictError{Message: fmt.Sprintf("a timeline named %q already exists", req.Name)}
		}

		if err := tx.Create(&timeline).Error; err != nil {
			return err
		}

		member := models.TimelineMember{
			TimelineID: timeline.ID,
			UserID:     ownerID,
			Role:       models.RoleAdmin,
			InvitedBy:  &ownerID,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}

	return &timeline, nil
}

const statsSelect = `timelines.*, tm.role AS user_role,
	(SELECT COUNT(*) FROM timeline_members WHERE timeline_members.timeline_id = timelines.id) AS member_count,
	(SELECT COUNT(*) FROM events WHERE events.timeline_id = timelines.id) AS event_count,
	(SELECT COUNT(*) FROM events WHERE events.timeline_id = timelines.id AND events.status = 'Completed') AS completed_event_count`

// GetAccessible lists all non-archived timelines the user belongs to, most
// recently updated first.
func (s *TimelineService) GetAccessible(userID string) ([]models.TimelineWithStats, error) {
	var rows []models.TimelineWithStats
	err := s.db.Model(&models.Timeline{}).
		Select(statsSelect).
		Joins("JOIN timeline_members tm ON timelines.id = tm.timeline_id").
		Where("tm.user_id = ? AND timelines.status <> ?", userID, models.StatusArchived).
		Order("timelines.updated_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		fillCompletion(&rows[i])
	}
	return rows, nil
}

// GetByID returns a single timeline with stats, or nil when the user has no
// membership on it.
func (s *TimelineService) GetByID(timelineID, userID string) (*models.TimelineWithStats, error) {
	var rows []models.TimelineWithStats
	err := s.db.Model(&models.Timeline{}).
		Select(statsSelect).
		Joins("JOIN timeline_members tm ON timelines.id = tm.timeline_id").
		Where("timelines.id = ? AND tm.user_id = ?", timelineID, userID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	fillCompletion(&rows[0])
	return &rows[0], nil
}

func fillCompletion(t *models.TimelineWithStats) {
	if t.EventCount > 0 {
		t.CompletionPercentage = int(float64(t.CompletedEventCount)/float64(t.EventCount)*100 + 0.5)
	}
}

// VerifyAccess resolves the user's role on a timeline and checks it against
// the minimum required role. Absence and insufficient rank are both
// ForbiddenError so callers cannot probe for timeline existence.
func (s *TimelineService) VerifyAccess(userID, timelineID, minRole string) (string, *models.Timeline, error) {
	var row struct {
		models.Timeline
		UserRole string
	}
	err := s.db.Model(&models.Timeline{}).
		Select("timelines.*, tm.role AS user_role").
		Joins("JOIN timeline_members tm ON timelines.id = tm.timeline_id").
		Where("timelines.id = ? AND tm.user_id = ?", timelineID, userID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, &ForbiddenError{Message: "access denied to this timeline"}
		}
		return "", nil, err
	}

	if !models.HasMinimumRole(row.UserRole, minRole) {
		return "", nil, &ForbiddenError{Message: fmt.Sprintf("requires %s role", minRole)}
	}

	timeline := row.Timeline
	return row.UserRole, &timeline, nil
}

// Update applies a partial patch. A status change is re-validated against the
// freshly read current status inside the transaction. When the request
// carries an expected version stamp, the UPDATE itself is conditional on the
// stored stamp matching at millisecond precision; a miss on an existing row
// is a ConflictError ("modified by another user, refresh and retry").
func (s *TimelineService) Update(timelineID string, req *UpdateTimelineRequest) (*models.Timeline, error) {
	var updated models.Timeline

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var current models.Timeline
		if err := tx.First(&current, "id = ?", timelineID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Message: "timeline not found"}
			}
			return err
		}

		updates := map[string]interface{}{}
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.StartDate != nil {
			updates["start_date"] = *req.StartDate
		}
		if req.EndDate != nil {
			updates["end_date"] = *req.EndDate
		}
		if req.ThemeColor != nil {
			updates["theme_color"] = *req.ThemeColor
		}
		if req.Status != nil {
			if !models.IsValidStatus(*req.Status) {
				return &ValidationError{Message: "unknown status: " + *req.Status}
			}
			if !models.IsValidStatusTransition(current.Status, *req.Status) {
				return &ConflictError{Message: fmt.Sprintf("cannot transition from %s to %s", current.Status, *req.Status)}
			}
			updates["status"] = *req.Status
		}

		if len(updates) == 0 {
			updated = current
			return nil
		}

		// Stamps are written at millisecond precision everywhere (see
		// models.StampNow) so the client can echo one back exactly for the
		// conditional write.
		updates["updated_at"] = models.StampNow()

		query := tx.Model(&models.Timeline{}).Where("id = ?", timelineID)
		if req.ExpectedUpdatedAt != nil {
			query = query.Where("updated_at = ?", req.ExpectedUpdatedAt.Truncate(time.Millisecond))
		}

		res := query.Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if req.ExpectedUpdatedAt != nil {
				return &ConflictError{Message: "timeline was modified by another user, please refresh and try again"}
			}
			return &NotFoundError{Message: "timeline not found"}
		}

		return tx.First(&updated, "id = ?", timelineID).Error
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// Delete removes a timeline; members, events, categories, and invitations go
// with it through the schema's cascade rules.
func (s *TimelineService) Delete(timelineID string) error {
	res := s.db.Delete(&models.Timeline{}, "id = ?", timelineID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Message: "timeline not found"}
	}
	return nil
}

// SetTemplate marks or unmarks a timeline as a template.
func (s *TimelineService) SetTemplate(timelineID string, isTemplate bool) (*models.Timeline, error) {
	res := s.db.Model(&models.Timeline{}).Where("id = ?", timelineID).Update("is_template", isTemplate)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, &NotFoundError{Message: "timeline not found"}
	}

	var timeline models.Timeline
	if err := s.db.First(&timeline, "id = ?", timelineID).Error; err != nil {
		return nil, err
	}
	return &timeline, nil
}

// ListTemplates returns all template timelines, visible to every user.
func (s *TimelineService) ListTemplates() ([]models.Timeline, error) {
	var templates []models.Timeline
	err := s.db.Where("is_template = ?", true).Order("name ASC").Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

// Unarchive moves an archived timeline back to Completed, the only permitted
// exit from Archived.
func (s *TimelineService) Unarchive(timelineID string) (*models.Timeline, error) {
	status := models.StatusCompleted
	return s.Update(timelineID, &UpdateTimelineRequest{Status: &status})
}

// Copy duplicates a timeline into a new date range. The new timeline starts
// in Planning with the requester as sole Admin regardless of source status.
// Every copied event is shifted by one constant day offset so multi-day
// structures keep their duration and relative position. Events are written in
// fixed-size batches; the operation is best-effort across batches, and the
// returned counts are the only truthful statement of what was copied.
func (s *TimelineService) Copy(sourceID, requesterID string, req *CopyTimelineRequest) (*CopyResult, error) {
	includeCategories := req.IncludeCategories == nil || *req.IncludeCategories
	includeEvents := req.IncludeEvents == nil || *req.IncludeEvents
	includeAssignments := req.IncludeAssignments == nil || *req.IncludeAssignments

	if !utils.ValidDateRange(req.StartDate, req.EndDate) {
		return nil, &ValidationError{Message: "invalid date range"}
	}

	var source models.Timeline
	if err := s.db.First(&source, "id = ?", sourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Message: "source timeline not found"}
		}
		return nil, err
	}

	dayOffset, err := utils.CalculateDayOffset(source.StartDate, req.StartDate)
	if err != nil {
		return nil, &ValidationError{Message: "invalid start date"}
	}

	newTimeline := models.Timeline{
		Name:        req.Name,
		Description: source.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		ThemeColor:  source.ThemeColor,
		Status:      models.StatusPlanning,
		OwnerID:     requesterID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		taken, err := nameTaken(tx, requesterID, req.Name)
		if err != nil {
			return err
		}
		if taken {
			return &ConflictError{Message: fmt.Sprintf("a timeline named %q already exists", req.Name)}
		}

		if err := tx.Create(&newTimeline).Error; err != nil {
			return err
		}

		member := models.TimelineMember{
			TimelineID: newTimeline.ID,
			UserID:     requesterID,
			Role:       models.RoleAdmin,
			InvitedBy:  &requesterID,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}

	result := &CopyResult{Timeline: &newTimeline}

	categoryIDMap := map[string]string{}
	if includeCategories {
		var categories []models.Category
		if err := s.db.Where("timeline_id = ?", sourceID).Find(&categories).Error; err != nil {
			return nil, err
		}
		for _, cat := range categories {
			newCat := models.Category{
				TimelineID: newTimeline.ID,
				Name:       cat.Name,
				Color:      cat.Color,
				CreatedBy:  requesterID,
			}
			if err := s.db.Create(&newCat).Error; err != nil {
				return nil, err
			}
			categoryIDMap[cat.ID] = newCat.ID
			result.CategoriesCopied++
		}
	}

	// Events only make sense against copied categories.
	if includeEvents && includeCategories {
		if err := s.copyEvents(&source, &newTimeline, requesterID, dayOffset, includeAssignments, categoryIDMap, result); err != nil {
			return nil, err
		}
	}

	logger.For("timelines").Info().
		Str("source_id", sourceID).
		Str("copy_id", newTimeline.ID).
		Int("events_copied", result.EventsCopied).
		Int("events_skipped", result.EventsSkipped).
		Msg("timeline copied")

	return result, nil
}

func (s *TimelineService) copyEvents(
	source, target *models.Timeline,
	requesterID string,
	dayOffset int,
	includeAssignments bool,
	categoryIDMap map[string]string,
	result *CopyResult,
) error {
	var events []models.Event
	if err := s.db.Where("timeline_id = ?", source.ID).Order("date ASC").Find(&events).Error; err != nil {
		return err
	}

	for start := 0; start < len(events); start += copyBatchSize {
		end := start + copyBatchSize
		if end > len(events) {
			end = len(events)
		}
		batch := events[start:end]

		err := s.db.Transaction(func(tx *gorm.DB) error {
			for i := range batch {
				event := &batch[i]

				newCategoryID, ok := categoryIDMap[event.CategoryID]
				if !ok && event.CategoryID != "" {
					// Category not in the map (orphaned or cross-timeline
					// reference): copy it on demand.
					var orig models.Category
					if err := tx.First(&orig, "id = ?", event.CategoryID).Error; err == nil {
						newCat := models.Category{
							TimelineID: target.ID,
							Name:       orig.Name,
							Color:      orig.Color,
							CreatedBy:  requesterID,
						}
						if err := tx.Create(&newCat).Error; err != nil {
							return err
						}
						categoryIDMap[event.CategoryID] = newCat.ID
						newCategoryID = newCat.ID
						ok = true
						result.CategoriesCopied++
					}
				}

				// Unresolvable category: skip the event rather than fail the copy.
				if !ok {
					result.EventsSkipped++
					continue
				}

				newDate, err := utils.ShiftDate(event.Date, dayOffset)
				if err != nil {
					result.EventsSkipped++
					continue
				}

				assigned := ""
				if includeAssignments {
					assigned = event.AssignedPerson
				}

				sourceEventID := event.ID
				copied := models.Event{
					TimelineID:     target.ID,
					Title:          event.Title,
					Date:           newDate,
					Time:           event.Time,
					EndTime:        event.EndTime,
					Description:    event.Description,
					CategoryID:     newCategoryID,
					AssignedPerson: assigned,
					Status:         models.EventNotStarted,
					Priority:       event.Priority,
					SourceEventID:  &sourceEventID,
					CreatedBy:      requesterID,
				}
				if err := tx.Create(&copied).Error; err != nil {
					return err
				}
				result.EventsCopied++
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}
