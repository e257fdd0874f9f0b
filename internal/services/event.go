package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/BorisNikolic/timeline-app-sub001/internal/models"
	"github.com/BorisNikolic/timeline-app-sub001/internal/utils"
)

type EventService struct {
	db *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db}
}

type CreateEventRequest struct {
	Title          string `json:"title" binding:"required,max=200"`
	Date           string `json:"date" binding:"required"`
	Time           string `json:"time"`
	EndTime        string `json:"end_time"`
	Description    string `json:"description"`
	CategoryID     string `json:"category_id"`
	AssignedPerson string `json:"assigned_person"`
	Priority       string `json:"priority"`
}

type UpdateEventRequest struct {
	Title          *string `json:"title"`
	Date           *string `json:"date"`
	Time           *string `json:"time"`
	EndTime        *string `json:"end_time"`
	Description    *string `json:"description"`
	CategoryID     *string `json:"category_id"`
	AssignedPerson *string `json:"assigned_person"`
	Status         *string `json:"status"`
	Priority       *string `json:"priority"`
}

func (s *EventService) List(timelineID string) ([]models.Event, error) {
	var events []models.Event
	err := s.db.Where("timeline_id = ?", timelineID).Order("date ASC, time ASC").Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (s *EventService) Create(timelineID, userID string, req *CreateEventRequest) (*models.Event, error) {
	if !utils.ValidDateRange(req.Date, req.Date) {
		return nil, &ValidationError{Message: "invalid event date"}
	}

	if req.CategoryID != "" {
		var count int64
		err := s.db.Model(&models.Category{}).
			Where("id = ? AND timeline_id = ?", req.CategoryID, timelineID).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, &ValidationError{Message: "category does not belong to this timeline"}
		}
	}

	event := models.Event{
		TimelineID:     timelineID,
		Title:          req.Title,
		Date:           req.Date,
		Time:           req.Time,
		EndTime:        req.EndTime,
		Description:    req.Description,
		CategoryID:     req.CategoryID,
		AssignedPerson: req.AssignedPerson,
		Status:         models.EventNotStarted,
		Priority:       req.Priority,
		CreatedBy:      userID,
	}
	if err := s.db.Create(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *EventService) Update(timelineID, eventID string, req *UpdateEventRequest) (*models.Event, error) {
	var event models.Event
	err := s.db.Where("id = ? AND timeline_id = ?", eventID, timelineID).Take(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Message: "event not found"}
		}
		return nil, err
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Date != nil {
		if !utils.ValidDateRange(*req.Date, *req.Date) {
			return nil, &ValidationError{Message: "invalid event date"}
		}
		event.Date = *req.Date
	}
	if req.Time != nil {
		event.Time = *req.Time
	}
	if req.EndTime != nil {
		event.EndTime = *req.EndTime
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.CategoryID != nil {
		if *req.CategoryID != "" {
			var count int64
			err := s.db.Model(&models.Category{}).
				Where("id = ? AND timeline_id = ?", *req.CategoryID, timelineID).
				Count(&count).Error
			if err != nil {
				return nil, err
			}
			if count == 0 {
				return nil, &ValidationError{Message: "category does not belong to this timeline"}
			}
		}
		event.CategoryID = *req.CategoryID
	}
	if req.AssignedPerson != nil {
		event.AssignedPerson = *req.AssignedPerson
	}
	if req.Status != nil {
		if *req.Status != models.EventNotStarted && *req.Status != models.EventInProgress && *req.Status != models.EventCompleted {
			return nil, &ValidationError{Message: "unknown event status: " + *req.Status}
		}
		event.Status = *req.Status
	}
	if req.Priority != nil {
		event.Priority = *req.Priority
	}

	if err := s.db.Save(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *EventService) Delete(timelineID, eventID string) error {
	res := s.db.Delete(&models.Event{}, "id = ? AND timeline_id = ?", eventID, timelineID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Message: "event not found"}
	}
	return nil
}
