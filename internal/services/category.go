package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/BorisNikolic/timeline-app-sub001/internal/models"
)

type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

type CategoryRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Color string `json:"color"`
}

func (s *CategoryService) List(timelineID string) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.Where("timeline_id = ?", timelineID).Order("name ASC").Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *CategoryService) Create(timelineID, userID string, req *CategoryRequest) (*models.Category, error) {
	var count int64
	err := s.db.Model(&models.Category{}).
		Where("timeline_id = ? AND LOWER(name) = LOWER(?)", timelineID, req.Name).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &ConflictError{Message: "a category with this name already exists"}
	}

	category := models.Category{
		TimelineID: timelineID,
		Name:       req.Name,
		Color:      req.Color,
		CreatedBy:  userID,
	}
	if category.Color == "" {
		category.Color = "gray"
	}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) Update(timelineID, categoryID string, req *CategoryRequest) (*models.Category, error) {
	var category models.Category
	err := s.db.Where("id = ? AND timeline_id = ?", categoryID, timelineID).Take(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Message: "category not found"}
		}
		return nil, err
	}

	category.Name = req.Name
	if req.Color != "" {
		category.Color = req.Color
	}
	if err := s.db.Save(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Delete removes a category and detaches its events.
func (s *CategoryService) Delete(timelineID, categoryID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Event{}).
			Where("timeline_id = ? AND category_id = ?", timelineID, categoryID).
			Update("category_id", "").Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Category{}, "id = ? AND timeline_id = ?", categoryID, timelineID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &NotFoundError{Message: "category not found"}
		}
		return nil
	})
}
