package services

import (
	"errors"
	"fmt"
	"smartcomply/internal/models"

	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("compliance category not found")
	ErrCategoryExists   = errors.New("compliance category name already in use")
)

type CategoryService struct {
	activity *ActivityService
}

func NewCategoryService() *CategoryService {
	return &CategoryService{activity: NewActivityService()}
}

// GetCategories returns categories filtered by enabled state and search term
func (s *CategoryService) GetCategories(statusFilter, searchTerm string) ([]models.ComplianceCategory, error) {
	q := models.DB.Model(&models.ComplianceCategory{})

	switch statusFilter {
	case "enabled":
		q = q.Where("is_enabled = ?", true)
	case "disabled":
		q = q.Where("is_enabled = ?", false)
	}
	if searchTerm != "" {
		like := "%" + searchTerm + "%"
		q = q.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	var categories []models.ComplianceCategory
	if err := q.Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// GetCategory returns one category by ID
func (s *CategoryService) GetCategory(id uint) (*models.ComplianceCategory, error) {
	var category models.ComplianceCategory
	if err := models.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// CreateCategory creates a compliance category with a unique name
func (s *CategoryService) CreateCategory(actor models.Actor, name, description string) (*models.ComplianceCategory, error) {
	if name == "" {
		return nil, errors.New("name is required")
	}

	var existing models.ComplianceCategory
	if err := models.DB.Where("LOWER(name) = LOWER(?)", name).First(&existing).Error; err == nil {
		return nil, ErrCategoryExists
	}

	category := &models.ComplianceCategory{Name: name, Description: description, IsEnabled: true}
	if err := models.DB.Create(category).Error; err != nil {
		return nil, err
	}

	s.activity.Record(actor.StaffID, models.ActionAdd,
		Describe(actor.Name, actor.StaffID,
			fmt.Sprintf("added a new compliance category named %s", category.Name)))

	return category, nil
}

// UpdateCategory updates a category's name and description
func (s *CategoryService) UpdateCategory(actor models.Actor, id uint, name, description string) (*models.ComplianceCategory, error) {
	category, err := s.GetCategory(id)
	if err != nil {
		return nil, err
	}

	var existing models.ComplianceCategory
	if err := models.DB.Where("LOWER(name) = LOWER(?) AND id != ?", name, id).
		First(&existing).Error; err == nil {
		return nil, ErrCategoryExists
	}

	category.Name = name
	category.Description = description
	if err := models.DB.Save(category).Error; err != nil {
		return nil, err
	}

	s.activity.Record(actor.StaffID, models.ActionUpdate,
		Describe(actor.Name, actor.StaffID,
			fmt.Sprintf("updated the compliance category named %s (ID: %d)", category.Name, category.ID)))

	return category, nil
}

// ToggleCategoryStatus flips the enabled flag. Disabling a category stops
// new audits against it; existing audits are untouched.
func (s *CategoryService) ToggleCategoryStatus(actor models.Actor, id uint) (*models.ComplianceCategory, error) {
	category, err := s.GetCategory(id)
	if err != nil {
		return nil, err
	}

	category.IsEnabled = !category.IsEnabled
	if err := models.DB.Save(category).Error; err != nil {
		return nil, err
	}

	verb := "disabled"
	if category.IsEnabled {
		verb = "enabled"
	}
	s.activity.Record(actor.StaffID, models.ActionUpdate,
		Describe(actor.Name, actor.StaffID,
			fmt.Sprintf("%s the compliance category named %s (ID: %d)", verb, category.Name, category.ID)))

	return category, nil
}
