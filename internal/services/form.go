package services

import (
	"errors"
	"fmt"
	"smartcomply/internal/models"

	"gorm.io/gorm"
)

var (
	ErrFormNotFound     = errors.New("form not found")
	ErrFormNotPublished = errors.New("form is not published")
	ErrNoElements       = errors.New("form must have at least one element")
	ErrBadElement       = errors.New("invalid form element")
)

type FormService struct {
	activity *ActivityService
}

func NewFormService() *FormService {
	return &FormService{activity: NewActivityService()}
}

type FormElementData struct {
	Label       string             `json:"label"`
	ElementType models.ElementType `json:"element_type"`
	Placeholder string             `json:"placeholder"`
	IsRequired  bool               `json:"is_required"`
	Options     []string           `json:"options"`
	Order       int                `json:"order"`
}

type SaveFormData struct {
	Name       string            `json:"name"`
	CategoryID uint              `json:"category_id"`
	Elements   []FormElementData `json:"elements"`
}

func buildElements(formID uint, data []FormElementData) ([]models.FormElement, error) {
	if len(data) == 0 {
		return nil, ErrNoElements
	}

	elements := make([]models.FormElement, 0, len(data))
	for i, d := range data {
		if !d.ElementType.IsValid() {
			return nil, fmt.Errorf("%w: unknown element type %q", ErrBadElement, d.ElementType)
		}
		if d.Label == "" {
			return nil, fmt.Errorf("%w: element %d has no label", ErrBadElement, i+1)
		}
		if d.ElementType.HasChoices() && len(d.Options) == 0 {
			return nil, fmt.Errorf("%w: element %q needs at least one option", ErrBadElement, d.Label)
		}

		order := d.Order
		if order == 0 {
			order = i + 1
		}
		elements = append(elements, models.FormElement{
			FormID:      formID,
			Label:       d.Label,
			ElementType: d.ElementType,
			Placeholder: d.Placeholder,
			IsRequired:  d.IsRequired,
			Options:     models.JoinAnswers(d.Options),
			Order:       order,
		})
	}
	return elements, nil
}

// GetForms returns forms filtered by status and name search
func (s *FormService) GetForms(statusFilter, searchTerm string) ([]models.Form, error) {
	q := models.DB.Model(&models.Form{}).Preload("Category")

	if statusFilter != "" {
		q = q.Where("status = ?", statusFilter)
	}
	if searchTerm != "" {
		q = q.Where("name LIKE ?", "%"+searchTerm+"%")
	}

	var forms []models.Form
	if err := q.Order("created_at DESC").Find(&forms).Error; err != nil {
		return nil, err
	}
	return forms, nil
}

// GetForm returns one form with its elements in render order
func (s *FormService) GetForm(id uint) (*models.Form, error) {
	var form models.Form
	if err := models.DB.Preload("Category").
		Preload("Elements", func(db *gorm.DB) *gorm.DB {
			return db.Order("form_elements.sort_order")
		}).First(&form, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFormNotFound
		}
		return nil, err
	}
	return &form, nil
}

// AvailableForms returns the published forms for a category, the set a
// responder can actually fill.
func (s *FormService) AvailableForms(categoryID uint) ([]models.Form, error) {
	var forms []models.Form
	if err := models.DB.Where("category_id = ? AND status = ?", categoryID, models.FormStatusPublished).
		Order("name").Find(&forms).Error; err != nil {
		return nil, err
	}
	return forms, nil
}

// CreateForm creates a form in the Editing state together with its elements
func (s *FormService) CreateForm(actor models.Actor, data *SaveFormData) (*models.Form, error) {
	if data.Name == "" {
		return nil, errors.New("form name is required")
	}

	var category models.ComplianceCategory
	if err := models.DB.First(&category, data.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	elements, err := buildElements(0, data.Elements)
	if err != nil {
		return nil, err
	}

	form := &models.Form{
		Name:       data.Name,
		CategoryID: data.CategoryID,
		Status:     models.FormStatusEditing,
		Elements:   elements,
	}

	if err := models.DB.Create(form).Error; err != nil {
		return nil, err
	}

	s.activity.Record(actor.StaffID, models.ActionAdd,
		Describe(actor.Name, actor.StaffID,
			fmt.Sprintf("added a new form named %s", form.Name)))

	return s.GetForm(form.ID)
}

// UpdateForm replaces a form's elements wholesale and moves its status:
// publish sets Published, a plain save sets Revised. Responses already
// committed keep pointing at the old element rows only if their IDs
// survive, so edits after submissions replace history; the activity log is
// the audit trail for that.
func (s *FormService) UpdateForm(actor models.Actor, id uint, data *SaveFormData, publish bool) (*models.Form, error) {
	form, err := s.GetForm(id)
	if err != nil {
		return nil, err
	}

	elements, err := buildElements(form.ID, data.Elements)
	if err != nil {
		return nil, err
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if data.Name != "" {
			form.Name = data.Name
		}
		if data.CategoryID != 0 {
			form.CategoryID = data.CategoryID
		}
		if publish {
			form.Status = models.FormStatusPublished
		} else {
			form.Status = models.FormStatusRevised
		}

		if err := tx.Where("form_id = ?", form.ID).Delete(&models.FormElement{}).Error; err != nil {
			return err
		}
		form.Elements = nil
		if err := tx.Save(form).Error; err != nil {
			return err
		}
		if err := tx.Create(&elements).Error; err != nil {
			return err
		}

		verb := "updated"
		if publish {
			verb = "published"
		}
		return s.activity.RecordTx(tx, actor.StaffID, models.ActionUpdate,
			Describe(actor.Name, actor.StaffID,
				fmt.Sprintf("%s the form named %s (ID: %d)", verb, form.Name, form.ID)))
	})
	if err != nil {
		return nil, err
	}

	return s.GetForm(form.ID)
}

// PublishForm moves an Editing or Revised form to Published
func (s *FormService) PublishForm(actor models.Actor, id uint) (*models.Form, error) {
	form, err := s.GetForm(id)
	if err != nil {
		return nil, err
	}

	form.Status = models.FormStatusPublished
	if err := models.DB.Save(form).Error; err != nil {
		return nil, err
	}

	s.activity.Record(actor.StaffID, models.ActionUpdate,
		Describe(actor.Name, actor.StaffID,
			fmt.Sprintf("published the form named %s (ID: %d)", form.Name, form.ID)))

	return form, nil
}

// ToggleFormVisibility swaps a form between Published and Hidden. Forms in
// other states are left alone.
func (s *FormService) ToggleFormVisibility(actor models.Actor, id uint) (*models.Form, error) {
	form, err := s.GetForm(id)
	if err != nil {
		return nil, err
	}

	switch form.Status {
	case models.FormStatusPublished:
		form.Status = models.FormStatusHidden
	case models.FormStatusHidden:
		form.Status = models.FormStatusPublished
	default:
		return nil, ErrFormNotPublished
	}

	if err := models.DB.Save(form).Error; err != nil {
		return nil, err
	}

	verb := "hid"
	if form.Status == models.FormStatusPublished {
		verb = "unhid"
	}
	s.activity.Record(actor.StaffID, models.ActionUpdate,
		Describe(actor.Name, actor.StaffID,
			fmt.Sprintf("%s the form named %s (ID: %d)", verb, form.Name, form.ID)))

	return form, nil
}

// DeleteForm removes a form that has no submissions yet
func (s *FormService) DeleteForm(actor models.Actor, id uint) error {
	form, err := s.GetForm(id)
	if err != nil {
		return err
	}

	var responderCount int64
	models.DB.Model(&models.FormResponder{}).Where("form_id = ?", id).Count(&responderCount)
	if responderCount > 0 {
		return errors.New("form has submissions and cannot be deleted")
	}

	name := form.Name
	return models.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("form_id = ?", id).Delete(&models.FormElement{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Form{}, id).Error; err != nil {
			return err
		}
		return s.activity.RecordTx(tx, actor.StaffID, models.ActionDelete,
			Describe(actor.Name, actor.StaffID,
				fmt.Sprintf("deleted the form named %s (ID: %d)", name, id)))
	})
}
