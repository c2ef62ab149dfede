package services

import (
	"errors"
	"fmt"
	"path"
	"smartcomply/internal/models"
	"smartcomply/internal/storage"
	"strings"
	"time"

	"gorm.io/gorm"
)

var (
	ErrActionNotFound = errors.New("corrective action not found")
	ErrBadPhotoType   = errors.New("unsupported photo type")
)

// Photo extension allowlists. The edit path additionally accepts gif,
// matching long-standing behavior that existing records depend on.
var (
	createPhotoExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}
	editPhotoExts   = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}
)

type CorrectiveService struct {
	store    storage.Store
	activity *ActivityService

	Now func() time.Time
}

func NewCorrectiveService(store storage.Store) *CorrectiveService {
	return &CorrectiveService{
		store:    store,
		activity: NewActivityService(),
		Now:      time.Now,
	}
}

type CreateCorrectiveData struct {
	AuditID           uint
	Description       string
	RootCause         string
	ProposedAction    string
	ResponsiblePerson string
	TargetDate        time.Time
	Status            models.CorrectiveActionStatus
	Remarks           string
}

type UpdateCorrectiveData struct {
	Description       *string
	RootCause         *string
	ProposedAction    *string
	ResponsiblePerson *string
	CompletionDate    *time.Time
	Status            *models.CorrectiveActionStatus
	Remarks           *string
}

func validCorrectiveStatus(status models.CorrectiveActionStatus) bool {
	switch status {
	case models.CorrectiveStatusPending, models.CorrectiveStatusInProgress,
		models.CorrectiveStatusCompleted, models.CorrectiveStatusOverdue:
		return true
	}
	return false
}

func (s *CorrectiveService) savePhoto(up *Upload, allowed map[string]bool) (string, error) {
	ext := strings.ToLower(path.Ext(up.Filename))
	if !allowed[ext] {
		return "", fmt.Errorf("%w: %s", ErrBadPhotoType, ext)
	}
	return s.store.Save(storage.CorrectiveActionDir, up.Content, ext)
}

// CreateCorrectiveAction records a remediation item against an audit. The
// target date is fixed here and never changed by later edits.
func (s *CorrectiveService) CreateCorrectiveAction(actor models.Actor, data *CreateCorrectiveData, beforePhoto, afterPhoto *Upload) (*models.CorrectiveAction, error) {
	if data.Description == "" || data.ProposedAction == "" {
		return nil, errors.New("description and proposed action are required")
	}
	if data.TargetDate.IsZero() {
		return nil, errors.New("target date is required")
	}
	if data.Status == "" {
		data.Status = models.CorrectiveStatusPending
	}
	if !validCorrectiveStatus(data.Status) {
		return nil, errors.New("invalid corrective action status")
	}

	var audit models.Audit
	if err := models.DB.First(&audit, data.AuditID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuditNotFound
		}
		return nil, err
	}

	action := &models.CorrectiveAction{
		AuditID:           data.AuditID,
		Description:       data.Description,
		RootCause:         data.RootCause,
		ProposedAction:    data.ProposedAction,
		ResponsiblePerson: data.ResponsiblePerson,
		TargetDate:        data.TargetDate,
		Status:            data.Status,
		Remarks:           data.Remarks,
	}

	if beforePhoto != nil {
		stored, err := s.savePhoto(beforePhoto, createPhotoExts)
		if err != nil {
			return nil, err
		}
		action.BeforePhotoPath = stored
	}
	if afterPhoto != nil {
		stored, err := s.savePhoto(afterPhoto, createPhotoExts)
		if err != nil {
			return nil, err
		}
		action.AfterPhotoPath = stored
	}

	if err := models.DB.Create(action).Error; err != nil {
		return nil, err
	}

	s.activity.Record(actor.StaffID, models.ActionAdd,
		Describe(actor.Name, actor.StaffID,
			fmt.Sprintf("added a corrective action for the audit named %s", audit.Name)))

	return action, nil
}

// GetCorrectiveActions returns an audit's active or soft-deleted actions,
// optionally filtered by effective status or a text search.
func (s *CorrectiveService) GetCorrectiveActions(auditID uint, deleted bool, statusFilter, searchTerm string) ([]models.CorrectiveAction, error) {
	q := models.DB.Model(&models.CorrectiveAction{}).
		Where("audit_id = ? AND is_deleted = ?", auditID, deleted)

	if searchTerm != "" {
		like := "%" + searchTerm + "%"
		q = q.Where("description LIKE ? OR responsible_person LIKE ?", like, like)
	}

	var actions []models.CorrectiveAction
	if err := q.Order("created_at DESC").Find(&actions).Error; err != nil {
		return nil, err
	}

	if statusFilter != "" {
		now := s.Now()
		filtered := actions[:0]
		for _, a := range actions {
			if string(a.EffectiveStatus(now)) == statusFilter {
				filtered = append(filtered, a)
			}
		}
		actions = filtered
	}

	return actions, nil
}

// GetCorrectiveAction returns one action by ID, soft-deleted or not
func (s *CorrectiveService) GetCorrectiveAction(id uint) (*models.CorrectiveAction, error) {
	var action models.CorrectiveAction
	if err := models.DB.Preload("Audit").First(&action, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActionNotFound
		}
		return nil, err
	}
	return &action, nil
}

// UpdateCorrectiveAction edits an action's mutable fields. TargetDate is
// not among them. A replaced photo's old file is removed from storage; on
// a rejected photo type nothing is touched, the previous photo included.
func (s *CorrectiveService) UpdateCorrectiveAction(actor models.Actor, id uint, data *UpdateCorrectiveData, beforePhoto, afterPhoto *Upload) (*models.CorrectiveAction, error) {
	action, err := s.GetCorrectiveAction(id)
	if err != nil {
		return nil, err
	}

	var newBefore, newAfter string
	if beforePhoto != nil {
		if newBefore, err = s.savePhoto(beforePhoto, editPhotoExts); err != nil {
			return nil, err
		}
	}
	if afterPhoto != nil {
		if newAfter, err = s.savePhoto(afterPhoto, editPhotoExts); err != nil {
			return nil, err
		}
	}

	if data.Description != nil {
		action.Description = *data.Description
	}
	if data.RootCause != nil {
		action.RootCause = *data.RootCause
	}
	if data.ProposedAction != nil {
		action.ProposedAction = *data.ProposedAction
	}
	if data.ResponsiblePerson != nil {
		action.ResponsiblePerson = *data.ResponsiblePerson
	}
	if data.CompletionDate != nil {
		action.CompletionDate = data.CompletionDate
	}
	if data.Status != nil {
		if !validCorrectiveStatus(*data.Status) {
			return nil, errors.New("invalid corrective action status")
		}
		action.Status = *data.Status
	}
	if data.Remarks != nil {
		action.Remarks = *data.Remarks
	}

	if newBefore != "" {
		if action.BeforePhotoPath != "" {
			s.store.Delete(action.BeforePhotoPath)
		}
		action.BeforePhotoPath = newBefore
	}
	if newAfter != "" {
		if action.AfterPhotoPath != "" {
			s.store.Delete(action.AfterPhotoPath)
		}
		action.AfterPhotoPath = newAfter
	}

	if err := models.DB.Save(action).Error; err != nil {
		return nil, err
	}

	s.activity.Record(actor.StaffID, models.ActionUpdate,
		Describe(actor.Name, actor.StaffID,
			fmt.Sprintf("updated a corrective action (ID: %d)", action.ID)))

	return action, nil
}

// DeleteCorrectiveAction soft-deletes an action. Only the deletion flag
// moves; CreatedAt and the photo files stay so Recover restores the record
// exactly as it was.
func (s *CorrectiveService) DeleteCorrectiveAction(actor models.Actor, id uint) error {
	action, err := s.GetCorrectiveAction(id)
	if err != nil {
		return err
	}

	if err := models.DB.Model(action).Update("is_deleted", true).Error; err != nil {
		return err
	}

	s.activity.Record(actor.StaffID, models.ActionDelete,
		Describe(actor.Name, actor.StaffID,
			fmt.Sprintf("deleted a corrective action (ID: %d)", action.ID)))

	return nil
}

// RecoverCorrectiveAction restores a soft-deleted action
func (s *CorrectiveService) RecoverCorrectiveAction(actor models.Actor, id uint) (*models.CorrectiveAction, error) {
	action, err := s.GetCorrectiveAction(id)
	if err != nil {
		return nil, err
	}
	if !action.IsDeleted {
		return action, nil
	}

	if err := models.DB.Model(action).Update("is_deleted", false).Error; err != nil {
		return nil, err
	}
	action.IsDeleted = false

	s.activity.Record(actor.StaffID, models.ActionUpdate,
		Describe(actor.Name, actor.StaffID,
			fmt.Sprintf("recovered a corrective action (ID: %d)", action.ID)))

	return action, nil
}
