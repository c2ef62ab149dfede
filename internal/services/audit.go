package services

import (
	"errors"
	"fmt"
	"smartcomply/internal/models"
	"strings"
	"time"

	"gorm.io/gorm"
)

var (
	ErrAuditNotFound    = errors.New("audit not found")
	ErrInvalidStatus    = errors.New("invalid audit status")
	ErrCategoryDisabled = errors.New("compliance category is disabled")
)

type AuditService struct {
	activity *ActivityService

	// Now is the clock used for names, due dates, and derived statuses.
	// Swappable in tests.
	Now func() time.Time
}

func NewAuditService() *AuditService {
	return &AuditService{
		activity: NewActivityService(),
		Now:      time.Now,
	}
}

// DefaultAuditName builds the "{Category}_{Branch}_{DDMMYYYY}" name with
// spaces stripped from the category and branch parts.
func DefaultAuditName(category, branch string, now time.Time) string {
	strip := func(s string) string { return strings.ReplaceAll(s, " ", "") }
	return fmt.Sprintf("%s_%s_%s", strip(category), strip(branch), now.UTC().Format("02012006"))
}

// DefaultDueDate schedules the due date seven wall-clock days ahead in
// UTC+8, then stores the resulting wall-clock instant as UTC. The stored
// value is deliberately the local reading re-labelled, so every consumer
// compares it against the same convention.
func DefaultDueDate(now time.Time) time.Time {
	local := now.In(utc8).AddDate(0, 0, 7)
	return time.Date(local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), 0, time.UTC)
}

// CreateAudit starts a Draft audit for the actor against a category. The
// name defaults from the category, the actor's branch, and today's date.
func (s *AuditService) CreateAudit(actor models.Actor, categoryID uint) (*models.Audit, error) {
	var category models.ComplianceCategory
	if err := models.DB.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	if !category.IsEnabled {
		return nil, ErrCategoryDisabled
	}

	branchName := ""
	if actor.BranchID != nil {
		var branch models.Branch
		if err := models.DB.First(&branch, *actor.BranchID).Error; err == nil {
			branchName = branch.Name
		}
	}

	now := s.Now()
	staffID := actor.StaffID
	audit := &models.Audit{
		Name:       DefaultAuditName(category.Name, branchName, now),
		Status:     models.AuditStatusDraft,
		StaffID:    &staffID,
		CategoryID: categoryID,
		DueDate:    DefaultDueDate(now),
	}

	if err := models.DB.Create(audit).Error; err != nil {
		return nil, err
	}

	s.activity.Record(actor.StaffID, models.ActionAdd,
		Describe(actor.Name, actor.StaffID,
			fmt.Sprintf("added a new audit named %s", audit.Name)))

	models.DB.Preload("Category").Preload("Staff").First(audit, audit.ID)
	return audit, nil
}

// HasExistingAudit reports whether the actor already owns an audit for the
// category, used to offer resuming instead of starting another.
func (s *AuditService) HasExistingAudit(actor models.Actor, categoryID uint) (bool, error) {
	var count int64
	err := models.DB.Model(&models.Audit{}).
		Where("staff_id = ? AND category_id = ?", actor.StaffID, categoryID).
		Count(&count).Error
	return count > 0, err
}

// GetAudits returns the audits visible to the actor. statusFilter matches
// the stored status, except "Overdue" which selects past-due audits that
// are not Done.
func (s *AuditService) GetAudits(actor models.Actor, statusFilter, searchTerm string) ([]models.Audit, error) {
	q := ScopeAudits(models.DB.Model(&models.Audit{}), actor).
		Preload("Category").Preload("Staff").Preload("Staff.Branch")

	if statusFilter != "" {
		if strings.EqualFold(statusFilter, string(models.AuditStatusOverdue)) {
			q = q.Where("audits.due_date < ? AND audits.status != ?", s.Now(), models.AuditStatusDone)
		} else {
			q = q.Where("audits.status = ?", statusFilter)
		}
	}
	if searchTerm != "" {
		q = q.Where("audits.name LIKE ?", "%"+searchTerm+"%")
	}

	var audits []models.Audit
	if err := q.Order("audits.created_at DESC").Find(&audits).Error; err != nil {
		return nil, err
	}
	return audits, nil
}

// GetAudit returns one audit the actor may see, with its responders
func (s *AuditService) GetAudit(actor models.Actor, id uint) (*models.Audit, error) {
	var audit models.Audit
	if err := models.DB.Preload("Category").Preload("Staff").Preload("Staff.Branch").
		Preload("FormResponders").
		Preload("FormResponders.Form").
		Preload("FormResponders.Staff").
		First(&audit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuditNotFound
		}
		return nil, err
	}

	var ownerBranch *uint
	if audit.Staff != nil {
		ownerBranch = audit.Staff.BranchID
	}
	if !Allows(actor, audit.StaffID, ownerBranch) {
		return nil, ErrForbidden
	}

	return &audit, nil
}

type UpdateAuditData struct {
	Name    *string    `json:"name"`
	DueDate *time.Time `json:"due_date"`
}

// UpdateAudit renames or reschedules an audit
func (s *AuditService) UpdateAudit(actor models.Actor, id uint, data *UpdateAuditData) (*models.Audit, error) {
	audit, err := s.GetAudit(actor, id)
	if err != nil {
		return nil, err
	}

	if data.Name != nil && *data.Name != "" {
		audit.Name = *data.Name
	}
	if data.DueDate != nil {
		audit.DueDate = *data.DueDate
	}

	if err := models.DB.Save(audit).Error; err != nil {
		return nil, err
	}

	s.activity.Record(actor.StaffID, models.ActionUpdate,
		Describe(actor.Name, actor.StaffID,
			fmt.Sprintf("updated the audit named %s (ID: %d)", audit.Name, audit.ID)))

	return audit, nil
}

// UpdateAuditStatus moves an audit between the stored states. Overdue is
// derived and cannot be stored.
func (s *AuditService) UpdateAuditStatus(actor models.Actor, id uint, status models.AuditStatus) (*models.Audit, error) {
	switch status {
	case models.AuditStatusDraft, models.AuditStatusDone, models.AuditStatusRejected:
	default:
		return nil, ErrInvalidStatus
	}

	audit, err := s.GetAudit(actor, id)
	if err != nil {
		return nil, err
	}

	audit.Status = status
	if err := models.DB.Save(audit).Error; err != nil {
		return nil, err
	}

	s.activity.Record(actor.StaffID, models.ActionUpdate,
		Describe(actor.Name, actor.StaffID,
			fmt.Sprintf("marked the audit named %s (ID: %d) as %s", audit.Name, audit.ID, status)))

	return audit, nil
}

// DeleteAudit removes an audit and everything hanging off it: responses,
// responders, and corrective actions (soft-deleted ones included). The
// audit's name is snapshotted into the log before the rows disappear.
func (s *AuditService) DeleteAudit(actor models.Actor, id uint) error {
	audit, err := s.GetAudit(actor, id)
	if err != nil {
		return err
	}

	// Snapshot names before the rows disappear; logging afterwards would
	// read deleted navigation data.
	name := audit.Name
	categoryName := ""
	if audit.Category != nil {
		categoryName = audit.Category.Name
	}
	return models.DB.Transaction(func(tx *gorm.DB) error {
		var responderIDs []uint
		if err := tx.Model(&models.FormResponder{}).Where("audit_id = ?", id).
			Pluck("id", &responderIDs).Error; err != nil {
			return err
		}
		if len(responderIDs) > 0 {
			if err := tx.Where("responder_id IN ?", responderIDs).
				Delete(&models.FormResponse{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("audit_id = ?", id).Delete(&models.FormResponder{}).Error; err != nil {
			return err
		}
		if err := tx.Where("audit_id = ?", id).Delete(&models.CorrectiveAction{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Audit{}, id).Error; err != nil {
			return err
		}
		detail := fmt.Sprintf("deleted the audit named %s (ID: %d)", name, id)
		if categoryName != "" {
			detail = fmt.Sprintf("deleted the audit named %s (ID: %d) under the %s category", name, id, categoryName)
		}
		return s.activity.RecordTx(tx, actor.StaffID, models.ActionDelete,
			Describe(actor.Name, actor.StaffID, detail))
	})
}
