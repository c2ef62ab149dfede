package models

import "time"

type CorrectiveActionStatus string

const (
	CorrectiveStatusPending    CorrectiveActionStatus = "Pending"
	CorrectiveStatusInProgress CorrectiveActionStatus = "InProgress"
	CorrectiveStatusCompleted  CorrectiveActionStatus = "Completed"
	// CorrectiveStatusOverdue is accepted as an explicit user-set status but
	// nothing transitions into it automatically; reads should rely on
	// EffectiveStatus instead.
	CorrectiveStatusOverdue CorrectiveActionStatus = "Overdue"
)

// CorrectiveAction is a remediation item tracked against an audit.
// TargetDate is set once at creation and never changed by edits. Soft
// deletion keeps the row recoverable and must not touch CreatedAt.
type CorrectiveAction struct {
	ID                uint                   `json:"id" gorm:"primaryKey"`
	AuditID           uint                   `json:"audit_id" gorm:"not null;index"`
	Audit             *Audit                 `json:"audit,omitempty" gorm:"foreignKey:AuditID"`
	Description       string                 `json:"description" gorm:"type:varchar(1000);not null"`
	RootCause         string                 `json:"root_cause" gorm:"type:varchar(1000)"`
	ProposedAction    string                 `json:"proposed_action" gorm:"type:varchar(1000);not null"`
	ResponsiblePerson string                 `json:"responsible_person" gorm:"type:varchar(100)"`
	TargetDate        time.Time              `json:"target_date" gorm:"not null"`
	CompletionDate    *time.Time             `json:"completion_date"`
	Status            CorrectiveActionStatus `json:"status" gorm:"type:varchar(20);not null"`
	Remarks           string                 `json:"remarks" gorm:"type:varchar(1000)"`
	BeforePhotoPath   string                 `json:"before_photo_path" gorm:"type:varchar(255)"`
	AfterPhotoPath    string                 `json:"after_photo_path" gorm:"type:varchar(255)"`
	IsDeleted         bool                   `json:"is_deleted" gorm:"default:false;index"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// EffectiveStatus resolves Overdue at read time: past target date and not
// yet completed.
func (c *CorrectiveAction) EffectiveStatus(now time.Time) CorrectiveActionStatus {
	if c.Status != CorrectiveStatusCompleted && c.TargetDate.Before(now) {
		return CorrectiveStatusOverdue
	}
	return c.Status
}
