package models

import "time"

type AuditStatus string

const (
	AuditStatusDraft    AuditStatus = "Draft"
	AuditStatusDone     AuditStatus = "Done"
	AuditStatusRejected AuditStatus = "Rejected"
	// AuditStatusOverdue is derived, never stored: an audit is overdue when
	// its due date has passed and it is not Done.
	AuditStatusOverdue AuditStatus = "Overdue"
)

// Audit is one compliance-review engagement against a category, owned by a
// staff member. StaffID is nullable so audits survive staff deletion.
// ShareToken, when set, grants anonymous read access to the external view;
// regenerating it invalidates previously shared links.
type Audit struct {
	ID             uint                `json:"id" gorm:"primaryKey"`
	Name           string              `json:"name" gorm:"type:varchar(255);not null"`
	Status         AuditStatus         `json:"status" gorm:"type:varchar(20);not null"`
	StaffID        *uint               `json:"staff_id" gorm:"index"`
	Staff          *Staff              `json:"staff,omitempty" gorm:"foreignKey:StaffID"`
	CategoryID     uint                `json:"category_id" gorm:"not null;index"`
	Category       *ComplianceCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	DueDate        time.Time           `json:"due_date" gorm:"not null"`
	ShareToken     *string             `json:"-" gorm:"type:varchar(64);index"`
	FormResponders []FormResponder     `json:"form_responders,omitempty" gorm:"foreignKey:AuditID"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// EffectiveStatus resolves the derived Overdue state at read time.
func (a *Audit) EffectiveStatus(now time.Time) AuditStatus {
	if a.Status != AuditStatusDone && a.DueDate.Before(now) {
		return AuditStatusOverdue
	}
	return a.Status
}
