package models

import (
	"strings"
	"time"
)

// FormResponder is one submission of one form within one audit. Name is a
// snapshot of the submitting staff's name at commit time; StaffID and
// BranchID are nullable so the record tolerates orphaning.
type FormResponder struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	FormID      uint           `json:"form_id" gorm:"not null;index"`
	Form        *Form          `json:"form,omitempty" gorm:"foreignKey:FormID"`
	AuditID     uint           `json:"audit_id" gorm:"not null;index"`
	Audit       *Audit         `json:"audit,omitempty" gorm:"foreignKey:AuditID"`
	StaffID     *uint          `json:"staff_id" gorm:"index"`
	Staff       *Staff         `json:"staff,omitempty" gorm:"foreignKey:StaffID"`
	BranchID    *uint          `json:"branch_id"`
	Branch      *Branch        `json:"branch,omitempty" gorm:"foreignKey:BranchID"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null"`
	SubmittedAt time.Time      `json:"submitted_at" gorm:"not null"`
	Responses   []FormResponse `json:"responses,omitempty" gorm:"foreignKey:ResponderID;constraint:OnDelete:CASCADE"`
}

// FormResponse is one answer to one form element. The answer is always a
// single string: Checkbox selections are comma-joined and FileUpload
// answers hold the stored artifact's relative path.
type FormResponse struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	ResponderID uint         `json:"responder_id" gorm:"not null;index"`
	ElementID   uint         `json:"element_id" gorm:"not null;index"`
	Element     *FormElement `json:"element,omitempty" gorm:"foreignKey:ElementID"`
	Answer      string       `json:"answer" gorm:"type:text"`
}

// JoinAnswers flattens a multi-value answer to the stored encoding.
// The encoding is lossy: a selection containing a comma cannot be
// reconstructed, which is a documented limitation of the format.
func JoinAnswers(values []string) string {
	return strings.Join(values, ",")
}

// SplitAnswers reverses JoinAnswers for multi-value elements.
func SplitAnswers(answer string) []string {
	if answer == "" {
		return nil
	}
	return strings.Split(answer, ",")
}
