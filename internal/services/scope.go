package services

import (
	"errors"

	"smartcomply/internal/models"

	"gorm.io/gorm"
)

var ErrForbidden = errors.New("forbidden")

// Allows reports whether the actor may see a record owned by the given
// staff member. Admins see everything; Managers see their branch plus
// their own records (a manager may also act as an auditor); Users see only
// their own. Any role outside the closed set is denied.
func Allows(actor models.Actor, ownerStaffID *uint, ownerBranchID *uint) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		if ownerStaffID != nil && *ownerStaffID == actor.StaffID {
			return true
		}
		return actor.BranchID != nil && ownerBranchID != nil && *ownerBranchID == *actor.BranchID
	case models.RoleUser:
		return ownerStaffID != nil && *ownerStaffID == actor.StaffID
	default:
		return false
	}
}

// ScopeAudits narrows an audit query to what the actor may see.
func ScopeAudits(q *gorm.DB, actor models.Actor) *gorm.DB {
	switch actor.Role {
	case models.RoleAdmin:
		return q
	case models.RoleManager:
		if actor.BranchID == nil {
			return q.Where("audits.staff_id = ?", actor.StaffID)
		}
		return q.Joins("LEFT JOIN staffs ON staffs.id = audits.staff_id").
			Where("staffs.branch_id = ? OR audits.staff_id = ?", *actor.BranchID, actor.StaffID)
	case models.RoleUser:
		return q.Where("audits.staff_id = ?", actor.StaffID)
	default:
		// Unknown roles fail closed.
		return q.Where("1 = 0")
	}
}

// ScopeActivityLogs narrows an activity-log query to what the actor may see.
func ScopeActivityLogs(q *gorm.DB, actor models.Actor) *gorm.DB {
	switch actor.Role {
	case models.RoleAdmin:
		return q
	case models.RoleManager:
		if actor.BranchID == nil {
			return q.Where("activity_logs.staff_id = ?", actor.StaffID)
		}
		return q.Joins("LEFT JOIN staffs ON staffs.id = activity_logs.staff_id").
			Where("staffs.branch_id = ? OR activity_logs.staff_id = ?", *actor.BranchID, actor.StaffID)
	case models.RoleUser:
		return q.Where("activity_logs.staff_id = ?", actor.StaffID)
	default:
		return q.Where("1 = 0")
	}
}
