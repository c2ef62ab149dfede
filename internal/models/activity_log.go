package models

import "time"

type ActionType string

const (
	ActionLogin  ActionType = "Login"
	ActionLogout ActionType = "Logout"
	ActionAdd    ActionType = "Add"
	ActionUpdate ActionType = "Update"
	ActionDelete ActionType = "Delete"
)

// ActivityLog is an append-only ledger entry. Description is assembled from
// entity-name snapshots at write time so it stays readable after the
// entities themselves change or disappear.
type ActivityLog struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	StaffID     uint       `json:"staff_id" gorm:"not null;index"`
	Staff       *Staff     `json:"staff,omitempty" gorm:"foreignKey:StaffID"`
	Timestamp   time.Time  `json:"timestamp" gorm:"not null;index"`
	ActionType  ActionType `json:"action_type" gorm:"type:varchar(20);not null"`
	Description string     `json:"description" gorm:"type:varchar(1000)"`
}
