package models

import "time"

type StaffRole string

const (
	RoleAdmin   StaffRole = "Admin"
	RoleManager StaffRole = "Manager"
	RoleUser    StaffRole = "User"
)

// Staff is an application account. BranchID is required for Managers and
// Users; Admins are not tied to a branch. Email uniqueness is enforced
// case-insensitively by an explicit pre-check in the staff service, not by
// a database constraint.
type Staff struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null"`
	Email        string    `json:"email" gorm:"type:varchar(255);index;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	Role         StaffRole `json:"role" gorm:"type:varchar(20);not null"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	BranchID     *uint     `json:"branch_id"`
	Branch       *Branch   `json:"branch,omitempty" gorm:"foreignKey:BranchID"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Session struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StaffID   uint      `json:"staff_id" gorm:"not null;index"`
	Token     string    `json:"token" gorm:"type:varchar(500);uniqueIndex;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
	Staff     Staff     `json:"staff,omitempty" gorm:"foreignKey:StaffID"`
}
