package services

import (
	"errors"
	"fmt"
	"smartcomply/internal/config"
	"smartcomply/internal/models"

	"gorm.io/gorm"
)

var (
	ErrInvalidRole    = errors.New("invalid staff role")
	ErrBranchRequired = errors.New("branch is required for this role")
)

type StaffService struct {
	authService *AuthService
	activity    *ActivityService
}

func NewStaffService(cfg *config.Config) *StaffService {
	return &StaffService{
		authService: NewAuthService(cfg),
		activity:    NewActivityService(),
	}
}

type CreateStaffData struct {
	Name     string
	Email    string
	Password string
	Role     models.StaffRole
	BranchID *uint
	IsActive bool
}

type UpdateStaffData struct {
	Name     *string
	Email    *string
	Password *string
	Role     *models.StaffRole
	BranchID *uint
	IsActive *bool
}

func validRole(role models.StaffRole) bool {
	switch role {
	case models.RoleAdmin, models.RoleManager, models.RoleUser:
		return true
	}
	return false
}

// GetStaff returns staff accounts, optionally filtered by active state
// ("active"/"inactive"), role, or a name/email search term. Results are
// ordered by role seniority then name.
func (s *StaffService) GetStaff(statusFilter, roleFilter, searchTerm string) ([]models.Staff, error) {
	q := models.DB.Model(&models.Staff{}).Preload("Branch")

	switch statusFilter {
	case "active":
		q = q.Where("is_active = ?", true)
	case "inactive":
		q = q.Where("is_active = ?", false)
	}
	if roleFilter != "" {
		q = q.Where("role = ?", roleFilter)
	}
	if searchTerm != "" {
		like := "%" + searchTerm + "%"
		q = q.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	var staff []models.Staff
	if err := q.Order("CASE role WHEN 'Admin' THEN 0 WHEN 'Manager' THEN 1 ELSE 2 END, name").
		Find(&staff).Error; err != nil {
		return nil, err
	}
	return staff, nil
}

// GetStaffByID returns one staff account with its branch
func (s *StaffService) GetStaffByID(id uint) (*models.Staff, error) {
	var staff models.Staff
	if err := models.DB.Preload("Branch").First(&staff, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}
	return &staff, nil
}

// CreateStaff creates a new staff account. Email uniqueness is checked
// case-insensitively before insert; Managers and Users must carry a branch.
func (s *StaffService) CreateStaff(actor models.Actor, data *CreateStaffData) (*models.Staff, error) {
	if data.Name == "" || data.Email == "" || data.Password == "" {
		return nil, errors.New("name, email, and password are required")
	}
	if !validRole(data.Role) {
		return nil, ErrInvalidRole
	}
	if data.Role != models.RoleAdmin && data.BranchID == nil {
		return nil, ErrBranchRequired
	}

	var existing models.Staff
	if err := models.DB.Where("LOWER(email) = LOWER(?)", data.Email).First(&existing).Error; err == nil {
		return nil, ErrEmailExists
	}

	hashedPassword, err := s.authService.HashPassword(data.Password)
	if err != nil {
		return nil, err
	}

	staff := &models.Staff{
		Name:         data.Name,
		Email:        data.Email,
		PasswordHash: hashedPassword,
		Role:         data.Role,
		BranchID:     data.BranchID,
		IsActive:     data.IsActive,
	}

	if err := models.DB.Create(staff).Error; err != nil {
		return nil, err
	}

	s.activity.Record(actor.StaffID, models.ActionAdd,
		Describe(actor.Name, actor.StaffID,
			fmt.Sprintf("added a new staff named %s with the %s role", staff.Name, staff.Role)))

	models.DB.Preload("Branch").First(staff, staff.ID)
	return staff, nil
}

// UpdateStaff updates an existing staff account
func (s *StaffService) UpdateStaff(actor models.Actor, id uint, data *UpdateStaffData) (*models.Staff, error) {
	staff, err := s.GetStaffByID(id)
	if err != nil {
		return nil, err
	}

	if data.Name != nil {
		staff.Name = *data.Name
	}
	if data.Email != nil {
		var existing models.Staff
		if err := models.DB.Where("LOWER(email) = LOWER(?) AND id != ?", *data.Email, id).
			First(&existing).Error; err == nil {
			return nil, ErrEmailExists
		}
		staff.Email = *data.Email
	}
	if data.Password != nil && *data.Password != "" {
		hashedPassword, err := s.authService.HashPassword(*data.Password)
		if err != nil {
			return nil, err
		}
		staff.PasswordHash = hashedPassword
	}
	if data.Role != nil {
		if !validRole(*data.Role) {
			return nil, ErrInvalidRole
		}
		staff.Role = *data.Role
	}
	if data.BranchID != nil {
		staff.BranchID = data.BranchID
	}
	if staff.Role != models.RoleAdmin && staff.BranchID == nil {
		return nil, ErrBranchRequired
	}
	if data.IsActive != nil {
		staff.IsActive = *data.IsActive
	}

	if err := models.DB.Save(staff).Error; err != nil {
		return nil, err
	}

	s.activity.Record(actor.StaffID, models.ActionUpdate,
		Describe(actor.Name, actor.StaffID,
			fmt.Sprintf("updated the staff named %s (ID: %d)", staff.Name, staff.ID)))

	models.DB.Preload("Branch").First(staff, staff.ID)
	return staff, nil
}

// ToggleStaffStatus flips the active flag. Disabling an account does not
// revoke its live sessions; those expire on their own.
func (s *StaffService) ToggleStaffStatus(actor models.Actor, id uint) (*models.Staff, error) {
	staff, err := s.GetStaffByID(id)
	if err != nil {
		return nil, err
	}

	staff.IsActive = !staff.IsActive
	if err := models.DB.Save(staff).Error; err != nil {
		return nil, err
	}

	verb := "disabled"
	if staff.IsActive {
		verb = "enabled"
	}
	s.activity.Record(actor.StaffID, models.ActionUpdate,
		Describe(actor.Name, actor.StaffID,
			fmt.Sprintf("%s the staff named %s (ID: %d)", verb, staff.Name, staff.ID)))

	return staff, nil
}
