package services

import (
	"errors"
	"fmt"
	"smartcomply/internal/models"

	"gorm.io/gorm"
)

var (
	ErrBranchNotFound = errors.New("branch not found")
	ErrBranchExists   = errors.New("branch name or address already in use")
)

type BranchService struct {
	activity *ActivityService
}

func NewBranchService() *BranchService {
	return &BranchService{activity: NewActivityService()}
}

// GetBranches returns branches filtered by active state and search term
func (s *BranchService) GetBranches(statusFilter, searchTerm string) ([]models.Branch, error) {
	q := models.DB.Model(&models.Branch{})

	switch statusFilter {
	case "active":
		q = q.Where("is_active = ?", true)
	case "inactive":
		q = q.Where("is_active = ?", false)
	}
	if searchTerm != "" {
		like := "%" + searchTerm + "%"
		q = q.Where("name LIKE ? OR address LIKE ?", like, like)
	}

	var branches []models.Branch
	if err := q.Order("name").Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}

// GetBranch returns one branch by ID
func (s *BranchService) GetBranch(id uint) (*models.Branch, error) {
	var branch models.Branch
	if err := models.DB.First(&branch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBranchNotFound
		}
		return nil, err
	}
	return &branch, nil
}

// CreateBranch creates a branch. Name and address must both be unique,
// checked case-insensitively before insert.
func (s *BranchService) CreateBranch(actor models.Actor, name, address string) (*models.Branch, error) {
	if name == "" || address == "" {
		return nil, errors.New("name and address are required")
	}

	var existing models.Branch
	if err := models.DB.Where("LOWER(name) = LOWER(?) OR LOWER(address) = LOWER(?)", name, address).
		First(&existing).Error; err == nil {
		return nil, ErrBranchExists
	}

	branch := &models.Branch{Name: name, Address: address, IsActive: true}
	if err := models.DB.Create(branch).Error; err != nil {
		return nil, err
	}

	s.activity.Record(actor.StaffID, models.ActionAdd,
		Describe(actor.Name, actor.StaffID,
			fmt.Sprintf("added a new branch named %s", branch.Name)))

	return branch, nil
}

// UpdateBranch updates a branch's name and address
func (s *BranchService) UpdateBranch(actor models.Actor, id uint, name, address string) (*models.Branch, error) {
	branch, err := s.GetBranch(id)
	if err != nil {
		return nil, err
	}

	var existing models.Branch
	if err := models.DB.Where("(LOWER(name) = LOWER(?) OR LOWER(address) = LOWER(?)) AND id != ?",
		name, address, id).First(&existing).Error; err == nil {
		return nil, ErrBranchExists
	}

	branch.Name = name
	branch.Address = address
	if err := models.DB.Save(branch).Error; err != nil {
		return nil, err
	}

	s.activity.Record(actor.StaffID, models.ActionUpdate,
		Describe(actor.Name, actor.StaffID,
			fmt.Sprintf("updated the branch named %s (ID: %d)", branch.Name, branch.ID)))

	return branch, nil
}

// ToggleBranchStatus flips the active flag. Staff assigned to a disabled
// branch keep their assignment.
func (s *BranchService) ToggleBranchStatus(actor models.Actor, id uint) (*models.Branch, error) {
	branch, err := s.GetBranch(id)
	if err != nil {
		return nil, err
	}

	branch.IsActive = !branch.IsActive
	if err := models.DB.Save(branch).Error; err != nil {
		return nil, err
	}

	verb := "disabled"
	if branch.IsActive {
		verb = "enabled"
	}
	s.activity.Record(actor.StaffID, models.ActionUpdate,
		Describe(actor.Name, actor.StaffID,
			fmt.Sprintf("%s the branch named %s (ID: %d)", verb, branch.Name, branch.ID)))

	return branch, nil
}
