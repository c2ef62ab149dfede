package handlers

import (
	"errors"
	"smartcomply/internal/api/middleware"
	"smartcomply/internal/config"
	"smartcomply/internal/models"
	"smartcomply/internal/services"
	"strconv"

	"github.com/gin-gonic/gin"
)

type StaffHandler struct {
	staffService *services.StaffService
}

func NewStaffHandler(cfg *config.Config) *StaffHandler {
	return &StaffHandler{
		staffService: services.NewStaffService(cfg),
	}
}

type CreateStaffRequest struct {
	Name     string           `json:"name" binding:"required"`
	Email    string           `json:"email" binding:"required,email"`
	Password string           `json:"password" binding:"required,min=8"`
	Role     models.StaffRole `json:"role" binding:"required"`
	BranchID *uint            `json:"branch_id"`
	IsActive *bool            `json:"is_active"`
}

type UpdateStaffRequest struct {
	Name     *string           `json:"name"`
	Email    *string           `json:"email"`
	Password *string           `json:"password"`
	Role     *models.StaffRole `json:"role"`
	BranchID *uint             `json:"branch_id"`
	IsActive *bool             `json:"is_active"`
}

// GetStaff returns all staff accounts with optional filters
func (h *StaffHandler) GetStaff(c *gin.Context) {
	staff, err := h.staffService.GetStaff(
		c.Query("status"),
		c.Query("role"),
		c.Query("search"),
	)
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to get staff"})
		return
	}

	c.JSON(200, staff)
}

// GetStaffByID returns one staff account
func (h *StaffHandler) GetStaffByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid staff ID"})
		return
	}

	staff, err := h.staffService.GetStaffByID(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrStaffNotFound) {
			c.JSON(404, gin.H{"error": "Staff not found"})
			return
		}
		c.JSON(500, gin.H{"error": "Failed to get staff"})
		return
	}

	c.JSON(200, staff)
}

// CreateStaff creates a new staff account
func (h *StaffHandler) CreateStaff(c *gin.Context) {
	var req CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	staff, err := h.staffService.CreateStaff(middleware.Actor(c), &services.CreateStaffData{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		BranchID: req.BranchID,
		IsActive: isActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailExists):
			c.JSON(409, gin.H{"error": "Email already in use"})
		case errors.Is(err, services.ErrInvalidRole), errors.Is(err, services.ErrBranchRequired):
			c.JSON(400, gin.H{"error": err.Error()})
		default:
			c.JSON(500, gin.H{"error": "Failed to create staff"})
		}
		return
	}

	c.JSON(201, staff)
}

// UpdateStaff updates an existing staff account
func (h *StaffHandler) UpdateStaff(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid staff ID"})
		return
	}

	var req UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	staff, err := h.staffService.UpdateStaff(middleware.Actor(c), uint(id), &services.UpdateStaffData{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		BranchID: req.BranchID,
		IsActive: req.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrStaffNotFound):
			c.JSON(404, gin.H{"error": "Staff not found"})
		case errors.Is(err, services.ErrEmailExists):
			c.JSON(409, gin.H{"error": "Email already in use"})
		case errors.Is(err, services.ErrInvalidRole), errors.Is(err, services.ErrBranchRequired):
			c.JSON(400, gin.H{"error": err.Error()})
		default:
			c.JSON(500, gin.H{"error": "Failed to update staff"})
		}
		return
	}

	c.JSON(200, staff)
}

// ToggleStaffStatus enables or disables a staff account
func (h *StaffHandler) ToggleStaffStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid staff ID"})
		return
	}

	staff, err := h.staffService.ToggleStaffStatus(middleware.Actor(c), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrStaffNotFound) {
			c.JSON(404, gin.H{"error": "Staff not found"})
			return
		}
		c.JSON(500, gin.H{"error": "Failed to update staff"})
		return
	}

	c.JSON(200, staff)
}
