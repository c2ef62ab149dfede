package handlers

import (
	"errors"
	"smartcomply/internal/api/middleware"
	"smartcomply/internal/services"
	"strconv"

	"github.com/gin-gonic/gin"
)

type BranchHandler struct {
	branchService *services.BranchService
}

func NewBranchHandler() *BranchHandler {
	return &BranchHandler{
		branchService: services.NewBranchService(),
	}
}

type BranchRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address" binding:"required"`
}

// GetBranches returns all branches with optional filters
func (h *BranchHandler) GetBranches(c *gin.Context) {
	branches, err := h.branchService.GetBranches(c.Query("status"), c.Query("search"))
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to get branches"})
		return
	}

	c.JSON(200, branches)
}

// GetBranch returns one branch
func (h *BranchHandler) GetBranch(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid branch ID"})
		return
	}

	branch, err := h.branchService.GetBranch(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrBranchNotFound) {
			c.JSON(404, gin.H{"error": "Branch not found"})
			return
		}
		c.JSON(500, gin.H{"error": "Failed to get branch"})
		return
	}

	c.JSON(200, branch)
}

// CreateBranch creates a new branch
func (h *BranchHandler) CreateBranch(c *gin.Context) {
	var req BranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	branch, err := h.branchService.CreateBranch(middleware.Actor(c), req.Name, req.Address)
	if err != nil {
		if errors.Is(err, services.ErrBranchExists) {
			c.JSON(409, gin.H{"error": "Branch name or address already in use"})
			return
		}
		c.JSON(500, gin.H{"error": "Failed to create branch"})
		return
	}

	c.JSON(201, branch)
}

// UpdateBranch updates a branch
func (h *BranchHandler) UpdateBranch(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid branch ID"})
		return
	}

	var req BranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	branch, err := h.branchService.UpdateBranch(middleware.Actor(c), uint(id), req.Name, req.Address)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBranchNotFound):
			c.JSON(404, gin.H{"error": "Branch not found"})
		case errors.Is(err, services.ErrBranchExists):
			c.JSON(409, gin.H{"error": "Branch name or address already in use"})
		default:
			c.JSON(500, gin.H{"error": "Failed to update branch"})
		}
		return
	}

	c.JSON(200, branch)
}

// ToggleBranchStatus enables or disables a branch
func (h *BranchHandler) ToggleBranchStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid branch ID"})
		return
	}

	branch, err := h.branchService.ToggleBranchStatus(middleware.Actor(c), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrBranchNotFound) {
			c.JSON(404, gin.H{"error": "Branch not found"})
			return
		}
		c.JSON(500, gin.H{"error": "Failed to update branch"})
		return
	}

	c.JSON(200, branch)
}
