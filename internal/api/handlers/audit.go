package handlers

import (
	"errors"
	"smartcomply/internal/api/middleware"
	"smartcomply/internal/models"
	"smartcomply/internal/services"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler() *AuditHandler {
	return &AuditHandler{
		auditService: services.NewAuditService(),
	}
}

// auditView augments an audit with its derived status so clients never
// compute it themselves.
type auditView struct {
	models.Audit
	EffectiveStatus models.AuditStatus `json:"effective_status"`
}

func viewAudit(a models.Audit, now time.Time) auditView {
	return auditView{Audit: a, EffectiveStatus: a.EffectiveStatus(now)}
}

type CreateAuditRequest struct {
	CategoryID uint `json:"category_id" binding:"required"`
}

type UpdateAuditRequest struct {
	Name    *string    `json:"name"`
	DueDate *time.Time `json:"due_date"`
}

type UpdateAuditStatusRequest struct {
	Status models.AuditStatus `json:"status" binding:"required"`
}

// GetAudits returns the audits visible to the actor
func (h *AuditHandler) GetAudits(c *gin.Context) {
	audits, err := h.auditService.GetAudits(middleware.Actor(c), c.Query("status"), c.Query("search"))
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to get audits"})
		return
	}

	now := h.auditService.Now()
	views := make([]auditView, 0, len(audits))
	for _, a := range audits {
		views = append(views, viewAudit(a, now))
	}

	c.JSON(200, views)
}

// GetAudit returns one audit with its submissions
func (h *AuditHandler) GetAudit(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid audit ID"})
		return
	}

	audit, err := h.auditService.GetAudit(middleware.Actor(c), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAuditNotFound):
			c.JSON(404, gin.H{"error": "Audit not found"})
		case errors.Is(err, services.ErrForbidden):
			c.JSON(403, gin.H{"error": "Forbidden"})
		default:
			c.JSON(500, gin.H{"error": "Failed to get audit"})
		}
		return
	}

	c.JSON(200, viewAudit(*audit, h.auditService.Now()))
}

// CreateAudit starts a new audit for a category
func (h *AuditHandler) CreateAudit(c *gin.Context) {
	var req CreateAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	audit, err := h.auditService.CreateAudit(middleware.Actor(c), req.CategoryID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCategoryNotFound):
			c.JSON(404, gin.H{"error": "Category not found"})
		case errors.Is(err, services.ErrCategoryDisabled):
			c.JSON(400, gin.H{"error": "Category is disabled"})
		default:
			c.JSON(500, gin.H{"error": "Failed to create audit"})
		}
		return
	}

	c.JSON(201, viewAudit(*audit, h.auditService.Now()))
}

// HasExistingAudit reports whether the actor already has an audit for the
// category
func (h *AuditHandler) HasExistingAudit(c *gin.Context) {
	categoryID, err := strconv.ParseUint(c.Param("categoryId"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid category ID"})
		return
	}

	exists, err := h.auditService.HasExistingAudit(middleware.Actor(c), uint(categoryID))
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to check audits"})
		return
	}

	c.JSON(200, gin.H{"exists": exists})
}

// UpdateAudit renames or reschedules an audit
func (h *AuditHandler) UpdateAudit(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid audit ID"})
		return
	}

	var req UpdateAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	audit, err := h.auditService.UpdateAudit(middleware.Actor(c), uint(id), &services.UpdateAuditData{
		Name:    req.Name,
		DueDate: req.DueDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAuditNotFound):
			c.JSON(404, gin.H{"error": "Audit not found"})
		case errors.Is(err, services.ErrForbidden):
			c.JSON(403, gin.H{"error": "Forbidden"})
		default:
			c.JSON(500, gin.H{"error": "Failed to update audit"})
		}
		return
	}

	c.JSON(200, viewAudit(*audit, h.auditService.Now()))
}

// UpdateAuditStatus moves an audit between stored states
func (h *AuditHandler) UpdateAuditStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid audit ID"})
		return
	}

	var req UpdateAuditStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	audit, err := h.auditService.UpdateAuditStatus(middleware.Actor(c), uint(id), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAuditNotFound):
			c.JSON(404, gin.H{"error": "Audit not found"})
		case errors.Is(err, services.ErrForbidden):
			c.JSON(403, gin.H{"error": "Forbidden"})
		case errors.Is(err, services.ErrInvalidStatus):
			c.JSON(400, gin.H{"error": "Invalid status"})
		default:
			c.JSON(500, gin.H{"error": "Failed to update audit"})
		}
		return
	}

	c.JSON(200, viewAudit(*audit, h.auditService.Now()))
}

// DeleteAudit removes an audit and everything attached to it
func (h *AuditHandler) DeleteAudit(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid audit ID"})
		return
	}

	if err := h.auditService.DeleteAudit(middleware.Actor(c), uint(id)); err != nil {
		switch {
		case errors.Is(err, services.ErrAuditNotFound):
			c.JSON(404, gin.H{"error": "Audit not found"})
		case errors.Is(err, services.ErrForbidden):
			c.JSON(403, gin.H{"error": "Forbidden"})
		default:
			c.JSON(500, gin.H{"error": "Failed to delete audit"})
		}
		return
	}

	c.JSON(200, gin.H{"message": "Audit deleted"})
}
