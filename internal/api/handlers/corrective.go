package handlers

import (
	"errors"
	"mime/multipart"
	"smartcomply/internal/api/middleware"
	"smartcomply/internal/models"
	"smartcomply/internal/services"
	"smartcomply/internal/storage"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type CorrectiveHandler struct {
	correctiveService *services.CorrectiveService
}

func NewCorrectiveHandler(store storage.Store) *CorrectiveHandler {
	return &CorrectiveHandler{
		correctiveService: services.NewCorrectiveService(store),
	}
}

type correctiveView struct {
	models.CorrectiveAction
	EffectiveStatus models.CorrectiveActionStatus `json:"effective_status"`
}

func (h *CorrectiveHandler) view(a models.CorrectiveAction) correctiveView {
	return correctiveView{CorrectiveAction: a, EffectiveStatus: a.EffectiveStatus(h.correctiveService.Now())}
}

func (h *CorrectiveHandler) viewAll(actions []models.CorrectiveAction) []correctiveView {
	now := h.correctiveService.Now()
	views := make([]correctiveView, 0, len(actions))
	for _, a := range actions {
		views = append(views, correctiveView{CorrectiveAction: a, EffectiveStatus: a.EffectiveStatus(now)})
	}
	return views
}

// openUpload converts an optional multipart file into a service Upload.
// The caller closes the returned file.
func openUpload(header *multipart.FileHeader) (*services.Upload, multipart.File, error) {
	if header == nil {
		return nil, nil, nil
	}
	f, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	return &services.Upload{Filename: header.Filename, Content: f}, f, nil
}

func (h *CorrectiveHandler) correctiveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrActionNotFound):
		c.JSON(404, gin.H{"error": "Corrective action not found"})
	case errors.Is(err, services.ErrAuditNotFound):
		c.JSON(404, gin.H{"error": "Audit not found"})
	case errors.Is(err, services.ErrBadPhotoType):
		c.JSON(400, gin.H{"error": err.Error()})
	default:
		c.JSON(500, gin.H{"error": "Failed to process corrective action"})
	}
}

// GetCorrectiveActions lists an audit's active or deleted actions
func (h *CorrectiveHandler) GetCorrectiveActions(c *gin.Context) {
	auditID, err := strconv.ParseUint(c.Param("auditId"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid audit ID"})
		return
	}

	deleted := c.Query("deleted") == "true"
	actions, err := h.correctiveService.GetCorrectiveActions(uint(auditID), deleted,
		c.Query("status"), c.Query("search"))
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to get corrective actions"})
		return
	}

	c.JSON(200, h.viewAll(actions))
}

// GetCorrectiveAction returns one corrective action
func (h *CorrectiveHandler) GetCorrectiveAction(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid corrective action ID"})
		return
	}

	action, err := h.correctiveService.GetCorrectiveAction(uint(id))
	if err != nil {
		h.correctiveError(c, err)
		return
	}

	c.JSON(200, h.view(*action))
}

// CreateCorrectiveAction records a remediation item. The request is
// multipart so before/after photos can ride along.
func (h *CorrectiveHandler) CreateCorrectiveAction(c *gin.Context) {
	auditID, err := strconv.ParseUint(c.PostForm("audit_id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid audit ID"})
		return
	}

	targetDate, err := time.Parse("2006-01-02", c.PostForm("target_date"))
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid target date, expected YYYY-MM-DD"})
		return
	}

	data := &services.CreateCorrectiveData{
		AuditID:           uint(auditID),
		Description:       c.PostForm("description"),
		RootCause:         c.PostForm("root_cause"),
		ProposedAction:    c.PostForm("proposed_action"),
		ResponsiblePerson: c.PostForm("responsible_person"),
		TargetDate:        targetDate,
		Status:            models.CorrectiveActionStatus(c.PostForm("status")),
		Remarks:           c.PostForm("remarks"),
	}

	beforeHeader, _ := c.FormFile("before_photo")
	afterHeader, _ := c.FormFile("after_photo")

	before, beforeFile, err := openUpload(beforeHeader)
	if err != nil {
		c.JSON(400, gin.H{"error": "Failed to read before photo"})
		return
	}
	if beforeFile != nil {
		defer beforeFile.Close()
	}
	after, afterFile, err := openUpload(afterHeader)
	if err != nil {
		c.JSON(400, gin.H{"error": "Failed to read after photo"})
		return
	}
	if afterFile != nil {
		defer afterFile.Close()
	}

	action, err := h.correctiveService.CreateCorrectiveAction(middleware.Actor(c), data, before, after)
	if err != nil {
		h.correctiveError(c, err)
		return
	}

	c.JSON(201, h.view(*action))
}

// UpdateCorrectiveAction edits an action's mutable fields
func (h *CorrectiveHandler) UpdateCorrectiveAction(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid corrective action ID"})
		return
	}

	data := &services.UpdateCorrectiveData{}
	if v, ok := c.GetPostForm("description"); ok {
		data.Description = &v
	}
	if v, ok := c.GetPostForm("root_cause"); ok {
		data.RootCause = &v
	}
	if v, ok := c.GetPostForm("proposed_action"); ok {
		data.ProposedAction = &v
	}
	if v, ok := c.GetPostForm("responsible_person"); ok {
		data.ResponsiblePerson = &v
	}
	if v, ok := c.GetPostForm("completion_date"); ok && v != "" {
		completion, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid completion date, expected YYYY-MM-DD"})
			return
		}
		data.CompletionDate = &completion
	}
	if v, ok := c.GetPostForm("status"); ok {
		status := models.CorrectiveActionStatus(v)
		data.Status = &status
	}
	if v, ok := c.GetPostForm("remarks"); ok {
		data.Remarks = &v
	}

	beforeHeader, _ := c.FormFile("before_photo")
	afterHeader, _ := c.FormFile("after_photo")

	before, beforeFile, err := openUpload(beforeHeader)
	if err != nil {
		c.JSON(400, gin.H{"error": "Failed to read before photo"})
		return
	}
	if beforeFile != nil {
		defer beforeFile.Close()
	}
	after, afterFile, err := openUpload(afterHeader)
	if err != nil {
		c.JSON(400, gin.H{"error": "Failed to read after photo"})
		return
	}
	if afterFile != nil {
		defer afterFile.Close()
	}

	action, err := h.correctiveService.UpdateCorrectiveAction(middleware.Actor(c), uint(id), data, before, after)
	if err != nil {
		h.correctiveError(c, err)
		return
	}

	c.JSON(200, h.view(*action))
}

// DeleteCorrectiveAction soft-deletes an action
func (h *CorrectiveHandler) DeleteCorrectiveAction(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid corrective action ID"})
		return
	}

	if err := h.correctiveService.DeleteCorrectiveAction(middleware.Actor(c), uint(id)); err != nil {
		h.correctiveError(c, err)
		return
	}

	c.JSON(200, gin.H{"message": "Corrective action deleted"})
}

// RecoverCorrectiveAction restores a soft-deleted action
func (h *CorrectiveHandler) RecoverCorrectiveAction(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid corrective action ID"})
		return
	}

	action, err := h.correctiveService.RecoverCorrectiveAction(middleware.Actor(c), uint(id))
	if err != nil {
		h.correctiveError(c, err)
		return
	}

	c.JSON(200, h.view(*action))
}
