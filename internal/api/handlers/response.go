package handlers

import (
	"encoding/json"
	"errors"
	"smartcomply/internal/api/middleware"
	"smartcomply/internal/services"
	"smartcomply/internal/storage"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type ResponseHandler struct {
	responseService *services.ResponseService
}

func NewResponseHandler(store storage.Store) *ResponseHandler {
	return &ResponseHandler{
		responseService: services.NewResponseService(store),
	}
}

func (h *ResponseHandler) fillError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrFormNotFound):
		c.JSON(404, gin.H{"error": "Form not found"})
	case errors.Is(err, services.ErrFormNotPublished):
		c.JSON(400, gin.H{"error": "Form is not published"})
	case errors.Is(err, services.ErrAuditNotFound):
		c.JSON(404, gin.H{"error": "Audit not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(403, gin.H{"error": "Forbidden"})
	case errors.Is(err, services.ErrResponderNotFound):
		c.JSON(404, gin.H{"error": "Submission not found"})
	case errors.Is(err, services.ErrSnapshotMismatch), errors.Is(err, services.ErrNotConfirmed),
		errors.Is(err, services.ErrValidationFailed):
		c.JSON(400, gin.H{"error": err.Error()})
	default:
		c.JSON(500, gin.H{"error": "Failed to process form"})
	}
}

// StartFill opens a form for filling within an audit, prefilled when the
// actor already submitted it
func (h *ResponseHandler) StartFill(c *gin.Context) {
	auditID, err1 := strconv.ParseUint(c.Param("auditId"), 10, 32)
	formID, err2 := strconv.ParseUint(c.Param("formId"), 10, 32)
	if err1 != nil || err2 != nil {
		c.JSON(400, gin.H{"error": "Invalid audit or form ID"})
		return
	}

	snap, err := h.responseService.StartFill(middleware.Actor(c), uint(formID), uint(auditID))
	if err != nil {
		h.fillError(c, err)
		return
	}

	c.JSON(200, snap)
}

// StartEdit reopens an existing submission for correction
func (h *ResponseHandler) StartEdit(c *gin.Context) {
	auditID, err1 := strconv.ParseUint(c.Param("auditId"), 10, 32)
	formID, err2 := strconv.ParseUint(c.Param("formId"), 10, 32)
	if err1 != nil || err2 != nil {
		c.JSON(400, gin.H{"error": "Invalid audit or form ID"})
		return
	}

	snap, err := h.responseService.StartEdit(middleware.Actor(c), uint(formID), uint(auditID))
	if err != nil {
		h.fillError(c, err)
		return
	}

	c.JSON(200, snap)
}

// Resume re-validates a client-carried snapshot against the current schema
func (h *ResponseHandler) Resume(c *gin.Context) {
	var snap services.FillSnapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	resumed, err := h.responseService.Resume(middleware.Actor(c), &snap)
	if err != nil {
		h.fillError(c, err)
		return
	}

	c.JSON(200, resumed)
}

// Preview validates a snapshot and stores any uploaded files. The request
// is multipart: a "snapshot" JSON field plus "file_<elementID>" parts.
func (h *ResponseHandler) Preview(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid multipart request"})
		return
	}

	values := form.Value["snapshot"]
	if len(values) == 0 {
		c.JSON(400, gin.H{"error": "Missing snapshot"})
		return
	}
	var snap services.FillSnapshot
	if err := json.Unmarshal([]byte(values[0]), &snap); err != nil {
		c.JSON(400, gin.H{"error": "Invalid snapshot", "details": err.Error()})
		return
	}

	uploads := map[uint]*services.Upload{}
	for key, headers := range form.File {
		if !strings.HasPrefix(key, "file_") || len(headers) == 0 {
			continue
		}
		elementID, err := strconv.ParseUint(strings.TrimPrefix(key, "file_"), 10, 32)
		if err != nil {
			continue
		}
		f, err := headers[0].Open()
		if err != nil {
			c.JSON(400, gin.H{"error": "Failed to read uploaded file"})
			return
		}
		defer f.Close()
		uploads[uint(elementID)] = &services.Upload{
			Filename: headers[0].Filename,
			Content:  f,
		}
	}

	previewed, fieldErrors, err := h.responseService.Preview(middleware.Actor(c), &snap, uploads)
	if err != nil {
		h.fillError(c, err)
		return
	}

	if len(fieldErrors) > 0 {
		c.JSON(422, gin.H{"snapshot": previewed, "field_errors": fieldErrors})
		return
	}

	c.JSON(200, gin.H{"snapshot": previewed})
}

// Confirm commits a previewed snapshot
func (h *ResponseHandler) Confirm(c *gin.Context) {
	var snap services.FillSnapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	responder, err := h.responseService.Confirm(middleware.Actor(c), &snap)
	if err != nil {
		h.fillError(c, err)
		return
	}

	c.JSON(201, responder)
}

// GetResponder returns one submission with its answers
func (h *ResponseHandler) GetResponder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid submission ID"})
		return
	}

	responder, err := h.responseService.GetResponder(middleware.Actor(c), uint(id))
	if err != nil {
		h.fillError(c, err)
		return
	}

	c.JSON(200, responder)
}
