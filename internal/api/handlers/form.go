package handlers

import (
	"errors"
	"smartcomply/internal/api/middleware"
	"smartcomply/internal/services"
	"strconv"

	"github.com/gin-gonic/gin"
)

type FormHandler struct {
	formService *services.FormService
}

func NewFormHandler() *FormHandler {
	return &FormHandler{
		formService: services.NewFormService(),
	}
}

// GetForms returns all forms with optional filters
func (h *FormHandler) GetForms(c *gin.Context) {
	forms, err := h.formService.GetForms(c.Query("status"), c.Query("search"))
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to get forms"})
		return
	}

	c.JSON(200, forms)
}

// GetForm returns one form with its elements in render order
func (h *FormHandler) GetForm(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid form ID"})
		return
	}

	form, err := h.formService.GetForm(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrFormNotFound) {
			c.JSON(404, gin.H{"error": "Form not found"})
			return
		}
		c.JSON(500, gin.H{"error": "Failed to get form"})
		return
	}

	c.JSON(200, form)
}

// GetAvailableForms returns the published forms for a category
func (h *FormHandler) GetAvailableForms(c *gin.Context) {
	categoryID, err := strconv.ParseUint(c.Param("categoryId"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid category ID"})
		return
	}

	forms, err := h.formService.AvailableForms(uint(categoryID))
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to get forms"})
		return
	}

	c.JSON(200, forms)
}

// CreateForm creates a new form in the Editing state
func (h *FormHandler) CreateForm(c *gin.Context) {
	var req services.SaveFormData
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	form, err := h.formService.CreateForm(middleware.Actor(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCategoryNotFound):
			c.JSON(404, gin.H{"error": "Category not found"})
		case errors.Is(err, services.ErrNoElements), errors.Is(err, services.ErrBadElement):
			c.JSON(400, gin.H{"error": err.Error()})
		default:
			c.JSON(500, gin.H{"error": "Failed to create form"})
		}
		return
	}

	c.JSON(201, form)
}

// UpdateForm replaces a form's elements. The "action" query selects
// between publishing and a plain save.
func (h *FormHandler) UpdateForm(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid form ID"})
		return
	}

	var req services.SaveFormData
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	publish := c.Query("action") == "publish"
	form, err := h.formService.UpdateForm(middleware.Actor(c), uint(id), &req, publish)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFormNotFound):
			c.JSON(404, gin.H{"error": "Form not found"})
		case errors.Is(err, services.ErrNoElements), errors.Is(err, services.ErrBadElement):
			c.JSON(400, gin.H{"error": err.Error()})
		default:
			c.JSON(500, gin.H{"error": "Failed to update form"})
		}
		return
	}

	c.JSON(200, form)
}

// PublishForm publishes a form without changing its elements
func (h *FormHandler) PublishForm(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid form ID"})
		return
	}

	form, err := h.formService.PublishForm(middleware.Actor(c), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrFormNotFound) {
			c.JSON(404, gin.H{"error": "Form not found"})
			return
		}
		c.JSON(500, gin.H{"error": "Failed to publish form"})
		return
	}

	c.JSON(200, form)
}

// ToggleFormVisibility swaps a form between Published and Hidden
func (h *FormHandler) ToggleFormVisibility(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid form ID"})
		return
	}

	form, err := h.formService.ToggleFormVisibility(middleware.Actor(c), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFormNotFound):
			c.JSON(404, gin.H{"error": "Form not found"})
		case errors.Is(err, services.ErrFormNotPublished):
			c.JSON(400, gin.H{"error": "Form is not published or hidden"})
		default:
			c.JSON(500, gin.H{"error": "Failed to update form"})
		}
		return
	}

	c.JSON(200, form)
}

// DeleteForm deletes a form that has no submissions
func (h *FormHandler) DeleteForm(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid form ID"})
		return
	}

	if err := h.formService.DeleteForm(middleware.Actor(c), uint(id)); err != nil {
		if errors.Is(err, services.ErrFormNotFound) {
			c.JSON(404, gin.H{"error": "Form not found"})
			return
		}
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{"message": "Form deleted"})
}
