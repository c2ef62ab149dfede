package handlers

import (
	"errors"
	"smartcomply/internal/api/middleware"
	"smartcomply/internal/services"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
}

func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{
		categoryService: services.NewCategoryService(),
	}
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// GetCategories returns all compliance categories with optional filters
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	categories, err := h.categoryService.GetCategories(c.Query("status"), c.Query("search"))
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to get categories"})
		return
	}

	c.JSON(200, categories)
}

// GetCategory returns one compliance category
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid category ID"})
		return
	}

	category, err := h.categoryService.GetCategory(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			c.JSON(404, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(500, gin.H{"error": "Failed to get category"})
		return
	}

	c.JSON(200, category)
}

// CreateCategory creates a new compliance category
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	category, err := h.categoryService.CreateCategory(middleware.Actor(c), req.Name, req.Description)
	if err != nil {
		if errors.Is(err, services.ErrCategoryExists) {
			c.JSON(409, gin.H{"error": "Category name already in use"})
			return
		}
		c.JSON(500, gin.H{"error": "Failed to create category"})
		return
	}

	c.JSON(201, category)
}

// UpdateCategory updates a compliance category
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid category ID"})
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	category, err := h.categoryService.UpdateCategory(middleware.Actor(c), uint(id), req.Name, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCategoryNotFound):
			c.JSON(404, gin.H{"error": "Category not found"})
		case errors.Is(err, services.ErrCategoryExists):
			c.JSON(409, gin.H{"error": "Category name already in use"})
		default:
			c.JSON(500, gin.H{"error": "Failed to update category"})
		}
		return
	}

	c.JSON(200, category)
}

// ToggleCategoryStatus enables or disables a compliance category
func (h *CategoryHandler) ToggleCategoryStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid category ID"})
		return
	}

	category, err := h.categoryService.ToggleCategoryStatus(middleware.Actor(c), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			c.JSON(404, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(500, gin.H{"error": "Failed to update category"})
		return
	}

	c.JSON(200, category)
}
