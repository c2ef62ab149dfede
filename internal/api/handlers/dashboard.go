package handlers

import (
	"smartcomply/internal/api/middleware"
	"smartcomply/internal/services"
	"strconv"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{
		dashboardService: services.NewDashboardService(),
	}
}

// GetAdminOverview returns the system-wide headline numbers
func (h *DashboardHandler) GetAdminOverview(c *gin.Context) {
	overview, err := h.dashboardService.GetAdminOverview()
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to get overview"})
		return
	}

	c.JSON(200, overview)
}

// GetCategoryDistribution returns form and audit counts per category
func (h *DashboardHandler) GetCategoryDistribution(c *gin.Context) {
	dist, err := h.dashboardService.GetCategoryDistribution()
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to get distribution"})
		return
	}

	c.JSON(200, dist)
}

// GetAuditorPerformance returns per-auditor audit counts for the manager's
// branch
func (h *DashboardHandler) GetAuditorPerformance(c *gin.Context) {
	perf, err := h.dashboardService.GetAuditorPerformance(middleware.Actor(c))
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to get auditor performance"})
		return
	}

	c.JSON(200, perf)
}

// GetComplianceSummary returns audit status counts for one category
func (h *DashboardHandler) GetComplianceSummary(c *gin.Context) {
	categoryID, _ := strconv.ParseUint(c.Query("category_id"), 10, 32)

	summary, err := h.dashboardService.GetComplianceSummary(middleware.Actor(c), uint(categoryID))
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to get compliance summary"})
		return
	}

	c.JSON(200, summary)
}

// GetUserOverview returns the actor's own counts and upcoming deadlines
func (h *DashboardHandler) GetUserOverview(c *gin.Context) {
	overview, err := h.dashboardService.GetUserOverview(middleware.Actor(c))
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to get overview"})
		return
	}

	c.JSON(200, overview)
}
