package handlers

import (
	"smartcomply/internal/api/middleware"
	"smartcomply/internal/services"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activityService *services.ActivityService
}

func NewActivityHandler() *ActivityHandler {
	return &ActivityHandler{
		activityService: services.NewActivityService(),
	}
}

// GetActivityLogs returns the activity feed the actor may see, grouped by
// day
func (h *ActivityHandler) GetActivityLogs(c *gin.Context) {
	groups, err := h.activityService.List(middleware.Actor(c), c.Query("action"), c.Query("search"))
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to get activity logs"})
		return
	}

	c.JSON(200, groups)
}
