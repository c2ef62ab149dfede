package main

import (
	"fmt"

	"smartcomply/internal/api/routes"
	"smartcomply/internal/config"
	"smartcomply/internal/models"
	"smartcomply/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	if err := models.InitDB(cfg); err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}

	// Seed the default admin on an empty database
	authService := services.NewAuthService(cfg)
	if err := authService.CreateDefaultAdmin(); err != nil {
		logrus.Warnf("Failed to create default admin: %v", err)
	}
	if err := authService.DeleteExpiredSessions(); err != nil {
		logrus.Warnf("Failed to clean expired sessions: %v", err)
	}

	// Set Gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	r := gin.Default()

	// Setup routes
	routes.SetupRoutes(r, cfg)

	// Serve uploaded artifacts (form files, corrective-action photos)
	r.Static("/uploads", fmt.Sprintf("%s/uploads", cfg.Uploads.WebRoot))

	// Run server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logrus.Infof("Starting SmartComply server on %s", addr)
	if err := r.Run(addr); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}
