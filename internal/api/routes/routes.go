package routes

import (
	"smartcomply/internal/api/handlers"
	"smartcomply/internal/api/middleware"
	"smartcomply/internal/config"
	"smartcomply/internal/models"
	"smartcomply/internal/services"
	"smartcomply/internal/storage"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config) {
	// Initialize services
	authService := services.NewAuthService(cfg)
	store := storage.NewDisk(cfg.Uploads.WebRoot)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cfg)
	staffHandler := handlers.NewStaffHandler(cfg)
	branchHandler := handlers.NewBranchHandler()
	categoryHandler := handlers.NewCategoryHandler()
	formHandler := handlers.NewFormHandler()
	auditHandler := handlers.NewAuditHandler()
	responseHandler := handlers.NewResponseHandler(store)
	correctiveHandler := handlers.NewCorrectiveHandler(store)
	externalHandler := handlers.NewExternalHandler(cfg)
	activityHandler := handlers.NewActivityHandler()
	dashboardHandler := handlers.NewDashboardHandler()

	// Middleware
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.ErrorHandler())

	// Public routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"message": "SmartComply API is running",
			})
		})

		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
		}

		// External share-token routes (anonymous, read-only)
		external := api.Group("/external/audits/:token")
		{
			external.GET("", externalHandler.GetExternalAudit)
			external.GET("/responders/:id", externalHandler.GetExternalResponder)
			external.GET("/corrective-actions/:id", externalHandler.GetExternalCorrectiveAction)
		}
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(authService))
	{
		// Auth routes (protected)
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.GetMe)

		// Staff management (admin only)
		staff := protected.Group("/staff", middleware.RequireRole(models.RoleAdmin))
		{
			staff.GET("", staffHandler.GetStaff)
			staff.GET("/:id", staffHandler.GetStaffByID)
			staff.POST("", staffHandler.CreateStaff)
			staff.PUT("/:id", staffHandler.UpdateStaff)
			staff.POST("/:id/toggle", staffHandler.ToggleStaffStatus)
		}

		// Branch management (admin only)
		branches := protected.Group("/branches", middleware.RequireRole(models.RoleAdmin))
		{
			branches.GET("", branchHandler.GetBranches)
			branches.GET("/:id", branchHandler.GetBranch)
			branches.POST("", branchHandler.CreateBranch)
			branches.PUT("/:id", branchHandler.UpdateBranch)
			branches.POST("/:id/toggle", branchHandler.ToggleBranchStatus)
		}

		// Compliance categories (reads open to all roles, writes admin only)
		categories := protected.Group("/categories")
		{
			categories.GET("", categoryHandler.GetCategories)
			categories.GET("/:id", categoryHandler.GetCategory)
			categories.POST("", middleware.RequireRole(models.RoleAdmin), categoryHandler.CreateCategory)
			categories.PUT("/:id", middleware.RequireRole(models.RoleAdmin), categoryHandler.UpdateCategory)
			categories.POST("/:id/toggle", middleware.RequireRole(models.RoleAdmin), categoryHandler.ToggleCategoryStatus)
		}

		// Form builder (admin only) and fillable-form lookups
		forms := protected.Group("/forms")
		{
			forms.GET("", formHandler.GetForms)
			forms.GET("/:id", formHandler.GetForm)
			forms.GET("/available/:categoryId", formHandler.GetAvailableForms)
			forms.POST("", middleware.RequireRole(models.RoleAdmin), formHandler.CreateForm)
			forms.PUT("/:id", middleware.RequireRole(models.RoleAdmin), formHandler.UpdateForm)
			forms.POST("/:id/publish", middleware.RequireRole(models.RoleAdmin), formHandler.PublishForm)
			forms.POST("/:id/toggle", middleware.RequireRole(models.RoleAdmin), formHandler.ToggleFormVisibility)
			forms.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), formHandler.DeleteForm)
		}

		// Audit lifecycle
		audits := protected.Group("/audits")
		{
			audits.GET("", auditHandler.GetAudits)
			audits.GET("/:id", auditHandler.GetAudit)
			audits.POST("", auditHandler.CreateAudit)
			audits.GET("/existing/:categoryId", auditHandler.HasExistingAudit)
			audits.PUT("/:id", auditHandler.UpdateAudit)
			audits.PUT("/:id/status", middleware.RequireRole(models.RoleAdmin, models.RoleManager), auditHandler.UpdateAuditStatus)
			audits.DELETE("/:id", auditHandler.DeleteAudit)

			// Share links
			audits.POST("/:id/share", externalHandler.IssueShareLink)
			audits.GET("/:id/share/qr", externalHandler.GetShareQR)
		}

		// Filling lives under its own group so the audit and form IDs are
		// both in the path
		fill := protected.Group("/fill/:auditId/:formId")
		{
			fill.GET("", responseHandler.StartFill)
			fill.GET("/edit", middleware.RequireRole(models.RoleAdmin, models.RoleManager), responseHandler.StartEdit)
		}

		responses := protected.Group("/responses")
		{
			responses.POST("/resume", responseHandler.Resume)
			responses.POST("/preview", responseHandler.Preview)
			responses.POST("/confirm", responseHandler.Confirm)
		}
		protected.GET("/responders/:id", responseHandler.GetResponder)

		// Corrective actions
		corrective := protected.Group("/corrective-actions")
		{
			corrective.GET("/audit/:auditId", correctiveHandler.GetCorrectiveActions)
			corrective.GET("/:id", correctiveHandler.GetCorrectiveAction)
			corrective.POST("", correctiveHandler.CreateCorrectiveAction)
			corrective.PUT("/:id", correctiveHandler.UpdateCorrectiveAction)
			corrective.DELETE("/:id", correctiveHandler.DeleteCorrectiveAction)
			corrective.POST("/:id/recover", correctiveHandler.RecoverCorrectiveAction)
		}

		// Activity feed
		protected.GET("/activity", activityHandler.GetActivityLogs)

		// Dashboards
		dashboard := protected.Group("/dashboard")
		{
			dashboard.GET("/admin", middleware.RequireRole(models.RoleAdmin), dashboardHandler.GetAdminOverview)
			dashboard.GET("/admin/categories", middleware.RequireRole(models.RoleAdmin), dashboardHandler.GetCategoryDistribution)
			dashboard.GET("/manager/auditors", middleware.RequireRole(models.RoleManager), dashboardHandler.GetAuditorPerformance)
			dashboard.GET("/compliance", dashboardHandler.GetComplianceSummary)
			dashboard.GET("/me", dashboardHandler.GetUserOverview)
		}
	}
}
