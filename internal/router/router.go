// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/plantcert/pvp-backend/internal/config"
	"github.com/plantcert/pvp-backend/internal/handlers"
	"github.com/plantcert/pvp-backend/internal/middleware"
	"github.com/plantcert/pvp-backend/internal/services"
)

// Initialize wires services, handlers and routes onto a gin engine.
func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	// Services
	auditService := services.NewAuditService(db)
	rulesService := services.NewRulesService(db)
	authService := services.NewAuthService(db, cfg)
	varietyService := services.NewVarietyService(db)
	notificationService := services.NewNotificationService(db, cfg)
	taskService := services.NewTaskService(db, rulesService, auditService, notificationService)
	maintenanceService := services.NewMaintenanceService(db, rulesService, auditService, notificationService)
	applicationService := services.NewApplicationService(db, rulesService, taskService, auditService)
	jurisdictionService := services.NewJurisdictionService(db)

	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	documentService := services.NewDocumentService(db, storageService)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	varietyHandler := handlers.NewVarietyHandler(varietyService)
	applicationHandler := handlers.NewApplicationHandler(applicationService, rulesService)
	taskHandler := handlers.NewTaskHandler(taskService)
	maintenanceHandler := handlers.NewMaintenanceHandler(maintenanceService)
	jurisdictionHandler := handlers.NewJurisdictionHandler(jurisdictionService)
	documentHandler := handlers.NewDocumentHandler(documentService)
	auditHandler := handlers.NewAuditHandler(auditService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	// Public auth endpoints
	auth := v1.Group("/auth")
	auth.Use(middleware.AuthRateLimit())
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)
	}

	// Authenticated endpoints
	api := v1.Group("")
	api.Use(middleware.AuthRequired())
	{
		api.GET("/auth/profile", authHandler.GetProfile)
		api.PUT("/auth/password", authHandler.ChangePassword)

		// Varieties
		api.POST("/varieties", varietyHandler.Create)
		api.GET("/varieties", varietyHandler.List)
		api.GET("/varieties/:id", varietyHandler.Get)
		api.PUT("/varieties/:id", varietyHandler.Update)
		api.DELETE("/varieties/:id", middleware.OrgAdminRequired(), varietyHandler.Delete)

		// Applications
		api.POST("/applications", applicationHandler.Create)
		api.GET("/applications", applicationHandler.List)
		api.GET("/applications/:id", applicationHandler.Get)
		api.POST("/applications/:id/file", applicationHandler.File)
		api.PUT("/applications/:id/status", applicationHandler.TransitionStatus)
		api.PUT("/applications/:id/dus", applicationHandler.UpdateDUSStatus)
		api.GET("/applications/:id/missing-documents", applicationHandler.MissingDocuments)

		// Tasks
		api.POST("/applications/:id/tasks/generate", taskHandler.Generate)
		api.GET("/applications/:id/tasks", taskHandler.ListForApplication)
		api.POST("/applications/:id/tasks", taskHandler.CreateManual)
		api.PUT("/tasks/:id/complete", taskHandler.Complete)
		api.PUT("/tasks/:id/reopen", taskHandler.Reopen)
		api.GET("/tasks/upcoming", taskHandler.ListUpcoming)

		// Maintenance schedule
		api.GET("/applications/:id/maintenance", maintenanceHandler.GetSchedule)
		api.PUT("/applications/:id/maintenance/reschedule", middleware.OrgAdminRequired(), maintenanceHandler.Reschedule)
		api.PUT("/applications/:id/maintenance/:year/pay", maintenanceHandler.MarkPaid)
		api.DELETE("/applications/:id/maintenance/:year", middleware.OrgAdminRequired(), maintenanceHandler.DeleteTerm)

		// Documents
		documents := api.Group("")
		documents.Use(middleware.UploadRateLimit())
		{
			documents.POST("/applications/:id/documents", documentHandler.Upload)
		}
		api.GET("/applications/:id/documents", documentHandler.List)
		api.DELETE("/documents/:id", documentHandler.Delete)

		// Jurisdiction catalogue, readable by all authenticated users
		api.GET("/jurisdictions", jurisdictionHandler.List)
		api.GET("/jurisdictions/:id", jurisdictionHandler.Get)
		api.GET("/rulesets/:id", jurisdictionHandler.GetRuleSet)

		// Audit trail
		api.GET("/audit-logs", auditHandler.List)
	}

	// Rule administration, super admin only
	admin := v1.Group("")
	admin.Use(middleware.AuthRequired(), middleware.SuperAdminRequired(), middleware.RuleAdminRateLimit())
	{
		admin.POST("/jurisdictions", jurisdictionHandler.Create)
		admin.POST("/jurisdictions/:id/rulesets", jurisdictionHandler.CreateRuleSet)
		admin.PUT("/rulesets/:id/activate", jurisdictionHandler.ActivateRuleSet)
		admin.POST("/rulesets/:id/deadlines", jurisdictionHandler.AddDeadlineRule)
		admin.POST("/rulesets/:id/documents", jurisdictionHandler.AddDocumentRule)
		admin.POST("/rulesets/:id/terms", jurisdictionHandler.AddTermRule)
		admin.POST("/rulesets/:id/fees", jurisdictionHandler.AddFeeRule)
	}

	return r, nil
}
