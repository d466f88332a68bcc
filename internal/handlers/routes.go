package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/qcbd/app-beneficiary/internal/middleware"
	"github.com/qcbd/app-beneficiary/internal/models"
)

// Handlers groups every handler set served by the API
type Handlers struct {
	Applications *ApplicationHandlers
	Documents    *DocumentHandlers
	Users        *UserHandlers
	Health       *HealthHandlers
}

// RouterConfig controls router construction
type RouterConfig struct {
	// ClientID selects the identity provider client whose roles are honoured
	ClientID string
	// MaxMultipartMemory bounds the in-memory part of multipart uploads
	MaxMultipartMemory int64
	Swagger            bool
}

// NewRouter builds the gin engine with middleware and every /v1 route
func NewRouter(cfg RouterConfig, h Handlers) *gin.Engine {
	router := gin.New()
	if cfg.MaxMultipartMemory > 0 {
		router.MaxMultipartMemory = cfg.MaxMultipartMemory
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AddAllowHeaders("Authorization")
	corsConfig.AddExposeHeaders("Content-Disposition", middleware.RequestIDHeader)

	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RequestTracker(),
		middleware.RequestTiming(),
		cors.New(corsConfig),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.Swagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := router.Group("/v1")
	v1.GET("/health", h.Health.HealthCheck)

	api := v1.Group("")
	api.Use(middleware.AuthMiddleware(cfg.ClientID), middleware.AuditContext())

	staff := middleware.RequireAnyRole(models.StaffRoles...)

	apps := api.Group("/applications/orphan", staff)
	{
		apps.POST("", h.Applications.CreateApplication)
		apps.GET("", h.Applications.ListApplications)
		apps.GET("/export/fields", h.Applications.ExportFields)
		apps.GET("/export", h.Applications.ExportApplications)
		apps.GET("/:id", h.Applications.GetApplication)
		apps.PUT("/:id", h.Applications.UpdateApplication)
		apps.DELETE("/:id", middleware.RequireAdmin(), h.Applications.DeleteApplication)
		apps.POST("/:id/validate", h.Applications.ValidateApplication)
		apps.PUT("/:id/status", middleware.RequireAnyRole(models.DecisionRoles...), h.Applications.UpdateStatus)
		apps.GET("/:id/document", h.Applications.GetApplicationDocument)
	}

	docs := api.Group("/orphan/documents/:applicationId", staff)
	{
		docs.GET("", h.Documents.ListDocuments)
		docs.GET("/document/:docType", h.Documents.GetDocument)
		docs.POST("/document/:docType", h.Documents.UploadDocument)
		docs.POST("/bulk", h.Documents.UploadDocumentsBulk)
	}

	users := api.Group("/users")
	{
		users.GET("/me", h.Users.GetMe)
		users.GET("/media/:id/file/:type", h.Users.GetMedia)
		users.POST("/media/:id/file/:type", h.Users.UploadMedia)
		users.GET("/:id", staff, h.Users.GetUser)
		users.POST("", middleware.RequireAdmin(), h.Users.CreateUser)
		users.PUT("/:id", middleware.RequireAdmin(), h.Users.UpdateUser)
	}

	return router
}
