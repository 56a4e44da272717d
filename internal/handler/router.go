package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"acqplan/internal/config"
	"acqplan/internal/middleware"
	"acqplan/internal/repository"
	"acqplan/internal/service"
)

// NewRouter builds the gin engine with every API route mounted under /api.
// users resolves the session owner on each authenticated request.
func NewRouter(cfg *config.Config, log *zap.Logger, svc *service.Services, users repository.UserRepository) *gin.Engine {
	RegisterValidators()

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(log))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Request-ID"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	public := router.Group("/api")
	authed := router.Group("/api")
	authed.Use(middleware.Authenticate(users, cfg.JWT.Secret))

	NewUserHandler(svc.Users, cfg.JWT.AccessTokenExpire, cfg.Server.CookieSecure).RegisterRoutes(public, authed)
	NewDepartmentHandler(svc.Departments, svc.DepartmentTypes).RegisterRoutes(authed)
	NewCatalogHandler(svc.Catalog).RegisterRoutes(authed)
	NewRequestHandler(svc.Requests).RegisterRoutes(authed)
	NewNotificationHandler(svc.Notifications).RegisterRoutes(authed)
	NewDashboardHandler(svc.Dashboard).RegisterRoutes(authed)
	NewAuditHandler(svc.Audit).RegisterRoutes(authed)
	NewSettingHandler(svc.Settings).RegisterRoutes(authed)

	return router
}
