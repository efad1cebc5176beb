package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/campus-ops/lostfound-api/internal/middleware"
	"github.com/campus-ops/lostfound-api/internal/models"
	"github.com/campus-ops/lostfound-api/internal/service"
	"github.com/campus-ops/lostfound-api/pkg/config"
	"github.com/campus-ops/lostfound-api/pkg/logger"
	corsmiddleware "github.com/campus-ops/lostfound-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campus-ops/lostfound-api/pkg/middleware/requestid"
)

// RouterDeps bundles everything the HTTP surface needs.
type RouterDeps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Auth    *AuthHandler
	Users   *UserHandler
	Items   *ItemHandler
	Claims  *ClaimHandler
	AuthSvc *service.AuthService
	Metrics *service.MetricsService
}

// NewRouter builds the gin engine and registers every route once, at startup.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	if deps.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authRequired := middleware.JWT(deps.AuthSvc)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	api := r.Group(deps.Config.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register/student", deps.Auth.RegisterStudent)
		auth.POST("/register/teacher", deps.Auth.RegisterTeacher)
		auth.POST("/login", deps.Auth.Login)
		auth.POST("/refresh", deps.Auth.Refresh)
		auth.POST("/logout", authRequired, deps.Auth.Logout)
	}

	users := api.Group("/users")
	{
		users.GET("/pending", authRequired, adminOnly, deps.Users.ListPending)
		users.GET("/:id", authRequired, adminOnly, deps.Users.Detail)
		users.POST("/:id/approve", authRequired, adminOnly, deps.Users.Approve)
		users.POST("/:id/reject", authRequired, adminOnly, deps.Users.Reject)
	}

	items := api.Group("/items")
	{
		items.POST("", authRequired, deps.Items.Report)
		items.GET("", deps.Items.List)
		items.GET("/my-items", authRequired, deps.Items.ListMine)
		items.GET("/:id", deps.Items.Get)
		items.GET("/:id/photo", deps.Items.Photo)
	}

	claims := api.Group("/claims")
	{
		claims.POST("/items/:item_id", authRequired, deps.Claims.Submit)
		claims.GET("/my-claims", authRequired, deps.Claims.ListMine)
		claims.GET("/review", authRequired, adminOnly, deps.Claims.ListForReview)
		claims.GET("/review/export", authRequired, adminOnly, deps.Claims.Export)
		claims.POST("/:id/review", authRequired, adminOnly, deps.Claims.Review)
	}

	return r
}
