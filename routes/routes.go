package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/angelolev/tech-calendar/config"
	"github.com/angelolev/tech-calendar/internal/auditlog"
	"github.com/angelolev/tech-calendar/internal/auth"
	"github.com/angelolev/tech-calendar/internal/event"
	"github.com/angelolev/tech-calendar/internal/interest"
	"github.com/angelolev/tech-calendar/middleware"
)

// Setup wires repositories, services and handlers and registers every route.
func Setup(r *gin.Engine, cfg *config.Config, db *gorm.DB) {
	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter())
	api.Use(middleware.Audit()) // capture client IP for audit entries

	// ========== Audit Log ==========
	auditRepo := auditlog.NewRepository(db)
	auditSvc := auditlog.NewService(auditRepo)
	auditHandler := auditlog.NewHandler(auditSvc)

	// ========== Auth ==========
	authRepo := auth.NewRepository(db)
	authSvc := auth.NewService(authRepo, cfg)
	authHandler := auth.NewHandler(authSvc)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.GET("/me", middleware.Auth(authSvc), authHandler.Me)
	}

	// ========== Events ==========
	eventStore := event.NewStore(db)
	eventSvc := event.NewService(eventStore, auditSvc, time.Duration(cfg.EventCacheTTLSeconds)*time.Second)
	eventHandler := event.NewHandler(eventSvc)

	// ========== Interest ==========
	interestRepo := interest.NewRepository(db)
	interestSvc := interest.NewService(interestRepo)
	interestHandler := interest.NewHandler(interestSvc)

	// deleting an event clears its interest ledger
	eventSvc.OnDelete(interestSvc.DropEvent)

	// Public reads. The optional session only affects the membership flag.
	public := api.Group("/")
	public.Use(middleware.OptionalAuth(authSvc))
	{
		public.GET("/events", eventHandler.List)
		public.GET("/calendar/:year/:month", eventHandler.Month)
		public.GET("/events/:id/interest", interestHandler.Get)
	}

	// Signed-in users
	protected := api.Group("/")
	protected.Use(middleware.Auth(authSvc))
	{
		protected.POST("/events/:id/interest/toggle", interestHandler.Toggle)
	}

	// ========== Admin (event management + audit trail) ==========
	admin := api.Group("/")
	admin.Use(middleware.Auth(authSvc), middleware.RequireAdmin())
	{
		admin.POST("/events", eventHandler.Create)
		admin.PATCH("/events/:id", eventHandler.Update)
		admin.DELETE("/events/:id", eventHandler.Delete)
		admin.GET("/auditlogs", auditHandler.List)
	}
}
