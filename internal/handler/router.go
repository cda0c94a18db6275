package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/accountsvc/backend/internal/config"
	"github.com/accountsvc/backend/internal/service"
)

// NewRouter wires middleware and routes. Shared between main and the handler
// tests so both exercise the same routing table.
func NewRouter(cfg config.Config, authSvc *service.AuthService, userSvc *service.UserService) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins, true))

	healthHandler := NewHealthHandler(cfg.App.ProjectName)
	authHandler := NewAuthHandler(authSvc)
	userHandler := NewUserHandler(userSvc)

	router.GET("/health", healthHandler.Health)
	router.GET("/", healthHandler.Root)

	v1 := router.Group("/api/v1")
	v1.GET("/openapi.json", OpenAPIDoc)
	v1.POST("/auth/login", authHandler.Login)

	users := v1.Group("/users")
	users.Use(AuthMiddleware(authSvc))
	users.GET("/me", userHandler.Me)
	users.PUT("/me", userHandler.UpdateMe)

	admin := users.Group("")
	admin.Use(SuperuserMiddleware())
	admin.POST("/", userHandler.Create)
	admin.GET("/", userHandler.List)
	admin.GET("/:user_id", userHandler.Get)
	admin.PUT("/:user_id", userHandler.Update)
	admin.DELETE("/:user_id", userHandler.Delete)

	return router
}
