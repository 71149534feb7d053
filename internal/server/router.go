package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/twbeatles/hwpmaster-api/internal/middleware"
	"github.com/twbeatles/hwpmaster-api/internal/service"
)

// RouteRegistrar defines anything that can wire its routes into a Gin group.
type RouteRegistrar interface {
	// RegisterRoutes should add one or more routes on the provided router group.
	RegisterRoutes(rg *gin.RouterGroup)
}

// RegisterRoutes wires up the root, public, and protected routes.
func RegisterRoutes(
	r *gin.Engine,
	tokens service.TokenService,
	publicRegs []RouteRegistrar,
	protectedRegs []RouteRegistrar,
) {
	// Global middleware
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to HwpMaster API!"})
	})

	// Public routes (health lives here)
	public := r.Group("")
	for _, reg := range publicRegs {
		reg.RegisterRoutes(public)
	}

	// Protected API v1
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(tokens))
	for _, reg := range protectedRegs {
		reg.RegisterRoutes(protected)
	}
}
