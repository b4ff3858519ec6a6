package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-reservation/internal/handler"
	"github.com/iliyamo/classroom-reservation/internal/middleware"
)

// RegisterUsers registers administrator user management under /api/users.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, jwtSecret string) {
	g := e.Group("/api/users", middleware.JWTAuth(jwtSecret), adminOnly)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/role/:role", h.ByRole)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
