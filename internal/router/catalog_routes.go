package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-reservation/internal/handler"
	"github.com/iliyamo/classroom-reservation/internal/middleware"
)

// RegisterCatalog registers building and classroom endpoints under /api.
// Reads need any valid JWT, writes need ADMIN.  cache wraps the whole
// group; it only stores GET responses and is purged by writes.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group("/api", middleware.JWTAuth(jwtSecret))
	if cache != nil {
		g.Use(cache)
	}

	g.GET("/buildings", h.ListBuildings)
	g.POST("/buildings", h.CreateBuilding, adminOnly)
	g.GET("/buildings/:id", h.GetBuilding)
	g.PUT("/buildings/:id", h.UpdateBuilding, adminOnly)
	g.DELETE("/buildings/:id", h.DeleteBuilding, adminOnly)
	g.GET("/buildings/:id/classrooms", h.BuildingClassrooms)

	g.GET("/classrooms", h.ListClassrooms)
	g.POST("/classrooms", h.CreateClassroom, adminOnly)
	g.GET("/classrooms/type/:type", h.ByType)
	g.GET("/classrooms/capacity/:min", h.ByCapacity)
	g.GET("/classrooms/available-now", h.AvailableNow)
	g.GET("/classrooms/unavailable-now", h.UnavailableNow)
	g.GET("/classrooms/stats/availability", h.Stats)
	g.POST("/classrooms/check-availability", h.CheckAvailability)
	g.GET("/classrooms/:id", h.GetClassroom)
	g.PUT("/classrooms/:id", h.UpdateClassroom, adminOnly)
	g.DELETE("/classrooms/:id", h.DeleteClassroom, adminOnly)
}
