package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-reservation/internal/handler"
	"github.com/iliyamo/classroom-reservation/internal/middleware"
)

// RegisterReservations registers reservation endpoints under /api.  Every
// route requires a valid JWT; ownership and role checks beyond that are
// made by the reservation service so members and administrators share
// the same routes.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string) {
	g := e.Group("/api", middleware.JWTAuth(jwtSecret))

	g.GET("/reservations", h.List)
	g.POST("/reservations", h.Create)
	g.GET("/reservations/upcoming", h.Upcoming)
	g.GET("/reservations/current", h.Current, adminOnly)
	g.GET("/reservations/:id", h.Get)
	g.PUT("/reservations/:id", h.Update)
	g.PUT("/reservations/:id/status", h.UpdateStatus)
	g.PATCH("/reservations/:id/status", h.UpdateStatus)
	g.PATCH("/reservations/:id/cancel", h.Cancel)
	g.DELETE("/reservations/:id", h.Delete)

	g.GET("/users/me/reservations", h.Mine)
	g.GET("/users/:id/reservations", h.ForUser, adminOnly)
}
