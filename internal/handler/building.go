package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/classroom-reservation/internal/model"
	"github.com/iliyamo/classroom-reservation/internal/service"
)

// CatalogHandler serves buildings and classrooms.  Reads are open to any
// authenticated user; writes are registered behind RequireRole(ADMIN).
type CatalogHandler struct {
	Svc    *service.CatalogService
	Logger *zap.Logger
}

func NewCatalogHandler(svc *service.CatalogService, logger *zap.Logger) *CatalogHandler {
	if svc == nil {
		panic("nil service passed to NewCatalogHandler")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{Svc: svc, Logger: logger}
}

type buildingReq struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

func (h *CatalogHandler) ListBuildings(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	out, err := h.Svc.ListBuildings(ctx)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) GetBuilding(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	b, err := h.Svc.GetBuilding(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *CatalogHandler) CreateBuilding(c echo.Context) error {
	var req buildingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	b, err := h.Svc.CreateBuilding(ctx, model.Building{Name: req.Name, Location: req.Location})
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *CatalogHandler) UpdateBuilding(c echo.Context) error {
	var req buildingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	b, err := h.Svc.UpdateBuilding(ctx, c.Param("id"), model.Building{Name: req.Name, Location: req.Location})
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, b)
}

// DeleteBuilding answers 409 while the building still has classrooms.
func (h *CatalogHandler) DeleteBuilding(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Svc.DeleteBuilding(ctx, c.Param("id")); err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// BuildingClassrooms handles GET /api/buildings/:id/classrooms.
func (h *CatalogHandler) BuildingClassrooms(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	out, err := h.Svc.ListClassrooms(ctx, model.ClassroomQuery{BuildingID: c.Param("id")})
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}
