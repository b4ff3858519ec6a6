package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-reservation/internal/model"
	"github.com/iliyamo/classroom-reservation/internal/service"
)

type classroomReq struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Capacity   int    `json:"capacity"`
	Type       string `json:"type"`
	Resources  string `json:"resources"`
	BuildingID string `json:"buildingId"`
}

func (r classroomReq) toModel() model.Classroom {
	return model.Classroom{
		ID:         r.ID,
		Name:       r.Name,
		Capacity:   r.Capacity,
		Type:       model.ClassroomType(r.Type),
		Resources:  r.Resources,
		BuildingID: r.BuildingID,
	}
}

type availabilityReq struct {
	ClassroomID string `json:"classroomId"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
}

// ListClassrooms handles GET /api/classrooms with optional type,
// minCapacity and buildingId filters.
func (h *CatalogHandler) ListClassrooms(c echo.Context) error {
	q := model.ClassroomQuery{
		BuildingID: c.QueryParam("buildingId"),
		Type:       model.ClassroomType(c.QueryParam("type")),
	}
	if s := c.QueryParam("minCapacity"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid minCapacity"})
		}
		q.MinCapacity = n
	}
	return h.listClassrooms(c, q)
}

// ByType handles GET /api/classrooms/type/:type.
func (h *CatalogHandler) ByType(c echo.Context) error {
	return h.listClassrooms(c, model.ClassroomQuery{Type: model.ClassroomType(c.Param("type"))})
}

// ByCapacity handles GET /api/classrooms/capacity/:min.
func (h *CatalogHandler) ByCapacity(c echo.Context) error {
	n, err := strconv.Atoi(c.Param("min"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid capacity"})
	}
	return h.listClassrooms(c, model.ClassroomQuery{MinCapacity: n})
}

func (h *CatalogHandler) listClassrooms(c echo.Context, q model.ClassroomQuery) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	out, err := h.Svc.ListClassrooms(ctx, q)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) GetClassroom(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	room, err := h.Svc.GetClassroom(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, room)
}

func (h *CatalogHandler) CreateClassroom(c echo.Context) error {
	var req classroomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	room, err := h.Svc.CreateClassroom(ctx, req.toModel())
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusCreated, room)
}

func (h *CatalogHandler) UpdateClassroom(c echo.Context) error {
	var req classroomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	room, err := h.Svc.UpdateClassroom(ctx, c.Param("id"), req.toModel())
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, room)
}

func (h *CatalogHandler) DeleteClassroom(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Svc.DeleteClassroom(ctx, c.Param("id")); err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHandler) AvailableNow(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	out, err := h.Svc.AvailableNow(ctx)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) UnavailableNow(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	out, err := h.Svc.UnavailableNow(ctx)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Stats handles GET /api/classrooms/stats/availability.
func (h *CatalogHandler) Stats(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	sum, err := h.Svc.Summary(ctx)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, sum)
}

// CheckAvailability handles POST /api/classrooms/check-availability with
// {classroomId, date: yyyy-MM-dd, startTime: HH:mm, endTime: HH:mm}.
func (h *CatalogHandler) CheckAvailability(c echo.Context) error {
	var req availabilityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.Svc.CheckAvailability(ctx, service.AvailabilityQuery{
		ClassroomID: req.ClassroomID,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, res)
}
