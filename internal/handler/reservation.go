package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/classroom-reservation/internal/model"
	"github.com/iliyamo/classroom-reservation/internal/service"
)

// ReservationHandler exposes the reservation operations over HTTP.  All
// methods assume JWTAuth already ran.
type ReservationHandler struct {
	Svc    *service.ReservationService
	Logger *zap.Logger
}

func NewReservationHandler(svc *service.ReservationService, logger *zap.Logger) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReservationHandler{Svc: svc, Logger: logger}
}

type createReservationReq struct {
	ClassroomID string  `json:"classroomId"`
	UserID      string  `json:"userId"`
	StartTime   apiTime `json:"startTime"`
	EndTime     apiTime `json:"endTime"`
	Purpose     string  `json:"purpose"`
}

type updateReservationReq struct {
	ClassroomID *string  `json:"classroomId"`
	UserID      *string  `json:"userId"`
	StartTime   *apiTime `json:"startTime"`
	EndTime     *apiTime `json:"endTime"`
	Purpose     *string  `json:"purpose"`
	Status      *string  `json:"status"`
}

type statusReq struct {
	Status string `json:"status"`
}

// parseListFilter reads classroomId, userId, status, sort, limit and
// futureOnly from the query string.
func parseListFilter(c echo.Context) (service.ListFilter, error) {
	f := service.ListFilter{
		ClassroomID: c.QueryParam("classroomId"),
		UserID:      c.QueryParam("userId"),
	}
	if s := strings.TrimSpace(c.QueryParam("status")); s != "" {
		st, ok := model.ParseStatus(s)
		if !ok {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		f.Status = st
	}
	sort, err := service.ParseSort(c.QueryParam("sort"))
	if err != nil {
		return f, err
	}
	f.Sort = sort
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		f.Limit = n
	}
	if s := c.QueryParam("futureOnly"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid futureOnly")
		}
		f.FutureOnly = b
	}
	return f, nil
}

// badQuery renders both echo.HTTPError and service errors from query parsing.
func (h *ReservationHandler) badQuery(c echo.Context, err error) error {
	if he, ok := err.(*echo.HTTPError); ok {
		return c.JSON(he.Code, echo.Map{"error": he.Message})
	}
	return writeError(c, h.Logger, err)
}

// List handles GET /api/reservations.  Members only ever see their own
// reservations; administrators may filter freely.
func (h *ReservationHandler) List(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return unauthorized(c)
	}
	f, err := parseListFilter(c)
	if err != nil {
		return h.badQuery(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	out, err := h.Svc.List(ctx, actor, f)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Mine handles GET /api/users/me/reservations.
func (h *ReservationHandler) Mine(c echo.Context) error {
	return h.listForUser(c, "")
}

// ForUser handles GET /api/users/:id/reservations (admin).
func (h *ReservationHandler) ForUser(c echo.Context) error {
	return h.listForUser(c, c.Param("id"))
}

func (h *ReservationHandler) listForUser(c echo.Context, userID string) error {
	actor, err := getActor(c)
	if err != nil {
		return unauthorized(c)
	}
	f, err := parseListFilter(c)
	if err != nil {
		return h.badQuery(c, err)
	}
	f.UserID = userID
	if userID == "" {
		f.UserID = actor.UserID
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	out, err := h.Svc.List(ctx, actor, f)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Upcoming handles GET /api/reservations/upcoming.
func (h *ReservationHandler) Upcoming(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return unauthorized(c)
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	ctx, cancel := reqCtx(c)
	defer cancel()
	out, err := h.Svc.Upcoming(ctx, actor, limit)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Current handles GET /api/reservations/current (admin).
func (h *ReservationHandler) Current(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	out, err := h.Svc.Current(ctx)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /api/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.Svc.Get(ctx, actor, c.Param("id"))
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Create handles POST /api/reservations.  The reservation is created
// PENDING and must be confirmed by an administrator.
func (h *ReservationHandler) Create(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return unauthorized(c)
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.Svc.Create(ctx, actor, service.CreateInput{
		ClassroomID:  req.ClassroomID,
		TargetUserID: req.UserID,
		StartTime:    req.StartTime.Time,
		EndTime:      req.EndTime.Time,
		Purpose:      req.Purpose,
	})
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Update handles PUT /api/reservations/:id as a partial update.
func (h *ReservationHandler) Update(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return unauthorized(c)
	}
	var req updateReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	in := service.DetailsInput{
		ClassroomID: req.ClassroomID,
		UserID:      req.UserID,
		StartTime:   req.StartTime.ptr(),
		EndTime:     req.EndTime.ptr(),
		Purpose:     req.Purpose,
	}
	if req.Status != nil {
		st, ok := model.ParseStatus(*req.Status)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		in.Status = &st
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.Svc.UpdateDetails(ctx, actor, c.Param("id"), in)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, res)
}

// UpdateStatus handles PUT|PATCH /api/reservations/:id/status.  The new
// status comes from the status query parameter or a {"status": ...} body.
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return unauthorized(c)
	}
	raw := c.QueryParam("status")
	if raw == "" {
		var req statusReq
		_ = c.Bind(&req)
		raw = req.Status
	}
	st, ok := model.ParseStatus(raw)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be one of PENDING, CONFIRMED, REJECTED, CANCELLED"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.Svc.UpdateStatus(ctx, actor, c.Param("id"), st)
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Cancel handles PATCH /api/reservations/:id/cancel.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	res, err := h.Svc.Cancel(ctx, actor, c.Param("id"))
	if err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Delete handles DELETE /api/reservations/:id.
func (h *ReservationHandler) Delete(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Svc.Delete(ctx, actor, c.Param("id")); err != nil {
		return writeError(c, h.Logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}
