package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/classroom-reservation/internal/model"
	"github.com/iliyamo/classroom-reservation/internal/repository"
)

// UserHandler provides administrator user management.  Every route is
// registered behind RequireRole(ADMIN).
type UserHandler struct {
	Users      UserStore
	BcryptCost int
	Logger     *zap.Logger
}

func NewUserHandler(users UserStore, bcryptCost int, logger *zap.Logger) *UserHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserHandler{Users: users, BcryptCost: bcryptCost, Logger: logger}
}

type userReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *UserHandler) userError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "user still has reservations"})
	}
	h.Logger.Error("user operation failed", zap.String("path", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}

// List handles GET /api/users.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	out, err := h.Users.List(ctx, "")
	if err != nil {
		return h.userError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ByRole handles GET /api/users/role/:role.
func (h *UserHandler) ByRole(c echo.Context) error {
	role, ok := model.ParseRole(c.Param("role"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	out, err := h.Users.List(ctx, role)
	if err != nil {
		return h.userError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, c.Param("id"))
	if err != nil {
		return h.userError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Create handles POST /api/users.  Unlike self-registration it may create
// administrators.
func (h *UserHandler) Create(c echo.Context) error {
	var req userReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	role, ok := model.ParseRole(req.Role)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/email/password required"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u := &model.User{ID: uuid.NewString(), Name: strings.TrimSpace(req.Name), Email: req.Email, Role: role}
	if err := h.Users.Create(ctx, u, req.Password, h.BcryptCost); err != nil {
		return h.userError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

// Update handles PUT /api/users/:id.  Empty fields keep their value.
func (h *UserHandler) Update(c echo.Context) error {
	var req userReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, c.Param("id"))
	if err != nil {
		return h.userError(c, err)
	}
	if s := strings.TrimSpace(req.Name); s != "" {
		u.Name = s
	}
	if s := strings.TrimSpace(req.Email); s != "" {
		u.Email = s
	}
	if req.Role != "" {
		role, ok := model.ParseRole(req.Role)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
		}
		u.Role = role
	}
	if err := h.Users.Update(ctx, u, req.Password, h.BcryptCost); err != nil {
		return h.userError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHandler) Delete(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Users.Delete(ctx, c.Param("id")); err != nil {
		return h.userError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
