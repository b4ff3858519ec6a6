package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-reservation/internal/model"
)

func TestUserManagement(t *testing.T) {
	users := &memUsers{byID: map[string]model.User{}}
	h := NewUserHandler(users, 4, nil)
	e := echo.New()
	e.GET("/users", h.List)
	e.POST("/users", h.Create)
	e.GET("/users/role/:role", h.ByRole)
	e.GET("/users/:id", h.Get)
	e.PUT("/users/:id", h.Update)
	e.DELETE("/users/:id", h.Delete)

	rec := call(e, http.MethodPost, "/users", "", `{"name":"Root","email":"root@example.com","password":"pw","role":"ADMIN"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var root model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &root))
	assert.Equal(t, model.RoleAdmin, root.Role)

	rec = call(e, http.MethodPost, "/users", "", `{"name":"Root","email":"root@example.com","password":"pw","role":"TUTOR"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = call(e, http.MethodPost, "/users", "", `{"name":"X","email":"x@example.com","password":"pw","role":"JANITOR"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(e, http.MethodPut, "/users/"+root.ID, "", `{"role":"tutor"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	u, err := users.GetByID(context.Background(), root.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleTutor, u.Role)
	assert.Equal(t, "Root", u.Name, "empty fields keep their value")

	var list []model.User
	rec = call(e, http.MethodGet, "/users/role/TUTOR", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
	assert.Equal(t, http.StatusBadRequest, call(e, http.MethodGet, "/users/role/KING", "", "").Code)

	assert.Equal(t, http.StatusNoContent, call(e, http.MethodDelete, "/users/"+root.ID, "", "").Code)
	assert.Equal(t, http.StatusNotFound, call(e, http.MethodGet, "/users/"+root.ID, "", "").Code)
	assert.Equal(t, http.StatusNotFound, call(e, http.MethodDelete, "/users/"+root.ID, "", "").Code)
}
