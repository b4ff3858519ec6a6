package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-reservation/internal/model"
	"github.com/iliyamo/classroom-reservation/internal/utils"
)

const secret = "test-secret"

func whoami(c echo.Context) error {
	a, ok := Actor(c)
	if !ok {
		return c.NoContent(http.StatusTeapot)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": a.UserID, "role": a.Role})
}

func serve(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	e := echo.New()
	e.GET("/x", whoami, JWTAuth(secret))

	rec := serve(e, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(e, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := utils.NewAccessToken("other-secret", "u1", "ADMIN", 5)
	require.NoError(t, err)
	rec = serve(e, other.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired, err := utils.NewAccessToken(secret, "u1", "ADMIN", -1)
	require.NoError(t, err)
	rec = serve(e, expired.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := utils.NewAccessToken(secret, "u1", "PROFESOR", 5)
	require.NoError(t, err)
	rec = serve(e, tok.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"u1","role":"PROFESOR"}`, rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	e.GET("/x", whoami, JWTAuth(secret), RequireRole(model.RoleAdmin))

	member, err := utils.NewAccessToken(secret, "u1", "ESTUDIANTE", 5)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, serve(e, member.Token).Code)

	admin, err := utils.NewAccessToken(secret, "a1", "ADMIN", 5)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, serve(e, admin.Token).Code)

	bare := echo.New()
	bare.GET("/x", whoami, RequireRole(model.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, serve(bare, "").Code, "no identity is never allowed")
}
