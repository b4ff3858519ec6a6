package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-reservation/internal/service"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrInvalidInput, http.StatusBadRequest},
		{service.ErrConflict, http.StatusConflict},
		{service.ErrInvalidTransition, http.StatusConflict},
		{service.ErrPermissionDenied, http.StatusForbidden},
		{fmt.Errorf("wrapped: %w", service.ErrConflict), http.StatusConflict},
		{errors.New("driver: bad connection"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestWriteErrorHidesInternalErrors(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, writeError(c, nil, errors.New("dial tcp 10.0.0.1:3306: refused")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, writeError(c, nil, fmt.Errorf("room busy: %w", service.ErrConflict)))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"room busy: conflict"}`, rec.Body.String())
}

func TestAPITime(t *testing.T) {
	want := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	for _, in := range []string{
		`"2026-03-02T09:30:00Z"`,
		`"2026-03-02T10:30:00+01:00"`,
		`"2026-03-02T09:30:00"`,
		`"2026-03-02T09:30"`,
		`"2026-03-02 09:30:00"`,
	} {
		var v apiTime
		require.NoError(t, json.Unmarshal([]byte(in), &v), in)
		assert.True(t, want.Equal(v.Time), in)
		assert.Equal(t, time.UTC, v.Location(), in)
	}

	var v apiTime
	assert.Error(t, json.Unmarshal([]byte(`"02/03/2026"`), &v))

	var req updateReservationReq
	require.NoError(t, json.Unmarshal([]byte(`{"startTime":null,"purpose":"x"}`), &req))
	assert.Nil(t, req.StartTime.ptr())
	assert.Nil(t, req.EndTime.ptr())
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	e := echo.New()
	e.GET("/up", Health(pinger{}))
	e.GET("/down", Health(pinger{err: errors.New("gone")}))
	e.GET("/none", Health(nil))

	for path, want := range map[string]int{"/up": 200, "/down": 503, "/none": 200} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, rec.Code, path)
	}
}
