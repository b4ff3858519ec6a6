package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-reservation/internal/model"
)

// Context keys written by JWTAuth and RequestLogger.
const (
	ctxUserID    = "user_id"
	ctxRole      = "role"
	ctxRequestID = "request_id"
)

// Actor returns the authenticated identity stored by JWTAuth.  ok is false
// when the request carries no identity.
func Actor(c echo.Context) (model.Actor, bool) {
	uid, _ := c.Get(ctxUserID).(string)
	role, _ := c.Get(ctxRole).(string)
	if uid == "" {
		return model.Actor{}, false
	}
	return model.Actor{UserID: uid, Role: model.Role(role)}, true
}

// RequestID returns the id RequestLogger assigned to the request.
func RequestID(c echo.Context) string {
	id, _ := c.Get(ctxRequestID).(string)
	return id
}

func currentUserID(c echo.Context) string {
	if a, ok := Actor(c); ok {
		return a.UserID
	}
	return "anon"
}
