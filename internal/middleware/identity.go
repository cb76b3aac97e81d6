package middleware

// identity.go holds the context keys set by JWTAuth and helpers to read
// them back in handlers and other middleware.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserID    = "user_id"
	CtxEmail     = "email"
	CtxRequestID = "request_id"
	CtxError     = "error" // internal error recorded by a handler for the request log
)

// UserID returns the authenticated user id stored by JWTAuth.
func UserID(c echo.Context) (int64, bool) {
	id, ok := c.Get(CtxUserID).(int64)
	return id, ok && id > 0
}

// userKey identifies the caller for rate limiting: the user id when signed
// in, "anon" otherwise.
func userKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatInt(id, 10)
	}
	return "anon"
}
