package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// UserIDHeader carries the caller's user id, set by the upstream auth proxy.
const UserIDHeader = "X-User-ID"

const userIDKey = "userID"

// NewIdentityMiddleware reads the caller's id from UserIDHeader. In
// development a missing header falls back to devUserID when it is set.
func NewIdentityMiddleware(devUserID int64, development bool, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := strings.TrimSpace(c.Request().Header.Get(UserIDHeader))
			switch {
			case raw != "":
				id, err := strconv.ParseInt(raw, 10, 64)
				if err != nil || id <= 0 {
					logger.WarnContext(c.Request().Context(), "Rejected malformed user id header", "value", raw)
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid "+UserIDHeader+" header")
				}
				c.Set(userIDKey, id)
			case development && devUserID != 0:
				logger.Debug("Bypassing identity header and setting dev user", "user_id", devUserID)
				c.Set(userIDKey, devUserID)
			}
			return next(c)
		}
	}
}

// userID returns the caller's id, or a 401 when the request has none.
func userID(c echo.Context) (int64, error) {
	id, ok := c.Get(userIDKey).(int64)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "Missing "+UserIDHeader+" header")
	}
	return id, nil
}
