package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jjckrbbt/wrapped/internal/stats"
	"github.com/labstack/echo/v4"
)

// serviceError maps a stats service error to an HTTP error, logging
// anything unexpected.
func serviceError(ctx context.Context, logger *slog.Logger, err error, msg string) error {
	switch {
	case errors.Is(err, stats.ErrNotFound), errors.Is(err, stats.ErrUnknownYear):
		return echo.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
	case errors.Is(err, stats.ErrInvalidID):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	case errors.Is(err, context.Canceled):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Request cancelled").SetInternal(err)
	default:
		logger.ErrorContext(ctx, msg, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, msg).SetInternal(err)
	}
}

func yearParam(c echo.Context) (int, error) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Year must be a number")
	}
	return year, nil
}

func idParam(c echo.Context) (int64, error) {
	id, err := stats.ParseID(c.Param("id"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return id, nil
}

func boolQuery(c echo.Context, name string) (bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, echo.NewHTTPError(http.StatusBadRequest, "Query parameter '"+name+"' must be a boolean")
	}
	return v, nil
}
