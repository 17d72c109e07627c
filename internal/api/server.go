// Package api exposes the wrapped statistics over HTTP.
package api

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/google/uuid"
	"github.com/jjckrbbt/wrapped/internal/stats"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// Pinger reports database liveness for the health check.
type Pinger interface {
	Ping() error
}

// ServerOptions carries the HTTP settings taken from config.Config.
type ServerOptions struct {
	AllowedOrigins []string
	Development    bool
	DevUserID      int64
	// LikeRateLimit is the per-caller like/unlike rate in requests per second.
	LikeRateLimit float64
}

func slogPanicRecoverMiddleware(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = fmt.Errorf("%v", r)
					}
					reqLogger := logger.With("request_id", c.Get("requestID"))
					reqLogger.ErrorContext(c.Request().Context(), "PANIC recovered",
						slog.Any("error", err),
						slog.String("stack", string(debug.Stack())),
					)
					c.Error(err)
				}
			}()
			return next(c)
		}
	}
}

func requestLoggerMiddleware(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqID := uuid.New().String()
			c.Set("requestID", reqID)
			c.Response().Header().Set(echo.HeaderXRequestID, reqID)

			start := time.Now()

			if hub := sentryecho.GetHubFromContext(c); hub != nil {
				hub.Scope().SetTag("request_id", reqID)
			}

			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			logger.InfoContext(c.Request().Context(), "HTTP Request",
				"request_id", reqID,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", status,
				"latency_ms", time.Since(start).Milliseconds(),
				"user_agent", c.Request().UserAgent(),
				"ip", c.RealIP(),
			)
			return err
		}
	}
}

// likeRateLimiter limits like writes per caller, keyed by user id when known
// and by client IP otherwise.
func likeRateLimiter(perSecond float64) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     max(1, int(math.Ceil(perSecond))),
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if id, ok := c.Get(userIDKey).(int64); ok {
				return fmt.Sprintf("user:%d", id), nil
			}
			return "ip:" + c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "Unable to identify caller").SetInternal(err)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many like requests").SetInternal(err)
		},
	})
}

// NewServer builds the echo instance with middleware and all routes.
func NewServer(opts ServerOptions, service *stats.Service, db Pinger, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// echo's own logger is silenced; slog carries request logs
	e.Logger.SetOutput(io.Discard)
	e.Logger.SetLevel(0)
	e.Logger.SetHeader("")

	e.Use(slogPanicRecoverMiddleware(logger))
	e.Use(sentryecho.New(sentryecho.Options{
		Repanic: true,
	}))
	e.Use(requestLoggerMiddleware(logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: opts.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Length", "Content-Type", "Accept", "Authorization", UserIDHeader},
	}))

	e.GET("/health", func(c echo.Context) error {
		reqLogger := logger.With("request_id", c.Get("requestID"))
		if err := db.Ping(); err != nil {
			reqLogger.ErrorContext(c.Request().Context(), "Database ping failed during health check", slog.Any("error", err))
			sentry.CaptureException(err)
			return c.String(http.StatusInternalServerError, "DB Not Ready")
		}
		return c.String(http.StatusOK, "OK")
	})

	apiLogger := logger.With("service", "api_handlers")
	if opts.Development && opts.DevUserID != 0 {
		logger.Warn("!!!!!!!!!! DEV_USER_ID FALLBACK IS ENABLED; REQUESTS WITHOUT AN IDENTITY HEADER ACT AS THAT USER !!!!!!!!!!", "user_id", opts.DevUserID)
	}

	yearGroup := e.Group("/api/:year", NewIdentityMiddleware(opts.DevUserID, opts.Development, apiLogger))

	NewStatsHandler(service, apiLogger).RegisterRoutes(yearGroup)
	NewContentHandler(service, apiLogger).RegisterRoutes(yearGroup)
	NewLikesHandler(service, apiLogger).RegisterRoutes(yearGroup, likeRateLimiter(opts.LikeRateLimit))

	return e
}
