package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jjckrbbt/wrapped/internal/stats"
	"github.com/labstack/echo/v4"
)

// ContentHandler serves single messages and attachments.
type ContentHandler struct {
	service *stats.Service
	logger  *slog.Logger
}

func NewContentHandler(service *stats.Service, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{
		service: service,
		logger:  logger.With("component", "content_handler"),
	}
}

func (h *ContentHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/messages/:id", h.getMessage)
	g.GET("/attachments/:id", h.getAttachment)
	g.GET("/random/message", h.getRandomMessage)
	g.GET("/random/attachment", h.getRandomAttachment)
	g.GET("/time-machine", h.getTimeMachine)
}

func (h *ContentHandler) getMessage(c echo.Context) error {
	ctx := c.Request().Context()
	year, err := yearParam(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}

	msg, err := h.service.Message(ctx, year, id)
	if err != nil {
		return serviceError(ctx, h.logger, err, "Failed to retrieve message")
	}
	return c.JSON(http.StatusOK, msg)
}

func (h *ContentHandler) getAttachment(c echo.Context) error {
	ctx := c.Request().Context()
	year, err := yearParam(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}

	att, err := h.service.Attachment(ctx, year, id)
	if err != nil {
		return serviceError(ctx, h.logger, err, "Failed to retrieve attachment")
	}
	return c.JSON(http.StatusOK, att)
}

func (h *ContentHandler) getRandomMessage(c echo.Context) error {
	ctx := c.Request().Context()
	year, err := yearParam(c)
	if err != nil {
		return err
	}
	minLength := 1
	if raw := c.QueryParam("min_length"); raw != "" {
		minLength, err = strconv.Atoi(raw)
		if err != nil || minLength < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Query parameter 'min_length' must be a non-negative integer")
		}
	}
	linksOnly, err := boolQuery(c, "links_only")
	if err != nil {
		return err
	}

	msg, err := h.service.RandomMessage(ctx, year, minLength, linksOnly)
	if err != nil {
		return serviceError(ctx, h.logger, err, "Failed to retrieve random message")
	}
	return c.JSON(http.StatusOK, msg)
}

func (h *ContentHandler) getRandomAttachment(c echo.Context) error {
	ctx := c.Request().Context()
	year, err := yearParam(c)
	if err != nil {
		return err
	}
	videoOnly, err := boolQuery(c, "video_only")
	if err != nil {
		return err
	}
	var excluded []int64
	for _, raw := range strings.Split(c.QueryParam("exclude"), ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		id, err := stats.ParseID(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		excluded = append(excluded, id)
	}

	att, err := h.service.RandomAttachment(ctx, year, excluded, videoOnly)
	if err != nil {
		return serviceError(ctx, h.logger, err, "Failed to retrieve random attachment")
	}
	return c.JSON(http.StatusOK, att)
}

func (h *ContentHandler) getTimeMachine(c echo.Context) error {
	ctx := c.Request().Context()
	year, err := yearParam(c)
	if err != nil {
		return err
	}
	date, err := time.Parse(time.DateOnly, c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Query parameter 'date' must be YYYY-MM-DD")
	}

	tm, err := h.service.TimeMachine(ctx, year, date)
	if err != nil {
		return serviceError(ctx, h.logger, err, "Failed to build time machine")
	}
	return c.JSON(http.StatusOK, tm)
}
