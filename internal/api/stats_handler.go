package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jjckrbbt/wrapped/internal/mentiongraph"
	"github.com/jjckrbbt/wrapped/internal/stats"
	"github.com/labstack/echo/v4"
)

// StatsHandler serves the aggregate views of a year.
type StatsHandler struct {
	service *stats.Service
	logger  *slog.Logger
}

func NewStatsHandler(service *stats.Service, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		service: service,
		logger:  logger.With("component", "stats_handler"),
	}
}

func (h *StatsHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/stats", h.getStats)
	g.GET("/global-stats", h.getGlobalStats)
	g.GET("/mention-graph", h.getMentionGraph)
	g.GET("/mention-graph/view", h.getMentionGraphView)
	g.GET("/charts", h.getCharts)
	g.GET("/words/:word", h.getWord)
}

func (h *StatsHandler) getStats(c echo.Context) error {
	ctx := c.Request().Context()
	year, err := yearParam(c)
	if err != nil {
		return err
	}
	uid, err := userID(c)
	if err != nil {
		return err
	}

	bundle, err := h.service.Stats(ctx, year, uid)
	if err != nil {
		return serviceError(ctx, h.logger, err, "Failed to retrieve stats")
	}
	return c.JSON(http.StatusOK, bundle)
}

func (h *StatsHandler) getGlobalStats(c echo.Context) error {
	ctx := c.Request().Context()
	year, err := yearParam(c)
	if err != nil {
		return err
	}

	gs, err := h.service.GlobalStats(ctx, year)
	if err != nil {
		return serviceError(ctx, h.logger, err, "Failed to retrieve global stats")
	}
	return c.JSON(http.StatusOK, gs)
}

// MentionGraphResponse is the raw edge list clients can build a graph from.
type MentionGraphResponse struct {
	Edges []mentiongraph.Edge `json:"edges"`
}

func (h *StatsHandler) getMentionGraph(c echo.Context) error {
	ctx := c.Request().Context()
	year, err := yearParam(c)
	if err != nil {
		return err
	}

	edges, err := h.service.MentionEdges(ctx, year)
	if err != nil {
		return serviceError(ctx, h.logger, err, "Failed to retrieve mention graph")
	}
	return c.JSON(http.StatusOK, MentionGraphResponse{Edges: edges})
}

func (h *StatsHandler) getMentionGraphView(c echo.Context) error {
	ctx := c.Request().Context()
	year, err := yearParam(c)
	if err != nil {
		return err
	}
	mode, err := mentiongraph.ParseMode(c.QueryParam("mode"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	graph, err := h.service.MentionGraph(ctx, year, mode)
	if err != nil {
		return serviceError(ctx, h.logger, err, "Failed to build mention graph")
	}
	return c.JSON(http.StatusOK, graph)
}

func (h *StatsHandler) getCharts(c echo.Context) error {
	ctx := c.Request().Context()
	year, err := yearParam(c)
	if err != nil {
		return err
	}

	charts, err := h.service.Charts(ctx, year)
	if err != nil {
		return serviceError(ctx, h.logger, err, "Failed to retrieve charts")
	}
	return c.JSON(http.StatusOK, charts)
}

func (h *StatsHandler) getWord(c echo.Context) error {
	ctx := c.Request().Context()
	year, err := yearParam(c)
	if err != nil {
		return err
	}
	word := c.Param("word")

	usage, err := h.service.Word(ctx, year, word)
	if errors.Is(err, stats.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"detail": "Word not found"})
	}
	if err != nil {
		return serviceError(ctx, h.logger, err, "Failed to retrieve word usage")
	}
	return c.JSON(http.StatusOK, usage)
}
