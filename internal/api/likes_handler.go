package api

import (
	"log/slog"
	"net/http"

	"github.com/jjckrbbt/wrapped/internal/paging"
	"github.com/jjckrbbt/wrapped/internal/stats"
	"github.com/labstack/echo/v4"
)

// LikesHandler serves likes and the like leaderboard.
type LikesHandler struct {
	service *stats.Service
	logger  *slog.Logger
}

func NewLikesHandler(service *stats.Service, logger *slog.Logger) *LikesHandler {
	return &LikesHandler{
		service: service,
		logger:  logger.With("component", "likes_handler"),
	}
}

// RegisterRoutes adds the like routes; limiter wraps the write endpoints.
func (h *LikesHandler) RegisterRoutes(g *echo.Group, limiter echo.MiddlewareFunc) {
	g.GET("/leaderboard", h.getLeaderboard)
	g.GET("/likes", h.getLikes)
	g.POST("/likes", h.like, limiter)
	g.DELETE("/likes", h.unlike, limiter)
}

// LikeRequest identifies the liked message or attachment.
type LikeRequest struct {
	ID           string `json:"id"`
	IsAttachment bool   `json:"is_attachment"`
}

const (
	kindAttachments = "attachments"
	kindMessages    = "messages"
)

// pageOf pages the list selected by the kind query parameter.
func pageOf(c echo.Context, lists stats.Leaderboard) (any, error) {
	page, perPage := paging.ParseParams(c.QueryParam("page"), c.QueryParam("per_page"), paging.DefaultPerPage)
	switch c.QueryParam("kind") {
	case "", kindAttachments:
		return paging.Paginate(lists.Attachments, page, perPage), nil
	case kindMessages:
		return paging.Paginate(lists.Messages, page, perPage), nil
	default:
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Query parameter 'kind' must be 'attachments' or 'messages'")
	}
}

func (h *LikesHandler) getLeaderboard(c echo.Context) error {
	ctx := c.Request().Context()
	year, err := yearParam(c)
	if err != nil {
		return err
	}

	lb, err := h.service.Leaderboard(ctx, year)
	if err != nil {
		return serviceError(ctx, h.logger, err, "Failed to retrieve leaderboard")
	}
	page, err := pageOf(c, lb)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *LikesHandler) getLikes(c echo.Context) error {
	ctx := c.Request().Context()
	year, err := yearParam(c)
	if err != nil {
		return err
	}
	uid, err := userID(c)
	if err != nil {
		return err
	}

	likes, err := h.service.LikesForUser(ctx, year, uid)
	if err != nil {
		return serviceError(ctx, h.logger, err, "Failed to retrieve likes")
	}
	page, err := pageOf(c, likes)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *LikesHandler) bindLike(c echo.Context) (int64, LikeRequest, error) {
	uid, err := userID(c)
	if err != nil {
		return 0, LikeRequest{}, err
	}
	var req LikeRequest
	if err := c.Bind(&req); err != nil {
		h.logger.WarnContext(c.Request().Context(), "Failed to bind like request body", "error", err)
		return 0, LikeRequest{}, echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	return uid, req, nil
}

func (h *LikesHandler) like(c echo.Context) error {
	ctx := c.Request().Context()
	uid, req, err := h.bindLike(c)
	if err != nil {
		return err
	}
	if err := h.service.Like(ctx, uid, req.ID, req.IsAttachment); err != nil {
		return serviceError(ctx, h.logger, err, "Failed to record like")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *LikesHandler) unlike(c echo.Context) error {
	ctx := c.Request().Context()
	uid, req, err := h.bindLike(c)
	if err != nil {
		return err
	}
	if err := h.service.Unlike(ctx, uid, req.ID, req.IsAttachment); err != nil {
		return serviceError(ctx, h.logger, err, "Failed to remove like")
	}
	return c.NoContent(http.StatusNoContent)
}
