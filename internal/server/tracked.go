package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/labstack/echo/v4"
	"github.com/lib/pq"

	"github.com/llmcheck/visibility/internal/helpers"
	"github.com/llmcheck/visibility/internal/store"
)

// TrackedHandler manages the URLs a user registered for scheduled rescans.
type TrackedHandler struct {
	Store *store.Store
}

func (h *TrackedHandler) Register(g *echo.Group) {
	g.GET("", h.list)
	g.POST("", h.create)
	g.DELETE("/:id", h.remove)
}

func (h *TrackedHandler) create(c echo.Context) error {
	var req CreateTrackedURLRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.URL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url is required")
	}
	normalized, err := helpers.CanonicalURL(req.URL)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid url")
	}
	if req.ScheduleCron != "" && req.ScheduleCron != "@daily" && req.ScheduleCron != "@hourly" {
		if _, err := cronexpr.Parse(req.ScheduleCron); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid schedule_cron")
		}
	}
	userID := c.Get("user_id").(string)
	id, err := h.Store.CreateTrackedURL(c.Request().Context(), userID, normalized, req.Industry, req.ScheduleCron)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return echo.NewHTTPError(http.StatusConflict, "url already tracked")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, IDResponse{ID: id})
}

func (h *TrackedHandler) list(c echo.Context) error {
	userID := c.Get("user_id").(string)
	recs, err := h.Store.ListTrackedURLs(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	out := make([]TrackedURLResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, TrackedURLResponse{
			ID:           rec.ID,
			URL:          rec.URL,
			Industry:     rec.Industry,
			ScheduleCron: rec.ScheduleCron,
			CreatedAt:    rec.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *TrackedHandler) remove(c echo.Context) error {
	userID := c.Get("user_id").(string)
	err := h.Store.DeleteTrackedURL(c.Request().Context(), userID, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "tracked url not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
