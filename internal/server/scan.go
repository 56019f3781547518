package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/llmcheck/visibility/internal/helpers"
	"github.com/llmcheck/visibility/internal/metrics"
	"github.com/llmcheck/visibility/internal/scan"
	"github.com/llmcheck/visibility/internal/store"
)

// ScanHandler serves the visibility scan endpoints. The cache-or-scan flow is
// all-or-nothing toward the caller: a persistence failure after a successful
// scan still yields an error response, so users never see results that were
// not recorded.
type ScanHandler struct {
	Store    *store.Store
	Orch     *scan.Orchestrator
	CacheTTL time.Duration
}

func (h *ScanHandler) Register(g *echo.Group) {
	g.POST("", h.runScan)
	g.GET("/history", h.history)
}

func (h *ScanHandler) runScan(c echo.Context) error {
	var req ScanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.URL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url is required")
	}

	ctx := c.Request().Context()
	normalized, err := helpers.CanonicalURL(req.URL)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid url")
	}

	prompts, err := resolvePrompts(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cached, ok, err := h.Store.LatestScan(ctx, normalized, h.CacheTTL)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "scan failed")
	}
	if ok {
		metrics.ScansTotal.WithLabelValues("cache").Inc()
		trend, err := h.trendFor(c, normalized)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "scan failed")
		}
		return c.JSON(http.StatusOK, buildScanResponse(cached, prompts, trend, true))
	}

	out, err := h.Orch.Run(ctx, scan.Query{
		TargetURL:     req.URL,
		Industry:      req.Industry,
		CustomPrompts: req.VisibilityQueries,
	})
	if err != nil {
		switch {
		case errors.Is(err, scan.ErrMissingURL), errors.Is(err, scan.ErrInvalidURL), errors.Is(err, scan.ErrPromptCount):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "scan failed")
		}
	}

	if err := h.Store.SaveScan(ctx, out); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "scan failed")
	}

	metrics.ScansTotal.WithLabelValues("fresh").Inc()
	trend, err := h.trendFor(c, normalized)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "scan failed")
	}
	return c.JSON(http.StatusOK, buildScanResponse(out, prompts, trend, false))
}

func (h *ScanHandler) history(c echo.Context) error {
	rawURL := c.QueryParam("url")
	if rawURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url is required")
	}
	normalized, err := helpers.CanonicalURL(rawURL)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid url")
	}
	trend, err := h.trendFor(c, normalized)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, HistoryResponse{URL: normalized, Trend: trend})
}

func (h *ScanHandler) trendFor(c echo.Context, normalized string) ([]TrendEntry, error) {
	recs, err := h.Store.ScanHistory(c.Request().Context(), normalized)
	if err != nil {
		return nil, err
	}
	trend := make([]TrendEntry, 0, len(recs))
	for _, rec := range recs {
		trend = append(trend, TrendEntry{
			Score: rec.TotalFound,
			Total: rec.TotalQueries,
			Date:  rec.ScannedAt.UTC().Format(time.RFC3339),
		})
	}
	return trend, nil
}

// resolvePrompts mirrors the orchestrator's prompt resolution so cached scans
// can be reshaped against the same ordered prompt list.
func resolvePrompts(req ScanRequest) ([]string, error) {
	if len(req.VisibilityQueries) > 0 {
		if len(req.VisibilityQueries) != scan.PromptCount {
			return nil, scan.ErrPromptCount
		}
		return req.VisibilityQueries, nil
	}
	return scan.PromptsForIndustry(req.Industry), nil
}

// buildScanResponse groups the flat cell list into per-prompt rows. The row
// prompts come from the scan's own cells (insertion order is prompts-outer,
// so the list is recoverable from persisted scans); fallbackPrompts only
// fills rows whose cells were never written. Cells missing from a persisted
// scan (errored cells are never written) come back as error cells, so cached
// responses keep the full matrix shape.
func buildScanResponse(out scan.Output, fallbackPrompts []string, trend []TrendEntry, cached bool) ScanResponse {
	prompts := responsePrompts(out.Results, fallbackPrompts)
	type cellKey struct {
		prompt string
		model  scan.Model
	}
	cells := make(map[cellKey]ModelCell, len(out.Results))
	for _, res := range out.Results {
		cells[cellKey{res.Prompt, res.Model}] = ModelCell{
			Found:   res.Found,
			Snippet: res.Snippet,
			Error:   res.Error,
		}
	}

	cellFor := func(prompt string, model scan.Model) ModelCell {
		if cell, ok := cells[cellKey{prompt, model}]; ok {
			return cell
		}
		return ModelCell{Error: true}
	}

	rows := make([]PromptRow, 0, len(prompts))
	for _, prompt := range prompts {
		rows = append(rows, PromptRow{
			Prompt:     prompt,
			ChatGPT:    cellFor(prompt, scan.ModelChatGPT),
			Gemini:     cellFor(prompt, scan.ModelGemini),
			Perplexity: cellFor(prompt, scan.ModelPerplexity),
		})
	}

	return ScanResponse{
		Cached:       cached,
		ScannedAt:    out.ScannedAt.UTC().Format(time.RFC3339),
		TotalFound:   out.TotalFound,
		TotalQueries: out.TotalQueries,
		Results:      rows,
		Trend:        trend,
	}
}

// responsePrompts recovers the ordered prompt list from a scan's cells and
// tops it up from fallback for prompts whose cells all errored and were
// never persisted.
func responsePrompts(results []scan.VisibilityResult, fallback []string) []string {
	prompts := make([]string, 0, scan.PromptCount)
	seen := make(map[string]bool, scan.PromptCount)
	for _, res := range results {
		if !seen[res.Prompt] {
			seen[res.Prompt] = true
			prompts = append(prompts, res.Prompt)
		}
	}
	for _, p := range fallback {
		if len(prompts) >= scan.PromptCount {
			break
		}
		if !seen[p] {
			seen[p] = true
			prompts = append(prompts, p)
		}
	}
	return prompts
}
