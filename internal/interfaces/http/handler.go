package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jmanzanog/portfolio-dashboard/internal/application"
	"github.com/jmanzanog/portfolio-dashboard/internal/domain"
	"github.com/jmanzanog/portfolio-dashboard/internal/format"
	"github.com/jmanzanog/portfolio-dashboard/internal/infrastructure/holdingscsv"
)

const (
	maxUploadBytes = 5 << 20
	exportFilename = "portfolio.csv"
)

// DashboardService defines the operations the HTTP layer needs.
type DashboardService interface {
	UploadHoldings(ctx context.Context, holdings []domain.RawHolding) (*application.Dashboard, error)
	ClearHoldings(ctx context.Context) error
	Refresh(ctx context.Context) (*application.Dashboard, error)
	Dashboard(ctx context.Context) (*application.Dashboard, error)
	Holdings(ctx context.Context) ([]domain.RawHolding, error)
	ConsolidatedHolding(ctx context.Context, code string) (*domain.ConsolidatedHolding, error)
}

type Handler struct {
	dashboardService DashboardService
}

func NewHandler(dashboardService DashboardService) *Handler {
	return &Handler{
		dashboardService: dashboardService,
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// SummaryDisplay holds the summary figures pre-formatted for display.
type SummaryDisplay struct {
	TotalEval       string `json:"total_eval"`
	TotalGainAmount string `json:"total_gain_amount"`
	TotalGainRate   string `json:"total_gain_rate"`
	TodayGainAmount string `json:"today_gain_amount"`
	TodayGainRate   string `json:"today_gain_rate"`
}

type SummaryResponse struct {
	domain.PortfolioSummary
	ExchangeRateFallback bool           `json:"exchange_rate_fallback"`
	UnavailableCount     int            `json:"unavailable_count"`
	Display              SummaryDisplay `json:"display"`
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoHoldings), errors.Is(err, application.ErrHoldingNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, msg string, err error, attrs ...any) {
	status := statusFor(err)
	attrs = append(attrs, "error", err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), msg, attrs...)
	} else {
		slog.WarnContext(c.Request.Context(), msg, attrs...)
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

// UploadHoldings accepts a holdings CSV either as the raw request body or as
// the multipart field "file".
func (h *Handler) UploadHoldings(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	body, err := uploadedCSV(c)
	if err != nil {
		slog.WarnContext(c.Request.Context(), "Invalid upload", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	defer func() {
		if closeErr := body.Close(); closeErr != nil {
			slog.WarnContext(c.Request.Context(), "Failed to close upload", "error", closeErr)
		}
	}()

	holdings, err := holdingscsv.Parse(body)
	if err != nil {
		slog.WarnContext(c.Request.Context(), "Invalid holdings CSV", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	dashboard, err := h.dashboardService.UploadHoldings(c.Request.Context(), holdings)
	if err != nil {
		h.fail(c, "Failed to upload holdings", err, "count", len(holdings))
		return
	}

	c.JSON(http.StatusCreated, dashboard)
}

func uploadedCSV(c *gin.Context) (io.ReadCloser, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return c.Request.Body, nil
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("missing multipart field \"file\": %w", err)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	return file, nil
}

func (h *Handler) ExportHoldings(c *gin.Context) {
	holdings, err := h.dashboardService.Holdings(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to load holdings", err)
		return
	}

	var buf bytes.Buffer
	if err := holdingscsv.Write(&buf, holdings); err != nil {
		h.fail(c, "Failed to write holdings CSV", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) ClearHoldings(c *gin.Context) {
	if err := h.dashboardService.ClearHoldings(c.Request.Context()); err != nil {
		h.fail(c, "Failed to clear holdings", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) GetDashboard(c *gin.Context) {
	dashboard, err := h.dashboardService.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to get dashboard", err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

func (h *Handler) RefreshDashboard(c *gin.Context) {
	dashboard, err := h.dashboardService.Refresh(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to refresh dashboard", err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

func (h *Handler) ListEnrichedHoldings(c *gin.Context) {
	dashboard, err := h.dashboardService.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to list holdings", err)
		return
	}

	c.JSON(http.StatusOK, dashboard.Holdings)
}

// ListConsolidatedHoldings supports ?sort=<key> and ?order=asc|desc.
func (h *Handler) ListConsolidatedHoldings(c *gin.Context) {
	key, err := domain.ParseSortKey(c.Query("sort"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var descending bool
	switch order := c.DefaultQuery("order", "desc"); order {
	case "desc":
		descending = true
	case "asc":
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("unknown order %q", order)})
		return
	}

	dashboard, err := h.dashboardService.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to list consolidated holdings", err)
		return
	}

	c.JSON(http.StatusOK, domain.SortConsolidated(dashboard.Consolidated, key, descending))
}

func (h *Handler) GetConsolidatedHolding(c *gin.Context) {
	code := c.Param("code")

	holding, err := h.dashboardService.ConsolidatedHolding(c.Request.Context(), code)
	if err != nil {
		h.fail(c, "Failed to get consolidated holding", err, "code", code)
		return
	}

	c.JSON(http.StatusOK, holding)
}

func (h *Handler) ListAccounts(c *gin.Context) {
	dashboard, err := h.dashboardService.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to list accounts", err)
		return
	}

	c.JSON(http.StatusOK, dashboard.Accounts)
}

func (h *Handler) ListSectors(c *gin.Context) {
	dashboard, err := h.dashboardService.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to list sectors", err)
		return
	}

	c.JSON(http.StatusOK, dashboard.Sectors)
}

func (h *Handler) GetSummary(c *gin.Context) {
	dashboard, err := h.dashboardService.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to get summary", err)
		return
	}

	s := dashboard.Summary
	c.JSON(http.StatusOK, SummaryResponse{
		PortfolioSummary:     s,
		ExchangeRateFallback: dashboard.ExchangeRateFallback,
		UnavailableCount:     dashboard.UnavailableCount,
		Display: SummaryDisplay{
			TotalEval:       format.KRW(s.TotalEval),
			TotalGainAmount: format.Amount(s.TotalGainAmount),
			TotalGainRate:   format.Rate(s.TotalGainRate),
			TodayGainAmount: format.Amount(s.TodayGainAmount),
			TodayGainRate:   format.Rate(s.TodayGainRate),
		},
	})
}
