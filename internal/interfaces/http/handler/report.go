package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	reportapp "github.com/boutique/backoffice/internal/application/report"
	"github.com/boutique/backoffice/internal/domain/report"
	"github.com/boutique/backoffice/internal/infrastructure/logger"
	"github.com/boutique/backoffice/internal/interfaces/http/dto"
	"github.com/boutique/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReportService is the slice of the report engine the handler drives
type ReportService interface {
	ComputeProfitMarginReport(ctx context.Context, tenantID uuid.UUID, dateFrom, dateTo time.Time) (*report.ProfitMarginReport, error)
	ComputeStockValuationReport(ctx context.Context, tenantID uuid.UUID, locationID *uuid.UUID) (*report.StockValuationReport, error)
	ComputeTopSellingProducts(ctx context.Context, tenantID uuid.UUID, dateFrom, dateTo time.Time, limit int) (*report.TopSellersReport, error)
	ExportLedger(ctx context.Context, tenantID uuid.UUID, filter reportapp.ExportFilter) (*report.LedgerExport, error)
	ArchiveLedgerExport(ctx context.Context, tenantID uuid.UUID, filter reportapp.ExportFilter) (*reportapp.ArchivedExport, error)
}

// ReportHandler serves the read models computed from the ledger
type ReportHandler struct {
	BaseHandler
	reports ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// GetProfitMargin godoc
// @ID           getReportProfitMargin
// @Summary      Profit margin by product
// @Description  Aggregates final sells dated within [from, to] into sales, cost and margin per product, sorted by total sales. Margin percent is rounded to two places.
// @Tags         reports
// @Produce      json
// @Param        X-Tenant-ID  header  string  true  "Tenant ID"
// @Param        from         query   string  true  "First day (YYYY-MM-DD)"
// @Param        to           query   string  true  "Last day (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[report.ProfitMarginReport]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /reports/profit-margin [get]
func (h *ReportHandler) GetProfitMargin(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	from, to, ok := h.bindPeriod(c)
	if !ok {
		return
	}

	result, err := h.reports.ComputeProfitMarginReport(c.Request.Context(), tenantID, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewProfitMarginResponse(result))
}

// GetStockValuation godoc
// @ID           getReportStockValuation
// @Summary      Stock valuation
// @Description  Values every stock record, zero quantities included, at the configured cost basis, optionally for one location.
// @Tags         reports
// @Produce      json
// @Param        X-Tenant-ID  header  string  true   "Tenant ID"
// @Param        location_id  query   string  false  "Location ID" format(uuid)
// @Success      200 {object} APIResponse[report.StockValuationReport]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /reports/stock-valuation [get]
func (h *ReportHandler) GetStockValuation(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var q dto.StockValuationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.reports.ComputeStockValuationReport(c.Request.Context(), tenantID, q.Location())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetTopSellers godoc
// @ID           getReportTopSellers
// @Summary      Top selling products
// @Description  Ranks products by total sales within [from, to], highest first. The limit is capped by configuration.
// @Tags         reports
// @Produce      json
// @Param        X-Tenant-ID  header  string   true   "Tenant ID"
// @Param        from         query   string   true   "First day (YYYY-MM-DD)"
// @Param        to           query   string   true   "Last day (YYYY-MM-DD)"
// @Param        limit        query   integer  false  "Number of products"
// @Success      200 {object} APIResponse[report.TopSellersReport]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /reports/top-sellers [get]
func (h *ReportHandler) GetTopSellers(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var q dto.TopSellersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	from, to, err := q.Bounds()
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidationFormat, err.Error())
		return
	}

	result, err := h.reports.ComputeTopSellingProducts(c.Request.Context(), tenantID, from, to, q.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ExportLedger godoc
// @ID           exportReportLedger
// @Summary      Flat ledger export
// @Description  Flattens final ledger lines within [from, to] into date, type, amount, description, reference rows. CSV by default.
// @Tags         reports
// @Produce      text/csv
// @Produce      json
// @Param        X-Tenant-ID  header  string  true   "Tenant ID"
// @Param        from         query   string  true   "First day (YYYY-MM-DD)"
// @Param        to           query   string  true   "Last day (YYYY-MM-DD)"
// @Param        types        query   string  false  "Comma separated: sell, purchase, stock_adjustment"
// @Param        format       query   string  false  "csv or json" Enums(csv, json)
// @Success      200 {object} APIResponse[[]report.ExportRow]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /reports/ledger-export [get]
func (h *ReportHandler) ExportLedger(c *gin.Context) {
	tenantID, filter, ok := h.bindExport(c)
	if !ok {
		return
	}

	export, err := h.reports.ExportLedger(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if c.Query("format") == "json" {
		h.SuccessWithMeta(c, export.Rows, dto.Meta{Rows: len(export.Rows), GeneratedAt: export.GeneratedAt})
		return
	}

	filename := fmt.Sprintf("ledger_%s_%s.csv",
		export.Period.From.Format(dto.DateLayout), export.Period.To.Format(dto.DateLayout))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := reportapp.WriteExportCSV(c.Writer, export.Rows); err != nil {
		// headers are gone; the client sees a truncated body
		logger.L(c.Request.Context()).Error("Ledger export write failed", zap.Error(err))
		_ = c.Error(err)
	}
}

// ArchiveLedgerExport godoc
// @ID           archiveReportLedgerExport
// @Summary      Archive a ledger export
// @Description  Builds the CSV export, uploads it to object storage and returns a time-limited download link.
// @Tags         reports
// @Produce      json
// @Param        X-Tenant-ID  header  string  true   "Tenant ID"
// @Param        from         query   string  true   "First day (YYYY-MM-DD)"
// @Param        to           query   string  true   "Last day (YYYY-MM-DD)"
// @Param        types        query   string  false  "Comma separated: sell, purchase, stock_adjustment"
// @Success      201 {object} APIResponse[dto.ArchivedExportResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /reports/ledger-export/archive [post]
func (h *ReportHandler) ArchiveLedgerExport(c *gin.Context) {
	tenantID, filter, ok := h.bindExport(c)
	if !ok {
		return
	}

	archived, err := h.reports.ArchiveLedgerExport(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.ArchivedExportResponse{
		ObjectKey:   archived.ObjectKey,
		DownloadURL: archived.DownloadURL,
		ExpiresAt:   archived.ExpiresAt,
		GeneratedAt: archived.GeneratedAt,
		Rows:        archived.Rows,
	})
}

func (h *ReportHandler) bindPeriod(c *gin.Context) (time.Time, time.Time, bool) {
	var q dto.PeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return time.Time{}, time.Time{}, false
	}
	from, to, err := q.Bounds()
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidationFormat, err.Error())
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func (h *ReportHandler) bindExport(c *gin.Context) (uuid.UUID, reportapp.ExportFilter, bool) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return uuid.Nil, reportapp.ExportFilter{}, false
	}
	var q dto.LedgerExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleValidationError(c, err)
		return uuid.Nil, reportapp.ExportFilter{}, false
	}
	from, to, err := q.Bounds()
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidationFormat, err.Error())
		return uuid.Nil, reportapp.ExportFilter{}, false
	}
	return tenantID, reportapp.ExportFilter{DateFrom: from, DateTo: to, Types: q.TransactionTypes()}, true
}
