package report

import (
	"context"
	"time"

	"github.com/boutique/backoffice/internal/domain/catalog"
	"github.com/boutique/backoffice/internal/domain/inventory"
	"github.com/boutique/backoffice/internal/domain/ledger"
	"github.com/boutique/backoffice/internal/domain/report"
	"github.com/boutique/backoffice/internal/domain/shared"
	"github.com/boutique/backoffice/internal/domain/shared/strategy"
	"github.com/boutique/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Report names used in logs and metrics
const (
	reportProfitMargin   = "profit_margin"
	reportStockValuation = "stock_valuation"
	reportTopSellers     = "top_sellers"
	reportLedgerExport   = "ledger_export"
)

// ReportServiceConfig holds the tunables of the report service
type ReportServiceConfig struct {
	ScanPageSize    int
	DefaultTopLimit int
	MaxTopLimit     int
}

// ReportService computes profitability, valuation and ranking read models
// from the ledger and current stock. Reports take no locks; each one stamps
// GeneratedAt when it starts reading and ignores lines written afterwards.
type ReportService struct {
	ledgerRepo   ledger.LedgerRepository
	stockRepo    inventory.StockRecordRepository
	masterData   catalog.MasterDataRepository
	costStrategy strategy.CostBasisStrategy
	history      strategy.PurchaseHistory
	cfg          ReportServiceConfig

	archive        ObjectStore
	archiveLinkTTL time.Duration

	metrics *telemetry.EngineMetrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(
	ledgerRepo ledger.LedgerRepository,
	stockRepo inventory.StockRecordRepository,
	masterData catalog.MasterDataRepository,
	costStrategy strategy.CostBasisStrategy,
	cfg ReportServiceConfig,
	logger *zap.Logger,
) *ReportService {
	if cfg.ScanPageSize <= 0 {
		cfg.ScanPageSize = shared.DefaultScanPageSize
	}
	if cfg.DefaultTopLimit <= 0 {
		cfg.DefaultTopLimit = report.DefaultTopSellerLimit
	}
	if cfg.MaxTopLimit < cfg.DefaultTopLimit {
		cfg.MaxTopLimit = cfg.DefaultTopLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		ledgerRepo:   ledgerRepo,
		stockRepo:    stockRepo,
		masterData:   masterData,
		costStrategy: costStrategy,
		history:      NewLedgerPurchaseHistory(ledgerRepo),
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// SetEngineMetrics sets the metrics recorder (optional)
func (s *ReportService) SetEngineMetrics(m *telemetry.EngineMetrics) {
	s.metrics = m
}

// CostMethod returns the cost basis method reports are valued with
func (s *ReportService) CostMethod() strategy.CostMethod {
	return s.costStrategy.Method()
}

// ComputeProfitMarginReport aggregates final sell lines dated within
// [dateFrom, dateTo] (whole days) into per-product sales, cost and margin.
func (s *ReportService) ComputeProfitMarginReport(ctx context.Context, tenantID uuid.UUID, dateFrom, dateTo time.Time) (result *report.ProfitMarginReport, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", reportProfitMargin, telemetry.SpanAttrTenantID, tenantID)
	generatedAt := s.now()
	defer s.finish(ctx, span, reportProfitMargin, tenantID, generatedAt, &err)

	period, err := report.NewDateRange(dateFrom, dateTo)
	if err != nil {
		return nil, err
	}

	costs := s.newCostResolver(tenantID)
	acc := report.NewProfitMarginAccumulator()
	err = s.scanLines(ctx, soldLines(tenantID, period, generatedAt), func(l ledger.LedgerLine) error {
		unitCost, err := costs.UnitCost(ctx, l.Line.VariationID)
		if err != nil {
			return err
		}
		acc.Add(l.Product, l.Line.Quantity, l.Line.SalesAmount(), l.Line.Quantity.Mul(unitCost))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logCostBasis(reportProfitMargin, tenantID, costs)

	summary, items := acc.Result()
	return &report.ProfitMarginReport{
		GeneratedAt: generatedAt,
		Period:      period,
		Summary:     summary,
		Items:       items,
	}, nil
}

// ComputeStockValuationReport values every stock record, optionally for one
// location, at the resolved unit cost of its variation.
func (s *ReportService) ComputeStockValuationReport(ctx context.Context, tenantID uuid.UUID, locationID *uuid.UUID) (result *report.StockValuationReport, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", reportStockValuation, telemetry.SpanAttrTenantID, tenantID)
	generatedAt := s.now()
	defer s.finish(ctx, span, reportStockValuation, tenantID, generatedAt, &err)

	if locationID != nil {
		if _, err = s.masterData.FindLocation(ctx, tenantID, *locationID); err != nil {
			return nil, err
		}
	}

	costs := s.newCostResolver(tenantID)
	acc := report.NewStockValuationAccumulator()
	cursor := shared.FirstPage(s.cfg.ScanPageSize)
	for {
		if err = ctx.Err(); err != nil {
			return nil, shared.NewStorageError("stock valuation cancelled", err)
		}
		views, err := s.stockRepo.FindPage(ctx, tenantID, locationID, cursor)
		if err != nil {
			return nil, err
		}
		for _, v := range views {
			unitCost, err := costs.UnitCost(ctx, v.Record.VariationID)
			if err != nil {
				return nil, err
			}
			acc.Add(v.Product, v.Variation, v.Location, v.Record.QtyAvailable, unitCost)
		}
		if len(views) < cursor.Limit {
			break
		}
		cursor = cursor.Next(views[len(views)-1].Record.ID)
	}
	s.logCostBasis(reportStockValuation, tenantID, costs)

	summary, items := acc.Result()
	return &report.StockValuationReport{
		GeneratedAt: generatedAt,
		LocationID:  locationID,
		Summary:     summary,
		Items:       items,
	}, nil
}

// ComputeTopSellingProducts ranks products by sales over final sell lines in
// the window. A non-positive limit uses the configured default; larger limits
// are capped.
func (s *ReportService) ComputeTopSellingProducts(ctx context.Context, tenantID uuid.UUID, dateFrom, dateTo time.Time, limit int) (result *report.TopSellersReport, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", reportTopSellers, telemetry.SpanAttrTenantID, tenantID)
	generatedAt := s.now()
	defer s.finish(ctx, span, reportTopSellers, tenantID, generatedAt, &err)

	period, err := report.NewDateRange(dateFrom, dateTo)
	if err != nil {
		return nil, err
	}
	limit = s.TopLimit(limit)

	ranker := report.NewTopSellerRanker()
	err = s.scanLines(ctx, soldLines(tenantID, period, generatedAt), func(l ledger.LedgerLine) error {
		ranker.Add(l.Product, l.Line.Quantity, l.Line.SalesAmount())
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &report.TopSellersReport{
		GeneratedAt: generatedAt,
		Period:      period,
		Limit:       limit,
		Items:       ranker.Rank(limit),
	}, nil
}

// TopLimit normalises a requested ranking size
func (s *ReportService) TopLimit(limit int) int {
	if limit <= 0 {
		return s.cfg.DefaultTopLimit
	}
	if limit > s.cfg.MaxTopLimit {
		return s.cfg.MaxTopLimit
	}
	return limit
}

// ExportFilter selects the ledger lines to flatten. Empty Types means every
// entry type.
type ExportFilter struct {
	DateFrom time.Time
	DateTo   time.Time
	Types    []ledger.TransactionType
}

// ExportLedger flattens final ledger lines in the window into export rows.
// Adjustment rows are valued at the resolved unit cost of their variation.
func (s *ReportService) ExportLedger(ctx context.Context, tenantID uuid.UUID, filter ExportFilter) (result *report.LedgerExport, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", reportLedgerExport, telemetry.SpanAttrTenantID, tenantID)
	generatedAt := s.now()
	defer s.finish(ctx, span, reportLedgerExport, tenantID, generatedAt, &err)

	period, err := report.NewDateRange(filter.DateFrom, filter.DateTo)
	if err != nil {
		return nil, err
	}
	for _, t := range filter.Types {
		if !t.IsValid() {
			return nil, ledger.ErrInvalidType.WithMessage("Unknown transaction type: " + t.String())
		}
	}

	q := ledger.LineQuery{
		TenantID: tenantID,
		Types:    filter.Types,
		Status:   ledger.TransactionStatusFinal,
		DateFrom: period.From,
		DateTo:   period.To,
		AsOf:     generatedAt,
	}

	costs := s.newCostResolver(tenantID)
	rows := make([]report.ExportRow, 0)
	err = s.scanLines(ctx, q, func(l ledger.LedgerLine) error {
		unitCost := decimal.Zero
		if l.Line.IsAdjustment() {
			c, err := costs.UnitCost(ctx, l.Line.VariationID)
			if err != nil {
				return err
			}
			unitCost = c
		}
		rows = append(rows, report.NewExportRow(l, unitCost))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logCostBasis(reportLedgerExport, tenantID, costs)
	report.SortExportRows(rows)

	return &report.LedgerExport{
		GeneratedAt: generatedAt,
		Period:      period,
		Rows:        rows,
	}, nil
}

func soldLines(tenantID uuid.UUID, period report.DateRange, asOf time.Time) ledger.LineQuery {
	return ledger.LineQuery{
		TenantID: tenantID,
		Types:    []ledger.TransactionType{ledger.TransactionTypeSell},
		Status:   ledger.TransactionStatusFinal,
		DateFrom: period.From,
		DateTo:   period.To,
		AsOf:     asOf,
	}
}

// scanLines pages through the lines matching q, checking for cancellation
// between pages.
func (s *ReportService) scanLines(ctx context.Context, q ledger.LineQuery, fn func(ledger.LedgerLine) error) error {
	cursor := shared.FirstPage(s.cfg.ScanPageSize)
	for {
		if err := ctx.Err(); err != nil {
			return shared.NewStorageError("report scan cancelled", err)
		}
		lines, err := s.ledgerRepo.FindLines(ctx, q, cursor)
		if err != nil {
			return err
		}
		for _, l := range lines {
			if err := fn(l); err != nil {
				return err
			}
		}
		if len(lines) < cursor.Limit {
			return nil
		}
		cursor = cursor.Next(lines[len(lines)-1].Line.ID)
	}
}

func (s *ReportService) logCostBasis(name string, tenantID uuid.UUID, costs *runCostResolver) {
	s.logger.Debug("Cost basis resolved",
		zap.String("report", name),
		zap.String("tenant_id", tenantID.String()),
		zap.String("method", s.costStrategy.Method().String()),
		zap.Int("variations", costs.Resolved()))
}

func (s *ReportService) finish(ctx context.Context, span trace.Span, name string, tenantID uuid.UUID, started time.Time, errp *error) {
	telemetry.EndSpan(span, *errp)
	elapsed := time.Since(started)
	if s.metrics != nil {
		s.metrics.RecordReportRun(ctx, name, elapsed, *errp)
	}
	if *errp != nil {
		s.logger.Warn("Report failed",
			zap.String("report", name),
			zap.String("tenant_id", tenantID.String()),
			zap.Duration("elapsed", elapsed),
			zap.Error(*errp))
		return
	}
	s.logger.Debug("Report computed",
		zap.String("report", name),
		zap.String("tenant_id", tenantID.String()),
		zap.Duration("elapsed", elapsed))
}
