package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineMetrics tracks adjustment batches, overdrafts, report runs and the
// on-hand stock level per location.
type EngineMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	adjustmentBatchesTotal *Counter
	adjustmentItemsTotal   *Counter
	overdraftClampedTotal  *Counter
	reportRunsTotal        *Counter

	// Histogram metrics
	reportDuration *Histogram

	// Gauge metrics (point-in-time values)
	stockOnHand *FloatGauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	stockProvider StockMetricsProvider
}

// StockMetricsProvider provides stock data for periodic metrics collection.
// This interface allows the telemetry layer to query stock state without
// depending on the inventory domain directly.
type StockMetricsProvider interface {
	// GetQuantityByLocation returns total on-hand quantity (base units) per location
	GetQuantityByLocation(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
}

// EngineMetricsConfig holds configuration for engine metrics.
type EngineMetricsConfig struct {
	Meter         metric.Meter
	Logger        *zap.Logger
	StockProvider StockMetricsProvider
}

// NewEngineMetrics creates a new EngineMetrics instance.
func NewEngineMetrics(cfg EngineMetricsConfig) (*EngineMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	em := &EngineMetrics{
		meter:         cfg.Meter,
		logger:        logger,
		stopChan:      make(chan struct{}),
		stockProvider: cfg.StockProvider,
	}

	var err error

	em.adjustmentBatchesTotal, err = NewCounter(
		cfg.Meter,
		"inventory_adjustment_batches_total",
		"Total number of adjustment batches by result",
		"{batches}",
	)
	if err != nil {
		return nil, err
	}

	em.adjustmentItemsTotal, err = NewCounter(
		cfg.Meter,
		"inventory_adjustment_items_total",
		"Total number of applied adjustment items by direction",
		"{items}",
	)
	if err != nil {
		return nil, err
	}

	em.overdraftClampedTotal, err = NewCounter(
		cfg.Meter,
		"inventory_overdraft_clamped_total",
		"Total number of decreases floored at zero",
		"{items}",
	)
	if err != nil {
		return nil, err
	}

	em.reportRunsTotal, err = NewCounter(
		cfg.Meter,
		"report_runs_total",
		"Total number of report computations by report and result",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}

	em.reportDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "report_duration_seconds",
		Description: "Report computation duration",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	em.stockOnHand, err = NewFloatGauge(
		cfg.Meter,
		"inventory_stock_on_hand",
		"Current on-hand quantity in base units per location",
		"{units}",
	)
	if err != nil {
		return nil, err
	}

	return em, nil
}

// =============================================================================
// Adjustment Metrics
// =============================================================================

// BatchResult labels the outcome of an adjustment batch.
type BatchResult string

const (
	BatchResultApplied  BatchResult = "applied"
	BatchResultEmpty    BatchResult = "empty"
	BatchResultRejected BatchResult = "rejected"
	BatchResultFailed   BatchResult = "failed"
)

// RecordAdjustmentBatch records one adjustment batch outcome.
func (em *EngineMetrics) RecordAdjustmentBatch(ctx context.Context, tenantID uuid.UUID, result BatchResult) {
	em.adjustmentBatchesTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrResult.String(string(result)),
	)
}

// RecordAdjustmentItem records one applied adjustment item.
func (em *EngineMetrics) RecordAdjustmentItem(ctx context.Context, tenantID uuid.UUID, direction string) {
	em.adjustmentItemsTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrDirection.String(direction),
	)
}

// RecordOverdraftClamped records a decrease that was floored at zero.
func (em *EngineMetrics) RecordOverdraftClamped(ctx context.Context, tenantID, locationID uuid.UUID) {
	em.overdraftClampedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrLocationID.String(locationID.String()),
	)
}

// =============================================================================
// Report Metrics
// =============================================================================

// RecordReportRun records a report computation and its duration.
func (em *EngineMetrics) RecordReportRun(ctx context.Context, report string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	em.reportRunsTotal.Inc(ctx,
		AttrReport.String(report),
		AttrResult.String(result),
	)
	em.reportDuration.RecordDuration(ctx, d, AttrReport.String(report))
}

// RecordStockOnHand records the on-hand quantity at a location.
func (em *EngineMetrics) RecordStockOnHand(ctx context.Context, tenantID, locationID uuid.UUID, quantity decimal.Decimal) {
	em.stockOnHand.Record(ctx, quantity.InexactFloat64(),
		AttrTenantID.String(tenantID.String()),
		AttrLocationID.String(locationID.String()),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// TenantProvider provides tenant IDs for periodic metrics collection.
type TenantProvider interface {
	GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// This is non-blocking - use Stop() to stop collection.
func (em *EngineMetrics) StartPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	em.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go em.runPeriodicCollection(ctx, tenantProvider, interval)
	})
}

func (em *EngineMetrics) runPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	em.collectStockMetrics(ctx, tenantProvider)

	for {
		select {
		case <-em.stopChan:
			em.logger.Info("Stopping periodic engine metrics collection")
			return
		case <-ctx.Done():
			em.logger.Info("Context cancelled, stopping periodic engine metrics collection")
			return
		case <-ticker.C:
			em.collectStockMetrics(ctx, tenantProvider)
		}
	}
}

func (em *EngineMetrics) collectStockMetrics(ctx context.Context, tenantProvider TenantProvider) {
	if em.stockProvider == nil {
		em.logger.Debug("No stock provider configured, skipping stock metrics collection")
		return
	}

	tenantIDs, err := tenantProvider.GetActiveTenantIDs(ctx)
	if err != nil {
		em.logger.Error("Failed to get tenant IDs for metrics collection", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		byLocation, err := em.stockProvider.GetQuantityByLocation(ctx, tenantID)
		if err != nil {
			em.logger.Warn("Failed to get stock quantity for tenant",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			continue
		}
		for locationID, qty := range byLocation {
			em.RecordStockOnHand(ctx, tenantID, locationID, qty)
		}
	}
}

// Stop stops the periodic collection.
func (em *EngineMetrics) Stop() {
	em.stopOnce.Do(func() {
		close(em.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewEngineMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
