package telemetry

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStockMetricsProvider implements StockMetricsProvider using GORM.
// It queries the stock_records table directly for aggregated metrics.
type GormStockMetricsProvider struct {
	db *gorm.DB
}

// NewGormStockMetricsProvider creates a new GormStockMetricsProvider.
func NewGormStockMetricsProvider(db *gorm.DB) *GormStockMetricsProvider {
	return &GormStockMetricsProvider{db: db}
}

// GetQuantityByLocation returns total on-hand quantity per location for a tenant.
func (p *GormStockMetricsProvider) GetQuantityByLocation(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	type result struct {
		LocationID uuid.UUID       `gorm:"column:location_id"`
		Quantity   decimal.Decimal `gorm:"column:quantity"`
	}

	var results []result
	err := p.db.WithContext(ctx).
		Table("stock_records").
		Select("location_id, COALESCE(SUM(qty_available), 0) as quantity").
		Where("tenant_id = ?", tenantID).
		Group("location_id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	m := make(map[uuid.UUID]decimal.Decimal, len(results))
	for _, r := range results {
		m[r.LocationID] = r.Quantity
	}
	return m, nil
}

// GormTenantProvider implements TenantProvider using GORM.
// A tenant is active once it owns at least one stock record.
type GormTenantProvider struct {
	db *gorm.DB
}

// NewGormTenantProvider creates a new GormTenantProvider.
func NewGormTenantProvider(db *gorm.DB) *GormTenantProvider {
	return &GormTenantProvider{db: db}
}

// GetActiveTenantIDs returns every tenant that holds stock records.
func (p *GormTenantProvider) GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("stock_records").
		Distinct("tenant_id").
		Pluck("tenant_id", &ids).Error
	return ids, err
}
