package models

import (
	"github.com/boutique/backoffice/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockRecordModel is the persistence model for the StockRecord aggregate.
// The table carries CHECK (qty_available >= 0) and a unique
// (variation_id, location_id) key, see migrations.
type StockRecordModel struct {
	TenantAggregateModel
	VariationID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_record_key,priority:1"`
	LocationID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_record_key,priority:2"`
	QtyAvailable decimal.Decimal `gorm:"type:decimal(22,4);not null;default:0;check:qty_available >= 0"`
}

// TableName returns the table name for GORM
func (StockRecordModel) TableName() string {
	return "stock_records"
}

// ToDomain converts the persistence model to a domain StockRecord.
func (m *StockRecordModel) ToDomain() *inventory.StockRecord {
	return &inventory.StockRecord{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		VariationID:         m.VariationID,
		LocationID:          m.LocationID,
		QtyAvailable:        m.QtyAvailable,
	}
}

// FromDomain populates the persistence model from a domain StockRecord.
func (m *StockRecordModel) FromDomain(r *inventory.StockRecord) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.VariationID = r.VariationID
	m.LocationID = r.LocationID
	m.QtyAvailable = r.QtyAvailable
}

// StockRecordModelFromDomain creates a new persistence model from a domain StockRecord.
func StockRecordModelFromDomain(r *inventory.StockRecord) *StockRecordModel {
	m := &StockRecordModel{}
	m.FromDomain(r)
	return m
}

// AllModels lists every model in migration order. Used by AutoMigrate in
// tests against sqlite.
func AllModels() []any {
	return []any{
		&ProductModel{},
		&UnitModel{},
		&VariationModel{},
		&LocationModel{},
		&StockRecordModel{},
		&TransactionModel{},
		&LineItemModel{},
	}
}
