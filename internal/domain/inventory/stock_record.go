package inventory

import (
	"github.com/boutique/backoffice/internal/domain/catalog"
	"github.com/boutique/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuantityScale is the number of decimal places quantities are stored with.
// Stock arithmetic is exact only for values that fit it.
const QuantityScale int32 = 4

// FitsQuantityScale reports whether q has no digits beyond QuantityScale
func FitsQuantityScale(q decimal.Decimal) bool {
	return q.Equal(q.Truncate(QuantityScale))
}

// StockKey identifies the single stock record of a variation at a location.
type StockKey struct {
	TenantID    uuid.UUID
	VariationID uuid.UUID
	LocationID  uuid.UUID
}

// StockRecord holds the on-hand quantity of a variation at a location in base
// units. It is created lazily at zero, never deleted and never negative.
type StockRecord struct {
	shared.TenantAggregateRoot
	VariationID  uuid.UUID
	LocationID   uuid.UUID
	QtyAvailable decimal.Decimal
}

// NewStockRecord creates an empty stock record
func NewStockRecord(key StockKey) *StockRecord {
	return &StockRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(key.TenantID),
		VariationID:         key.VariationID,
		LocationID:          key.LocationID,
		QtyAvailable:        decimal.Zero,
	}
}

// Key returns the identifying key of the record
func (r *StockRecord) Key() StockKey {
	return StockKey{TenantID: r.TenantID, VariationID: r.VariationID, LocationID: r.LocationID}
}

// StockRecordView is a stock record with its master data resolved into typed
// nested records.
type StockRecordView struct {
	Record    StockRecord
	Product   catalog.ProductRef
	Variation catalog.VariationRef
	Location  catalog.LocationRef
}
