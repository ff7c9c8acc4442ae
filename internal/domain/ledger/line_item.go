package ledger

import (
	"github.com/boutique/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line validation failures
var (
	ErrInvalidQuantity  = shared.NewValidationError("INVALID_QUANTITY", "Quantity must be positive")
	ErrInvalidDirection = shared.NewValidationError("INVALID_DIRECTION", "Direction must be increase or decrease")
	ErrReasonRequired   = shared.NewValidationError("INVALID_REASON", "Adjustment reason is required")
)

// LineItem belongs to exactly one Transaction. Quantity is in the unit it was
// entered in. Adjustment lines also carry the direction, reason and the signed
// base-unit delta that was actually applied to stock.
type LineItem struct {
	shared.BaseEntity
	TransactionID     uuid.UUID
	TenantID          uuid.UUID
	VariationID       uuid.UUID
	LocationID        uuid.UUID
	UnitID            uuid.UUID
	Quantity          decimal.Decimal
	UnitPrice         decimal.Decimal
	LineTotal         decimal.Decimal
	Direction         Direction
	Reason            string
	BaseQuantityDelta decimal.Decimal
	Overdraft         decimal.Decimal
}

// SalesAmount returns the persisted line total, falling back to
// quantity x unit price for rows written without one.
func (l LineItem) SalesAmount() decimal.Decimal {
	if !l.LineTotal.IsZero() {
		return l.LineTotal
	}
	return l.Quantity.Mul(l.UnitPrice)
}

// IsAdjustment reports whether the line records a stock adjustment
func (l LineItem) IsAdjustment() bool {
	return l.Direction != ""
}
