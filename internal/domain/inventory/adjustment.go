package inventory

import (
	"fmt"
	"strings"

	"github.com/boutique/backoffice/internal/domain/ledger"
	"github.com/boutique/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustmentItem is one requested correction in an adjustment batch.
// Quantity is expressed in UnitID and is always positive; Direction gives the sign.
type AdjustmentItem struct {
	VariationID uuid.UUID
	LocationID  uuid.UUID
	UnitID      uuid.UUID
	Quantity    decimal.Decimal
	Direction   ledger.Direction
	Reason      string
}

// Key returns the stock key touched by the item
func (i AdjustmentItem) Key(tenantID uuid.UUID) StockKey {
	return StockKey{TenantID: tenantID, VariationID: i.VariationID, LocationID: i.LocationID}
}

// ValidateAdjustmentItems checks the input-only rules of every item and
// returns one validation error listing all failures, or nil.
func ValidateAdjustmentItems(items []AdjustmentItem) error {
	var details []shared.FieldError
	add := func(idx int, field, msg string) {
		details = append(details, shared.FieldError{ItemIndex: idx, Field: field, Message: msg})
	}

	for idx, item := range items {
		if item.VariationID == uuid.Nil {
			add(idx, "variation_id", "variation is required")
		}
		if item.LocationID == uuid.Nil {
			add(idx, "location_id", "location is required")
		}
		if item.UnitID == uuid.Nil {
			add(idx, "unit_id", "unit is required")
		}
		if !item.Quantity.IsPositive() {
			add(idx, "quantity", "quantity must be greater than zero")
		} else if !FitsQuantityScale(item.Quantity) {
			add(idx, "quantity", fmt.Sprintf("quantity allows at most %d decimal places", QuantityScale))
		}
		if !item.Direction.IsValid() {
			add(idx, "direction", "direction must be increase or decrease")
		}
		if strings.TrimSpace(item.Reason) == "" {
			add(idx, "reason", "reason is required")
		}
	}

	if len(details) == 0 {
		return nil
	}
	return shared.ErrValidation.WithMessage("Adjustment batch rejected").WithDetails(details)
}
