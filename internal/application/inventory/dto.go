package inventory

import (
	"strings"
	"time"

	"github.com/boutique/backoffice/internal/domain/inventory"
	"github.com/boutique/backoffice/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustmentItemRequest is one requested stock correction.
// Quantity is expressed in UnitID; Direction is increase or decrease.
type AdjustmentItemRequest struct {
	VariationID uuid.UUID       `json:"variation_id"`
	LocationID  uuid.UUID       `json:"location_id"`
	UnitID      uuid.UUID       `json:"unit_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Direction   string          `json:"direction"`
	Reason      string          `json:"reason"`
}

// AdjustmentBatchRequest is a batch of corrections applied all-or-nothing.
type AdjustmentBatchRequest struct {
	Date      time.Time               `json:"date"`
	Reference string                  `json:"reference" binding:"max=100"`
	Note      string                  `json:"note" binding:"max=1000"`
	Items     []AdjustmentItemRequest `json:"items"`

	// IdempotencyKey is taken from the Idempotency-Key header, not the body.
	IdempotencyKey string `json:"-"`
}

// ToDomain converts the request items into domain adjustment items
func (r AdjustmentBatchRequest) ToDomain() []inventory.AdjustmentItem {
	items := make([]inventory.AdjustmentItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, inventory.AdjustmentItem{
			VariationID: it.VariationID,
			LocationID:  it.LocationID,
			UnitID:      it.UnitID,
			Quantity:    it.Quantity,
			Direction:   ledger.Direction(strings.ToLower(strings.TrimSpace(it.Direction))),
			Reason:      it.Reason,
		})
	}
	return items
}

// AppliedAdjustment reports what one item actually did to stock.
// BaseQuantity is the requested quantity in base units; AppliedDelta is the
// signed change written; Overdraft is the decrease discarded at zero.
type AppliedAdjustment struct {
	Index        int             `json:"index"`
	LineID       uuid.UUID       `json:"line_id"`
	VariationID  uuid.UUID       `json:"variation_id"`
	LocationID   uuid.UUID       `json:"location_id"`
	Direction    string          `json:"direction"`
	Quantity     decimal.Decimal `json:"quantity"`
	BaseQuantity decimal.Decimal `json:"base_quantity"`
	AppliedDelta decimal.Decimal `json:"applied_delta"`
	Overdraft    decimal.Decimal `json:"overdraft"`
}

// AdjustmentResult is the outcome of an adjustment batch.
// TransactionID is nil for an empty batch.
type AdjustmentResult struct {
	Success       bool                `json:"success"`
	TransactionID *uuid.UUID          `json:"transaction_id"`
	Items         []AppliedAdjustment `json:"items"`
}

// StockQuantityResponse is the on-hand quantity of a variation at a location
type StockQuantityResponse struct {
	VariationID  uuid.UUID       `json:"variation_id"`
	LocationID   uuid.UUID       `json:"location_id"`
	QtyAvailable decimal.Decimal `json:"qty_available"`
	Version      int             `json:"version"`
	UpdatedAt    *time.Time      `json:"updated_at,omitempty"`
}
