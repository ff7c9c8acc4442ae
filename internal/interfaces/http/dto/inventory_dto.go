package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustmentItemRequest is one line of an adjustment batch. Item rules are
// checked by the engine so failures carry the item index.
type AdjustmentItemRequest struct {
	VariationID uuid.UUID       `json:"variation_id"`
	LocationID  uuid.UUID       `json:"location_id"`
	UnitID      uuid.UUID       `json:"unit_id"`
	Quantity    decimal.Decimal `json:"quantity" swaggertype:"string" example:"2.5"`
	Direction   string          `json:"direction" example:"increase"`
	Reason      string          `json:"reason" example:"cycle count"`
}

// AdjustmentBatchRequest is the body of POST /inventory/adjustments
type AdjustmentBatchRequest struct {
	Date      *time.Time              `json:"date"`
	Reference string                  `json:"reference" binding:"max=100"`
	Note      string                  `json:"note" binding:"max=1000"`
	Items     []AdjustmentItemRequest `json:"items" binding:"max=500"`
}
