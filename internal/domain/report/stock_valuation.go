package report

import (
	"sort"
	"time"

	"github.com/boutique/backoffice/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockValuationItem values one stock record. Stock is already unique per
// (variation, location) so no further grouping happens.
type StockValuationItem struct {
	Product      catalog.ProductRef   `json:"product"`
	Variation    catalog.VariationRef `json:"variation"`
	Location     catalog.LocationRef  `json:"location"`
	QtyAvailable decimal.Decimal      `json:"qty_available"`
	UnitCost     decimal.Decimal      `json:"unit_cost"`
	TotalValue   decimal.Decimal      `json:"total_value"`
}

// StockValuationSummary aggregates the valued rows
type StockValuationSummary struct {
	TotalItems     int             `json:"total_items"`
	TotalQuantity  decimal.Decimal `json:"total_quantity"`
	TotalValue     decimal.Decimal `json:"total_value"`
	LocationsCount int             `json:"locations_count"`
}

// StockValuationReport is the read model for on-hand stock at cost
type StockValuationReport struct {
	GeneratedAt time.Time             `json:"generated_at"`
	LocationID  *uuid.UUID            `json:"location_id,omitempty"`
	Summary     StockValuationSummary `json:"summary"`
	Items       []StockValuationItem  `json:"items"`
}

// StockValuationAccumulator collects valued rows
type StockValuationAccumulator struct {
	items     []StockValuationItem
	locations map[uuid.UUID]struct{}
	qty       decimal.Decimal
	value     decimal.Decimal
}

// NewStockValuationAccumulator creates an empty accumulator
func NewStockValuationAccumulator() *StockValuationAccumulator {
	return &StockValuationAccumulator{
		locations: make(map[uuid.UUID]struct{}),
		qty:       decimal.Zero,
		value:     decimal.Zero,
	}
}

// Add values one stock record at unitCost
func (a *StockValuationAccumulator) Add(
	product catalog.ProductRef,
	variation catalog.VariationRef,
	location catalog.LocationRef,
	qty, unitCost decimal.Decimal,
) {
	total := qty.Mul(unitCost)
	a.items = append(a.items, StockValuationItem{
		Product:      product,
		Variation:    variation,
		Location:     location,
		QtyAvailable: qty,
		UnitCost:     unitCost,
		TotalValue:   total,
	})
	a.locations[location.ID] = struct{}{}
	a.qty = a.qty.Add(qty)
	a.value = a.value.Add(total)
}

// Result returns the summary and the rows sorted by value, highest first
func (a *StockValuationAccumulator) Result() (StockValuationSummary, []StockValuationItem) {
	items := make([]StockValuationItem, len(a.items))
	copy(items, a.items)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].TotalValue.GreaterThan(items[j].TotalValue)
	})
	return StockValuationSummary{
		TotalItems:     len(items),
		TotalQuantity:  a.qty,
		TotalValue:     a.value,
		LocationsCount: len(a.locations),
	}, items
}
