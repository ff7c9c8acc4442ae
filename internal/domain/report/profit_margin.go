package report

import (
	"sort"
	"time"

	"github.com/boutique/backoffice/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ProfitMarginItem is the per-product row of the profit and margin report
type ProfitMarginItem struct {
	Product           catalog.ProductRef `json:"product"`
	TotalSales        decimal.Decimal    `json:"total_sales"`
	TotalCost         decimal.Decimal    `json:"total_cost"`
	Profit            decimal.Decimal    `json:"profit"`
	MarginPercent     decimal.Decimal    `json:"margin_percent"`
	TotalQuantitySold decimal.Decimal    `json:"total_quantity_sold"`
}

// ProfitMarginSummary aggregates every product in the window
type ProfitMarginSummary struct {
	TotalSales     decimal.Decimal `json:"total_sales"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	TotalProfit    decimal.Decimal `json:"total_profit"`
	MarginPercent  decimal.Decimal `json:"margin_percent"`
	TotalItemsSold decimal.Decimal `json:"total_items_sold"`
}

// ProfitMarginReport is the read model returned for a date window
type ProfitMarginReport struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Period      DateRange           `json:"period"`
	Summary     ProfitMarginSummary `json:"summary"`
	Items       []ProfitMarginItem  `json:"items"`
}

// MarginPercent returns profit / sales x 100, or 0 when sales is not positive.
// The value is unrounded; presentation rounds it with Rounded.
func MarginPercent(profit, sales decimal.Decimal) decimal.Decimal {
	if !sales.IsPositive() {
		return decimal.Zero
	}
	return profit.Div(sales).Mul(hundred)
}

// Rounded returns a copy with every margin percent rounded to places.
// Money totals are left untouched.
func (r ProfitMarginReport) Rounded(places int32) ProfitMarginReport {
	out := r
	out.Summary.MarginPercent = r.Summary.MarginPercent.Round(places)
	out.Items = make([]ProfitMarginItem, len(r.Items))
	for i, it := range r.Items {
		it.MarginPercent = it.MarginPercent.Round(places)
		out.Items[i] = it
	}
	return out
}

// ProfitMarginAccumulator groups sold lines by product. Products keep the
// order in which they were first seen so that equal totals sort stably.
type ProfitMarginAccumulator struct {
	order []uuid.UUID
	rows  map[uuid.UUID]*ProfitMarginItem
}

// NewProfitMarginAccumulator creates an empty accumulator
func NewProfitMarginAccumulator() *ProfitMarginAccumulator {
	return &ProfitMarginAccumulator{rows: make(map[uuid.UUID]*ProfitMarginItem)}
}

// Add accumulates one sold line
func (a *ProfitMarginAccumulator) Add(product catalog.ProductRef, quantity, sales, cost decimal.Decimal) {
	row, ok := a.rows[product.ID]
	if !ok {
		row = &ProfitMarginItem{
			Product:           product,
			TotalSales:        decimal.Zero,
			TotalCost:         decimal.Zero,
			TotalQuantitySold: decimal.Zero,
		}
		a.rows[product.ID] = row
		a.order = append(a.order, product.ID)
	}
	row.TotalSales = row.TotalSales.Add(sales)
	row.TotalCost = row.TotalCost.Add(cost)
	row.TotalQuantitySold = row.TotalQuantitySold.Add(quantity)
}

// Result finalises profit and margin per product and in total. Items are
// sorted by total sales, highest first.
func (a *ProfitMarginAccumulator) Result() (ProfitMarginSummary, []ProfitMarginItem) {
	summary := ProfitMarginSummary{
		TotalSales:     decimal.Zero,
		TotalCost:      decimal.Zero,
		TotalProfit:    decimal.Zero,
		MarginPercent:  decimal.Zero,
		TotalItemsSold: decimal.Zero,
	}
	items := make([]ProfitMarginItem, 0, len(a.order))

	for _, id := range a.order {
		row := *a.rows[id]
		row.Profit = row.TotalSales.Sub(row.TotalCost)
		row.MarginPercent = MarginPercent(row.Profit, row.TotalSales)
		items = append(items, row)

		summary.TotalSales = summary.TotalSales.Add(row.TotalSales)
		summary.TotalCost = summary.TotalCost.Add(row.TotalCost)
		summary.TotalItemsSold = summary.TotalItemsSold.Add(row.TotalQuantitySold)
	}
	summary.TotalProfit = summary.TotalSales.Sub(summary.TotalCost)
	summary.MarginPercent = MarginPercent(summary.TotalProfit, summary.TotalSales)

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].TotalSales.GreaterThan(items[j].TotalSales)
	})
	return summary, items
}
