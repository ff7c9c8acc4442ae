package report

import (
	"sort"
	"time"

	"github.com/boutique/backoffice/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultTopSellerLimit is used when the caller gives no positive limit
const DefaultTopSellerLimit = 10

// TopSeller is one ranked product
type TopSeller struct {
	Rank              int                `json:"rank"`
	Product           catalog.ProductRef `json:"product"`
	TotalQuantitySold decimal.Decimal    `json:"total_quantity_sold"`
	TotalSales        decimal.Decimal    `json:"total_sales"`
	TransactionCount  int64              `json:"transaction_count"`
	AveragePrice      decimal.Decimal    `json:"average_price"`
}

// TopSellersReport is the ranked list for a date window
type TopSellersReport struct {
	GeneratedAt time.Time   `json:"generated_at"`
	Period      DateRange   `json:"period"`
	Limit       int         `json:"limit"`
	Items       []TopSeller `json:"items"`
}

// TopSellerRanker groups sold lines by product and ranks them by sales
type TopSellerRanker struct {
	order []uuid.UUID
	rows  map[uuid.UUID]*TopSeller
}

// NewTopSellerRanker creates an empty ranker
func NewTopSellerRanker() *TopSellerRanker {
	return &TopSellerRanker{rows: make(map[uuid.UUID]*TopSeller)}
}

// Add accumulates one contributing line
func (r *TopSellerRanker) Add(product catalog.ProductRef, quantity, sales decimal.Decimal) {
	row, ok := r.rows[product.ID]
	if !ok {
		row = &TopSeller{
			Product:           product,
			TotalQuantitySold: decimal.Zero,
			TotalSales:        decimal.Zero,
		}
		r.rows[product.ID] = row
		r.order = append(r.order, product.ID)
	}
	row.TotalQuantitySold = row.TotalQuantitySold.Add(quantity)
	row.TotalSales = row.TotalSales.Add(sales)
	row.TransactionCount++
}

// Rank returns at most limit products sorted by total sales, highest first.
// Ties keep first-seen order. A non-positive limit means DefaultTopSellerLimit.
func (r *TopSellerRanker) Rank(limit int) []TopSeller {
	if limit <= 0 {
		limit = DefaultTopSellerLimit
	}
	items := make([]TopSeller, 0, len(r.order))
	for _, id := range r.order {
		row := *r.rows[id]
		if row.TotalQuantitySold.IsPositive() {
			row.AveragePrice = row.TotalSales.DivRound(row.TotalQuantitySold, 4)
		} else {
			row.AveragePrice = decimal.Zero
		}
		items = append(items, row)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].TotalSales.GreaterThan(items[j].TotalSales)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	for i := range items {
		items[i].Rank = i + 1
	}
	return items
}
