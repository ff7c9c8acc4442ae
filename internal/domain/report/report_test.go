package report

import (
	"testing"
	"time"

	"github.com/boutique/backoffice/internal/domain/catalog"
	"github.com/boutique/backoffice/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func product(name string) catalog.ProductRef {
	return catalog.ProductRef{ID: uuid.New(), Name: name}
}

func TestProfitMargin_SingleLine(t *testing.T) {
	acc := NewProfitMarginAccumulator()
	p := product("Linen Shirt")
	acc.Add(p, d("2"), d("200"), d("2").Mul(d("60")))

	summary, items := acc.Result()
	require.Len(t, items, 1)
	assert.True(t, items[0].Profit.Equal(d("80")))
	assert.True(t, items[0].MarginPercent.Equal(d("40")))
	assert.True(t, summary.TotalProfit.Equal(d("80")))
	assert.True(t, summary.TotalItemsSold.Equal(d("2")))
}

func TestProfitMargin_Invariants(t *testing.T) {
	acc := NewProfitMarginAccumulator()
	a, b, c := product("A"), product("B"), product("C")
	acc.Add(a, d("1"), d("120.50"), d("80"))
	acc.Add(b, d("3"), d("300"), d("350"))
	acc.Add(a, d("2"), d("240"), d("160.25"))
	acc.Add(c, d("1"), d("0"), d("5"))

	summary, items := acc.Result()
	require.Len(t, items, 3)

	sumSales, sumCost := decimal.Zero, decimal.Zero
	for i, it := range items {
		assert.True(t, it.Profit.Equal(it.TotalSales.Sub(it.TotalCost)))
		if it.TotalSales.IsPositive() {
			assert.True(t, it.MarginPercent.Equal(it.Profit.Div(it.TotalSales).Mul(hundred)))
		} else {
			assert.True(t, it.MarginPercent.IsZero())
		}
		if i > 0 {
			assert.True(t, items[i-1].TotalSales.GreaterThanOrEqual(it.TotalSales))
		}
		sumSales = sumSales.Add(it.TotalSales)
		sumCost = sumCost.Add(it.TotalCost)
	}
	assert.True(t, summary.TotalSales.Equal(sumSales))
	assert.True(t, summary.TotalCost.Equal(sumCost))
	assert.True(t, summary.TotalItemsSold.Equal(d("7")))
	assert.Equal(t, "A", items[0].Product.Name)
	assert.True(t, items[1].Profit.IsNegative())
}

func TestProfitMargin_Empty(t *testing.T) {
	summary, items := NewProfitMarginAccumulator().Result()
	assert.Empty(t, items)
	assert.NotNil(t, items)
	assert.True(t, summary.TotalSales.IsZero())
	assert.True(t, summary.TotalCost.IsZero())
	assert.True(t, summary.TotalProfit.IsZero())
	assert.True(t, summary.MarginPercent.IsZero())
	assert.True(t, summary.TotalItemsSold.IsZero())
}

func TestStockValuation(t *testing.T) {
	acc := NewStockValuationAccumulator()
	p := product("Linen Shirt")
	l1 := catalog.LocationRef{ID: uuid.New(), Name: "Shop"}
	l2 := catalog.LocationRef{ID: uuid.New(), Name: "Back room"}
	v1 := catalog.VariationRef{ID: uuid.New(), ProductID: p.ID, Name: "M"}
	v2 := catalog.VariationRef{ID: uuid.New(), ProductID: p.ID, Name: "L"}

	acc.Add(p, v1, l1, d("36"), d("60"))
	acc.Add(p, v2, l1, d("10"), d("300"))
	acc.Add(p, v1, l2, d("0"), d("60"))

	summary, items := acc.Result()
	require.Len(t, items, 3)
	assert.True(t, items[0].TotalValue.Equal(d("3000")))
	assert.True(t, items[1].TotalValue.Equal(d("2160")))

	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.QtyAvailable.Mul(it.UnitCost))
	}
	assert.True(t, summary.TotalValue.Equal(total))
	assert.True(t, summary.TotalQuantity.Equal(d("46")))
	assert.Equal(t, 3, summary.TotalItems)
	assert.Equal(t, 2, summary.LocationsCount)
}

func TestTopSellerRanker(t *testing.T) {
	r := NewTopSellerRanker()
	a, b, c := product("A"), product("B"), product("C")
	r.Add(b, d("3"), d("300"))
	r.Add(a, d("5"), d("500"))
	r.Add(c, d("1"), d("300"))

	ranked := r.Rank(2)
	require.Len(t, ranked, 2)
	assert.Equal(t, "A", ranked[0].Product.Name)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "B", ranked[1].Product.Name, "ties keep first-seen order")
	assert.True(t, ranked[0].AveragePrice.Equal(d("100")))
	assert.Equal(t, int64(1), ranked[0].TransactionCount)

	all := r.Rank(0)
	assert.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].TotalSales.GreaterThanOrEqual(all[i].TotalSales))
	}
}

func TestTopSellerRanker_ZeroQuantity(t *testing.T) {
	r := NewTopSellerRanker()
	r.Add(product("Gift card"), decimal.Zero, d("50"))
	ranked := r.Rank(10)
	require.Len(t, ranked, 1)
	assert.True(t, ranked[0].AveragePrice.IsZero())
}

func TestNewDateRange(t *testing.T) {
	from := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 8, 0, 0, 0, time.UTC)
	r, err := NewDateRange(from, to)
	require.NoError(t, err)

	assert.True(t, r.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, r.Contains(time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))

	_, err = NewDateRange(to, from)
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = NewDateRange(time.Time{}, to)
	assert.Error(t, err)
}

func TestNewExportRow(t *testing.T) {
	p := product("Linen Shirt")
	sale := ledger.LedgerLine{
		Line:            ledger.LineItem{Quantity: d("2"), UnitPrice: d("100"), LineTotal: d("200")},
		TransactionType: ledger.TransactionTypeSell,
		TransactionDate: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		Reference:       "INV-0001",
		Product:         p,
		Variation:       catalog.VariationRef{Name: "M"},
	}
	row := NewExportRow(sale, d("60"))
	assert.True(t, row.Amount.Equal(d("200")))
	assert.Equal(t, []string{"2024-03-05", "sell", "200.00", "2 x Linen Shirt (M) @ 100", "INV-0001"}, row.Record())

	adj := ledger.LedgerLine{
		Line: ledger.LineItem{
			Quantity:          d("10"),
			Direction:         ledger.DirectionDecrease,
			Reason:            "shrinkage",
			BaseQuantityDelta: d("-5"),
			Overdraft:         d("5"),
		},
		TransactionType: ledger.TransactionTypeStockAdjustment,
		Product:         p,
		Location:        catalog.LocationRef{Name: "Shop"},
	}
	row = NewExportRow(adj, d("60"))
	assert.True(t, row.Amount.Equal(d("-300")))
	assert.Contains(t, row.Description, "shrinkage")
	assert.Contains(t, row.Description, "overdraft 5 discarded")
}

func TestProfitMarginReport_Rounded(t *testing.T) {
	acc := NewProfitMarginAccumulator()
	acc.Add(product("Wool Scarf"), d("7"), d("315"), d("210"))
	summary, items := acc.Result()
	r := ProfitMarginReport{Summary: summary, Items: items}

	exact := d("105").Div(d("315")).Mul(hundred)
	assert.True(t, r.Items[0].MarginPercent.Equal(exact))

	shown := r.Rounded(2)
	assert.True(t, shown.Items[0].MarginPercent.Equal(d("33.33")))
	assert.True(t, shown.Summary.MarginPercent.Equal(d("33.33")))
	assert.True(t, shown.Items[0].Profit.Equal(d("105")))
	assert.True(t, r.Items[0].MarginPercent.Equal(exact), "source report keeps the exact value")
}
