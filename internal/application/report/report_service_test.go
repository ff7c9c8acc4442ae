package report_test

import (
	"context"
	"testing"
	"time"

	appreport "github.com/boutique/backoffice/internal/application/report"
	"github.com/boutique/backoffice/internal/domain/catalog"
	"github.com/boutique/backoffice/internal/domain/inventory"
	"github.com/boutique/backoffice/internal/domain/ledger"
	"github.com/boutique/backoffice/internal/domain/shared"
	"github.com/boutique/backoffice/internal/infrastructure/config"
	"github.com/boutique/backoffice/internal/infrastructure/persistence"
	"github.com/boutique/backoffice/internal/infrastructure/strategy/cost"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

var (
	march1  = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	march31 = time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

type boutique struct {
	t        *testing.T
	db       *gorm.DB
	tenantID uuid.UUID
	master   *persistence.GormMasterDataRepository
	piece    *catalog.Unit
	floor    *catalog.Location
	backroom *catalog.Location
}

func openBoutique(t *testing.T) *boutique {
	t.Helper()
	ctx := context.Background()

	database, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, database.AutoMigrate())

	b := &boutique{t: t, db: database.DB, tenantID: uuid.New(), master: persistence.NewGormMasterDataRepository(database.DB)}

	b.piece, err = catalog.NewUnit(b.tenantID, "Piece", "pc", decimal.NewFromInt(1))
	require.NoError(t, err)
	require.NoError(t, b.master.SaveUnit(ctx, b.piece))

	b.floor, err = catalog.NewLocation(b.tenantID, "Shop floor")
	require.NoError(t, err)
	require.NoError(t, b.master.SaveLocation(ctx, b.floor))
	b.backroom, err = catalog.NewLocation(b.tenantID, "Back room")
	require.NoError(t, err)
	require.NoError(t, b.master.SaveLocation(ctx, b.backroom))
	return b
}

// addProduct creates a product with a single variation stocked in pieces
func (b *boutique) addProduct(name, sku string, defaultCost *decimal.Decimal) *catalog.Variation {
	b.t.Helper()
	ctx := context.Background()

	p, err := catalog.NewProduct(b.tenantID, name, sku)
	require.NoError(b.t, err)
	require.NoError(b.t, b.master.SaveProduct(ctx, p))

	v, err := catalog.NewVariation(b.tenantID, p.ID, b.piece.ID, "Default")
	require.NoError(b.t, err)
	require.NoError(b.t, v.SetDefaultCost(defaultCost))
	require.NoError(b.t, b.master.SaveVariation(ctx, v))
	return v
}

func (b *boutique) record(txType ledger.TransactionType, date time.Time, v *catalog.Variation, qty, price string, final bool) {
	b.t.Helper()
	tx, err := ledger.NewTransaction(b.tenantID, txType, date)
	require.NoError(b.t, err)
	require.NoError(b.t, tx.SetReference("INV-"+date.Format("0102"), ""))
	_, err = tx.AddSaleLine(v.ID, b.floor.ID, b.piece.ID, dec(qty), dec(price))
	require.NoError(b.t, err)
	if final {
		require.NoError(b.t, tx.Finalize())
	}
	require.NoError(b.t, persistence.NewGormLedgerRepository(b.db).CreateWithLines(context.Background(), tx))
}

func (b *boutique) stock(v *catalog.Variation, loc *catalog.Location, qty int64) {
	b.t.Helper()
	ctx := context.Background()
	repo := persistence.NewGormStockRecordRepository(b.db)
	key := inventory.StockKey{TenantID: b.tenantID, VariationID: v.ID, LocationID: loc.ID}
	require.NoError(b.t, repo.EnsureExists(ctx, key))
	if qty > 0 {
		require.NoError(b.t, repo.Increase(ctx, key, decimal.NewFromInt(qty)))
	}
}

func (b *boutique) service(cfg appreport.ReportServiceConfig) *appreport.ReportService {
	return appreport.NewReportService(
		persistence.NewGormLedgerRepository(b.db),
		persistence.NewGormStockRecordRepository(b.db),
		b.master,
		cost.NewLastPurchaseCostStrategy(),
		cfg,
		zap.NewNop(),
	)
}

func TestComputeProfitMarginReport(t *testing.T) {
	ctx := context.Background()

	t.Run("single sell line at last purchase cost", func(t *testing.T) {
		b := openBoutique(t)
		shirt := b.addProduct("Linen Shirt", "LS-001", nil)
		b.record(ledger.TransactionTypePurchase, march1, shirt, "10", "55", true)
		b.record(ledger.TransactionTypePurchase, march1.AddDate(0, 0, 1), shirt, "5", "60", true)
		b.record(ledger.TransactionTypeSell, march1.AddDate(0, 0, 9), shirt, "2", "100", true)

		r, err := b.service(appreport.ReportServiceConfig{}).ComputeProfitMarginReport(ctx, b.tenantID, march1, march31)
		require.NoError(t, err)

		require.Len(t, r.Items, 1)
		item := r.Items[0]
		assert.Equal(t, "Linen Shirt", item.Product.Name)
		assert.True(t, item.TotalSales.Equal(dec("200")))
		assert.True(t, item.TotalCost.Equal(dec("120")))
		assert.True(t, item.Profit.Equal(dec("80")))
		assert.True(t, item.MarginPercent.Equal(dec("40")))
		assert.True(t, r.Summary.TotalItemsSold.Equal(dec("2")))
		assert.False(t, r.GeneratedAt.IsZero())
	})

	t.Run("no sales in window", func(t *testing.T) {
		b := openBoutique(t)
		shirt := b.addProduct("Linen Shirt", "LS-001", nil)
		b.record(ledger.TransactionTypeSell, march1.AddDate(0, 1, 0), shirt, "1", "100", true)
		b.record(ledger.TransactionTypeSell, march1, shirt, "1", "100", false)
		b.record(ledger.TransactionTypePurchase, march1, shirt, "1", "50", true)

		r, err := b.service(appreport.ReportServiceConfig{}).ComputeProfitMarginReport(ctx, b.tenantID, march1, march31)
		require.NoError(t, err)
		assert.NotNil(t, r.Items)
		assert.Empty(t, r.Items)
		assert.True(t, r.Summary.TotalSales.IsZero())
		assert.True(t, r.Summary.TotalCost.IsZero())
		assert.True(t, r.Summary.TotalProfit.IsZero())
		assert.True(t, r.Summary.MarginPercent.IsZero())
		assert.True(t, r.Summary.TotalItemsSold.IsZero())
	})

	t.Run("date_to covers the whole last day", func(t *testing.T) {
		b := openBoutique(t)
		shirt := b.addProduct("Linen Shirt", "LS-001", nil)
		b.record(ledger.TransactionTypeSell, march31.Add(18*time.Hour), shirt, "1", "100", true)

		r, err := b.service(appreport.ReportServiceConfig{}).ComputeProfitMarginReport(ctx, b.tenantID, march1, march31)
		require.NoError(t, err)
		require.Len(t, r.Items, 1)
		assert.True(t, r.Summary.TotalCost.IsZero(), "no purchase and no default cost values at zero")
		assert.True(t, r.Summary.MarginPercent.Equal(dec("100")))
	})

	t.Run("default cost fallback across pages", func(t *testing.T) {
		b := openBoutique(t)
		fallback := dec("30")
		scarf := b.addProduct("Wool Scarf", "WS-100", &fallback)
		for i := 0; i < 7; i++ {
			b.record(ledger.TransactionTypeSell, march1.AddDate(0, 0, i), scarf, "1", "45", true)
		}

		r, err := b.service(appreport.ReportServiceConfig{ScanPageSize: 3}).ComputeProfitMarginReport(ctx, b.tenantID, march1, march31)
		require.NoError(t, err)
		require.Len(t, r.Items, 1)
		assert.True(t, r.Items[0].TotalQuantitySold.Equal(dec("7")))
		assert.True(t, r.Items[0].TotalCost.Equal(dec("210")))
		assert.True(t, r.Items[0].MarginPercent.Equal(dec("105").Div(dec("315")).Mul(dec("100"))))
		assert.True(t, r.Items[0].MarginPercent.Round(2).Equal(dec("33.33")))
	})

	t.Run("reversed window", func(t *testing.T) {
		b := openBoutique(t)
		_, err := b.service(appreport.ReportServiceConfig{}).ComputeProfitMarginReport(ctx, b.tenantID, march31, march1)
		assert.True(t, shared.IsValidation(err))
	})
}

func TestComputeStockValuationReport(t *testing.T) {
	ctx := context.Background()
	b := openBoutique(t)
	shirt := b.addProduct("Linen Shirt", "LS-001", nil)
	cheap := dec("4")
	socks := b.addProduct("Socks", "SO-001", &cheap)
	b.record(ledger.TransactionTypePurchase, march1, shirt, "36", "60", true)
	b.stock(shirt, b.floor, 36)
	b.stock(socks, b.floor, 10)
	b.stock(socks, b.backroom, 0)

	svc := b.service(appreport.ReportServiceConfig{ScanPageSize: 2})

	t.Run("all locations", func(t *testing.T) {
		r, err := svc.ComputeStockValuationReport(ctx, b.tenantID, nil)
		require.NoError(t, err)
		require.Len(t, r.Items, 3)

		top := r.Items[0]
		assert.Equal(t, "Linen Shirt", top.Product.Name)
		assert.Equal(t, "Shop floor", top.Location.Name)
		assert.True(t, top.UnitCost.Equal(dec("60")))
		assert.True(t, top.TotalValue.Equal(dec("2160")))

		assert.True(t, r.Items[1].TotalValue.Equal(dec("40")))
		assert.True(t, r.Items[2].TotalValue.IsZero())
		assert.Equal(t, 3, r.Summary.TotalItems)
		assert.Equal(t, 2, r.Summary.LocationsCount)
		assert.True(t, r.Summary.TotalQuantity.Equal(dec("46")))
		assert.True(t, r.Summary.TotalValue.Equal(dec("2200")))
	})

	t.Run("one location", func(t *testing.T) {
		r, err := svc.ComputeStockValuationReport(ctx, b.tenantID, &b.backroom.ID)
		require.NoError(t, err)
		require.Len(t, r.Items, 1)
		assert.Equal(t, b.backroom.ID, *r.LocationID)
		assert.Equal(t, 1, r.Summary.LocationsCount)
	})

	t.Run("unknown location", func(t *testing.T) {
		missing := uuid.New()
		_, err := svc.ComputeStockValuationReport(ctx, b.tenantID, &missing)
		assert.ErrorIs(t, err, catalog.ErrLocationNotFound)
	})
}

func TestComputeTopSellingProducts(t *testing.T) {
	ctx := context.Background()
	b := openBoutique(t)
	a := b.addProduct("A", "A-1", nil)
	bb := b.addProduct("B", "B-1", nil)
	c := b.addProduct("C", "C-1", nil)
	b.record(ledger.TransactionTypeSell, march1, bb, "3", "100", true)
	b.record(ledger.TransactionTypeSell, march1, a, "2", "150", true)
	b.record(ledger.TransactionTypeSell, march1.AddDate(0, 0, 1), a, "1", "200", true)
	b.record(ledger.TransactionTypeSell, march1, c, "1", "10", true)

	svc := b.service(appreport.ReportServiceConfig{DefaultTopLimit: 2, MaxTopLimit: 3})

	r, err := svc.ComputeTopSellingProducts(ctx, b.tenantID, march1, march31, 0)
	require.NoError(t, err)
	require.Len(t, r.Items, 2, "non-positive limit uses the default")
	assert.Equal(t, 2, r.Limit)

	assert.Equal(t, "A", r.Items[0].Product.Name)
	assert.Equal(t, 1, r.Items[0].Rank)
	assert.True(t, r.Items[0].TotalSales.Equal(dec("500")))
	assert.True(t, r.Items[0].TotalQuantitySold.Equal(dec("3")))
	assert.Equal(t, int64(2), r.Items[0].TransactionCount)
	assert.True(t, r.Items[0].AveragePrice.Equal(dec("166.6667")))

	assert.Equal(t, "B", r.Items[1].Product.Name)
	assert.True(t, r.Items[1].TotalSales.Equal(dec("300")))

	one, err := svc.ComputeTopSellingProducts(ctx, b.tenantID, march1, march31, 1)
	require.NoError(t, err)
	require.Len(t, one.Items, 1)
	assert.Equal(t, "A", one.Items[0].Product.Name)

	all, err := svc.ComputeTopSellingProducts(ctx, b.tenantID, march1, march31, 50)
	require.NoError(t, err)
	assert.Equal(t, 3, all.Limit, "capped at the configured maximum")
	require.Len(t, all.Items, 3)
	assert.Equal(t, "C", all.Items[2].Product.Name)
}

func TestExportLedger(t *testing.T) {
	ctx := context.Background()
	b := openBoutique(t)
	shirt := b.addProduct("Linen Shirt", "LS-001", nil)
	b.record(ledger.TransactionTypePurchase, march1, shirt, "10", "60", true)
	b.record(ledger.TransactionTypeSell, march1.AddDate(0, 0, 2), shirt, "2", "100", true)

	adj, err := ledger.NewTransaction(b.tenantID, ledger.TransactionTypeStockAdjustment, march1.AddDate(0, 0, 4))
	require.NoError(t, err)
	_, err = adj.AddAdjustmentLine(ledger.AdjustmentLine{
		VariationID:       shirt.ID,
		LocationID:        b.floor.ID,
		UnitID:            b.piece.ID,
		Quantity:          dec("3"),
		Direction:         ledger.DirectionDecrease,
		Reason:            "damaged",
		BaseQuantityDelta: dec("-3"),
		Overdraft:         decimal.Zero,
	})
	require.NoError(t, err)
	require.NoError(t, adj.Finalize())
	require.NoError(t, persistence.NewGormLedgerRepository(b.db).CreateWithLines(ctx, adj))

	svc := b.service(appreport.ReportServiceConfig{})

	t.Run("every type in date order", func(t *testing.T) {
		export, err := svc.ExportLedger(ctx, b.tenantID, appreport.ExportFilter{DateFrom: march1, DateTo: march31})
		require.NoError(t, err)
		require.Len(t, export.Rows, 3)

		assert.Equal(t, "purchase", export.Rows[0].Type)
		assert.True(t, export.Rows[0].Amount.Equal(dec("600")))
		assert.Equal(t, "sell", export.Rows[1].Type)
		assert.True(t, export.Rows[1].Amount.Equal(dec("200")))

		adjRow := export.Rows[2]
		assert.Equal(t, "stock_adjustment", adjRow.Type)
		assert.True(t, adjRow.Amount.Equal(dec("-180")), "adjustments export the signed delta at cost")
		assert.Contains(t, adjRow.Description, "damaged")
	})

	t.Run("type filter", func(t *testing.T) {
		export, err := svc.ExportLedger(ctx, b.tenantID, appreport.ExportFilter{
			DateFrom: march1,
			DateTo:   march31,
			Types:    []ledger.TransactionType{ledger.TransactionTypeSell},
		})
		require.NoError(t, err)
		require.Len(t, export.Rows, 1)
		assert.Equal(t, "INV-0303", export.Rows[0].Reference)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := svc.ExportLedger(ctx, b.tenantID, appreport.ExportFilter{
			DateFrom: march1,
			DateTo:   march31,
			Types:    []ledger.TransactionType{"refund"},
		})
		assert.ErrorIs(t, err, ledger.ErrInvalidType)
	})
}

func TestReportService_LogsCostBasisPerRun(t *testing.T) {
	ctx := context.Background()
	b := openBoutique(t)
	shirt := b.addProduct("Linen Shirt", "LS-001", nil)
	scarf := b.addProduct("Wool Scarf", "WS-100", nil)
	b.record(ledger.TransactionTypePurchase, march1, shirt, "10", "55", true)
	for i := 0; i < 3; i++ {
		b.record(ledger.TransactionTypeSell, march1.AddDate(0, 0, i+1), shirt, "1", "100", true)
	}
	b.record(ledger.TransactionTypeSell, march1.AddDate(0, 0, 5), scarf, "1", "40", true)

	core, logs := observer.New(zapcore.DebugLevel)
	svc := appreport.NewReportService(
		persistence.NewGormLedgerRepository(b.db),
		persistence.NewGormStockRecordRepository(b.db),
		b.master,
		cost.NewLastPurchaseCostStrategy(),
		appreport.ReportServiceConfig{ScanPageSize: 2},
		zap.New(core),
	)

	_, err := svc.ComputeProfitMarginReport(ctx, b.tenantID, march1, march31)
	require.NoError(t, err)

	entries := logs.FilterMessage("Cost basis resolved").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "profit_margin", fields["report"])
	assert.Equal(t, "last_purchase", fields["method"])
	assert.Equal(t, int64(2), fields["variations"], "each variation is costed once per run")
}
