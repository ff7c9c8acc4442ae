package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/boutique/backoffice/internal/domain/catalog"
	"github.com/boutique/backoffice/internal/domain/ledger"
	"github.com/boutique/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory sqlite database with every engine table.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to ":memory:" is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

// newMockGormDB returns a postgres-dialect GORM handle backed by sqlmock
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

// catalogFixture is a small shop: one product with one variation stocked in
// pieces, a dozen sub-unit and two locations.
type catalogFixture struct {
	TenantID  uuid.UUID
	Product   *catalog.Product
	Variation *catalog.Variation
	Piece     *catalog.Unit
	Dozen     *catalog.Unit
	Shop      *catalog.Location
	Backroom  *catalog.Location
}

func seedCatalog(t *testing.T, db *gorm.DB) *catalogFixture {
	t.Helper()
	ctx := context.Background()
	repo := NewGormMasterDataRepository(db)
	tenantID := uuid.New()

	product, err := catalog.NewProduct(tenantID, "Linen Shirt", "LS-001")
	require.NoError(t, err)
	piece, err := catalog.NewUnit(tenantID, "Piece", "pc", decimal.NewFromInt(1))
	require.NoError(t, err)
	dozen, err := catalog.NewSubUnit(tenantID, piece, "Dozen", "dz", decimal.NewFromInt(12))
	require.NoError(t, err)
	variation, err := catalog.NewVariation(tenantID, product.ID, piece.ID, "Blue / M")
	require.NoError(t, err)
	variation.SubSKU = "LS-001-BM"
	shop, err := catalog.NewLocation(tenantID, "Shop floor")
	require.NoError(t, err)
	backroom, err := catalog.NewLocation(tenantID, "Back room")
	require.NoError(t, err)

	require.NoError(t, repo.SaveProduct(ctx, product))
	require.NoError(t, repo.SaveUnit(ctx, piece))
	require.NoError(t, repo.SaveUnit(ctx, dozen))
	require.NoError(t, repo.SaveVariation(ctx, variation))
	require.NoError(t, repo.SaveLocation(ctx, shop))
	require.NoError(t, repo.SaveLocation(ctx, backroom))

	return &catalogFixture{
		TenantID:  tenantID,
		Product:   product,
		Variation: variation,
		Piece:     piece,
		Dozen:     dozen,
		Shop:      shop,
		Backroom:  backroom,
	}
}

// recordSale writes a final sell or purchase entry with a single line
func recordSale(t *testing.T, db *gorm.DB, f *catalogFixture, txType ledger.TransactionType, date time.Time, qty, price int64) *ledger.Transaction {
	t.Helper()

	tx, err := ledger.NewTransaction(f.TenantID, txType, date)
	require.NoError(t, err)
	_, err = tx.AddSaleLine(f.Variation.ID, f.Shop.ID, f.Piece.ID, decimal.NewFromInt(qty), decimal.NewFromInt(price))
	require.NoError(t, err)
	require.NoError(t, tx.Finalize())
	require.NoError(t, NewGormLedgerRepository(db).CreateWithLines(context.Background(), tx))
	return tx
}
