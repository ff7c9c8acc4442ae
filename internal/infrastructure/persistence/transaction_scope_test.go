package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	appinv "github.com/boutique/backoffice/internal/application/inventory"
	"github.com/boutique/backoffice/internal/domain/inventory"
	"github.com/boutique/backoffice/internal/domain/ledger"
	"github.com/boutique/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionScope(t *testing.T) {
	db := setupTestDB(t)
	f := seedCatalog(t, db)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()
	key := inventory.StockKey{TenantID: f.TenantID, VariationID: f.Variation.ID, LocationID: f.Shop.ID}

	write := func(repos appinv.TransactionalRepositories) (*ledger.Transaction, error) {
		if err := repos.StockRepo().EnsureExists(ctx, key); err != nil {
			return nil, err
		}
		if err := repos.StockRepo().Increase(ctx, key, dec("5")); err != nil {
			return nil, err
		}
		tx, err := ledger.NewTransaction(f.TenantID, ledger.TransactionTypeStockAdjustment, time.Now())
		if err != nil {
			return nil, err
		}
		if _, err := tx.AddAdjustmentLine(ledger.AdjustmentLine{
			VariationID:       f.Variation.ID,
			LocationID:        f.Shop.ID,
			UnitID:            f.Piece.ID,
			Quantity:          dec("5"),
			Direction:         ledger.DirectionIncrease,
			Reason:            "found in back room",
			BaseQuantityDelta: dec("5"),
		}); err != nil {
			return nil, err
		}
		if err := tx.Finalize(); err != nil {
			return nil, err
		}
		return tx, repos.LedgerRepo().CreateWithLines(ctx, tx)
	}

	t.Run("rolls back stock and ledger together", func(t *testing.T) {
		boom := errors.New("boom")
		var written *ledger.Transaction
		err := scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
			tx, err := write(repos)
			if err != nil {
				return err
			}
			written = tx
			return boom
		})
		assert.ErrorIs(t, err, boom)
		require.NotNil(t, written)

		_, err = NewGormStockRecordRepository(db).FindByKey(ctx, key)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = NewGormLedgerRepository(db).FindByID(ctx, f.TenantID, written.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("commits on success", func(t *testing.T) {
		var written *ledger.Transaction
		err := scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
			tx, err := write(repos)
			written = tx
			return err
		})
		require.NoError(t, err)

		rec, err := NewGormStockRecordRepository(db).FindByKey(ctx, key)
		require.NoError(t, err)
		assert.True(t, rec.QtyAvailable.Equal(dec("5")))
		found, err := NewGormLedgerRepository(db).FindByID(ctx, f.TenantID, written.ID)
		require.NoError(t, err)
		assert.Len(t, found.Lines, 1)
	})
}
