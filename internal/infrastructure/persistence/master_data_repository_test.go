package persistence

import (
	"context"
	"testing"

	"github.com/boutique/backoffice/internal/domain/catalog"
	"github.com/boutique/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMasterDataRepository_Find(t *testing.T) {
	db := setupTestDB(t)
	f := seedCatalog(t, db)
	repo := NewGormMasterDataRepository(db)
	ctx := context.Background()

	t.Run("finds saved entities", func(t *testing.T) {
		p, err := repo.FindProduct(ctx, f.TenantID, f.Product.ID)
		require.NoError(t, err)
		assert.Equal(t, "Linen Shirt", p.Name)
		assert.Equal(t, "LS-001", p.SKU)

		v, err := repo.FindVariation(ctx, f.TenantID, f.Variation.ID)
		require.NoError(t, err)
		assert.Equal(t, f.Product.ID, v.ProductID)
		assert.Equal(t, f.Piece.ID, v.UnitID)
		assert.Nil(t, v.DefaultCost)

		u, err := repo.FindUnit(ctx, f.TenantID, f.Dozen.ID)
		require.NoError(t, err)
		assert.True(t, u.BaseUnitMultiplier.Equal(decimal.NewFromInt(12)))
		require.NotNil(t, u.BaseUnitID)
		assert.Equal(t, f.Piece.ID, *u.BaseUnitID)
		assert.True(t, u.AppliesTo(v))

		l, err := repo.FindLocation(ctx, f.TenantID, f.Shop.ID)
		require.NoError(t, err)
		assert.True(t, l.IsActive)
	})

	t.Run("maps missing rows to typed not found errors", func(t *testing.T) {
		_, err := repo.FindProduct(ctx, f.TenantID, uuid.New())
		assert.ErrorIs(t, err, catalog.ErrProductNotFound)

		_, err = repo.FindVariation(ctx, f.TenantID, uuid.New())
		assert.ErrorIs(t, err, catalog.ErrVariationNotFound)

		_, err = repo.FindUnit(ctx, f.TenantID, uuid.New())
		assert.ErrorIs(t, err, catalog.ErrUnitNotFound)

		_, err = repo.FindLocation(ctx, f.TenantID, uuid.New())
		assert.ErrorIs(t, err, catalog.ErrLocationNotFound)
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("does not leak across tenants", func(t *testing.T) {
		_, err := repo.FindVariation(ctx, uuid.New(), f.Variation.ID)
		assert.ErrorIs(t, err, catalog.ErrVariationNotFound)
	})

	t.Run("batch lookups return the existing subset", func(t *testing.T) {
		missing := uuid.New()
		locations, err := repo.FindLocationsByIDs(ctx, f.TenantID, []uuid.UUID{f.Shop.ID, f.Backroom.ID, missing})
		require.NoError(t, err)
		assert.Len(t, locations, 2)
		assert.Equal(t, "Back room", locations[f.Backroom.ID].Name)
		assert.NotContains(t, locations, missing)

		variations, err := repo.FindVariationsByIDs(ctx, f.TenantID, nil)
		require.NoError(t, err)
		assert.Empty(t, variations)

		products, err := repo.FindProductsByIDs(ctx, f.TenantID, []uuid.UUID{f.Product.ID})
		require.NoError(t, err)
		assert.Contains(t, products, f.Product.ID)
	})
}

func TestMasterDataRepository_SaveUpdates(t *testing.T) {
	db := setupTestDB(t)
	f := seedCatalog(t, db)
	repo := NewGormMasterDataRepository(db)
	ctx := context.Background()

	cost := decimal.RequireFromString("12.50")
	require.NoError(t, f.Variation.SetDefaultCost(&cost))
	require.NoError(t, repo.SaveVariation(ctx, f.Variation))

	f.Backroom.IsActive = false
	require.NoError(t, repo.SaveLocation(ctx, f.Backroom))

	v, err := repo.FindVariation(ctx, f.TenantID, f.Variation.ID)
	require.NoError(t, err)
	require.NotNil(t, v.DefaultCost)
	assert.True(t, v.DefaultCost.Equal(cost))

	l, err := repo.FindLocation(ctx, f.TenantID, f.Backroom.ID)
	require.NoError(t, err)
	assert.False(t, l.IsActive)
}
