package catalog

import (
	"context"

	"github.com/boutique/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Master data lookup failures
var (
	ErrProductNotFound   = shared.NewNotFoundError("PRODUCT_NOT_FOUND", "Product not found")
	ErrVariationNotFound = shared.NewNotFoundError("VARIATION_NOT_FOUND", "Variation not found")
	ErrUnitNotFound      = shared.NewNotFoundError("UNIT_NOT_FOUND", "Unit not found")
	ErrLocationNotFound  = shared.NewNotFoundError("LOCATION_NOT_FOUND", "Location not found")
)

// MasterDataRepository reads products, variations, units and locations.
// All lookups are tenant scoped.
type MasterDataRepository interface {
	FindProduct(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	FindVariation(ctx context.Context, tenantID, id uuid.UUID) (*Variation, error)
	FindUnit(ctx context.Context, tenantID, id uuid.UUID) (*Unit, error)
	FindLocation(ctx context.Context, tenantID, id uuid.UUID) (*Location, error)

	// Batch lookups return whatever subset exists, keyed by id.
	FindProductsByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*Product, error)
	FindVariationsByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*Variation, error)
	FindLocationsByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*Location, error)

	SaveProduct(ctx context.Context, p *Product) error
	SaveVariation(ctx context.Context, v *Variation) error
	SaveUnit(ctx context.Context, u *Unit) error
	SaveLocation(ctx context.Context, l *Location) error
}
