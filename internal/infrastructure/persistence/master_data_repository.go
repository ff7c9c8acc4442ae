package persistence

import (
	"context"
	"errors"

	"github.com/boutique/backoffice/internal/domain/catalog"
	"github.com/boutique/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMasterDataRepository implements catalog.MasterDataRepository using GORM
type GormMasterDataRepository struct {
	db *gorm.DB
}

// NewGormMasterDataRepository creates a new GormMasterDataRepository
func NewGormMasterDataRepository(db *gorm.DB) *GormMasterDataRepository {
	return &GormMasterDataRepository{db: db}
}

// FindProduct finds a product by ID within a tenant
func (r *GormMasterDataRepository) FindProduct(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.findOne(ctx, &model, tenantID, id); err != nil {
		return nil, notFoundAs(err, catalog.ErrProductNotFound)
	}
	return model.ToDomain(), nil
}

// FindVariation finds a variation by ID within a tenant
func (r *GormMasterDataRepository) FindVariation(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Variation, error) {
	var model models.VariationModel
	if err := r.findOne(ctx, &model, tenantID, id); err != nil {
		return nil, notFoundAs(err, catalog.ErrVariationNotFound)
	}
	return model.ToDomain(), nil
}

// FindUnit finds a unit by ID within a tenant
func (r *GormMasterDataRepository) FindUnit(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Unit, error) {
	var model models.UnitModel
	if err := r.findOne(ctx, &model, tenantID, id); err != nil {
		return nil, notFoundAs(err, catalog.ErrUnitNotFound)
	}
	return model.ToDomain(), nil
}

// FindLocation finds a location by ID within a tenant
func (r *GormMasterDataRepository) FindLocation(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Location, error) {
	var model models.LocationModel
	if err := r.findOne(ctx, &model, tenantID, id); err != nil {
		return nil, notFoundAs(err, catalog.ErrLocationNotFound)
	}
	return model.ToDomain(), nil
}

// FindProductsByIDs finds products by IDs within a tenant
func (r *GormMasterDataRepository) FindProductsByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*catalog.Product, error) {
	result := make(map[uuid.UUID]*catalog.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []models.ProductModel
	if err := r.findMany(ctx, &rows, tenantID, ids); err != nil {
		return nil, wrapStorage("find products", err)
	}
	for i := range rows {
		result[rows[i].ID] = rows[i].ToDomain()
	}
	return result, nil
}

// FindVariationsByIDs finds variations by IDs within a tenant
func (r *GormMasterDataRepository) FindVariationsByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*catalog.Variation, error) {
	result := make(map[uuid.UUID]*catalog.Variation, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []models.VariationModel
	if err := r.findMany(ctx, &rows, tenantID, ids); err != nil {
		return nil, wrapStorage("find variations", err)
	}
	for i := range rows {
		result[rows[i].ID] = rows[i].ToDomain()
	}
	return result, nil
}

// FindLocationsByIDs finds locations by IDs within a tenant
func (r *GormMasterDataRepository) FindLocationsByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*catalog.Location, error) {
	result := make(map[uuid.UUID]*catalog.Location, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []models.LocationModel
	if err := r.findMany(ctx, &rows, tenantID, ids); err != nil {
		return nil, wrapStorage("find locations", err)
	}
	for i := range rows {
		result[rows[i].ID] = rows[i].ToDomain()
	}
	return result, nil
}

// SaveProduct creates or updates a product
func (r *GormMasterDataRepository) SaveProduct(ctx context.Context, p *catalog.Product) error {
	return wrapStorage("save product", r.db.WithContext(ctx).Save(models.ProductModelFromDomain(p)).Error)
}

// SaveVariation creates or updates a variation
func (r *GormMasterDataRepository) SaveVariation(ctx context.Context, v *catalog.Variation) error {
	return wrapStorage("save variation", r.db.WithContext(ctx).Save(models.VariationModelFromDomain(v)).Error)
}

// SaveUnit creates or updates a unit
func (r *GormMasterDataRepository) SaveUnit(ctx context.Context, u *catalog.Unit) error {
	return wrapStorage("save unit", r.db.WithContext(ctx).Save(models.UnitModelFromDomain(u)).Error)
}

// SaveLocation creates or updates a location
func (r *GormMasterDataRepository) SaveLocation(ctx context.Context, l *catalog.Location) error {
	return wrapStorage("save location", r.db.WithContext(ctx).Save(models.LocationModelFromDomain(l)).Error)
}

func (r *GormMasterDataRepository) findOne(ctx context.Context, dest any, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(dest).Error
}

func (r *GormMasterDataRepository) findMany(ctx context.Context, dest any, tenantID uuid.UUID, ids []uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(dest).Error
}

// Ensure GormMasterDataRepository implements catalog.MasterDataRepository
var _ catalog.MasterDataRepository = (*GormMasterDataRepository)(nil)

// notFoundAs maps gorm.ErrRecordNotFound to the given domain error and any
// other failure to a storage error.
func notFoundAs(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return wrapStorage("query", err)
}
