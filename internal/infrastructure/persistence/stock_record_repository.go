package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/boutique/backoffice/internal/domain/catalog"
	"github.com/boutique/backoffice/internal/domain/inventory"
	"github.com/boutique/backoffice/internal/domain/shared"
	"github.com/boutique/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockRecordRepository implements inventory.StockRecordRepository using GORM.
// Every mutation is a single conditional UPDATE evaluated by the database.
// Results are re-rounded to inventory.QuantityScale so sqlite, which adds
// NUMERIC columns in floating point, lands on the same value as postgres.
type GormStockRecordRepository struct {
	db *gorm.DB
}

// NewGormStockRecordRepository creates a new GormStockRecordRepository
func NewGormStockRecordRepository(db *gorm.DB) *GormStockRecordRepository {
	return &GormStockRecordRepository{db: db}
}

// quantityExpr evaluates qty_available <op> delta at the stored scale
func quantityExpr(op string, delta decimal.Decimal) clause.Expr {
	return gorm.Expr(fmt.Sprintf("ROUND(qty_available %s ?, %d)", op, inventory.QuantityScale), delta)
}

func (r *GormStockRecordRepository) byKey(ctx context.Context, key inventory.StockKey) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.StockRecordModel{}).
		Where("tenant_id = ? AND variation_id = ? AND location_id = ?", key.TenantID, key.VariationID, key.LocationID)
}

// FindByKey returns the stock record of a variation at a location
func (r *GormStockRecordRepository) FindByKey(ctx context.Context, key inventory.StockKey) (*inventory.StockRecord, error) {
	var model models.StockRecordModel
	if err := r.byKey(ctx, key).First(&model).Error; err != nil {
		return nil, notFoundAs(err, shared.ErrNotFound)
	}
	return model.ToDomain(), nil
}

// EnsureExists inserts the zero record for key, ignoring an existing one.
// Concurrent callers race on the unique key, never on a read.
func (r *GormStockRecordRepository) EnsureExists(ctx context.Context, key inventory.StockKey) error {
	model := models.StockRecordModelFromDomain(inventory.NewStockRecord(key))
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "variation_id"}, {Name: "location_id"}},
			DoNothing: true,
		}).
		Create(model).Error
	return wrapStorage("ensure stock record", err)
}

// Increase adds delta to qty_available
func (r *GormStockRecordRepository) Increase(ctx context.Context, key inventory.StockKey, delta decimal.Decimal) error {
	result := r.byKey(ctx, key).Updates(map[string]any{
		"qty_available": quantityExpr("+", delta),
		"version":       gorm.Expr("version + 1"),
		"updated_at":    time.Now(),
	})
	if result.Error != nil {
		return wrapStorage("increase stock", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DecreaseIfAvailable subtracts delta only while qty_available >= delta
func (r *GormStockRecordRepository) DecreaseIfAvailable(ctx context.Context, key inventory.StockKey, delta decimal.Decimal) (bool, error) {
	result := r.byKey(ctx, key).
		Where("qty_available >= ?", delta).
		Updates(map[string]any{
			"qty_available": quantityExpr("-", delta),
			"version":       gorm.Expr("version + 1"),
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return false, wrapStorage("decrease stock", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// LockQuantity reads qty_available with SELECT ... FOR UPDATE. Dialects
// without row locks (sqlite) drop the locking clause.
func (r *GormStockRecordRepository) LockQuantity(ctx context.Context, key inventory.StockKey) (decimal.Decimal, error) {
	var model models.StockRecordModel
	err := r.byKey(ctx, key).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("qty_available").
		First(&model).Error
	if err != nil {
		return decimal.Zero, notFoundAs(err, shared.ErrNotFound)
	}
	return model.QtyAvailable, nil
}

// CompareAndSet writes newQty only if qty_available still equals expected
func (r *GormStockRecordRepository) CompareAndSet(ctx context.Context, key inventory.StockKey, expected, newQty decimal.Decimal) error {
	result := r.byKey(ctx, key).
		Where("qty_available = ?", expected).
		Updates(map[string]any{
			"qty_available": newQty,
			"version":       gorm.Expr("version + 1"),
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return wrapStorage("set stock", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// stockRecordRow is the flat scan target of the stock/master-data join
type stockRecordRow struct {
	models.StockRecordModel
	ProductID       uuid.UUID
	ProductName     string
	ProductSku      string
	VariationName   string
	VariationSubSku string
	LocationName    *string
}

func (row *stockRecordRow) toDomain() inventory.StockRecordView {
	view := inventory.StockRecordView{
		Record:  *row.StockRecordModel.ToDomain(),
		Product: catalog.ProductRef{ID: row.ProductID, Name: row.ProductName, SKU: row.ProductSku},
		Variation: catalog.VariationRef{
			ID:        row.VariationID,
			ProductID: row.ProductID,
			Name:      row.VariationName,
			SubSKU:    row.VariationSubSku,
		},
		Location: catalog.LocationRef{ID: row.LocationID},
	}
	if row.LocationName != nil {
		view.Location.Name = *row.LocationName
	}
	return view
}

// FindPage pages through a tenant's stock records with product, variation and
// location resolved. Pages are keyed on record id.
func (r *GormStockRecordRepository) FindPage(ctx context.Context, tenantID uuid.UUID, locationID *uuid.UUID, cursor shared.Cursor) ([]inventory.StockRecordView, error) {
	query := r.db.WithContext(ctx).
		Table("stock_records AS sr").
		Select(`sr.*,
			p.id AS product_id,
			p.name AS product_name,
			p.sku AS product_sku,
			v.name AS variation_name,
			v.sub_sku AS variation_sub_sku,
			l.name AS location_name`).
		Joins("JOIN variations AS v ON v.id = sr.variation_id").
		Joins("JOIN products AS p ON p.id = v.product_id").
		Joins("LEFT JOIN locations AS l ON l.id = sr.location_id").
		Where("sr.tenant_id = ?", tenantID)
	if locationID != nil {
		query = query.Where("sr.location_id = ?", *locationID)
	}
	query = applyCursor(query, "sr.id", cursor)

	var rows []stockRecordRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, wrapStorage("find stock records", err)
	}
	views := make([]inventory.StockRecordView, 0, len(rows))
	for i := range rows {
		views = append(views, rows[i].toDomain())
	}
	return views, nil
}

// Ensure GormStockRecordRepository implements inventory.StockRecordRepository
var _ inventory.StockRecordRepository = (*GormStockRecordRepository)(nil)
