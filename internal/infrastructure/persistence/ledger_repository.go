package persistence

import (
	"context"
	"time"

	"github.com/boutique/backoffice/internal/domain/catalog"
	"github.com/boutique/backoffice/internal/domain/ledger"
	"github.com/boutique/backoffice/internal/domain/shared"
	"github.com/boutique/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const lineInsertBatchSize = 100

// GormLedgerRepository implements ledger.LedgerRepository using GORM
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// CreateWithLines inserts the entry header and its lines in one transaction.
// Inside a TransactionScope this becomes a savepoint of the outer transaction.
func (r *GormLedgerRepository) CreateWithLines(ctx context.Context, tx *ledger.Transaction) error {
	model := models.TransactionModelFromDomain(tx)
	err := r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.Omit("Lines").Create(model).Error; err != nil {
			return err
		}
		if len(model.Lines) == 0 {
			return nil
		}
		return db.CreateInBatches(&model.Lines, lineInsertBatchSize).Error
	})
	return wrapStorage("create transaction", err)
}

// FindByID loads an entry with its lines
func (r *GormLedgerRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error
	if err != nil {
		return nil, notFoundAs(err, shared.ErrNotFound)
	}
	return model.ToDomain(), nil
}

// ledgerLineRow is the flat scan target of the line/header/master-data join
type ledgerLineRow struct {
	models.LineItemModel
	TransactionType ledger.TransactionType
	TransactionDate time.Time
	Reference       string
	Note            string
	ProductID       uuid.UUID
	ProductName     string
	ProductSku      string
	VariationName   string
	VariationSubSku string
	LocationName    *string
}

func (row *ledgerLineRow) toDomain() ledger.LedgerLine {
	out := ledger.LedgerLine{
		Line:            row.LineItemModel.ToDomain(),
		TransactionType: row.TransactionType,
		TransactionDate: row.TransactionDate,
		Reference:       row.Reference,
		Note:            row.Note,
		Product:         catalog.ProductRef{ID: row.ProductID, Name: row.ProductName, SKU: row.ProductSku},
		Variation: catalog.VariationRef{
			ID:        row.VariationID,
			ProductID: row.ProductID,
			Name:      row.VariationName,
			SubSKU:    row.VariationSubSku,
		},
		Location: catalog.LocationRef{ID: row.LocationID},
	}
	if row.LocationName != nil {
		out.Location.Name = *row.LocationName
	}
	return out
}

// FindLines pages through lines joined with their header, product, variation
// and location. Pages are keyed on line id.
func (r *GormLedgerRepository) FindLines(ctx context.Context, q ledger.LineQuery, cursor shared.Cursor) ([]ledger.LedgerLine, error) {
	query := r.db.WithContext(ctx).
		Table("transaction_lines AS tl").
		Select(`tl.*,
			t.type AS transaction_type,
			t.transaction_date AS transaction_date,
			t.reference AS reference,
			t.note AS note,
			p.id AS product_id,
			p.name AS product_name,
			p.sku AS product_sku,
			v.name AS variation_name,
			v.sub_sku AS variation_sub_sku,
			l.name AS location_name`).
		Joins("JOIN transactions AS t ON t.id = tl.transaction_id").
		Joins("JOIN variations AS v ON v.id = tl.variation_id").
		Joins("JOIN products AS p ON p.id = v.product_id").
		Joins("LEFT JOIN locations AS l ON l.id = tl.location_id").
		Where("tl.tenant_id = ?", q.TenantID)

	if len(q.Types) > 0 {
		query = query.Where("t.type IN ?", q.Types)
	}
	if q.Status != "" {
		query = query.Where("t.status = ?", q.Status)
	}
	if !q.DateFrom.IsZero() {
		query = query.Where("t.transaction_date >= ?", q.DateFrom)
	}
	if !q.DateTo.IsZero() {
		query = query.Where("t.transaction_date <= ?", q.DateTo)
	}
	if !q.AsOf.IsZero() {
		query = query.Where("tl.created_at <= ?", q.AsOf)
	}
	query = applyCursor(query, "tl.id", cursor)

	var rows []ledgerLineRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, wrapStorage("find ledger lines", err)
	}

	lines := make([]ledger.LedgerLine, 0, len(rows))
	for i := range rows {
		lines = append(lines, rows[i].toDomain())
	}
	return lines, nil
}

// FindPurchasePrices returns final purchase lines of a variation with a
// positive price, newest first.
func (r *GormLedgerRepository) FindPurchasePrices(ctx context.Context, tenantID, variationID uuid.UUID, limit int) ([]ledger.PurchasePrice, error) {
	var rows []ledger.PurchasePrice
	query := r.purchaseLines(ctx, tenantID, variationID).
		Select("tl.id AS line_id, tl.quantity AS quantity, tl.unit_price AS unit_price, tl.created_at AS created_at").
		Order("tl.created_at DESC, tl.id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, wrapStorage("find purchase prices", err)
	}
	return rows, nil
}

// FindLatestPositivePurchasePrice returns the unit price of the most recently
// created final purchase line with price > 0.
func (r *GormLedgerRepository) FindLatestPositivePurchasePrice(ctx context.Context, tenantID, variationID uuid.UUID) (decimal.Decimal, bool, error) {
	prices, err := r.FindPurchasePrices(ctx, tenantID, variationID, 1)
	if err != nil {
		return decimal.Zero, false, err
	}
	if len(prices) == 0 {
		return decimal.Zero, false, nil
	}
	return prices[0].UnitPrice, true, nil
}

func (r *GormLedgerRepository) purchaseLines(ctx context.Context, tenantID, variationID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("transaction_lines AS tl").
		Joins("JOIN transactions AS t ON t.id = tl.transaction_id").
		Where("tl.tenant_id = ? AND tl.variation_id = ?", tenantID, variationID).
		Where("t.type = ? AND t.status = ?", ledger.TransactionTypePurchase, ledger.TransactionStatusFinal).
		Where("tl.unit_price > 0")
}

// applyCursor restricts the query to the page after cursor.After ordered by column
func applyCursor(query *gorm.DB, column string, cursor shared.Cursor) *gorm.DB {
	if !cursor.IsFirst() {
		query = query.Where(column+" > ?", cursor.After)
	}
	query = query.Order(column)
	if cursor.Limit > 0 {
		query = query.Limit(cursor.Limit)
	}
	return query
}

// Ensure GormLedgerRepository implements ledger.LedgerRepository
var _ ledger.LedgerRepository = (*GormLedgerRepository)(nil)
