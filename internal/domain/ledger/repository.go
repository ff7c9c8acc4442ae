package ledger

import (
	"context"
	"time"

	"github.com/boutique/backoffice/internal/domain/catalog"
	"github.com/boutique/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineQuery selects ledger lines by entry type and date window.
// DateFrom and DateTo are inclusive. AsOf, when set, hides lines written after
// the report started reading so that paging sees a stable snapshot.
type LineQuery struct {
	TenantID uuid.UUID
	Types    []TransactionType
	Status   TransactionStatus
	DateFrom time.Time
	DateTo   time.Time
	AsOf     time.Time
}

// LedgerLine is a line joined with its entry header and master data.
// Every one-to-one join is resolved into a typed nested record.
type LedgerLine struct {
	Line            LineItem
	TransactionType TransactionType
	TransactionDate time.Time
	Reference       string
	Note            string
	Product         catalog.ProductRef
	Variation       catalog.VariationRef
	Location        catalog.LocationRef
}

// PurchasePrice is one purchase line observation used for costing.
type PurchasePrice struct {
	LineID    uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	CreatedAt time.Time
}

// LedgerRepository is the durable, queryable store of entries and lines.
type LedgerRepository interface {
	// CreateWithLines inserts the entry and all of its lines atomically.
	CreateWithLines(ctx context.Context, tx *Transaction) error

	// FindByID loads an entry with its lines.
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Transaction, error)

	// FindLines pages through lines matching q ordered by line id.
	FindLines(ctx context.Context, q LineQuery, cursor shared.Cursor) ([]LedgerLine, error)

	// FindPurchasePrices pages through final purchase lines of a variation with
	// a positive price, newest first.
	FindPurchasePrices(ctx context.Context, tenantID, variationID uuid.UUID, limit int) ([]PurchasePrice, error)

	// FindLatestPositivePurchasePrice returns the price of the most recently
	// created final purchase line with price > 0 for the variation.
	FindLatestPositivePurchasePrice(ctx context.Context, tenantID, variationID uuid.UUID) (decimal.Decimal, bool, error)
}
