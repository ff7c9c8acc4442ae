package inventory

import (
	"context"

	"github.com/boutique/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockRecordRepository reads stock records and mutates them with atomic,
// server-side conditional updates. No method performs an unprotected
// read-then-write.
type StockRecordRepository interface {
	// FindByKey returns the record or shared.ErrNotFound.
	FindByKey(ctx context.Context, key StockKey) (*StockRecord, error)

	// EnsureExists lazily creates the zero record for key if it is missing.
	EnsureExists(ctx context.Context, key StockKey) error

	// Increase adds delta (> 0) to qty_available.
	Increase(ctx context.Context, key StockKey, delta decimal.Decimal) error

	// DecreaseIfAvailable subtracts delta when qty_available >= delta and
	// reports whether the row was updated.
	DecreaseIfAvailable(ctx context.Context, key StockKey, delta decimal.Decimal) (bool, error)

	// LockQuantity reads qty_available holding a row lock until the
	// surrounding transaction ends.
	LockQuantity(ctx context.Context, key StockKey) (decimal.Decimal, error)

	// CompareAndSet writes newQty only if qty_available still equals expected;
	// otherwise it returns shared.ErrConcurrencyConflict.
	CompareAndSet(ctx context.Context, key StockKey, expected, newQty decimal.Decimal) error

	// FindPage pages through a tenant's stock records, optionally for one location.
	FindPage(ctx context.Context, tenantID uuid.UUID, locationID *uuid.UUID, cursor shared.Cursor) ([]StockRecordView, error)
}
