package inventory

import (
	"context"
	"fmt"

	"github.com/boutique/backoffice/internal/domain/ledger"
	"github.com/boutique/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AppliedChange is what a mutation actually did to a stock record.
// Delta is signed and in base units; Overdraft is the part of a decrease that
// was discarded by the clamp policy.
type AppliedChange struct {
	Delta     decimal.Decimal
	Overdraft decimal.Decimal
}

// Clamped reports whether part of the requested decrease was discarded
func (c AppliedChange) Clamped() bool {
	return c.Overdraft.IsPositive()
}

// StockMutator applies base-unit deltas to stock records under an overdraft
// policy. It must run inside the same storage transaction as the audit line
// insertion.
type StockMutator struct {
	policy OverdraftPolicy
}

// NewStockMutator creates a mutator. An invalid policy falls back to the default.
func NewStockMutator(policy OverdraftPolicy) *StockMutator {
	if !policy.IsValid() {
		policy = DefaultOverdraftPolicy
	}
	return &StockMutator{policy: policy}
}

// Policy returns the configured overdraft policy
func (m *StockMutator) Policy() OverdraftPolicy {
	return m.policy
}

// Apply moves qty_available of key by baseQty (> 0) in the given direction.
//
// Increases and covered decreases are single conditional UPDATEs evaluated by
// the database. An uncovered decrease either fails (reject) or, under clamp,
// locks the row and compare-and-sets it to zero. A concurrent writer that
// slips in between surfaces as shared.ErrConcurrencyConflict.
func (m *StockMutator) Apply(
	ctx context.Context,
	repo StockRecordRepository,
	key StockKey,
	baseQty decimal.Decimal,
	direction ledger.Direction,
) (AppliedChange, error) {
	if !baseQty.IsPositive() {
		return AppliedChange{}, ledger.ErrInvalidQuantity
	}
	if err := repo.EnsureExists(ctx, key); err != nil {
		return AppliedChange{}, err
	}

	switch direction {
	case ledger.DirectionIncrease:
		if err := repo.Increase(ctx, key, baseQty); err != nil {
			return AppliedChange{}, err
		}
		return AppliedChange{Delta: baseQty, Overdraft: decimal.Zero}, nil

	case ledger.DirectionDecrease:
		ok, err := repo.DecreaseIfAvailable(ctx, key, baseQty)
		if err != nil {
			return AppliedChange{}, err
		}
		if ok {
			return AppliedChange{Delta: baseQty.Neg(), Overdraft: decimal.Zero}, nil
		}
		return m.applyOverdraft(ctx, repo, key, baseQty)

	default:
		return AppliedChange{}, ledger.ErrInvalidDirection
	}
}

func (m *StockMutator) applyOverdraft(
	ctx context.Context,
	repo StockRecordRepository,
	key StockKey,
	baseQty decimal.Decimal,
) (AppliedChange, error) {
	current, err := repo.LockQuantity(ctx, key)
	if err != nil {
		return AppliedChange{}, err
	}
	if current.GreaterThanOrEqual(baseQty) {
		// Stock arrived between the conditional update and the lock.
		return AppliedChange{}, shared.ErrConcurrencyConflict
	}

	if m.policy == OverdraftReject {
		return AppliedChange{}, shared.ErrInsufficientStock.WithMessage(fmt.Sprintf(
			"Insufficient stock for variation %s at location %s: available %s, requested %s",
			key.VariationID, key.LocationID, current.String(), baseQty.String()))
	}

	if err := repo.CompareAndSet(ctx, key, current, decimal.Zero); err != nil {
		return AppliedChange{}, err
	}
	return AppliedChange{Delta: current.Neg(), Overdraft: baseQty.Sub(current)}, nil
}
