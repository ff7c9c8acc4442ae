package strategy

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostMethod represents the cost basis method
type CostMethod string

const (
	// CostMethodLastPurchase uses the most recent positive purchase price.
	CostMethodLastPurchase CostMethod = "last_purchase"
	// CostMethodWeightedAverage averages every positive purchase price by quantity.
	CostMethodWeightedAverage CostMethod = "weighted_average"
)

// String returns the string representation of the cost method
func (m CostMethod) String() string {
	return string(m)
}

// PurchaseHistory is the slice of the ledger a cost basis strategy may read.
type PurchaseHistory interface {
	// LatestPositivePrice returns the price of the newest final purchase line
	// with price > 0, and false when there is none.
	LatestPositivePrice(ctx context.Context, tenantID, variationID uuid.UUID) (decimal.Decimal, bool, error)
	// PositivePurchases returns up to limit final purchase lines with price > 0,
	// newest first, as (quantity, unit price) pairs.
	PositivePurchases(ctx context.Context, tenantID, variationID uuid.UUID, limit int) ([]PurchaseSample, error)
}

// PurchaseSample is one purchase observation
type PurchaseSample struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// CostContext identifies the variation being costed and its configured fallback
type CostContext struct {
	TenantID    uuid.UUID
	VariationID uuid.UUID
	DefaultCost *decimal.Decimal
}

// Fallback returns the variation default cost, or zero when absent.
func (c CostContext) Fallback() decimal.Decimal {
	if c.DefaultCost == nil {
		return decimal.Zero
	}
	return *c.DefaultCost
}

// CostBasisStrategy resolves the unit cost used to value stock and compute
// margin. Every implementation is a reporting estimate, not lot-level
// accounting. Results are never cached across calls.
type CostBasisStrategy interface {
	Strategy
	// Method returns the costing method used by this strategy
	Method() CostMethod
	// ResolveUnitCost returns a non-negative unit cost for the variation
	ResolveUnitCost(ctx context.Context, history PurchaseHistory, costCtx CostContext) (decimal.Decimal, error)
}
