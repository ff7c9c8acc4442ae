package cost

import (
	"context"

	"github.com/boutique/backoffice/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// LastPurchaseCostStrategy uses the price of the most recently created
// purchase line with a positive price, then the variation default cost, then 0.
type LastPurchaseCostStrategy struct {
	strategy.BaseStrategy
}

// NewLastPurchaseCostStrategy creates a new last purchase price strategy
func NewLastPurchaseCostStrategy() *LastPurchaseCostStrategy {
	return &LastPurchaseCostStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			string(strategy.CostMethodLastPurchase),
			strategy.StrategyTypeCost,
			"Most recent positive purchase price, falling back to the variation default cost",
		),
	}
}

// Method returns the costing method
func (s *LastPurchaseCostStrategy) Method() strategy.CostMethod {
	return strategy.CostMethodLastPurchase
}

// ResolveUnitCost returns the last positive purchase price or the fallback
func (s *LastPurchaseCostStrategy) ResolveUnitCost(
	ctx context.Context,
	history strategy.PurchaseHistory,
	costCtx strategy.CostContext,
) (decimal.Decimal, error) {
	price, ok, err := history.LatestPositivePrice(ctx, costCtx.TenantID, costCtx.VariationID)
	if err != nil {
		return decimal.Zero, err
	}
	if ok && price.IsPositive() {
		return price, nil
	}
	return nonNegative(costCtx.Fallback()), nil
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
