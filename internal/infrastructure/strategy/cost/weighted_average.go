package cost

import (
	"context"

	"github.com/boutique/backoffice/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// DefaultAverageWindow caps how many purchase lines feed the average
const DefaultAverageWindow = 1000

// WeightedAverageCostStrategy implements quantity-weighted average cost over
// recent positive-price purchases
type WeightedAverageCostStrategy struct {
	strategy.BaseStrategy
	window int
}

// NewWeightedAverageCostStrategy creates a new weighted average cost strategy.
// window bounds the number of purchase lines read; <= 0 uses DefaultAverageWindow.
func NewWeightedAverageCostStrategy(window int) *WeightedAverageCostStrategy {
	if window <= 0 {
		window = DefaultAverageWindow
	}
	return &WeightedAverageCostStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			string(strategy.CostMethodWeightedAverage),
			strategy.StrategyTypeCost,
			"Weighted average of positive purchase prices",
		),
		window: window,
	}
}

// Method returns the costing method
func (s *WeightedAverageCostStrategy) Method() strategy.CostMethod {
	return strategy.CostMethodWeightedAverage
}

// ResolveUnitCost returns sum(qty x price) / sum(qty), or the fallback when
// there is no usable purchase history
func (s *WeightedAverageCostStrategy) ResolveUnitCost(
	ctx context.Context,
	history strategy.PurchaseHistory,
	costCtx strategy.CostContext,
) (decimal.Decimal, error) {
	samples, err := history.PositivePurchases(ctx, costCtx.TenantID, costCtx.VariationID, s.window)
	if err != nil {
		return decimal.Zero, err
	}

	avg, ok := CalculateAverageCost(samples)
	if !ok {
		return nonNegative(costCtx.Fallback()), nil
	}
	return avg, nil
}

// CalculateAverageCost calculates the weighted average cost. It reports false
// when the samples carry no positive quantity.
func CalculateAverageCost(samples []strategy.PurchaseSample) (decimal.Decimal, bool) {
	totalQty := decimal.Zero
	totalCost := decimal.Zero

	for _, sample := range samples {
		if !sample.Quantity.IsPositive() || !sample.UnitPrice.IsPositive() {
			continue
		}
		totalQty = totalQty.Add(sample.Quantity)
		totalCost = totalCost.Add(sample.Quantity.Mul(sample.UnitPrice))
	}

	if totalQty.IsZero() {
		return decimal.Zero, false
	}
	return totalCost.DivRound(totalQty, 4), true
}
