package report

import (
	"context"

	"github.com/boutique/backoffice/internal/domain/catalog"
	"github.com/boutique/backoffice/internal/domain/ledger"
	"github.com/boutique/backoffice/internal/domain/shared"
	"github.com/boutique/backoffice/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ledgerPurchaseHistory exposes the purchase side of the ledger to cost
// basis strategies.
type ledgerPurchaseHistory struct {
	repo ledger.LedgerRepository
}

// NewLedgerPurchaseHistory adapts a ledger repository to strategy.PurchaseHistory
func NewLedgerPurchaseHistory(repo ledger.LedgerRepository) strategy.PurchaseHistory {
	return &ledgerPurchaseHistory{repo: repo}
}

func (h *ledgerPurchaseHistory) LatestPositivePrice(ctx context.Context, tenantID, variationID uuid.UUID) (decimal.Decimal, bool, error) {
	return h.repo.FindLatestPositivePurchasePrice(ctx, tenantID, variationID)
}

func (h *ledgerPurchaseHistory) PositivePurchases(ctx context.Context, tenantID, variationID uuid.UUID, limit int) ([]strategy.PurchaseSample, error) {
	prices, err := h.repo.FindPurchasePrices(ctx, tenantID, variationID, limit)
	if err != nil {
		return nil, err
	}
	samples := make([]strategy.PurchaseSample, 0, len(prices))
	for _, p := range prices {
		samples = append(samples, strategy.PurchaseSample{Quantity: p.Quantity, UnitPrice: p.UnitPrice})
	}
	return samples, nil
}

// runCostResolver resolves unit costs for one report run. Each variation is
// costed at most once per run and the cache dies with the run.
type runCostResolver struct {
	tenantID   uuid.UUID
	strategy   strategy.CostBasisStrategy
	history    strategy.PurchaseHistory
	masterData catalog.MasterDataRepository
	costs      map[uuid.UUID]decimal.Decimal
}

func (s *ReportService) newCostResolver(tenantID uuid.UUID) *runCostResolver {
	return &runCostResolver{
		tenantID:   tenantID,
		strategy:   s.costStrategy,
		history:    s.history,
		masterData: s.masterData,
		costs:      make(map[uuid.UUID]decimal.Decimal),
	}
}

// UnitCost returns the unit cost of the variation in base units
func (r *runCostResolver) UnitCost(ctx context.Context, variationID uuid.UUID) (decimal.Decimal, error) {
	if cost, ok := r.costs[variationID]; ok {
		return cost, nil
	}

	costCtx := strategy.CostContext{TenantID: r.tenantID, VariationID: variationID}
	variation, err := r.masterData.FindVariation(ctx, r.tenantID, variationID)
	switch {
	case err == nil:
		costCtx.DefaultCost = variation.DefaultCost
	case !shared.IsNotFound(err):
		return decimal.Zero, err
	}

	cost, err := r.strategy.ResolveUnitCost(ctx, r.history, costCtx)
	if err != nil {
		return decimal.Zero, err
	}
	r.costs[variationID] = cost
	return cost, nil
}

// Resolved returns how many variations were costed in this run
func (r *runCostResolver) Resolved() int {
	return len(r.costs)
}
