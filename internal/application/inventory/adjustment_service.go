package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boutique/backoffice/internal/domain/catalog"
	"github.com/boutique/backoffice/internal/domain/inventory"
	"github.com/boutique/backoffice/internal/domain/ledger"
	"github.com/boutique/backoffice/internal/domain/shared"
	"github.com/boutique/backoffice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultMaxRetries bounds how often a batch is replayed after a concurrency conflict
const DefaultMaxRetries = 3

// AdjustmentServiceConfig holds the tunables of the adjustment service
type AdjustmentServiceConfig struct {
	OverdraftPolicy inventory.OverdraftPolicy
	MaxRetries      int
}

// AdjustmentService applies stock adjustment batches and answers on-hand
// quantity lookups.
type AdjustmentService struct {
	masterData catalog.MasterDataRepository
	stockRepo  inventory.StockRecordRepository
	txScope    TransactionScope
	mutator    *inventory.StockMutator
	maxRetries int

	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration

	metrics *telemetry.EngineMetrics
	logger  *zap.Logger
}

// NewAdjustmentService creates a new AdjustmentService
func NewAdjustmentService(
	masterData catalog.MasterDataRepository,
	stockRepo inventory.StockRecordRepository,
	txScope TransactionScope,
	cfg AdjustmentServiceConfig,
	logger *zap.Logger,
) *AdjustmentService {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdjustmentService{
		masterData: masterData,
		stockRepo:  stockRepo,
		txScope:    txScope,
		mutator:    inventory.NewStockMutator(cfg.OverdraftPolicy),
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
}

// SetIdempotencyStore enables rejection of replayed submission keys
func (s *AdjustmentService) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	s.idempotency = store
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyTTL
	}
	s.idempotencyTTL = ttl
}

// SetEngineMetrics sets the metrics recorder (optional)
func (s *AdjustmentService) SetEngineMetrics(m *telemetry.EngineMetrics) {
	s.metrics = m
}

// OverdraftPolicy returns the policy decreases are applied with
func (s *AdjustmentService) OverdraftPolicy() inventory.OverdraftPolicy {
	return s.mutator.Policy()
}

// plannedItem is a validated item with its base-unit quantity resolved
type plannedItem struct {
	index   int
	item    inventory.AdjustmentItem
	baseQty decimal.Decimal
}

// ApplyAdjustmentBatch validates every item, then applies the whole batch in
// one storage transaction: conditional stock updates plus a final
// stock_adjustment entry carrying one audit line per item. Any failure leaves
// stock and ledger untouched. Concurrency conflicts replay the batch up to
// the configured number of attempts.
func (s *AdjustmentService) ApplyAdjustmentBatch(ctx context.Context, tenantID uuid.UUID, req AdjustmentBatchRequest) (result *AdjustmentResult, err error) {
	items := req.ToDomain()
	ctx, span := telemetry.StartServiceSpan(ctx, "adjustment", "apply_batch",
		telemetry.SpanAttrTenantID, tenantID,
		telemetry.SpanAttrItemCount, len(items),
		telemetry.SpanAttrPolicy, string(s.mutator.Policy()))
	defer func() { telemetry.EndSpan(span, err) }()

	if len(items) == 0 {
		s.recordBatch(ctx, tenantID, telemetry.BatchResultEmpty)
		return &AdjustmentResult{Success: true, Items: []AppliedAdjustment{}}, nil
	}

	if err := inventory.ValidateAdjustmentItems(items); err != nil {
		s.recordBatch(ctx, tenantID, telemetry.BatchResultRejected)
		return nil, err
	}

	plan, err := s.planItems(ctx, tenantID, items)
	if err != nil {
		s.recordBatch(ctx, tenantID, telemetry.BatchResultRejected)
		return nil, err
	}

	if req.IdempotencyKey != "" && s.idempotency != nil {
		key := idempotencyKey(tenantID, req.IdempotencyKey)
		fresh, markErr := s.idempotency.MarkProcessed(ctx, key, s.idempotencyTTL)
		if markErr != nil {
			return nil, shared.NewStorageError("idempotency check failed", markErr)
		}
		if !fresh {
			s.recordBatch(ctx, tenantID, telemetry.BatchResultRejected)
			return nil, shared.ErrAlreadyExists.WithMessage("Adjustment batch with this idempotency key was already submitted")
		}
		defer func() {
			if err == nil {
				return
			}
			if relErr := s.idempotency.Release(context.WithoutCancel(ctx), key); relErr != nil {
				s.logger.Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(relErr))
			}
		}()
	}

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		result, err = s.applyOnce(ctx, tenantID, req, plan)
		if err == nil || !shared.IsConcurrencyConflict(err) {
			break
		}
		telemetry.AddEvent(span, "concurrency_conflict", telemetry.SpanAttrAttempt, attempt)
		s.logger.Warn("Adjustment batch lost a concurrent update, retrying",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", s.maxRetries))
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = shared.NewStorageError("adjustment batch cancelled", ctxErr)
			break
		}
	}
	if err != nil {
		s.recordBatch(ctx, tenantID, telemetry.BatchResultFailed)
		s.logger.Error("Adjustment batch failed",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("items", len(plan)),
			zap.Error(err))
		return nil, err
	}

	s.recordBatch(ctx, tenantID, telemetry.BatchResultApplied)
	for _, applied := range result.Items {
		if s.metrics != nil {
			s.metrics.RecordAdjustmentItem(ctx, tenantID, applied.Direction)
		}
		if applied.Overdraft.IsPositive() {
			s.logger.Warn("Decrease exceeded stock on hand, floored at zero",
				zap.String("tenant_id", tenantID.String()),
				zap.String("variation_id", applied.VariationID.String()),
				zap.String("location_id", applied.LocationID.String()),
				zap.String("requested", applied.BaseQuantity.String()),
				zap.String("discarded", applied.Overdraft.String()),
				zap.String("transaction_id", result.TransactionID.String()))
			if s.metrics != nil {
				s.metrics.RecordOverdraftClamped(ctx, tenantID, applied.LocationID)
			}
		}
	}
	s.logger.Info("Adjustment batch applied",
		zap.String("tenant_id", tenantID.String()),
		zap.String("transaction_id", result.TransactionID.String()),
		zap.Int("items", len(result.Items)))
	return result, nil
}

// planItems resolves master data and converts every quantity to base units.
// A variation, location or unit that does not exist rejects the whole batch.
func (s *AdjustmentService) planItems(ctx context.Context, tenantID uuid.UUID, items []inventory.AdjustmentItem) ([]plannedItem, error) {
	variations := make(map[uuid.UUID]*catalog.Variation)
	units := make(map[uuid.UUID]*catalog.Unit)
	locations := make(map[uuid.UUID]bool)

	plan := make([]plannedItem, 0, len(items))
	for idx, item := range items {
		variation, ok := variations[item.VariationID]
		if !ok {
			v, err := s.masterData.FindVariation(ctx, tenantID, item.VariationID)
			if err != nil {
				return nil, itemError(err, idx, "variation_id")
			}
			variation = v
			variations[item.VariationID] = v
		}

		if !locations[item.LocationID] {
			if _, err := s.masterData.FindLocation(ctx, tenantID, item.LocationID); err != nil {
				return nil, itemError(err, idx, "location_id")
			}
			locations[item.LocationID] = true
		}

		unit, ok := units[item.UnitID]
		if !ok {
			u, err := s.masterData.FindUnit(ctx, tenantID, item.UnitID)
			if err != nil {
				return nil, itemError(err, idx, "unit_id")
			}
			unit = u
			units[item.UnitID] = u
		}
		if !unit.AppliesTo(variation) {
			return nil, shared.ErrInvalidUnit.
				WithMessage(fmt.Sprintf("Unit %s does not apply to variation %s", unit.Name, variation.Name)).
				WithDetails([]shared.FieldError{{ItemIndex: idx, Field: "unit_id", Message: "unit does not apply to variation"}})
		}

		vo, err := unit.ValueObject()
		if err != nil {
			return nil, itemError(err, idx, "unit_id")
		}
		baseQty, err := vo.ToBaseUnits(item.Quantity)
		if err != nil {
			return nil, itemError(err, idx, "quantity")
		}
		if !inventory.FitsQuantityScale(baseQty) {
			return nil, ledger.ErrInvalidQuantity.
				WithMessage(fmt.Sprintf("Quantity %s %s is %s base units, more than %d decimal places",
					item.Quantity, unit.Name, baseQty, inventory.QuantityScale)).
				WithDetails([]shared.FieldError{{ItemIndex: idx, Field: "quantity", Message: "base quantity exceeds stored precision"}})
		}
		plan = append(plan, plannedItem{index: idx, item: item, baseQty: baseQty})
	}
	return plan, nil
}

// applyOnce runs a single attempt of the batch inside one transaction
func (s *AdjustmentService) applyOnce(ctx context.Context, tenantID uuid.UUID, req AdjustmentBatchRequest, plan []plannedItem) (*AdjustmentResult, error) {
	var result *AdjustmentResult

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		tx, err := ledger.NewTransaction(tenantID, ledger.TransactionTypeStockAdjustment, req.Date)
		if err != nil {
			return err
		}
		if err := tx.SetReference(req.Reference, req.Note); err != nil {
			return err
		}

		applied := make([]AppliedAdjustment, 0, len(plan))
		for _, p := range plan {
			change, err := s.mutator.Apply(ctx, repos.StockRepo(), p.item.Key(tenantID), p.baseQty, p.item.Direction)
			if err != nil {
				return itemError(err, p.index, "quantity")
			}
			line, err := tx.AddAdjustmentLine(ledger.AdjustmentLine{
				VariationID:       p.item.VariationID,
				LocationID:        p.item.LocationID,
				UnitID:            p.item.UnitID,
				Quantity:          p.item.Quantity,
				Direction:         p.item.Direction,
				Reason:            p.item.Reason,
				BaseQuantityDelta: change.Delta,
				Overdraft:         change.Overdraft,
			})
			if err != nil {
				return err
			}
			applied = append(applied, AppliedAdjustment{
				Index:        p.index,
				LineID:       line.ID,
				VariationID:  p.item.VariationID,
				LocationID:   p.item.LocationID,
				Direction:    p.item.Direction.String(),
				Quantity:     p.item.Quantity,
				BaseQuantity: p.baseQty,
				AppliedDelta: change.Delta,
				Overdraft:    change.Overdraft,
			})
		}

		if err := tx.Finalize(); err != nil {
			return err
		}
		if err := repos.LedgerRepo().CreateWithLines(ctx, tx); err != nil {
			return err
		}

		txID := tx.ID
		result = &AdjustmentResult{Success: true, TransactionID: &txID, Items: applied}
		return nil
	})
	if err != nil {
		return nil, asDomainError(err)
	}
	return result, nil
}

// GetQuantity returns the on-hand quantity of a variation at a location.
// A missing record reads as zero once both master data rows exist.
func (s *AdjustmentService) GetQuantity(ctx context.Context, tenantID, variationID, locationID uuid.UUID) (*StockQuantityResponse, error) {
	key := inventory.StockKey{TenantID: tenantID, VariationID: variationID, LocationID: locationID}
	record, err := s.stockRepo.FindByKey(ctx, key)
	if err == nil {
		updated := record.UpdatedAt
		return &StockQuantityResponse{
			VariationID:  variationID,
			LocationID:   locationID,
			QtyAvailable: record.QtyAvailable,
			Version:      record.Version,
			UpdatedAt:    &updated,
		}, nil
	}
	if !shared.IsNotFound(err) {
		return nil, err
	}

	if _, err := s.masterData.FindVariation(ctx, tenantID, variationID); err != nil {
		return nil, err
	}
	if _, err := s.masterData.FindLocation(ctx, tenantID, locationID); err != nil {
		return nil, err
	}
	return &StockQuantityResponse{
		VariationID:  variationID,
		LocationID:   locationID,
		QtyAvailable: decimal.Zero,
	}, nil
}

func (s *AdjustmentService) recordBatch(ctx context.Context, tenantID uuid.UUID, result telemetry.BatchResult) {
	if s.metrics != nil {
		s.metrics.RecordAdjustmentBatch(ctx, tenantID, result)
	}
}

func idempotencyKey(tenantID uuid.UUID, key string) string {
	return "adjustment:" + tenantID.String() + ":" + key
}

// itemError attaches the failing item position to a domain error
func itemError(err error, idx int, field string) error {
	var de *shared.DomainError
	if !errors.As(err, &de) || de.Kind == shared.KindStorage || de.Kind == shared.KindConflict {
		return err
	}
	return de.WithDetails([]shared.FieldError{{ItemIndex: idx, Field: field, Message: de.Message}})
}

// asDomainError wraps anything that is not already classified as a storage error
func asDomainError(err error) error {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	return shared.NewStorageError("adjustment batch failed", err)
}
