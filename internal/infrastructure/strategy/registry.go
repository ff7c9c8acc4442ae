package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/boutique/backoffice/internal/domain/shared"
	"github.com/boutique/backoffice/internal/domain/shared/strategy"
	"github.com/boutique/backoffice/internal/infrastructure/strategy/cost"
)

// StrategyRegistry manages cost basis strategy registrations
type StrategyRegistry struct {
	mu             sync.RWMutex
	costStrategies map[string]strategy.CostBasisStrategy
	defaults       map[strategy.StrategyType]string
}

// NewStrategyRegistry creates a new strategy registry
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{
		costStrategies: make(map[string]strategy.CostBasisStrategy),
		defaults:       make(map[strategy.StrategyType]string),
	}
}

// NewRegistryWithDefaults registers the built-in cost strategies with
// last_purchase as the default. averageWindow bounds the purchase lines
// weighted_average considers; 0 means all of them.
func NewRegistryWithDefaults(averageWindow int) (*StrategyRegistry, error) {
	r := NewStrategyRegistry()

	if err := r.RegisterCostStrategy(cost.NewLastPurchaseCostStrategy()); err != nil {
		return nil, err
	}
	if err := r.RegisterCostStrategy(cost.NewWeightedAverageCostStrategy(averageWindow)); err != nil {
		return nil, err
	}
	if err := r.SetDefault(strategy.StrategyTypeCost, strategy.CostMethodLastPurchase.String()); err != nil {
		return nil, err
	}
	return r, nil
}

// RegisterCostStrategy registers a cost basis strategy
func (r *StrategyRegistry) RegisterCostStrategy(s strategy.CostBasisStrategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := s.Name()
	if _, exists := r.costStrategies[name]; exists {
		return fmt.Errorf("%w: cost strategy '%s' already registered", shared.ErrAlreadyExists, name)
	}
	r.costStrategies[name] = s
	return nil
}

// GetCostStrategy returns a cost strategy by name, or the default if name is empty
func (r *StrategyRegistry) GetCostStrategy(name string) (strategy.CostBasisStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.defaults[strategy.StrategyTypeCost]
		if name == "" {
			return nil, fmt.Errorf("%w: no default cost strategy set", shared.ErrNotFound)
		}
	}

	s, exists := r.costStrategies[name]
	if !exists {
		return nil, fmt.Errorf("%w: cost strategy '%s' not found", shared.ErrNotFound, name)
	}
	return s, nil
}

// ListCostStrategies returns all registered cost strategy names
func (r *StrategyRegistry) ListCostStrategies() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.costStrategies))
	for name := range r.costStrategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetDefault sets the default strategy for a strategy type
func (r *StrategyRegistry) SetDefault(strategyType strategy.StrategyType, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strategyType != strategy.StrategyTypeCost {
		return fmt.Errorf("%w: unsupported strategy type '%s'", shared.ErrInvalidInput, strategyType)
	}
	if _, exists := r.costStrategies[name]; !exists {
		return fmt.Errorf("%w: cost strategy '%s' not found", shared.ErrNotFound, name)
	}
	r.defaults[strategyType] = name
	return nil
}

// GetDefault returns the default strategy name for a strategy type
func (r *StrategyRegistry) GetDefault(strategyType strategy.StrategyType) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaults[strategyType]
}
