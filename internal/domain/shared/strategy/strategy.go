package strategy

// StrategyType groups strategies the registry can hold.
type StrategyType string

const (
	StrategyTypeCost StrategyType = "cost"
)

// Strategy is implemented by every pluggable algorithm.
type Strategy interface {
	Name() string
	Type() StrategyType
	// Description is logged when the strategy is selected at startup.
	Description() string
}

// BaseStrategy holds the descriptive fields shared by strategies.
type BaseStrategy struct {
	name         string
	strategyType StrategyType
	description  string
}

func NewBaseStrategy(name string, strategyType StrategyType, description string) BaseStrategy {
	return BaseStrategy{name: name, strategyType: strategyType, description: description}
}

func (s BaseStrategy) Name() string        { return s.name }
func (s BaseStrategy) Type() StrategyType  { return s.strategyType }
func (s BaseStrategy) Description() string { return s.description }
