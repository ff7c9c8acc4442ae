package ledger

import (
	"strings"
	"time"

	"github.com/boutique/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the kind of ledger entry
type TransactionType string

const (
	TransactionTypeSell            TransactionType = "sell"
	TransactionTypePurchase        TransactionType = "purchase"
	TransactionTypeStockAdjustment TransactionType = "stock_adjustment"
)

// IsValid returns true if the transaction type is known
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeSell, TransactionTypePurchase, TransactionTypeStockAdjustment:
		return true
	}
	return false
}

// String returns the string representation
func (t TransactionType) String() string {
	return string(t)
}

// TransactionStatus is the lifecycle state of a ledger entry
type TransactionStatus string

const (
	TransactionStatusDraft TransactionStatus = "draft"
	TransactionStatusFinal TransactionStatus = "final"
)

// Direction is the sign of an adjustment line
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
)

// IsValid returns true if the direction is known
func (d Direction) IsValid() bool {
	return d == DirectionIncrease || d == DirectionDecrease
}

func (d Direction) String() string {
	return string(d)
}

// Sign returns 1 for increase and -1 for decrease
func (d Direction) Sign() decimal.Decimal {
	if d == DirectionDecrease {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// Ledger entry failures
var (
	ErrTransactionFinal = shared.NewStateError("TRANSACTION_FINAL", "Transaction is final and cannot be modified")
	ErrEmptyTransaction = shared.NewStateError("TRANSACTION_EMPTY", "Transaction has no lines")
	ErrInvalidType      = shared.NewValidationError("INVALID_TRANSACTION_TYPE", "Unknown transaction type")
)

// Transaction is an append-only ledger entry. Once final it is immutable.
type Transaction struct {
	shared.TenantAggregateRoot
	Type            TransactionType
	Status          TransactionStatus
	TransactionDate time.Time
	Reference       string
	Note            string
	FinalizedAt     *time.Time
	Lines           []LineItem
}

// NewTransaction creates a draft ledger entry
func NewTransaction(tenantID uuid.UUID, txType TransactionType, date time.Time) (*Transaction, error) {
	if !txType.IsValid() {
		return nil, ErrInvalidType
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &Transaction{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Type:                txType,
		Status:              TransactionStatusDraft,
		TransactionDate:     date,
		Lines:               make([]LineItem, 0),
	}, nil
}

// IsFinal returns true once the entry is committed
func (t *Transaction) IsFinal() bool {
	return t.Status == TransactionStatusFinal
}

// SetReference sets the business reference number and free-text note
func (t *Transaction) SetReference(reference, note string) error {
	if t.IsFinal() {
		return ErrTransactionFinal
	}
	t.Reference = strings.TrimSpace(reference)
	t.Note = strings.TrimSpace(note)
	return nil
}

// AddSaleLine appends a sell or purchase line priced per entered unit.
func (t *Transaction) AddSaleLine(variationID, locationID, unitID uuid.UUID, quantity, unitPrice decimal.Decimal) (*LineItem, error) {
	if t.Type == TransactionTypeStockAdjustment {
		return nil, shared.ErrInvalidState.WithMessage("Adjustment entries take adjustment lines")
	}
	if !quantity.IsPositive() {
		return nil, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("INVALID_PRICE", "Unit price cannot be negative")
	}
	line := t.newLine(variationID, locationID, unitID, quantity)
	line.UnitPrice = unitPrice
	line.LineTotal = quantity.Mul(unitPrice)
	return t.appendLine(line)
}

// AdjustmentLine describes an already-applied stock adjustment to record.
type AdjustmentLine struct {
	VariationID       uuid.UUID
	LocationID        uuid.UUID
	UnitID            uuid.UUID
	Quantity          decimal.Decimal
	Direction         Direction
	Reason            string
	BaseQuantityDelta decimal.Decimal
	Overdraft         decimal.Decimal
}

// AddAdjustmentLine appends an audit line for an adjustment
func (t *Transaction) AddAdjustmentLine(a AdjustmentLine) (*LineItem, error) {
	if t.Type != TransactionTypeStockAdjustment {
		return nil, shared.ErrInvalidState.WithMessage("Only adjustment entries take adjustment lines")
	}
	if !a.Quantity.IsPositive() {
		return nil, ErrInvalidQuantity
	}
	if !a.Direction.IsValid() {
		return nil, ErrInvalidDirection
	}
	reason := strings.TrimSpace(a.Reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	line := t.newLine(a.VariationID, a.LocationID, a.UnitID, a.Quantity)
	line.Direction = a.Direction
	line.Reason = reason
	line.BaseQuantityDelta = a.BaseQuantityDelta
	line.Overdraft = a.Overdraft
	return t.appendLine(line)
}

func (t *Transaction) newLine(variationID, locationID, unitID uuid.UUID, quantity decimal.Decimal) LineItem {
	return LineItem{
		BaseEntity:        shared.NewBaseEntity(),
		TransactionID:     t.ID,
		TenantID:          t.TenantID,
		VariationID:       variationID,
		LocationID:        locationID,
		UnitID:            unitID,
		Quantity:          quantity,
		UnitPrice:         decimal.Zero,
		LineTotal:         decimal.Zero,
		BaseQuantityDelta: decimal.Zero,
		Overdraft:         decimal.Zero,
	}
}

func (t *Transaction) appendLine(line LineItem) (*LineItem, error) {
	if t.IsFinal() {
		return nil, ErrTransactionFinal
	}
	t.Lines = append(t.Lines, line)
	t.UpdatedAt = time.Now()
	return &t.Lines[len(t.Lines)-1], nil
}

// Finalize commits the entry. A final entry must have at least one line.
func (t *Transaction) Finalize() error {
	if t.IsFinal() {
		return ErrTransactionFinal
	}
	if len(t.Lines) == 0 {
		return ErrEmptyTransaction
	}
	now := time.Now()
	t.Status = TransactionStatusFinal
	t.FinalizedAt = &now
	t.UpdatedAt = now
	return nil
}

// Total returns the sum of line totals
func (t *Transaction) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range t.Lines {
		total = total.Add(l.LineTotal)
	}
	return total
}
