package models

import (
	"time"

	"github.com/boutique/backoffice/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionModel is the persistence model for the ledger Transaction aggregate.
type TransactionModel struct {
	TenantAggregateModel
	Type            ledger.TransactionType   `gorm:"type:varchar(30);not null;index:idx_transaction_type_date,priority:1"`
	Status          ledger.TransactionStatus `gorm:"type:varchar(20);not null"`
	TransactionDate time.Time                `gorm:"not null;index:idx_transaction_type_date,priority:2"`
	Reference       string                   `gorm:"type:varchar(100)"`
	Note            string                   `gorm:"type:text"`
	FinalizedAt     *time.Time
	Lines           []LineItemModel `gorm:"foreignKey:TransactionID"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction aggregate.
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	tx := &ledger.Transaction{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Type:                m.Type,
		Status:              m.Status,
		TransactionDate:     m.TransactionDate,
		Reference:           m.Reference,
		Note:                m.Note,
		FinalizedAt:         m.FinalizedAt,
		Lines:               make([]ledger.LineItem, 0, len(m.Lines)),
	}
	for i := range m.Lines {
		tx.Lines = append(tx.Lines, m.Lines[i].ToDomain())
	}
	return tx
}

// FromDomain populates the persistence model from a domain Transaction aggregate.
func (m *TransactionModel) FromDomain(tx *ledger.Transaction) {
	m.FromDomainTenantAggregateRoot(tx.TenantAggregateRoot)
	m.Type = tx.Type
	m.Status = tx.Status
	m.TransactionDate = tx.TransactionDate
	m.Reference = tx.Reference
	m.Note = tx.Note
	m.FinalizedAt = tx.FinalizedAt
	m.Lines = make([]LineItemModel, 0, len(tx.Lines))
	for i := range tx.Lines {
		m.Lines = append(m.Lines, *LineItemModelFromDomain(&tx.Lines[i]))
	}
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction aggregate.
func TransactionModelFromDomain(tx *ledger.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(tx)
	return m
}

// LineItemModel is the persistence model for a ledger line.
type LineItemModel struct {
	BaseModel
	TransactionID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	TenantID          uuid.UUID        `gorm:"type:uuid;not null;index"`
	VariationID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	LocationID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	UnitID            uuid.UUID        `gorm:"type:uuid;not null"`
	Quantity          decimal.Decimal  `gorm:"type:decimal(22,4);not null"`
	UnitPrice         decimal.Decimal  `gorm:"type:decimal(22,4);not null;default:0"`
	LineTotal         decimal.Decimal  `gorm:"type:decimal(22,4);not null;default:0"`
	Direction         ledger.Direction `gorm:"type:varchar(10)"`
	Reason            string           `gorm:"type:varchar(255)"`
	BaseQuantityDelta decimal.Decimal  `gorm:"type:decimal(22,4);not null;default:0"`
	Overdraft         decimal.Decimal  `gorm:"type:decimal(22,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (LineItemModel) TableName() string {
	return "transaction_lines"
}

// ToDomain converts the persistence model to a domain LineItem.
func (m *LineItemModel) ToDomain() ledger.LineItem {
	return ledger.LineItem{
		BaseEntity:        m.BaseModel.ToDomain(),
		TransactionID:     m.TransactionID,
		TenantID:          m.TenantID,
		VariationID:       m.VariationID,
		LocationID:        m.LocationID,
		UnitID:            m.UnitID,
		Quantity:          m.Quantity,
		UnitPrice:         m.UnitPrice,
		LineTotal:         m.LineTotal,
		Direction:         m.Direction,
		Reason:            m.Reason,
		BaseQuantityDelta: m.BaseQuantityDelta,
		Overdraft:         m.Overdraft,
	}
}

// FromDomain populates the persistence model from a domain LineItem.
func (m *LineItemModel) FromDomain(l *ledger.LineItem) {
	m.FromDomainBaseEntity(l.BaseEntity)
	m.TransactionID = l.TransactionID
	m.TenantID = l.TenantID
	m.VariationID = l.VariationID
	m.LocationID = l.LocationID
	m.UnitID = l.UnitID
	m.Quantity = l.Quantity
	m.UnitPrice = l.UnitPrice
	m.LineTotal = l.LineTotal
	m.Direction = l.Direction
	m.Reason = l.Reason
	m.BaseQuantityDelta = l.BaseQuantityDelta
	m.Overdraft = l.Overdraft
}

// LineItemModelFromDomain creates a new persistence model from a domain LineItem.
func LineItemModelFromDomain(l *ledger.LineItem) *LineItemModel {
	m := &LineItemModel{}
	m.FromDomain(l)
	return m
}
