package inventory

import (
	"context"

	"github.com/boutique/backoffice/internal/domain/inventory"
	"github.com/boutique/backoffice/internal/domain/ledger"
)

// TransactionScope provides transactional access to the stock and ledger
// repositories. When a function is executed within a transaction scope, all
// repository operations are part of the same database transaction and are
// committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories an adjustment
// batch writes to. All repositories returned share the same underlying
// database transaction.
//
//   - StockRepo: conditional updates of stock records. No read-then-write.
//   - LedgerRepo: append-only store of the audit entry and its lines.
type TransactionalRepositories interface {
	// StockRepo returns the stock record repository scoped to the current transaction
	StockRepo() inventory.StockRecordRepository
	// LedgerRepo returns the ledger repository scoped to the current transaction
	LedgerRepo() ledger.LedgerRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	stockRepo  inventory.StockRecordRepository
	ledgerRepo ledger.LedgerRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(stockRepo inventory.StockRecordRepository, ledgerRepo ledger.LedgerRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		stockRepo:  stockRepo,
		ledgerRepo: ledgerRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// StockRepo returns the stock record repository.
func (s *NoOpTransactionScope) StockRepo() inventory.StockRecordRepository {
	return s.stockRepo
}

// LedgerRepo returns the ledger repository.
func (s *NoOpTransactionScope) LedgerRepo() ledger.LedgerRepository {
	return s.ledgerRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
