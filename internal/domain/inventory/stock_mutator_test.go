package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/boutique/backoffice/internal/domain/ledger"
	"github.com/boutique/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStockRecordRepository struct {
	mock.Mock
}

func (m *MockStockRecordRepository) FindByKey(ctx context.Context, key StockKey) (*StockRecord, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*StockRecord), args.Error(1)
}

func (m *MockStockRecordRepository) EnsureExists(ctx context.Context, key StockKey) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockStockRecordRepository) Increase(ctx context.Context, key StockKey, delta decimal.Decimal) error {
	return m.Called(ctx, key, delta).Error(0)
}

func (m *MockStockRecordRepository) DecreaseIfAvailable(ctx context.Context, key StockKey, delta decimal.Decimal) (bool, error) {
	args := m.Called(ctx, key, delta)
	return args.Bool(0), args.Error(1)
}

func (m *MockStockRecordRepository) LockQuantity(ctx context.Context, key StockKey) (decimal.Decimal, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockStockRecordRepository) CompareAndSet(ctx context.Context, key StockKey, expected, newQty decimal.Decimal) error {
	return m.Called(ctx, key, expected, newQty).Error(0)
}

func (m *MockStockRecordRepository) FindPage(ctx context.Context, tenantID uuid.UUID, locationID *uuid.UUID, cursor shared.Cursor) ([]StockRecordView, error) {
	args := m.Called(ctx, tenantID, locationID, cursor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]StockRecordView), args.Error(1)
}

func decEq(v int64) interface{} {
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(v)) })
}

func newKey() StockKey {
	return StockKey{TenantID: uuid.New(), VariationID: uuid.New(), LocationID: uuid.New()}
}

func TestStockMutator_Increase(t *testing.T) {
	ctx := context.Background()
	key := newKey()
	repo := new(MockStockRecordRepository)
	repo.On("EnsureExists", ctx, key).Return(nil)
	repo.On("Increase", ctx, key, decEq(36)).Return(nil)

	change, err := NewStockMutator(OverdraftClamp).Apply(ctx, repo, key, decimal.NewFromInt(36), ledger.DirectionIncrease)
	require.NoError(t, err)
	assert.True(t, change.Delta.Equal(decimal.NewFromInt(36)))
	assert.False(t, change.Clamped())
	repo.AssertExpectations(t)
}

func TestStockMutator_CoveredDecrease(t *testing.T) {
	ctx := context.Background()
	key := newKey()
	repo := new(MockStockRecordRepository)
	repo.On("EnsureExists", ctx, key).Return(nil)
	repo.On("DecreaseIfAvailable", ctx, key, decEq(4)).Return(true, nil)

	change, err := NewStockMutator(OverdraftReject).Apply(ctx, repo, key, decimal.NewFromInt(4), ledger.DirectionDecrease)
	require.NoError(t, err)
	assert.True(t, change.Delta.Equal(decimal.NewFromInt(-4)))
	repo.AssertNotCalled(t, "LockQuantity", mock.Anything, mock.Anything)
}

func TestStockMutator_ClampRecordsOverdraft(t *testing.T) {
	ctx := context.Background()
	key := newKey()
	repo := new(MockStockRecordRepository)
	repo.On("EnsureExists", ctx, key).Return(nil)
	repo.On("DecreaseIfAvailable", ctx, key, decEq(10)).Return(false, nil)
	repo.On("LockQuantity", ctx, key).Return(decimal.NewFromInt(5), nil)
	repo.On("CompareAndSet", ctx, key, decEq(5), decEq(0)).Return(nil)

	change, err := NewStockMutator(OverdraftClamp).Apply(ctx, repo, key, decimal.NewFromInt(10), ledger.DirectionDecrease)
	require.NoError(t, err)
	assert.True(t, change.Delta.Equal(decimal.NewFromInt(-5)))
	assert.True(t, change.Overdraft.Equal(decimal.NewFromInt(5)))
	assert.True(t, change.Clamped())
	repo.AssertExpectations(t)
}

func TestStockMutator_RejectPolicy(t *testing.T) {
	ctx := context.Background()
	key := newKey()
	repo := new(MockStockRecordRepository)
	repo.On("EnsureExists", ctx, key).Return(nil)
	repo.On("DecreaseIfAvailable", ctx, key, decEq(10)).Return(false, nil)
	repo.On("LockQuantity", ctx, key).Return(decimal.NewFromInt(5), nil)

	_, err := NewStockMutator(OverdraftReject).Apply(ctx, repo, key, decimal.NewFromInt(10), ledger.DirectionDecrease)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	repo.AssertNotCalled(t, "CompareAndSet", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStockMutator_RaceBetweenUpdateAndLock(t *testing.T) {
	ctx := context.Background()
	key := newKey()
	repo := new(MockStockRecordRepository)
	repo.On("EnsureExists", ctx, key).Return(nil)
	repo.On("DecreaseIfAvailable", ctx, key, decEq(10)).Return(false, nil)
	repo.On("LockQuantity", ctx, key).Return(decimal.NewFromInt(12), nil)

	_, err := NewStockMutator(OverdraftClamp).Apply(ctx, repo, key, decimal.NewFromInt(10), ledger.DirectionDecrease)
	assert.True(t, shared.IsConcurrencyConflict(err))
}

func TestStockMutator_InvalidInput(t *testing.T) {
	ctx := context.Background()
	repo := new(MockStockRecordRepository)
	m := NewStockMutator("bogus")
	assert.Equal(t, OverdraftClamp, m.Policy())

	_, err := m.Apply(ctx, repo, newKey(), decimal.Zero, ledger.DirectionIncrease)
	assert.ErrorIs(t, err, ledger.ErrInvalidQuantity)
	repo.AssertNotCalled(t, "EnsureExists", mock.Anything, mock.Anything)
}

func TestValidateAdjustmentItems(t *testing.T) {
	good := AdjustmentItem{
		VariationID: uuid.New(),
		LocationID:  uuid.New(),
		UnitID:      uuid.New(),
		Quantity:    decimal.NewFromInt(1),
		Direction:   ledger.DirectionIncrease,
		Reason:      "damaged in transit",
	}
	require.NoError(t, ValidateAdjustmentItems([]AdjustmentItem{good}))
	require.NoError(t, ValidateAdjustmentItems(nil))

	bad := good
	bad.Quantity = decimal.NewFromInt(-2)
	bad.Reason = " "

	err := ValidateAdjustmentItems([]AdjustmentItem{good, bad})
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))

	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	require.Len(t, de.Details, 2)
	assert.Equal(t, 1, de.Details[0].ItemIndex)
	assert.Equal(t, "quantity", de.Details[0].Field)
	assert.Equal(t, "reason", de.Details[1].Field)
}

func TestValidateAdjustmentItems_QuantityScale(t *testing.T) {
	item := AdjustmentItem{
		VariationID: uuid.New(),
		LocationID:  uuid.New(),
		UnitID:      uuid.New(),
		Quantity:    decimal.RequireFromString("1.2345"),
		Direction:   ledger.DirectionIncrease,
		Reason:      "recount",
	}
	require.NoError(t, ValidateAdjustmentItems([]AdjustmentItem{item}))

	item.Quantity = decimal.RequireFromString("1.23456")
	err := ValidateAdjustmentItems([]AdjustmentItem{item})
	require.Error(t, err)
	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	require.Len(t, de.Details, 1)
	assert.Equal(t, "quantity", de.Details[0].Field)

	assert.True(t, FitsQuantityScale(decimal.RequireFromString("0.3000")))
	assert.False(t, FitsQuantityScale(decimal.RequireFromString("0.00005")))
}

func TestParseOverdraftPolicy(t *testing.T) {
	p, err := ParseOverdraftPolicy("")
	require.NoError(t, err)
	assert.Equal(t, OverdraftClamp, p)

	p, err = ParseOverdraftPolicy(" Reject ")
	require.NoError(t, err)
	assert.Equal(t, OverdraftReject, p)

	_, err = ParseOverdraftPolicy("negative")
	assert.Error(t, err)
}
