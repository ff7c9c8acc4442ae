package valueobject

import (
	"errors"
	"testing"

	"github.com/boutique/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnit(t *testing.T) {
	tests := []struct {
		name       string
		unitName   string
		multiplier decimal.Decimal
		wantErr    bool
	}{
		{name: "base unit", unitName: "Piece", multiplier: decimal.NewFromInt(1)},
		{name: "dozen", unitName: "Dozen", multiplier: decimal.NewFromInt(12)},
		{name: "fractional multiplier", unitName: "Centimeter", multiplier: decimal.RequireFromString("0.01")},
		{name: "zero multiplier", unitName: "Broken", multiplier: decimal.Zero, wantErr: true},
		{name: "negative multiplier", unitName: "Broken", multiplier: decimal.NewFromInt(-3), wantErr: true},
		{name: "empty name", unitName: "   ", multiplier: decimal.NewFromInt(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := NewUnit(tt.unitName, tt.multiplier)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, shared.ErrInvalidUnit))
				assert.True(t, shared.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, u.Multiplier().Equal(tt.multiplier))
		})
	}
}

func TestUnit_ToBaseUnits(t *testing.T) {
	dozen := MustNewUnit("Dozen", decimal.NewFromInt(12))

	base, err := dozen.ToBaseUnits(decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.Equal(t, "36", base.String())

	third := MustNewUnit("Third", decimal.RequireFromString("0.3333333333333333"))
	total := decimal.Zero
	for i := 0; i < 3; i++ {
		q, err := third.ToBaseUnits(decimal.NewFromInt(1))
		require.NoError(t, err)
		total = total.Add(q)
	}
	assert.Equal(t, "0.9999999999999999", total.String(), "repeated conversions must not drift")
}

func TestUnit_ToBaseUnits_ZeroValue(t *testing.T) {
	var u Unit
	_, err := u.ToBaseUnits(decimal.NewFromInt(1))
	assert.ErrorIs(t, err, shared.ErrInvalidUnit)
}

func TestUnit_RoundTrip(t *testing.T) {
	epsilon := decimal.RequireFromString("0.000000000001")
	units := []Unit{
		MustNewUnit("Piece", decimal.NewFromInt(1)),
		MustNewUnit("Dozen", decimal.NewFromInt(12)),
		MustNewUnit("Meter", decimal.RequireFromString("0.01")),
		MustNewUnit("Seventh", decimal.RequireFromString("7")),
	}
	quantities := []string{"1", "3", "0.5", "2.125", "1000.0001"}

	for _, u := range units {
		for _, qs := range quantities {
			q := decimal.RequireFromString(qs)
			base, err := u.ToBaseUnits(q)
			require.NoError(t, err)
			back, err := u.FromBaseUnits(base)
			require.NoError(t, err)
			assert.True(t, back.Sub(q).Abs().LessThanOrEqual(epsilon), "%s in %s", qs, u)
		}
	}
}
