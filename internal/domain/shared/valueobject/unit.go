package valueobject

import (
	"fmt"
	"strings"

	"github.com/boutique/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// roundTripPrecision is the number of decimal places kept when dividing back
// out of base units. Multiplication into base units is never rounded.
const roundTripPrecision = 16

// Unit is a value object representing a unit of measurement.
// It is immutable - all operations return new Unit instances.
// One instance of the unit equals Multiplier base units.
type Unit struct {
	name       string
	multiplier decimal.Decimal
}

// NewUnit creates a Unit. The multiplier must be strictly positive.
func NewUnit(name string, multiplier decimal.Decimal) (Unit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Unit{}, shared.ErrInvalidUnit.WithMessage("unit name cannot be empty")
	}
	if !multiplier.IsPositive() {
		return Unit{}, shared.ErrInvalidUnit.WithMessage(
			fmt.Sprintf("unit %q has non-positive base unit multiplier %s", name, multiplier.String()))
	}
	return Unit{name: name, multiplier: multiplier}, nil
}

// NewBaseUnit creates a Unit whose multiplier is 1.
func NewBaseUnit(name string) (Unit, error) {
	return NewUnit(name, decimal.NewFromInt(1))
}

// MustNewUnit creates a Unit and panics on error.
// Use only when you're certain the inputs are valid.
func MustNewUnit(name string, multiplier decimal.Decimal) Unit {
	u, err := NewUnit(name, multiplier)
	if err != nil {
		panic(err)
	}
	return u
}

// Name returns the unit name.
func (u Unit) Name() string {
	return u.name
}

// Multiplier returns the factor converting one of this unit into base units.
func (u Unit) Multiplier() decimal.Decimal {
	return u.multiplier
}

// IsBaseUnit returns true if the multiplier is exactly 1.
func (u Unit) IsBaseUnit() bool {
	return u.multiplier.Equal(decimal.NewFromInt(1))
}

// IsZero returns true if this is a zero-value Unit.
func (u Unit) IsZero() bool {
	return u.name == "" && u.multiplier.IsZero()
}

// ToBaseUnits converts quantity expressed in this unit to base units.
// The product is exact; a zero-value or corrupted unit yields ErrInvalidUnit.
func (u Unit) ToBaseUnits(quantity decimal.Decimal) (decimal.Decimal, error) {
	if !u.multiplier.IsPositive() {
		return decimal.Zero, shared.ErrInvalidUnit
	}
	return quantity.Mul(u.multiplier), nil
}

// FromBaseUnits converts a base-unit quantity back into this unit.
func (u Unit) FromBaseUnits(baseQuantity decimal.Decimal) (decimal.Decimal, error) {
	if !u.multiplier.IsPositive() {
		return decimal.Zero, shared.ErrInvalidUnit
	}
	return baseQuantity.DivRound(u.multiplier, roundTripPrecision), nil
}

// Equals returns true if both Units have the same name and multiplier.
func (u Unit) Equals(other Unit) bool {
	return u.name == other.name && u.multiplier.Equal(other.multiplier)
}

// String returns a string representation of the Unit.
func (u Unit) String() string {
	if u.IsBaseUnit() {
		return u.name
	}
	return fmt.Sprintf("%s (x%s)", u.name, u.multiplier.String())
}
