package catalog

import (
	"github.com/boutique/backoffice/internal/domain/shared"
	"github.com/boutique/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Unit is a named measurement with the factor converting one instance of it
// into the canonical base unit. A sub-unit points at the unit it derives from
// through BaseUnitID.
type Unit struct {
	shared.TenantEntity
	Name               string
	ShortName          string
	BaseUnitID         *uuid.UUID
	BaseUnitMultiplier decimal.Decimal
}

// NewUnit creates a new measurement unit
func NewUnit(tenantID uuid.UUID, name, shortName string, multiplier decimal.Decimal) (*Unit, error) {
	if _, err := valueobject.NewUnit(name, multiplier); err != nil {
		return nil, err
	}
	return &Unit{
		TenantEntity:       shared.NewTenantEntity(tenantID),
		Name:               name,
		ShortName:          shortName,
		BaseUnitMultiplier: multiplier,
	}, nil
}

// NewSubUnit creates a unit derived from base, e.g. a dozen of pieces.
func NewSubUnit(tenantID uuid.UUID, base *Unit, name, shortName string, multiplier decimal.Decimal) (*Unit, error) {
	u, err := NewUnit(tenantID, name, shortName, multiplier)
	if err != nil {
		return nil, err
	}
	baseID := base.ID
	u.BaseUnitID = &baseID
	return u, nil
}

// ValueObject returns the conversion value object for this unit. It fails with
// ErrInvalidUnit when the stored multiplier is not positive.
func (u *Unit) ValueObject() (valueobject.Unit, error) {
	return valueobject.NewUnit(u.Name, u.BaseUnitMultiplier)
}

// AppliesTo reports whether quantities of this unit may be recorded against
// the variation: either it is the variation's reference unit or one of its
// sub-units.
func (u *Unit) AppliesTo(v *Variation) bool {
	if u.ID == v.UnitID {
		return true
	}
	return u.BaseUnitID != nil && *u.BaseUnitID == v.UnitID
}
