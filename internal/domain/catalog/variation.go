package catalog

import (
	"strings"

	"github.com/boutique/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variation is a sellable configuration (size, colour, style) of a Product.
// UnitID is the reference unit the variation is stocked in.
type Variation struct {
	shared.TenantEntity
	ProductID   uuid.UUID
	Name        string
	SubSKU      string
	UnitID      uuid.UUID
	DefaultCost *decimal.Decimal
}

// NewVariation creates a new variation of a product
func NewVariation(tenantID, productID, unitID uuid.UUID, name string) (*Variation, error) {
	name = strings.TrimSpace(name)
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_PRODUCT", "Variation must belong to a product")
	}
	if unitID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_UNIT", "Variation must have a reference unit")
	}
	if name == "" {
		name = "Default"
	}
	return &Variation{
		TenantEntity: shared.NewTenantEntity(tenantID),
		ProductID:    productID,
		Name:         name,
		UnitID:       unitID,
	}, nil
}

// SetDefaultCost sets the fallback purchase cost. A nil cost clears it.
func (v *Variation) SetDefaultCost(cost *decimal.Decimal) error {
	if cost != nil && cost.IsNegative() {
		return shared.NewValidationError("INVALID_COST", "Default cost cannot be negative")
	}
	v.DefaultCost = cost
	return nil
}

// HasDefaultCost reports whether a fallback cost is configured.
func (v *Variation) HasDefaultCost() bool {
	return v.DefaultCost != nil
}

// VariationRef is the one-to-one projection of a variation attached to read models.
type VariationRef struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	SubSKU    string    `json:"sub_sku,omitempty"`
}

// Ref returns the variation projection
func (v *Variation) Ref() VariationRef {
	return VariationRef{ID: v.ID, ProductID: v.ProductID, Name: v.Name, SubSKU: v.SubSKU}
}
