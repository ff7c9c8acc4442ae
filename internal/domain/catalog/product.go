package catalog

import (
	"strings"

	"github.com/boutique/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Product is a catalog entry. Its identity is immutable; name and SKU are
// mutable metadata.
type Product struct {
	shared.TenantEntity
	Name string
	SKU  string
}

// NewProduct creates a new product
func NewProduct(tenantID uuid.UUID, name, sku string) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("INVALID_PRODUCT_NAME", "Product name cannot exceed 200 characters")
	}
	sku = strings.TrimSpace(sku)
	if len(sku) > 64 {
		return nil, shared.NewValidationError("INVALID_PRODUCT_SKU", "Product SKU cannot exceed 64 characters")
	}
	return &Product{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         name,
		SKU:          sku,
	}, nil
}

// Rename updates the display name
func (p *Product) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	p.Name = name
	return nil
}

// ProductRef is the one-to-one projection of a product attached to read models.
type ProductRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	SKU  string    `json:"sku"`
}

// Ref returns the product projection
func (p *Product) Ref() ProductRef {
	return ProductRef{ID: p.ID, Name: p.Name, SKU: p.SKU}
}
