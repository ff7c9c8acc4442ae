package catalog

import (
	"strings"

	"github.com/boutique/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// Location is a physical stock-keeping location (shop, back room, warehouse).
type Location struct {
	shared.TenantEntity
	Name     string
	IsActive bool
}

// NewLocation creates a new active location
func NewLocation(tenantID uuid.UUID, name string) (*Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("INVALID_LOCATION_NAME", "Location name cannot be empty")
	}
	return &Location{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         name,
		IsActive:     true,
	}, nil
}

// LocationRef is the one-to-one projection of a location attached to read models.
type LocationRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Ref returns the location projection
func (l *Location) Ref() LocationRef {
	return LocationRef{ID: l.ID, Name: l.Name}
}
