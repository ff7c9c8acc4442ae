package models

import (
	"github.com/boutique/backoffice/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	TenantModel
	Name string `gorm:"type:varchar(200);not null"`
	SKU  string `gorm:"column:sku;type:varchar(64);index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		TenantEntity: m.ToTenantEntity(),
		Name:         m.Name,
		SKU:          m.SKU,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainTenantEntity(p.TenantEntity)
	m.Name = p.Name
	m.SKU = p.SKU
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// VariationModel is the persistence model for the Variation domain entity.
type VariationModel struct {
	TenantModel
	ProductID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	Name        string           `gorm:"type:varchar(100);not null"`
	SubSKU      string           `gorm:"column:sub_sku;type:varchar(64)"`
	UnitID      uuid.UUID        `gorm:"type:uuid;not null"`
	DefaultCost *decimal.Decimal `gorm:"type:decimal(22,4)"`
}

// TableName returns the table name for GORM
func (VariationModel) TableName() string {
	return "variations"
}

// ToDomain converts the persistence model to a domain Variation entity.
func (m *VariationModel) ToDomain() *catalog.Variation {
	return &catalog.Variation{
		TenantEntity: m.ToTenantEntity(),
		ProductID:    m.ProductID,
		Name:         m.Name,
		SubSKU:       m.SubSKU,
		UnitID:       m.UnitID,
		DefaultCost:  m.DefaultCost,
	}
}

// FromDomain populates the persistence model from a domain Variation entity.
func (m *VariationModel) FromDomain(v *catalog.Variation) {
	m.FromDomainTenantEntity(v.TenantEntity)
	m.ProductID = v.ProductID
	m.Name = v.Name
	m.SubSKU = v.SubSKU
	m.UnitID = v.UnitID
	m.DefaultCost = v.DefaultCost
}

// VariationModelFromDomain creates a new persistence model from a domain Variation entity.
func VariationModelFromDomain(v *catalog.Variation) *VariationModel {
	m := &VariationModel{}
	m.FromDomain(v)
	return m
}

// UnitModel is the persistence model for the Unit domain entity.
type UnitModel struct {
	TenantModel
	Name               string          `gorm:"type:varchar(50);not null"`
	ShortName          string          `gorm:"type:varchar(20)"`
	BaseUnitID         *uuid.UUID      `gorm:"type:uuid;index"`
	BaseUnitMultiplier decimal.Decimal `gorm:"type:decimal(18,6);not null;default:1"`
}

// TableName returns the table name for GORM
func (UnitModel) TableName() string {
	return "units"
}

// ToDomain converts the persistence model to a domain Unit entity.
func (m *UnitModel) ToDomain() *catalog.Unit {
	return &catalog.Unit{
		TenantEntity:       m.ToTenantEntity(),
		Name:               m.Name,
		ShortName:          m.ShortName,
		BaseUnitID:         m.BaseUnitID,
		BaseUnitMultiplier: m.BaseUnitMultiplier,
	}
}

// FromDomain populates the persistence model from a domain Unit entity.
func (m *UnitModel) FromDomain(u *catalog.Unit) {
	m.FromDomainTenantEntity(u.TenantEntity)
	m.Name = u.Name
	m.ShortName = u.ShortName
	m.BaseUnitID = u.BaseUnitID
	m.BaseUnitMultiplier = u.BaseUnitMultiplier
}

// UnitModelFromDomain creates a new persistence model from a domain Unit entity.
func UnitModelFromDomain(u *catalog.Unit) *UnitModel {
	m := &UnitModel{}
	m.FromDomain(u)
	return m
}

// LocationModel is the persistence model for the Location domain entity.
type LocationModel struct {
	TenantModel
	Name     string `gorm:"type:varchar(100);not null"`
	IsActive bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LocationModel) TableName() string {
	return "locations"
}

// ToDomain converts the persistence model to a domain Location entity.
func (m *LocationModel) ToDomain() *catalog.Location {
	return &catalog.Location{
		TenantEntity: m.ToTenantEntity(),
		Name:         m.Name,
		IsActive:     m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Location entity.
func (m *LocationModel) FromDomain(l *catalog.Location) {
	m.FromDomainTenantEntity(l.TenantEntity)
	m.Name = l.Name
	m.IsActive = l.IsActive
}

// LocationModelFromDomain creates a new persistence model from a domain Location entity.
func LocationModelFromDomain(l *catalog.Location) *LocationModel {
	m := &LocationModel{}
	m.FromDomain(l)
	return m
}
