// Package models holds the GORM row types behind the catalog, stock record
// and ledger repositories. Domain types carry no GORM tags; each model has
// FromDomain/ToDomain mappers and AllModels lists what AutoMigrate creates
// on sqlite.
package models
