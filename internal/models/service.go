package models

import (
	"time"

	"github.com/Elmeric/dfacto/internal/money"
)

// Service is a billable service from the catalog. Invoice items snapshot
// its name, unit price and VAT percentage at the time they are added, so
// editing a service never alters past invoices.
type Service struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name      string       `gorm:"size:255;not null" json:"name"`
	UnitPrice money.Amount `gorm:"not null" json:"unit_price"`
	VatRateID uint         `gorm:"index;not null" json:"vat_rate_id"`
	VatRate   *VatRate     `gorm:"foreignKey:VatRateID" json:"vat_rate,omitempty"`
	IsActive  bool         `gorm:"default:true" json:"is_active"`
}
