package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VatRate is a named VAT percentage (0–100). Preset rates are seeded at
// startup and cannot be removed; exactly one rate is the default applied
// to new services.
type VatRate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name      string          `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Rate      decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"rate"`
	IsDefault bool            `gorm:"default:false" json:"is_default"`
	IsPreset  bool            `gorm:"default:false" json:"is_preset"`

	Services []Service `gorm:"foreignKey:VatRateID" json:"services,omitempty"`
}
