package models

import (
	"strings"
	"time"
)

// Client represents a customer the business invoices.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name     string `gorm:"size:255;not null" json:"name"`
	Address  string `gorm:"size:500" json:"address,omitempty"`
	ZipCode  string `gorm:"size:20" json:"zip_code,omitempty"`
	City     string `gorm:"size:100" json:"city,omitempty"`
	Email    string `gorm:"size:255" json:"email,omitempty"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	// Invoices referencing this client. A client cannot be removed while
	// any exist.
	Invoices []Invoice `gorm:"foreignKey:ClientID" json:"invoices,omitempty"`
}

// FullAddress returns the address block as displayed on an invoice.
func (c *Client) FullAddress() string {
	parts := make([]string, 0, 2)
	if c.Address != "" {
		parts = append(parts, c.Address)
	}
	line := strings.TrimSpace(c.ZipCode + " " + c.City)
	if line != "" {
		parts = append(parts, line)
	}
	return strings.Join(parts, "\n")
}
