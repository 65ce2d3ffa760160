package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Elmeric/dfacto/internal/money"
)

// InvoiceStatus represents where an invoice is in its lifecycle.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusEmitted   InvoiceStatus = "emitted"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Invoice is an ordered list of service items billed to a client.
//
// The invoice owns its items: they are created, edited and removed through
// the invoice while it is a draft, and cascade-deleted with it. Aggregate
// amounts are derived from the items and recomputed on every mutation.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Code is the human-readable invoice number ("FC00042"), assigned at
	// emission. Monotonic and never reused; empty while a draft.
	Code string `gorm:"size:20;index" json:"code,omitempty"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	IssueDate *time.Time `json:"issue_date,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`

	Status InvoiceStatus `gorm:"size:20;not null;default:'draft'" json:"status"`

	Items     []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
	StatusLog []StatusLog   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"status_log,omitempty"`

	// Aggregates over the items, in item order.
	RawAmount money.Amount `gorm:"not null" json:"raw_amount"`
	VatAmount money.Amount `gorm:"not null" json:"vat_amount"`
	NetAmount money.Amount `gorm:"not null" json:"net_amount"`
}

// IsDraft returns true while the invoice is still editable.
func (i *Invoice) IsDraft() bool {
	return i.Status == InvoiceStatusDraft
}

// IsTerminal returns true when no further transition is possible.
func (i *Invoice) IsTerminal() bool {
	return i.Status == InvoiceStatusPaid || i.Status == InvoiceStatusCancelled
}

// Item returns the item with the given id, or nil.
func (i *Invoice) Item(itemID uint) *InvoiceItem {
	for idx := range i.Items {
		if i.Items[idx].ID == itemID {
			return &i.Items[idx]
		}
	}
	return nil
}

// StatusSince returns the start of the period the invoice entered the
// given status, or nil if it never did.
func (i *Invoice) StatusSince(status InvoiceStatus) *time.Time {
	for idx := range i.StatusLog {
		if i.StatusLog[idx].Status == status {
			return &i.StatusLog[idx].From
		}
	}
	return nil
}

// InvoiceItem is one line of an invoice. Designation, unit price and VAT
// rate are snapshots of the originating service taken when the item was
// added; ServiceID is informational only. The three amounts are derived
// from quantity × unit price and recomputed, never edited directly.
type InvoiceItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	InvoiceID uint `gorm:"index;not null" json:"invoice_id"`

	ServiceID   uint            `gorm:"index" json:"service_id"`
	Designation string          `gorm:"size:255;not null" json:"designation"`
	UnitPrice   money.Amount    `gorm:"not null" json:"unit_price"`
	VatRate     decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"vat_rate"`
	Quantity    decimal.Decimal `gorm:"type:decimal(10,3);not null" json:"quantity"`

	RawAmount money.Amount `gorm:"not null" json:"raw_amount"`
	VatAmount money.Amount `gorm:"not null" json:"vat_amount"`
	NetAmount money.Amount `gorm:"not null" json:"net_amount"`

	// Position preserves item order within the invoice.
	Position int `gorm:"not null;default:0" json:"position"`
}

// StatusLog is an append-only record of the periods an invoice spent in
// each status. The open entry has a nil To.
type StatusLog struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	InvoiceID uint          `gorm:"index;not null" json:"invoice_id"`
	Status    InvoiceStatus `gorm:"size:20;not null" json:"status"`
	From      time.Time     `gorm:"not null" json:"from"`
	To        *time.Time    `json:"to,omitempty"`
}
