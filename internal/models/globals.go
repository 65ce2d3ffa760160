package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Globals carries business-wide billing parameters: the default payment
// delay and the legal penalty/discount rates printed on invoices. Stored
// as a single row, seeded at startup.
type Globals struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UpdatedAt time.Time `json:"updated_at"`

	// DueDelta is the payment delay in days applied when an invoice is
	// emitted without an explicit due date.
	DueDelta     int             `gorm:"not null;default:30" json:"due_delta"`
	PenaltyRate  decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"penalty_rate"`
	DiscountRate decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"discount_rate"`
}

// Sequence is a named persistent counter. The invoice code sequence is
// loaded from here at startup and incremented inside the emitting
// transaction, so codes survive restarts and are never reused.
type Sequence struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Value int64  `gorm:"not null;default:0" json:"value"`
}

// SeqInvoiceCode is the name of the invoice code sequence.
const SeqInvoiceCode = "invoice_code"
