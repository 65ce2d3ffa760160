// Package engine implements the invoicing rules: item arithmetic,
// aggregate computation and the invoice lifecycle state machine.
//
// All operations mutate the invoice in memory only. Persistence is the
// caller's concern; the service facade runs an engine operation and the
// matching repository update inside one transaction.
package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Elmeric/dfacto/internal/models"
	"github.com/Elmeric/dfacto/internal/money"
)

// ServiceSnapshot captures the billable fields of a service at the moment
// an item is added. Later edits to the service never reach the item.
type ServiceSnapshot struct {
	ServiceID   uint
	Designation string
	UnitPrice   money.Amount
	VatRate     decimal.Decimal
}

// Snapshot builds a ServiceSnapshot from a service with its VAT rate
// loaded.
func Snapshot(svc *models.Service) ServiceSnapshot {
	snap := ServiceSnapshot{
		ServiceID:   svc.ID,
		Designation: svc.Name,
		UnitPrice:   svc.UnitPrice,
	}
	if svc.VatRate != nil {
		snap.VatRate = svc.VatRate.Rate
	}
	return snap
}

// CodeAllocator hands out the next invoice code. Implementations must be
// monotonic and must never reuse a value, even across restarts.
type CodeAllocator interface {
	NextInvoiceCode() (string, error)
}

// FormatCode renders a sequence number as an invoice code, e.g. FC00042.
func FormatCode(n int64) string {
	return fmt.Sprintf("FC%05d", n)
}

// AddItem appends an item for the given service snapshot and quantity,
// recomputes the aggregates and returns the new item. Only drafts are
// editable.
func AddItem(inv *models.Invoice, snap ServiceSnapshot, quantity decimal.Decimal) (*models.InvoiceItem, error) {
	if !inv.IsDraft() {
		return nil, ErrInvoiceNotEditable
	}
	if !quantity.IsPositive() {
		return nil, ErrInvalidQuantity
	}
	item := models.InvoiceItem{
		InvoiceID:   inv.ID,
		ServiceID:   snap.ServiceID,
		Designation: snap.Designation,
		UnitPrice:   snap.UnitPrice,
		VatRate:     snap.VatRate,
		Quantity:    quantity,
		Position:    len(inv.Items),
	}
	computeItem(&item)
	inv.Items = append(inv.Items, item)
	RecomputeAggregates(inv)
	return &inv.Items[len(inv.Items)-1], nil
}

// RemoveItem deletes the item with the given id and recomputes the
// aggregates and remaining positions.
func RemoveItem(inv *models.Invoice, itemID uint) error {
	if !inv.IsDraft() {
		return ErrInvoiceNotEditable
	}
	idx := -1
	for i := range inv.Items {
		if inv.Items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrItemNotFound
	}
	inv.Items = append(inv.Items[:idx], inv.Items[idx+1:]...)
	for i := range inv.Items {
		inv.Items[i].Position = i
	}
	RecomputeAggregates(inv)
	return nil
}

// UpdateItemQuantity changes an item's quantity, recomputing its derived
// amounts and the invoice aggregates.
func UpdateItemQuantity(inv *models.Invoice, itemID uint, quantity decimal.Decimal) error {
	if !inv.IsDraft() {
		return ErrInvoiceNotEditable
	}
	if !quantity.IsPositive() {
		return ErrInvalidQuantity
	}
	item := inv.Item(itemID)
	if item == nil {
		return ErrItemNotFound
	}
	item.Quantity = quantity
	computeItem(item)
	RecomputeAggregates(inv)
	return nil
}

// Emit transitions a draft to EMITTED: the invoice must have at least one
// item; the code is allocated if unset, the issue date defaults to now and
// the due date to issue date + dueDelta days. A preset due date earlier
// than the issue date is rejected before anything is stamped. Items
// become immutable.
func Emit(inv *models.Invoice, alloc CodeAllocator, now time.Time, dueDelta int) error {
	if inv.Status != models.InvoiceStatusDraft {
		return ErrInvalidTransition
	}
	if len(inv.Items) == 0 {
		return ErrEmptyInvoice
	}
	issue := now
	if inv.IssueDate != nil {
		issue = *inv.IssueDate
	}
	if inv.DueDate != nil && inv.DueDate.Before(issue) {
		return ErrInvalidDueDate
	}
	if inv.Code == "" {
		code, err := alloc.NextInvoiceCode()
		if err != nil {
			return err
		}
		inv.Code = code
	}
	if inv.IssueDate == nil {
		issued := now
		inv.IssueDate = &issued
	}
	if inv.DueDate == nil {
		due := inv.IssueDate.AddDate(0, 0, dueDelta)
		inv.DueDate = &due
	}
	transition(inv, models.InvoiceStatusEmitted, now)
	return nil
}

// MarkPaid transitions EMITTED to PAID.
func MarkPaid(inv *models.Invoice, now time.Time) error {
	if inv.Status != models.InvoiceStatusEmitted {
		return ErrInvalidTransition
	}
	transition(inv, models.InvoiceStatusPaid, now)
	return nil
}

// Cancel transitions DRAFT or EMITTED to CANCELLED. Items are kept for
// the audit trail.
func Cancel(inv *models.Invoice, now time.Time) error {
	if inv.Status != models.InvoiceStatusDraft && inv.Status != models.InvoiceStatusEmitted {
		return ErrInvalidTransition
	}
	transition(inv, models.InvoiceStatusCancelled, now)
	return nil
}

// RecomputeAggregates sums the item amounts, in item order, into the
// invoice aggregates. Pure and idempotent.
func RecomputeAggregates(inv *models.Invoice) {
	var raw, vat, net money.Amount
	for i := range inv.Items {
		raw = raw.Add(inv.Items[i].RawAmount)
		vat = vat.Add(inv.Items[i].VatAmount)
		net = net.Add(inv.Items[i].NetAmount)
	}
	inv.RawAmount = raw
	inv.VatAmount = vat
	inv.NetAmount = net
}

// InitStatusLog opens the DRAFT log entry on a newly created invoice.
func InitStatusLog(inv *models.Invoice, now time.Time) {
	inv.StatusLog = append(inv.StatusLog, models.StatusLog{
		InvoiceID: inv.ID,
		Status:    models.InvoiceStatusDraft,
		From:      now,
	})
}

// transition sets the status and moves the status log forward: the open
// entry is closed and a new one opened.
func transition(inv *models.Invoice, to models.InvoiceStatus, now time.Time) {
	inv.Status = to
	for i := range inv.StatusLog {
		if inv.StatusLog[i].To == nil {
			closed := now
			inv.StatusLog[i].To = &closed
		}
	}
	inv.StatusLog = append(inv.StatusLog, models.StatusLog{
		InvoiceID: inv.ID,
		Status:    to,
		From:      now,
	})
}

// computeItem derives the item amounts from its snapshot and quantity.
func computeItem(item *models.InvoiceItem) {
	item.RawAmount = item.UnitPrice.MulQuantity(item.Quantity)
	item.VatAmount = item.RawAmount.PercentOf(item.VatRate)
	item.NetAmount = item.RawAmount.Add(item.VatAmount)
}
