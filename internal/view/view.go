// Package view builds the read-only invoice representation handed to the
// document renderer: everything is resolved, rounded and display-ready,
// amounts as decimal strings in major units.
package view

import (
	"time"

	"github.com/samber/lo"

	"github.com/Elmeric/dfacto/internal/models"
)

// Company is the issuer block printed on every invoice. It comes from
// configuration, not from the database.
type Company struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	ZipCode string `json:"zip_code"`
	City    string `json:"city"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	SIRET   string `json:"siret,omitempty"`
	VATID   string `json:"vat_id,omitempty"`
}

// Invoice is the fully computed render model of one invoice.
type Invoice struct {
	Company Company `json:"company"`

	Code        string `json:"code"`
	ClientName  string `json:"client_name"`
	ClientAddr  string `json:"client_address"`
	ClientEmail string `json:"client_email,omitempty"`

	IssueDate string `json:"issue_date,omitempty"`
	DueDate   string `json:"due_date,omitempty"`

	Status      string `json:"status"`
	StatusTag   string `json:"status_tag"`
	StatusLabel string `json:"status_label"`

	Items []Item `json:"items"`

	// Invoice-level totals: subtotal excl. VAT, tax total, grand total.
	RawAmount string `json:"raw_amount"`
	VatAmount string `json:"vat_amount"`
	NetAmount string `json:"net_amount"`

	PenaltyRate  string `json:"penalty_rate"`
	DiscountRate string `json:"discount_rate"`

	CreatedOn   string `json:"created_on,omitempty"`
	IssuedOn    string `json:"issued_on,omitempty"`
	PaidOn      string `json:"paid_on,omitempty"`
	CancelledOn string `json:"cancelled_on,omitempty"`
}

// Item is one display-ready invoice line.
type Item struct {
	Designation string `json:"designation"`
	UnitPrice   string `json:"unit_price"`
	Quantity    string `json:"quantity"`
	VatRate     string `json:"vat_rate"`
	RawAmount   string `json:"raw_amount"`
	VatAmount   string `json:"vat_amount"`
	NetAmount   string `json:"net_amount"`
}

// statusDisplay maps a status to its short tag and printable label.
var statusDisplay = map[models.InvoiceStatus][2]string{
	models.InvoiceStatusDraft:     {"DRAFT", "Draft"},
	models.InvoiceStatusEmitted:   {"EMITTED", "Emitted"},
	models.InvoiceStatusPaid:      {"PAID", "Paid"},
	models.InvoiceStatusCancelled: {"CANCELLED", "Cancelled"},
}

const dateLayout = "2006-01-02"

// BuildInvoice assembles the render model from a hydrated invoice and the
// current globals. The invoice's client must be loaded.
func BuildInvoice(company Company, inv *models.Invoice, globals *models.Globals) Invoice {
	out := Invoice{
		Company:   company,
		Code:      inv.Code,
		Status:    string(inv.Status),
		RawAmount: inv.RawAmount.String(),
		VatAmount: inv.VatAmount.String(),
		NetAmount: inv.NetAmount.String(),
		Items: lo.Map(inv.Items, func(item models.InvoiceItem, _ int) Item {
			return Item{
				Designation: item.Designation,
				UnitPrice:   item.UnitPrice.String(),
				Quantity:    item.Quantity.String(),
				VatRate:     item.VatRate.String(),
				RawAmount:   item.RawAmount.String(),
				VatAmount:   item.VatAmount.String(),
				NetAmount:   item.NetAmount.String(),
			}
		}),
	}
	if display, ok := statusDisplay[inv.Status]; ok {
		out.StatusTag, out.StatusLabel = display[0], display[1]
	}
	if inv.Client != nil {
		out.ClientName = inv.Client.Name
		out.ClientAddr = inv.Client.FullAddress()
		out.ClientEmail = inv.Client.Email
	}
	out.IssueDate = formatDate(inv.IssueDate)
	out.DueDate = formatDate(inv.DueDate)
	if globals != nil {
		out.PenaltyRate = globals.PenaltyRate.String()
		out.DiscountRate = globals.DiscountRate.String()
	}
	out.CreatedOn = formatDate(inv.StatusSince(models.InvoiceStatusDraft))
	out.IssuedOn = formatDate(inv.StatusSince(models.InvoiceStatusEmitted))
	out.PaidOn = formatDate(inv.StatusSince(models.InvoiceStatusPaid))
	out.CancelledOn = formatDate(inv.StatusSince(models.InvoiceStatusCancelled))
	return out
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
