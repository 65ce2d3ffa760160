package engine

import "errors"

// Domain errors. Callers match them with errors.Is; the HTTP layer maps
// them to status codes at the boundary.
var (
	// Validation errors: bad caller input, nothing was written.
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrEmptyInvoice    = errors.New("empty_invoice")
	ErrInvalidDueDate  = errors.New("invalid_due_date")

	// State errors: the operation violates the invoice lifecycle.
	ErrInvoiceNotEditable = errors.New("invoice_not_editable")
	ErrInvalidTransition  = errors.New("invalid_transition")

	// Not-found errors.
	ErrItemNotFound    = errors.New("item_not_found")
	ErrClientNotFound  = errors.New("client_not_found")
	ErrServiceNotFound = errors.New("service_not_found")
	ErrInvoiceNotFound = errors.New("invoice_not_found")
	ErrVatRateNotFound = errors.New("vat_rate_not_found")
	ErrBasketNotFound  = errors.New("basket_not_found")

	// Constraint errors: the removal would break a referential invariant.
	ErrConstraintViolation = errors.New("constraint_violation")
)
