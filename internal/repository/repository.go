// Package repository defines the persistence contracts of the invoicing
// core. Two implementations satisfy them with identical semantics: the
// relational gormstore for production and the deterministic memstore for
// tests.
package repository

import (
	"context"

	"github.com/Elmeric/dfacto/internal/models"
)

// Store opens unit-of-work transactions. Every use case runs inside one
// InTx call: either all writes commit or none do, and a mid-sequence
// failure leaves persisted state untouched. Returning an error from fn
// rolls the transaction back and propagates the error unchanged.
//
// Transactions against different invoices do not block each other;
// serializing concurrent writers of the same invoice is the backing
// store's job, not the engine's.
type Store interface {
	InTx(ctx context.Context, fn func(uow UnitOfWork) error) error
}

// UnitOfWork gives access to the per-entity repositories bound to one
// transaction.
type UnitOfWork interface {
	Clients() ClientRepository
	VatRates() VatRateRepository
	Services() ServiceRepository
	Invoices() InvoiceRepository
	Baskets() BasketRepository
	Globals() GlobalsRepository
	Sequences() SequenceRepository
}

// ClientFilter narrows List results.
type ClientFilter struct {
	ActiveOnly bool
}

// ServiceFilter narrows List results.
type ServiceFilter struct {
	ActiveOnly bool
}

// InvoiceFilter narrows List results.
type InvoiceFilter struct {
	ClientID uint
	Status   models.InvoiceStatus
}

// ClientRepository persists clients. Remove fails with
// engine.ErrConstraintViolation while invoices reference the client; the
// client's basket is removed with it.
type ClientRepository interface {
	Get(id uint) (*models.Client, error)
	List(f ClientFilter) ([]models.Client, error)
	Add(c *models.Client) error
	Update(c *models.Client) error
	Remove(id uint) error
}

// VatRateRepository persists VAT rates. Remove fails with
// engine.ErrConstraintViolation for preset rates, the default rate, and
// rates referenced by a service.
type VatRateRepository interface {
	Get(id uint) (*models.VatRate, error)
	Default() (*models.VatRate, error)
	List() ([]models.VatRate, error)
	Add(v *models.VatRate) error
	Update(v *models.VatRate) error
	Remove(id uint) error
}

// ServiceRepository persists catalog services; Get loads the VAT rate.
// Remove fails with engine.ErrConstraintViolation while a non-draft
// invoice item references the service.
type ServiceRepository interface {
	Get(id uint) (*models.Service, error)
	List(f ServiceFilter) ([]models.Service, error)
	Add(s *models.Service) error
	Update(s *models.Service) error
	Remove(id uint) error
}

// InvoiceRepository persists invoices with their items and status log.
// Get and List return fully hydrated invoices, items in position order.
// Update reconciles the item set: items absent from the invoice are
// deleted. Remove cascades to items and status log; draft-only deletion
// is enforced by the service layer.
type InvoiceRepository interface {
	Get(id uint) (*models.Invoice, error)
	List(f InvoiceFilter) ([]models.Invoice, error)
	Add(inv *models.Invoice) error
	Update(inv *models.Invoice) error
	Remove(id uint) error
	CountByClient(clientID uint) (int64, error)
}

// BasketRepository persists per-client baskets. GetByClient creates the
// basket on first access.
type BasketRepository interface {
	GetByClient(clientID uint) (*models.Basket, error)
	Update(b *models.Basket) error
}

// GlobalsRepository persists the single business-wide settings row.
type GlobalsRepository interface {
	Get() (*models.Globals, error)
	Update(g *models.Globals) error
}

// SequenceRepository hands out persistent counter values. Next increments
// the named counter inside the current transaction and returns the new
// value, so an aborted transaction never burns a number silently and a
// committed one never reuses it.
type SequenceRepository interface {
	Next(name string) (int64, error)
}
