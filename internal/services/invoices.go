package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Elmeric/dfacto/internal/engine"
	"github.com/Elmeric/dfacto/internal/models"
	"github.com/Elmeric/dfacto/internal/repository"
	"github.com/Elmeric/dfacto/internal/view"
)

// InvoiceService drives the invoice lifecycle. Every method loads the
// invoice, runs the engine operation and persists the result inside one
// transaction, so a failure anywhere leaves the stored invoice untouched.
type InvoiceService struct {
	store repository.Store
	now   func() time.Time
}

func NewInvoiceService(store repository.Store) *InvoiceService {
	return &InvoiceService{store: store, now: time.Now}
}

// sequenceAllocator binds the engine's code allocation to the persistent
// sequence of the current transaction.
type sequenceAllocator struct {
	seqs repository.SequenceRepository
}

func (a sequenceAllocator) NextInvoiceCode() (string, error) {
	n, err := a.seqs.Next(models.SeqInvoiceCode)
	if err != nil {
		return "", err
	}
	return engine.FormatCode(n), nil
}

// Create opens a new draft invoice for the client, with an empty item
// list and an open DRAFT status-log entry.
func (s *InvoiceService) Create(ctx context.Context, clientID uint) (*models.Invoice, error) {
	var inv *models.Invoice
	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		if _, err := uow.Clients().Get(clientID); err != nil {
			return err
		}
		inv = &models.Invoice{ClientID: clientID, Status: models.InvoiceStatusDraft}
		engine.InitStatusLog(inv, s.now())
		if err := uow.Invoices().Add(inv); err != nil {
			return err
		}
		var err error
		inv, err = uow.Invoices().Get(inv.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *InvoiceService) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv *models.Invoice
	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		var err error
		inv, err = uow.Invoices().Get(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *InvoiceService) List(ctx context.Context, f repository.InvoiceFilter) ([]models.Invoice, error) {
	var invs []models.Invoice
	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		var err error
		invs, err = uow.Invoices().List(f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return invs, nil
}

// AddItem snapshots the service and appends an item to a draft invoice.
func (s *InvoiceService) AddItem(ctx context.Context, invoiceID, serviceID uint, quantity decimal.Decimal) (*models.Invoice, error) {
	return s.mutate(ctx, invoiceID, func(uow repository.UnitOfWork, inv *models.Invoice) error {
		svc, err := uow.Services().Get(serviceID)
		if err != nil {
			return err
		}
		_, err = engine.AddItem(inv, engine.Snapshot(svc), quantity)
		return err
	})
}

func (s *InvoiceService) RemoveItem(ctx context.Context, invoiceID, itemID uint) (*models.Invoice, error) {
	return s.mutate(ctx, invoiceID, func(_ repository.UnitOfWork, inv *models.Invoice) error {
		return engine.RemoveItem(inv, itemID)
	})
}

func (s *InvoiceService) UpdateItemQuantity(ctx context.Context, invoiceID, itemID uint, quantity decimal.Decimal) (*models.Invoice, error) {
	return s.mutate(ctx, invoiceID, func(_ repository.UnitOfWork, inv *models.Invoice) error {
		return engine.UpdateItemQuantity(inv, itemID, quantity)
	})
}

// Emit freezes the draft: code and dates are stamped and the status
// becomes EMITTED. The code comes from the persistent sequence, inside
// the same transaction.
func (s *InvoiceService) Emit(ctx context.Context, invoiceID uint) (*models.Invoice, error) {
	return s.mutate(ctx, invoiceID, func(uow repository.UnitOfWork, inv *models.Invoice) error {
		globals, err := uow.Globals().Get()
		if err != nil {
			return err
		}
		return engine.Emit(inv, sequenceAllocator{seqs: uow.Sequences()}, s.now(), globals.DueDelta)
	})
}

func (s *InvoiceService) MarkPaid(ctx context.Context, invoiceID uint) (*models.Invoice, error) {
	return s.mutate(ctx, invoiceID, func(_ repository.UnitOfWork, inv *models.Invoice) error {
		return engine.MarkPaid(inv, s.now())
	})
}

func (s *InvoiceService) Cancel(ctx context.Context, invoiceID uint) (*models.Invoice, error) {
	return s.mutate(ctx, invoiceID, func(_ repository.UnitOfWork, inv *models.Invoice) error {
		return engine.Cancel(inv, s.now())
	})
}

// Delete removes a draft invoice and its items. Emitted, paid and
// cancelled invoices are retained for audit and can only be cancelled.
func (s *InvoiceService) Delete(ctx context.Context, invoiceID uint) error {
	return s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		inv, err := uow.Invoices().Get(invoiceID)
		if err != nil {
			return err
		}
		if !inv.IsDraft() {
			return engine.ErrInvoiceNotEditable
		}
		return uow.Invoices().Remove(invoiceID)
	})
}

// RenderView returns the display-ready invoice representation consumed
// by the document renderer. The issuer block comes from configuration.
func (s *InvoiceService) RenderView(ctx context.Context, invoiceID uint, company view.Company) (*view.Invoice, error) {
	var out view.Invoice
	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		inv, err := uow.Invoices().Get(invoiceID)
		if err != nil {
			return err
		}
		globals, err := uow.Globals().Get()
		if err != nil {
			return err
		}
		out = view.BuildInvoice(company, inv, globals)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// mutate is the shared load-operate-persist-reload cycle of the invoice
// use cases.
func (s *InvoiceService) mutate(ctx context.Context, invoiceID uint, op func(uow repository.UnitOfWork, inv *models.Invoice) error) (*models.Invoice, error) {
	var out *models.Invoice
	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		inv, err := uow.Invoices().Get(invoiceID)
		if err != nil {
			return err
		}
		if err := op(uow, inv); err != nil {
			return err
		}
		if err := uow.Invoices().Update(inv); err != nil {
			return err
		}
		out, err = uow.Invoices().Get(invoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
