// Package memstore implements the repository contracts in memory, for
// deterministic and isolated tests. It honors the same unit-of-work
// semantics as gormstore: a transaction works on a deep copy of the
// tables and the copy replaces the live data only on commit, so a failed
// use case leaves nothing behind.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Elmeric/dfacto/internal/models"
	"github.com/Elmeric/dfacto/internal/repository"
)

// Store is an in-memory repository.Store.
type Store struct {
	mu   sync.Mutex
	data *tables
}

// New returns a store seeded like a fresh database: preset VAT rates
// (zero, reduced, intermediate, standard with standard as default) and
// default globals. Mirrors db.Seed.
func New() *Store {
	t := newTables()
	presets := []models.VatRate{
		{Name: "Exempt", Rate: decimal.Zero, IsPreset: true},
		{Name: "Reduced rate", Rate: decimal.RequireFromString("5.5"), IsPreset: true},
		{Name: "Intermediate rate", Rate: decimal.NewFromInt(10), IsPreset: true},
		{Name: "Standard rate", Rate: decimal.NewFromInt(20), IsPreset: true, IsDefault: true},
	}
	for i := range presets {
		t.ids.vatRate++
		presets[i].ID = t.ids.vatRate
		t.vatRates[presets[i].ID] = &presets[i]
	}
	t.globals = models.Globals{
		ID:           1,
		DueDelta:     30,
		PenaltyRate:  decimal.NewFromInt(12),
		DiscountRate: decimal.Zero,
	}
	return &Store{data: t}
}

// InTx runs fn against a cloned table set and commits it on success.
// Transactions are serialized by a store-wide mutex, which is the
// in-memory stand-in for the database's isolation mechanism.
func (s *Store) InTx(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.data.clone()
	if err := fn(&unitOfWork{t: work}); err != nil {
		return err
	}
	s.data = work
	return nil
}

type ids struct {
	client     uint
	vatRate    uint
	service    uint
	invoice    uint
	item       uint
	statusLog  uint
	basket     uint
	basketItem uint
}

type tables struct {
	clients   map[uint]*models.Client
	vatRates  map[uint]*models.VatRate
	services  map[uint]*models.Service
	invoices  map[uint]*models.Invoice
	baskets   map[uint]*models.Basket
	globals   models.Globals
	sequences map[string]int64
	ids       ids
}

func newTables() *tables {
	return &tables{
		clients:   make(map[uint]*models.Client),
		vatRates:  make(map[uint]*models.VatRate),
		services:  make(map[uint]*models.Service),
		invoices:  make(map[uint]*models.Invoice),
		baskets:   make(map[uint]*models.Basket),
		sequences: make(map[string]int64),
	}
}

func (t *tables) clone() *tables {
	c := newTables()
	for id, v := range t.clients {
		c.clients[id] = copyClient(v)
	}
	for id, v := range t.vatRates {
		c.vatRates[id] = copyVatRate(v)
	}
	for id, v := range t.services {
		c.services[id] = copyService(v)
	}
	for id, v := range t.invoices {
		c.invoices[id] = copyInvoice(v)
	}
	for id, v := range t.baskets {
		c.baskets[id] = copyBasket(v)
	}
	for name, v := range t.sequences {
		c.sequences[name] = v
	}
	c.globals = t.globals
	c.ids = t.ids
	return c
}

func copyClient(c *models.Client) *models.Client {
	cp := *c
	cp.Invoices = nil
	return &cp
}

func copyVatRate(v *models.VatRate) *models.VatRate {
	cp := *v
	cp.Services = nil
	return &cp
}

func copyService(s *models.Service) *models.Service {
	cp := *s
	cp.VatRate = nil
	return &cp
}

func copyInvoice(inv *models.Invoice) *models.Invoice {
	cp := *inv
	cp.Client = nil
	cp.IssueDate = copyTime(inv.IssueDate)
	cp.DueDate = copyTime(inv.DueDate)
	cp.Items = append([]models.InvoiceItem(nil), inv.Items...)
	cp.StatusLog = make([]models.StatusLog, len(inv.StatusLog))
	for i := range inv.StatusLog {
		cp.StatusLog[i] = inv.StatusLog[i]
		cp.StatusLog[i].To = copyTime(inv.StatusLog[i].To)
	}
	return &cp
}

func copyBasket(b *models.Basket) *models.Basket {
	cp := *b
	cp.Items = append([]models.BasketItem(nil), b.Items...)
	return &cp
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

type unitOfWork struct {
	t *tables
}

func (u *unitOfWork) Clients() repository.ClientRepository     { return &clientRepo{t: u.t} }
func (u *unitOfWork) VatRates() repository.VatRateRepository   { return &vatRateRepo{t: u.t} }
func (u *unitOfWork) Services() repository.ServiceRepository   { return &serviceRepo{t: u.t} }
func (u *unitOfWork) Invoices() repository.InvoiceRepository   { return &invoiceRepo{t: u.t} }
func (u *unitOfWork) Baskets() repository.BasketRepository     { return &basketRepo{t: u.t} }
func (u *unitOfWork) Globals() repository.GlobalsRepository    { return &globalsRepo{t: u.t} }
func (u *unitOfWork) Sequences() repository.SequenceRepository { return &sequenceRepo{t: u.t} }

type sequenceRepo struct {
	t *tables
}

func (r *sequenceRepo) Next(name string) (int64, error) {
	r.t.sequences[name]++
	return r.t.sequences[name], nil
}

type globalsRepo struct {
	t *tables
}

func (r *globalsRepo) Get() (*models.Globals, error) {
	g := r.t.globals
	return &g, nil
}

func (r *globalsRepo) Update(g *models.Globals) error {
	r.t.globals = *g
	return nil
}

var _ repository.Store = (*Store)(nil)
