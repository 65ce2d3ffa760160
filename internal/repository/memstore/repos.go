package memstore

import (
	"sort"

	"github.com/Elmeric/dfacto/internal/engine"
	"github.com/Elmeric/dfacto/internal/models"
	"github.com/Elmeric/dfacto/internal/repository"
)

type clientRepo struct {
	t *tables
}

func (r *clientRepo) Get(id uint) (*models.Client, error) {
	c, ok := r.t.clients[id]
	if !ok {
		return nil, engine.ErrClientNotFound
	}
	return copyClient(c), nil
}

func (r *clientRepo) List(f repository.ClientFilter) ([]models.Client, error) {
	out := make([]models.Client, 0, len(r.t.clients))
	for _, c := range r.t.clients {
		if f.ActiveOnly && !c.IsActive {
			continue
		}
		out = append(out, *copyClient(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *clientRepo) Add(c *models.Client) error {
	r.t.ids.client++
	c.ID = r.t.ids.client
	r.t.clients[c.ID] = copyClient(c)
	return nil
}

func (r *clientRepo) Update(c *models.Client) error {
	if _, ok := r.t.clients[c.ID]; !ok {
		return engine.ErrClientNotFound
	}
	r.t.clients[c.ID] = copyClient(c)
	return nil
}

func (r *clientRepo) Remove(id uint) error {
	if _, ok := r.t.clients[id]; !ok {
		return engine.ErrClientNotFound
	}
	for _, inv := range r.t.invoices {
		if inv.ClientID == id {
			return engine.ErrConstraintViolation
		}
	}
	for bid, b := range r.t.baskets {
		if b.ClientID == id {
			delete(r.t.baskets, bid)
		}
	}
	delete(r.t.clients, id)
	return nil
}

type vatRateRepo struct {
	t *tables
}

func (r *vatRateRepo) Get(id uint) (*models.VatRate, error) {
	v, ok := r.t.vatRates[id]
	if !ok {
		return nil, engine.ErrVatRateNotFound
	}
	return copyVatRate(v), nil
}

func (r *vatRateRepo) Default() (*models.VatRate, error) {
	for _, v := range r.t.vatRates {
		if v.IsDefault {
			return copyVatRate(v), nil
		}
	}
	return nil, engine.ErrVatRateNotFound
}

func (r *vatRateRepo) List() ([]models.VatRate, error) {
	out := make([]models.VatRate, 0, len(r.t.vatRates))
	for _, v := range r.t.vatRates {
		out = append(out, *copyVatRate(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rate.LessThan(out[j].Rate) })
	return out, nil
}

func (r *vatRateRepo) Add(v *models.VatRate) error {
	r.t.ids.vatRate++
	v.ID = r.t.ids.vatRate
	r.t.vatRates[v.ID] = copyVatRate(v)
	return nil
}

func (r *vatRateRepo) Update(v *models.VatRate) error {
	if _, ok := r.t.vatRates[v.ID]; !ok {
		return engine.ErrVatRateNotFound
	}
	r.t.vatRates[v.ID] = copyVatRate(v)
	return nil
}

func (r *vatRateRepo) Remove(id uint) error {
	v, ok := r.t.vatRates[id]
	if !ok {
		return engine.ErrVatRateNotFound
	}
	if v.IsPreset || v.IsDefault {
		return engine.ErrConstraintViolation
	}
	for _, s := range r.t.services {
		if s.VatRateID == id {
			return engine.ErrConstraintViolation
		}
	}
	delete(r.t.vatRates, id)
	return nil
}

type serviceRepo struct {
	t *tables
}

func (r *serviceRepo) Get(id uint) (*models.Service, error) {
	s, ok := r.t.services[id]
	if !ok {
		return nil, engine.ErrServiceNotFound
	}
	cp := copyService(s)
	if v, ok := r.t.vatRates[s.VatRateID]; ok {
		cp.VatRate = copyVatRate(v)
	}
	return cp, nil
}

func (r *serviceRepo) List(f repository.ServiceFilter) ([]models.Service, error) {
	out := make([]models.Service, 0, len(r.t.services))
	for id, s := range r.t.services {
		if f.ActiveOnly && !s.IsActive {
			continue
		}
		cp, err := r.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, *cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *serviceRepo) Add(s *models.Service) error {
	r.t.ids.service++
	s.ID = r.t.ids.service
	r.t.services[s.ID] = copyService(s)
	return nil
}

func (r *serviceRepo) Update(s *models.Service) error {
	if _, ok := r.t.services[s.ID]; !ok {
		return engine.ErrServiceNotFound
	}
	r.t.services[s.ID] = copyService(s)
	return nil
}

func (r *serviceRepo) Remove(id uint) error {
	if _, ok := r.t.services[id]; !ok {
		return engine.ErrServiceNotFound
	}
	for _, inv := range r.t.invoices {
		if inv.Status == models.InvoiceStatusDraft {
			continue
		}
		for i := range inv.Items {
			if inv.Items[i].ServiceID == id {
				return engine.ErrConstraintViolation
			}
		}
	}
	for _, b := range r.t.baskets {
		kept := b.Items[:0]
		for _, it := range b.Items {
			if it.ServiceID != id {
				kept = append(kept, it)
			}
		}
		b.Items = kept
	}
	delete(r.t.services, id)
	return nil
}

type invoiceRepo struct {
	t *tables
}

func (r *invoiceRepo) Get(id uint) (*models.Invoice, error) {
	inv, ok := r.t.invoices[id]
	if !ok {
		return nil, engine.ErrInvoiceNotFound
	}
	cp := copyInvoice(inv)
	if c, ok := r.t.clients[inv.ClientID]; ok {
		cp.Client = copyClient(c)
	}
	return cp, nil
}

func (r *invoiceRepo) List(f repository.InvoiceFilter) ([]models.Invoice, error) {
	out := make([]models.Invoice, 0, len(r.t.invoices))
	for id, inv := range r.t.invoices {
		if f.ClientID != 0 && inv.ClientID != f.ClientID {
			continue
		}
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		cp, err := r.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, *cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *invoiceRepo) Add(inv *models.Invoice) error {
	r.t.ids.invoice++
	inv.ID = r.t.ids.invoice
	r.assignIDs(inv)
	r.t.invoices[inv.ID] = copyInvoice(inv)
	return nil
}

func (r *invoiceRepo) Update(inv *models.Invoice) error {
	if _, ok := r.t.invoices[inv.ID]; !ok {
		return engine.ErrInvoiceNotFound
	}
	r.assignIDs(inv)
	r.t.invoices[inv.ID] = copyInvoice(inv)
	return nil
}

// assignIDs gives database identities to new items and log entries, as
// the relational store would on save.
func (r *invoiceRepo) assignIDs(inv *models.Invoice) {
	for i := range inv.Items {
		inv.Items[i].InvoiceID = inv.ID
		if inv.Items[i].ID == 0 {
			r.t.ids.item++
			inv.Items[i].ID = r.t.ids.item
		}
	}
	for i := range inv.StatusLog {
		inv.StatusLog[i].InvoiceID = inv.ID
		if inv.StatusLog[i].ID == 0 {
			r.t.ids.statusLog++
			inv.StatusLog[i].ID = r.t.ids.statusLog
		}
	}
}

func (r *invoiceRepo) Remove(id uint) error {
	if _, ok := r.t.invoices[id]; !ok {
		return engine.ErrInvoiceNotFound
	}
	delete(r.t.invoices, id)
	return nil
}

func (r *invoiceRepo) CountByClient(clientID uint) (int64, error) {
	var count int64
	for _, inv := range r.t.invoices {
		if inv.ClientID == clientID {
			count++
		}
	}
	return count, nil
}

type basketRepo struct {
	t *tables
}

func (r *basketRepo) GetByClient(clientID uint) (*models.Basket, error) {
	if _, ok := r.t.clients[clientID]; !ok {
		return nil, engine.ErrClientNotFound
	}
	for _, b := range r.t.baskets {
		if b.ClientID == clientID {
			return copyBasket(b), nil
		}
	}
	r.t.ids.basket++
	b := &models.Basket{ID: r.t.ids.basket, ClientID: clientID}
	r.t.baskets[b.ID] = b
	return copyBasket(b), nil
}

func (r *basketRepo) Update(b *models.Basket) error {
	if _, ok := r.t.baskets[b.ID]; !ok {
		return engine.ErrBasketNotFound
	}
	for i := range b.Items {
		b.Items[i].BasketID = b.ID
		if b.Items[i].ID == 0 {
			r.t.ids.basketItem++
			b.Items[i].ID = r.t.ids.basketItem
		}
	}
	r.t.baskets[b.ID] = copyBasket(b)
	return nil
}
