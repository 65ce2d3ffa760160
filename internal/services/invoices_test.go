package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Elmeric/dfacto/internal/engine"
	"github.com/Elmeric/dfacto/internal/models"
	"github.com/Elmeric/dfacto/internal/money"
	"github.com/Elmeric/dfacto/internal/repository/memstore"
)

type fixture struct {
	store    *memstore.Store
	clients  *ClientService
	catalog  *CatalogService
	invoices *InvoiceService
	baskets  *BasketService

	client  *models.Client
	service *models.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	f := &fixture{
		store:    store,
		clients:  NewClientService(store),
		catalog:  NewCatalogService(store),
		invoices: NewInvoiceService(store),
		baskets:  NewBasketService(store),
	}
	ctx := context.Background()

	client, err := f.clients.Create(ctx, ClientCreate{Name: "ACME", City: "Paris", Email: "billing@acme.test"})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	f.client = client

	svc, err := f.catalog.CreateService(ctx, ServiceCreate{
		Name:      "Consulting",
		UnitPrice: money.MustFromMajor("100.00"),
	})
	if err != nil {
		t.Fatalf("create service: %v", err)
	}
	if svc.VatRate == nil || !svc.VatRate.Rate.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected default 20%% VAT rate, got %+v", svc.VatRate)
	}
	f.service = svc
	return f
}

func TestInvoiceScenario(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	inv, err := f.invoices.Create(ctx, f.client.ID)
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if inv.Status != models.InvoiceStatusDraft || len(inv.Items) != 0 {
		t.Fatalf("new invoice not an empty draft: %+v", inv)
	}

	inv, err = f.invoices.AddItem(ctx, inv.ID, f.service.ID, decimal.NewFromInt(3))
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if got := inv.RawAmount.String(); got != "300.00" {
		t.Errorf("raw amount = %s, want 300.00", got)
	}
	if got := inv.VatAmount.String(); got != "60.00" {
		t.Errorf("vat amount = %s, want 60.00", got)
	}
	if got := inv.NetAmount.String(); got != "360.00" {
		t.Errorf("net amount = %s, want 360.00", got)
	}

	inv, err = f.invoices.Emit(ctx, inv.ID)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if inv.Status != models.InvoiceStatusEmitted || inv.Code == "" {
		t.Fatalf("emit did not stamp status/code: %+v", inv)
	}

	inv, err = f.invoices.MarkPaid(ctx, inv.ID)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if inv.Status != models.InvoiceStatusPaid {
		t.Fatalf("status = %s, want paid", inv.Status)
	}

	if _, err := f.invoices.AddItem(ctx, inv.ID, f.service.ID, decimal.NewFromInt(1)); !errors.Is(err, engine.ErrInvoiceNotEditable) {
		t.Fatalf("add item on paid invoice: err = %v, want ErrInvoiceNotEditable", err)
	}
}

func TestEmitEmptyInvoiceLeavesDraft(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	inv, err := f.invoices.Create(ctx, f.client.ID)
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if _, err := f.invoices.Emit(ctx, inv.ID); !errors.Is(err, engine.ErrEmptyInvoice) {
		t.Fatalf("emit empty: err = %v, want ErrEmptyInvoice", err)
	}

	reloaded, err := f.invoices.Get(ctx, inv.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reloaded.Status != models.InvoiceStatusDraft || reloaded.Code != "" {
		t.Fatalf("failed emit mutated stored invoice: %+v", reloaded)
	}
}

func TestEmittedInvoiceSurvivesReload(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	inv, _ := f.invoices.Create(ctx, f.client.ID)
	inv, err := f.invoices.AddItem(ctx, inv.ID, f.service.ID, decimal.RequireFromString("2.5"))
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	before := inv.Items

	inv, err = f.invoices.Emit(ctx, inv.ID)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	reloaded, err := f.invoices.Get(ctx, inv.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != models.InvoiceStatusEmitted || reloaded.Code == "" {
		t.Fatalf("reload lost emission: %+v", reloaded)
	}
	if len(reloaded.Items) != len(before) {
		t.Fatalf("item count changed on reload")
	}
	for i := range before {
		got, want := reloaded.Items[i], before[i]
		if got.Designation != want.Designation ||
			got.UnitPrice != want.UnitPrice ||
			!got.Quantity.Equal(want.Quantity) ||
			!got.VatRate.Equal(want.VatRate) ||
			got.RawAmount != want.RawAmount ||
			got.VatAmount != want.VatAmount ||
			got.NetAmount != want.NetAmount {
			t.Fatalf("item %d changed on reload:\n got %+v\nwant %+v", i, got, want)
		}
	}
}

func TestServiceEditDoesNotAlterEmittedInvoice(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	inv, _ := f.invoices.Create(ctx, f.client.ID)
	if _, err := f.invoices.AddItem(ctx, inv.ID, f.service.ID, decimal.NewFromInt(3)); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := f.invoices.Emit(ctx, inv.ID); err != nil {
		t.Fatalf("emit: %v", err)
	}

	newPrice := money.MustFromMajor("250.00")
	if _, err := f.catalog.UpdateService(ctx, f.service.ID, ServiceUpdate{UnitPrice: &newPrice}); err != nil {
		t.Fatalf("update service: %v", err)
	}

	reloaded, err := f.invoices.Get(ctx, inv.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.NetAmount.String(); got != "360.00" {
		t.Fatalf("emitted invoice amount changed after service edit: %s", got)
	}
	if got := reloaded.Items[0].UnitPrice.String(); got != "100.00" {
		t.Fatalf("item snapshot changed after service edit: %s", got)
	}
}

func TestServiceDeleteBlockedByNonDraftInvoice(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	inv, _ := f.invoices.Create(ctx, f.client.ID)
	if _, err := f.invoices.AddItem(ctx, inv.ID, f.service.ID, decimal.NewFromInt(1)); err != nil {
		t.Fatalf("add item: %v", err)
	}

	// Referenced only by a draft: deletable.
	if err := f.catalog.DeleteService(ctx, f.service.ID); err != nil {
		t.Fatalf("delete service referenced by draft: %v", err)
	}

	svc, err := f.catalog.CreateService(ctx, ServiceCreate{
		Name:      "Training",
		UnitPrice: money.MustFromMajor("500.00"),
	})
	if err != nil {
		t.Fatalf("create service: %v", err)
	}
	inv, _ = f.invoices.Create(ctx, f.client.ID)
	if _, err := f.invoices.AddItem(ctx, inv.ID, svc.ID, decimal.NewFromInt(1)); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := f.invoices.Emit(ctx, inv.ID); err != nil {
		t.Fatalf("emit: %v", err)
	}

	if err := f.catalog.DeleteService(ctx, svc.ID); !errors.Is(err, engine.ErrConstraintViolation) {
		t.Fatalf("delete service on emitted invoice: err = %v, want constraint_violation", err)
	}
	if _, err := f.catalog.GetService(ctx, svc.ID); err != nil {
		t.Fatalf("service should survive the blocked delete: %v", err)
	}
}

func TestClientDeleteBlockedByInvoice(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	inv, _ := f.invoices.Create(ctx, f.client.ID)
	if _, err := f.invoices.AddItem(ctx, inv.ID, f.service.ID, decimal.NewFromInt(1)); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := f.invoices.Emit(ctx, inv.ID); err != nil {
		t.Fatalf("emit: %v", err)
	}

	if err := f.clients.Delete(ctx, f.client.ID); !errors.Is(err, engine.ErrConstraintViolation) {
		t.Fatalf("delete client: err = %v, want ErrConstraintViolation", err)
	}

	// both survive unchanged
	if _, err := f.clients.Get(ctx, f.client.ID); err != nil {
		t.Fatalf("client gone after failed delete: %v", err)
	}
	reloaded, err := f.invoices.Get(ctx, inv.ID)
	if err != nil {
		t.Fatalf("invoice gone after failed delete: %v", err)
	}
	if reloaded.Status != models.InvoiceStatusEmitted {
		t.Fatalf("invoice status changed: %s", reloaded.Status)
	}
}

func TestDeleteDraftOnly(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	draft, _ := f.invoices.Create(ctx, f.client.ID)
	if err := f.invoices.Delete(ctx, draft.ID); err != nil {
		t.Fatalf("delete draft: %v", err)
	}
	if _, err := f.invoices.Get(ctx, draft.ID); !errors.Is(err, engine.ErrInvoiceNotFound) {
		t.Fatalf("draft still present: %v", err)
	}

	emitted, _ := f.invoices.Create(ctx, f.client.ID)
	if _, err := f.invoices.AddItem(ctx, emitted.ID, f.service.ID, decimal.NewFromInt(1)); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if _, err := f.invoices.Emit(ctx, emitted.ID); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if err := f.invoices.Delete(ctx, emitted.ID); !errors.Is(err, engine.ErrInvoiceNotEditable) {
		t.Fatalf("delete emitted: err = %v, want ErrInvoiceNotEditable", err)
	}
}

func TestCodesAreMonotonicAcrossDraftDeletion(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	emit := func() string {
		t.Helper()
		inv, _ := f.invoices.Create(ctx, f.client.ID)
		if _, err := f.invoices.AddItem(ctx, inv.ID, f.service.ID, decimal.NewFromInt(1)); err != nil {
			t.Fatalf("add item: %v", err)
		}
		inv, err := f.invoices.Emit(ctx, inv.ID)
		if err != nil {
			t.Fatalf("emit: %v", err)
		}
		return inv.Code
	}

	first := emit()

	// deleting an intervening draft must not free its (never assigned) code
	draft, _ := f.invoices.Create(ctx, f.client.ID)
	if err := f.invoices.Delete(ctx, draft.ID); err != nil {
		t.Fatalf("delete draft: %v", err)
	}

	second := emit()
	if first != "FC00001" || second != "FC00002" {
		t.Fatalf("codes = %s, %s; want FC00001, FC00002", first, second)
	}
}

func TestFailedUseCaseRollsBack(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	inv, _ := f.invoices.Create(ctx, f.client.ID)
	if _, err := f.invoices.AddItem(ctx, inv.ID, f.service.ID, decimal.NewFromInt(2)); err != nil {
		t.Fatalf("add item: %v", err)
	}

	// referencing a missing service fails after the invoice was loaded;
	// nothing of the use case may persist
	if _, err := f.invoices.AddItem(ctx, inv.ID, 9999, decimal.NewFromInt(1)); !errors.Is(err, engine.ErrServiceNotFound) {
		t.Fatalf("err = %v, want ErrServiceNotFound", err)
	}

	reloaded, err := f.invoices.Get(ctx, inv.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded.Items) != 1 {
		t.Fatalf("rolled-back use case left %d items, want 1", len(reloaded.Items))
	}
}

func TestSumOfItemNetAmountsEqualsAggregate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	other, err := f.catalog.CreateService(ctx, ServiceCreate{
		Name:      "Support",
		UnitPrice: money.MustFromMajor("33.33"),
	})
	if err != nil {
		t.Fatalf("create service: %v", err)
	}

	inv, _ := f.invoices.Create(ctx, f.client.ID)
	quantities := []string{"1", "2.5", "0.25"}
	for i, q := range quantities {
		svcID := f.service.ID
		if i%2 == 1 {
			svcID = other.ID
		}
		if inv, err = f.invoices.AddItem(ctx, inv.ID, svcID, decimal.RequireFromString(q)); err != nil {
			t.Fatalf("add item %d: %v", i, err)
		}
	}

	var sum money.Amount
	for _, item := range inv.Items {
		sum = sum.Add(item.NetAmount)
	}
	if sum != inv.NetAmount {
		t.Fatalf("sum of item nets %s != aggregate %s", sum, inv.NetAmount)
	}
}

func TestContextCancellation(t *testing.T) {
	f := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.invoices.Create(ctx, f.client.ID); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
