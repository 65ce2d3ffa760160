package gormstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Elmeric/dfacto/internal/engine"
	"github.com/Elmeric/dfacto/internal/models"
	"github.com/Elmeric/dfacto/internal/money"
	"github.com/Elmeric/dfacto/internal/repository"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Client{}, &models.VatRate{}, &models.Service{},
		&models.Invoice{}, &models.InvoiceItem{}, &models.StatusLog{},
		&models.Basket{}, &models.BasketItem{},
		&models.Globals{}, &models.Sequence{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db)
}

// seedFixture creates a client, the standard VAT rate and one service.
func seedFixture(t *testing.T, store *Store) (clientID, serviceID uint) {
	t.Helper()
	ctx := context.Background()
	err := store.InTx(ctx, func(uow repository.UnitOfWork) error {
		client := &models.Client{Name: "ACME", Address: "1 rue de la Paix", ZipCode: "75002", City: "Paris", IsActive: true}
		if err := uow.Clients().Add(client); err != nil {
			return err
		}
		rate := &models.VatRate{Name: "Standard rate", Rate: decimal.NewFromInt(20), IsDefault: true, IsPreset: true}
		if err := uow.VatRates().Add(rate); err != nil {
			return err
		}
		svc := &models.Service{Name: "Consulting", UnitPrice: money.MustFromMajor("100"), VatRateID: rate.ID, IsActive: true}
		if err := uow.Services().Add(svc); err != nil {
			return err
		}
		clientID = client.ID
		serviceID = svc.ID
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return clientID, serviceID
}

func TestEmitThenReload(t *testing.T) {
	store := setupTestStore(t)
	clientID, serviceID := seedFixture(t, store)
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	var invoiceID uint
	err := store.InTx(ctx, func(uow repository.UnitOfWork) error {
		svc, err := uow.Services().Get(serviceID)
		if err != nil {
			return err
		}
		inv := &models.Invoice{ClientID: clientID, Status: models.InvoiceStatusDraft}
		engine.InitStatusLog(inv, now)
		if _, err := engine.AddItem(inv, engine.Snapshot(svc), decimal.NewFromInt(3)); err != nil {
			return err
		}
		if err := uow.Invoices().Add(inv); err != nil {
			return err
		}
		n, err := uow.Sequences().Next(models.SeqInvoiceCode)
		if err != nil {
			return err
		}
		if err := engine.Emit(inv, staticAllocator(engine.FormatCode(n)), now, 30); err != nil {
			return err
		}
		invoiceID = inv.ID
		return uow.Invoices().Update(inv)
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	var reloaded *models.Invoice
	err = store.InTx(ctx, func(uow repository.UnitOfWork) error {
		reloaded, err = uow.Invoices().Get(invoiceID)
		return err
	})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Code != "FC00001" {
		t.Errorf("code = %q, want FC00001", reloaded.Code)
	}
	if reloaded.Status != models.InvoiceStatusEmitted {
		t.Errorf("status = %q, want %q", reloaded.Status, models.InvoiceStatusEmitted)
	}
	if len(reloaded.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(reloaded.Items))
	}
	item := reloaded.Items[0]
	if item.Designation != "Consulting" || item.UnitPrice != money.MustFromMajor("100") {
		t.Errorf("item snapshot = %q %v", item.Designation, item.UnitPrice)
	}
	if !item.Quantity.Equal(decimal.NewFromInt(3)) {
		t.Errorf("quantity = %s, want 3", item.Quantity)
	}
	if reloaded.NetAmount != money.MustFromMajor("360") {
		t.Errorf("net = %v, want 360.00", reloaded.NetAmount)
	}
	if reloaded.IssueDate == nil || !reloaded.IssueDate.Equal(now) {
		t.Errorf("issue date = %v, want %v", reloaded.IssueDate, now)
	}
	if reloaded.DueDate == nil || !reloaded.DueDate.Equal(now.AddDate(0, 0, 30)) {
		t.Errorf("due date = %v", reloaded.DueDate)
	}
	if len(reloaded.StatusLog) != 2 {
		t.Errorf("status log entries = %d, want 2", len(reloaded.StatusLog))
	}
}

func TestRollbackLeavesStateUntouched(t *testing.T) {
	store := setupTestStore(t)
	clientID, _ := seedFixture(t, store)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.InTx(ctx, func(uow repository.UnitOfWork) error {
		inv := &models.Invoice{ClientID: clientID, Status: models.InvoiceStatusDraft}
		engine.InitStatusLog(inv, time.Now())
		if err := uow.Invoices().Add(inv); err != nil {
			return err
		}
		if _, err := uow.Sequences().Next(models.SeqInvoiceCode); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	err = store.InTx(ctx, func(uow repository.UnitOfWork) error {
		invoices, err := uow.Invoices().List(repository.InvoiceFilter{})
		if err != nil {
			return err
		}
		if len(invoices) != 0 {
			t.Errorf("invoices after rollback = %d, want 0", len(invoices))
		}
		// The aborted transaction must not have burned a sequence number.
		n, err := uow.Sequences().Next(models.SeqInvoiceCode)
		if err != nil {
			return err
		}
		if n != 1 {
			t.Errorf("sequence after rollback = %d, want 1", n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
}

func TestSequenceIsMonotonic(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	var got []int64
	for i := 0; i < 3; i++ {
		err := store.InTx(ctx, func(uow repository.UnitOfWork) error {
			n, err := uow.Sequences().Next(models.SeqInvoiceCode)
			if err != nil {
				return err
			}
			got = append(got, n)
			return nil
		})
		if err != nil {
			t.Fatalf("next: %v", err)
		}
	}
	for i, n := range got {
		if n != int64(i+1) {
			t.Errorf("value %d = %d, want %d", i, n, i+1)
		}
	}
}

func TestClientRemoveBlockedByInvoice(t *testing.T) {
	store := setupTestStore(t)
	clientID, _ := seedFixture(t, store)
	ctx := context.Background()

	err := store.InTx(ctx, func(uow repository.UnitOfWork) error {
		inv := &models.Invoice{ClientID: clientID, Status: models.InvoiceStatusDraft}
		engine.InitStatusLog(inv, time.Now())
		return uow.Invoices().Add(inv)
	})
	if err != nil {
		t.Fatalf("add invoice: %v", err)
	}

	err = store.InTx(ctx, func(uow repository.UnitOfWork) error {
		return uow.Clients().Remove(clientID)
	})
	if !errors.Is(err, engine.ErrConstraintViolation) {
		t.Fatalf("err = %v, want constraint_violation", err)
	}
}

func TestVatRateRemoveGuards(t *testing.T) {
	store := setupTestStore(t)
	_, serviceID := seedFixture(t, store)
	ctx := context.Background()

	var presetID, freeID uint
	err := store.InTx(ctx, func(uow repository.UnitOfWork) error {
		svc, err := uow.Services().Get(serviceID)
		if err != nil {
			return err
		}
		presetID = svc.VatRateID

		free := &models.VatRate{Name: "Temporary", Rate: decimal.NewFromInt(7)}
		if err := uow.VatRates().Add(free); err != nil {
			return err
		}
		freeID = free.ID
		return nil
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	err = store.InTx(ctx, func(uow repository.UnitOfWork) error {
		return uow.VatRates().Remove(presetID)
	})
	if !errors.Is(err, engine.ErrConstraintViolation) {
		t.Fatalf("remove preset: err = %v, want constraint_violation", err)
	}

	err = store.InTx(ctx, func(uow repository.UnitOfWork) error {
		return uow.VatRates().Remove(freeID)
	})
	if err != nil {
		t.Fatalf("remove unreferenced rate: %v", err)
	}
}

func TestInvoiceUpdateDeletesRemovedItems(t *testing.T) {
	store := setupTestStore(t)
	clientID, serviceID := seedFixture(t, store)
	ctx := context.Background()

	var invoiceID uint
	err := store.InTx(ctx, func(uow repository.UnitOfWork) error {
		svc, err := uow.Services().Get(serviceID)
		if err != nil {
			return err
		}
		inv := &models.Invoice{ClientID: clientID, Status: models.InvoiceStatusDraft}
		engine.InitStatusLog(inv, time.Now())
		snap := engine.Snapshot(svc)
		if _, err := engine.AddItem(inv, snap, decimal.NewFromInt(1)); err != nil {
			return err
		}
		if _, err := engine.AddItem(inv, snap, decimal.NewFromInt(2)); err != nil {
			return err
		}
		if err := uow.Invoices().Add(inv); err != nil {
			return err
		}
		invoiceID = inv.ID
		return nil
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	err = store.InTx(ctx, func(uow repository.UnitOfWork) error {
		inv, err := uow.Invoices().Get(invoiceID)
		if err != nil {
			return err
		}
		if err := engine.RemoveItem(inv, inv.Items[0].ID); err != nil {
			return err
		}
		return uow.Invoices().Update(inv)
	})
	if err != nil {
		t.Fatalf("remove item: %v", err)
	}

	err = store.InTx(ctx, func(uow repository.UnitOfWork) error {
		inv, err := uow.Invoices().Get(invoiceID)
		if err != nil {
			return err
		}
		if len(inv.Items) != 1 {
			t.Fatalf("items after update = %d, want 1", len(inv.Items))
		}
		if !inv.Items[0].Quantity.Equal(decimal.NewFromInt(2)) {
			t.Errorf("surviving quantity = %s, want 2", inv.Items[0].Quantity)
		}
		if inv.Items[0].Position != 0 {
			t.Errorf("surviving position = %d, want 0", inv.Items[0].Position)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
}

func TestServiceRemoveBlockedByNonDraftItem(t *testing.T) {
	store := setupTestStore(t)
	clientID, serviceID := seedFixture(t, store)
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	err := store.InTx(ctx, func(uow repository.UnitOfWork) error {
		svc, err := uow.Services().Get(serviceID)
		if err != nil {
			return err
		}
		inv := &models.Invoice{ClientID: clientID, Status: models.InvoiceStatusDraft}
		engine.InitStatusLog(inv, now)
		if _, err := engine.AddItem(inv, engine.Snapshot(svc), decimal.NewFromInt(1)); err != nil {
			return err
		}
		if err := uow.Invoices().Add(inv); err != nil {
			return err
		}
		if err := engine.Emit(inv, staticAllocator("FC00001"), now, 30); err != nil {
			return err
		}
		return uow.Invoices().Update(inv)
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	err = store.InTx(ctx, func(uow repository.UnitOfWork) error {
		return uow.Services().Remove(serviceID)
	})
	if !errors.Is(err, engine.ErrConstraintViolation) {
		t.Fatalf("remove service on emitted invoice: err = %v, want constraint_violation", err)
	}
	err = store.InTx(ctx, func(uow repository.UnitOfWork) error {
		_, err := uow.Services().Get(serviceID)
		return err
	})
	if err != nil {
		t.Fatalf("service should survive the blocked remove: %v", err)
	}
}

func TestServiceRemoveAllowedForDraftOnlyReferences(t *testing.T) {
	store := setupTestStore(t)
	clientID, serviceID := seedFixture(t, store)
	ctx := context.Background()

	err := store.InTx(ctx, func(uow repository.UnitOfWork) error {
		svc, err := uow.Services().Get(serviceID)
		if err != nil {
			return err
		}
		inv := &models.Invoice{ClientID: clientID, Status: models.InvoiceStatusDraft}
		engine.InitStatusLog(inv, time.Now())
		if _, err := engine.AddItem(inv, engine.Snapshot(svc), decimal.NewFromInt(1)); err != nil {
			return err
		}
		return uow.Invoices().Add(inv)
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	err = store.InTx(ctx, func(uow repository.UnitOfWork) error {
		return uow.Services().Remove(serviceID)
	})
	if err != nil {
		t.Fatalf("remove service referenced by draft: %v", err)
	}
}

func TestClientRemoveCascadesBasket(t *testing.T) {
	store := setupTestStore(t)
	clientID, serviceID := seedFixture(t, store)
	ctx := context.Background()

	err := store.InTx(ctx, func(uow repository.UnitOfWork) error {
		basket, err := uow.Baskets().GetByClient(clientID)
		if err != nil {
			return err
		}
		basket.Items = append(basket.Items, models.BasketItem{
			BasketID:  basket.ID,
			ServiceID: serviceID,
			Quantity:  decimal.NewFromInt(2),
		})
		return uow.Baskets().Update(basket)
	})
	if err != nil {
		t.Fatalf("fill basket: %v", err)
	}

	err = store.InTx(ctx, func(uow repository.UnitOfWork) error {
		return uow.Clients().Remove(clientID)
	})
	if err != nil {
		t.Fatalf("remove client: %v", err)
	}

	err = store.InTx(ctx, func(uow repository.UnitOfWork) error {
		_, err := uow.Baskets().GetByClient(clientID)
		if !errors.Is(err, engine.ErrClientNotFound) {
			t.Errorf("basket lookup after removal: err = %v, want client_not_found", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}

	// no orphan basket rows survive the client
	var baskets, items int64
	if err := store.db.Model(&models.Basket{}).Where("client_id = ?", clientID).Count(&baskets).Error; err != nil {
		t.Fatalf("count baskets: %v", err)
	}
	if err := store.db.Model(&models.BasketItem{}).Count(&items).Error; err != nil {
		t.Fatalf("count basket items: %v", err)
	}
	if baskets != 0 || items != 0 {
		t.Fatalf("orphan basket rows after client removal: baskets=%d items=%d", baskets, items)
	}
}

func TestBasketGetByClientCreates(t *testing.T) {
	store := setupTestStore(t)
	clientID, _ := seedFixture(t, store)
	ctx := context.Background()

	err := store.InTx(ctx, func(uow repository.UnitOfWork) error {
		basket, err := uow.Baskets().GetByClient(clientID)
		if err != nil {
			return err
		}
		if basket.ID == 0 {
			t.Error("basket not persisted on first access")
		}
		if len(basket.Items) != 0 {
			t.Errorf("new basket items = %d, want 0", len(basket.Items))
		}
		again, err := uow.Baskets().GetByClient(clientID)
		if err != nil {
			return err
		}
		if again.ID != basket.ID {
			t.Errorf("second access created a new basket: %d != %d", again.ID, basket.ID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("basket: %v", err)
	}
}

// staticAllocator hands out a pre-computed code.
type staticAllocator string

func (a staticAllocator) NextInvoiceCode() (string, error) { return string(a), nil }
