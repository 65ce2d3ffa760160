package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Elmeric/dfacto/internal/engine"
	"github.com/Elmeric/dfacto/internal/models"
	"github.com/Elmeric/dfacto/internal/money"
)

func TestBasketAccumulatesQuantities(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	basket, err := f.baskets.AddItem(ctx, f.client.ID, f.service.ID, decimal.NewFromInt(2))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	basket, err = f.baskets.AddItem(ctx, f.client.ID, f.service.ID, decimal.NewFromInt(3))
	if err != nil {
		t.Fatalf("add again: %v", err)
	}
	if len(basket.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(basket.Items))
	}
	if !basket.Items[0].Quantity.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("quantity = %s, want 5", basket.Items[0].Quantity)
	}

	if _, err := f.baskets.AddItem(ctx, f.client.ID, f.service.ID, decimal.Zero); !errors.Is(err, engine.ErrInvalidQuantity) {
		t.Fatalf("zero quantity: err = %v, want ErrInvalidQuantity", err)
	}
}

func TestBasketItemEditing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if _, err := f.baskets.AddItem(ctx, f.client.ID, f.service.ID, decimal.NewFromInt(2)); err != nil {
		t.Fatalf("add: %v", err)
	}

	basket, err := f.baskets.UpdateItemQuantity(ctx, f.client.ID, f.service.ID, decimal.RequireFromString("1.5"))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !basket.Items[0].Quantity.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("quantity = %s, want 1.5", basket.Items[0].Quantity)
	}

	basket, err = f.baskets.RemoveItem(ctx, f.client.ID, f.service.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(basket.Items) != 0 {
		t.Fatalf("items = %d, want 0", len(basket.Items))
	}

	if _, err := f.baskets.RemoveItem(ctx, f.client.ID, f.service.ID); !errors.Is(err, engine.ErrItemNotFound) {
		t.Fatalf("remove missing: err = %v, want ErrItemNotFound", err)
	}
}

func TestBasketToInvoiceSnapshotsCurrentPrices(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if _, err := f.baskets.AddItem(ctx, f.client.ID, f.service.ID, decimal.NewFromInt(3)); err != nil {
		t.Fatalf("add: %v", err)
	}

	// basket items track the live service: a price change before
	// invoicing is reflected, one after is not
	newPrice := money.MustFromMajor("200.00")
	if _, err := f.catalog.UpdateService(ctx, f.service.ID, ServiceUpdate{UnitPrice: &newPrice}); err != nil {
		t.Fatalf("update service: %v", err)
	}

	inv, err := f.baskets.Invoice(ctx, f.client.ID)
	if err != nil {
		t.Fatalf("invoice from basket: %v", err)
	}
	if inv.Status != models.InvoiceStatusDraft {
		t.Fatalf("status = %s, want draft", inv.Status)
	}
	if got := inv.Items[0].UnitPrice.String(); got != "200.00" {
		t.Fatalf("snapshot price = %s, want 200.00", got)
	}
	if got := inv.RawAmount.String(); got != "600.00" {
		t.Fatalf("raw = %s, want 600.00", got)
	}

	// and the basket is now empty
	basket, err := f.baskets.Get(ctx, f.client.ID)
	if err != nil {
		t.Fatalf("get basket: %v", err)
	}
	if len(basket.Items) != 0 {
		t.Fatalf("basket not emptied: %d items", len(basket.Items))
	}
}

func TestEmptyBasketCannotBeInvoiced(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if _, err := f.baskets.Invoice(ctx, f.client.ID); !errors.Is(err, engine.ErrEmptyInvoice) {
		t.Fatalf("err = %v, want ErrEmptyInvoice", err)
	}
}

func TestBasketUnknownClient(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if _, err := f.baskets.Get(ctx, 9999); !errors.Is(err, engine.ErrClientNotFound) {
		t.Fatalf("err = %v, want ErrClientNotFound", err)
	}
}
