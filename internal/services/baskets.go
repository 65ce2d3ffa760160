package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Elmeric/dfacto/internal/engine"
	"github.com/Elmeric/dfacto/internal/models"
	"github.com/Elmeric/dfacto/internal/repository"
)

// BasketService manages each client's pending items. Basket items keep a
// live service reference; snapshots are only taken when the basket is
// turned into a draft invoice.
type BasketService struct {
	store repository.Store
	now   func() time.Time
}

func NewBasketService(store repository.Store) *BasketService {
	return &BasketService{store: store, now: time.Now}
}

// Get returns the client's basket, creating it on first access.
func (s *BasketService) Get(ctx context.Context, clientID uint) (*models.Basket, error) {
	var basket *models.Basket
	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		var err error
		basket, err = uow.Baskets().GetByClient(clientID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return basket, nil
}

// AddItem adds a quantity of a service to the basket. Adding a service
// already present accumulates its quantity.
func (s *BasketService) AddItem(ctx context.Context, clientID, serviceID uint, quantity decimal.Decimal) (*models.Basket, error) {
	if !quantity.IsPositive() {
		return nil, engine.ErrInvalidQuantity
	}
	return s.mutate(ctx, clientID, func(uow repository.UnitOfWork, basket *models.Basket) error {
		if _, err := uow.Services().Get(serviceID); err != nil {
			return err
		}
		if existing := basket.ItemForService(serviceID); existing != nil {
			existing.Quantity = existing.Quantity.Add(quantity)
			return nil
		}
		basket.Items = append(basket.Items, models.BasketItem{
			BasketID:  basket.ID,
			ServiceID: serviceID,
			Quantity:  quantity,
		})
		return nil
	})
}

// UpdateItemQuantity changes the pending quantity of a service.
func (s *BasketService) UpdateItemQuantity(ctx context.Context, clientID, serviceID uint, quantity decimal.Decimal) (*models.Basket, error) {
	if !quantity.IsPositive() {
		return nil, engine.ErrInvalidQuantity
	}
	return s.mutate(ctx, clientID, func(_ repository.UnitOfWork, basket *models.Basket) error {
		item := basket.ItemForService(serviceID)
		if item == nil {
			return engine.ErrItemNotFound
		}
		item.Quantity = quantity
		return nil
	})
}

// RemoveItem drops a service from the basket.
func (s *BasketService) RemoveItem(ctx context.Context, clientID, serviceID uint) (*models.Basket, error) {
	return s.mutate(ctx, clientID, func(_ repository.UnitOfWork, basket *models.Basket) error {
		for i := range basket.Items {
			if basket.Items[i].ServiceID == serviceID {
				basket.Items = append(basket.Items[:i], basket.Items[i+1:]...)
				return nil
			}
		}
		return engine.ErrItemNotFound
	})
}

// Clear empties the basket.
func (s *BasketService) Clear(ctx context.Context, clientID uint) (*models.Basket, error) {
	return s.mutate(ctx, clientID, func(_ repository.UnitOfWork, basket *models.Basket) error {
		basket.Items = nil
		return nil
	})
}

// Invoice converts the basket into a new draft invoice in one
// transaction: each pending item becomes an invoice item with the
// service's current name, price and VAT rate snapshotted, and the basket
// is emptied. An empty basket yields engine.ErrEmptyInvoice.
func (s *BasketService) Invoice(ctx context.Context, clientID uint) (*models.Invoice, error) {
	var inv *models.Invoice
	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		basket, err := uow.Baskets().GetByClient(clientID)
		if err != nil {
			return err
		}
		if len(basket.Items) == 0 {
			return engine.ErrEmptyInvoice
		}
		inv = &models.Invoice{ClientID: clientID, Status: models.InvoiceStatusDraft}
		engine.InitStatusLog(inv, s.now())
		for _, pending := range basket.Items {
			svc, err := uow.Services().Get(pending.ServiceID)
			if err != nil {
				return err
			}
			if _, err := engine.AddItem(inv, engine.Snapshot(svc), pending.Quantity); err != nil {
				return err
			}
		}
		if err := uow.Invoices().Add(inv); err != nil {
			return err
		}
		basket.Items = nil
		if err := uow.Baskets().Update(basket); err != nil {
			return err
		}
		inv, err = uow.Invoices().Get(inv.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *BasketService) mutate(ctx context.Context, clientID uint, op func(uow repository.UnitOfWork, basket *models.Basket) error) (*models.Basket, error) {
	var out *models.Basket
	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		basket, err := uow.Baskets().GetByClient(clientID)
		if err != nil {
			return err
		}
		if err := op(uow, basket); err != nil {
			return err
		}
		if err := uow.Baskets().Update(basket); err != nil {
			return err
		}
		out, err = uow.Baskets().GetByClient(clientID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
