package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Elmeric/dfacto/internal/models"
	"github.com/Elmeric/dfacto/internal/money"
	"github.com/Elmeric/dfacto/internal/repository"
)

// CatalogService manages the billable services and their VAT rates.
type CatalogService struct {
	store repository.Store
}

func NewCatalogService(store repository.Store) *CatalogService {
	return &CatalogService{store: store}
}

// ServiceCreate carries the fields of a new catalog service. A zero
// VatRateID selects the default rate.
type ServiceCreate struct {
	Name      string
	UnitPrice money.Amount
	VatRateID uint
}

// ServiceUpdate carries optional new values; nil fields are left as-is.
type ServiceUpdate struct {
	Name      *string
	UnitPrice *money.Amount
	VatRateID *uint
	IsActive  *bool
}

func (s *CatalogService) CreateService(ctx context.Context, in ServiceCreate) (*models.Service, error) {
	var svc *models.Service
	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		rateID := in.VatRateID
		if rateID == 0 {
			def, err := uow.VatRates().Default()
			if err != nil {
				return err
			}
			rateID = def.ID
		} else if _, err := uow.VatRates().Get(rateID); err != nil {
			return err
		}
		svc = &models.Service{
			Name:      in.Name,
			UnitPrice: in.UnitPrice,
			VatRateID: rateID,
			IsActive:  true,
		}
		if err := uow.Services().Add(svc); err != nil {
			return err
		}
		var err error
		svc, err = uow.Services().Get(svc.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *CatalogService) GetService(ctx context.Context, id uint) (*models.Service, error) {
	var svc *models.Service
	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		var err error
		svc, err = uow.Services().Get(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *CatalogService) ListServices(ctx context.Context, f repository.ServiceFilter) ([]models.Service, error) {
	var services []models.Service
	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		var err error
		services, err = uow.Services().List(f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return services, nil
}

// UpdateService edits a catalog service in place. Past invoices are
// unaffected: their items carry snapshots, not live references.
func (s *CatalogService) UpdateService(ctx context.Context, id uint, in ServiceUpdate) (*models.Service, error) {
	var svc *models.Service
	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		var err error
		svc, err = uow.Services().Get(id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			svc.Name = *in.Name
		}
		if in.UnitPrice != nil {
			svc.UnitPrice = *in.UnitPrice
		}
		if in.VatRateID != nil {
			if _, err := uow.VatRates().Get(*in.VatRateID); err != nil {
				return err
			}
			svc.VatRateID = *in.VatRateID
			svc.VatRate = nil
		}
		if in.IsActive != nil {
			svc.IsActive = *in.IsActive
		}
		if err := uow.Services().Update(svc); err != nil {
			return err
		}
		svc, err = uow.Services().Get(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *CatalogService) DeleteService(ctx context.Context, id uint) error {
	return s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		return uow.Services().Remove(id)
	})
}

// VatRateCreate carries the fields of a new VAT rate.
type VatRateCreate struct {
	Name string
	Rate decimal.Decimal
}

func (s *CatalogService) CreateVatRate(ctx context.Context, in VatRateCreate) (*models.VatRate, error) {
	rate := &models.VatRate{Name: in.Name, Rate: in.Rate}
	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		return uow.VatRates().Add(rate)
	})
	if err != nil {
		return nil, err
	}
	return rate, nil
}

func (s *CatalogService) ListVatRates(ctx context.Context) ([]models.VatRate, error) {
	var rates []models.VatRate
	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		var err error
		rates, err = uow.VatRates().List()
		return err
	})
	if err != nil {
		return nil, err
	}
	return rates, nil
}

// SetDefaultVatRate moves the default flag to the given rate.
func (s *CatalogService) SetDefaultVatRate(ctx context.Context, id uint) error {
	return s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		target, err := uow.VatRates().Get(id)
		if err != nil {
			return err
		}
		rates, err := uow.VatRates().List()
		if err != nil {
			return err
		}
		for i := range rates {
			if rates[i].IsDefault && rates[i].ID != id {
				rates[i].IsDefault = false
				if err := uow.VatRates().Update(&rates[i]); err != nil {
					return err
				}
			}
		}
		target.IsDefault = true
		return uow.VatRates().Update(target)
	})
}

func (s *CatalogService) DeleteVatRate(ctx context.Context, id uint) error {
	return s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		return uow.VatRates().Remove(id)
	})
}
