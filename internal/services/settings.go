package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Elmeric/dfacto/internal/models"
	"github.com/Elmeric/dfacto/internal/repository"
)

// SettingsService exposes the business-wide billing parameters.
type SettingsService struct {
	store repository.Store
}

func NewSettingsService(store repository.Store) *SettingsService {
	return &SettingsService{store: store}
}

// GlobalsUpdate carries optional new values; nil fields are left as-is.
type GlobalsUpdate struct {
	DueDelta     *int
	PenaltyRate  *decimal.Decimal
	DiscountRate *decimal.Decimal
}

func (s *SettingsService) Globals(ctx context.Context) (*models.Globals, error) {
	var g *models.Globals
	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		var err error
		g, err = uow.Globals().Get()
		return err
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (s *SettingsService) UpdateGlobals(ctx context.Context, in GlobalsUpdate) (*models.Globals, error) {
	var g *models.Globals
	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		var err error
		g, err = uow.Globals().Get()
		if err != nil {
			return err
		}
		if in.DueDelta != nil {
			g.DueDelta = *in.DueDelta
		}
		if in.PenaltyRate != nil {
			g.PenaltyRate = *in.PenaltyRate
		}
		if in.DiscountRate != nil {
			g.DiscountRate = *in.DiscountRate
		}
		return uow.Globals().Update(g)
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}
