// Package services is the facade consumed by the presentation and
// rendering layers. Each method translates one user intent into engine
// validations and repository writes inside a single transaction, returns
// fully hydrated entities, and propagates domain errors unchanged.
package services

import (
	"context"

	"github.com/Elmeric/dfacto/internal/models"
	"github.com/Elmeric/dfacto/internal/repository"
)

// ClientService manages the client directory.
type ClientService struct {
	store repository.Store
}

func NewClientService(store repository.Store) *ClientService {
	return &ClientService{store: store}
}

// ClientCreate carries the already-validated fields of a new client.
type ClientCreate struct {
	Name    string
	Address string
	ZipCode string
	City    string
	Email   string
}

// ClientUpdate carries optional new values; nil fields are left as-is.
type ClientUpdate struct {
	Name     *string
	Address  *string
	ZipCode  *string
	City     *string
	Email    *string
	IsActive *bool
}

func (s *ClientService) Create(ctx context.Context, in ClientCreate) (*models.Client, error) {
	client := &models.Client{
		Name:     in.Name,
		Address:  in.Address,
		ZipCode:  in.ZipCode,
		City:     in.City,
		Email:    in.Email,
		IsActive: true,
	}
	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		return uow.Clients().Add(client)
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (s *ClientService) Get(ctx context.Context, id uint) (*models.Client, error) {
	var client *models.Client
	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		var err error
		client, err = uow.Clients().Get(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (s *ClientService) List(ctx context.Context, f repository.ClientFilter) ([]models.Client, error) {
	var clients []models.Client
	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		var err error
		clients, err = uow.Clients().List(f)
		return err
	})
	if err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *ClientService) Update(ctx context.Context, id uint, in ClientUpdate) (*models.Client, error) {
	var client *models.Client
	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		var err error
		client, err = uow.Clients().Get(id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			client.Name = *in.Name
		}
		if in.Address != nil {
			client.Address = *in.Address
		}
		if in.ZipCode != nil {
			client.ZipCode = *in.ZipCode
		}
		if in.City != nil {
			client.City = *in.City
		}
		if in.Email != nil {
			client.Email = *in.Email
		}
		if in.IsActive != nil {
			client.IsActive = *in.IsActive
		}
		return uow.Clients().Update(client)
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Delete removes a client. It fails with engine.ErrConstraintViolation
// while any invoice references the client, whatever its status.
func (s *ClientService) Delete(ctx context.Context, id uint) error {
	return s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		return uow.Clients().Remove(id)
	})
}
