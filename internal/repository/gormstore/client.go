package gormstore

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Elmeric/dfacto/internal/engine"
	"github.com/Elmeric/dfacto/internal/models"
	"github.com/Elmeric/dfacto/internal/repository"
)

type clientRepo struct {
	tx *gorm.DB
}

func (r *clientRepo) Get(id uint) (*models.Client, error) {
	var c models.Client
	if err := r.tx.First(&c, id).Error; err != nil {
		return nil, notFound(err, engine.ErrClientNotFound)
	}
	return &c, nil
}

func (r *clientRepo) List(f repository.ClientFilter) ([]models.Client, error) {
	q := r.tx.Order("name")
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	var clients []models.Client
	if err := q.Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *clientRepo) Add(c *models.Client) error {
	return r.tx.Create(c).Error
}

func (r *clientRepo) Update(c *models.Client) error {
	return r.tx.Save(c).Error
}

func (r *clientRepo) Remove(id uint) error {
	if _, err := r.Get(id); err != nil {
		return err
	}
	var count int64
	if err := r.tx.Model(&models.Invoice{}).Where("client_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return engine.ErrConstraintViolation
	}
	// the client's basket (and its items) go with it
	var basket models.Basket
	err := r.tx.Where("client_id = ?", id).First(&basket).Error
	switch {
	case err == nil:
		if err := r.tx.Where("basket_id = ?", basket.ID).Delete(&models.BasketItem{}).Error; err != nil {
			return err
		}
		if err := r.tx.Delete(&basket).Error; err != nil {
			return err
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}
	return r.tx.Delete(&models.Client{}, id).Error
}
