package gormstore

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Elmeric/dfacto/internal/engine"
	"github.com/Elmeric/dfacto/internal/models"
	"github.com/Elmeric/dfacto/internal/repository"
)

type invoiceRepo struct {
	tx *gorm.DB
}

func (r *invoiceRepo) Get(id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := r.tx.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("StatusLog", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Client").
		First(&inv, id).Error
	if err != nil {
		return nil, notFound(err, engine.ErrInvoiceNotFound)
	}
	return &inv, nil
}

func (r *invoiceRepo) List(f repository.InvoiceFilter) ([]models.Invoice, error) {
	q := r.tx.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("StatusLog", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Client").
		Order("id")
	if f.ClientID != 0 {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var invs []models.Invoice
	if err := q.Find(&invs).Error; err != nil {
		return nil, err
	}
	return invs, nil
}

func (r *invoiceRepo) Add(inv *models.Invoice) error {
	return r.tx.Create(inv).Error
}

// Update saves the invoice with its items and status log, then deletes
// the items the engine removed so the stored item set mirrors the
// in-memory one.
func (r *invoiceRepo) Update(inv *models.Invoice) error {
	if err := r.tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(inv).Error; err != nil {
		return err
	}
	kept := make([]uint, 0, len(inv.Items))
	for i := range inv.Items {
		kept = append(kept, inv.Items[i].ID)
	}
	q := r.tx.Where("invoice_id = ?", inv.ID)
	if len(kept) > 0 {
		q = q.Where("id NOT IN ?", kept)
	}
	return q.Delete(&models.InvoiceItem{}).Error
}

func (r *invoiceRepo) Remove(id uint) error {
	if _, err := r.Get(id); err != nil {
		return err
	}
	if err := r.tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error; err != nil {
		return err
	}
	if err := r.tx.Where("invoice_id = ?", id).Delete(&models.StatusLog{}).Error; err != nil {
		return err
	}
	return r.tx.Delete(&models.Invoice{}, id).Error
}

func (r *invoiceRepo) CountByClient(clientID uint) (int64, error) {
	var count int64
	err := r.tx.Model(&models.Invoice{}).Where("client_id = ?", clientID).Count(&count).Error
	return count, err
}

type basketRepo struct {
	tx *gorm.DB
}

func (r *basketRepo) GetByClient(clientID uint) (*models.Basket, error) {
	var c models.Client
	if err := r.tx.First(&c, clientID).Error; err != nil {
		return nil, notFound(err, engine.ErrClientNotFound)
	}
	var b models.Basket
	err := r.tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("client_id = ?", clientID).First(&b).Error
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	b = models.Basket{ClientID: clientID}
	if err := r.tx.Create(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// Update reconciles the basket items the same way invoiceRepo.Update
// reconciles invoice items.
func (r *basketRepo) Update(b *models.Basket) error {
	if err := r.tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(b).Error; err != nil {
		return err
	}
	kept := make([]uint, 0, len(b.Items))
	for i := range b.Items {
		kept = append(kept, b.Items[i].ID)
	}
	q := r.tx.Where("basket_id = ?", b.ID)
	if len(kept) > 0 {
		q = q.Where("id NOT IN ?", kept)
	}
	return q.Delete(&models.BasketItem{}).Error
}
