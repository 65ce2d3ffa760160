package gormstore

import (
	"gorm.io/gorm"

	"github.com/Elmeric/dfacto/internal/engine"
	"github.com/Elmeric/dfacto/internal/models"
	"github.com/Elmeric/dfacto/internal/repository"
)

type vatRateRepo struct {
	tx *gorm.DB
}

func (r *vatRateRepo) Get(id uint) (*models.VatRate, error) {
	var v models.VatRate
	if err := r.tx.First(&v, id).Error; err != nil {
		return nil, notFound(err, engine.ErrVatRateNotFound)
	}
	return &v, nil
}

func (r *vatRateRepo) Default() (*models.VatRate, error) {
	var v models.VatRate
	if err := r.tx.Where("is_default = ?", true).First(&v).Error; err != nil {
		return nil, notFound(err, engine.ErrVatRateNotFound)
	}
	return &v, nil
}

func (r *vatRateRepo) List() ([]models.VatRate, error) {
	var rates []models.VatRate
	if err := r.tx.Order("rate").Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

func (r *vatRateRepo) Add(v *models.VatRate) error {
	return r.tx.Create(v).Error
}

func (r *vatRateRepo) Update(v *models.VatRate) error {
	return r.tx.Save(v).Error
}

func (r *vatRateRepo) Remove(id uint) error {
	v, err := r.Get(id)
	if err != nil {
		return err
	}
	if v.IsPreset || v.IsDefault {
		return engine.ErrConstraintViolation
	}
	var count int64
	if err := r.tx.Model(&models.Service{}).Where("vat_rate_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return engine.ErrConstraintViolation
	}
	return r.tx.Delete(&models.VatRate{}, id).Error
}

type serviceRepo struct {
	tx *gorm.DB
}

func (r *serviceRepo) Get(id uint) (*models.Service, error) {
	var s models.Service
	if err := r.tx.Preload("VatRate").First(&s, id).Error; err != nil {
		return nil, notFound(err, engine.ErrServiceNotFound)
	}
	return &s, nil
}

func (r *serviceRepo) List(f repository.ServiceFilter) ([]models.Service, error) {
	q := r.tx.Preload("VatRate").Order("name")
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	var services []models.Service
	if err := q.Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (r *serviceRepo) Add(s *models.Service) error {
	return r.tx.Create(s).Error
}

func (r *serviceRepo) Update(s *models.Service) error {
	return r.tx.Save(s).Error
}

func (r *serviceRepo) Remove(id uint) error {
	if _, err := r.Get(id); err != nil {
		return err
	}
	// item snapshots make this informational, but a service still on a
	// non-draft invoice stays referenced for the audit trail
	var count int64
	err := r.tx.Model(&models.InvoiceItem{}).
		Joins("JOIN invoices ON invoices.id = invoice_items.invoice_id").
		Where("invoice_items.service_id = ? AND invoices.status <> ?", id, models.InvoiceStatusDraft).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return engine.ErrConstraintViolation
	}
	if err := r.tx.Where("service_id = ?", id).Delete(&models.BasketItem{}).Error; err != nil {
		return err
	}
	return r.tx.Delete(&models.Service{}, id).Error
}
