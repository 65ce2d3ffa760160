// Package gormstore implements the repository contracts on a relational
// database through gorm. SQLite and PostgreSQL are both supported; the
// unit of work maps to a database transaction.
package gormstore

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Elmeric/dfacto/internal/models"
	"github.com/Elmeric/dfacto/internal/repository"
)

// Store is a gorm-backed repository.Store.
type Store struct {
	db *gorm.DB
}

// New wraps an open gorm connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// InTx runs fn inside one database transaction.
func (s *Store) InTx(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&unitOfWork{tx: tx})
	})
}

type unitOfWork struct {
	tx *gorm.DB
}

func (u *unitOfWork) Clients() repository.ClientRepository     { return &clientRepo{tx: u.tx} }
func (u *unitOfWork) VatRates() repository.VatRateRepository   { return &vatRateRepo{tx: u.tx} }
func (u *unitOfWork) Services() repository.ServiceRepository   { return &serviceRepo{tx: u.tx} }
func (u *unitOfWork) Invoices() repository.InvoiceRepository   { return &invoiceRepo{tx: u.tx} }
func (u *unitOfWork) Baskets() repository.BasketRepository     { return &basketRepo{tx: u.tx} }
func (u *unitOfWork) Globals() repository.GlobalsRepository    { return &globalsRepo{tx: u.tx} }
func (u *unitOfWork) Sequences() repository.SequenceRepository { return &sequenceRepo{tx: u.tx} }

// notFound translates gorm's record-not-found into the domain sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

type sequenceRepo struct {
	tx *gorm.DB
}

func (r *sequenceRepo) Next(name string) (int64, error) {
	var seq models.Sequence
	err := r.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", name).First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seq = models.Sequence{Name: name}
		if err := r.tx.Create(&seq).Error; err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}
	seq.Value++
	if err := r.tx.Save(&seq).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}

type globalsRepo struct {
	tx *gorm.DB
}

func (r *globalsRepo) Get() (*models.Globals, error) {
	var g models.Globals
	if err := r.tx.First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *globalsRepo) Update(g *models.Globals) error {
	return r.tx.Save(g).Error
}

var _ repository.Store = (*Store)(nil)
var _ repository.UnitOfWork = (*unitOfWork)(nil)
