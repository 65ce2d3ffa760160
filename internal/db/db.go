// Package db opens the backing store and brings its schema and seed data
// up to date.
package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Elmeric/dfacto/internal/config"
	"github.com/Elmeric/dfacto/internal/models"
)

// Connect opens the configured database: a sqlite file by default, or
// PostgreSQL with a small retry loop to let the server come up.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	switch cfg.Driver {
	case "sqlite", "":
		db, err := gorm.Open(sqlite.Open(cfg.Path), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.Path, err)
		}
		return db, nil
	case "postgres":
		var db *gorm.DB
		var err error
		for i := 0; i < 5; i++ {
			db, err = gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
			if err == nil {
				return db, nil
			}
			time.Sleep(2 * time.Second)
		}
		return nil, fmt.Errorf("connect postgres: %w", err)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// Migrate applies the gorm auto-migrations for all entities.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Client{},
		&models.VatRate{},
		&models.Service{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.StatusLog{},
		&models.Basket{},
		&models.BasketItem{},
		&models.Globals{},
		&models.Sequence{},
	)
}

// Seed inserts the preset VAT rates, the globals row and the invoice
// code sequence if they are missing. Safe to run on every startup.
func Seed(db *gorm.DB) error {
	presets := []models.VatRate{
		{Name: "Exempt", Rate: decimal.Zero, IsPreset: true},
		{Name: "Reduced rate", Rate: decimal.RequireFromString("5.5"), IsPreset: true},
		{Name: "Intermediate rate", Rate: decimal.NewFromInt(10), IsPreset: true},
		{Name: "Standard rate", Rate: decimal.NewFromInt(20), IsPreset: true, IsDefault: true},
	}
	for _, preset := range presets {
		var existing models.VatRate
		err := db.Where("name = ?", preset.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&preset).Error; err != nil {
				return fmt.Errorf("seed vat rate %s: %w", preset.Name, err)
			}
		} else if err != nil {
			return err
		}
	}

	var globals models.Globals
	if err := db.First(&globals).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		globals = models.Globals{
			DueDelta:     30,
			PenaltyRate:  decimal.NewFromInt(12),
			DiscountRate: decimal.Zero,
		}
		if err := db.Create(&globals).Error; err != nil {
			return fmt.Errorf("seed globals: %w", err)
		}
	} else if err != nil {
		return err
	}

	var seq models.Sequence
	if err := db.Where("name = ?", models.SeqInvoiceCode).First(&seq).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		seq = models.Sequence{Name: models.SeqInvoiceCode}
		if err := db.Create(&seq).Error; err != nil {
			return fmt.Errorf("seed sequence: %w", err)
		}
	} else if err != nil {
		return err
	}
	return nil
}
