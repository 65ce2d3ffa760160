// Package config provides application configuration loaded from
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Company  CompanyConfig
	App      AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig holds the backing store settings. Driver selects sqlite
// (Path) or postgres (host/port/user/password/dbname).
type DatabaseConfig struct {
	Driver   string // "sqlite" or "postgres"
	Path     string // sqlite database file
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// CompanyConfig is the issuer block printed on invoices. It lives in
// configuration, not in the database.
type CompanyConfig struct {
	Name    string
	Address string
	ZipCode string
	City    string
	Email   string
	Phone   string
	SIRET   string
	VATID   string
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool
	Migrations bool
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "sqlite"),
			Path:     getEnv("DB_PATH", "dfacto.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "dfacto"),
			Password: getEnv("DB_PASSWORD", "dfacto123"),
			DBName:   getEnv("DB_NAME", "dfacto"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Company: CompanyConfig{
			Name:    getEnv("COMPANY_NAME", ""),
			Address: getEnv("COMPANY_ADDRESS", ""),
			ZipCode: getEnv("COMPANY_ZIP_CODE", ""),
			City:    getEnv("COMPANY_CITY", ""),
			Email:   getEnv("COMPANY_EMAIL", ""),
			Phone:   getEnv("COMPANY_PHONE", ""),
			SIRET:   getEnv("COMPANY_SIRET", ""),
			VATID:   getEnv("COMPANY_VAT_ID", ""),
		},
		App: AppConfig{
			Dev:        getEnvBool("DEV", true),
			Migrations: getEnvBool("MIGRATIONS", true),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}
