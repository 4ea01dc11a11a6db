package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Catalog  CatalogConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // sqlite3 or mysql
	Path            string // sqlite3 file path
	DSN             string // mysql data source name
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	BusyTimeout     time.Duration // bounds lock waits
	TxTimeout       time.Duration // upper bound for one booking/refund operation
}

// CatalogConfig holds the seed catalog settings used by cmd/setup
type CatalogConfig struct {
	FieldsFile string
}
