package database

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"field-booking-go/internal/models"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

const (
	driverSQLite = "sqlite3"
	driverMySQL  = "mysql"
)

// dialect carries the handful of statements that differ between backends.
// Everything else in queries.go is portable ('?' placeholders on both drivers).
type dialect struct {
	driver    string
	schema    []string
	txOptions *sql.TxOptions

	ensureWallet       string
	lockWallet         string
	ensureSlotLock     string
	lockSlot           string
	ensureWalletMethod string
	lockRefund         string
}

func newDialect(driver string) (*dialect, error) {
	var insertIgnore, forUpdate, walletUpsert, slotUpsert string
	d := &dialect{driver: driver}

	switch driver {
	case "", driverSQLite:
		// Write transactions start with BEGIN IMMEDIATE (_txlock=immediate), which
		// takes the database write lock before the first read. Row locks are implied.
		d.driver = driverSQLite
		d.schema = sqliteSchema
		insertIgnore = "INSERT OR IGNORE"
		forUpdate = ""
	case driverMySQL:
		d.schema = mysqlSchema
		d.txOptions = &sql.TxOptions{Isolation: sql.LevelReadCommitted}
		insertIgnore = "INSERT IGNORE"
		forUpdate = " FOR UPDATE"
		// A duplicate INSERT IGNORE leaves a shared lock on the existing row, and two
		// holders upgrading to FOR UPDATE deadlock. The no-op upsert takes the exclusive lock at once.
		walletUpsert = " ON DUPLICATE KEY UPDATE user_id = user_id"
		slotUpsert = " ON DUPLICATE KEY UPDATE booking_date = booking_date"
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	d.ensureWallet = fmt.Sprintf(queryEnsureWalletTmpl, insertOrLock(insertIgnore, walletUpsert), walletUpsert)
	d.lockWallet = queryGetWalletBalance + forUpdate
	d.ensureSlotLock = fmt.Sprintf(queryEnsureSlotLockTmpl, insertOrLock(insertIgnore, slotUpsert), slotUpsert)
	d.lockSlot = querySelectSlotLock + forUpdate
	d.ensureWalletMethod = fmt.Sprintf(queryEnsurePaymentMethodTmpl, insertIgnore)
	d.lockRefund = queryGetRefundById + forUpdate
	return d, nil
}

// insertOrLock picks a plain INSERT when the statement carries its own duplicate-key clause.
func insertOrLock(insertIgnore, upsert string) string {
	if upsert != "" {
		return "INSERT"
	}
	return insertIgnore
}

func (d *dialect) dataSourceName(cfg models.DatabaseConfig) (string, error) {
	switch d.driver {
	case driverMySQL:
		if cfg.DSN == "" {
			return "", fmt.Errorf("database DSN cannot be empty for mysql")
		}
		mysqlCfg, err := mysql.ParseDSN(cfg.DSN)
		if err != nil {
			return "", fmt.Errorf("invalid mysql DSN: %w", err)
		}
		mysqlCfg.ParseTime = true
		mysqlCfg.Loc = time.UTC
		if cfg.BusyTimeout > 0 {
			if mysqlCfg.Params == nil {
				mysqlCfg.Params = map[string]string{}
			}
			seconds := int(cfg.BusyTimeout.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			mysqlCfg.Params["innodb_lock_wait_timeout"] = strconv.Itoa(seconds)
		}
		return mysqlCfg.FormatDSN(), nil
	default:
		if cfg.Path == "" {
			return "", fmt.Errorf("database path cannot be empty")
		}
		return fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000&_busy_timeout=%d&_txlock=immediate",
			cfg.Path, cfg.BusyTimeout.Milliseconds()), nil
	}
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS field_owners (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		business_name TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS fields (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		price_per_hour TEXT NOT NULL,
		owner_user_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		field_id TEXT NOT NULL,
		booking_date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		booking_datetime TIMESTAMP NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('pending', 'confirmed', 'cancelled')),
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_field_date ON bookings(field_id, booking_date, status)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_user_id ON bookings(user_id)`,
	`CREATE TABLE IF NOT EXISTS slot_locks (
		field_id TEXT NOT NULL,
		booking_date TEXT NOT NULL,
		PRIMARY KEY (field_id, booking_date)
	)`,
	`CREATE TABLE IF NOT EXISTS wallets (
		user_id TEXT PRIMARY KEY,
		balance TEXT NOT NULL DEFAULT '0.00',
		preferred_method TEXT,
		card_last4 TEXT,
		card_exp_month INTEGER,
		card_exp_year INTEGER,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS wallet_transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		type TEXT NOT NULL CHECK (type IN ('deposit', 'debit')),
		reference TEXT NOT NULL,
		balance_after TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_wallet_transactions_user_id ON wallet_transactions(user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_wallet_transactions_reference ON wallet_transactions(reference)`,
	`CREATE TABLE IF NOT EXISTS payment_methods (
		id TEXT PRIMARY KEY,
		method_name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		booking_id TEXT NOT NULL UNIQUE,
		user_id TEXT NOT NULL,
		method_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('completed', 'refunded')),
		refund_reference TEXT,
		created_at TIMESTAMP NOT NULL,
		refunded_at TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_user_id ON payments(user_id)`,
	`CREATE TABLE IF NOT EXISTS refunds (
		id TEXT PRIMARY KEY,
		booking_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		payment_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		reason TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('pending', 'approved', 'rejected', 'completed')),
		requested_by TEXT NOT NULL,
		requested_at TIMESTAMP NOT NULL,
		processed_at TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_refunds_user_id ON refunds(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_refunds_payment_id ON refunds(payment_id)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS field_owners (
		id VARCHAR(36) PRIMARY KEY,
		user_id VARCHAR(36) NOT NULL UNIQUE,
		business_name VARCHAR(255) NOT NULL,
		created_at DATETIME(6) NOT NULL
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS fields (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		price_per_hour DECIMAL(12,2) NOT NULL,
		owner_user_id VARCHAR(36) NOT NULL DEFAULT '',
		created_at DATETIME(6) NOT NULL
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id VARCHAR(36) PRIMARY KEY,
		user_id VARCHAR(36) NOT NULL,
		field_id VARCHAR(36) NOT NULL,
		booking_date CHAR(10) NOT NULL,
		start_time CHAR(5) NOT NULL,
		end_time CHAR(5) NOT NULL,
		booking_datetime DATETIME(6) NOT NULL,
		status VARCHAR(16) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		INDEX idx_bookings_field_date (field_id, booking_date, status),
		INDEX idx_bookings_user_id (user_id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS slot_locks (
		field_id VARCHAR(36) NOT NULL,
		booking_date CHAR(10) NOT NULL,
		PRIMARY KEY (field_id, booking_date)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS wallets (
		user_id VARCHAR(36) PRIMARY KEY,
		balance DECIMAL(12,2) NOT NULL DEFAULT 0.00,
		preferred_method VARCHAR(16),
		card_last4 CHAR(4),
		card_exp_month TINYINT,
		card_exp_year SMALLINT,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS wallet_transactions (
		id VARCHAR(36) PRIMARY KEY,
		user_id VARCHAR(36) NOT NULL,
		amount DECIMAL(12,2) NOT NULL,
		type VARCHAR(16) NOT NULL,
		reference VARCHAR(100) NOT NULL,
		balance_after DECIMAL(12,2) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		INDEX idx_wallet_transactions_user_id (user_id, created_at),
		INDEX idx_wallet_transactions_reference (reference)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS payment_methods (
		id VARCHAR(36) PRIMARY KEY,
		method_name VARCHAR(50) NOT NULL UNIQUE
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS payments (
		id VARCHAR(36) PRIMARY KEY,
		booking_id VARCHAR(36) NOT NULL UNIQUE,
		user_id VARCHAR(36) NOT NULL,
		method_id VARCHAR(36) NOT NULL,
		amount DECIMAL(12,2) NOT NULL,
		status VARCHAR(16) NOT NULL,
		refund_reference VARCHAR(100),
		created_at DATETIME(6) NOT NULL,
		refunded_at DATETIME(6) NULL,
		INDEX idx_payments_user_id (user_id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS refunds (
		id VARCHAR(36) PRIMARY KEY,
		booking_id VARCHAR(36) NOT NULL,
		user_id VARCHAR(36) NOT NULL,
		payment_id VARCHAR(36) NOT NULL,
		amount DECIMAL(12,2) NOT NULL,
		reason TEXT NOT NULL,
		status VARCHAR(16) NOT NULL,
		requested_by VARCHAR(36) NOT NULL,
		requested_at DATETIME(6) NOT NULL,
		processed_at DATETIME(6) NULL,
		INDEX idx_refunds_user_id (user_id),
		INDEX idx_refunds_payment_id (payment_id)
	) ENGINE=InnoDB`,
}
