package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"field-booking-go/internal/models"
	"field-booking-go/internal/store"

	"github.com/shopspring/decimal"
)

func TestNewDialect(t *testing.T) {
	sqlite, err := newDialect("")
	if err != nil {
		t.Fatalf("newDialect failed: %v", err)
	}
	if sqlite.driver != driverSQLite {
		t.Errorf("Expected default driver %s, got %s", driverSQLite, sqlite.driver)
	}
	if strings.Contains(sqlite.lockWallet, "FOR UPDATE") {
		t.Error("SQLite statements must not use FOR UPDATE")
	}
	if !strings.HasPrefix(strings.TrimSpace(sqlite.ensureWallet), "INSERT OR IGNORE") {
		t.Errorf("Unexpected SQLite wallet insert: %s", sqlite.ensureWallet)
	}

	mysqlDialect, err := newDialect(driverMySQL)
	if err != nil {
		t.Fatalf("newDialect failed: %v", err)
	}
	for _, stmt := range []string{mysqlDialect.lockWallet, mysqlDialect.lockSlot, mysqlDialect.lockRefund} {
		if !strings.HasSuffix(stmt, " FOR UPDATE") {
			t.Errorf("Expected row lock on MySQL statement: %s", stmt)
		}
	}

	// Ensuring an existing row must take the exclusive lock directly
	for _, stmt := range []string{mysqlDialect.ensureWallet, mysqlDialect.ensureSlotLock} {
		if strings.Contains(stmt, "INSERT IGNORE") {
			t.Errorf("MySQL ensure statement must not use INSERT IGNORE: %s", stmt)
		}
		if !strings.Contains(stmt, "ON DUPLICATE KEY UPDATE") {
			t.Errorf("Expected upsert on MySQL ensure statement: %s", stmt)
		}
	}
	if !strings.HasPrefix(strings.TrimSpace(mysqlDialect.ensureWalletMethod), "INSERT IGNORE") {
		t.Errorf("Unexpected MySQL payment method insert: %s", mysqlDialect.ensureWalletMethod)
	}
	if strings.Contains(sqlite.ensureSlotLock, "ON DUPLICATE KEY") {
		t.Errorf("SQLite slot lock must not use MySQL upsert: %s", sqlite.ensureSlotLock)
	}

	if mysqlDialect.txOptions == nil || mysqlDialect.txOptions.Isolation != sql.LevelReadCommitted {
		t.Error("Expected READ COMMITTED transactions on MySQL")
	}

	if _, err := newDialect("oracle"); err == nil {
		t.Error("Expected error for unsupported driver")
	}
}

func TestDataSourceName(t *testing.T) {
	sqlite, _ := newDialect(driverSQLite)
	dsn, err := sqlite.dataSourceName(models.DatabaseConfig{Path: "bookings.db", BusyTimeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("dataSourceName failed: %v", err)
	}
	for _, want := range []string{"bookings.db?", "_busy_timeout=5000", "_txlock=immediate", "_journal_mode=WAL"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("Expected %q in %s", want, dsn)
		}
	}
	if _, err := sqlite.dataSourceName(models.DatabaseConfig{}); err == nil {
		t.Error("Expected error for empty path")
	}

	mysqlDialect, _ := newDialect(driverMySQL)
	dsn, err = mysqlDialect.dataSourceName(models.DatabaseConfig{
		DSN:         "booker:secret@tcp(localhost:3306)/bookings",
		BusyTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("dataSourceName failed: %v", err)
	}
	for _, want := range []string{"parseTime=true", "innodb_lock_wait_timeout=5", "/bookings"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("Expected %q in %s", want, dsn)
		}
	}
	if _, err := mysqlDialect.dataSourceName(models.DatabaseConfig{}); err == nil {
		t.Error("Expected error for empty DSN")
	}
}

func TestUpsertField(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	ctx := context.Background()
	field, err := service.GetField(ctx, testFieldId)
	if err != nil {
		t.Fatalf("GetField failed: %v", err)
	}
	if !field.PricePerHour.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("Expected price 20.00, got %s", field.PricePerHour.String())
	}

	var businessName string
	err = service.db.QueryRow("SELECT business_name FROM field_owners WHERE user_id = ?", "owner1").Scan(&businessName)
	if err != nil {
		t.Fatalf("Expected owner profile: %v", err)
	}
	if businessName != "Field Business - User owner1" {
		t.Errorf("Unexpected default business name %q", businessName)
	}

	field, err = service.UpsertField(ctx, store.FieldParams{
		Id:           testFieldId,
		Name:         "Center Court",
		PricePerHour: decimal.RequireFromString("35.50"),
		OwnerUserId:  "owner1",
	})
	if err != nil {
		t.Fatalf("UpsertField failed: %v", err)
	}
	if !field.PricePerHour.Equal(decimal.RequireFromString("35.50")) {
		t.Errorf("Expected price 35.50, got %s", field.PricePerHour.String())
	}
	if n := countRows(t, service, "SELECT COUNT(*) FROM field_owners"); n != 1 {
		t.Errorf("Expected one owner profile, got %d", n)
	}

	generated, err := service.UpsertField(ctx, store.FieldParams{Name: "Annex", PricePerHour: decimal.RequireFromString("10")})
	if err != nil {
		t.Fatalf("UpsertField failed: %v", err)
	}
	if generated.Id == "" {
		t.Error("Expected generated field id")
	}

	for _, price := range []string{"12.345", "0", "-5"} {
		_, err := service.UpsertField(ctx, store.FieldParams{Id: testFieldId, Name: "Center Court", PricePerHour: decimal.RequireFromString(price)})
		if !errors.Is(err, store.ErrValidation) {
			t.Errorf("Expected ErrValidation for price %s, got %v", price, err)
		}
	}
	if _, err := service.UpsertField(ctx, store.FieldParams{Id: testFieldId, PricePerHour: decimal.RequireFromString("10")}); !errors.Is(err, store.ErrValidation) {
		t.Errorf("Expected ErrValidation for missing name, got %v", err)
	}
	field, err = service.GetField(ctx, testFieldId)
	if err != nil {
		t.Fatalf("GetField failed: %v", err)
	}
	if !field.PricePerHour.Equal(decimal.RequireFromString("35.50")) {
		t.Errorf("Rejected upsert changed the price to %s", field.PricePerHour.String())
	}

	if _, err := service.GetField(ctx, "missing"); err == nil {
		t.Error("Expected error for missing field")
	}
}
