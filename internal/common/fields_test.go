package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fields.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}
	return path
}

func TestLoadFieldCatalog(t *testing.T) {
	path := writeCatalog(t, `
fields:
  - id: court-1
    name: Center Court
    price_per_hour: "20.00"
    owner_user_id: owner1
    business_name: Downtown Sports
  - id: court-2
    name: Annex
    price_per_hour: "12.5"
`)

	fields, err := LoadFieldCatalog(path)
	if err != nil {
		t.Fatalf("LoadFieldCatalog failed: %v", err)
	}
	if len(fields) != 2 {
		t.Fatalf("Expected 2 fields, got %d", len(fields))
	}
	if fields[0].Id != "court-1" || fields[0].BusinessName != "Downtown Sports" {
		t.Errorf("Unexpected first field: %+v", fields[0])
	}
	if !fields[1].PricePerHour.Equal(decimal.RequireFromString("12.50")) {
		t.Errorf("Expected price 12.50, got %s", fields[1].PricePerHour.String())
	}
	if fields[1].OwnerUserId != "" {
		t.Errorf("Expected no owner, got %s", fields[1].OwnerUserId)
	}
}

func TestLoadFieldCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing id", "fields:\n  - name: Court\n    price_per_hour: \"10\"\n"},
		{"missing name", "fields:\n  - id: c1\n    price_per_hour: \"10\"\n"},
		{"bad price", "fields:\n  - id: c1\n    name: Court\n    price_per_hour: ten\n"},
		{"zero price", "fields:\n  - id: c1\n    name: Court\n    price_per_hour: \"0\"\n"},
		{"sub-cent price", "fields:\n  - id: c1\n    name: Court\n    price_per_hour: \"12.345\"\n"},
		{"not yaml", "fields: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFieldCatalog(writeCatalog(t, tt.content)); err == nil {
				t.Error("Expected error")
			}
		})
	}

	if _, err := LoadFieldCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
