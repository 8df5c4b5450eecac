package billing

import (
	"errors"
	"testing"

	"moonal-billing/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	// A single connection keeps every caller on the same in-memory store.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrapping sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Customer{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.AuditLog{},
	)
	if err != nil {
		t.Fatalf("migrating schema: %v", err)
	}
	return db
}

func insertNumberedInvoice(t *testing.T, db *gorm.DB, number string) {
	t.Helper()
	inv := models.Invoice{
		InvoiceNumber: number,
		ClientName:    "Seed",
		Status:        models.StatusActive,
		Subtotal:      decimal.Zero,
		VatRate:       decimal.Zero,
		VatAmount:     decimal.Zero,
		Discount:      decimal.Zero,
		TotalAmount:   decimal.Zero,
		PaidAmount:    decimal.Zero,
		DueAmount:     decimal.Zero,
	}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("seeding invoice %s: %v", number, err)
	}
}

func TestNextDocumentNumberFirstOfPattern(t *testing.T) {
	db := setupTestDB(t)

	got, err := nextDocumentNumber(db, SeriesInvoice, "081-82")
	if err != nil {
		t.Fatalf("nextDocumentNumber() error = %v", err)
	}
	if got != "MU/081-82/0001" {
		t.Errorf("first number = %q, want MU/081-82/0001", got)
	}
}

func TestNextDocumentNumberIncrements(t *testing.T) {
	db := setupTestDB(t)
	insertNumberedInvoice(t, db, "MU/081-82/0005")

	got, err := nextDocumentNumber(db, SeriesInvoice, "081-82")
	if err != nil {
		t.Fatalf("nextDocumentNumber() error = %v", err)
	}
	if got != "MU/081-82/0006" {
		t.Errorf("next number = %q, want MU/081-82/0006", got)
	}
}

func TestNextDocumentNumberPadsPastFourDigitsBoundary(t *testing.T) {
	db := setupTestDB(t)
	insertNumberedInvoice(t, db, "MU/081-82/0099")

	got, err := nextDocumentNumber(db, SeriesInvoice, "081-82")
	if err != nil {
		t.Fatalf("nextDocumentNumber() error = %v", err)
	}
	if got != "MU/081-82/0100" {
		t.Errorf("next number = %q, want MU/081-82/0100", got)
	}
}

func TestNextDocumentNumberScopedBySeriesAndYear(t *testing.T) {
	db := setupTestDB(t)
	insertNumberedInvoice(t, db, "MU/081-82/0042")

	// A different series starts its own sequence.
	got, err := nextDocumentNumber(db, SeriesCreditNote, "081-82")
	if err != nil {
		t.Fatalf("nextDocumentNumber() error = %v", err)
	}
	if got != "CN/081-82/0001" {
		t.Errorf("credit note number = %q, want CN/081-82/0001", got)
	}

	// So does a new fiscal year.
	got, err = nextDocumentNumber(db, SeriesInvoice, "082-83")
	if err != nil {
		t.Fatalf("nextDocumentNumber() error = %v", err)
	}
	if got != "MU/082-83/0001" {
		t.Errorf("new year number = %q, want MU/082-83/0001", got)
	}
}

func TestNextDocumentNumberRecoversFromCorruptNumber(t *testing.T) {
	db := setupTestDB(t)
	insertNumberedInvoice(t, db, "MU/081-82/garbage")

	got, err := nextDocumentNumber(db, SeriesInvoice, "081-82")
	if err != nil {
		t.Fatalf("nextDocumentNumber() error = %v", err)
	}
	if got != "MU/081-82/0001" {
		t.Errorf("recovered number = %q, want MU/081-82/0001", got)
	}
}

func TestParseTrailingSequence(t *testing.T) {
	tests := []struct {
		number  string
		want    int
		wantErr error
	}{
		{"MU/081-82/0001", 1, nil},
		{"MU/081-82/0099", 99, nil},
		{"CN/081-82/1234", 1234, nil},
		{"MU/081-82/", 0, ErrSequenceCorrupt},
		{"MU/081-82/12a", 0, ErrSequenceCorrupt},
		{"no-slashes", 0, ErrSequenceCorrupt},
	}

	for _, tt := range tests {
		got, err := parseTrailingSequence(tt.number)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("parseTrailingSequence(%q) error = %v, wantErr %v", tt.number, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("parseTrailingSequence(%q) = %d, want %d", tt.number, got, tt.want)
		}
	}
}
