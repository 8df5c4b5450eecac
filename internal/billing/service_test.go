package billing

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"moonal-billing/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 5 March 2025 falls in fiscal year 081-82.
var testClock = time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)

	svc := NewService(db)
	svc.now = func() time.Time { return testClock }

	products := []models.Product{
		{Name: "Engine Oil 20W-50", Price: d("500"), HSCode: "2710.19", Unit: "Ltr", Category: "Engine Oil", StockQuantity: 100, MinStockAlert: 10},
		{Name: "Gear Oil EP-90", Price: d("1200"), HSCode: "2710.19", Unit: "Ltr", Category: "Gear Oil", StockQuantity: 50, MinStockAlert: 5},
		{Name: "Grease MP-3", Price: d("80"), HSCode: "2710.20", Unit: "Kg", Category: "Grease", StockQuantity: 200, MinStockAlert: 20},
	}
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			t.Fatalf("seeding products: %v", err)
		}
	}
	return svc, db
}

var testSession = Session{UserID: 1, Username: "kiran"}

func referenceInput() CreateInput {
	return CreateInput{
		Customer: CustomerInfo{
			Name:    "Himal Traders",
			Contact: "9800000000",
			Address: "Lahan, Siraha",
			PanNo:   "609123456",
		},
		Items: []ItemInput{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
			{ProductID: 3, Quantity: 5},
		},
		DiscountPct: d("10"),
		VatPct:      d("13"),
		PaidAmount:  d("1000"),
	}
}

func TestCreateInvoice(t *testing.T) {
	svc, db := newTestService(t)

	inv, err := svc.Create(testSession, referenceInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if inv.InvoiceNumber != "MU/081-82/0001" {
		t.Errorf("invoice number = %q, want MU/081-82/0001", inv.InvoiceNumber)
	}
	if inv.Status != models.StatusActive {
		t.Errorf("status = %q, want ACTIVE", inv.Status)
	}
	if inv.IsCreditNote {
		t.Error("new invoice flagged as credit note")
	}
	if inv.PerformedBy != "kiran" {
		t.Errorf("performed_by = %q, want kiran", inv.PerformedBy)
	}

	wants := map[string]decimal.Decimal{
		"subtotal":     inv.Subtotal,
		"vat_amount":   inv.VatAmount,
		"total_amount": inv.TotalAmount,
		"due_amount":   inv.DueAmount,
	}
	expected := map[string]string{
		"subtotal":     "2600.00",
		"vat_amount":   "304.20",
		"total_amount": "2644.20",
		"due_amount":   "1644.20",
	}
	for field, got := range wants {
		if got.StringFixed(2) != expected[field] {
			t.Errorf("%s = %s, want %s", field, got.StringFixed(2), expected[field])
		}
	}

	if len(inv.Items) != 3 {
		t.Fatalf("item count = %d, want 3", len(inv.Items))
	}

	// Stock was deducted under the same transaction.
	var product models.Product
	db.First(&product, 1)
	if product.StockQuantity != 98 {
		t.Errorf("stock after sale = %d, want 98", product.StockQuantity)
	}
}

func TestCreateRejectsEmptyInvoice(t *testing.T) {
	svc, _ := newTestService(t)

	in := referenceInput()
	in.Items = nil

	if _, err := svc.Create(testSession, in); !errors.Is(err, ErrEmptyInvoice) {
		t.Errorf("Create() error = %v, want ErrEmptyInvoice", err)
	}
}

func TestCreateDiscountBoundaries(t *testing.T) {
	svc, _ := newTestService(t)

	for _, pct := range []string{"0", "100"} {
		in := referenceInput()
		in.DiscountPct = d(pct)
		if _, err := svc.Create(testSession, in); err != nil {
			t.Errorf("Create() with discount %s%% error = %v, want success", pct, err)
		}
	}

	in := referenceInput()
	in.DiscountPct = d("150")
	if _, err := svc.Create(testSession, in); !errors.Is(err, ErrInvalidDiscount) {
		t.Errorf("Create() with discount 150%% error = %v, want ErrInvalidDiscount", err)
	}
}

func TestCreateRejectsInsufficientStock(t *testing.T) {
	svc, db := newTestService(t)

	in := referenceInput()
	in.Items = []ItemInput{{ProductID: 2, Quantity: 51}} // only 50 in stock

	if _, err := svc.Create(testSession, in); !errors.Is(err, ErrInsufficientStock) {
		t.Errorf("Create() error = %v, want ErrInsufficientStock", err)
	}

	// The rejected transaction must not leave a phantom document behind.
	var count int64
	db.Model(&models.Invoice{}).Count(&count)
	if count != 0 {
		t.Errorf("invoice count after failed create = %d, want 0", count)
	}
}

func TestSequentialNumbering(t *testing.T) {
	svc, _ := newTestService(t)

	for i := 1; i <= 3; i++ {
		inv, err := svc.Create(testSession, referenceInput())
		if err != nil {
			t.Fatalf("Create() #%d error = %v", i, err)
		}
		want := fmt.Sprintf("MU/081-82/%04d", i)
		if inv.InvoiceNumber != want {
			t.Errorf("invoice #%d number = %q, want %q", i, inv.InvoiceNumber, want)
		}
	}
}

func TestConcurrentCreatesAllocateDistinctConsecutiveNumbers(t *testing.T) {
	svc, db := newTestService(t)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in := referenceInput()
			in.Items = []ItemInput{{ProductID: 3, Quantity: 1}}
			if _, err := svc.Create(testSession, in); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent Create() error = %v", err)
	}

	var numbers []string
	db.Model(&models.Invoice{}).Order("invoice_number asc").Pluck("invoice_number", &numbers)
	if len(numbers) != n {
		t.Fatalf("invoice count = %d, want %d", len(numbers), n)
	}

	sort.Strings(numbers)
	for i, number := range numbers {
		want := fmt.Sprintf("MU/081-82/%04d", i+1)
		if number != want {
			t.Fatalf("numbers have gaps or duplicates: position %d is %q, want %q", i, number, want)
		}
	}
}

func TestCancelIssuesOffsettingCreditNote(t *testing.T) {
	svc, db := newTestService(t)

	original, err := svc.Create(testSession, referenceInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	note, err := svc.Cancel(testSession, original.ID, "Goods returned by buyer", "customer rejected delivery")
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	if note.InvoiceNumber != "CN/081-82/0001" {
		t.Errorf("credit note number = %q, want CN/081-82/0001", note.InvoiceNumber)
	}
	if !note.IsCreditNote {
		t.Error("credit note not flagged as such")
	}
	if note.OriginalInvoiceID == nil || *note.OriginalInvoiceID != original.ID {
		t.Errorf("credit note original reference = %v, want %d", note.OriginalInvoiceID, original.ID)
	}
	if !note.PaidAmount.IsZero() {
		t.Errorf("credit note paid amount = %s, want 0", note.PaidAmount)
	}

	// The original survives as CANCELLED with the full audit block.
	var reloaded models.Invoice
	db.First(&reloaded, original.ID)
	if reloaded.Status != models.StatusCancelled {
		t.Errorf("original status = %q, want CANCELLED", reloaded.Status)
	}
	if reloaded.CancelReason != "Goods returned by buyer" {
		t.Errorf("cancel reason = %q", reloaded.CancelReason)
	}
	if reloaded.CancellationComment != "customer rejected delivery" {
		t.Errorf("cancellation comment = %q", reloaded.CancellationComment)
	}
	if reloaded.CancelledDate == nil {
		t.Error("cancelled date not set")
	}
	if reloaded.CreditNoteNumber != note.InvoiceNumber {
		t.Errorf("credit note back-reference = %q, want %q", reloaded.CreditNoteNumber, note.InvoiceNumber)
	}

	// The pair nets to zero across all financial figures.
	if !reloaded.Subtotal.Add(note.Subtotal).IsZero() {
		t.Errorf("subtotals do not net to zero: %s + %s", reloaded.Subtotal, note.Subtotal)
	}
	if !reloaded.VatAmount.Add(note.VatAmount).IsZero() {
		t.Errorf("vat does not net to zero: %s + %s", reloaded.VatAmount, note.VatAmount)
	}
	if !reloaded.TotalAmount.Add(note.TotalAmount).IsZero() {
		t.Errorf("totals do not net to zero: %s + %s", reloaded.TotalAmount, note.TotalAmount)
	}

	// Every mirrored line carries the negated quantity at the same price.
	_, originalItems, err := svc.Read(original.ID)
	if err != nil {
		t.Fatalf("Read(original) error = %v", err)
	}
	_, noteItems, err := svc.Read(note.ID)
	if err != nil {
		t.Fatalf("Read(note) error = %v", err)
	}
	if len(noteItems) != len(originalItems) {
		t.Fatalf("credit note item count = %d, want %d", len(noteItems), len(originalItems))
	}
	for i := range originalItems {
		if noteItems[i].Quantity != -originalItems[i].Quantity {
			t.Errorf("item %d quantity = %d, want %d", i, noteItems[i].Quantity, -originalItems[i].Quantity)
		}
		if !noteItems[i].PricePerUnit.Equal(originalItems[i].PricePerUnit) {
			t.Errorf("item %d price = %s, want %s", i, noteItems[i].PricePerUnit, originalItems[i].PricePerUnit)
		}
	}

	// Stock went back on the shelf.
	var product models.Product
	db.First(&product, 1)
	if product.StockQuantity != 100 {
		t.Errorf("stock after cancellation = %d, want 100", product.StockQuantity)
	}
}

func TestCancelRejectsSecondAttempt(t *testing.T) {
	svc, _ := newTestService(t)

	inv, err := svc.Create(testSession, referenceInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Cancel(testSession, inv.ID, "Invoice issued in error", ""); err != nil {
		t.Fatalf("first Cancel() error = %v", err)
	}

	_, err = svc.Cancel(testSession, inv.ID, "Invoice issued in error", "")
	if !errors.Is(err, ErrAlreadyCancelled) {
		t.Errorf("second Cancel() error = %v, want ErrAlreadyCancelled", err)
	}
}

func TestCancelRejectsCreditNoteTarget(t *testing.T) {
	svc, _ := newTestService(t)

	inv, err := svc.Create(testSession, referenceInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	note, err := svc.Cancel(testSession, inv.ID, "Invoice issued in error", "")
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	_, err = svc.Cancel(testSession, note.ID, "Invoice issued in error", "")
	if !errors.Is(err, ErrCreditNoteTarget) {
		t.Errorf("Cancel(credit note) error = %v, want ErrCreditNoteTarget", err)
	}
}

func TestCancelReasonValidation(t *testing.T) {
	svc, _ := newTestService(t)

	inv, err := svc.Create(testSession, referenceInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	for _, reason := range []string{"", "because I felt like it"} {
		_, err := svc.Cancel(testSession, inv.ID, reason, "")
		if !errors.Is(err, ErrMissingReason) {
			t.Errorf("Cancel(reason=%q) error = %v, want ErrMissingReason", reason, err)
		}
	}
}

func TestCancelUnknownInvoice(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Cancel(testSession, 9999, "Invoice issued in error", "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Cancel(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestReadJoinsLiveProduct(t *testing.T) {
	svc, db := newTestService(t)

	created, err := svc.Create(testSession, referenceInput())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// A later catalog rename shows up on historical reads: descriptive
	// attributes are join-live, only monetary fields are snapshotted.
	db.Model(&models.Product{}).Where("id = ?", 1).Update("name", "Engine Oil 20W-50 (New Pack)")

	_, items, err := svc.Read(created.ID)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if items[0].Product.Name != "Engine Oil 20W-50 (New Pack)" {
		t.Errorf("joined product name = %q, want the renamed one", items[0].Product.Name)
	}
	if !items[0].PricePerUnit.Equal(d("500")) {
		t.Errorf("snapshotted price = %s, want 500", items[0].PricePerUnit)
	}
}

func TestReadNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Read(4242)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Read(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestIsApprovedReasonCoversClosedSet(t *testing.T) {
	if len(CancellationReasons) != 9 {
		t.Fatalf("approved reason count = %d, want 9", len(CancellationReasons))
	}
	for _, reason := range CancellationReasons {
		if !IsApprovedReason(reason) {
			t.Errorf("IsApprovedReason(%q) = false, want true", reason)
		}
	}
	if IsApprovedReason("closure of business") { // case matters: the set is closed
		t.Error("IsApprovedReason should not match case-insensitively")
	}
}
