// Package billing implements the invoice lifecycle: gap-free fiscal-year
// document numbering, the single ACTIVE -> CANCELLED transition via credit
// note, and the tax arithmetic shared by every consumer of an invoice.
package billing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"moonal-billing/internal/fiscal"
	"moonal-billing/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Session identifies the logged-in user performing an operation. It is
// passed in explicitly so the engine never reads process-wide state.
type Session struct {
	UserID   uint
	Username string
}

// CustomerInfo is the party block copied onto an invoice at issue time.
type CustomerInfo struct {
	Name    string
	Contact string
	Address string
	PanNo   string
}

// ItemInput is one requested line: the unit price is resolved from the
// product catalog inside the creation transaction.
type ItemInput struct {
	ProductID uint
	Quantity  int
}

// CreateInput carries everything needed to issue a tax invoice.
type CreateInput struct {
	Customer    CustomerInfo
	Items       []ItemInput
	DiscountPct decimal.Decimal
	VatPct      decimal.Decimal
	PaidAmount  decimal.Decimal
}

// Service orchestrates invoice creation, reads and cancellation against the
// shared store. All operations are synchronous; callers retry whole
// operations on ErrTransactionConflict.
type Service struct {
	db    *gorm.DB
	locks patternLock
	now   func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// Create issues a new ACTIVE invoice: resolves catalog prices, deducts
// stock, computes totals once, allocates the next MU number and persists
// the header plus items atomically.
func (s *Service) Create(sess Session, in CreateInput) (*models.Invoice, error) {
	// All validation happens before any write.
	if len(in.Items) == 0 {
		return nil, ErrEmptyInvoice
	}
	if in.DiscountPct.IsNegative() || in.DiscountPct.GreaterThan(hundred) {
		return nil, ErrInvalidDiscount
	}

	fiscalYear := fiscal.Resolve(s.now())
	lock := s.locks.get(SeriesInvoice + "/" + fiscalYear + "/")
	lock.Lock()
	defer lock.Unlock()

	var created *models.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		lines := make([]LineInput, 0, len(in.Items))
		for _, item := range in.Items {
			var product models.Product
			if err := tx.First(&product, item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("product %d: %w", item.ProductID, ErrNotFound)
				}
				return err
			}
			if err := adjustStock(tx, product.ID, item.Quantity); err != nil {
				return fmt.Errorf("%s: %w", product.Name, err)
			}
			lines = append(lines, LineInput{
				ProductID: product.ID,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
			})
		}

		inv, err := s.persistDocument(tx, sess, SeriesInvoice, fiscalYear,
			in.Customer, lines, in.DiscountPct, in.VatPct, in.PaidAmount, nil)
		if err != nil {
			return err
		}
		created = inv
		return nil
	})
	if err != nil {
		return nil, translateConflict(err)
	}
	return created, nil
}

// Cancel performs the one legal state transition. The original invoice is
// marked CANCELLED (never deleted) and a credit note with mirrored negative
// quantities is issued in the same transaction, so the pair nets to zero.
// Returns the credit note.
func (s *Service) Cancel(sess Session, invoiceID uint, reason, comment string) (*models.Invoice, error) {
	if !IsApprovedReason(reason) {
		return nil, ErrMissingReason
	}

	fiscalYear := fiscal.Resolve(s.now())
	lock := s.locks.get(SeriesCreditNote + "/" + fiscalYear + "/")
	lock.Lock()
	defer lock.Unlock()

	var note *models.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.First(&inv, invoiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if inv.IsCreditNote {
			return ErrCreditNoteTarget
		}
		if inv.Status != models.StatusActive {
			return ErrAlreadyCancelled
		}

		var items []models.InvoiceItem
		if err := tx.Where("invoice_id = ?", inv.ID).Find(&items).Error; err != nil {
			return err
		}

		// Mirror every line with its quantity negated. The negative
		// adjustment puts the goods back into stock.
		lines := make([]LineInput, 0, len(items))
		for _, item := range items {
			if err := adjustStock(tx, item.ProductID, -item.Quantity); err != nil {
				return err
			}
			lines = append(lines, LineInput{
				ProductID: item.ProductID,
				Quantity:  -item.Quantity,
				UnitPrice: item.PricePerUnit,
			})
		}

		customer := CustomerInfo{
			Name:    inv.ClientName,
			Contact: inv.ClientContact,
			Address: inv.Address,
			PanNo:   inv.PanNo,
		}
		created, err := s.persistDocument(tx, sess, SeriesCreditNote, fiscalYear,
			customer, lines, inv.Discount, inv.VatRate, decimal.Zero, &inv.ID)
		if err != nil {
			return err
		}

		cancelledAt := s.now()
		updates := map[string]interface{}{
			"status":               models.StatusCancelled,
			"cancel_reason":        reason,
			"cancellation_comment": comment,
			"cancelled_date":       cancelledAt,
			"credit_note_number":   created.InvoiceNumber,
		}
		if err := tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).Updates(updates).Error; err != nil {
			return err
		}

		writeAudit(tx, sess, "invoice.cancel",
			fmt.Sprintf("cancelled %s (%s), issued %s", inv.InvoiceNumber, reason, created.InvoiceNumber))
		note = created
		return nil
	})
	if err != nil {
		return nil, translateConflict(err)
	}
	return note, nil
}

// Read loads an invoice and its line items, with the live product attached
// to each line for display.
func (s *Service) Read(invoiceID uint) (*models.Invoice, []models.InvoiceItem, error) {
	var inv models.Invoice
	if err := s.db.First(&inv, invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	var items []models.InvoiceItem
	if err := s.db.Preload("Product").Where("invoice_id = ?", inv.ID).Find(&items).Error; err != nil {
		return nil, nil, err
	}
	return &inv, items, nil
}

// List returns invoices newest first, optionally filtered by a free-text
// match on the document number or client name.
func (s *Service) List(search string) ([]models.Invoice, error) {
	query := s.db.Model(&models.Invoice{}).Order("id desc")
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(invoice_number) LIKE ? OR LOWER(client_name) LIKE ?", like, like)
	}

	var invoices []models.Invoice
	err := query.Find(&invoices).Error
	return invoices, err
}

// persistDocument allocates the next number in the series and inserts the
// header plus items inside the caller's transaction. The pattern lock for
// (series, fiscal year) must already be held.
func (s *Service) persistDocument(tx *gorm.DB, sess Session, series, fiscalYear string,
	customer CustomerInfo, lines []LineInput, discountPct, vatPct, paidAmount decimal.Decimal,
	originalID *uint) (*models.Invoice, error) {

	totals, err := Compute(lines, discountPct, vatPct, paidAmount)
	if err != nil {
		return nil, err
	}
	totals = totals.Rounded()

	number, err := nextDocumentNumber(tx, series, fiscalYear)
	if err != nil {
		return nil, err
	}

	items := make([]models.InvoiceItem, len(lines))
	for i, line := range lines {
		items[i] = models.InvoiceItem{
			ProductID:    line.ProductID,
			Quantity:     line.Quantity,
			PricePerUnit: line.UnitPrice,
			TotalPrice:   LineTotal(line.Quantity, line.UnitPrice),
		}
	}

	inv := models.Invoice{
		InvoiceNumber:     number,
		ClientName:        customer.Name,
		ClientContact:     customer.Contact,
		Address:           customer.Address,
		PanNo:             customer.PanNo,
		Date:              s.now(),
		Subtotal:          totals.Subtotal,
		VatRate:           vatPct,
		VatAmount:         totals.VatAmount,
		Discount:          discountPct,
		TotalAmount:       totals.GrandTotal,
		PaidAmount:        totals.PaidAmount,
		DueAmount:         totals.DueAmount,
		Status:            models.StatusActive,
		IsCreditNote:      originalID != nil,
		OriginalInvoiceID: originalID,
		PerformedBy:       sess.Username,
		Items:             items,
	}

	if err := tx.Create(&inv).Error; err != nil {
		return nil, err
	}

	writeAudit(tx, sess, "invoice.create", fmt.Sprintf("issued %s for %s", number, customer.Name))
	return &inv, nil
}

// adjustStock applies a signed quantity change to a product row as a single
// guarded UPDATE, so concurrent sales cannot oversell. A negative quantity
// (credit note) always succeeds and restores stock.
func adjustStock(tx *gorm.DB, productID uint, quantity int) error {
	result := tx.Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func writeAudit(tx *gorm.DB, sess Session, action, details string) {
	// Audit writes ride the business transaction but a failure here should
	// not void a legally issued document.
	tx.Create(&models.AuditLog{
		Username: sess.Username,
		Action:   action,
		Details:  details,
	})
}

// translateConflict maps storage-engine lock errors onto the retryable
// sentinel. Business sentinels pass through untouched.
func translateConflict(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "Deadlock found") ||
		strings.Contains(msg, "Lock wait timeout") {
		return fmt.Errorf("%w: %v", ErrTransactionConflict, err)
	}
	return err
}
