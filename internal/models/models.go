package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice lifecycle states. An invoice is never deleted; cancellation
// happens by issuing an offsetting credit note.
const (
	StatusActive    = "ACTIVE"
	StatusCancelled = "CANCELLED"
)

// User - The person operating a terminal
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"`    // Never return this in JSON
	Role         string    `json:"role"` // 'admin', 'staff'
	CreatedAt    time.Time `json:"created_at"`
}

// Product - The Inventory
type Product struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"size:100" json:"name"`
	Price         decimal.Decimal `gorm:"type:decimal(20,2)" json:"price"`
	HSCode        string          `gorm:"column:hs_code;size:20" json:"hs_code"`
	Description   string          `json:"description"`
	Unit          string          `gorm:"size:20" json:"unit"`     // 'Ltr', 'Kg', 'Pcs', ...
	Category      string          `gorm:"size:50" json:"category"` // 'Lubricant', 'Engine Oil', ...
	StockQuantity int             `json:"stock_quantity"`
	MinStockAlert int             `json:"min_stock_alert"`
}

// Customer - The party book. Invoices copy the customer fields at issue
// time so the printed document stays stable if the book is edited later.
type Customer struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Name          string `gorm:"size:100" json:"name"`
	PanVat        string `gorm:"size:20" json:"pan_vat"`
	Address       string `json:"address"`
	ContactPerson string `gorm:"size:100" json:"contact_person"`
	Mobile        string `gorm:"size:20" json:"mobile"`
	Email         string `gorm:"size:100" json:"email"`
}

// Invoice - The tax document header. Financial fields are immutable after
// creation; only the status block may change, exactly once, ACTIVE -> CANCELLED.
// A credit note is stored in the same table with IsCreditNote set, negative
// line quantities and a reference back to the invoice it reverses.
type Invoice struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	InvoiceNumber string          `gorm:"uniqueIndex;size:30" json:"invoice_number"` // "MU/081-82/0001"
	ClientName    string          `gorm:"size:100" json:"client_name"`
	ClientContact string          `gorm:"size:50" json:"client_contact"`
	Address       string          `json:"address"`
	PanNo         string          `gorm:"size:20" json:"pan_no"`
	Date          time.Time       `json:"date"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(20,2)" json:"subtotal"`
	VatRate       decimal.Decimal `gorm:"type:decimal(5,2)" json:"vat_rate"`
	VatAmount     decimal.Decimal `gorm:"type:decimal(20,2)" json:"vat_amount"`
	Discount      decimal.Decimal `gorm:"type:decimal(5,2)" json:"discount"` // percentage, 0..100
	TotalAmount   decimal.Decimal `gorm:"type:decimal(20,2)" json:"total_amount"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(20,2)" json:"paid_amount"`
	DueAmount     decimal.Decimal `gorm:"type:decimal(20,2)" json:"due_amount"`

	Status              string     `gorm:"size:20;default:ACTIVE" json:"status"`
	CancelReason        string     `gorm:"size:100" json:"cancel_reason,omitempty"`
	CancellationComment string     `json:"cancellation_comment,omitempty"`
	CancelledDate       *time.Time `json:"cancelled_date,omitempty"`

	IsCreditNote      bool   `json:"is_credit_note"`
	CreditNoteNumber  string `gorm:"size:30" json:"credit_note_number,omitempty"` // set on the cancelled original
	OriginalInvoiceID *uint  `json:"original_invoice_id,omitempty"`               // set on the credit note

	PerformedBy string        `gorm:"size:50" json:"performed_by"`
	Items       []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`
}

// InvoiceItem - One line of an invoice. Quantity is signed: credit notes
// carry the mirrored negative quantities of the original. PricePerUnit is a
// snapshot of the catalog price at sale time; descriptive product attributes
// (name, HS code) are read-joined live for display.
type InvoiceItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	InvoiceID    uint            `json:"invoice_id"`
	ProductID    uint            `json:"product_id"`
	Product      Product         `json:"product"` // Preload for display
	Quantity     int             `json:"quantity"`
	PricePerUnit decimal.Decimal `gorm:"type:decimal(20,2)" json:"price_per_unit"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(20,2)" json:"total_price"`
}

// AuditLog - Who did what. Written alongside invoice lifecycle operations.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:50" json:"username"`
	Action    string    `gorm:"size:50" json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}
