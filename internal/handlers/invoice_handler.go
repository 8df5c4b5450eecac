package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"moonal-billing/internal/billing"
	"moonal-billing/internal/pdf"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Wired from main after the database is up.
var (
	Billing        *billing.Service
	Company        pdf.CompanyInfo
	DefaultVatRate = decimal.NewFromInt(13)
)

func currentSession(c *gin.Context) billing.Session {
	sess := billing.Session{Username: c.GetString("username")}
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(uint); ok {
			sess.UserID = id
		}
	}
	return sess
}

type InvoiceItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

type InvoiceRequest struct {
	ClientName    string               `json:"client_name" binding:"required"`
	ClientContact string               `json:"client_contact"`
	Address       string               `json:"address"`
	PanNo         string               `json:"pan_no"`
	Items         []InvoiceItemRequest `json:"items"`
	Discount      float64              `json:"discount"`
	VatRate       *float64             `json:"vat_rate"` // defaults to the configured rate (13%)
	PaidAmount    float64              `json:"paid_amount"`
}

// --- POST: /api/invoices ---
func CreateInvoice(c *gin.Context) {
	var req InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	vatRate := DefaultVatRate
	if req.VatRate != nil {
		vatRate = decimal.NewFromFloat(*req.VatRate)
	}

	items := make([]billing.ItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = billing.ItemInput{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	invoice, err := Billing.Create(currentSession(c), billing.CreateInput{
		Customer: billing.CustomerInfo{
			Name:    req.ClientName,
			Contact: req.ClientContact,
			Address: req.Address,
			PanNo:   req.PanNo,
		},
		Items:       items,
		DiscountPct: decimal.NewFromFloat(req.Discount),
		VatPct:      vatRate,
		PaidAmount:  decimal.NewFromFloat(req.PaidAmount),
	})
	if err != nil {
		respondBillingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, invoice)
}

// --- GET: /api/invoices ---
func GetInvoices(c *gin.Context) {
	invoices, err := Billing.List(c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invoices"})
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// --- GET: /api/invoices/:id ---
func GetInvoice(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID"})
		return
	}

	invoice, items, err := Billing.Read(uint(id))
	if err != nil {
		respondBillingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": invoice, "items": items})
}

type CancelRequest struct {
	Reason  string `json:"reason" binding:"required"`
	Comment string `json:"comment"`
}

// --- POST: /api/invoices/:id/cancel ---
// Issues the offsetting credit note; the invoice row itself is never deleted.
func CancelInvoice(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID"})
		return
	}

	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cancellation reason is required"})
		return
	}

	note, err := Billing.Cancel(currentSession(c), uint(id), req.Reason, req.Comment)
	if err != nil {
		respondBillingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Invoice cancelled, credit note issued",
		"credit_note": note,
	})
}

// --- GET: /api/invoices/reasons ---
// The closed IRD list the cancel dialog must choose from.
func GetCancellationReasons(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"reasons": billing.CancellationReasons})
}

// --- GET: /api/invoices/:id/pdf ---
func GetInvoicePDF(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID"})
		return
	}

	invoice, items, err := Billing.Read(uint(id))
	if err != nil {
		respondBillingError(c, err)
		return
	}

	data, err := pdf.RenderInvoice(Company, invoice, items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render PDF"})
		return
	}

	filename := fmt.Sprintf("Invoice_%d.pdf", invoice.ID)
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// respondBillingError maps engine sentinels onto HTTP statuses.
func respondBillingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, billing.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, billing.ErrInvalidDiscount),
		errors.Is(err, billing.ErrEmptyInvoice),
		errors.Is(err, billing.ErrMissingReason),
		errors.Is(err, billing.ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, billing.ErrAlreadyCancelled),
		errors.Is(err, billing.ErrCreditNoteTarget):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, billing.ErrTransactionConflict):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "The store is busy, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Operation failed"})
	}
}
