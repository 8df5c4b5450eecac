package database

import (
	"time"

	"moonal-billing/internal/models"

	"github.com/shopspring/decimal"
)

// SalesReportResult is the headline revenue figure for a date range.
type SalesReportResult struct {
	TotalRevenue decimal.Decimal
	TotalCount   int64
}

// GetSalesReport sums invoice totals within a date range. Credit notes carry
// negative totals, so the sum is the true net revenue.
func GetSalesReport(start, end time.Time) (*SalesReportResult, error) {
	var result SalesReportResult

	// COALESCE ensures we get 0 instead of NULL if no invoices exist
	err := DB.Model(&models.Invoice{}).
		Where("date BETWEEN ? AND ?", start, end).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&result.TotalRevenue).Error
	if err != nil {
		return nil, err
	}

	err = DB.Model(&models.Invoice{}).
		Where("date BETWEEN ? AND ?", start, end).
		Count(&result.TotalCount).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// RegisterRow is one line of the IRD sales register.
type RegisterRow struct {
	Date          time.Time       `json:"date"`
	InvoiceNumber string          `json:"invoice_number"`
	ClientName    string          `json:"client_name"`
	PanNo         string          `json:"pan_no"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	VatAmount     decimal.Decimal `json:"vat_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Type          string          `json:"type"` // Invoice, Cancelled, Credit Note
}

// GetSalesRegister returns every document in the range, cancelled originals
// included. The cancelled invoice shows the original sale and its credit
// note shows the reversal; hiding either would skew the register, keeping
// both makes the pair net to zero.
func GetSalesRegister(start, end time.Time) ([]RegisterRow, error) {
	var invoices []models.Invoice
	err := DB.Where("date BETWEEN ? AND ?", start, end).
		Order("date asc, id asc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}

	rows := make([]RegisterRow, 0, len(invoices))
	for _, inv := range invoices {
		docType := "Invoice"
		if inv.IsCreditNote {
			docType = "Credit Note"
		} else if inv.Status == models.StatusCancelled {
			docType = "Cancelled"
		}

		rows = append(rows, RegisterRow{
			Date:          inv.Date,
			InvoiceNumber: inv.InvoiceNumber,
			ClientName:    inv.ClientName,
			PanNo:         inv.PanNo,
			TaxableAmount: inv.Subtotal.Sub(inv.Subtotal.Mul(inv.Discount).Div(decimal.NewFromInt(100))).Round(2),
			VatAmount:     inv.VatAmount,
			TotalAmount:   inv.TotalAmount,
			Type:          docType,
		})
	}
	return rows, nil
}

// MonthlyTotal is one bar of the dashboard chart.
type MonthlyTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// GetMonthlySummary aggregates totals by calendar month for one fiscal
// year, identified through the document number pattern.
func GetMonthlySummary(fiscalYear string) ([]MonthlyTotal, error) {
	monthExpr := "strftime('%Y-%m', date)"
	if DB.Dialector.Name() == "mysql" {
		monthExpr = "DATE_FORMAT(date, '%Y-%m')"
	}

	var results []MonthlyTotal
	err := DB.Model(&models.Invoice{}).
		Select(monthExpr + " as month, SUM(total_amount) as total").
		Where("invoice_number LIKE ?", "%/"+fiscalYear+"/%").
		Group("month").
		Order("month asc").
		Scan(&results).Error
	return results, err
}

// GetLowStockProducts lists catalog items at or below their alert level.
func GetLowStockProducts() ([]models.Product, error) {
	var products []models.Product
	err := DB.Where("stock_quantity <= min_stock_alert").
		Order("stock_quantity asc").
		Find(&products).Error
	return products, err
}
