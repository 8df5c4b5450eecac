package handlers

import (
	"fmt"
	"net/http"
	"time"

	"moonal-billing/internal/database"
	"moonal-billing/internal/fiscal"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

func parseDateRange(c *gin.Context) (time.Time, time.Time, bool) {
	start, err1 := time.Parse("2006-01-02", c.Query("start"))
	end, err2 := time.Parse("2006-01-02", c.Query("end"))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end must be YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}
	// Make the range inclusive of the end day
	end = end.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	return start, end, true
}

// --- GET: /api/reports ---
// Headline figures plus the recent documents list.
func GetSalesReport(c *gin.Context) {
	start, end, ok := parseDateRange(c)
	if !ok {
		return
	}

	report, err := database.GetSalesReport(start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate revenue"})
		return
	}

	recent, err := Billing.List("")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent invoices"})
		return
	}
	if len(recent) > 10 {
		recent = recent[:10]
	}

	c.JSON(http.StatusOK, gin.H{
		"total_revenue":   report.TotalRevenue,
		"total_documents": report.TotalCount,
		"recent_invoices": recent,
	})
}

// --- GET: /api/reports/sales-register ---
// The VAT sales register: every document in range, cancelled originals and
// credit notes included, so the running sum nets cancelled pairs to zero.
func GetSalesRegister(c *gin.Context) {
	start, end, ok := parseDateRange(c)
	if !ok {
		return
	}

	rows, err := database.GetSalesRegister(start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build sales register"})
		return
	}

	c.JSON(http.StatusOK, rows)
}

// --- GET: /api/reports/sales-register/export ---
// Same register as an .xlsx download for the accountant.
func ExportSalesRegister(c *gin.Context) {
	start, end, ok := parseDateRange(c)
	if !ok {
		return
	}

	rows, err := database.GetSalesRegister(start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build sales register"})
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	header := []interface{}{"Date", "Invoice No", "Customer", "PAN", "Taxable", "VAT", "Total", "Type"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed"})
		return
	}

	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		values := []interface{}{
			row.Date.Format("2006-01-02"),
			row.InvoiceNumber,
			row.ClientName,
			row.PanNo,
			row.TaxableAmount.InexactFloat64(),
			row.VatAmount.InexactFloat64(),
			row.TotalAmount.InexactFloat64(),
			row.Type,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed"})
			return
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed"})
		return
	}

	filename := fmt.Sprintf("sales_register_%s_%s.xlsx", c.Query("start"), c.Query("end"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// --- GET: /api/reports/monthly ---
// Dashboard chart data for one fiscal year (defaults to the current one).
func GetMonthlySummary(c *gin.Context) {
	fiscalYear := c.Query("fiscal_year")
	if fiscalYear == "" {
		fiscalYear = fiscal.Resolve(time.Now())
	}

	totals, err := database.GetMonthlySummary(fiscalYear)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate monthly totals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"fiscal_year": fiscalYear, "months": totals})
}

// --- GET: /api/reports/low-stock ---
func GetLowStock(c *gin.Context) {
	products, err := database.GetLowStockProducts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch low stock items"})
		return
	}
	c.JSON(http.StatusOK, products)
}
