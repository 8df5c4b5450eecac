// Package pdf renders tax invoices and credit notes. It is a pure consumer
// of stored invoice data: every figure on the page comes from the persisted
// row, nothing is recomputed here.
package pdf

import (
	"bytes"
	"fmt"

	"moonal-billing/internal/models"

	"github.com/divan/num2words"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

var hundredPaisa = decimal.NewFromInt(100)

// CompanyInfo is the letterhead block printed on every document.
type CompanyInfo struct {
	Name    string
	Address string
	Pan     string
	Phone   string
}

const (
	pageMargin = 12.0
	lineHeight = 5.0
)

// RenderInvoice produces the A4 document: two identical copies on one page
// (office copy on top, customer copy below) separated by a dotted cut line,
// the layout Nepali trading businesses conventionally print.
func RenderInvoice(company CompanyInfo, inv *models.Invoice, items []models.InvoiceItem) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	pageW, pageH := doc.GetPageSize()

	drawCopy(doc, company, inv, items, pageMargin, "Office Copy")
	drawCopy(doc, company, inv, items, pageH/2+6, "Customer Copy")

	// Dotted cut line in the middle
	doc.SetDashPattern([]float64{2, 2}, 0)
	doc.SetDrawColor(128, 128, 128)
	doc.SetLineWidth(0.2)
	doc.Line(pageMargin, pageH/2, pageW-pageMargin, pageH/2)
	doc.SetDashPattern([]float64{}, 0)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawCopy(doc *fpdf.Fpdf, company CompanyInfo, inv *models.Invoice, items []models.InvoiceItem, top float64, copyLabel string) {
	pageW, _ := doc.GetPageSize()
	usable := pageW - 2*pageMargin

	title := "TAX INVOICE"
	if inv.IsCreditNote {
		title = "CREDIT NOTE"
	}

	// Letterhead
	doc.SetXY(pageMargin, top)
	doc.SetFont("Helvetica", "B", 13)
	doc.CellFormat(usable, 6, company.Name, "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "", 8)
	doc.SetX(pageMargin)
	doc.CellFormat(usable, 4, company.Address, "", 1, "C", false, 0, "")
	if company.Pan != "" {
		doc.SetX(pageMargin)
		doc.CellFormat(usable, 4, "PAN: "+company.Pan+"   Tel: "+company.Phone, "", 1, "C", false, 0, "")
	}

	doc.SetX(pageMargin)
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(usable, 6, title, "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "I", 7)
	doc.SetX(pageMargin)
	doc.CellFormat(usable, 3.5, copyLabel, "", 1, "C", false, 0, "")

	// Document and party block
	doc.Ln(1.5)
	doc.SetFont("Helvetica", "", 8.5)
	doc.SetX(pageMargin)
	doc.CellFormat(usable/2, lineHeight, "Invoice No: "+inv.InvoiceNumber, "", 0, "L", false, 0, "")
	doc.CellFormat(usable/2, lineHeight, "Date: "+inv.Date.Format("2006-01-02"), "", 1, "R", false, 0, "")
	doc.SetX(pageMargin)
	doc.CellFormat(usable/2, lineHeight, "Customer: "+inv.ClientName, "", 0, "L", false, 0, "")
	doc.CellFormat(usable/2, lineHeight, "PAN/VAT: "+inv.PanNo, "", 1, "R", false, 0, "")
	doc.SetX(pageMargin)
	doc.CellFormat(usable/2, lineHeight, "Address: "+inv.Address, "", 0, "L", false, 0, "")
	doc.CellFormat(usable/2, lineHeight, "Contact: "+inv.ClientContact, "", 1, "R", false, 0, "")

	if inv.IsCreditNote && inv.OriginalInvoiceID != nil {
		doc.SetX(pageMargin)
		doc.CellFormat(usable, lineHeight, fmt.Sprintf("Reverses invoice record #%d", *inv.OriginalInvoiceID), "", 1, "L", false, 0, "")
	}
	if inv.Status == models.StatusCancelled {
		doc.SetX(pageMargin)
		doc.SetFont("Helvetica", "B", 8.5)
		doc.CellFormat(usable, lineHeight, "CANCELLED - "+inv.CancelReason, "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 8.5)
	}

	// Items table
	colW := []float64{12, 70, 22, 16, 32, 34}
	headers := []string{"SN", "Particulars", "HS Code", "Qty", "Rate", "Amount"}

	doc.Ln(1)
	doc.SetX(pageMargin)
	doc.SetFont("Helvetica", "B", 8)
	for i, h := range headers {
		doc.CellFormat(colW[i], lineHeight, h, "1", 0, "C", false, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 8)
	for i, item := range items {
		doc.SetX(pageMargin)
		name := item.Product.Name
		if name == "" {
			name = fmt.Sprintf("Product #%d", item.ProductID)
		}
		doc.CellFormat(colW[0], lineHeight, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		doc.CellFormat(colW[1], lineHeight, name, "1", 0, "L", false, 0, "")
		doc.CellFormat(colW[2], lineHeight, item.Product.HSCode, "1", 0, "C", false, 0, "")
		doc.CellFormat(colW[3], lineHeight, fmt.Sprintf("%d", item.Quantity), "1", 0, "R", false, 0, "")
		doc.CellFormat(colW[4], lineHeight, item.PricePerUnit.StringFixed(2), "1", 0, "R", false, 0, "")
		doc.CellFormat(colW[5], lineHeight, item.TotalPrice.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	// Totals block, right aligned. Values are the stored ones.
	labelW := usable - colW[5]
	totals := []struct {
		label string
		value string
	}{
		{"Subtotal", inv.Subtotal.StringFixed(2)},
		{fmt.Sprintf("Discount (%s%%)", inv.Discount.StringFixed(0)), inv.Subtotal.Sub(inv.TotalAmount.Sub(inv.VatAmount)).StringFixed(2)},
		{fmt.Sprintf("VAT (%s%%)", inv.VatRate.StringFixed(0)), inv.VatAmount.StringFixed(2)},
		{"Grand Total", inv.TotalAmount.StringFixed(2)},
		{"Paid", inv.PaidAmount.StringFixed(2)},
		{"Due", inv.DueAmount.StringFixed(2)},
	}
	for _, row := range totals {
		doc.SetX(pageMargin)
		doc.CellFormat(labelW, lineHeight, row.label, "", 0, "R", false, 0, "")
		doc.CellFormat(colW[5], lineHeight, row.value, "1", 1, "R", false, 0, "")
	}

	// Amount in words
	doc.SetX(pageMargin)
	doc.SetFont("Helvetica", "I", 8)
	doc.CellFormat(usable, lineHeight, "In words: "+amountInWords(inv), "", 1, "L", false, 0, "")

	doc.Ln(2)
	doc.SetX(pageMargin)
	doc.SetFont("Helvetica", "", 8)
	doc.CellFormat(usable/2, lineHeight, "Prepared by: "+inv.PerformedBy, "", 0, "L", false, 0, "")
	doc.CellFormat(usable/2, lineHeight, "Authorised Signature: ____________", "", 1, "R", false, 0, "")
}

func amountInWords(inv *models.Invoice) string {
	total := inv.TotalAmount
	prefix := ""
	if total.IsNegative() {
		prefix = "Minus "
		total = total.Neg()
	}

	rupees := total.IntPart()
	paisa := total.Sub(total.Floor()).Mul(hundredPaisa).Round(0).IntPart()

	words := prefix + "Nepalese Rupees " + num2words.Convert(int(rupees))
	if paisa > 0 {
		words += " and " + num2words.Convert(int(paisa)) + " Paisa"
	}
	return words + " Only"
}
