package billing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LineInput is one invoice line as the computation engine sees it.
// Quantity is signed: credit-note lines carry negative quantities and
// therefore produce a negative subtotal.
type LineInput struct {
	ProductID uint
	Quantity  int
	UnitPrice decimal.Decimal
}

// Totals holds every derived monetary figure of an invoice. Values are kept
// at full decimal precision; round to 2 places only when persisting or
// presenting (see Rounded).
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableAmount  decimal.Decimal
	VatAmount      decimal.Decimal
	GrandTotal     decimal.Decimal
	PaidAmount     decimal.Decimal
	DueAmount      decimal.Decimal
}

// Rounded returns a copy with every figure rounded to 2 decimal places.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal:       t.Subtotal.Round(2),
		DiscountAmount: t.DiscountAmount.Round(2),
		TaxableAmount:  t.TaxableAmount.Round(2),
		VatAmount:      t.VatAmount.Round(2),
		GrandTotal:     t.GrandTotal.Round(2),
		PaidAmount:     t.PaidAmount.Round(2),
		DueAmount:      t.DueAmount.Round(2),
	}
}

// Compute derives all invoice totals from the line items and rates. This is
// the single place in the system where invoice arithmetic happens: list
// views, PDFs and reports consume the stored result instead of recomputing.
//
//	subtotal   = sum(quantity * unit price)        (signed)
//	discount   = subtotal * discount% / 100
//	taxable    = subtotal - discount
//	vat        = taxable * vat% / 100
//	grand      = taxable + vat
//	due        = grand - paid
func Compute(items []LineInput, discountPct, vatPct, paidAmount decimal.Decimal) (Totals, error) {
	if discountPct.IsNegative() || discountPct.GreaterThan(hundred) {
		return Totals{}, ErrInvalidDiscount
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	discountAmount := subtotal.Mul(discountPct).Div(hundred)
	taxable := subtotal.Sub(discountAmount)
	vatAmount := taxable.Mul(vatPct).Div(hundred)
	grandTotal := taxable.Add(vatAmount)

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxableAmount:  taxable,
		VatAmount:      vatAmount,
		GrandTotal:     grandTotal,
		PaidAmount:     paidAmount,
		DueAmount:      grandTotal.Sub(paidAmount),
	}, nil
}

// LineTotal is the stored per-line amount: quantity * unit price, signed.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}
