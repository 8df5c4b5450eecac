package billing

import "errors"

// Business failures callers are expected to branch on with errors.Is.
var (
	// ErrInvalidDiscount is returned when the discount percentage falls
	// outside the inclusive 0..100 range.
	ErrInvalidDiscount = errors.New("discount must be between 0 and 100 percent")

	// ErrEmptyInvoice is returned when an invoice is created with no line items.
	ErrEmptyInvoice = errors.New("invoice must contain at least one line item")

	// ErrNotFound is returned when no invoice exists for the given id.
	ErrNotFound = errors.New("invoice not found")

	// ErrAlreadyCancelled is returned when cancelling an invoice that is
	// no longer ACTIVE.
	ErrAlreadyCancelled = errors.New("invoice is already cancelled")

	// ErrMissingReason is returned when a cancellation carries no reason or
	// one outside the IRD-approved list.
	ErrMissingReason = errors.New("cancellation requires an approved reason")

	// ErrCreditNoteTarget is returned when the cancellation target is itself
	// a credit note. A credit note can never be cancelled.
	ErrCreditNoteTarget = errors.New("credit notes cannot be cancelled")

	// ErrInsufficientStock is returned when a line item asks for more units
	// than the catalog currently holds.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrSequenceCorrupt marks an unparsable stored document number. The
	// generator recovers by restarting the sequence at 1; this sentinel only
	// appears in logs, never as a fatal return.
	ErrSequenceCorrupt = errors.New("stored document number is unparsable")

	// ErrTransactionConflict is returned when the storage engine reports a
	// lock wait or deadlock. The caller should retry the whole operation,
	// not just the numbering step.
	ErrTransactionConflict = errors.New("transaction conflict, retry the operation")
)

// CancellationReasons is the closed set of IRD-approved grounds for
// cancelling a tax invoice. Free-text reasons are rejected so the sales
// register stays compatible with the tax authority's reporting schema.
var CancellationReasons = []string{
	"Closure of business",
	"Merger of business",
	"Registration by mistake",
	"Wrong PAN/VAT number",
	"Duplicate registration",
	"Invoice issued in error",
	"Goods returned by buyer",
	"Incorrect VAT calculation",
	"Discount given after invoicing",
}

// IsApprovedReason reports whether reason is on the IRD list.
func IsApprovedReason(reason string) bool {
	for _, r := range CancellationReasons {
		if r == reason {
			return true
		}
	}
	return false
}
