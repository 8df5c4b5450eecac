package billing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"moonal-billing/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Document series prefixes. Invoices and credit notes run independent
// sequences inside each fiscal year.
const (
	SeriesInvoice    = "MU"
	SeriesCreditNote = "CN"
)

// patternLock hands out one mutex per "{PREFIX}/{fiscal_year}" pattern.
// Holding it across the read-increment-insert transaction is what keeps two
// concurrent creations in the same series and year from observing the same
// last number.
type patternLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (p *patternLock) get(pattern string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.locks == nil {
		p.locks = make(map[string]*sync.Mutex)
	}
	if _, ok := p.locks[pattern]; !ok {
		p.locks[pattern] = &sync.Mutex{}
	}
	return p.locks[pattern]
}

// nextDocumentNumber allocates the next sequential number for a series and
// fiscal year, formatted like "MU/081-82/0001". The caller must hold the
// pattern lock and must insert the returned number inside the same
// transaction before releasing it.
func nextDocumentNumber(tx *gorm.DB, series, fiscalYear string) (string, error) {
	prefix := series + "/" + fiscalYear + "/"

	var last models.Invoice
	err := tx.Select("invoice_number").
		Where("invoice_number LIKE ?", prefix+"%").
		Order("id desc").
		First(&last).Error

	seq := 0
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// First document for this series and year.
	case err != nil:
		return "", err
	default:
		n, parseErr := parseTrailingSequence(last.InvoiceNumber)
		if parseErr != nil {
			// Degrade gracefully: restart the pattern at 1 rather than
			// refusing to issue invoices.
			log.Warn().
				Str("invoice_number", last.InvoiceNumber).
				Str("pattern", prefix).
				Err(ErrSequenceCorrupt).
				Msg("restarting document sequence at 1")
		} else {
			seq = n
		}
	}

	return fmt.Sprintf("%s%04d", prefix, seq+1), nil
}

func parseTrailingSequence(number string) (int, error) {
	idx := strings.LastIndex(number, "/")
	if idx < 0 || idx == len(number)-1 {
		return 0, ErrSequenceCorrupt
	}
	n, err := strconv.Atoi(number[idx+1:])
	if err != nil {
		return 0, ErrSequenceCorrupt
	}
	return n, nil
}
