// Package fiscal maps Gregorian dates onto Nepali fiscal-year labels.
//
// The Nepali fiscal year starts on 1 Shrawan, which falls on July 16 in a
// Gregorian leap year and July 17 otherwise. This is an approximation of the
// Bikram Sambat calendar, not a full conversion, but it is stable for the
// range of dates an invoicing system cares about.
package fiscal

import (
	"fmt"
	"time"
)

// The month of transition: Shrawan begins in Gregorian July.
const transitionMonth = time.July

// IsLeapYear reports whether a Gregorian year is a leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// Resolve returns the Nepali fiscal-year label for a date, e.g. "081-82"
// for the year running 1 Shrawan 2081 through 31 Ashadh 2082.
func Resolve(date time.Time) string {
	year := date.Year()
	nepaliYear := year + 57 // Bikram Sambat offset

	startDay := 17
	if IsLeapYear(year) {
		startDay = 16
	}

	// Before 1 Shrawan we are still in the fiscal year that opened last July.
	start := nepaliYear
	if date.Month() < transitionMonth ||
		(date.Month() == transitionMonth && date.Day() < startDay) {
		start = nepaliYear - 1
	}

	return fmt.Sprintf("%03d-%02d", start%1000, (start+1)%100)
}
