package dateparse

import (
	"regexp"
	"time"
)

// datePatterns matches the date shapes ExtractAll scans free text for.
var datePatterns = regexp.MustCompile(
	`\d{4}-\d{2}-\d{2}` +
		`|\d{2}/\d{2}/\d{4}` +
		`|\d{2}\.\d{2}\.\d{4}` +
		`|\d{2}-\d{2}-\d{4}` +
		`|[A-Za-zà-ÿ]+ \d{1,2}, \d{4}` +
		`|\d{1,2} [A-Za-zà-ÿ]+ \d{4}`)

// ExtractAll finds every date-shaped substring in text and returns the ones
// that parse, in document order. Callers rely on position: for invoices the
// first date is the issue date and the second the due date.
func (p Parser) ExtractAll(text string) []time.Time {
	var dates []time.Time
	for _, candidate := range datePatterns.FindAllString(text, -1) {
		if r, ok := p.Parse(candidate); ok {
			dates = append(dates, r.Date)
		}
	}
	return dates
}

// DaysBetween returns end-start in whole days (negative when end precedes start).
func DaysBetween(start, end time.Time) int {
	return int(end.Sub(start).Hours() / 24)
}

// IsOverdue reports whether due falls strictly before the reference date.
func IsOverdue(due, reference time.Time) bool {
	return due.Before(reference)
}

// PaymentDelay compares an actual payment date against invoice date plus
// payment terms. Positive delay means the payment was late.
func PaymentDelay(invoiceDate, paymentDate time.Time, termsDays int) (delayDays int, isLate bool) {
	due := invoiceDate.AddDate(0, 0, termsDays)
	delayDays = DaysBetween(due, paymentDate)
	return delayDays, delayDays > 0
}

// Quarter returns the calendar quarter (1..4) of t.
func Quarter(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// FiscalYear returns the fiscal year of t for a fiscal year starting in
// startMonth (January for calendar years).
func FiscalYear(t time.Time, startMonth time.Month) int {
	if t.Month() >= startMonth {
		return t.Year()
	}
	return t.Year() - 1
}
