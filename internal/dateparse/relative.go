package dateparse

import (
	"regexp"
	"strings"
	"time"
)

var (
	reQuarter = regexp.MustCompile(`q([1-4])\s*(\d{4})`)
	reHalf    = regexp.MustCompile(`h([12])\s*(\d{4})`)
	reNetDays = regexp.MustCompile(`(?:net\s*)?(\d+)\s*(?:days?|jours?)?(?:\s*net)?`)
)

// ParseRelative resolves relative date expressions against the parser's
// anchor: quarters and half-years to their last calendar day, net payment
// terms to anchor+N days, and end-of-month/year phrases.
func (p Parser) ParseRelative(text string) (time.Time, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return time.Time{}, false
	}

	if m := reQuarter.FindStringSubmatch(lower); m != nil {
		quarter := atoi(m[1])
		year := atoi(m[2])
		endMonth := time.Month(quarter * 3)
		return time.Date(year, endMonth, daysIn(year, endMonth), 0, 0, 0, 0, time.UTC), true
	}

	if m := reHalf.FindStringSubmatch(lower); m != nil {
		year := atoi(m[2])
		if m[1] == "1" {
			return time.Date(year, time.June, 30, 0, 0, 0, 0, time.UTC), true
		}
		return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC), true
	}

	// Net payment terms ("net 30", "30 days", "45 jours").
	if strings.Contains(lower, "net") || strings.Contains(lower, "day") || strings.Contains(lower, "jour") {
		if m := reNetDays.FindStringSubmatch(lower); m != nil {
			return p.now().AddDate(0, 0, atoi(m[1])), true
		}
	}

	if strings.Contains(lower, "end of month") || strings.Contains(lower, "fin de mois") || strings.Contains(lower, "eom") {
		now := p.now()
		return time.Date(now.Year(), now.Month(), daysIn(now.Year(), now.Month()), 0, 0, 0, 0, time.UTC), true
	}
	if strings.Contains(lower, "end of year") || strings.Contains(lower, "fin d'année") || strings.Contains(lower, "eoy") {
		return time.Date(p.now().Year(), time.December, 31, 0, 0, 0, 0, time.UTC), true
	}

	return time.Time{}, false
}
