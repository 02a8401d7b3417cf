// Package dateparse normalizes date strings from financial documents:
// absolute dates in mixed locales, written months in English and French,
// and relative expressions like quarters and net payment terms.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Practical bounds for calendar years in financial documents.
const (
	MinYear = 1900
	MaxYear = 2100
)

// Parser holds the caller's locale preference and anchors for relative and
// partial dates. The zero value prefers American order with today as anchor;
// most callers want PreferEuropean=true.
type Parser struct {
	PreferEuropean bool
	DefaultYear    int              // year for written dates missing one; 0 = anchor year
	Now            func() time.Time // anchor for relative dates; nil = time.Now
}

// Result carries a parsed date plus how ambiguity was resolved.
// SwappedFields is set when the caller's locale preference produced an
// out-of-range month/day and the two fields were swapped to recover —
// a silent self-correction worth observing in tests and warnings.
type Result struct {
	Date          time.Time
	SwappedFields bool
}

var (
	reISO        = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	reISOSlash   = regexp.MustCompile(`^(\d{4})/(\d{2})/(\d{2})$`)
	reDotted     = regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{4})$`)
	reDottedYY   = regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{2})$`)
	reSlashed    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	reDashed     = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`)
	reDashedYY   = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{2})$`)
	reNumbers    = regexp.MustCompile(`\d+`)
	reWordItself = regexp.MustCompile(`[a-zà-ÿ]+`)
)

// monthNames maps lowercased English and French month names and their
// abbreviations to month numbers. English entries are scanned first.
var monthNames = []struct {
	name  string
	month time.Month
}{
	{"january", time.January}, {"february", time.February}, {"march", time.March},
	{"april", time.April}, {"may", time.May}, {"june", time.June},
	{"july", time.July}, {"august", time.August}, {"september", time.September},
	{"october", time.October}, {"november", time.November}, {"december", time.December},
	{"jan", time.January}, {"feb", time.February}, {"mar", time.March},
	{"apr", time.April}, {"jun", time.June}, {"jul", time.July},
	{"aug", time.August}, {"sep", time.September}, {"oct", time.October},
	{"nov", time.November}, {"dec", time.December},
	{"janvier", time.January}, {"février", time.February}, {"mars", time.March},
	{"avril", time.April}, {"mai", time.May}, {"juin", time.June},
	{"juillet", time.July}, {"août", time.August}, {"septembre", time.September},
	{"octobre", time.October}, {"novembre", time.November}, {"décembre", time.December},
	{"janv", time.January}, {"févr", time.February}, {"avr", time.April},
	{"juil", time.July}, {"sept", time.September}, {"déc", time.December},
}

func (p Parser) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Parse attempts the format categories in fixed order (ISO, dotted, slashed
// ambiguous, dashed, written month) and returns the first hit. It never
// panics; ok=false means no category matched.
func (p Parser) Parse(text string) (Result, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, false
	}

	// ISO first: unambiguous.
	for _, re := range []*regexp.Regexp{reISO, reISOSlash} {
		if m := re.FindStringSubmatch(text); m != nil {
			if d, ok := makeDate(atoi(m[1]), atoi(m[2]), atoi(m[3])); ok {
				return Result{Date: d}, true
			}
			return Result{}, false
		}
	}

	// Dotted: European convention.
	if m := reDotted.FindStringSubmatch(text); m != nil {
		if d, ok := makeDate(atoi(m[3]), atoi(m[2]), atoi(m[1])); ok {
			return Result{Date: d}, true
		}
		return Result{}, false
	}
	if m := reDottedYY.FindStringSubmatch(text); m != nil {
		if d, ok := makeDate(expandYY(atoi(m[3])), atoi(m[2]), atoi(m[1])); ok {
			return Result{Date: d}, true
		}
		return Result{}, false
	}

	// Slashed: ambiguous DD/MM vs MM/DD, resolved by preference with a
	// field-swap recovery when the preferred reading is out of range.
	if m := reSlashed.FindStringSubmatch(text); m != nil {
		return p.resolveSlashed(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}

	// Dashed: European convention.
	if m := reDashed.FindStringSubmatch(text); m != nil {
		if d, ok := makeDate(atoi(m[3]), atoi(m[2]), atoi(m[1])); ok {
			return Result{Date: d}, true
		}
		return Result{}, false
	}
	if m := reDashedYY.FindStringSubmatch(text); m != nil {
		if d, ok := makeDate(expandYY(atoi(m[3])), atoi(m[2]), atoi(m[1])); ok {
			return Result{Date: d}, true
		}
		return Result{}, false
	}

	return p.parseWrittenMonth(text)
}

// ParseDate is the plain entry point matching the historical contract:
// a date or nothing, with the swap resolved silently.
func (p Parser) ParseDate(text string) (time.Time, bool) {
	r, ok := p.Parse(text)
	return r.Date, ok
}

func (p Parser) resolveSlashed(a, b, year int) (Result, bool) {
	day, month := a, b
	if !p.PreferEuropean {
		day, month = b, a
	}
	if d, ok := makeDate(year, month, day); ok {
		return Result{Date: d}, true
	}
	// Recovery: swap the two fields. Valid output even when the caller's
	// locale preference was wrong; flagged so callers can observe it.
	if d, ok := makeDate(year, day, month); ok {
		return Result{Date: d, SwappedFields: true}, true
	}
	return Result{}, false
}

// parseWrittenMonth scans for a known month-name substring and extracts the
// remaining numeric groups: first number under 4 digits is the day, the
// first 4-digit number is the year. A 2-digit trailing year is expanded.
func (p Parser) parseWrittenMonth(text string) (Result, bool) {
	lower := strings.ToLower(text)
	words := reWordItself.FindAllString(lower, -1)

	var month time.Month
	found := false
	for _, entry := range monthNames {
		for _, w := range words {
			if w == entry.name {
				month = entry.month
				found = true
				break
			}
		}
		if found {
			break
		}
	}
	if !found {
		return Result{}, false
	}

	day, year := 0, 0
	for _, num := range reNumbers.FindAllString(lower, -1) {
		if len(num) == 4 && year == 0 {
			year = atoi(num)
		} else if day == 0 {
			day = atoi(num)
		} else if year == 0 {
			year = expandYY(atoi(num))
		}
	}
	if year == 0 {
		year = p.DefaultYear
		if year == 0 {
			year = p.now().Year()
		}
	}
	if d, ok := makeDate(year, int(month), day); ok {
		return Result{Date: d}, true
	}
	return Result{}, false
}

// makeDate validates year/month/day against calendar bounds and returns
// midnight UTC.
func makeDate(year, month, day int) (time.Time, bool) {
	if year < MinYear || year > MaxYear || month < 1 || month > 12 {
		return time.Time{}, false
	}
	if day < 1 || day > daysIn(year, time.Month(month)) {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func expandYY(yy int) int {
	if yy >= 69 {
		return 1900 + yy
	}
	return 2000 + yy
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
