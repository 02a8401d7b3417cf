// Package amount parses and normalizes monetary strings from messy financial
// documents: mixed European/American separators, embedded currency symbols,
// tax-rate fragments, and HT/TTC derivation.
package amount

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finsight/docingest/constants"
	"github.com/finsight/docingest/internal/entity"
)

// symbolOrder fixes the symbol scan order; first match wins.
var symbolOrder = []string{"€", "$", "£", "¥", "Fr"}

var (
	reNonNumeric = regexp.MustCompile(`[^\d.,-]`)
	reDigit      = regexp.MustCompile(`\d`)
	reTaxRate    = regexp.MustCompile(`(\d+\.?\d*)\s*%`)
)

// ParseError reports input from which no monetary value could be recovered.
// It is the only failure the amount parser surfaces.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("amount: cannot parse %q", e.Input)
}

// Parse converts a messy amount string into a decimal rounded to 2 places.
//
// Separator handling: when both '.' and ',' are present, whichever occurs
// last is the decimal separator and the other is dropped as a thousands
// separator. A lone comma followed by exactly 2 digits is decimal, by
// exactly 3 digits is thousands, otherwise decimal. Accounting cents are
// 2 digits in every locale we have seen, so a genuine 3-digit comma decimal
// is misread; assumption carried over from the source data.
func Parse(text string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(text)
	for _, sym := range symbolOrder {
		cleaned = strings.ReplaceAll(cleaned, sym, "")
	}
	for _, code := range constants.CurrencyCodes {
		cleaned = strings.ReplaceAll(cleaned, string(code), "")
	}
	cleaned = reNonNumeric.ReplaceAllString(strings.TrimSpace(cleaned), "")

	if !reDigit.MatchString(cleaned) {
		return decimal.Zero, &ParseError{Input: text}
	}

	cleaned = resolveSeparators(cleaned)

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, &ParseError{Input: text}
	}
	return d.Round(2), nil
}

// ParseWithCurrency couples Parse with currency detection over the same
// text, so "1.250,50 €" yields both the value and EUR in one step.
func ParseWithCurrency(text string) (entity.ParsedAmount, error) {
	v, err := Parse(text)
	if err != nil {
		return entity.ParsedAmount{}, err
	}
	return entity.ParsedAmount{Value: v, Currency: DetectCurrency(text)}, nil
}

func resolveSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastDot > lastComma {
			// American: 1,250.50
			return strings.ReplaceAll(s, ",", "")
		}
		// European: 1.250,50
		s = strings.ReplaceAll(s, ".", "")
		return strings.ReplaceAll(s, ",", ".")
	case lastComma >= 0:
		parts := strings.Split(s, ",")
		if len(parts) == 2 && len(parts[1]) == 2 {
			return strings.ReplaceAll(s, ",", ".")
		}
		if len(parts) == 2 && len(parts[1]) == 3 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.ReplaceAll(s, ",", ".")
	default:
		return s
	}
}

// DetectCurrency finds the currency mentioned in text: first symbol match
// wins, then first ISO code substring, else EUR (European default).
// Empty input yields Unknown.
func DetectCurrency(text string) constants.Currency {
	if text == "" {
		return constants.Unknown
	}
	for _, sym := range symbolOrder {
		if strings.Contains(text, sym) {
			return constants.CurrencySymbols[sym]
		}
	}
	upper := strings.ToUpper(text)
	for _, code := range constants.CurrencyCodes {
		if strings.Contains(upper, string(code)) {
			return code
		}
	}
	return constants.EUR
}

// ParseTaxRate extracts the first NN(.N)?% fragment as a decimal rate
// rounded to 4 places ("TVA 20%" -> 0.20).
func ParseTaxRate(text string) (float64, bool) {
	m := reTaxRate.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return math.Round(v/100*10000) / 10000, true
}

// TotalWithTax derives TTC from HT and a decimal tax rate.
func TotalWithTax(ht decimal.Decimal, rate float64) decimal.Decimal {
	return ht.Mul(decimal.NewFromFloat(1 + rate)).Round(2)
}

// WithoutTax derives HT from TTC and a decimal tax rate.
func WithoutTax(ttc decimal.Decimal, rate float64) decimal.Decimal {
	return ttc.Div(decimal.NewFromFloat(1 + rate)).Round(2)
}
