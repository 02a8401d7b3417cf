package constants

import "strings"

// Currency is an ISO 4217 code for the currencies we recognize.
type Currency string

const (
	EUR     Currency = "EUR"
	USD     Currency = "USD"
	GBP     Currency = "GBP"
	JPY     Currency = "JPY"
	CHF     Currency = "CHF"
	CAD     Currency = "CAD"
	AUD     Currency = "AUD"
	CNY     Currency = "CNY"
	Unknown Currency = "UNKNOWN"
)

// CurrencySymbols maps currency symbols to ISO codes. Symbol matches take
// precedence over code matches during detection.
var CurrencySymbols = map[string]Currency{
	"€":  EUR,
	"$":  USD,
	"£":  GBP,
	"¥":  JPY,
	"Fr": CHF,
}

// CurrencyCodes lists the ISO codes scanned for in raw text, in match order.
var CurrencyCodes = []Currency{EUR, USD, GBP, JPY, CHF, CAD, AUD, CNY}

// CanonicalizeCurrency maps a free-form currency string to a known code.
func CanonicalizeCurrency(input string) (Currency, bool) {
	if input == "" {
		return Unknown, false
	}
	normalized := strings.ToUpper(strings.TrimSpace(input))
	for _, code := range CurrencyCodes {
		if normalized == string(code) {
			return code, true
		}
	}
	if code, ok := CurrencySymbols[strings.TrimSpace(input)]; ok {
		return code, true
	}
	return Unknown, false
}
