package amount

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finsight/docingest/constants"
)

// FormatFrench renders an amount in French convention: "1 250,50 €".
func FormatFrench(v decimal.Decimal, currency constants.Currency) string {
	grouped := groupThousands(v, " ")
	grouped = strings.Replace(grouped, ".", ",", 1)

	symbol := string(currency)
	switch currency {
	case constants.EUR:
		symbol = "€"
	case constants.USD:
		symbol = "$"
	case constants.GBP:
		symbol = "£"
	}
	return grouped + " " + symbol
}

// FormatEnglish renders an amount in English convention: "$1,250.50".
func FormatEnglish(v decimal.Decimal, currency constants.Currency) string {
	grouped := groupThousands(v, ",")
	switch currency {
	case constants.EUR:
		return "€" + grouped
	case constants.USD:
		return "$" + grouped
	case constants.GBP:
		return "£" + grouped
	default:
		return grouped + " " + string(currency)
	}
}

func groupThousands(v decimal.Decimal, sep string) string {
	s := v.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(sep)
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
