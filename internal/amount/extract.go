package amount

import (
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/finsight/docingest/internal/entity"
)

// Ordered pattern tables: most specific first, first match wins.
var (
	htPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:montant\s+)?HT\s*:?\s*([\d.,\s€$£]+)`),
		regexp.MustCompile(`(?i)(?:total\s+)?HT\s*:?\s*([\d.,\s€$£]+)`),
		regexp.MustCompile(`(?i)net\s*:?\s*([\d.,\s€$£]+)`),
	}
	ttcPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:montant\s+)?TTC\s*:?\s*([\d.,\s€$£]+)`),
		regexp.MustCompile(`(?i)(?:total\s+)?TTC\s*:?\s*([\d.,\s€$£]+)`),
		regexp.MustCompile(`(?i)total\s*:?\s*([\d.,\s€$£]+)`),
		regexp.MustCompile(`(?i)amount\s*due\s*:?\s*([\d.,\s€$£]+)`),
	}
	taxAmountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:montant\s+)?TVA\s*:?\s*([\d.,\s€$£]+)`),
		regexp.MustCompile(`(?i)(?:montant\s+)?VAT\s*:?\s*([\d.,\s€$£]+)`),
		regexp.MustCompile(`(?i)tax\s*amount\s*:?\s*([\d.,\s€$£]+)`),
	}
)

func firstAmount(patterns []*regexp.Regexp, text string) *decimal.Decimal {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if v, err := Parse(m[1]); err == nil {
				return &v
			}
		}
	}
	return nil
}

// ExtractFromText pulls the HT/TTC/rate/tax-amount quartet out of free text
// and completes the triangle when exactly one leg is missing: TTC from
// HT+rate, HT from TTC+rate, and tax amount as TTC-HT.
func ExtractFromText(text string) entity.TaxBreakdown {
	bd := entity.TaxBreakdown{Currency: DetectCurrency(text)}

	if rate, ok := ParseTaxRate(text); ok {
		bd.TaxRate = &rate
	}
	bd.AmountHT = firstAmount(htPatterns, text)
	bd.AmountTTC = firstAmount(ttcPatterns, text)
	bd.TaxAmount = firstAmount(taxAmountPatterns, text)

	if bd.AmountHT != nil && bd.TaxRate != nil && bd.AmountTTC == nil {
		ttc := TotalWithTax(*bd.AmountHT, *bd.TaxRate)
		bd.AmountTTC = &ttc
	}
	if bd.AmountTTC != nil && bd.TaxRate != nil && bd.AmountHT == nil {
		ht := WithoutTax(*bd.AmountTTC, *bd.TaxRate)
		bd.AmountHT = &ht
	}
	if bd.AmountHT != nil && bd.AmountTTC != nil && bd.TaxAmount == nil {
		tax := bd.AmountTTC.Sub(*bd.AmountHT).Round(2)
		bd.TaxAmount = &tax
	}
	return bd
}
