package entity

import (
	"github.com/shopspring/decimal"

	"github.com/finsight/docingest/constants"
)

// ParsedAmount is a monetary value normalized to two decimal places plus
// the currency detected alongside it.
type ParsedAmount struct {
	Value    decimal.Decimal    `json:"value"`
	Currency constants.Currency `json:"currency"`
}

// TaxBreakdown carries the HT/TTC/rate/tax-amount quartet extracted from a
// document. Any field may be absent; the extractor derives a missing field
// when the other two of the triangle are known.
type TaxBreakdown struct {
	AmountHT  *decimal.Decimal   `json:"amount_ht,omitempty"`
	AmountTTC *decimal.Decimal   `json:"amount_ttc,omitempty"`
	TaxRate   *float64           `json:"tax_rate,omitempty"`
	TaxAmount *decimal.Decimal   `json:"tax_amount,omitempty"`
	Currency  constants.Currency `json:"currency"`
}
