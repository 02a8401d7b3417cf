package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finsight/docingest/constants"
)

// Vendor is the issuing party of an invoice.
type Vendor struct {
	Name      string  `json:"name"`
	Address   *string `json:"address,omitempty"`
	SIRET     *string `json:"siret,omitempty"`      // French 14-digit registration
	VATNumber *string `json:"vat_number,omitempty"` // e.g. FR12345678901
}

// Client is the billed party of an invoice.
type Client struct {
	Name    string  `json:"name"`
	Address *string `json:"address,omitempty"`
}

// LineItem is one row of an invoice's item table.
type LineItem struct {
	Description string           `json:"description"`
	Quantity    *float64         `json:"quantity,omitempty"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	Total       *decimal.Decimal `json:"total,omitempty"`
}

// Invoice is a normalized invoice record. It is immutable once emitted;
// re-ingestion produces a new record matched by InvoiceID downstream.
type Invoice struct {
	InvoiceID    string                  `json:"invoice_id"`
	Date         *time.Time              `json:"date,omitempty"`
	DueDate      *time.Time              `json:"due_date,omitempty"`
	Vendor       Vendor                  `json:"vendor"`
	Client       Client                  `json:"client"`
	Items        []LineItem              `json:"items"`
	TotalHT      *decimal.Decimal        `json:"total_ht,omitempty"`
	TaxRate      *float64                `json:"tax_rate,omitempty"`
	TaxAmount    *decimal.Decimal        `json:"tax_amount,omitempty"`
	TotalTTC     *decimal.Decimal        `json:"total_ttc,omitempty"`
	Currency     constants.Currency      `json:"currency"`
	Status       constants.InvoiceStatus `json:"status"`
	PaymentTerms *string                 `json:"payment_terms,omitempty"`
	Reference    *string                 `json:"reference,omitempty"`
	Notes        *string                 `json:"notes,omitempty"`
	SourceFile   string                  `json:"source_file"`
	RawText      string                  `json:"raw_text,omitempty"` // first 500 chars, for reference
}
