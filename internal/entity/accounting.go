package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountingEntry is a normalized ledger entry from a JSON document.
type AccountingEntry struct {
	EntryID     string          `json:"entry_id"`
	Date        *time.Time      `json:"date,omitempty"`
	Description string          `json:"description"`
	AccountCode *string         `json:"account_code,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Category    *string         `json:"category,omitempty"`
	Reference   *string         `json:"reference,omitempty"`
	Notes       *string         `json:"notes,omitempty"`
	SourceFile  string          `json:"source_file"`
}
