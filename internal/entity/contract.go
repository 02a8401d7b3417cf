package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finsight/docingest/constants"
)

// Party is one signatory of a contract.
type Party struct {
	Name           string              `json:"name"`
	Role           constants.PartyRole `json:"role"`
	Address        *string             `json:"address,omitempty"`
	Representative *string             `json:"representative,omitempty"`
}

// Clause is one contractual clause, typed when the source provides a type.
type Clause struct {
	Type        string  `json:"type"` // GENERAL when untyped
	Description string  `json:"description"`
	Value       *string `json:"value,omitempty"`
}

// Contract is a normalized contract record. Same lifecycle as Invoice:
// immutable once emitted, matched by ContractID on re-ingestion.
type Contract struct {
	ContractID        string                 `json:"contract_id"`
	Title             string                 `json:"title"`
	Type              constants.ContractType `json:"type"`
	StartDate         *time.Time             `json:"start_date,omitempty"`
	EndDate           *time.Time             `json:"end_date,omitempty"`
	Parties           []Party                `json:"parties"`
	Amount            *decimal.Decimal       `json:"amount,omitempty"`
	Currency          constants.Currency     `json:"currency"`
	Clauses           []Clause               `json:"clauses"`
	AutoRenew         bool                   `json:"auto_renew"`
	RenewalNoticeDays int                    `json:"renewal_notice_days"`
	PaymentTermsDays  int                    `json:"payment_terms_days"`
	BillingFrequency  *string                `json:"billing_frequency,omitempty"`
	Status            string                 `json:"status"`
	Notes             *string                `json:"notes,omitempty"`
	SourceFile        string                 `json:"source_file"`
}
