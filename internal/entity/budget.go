package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetRow is one schema-mapped row of a budget spreadsheet, produced after
// merged-cell expansion. Variance must equal Actual-Budget within 0.01.
type BudgetRow struct {
	Department      string           `json:"department"`
	Category        string           `json:"category,omitempty"`
	Budget          *decimal.Decimal `json:"budget,omitempty"`
	Actual          *decimal.Decimal `json:"actual,omitempty"`
	Forecast        *decimal.Decimal `json:"forecast,omitempty"`
	Variance        *decimal.Decimal `json:"variance,omitempty"`
	VariancePercent *decimal.Decimal `json:"variance_percent,omitempty"`
	Period          *time.Time       `json:"period,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	SourceFile      string           `json:"source_file"`
	Sheet           string           `json:"sheet,omitempty"`
}

// BudgetSummary aggregates a batch of budget rows.
type BudgetSummary struct {
	TotalBudget          decimal.Decimal            `json:"total_budget"`
	TotalActual          decimal.Decimal            `json:"total_actual"`
	TotalVariance        decimal.Decimal            `json:"total_variance"`
	TotalVariancePercent *decimal.Decimal           `json:"total_variance_percent,omitempty"`
	ByDepartment         map[string]decimal.Decimal `json:"by_department,omitempty"`
	ByCategory           map[string]decimal.Decimal `json:"by_category,omitempty"`
	OverrunsByDepartment map[string]decimal.Decimal `json:"overruns_by_department,omitempty"`
	NumItems             int                        `json:"num_items"`
}
