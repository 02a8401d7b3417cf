package validate

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/finsight/docingest/internal/entity"
)

// Tolerances. Invoice tax arithmetic tolerates real-world rounding noise;
// budget variance is a pure derived field, so the bound is tighter and a
// mismatch is an error rather than a warning.
const (
	taxTolerance      = 0.1
	varianceTolerance = 0.01
)

// commonVATRates are the European VAT rates we expect; anything else is
// flagged as unusual (warning only).
var commonVATRates = []float64{0.0, 0.055, 0.10, 0.20, 0.21}

// Invoice validates a normalized invoice: required fields, amount signs,
// HT/TTC/rate triangle, tax-rate plausibility, date ordering, line items.
func Invoice(inv entity.Invoice) Result {
	r := NewResult()

	if inv.InvoiceID == "" {
		r.AddError("missing required field: invoice_id")
	} else if len(inv.InvoiceID) < 3 {
		r.AddWarning("invoice ID %q seems too short", inv.InvoiceID)
	}
	if inv.Vendor.Name == "" || inv.Vendor.Name == "UNKNOWN" {
		r.AddError("vendor name is missing")
	}
	if inv.Client.Name == "" {
		r.AddWarning("client name is missing")
	}

	if inv.TotalTTC == nil {
		r.AddError("missing required field: total_ttc")
	} else if inv.TotalTTC.IsNegative() {
		r.AddError("total TTC cannot be negative: %s", inv.TotalTTC)
	} else if inv.TotalTTC.IsZero() {
		r.AddWarning("total TTC is zero")
	}
	if inv.TotalHT != nil && inv.TotalHT.IsNegative() {
		r.AddError("total HT cannot be negative: %s", inv.TotalHT)
	}

	if inv.TotalHT != nil && inv.TaxRate != nil && inv.TotalTTC != nil {
		expected := inv.TotalHT.Mul(decimal.NewFromFloat(1 + *inv.TaxRate)).Round(2)
		diff := expected.Sub(inv.TotalTTC.Round(2)).Abs()
		if diff.GreaterThan(decimal.NewFromFloat(taxTolerance)) {
			r.AddWarning("amount inconsistency: HT=%s * (1+%.4g) should equal %s, but TTC=%s",
				inv.TotalHT, *inv.TaxRate, expected, inv.TotalTTC)
		}
	}

	if inv.TaxRate != nil {
		rate := *inv.TaxRate
		if rate < 0 || rate > 1 {
			r.AddError("tax rate should be between 0 and 1 (got %g)", rate)
		} else if !isCommonVATRate(rate) {
			r.AddWarning("unusual tax rate: %g", rate)
		}
	}

	if inv.Date != nil && inv.DueDate != nil && inv.DueDate.Before(*inv.Date) {
		r.AddError("due date (%s) cannot be before invoice date (%s)",
			inv.DueDate.Format("2006-01-02"), inv.Date.Format("2006-01-02"))
	}

	for i, item := range inv.Items {
		if item.Description == "" {
			r.AddWarning("line item %d missing description", i+1)
		}
		if item.Quantity != nil && *item.Quantity <= 0 {
			r.AddWarning("line item %d has invalid quantity: %g", i+1, *item.Quantity)
		}
		if item.UnitPrice != nil && item.UnitPrice.IsNegative() {
			r.AddWarning("line item %d has negative unit price: %s", i+1, item.UnitPrice)
		}
	}

	return r
}

// Contract validates a normalized contract: required fields, date ordering,
// amount sign, and party coverage.
func Contract(c entity.Contract) Result {
	r := NewResult()

	if c.ContractID == "" {
		r.AddError("missing required field: contract_id")
	}
	if c.Title == "" {
		r.AddError("missing required field: title")
	}
	if c.StartDate == nil {
		r.AddError("missing required field: start_date")
	}

	if c.StartDate != nil && c.EndDate != nil && c.EndDate.Before(*c.StartDate) {
		r.AddError("end date (%s) cannot be before start date (%s)",
			c.EndDate.Format("2006-01-02"), c.StartDate.Format("2006-01-02"))
	}

	if c.Amount != nil {
		if c.Amount.IsNegative() {
			r.AddError("contract amount cannot be negative: %s", c.Amount)
		} else if c.Amount.IsZero() {
			r.AddWarning("contract amount is zero")
		}
	}

	switch {
	case len(c.Parties) == 0:
		r.AddError("contract must have at least one party")
	case len(c.Parties) < 2:
		r.AddWarning("contract typically has at least two parties")
	}
	allUnknown := len(c.Parties) > 0
	for _, p := range c.Parties {
		if p.Role != "UNKNOWN" && p.Role != "" {
			allUnknown = false
		}
	}
	if allUnknown {
		r.AddWarning("no party roles identified")
	}

	return r
}

// Budget validates one budget row. The variance arithmetic check is strict:
// variance is derived with no noise source, so a mismatch beyond 0.01 is an
// error, not a warning.
func Budget(row entity.BudgetRow) Result {
	r := NewResult()

	if row.Department == "" {
		r.AddError("missing required field: department")
	}
	if row.Budget == nil {
		r.AddError("missing required field: budget")
	} else if row.Budget.IsNegative() {
		r.AddError("budget amount cannot be negative: %s", row.Budget)
	}
	if row.Actual != nil && row.Actual.IsNegative() {
		r.AddWarning("actual amount is negative (possible refund?): %s", row.Actual)
	}

	if row.Budget != nil && row.Actual != nil && row.Variance != nil {
		expected := row.Actual.Sub(*row.Budget)
		diff := expected.Sub(*row.Variance).Abs()
		if diff.GreaterThan(decimal.NewFromFloat(varianceTolerance)) {
			r.AddError("variance inconsistency: %s - %s = %s, but variance=%s",
				row.Actual, row.Budget, expected, row.Variance)
		}
	}

	return r
}

func isCommonVATRate(rate float64) bool {
	for _, common := range commonVATRates {
		if math.Abs(rate-common) < 0.001 {
			return true
		}
	}
	return false
}
