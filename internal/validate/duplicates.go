package validate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finsight/docingest/internal/entity"
)

// DuplicateThreshold is the default combined similarity at or above which
// two records are reported as likely duplicates.
const DuplicateThreshold = 0.95

// Fingerprint is the comparable identity of a record for duplicate
// detection: a counterparty name, an amount, and a date.
type Fingerprint struct {
	Key    string
	Name   string
	Amount *decimal.Decimal
	Date   *time.Time
}

// InvoiceFingerprint builds a fingerprint from the vendor, total TTC and
// invoice date.
func InvoiceFingerprint(inv entity.Invoice) Fingerprint {
	return Fingerprint{
		Key:    inv.InvoiceID,
		Name:   inv.Vendor.Name,
		Amount: inv.TotalTTC,
		Date:   inv.Date,
	}
}

// ContractFingerprint builds a fingerprint from the first party, the
// contract amount and the start date.
func ContractFingerprint(c entity.Contract) Fingerprint {
	fp := Fingerprint{
		Key:    c.ContractID,
		Amount: c.Amount,
		Date:   c.StartDate,
	}
	if len(c.Parties) > 0 {
		fp.Name = c.Parties[0].Name
	}
	return fp
}

// Duplicate is a pair of records whose fingerprints match above the
// threshold.
type Duplicate struct {
	KeyA       string
	KeyB       string
	Similarity float64
}

// DetectDuplicates compares every pair of fingerprints and returns those
// scoring at or above the threshold (DuplicateThreshold when <= 0). The
// score weighs name likeness, amount closeness and exact date equality
// equally.
func DetectDuplicates(fps []Fingerprint, threshold float64) []Duplicate {
	if threshold <= 0 {
		threshold = DuplicateThreshold
	}
	var dups []Duplicate
	for i := 0; i < len(fps); i++ {
		for j := i + 1; j < len(fps); j++ {
			score := fingerprintSimilarity(fps[i], fps[j])
			if score >= threshold {
				dups = append(dups, Duplicate{
					KeyA:       fps[i].Key,
					KeyB:       fps[j].Key,
					Similarity: score,
				})
			}
		}
	}
	return dups
}

func fingerprintSimilarity(a, b Fingerprint) float64 {
	var score float64
	var parts int

	score += similarity(a.Name, b.Name)
	parts++

	if a.Amount != nil && b.Amount != nil {
		score += amountCloseness(*a.Amount, *b.Amount)
		parts++
	}
	if a.Date != nil && b.Date != nil {
		if a.Date.Equal(*b.Date) {
			score += 1.0
		}
		parts++
	}

	return score / float64(parts)
}

// amountCloseness is min/max when the ratio exceeds 0.99, else 0: amounts
// either match to within a percent or they are different transactions.
func amountCloseness(a, b decimal.Decimal) float64 {
	if a.Equal(b) {
		return 1.0
	}
	if a.IsZero() || b.IsZero() || a.Sign() != b.Sign() {
		return 0.0
	}
	lo, hi := a.Abs(), b.Abs()
	if lo.GreaterThan(hi) {
		lo, hi = hi, lo
	}
	ratio, _ := lo.Div(hi).Float64()
	if ratio > 0.99 {
		return ratio
	}
	return 0.0
}
