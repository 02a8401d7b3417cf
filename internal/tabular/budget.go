package tabular

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finsight/docingest/internal/amount"
	"github.com/finsight/docingest/internal/dateparse"
	"github.com/finsight/docingest/internal/entity"
)

// ParseResult is a parsed budget sheet: the mapped rows plus the structural
// read and any recoverable ambiguities encountered on the way.
type ParseResult struct {
	Rows      []entity.BudgetRow
	Detection Detection
	Warnings  []string
}

// ParseBudget converts a grid into budget rows: expand merges, detect the
// header, map columns, normalize amounts and periods, and derive variance
// when budget and actual are present but variance is not. Missing headers
// or columns degrade to partial rows plus warnings, never an error.
func ParseBudget(g Grid, dates dateparse.Parser) ParseResult {
	ExpandMerges(&g)

	res := ParseResult{Detection: DetectStructure(g)}
	if res.Detection.HeaderAssumed {
		res.Warnings = append(res.Warnings, "no header row detected, assuming row 0")
	}

	deptCol := res.Detection.CanonicalIndex("department")
	catCol := res.Detection.CanonicalIndex("category")
	budgetCol := res.Detection.CanonicalIndex("budget")
	actualCol := res.Detection.CanonicalIndex("actual")
	forecastCol := res.Detection.CanonicalIndex("forecast")
	varianceCol := res.Detection.CanonicalIndex("variance")
	periodCol := res.Detection.CanonicalIndex("period")
	notesCol := res.Detection.CanonicalIndex("notes")

	if deptCol < 0 {
		res.Warnings = append(res.Warnings, "no department column detected")
	}
	if budgetCol < 0 {
		res.Warnings = append(res.Warnings, "no budget column detected")
	}

	for i := res.Detection.HeaderRow + 1; i < len(g.Rows); i++ {
		row := g.Rows[i]
		if rowEmpty(row) {
			continue
		}

		br := entity.BudgetRow{
			Department: cellAt(row, deptCol),
			Category:   cellAt(row, catCol),
			Notes:      cellAt(row, notesCol),
			SourceFile: g.Source,
			Sheet:      g.Sheet,
		}
		br.Budget = parseCellAmount(row, budgetCol, i, &res)
		br.Actual = parseCellAmount(row, actualCol, i, &res)
		br.Forecast = parseCellAmount(row, forecastCol, i, &res)
		br.Variance = parseCellAmount(row, varianceCol, i, &res)

		if raw := cellAt(row, periodCol); raw != "" {
			if d, ok := dates.ParseDate(raw); ok {
				br.Period = &d
			} else if d, ok := dates.ParseRelative(raw); ok {
				br.Period = &d
			} else {
				res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: unparseable period %q", i, raw))
			}
		}

		if br.Variance == nil && br.Budget != nil && br.Actual != nil {
			v := br.Actual.Sub(*br.Budget).Round(2)
			br.Variance = &v
			if !br.Budget.IsZero() {
				pct := v.Div(*br.Budget).Mul(decimal.NewFromInt(100)).Round(2)
				br.VariancePercent = &pct
			}
		}

		res.Rows = append(res.Rows, br)
	}
	return res
}

// Summarize rolls a batch of budget rows up into totals and per-department
// and per-category breakdowns, including overruns (positive variance).
func Summarize(rows []entity.BudgetRow) entity.BudgetSummary {
	sum := entity.BudgetSummary{
		ByDepartment:         map[string]decimal.Decimal{},
		ByCategory:           map[string]decimal.Decimal{},
		OverrunsByDepartment: map[string]decimal.Decimal{},
		NumItems:             len(rows),
	}
	for _, r := range rows {
		if r.Budget != nil {
			sum.TotalBudget = sum.TotalBudget.Add(*r.Budget)
			if r.Department != "" {
				sum.ByDepartment[r.Department] = sum.ByDepartment[r.Department].Add(*r.Budget)
			}
			if r.Category != "" {
				sum.ByCategory[r.Category] = sum.ByCategory[r.Category].Add(*r.Budget)
			}
		}
		if r.Actual != nil {
			sum.TotalActual = sum.TotalActual.Add(*r.Actual)
		}
		if r.Variance != nil {
			sum.TotalVariance = sum.TotalVariance.Add(*r.Variance)
			if r.Department != "" && r.Variance.IsPositive() {
				sum.OverrunsByDepartment[r.Department] = sum.OverrunsByDepartment[r.Department].Add(*r.Variance)
			}
		}
	}
	if !sum.TotalBudget.IsZero() {
		pct := sum.TotalVariance.Div(sum.TotalBudget).Mul(decimal.NewFromInt(100)).Round(2)
		sum.TotalVariancePercent = &pct
	}
	return sum
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func parseCellAmount(row []string, col, rowIdx int, res *ParseResult) *decimal.Decimal {
	raw := cellAt(row, col)
	if raw == "" {
		return nil
	}
	v, err := amount.Parse(raw)
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: unparseable amount %q", rowIdx, raw))
		return nil
	}
	return &v
}

func rowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
