package extract

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finsight/docingest/internal/amount"
	"github.com/finsight/docingest/internal/entity"
)

// Column-purpose keywords, four independent groups.
var (
	descKeywords  = []string{"description", "designation", "item", "article"}
	qtyKeywords   = []string{"quantity", "qty", "quantité", "qté"}
	priceKeywords = []string{"unit price", "price", "prix unitaire", "pu"}
	totalKeywords = []string{"total", "amount", "montant"}
)

// LineItemsFromTables scans each table's header row for column-purpose
// keywords and converts the data rows into line items. Total is computed as
// quantity*unit_price when absent and both factors are present. Rows without
// a description are dropped.
func LineItemsFromTables(tables [][][]string) []entity.LineItem {
	var items []entity.LineItem

	for _, table := range tables {
		if len(table) < 2 { // need header + at least one row
			continue
		}
		header := make([]string, len(table[0]))
		for i, h := range table[0] {
			header[i] = strings.ToLower(h)
		}

		descCol := findColumn(header, descKeywords)
		qtyCol := findColumn(header, qtyKeywords)
		priceCol := findColumn(header, priceKeywords)
		totalCol := findColumn(header, totalKeywords)

		for _, row := range table[1:] {
			if rowBlank(row) {
				continue
			}
			item := entity.LineItem{}

			if descCol >= 0 && descCol < len(row) {
				item.Description = strings.TrimSpace(row[descCol])
			}
			if qtyCol >= 0 && qtyCol < len(row) {
				if q, err := amount.Parse(row[qtyCol]); err == nil {
					f, _ := q.Float64()
					item.Quantity = &f
				}
			}
			if priceCol >= 0 && priceCol < len(row) {
				if p, err := amount.Parse(row[priceCol]); err == nil {
					item.UnitPrice = &p
				}
			}
			if totalCol >= 0 && totalCol < len(row) {
				if t, err := amount.Parse(row[totalCol]); err == nil {
					item.Total = &t
				}
			}

			if item.Total == nil && item.Quantity != nil && item.UnitPrice != nil {
				t := item.UnitPrice.Mul(decimal.NewFromFloat(*item.Quantity)).Round(2)
				item.Total = &t
			}

			if item.Description != "" {
				items = append(items, item)
			}
		}
	}
	return items
}

func findColumn(header []string, keywords []string) int {
	for i, cell := range header {
		for _, kw := range keywords {
			if strings.Contains(cell, kw) {
				return i
			}
		}
	}
	return -1
}

func rowBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
