// Package reader loads raw document content from the supported source
// formats (XLSX workbooks, PDF text, JSON exports) into the neutral shapes
// the extraction and tabular packages consume.
package reader

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/finsight/docingest/internal/tabular"
)

// preferredBudgetSheet is picked over the active sheet when present,
// matched case-insensitively.
const preferredBudgetSheet = "Budget"

// ReadWorkbook opens an XLSX file and returns the grid of the budget sheet
// (or the active sheet when no sheet is named "Budget"), with merged-cell
// ranges attached so the caller can expand them.
func ReadWorkbook(path string, logger *slog.Logger) (tabular.Grid, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return tabular.Grid{}, fmt.Errorf("open workbook %s: %w", filepath.Base(path), err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logger.Warn("reader.xlsx.close_failed", "path", path, "error", cerr)
		}
	}()

	sheet := pickSheet(f)
	if sheet == "" {
		return tabular.Grid{}, fmt.Errorf("workbook %s has no sheets", filepath.Base(path))
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return tabular.Grid{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	padRows(rows)

	merges, err := readMerges(f, sheet)
	if err != nil {
		return tabular.Grid{}, fmt.Errorf("read merges of %q: %w", sheet, err)
	}

	logger.Debug("reader.xlsx.ok", "path", path, "sheet", sheet, "rows", len(rows), "merges", len(merges))
	return tabular.Grid{
		Rows:   rows,
		Merges: merges,
		Sheet:  sheet,
		Source: path,
	}, nil
}

// pickSheet prefers a sheet named "Budget" (any casing), falling back to
// the workbook's active sheet.
func pickSheet(f *excelize.File) string {
	for _, name := range f.GetSheetList() {
		if strings.EqualFold(name, preferredBudgetSheet) {
			return name
		}
	}
	return f.GetSheetName(f.GetActiveSheetIndex())
}

// padRows right-pads every row to the widest row's length so column
// indices stay valid across ragged rows.
func padRows(rows [][]string) {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for i, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row
	}
}

func readMerges(f *excelize.File, sheet string) ([]tabular.MergeRange, error) {
	cells, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, err
	}
	merges := make([]tabular.MergeRange, 0, len(cells))
	for _, mc := range cells {
		startCol, startRow, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			return nil, fmt.Errorf("merge start %q: %w", mc.GetStartAxis(), err)
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			return nil, fmt.Errorf("merge end %q: %w", mc.GetEndAxis(), err)
		}
		merges = append(merges, tabular.MergeRange{
			StartRow: startRow - 1,
			StartCol: startCol - 1,
			EndRow:   endRow - 1,
			EndCol:   endCol - 1,
		})
	}
	return merges, nil
}
