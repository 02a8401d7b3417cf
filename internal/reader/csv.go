package reader

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/finsight/docingest/internal/tabular"
)

// ReadCSV loads a CSV file into a grid. Ragged rows are tolerated and
// right-padded; CSV has no merged cells so the merge list is always empty.
func ReadCSV(path string) (tabular.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return tabular.Grid{}, fmt.Errorf("open csv %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return tabular.Grid{}, fmt.Errorf("read csv %s: %w", filepath.Base(path), err)
	}
	padRows(rows)

	return tabular.Grid{
		Rows:   rows,
		Source: path,
	}, nil
}
