// Package tabular converts raw spreadsheet grids (with merge-range metadata)
// into schema-mapped budget records: merge expansion, header detection,
// column normalization, and value-level cleanup.
package tabular

import (
	"regexp"
	"strings"
)

// Grid is a decoded spreadsheet: rows of cell text plus the merge ranges the
// reader observed. Producers (excelize, csv) pad rows to a uniform width.
type Grid struct {
	Rows   [][]string
	Merges []MergeRange
	Sheet  string
	Source string
}

// MergeRange is an inclusive, 0-based rectangle of merged cells.
type MergeRange struct {
	StartRow, StartCol int
	EndRow, EndCol     int
}

// Column describes one raw column after normalization and schema mapping.
// Canonical is empty for columns that map to no standard field; they are
// dropped from the canonical view but stay in the raw grid.
type Column struct {
	Index      int
	Raw        string
	Normalized string
	Canonical  string
}

// Detection is the structural read of a grid: where the header row is and
// how its columns map onto the canonical budget schema.
type Detection struct {
	HeaderRow     int
	HeaderAssumed bool // no row scored >=2 keyword hits; row 0 used as fallback
	Columns       []Column
}

const headerScanRows = 10

// headerKeywords score candidate header rows (English and French).
var headerKeywords = []string{
	"department", "département", "departement", "service",
	"budget", "actual", "reel", "réel",
	"category", "categorie", "catégorie",
	"amount", "montant", "total",
	"period", "periode", "période", "date",
}

// schemaPatterns maps canonical fields to the keywords a normalized column
// name may contain. Evaluated in order; first matching field wins per column.
var schemaPatterns = []struct {
	canonical string
	keywords  []string
}{
	{"department", []string{"department", "département", "departement", "service", "dept"}},
	{"category", []string{"category", "categorie", "catégorie", "type", "poste"}},
	{"budget", []string{"budget", "budgeted", "budgete", "budgété", "planned", "prévu", "prevu"}},
	{"actual", []string{"actual", "reel", "réel", "spent", "dépensé", "depense"}},
	{"forecast", []string{"forecast", "prévision", "prevision", "estimated", "estimé", "estime"}},
	{"variance", []string{"variance", "écart", "ecart", "difference", "différence"}},
	{"period", []string{"period", "période", "periode", "month", "mois", "date", "quarter", "trimestre"}},
	{"notes", []string{"notes", "comments", "commentaires", "remarks"}},
}

var (
	reNonWord    = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	reWhitespace = regexp.MustCompile(`\s+`)
)

// ExpandMerges copies each merge range's top-left value into every cell of
// the range, so the grid can be treated as flat: no cell is empty purely
// because it was merged. Ranges beyond the grid bounds are clipped.
func ExpandMerges(g *Grid) {
	for _, m := range g.Merges {
		if m.StartRow >= len(g.Rows) {
			continue
		}
		value := ""
		if m.StartCol < len(g.Rows[m.StartRow]) {
			value = g.Rows[m.StartRow][m.StartCol]
		}
		for r := m.StartRow; r <= m.EndRow && r < len(g.Rows); r++ {
			for c := m.StartCol; c <= m.EndCol && c < len(g.Rows[r]); c++ {
				g.Rows[r][c] = value
			}
		}
	}
}

// DetectStructure locates the header row in the first 10 rows and maps its
// columns to the canonical schema. Headers are never a hard failure: when
// no row scores >=2 keyword hits, row 0 is assumed and flagged.
func DetectStructure(g Grid) Detection {
	det := Detection{HeaderRow: 0, HeaderAssumed: true}

	limit := headerScanRows
	if len(g.Rows) < limit {
		limit = len(g.Rows)
	}
	for idx := 0; idx < limit; idx++ {
		if scoreHeaderRow(g.Rows[idx]) >= 2 {
			det.HeaderRow = idx
			det.HeaderAssumed = false
			break
		}
	}

	if det.HeaderRow < len(g.Rows) {
		for i, raw := range g.Rows[det.HeaderRow] {
			normalized := NormalizeColumnName(raw)
			det.Columns = append(det.Columns, Column{
				Index:      i,
				Raw:        raw,
				Normalized: normalized,
				Canonical:  mapToSchema(normalized),
			})
		}
	}
	return det
}

// CanonicalIndex returns the grid column index for a canonical field,
// or -1 when the field was not detected.
func (d Detection) CanonicalIndex(canonical string) int {
	for _, c := range d.Columns {
		if c.Canonical == canonical {
			return c.Index
		}
	}
	return -1
}

func scoreHeaderRow(row []string) int {
	matches := 0
	for _, cell := range row {
		lower := strings.ToLower(cell)
		for _, kw := range headerKeywords {
			if strings.Contains(lower, kw) {
				matches++
				break
			}
		}
	}
	return matches
}

// NormalizeColumnName lowercases, strips non-word characters, and collapses
// whitespace runs to single underscores.
func NormalizeColumnName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "unnamed"
	}
	s := strings.ToLower(strings.TrimSpace(name))
	s = reNonWord.ReplaceAllString(s, "")
	s = reWhitespace.ReplaceAllString(strings.TrimSpace(s), "_")
	return s
}

func mapToSchema(normalized string) string {
	for _, entry := range schemaPatterns {
		for _, kw := range entry.keywords {
			if strings.Contains(normalized, kw) {
				return entry.canonical
			}
		}
	}
	return ""
}
