package constants

import "strings"

// DocumentKind discriminates the normalized record types the pipeline emits.
type DocumentKind string

const (
	KindInvoice         DocumentKind = "invoice"
	KindContract        DocumentKind = "contract"
	KindBudget          DocumentKind = "budget"
	KindAccountingEntry DocumentKind = "accounting_entry"
)

// AllowedExtensions holds the default allowed file extensions for ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"xlsx": {},
	"xlsm": {},
	"json": {},
	"csv":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
