package extract

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/finsight/docingest/constants"
	"github.com/finsight/docingest/internal/amount"
	"github.com/finsight/docingest/internal/dateparse"
	"github.com/finsight/docingest/internal/entity"
)

var invoiceIDRules = rules{
	regexp.MustCompile(`(?i)Invoice\s*#?\s*:?\s*([A-Z0-9][A-Z0-9-]+)`),
	regexp.MustCompile(`(?i)Facture\s*N°?\s*:?\s*([A-Z0-9][A-Z0-9-]+)`),
	regexp.MustCompile(`(?i)INV[-_]?(\d{4}[-_]\d{4})`),
	regexp.MustCompile(`(?i)INVOICE\s*NUMBER\s*:?\s*([A-Z0-9-]+)`),
	regexp.MustCompile(`(?i)N°\s*FACTURE\s*:?\s*([A-Z0-9-]+)`),
}

var (
	siretRule   = regexp.MustCompile(`(?i)SIRET\s*:?\s*(\d{14})`)
	idTokenRule = regexp.MustCompile(`^[A-Z0-9-]{4,}$`)
)

var vatRules = rules{
	regexp.MustCompile(`(?i)TVA\s*:?\s*([A-Z]{2}\d{11})`),
	regexp.MustCompile(`(?i)VAT\s*:?\s*([A-Z]{2}\d{11})`),
	regexp.MustCompile(`(?i)N°\s*TVA\s*:?\s*([A-Z]{2}\d{11})`),
}

var paymentTermsRules = rules{
	regexp.MustCompile(`(?i)Payment terms?\s*:?\s*([^\n]+)`),
	regexp.MustCompile(`(?i)Terms?\s*:?\s*([^\n]+)`),
	regexp.MustCompile(`(?i)Net\s+(\d+)\s*days?`),
	regexp.MustCompile(`(?i)Paiement\s*:?\s*([^\n]+)`),
}

var clientMarkers = []string{"client", "customer", "bill to", "facturé à", "billto"}

// skip words that disqualify a line from being a vendor name.
var vendorSkipWords = []string{"invoice", "facture", "date"}

// InvoiceExtractor turns raw invoice text (plus any tables the reader
// recovered) into a normalized invoice record.
type InvoiceExtractor struct {
	Dates      dateparse.Parser
	Logger     *slog.Logger
	MaxTextLen int // input cap before extraction; 0 means the default
}

func NewInvoiceExtractor(dates dateparse.Parser, logger *slog.Logger) *InvoiceExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvoiceExtractor{Dates: dates, Logger: logger}
}

// Extract never fails: every field falls back to a typed default and the
// tradeoff is surfaced by validation afterwards.
func (e *InvoiceExtractor) Extract(text string, tables [][][]string, sourceFile string) entity.Invoice {
	text = normalizeText(text, e.MaxTextLen)

	inv := entity.Invoice{
		SourceFile: sourceFile,
		RawText:    head(text, 500),
	}

	inv.InvoiceID = e.extractInvoiceID(text, sourceFile)

	// First date is usually the issue date, second the due date.
	dates := e.Dates.ExtractAll(text)
	if len(dates) > 0 {
		inv.Date = &dates[0]
	}
	if len(dates) > 1 {
		inv.DueDate = &dates[1]
	}

	inv.Vendor = extractVendor(text)
	inv.Client = extractClient(text)

	bd := amount.ExtractFromText(text)
	inv.TotalHT = bd.AmountHT
	inv.TaxRate = bd.TaxRate
	inv.TaxAmount = bd.TaxAmount
	inv.TotalTTC = bd.AmountTTC
	inv.Currency = bd.Currency

	inv.Items = LineItemsFromTables(tables)

	if terms, ok := paymentTermsRules.first(text); ok {
		inv.PaymentTerms = strPtr(head(terms, 100))
	}
	inv.Status = detectStatus(text)

	e.Logger.Debug("extract.invoice.ok",
		"source", sourceFile,
		"invoice_id", inv.InvoiceID,
		"items", len(inv.Items),
		"currency", inv.Currency,
	)
	return inv
}

func (e *InvoiceExtractor) extractInvoiceID(text, sourceFile string) string {
	if id, ok := invoiceIDRules.first(text); ok {
		return id
	}
	// Fall back to an ID-like token near "invoice"/"facture".
	words := strings.Fields(text)
	for i, w := range words {
		lw := strings.ToLower(w)
		if lw == "invoice" || lw == "facture" || lw == "inv" {
			for j := i + 1; j < i+5 && j < len(words); j++ {
				if idTokenRule.MatchString(words[j]) {
					return words[j]
				}
			}
		}
	}
	stem := strings.TrimSuffix(filepath.Base(sourceFile), filepath.Ext(sourceFile))
	if stem == "" || stem == "." {
		stem = uuid.NewString()[:8]
	}
	return fmt.Sprintf("UNKNOWN_%s", stem)
}

// extractVendor takes the first plausible line near the top of the document
// as the vendor name, then scans for SIRET and VAT registration numbers.
func extractVendor(text string) entity.Vendor {
	v := entity.Vendor{Name: "UNKNOWN"}

	lines := strings.Split(text, "\n")
	limit := 10
	if len(lines) < limit {
		limit = len(lines)
	}
	for _, line := range lines[:limit] {
		line = strings.TrimSpace(line)
		if len(line) <= 3 {
			continue
		}
		lower := strings.ToLower(line)
		skip := false
		for _, w := range vendorSkipWords {
			if strings.Contains(lower, w) {
				skip = true
				break
			}
		}
		if !skip {
			v.Name = head(line, 60)
			break
		}
	}

	if m := siretRule.FindStringSubmatch(text); m != nil {
		v.SIRET = &m[1]
	}
	if vat, ok := vatRules.first(text); ok {
		v.VATNumber = &vat
	}
	return v
}

// extractClient looks for a client-section marker and takes the next
// plausible non-label line as the client name.
func extractClient(text string) entity.Client {
	c := entity.Client{Name: "UNKNOWN"}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lower := strings.ToLower(strings.TrimSpace(line))
		marked := false
		for _, marker := range clientMarkers {
			if strings.Contains(lower, marker) {
				marked = true
				break
			}
		}
		if !marked {
			continue
		}
		for j := i + 1; j < i+10 && j < len(lines); j++ {
			candidate := strings.TrimSpace(lines[j])
			if len(candidate) <= 3 || strings.Contains(candidate, ":") {
				continue
			}
			lc := strings.ToLower(candidate)
			if strings.Contains(lc, "address") || strings.Contains(lc, "tel") || strings.Contains(lc, "email") {
				continue
			}
			c.Name = head(candidate, 60)
			return c
		}
		break
	}
	return c
}

func detectStatus(text string) constants.InvoiceStatus {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "paid") || strings.Contains(lower, "payé") || strings.Contains(lower, "réglé"):
		return constants.StatusPaid
	case strings.Contains(lower, "overdue") || strings.Contains(lower, "en retard"):
		return constants.StatusOverdue
	default:
		return constants.StatusUnpaid
	}
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimRight(s[:n], " ,.")
}
