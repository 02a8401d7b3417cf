package reader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"

	"github.com/finsight/docingest/constants"
	"github.com/finsight/docingest/internal/amount"
	"github.com/finsight/docingest/internal/dateparse"
	"github.com/finsight/docingest/internal/entity"
)

// Document is a decoded JSON object before alias resolution.
type Document map[string]any

// documentSchema is deliberately permissive: it pins the overall shape
// (top-level object, array-valued collections) without constraining field
// names, since real exports disagree on those. Alias resolution handles
// the rest.
var documentSchema = mustCompileSchema(map[string]any{
	"type": "object",
	"properties": map[string]any{
		"items":   map[string]any{"type": "array"},
		"lines":   map[string]any{"type": "array"},
		"parties": map[string]any{"type": "array"},
		"clauses": map[string]any{"type": "array"},
	},
})

func mustCompileSchema(schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(fmt.Sprintf("marshal schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("document.json", bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("add schema: %v", err))
	}
	schema, err := compiler.Compile("document.json")
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return schema
}

// LoadDocument reads and decodes a JSON file and checks it against the
// structural schema.
func LoadDocument(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", filepath.Base(path), err)
	}
	if err := documentSchema.Validate(v); err != nil {
		return nil, fmt.Errorf("%s does not match document schema: %w", filepath.Base(path), err)
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: top-level JSON value is not an object", filepath.Base(path))
	}
	return Document(doc), nil
}

// FirstString returns the first non-empty string value among the aliases.
func (d Document) FirstString(keys ...string) (string, bool) {
	for _, key := range keys {
		if s, ok := d[key].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// FirstNumber returns the first alias holding a number, accepting both
// JSON numbers and amount-formatted strings ("1.250,50 €").
func (d Document) FirstNumber(keys ...string) (decimal.Decimal, bool) {
	for _, key := range keys {
		switch v := d[key].(type) {
		case float64:
			return decimal.NewFromFloat(v), true
		case string:
			if parsed, err := amount.Parse(v); err == nil {
				return parsed, true
			}
		}
	}
	return decimal.Decimal{}, false
}

// FirstDate parses the first alias whose value yields a valid date.
func (d Document) FirstDate(dates dateparse.Parser, keys ...string) *time.Time {
	for _, key := range keys {
		s, ok := d[key].(string)
		if !ok || s == "" {
			continue
		}
		if parsed, ok := dates.ParseDate(s); ok {
			return &parsed
		}
	}
	return nil
}

// DetectKind guesses the record type of a decoded document from its keys.
func (d Document) DetectKind() (constants.DocumentKind, bool) {
	if _, ok := d["invoice_id"]; ok {
		return constants.KindInvoice, true
	}
	if _, ok := d["vendor"]; ok {
		return constants.KindInvoice, true
	}
	if _, ok := d["contract_id"]; ok {
		return constants.KindContract, true
	}
	if _, ok := d["parties"]; ok {
		return constants.KindContract, true
	}
	if _, ok := d["entry_id"]; ok {
		return constants.KindAccountingEntry, true
	}
	return "", false
}

// ParseInvoiceJSON normalizes a decoded invoice document. Missing fields
// fall back through alias keys and arithmetic completion; the function only
// fails on structural problems, never on absent data.
func ParseInvoiceJSON(doc Document, path string, dates dateparse.Parser, logger *slog.Logger) entity.Invoice {
	if logger == nil {
		logger = slog.Default()
	}

	inv := entity.Invoice{
		SourceFile: path,
		Status:     constants.StatusUnpaid,
	}

	id, ok := doc.FirstString("invoice_id", "id", "number")
	if !ok {
		id = "UNKNOWN_" + stem(path)
		logger.Warn("reader.json.missing_invoice_id", "path", path, "fallback", id)
	}
	inv.InvoiceID = id

	inv.Date = doc.FirstDate(dates, "date", "invoice_date", "issue_date")
	inv.DueDate = doc.FirstDate(dates, "due_date", "payment_due", "deadline")

	inv.Vendor = parseVendor(doc.firstAny("vendor", "supplier", "from"))
	inv.Client = parseClient(doc.firstAny("client", "customer", "to"))
	inv.Items = parseItems(doc.firstAny("items", "lines", "line_items"))

	if ht, ok := doc.FirstNumber("total_ht", "subtotal", "amount_ht", "net_amount", "total_before_tax"); ok {
		inv.TotalHT = &ht
	}
	if rate, ok := doc.FirstNumber("tax_rate", "vat_rate", "tva_rate"); ok {
		f, _ := rate.Float64()
		if f > 1 { // percentage form
			f /= 100
		}
		inv.TaxRate = &f
	}
	if tax, ok := doc.FirstNumber("tax_amount", "vat_amount", "tva_amount", "tax"); ok {
		inv.TaxAmount = &tax
	}
	if ttc, ok := doc.FirstNumber("total_ttc", "total", "amount_ttc", "total_amount", "amount_due", "grand_total"); ok {
		inv.TotalTTC = &ttc
	}

	if cur, ok := doc.FirstString("currency", "devise"); ok {
		if canonical, ok := constants.CanonicalizeCurrency(cur); ok {
			inv.Currency = canonical
		} else {
			inv.Currency = constants.Currency(strings.ToUpper(cur))
		}
	} else {
		inv.Currency = constants.EUR
		if raw, ok := doc["total_ttc"].(string); ok {
			if pa, err := amount.ParseWithCurrency(raw); err == nil {
				inv.Currency = pa.Currency
			}
		}
	}

	completeTaxTriangle(&inv)

	if terms, ok := doc.FirstString("payment_terms", "terms"); ok {
		inv.PaymentTerms = &terms
	}
	if status, ok := doc.FirstString("status"); ok {
		inv.Status = constants.InvoiceStatus(strings.ToUpper(status))
	}
	if notes, ok := doc.FirstString("notes", "comments"); ok {
		inv.Notes = &notes
	}
	if ref, ok := doc.FirstString("reference", "po_number"); ok {
		inv.Reference = &ref
	}

	logger.Info("reader.json.invoice.ok", "invoice_id", inv.InvoiceID, "path", filepath.Base(path))
	return inv
}

// completeTaxTriangle derives any one of HT/TTC/tax-amount from the others.
func completeTaxTriangle(inv *entity.Invoice) {
	if inv.TotalHT != nil && inv.TaxRate != nil && inv.TotalTTC == nil {
		ttc := amount.TotalWithTax(*inv.TotalHT, *inv.TaxRate)
		inv.TotalTTC = &ttc
	}
	if inv.TotalTTC != nil && inv.TaxRate != nil && inv.TotalHT == nil {
		ht := amount.WithoutTax(*inv.TotalTTC, *inv.TaxRate)
		inv.TotalHT = &ht
	}
	if inv.TotalHT != nil && inv.TotalTTC != nil && inv.TaxAmount == nil {
		tax := inv.TotalTTC.Sub(*inv.TotalHT).Round(2)
		inv.TaxAmount = &tax
	}
}

// ParseContractJSON normalizes a decoded contract document.
func ParseContractJSON(doc Document, path string, dates dateparse.Parser, logger *slog.Logger) entity.Contract {
	if logger == nil {
		logger = slog.Default()
	}

	c := entity.Contract{
		SourceFile:        path,
		Status:            "ACTIVE",
		PaymentTermsDays:  30,
		RenewalNoticeDays: 90,
		Type:              constants.ContractService,
	}

	if id, ok := doc.FirstString("contract_id", "id", "number"); ok {
		c.ContractID = id
	} else {
		c.ContractID = "CONTRACT_" + stem(path)
	}
	if title, ok := doc.FirstString("title", "name", "description"); ok {
		c.Title = title
	} else {
		c.Title = "Untitled Contract"
	}

	c.StartDate = doc.FirstDate(dates, "start_date", "effective_date", "commencement_date")
	c.EndDate = doc.FirstDate(dates, "end_date", "expiry_date", "termination_date")

	c.Parties = parseParties(doc.firstAny("parties", "signatories"))

	if amt, ok := doc.FirstNumber("amount", "total_amount", "contract_value", "value"); ok {
		c.Amount = &amt
	}
	if cur, ok := doc.FirstString("currency"); ok {
		if canonical, ok := constants.CanonicalizeCurrency(cur); ok {
			c.Currency = canonical
		} else {
			c.Currency = constants.Currency(strings.ToUpper(cur))
		}
	} else {
		c.Currency = constants.EUR
	}

	if freq, ok := doc.FirstString("billing_frequency", "payment_schedule"); ok {
		c.BillingFrequency = &freq
	}
	if terms, ok := doc.FirstNumber("payment_terms_days", "payment_terms", "net_days"); ok {
		c.PaymentTermsDays = int(terms.IntPart())
	}

	c.Clauses = parseClauses(doc.firstAny("clauses", "terms"))

	if auto, ok := doc["auto_renew"].(bool); ok {
		c.AutoRenew = auto
	}
	if notice, ok := doc.FirstNumber("renewal_notice_days", "notice_period_days"); ok {
		c.RenewalNoticeDays = int(notice.IntPart())
	}

	if status, ok := doc.FirstString("status"); ok {
		c.Status = strings.ToUpper(status)
	}
	if category, ok := doc.FirstString("category", "type"); ok {
		c.Type = constants.ContractType(strings.ToUpper(category))
	}
	if notes, ok := doc.FirstString("notes", "comments"); ok {
		c.Notes = &notes
	}

	logger.Info("reader.json.contract.ok", "contract_id", c.ContractID, "path", filepath.Base(path))
	return c
}

// ParseAccountingEntryJSON normalizes a decoded ledger entry.
func ParseAccountingEntryJSON(doc Document, path string, dates dateparse.Parser) entity.AccountingEntry {
	e := entity.AccountingEntry{SourceFile: path}

	if id, ok := doc.FirstString("entry_id", "id"); ok {
		e.EntryID = id
	} else {
		e.EntryID = "ENTRY_" + stem(path)
	}
	e.Date = doc.FirstDate(dates, "date", "entry_date", "transaction_date")
	if desc, ok := doc.FirstString("description", "label"); ok {
		e.Description = desc
	} else {
		e.Description = "NO DESCRIPTION"
	}
	if code, ok := doc.FirstString("account_code", "account"); ok {
		e.AccountCode = &code
	}
	if debit, ok := doc.FirstNumber("debit", "debit_amount"); ok {
		e.Debit = debit
	}
	if credit, ok := doc.FirstNumber("credit", "credit_amount"); ok {
		e.Credit = credit
	}
	if category, ok := doc.FirstString("category", "type"); ok {
		e.Category = &category
	}
	if ref, ok := doc.FirstString("reference", "document_ref"); ok {
		e.Reference = &ref
	}
	if notes, ok := doc.FirstString("notes"); ok {
		e.Notes = &notes
	}
	return e
}

// firstAny returns the first alias whose value is present and non-nil.
func (d Document) firstAny(keys ...string) any {
	for _, key := range keys {
		if v, ok := d[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

// parseVendor tolerates both an object and a bare name string.
func parseVendor(v any) entity.Vendor {
	switch t := v.(type) {
	case string:
		return entity.Vendor{Name: t}
	case map[string]any:
		d := Document(t)
		vendor := entity.Vendor{Name: "UNKNOWN"}
		if name, ok := d.FirstString("name", "company_name"); ok {
			vendor.Name = name
		}
		if addr, ok := d.FirstString("address"); ok {
			vendor.Address = &addr
		}
		if siret, ok := d.FirstString("siret", "company_id"); ok {
			vendor.SIRET = &siret
		}
		if vat, ok := d.FirstString("vat_number", "tva"); ok {
			vendor.VATNumber = &vat
		}
		return vendor
	default:
		return entity.Vendor{Name: "UNKNOWN"}
	}
}

func parseClient(v any) entity.Client {
	switch t := v.(type) {
	case string:
		return entity.Client{Name: t}
	case map[string]any:
		d := Document(t)
		client := entity.Client{Name: "UNKNOWN"}
		if name, ok := d.FirstString("name", "company_name"); ok {
			client.Name = name
		}
		if addr, ok := d.FirstString("address"); ok {
			client.Address = &addr
		}
		return client
	default:
		return entity.Client{Name: "UNKNOWN"}
	}
}

func parseItems(v any) []entity.LineItem {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	items := make([]entity.LineItem, 0, len(raw))
	for _, it := range raw {
		obj, ok := it.(map[string]any)
		if !ok {
			continue
		}
		d := Document(obj)
		item := entity.LineItem{Description: "NO DESCRIPTION"}
		if desc, ok := d.FirstString("description", "label"); ok {
			item.Description = desc
		}
		qty := 1.0
		if q, ok := d.FirstNumber("quantity", "qty"); ok {
			qty, _ = q.Float64()
		}
		item.Quantity = &qty
		if price, ok := d.FirstNumber("unit_price", "price", "rate"); ok {
			item.UnitPrice = &price
		}
		if total, ok := d.FirstNumber("total", "amount", "subtotal"); ok {
			item.Total = &total
		} else if item.UnitPrice != nil {
			total := item.UnitPrice.Mul(decimal.NewFromFloat(qty))
			item.Total = &total
		}
		items = append(items, item)
	}
	return items
}

// parseParties tolerates string entries (bare names) alongside objects.
func parseParties(v any) []entity.Party {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	parties := make([]entity.Party, 0, len(raw))
	for _, p := range raw {
		switch t := p.(type) {
		case string:
			parties = append(parties, entity.Party{Name: t, Role: constants.RoleUnknown})
		case map[string]any:
			d := Document(t)
			party := entity.Party{Name: "UNKNOWN", Role: constants.RoleUnknown}
			if name, ok := d.FirstString("name", "company_name"); ok {
				party.Name = name
			}
			if role, ok := d.FirstString("role"); ok {
				party.Role = constants.PartyRole(strings.ToUpper(role))
			}
			if addr, ok := d.FirstString("address"); ok {
				party.Address = &addr
			}
			if rep, ok := d.FirstString("representative", "signatory"); ok {
				party.Representative = &rep
			}
			parties = append(parties, party)
		}
	}
	return parties
}

func parseClauses(v any) []entity.Clause {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	clauses := make([]entity.Clause, 0, len(raw))
	for _, c := range raw {
		switch t := c.(type) {
		case string:
			clauses = append(clauses, entity.Clause{Type: "GENERAL", Description: t})
		case map[string]any:
			d := Document(t)
			clause := entity.Clause{Type: "GENERAL", Description: "NO DESCRIPTION"}
			if typ, ok := d.FirstString("type"); ok {
				clause.Type = strings.ToUpper(typ)
			}
			if desc, ok := d.FirstString("description", "text"); ok {
				clause.Description = desc
			}
			if val, ok := d.FirstString("value"); ok {
				clause.Value = &val
			}
			clauses = append(clauses, clause)
		}
	}
	return clauses
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
