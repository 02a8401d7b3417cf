package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/finsight/docingest/constants"
	"github.com/finsight/docingest/internal/common"
	"github.com/finsight/docingest/internal/entity"
	"github.com/finsight/docingest/internal/reader"
	"github.com/finsight/docingest/internal/validate"
)

// memorySink records every emission for assertions.
type memorySink struct {
	invoices  []entity.Invoice
	contracts []entity.Contract
	rows      []entity.BudgetRow
	entries   []entity.AccountingEntry
	results   []validate.Result
}

func (s *memorySink) EmitInvoice(_ context.Context, inv entity.Invoice, v validate.Result) error {
	s.invoices = append(s.invoices, inv)
	s.results = append(s.results, v)
	return nil
}

func (s *memorySink) EmitContract(_ context.Context, c entity.Contract, v validate.Result) error {
	s.contracts = append(s.contracts, c)
	s.results = append(s.results, v)
	return nil
}

func (s *memorySink) EmitBudgetRow(_ context.Context, row entity.BudgetRow, v validate.Result) error {
	s.rows = append(s.rows, row)
	s.results = append(s.results, v)
	return nil
}

func (s *memorySink) EmitAccountingEntry(_ context.Context, e entity.AccountingEntry) error {
	s.entries = append(s.entries, e)
	return nil
}

func testConfig() *common.Config {
	return &common.Config{
		Parsing:   common.ParsingConfig{PreferEuropeanDates: true, MaxTextLength: 50000},
		Detection: common.DetectionConfig{DuplicateThreshold: 0.95, AnomalySigma: 3.0},
		Ingest:    common.IngestConfig{WatchDebounce: 2 * time.Second},
	}
}

func testPipeline(sink *memorySink) *Pipeline {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(testConfig(), sink, logger)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const invoiceJSON = `{
	"invoice_id": "INV-2024-0042",
	"date": "2024-03-15",
	"vendor": {"name": "ACME Corp"},
	"client": {"name": "Widget SARL"},
	"total_ht": 1000,
	"tax_rate": 0.20,
	"total_ttc": 1200,
	"currency": "EUR"
}`

const contractJSON = `{
	"contract_id": "CTR-2024-007",
	"title": "Managed Services Agreement",
	"start_date": "2024-01-01",
	"parties": [
		{"name": "ACME Corp", "role": "vendor"},
		{"name": "Widget SARL", "role": "client"}
	],
	"amount": 120000
}`

func TestNewAppliesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Parsing.MaxTextLength = 12345
	p := New(cfg, &memorySink{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if p.Invoices.MaxTextLen != 12345 || p.Contracts.MaxTextLen != 12345 {
		t.Errorf("text cap not threaded: %d / %d", p.Invoices.MaxTextLen, p.Contracts.MaxTextLen)
	}
	if !p.Dates.PreferEuropean {
		t.Error("date preference not threaded")
	}
}

func TestProcessFileJSONInvoice(t *testing.T) {
	sink := &memorySink{}
	p := testPipeline(sink)
	path := writeFile(t, t.TempDir(), "invoice_042.json", invoiceJSON)

	res, err := p.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != constants.KindInvoice || res.Records != 1 {
		t.Errorf("result = %+v", res)
	}
	if len(sink.invoices) != 1 {
		t.Fatalf("invoices emitted = %d", len(sink.invoices))
	}
	inv := sink.invoices[0]
	if inv.InvoiceID != "INV-2024-0042" || inv.TotalTTC.String() != "1200" {
		t.Errorf("invoice = %+v", inv)
	}
	if len(res.Fingerprints) != 1 || res.Fingerprints[0].Key != "INV-2024-0042" {
		t.Errorf("fingerprints = %+v", res.Fingerprints)
	}
	if len(res.Amounts) != 1 || res.Amounts[0].String() != "1200" {
		t.Errorf("amounts = %+v", res.Amounts)
	}
	if !res.Results[0].IsValid {
		t.Errorf("validation = %+v", res.Results[0])
	}
}

func TestProcessFileJSONContract(t *testing.T) {
	sink := &memorySink{}
	p := testPipeline(sink)
	path := writeFile(t, t.TempDir(), "contract_007.json", contractJSON)

	res, err := p.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != constants.KindContract || len(sink.contracts) != 1 {
		t.Fatalf("result = %+v, contracts = %d", res, len(sink.contracts))
	}
	if sink.contracts[0].ContractID != "CTR-2024-007" {
		t.Errorf("contract = %+v", sink.contracts[0])
	}
}

func TestProcessFileCSVBudget(t *testing.T) {
	sink := &memorySink{}
	p := testPipeline(sink)
	csv := "Department,Category,Budget,Actual\n" +
		"Marketing,Ads,100000,115000\n" +
		"IT,Cloud,50000,45000\n"
	path := writeFile(t, t.TempDir(), "budget_2024.csv", csv)

	res, err := p.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != constants.KindBudget || res.Records != 2 {
		t.Fatalf("result = %+v", res)
	}
	if len(sink.rows) != 2 || sink.rows[0].Department != "Marketing" {
		t.Errorf("rows = %+v", sink.rows)
	}
	if sink.rows[0].Variance == nil || sink.rows[0].Variance.String() != "15000" {
		t.Errorf("derived variance = %v", sink.rows[0].Variance)
	}
	// Actuals feed anomaly detection.
	if len(res.Amounts) != 2 {
		t.Errorf("amounts = %+v", res.Amounts)
	}
	if res.Budget == nil || res.Budget.TotalBudget.String() != "150000" {
		t.Errorf("budget summary = %+v", res.Budget)
	}
}

func TestProcessFileUnsupportedExtension(t *testing.T) {
	p := testPipeline(&memorySink{})
	_, err := p.ProcessFile(context.Background(), "/in/readme.txt")
	if !errors.Is(err, common.ErrUnsupportedType) {
		t.Errorf("err = %v", err)
	}
}

func TestProcessDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "invoice_001.json", invoiceJSON)
	writeFile(t, dir, "contract_007.json", contractJSON)
	writeFile(t, dir, ".hidden_invoice.json", invoiceJSON) // skipped
	writeFile(t, dir, "notes.txt", "ignore me")            // wrong extension

	sink := &memorySink{}
	p := testPipeline(sink)

	batch, err := p.ProcessDirectory(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if batch.BatchID == "" {
		t.Error("missing batch ID")
	}
	if len(batch.Files) != 2 {
		t.Fatalf("files processed = %d, want 2", len(batch.Files))
	}
	if batch.Summary.Total != 2 || batch.Summary.Invalid != 0 {
		t.Errorf("summary = %+v", batch.Summary)
	}
	if len(sink.invoices) != 1 || len(sink.contracts) != 1 {
		t.Errorf("emissions = %d invoices, %d contracts", len(sink.invoices), len(sink.contracts))
	}
	if len(batch.Duplicates) != 0 {
		t.Errorf("duplicates = %+v", batch.Duplicates)
	}
}

func TestProcessDirectoryFlagsDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "invoice_a.json", invoiceJSON)
	writeFile(t, dir, "invoice_b.json", invoiceJSON) // same record twice

	sink := &memorySink{}
	p := testPipeline(sink)

	batch, err := p.ProcessDirectory(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Duplicates) != 1 {
		t.Fatalf("duplicates = %+v", batch.Duplicates)
	}
	if batch.Summary.Duplicates != 1 {
		t.Errorf("summary = %+v", batch.Summary)
	}
}

func TestProcessDirectoryHonorsDuplicateThreshold(t *testing.T) {
	// Same vendor and amount, different date: 2 of 3 fingerprint parts
	// match, scoring ~0.67.
	laterInvoice := `{
	"invoice_id": "INV-2024-0043",
	"date": "2024-04-20",
	"vendor": {"name": "ACME Corp"},
	"total_ttc": 1200,
	"currency": "EUR"
}`
	dir := t.TempDir()
	writeFile(t, dir, "invoice_a.json", invoiceJSON)
	writeFile(t, dir, "invoice_b.json", laterInvoice)

	batch, err := testPipeline(&memorySink{}).ProcessDirectory(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Duplicates) != 0 {
		t.Errorf("default threshold should not flag the pair: %+v", batch.Duplicates)
	}

	cfg := testConfig()
	cfg.Detection.DuplicateThreshold = 0.6
	lenient := New(cfg, &memorySink{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	batch, err = lenient.ProcessDirectory(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Duplicates) != 1 {
		t.Errorf("lowered threshold should flag the pair: %+v", batch.Duplicates)
	}
}

func TestDetectPDFKind(t *testing.T) {
	tests := []struct {
		name string
		path string
		text string
		want constants.DocumentKind
	}{
		{"path hint contract", "/in/contracts/ctr_01.pdf", "", constants.KindContract},
		{"path hint invoice", "/in/facture_42.pdf", "", constants.KindInvoice},
		{"content contract", "/in/doc1.pdf", "SERVICE AGREEMENT between the parties hereto", constants.KindContract},
		{"content invoice", "/in/doc2.pdf", "FACTURE\nTotal TTC : 1 200,00 €\nTVA 20%", constants.KindInvoice},
		{"tie goes to invoice", "/in/doc3.pdf", "no markers at all", constants.KindInvoice},
	}
	for _, tt := range tests {
		if got := detectPDFKind(tt.path, tt.text); got != tt.want {
			t.Errorf("%s: detectPDFKind = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDetectJSONKind(t *testing.T) {
	if kind, ok := detectJSONKind("/in/facture_3.json", reader.Document{}); !ok || kind != constants.KindInvoice {
		t.Errorf("filename hint = %v, %v", kind, ok)
	}
	if kind, ok := detectJSONKind("/in/data.json", reader.Document{"contract_id": "x"}); !ok || kind != constants.KindContract {
		t.Errorf("content keys = %v, %v", kind, ok)
	}
	if _, ok := detectJSONKind("/in/data.json", reader.Document{"mystery": 1}); ok {
		t.Error("undetectable document should not resolve")
	}
}
