// Package pipeline ties discovery, reading, extraction and validation
// together: one call takes a file path and ends with normalized records
// handed to a Sink.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finsight/docingest/constants"
	"github.com/finsight/docingest/internal/common"
	"github.com/finsight/docingest/internal/dateparse"
	"github.com/finsight/docingest/internal/entity"
	"github.com/finsight/docingest/internal/extract"
	"github.com/finsight/docingest/internal/ingest"
	"github.com/finsight/docingest/internal/reader"
	"github.com/finsight/docingest/internal/tabular"
	"github.com/finsight/docingest/internal/validate"
)

// Pipeline processes document files into validated, normalized records.
type Pipeline struct {
	Cfg       *common.Config
	Sink      Sink
	Dates     dateparse.Parser
	Invoices  *extract.InvoiceExtractor
	Contracts *extract.ContractExtractor
	Logger    *slog.Logger
}

func New(cfg *common.Config, sink Sink, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = common.LoadConfig()
	}
	if sink == nil {
		sink = NewLogSink(logger)
	}
	dates := dateparse.Parser{PreferEuropean: cfg.Parsing.PreferEuropeanDates}
	invoices := extract.NewInvoiceExtractor(dates, logger)
	invoices.MaxTextLen = cfg.Parsing.MaxTextLength
	contracts := extract.NewContractExtractor(dates, logger)
	contracts.MaxTextLen = cfg.Parsing.MaxTextLength
	return &Pipeline{
		Cfg:       cfg,
		Sink:      sink,
		Dates:     dates,
		Invoices:  invoices,
		Contracts: contracts,
		Logger:    logger,
	}
}

// FileResult is the per-file processing outcome.
type FileResult struct {
	Path    string
	Kind    constants.DocumentKind
	Records int
	Results []validate.Result
	Err     string

	// For budget files, the rollup over all parsed rows.
	Budget *entity.BudgetSummary

	// Batch-level detection inputs collected while processing.
	Fingerprints []validate.Fingerprint
	Amounts      []decimal.Decimal
}

// BatchResult aggregates a directory run.
type BatchResult struct {
	BatchID    string
	Files      []FileResult
	Stats      ingest.DirStats
	Summary    validate.BatchSummary
	Duplicates []validate.Duplicate
	Anomalies  []validate.Anomaly
	Elapsed    time.Duration
}

// ProcessFile reads, extracts, validates and emits one file. The document
// kind is resolved from the path and, when that is inconclusive, from the
// content.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) (FileResult, error) {
	res := FileResult{Path: path}

	switch ext := constants.NormalizeExt(filepath.Ext(path)); ext {
	case "pdf":
		return p.processPDF(ctx, path)
	case "xlsx", "xlsm":
		return p.processWorkbook(ctx, path)
	case "csv":
		return p.processCSV(ctx, path)
	case "json":
		return p.processJSON(ctx, path)
	default:
		err := fmt.Errorf("%w: .%s", common.ErrUnsupportedType, ext)
		res.Err = err.Error()
		return res, err
	}
}

func (p *Pipeline) processPDF(ctx context.Context, path string) (FileResult, error) {
	res := FileResult{Path: path}

	text, err := reader.ReadPDFText(path, p.Logger)
	if err != nil {
		res.Err = err.Error()
		return res, err
	}

	res.Kind = detectPDFKind(path, text)
	switch res.Kind {
	case constants.KindContract:
		c := p.Contracts.Extract(text, path)
		v := validate.Contract(c)
		if err := p.Sink.EmitContract(ctx, c, v); err != nil {
			res.Err = err.Error()
			return res, fmt.Errorf("emit contract: %w", err)
		}
		res.Records = 1
		res.Results = append(res.Results, v)
		res.Fingerprints = append(res.Fingerprints, validate.ContractFingerprint(c))
		if c.Amount != nil {
			res.Amounts = append(res.Amounts, *c.Amount)
		}
	default:
		inv := p.Invoices.Extract(text, nil, path)
		v := validate.Invoice(inv)
		if err := p.Sink.EmitInvoice(ctx, inv, v); err != nil {
			res.Err = err.Error()
			return res, fmt.Errorf("emit invoice: %w", err)
		}
		res.Records = 1
		res.Results = append(res.Results, v)
		res.Fingerprints = append(res.Fingerprints, validate.InvoiceFingerprint(inv))
		if inv.TotalTTC != nil {
			res.Amounts = append(res.Amounts, *inv.TotalTTC)
		}
	}
	return res, nil
}

func (p *Pipeline) processWorkbook(ctx context.Context, path string) (FileResult, error) {
	grid, err := reader.ReadWorkbook(path, p.Logger)
	if err != nil {
		return FileResult{Path: path, Kind: constants.KindBudget, Err: err.Error()}, err
	}
	return p.emitBudget(ctx, path, grid)
}

func (p *Pipeline) processCSV(ctx context.Context, path string) (FileResult, error) {
	grid, err := reader.ReadCSV(path)
	if err != nil {
		return FileResult{Path: path, Kind: constants.KindBudget, Err: err.Error()}, err
	}
	return p.emitBudget(ctx, path, grid)
}

func (p *Pipeline) emitBudget(ctx context.Context, path string, grid tabular.Grid) (FileResult, error) {
	res := FileResult{Path: path, Kind: constants.KindBudget}

	parsed := tabular.ParseBudget(grid, p.Dates)
	for _, w := range parsed.Warnings {
		p.Logger.Warn("pipeline.budget.warning", "path", path, "warning", w)
	}
	for _, row := range parsed.Rows {
		v := validate.Budget(row)
		if err := p.Sink.EmitBudgetRow(ctx, row, v); err != nil {
			res.Err = err.Error()
			return res, fmt.Errorf("emit budget row: %w", err)
		}
		res.Records++
		res.Results = append(res.Results, v)
		if row.Actual != nil {
			res.Amounts = append(res.Amounts, *row.Actual)
		}
	}
	if len(parsed.Rows) > 0 {
		sum := tabular.Summarize(parsed.Rows)
		res.Budget = &sum
		p.Logger.Info("pipeline.budget.summary",
			"path", path,
			"items", sum.NumItems,
			"total_budget", sum.TotalBudget,
			"total_variance", sum.TotalVariance,
		)
	}
	return res, nil
}

func (p *Pipeline) processJSON(ctx context.Context, path string) (FileResult, error) {
	res := FileResult{Path: path}

	doc, err := reader.LoadDocument(path)
	if err != nil {
		res.Err = err.Error()
		return res, err
	}

	kind, ok := detectJSONKind(path, doc)
	if !ok {
		err := fmt.Errorf("%w: cannot determine record type of %s", common.ErrUnsupportedType, filepath.Base(path))
		res.Err = err.Error()
		return res, err
	}
	res.Kind = kind

	switch kind {
	case constants.KindInvoice:
		inv := reader.ParseInvoiceJSON(doc, path, p.Dates, p.Logger)
		v := validate.Invoice(inv)
		if err := p.Sink.EmitInvoice(ctx, inv, v); err != nil {
			res.Err = err.Error()
			return res, fmt.Errorf("emit invoice: %w", err)
		}
		res.Records = 1
		res.Results = append(res.Results, v)
		res.Fingerprints = append(res.Fingerprints, validate.InvoiceFingerprint(inv))
		if inv.TotalTTC != nil {
			res.Amounts = append(res.Amounts, *inv.TotalTTC)
		}
	case constants.KindContract:
		c := reader.ParseContractJSON(doc, path, p.Dates, p.Logger)
		v := validate.Contract(c)
		if err := p.Sink.EmitContract(ctx, c, v); err != nil {
			res.Err = err.Error()
			return res, fmt.Errorf("emit contract: %w", err)
		}
		res.Records = 1
		res.Results = append(res.Results, v)
		res.Fingerprints = append(res.Fingerprints, validate.ContractFingerprint(c))
		if c.Amount != nil {
			res.Amounts = append(res.Amounts, *c.Amount)
		}
	case constants.KindAccountingEntry:
		e := reader.ParseAccountingEntryJSON(doc, path, p.Dates)
		if err := p.Sink.EmitAccountingEntry(ctx, e); err != nil {
			res.Err = err.Error()
			return res, fmt.Errorf("emit accounting entry: %w", err)
		}
		res.Records = 1
		res.Results = append(res.Results, validate.NewResult())
	}
	return res, nil
}

// ProcessDirectory walks root, processes every matching file, and runs the
// batch-level detections (duplicates across records, amount outliers) over
// the collected results.
func (p *Pipeline) ProcessDirectory(ctx context.Context, root string) (BatchResult, error) {
	start := time.Now()
	batch := BatchResult{BatchID: uuid.NewString()}

	paths, stats, err := ingest.DiscoverFiles(root, nil, true)
	if err != nil {
		return batch, fmt.Errorf("discover files: %w", err)
	}
	batch.Stats = stats

	var fingerprints []validate.Fingerprint
	var amounts []decimal.Decimal

	for _, path := range paths {
		if ctx.Err() != nil {
			return batch, ctx.Err()
		}
		fr, err := p.ProcessFile(ctx, path)
		if err != nil {
			p.Logger.Error("pipeline.file.failed", "batch_id", batch.BatchID, "path", path, "error", err)
			batch.Stats.Failed++
		} else {
			p.Logger.Info("pipeline.file.ok",
				"batch_id", batch.BatchID, "path", path,
				"kind", fr.Kind, "records", fr.Records,
			)
		}
		batch.Files = append(batch.Files, fr)
		for _, v := range fr.Results {
			batch.Summary.Add(v)
		}
		fingerprints = append(fingerprints, fr.Fingerprints...)
		amounts = append(amounts, fr.Amounts...)
	}

	batch.Duplicates = validate.DetectDuplicates(fingerprints, p.Cfg.Detection.DuplicateThreshold)
	batch.Anomalies = validate.DetectAnomalies(amounts, p.Cfg.Detection.AnomalySigma)
	batch.Summary.Duplicates = len(batch.Duplicates)
	batch.Summary.Anomalies = len(batch.Anomalies)
	batch.Elapsed = time.Since(start)

	p.Logger.Info("pipeline.batch.done",
		"batch_id", batch.BatchID,
		"root", root,
		"summary", batch.Summary.String(),
		"elapsed_ms", batch.Elapsed.Milliseconds(),
	)
	return batch, nil
}

// Watch processes files as the watcher reports them, until ctx is done.
// Existing files are not re-emitted; run ProcessDirectory first for those.
func (p *Pipeline) Watch(ctx context.Context, roots []string) error {
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:    roots,
		Debounce: p.Cfg.Ingest.WatchDebounce,
	})
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case werr, ok := <-errs:
			if !ok {
				return nil
			}
			p.Logger.Error("pipeline.watch.error", "error", werr)
		case path, ok := <-events:
			if !ok {
				return nil
			}
			if _, err := p.ProcessFile(ctx, path); err != nil {
				p.Logger.Error("pipeline.watch.file_failed", "path", path, "error", err)
			}
		}
	}
}

// contract vs invoice content markers, used when the path carries no hint.
var (
	contractMarkers = []string{"contrat", "contract", "agreement", "between the parties", "entre les soussign"}
	invoiceMarkers  = []string{"facture", "invoice", "total ttc", "total ht", "tva"}
)

// detectPDFKind resolves what a PDF holds: directory and filename hints
// first, then marker counts in the text. Invoices win ties.
func detectPDFKind(path, text string) constants.DocumentKind {
	lower := strings.ToLower(path)
	switch {
	case strings.Contains(lower, "contract") || strings.Contains(lower, "contrat"):
		return constants.KindContract
	case strings.Contains(lower, "invoice") || strings.Contains(lower, "facture"):
		return constants.KindInvoice
	}

	lowerText := strings.ToLower(text)
	var contractHits, invoiceHits int
	for _, m := range contractMarkers {
		contractHits += strings.Count(lowerText, m)
	}
	for _, m := range invoiceMarkers {
		invoiceHits += strings.Count(lowerText, m)
	}
	if contractHits > invoiceHits {
		return constants.KindContract
	}
	return constants.KindInvoice
}

// detectJSONKind prefers filename hints, then content keys.
func detectJSONKind(path string, doc reader.Document) (constants.DocumentKind, bool) {
	lower := strings.ToLower(filepath.Base(path))
	switch {
	case strings.Contains(lower, "invoice") || strings.Contains(lower, "facture"):
		return constants.KindInvoice, true
	case strings.Contains(lower, "contract") || strings.Contains(lower, "contrat"):
		return constants.KindContract, true
	}
	return doc.DetectKind()
}
