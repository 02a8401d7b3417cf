package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finsight/docingest/constants"
	"github.com/finsight/docingest/internal/dateparse"
	"github.com/finsight/docingest/internal/entity"
	"github.com/finsight/docingest/internal/validate"
)

// Sink receives normalized records together with their validation outcome.
// Implementations decide what "storing" means: a log line, a file, a graph.
type Sink interface {
	EmitInvoice(ctx context.Context, inv entity.Invoice, v validate.Result) error
	EmitContract(ctx context.Context, c entity.Contract, v validate.Result) error
	EmitBudgetRow(ctx context.Context, row entity.BudgetRow, v validate.Result) error
	EmitAccountingEntry(ctx context.Context, e entity.AccountingEntry) error
}

// LogSink writes every record as a structured log line. It is the default
// sink for the CLI and doubles as a reference Sink implementation.
type LogSink struct {
	Logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{Logger: logger}
}

func (s *LogSink) EmitInvoice(_ context.Context, inv entity.Invoice, v validate.Result) error {
	status := inv.Status
	if status == constants.StatusUnpaid && inv.DueDate != nil &&
		dateparse.IsOverdue(*inv.DueDate, time.Now()) {
		status = constants.StatusOverdue
	}
	s.Logger.Info("sink.invoice",
		"invoice_id", inv.InvoiceID,
		"vendor", inv.Vendor.Name,
		"total_ttc", decimalString(inv.TotalTTC),
		"currency", inv.Currency,
		"status", status,
		"valid", v.IsValid,
		"errors", len(v.Errors),
		"warnings", len(v.Warnings),
	)
	return nil
}

func (s *LogSink) EmitContract(_ context.Context, c entity.Contract, v validate.Result) error {
	s.Logger.Info("sink.contract",
		"contract_id", c.ContractID,
		"type", c.Type,
		"amount", decimalString(c.Amount),
		"parties", len(c.Parties),
		"valid", v.IsValid,
		"errors", len(v.Errors),
		"warnings", len(v.Warnings),
	)
	return nil
}

func (s *LogSink) EmitBudgetRow(_ context.Context, row entity.BudgetRow, v validate.Result) error {
	s.Logger.Info("sink.budget_row",
		"department", row.Department,
		"budget", decimalString(row.Budget),
		"actual", decimalString(row.Actual),
		"variance", decimalString(row.Variance),
		"valid", v.IsValid,
	)
	return nil
}

func (s *LogSink) EmitAccountingEntry(_ context.Context, e entity.AccountingEntry) error {
	s.Logger.Info("sink.accounting_entry",
		"entry_id", e.EntryID,
		"debit", e.Debit,
		"credit", e.Credit,
	)
	return nil
}

func decimalString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}
