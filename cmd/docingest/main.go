package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/finsight/docingest/constants"
	"github.com/finsight/docingest/internal/amount"
	"github.com/finsight/docingest/internal/common"
	"github.com/finsight/docingest/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		dir      = flag.String("dir", "", "directory to ingest documents from (required unless INGEST_ROOTS is set)")
		watch    = flag.Bool("watch", false, "keep watching the directory for new files after the initial run")
		preferUS = flag.Bool("prefer-us", false, "interpret ambiguous slashed dates as MM/DD/YYYY")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	// Setup logger
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *preferUS {
		cfg.Parsing.PreferEuropeanDates = false
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	roots := cfg.Ingest.Roots
	if *dir != "" {
		roots = []string{*dir}
	}
	if len(roots) == 0 {
		printError("Error: --dir is required (or set INGEST_ROOTS)\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(cfg, pipeline.NewLogSink(logger), logger)

	// Budget totals print in the convention matching the date preference.
	formatAmount := amount.FormatEnglish
	if cfg.Parsing.PreferEuropeanDates {
		formatAmount = amount.FormatFrench
	}
	money := func(v decimal.Decimal) string { return formatAmount(v, constants.EUR) }

	for _, root := range roots {
		batch, err := p.ProcessDirectory(ctx, root)
		if err != nil {
			logger.Error("batch failed", "root", root, "error", err)
			os.Exit(1)
		}
		fmt.Printf("%s: %s\n", root, batch.Summary.String())
		for _, d := range batch.Duplicates {
			fmt.Printf("  possible duplicate: %s / %s (%.3f)\n", d.KeyA, d.KeyB, d.Similarity)
		}
		for _, a := range batch.Anomalies {
			fmt.Printf("  amount anomaly: %s (%.1f sigmas from mean)\n", a.Value, a.Sigmas)
		}
		for _, f := range batch.Files {
			if f.Budget == nil {
				continue
			}
			fmt.Printf("  budget %s: %d items, budgeted %s, actual %s, variance %s\n",
				f.Path, f.Budget.NumItems,
				money(f.Budget.TotalBudget), money(f.Budget.TotalActual), money(f.Budget.TotalVariance))
		}
	}

	if *watch {
		logger.Info("watching for new documents", "roots", roots)
		if err := p.Watch(ctx, roots); err != nil && ctx.Err() == nil {
			logger.Error("watcher stopped", "error", err)
			os.Exit(1)
		}
	}
}
