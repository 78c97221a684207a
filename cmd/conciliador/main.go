package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/openfinbr/conciliador/internal/config"
	"github.com/openfinbr/conciliador/internal/infra/observability"
	"github.com/openfinbr/conciliador/internal/ingest"
	"github.com/openfinbr/conciliador/internal/normalize"
	"github.com/openfinbr/conciliador/internal/parser"
	"github.com/openfinbr/conciliador/internal/pipeline"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	dir := flag.String("dir", ".", "directory of source files to reconcile")
	format := flag.String("format", "text", "output format: text or json")
	year := flag.Int("year", 0, "default year for dates without one (e.g. 4-Aug)")
	verbose := flag.Bool("v", false, "debug logging")
	metricsAddr := flag.String("metrics-addr", "", "optional address to serve /metrics on")
	flag.Parse()

	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()
	if *year != 0 {
		cfg.DefaultYear = *year
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.String("dir", *dir),
		zap.String("log_level", cfg.LogLevel),
		zap.Int("default_year", cfg.DefaultYear),
		zap.Bool("us_dates_first", cfg.USDatesFirst),
		zap.Int("max_parallel_files", cfg.MaxParallelFiles),
		zap.Int("date_window_days", cfg.Match.DateWindowDays),
		zap.Int("match_floor", cfg.Match.MatchFloor),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "conciliador")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
			logger.Info("metrics listener started", zap.String("addr", *metricsAddr))
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Error("metrics listener failed", zap.Error(err))
			}
		}()
	}

	// --- Normalizer options ---
	opts := parser.Options{
		Names: normalize.DefaultNameConfig(),
		Dates: normalize.DateConfig{USFirst: cfg.USDatesFirst, DefaultYear: cfg.DefaultYear},
		Clock: time.Now,
	}
	if cfg.NameConfigPath != "" {
		f, err := os.Open(cfg.NameConfigPath)
		if err != nil {
			logger.Fatal("failed to open name config", zap.Error(err))
		}
		opts.Names, err = normalize.LoadNameConfig(f)
		f.Close()
		if err != nil {
			logger.Fatal("failed to load name config", zap.Error(err))
		}
	}

	// --- Load files ---
	files, err := ingest.LoadDir(*dir, logger)
	if err != nil {
		logger.Fatal("failed to load source directory", zap.Error(err))
	}
	if len(files) == 0 {
		logger.Fatal("no source files found", zap.String("dir", *dir))
	}

	// --- Run ---
	p := pipeline.New(cfg, opts, logger, metrics)
	report, err := p.Run(context.Background(), files)
	if err != nil {
		logger.Fatal("pipeline run failed", zap.Error(err))
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			logger.Fatal("failed to encode report", zap.Error(err))
		}
	default:
		printTextReport(report)
	}
}

// printTextReport renders the human-readable summary with the review
// queues: unmatched entries, duplicate suspects and failed-line counts.
func printTextReport(report *pipeline.Report) {
	sum := report.Reconciliation.Summary
	fmt.Printf("Reconciliation finished in %s\n\n", report.Elapsed)
	fmt.Printf("  persons:       %d\n", len(report.Dataset.Persons))
	fmt.Printf("  transactions:  %d\n", len(report.Dataset.Transactions))
	fmt.Printf("  bank entries:  %d\n\n", len(report.Dataset.BankEntries))
	fmt.Printf("  matched:            %d\n", sum.Matched)
	fmt.Printf("  unmatched:          %d\n", sum.Unmatched)
	fmt.Printf("  duplicate suspects: %d\n", sum.DuplicateSuspects)
	fmt.Printf("  failed lines:       %d\n", report.FailedLines)

	if len(report.Unrecognized) > 0 {
		fmt.Println("\nUnrecognized files:")
		for _, f := range report.Unrecognized {
			fmt.Printf("  - %s\n", f)
		}
	}
	if len(report.Reconciliation.Unmatched) > 0 {
		fmt.Println("\nUnmatched bank entries (review queue):")
		for _, e := range report.Reconciliation.Unmatched {
			fmt.Printf("  - %s  %s  %s\n", e.Date, e.Amount.Format(true), e.Description)
		}
	}
	if len(report.Reconciliation.DuplicateSuspects) > 0 {
		fmt.Println("\nDuplicate suspects (review queue):")
		for _, d := range report.Reconciliation.DuplicateSuspects {
			fmt.Printf("  - %s  %s  %s (%s)\n",
				d.Entry.Date, d.Entry.Amount.Format(true), d.Entry.Description, d.Reason)
		}
	}
}
