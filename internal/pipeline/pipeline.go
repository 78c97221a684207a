// Package pipeline wires the source registry, dataset builder and
// financial matcher into one end-to-end reconciliation run.
package pipeline

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/openfinbr/conciliador/internal/config"
	"github.com/openfinbr/conciliador/internal/dataset"
	"github.com/openfinbr/conciliador/internal/identity"
	"github.com/openfinbr/conciliador/internal/infra/observability"
	"github.com/openfinbr/conciliador/internal/ingest"
	"github.com/openfinbr/conciliador/internal/match"
	"github.com/openfinbr/conciliador/internal/parser"
)

var tracer = otel.Tracer("pipeline")

// Report is the full output of one run: the canonical dataset, the
// reconciliation result and the batch-level parse summary. Plain data,
// safe to serialize across a process boundary.
type Report struct {
	Dataset        *dataset.Dataset            `json:"dataset"`
	Reconciliation *match.ReconciliationResult `json:"reconciliation"`
	Unrecognized   []string                    `json:"unrecognized_files,omitempty"`
	FailedLines    int                         `json:"failed_lines"`
	Warnings       []string                    `json:"warnings,omitempty"`
	Elapsed        time.Duration               `json:"elapsed_ns"`
}

// Pipeline runs parse -> consolidate -> reconcile. Deterministic given
// the input files and the injected clock.
type Pipeline struct {
	cfg      *config.Config
	registry *parser.Registry
	opts     parser.Options
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// New assembles a pipeline from configuration.
func New(cfg *config.Config, opts parser.Options, logger *zap.Logger, metrics *observability.Metrics) *Pipeline {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	registry := parser.NewRegistry(
		parser.DefaultSources(opts),
		cfg.MinDetectScore,
		cfg.MaxParallelFiles,
		logger,
		metrics,
	)
	return &Pipeline{cfg: cfg, registry: registry, opts: opts, logger: logger, metrics: metrics}
}

// Run executes one end-to-end reconciliation over the given files.
func (p *Pipeline) Run(ctx context.Context, files []ingest.File) (*Report, error) {
	ctx, span := tracer.Start(ctx, "Pipeline.Run")
	defer span.End()

	start := p.opts.Clock()

	stageStart := time.Now()
	batch, err := p.registry.ParseBatch(ctx, files)
	if err != nil {
		return nil, err
	}
	p.metrics.RecordStageDuration("parse", time.Since(stageStart))

	stageStart = time.Now()
	ds := dataset.Build(batch, dataset.BuildOptions{
		LinkTransactions: true,
		Match:            p.cfg.Match,
		Logger:           p.logger,
		Metrics:          p.metrics,
	})
	p.metrics.AddRecords("person", len(ds.Persons))
	p.metrics.AddRecords("transaction", len(ds.Transactions))
	p.metrics.AddRecords("bank_entry", len(ds.BankEntries))
	p.metrics.RecordStageDuration("build", time.Since(stageStart))

	stageStart = time.Now()
	resolver := identity.NewResolver(p.cfg.Match, ds.Persons)
	matcher := match.NewMatcher(p.cfg.Match, resolver, p.logger, p.metrics)
	recon := matcher.ReconcileBatch(ctx, ds.BankEntries, ds.Transactions)
	p.metrics.RecordStageDuration("reconcile", time.Since(stageStart))

	return &Report{
		Dataset:        ds,
		Reconciliation: recon,
		Unrecognized:   batch.Unrecognized,
		FailedLines:    batch.TotalFailedLines,
		Warnings:       batch.Warnings,
		Elapsed:        p.opts.Clock().Sub(start),
	}, nil
}
