package parser

import (
	"context"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openfinbr/conciliador/internal/infra/observability"
	"github.com/openfinbr/conciliador/internal/ingest"
)

var tracer = otel.Tracer("parser/registry")

// Registry holds the ordered set of registered sources and picks the
// best one per file by detection score. Registration order breaks ties.
type Registry struct {
	sources        []Source
	minDetectScore int
	maxParallel    int
	logger         *zap.Logger
	metrics        *observability.Metrics
}

// BatchResult aggregates a whole directory's parse results. Each file's
// ParseResult is an immutable value produced in parallel and merged by a
// single goroutine.
type BatchResult struct {
	Results          []*ParseResult `json:"results"`
	Unrecognized     []string       `json:"unrecognized,omitempty"`
	TotalFailedLines int            `json:"total_failed_lines"`
	Warnings         []string       `json:"warnings,omitempty"`
}

// NewRegistry creates a registry over the given sources. logger and
// metrics may be nil in library use.
func NewRegistry(sources []Source, minDetectScore, maxParallel int, logger *zap.Logger, metrics *observability.Metrics) *Registry {
	if maxParallel < 1 {
		maxParallel = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sources:        sources,
		minDetectScore: minDetectScore,
		maxParallel:    maxParallel,
		logger:         logger,
		metrics:        metrics,
	}
}

// DefaultSources returns the four production parsers in priority order.
func DefaultSources(opts Options) []Source {
	return []Source{
		NewLedgerSource(opts),
		NewFixedBankSource(opts),
		NewCSVBankSource(opts),
		NewContributionSource(opts),
	}
}

// Best runs every source's Detect against the file and returns the
// highest scorer. Earlier registration wins ties.
func (r *Registry) Best(content, filename string) (Source, int) {
	var best Source
	bestScore := -1
	for _, src := range r.sources {
		if score := src.Detect(content, filename); score > bestScore {
			best = src
			bestScore = score
		}
	}
	return best, bestScore
}

// ParseBatch parses every file with its best-matching source. Files are
// independent, so parsing fans out across a bounded errgroup; the only
// shared structure is the final aggregation, done under a mutex as each
// immutable ParseResult arrives.
func (r *Registry) ParseBatch(ctx context.Context, files []ingest.File) (*BatchResult, error) {
	ctx, span := tracer.Start(ctx, "Registry.ParseBatch")
	defer span.End()
	span.SetAttributes(attribute.Int("files", len(files)))

	batch := &BatchResult{}
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxParallel)

	for _, f := range files {
		file := f
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			src, score := r.Best(file.Content, file.Name)
			if src == nil || score < r.minDetectScore {
				r.logger.Warn("no confident parser for file",
					zap.String("file", file.Name),
					zap.Int("best_score", score),
				)
				mu.Lock()
				batch.Unrecognized = append(batch.Unrecognized, file.Name)
				mu.Unlock()
				return nil
			}

			result := src.Parse(file.Content, file.Name)
			r.logger.Info("parsed file",
				zap.String("file", file.Name),
				zap.String("parser", src.Name()),
				zap.Int("detect_score", score),
				zap.Int("records", result.RecordCount()),
				zap.Int("failed_lines", result.FailedLines),
				zap.Float64("confidence", result.Confidence),
			)
			if r.metrics != nil {
				r.metrics.IncrFileParsed(src.Name())
				r.metrics.AddLinesFailed(result.FailedLines)
			}

			mu.Lock()
			batch.Results = append(batch.Results, result)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Deterministic batch regardless of goroutine completion order.
	sort.Slice(batch.Results, func(i, j int) bool {
		return batch.Results[i].SourceFile < batch.Results[j].SourceFile
	})
	sort.Strings(batch.Unrecognized)

	for _, res := range batch.Results {
		batch.TotalFailedLines += res.FailedLines
		batch.Warnings = append(batch.Warnings, res.Warnings...)
	}
	return batch, nil
}
