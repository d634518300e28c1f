package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/racevision/ingest-service-go/log"
)

type OrchestratorOption func(o *Orchestrator)

func WithSeasonRange(first, last int) OrchestratorOption {
	return func(o *Orchestrator) {
		if last < first {
			o.seasons = nil
			return
		}
		o.seasons = lo.RangeFrom(first, last-first+1)
	}
}

func WithEntities(names []string) OrchestratorOption {
	return func(o *Orchestrator) { o.entities = names }
}

func WithParallel(parallel bool) OrchestratorOption {
	return func(o *Orchestrator) { o.parallel = parallel }
}

func WithOrchestratorDataSource(src string) OrchestratorOption {
	return func(o *Orchestrator) { o.dataSource = src }
}

func WithOrchestratorLogger(l *log.Logger) OrchestratorOption {
	return func(o *Orchestrator) { o.l = l }
}

// Orchestrator runs the catalog writers in dependency-tier order over
// the configured season range and produces a consolidated report.
type Orchestrator struct {
	fetcher    Fetcher
	pool       *pgxpool.Pool
	seasons    []int
	entities   []string
	parallel   bool
	dataSource string
	l          *log.Logger
}

func NewOrchestrator(
	fetcher Fetcher,
	pool *pgxpool.Pool,
	opts ...OrchestratorOption,
) *Orchestrator {
	o := &Orchestrator{
		fetcher:    fetcher,
		pool:       pool,
		seasons:    lo.RangeFrom(1950, time.Now().Year()-1950+1),
		dataSource: "ergast",
		l:          log.Default().Named("ingest"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes all selected writers tier by tier. A storage error halts
// the remaining tiers; everything else is aggregated into the report.
// The report is returned in both cases.
func (o *Orchestrator) Run(ctx context.Context) (*RunReport, error) {
	start := time.Now()
	runID := uuid.Must(uuid.NewV7())
	report := &RunReport{RunID: runID}

	selected, err := CatalogByName(o.entities)
	if err != nil {
		return nil, err
	}
	if len(o.seasons) == 0 {
		return nil, fmt.Errorf("empty season range")
	}
	o.l.Info("starting ingestion run",
		log.String("runId", runID.String()),
		log.Int("firstSeason", o.seasons[0]),
		log.Int("lastSeason", o.seasons[len(o.seasons)-1]),
		log.Int("entities", len(selected)))

	for _, tier := range Tiers {
		specs := lo.Filter(selected, func(s EntitySpec, _ int) bool {
			return lo.Contains(tier, s.Name)
		})
		if len(specs) == 0 {
			continue
		}
		tierReports := make([]*WriterReport, len(specs))
		if o.parallel {
			g, gCtx := errgroup.WithContext(ctx)
			for i, spec := range specs {
				g.Go(func() error {
					wr, err := o.runWriter(gCtx, spec, runID)
					tierReports[i] = wr
					return err
				})
			}
			err = g.Wait()
		} else {
			for i, spec := range specs {
				tierReports[i], err = o.runWriter(ctx, spec, runID)
				if err != nil {
					break
				}
			}
		}
		report.Writers = append(report.Writers,
			lo.Compact(tierReports)...)
		if err != nil {
			report.fatal = err
			break
		}
	}
	report.Elapsed = time.Since(start)
	return report, report.fatal
}

func (o *Orchestrator) runWriter(
	ctx context.Context,
	spec EntitySpec,
	runID uuid.UUID,
) (*WriterReport, error) {
	start := time.Now()
	w := NewWriter(spec, o.fetcher, o.pool,
		WithDataSource(o.dataSource),
		WithRunID(runID),
		WithWriterLogger(o.l.Named(spec.Name)),
	)
	agg := &WriterReport{IngestionResult: IngestionResult{Entity: spec.Name}}
	seasons := o.seasons
	if spec.Granularity == Global {
		seasons = []int{0}
	}
	for _, season := range seasons {
		res, err := w.Ingest(ctx, season)
		agg.merge(res)
		if err != nil {
			agg.Elapsed = time.Since(start)
			return agg, err
		}
	}
	agg.Elapsed = time.Since(start)
	return agg, nil
}
