//nolint:whitespace // can't make both editor and linter happy
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"

	"github.com/racevision/ingest-service-go/log"
	"github.com/racevision/ingest-service-go/pkg/ergast"
	"github.com/racevision/ingest-service-go/pkg/model"
	"github.com/racevision/ingest-service-go/pkg/repository/rawdoc"
)

// Fetcher is the upstream API dependency of a writer.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string) ([]*ergast.MRData, error)
}

var _ Fetcher = (*ergast.Client)(nil)

// IngestionResult aggregates the outcome of one writer run.
type IngestionResult struct {
	Entity  string
	Written int
	Skipped int
	Missing int
	Errors  []*SubScopeError
}

func (r *IngestionResult) merge(other *IngestionResult) {
	r.Written += other.Written
	r.Skipped += other.Skipped
	r.Missing += other.Missing
	r.Errors = append(r.Errors, other.Errors...)
}

type WriterOption func(w *Writer)

func WithDataSource(src string) WriterOption {
	return func(w *Writer) { w.dataSource = src }
}

func WithRunID(id uuid.UUID) WriterOption {
	return func(w *Writer) { w.runID = id }
}

func WithClock(now func() time.Time) WriterOption {
	return func(w *Writer) { w.now = now }
}

func WithWriterLogger(l *log.Logger) WriterOption {
	return func(w *Writer) { w.l = l }
}

// Writer ingests one entity type. All twelve entity types share this
// control flow; the per-entity behavior comes from the EntitySpec.
type Writer struct {
	spec       EntitySpec
	fetcher    Fetcher
	pool       *pgxpool.Pool
	dataSource string
	runID      uuid.UUID
	now        func() time.Time
	l          *log.Logger
}

func NewWriter(
	spec EntitySpec,
	fetcher Fetcher,
	pool *pgxpool.Pool,
	opts ...WriterOption,
) *Writer {
	w := &Writer{
		spec:       spec,
		fetcher:    fetcher,
		pool:       pool,
		dataSource: "ergast",
		runID:      uuid.Must(uuid.NewV7()),
		now:        time.Now,
		l:          log.Default().Named("ingest"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Ingest processes all sub-scopes of the given season. Fetch failures
// for single sub-scopes are collected in the result and do not abort the
// run; a storage failure does. Callers must have ingested the
// prerequisite collections already (orchestrator ordering).
func (w *Writer) Ingest(ctx context.Context, season int) (*IngestionResult, error) {
	res := &IngestionResult{Entity: w.spec.Name}
	scopes, err := w.subScopes(ctx, season)
	if err != nil {
		return res, err
	}
	for _, scope := range scopes {
		if err := w.ingestScope(ctx, scope, res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (w *Writer) subScopes(ctx context.Context, season int) ([]model.Scope, error) {
	switch w.spec.Granularity {
	case Global:
		return []model.Scope{{}}, nil
	case PerSeason:
		return []model.Scope{{Season: season}}, nil
	case PerRound:
		rounds, err := rawdoc.ListRounds(ctx, w.pool, season)
		if err != nil {
			return nil, &StorageError{
				Collection: "races",
				Scope:      model.Scope{Season: season},
				Err:        err,
			}
		}
		return lo.Map(rounds, func(round int, _ int) model.Scope {
			return model.Scope{Season: season, Round: round}
		}), nil
	}
	return nil, fmt.Errorf("unknown granularity %d for entity %s",
		w.spec.Granularity, w.spec.Name)
}

func (w *Writer) ingestScope(
	ctx context.Context,
	scope model.Scope,
	res *IngestionResult,
) error {
	endpoint := w.spec.Endpoint(scope)
	pages, err := w.fetcher.Fetch(ctx, endpoint)
	if err != nil {
		w.l.Error("fetch failed",
			log.String("entity", w.spec.Name),
			log.String("endpoint", endpoint),
			log.ErrorField(err))
		res.Errors = append(res.Errors, &SubScopeError{Scope: scope, Err: err})
		return nil
	}
	docs, err := w.spec.Extract(pages)
	if err != nil {
		w.l.Error("extract failed",
			log.String("entity", w.spec.Name),
			log.String("endpoint", endpoint),
			log.ErrorField(err))
		res.Errors = append(res.Errors, &SubScopeError{Scope: scope, Err: err})
		return nil
	}
	if len(docs) == 0 {
		if w.spec.knownAbsent(scope.Season) {
			w.l.Debug("no data within known-absent window",
				log.String("entity", w.spec.Name),
				log.Int("season", scope.Season),
				log.Int("round", scope.Round))
			res.Skipped++
		} else {
			w.l.Warn("unexpected empty result",
				log.String("entity", w.spec.Name),
				log.String("endpoint", endpoint))
			res.Missing++
		}
		return nil
	}

	stampedAt := w.now().UTC()
	stamped := lo.Map(docs, func(data any, _ int) *model.RawDocument {
		return &model.RawDocument{
			Collection: w.spec.Collection,
			Envelope: model.Envelope{
				Season:         scope.Season,
				Round:          scope.Round,
				SourceEndpoint: endpoint,
				IngestedAt:     stampedAt,
				DataSource:     w.dataSource,
				RunID:          w.runID,
			},
			Data: data,
		}
	})
	written, err := rawdoc.ReplaceScope(ctx, w.pool, w.spec.Collection, scope, stamped)
	if err != nil {
		return &StorageError{Collection: w.spec.Collection, Scope: scope, Err: err}
	}
	w.l.Debug("scope ingested",
		log.String("entity", w.spec.Name),
		log.Int("season", scope.Season),
		log.Int("round", scope.Round),
		log.Int("written", written))
	res.Written += written
	return nil
}
