package ingest

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/samber/lo"

	"github.com/racevision/ingest-service-go/log"
)

// WriterReport holds the aggregated outcome of one writer across the
// whole season range of a run.
type WriterReport struct {
	IngestionResult
	Elapsed time.Duration
}

// RunReport is the consolidated outcome of an orchestrator run and the
// single source of truth for what succeeded, was skipped or failed.
type RunReport struct {
	RunID   uuid.UUID
	Writers []*WriterReport
	Elapsed time.Duration
	fatal   error
}

// Passed reports the run verdict: false iff a writer hit a fatal
// storage error. Soft misses and fetch errors only produce warnings.
func (r *RunReport) Passed() bool { return r.fatal == nil }

func (r *RunReport) FatalError() error { return r.fatal }

func (r *RunReport) TotalWritten() int {
	return lo.SumBy(r.Writers, func(w *WriterReport) int { return w.Written })
}

// Warnings lists all soft misses and per-sub-scope fetch failures.
func (r *RunReport) Warnings() []string {
	var ret []string
	for _, w := range r.Writers {
		if w.Missing > 0 {
			ret = append(ret, fmt.Sprintf(
				"%s: %d sub-scopes without data outside known-absent windows",
				w.Entity, w.Missing))
		}
		ret = append(ret, lo.Map(w.Errors, func(e *SubScopeError, _ int) string {
			return fmt.Sprintf("%s: %v", w.Entity, e)
		})...)
	}
	return ret
}

// LogSummary writes the report via the given logger.
func (r *RunReport) LogSummary(l *log.Logger) {
	for _, w := range r.Writers {
		l.Info("writer finished",
			log.String("entity", w.Entity),
			log.Int("written", w.Written),
			log.Int("skipped", w.Skipped),
			log.Int("missing", w.Missing),
			log.Int("errors", len(w.Errors)),
			log.Duration("elapsed", w.Elapsed))
	}
	for _, warn := range r.Warnings() {
		l.Warn(warn)
	}
	if r.fatal != nil {
		l.Error("run failed", log.ErrorField(r.fatal))
	}
	l.Info("run finished",
		log.String("runId", r.RunID.String()),
		log.Int("written", r.TotalWritten()),
		log.Bool("passed", r.Passed()),
		log.Duration("elapsed", r.Elapsed))
}
