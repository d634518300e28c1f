//nolint:whitespace // can't make both editor and linter happy
package validate

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"

	"github.com/racevision/ingest-service-go/log"
	"github.com/racevision/ingest-service-go/pkg/ingest"
	"github.com/racevision/ingest-service-go/pkg/repository/rawdoc"
)

// ConsistencyError describes a failed referential or coverage check.
// It is purely diagnostic; the harness never raises during ingestion.
type ConsistencyError struct {
	Check  string
	Detail string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Check, e.Detail)
}

type Finding struct {
	Check  string
	Passed bool
	Detail string
}

// Report accumulates all findings of a harness run. The harness never
// halts on first failure.
type Report struct {
	Findings []Finding
}

func (r *Report) Passed() bool {
	return !lo.SomeBy(r.Findings, func(f Finding) bool { return !f.Passed })
}

func (r *Report) Failures() []Finding {
	return lo.Filter(r.Findings, func(f Finding, _ int) bool { return !f.Passed })
}

func (r *Report) pass(check, detail string) {
	r.Findings = append(r.Findings, Finding{Check: check, Passed: true, Detail: detail})
}

func (r *Report) fail(err *ConsistencyError) {
	r.Findings = append(r.Findings,
		Finding{Check: err.Check, Passed: false, Detail: err.Detail})
}

// referencingCollections hold per-driver documents whose (season, round)
// must resolve to a race and whose driverId must resolve to a driver of
// the same season.
var referencingCollections = []string{
	"results", "qualifying", "sprint", "pitstops", "laptimes",
}

// Harness runs read-only consistency checks against the ingested store.
type Harness struct {
	pool *pgxpool.Pool
	l    *log.Logger
}

func NewHarness(pool *pgxpool.Pool, l *log.Logger) *Harness {
	if l == nil {
		l = log.Default().Named("validate")
	}
	return &Harness{pool: pool, l: l}
}

// Run executes all checks and accumulates the findings. The returned
// error covers storage access problems only, never check failures.
func (h *Harness) Run(ctx context.Context) (*Report, error) {
	report := &Report{}
	if err := h.checkCollections(ctx, report); err != nil {
		return nil, err
	}
	if err := h.checkSeasonCoverage(ctx, report); err != nil {
		return nil, err
	}
	if err := h.checkRaceReferences(ctx, report); err != nil {
		return nil, err
	}
	if err := h.checkDriverReferences(ctx, report); err != nil {
		return nil, err
	}
	if err := h.checkGenerations(ctx, report); err != nil {
		return nil, err
	}
	if err := h.checkDuplicates(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// checkCollections verifies that each catalog collection is non-empty.
func (h *Harness) checkCollections(ctx context.Context, report *Report) error {
	counts, err := rawdoc.CollectionCounts(ctx, h.pool)
	if err != nil {
		return err
	}
	for _, spec := range ingest.Catalog() {
		count := counts[spec.Collection]
		if count == 0 {
			report.fail(&ConsistencyError{
				Check:  "existence",
				Detail: fmt.Sprintf("collection %s is empty", spec.Collection),
			})
			continue
		}
		report.pass("existence",
			fmt.Sprintf("collection %s holds %d documents", spec.Collection, count))
	}
	return nil
}

// checkSeasonCoverage verifies that every season listed in the seasons
// collection within the ingested race range has at least one race.
func (h *Harness) checkSeasonCoverage(ctx context.Context, report *Report) error {
	raceSeasons, err := rawdoc.DistinctSeasons(ctx, h.pool, "races")
	if err != nil {
		return err
	}
	if len(raceSeasons) == 0 {
		report.fail(&ConsistencyError{
			Check:  "coverage",
			Detail: "no race documents at all",
		})
		return nil
	}
	rows, err := h.pool.Query(ctx, `
	select (data->>'year')::int as year from raw_document
	where collection='seasons'
	and (data->>'year')::int between $1 and $2
	and (data->>'year')::int not in (
		select distinct season from raw_document where collection='races'
	)
	order by year
	`, raceSeasons[0], raceSeasons[len(raceSeasons)-1])
	if err != nil {
		return err
	}
	defer rows.Close()
	var uncovered []int
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return err
		}
		uncovered = append(uncovered, year)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(uncovered) > 0 {
		report.fail(&ConsistencyError{
			Check:  "coverage",
			Detail: fmt.Sprintf("seasons without races: %v", uncovered),
		})
	} else {
		report.pass("coverage", fmt.Sprintf(
			"all seasons %d-%d have races",
			raceSeasons[0], raceSeasons[len(raceSeasons)-1]))
	}
	return nil
}

// checkRaceReferences verifies that every per-round document resolves
// its (season, round) to a race document.
func (h *Harness) checkRaceReferences(ctx context.Context, report *Report) error {
	for _, collection := range referencingCollections {
		row := h.pool.QueryRow(ctx, `
	select count(*) from raw_document d
	where d.collection=$1
	and not exists (
		select 1 from raw_document r
		where r.collection='races'
		and r.season=d.season
		and (r.data->>'round')::int=d.round
	)
		`, collection)
		var orphans int
		if err := row.Scan(&orphans); err != nil {
			return err
		}
		if orphans > 0 {
			report.fail(&ConsistencyError{
				Check: "race-reference",
				Detail: fmt.Sprintf(
					"%s: %d documents without matching race", collection, orphans),
			})
		} else {
			report.pass("race-reference",
				fmt.Sprintf("%s resolves all races", collection))
		}
	}
	return nil
}

// checkDriverReferences verifies that every per-driver document
// resolves its driverId to a driver snapshot of the same season.
func (h *Harness) checkDriverReferences(ctx context.Context, report *Report) error {
	for _, collection := range referencingCollections {
		row := h.pool.QueryRow(ctx, `
	select count(*) from raw_document d
	where d.collection=$1
	and not exists (
		select 1 from raw_document dr
		where dr.collection='drivers'
		and dr.season=d.season
		and dr.data->>'driverId'=d.data->>'driverId'
	)
		`, collection)
		var orphans int
		if err := row.Scan(&orphans); err != nil {
			return err
		}
		if orphans > 0 {
			report.fail(&ConsistencyError{
				Check: "driver-reference",
				Detail: fmt.Sprintf(
					"%s: %d documents without matching driver", collection, orphans),
			})
		} else {
			report.pass("driver-reference",
				fmt.Sprintf("%s resolves all drivers", collection))
		}
	}
	return nil
}

// checkGenerations verifies that each scope holds exactly one ingestion
// generation: mixed run ids within a scope mean a partially replaced
// scope.
func (h *Harness) checkGenerations(ctx context.Context, report *Report) error {
	rows, err := h.pool.Query(ctx, `
	select collection, season, round, count(distinct run_id)
	from raw_document
	group by collection, season, round
	having count(distinct run_id) > 1
	`)
	if err != nil {
		return err
	}
	defer rows.Close()
	mixed := 0
	for rows.Next() {
		var collection string
		var season, round, generations int
		if err := rows.Scan(&collection, &season, &round, &generations); err != nil {
			return err
		}
		mixed++
		report.fail(&ConsistencyError{
			Check: "generation",
			Detail: fmt.Sprintf(
				"%s season %d round %d holds %d ingestion generations",
				collection, season, round, generations),
		})
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if mixed == 0 {
		report.pass("generation", "every scope holds a single ingestion generation")
	}
	return nil
}

// checkDuplicates verifies that no per-driver collection carries the
// same business key twice (the observable effect of broken idempotency).
func (h *Harness) checkDuplicates(ctx context.Context, report *Report) error {
	for _, collection := range referencingCollections {
		row := h.pool.QueryRow(ctx, `
	select count(*) from (
		select season, round, data->>'driverId',
			coalesce(data->>'lap',''), coalesce(data->>'stop','')
		from raw_document where collection=$1
		group by 1,2,3,4,5
		having count(*) > 1
	) dup
		`, collection)
		var dups int
		if err := row.Scan(&dups); err != nil {
			return err
		}
		if dups > 0 {
			report.fail(&ConsistencyError{
				Check: "duplicate",
				Detail: fmt.Sprintf(
					"%s: %d duplicated business keys", collection, dups),
			})
		} else {
			report.pass("duplicate",
				fmt.Sprintf("%s has no duplicated business keys", collection))
		}
	}
	return nil
}

// LogReport writes all findings via the harness logger.
func (h *Harness) LogReport(report *Report) {
	for _, f := range report.Findings {
		if f.Passed {
			h.l.Info("check passed",
				log.String("check", f.Check), log.String("detail", f.Detail))
		} else {
			h.l.Error("check failed",
				log.String("check", f.Check), log.String("detail", f.Detail))
		}
	}
	h.l.Info("validation finished",
		log.Int("findings", len(report.Findings)),
		log.Int("failures", len(report.Failures())),
		log.Bool("passed", report.Passed()))
}
