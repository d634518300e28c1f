//nolint:funlen,errcheck // ok for this test code
package validate

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/racevision/ingest-service-go/pkg/model"
	"github.com/racevision/ingest-service-go/pkg/repository/rawdoc"
	"github.com/racevision/ingest-service-go/testsupport/testdb"
)

func wrap(collection string, scope model.Scope, runID uuid.UUID, data any,
) *model.RawDocument {
	return &model.RawDocument{
		Collection: collection,
		Envelope: model.Envelope{
			Season:         scope.Season,
			Round:          scope.Round,
			SourceEndpoint: "test/endpoint",
			IngestedAt:     time.Now().UTC(),
			DataSource:     "test",
			RunID:          runID,
		},
		Data: data,
	}
}

// seedConsistentStore fills all collections with a minimal consistent
// season: 2023, one round, one driver, one constructor.
func seedConsistentStore(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()
	runID := uuid.Must(uuid.NewV7())
	global := model.Scope{}
	season := model.Scope{Season: 2023}
	round := model.Scope{Season: 2023, Round: 1}
	ten := decimal.NewFromInt(10)

	seed := map[string][]*model.RawDocument{
		"seasons": {wrap("seasons", global, runID,
			&model.SeasonDoc{Year: 2023, URL: "http://example.com/2023"})},
		"circuits": {wrap("circuits", global, runID,
			&model.CircuitDoc{CircuitID: "monza", Name: "Monza"})},
		"races": {wrap("races", season, runID,
			&model.RaceDoc{RaceID: "2023_1", Year: 2023, Round: 1, CircuitID: "monza"})},
		"drivers": {wrap("drivers", season, runID,
			&model.DriverDoc{DriverID: "max_verstappen"})},
		"constructors": {wrap("constructors", season, runID,
			&model.ConstructorDoc{ConstructorID: "red_bull"})},
		"results": {wrap("results", round, runID,
			&model.RaceResultDoc{
				RaceID: "2023_1", DriverID: "max_verstappen", Points: ten,
			})},
		"qualifying": {wrap("qualifying", round, runID,
			&model.QualifyingResultDoc{
				RaceID: "2023_1", DriverID: "max_verstappen", Position: 1,
			})},
		"sprint": {wrap("sprint", round, runID,
			&model.SprintResultDoc{
				RaceID: "2023_1", DriverID: "max_verstappen", Points: ten,
			})},
		"pitstops": {wrap("pitstops", round, runID,
			&model.PitStopDoc{
				RaceID: "2023_1", DriverID: "max_verstappen", Stop: 1, Lap: 15,
			})},
		"laptimes": {wrap("laptimes", round, runID,
			&model.LapTimeDoc{
				RaceID: "2023_1", DriverID: "max_verstappen", Lap: 1, Position: 1,
			})},
		"driver_standings": {wrap("driver_standings", season, runID,
			&model.DriverStandingDoc{
				DriverID: "max_verstappen", Position: 1, Points: ten,
			})},
		"constructor_standings": {wrap("constructor_standings", season, runID,
			&model.ConstructorStandingDoc{
				ConstructorID: "red_bull", Position: 1, Points: ten,
			})},
	}
	for collection, docs := range seed {
		scope := model.Scope{
			Season: docs[0].Season,
			Round:  docs[0].Round,
		}
		_, err := rawdoc.ReplaceScope(ctx, pool, collection, scope, docs)
		assert.NoError(t, err)
	}
}

func failuresByCheck(report *Report, check string) []Finding {
	var ret []Finding
	for _, f := range report.Failures() {
		if f.Check == check {
			ret = append(ret, f)
		}
	}
	return ret
}

func TestHarnessConsistentStore(t *testing.T) {
	pool := testdb.InitTestDb()
	seedConsistentStore(t, pool)

	h := NewHarness(pool, nil)
	report, err := h.Run(context.Background())
	assert.NoError(t, err)
	assert.True(t, report.Passed(), "failures: %v", report.Failures())
}

func TestHarnessEmptyCollection(t *testing.T) {
	pool := testdb.InitTestDb()
	seedConsistentStore(t, pool)
	_, err := rawdoc.DeleteCollection(context.Background(), pool, "circuits")
	assert.NoError(t, err)

	h := NewHarness(pool, nil)
	report, err := h.Run(context.Background())
	assert.NoError(t, err)
	assert.False(t, report.Passed())
	assert.Len(t, failuresByCheck(report, "existence"), 1)
}

func TestHarnessOrphanedRaceReference(t *testing.T) {
	pool := testdb.InitTestDb()
	seedConsistentStore(t, pool)
	ctx := context.Background()

	runID := uuid.Must(uuid.NewV7())
	orphanScope := model.Scope{Season: 2023, Round: 99}
	_, err := rawdoc.ReplaceScope(ctx, pool, "results", orphanScope,
		[]*model.RawDocument{wrap("results", orphanScope, runID,
			&model.RaceResultDoc{RaceID: "2023_99", DriverID: "max_verstappen"})})
	assert.NoError(t, err)

	h := NewHarness(pool, nil)
	report, err := h.Run(ctx)
	assert.NoError(t, err)
	assert.False(t, report.Passed())
	assert.Len(t, failuresByCheck(report, "race-reference"), 1)
}

func TestHarnessOrphanedDriverReference(t *testing.T) {
	pool := testdb.InitTestDb()
	seedConsistentStore(t, pool)
	ctx := context.Background()

	runID := uuid.Must(uuid.NewV7())
	scope := model.Scope{Season: 2023, Round: 1}
	_, err := rawdoc.ReplaceScope(ctx, pool, "pitstops", scope,
		[]*model.RawDocument{wrap("pitstops", scope, runID,
			&model.PitStopDoc{RaceID: "2023_1", DriverID: "ghost", Stop: 1})})
	assert.NoError(t, err)

	h := NewHarness(pool, nil)
	report, err := h.Run(ctx)
	assert.NoError(t, err)
	assert.False(t, report.Passed())
	assert.Len(t, failuresByCheck(report, "driver-reference"), 1)
}

func TestHarnessMixedGenerations(t *testing.T) {
	pool := testdb.InitTestDb()
	seedConsistentStore(t, pool)
	ctx := context.Background()

	// inject a second generation into an existing scope, bypassing the
	// replace semantics
	_, err := pool.Exec(ctx, `
	insert into raw_document
	(collection, season, round, source_endpoint, ingested_at, data_source, run_id, data)
	values ('results', 2023, 1, 'test/endpoint', now(), 'test', $1,
		'{"raceId":"2023_1","driverId":"max_verstappen"}')
	`, uuid.Must(uuid.NewV7()))
	assert.NoError(t, err)

	h := NewHarness(pool, nil)
	report, err := h.Run(ctx)
	assert.NoError(t, err)
	assert.False(t, report.Passed())
	assert.Len(t, failuresByCheck(report, "generation"), 1)
}

func TestHarnessDuplicateBusinessKeys(t *testing.T) {
	pool := testdb.InitTestDb()
	seedConsistentStore(t, pool)
	ctx := context.Background()

	runID := uuid.Must(uuid.NewV7())
	scope := model.Scope{Season: 2023, Round: 1}
	dup := &model.QualifyingResultDoc{
		RaceID: "2023_1", DriverID: "max_verstappen", Position: 1,
	}
	_, err := rawdoc.ReplaceScope(ctx, pool, "qualifying", scope,
		[]*model.RawDocument{
			wrap("qualifying", scope, runID, dup),
			wrap("qualifying", scope, runID, dup),
		})
	assert.NoError(t, err)

	h := NewHarness(pool, nil)
	report, err := h.Run(ctx)
	assert.NoError(t, err)
	assert.False(t, report.Passed())
	assert.Len(t, failuresByCheck(report, "duplicate"), 1)
}
