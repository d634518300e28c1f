//nolint:funlen,errcheck // ok for this test code
package rawdoc

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"gotest.tools/v3/assert"

	"github.com/racevision/ingest-service-go/pkg/model"
	"github.com/racevision/ingest-service-go/testsupport/testdb"
)

func sampleDocs(
	collection string, scope model.Scope, runID uuid.UUID, n int,
) []*model.RawDocument {
	ret := make([]*model.RawDocument, n)
	for i := range n {
		ret[i] = &model.RawDocument{
			Collection: collection,
			Envelope: model.Envelope{
				Season:         scope.Season,
				Round:          scope.Round,
				SourceEndpoint: "test/endpoint",
				IngestedAt:     time.Now().UTC(),
				DataSource:     "test",
				RunID:          runID,
			},
			Data: map[string]any{"round": scope.Round, "idx": i},
		}
	}
	return ret
}

func TestReplaceScope(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	scope := model.Scope{Season: 2023, Round: 5}

	firstRun := uuid.Must(uuid.NewV7())
	inserted, err := ReplaceScope(ctx, pool, "results", scope,
		sampleDocs("results", scope, firstRun, 3))
	assert.NilError(t, err)
	assert.Equal(t, 3, inserted)

	// replacing the scope leaves no trace of the previous generation
	secondRun := uuid.Must(uuid.NewV7())
	inserted, err = ReplaceScope(ctx, pool, "results", scope,
		sampleDocs("results", scope, secondRun, 2))
	assert.NilError(t, err)
	assert.Equal(t, 2, inserted)

	docs, err := LoadScope(ctx, pool, "results", scope)
	assert.NilError(t, err)
	assert.Equal(t, 2, len(docs))
	for _, doc := range docs {
		assert.Equal(t, secondRun, doc.RunID)
	}
}

func TestReplaceScopeLeavesOtherScopesAlone(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	runID := uuid.Must(uuid.NewV7())

	scopeA := model.Scope{Season: 2023, Round: 1}
	scopeB := model.Scope{Season: 2023, Round: 2}
	_, err := ReplaceScope(ctx, pool, "results", scopeA,
		sampleDocs("results", scopeA, runID, 2))
	assert.NilError(t, err)
	_, err = ReplaceScope(ctx, pool, "results", scopeB,
		sampleDocs("results", scopeB, runID, 3))
	assert.NilError(t, err)

	_, err = ReplaceScope(ctx, pool, "results", scopeA,
		sampleDocs("results", scopeA, runID, 1))
	assert.NilError(t, err)

	countA, err := CountScope(ctx, pool, "results", scopeA)
	assert.NilError(t, err)
	assert.Equal(t, 1, countA)
	countB, err := CountScope(ctx, pool, "results", scopeB)
	assert.NilError(t, err)
	assert.Equal(t, 3, countB)
}

func TestCollectionCounts(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	runID := uuid.Must(uuid.NewV7())

	scope := model.Scope{Season: 2023}
	_, err := ReplaceScope(ctx, pool, "races", scope,
		sampleDocs("races", scope, runID, 4))
	assert.NilError(t, err)
	_, err = ReplaceScope(ctx, pool, "drivers", scope,
		sampleDocs("drivers", scope, runID, 2))
	assert.NilError(t, err)

	counts, err := CollectionCounts(ctx, pool)
	assert.NilError(t, err)
	assert.DeepEqual(t, map[string]int{"races": 4, "drivers": 2}, counts)
}

func TestListRounds(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	runID := uuid.Must(uuid.NewV7())

	scope := model.Scope{Season: 2023}
	docs := []*model.RawDocument{}
	for _, round := range []int{3, 1, 2} {
		docs = append(docs, &model.RawDocument{
			Collection: "races",
			Envelope: model.Envelope{
				Season: 2023, SourceEndpoint: "2023/races",
				IngestedAt: time.Now().UTC(), DataSource: "test", RunID: runID,
			},
			Data: map[string]any{"round": round},
		})
	}
	_, err := ReplaceScope(ctx, pool, "races", scope, docs)
	assert.NilError(t, err)

	rounds, err := ListRounds(ctx, pool, 2023)
	assert.NilError(t, err)
	assert.DeepEqual(t, []int{1, 2, 3}, rounds)

	rounds, err = ListRounds(ctx, pool, 1999)
	assert.NilError(t, err)
	assert.Equal(t, 0, len(rounds))
}

func TestLoadScopePayload(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	runID := uuid.Must(uuid.NewV7())

	scope := model.Scope{Season: 2023, Round: 1}
	docs := sampleDocs("pitstops", scope, runID, 1)
	docs[0].Data = map[string]any{"driverId": "max_verstappen", "stop": 1}
	_, err := ReplaceScope(ctx, pool, "pitstops", scope, docs)
	assert.NilError(t, err)

	loaded, err := LoadScope(ctx, pool, "pitstops", scope)
	assert.NilError(t, err)
	assert.Equal(t, 1, len(loaded))

	var payload map[string]any
	assert.NilError(t, json.Unmarshal(loaded[0].Data.(json.RawMessage), &payload))
	assert.Equal(t, "max_verstappen", payload["driverId"])
}

func TestDeleteCollection(t *testing.T) {
	pool := testdb.InitTestDb()
	ctx := context.Background()
	runID := uuid.Must(uuid.NewV7())

	scope := model.Scope{Season: 2023}
	_, err := ReplaceScope(ctx, pool, "races", scope,
		sampleDocs("races", scope, runID, 4))
	assert.NilError(t, err)

	deleted, err := DeleteCollection(ctx, pool, "races")
	assert.NilError(t, err)
	assert.Equal(t, 4, deleted)

	count, err := CountCollection(ctx, pool, "races")
	assert.NilError(t, err)
	assert.Equal(t, 0, count)
}
