//nolint:whitespace // can't make both editor and linter happy
package rawdoc

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/racevision/ingest-service-go/pkg/model"
	"github.com/racevision/ingest-service-go/pkg/repository"
)

// ReplaceScope deletes all documents of the (collection, season, round)
// scope and inserts the given documents in one transaction. This is the
// idempotency mechanism: after a successful call the scope holds exactly
// one ingestion generation. Returns the number of inserted documents.
func ReplaceScope(
	ctx context.Context,
	pool *pgxpool.Pool,
	collection string,
	scope model.Scope,
	docs []*model.RawDocument,
) (int, error) {
	var inserted int64
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
	delete from raw_document where collection=$1 and season=$2 and round=$3
		`, collection, scope.Season, scope.Round); err != nil {
			return err
		}
		var err error
		inserted, err = tx.CopyFrom(ctx,
			pgx.Identifier{"raw_document"},
			[]string{
				"collection", "season", "round", "source_endpoint",
				"ingested_at", "data_source", "run_id", "data",
			},
			pgx.CopyFromSlice(len(docs), func(i int) ([]any, error) {
				d := docs[i]
				data, err := json.Marshal(d.Data)
				if err != nil {
					return nil, err
				}
				return []any{
					d.Collection, d.Season, d.Round, d.SourceEndpoint,
					d.IngestedAt, d.DataSource, d.RunID, data,
				}, nil
			}),
		)
		return err
	})
	if err != nil {
		return 0, err
	}
	return int(inserted), nil
}

func CountScope(
	ctx context.Context,
	conn repository.Querier,
	collection string,
	scope model.Scope,
) (int, error) {
	row := conn.QueryRow(ctx, `
	select count(*) from raw_document
	where collection=$1 and season=$2 and round=$3
	`, collection, scope.Season, scope.Round)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func CountCollection(
	ctx context.Context,
	conn repository.Querier,
	collection string,
) (int, error) {
	row := conn.QueryRow(ctx,
		"select count(*) from raw_document where collection=$1", collection)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CollectionCounts returns the document count per collection.
func CollectionCounts(ctx context.Context, conn repository.Querier) (
	map[string]int, error,
) {
	rows, err := conn.Query(ctx, `
	select collection, count(*) from raw_document group by collection
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := map[string]int{}
	for rows.Next() {
		var collection string
		var count int
		if err := rows.Scan(&collection, &count); err != nil {
			return nil, err
		}
		ret[collection] = count
	}
	return ret, rows.Err()
}

// ListRounds returns the rounds of a season known to the races
// collection, in ascending order.
func ListRounds(ctx context.Context, conn repository.Querier, season int) (
	[]int, error,
) {
	rows, err := conn.Query(ctx, `
	select distinct (data->>'round')::int as round from raw_document
	where collection='races' and season=$1 order by round
	`, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ret []int
	for rows.Next() {
		var round int
		if err := rows.Scan(&round); err != nil {
			return nil, err
		}
		ret = append(ret, round)
	}
	return ret, rows.Err()
}

// DistinctSeasons returns the distinct envelope seasons of a collection.
func DistinctSeasons(ctx context.Context, conn repository.Querier, collection string) (
	[]int, error,
) {
	rows, err := conn.Query(ctx, `
	select distinct season from raw_document where collection=$1 order by season
	`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ret []int
	for rows.Next() {
		var season int
		if err := rows.Scan(&season); err != nil {
			return nil, err
		}
		ret = append(ret, season)
	}
	return ret, rows.Err()
}

// LoadScope returns the documents of a scope with their payload as
// raw JSON, ordered by insertion.
func LoadScope(
	ctx context.Context,
	conn repository.Querier,
	collection string,
	scope model.Scope,
) ([]*model.RawDocument, error) {
	rows, err := conn.Query(ctx, `
	select id, collection, season, round, source_endpoint, ingested_at,
	data_source, run_id, data
	from raw_document
	where collection=$1 and season=$2 and round=$3 order by id
	`, collection, scope.Season, scope.Round)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ret []*model.RawDocument
	for rows.Next() {
		var item model.RawDocument
		var data json.RawMessage
		if err := rows.Scan(
			&item.ID, &item.Collection, &item.Season, &item.Round,
			&item.SourceEndpoint, &item.IngestedAt, &item.DataSource,
			&item.RunID, &data,
		); err != nil {
			return nil, err
		}
		item.Data = data
		ret = append(ret, &item)
	}
	return ret, rows.Err()
}

// DeleteCollection removes all documents of a collection, returns the
// number of rows deleted.
func DeleteCollection(ctx context.Context, conn repository.Querier, collection string) (
	int, error,
) {
	cmdTag, err := conn.Exec(ctx,
		"delete from raw_document where collection=$1", collection)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}
