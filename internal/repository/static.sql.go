package repository

import "context"

const getStatic = `-- name: GetStatic :one
SELECT value FROM static WHERE key = $1 AND year = $2
`

type GetStaticParams struct {
	Key  string
	Year int32
}

func (q *Queries) GetStatic(ctx context.Context, arg GetStaticParams) ([]byte, error) {
	var value []byte
	err := q.db.QueryRow(ctx, getStatic, arg.Key, arg.Year).Scan(&value)
	return value, err
}

const upsertStatic = `-- name: UpsertStatic :exec
INSERT INTO static (key, year, value) VALUES ($1, $2, $3)
ON CONFLICT (key, year) DO UPDATE SET value = EXCLUDED.value
`

type UpsertStaticParams struct {
	Key   string
	Year  int32
	Value []byte
}

func (q *Queries) UpsertStatic(ctx context.Context, arg UpsertStaticParams) error {
	_, err := q.db.Exec(ctx, upsertStatic, arg.Key, arg.Year, arg.Value)
	return err
}

const getWordUsage = `-- name: GetWordUsage :one
SELECT data FROM word_usage WHERE word = $1 AND year = $2
`

type GetWordUsageParams struct {
	Word string
	Year int32
}

func (q *Queries) GetWordUsage(ctx context.Context, arg GetWordUsageParams) ([]byte, error) {
	var data []byte
	err := q.db.QueryRow(ctx, getWordUsage, arg.Word, arg.Year).Scan(&data)
	return data, err
}

const deleteWordUsageForYear = `-- name: DeleteWordUsageForYear :execrows
DELETE FROM word_usage WHERE year = $1
`

func (q *Queries) DeleteWordUsageForYear(ctx context.Context, year int32) (int64, error) {
	result, err := q.db.Exec(ctx, deleteWordUsageForYear, year)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// WordUsageStagingTable is the temp table filled with CopyFrom before
// UpsertWordUsageFromStaging.
const WordUsageStagingTable = "temp_word_usage_staging"

const createTempWordUsageStagingTable = `-- name: CreateTempWordUsageStagingTable :exec
CREATE TEMP TABLE temp_word_usage_staging (
    word TEXT    NOT NULL,
    year INTEGER NOT NULL,
    data JSONB   NOT NULL
) ON COMMIT DROP
`

func (q *Queries) CreateTempWordUsageStagingTable(ctx context.Context) error {
	_, err := q.db.Exec(ctx, createTempWordUsageStagingTable)
	return err
}

const upsertWordUsageFromStaging = `-- name: UpsertWordUsageFromStaging :execrows
INSERT INTO word_usage (word, year, data)
SELECT word, year, data FROM temp_word_usage_staging
ON CONFLICT (word, year) DO UPDATE SET data = EXCLUDED.data
`

func (q *Queries) UpsertWordUsageFromStaging(ctx context.Context) (int64, error) {
	result, err := q.db.Exec(ctx, upsertWordUsageFromStaging)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
