package db

import (
	"context"
	"time"
)

const getMatchByExternalID = `-- name: GetMatchByExternalID :one
SELECT id, external_id, played_at, formula_version, created_at
FROM matches
WHERE external_id = ?
`

func (q *Queries) GetMatchByExternalID(ctx context.Context, externalID string) (Match, error) {
	row := q.db.QueryRowContext(ctx, getMatchByExternalID, externalID)
	var i Match
	err := row.Scan(
		&i.ID,
		&i.ExternalID,
		&i.PlayedAt,
		&i.FormulaVersion,
		&i.CreatedAt,
	)
	return i, err
}

const createMatch = `-- name: CreateMatch :execlastid
INSERT INTO matches (external_id, played_at, formula_version, created_at)
VALUES (?, ?, ?, ?)
`

type CreateMatchParams struct {
	ExternalID     string
	PlayedAt       time.Time
	FormulaVersion string
	CreatedAt      time.Time
}

func (q *Queries) CreateMatch(ctx context.Context, arg CreateMatchParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createMatch,
		arg.ExternalID,
		arg.PlayedAt,
		arg.FormulaVersion,
		arg.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}
