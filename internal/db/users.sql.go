package db

import (
	"context"
	"time"
)

const upsertUser = `-- name: UpsertUser :one
INSERT INTO users (puuid, game_name, tag_line, profile_icon_id, summoner_level, tp, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, 0, ?, ?)
ON CONFLICT (puuid) DO UPDATE SET
    game_name = excluded.game_name,
    tag_line = excluded.tag_line,
    profile_icon_id = excluded.profile_icon_id,
    summoner_level = excluded.summoner_level,
    updated_at = excluded.updated_at
RETURNING id, tp
`

type UpsertUserParams struct {
	Puuid         string
	GameName      string
	TagLine       string
	ProfileIconID int64
	SummonerLevel int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type UpsertUserRow struct {
	ID int64
	Tp int64
}

func (q *Queries) UpsertUser(ctx context.Context, arg UpsertUserParams) (UpsertUserRow, error) {
	row := q.db.QueryRowContext(ctx, upsertUser,
		arg.Puuid,
		arg.GameName,
		arg.TagLine,
		arg.ProfileIconID,
		arg.SummonerLevel,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var i UpsertUserRow
	err := row.Scan(&i.ID, &i.Tp)
	return i, err
}

const applyUserTP = `-- name: ApplyUserTP :one
UPDATE users
SET tp = MAX(tp + ?, 0), updated_at = ?
WHERE id = ?
RETURNING tp
`

type ApplyUserTPParams struct {
	Delta     int64
	UpdatedAt time.Time
	ID        int64
}

func (q *Queries) ApplyUserTP(ctx context.Context, arg ApplyUserTPParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, applyUserTP, arg.Delta, arg.UpdatedAt, arg.ID)
	var tp int64
	err := row.Scan(&tp)
	return tp, err
}

const getUserByPuuid = `-- name: GetUserByPuuid :one
SELECT id, puuid, game_name, tag_line, profile_icon_id, summoner_level, tp, created_at, updated_at
FROM users
WHERE puuid = ?
`

func (q *Queries) GetUserByPuuid(ctx context.Context, puuid string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByPuuid, puuid)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Puuid,
		&i.GameName,
		&i.TagLine,
		&i.ProfileIconID,
		&i.SummonerLevel,
		&i.Tp,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listLeaderboard = `-- name: ListLeaderboard :many
SELECT id, puuid, game_name, tag_line, profile_icon_id, summoner_level, tp, created_at, updated_at
FROM users
ORDER BY tp DESC, id ASC
`

func (q *Queries) ListLeaderboard(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listLeaderboard)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		var i User
		if err := rows.Scan(
			&i.ID,
			&i.Puuid,
			&i.GameName,
			&i.TagLine,
			&i.ProfileIconID,
			&i.SummonerLevel,
			&i.Tp,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
