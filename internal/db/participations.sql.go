package db

import (
	"context"
	"time"
)

const createParticipation = `-- name: CreateParticipation :exec
INSERT INTO participations (
    id, match_id, user_id, champion, is_winner,
    kills, deaths, assists, cs, gold, damage_dealt, damage_taken,
    tp_change, formula_version, created_at,
    heal_on_teammates, shield_on_teammates, cc_score, was_afk, multi_kill, killing_spree
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateParticipationParams struct {
	ID                string
	MatchID           int64
	UserID            int64
	Champion          string
	IsWinner          bool
	Kills             int64
	Deaths            int64
	Assists           int64
	Cs                int64
	Gold              int64
	DamageDealt       int64
	DamageTaken       int64
	TpChange          int64
	FormulaVersion    string
	CreatedAt         time.Time
	HealOnTeammates   int64
	ShieldOnTeammates int64
	CcScore           int64
	WasAfk            bool
	MultiKill         int64
	KillingSpree      int64
}

func (q *Queries) CreateParticipation(ctx context.Context, arg CreateParticipationParams) error {
	_, err := q.db.ExecContext(ctx, createParticipation,
		arg.ID,
		arg.MatchID,
		arg.UserID,
		arg.Champion,
		arg.IsWinner,
		arg.Kills,
		arg.Deaths,
		arg.Assists,
		arg.Cs,
		arg.Gold,
		arg.DamageDealt,
		arg.DamageTaken,
		arg.TpChange,
		arg.FormulaVersion,
		arg.CreatedAt,
		arg.HealOnTeammates,
		arg.ShieldOnTeammates,
		arg.CcScore,
		arg.WasAfk,
		arg.MultiKill,
		arg.KillingSpree,
	)
	return err
}

const countParticipationsByMatch = `-- name: CountParticipationsByMatch :one
SELECT COUNT(*) FROM participations WHERE match_id = ?
`

func (q *Queries) CountParticipationsByMatch(ctx context.Context, matchID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countParticipationsByMatch, matchID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countUserParticipations = `-- name: CountUserParticipations :one
SELECT COUNT(*) AS matches, COALESCE(SUM(CASE WHEN is_winner THEN 1 ELSE 0 END), 0) AS wins
FROM participations
WHERE user_id = ?
`

type CountUserParticipationsRow struct {
	Matches int64
	Wins    int64
}

func (q *Queries) CountUserParticipations(ctx context.Context, userID int64) (CountUserParticipationsRow, error) {
	row := q.db.QueryRowContext(ctx, countUserParticipations, userID)
	var i CountUserParticipationsRow
	err := row.Scan(&i.Matches, &i.Wins)
	return i, err
}

const listParticipationsByUser = `-- name: ListParticipationsByUser :many
SELECT p.match_id, m.external_id, m.played_at, p.formula_version,
       p.champion, p.is_winner, p.kills, p.deaths, p.assists, p.cs, p.gold,
       p.damage_dealt, p.damage_taken, p.tp_change
FROM participations p
JOIN matches m ON m.id = p.match_id
WHERE p.user_id = ?
ORDER BY m.played_at DESC, m.id DESC
`

type ListParticipationsByUserRow struct {
	MatchID        int64
	ExternalID     string
	PlayedAt       time.Time
	FormulaVersion string
	Champion       string
	IsWinner       bool
	Kills          int64
	Deaths         int64
	Assists        int64
	Cs             int64
	Gold           int64
	DamageDealt    int64
	DamageTaken    int64
	TpChange       int64
}

func (q *Queries) ListParticipationsByUser(ctx context.Context, userID int64) ([]ListParticipationsByUserRow, error) {
	rows, err := q.db.QueryContext(ctx, listParticipationsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListParticipationsByUserRow
	for rows.Next() {
		var i ListParticipationsByUserRow
		if err := rows.Scan(
			&i.MatchID,
			&i.ExternalID,
			&i.PlayedAt,
			&i.FormulaVersion,
			&i.Champion,
			&i.IsWinner,
			&i.Kills,
			&i.Deaths,
			&i.Assists,
			&i.Cs,
			&i.Gold,
			&i.DamageDealt,
			&i.DamageTaken,
			&i.TpChange,
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

// tp_change is left out on purpose: rosters are public, deltas are not.
const listRostersForUser = `-- name: ListRostersForUser :many
SELECT p.match_id, p.is_winner, u.puuid, u.game_name, u.tag_line, u.profile_icon_id,
       p.champion, p.kills, p.deaths, p.assists, p.cs, p.gold, p.damage_dealt, p.damage_taken
FROM participations p
JOIN users u ON u.id = p.user_id
WHERE p.match_id IN (SELECT match_id FROM participations WHERE user_id = ?)
ORDER BY p.match_id, p.rowid
`

type ListRostersForUserRow struct {
	MatchID       int64
	IsWinner      bool
	Puuid         string
	GameName      string
	TagLine       string
	ProfileIconID int64
	Champion      string
	Kills         int64
	Deaths        int64
	Assists       int64
	Cs            int64
	Gold          int64
	DamageDealt   int64
	DamageTaken   int64
}

func (q *Queries) ListRostersForUser(ctx context.Context, userID int64) ([]ListRostersForUserRow, error) {
	rows, err := q.db.QueryContext(ctx, listRostersForUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListRostersForUserRow
	for rows.Next() {
		var i ListRostersForUserRow
		if err := rows.Scan(
			&i.MatchID,
			&i.IsWinner,
			&i.Puuid,
			&i.GameName,
			&i.TagLine,
			&i.ProfileIconID,
			&i.Champion,
			&i.Kills,
			&i.Deaths,
			&i.Assists,
			&i.Cs,
			&i.Gold,
			&i.DamageDealt,
			&i.DamageTaken,
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
