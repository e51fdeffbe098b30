package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"tengoku-tracker/internal/db"
	"tengoku-tracker/internal/domain"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type MatchRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewMatchRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// ScoredEntry is a roster line with its delta already computed.
type ScoredEntry struct {
	Player   domain.PlayerResult
	TPChange int
}

type RecordMatchParams struct {
	ExternalID     string
	PlayedAt       time.Time
	FormulaVersion string
	Entries        []ScoredEntry
}

// RecordMatch writes the match, every participation and every ledger update in one
// transaction. It returns domain.ErrAlreadyProcessed when the external id is already stored,
// including when a concurrent writer committed it first.
func (r *MatchRepository) RecordMatch(ctx context.Context, arg RecordMatchParams) ([]domain.ScoredPlayer, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %w", domain.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	_, err = qtx.GetMatchByExternalID(ctx, arg.ExternalID)
	if err == nil {
		return nil, domain.ErrAlreadyProcessed
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: failed to look up match %s: %w", domain.ErrStoreUnavailable, arg.ExternalID, err)
	}

	now := time.Now().UTC()
	matchID, err := qtx.CreateMatch(ctx, db.CreateMatchParams{
		ExternalID:     arg.ExternalID,
		PlayedAt:       arg.PlayedAt.UTC(),
		FormulaVersion: arg.FormulaVersion,
		CreatedAt:      now,
	})
	if isUniqueViolation(err) {
		return nil, domain.ErrAlreadyProcessed
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create match %s: %w", domain.ErrStoreUnavailable, arg.ExternalID, err)
	}

	scored := make([]domain.ScoredPlayer, 0, len(arg.Entries))
	for _, e := range arg.Entries {
		p := e.Player

		user, err := qtx.UpsertUser(ctx, db.UpsertUserParams{
			Puuid:         p.Puuid,
			GameName:      p.GameName,
			TagLine:       p.TagLine,
			ProfileIconID: int64(p.ProfileIconID),
			SummonerLevel: int64(p.Level),
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrPlayerUpsertFailed, p.Puuid, err)
		}

		id, err := gonanoid.New()
		if err != nil {
			return nil, fmt.Errorf("failed to generate nanoid: %w", err)
		}

		err = qtx.CreateParticipation(ctx, db.CreateParticipationParams{
			ID:                id,
			MatchID:           matchID,
			UserID:            user.ID,
			Champion:          p.Champion,
			IsWinner:          p.IsWinner,
			Kills:             int64(p.Kills),
			Deaths:            int64(p.Deaths),
			Assists:           int64(p.Assists),
			Cs:                int64(p.CS),
			Gold:              int64(p.Gold),
			DamageDealt:       int64(p.DamageDealt),
			DamageTaken:       int64(p.DamageTaken),
			TpChange:          int64(e.TPChange),
			FormulaVersion:    arg.FormulaVersion,
			CreatedAt:         now,
			HealOnTeammates:   int64(p.HealOnTeammates),
			ShieldOnTeammates: int64(p.ShieldOnTeammates),
			CcScore:           int64(p.CCScore),
			WasAfk:            p.WasAfk,
			MultiKill:         int64(p.MultiKill),
			KillingSpree:      int64(p.KillingSpree),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: failed to create participation %s/%s: %w", domain.ErrStoreUnavailable, arg.ExternalID, p.Puuid, err)
		}

		tp, err := qtx.ApplyUserTP(ctx, db.ApplyUserTPParams{
			Delta:     int64(e.TPChange),
			UpdatedAt: now,
			ID:        user.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: failed to apply tp for %s: %w", domain.ErrStoreUnavailable, p.Puuid, err)
		}

		r.logger.Debug().
			Str("game_id", arg.ExternalID).
			Str("puuid", p.Puuid).
			Int("tp_change", e.TPChange).
			Int64("tp_before", user.Tp).
			Int64("tp_after", tp).
			Msg("participation recorded")

		scored = append(scored, domain.ScoredPlayer{
			PlayerResult: p,
			TPChange:     e.TPChange,
			TPAfter:      int(tp),
		})
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyProcessed
		}
		return nil, fmt.Errorf("%w: failed to commit match %s: %w", domain.ErrStoreUnavailable, arg.ExternalID, err)
	}

	return scored, nil
}

func (r *MatchRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Match, error) {
	m, err := r.queries.GetMatchByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return &domain.Match{
		ID:             m.ID,
		ExternalID:     m.ExternalID,
		PlayedAt:       m.PlayedAt,
		FormulaVersion: m.FormulaVersion,
		CreatedAt:      m.CreatedAt,
	}, nil
}

func (r *MatchRepository) CountParticipations(ctx context.Context, matchID int64) (int, error) {
	count, err := r.queries.CountParticipationsByMatch(ctx, matchID)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count participations: %w", domain.ErrStoreUnavailable, err)
	}
	return int(count), nil
}

// HistoryForUser returns the user's matches, most recent first, with both rosters attached.
func (r *MatchRepository) HistoryForUser(ctx context.Context, userID int64) ([]domain.MatchHistoryEntry, error) {
	var (
		own     []db.ListParticipationsByUserRow
		rosters []db.ListRostersForUserRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		own, err = r.queries.ListParticipationsByUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		rosters, err = r.queries.ListRostersForUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: failed to load history for user %d: %w", domain.ErrStoreUnavailable, userID, err)
	}
	if len(own) == 0 {
		return []domain.MatchHistoryEntry{}, nil
	}

	type teams struct {
		winners []domain.PublicStats
		losers  []domain.PublicStats
	}
	byMatch := make(map[int64]*teams, len(own))
	for _, row := range rosters {
		t, ok := byMatch[row.MatchID]
		if !ok {
			t = &teams{winners: []domain.PublicStats{}, losers: []domain.PublicStats{}}
			byMatch[row.MatchID] = t
		}
		stats := domain.PublicStats{
			Puuid:         row.Puuid,
			GameName:      row.GameName,
			TagLine:       row.TagLine,
			ProfileIconID: int(row.ProfileIconID),
			Champion:      row.Champion,
			Kills:         int(row.Kills),
			Deaths:        int(row.Deaths),
			Assists:       int(row.Assists),
			CS:            int(row.Cs),
			Gold:          int(row.Gold),
			DamageDealt:   int(row.DamageDealt),
			DamageTaken:   int(row.DamageTaken),
		}
		if row.IsWinner {
			t.winners = append(t.winners, stats)
		} else {
			t.losers = append(t.losers, stats)
		}
	}

	results := make([]domain.MatchHistoryEntry, len(own))
	for i, row := range own {
		entry := domain.MatchHistoryEntry{
			MatchID:        row.MatchID,
			GameID:         row.ExternalID,
			PlayedAt:       row.PlayedAt,
			FormulaVersion: row.FormulaVersion,
			Self: domain.SelfStats{
				Champion:    row.Champion,
				Kills:       int(row.Kills),
				Deaths:      int(row.Deaths),
				Assists:     int(row.Assists),
				CS:          int(row.Cs),
				Gold:        int(row.Gold),
				DamageDealt: int(row.DamageDealt),
				DamageTaken: int(row.DamageTaken),
				IsWinner:    row.IsWinner,
				TPChange:    int(row.TpChange),
			},
		}
		if t, ok := byMatch[row.MatchID]; ok {
			entry.Winners = t.winners
			entry.Losers = t.losers
		}
		results[i] = entry
	}

	return results, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
