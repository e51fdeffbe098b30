package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"tengoku-tracker/internal/db"
	"tengoku-tracker/internal/domain"
	"time"

	"github.com/rs/zerolog"
)

type UserRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
}

func NewUserRepository(queries *db.Queries, logger zerolog.Logger) *UserRepository {
	return &UserRepository{
		queries: queries,
		logger:  logger,
	}
}

func (r *UserRepository) GetByPuuid(ctx context.Context, puuid string) (*domain.User, error) {
	u, err := r.queries.GetUserByPuuid(ctx, puuid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load user %s: %w", domain.ErrStoreUnavailable, puuid, err)
	}

	user := toDomainUser(u)
	return &user, nil
}

// Leaderboard lists every user by tp, ties kept in insertion order.
func (r *UserRepository) Leaderboard(ctx context.Context) ([]domain.User, error) {
	users, err := r.queries.ListLeaderboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list leaderboard: %w", domain.ErrStoreUnavailable, err)
	}

	result := make([]domain.User, len(users))
	for i, u := range users {
		result[i] = toDomainUser(u)
	}
	return result, nil
}

func (r *UserRepository) ParticipationCounts(ctx context.Context, userID int64) (matches, wins int, err error) {
	row, err := r.queries.CountUserParticipations(ctx, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: failed to count participations: %w", domain.ErrStoreUnavailable, err)
	}
	return int(row.Matches), int(row.Wins), nil
}

// ApplyTP adds delta to the user's tp outside of any match, floored at zero like every ledger write.
func (r *UserRepository) ApplyTP(ctx context.Context, puuid string, delta int) (int, error) {
	u, err := r.queries.GetUserByPuuid(ctx, puuid)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	tp, err := r.queries.ApplyUserTP(ctx, db.ApplyUserTPParams{
		Delta:     int64(delta),
		UpdatedAt: time.Now().UTC(),
		ID:        u.ID,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: failed to apply tp for %s: %w", domain.ErrStoreUnavailable, puuid, err)
	}

	r.logger.Info().Str("puuid", puuid).Int("tp_change", delta).Int64("tp_after", tp).Msg("manual tp adjustment")
	return int(tp), nil
}

func toDomainUser(u db.User) domain.User {
	return domain.User{
		ID:            u.ID,
		Puuid:         u.Puuid,
		GameName:      u.GameName,
		TagLine:       u.TagLine,
		ProfileIconID: int(u.ProfileIconID),
		SummonerLevel: int(u.SummonerLevel),
		TP:            int(u.Tp),
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
