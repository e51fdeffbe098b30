package service

import (
	"context"
	"tengoku-tracker/internal/constants"
	"tengoku-tracker/internal/domain"

	"github.com/rs/zerolog"
)

// LeaderboardCache holds the last computed leaderboard. A miss is (nil, false, nil).
type LeaderboardCache interface {
	Get(ctx context.Context) ([]domain.LeaderboardEntry, bool, error)
	Set(ctx context.Context, entries []domain.LeaderboardEntry) error
	Invalidate(ctx context.Context) error
}

type UserStore interface {
	GetByPuuid(ctx context.Context, puuid string) (*domain.User, error)
	Leaderboard(ctx context.Context) ([]domain.User, error)
	ParticipationCounts(ctx context.Context, userID int64) (matches, wins int, err error)
	ApplyTP(ctx context.Context, puuid string, delta int) (int, error)
}

type HistoryStore interface {
	HistoryForUser(ctx context.Context, userID int64) ([]domain.MatchHistoryEntry, error)
}

type LeaderboardService struct {
	users   UserStore
	history HistoryStore
	cache   LeaderboardCache
	logger  zerolog.Logger
}

func NewLeaderboardService(users UserStore, history HistoryStore, cache LeaderboardCache, logger zerolog.Logger) *LeaderboardService {
	return &LeaderboardService{users: users, history: history, cache: cache, logger: logger}
}

// Leaderboard returns every user ordered by tp descending, ties in registration order.
func (s *LeaderboardService) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	cached, ok, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("leaderboard cache read failed, falling back to store")
	}
	if ok {
		s.logger.Debug().Int("entries", len(cached)).Msg("returning cached leaderboard")
		return cached, nil
	}

	users, err := s.users.Leaderboard(ctx)
	if err != nil {
		err = storeError(err)
		s.logger.Error().Err(err).Msg("failed to list leaderboard")
		return nil, err
	}

	entries := make([]domain.LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = domain.LeaderboardEntry{
			ID:          u.ID,
			Puuid:       u.Puuid,
			DisplayName: u.GameName,
			Icon:        u.ProfileIconID,
			TP:          u.TP,
			Rank:        domain.RankFromTP(u.TP),
		}
	}

	if err := s.cache.Set(ctx, entries); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache leaderboard")
	}

	return entries, nil
}

// History returns the player's matches, most recent first. Other players' deltas are never exposed.
func (s *LeaderboardService) History(ctx context.Context, puuid string) ([]domain.MatchHistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	user, err := s.users.GetByPuuid(ctx, puuid)
	if err != nil {
		return nil, storeError(err)
	}

	entries, err := s.history.HistoryForUser(ctx, user.ID)
	if err != nil {
		err = storeError(err)
		s.logger.Error().Err(err).Str("puuid", puuid).Msg("failed to load match history")
		return nil, err
	}

	s.logger.Debug().Str("puuid", puuid).Int("matches", len(entries)).Msg("match history loaded")
	return entries, nil
}

func (s *LeaderboardService) Profile(ctx context.Context, puuid string) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	user, err := s.users.GetByPuuid(ctx, puuid)
	if err != nil {
		return nil, storeError(err)
	}

	matches, wins, err := s.users.ParticipationCounts(ctx, user.ID)
	if err != nil {
		err = storeError(err)
		s.logger.Error().Err(err).Str("puuid", puuid).Msg("failed to count participations")
		return nil, err
	}

	return &domain.Profile{
		User:    *user,
		Rank:    domain.RankFromTP(user.TP),
		Matches: matches,
		Wins:    wins,
	}, nil
}

// AdjustTP applies a manual correction to a player's tp and drops the cached leaderboard.
func (s *LeaderboardService) AdjustTP(ctx context.Context, puuid string, delta int) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	tp, err := s.users.ApplyTP(ctx, puuid, delta)
	if err != nil {
		return 0, storeError(err)
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate leaderboard cache")
	}
	return tp, nil
}
