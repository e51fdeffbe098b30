package service

import (
	"context"
	"errors"
	"sync"
	"tengoku-tracker/internal/constants"
	"tengoku-tracker/internal/domain"
	"tengoku-tracker/internal/repository"
	"tengoku-tracker/internal/scoring"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

type MatchStore interface {
	RecordMatch(ctx context.Context, arg repository.RecordMatchParams) ([]domain.ScoredPlayer, error)
}

// Notifier announces recorded matches. Implementations own their failures.
type Notifier interface {
	Announce(ctx context.Context, result *domain.MatchResult)
}

type MatchService struct {
	store    MatchStore
	notifier Notifier
	cache    LeaderboardCache
	formula  scoring.Formula
	logger   zerolog.Logger

	inflight      singleflight.Group
	notifications sync.WaitGroup
}

func NewMatchService(store MatchStore, notifier Notifier, cache LeaderboardCache, formula scoring.Formula, logger zerolog.Logger) *MatchService {
	return &MatchService{store: store, notifier: notifier, cache: cache, formula: formula, logger: logger}
}

// SubmitMatch records a match exactly once. Re-submitting a stored game id returns
// StatusAlreadyRecorded and changes nothing, so callers may retry freely.
func (s *MatchService) SubmitMatch(ctx context.Context, sub domain.MatchSubmission) (*domain.MatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	log := s.logger.With().Str("game_id", sub.GameID).Int("players", len(sub.Players)).Logger()

	playedAt, err := ValidateSubmission(sub)
	if err != nil {
		log.Warn().Err(err).Msg("rejected match submission")
		return nil, err
	}

	// detached from the caller: every collapsed submission waits on this one call
	executed := false
	ch := s.inflight.DoChan(sub.GameID, func() (interface{}, error) {
		executed = true
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.RequestTimeout)
		defer cancel()
		return s.record(shared, sub, playedAt)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		log.Warn().Err(ctx.Err()).Msg("caller gave up before the match was recorded")
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}

	result := res.Val.(*domain.MatchResult)
	if !executed && result.Status == domain.StatusRecorded {
		// collapsed onto a concurrent submission of the same game
		dup := *result
		dup.Status = domain.StatusAlreadyRecorded
		log.Info().Msg("match recorded by a concurrent submission")
		return &dup, nil
	}
	return result, nil
}

func (s *MatchService) record(ctx context.Context, sub domain.MatchSubmission, playedAt time.Time) (*domain.MatchResult, error) {
	log := s.logger.With().Str("game_id", sub.GameID).Str("formula", s.formula.Version()).Logger()

	entries := make([]repository.ScoredEntry, len(sub.Players))
	for i, p := range sub.Players {
		entries[i] = repository.ScoredEntry{
			Player:   p,
			TPChange: s.formula.Delta(p, scoring.TeamOf(p, sub.Players)),
		}
	}

	scored, err := s.store.RecordMatch(ctx, repository.RecordMatchParams{
		ExternalID:     sub.GameID,
		PlayedAt:       playedAt,
		FormulaVersion: s.formula.Version(),
		Entries:        entries,
	})
	if errors.Is(err, domain.ErrAlreadyProcessed) {
		log.Warn().Msg("match already recorded, duplicate ignored")
		return &domain.MatchResult{
			Status:   domain.StatusAlreadyRecorded,
			GameID:   sub.GameID,
			PlayedAt: playedAt,
		}, nil
	}
	if err != nil {
		err = storeError(err)
		log.Error().Err(err).Msg("failed to record match")
		return nil, err
	}

	result := &domain.MatchResult{
		Status:         domain.StatusRecorded,
		GameID:         sub.GameID,
		PlayedAt:       playedAt,
		FormulaVersion: s.formula.Version(),
		Players:        scored,
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate leaderboard cache")
	}

	log.Info().Int("players", len(scored)).Msg("match recorded")

	s.announce(result)
	return result, nil
}

func (s *MatchService) announce(result *domain.MatchResult) {
	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()

		ctx, cancel := context.WithTimeout(context.Background(), constants.NotifyTimeout)
		defer cancel()

		s.notifier.Announce(ctx, result)
	}()
}

// Wait blocks until pending announcements finish or ctx is done.
func (s *MatchService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.notifications.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
