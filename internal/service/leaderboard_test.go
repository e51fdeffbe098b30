package service

import (
	"context"
	"errors"
	"tengoku-tracker/internal/domain"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

type fakeUsers struct {
	users      []domain.User
	listCalls  int
	matches    int
	wins       int
	applyDelta int
	listErr    error
}

func (f *fakeUsers) GetByPuuid(_ context.Context, puuid string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Puuid == puuid {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUsers) Leaderboard(context.Context) ([]domain.User, error) {
	f.listCalls++
	return f.users, f.listErr
}

func (f *fakeUsers) ParticipationCounts(context.Context, int64) (int, int, error) {
	return f.matches, f.wins, nil
}

func (f *fakeUsers) ApplyTP(_ context.Context, puuid string, delta int) (int, error) {
	u, err := f.GetByPuuid(context.Background(), puuid)
	if err != nil {
		return 0, err
	}
	f.applyDelta = delta
	return max(u.TP+delta, 0), nil
}

type fakeHistory struct {
	entries []domain.MatchHistoryEntry
	userID  int64
}

func (f *fakeHistory) HistoryForUser(_ context.Context, userID int64) ([]domain.MatchHistoryEntry, error) {
	f.userID = userID
	return f.entries, nil
}

func TestLeaderboardCacheThrough(t *testing.T) {
	users := &fakeUsers{users: []domain.User{
		{ID: 3, Puuid: "c", GameName: "Carry", ProfileIconID: 7, TP: 1200},
		{ID: 1, Puuid: "a", GameName: "Anchor", TP: 250},
		{ID: 2, Puuid: "b", GameName: "Bench", TP: 0},
	}}
	cache := &fakeCache{}
	svc := NewLeaderboardService(users, &fakeHistory{}, cache, zerolog.Nop())

	got, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []domain.LeaderboardEntry{
		{ID: 3, Puuid: "c", DisplayName: "Carry", Icon: 7, TP: 1200, Rank: "Diamant"},
		{ID: 1, Puuid: "a", DisplayName: "Anchor", TP: 250, Rank: "Silver"},
		{ID: 2, Puuid: "b", DisplayName: "Bench", TP: 0, Rank: "Bronze"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("leaderboard (-want +got):\n%s", diff)
	}
	if cache.sets != 1 {
		t.Errorf("cache sets = %d", cache.sets)
	}

	cache.hit = true
	if _, err := svc.Leaderboard(context.Background()); err != nil {
		t.Fatal(err)
	}
	if users.listCalls != 1 {
		t.Errorf("store hit %d times, want 1", users.listCalls)
	}
}

func TestLeaderboardIgnoresCacheErrors(t *testing.T) {
	users := &fakeUsers{users: []domain.User{{ID: 1, Puuid: "a", TP: 10}}}
	cache := &fakeCache{getErr: errors.New("connection refused")}
	svc := NewLeaderboardService(users, &fakeHistory{}, cache, zerolog.Nop())

	got, err := svc.Leaderboard(context.Background())
	if err != nil || len(got) != 1 {
		t.Errorf("Leaderboard = %v, %v", got, err)
	}
}

func TestHistoryAndProfile(t *testing.T) {
	users := &fakeUsers{users: []domain.User{{ID: 9, Puuid: "p", GameName: "P", TP: 510}}, matches: 6, wins: 4}
	history := &fakeHistory{entries: []domain.MatchHistoryEntry{{MatchID: 1, GameID: "g1"}}}
	svc := NewLeaderboardService(users, history, &fakeCache{}, zerolog.Nop())

	entries, err := svc.History(context.Background(), "p")
	if err != nil || len(entries) != 1 || history.userID != 9 {
		t.Errorf("History = %v, %v (user %d)", entries, err, history.userID)
	}

	profile, err := svc.Profile(context.Background(), "p")
	if err != nil {
		t.Fatal(err)
	}
	if profile.Rank != "Platine" || profile.Matches != 6 || profile.Wins != 4 {
		t.Errorf("profile = %+v", profile)
	}

	if _, err := svc.History(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("History(ghost) err = %v", err)
	}
	if _, err := svc.Profile(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("Profile(ghost) err = %v", err)
	}
}

func TestAdjustTPInvalidatesCache(t *testing.T) {
	users := &fakeUsers{users: []domain.User{{ID: 1, Puuid: "a", TP: 10}}}
	cache := &fakeCache{hit: true}
	svc := NewLeaderboardService(users, &fakeHistory{}, cache, zerolog.Nop())

	tp, err := svc.AdjustTP(context.Background(), "a", -50)
	if err != nil || tp != 0 {
		t.Errorf("AdjustTP = %d, %v", tp, err)
	}
	if cache.invalidated != 1 {
		t.Errorf("invalidations = %d", cache.invalidated)
	}
}

func TestReadFailuresAreStoreUnavailable(t *testing.T) {
	users := &fakeUsers{listErr: errors.New("disk I/O error")}
	svc := NewLeaderboardService(users, &fakeHistory{}, &fakeCache{}, zerolog.Nop())

	_, err := svc.Leaderboard(context.Background())
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("Leaderboard err = %v, want ErrStoreUnavailable", err)
	}

	if err := storeError(domain.ErrUserNotFound); !errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("storeError(ErrUserNotFound) = %v", err)
	}
}
