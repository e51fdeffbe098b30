package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"tengoku-tracker/internal/domain"
	"tengoku-tracker/internal/payload"
	"tengoku-tracker/internal/snapshot"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

type fakeMatches struct {
	got    domain.MatchSubmission
	result *domain.MatchResult
	err    error
}

func (f *fakeMatches) SubmitMatch(_ context.Context, sub domain.MatchSubmission) (*domain.MatchResult, error) {
	f.got = sub
	return f.result, f.err
}

type fakeReader struct {
	board   []domain.LeaderboardEntry
	history []domain.MatchHistoryEntry
	profile *domain.Profile
	err     error
	delta   int
}

func (f *fakeReader) Leaderboard(context.Context) ([]domain.LeaderboardEntry, error) {
	return f.board, f.err
}

func (f *fakeReader) History(_ context.Context, puuid string) ([]domain.MatchHistoryEntry, error) {
	return f.history, f.err
}

func (f *fakeReader) Profile(_ context.Context, puuid string) (*domain.Profile, error) {
	return f.profile, f.err
}

func (f *fakeReader) AdjustTP(_ context.Context, _ string, delta int) (int, error) {
	f.delta = delta
	return 100 + delta, f.err
}

type fakeSnapshots struct {
	dir string
	err error
}

func (f *fakeSnapshots) WriteTemp(context.Context) (string, func(), error) {
	if f.err != nil {
		return "", nil, f.err
	}
	path := filepath.Join(f.dir, "snap.db")
	if err := os.WriteFile(path, []byte("SQLite format 3\x00"), 0o600); err != nil {
		return "", nil, err
	}
	return path, func() { os.Remove(path) }, nil
}

func (f *fakeSnapshots) Upload(context.Context) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return "snapshots/x.db", "mem://snapshots/x.db", nil
}

func newTestServer(t *testing.T, m *fakeMatches, r *fakeReader, s *fakeSnapshots) *httptest.Server {
	t.Helper()
	if s == nil {
		s = &fakeSnapshots{dir: t.TempDir()}
	}
	router := NewRouter(NewTrackerServer(m, r), NewRESTHandler(m, r, s), zerolog.Nop())
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}

const gameBody = `{"date":"2024-05-01T18:30:00Z","gameId":98765432109876543210,"players":[
	{"puuid":"a","gameName":"A","isWinner":true,"kills":3,"wasAfk":0},
	{"puuid":"b","gameName":"B","isWinner":false,"wasAfk":true}]}`

func recorded() *domain.MatchResult {
	return &domain.MatchResult{
		Status:         domain.StatusRecorded,
		GameID:         "98765432109876543210",
		FormulaVersion: "impact-v1",
		Players: []domain.ScoredPlayer{
			{PlayerResult: domain.PlayerResult{Puuid: "a", GameName: "A", IsWinner: true}, TPChange: 18, TPAfter: 18},
			{PlayerResult: domain.PlayerResult{Puuid: "b", GameName: "B"}, TPChange: -20, TPAfter: 0},
		},
	}
}

func TestPostGamesRecorded(t *testing.T) {
	m := &fakeMatches{result: recorded()}
	srv := newTestServer(t, m, &fakeReader{}, nil)

	status, body := do(t, http.MethodPost, srv.URL+"/games", gameBody)
	if status != http.StatusCreated {
		t.Fatalf("status = %d body = %s", status, body)
	}

	if m.got.GameID != "98765432109876543210" {
		t.Errorf("gameId = %q, want verbatim number", m.got.GameID)
	}
	if m.got.Players[0].WasAfk || !m.got.Players[1].WasAfk {
		t.Errorf("wasAfk decoded as %v/%v", m.got.Players[0].WasAfk, m.got.Players[1].WasAfk)
	}

	var resp payload.SubmitResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatal(err)
	}
	want := []payload.PlayerOutcome{
		{Puuid: "a", GameName: "A", IsWinner: true, TPChange: 18, TP: 18},
		{Puuid: "b", GameName: "B", TPChange: -20, TP: 0},
	}
	if diff := cmp.Diff(want, resp.Players); diff != "" {
		t.Errorf("players (-want +got):\n%s", diff)
	}
}

func TestPostGamesDuplicateIsOK(t *testing.T) {
	m := &fakeMatches{result: &domain.MatchResult{Status: domain.StatusAlreadyRecorded, GameID: "1"}}
	srv := newTestServer(t, m, &fakeReader{}, nil)

	status, body := do(t, http.MethodPost, srv.URL+"/games", gameBody)
	if status != http.StatusOK {
		t.Fatalf("status = %d body = %s", status, body)
	}
	if !strings.Contains(string(body), `"already_recorded"`) {
		t.Errorf("body = %s", body)
	}
}

func TestPostGamesErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"malformed", `{"gameId":`, nil, http.StatusBadRequest},
		{"empty", ``, nil, http.StatusBadRequest},
		{"invalid", gameBody, fmt.Errorf("%w: roster is empty", domain.ErrInvalidMatch), http.StatusBadRequest},
		{"unavailable", gameBody, fmt.Errorf("%w: locked", domain.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{"upsert", gameBody, fmt.Errorf("%w: a", domain.ErrPlayerUpsertFailed), http.StatusServiceUnavailable},
		{"internal", gameBody, fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &fakeMatches{err: tt.err}, &fakeReader{}, nil)
			status, body := do(t, http.MethodPost, srv.URL+"/games", tt.body)
			if status != tt.status {
				t.Errorf("status = %d, want %d (body %s)", status, tt.status, body)
			}
			if tt.name == "internal" && strings.Contains(string(body), "boom") {
				t.Errorf("internal error leaked: %s", body)
			}
		})
	}
}

func TestReadRoutes(t *testing.T) {
	r := &fakeReader{
		board: []domain.LeaderboardEntry{{ID: 2, Puuid: "b", DisplayName: "B", TP: 310, Rank: "Gold"}},
		history: []domain.MatchHistoryEntry{{
			MatchID:  9,
			GameID:   "g9",
			PlayedAt: time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC),
			Self:     domain.SelfStats{Champion: "Ahri", TPChange: 12},
			Winners:  []domain.PublicStats{{Puuid: "b"}},
			Losers:   []domain.PublicStats{{Puuid: "c"}},
		}},
		profile: &domain.Profile{User: domain.User{ID: 2, Puuid: "b", TP: 310}, Rank: "Gold", Matches: 4, Wins: 3},
	}
	srv := newTestServer(t, &fakeMatches{}, r, nil)

	status, body := do(t, http.MethodGet, srv.URL+"/games/leaderboard", "")
	if status != http.StatusOK || !strings.HasPrefix(string(body), "[") || !strings.Contains(string(body), `"rank":"Gold"`) {
		t.Errorf("leaderboard: %d %s", status, body)
	}

	status, body = do(t, http.MethodGet, srv.URL+"/games/history/b", "")
	if status != http.StatusOK {
		t.Fatalf("history: %d %s", status, body)
	}
	var history []map[string]json.RawMessage
	if err := json.Unmarshal(body, &history); err != nil || len(history) != 1 {
		t.Fatalf("history body %s: %v", body, err)
	}
	if strings.Contains(string(history[0]["winners"]), "tpChange") {
		t.Errorf("roster exposes deltas: %s", history[0]["winners"])
	}
	if !strings.Contains(string(history[0]["self"]), `"tpChange":12`) {
		t.Errorf("self stats missing delta: %s", history[0]["self"])
	}

	status, body = do(t, http.MethodGet, srv.URL+"/users/by-puuid/b", "")
	if status != http.StatusOK || !strings.Contains(string(body), `"matches":4`) {
		t.Errorf("profile: %d %s", status, body)
	}
}

func TestUnknownUserIsNotFound(t *testing.T) {
	srv := newTestServer(t, &fakeMatches{}, &fakeReader{err: domain.ErrUserNotFound}, nil)

	for _, path := range []string{"/games/history/nobody", "/users/by-puuid/nobody"} {
		if status, body := do(t, http.MethodGet, srv.URL+path, ""); status != http.StatusNotFound {
			t.Errorf("%s: %d %s", path, status, body)
		}
	}
}

func TestAdjustTP(t *testing.T) {
	r := &fakeReader{}
	srv := newTestServer(t, &fakeMatches{}, r, nil)

	status, body := do(t, http.MethodPatch, srv.URL+"/users/tp-by-puuid/b", `{"tpChange":-30}`)
	if status != http.StatusOK || r.delta != -30 || !strings.Contains(string(body), `"tp":70`) {
		t.Errorf("adjust: %d %s delta=%d", status, body, r.delta)
	}

	if status, _ := do(t, http.MethodPatch, srv.URL+"/users/tp-by-puuid/b", `{}`); status != http.StatusBadRequest {
		t.Errorf("missing tpChange: %d", status)
	}
}

func TestDebugRoutes(t *testing.T) {
	srv := newTestServer(t, &fakeMatches{}, &fakeReader{}, nil)

	resp, err := http.Get(srv.URL + "/debug/dump-db")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(string(b), "SQLite format 3") {
		t.Errorf("dump-db: %d %q", resp.StatusCode, b)
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), "tengoku.db") {
		t.Errorf("content disposition = %q", resp.Header.Get("Content-Disposition"))
	}

	if status, body := do(t, http.MethodPost, srv.URL+"/debug/snapshots", ""); status != http.StatusCreated {
		t.Errorf("snapshots: %d %s", status, body)
	}

	disabled := newTestServer(t, &fakeMatches{}, &fakeReader{}, &fakeSnapshots{err: snapshot.ErrUploadDisabled})
	if status, _ := do(t, http.MethodPost, disabled.URL+"/debug/snapshots", ""); status != http.StatusServiceUnavailable {
		t.Errorf("disabled snapshots: %d", status)
	}
}

func TestConnectSubmitMatch(t *testing.T) {
	m := &fakeMatches{result: recorded()}
	srv := newTestServer(t, m, &fakeReader{}, nil)

	status, body := do(t, http.MethodPost, srv.URL+SubmitMatchProcedure, gameBody)
	if status != http.StatusOK {
		t.Fatalf("status = %d body = %s", status, body)
	}

	var resp payload.SubmitResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != domain.StatusRecorded || len(resp.Players) != 2 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestConnectErrorCodes(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{fmt.Errorf("%w: bad", domain.ErrInvalidMatch), "invalid_argument"},
		{fmt.Errorf("%w: down", domain.ErrStoreUnavailable), "unavailable"},
		{fmt.Errorf("%w: p", domain.ErrPlayerUpsertFailed), "aborted"},
	}
	for _, tt := range tests {
		srv := newTestServer(t, &fakeMatches{err: tt.err}, &fakeReader{}, nil)
		_, body := do(t, http.MethodPost, srv.URL+SubmitMatchProcedure, gameBody)

		var e struct {
			Code string `json:"code"`
		}
		if err := json.Unmarshal(body, &e); err != nil {
			t.Fatalf("decode %s: %v", body, err)
		}
		if e.Code != tt.code {
			t.Errorf("code = %q, want %q", e.Code, tt.code)
		}
	}

	srv := newTestServer(t, &fakeMatches{}, &fakeReader{err: domain.ErrUserNotFound}, nil)
	status, body := do(t, http.MethodPost, srv.URL+GetProfileProcedure, `{"puuid":"nobody"}`)
	if status != http.StatusNotFound || !strings.Contains(string(body), "not_found") {
		t.Errorf("profile: %d %s", status, body)
	}

	status, body = do(t, http.MethodPost, srv.URL+GetHistoryProcedure, `{}`)
	if status != http.StatusBadRequest || !strings.Contains(string(body), "invalid_argument") {
		t.Errorf("history without puuid: %d %s", status, body)
	}
}

func TestConnectLeaderboard(t *testing.T) {
	r := &fakeReader{board: []domain.LeaderboardEntry{{ID: 1, DisplayName: "A", TP: 20, Rank: "Bronze"}}}
	srv := newTestServer(t, &fakeMatches{}, r, nil)

	status, body := do(t, http.MethodPost, srv.URL+GetLeaderboardProcedure, `{}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d body = %s", status, body)
	}
	var resp payload.LeaderboardResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]payload.LeaderboardEntry{{ID: 1, DisplayName: "A", TP: 20, Rank: "Bronze"}}, resp.Entries); diff != "" {
		t.Errorf("entries (-want +got):\n%s", diff)
	}
}
