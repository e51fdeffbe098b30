package payload

import (
	"tengoku-tracker/internal/domain"
	"time"
)

type PlayerOutcome struct {
	Puuid    string `json:"puuid"`
	GameName string `json:"gameName"`
	IsWinner bool   `json:"isWinner"`
	TPChange int    `json:"tpChange"`
	TP       int    `json:"tp"`
}

type SubmitResponse struct {
	Status         domain.SubmitStatus `json:"status"`
	Message        string              `json:"message"`
	GameID         string              `json:"gameId"`
	FormulaVersion string              `json:"formulaVersion,omitempty"`
	Players        []PlayerOutcome     `json:"players,omitempty"`
}

func FromMatchResult(r *domain.MatchResult) SubmitResponse {
	resp := SubmitResponse{
		Status:         r.Status,
		GameID:         r.GameID,
		FormulaVersion: r.FormulaVersion,
	}
	if r.Status == domain.StatusAlreadyRecorded {
		resp.Message = "Game already recorded, nothing changed."
		return resp
	}

	resp.Message = "Game recorded."
	resp.Players = make([]PlayerOutcome, len(r.Players))
	for i, p := range r.Players {
		resp.Players[i] = PlayerOutcome{
			Puuid:    p.Puuid,
			GameName: p.GameName,
			IsWinner: p.IsWinner,
			TPChange: p.TPChange,
			TP:       p.TPAfter,
		}
	}
	return resp
}

type LeaderboardEntry struct {
	ID          int64  `json:"id"`
	Puuid       string `json:"puuid"`
	DisplayName string `json:"displayName"`
	Icon        int    `json:"icon"`
	TP          int    `json:"tp"`
	Rank        string `json:"rank"`
}

type LeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
}

func FromLeaderboard(entries []domain.LeaderboardEntry) LeaderboardResponse {
	out := make([]LeaderboardEntry, len(entries))
	for i, e := range entries {
		out[i] = LeaderboardEntry{
			ID:          e.ID,
			Puuid:       e.Puuid,
			DisplayName: e.DisplayName,
			Icon:        e.Icon,
			TP:          e.TP,
			Rank:        e.Rank,
		}
	}
	return LeaderboardResponse{Entries: out}
}

type RosterPlayer struct {
	Puuid         string `json:"puuid"`
	GameName      string `json:"gameName"`
	TagLine       string `json:"tagLine"`
	ProfileIconID int    `json:"profileIconId"`
	Champion      string `json:"champion"`
	Kills         int    `json:"kills"`
	Deaths        int    `json:"deaths"`
	Assists       int    `json:"assists"`
	CS            int    `json:"cs"`
	Gold          int    `json:"gold"`
	DamageDealt   int    `json:"damageDealt"`
	DamageTaken   int    `json:"damageTaken"`
}

type SelfStats struct {
	Champion    string `json:"champion"`
	Kills       int    `json:"kills"`
	Deaths      int    `json:"deaths"`
	Assists     int    `json:"assists"`
	CS          int    `json:"cs"`
	Gold        int    `json:"gold"`
	DamageDealt int    `json:"damageDealt"`
	DamageTaken int    `json:"damageTaken"`
	IsWinner    bool   `json:"isWinner"`
	TPChange    int    `json:"tpChange"`
}

type HistoryEntry struct {
	MatchID        int64          `json:"matchId"`
	GameID         string         `json:"gameId"`
	Date           time.Time      `json:"date"`
	FormulaVersion string         `json:"formulaVersion"`
	Self           SelfStats      `json:"self"`
	Winners        []RosterPlayer `json:"winners"`
	Losers         []RosterPlayer `json:"losers"`
}

type HistoryResponse struct {
	Puuid   string         `json:"puuid"`
	Matches []HistoryEntry `json:"matches"`
}

func FromHistory(puuid string, entries []domain.MatchHistoryEntry) HistoryResponse {
	out := make([]HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = HistoryEntry{
			MatchID:        e.MatchID,
			GameID:         e.GameID,
			Date:           e.PlayedAt,
			FormulaVersion: e.FormulaVersion,
			Self:           SelfStats(e.Self),
			Winners:        roster(e.Winners),
			Losers:         roster(e.Losers),
		}
	}
	return HistoryResponse{Puuid: puuid, Matches: out}
}

func roster(players []domain.PublicStats) []RosterPlayer {
	out := make([]RosterPlayer, len(players))
	for i, p := range players {
		out[i] = RosterPlayer(p)
	}
	return out
}

type ProfileResponse struct {
	ID            int64     `json:"id"`
	Puuid         string    `json:"puuid"`
	GameName      string    `json:"gameName"`
	TagLine       string    `json:"tagLine"`
	ProfileIconID int       `json:"profileIconId"`
	SummonerLevel int       `json:"summonerLevel"`
	TP            int       `json:"tp"`
	Rank          string    `json:"rank"`
	Matches       int       `json:"matches"`
	Wins          int       `json:"wins"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func FromProfile(p *domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:            p.User.ID,
		Puuid:         p.User.Puuid,
		GameName:      p.User.GameName,
		TagLine:       p.User.TagLine,
		ProfileIconID: p.User.ProfileIconID,
		SummonerLevel: p.User.SummonerLevel,
		TP:            p.User.TP,
		Rank:          p.Rank,
		Matches:       p.Matches,
		Wins:          p.Wins,
		CreatedAt:     p.User.CreatedAt,
		UpdatedAt:     p.User.UpdatedAt,
	}
}

// Request types for the RPC surface.

type LeaderboardRequest struct{}

type PuuidRequest struct {
	Puuid string `json:"puuid"`
}
