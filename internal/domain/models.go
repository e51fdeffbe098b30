package domain

import (
	"time"
)

type User struct {
	ID            int64
	Puuid         string
	GameName      string
	TagLine       string
	ProfileIconID int
	SummonerLevel int
	TP            int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Match is immutable once written. ExternalID is the caller's game id kept verbatim.
type Match struct {
	ID             int64
	ExternalID     string
	PlayedAt       time.Time
	FormulaVersion string
	CreatedAt      time.Time
}

// PlayerResult is one roster entry of a match as submitted, scoring-only fields included.
type PlayerResult struct {
	Puuid               string
	GameName            string
	TagLine             string
	ProfileIconID       int
	Level               int
	Champion            string
	IsWinner            bool
	Kills               int
	Deaths              int
	Assists             int
	CS                  int
	Gold                int
	DamageDealt         int
	DamageTaken         int
	HealOnTeammates     int
	ShieldOnTeammates   int
	CCScore             int
	WasAfk              bool
	PhysicalDamageTaken int
	MultiKill           int
	KillingSpree        int
}

type MatchSubmission struct {
	GameID  string
	Date    string // ISO-8601
	Players []PlayerResult
}

type SubmitStatus string

const (
	StatusRecorded        SubmitStatus = "recorded"
	StatusAlreadyRecorded SubmitStatus = "already_recorded"
)

type ScoredPlayer struct {
	PlayerResult
	TPChange int
	TPAfter  int
}

type MatchResult struct {
	Status         SubmitStatus
	GameID         string
	PlayedAt       time.Time
	FormulaVersion string
	Players        []ScoredPlayer
}

func (r *MatchResult) Winners() []ScoredPlayer {
	return r.team(true)
}

func (r *MatchResult) Losers() []ScoredPlayer {
	return r.team(false)
}

func (r *MatchResult) team(winners bool) []ScoredPlayer {
	var out []ScoredPlayer
	for _, p := range r.Players {
		if p.IsWinner == winners {
			out = append(out, p)
		}
	}
	return out
}

type LeaderboardEntry struct {
	ID          int64
	Puuid       string
	DisplayName string
	Icon        int
	TP          int
	Rank        string
}

// PublicStats is what any viewer may see of a participation. The delta is deliberately absent.
type PublicStats struct {
	Puuid         string
	GameName      string
	TagLine       string
	ProfileIconID int
	Champion      string
	Kills         int
	Deaths        int
	Assists       int
	CS            int
	Gold          int
	DamageDealt   int
	DamageTaken   int
}

type SelfStats struct {
	Champion    string
	Kills       int
	Deaths      int
	Assists     int
	CS          int
	Gold        int
	DamageDealt int
	DamageTaken int
	IsWinner    bool
	TPChange    int
}

type MatchHistoryEntry struct {
	MatchID        int64
	GameID         string
	PlayedAt       time.Time
	FormulaVersion string
	Self           SelfStats
	Winners        []PublicStats
	Losers         []PublicStats
}

type Profile struct {
	User    User
	Rank    string
	Matches int
	Wins    int
}
