package db

import (
	"time"
)

type User struct {
	ID            int64
	Puuid         string
	GameName      string
	TagLine       string
	ProfileIconID int64
	SummonerLevel int64
	Tp            int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Match struct {
	ID             int64
	ExternalID     string
	PlayedAt       time.Time
	FormulaVersion string
	CreatedAt      time.Time
}

type Participation struct {
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
