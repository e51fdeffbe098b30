package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"tengoku-tracker/internal/domain"
)

// GameID accepts either a JSON string or a JSON number and keeps the number's text verbatim,
// so large numeric ids never pass through float64.
type GameID string

func (g *GameID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*g = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*g = GameID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("gameId must be a string or a number: %w", err)
	}
	*g = GameID(n.String())
	return nil
}

// Flag accepts true/false or a number, non-zero meaning true.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true":
		*f = true
		return nil
	case "false", "null":
		*f = false
		return nil
	}

	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("expected a boolean or a number, got %s", data)
	}
	*f = v != 0
	return nil
}

type Player struct {
	Puuid         string `json:"puuid"`
	GameName      string `json:"gameName"`
	TagLine       string `json:"tagLine"`
	ProfileIconID int    `json:"profileIconId"`
	Level         int    `json:"level"`
	Champion      string `json:"champion"`
	IsWinner      bool   `json:"isWinner"`
	Kills         int    `json:"kills"`
	Deaths        int    `json:"deaths"`
	Assists       int    `json:"assists"`
	CS            int    `json:"cs"`
	Gold          int    `json:"gold"`
	DamageDealt   int    `json:"damageDealt"`
	DamageTaken   int    `json:"damageTaken"`

	// Clients may still send a precomputed delta. It is ignored.
	TPChange *int `json:"tpChange,omitempty"`

	HealOnTeammates     int  `json:"healOnTeammates"`
	ShieldOnTeammates   int  `json:"shieldOnTeammates"`
	CCScore             int  `json:"ccScore"`
	WasAfk              Flag `json:"wasAfk"`
	PhysicalDamageTaken int  `json:"physicalDamageTaken"`
	MultiKill           int  `json:"multiKill"`
	KillingSpree        int  `json:"killingSpree"`
}

type Game struct {
	Date    string   `json:"date"`
	GameID  GameID   `json:"gameId"`
	Players []Player `json:"players"`
}

func (g Game) ToSubmission() domain.MatchSubmission {
	players := make([]domain.PlayerResult, len(g.Players))
	for i, p := range g.Players {
		players[i] = domain.PlayerResult{
			Puuid:               p.Puuid,
			GameName:            p.GameName,
			TagLine:             p.TagLine,
			ProfileIconID:       p.ProfileIconID,
			Level:               p.Level,
			Champion:            p.Champion,
			IsWinner:            p.IsWinner,
			Kills:               p.Kills,
			Deaths:              p.Deaths,
			Assists:             p.Assists,
			CS:                  p.CS,
			Gold:                p.Gold,
			DamageDealt:         p.DamageDealt,
			DamageTaken:         p.DamageTaken,
			HealOnTeammates:     p.HealOnTeammates,
			ShieldOnTeammates:   p.ShieldOnTeammates,
			CCScore:             p.CCScore,
			WasAfk:              bool(p.WasAfk),
			PhysicalDamageTaken: p.PhysicalDamageTaken,
			MultiKill:           p.MultiKill,
			KillingSpree:        p.KillingSpree,
		}
	}
	return domain.MatchSubmission{
		GameID:  string(g.GameID),
		Date:    g.Date,
		Players: players,
	}
}

// DecodeGame parses a match payload. Unknown fields are tolerated.
func DecodeGame(data []byte) (domain.MatchSubmission, error) {
	var g Game
	if err := json.Unmarshal(data, &g); err != nil {
		return domain.MatchSubmission{}, fmt.Errorf("%w: malformed payload: %w", domain.ErrInvalidMatch, err)
	}
	return g.ToSubmission(), nil
}
