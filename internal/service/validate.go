package service

import (
	"fmt"
	"strings"
	"tengoku-tracker/internal/domain"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q is not ISO-8601", s)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidMatch, fmt.Sprintf(format, args...))
}

// ValidateSubmission checks a submission before anything is written and returns its play time.
func ValidateSubmission(sub domain.MatchSubmission) (time.Time, error) {
	if strings.TrimSpace(sub.GameID) == "" {
		return time.Time{}, invalid("gameId is required")
	}

	playedAt, err := parseDate(sub.Date)
	if err != nil {
		return time.Time{}, invalid("%v", err)
	}

	if len(sub.Players) == 0 {
		return time.Time{}, invalid("roster is empty")
	}

	var winners, losers int
	seen := make(map[string]struct{}, len(sub.Players))
	for i, p := range sub.Players {
		if p.Puuid == "" {
			return time.Time{}, invalid("player %d has no puuid", i)
		}
		if _, dup := seen[p.Puuid]; dup {
			return time.Time{}, invalid("player %s appears twice", p.Puuid)
		}
		seen[p.Puuid] = struct{}{}

		if negativeStat(p) {
			return time.Time{}, invalid("player %s has a negative statistic", p.Puuid)
		}

		if p.IsWinner {
			winners++
		} else {
			losers++
		}
	}

	if winners == 0 || losers == 0 {
		return time.Time{}, invalid("roster needs at least one winner and one loser (got %d/%d)", winners, losers)
	}

	return playedAt, nil
}

func negativeStat(p domain.PlayerResult) bool {
	for _, v := range []int{
		p.Kills, p.Deaths, p.Assists, p.CS, p.Gold, p.DamageDealt, p.DamageTaken,
		p.HealOnTeammates, p.ShieldOnTeammates, p.CCScore, p.PhysicalDamageTaken,
		p.MultiKill, p.KillingSpree,
	} {
		if v < 0 {
			return true
		}
	}
	return false
}
