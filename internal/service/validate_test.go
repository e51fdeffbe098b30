package service

import (
	"errors"
	"tengoku-tracker/internal/domain"
	"testing"
	"time"
)

func TestValidateSubmission(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.MatchSubmission)
	}{
		{"missing game id", func(s *domain.MatchSubmission) { s.GameID = "  " }},
		{"bad date", func(s *domain.MatchSubmission) { s.Date = "yesterday" }},
		{"empty roster", func(s *domain.MatchSubmission) { s.Players = nil }},
		{"no losers", func(s *domain.MatchSubmission) {
			for i := range s.Players {
				s.Players[i].IsWinner = true
			}
		}},
		{"no winners", func(s *domain.MatchSubmission) {
			for i := range s.Players {
				s.Players[i].IsWinner = false
			}
		}},
		{"empty puuid", func(s *domain.MatchSubmission) { s.Players[1].Puuid = "" }},
		{"duplicate puuid", func(s *domain.MatchSubmission) { s.Players[3].Puuid = s.Players[0].Puuid }},
		{"negative kills", func(s *domain.MatchSubmission) { s.Players[2].Kills = -1 }},
		{"negative damage taken", func(s *domain.MatchSubmission) { s.Players[2].DamageTaken = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := submission("g1")
			tt.mutate(&sub)
			if _, err := ValidateSubmission(sub); !errors.Is(err, domain.ErrInvalidMatch) {
				t.Errorf("err = %v, want ErrInvalidMatch", err)
			}
		})
	}
}

func TestValidateSubmissionAcceptsTeamOfOne(t *testing.T) {
	sub := submission("g1")
	sub.Players = sub.Players[1:3]
	if _, err := ValidateSubmission(sub); err != nil {
		t.Errorf("1v1 rejected: %v", err)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC)
	for _, in := range []string{
		"2024-05-01T18:30:00.000Z",
		"2024-05-01T18:30:00Z",
		"2024-05-01T20:30:00+02:00",
		"2024-05-01T18:30:00",
		"2024-05-01 18:30:00",
	} {
		got, err := parseDate(in)
		if err != nil {
			t.Errorf("parseDate(%q): %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("parseDate(%q) = %v, want %v", in, got, want)
		}
	}

	if got, err := parseDate("2024-05-01"); err != nil || !got.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("parseDate(date only) = %v, %v", got, err)
	}
}
