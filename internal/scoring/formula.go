// Package scoring turns one match's player statistics into TP deltas.
//
// Everything here is pure: the same roster always produces the same deltas, which is what lets a
// stored formula version reproduce historical ledger effects.
package scoring

import (
	"math"
	"tengoku-tracker/internal/domain"
)

type Formula interface {
	Version() string
	Impact(p domain.PlayerResult) float64
	// Delta scores p against its own team, self included.
	Delta(p domain.PlayerResult, team []domain.PlayerResult) int
}

type ImpactFormula struct {
	w Weights
}

func NewImpactFormula(w Weights) *ImpactFormula {
	return &ImpactFormula{w: w}
}

func (f *ImpactFormula) Version() string {
	return f.w.Version
}

func (f *ImpactFormula) Impact(p domain.PlayerResult) float64 {
	deaths := max(p.Deaths, 1)

	kda := float64(p.Kills+p.Assists) / float64(deaths) * f.w.KDA
	damage := float64(p.DamageDealt) / 1000 * f.w.DamageDealt
	tank := float64(p.DamageTaken) / 1000 * f.w.DamageTaken
	heal := float64(p.HealOnTeammates) / 1000 * f.w.Heal
	shield := float64(p.ShieldOnTeammates) / 1000 * f.w.Shield
	cc := float64(p.CCScore) / 10 * f.w.CrowdControl
	objective := float64(p.KillingSpree)*f.w.KillingSpree + float64(p.MultiKill)*f.w.MultiKill

	return kda + damage + tank + heal + shield + cc + objective
}

// TeamAverage is the mean impact of team. An empty team averages to 0.
func (f *ImpactFormula) TeamAverage(team []domain.PlayerResult) float64 {
	if len(team) == 0 {
		return 0
	}
	var sum float64
	for _, p := range team {
		sum += f.Impact(p)
	}
	return sum / float64(len(team))
}

func (f *ImpactFormula) Delta(p domain.PlayerResult, team []domain.PlayerResult) int {
	if p.WasAfk {
		return f.w.AfkPenalty
	}

	tp := f.Clamp(p.IsWinner, f.Relative(p, team))
	if p.IsWinner {
		tp = max(tp, f.w.WinFloor)
	}
	return tp
}

// Relative is the player's impact minus the team mean.
func (f *ImpactFormula) Relative(p domain.PlayerResult, team []domain.PlayerResult) float64 {
	return f.Impact(p) - f.TeamAverage(team)
}

// Clamp applies the baseline, the first matching tier and the [Min, Max] bounds. The win floor
// is not part of it.
func (f *ImpactFormula) Clamp(won bool, relative float64) int {
	tp := f.w.LossBase
	if won {
		tp = f.w.WinBase
	}

	switch {
	case relative > f.w.MajorThreshold:
		tp += f.w.MajorBonus
	case relative > f.w.MinorThreshold:
		tp += f.w.MinorBonus
	case relative < -f.w.MajorThreshold:
		tp -= f.w.MajorBonus
	case relative < -f.w.MinorThreshold:
		tp -= f.w.MinorBonus
	}

	// half up, not half away from zero
	rounded := int(math.Floor(tp + 0.5))
	return min(max(rounded, f.w.Min), f.w.Max)
}

// TeamOf returns the players of roster on the same side as p, p included.
func TeamOf(p domain.PlayerResult, roster []domain.PlayerResult) []domain.PlayerResult {
	team := make([]domain.PlayerResult, 0, len(roster))
	for _, r := range roster {
		if r.IsWinner == p.IsWinner {
			team = append(team, r)
		}
	}
	return team
}
