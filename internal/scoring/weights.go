package scoring

import (
	"fmt"

	"github.com/spf13/viper"
)

const VersionImpactV1 = "impact-v1"

// Weights holds every tunable of the impact formula. Stat divisors are folded into the weight
// names: damage, heal and shield are per 1000, crowd control per 10.
type Weights struct {
	Version string `mapstructure:"version"`

	AfkPenalty int `mapstructure:"afk_penalty"`

	KDA          float64 `mapstructure:"kda"`
	DamageDealt  float64 `mapstructure:"damage_dealt"`
	DamageTaken  float64 `mapstructure:"damage_taken"`
	Heal         float64 `mapstructure:"heal"`
	Shield       float64 `mapstructure:"shield"`
	CrowdControl float64 `mapstructure:"crowd_control"`
	KillingSpree float64 `mapstructure:"killing_spree"`
	MultiKill    float64 `mapstructure:"multi_kill"`

	WinBase  float64 `mapstructure:"win_base"`
	LossBase float64 `mapstructure:"loss_base"`

	MajorThreshold float64 `mapstructure:"major_threshold"`
	MajorBonus     float64 `mapstructure:"major_bonus"`
	MinorThreshold float64 `mapstructure:"minor_threshold"`
	MinorBonus     float64 `mapstructure:"minor_bonus"`

	Min      int `mapstructure:"min"`
	Max      int `mapstructure:"max"`
	WinFloor int `mapstructure:"win_floor"`
}

func DefaultWeights() Weights {
	return Weights{
		Version:        VersionImpactV1,
		AfkPenalty:     -20,
		KDA:            2,
		DamageDealt:    1.2,
		DamageTaken:    0.8,
		Heal:           1.5,
		Shield:         1.5,
		CrowdControl:   1.0,
		KillingSpree:   0.5,
		MultiKill:      1,
		WinBase:        18,
		LossBase:       -8,
		MajorThreshold: 10,
		MajorBonus:     7,
		MinorThreshold: 5,
		MinorBonus:     4,
		Min:            -15,
		Max:            25,
		WinFloor:       12,
	}
}

func (w Weights) Validate() error {
	if w.Version == "" {
		return fmt.Errorf("weights: version is required")
	}
	if w.Min > w.Max {
		return fmt.Errorf("weights %s: min %d greater than max %d", w.Version, w.Min, w.Max)
	}
	if w.MinorThreshold > w.MajorThreshold {
		return fmt.Errorf("weights %s: minor threshold above major threshold", w.Version)
	}
	return nil
}

// LoadWeights reads a weight file (yaml, json or toml) on top of DefaultWeights. Keys absent
// from the file keep their default. The file has to name its own version.
func LoadWeights(path string) (Weights, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Weights{}, fmt.Errorf("failed to read scoring weights %s: %w", path, err)
	}

	w := DefaultWeights()
	w.Version = ""
	if err := v.Unmarshal(&w); err != nil {
		return Weights{}, fmt.Errorf("failed to decode scoring weights %s: %w", path, err)
	}

	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	return w, nil
}
