package scoring

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidWeights marks a weight configuration the engine cannot use.
var ErrInvalidWeights = errors.New("invalid weights")

// Weights configures the relative importance of each compatibility factor.
// The sum is not required to equal 1; the aggregate is clamped to [0,1].
// History is a regular seventh factor rather than an out-of-band additive
// term, so one consistent policy applies everywhere.
type Weights struct {
	Proximity    float64 `json:"proximity" koanf:"proximity"`
	SkillMatch   float64 `json:"skill_match" koanf:"skill_match"`
	Availability float64 `json:"availability" koanf:"availability"`
	Reputation   float64 `json:"reputation" koanf:"reputation"`
	Budget       float64 `json:"budget" koanf:"budget"`
	ResponseTime float64 `json:"response_time" koanf:"response_time"`
	History      float64 `json:"history" koanf:"history"`
}

// DefaultWeights returns the reference factor weights.
func DefaultWeights() Weights {
	return Weights{
		Proximity:    0.25,
		SkillMatch:   0.30,
		Availability: 0.15,
		Reputation:   0.15,
		Budget:       0.10,
		ResponseTime: 0.05,
		History:      0.10,
	}
}

// Validate rejects negative or non-finite weights and all-zero tables.
func (w Weights) Validate() error {
	fields := map[string]float64{
		"proximity":     w.Proximity,
		"skill_match":   w.SkillMatch,
		"availability":  w.Availability,
		"reputation":    w.Reputation,
		"budget":        w.Budget,
		"response_time": w.ResponseTime,
		"history":       w.History,
	}
	sum := 0.0
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidWeights, name)
		}
		if v < 0 {
			return fmt.Errorf("%w: %s is negative", ErrInvalidWeights, name)
		}
		sum += v
	}
	if sum == 0 {
		return fmt.Errorf("%w: all weights are zero", ErrInvalidWeights)
	}
	return nil
}
