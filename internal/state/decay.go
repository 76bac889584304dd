package state

import (
	"math"
	"time"

	"github.com/unboundedlabs/unbounded/internal/types"
)

// Baseline is the neutral resting point each vital drifts toward while the
// character is left alone.
type Baseline struct {
	Health    int
	Energy    int
	Happiness int
	Hunger    int
	Fatigue   int
	Stress    int
}

// DecayRates are points of drift per hour toward the baseline.
type DecayRates struct {
	Health    float64
	Energy    float64
	Happiness float64
	Hunger    float64
	Fatigue   float64
	Stress    float64
}

// DefaultBaseline leaves reserves high and needs mildly elevated: an idle
// character slowly gets hungry, tired, and tense, but never past neutral.
var DefaultBaseline = Baseline{
	Health:    100,
	Energy:    70,
	Happiness: 70,
	Hunger:    30,
	Fatigue:   30,
	Stress:    20,
}

// DefaultDecayRates carries the simulation's hourly drift speeds.
var DefaultDecayRates = DecayRates{
	Health:    2,
	Energy:    2,
	Happiness: 2,
	Hunger:    5,
	Fatigue:   4,
	Stress:    3,
}

// Decay drifts each vital toward the baseline, magnitude proportional to
// elapsed, capped at the remaining distance so no interval overshoots. The
// result is deterministic, a no-op at elapsed <= 0, and always in bounds.
func Decay(s types.CharacterState, elapsed time.Duration, baseline Baseline, rates DecayRates) types.CharacterState {
	if elapsed <= 0 {
		return s
	}
	hours := elapsed.Hours()

	s.Health = drift(s.Health, baseline.Health, rates.Health, hours)
	s.Energy = drift(s.Energy, baseline.Energy, rates.Energy, hours)
	s.Happiness = drift(s.Happiness, baseline.Happiness, rates.Happiness, hours)
	s.Hunger = drift(s.Hunger, baseline.Hunger, rates.Hunger, hours)
	s.Fatigue = drift(s.Fatigue, baseline.Fatigue, rates.Fatigue, hours)
	s.Stress = drift(s.Stress, baseline.Stress, rates.Stress, hours)

	ClampState(&s)
	return s
}

// drift moves current toward target by rate*hours, never past target.
func drift(current, target int, rate, hours float64) int {
	if current == target {
		return current
	}
	step := int(math.Floor(rate * hours))
	distance := target - current
	if distance > 0 {
		if step > distance {
			step = distance
		}
		return current + step
	}
	if step > -distance {
		step = -distance
	}
	return current - step
}
