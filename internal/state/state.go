// Package state implements the deterministic vitals model: defaults,
// clamping, time-based decay, and interaction-driven transitions.
package state

import (
	"time"

	"github.com/unboundedlabs/unbounded/internal/types"
)

// NewDefaultState returns the snapshot created alongside a Character.
func NewDefaultState(characterID string, now time.Time) types.CharacterState {
	return types.CharacterState{
		CharacterID: characterID,
		Health:      100,
		Energy:      100,
		Happiness:   100,
		Hunger:      0,
		Fatigue:     0,
		Stress:      0,
		Location:    "home",
		Activity:    "resting",
		UpdatedAt:   now,
	}
}

// Clamp bounds a vital to [VitalMin, VitalMax].
func Clamp(v int) int {
	switch {
	case v < types.VitalMin:
		return types.VitalMin
	case v > types.VitalMax:
		return types.VitalMax
	default:
		return v
	}
}

// ClampState bounds every vital in place.
func ClampState(s *types.CharacterState) {
	s.Health = Clamp(s.Health)
	s.Energy = Clamp(s.Energy)
	s.Happiness = Clamp(s.Happiness)
	s.Hunger = Clamp(s.Hunger)
	s.Fatigue = Clamp(s.Fatigue)
	s.Stress = Clamp(s.Stress)
}
