package state

import (
	"strings"
	"time"

	"github.com/unboundedlabs/unbounded/internal/types"
)

// Effects is a set of vital deltas applied after a generation cycle.
type Effects struct {
	Health    int
	Energy    int
	Happiness int
	Hunger    int
	Fatigue   int
	Stress    int
}

// RuleSet maps parsed action tags and emotion tags to vital deltas. The exact
// numbers are tunable policy; callers should rely only on direction and on
// clamping.
type RuleSet struct {
	Actions  map[string]Effects
	Emotions map[string]Effects
}

// DefaultRules mirrors the simulation's activity table.
func DefaultRules() RuleSet {
	return RuleSet{
		Actions: map[string]Effects{
			"feed":      {Hunger: -30, Energy: 10, Happiness: 5},
			"eat":       {Hunger: -30, Energy: 10, Happiness: 5},
			"rest":      {Fatigue: -40, Energy: 30, Stress: -20},
			"sleep":     {Fatigue: -40, Energy: 30, Stress: -20},
			"play":      {Happiness: 20, Energy: -15, Fatigue: 10, Stress: -15},
			"exercise":  {Health: 15, Energy: -25, Fatigue: 20, Stress: -10},
			"socialize": {Happiness: 15, Energy: -10, Stress: -25},
			"learn":     {Energy: -20, Fatigue: 15, Stress: 10},
			"combat":    {Energy: -30, Stress: 25, Fatigue: 15},
		},
		Emotions: map[string]Effects{
			"happy":   {Happiness: 5, Stress: -5},
			"content": {Happiness: 3},
			"sad":     {Happiness: -5, Stress: 5},
			"angry":   {Stress: 10, Happiness: -5},
			"afraid":  {Stress: 10},
			"tired":   {Fatigue: 5, Energy: -5},
		},
	}
}

// Apply folds a parsed reply into the state: action deltas, emotion deltas,
// and any explicit effects the model reported, then clamps. Every interaction
// costs a little energy regardless of outcome. The action tag, when present,
// becomes the character's current activity.
func Apply(s types.CharacterState, reply types.GeneratedReply, rules RuleSet, now time.Time) types.CharacterState {
	s.Energy -= 1

	if reply.Action != nil {
		if eff, ok := rules.Actions[normalizeTag(*reply.Action)]; ok {
			addEffects(&s, eff)
		}
		s.Activity = normalizeTag(*reply.Action)
	}
	if reply.Emotion != nil {
		if eff, ok := rules.Emotions[normalizeTag(*reply.Emotion)]; ok {
			addEffects(&s, eff)
		}
	}
	for vital, delta := range reply.Effects {
		addVital(&s, vital, delta)
	}

	ClampState(&s)
	s.UpdatedAt = now
	return s
}

func addEffects(s *types.CharacterState, eff Effects) {
	s.Health += eff.Health
	s.Energy += eff.Energy
	s.Happiness += eff.Happiness
	s.Hunger += eff.Hunger
	s.Fatigue += eff.Fatigue
	s.Stress += eff.Stress
}

func addVital(s *types.CharacterState, vital string, delta int) {
	switch normalizeTag(vital) {
	case "health":
		s.Health += delta
	case "energy":
		s.Energy += delta
	case "happiness":
		s.Happiness += delta
	case "hunger":
		s.Hunger += delta
	case "fatigue":
		s.Fatigue += delta
	case "stress":
		s.Stress += delta
	}
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
