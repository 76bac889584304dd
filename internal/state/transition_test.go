package state

import (
	"testing"
	"time"

	"github.com/unboundedlabs/unbounded/internal/types"
)

func strPtr(s string) *string { return &s }

func TestApplyRestRaisesEnergyLowersFatigue(t *testing.T) {
	now := time.Now()
	s := NewDefaultState("char-1", now)
	s.Energy = 50
	s.Fatigue = 60

	after := Apply(s, types.GeneratedReply{
		Text:   "I'll lie down for a while.",
		Action: strPtr("rest"),
	}, DefaultRules(), now)

	if after.Energy <= s.Energy {
		t.Fatalf("expected energy to rise, got %d -> %d", s.Energy, after.Energy)
	}
	if after.Fatigue >= s.Fatigue {
		t.Fatalf("expected fatigue to fall, got %d -> %d", s.Fatigue, after.Fatigue)
	}
	if after.Energy > types.VitalMax || after.Fatigue < types.VitalMin {
		t.Fatalf("vitals out of bounds: %+v", after)
	}
	if after.Activity != "rest" {
		t.Fatalf("expected activity to track the action, got %q", after.Activity)
	}
}

func TestApplyClampsAdversarialEffects(t *testing.T) {
	now := time.Now()
	s := NewDefaultState("char-1", now)

	after := Apply(s, types.GeneratedReply{
		Text: "...",
		Effects: map[string]int{
			"health":    100000,
			"energy":    -100000,
			"happiness": 99,
			"stress":    -99,
		},
	}, DefaultRules(), now)

	if after.Health != types.VitalMax {
		t.Fatalf("expected health clamped to max, got %d", after.Health)
	}
	if after.Energy != types.VitalMin {
		t.Fatalf("expected energy clamped to min, got %d", after.Energy)
	}
	if after.Happiness != types.VitalMax || after.Stress != types.VitalMin {
		t.Fatalf("unexpected clamp: %+v", after)
	}
}

func TestApplyUnknownTagsLeaveRulesUnapplied(t *testing.T) {
	now := time.Now()
	s := NewDefaultState("char-1", now)
	s.Energy = 50

	after := Apply(s, types.GeneratedReply{
		Text:    "hm",
		Action:  strPtr("juggling"),
		Emotion: strPtr("perplexed"),
	}, DefaultRules(), now)

	// Only the per-interaction energy cost applies.
	if after.Energy != 49 {
		t.Fatalf("expected only base energy cost, got %d", after.Energy)
	}
	if after.Activity != "juggling" {
		t.Fatalf("activity should still track unknown actions, got %q", after.Activity)
	}
}

func TestApplyEmotionModifier(t *testing.T) {
	now := time.Now()
	s := NewDefaultState("char-1", now)
	s.Stress = 50
	s.Happiness = 50

	after := Apply(s, types.GeneratedReply{
		Text:    "That makes me so angry.",
		Emotion: strPtr("Angry"),
	}, DefaultRules(), now)

	if after.Stress <= 50 {
		t.Fatalf("expected stress to rise for angry emotion, got %d", after.Stress)
	}
	if after.Happiness >= 50 {
		t.Fatalf("expected happiness to fall for angry emotion, got %d", after.Happiness)
	}
}
