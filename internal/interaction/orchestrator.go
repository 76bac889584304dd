// Package interaction sequences one conversation turn: load, decay, retrieve,
// assemble, generate, parse, transition, persist.
package interaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/unboundedlabs/unbounded/internal/apperr"
	"github.com/unboundedlabs/unbounded/internal/llm"
	"github.com/unboundedlabs/unbounded/internal/prompt"
	"github.com/unboundedlabs/unbounded/internal/reply"
	"github.com/unboundedlabs/unbounded/internal/state"
	"github.com/unboundedlabs/unbounded/internal/types"
)

// CharacterRepo loads character profiles.
type CharacterRepo interface {
	GetByID(ctx context.Context, id string) (*types.Character, error)
}

// StateRepo loads and seeds state snapshots outside the turn transaction.
type StateRepo interface {
	Get(ctx context.Context, characterID string) (*types.CharacterState, error)
	Create(ctx context.Context, s *types.CharacterState) error
}

// TxStore is the write surface available inside the atomic per-turn unit.
type TxStore interface {
	SaveState(ctx context.Context, s *types.CharacterState) error
	CreateInteraction(ctx context.Context, in *types.Interaction) error
	AddMemory(ctx context.Context, mem *types.MemoryFragment) error
}

// Persister commits a turn as one unit: all writes inside fn land together or
// not at all.
type Persister interface {
	InTransaction(ctx context.Context, fn func(tx TxStore) error) error
}

// InteractionLog reads back the persisted conversation history.
type InteractionLog interface {
	ListRecent(ctx context.Context, characterID string, limit int) ([]types.Interaction, error)
}

// MemoryService retrieves relevant fragments and embeds new ones.
type MemoryService interface {
	Search(ctx context.Context, characterID, query string) []types.RetrievedFragment
	Prepare(ctx context.Context, mem *types.MemoryFragment)
}

// Deps wires an Orchestrator.
type Deps struct {
	Characters CharacterRepo
	States     StateRepo
	Persister  Persister
	Log        InteractionLog
	Memories   MemoryService
	Builder    *prompt.Builder
	Client     llm.Client

	Rules    state.RuleSet
	Baseline state.Baseline
	Rates    state.DecayRates

	GenerateTimeout time.Duration
	RetryDelay      time.Duration
	HistoryLimit    int
}

// Orchestrator runs the interaction pipeline.
type Orchestrator struct {
	deps  Deps
	now   func() time.Time
	sleep func(time.Duration)
}

// New returns an Orchestrator with default policy values filled in.
func New(deps Deps) *Orchestrator {
	if deps.Rules.Actions == nil && deps.Rules.Emotions == nil {
		deps.Rules = state.DefaultRules()
	}
	if deps.Baseline == (state.Baseline{}) {
		deps.Baseline = state.DefaultBaseline
	}
	if deps.Rates == (state.DecayRates{}) {
		deps.Rates = state.DefaultDecayRates
	}
	if deps.GenerateTimeout <= 0 {
		deps.GenerateTimeout = 30 * time.Second
	}
	if deps.RetryDelay <= 0 {
		deps.RetryDelay = 500 * time.Millisecond
	}
	if deps.HistoryLimit <= 0 {
		deps.HistoryLimit = 20
	}
	return &Orchestrator{
		deps:  deps,
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// Handle runs one turn for the character and returns the logged interaction.
// Failures before the persistence step leave stored state untouched.
func (o *Orchestrator) Handle(ctx context.Context, characterID, message string) (*types.Interaction, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperr.Validation("message must not be empty")
	}

	character, err := o.deps.Characters.GetByID(ctx, characterID)
	if err != nil {
		return nil, err
	}

	current, err := o.loadState(ctx, characterID)
	if err != nil {
		return nil, err
	}

	now := o.now()
	decayed := state.Decay(*current, now.Sub(current.UpdatedAt), o.deps.Baseline, o.deps.Rates)

	memories := o.deps.Memories.Search(ctx, characterID, message)

	req, err := o.deps.Builder.Build(prompt.BuildContext{
		Character:   character,
		State:       decayed,
		Memories:    memories,
		UserMessage: message,
	})
	if err != nil {
		return nil, err
	}

	// The slow network step runs with no locks held; only the final
	// compare-and-write is guarded.
	raw, err := o.generate(ctx, req)
	if err != nil {
		return nil, err
	}
	parsed := reply.Parse(raw)

	next := state.Apply(decayed, parsed, o.deps.Rules, now)

	record := &types.Interaction{
		CharacterID: characterID,
		Content:     message,
		Reply:       parsed,
		Timestamp:   now,
	}
	fragment := &types.MemoryFragment{
		CharacterID: characterID,
		Content:     memoryNote(character.Name, message, parsed),
		CreatedAt:   now,
	}
	o.deps.Memories.Prepare(ctx, fragment)

	if err := o.persist(ctx, &next, record, fragment); err != nil {
		if !apperr.IsConflict(err) {
			return nil, err
		}
		// Another turn committed first. Reapply this turn's transition on
		// top of the fresh snapshot so neither update is lost, then try
		// once more.
		slog.Info("state version conflict, reapplying turn", "character_id", characterID)
		fresh, loadErr := o.loadState(ctx, characterID)
		if loadErr != nil {
			return nil, loadErr
		}
		redecayed := state.Decay(*fresh, now.Sub(fresh.UpdatedAt), o.deps.Baseline, o.deps.Rates)
		next = state.Apply(redecayed, parsed, o.deps.Rules, now)
		if err := o.persist(ctx, &next, record, fragment); err != nil {
			return nil, err
		}
	}

	return record, nil
}

// CurrentState returns the stored snapshot with pending decay applied, without
// mutating storage.
func (o *Orchestrator) CurrentState(ctx context.Context, characterID string) (*types.CharacterState, error) {
	if _, err := o.deps.Characters.GetByID(ctx, characterID); err != nil {
		return nil, err
	}
	current, err := o.loadState(ctx, characterID)
	if err != nil {
		return nil, err
	}
	decayed := state.Decay(*current, o.now().Sub(current.UpdatedAt), o.deps.Baseline, o.deps.Rates)
	return &decayed, nil
}

// History returns up to limit recent interactions in chronological order.
func (o *Orchestrator) History(ctx context.Context, characterID string, limit int) ([]types.Interaction, error) {
	if limit <= 0 {
		limit = o.deps.HistoryLimit
	}
	if _, err := o.deps.Characters.GetByID(ctx, characterID); err != nil {
		return nil, err
	}
	return o.deps.Log.ListRecent(ctx, characterID, limit)
}

func (o *Orchestrator) loadState(ctx context.Context, characterID string) (*types.CharacterState, error) {
	current, err := o.deps.States.Get(ctx, characterID)
	if err == nil {
		return current, nil
	}
	var nf *apperr.NotFoundError
	if !errors.As(err, &nf) {
		return nil, err
	}
	// State rows are normally seeded at character creation; recover here so
	// older characters still work.
	def := state.NewDefaultState(characterID, o.now())
	if err := o.deps.States.Create(ctx, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

// generate calls the backend with a per-call timeout, retrying once after a
// short backoff. A reply is never fabricated: exhausted retries surface the
// backend's GenerationError.
func (o *Orchestrator) generate(ctx context.Context, req prompt.Request) (string, error) {
	raw, err := o.generateOnce(ctx, req)
	if err == nil {
		return raw, nil
	}
	var ge *apperr.GenerationError
	if !errors.As(err, &ge) {
		return "", err
	}
	slog.Warn("generation failed, retrying once", "kind", string(ge.Kind), "error", err.Error())
	o.sleep(o.deps.RetryDelay)
	return o.generateOnce(ctx, req)
}

func (o *Orchestrator) generateOnce(ctx context.Context, req prompt.Request) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.deps.GenerateTimeout)
	defer cancel()
	return o.deps.Client.Generate(callCtx, llm.Request{
		System:      req.System,
		Prompt:      req.User,
		Temperature: 0.8,
	})
}

func (o *Orchestrator) persist(ctx context.Context, next *types.CharacterState, record *types.Interaction, fragment *types.MemoryFragment) error {
	return o.deps.Persister.InTransaction(ctx, func(tx TxStore) error {
		if err := tx.SaveState(ctx, next); err != nil {
			return err
		}
		if err := tx.CreateInteraction(ctx, record); err != nil {
			return err
		}
		fragment.InteractionID = record.ID
		return tx.AddMemory(ctx, fragment)
	})
}

func memoryNote(characterName, message string, parsed types.GeneratedReply) string {
	return fmt.Sprintf("User said: %q. %s replied: %q", message, characterName, parsed.Text)
}
