// Package prompt assembles the generation context from personality, current
// vitals, and retrieved memories. Pure: deterministic given its inputs.
package prompt

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/unboundedlabs/unbounded/internal/reply"
	"github.com/unboundedlabs/unbounded/internal/types"
)

const maxBackstoryChars = 1200

// BuildContext contains all inputs for prompt assembly.
type BuildContext struct {
	Character   *types.Character
	State       types.CharacterState
	Memories    []types.RetrievedFragment
	UserMessage string
}

// Request is the assembled context package handed to the generation client.
type Request struct {
	System string
	User   string
}

// Builder renders generation requests within a context budget.
type Builder struct {
	maxContextChars int
	nowFunc         func() time.Time
}

// NewBuilder creates a prompt Builder.
func NewBuilder(maxContextChars int) *Builder {
	if maxContextChars <= 0 {
		maxContextChars = 6000
	}
	return &Builder{
		maxContextChars: maxContextChars,
		nowFunc:         time.Now,
	}
}

// Build assembles the system and user payloads. Memories render in relevance
// order; when the budget is exceeded the lowest-relevance memories are dropped
// first, ties broken by keeping the most recent.
func (b *Builder) Build(ctx BuildContext) (Request, error) {
	if ctx.Character == nil {
		return Request{}, fmt.Errorf("character is required")
	}

	memories := sortByRelevance(ctx.Memories)
	for {
		system, err := b.render(ctx, memories)
		if err != nil {
			return Request{}, err
		}
		if len(system) <= b.maxContextChars || len(memories) == 0 {
			return Request{System: system, User: ctx.UserMessage}, nil
		}
		memories = memories[:len(memories)-1]
	}
}

func (b *Builder) render(ctx BuildContext, memories []types.RetrievedFragment) (string, error) {
	data := struct {
		Character   *types.Character
		Backstory   string
		State       types.CharacterState
		Memories    []types.RetrievedFragment
		Now         string
		ReplySchema string
	}{
		Character:   ctx.Character,
		Backstory:   truncate(ctx.Character.Backstory, maxBackstoryChars),
		State:       ctx.State,
		Memories:    memories,
		Now:         b.nowFunc().Format(time.RFC3339),
		ReplySchema: reply.SchemaJSON(),
	}

	var buf bytes.Buffer
	if err := systemTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to build prompt: %w", err)
	}
	return buf.String(), nil
}

// sortByRelevance orders by similarity descending, most recent first on ties.
func sortByRelevance(memories []types.RetrievedFragment) []types.RetrievedFragment {
	sorted := make([]types.RetrievedFragment, len(memories))
	copy(sorted, memories)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Similarity != sorted[j].Similarity {
			return sorted[i].Similarity > sorted[j].Similarity
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}
