package backstory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/unboundedlabs/unbounded/internal/apperr"
	"github.com/unboundedlabs/unbounded/internal/llm"
	"github.com/unboundedlabs/unbounded/internal/types"
)

type fakeCharacterStore struct {
	character *types.Character
	updated   string
}

func (s *fakeCharacterStore) GetByID(ctx context.Context, id string) (*types.Character, error) {
	if s.character == nil || s.character.ID != id {
		return nil, apperr.NotFound("character", id)
	}
	c := *s.character
	return &c, nil
}

func (s *fakeCharacterStore) UpdateBackstory(ctx context.Context, id, backstory string) error {
	s.updated = backstory
	return nil
}

type fakeAppender struct {
	appended []*types.MemoryFragment
	err      error
}

func (a *fakeAppender) Append(ctx context.Context, mem *types.MemoryFragment) error {
	if a.err != nil {
		return a.err
	}
	a.appended = append(a.appended, mem)
	return nil
}

type fakeLLM struct {
	response string
	err      error
	lastReq  llm.Request
}

func (c *fakeLLM) Generate(ctx context.Context, req llm.Request) (string, error) {
	c.lastReq = req
	return c.response, c.err
}

func (c *fakeLLM) Name() string { return "fake" }

func TestGenerateStoresBackstoryAndIngestsMemory(t *testing.T) {
	store := &fakeCharacterStore{character: &types.Character{ID: "char-1", Name: "Mira", Description: "A cartographer."}}
	appender := &fakeAppender{}
	client := &fakeLLM{response: "  Born in the borderlands...  "}
	gen := NewGenerator(client, store, appender, 0)

	got, err := gen.Generate(context.Background(), "char-1", Request{Tone: "dark", Themes: []string{"loss", "maps"}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "Born in the borderlands..." {
		t.Fatalf("unexpected backstory: %q", got)
	}
	if store.updated != got {
		t.Fatalf("backstory not stored: %q", store.updated)
	}
	if len(appender.appended) != 1 || !strings.Contains(appender.appended[0].Content, "borderlands") {
		t.Fatalf("backstory not ingested into memory: %+v", appender.appended)
	}
	if !strings.Contains(client.lastReq.Prompt, "dark tone") {
		t.Fatalf("prompt missing tone: %s", client.lastReq.Prompt)
	}
	if !strings.Contains(client.lastReq.Prompt, "loss, maps") {
		t.Fatalf("prompt missing themes: %s", client.lastReq.Prompt)
	}
}

func TestGenerateIsIdempotentForExistingBackstory(t *testing.T) {
	store := &fakeCharacterStore{character: &types.Character{ID: "char-1", Name: "Mira", Backstory: "Already written."}}
	client := &fakeLLM{response: "should not be used"}
	gen := NewGenerator(client, store, &fakeAppender{}, 0)

	got, err := gen.Generate(context.Background(), "char-1", Request{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "Already written." {
		t.Fatalf("expected existing backstory, got %q", got)
	}
	if client.lastReq.Prompt != "" {
		t.Fatalf("generation should not run when backstory exists")
	}
}

func TestGenerateUnknownCharacter(t *testing.T) {
	gen := NewGenerator(&fakeLLM{}, &fakeCharacterStore{}, &fakeAppender{}, 0)
	_, err := gen.Generate(context.Background(), "nope", Request{})
	var nf *apperr.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestGenerateSurfacesGenerationError(t *testing.T) {
	store := &fakeCharacterStore{character: &types.Character{ID: "char-1", Name: "Mira"}}
	client := &fakeLLM{err: apperr.Generation(apperr.GenerationProviderError, errors.New("503"))}
	gen := NewGenerator(client, store, &fakeAppender{}, 0)

	_, err := gen.Generate(context.Background(), "char-1", Request{})
	var ge *apperr.GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if store.updated != "" {
		t.Fatalf("nothing should be stored on failure")
	}
}
