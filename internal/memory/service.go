package memory

import (
	"context"
	"log/slog"
	"strings"

	"github.com/unboundedlabs/unbounded/internal/types"
)

// FragmentRepo is the persistence surface the service needs.
type FragmentRepo interface {
	Add(ctx context.Context, mem *types.MemoryFragment) error
	SearchSimilar(ctx context.Context, characterID string, embedding []float32, topK int, threshold float64) ([]types.RetrievedFragment, error)
	GetRecent(ctx context.Context, characterID string, limit int) ([]types.RetrievedFragment, error)
}

// Service is the memory store adapter: append fragments, retrieve by
// similarity with recency as fallback. Retrieval never hard-fails a turn:
// embedding or query errors degrade to an empty memory context.
type Service struct {
	embedder            Embedder
	fragments           FragmentRepo
	topK                int
	similarityThreshold float64
}

// NewService returns a memory Service.
func NewService(embedder Embedder, fragments FragmentRepo, topK int, threshold float64) *Service {
	if topK <= 0 {
		topK = 5
	}
	if threshold <= 0 {
		threshold = 0.7
	}
	return &Service{
		embedder:            embedder,
		fragments:           fragments,
		topK:                topK,
		similarityThreshold: threshold,
	}
}

// Search returns up to topK fragments relevant to the query, most relevant
// first. Zero results and embedding failures both yield an empty slice.
func (s *Service) Search(ctx context.Context, characterID, query string) []types.RetrievedFragment {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		slog.Warn("memory query embedding failed, using recency fallback", "character_id", characterID, "error", err.Error())
		return s.recent(ctx, characterID)
	}

	results, err := s.fragments.SearchSimilar(ctx, characterID, vec, s.topK, s.similarityThreshold)
	if err != nil {
		slog.Warn("memory search failed, proceeding without memories", "character_id", characterID, "error", err.Error())
		return nil
	}
	return results
}

// Prepare fills in the fragment's embedding ahead of the durable write, so
// the store happens inside a transaction without network calls. An embedding
// failure degrades to a nil vector rather than losing the memory.
func (s *Service) Prepare(ctx context.Context, mem *types.MemoryFragment) {
	vec, err := s.embedder.EmbedDocument(ctx, mem.Content)
	if err != nil {
		slog.Warn("memory embedding failed, storing without vector", "character_id", mem.CharacterID, "error", err.Error())
		return
	}
	mem.Embedding = vec
}

// Append prepares and stores one fragment outside any turn transaction, for
// out-of-band ingestion such as backstories.
func (s *Service) Append(ctx context.Context, mem *types.MemoryFragment) error {
	s.Prepare(ctx, mem)
	return s.fragments.Add(ctx, mem)
}

func (s *Service) recent(ctx context.Context, characterID string) []types.RetrievedFragment {
	results, err := s.fragments.GetRecent(ctx, characterID, s.topK)
	if err != nil {
		slog.Warn("recency fallback failed, proceeding without memories", "character_id", characterID, "error", err.Error())
		return nil
	}
	return results
}
