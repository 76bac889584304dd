package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/unboundedlabs/unbounded/internal/types"
)

// memoryModel maps to the memory_fragments table.
type memoryModel struct {
	ID            string `gorm:"primaryKey"`
	CharacterID   string `gorm:"index"`
	InteractionID string
	Content       string
	// Embedding stores the vector representation for similarity search.
	Embedding *pgvector.Vector `gorm:"type:vector"`
	CreatedAt time.Time
}

func (memoryModel) TableName() string {
	return "memory_fragments"
}

// MemoryRepo accesses the append-only memory fragments.
type MemoryRepo struct {
	db *gorm.DB
}

// NewMemoryRepo returns a MemoryRepo.
func NewMemoryRepo(db *gorm.DB) *MemoryRepo {
	return &MemoryRepo{db: db}
}

// Add appends one fragment. A missing embedding is stored as NULL; the
// fragment then only surfaces through recency queries.
func (r *MemoryRepo) Add(ctx context.Context, mem *types.MemoryFragment) error {
	if mem.ID == "" {
		mem.ID = uuid.NewString()
	}
	if mem.CreatedAt.IsZero() {
		mem.CreatedAt = time.Now().UTC()
	}
	var vector *pgvector.Vector
	if len(mem.Embedding) > 0 {
		v := pgvector.NewVector(mem.Embedding)
		vector = &v
	}
	record := memoryModel{
		ID:            mem.ID,
		CharacterID:   mem.CharacterID,
		InteractionID: mem.InteractionID,
		Content:       mem.Content,
		Embedding:     vector,
		CreatedAt:     mem.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert memory fragment: %w", err)
	}
	return nil
}

// SearchSimilar returns the topK fragments above the cosine similarity
// threshold, most similar first, most recent first on equal similarity.
func (r *MemoryRepo) SearchSimilar(ctx context.Context, characterID string, embedding []float32, topK int, threshold float64) ([]types.RetrievedFragment, error) {
	if len(embedding) == 0 {
		return nil, nil
	}

	query := `
		SELECT content, 1 - (embedding <=> $1) AS similarity, created_at
		FROM memory_fragments
		WHERE character_id = $2
		  AND embedding IS NOT NULL
		  AND 1 - (embedding <=> $1) > $3
		ORDER BY similarity DESC, created_at DESC
		LIMIT $4`

	var results []types.RetrievedFragment
	if err := r.db.WithContext(ctx).
		Raw(query, pgvector.NewVector(embedding), characterID, threshold, topK).
		Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to search similar memories: %w", err)
	}
	return results, nil
}

// GetRecent returns the latest fragments regardless of embedding, newest
// first. Used when no query embedding is available.
func (r *MemoryRepo) GetRecent(ctx context.Context, characterID string, limit int) ([]types.RetrievedFragment, error) {
	var records []memoryModel
	if err := r.db.WithContext(ctx).
		Where("character_id = ?", characterID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query recent memories: %w", err)
	}

	results := make([]types.RetrievedFragment, 0, len(records))
	for _, record := range records {
		results = append(results, types.RetrievedFragment{
			Content:   record.Content,
			CreatedAt: record.CreatedAt,
		})
	}
	return results, nil
}
