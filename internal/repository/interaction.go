package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unboundedlabs/unbounded/internal/types"
)

// interactionModel maps to the interactions table. The structured reply is
// stored as JSONB alongside the user message.
type interactionModel struct {
	ID          string `gorm:"primaryKey"`
	CharacterID string `gorm:"index:ix_interactions_character_id_timestamp"`
	Content     string
	Reply       json.RawMessage `gorm:"type:jsonb"`
	Timestamp   time.Time       `gorm:"index:ix_interactions_character_id_timestamp"`
}

func (interactionModel) TableName() string {
	return "interactions"
}

// InteractionRepo accesses the append-only interaction log.
type InteractionRepo struct {
	db *gorm.DB
}

// NewInteractionRepo returns an InteractionRepo.
func NewInteractionRepo(db *gorm.DB) *InteractionRepo {
	return &InteractionRepo{db: db}
}

// Create appends one interaction, assigning ID and timestamp when empty.
func (r *InteractionRepo) Create(ctx context.Context, in *types.Interaction) error {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now().UTC()
	}
	replyRaw, err := json.Marshal(in.Reply)
	if err != nil {
		return fmt.Errorf("failed to encode reply: %w", err)
	}
	record := interactionModel{
		ID:          in.ID,
		CharacterID: in.CharacterID,
		Content:     in.Content,
		Reply:       replyRaw,
		Timestamp:   in.Timestamp,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert interaction: %w", err)
	}
	return nil
}

// ListRecent returns up to limit interactions for a character in
// chronological order.
func (r *InteractionRepo) ListRecent(ctx context.Context, characterID string, limit int) ([]types.Interaction, error) {
	var records []interactionModel
	if err := r.db.WithContext(ctx).
		Where("character_id = ?", characterID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}

	results := make([]types.Interaction, 0, len(records))
	for _, record := range records {
		results = append(results, interactionFromModel(record))
	}

	// Oldest -> newest
	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}
	return results, nil
}

func interactionFromModel(record interactionModel) types.Interaction {
	var reply types.GeneratedReply
	_ = json.Unmarshal(record.Reply, &reply)
	return types.Interaction{
		ID:          record.ID,
		CharacterID: record.CharacterID,
		Content:     record.Content,
		Reply:       reply,
		Timestamp:   record.Timestamp,
	}
}
