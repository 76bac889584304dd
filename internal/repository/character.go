package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unboundedlabs/unbounded/internal/apperr"
	"github.com/unboundedlabs/unbounded/internal/types"
)

// characterModel maps to the characters table.
type characterModel struct {
	ID          string `gorm:"primaryKey"`
	UserID      string
	Name        string
	Description string
	Personality string
	Backstory   string
	PortraitURL string
	CreatedAt   time.Time
}

func (characterModel) TableName() string {
	return "characters"
}

// CharacterRepo accesses character data.
type CharacterRepo struct {
	db *gorm.DB
}

// NewCharacterRepo returns a CharacterRepo.
func NewCharacterRepo(db *gorm.DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

// GetByID fetches a character by ID.
func (r *CharacterRepo) GetByID(ctx context.Context, id string) (*types.Character, error) {
	var record characterModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("character", id)
		}
		return nil, fmt.Errorf("failed to get character by id: %w", err)
	}
	c := characterFromModel(record)
	return &c, nil
}

// Create inserts a new character, assigning its ID when empty.
func (r *CharacterRepo) Create(ctx context.Context, c *types.Character) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	record := characterModel{
		ID:          c.ID,
		UserID:      c.UserID,
		Name:        c.Name,
		Description: c.Description,
		Personality: c.Personality,
		Backstory:   c.Backstory,
		PortraitURL: c.PortraitURL,
		CreatedAt:   c.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert character: %w", err)
	}
	return nil
}

// UpdateBackstory fills in the asynchronously generated backstory.
func (r *CharacterRepo) UpdateBackstory(ctx context.Context, id, backstory string) error {
	res := r.db.WithContext(ctx).Model(&characterModel{}).
		Where("id = ?", id).
		Update("backstory", backstory)
	if res.Error != nil {
		return fmt.Errorf("failed to update backstory: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("character", id)
	}
	return nil
}

func characterFromModel(record characterModel) types.Character {
	return types.Character{
		ID:          record.ID,
		UserID:      record.UserID,
		Name:        record.Name,
		Description: record.Description,
		Personality: record.Personality,
		Backstory:   record.Backstory,
		PortraitURL: record.PortraitURL,
		CreatedAt:   record.CreatedAt,
	}
}
