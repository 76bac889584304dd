package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/unboundedlabs/unbounded/internal/apperr"
	"github.com/unboundedlabs/unbounded/internal/state"
	"github.com/unboundedlabs/unbounded/internal/types"
)

// characterStateModel maps to the character_states table, 1:1 with characters.
type characterStateModel struct {
	CharacterID string `gorm:"primaryKey"`
	Health      int
	Energy      int
	Happiness   int
	Hunger      int
	Fatigue     int
	Stress      int
	Location    string
	Activity    string
	Version     int64
	UpdatedAt   time.Time
}

func (characterStateModel) TableName() string {
	return "character_states"
}

// StateRepo accesses character state snapshots.
type StateRepo struct {
	db *gorm.DB
}

// NewStateRepo returns a StateRepo.
func NewStateRepo(db *gorm.DB) *StateRepo {
	return &StateRepo{db: db}
}

// Get loads the current snapshot, including its version for later Save.
func (r *StateRepo) Get(ctx context.Context, characterID string) (*types.CharacterState, error) {
	var record characterStateModel
	if err := r.db.WithContext(ctx).Where("character_id = ?", characterID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("character state", characterID)
		}
		return nil, fmt.Errorf("failed to get character state: %w", err)
	}
	s := stateFromModel(record)
	return &s, nil
}

// Create inserts the initial snapshot at version 1. Vitals are clamped before
// the write.
func (r *StateRepo) Create(ctx context.Context, s *types.CharacterState) error {
	state.ClampState(s)
	s.Version = 1
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(stateToModel(s)).Error; err != nil {
		return apperr.Persistence(apperr.PersistenceWrite, fmt.Errorf("failed to insert character state: %w", err))
	}
	return nil
}

// Save writes the snapshot guarded by an optimistic version check: the update
// only lands if the stored version still matches the one the snapshot was
// loaded with. A stale version yields a conflict-kind PersistenceError and
// leaves the row untouched. Vitals are clamped before the write.
func (r *StateRepo) Save(ctx context.Context, s *types.CharacterState) error {
	state.ClampState(s)
	res := r.db.WithContext(ctx).Model(&characterStateModel{}).
		Where("character_id = ? AND version = ?", s.CharacterID, s.Version).
		Updates(map[string]any{
			"health":     s.Health,
			"energy":     s.Energy,
			"happiness":  s.Happiness,
			"hunger":     s.Hunger,
			"fatigue":    s.Fatigue,
			"stress":     s.Stress,
			"location":   s.Location,
			"activity":   s.Activity,
			"version":    s.Version + 1,
			"updated_at": s.UpdatedAt,
		})
	if res.Error != nil {
		return apperr.Persistence(apperr.PersistenceWrite, fmt.Errorf("failed to save character state: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return apperr.Persistence(apperr.PersistenceConflict,
			fmt.Errorf("state version %d for character %s is stale", s.Version, s.CharacterID))
	}
	s.Version++
	return nil
}

func stateToModel(s *types.CharacterState) *characterStateModel {
	return &characterStateModel{
		CharacterID: s.CharacterID,
		Health:      s.Health,
		Energy:      s.Energy,
		Happiness:   s.Happiness,
		Hunger:      s.Hunger,
		Fatigue:     s.Fatigue,
		Stress:      s.Stress,
		Location:    s.Location,
		Activity:    s.Activity,
		Version:     s.Version,
		UpdatedAt:   s.UpdatedAt,
	}
}

func stateFromModel(record characterStateModel) types.CharacterState {
	return types.CharacterState{
		CharacterID: record.CharacterID,
		Health:      record.Health,
		Energy:      record.Energy,
		Happiness:   record.Happiness,
		Hunger:      record.Hunger,
		Fatigue:     record.Fatigue,
		Stress:      record.Stress,
		Location:    record.Location,
		Activity:    record.Activity,
		Version:     record.Version,
		UpdatedAt:   record.UpdatedAt,
	}
}
