// Package repository persists characters, states, interactions, and memory
// fragments in PostgreSQL.
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/unboundedlabs/unbounded/internal/apperr"
)

// Store holds the DB pool and repositories.
type Store struct {
	db           *gorm.DB
	Characters   *CharacterRepo
	States       *StateRepo
	Interactions *InteractionRepo
	Memories     *MemoryRepo
}

// NewStore initializes the PostgreSQL pool and repositories.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return newStoreWithDB(db), nil
}

func newStoreWithDB(db *gorm.DB) *Store {
	return &Store{
		db:           db,
		Characters:   NewCharacterRepo(db),
		States:       NewStateRepo(db),
		Interactions: NewInteractionRepo(db),
		Memories:     NewMemoryRepo(db),
	}
}

// Migrate creates the schema. Plain tables go through AutoMigrate; the memory
// table needs the pgvector extension and its vector column, so it is created
// with raw SQL.
func (s *Store) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)

	if err := db.AutoMigrate(&characterModel{}, &characterStateModel{}, &interactionModel{}); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS memory_fragments (
			id text PRIMARY KEY,
			character_id text NOT NULL,
			interaction_id text,
			content text NOT NULL,
			embedding vector(768),
			created_at timestamptz NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS ix_memory_fragments_character_id_created_at
			ON memory_fragments (character_id, created_at DESC)`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

// InTransaction runs fn against a transaction-bound Store. The per-turn state
// update, interaction record, and memory fragments commit as one unit or not
// at all. Domain errors raised inside fn pass through unchanged; anything else
// surfaces as a write-kind PersistenceError.
func (s *Store) InTransaction(ctx context.Context, fn func(tx *Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newStoreWithDB(tx))
	})
	if err == nil {
		return nil
	}
	var pe *apperr.PersistenceError
	var nf *apperr.NotFoundError
	if errors.As(err, &pe) || errors.As(err, &nf) {
		return err
	}
	return apperr.Persistence(apperr.PersistenceWrite, err)
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	if s.db == nil {
		return
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return
	}
	_ = sqlDB.Close()
}
