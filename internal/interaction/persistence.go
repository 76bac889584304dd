package interaction

import (
	"context"

	"github.com/unboundedlabs/unbounded/internal/repository"
	"github.com/unboundedlabs/unbounded/internal/types"
)

// StorePersister adapts the PostgreSQL store to the Persister contract.
type StorePersister struct {
	Store *repository.Store
}

func (p StorePersister) InTransaction(ctx context.Context, fn func(tx TxStore) error) error {
	return p.Store.InTransaction(ctx, func(tx *repository.Store) error {
		return fn(storeTx{tx: tx})
	})
}

type storeTx struct {
	tx *repository.Store
}

func (t storeTx) SaveState(ctx context.Context, s *types.CharacterState) error {
	return t.tx.States.Save(ctx, s)
}

func (t storeTx) CreateInteraction(ctx context.Context, in *types.Interaction) error {
	return t.tx.Interactions.Create(ctx, in)
}

func (t storeTx) AddMemory(ctx context.Context, mem *types.MemoryFragment) error {
	return t.tx.Memories.Add(ctx, mem)
}
