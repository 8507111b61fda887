package drug

import (
	"context"

	"github.com/google/uuid"
)

// DrugRepository persists monographs keyed by unique drug name.
type DrugRepository interface {
	Upsert(ctx context.Context, d *Drug) error
	GetByName(ctx context.Context, name string) (*Drug, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Drug, error)
	List(ctx context.Context, limit, offset int) ([]*Drug, int, error)
}

// InteractionRepository persists pairwise interactions. Pairs are
// order-independent: Upsert and GetByPair canonicalize the ids.
type InteractionRepository interface {
	Upsert(ctx context.Context, i *Interaction) error
	GetByPair(ctx context.Context, a, b uuid.UUID) (*Interaction, error)
	List(ctx context.Context, limit, offset int) ([]*Interaction, int, error)
}

// AlternativeRepository persists therapeutic alternatives per indication.
type AlternativeRepository interface {
	Upsert(ctx context.Context, a *Alternative) error
	ListByIndication(ctx context.Context, indication string) ([]*Alternative, error)
}
