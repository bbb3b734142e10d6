package cache

import (
	"context"
	"errors"

	"stash/internal/domain"
)

// ViewCache holds enriched projections keyed by (user, kind). It is an
// acceleration layer only; a miss or failure always falls back to the
// store, and mutations invalidate.
type ViewCache interface {
	Get(ctx context.Context, userID string, kind domain.Kind) ([]domain.EnrichedItem, error)
	Set(ctx context.Context, userID string, kind domain.Kind, items []domain.EnrichedItem) error
	Delete(ctx context.Context, userID string, kind domain.Kind) error
}

var ErrCacheMiss = errors.New("cache miss")

// Noop disables caching; every read is a miss.
type Noop struct{}

func (Noop) Get(context.Context, string, domain.Kind) ([]domain.EnrichedItem, error) {
	return nil, ErrCacheMiss
}
func (Noop) Set(context.Context, string, domain.Kind, []domain.EnrichedItem) error { return nil }
func (Noop) Delete(context.Context, string, domain.Kind) error                     { return nil }
