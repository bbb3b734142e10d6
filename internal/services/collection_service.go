package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"stash/internal/cache"
	"stash/internal/domain"
	"stash/internal/repos"
)

// replaceRetries bounds the optimistic read-modify-write loop. These are
// single-user resources, so contention is rare and retries are immediate.
const replaceRetries = 5

const catalogCheckFanout = 8

// CollectionStore is the slice of the repository the mutation engine
// needs: a versioned read and a version-guarded replace.
type CollectionStore interface {
	Get(ctx context.Context, userID string, kind domain.Kind) (domain.Collection, error)
	Replace(ctx context.Context, userID string, kind domain.Kind, entries []domain.Entry, readVersion int64) error
}

// CollectionService is the mutation engine. Every write goes through a
// version-guarded read-modify-write so concurrent mutations for the same
// (user, kind) serialize to some order with no lost updates.
type CollectionService struct {
	Store   CollectionStore
	Prods   *repos.ProductRepo
	Cache   cache.ViewCache
	Timeout time.Duration
}

func NewCollectionService(store CollectionStore, prods *repos.ProductRepo, vc cache.ViewCache, timeout time.Duration) *CollectionService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CollectionService{Store: store, Prods: prods, Cache: vc, Timeout: timeout}
}

// AddToCart adds one unit: an existing entry keeps its position and gains
// quantity, a new entry is appended at quantity 1.
func (s *CollectionService) AddToCart(ctx context.Context, userID, productID string) error {
	if err := s.requireProduct(ctx, productID); err != nil {
		return err
	}
	return s.mutate(ctx, userID, domain.KindCart, func(entries []domain.Entry) ([]domain.Entry, error) {
		for i, e := range entries {
			if e.ProductID == productID {
				entries[i].Quantity = e.Quantity + 1
				return entries, nil
			}
		}
		return append(entries, domain.Entry{ProductID: productID, Quantity: 1}), nil
	})
}

// SetQuantity overwrites an existing cart line's quantity. Quantities
// below 1 are rejected, not clamped; deletion is an explicit operation.
func (s *CollectionService) SetQuantity(ctx context.Context, userID, productID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity %d: %w", quantity, domain.ErrInvalidArgument)
	}
	if err := s.requireProduct(ctx, productID); err != nil {
		return err
	}
	return s.mutate(ctx, userID, domain.KindCart, func(entries []domain.Entry) ([]domain.Entry, error) {
		for i, e := range entries {
			if e.ProductID == productID {
				entries[i].Quantity = quantity
				return entries, nil
			}
		}
		return nil, fmt.Errorf("cart entry %s: %w", productID, domain.ErrNotFound)
	})
}

// RemoveFromCart is an idempotent no-op when the entry is absent, so a
// client retrying after a timeout never sees a spurious failure. No
// catalog check: entries whose product vanished must stay removable.
func (s *CollectionService) RemoveFromCart(ctx context.Context, userID, productID string) error {
	return s.remove(ctx, userID, domain.KindCart, productID)
}

func (s *CollectionService) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	return s.remove(ctx, userID, domain.KindWishlist, productID)
}

// AddToWishlist reports a duplicate instead of ignoring it; the interface
// wants to tell the shopper "already saved".
func (s *CollectionService) AddToWishlist(ctx context.Context, userID, productID string) error {
	if err := s.requireProduct(ctx, productID); err != nil {
		return err
	}
	return s.mutate(ctx, userID, domain.KindWishlist, func(entries []domain.Entry) ([]domain.Entry, error) {
		for _, e := range entries {
			if e.ProductID == productID {
				return nil, fmt.Errorf("product %s already saved: %w", productID, domain.ErrAlreadyExists)
			}
		}
		return append(entries, domain.Entry{ProductID: productID}), nil
	})
}

// BulkAddToCart appends each id not already in the cart at quantity 1 and
// leaves present ids untouched: re-adding a wishlist must not inflate
// existing lines. Catalog checks fan out; the write itself is one guarded
// replace.
func (s *CollectionService) BulkAddToCart(ctx context.Context, userID string, productIDs []string) error {
	if len(productIDs) == 0 {
		return fmt.Errorf("empty product list: %w", domain.ErrInvalidArgument)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(catalogCheckFanout)
	for _, id := range productIDs {
		g.Go(func() error {
			return s.requireProduct(gctx, id)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return s.mutate(ctx, userID, domain.KindCart, func(entries []domain.Entry) ([]domain.Entry, error) {
		seen := make(map[string]bool, len(entries))
		for _, e := range entries {
			seen[e.ProductID] = true
		}
		for _, id := range productIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			entries = append(entries, domain.Entry{ProductID: id, Quantity: 1})
		}
		return entries, nil
	})
}

func (s *CollectionService) remove(ctx context.Context, userID string, kind domain.Kind, productID string) error {
	return s.mutate(ctx, userID, kind, func(entries []domain.Entry) ([]domain.Entry, error) {
		out := entries[:0]
		for _, e := range entries {
			if e.ProductID != productID {
				out = append(out, e)
			}
		}
		return out, nil
	})
}

// mutate is the guarded read-modify-write cycle: read at a version, apply
// the transformation, replace at that version, retry the whole cycle on
// conflict. Exhausting the retry budget surfaces as unavailable.
func (s *CollectionService) mutate(ctx context.Context, userID string, kind domain.Kind, apply func([]domain.Entry) ([]domain.Entry, error)) error {
	var lastErr error
	for attempt := 0; attempt < replaceRetries; attempt++ {
		col, err := s.getBounded(ctx, userID, kind)
		if err != nil {
			return err
		}

		next, err := apply(col.Entries)
		if err != nil {
			return err
		}

		err = s.replaceBounded(ctx, userID, kind, next, col.Version)
		if err == nil {
			s.invalidate(ctx, userID, kind)
			return nil
		}
		if errors.Is(err, domain.ErrConflict) {
			lastErr = err
			continue
		}
		return err
	}
	return fmt.Errorf("replace retries exhausted (%v): %w", lastErr, domain.ErrUnavailable)
}

func (s *CollectionService) getBounded(ctx context.Context, userID string, kind domain.Kind) (domain.Collection, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	col, err := s.Store.Get(opCtx, userID, kind)
	return col, classifyStoreErr(err)
}

func (s *CollectionService) replaceBounded(ctx context.Context, userID string, kind domain.Kind, entries []domain.Entry, version int64) error {
	opCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	return classifyStoreErr(s.Store.Replace(opCtx, userID, kind, entries, version))
}

// requireProduct rejects mutations referencing ids the catalog no longer
// knows, so unreferenceable entries are never stored.
func (s *CollectionService) requireProduct(ctx context.Context, productID string) error {
	opCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	ok, err := s.Prods.Exists(opCtx, productID)
	if err != nil {
		return classifyStoreErr(err)
	}
	if !ok {
		return fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
	}
	return nil
}

func (s *CollectionService) invalidate(ctx context.Context, userID string, kind domain.Kind) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, userID, kind); err != nil {
		log.Printf("[cache] invalidate %s/%s: %v", kind, userID, err)
	}
}

// classifyStoreErr maps a timed-out storage round-trip to unavailable
// rather than letting a raw context error escape the engine.
func classifyStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("store timed out: %w", domain.ErrUnavailable)
	}
	return err
}
