package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"golang.org/x/sync/singleflight"

	"stash/internal/cache"
	"stash/internal/domain"
	"stash/internal/repos"
)

// ViewService produces the enrichment projection: collection entries
// joined against the catalog for display. Reads never write back to the
// store; entries whose product vanished are dropped from the result.
type ViewService struct {
	Store *repos.CollectionRepo
	Prods *repos.ProductRepo
	Cache cache.ViewCache
	sfg   singleflight.Group // collapses concurrent fills of the same view
}

func NewViewService(store *repos.CollectionRepo, prods *repos.ProductRepo, vc cache.ViewCache) *ViewService {
	return &ViewService{Store: store, Prods: prods, Cache: vc}
}

func (s *ViewService) Cart(ctx context.Context, userID string) ([]domain.EnrichedItem, error) {
	return s.view(ctx, userID, domain.KindCart)
}

func (s *ViewService) Wishlist(ctx context.Context, userID string) ([]domain.EnrichedItem, error) {
	return s.view(ctx, userID, domain.KindWishlist)
}

func (s *ViewService) view(ctx context.Context, userID string, kind domain.Kind) ([]domain.EnrichedItem, error) {
	v, err, _ := s.sfg.Do(string(kind)+":"+userID, func() (interface{}, error) {
		items, err := s.Cache.Get(ctx, userID, kind)
		if err == nil {
			return items, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("[cache] get %s/%s: %v", kind, userID, err)
		}

		col, err := s.Store.Get(ctx, userID, kind)
		if err != nil {
			return nil, err
		}
		items, err = s.project(ctx, col)
		if err != nil {
			return nil, err
		}
		if err := s.Cache.Set(ctx, userID, kind, items); err != nil {
			log.Printf("[cache] set %s/%s: %v", kind, userID, err)
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.EnrichedItem), nil
}

// project joins entries with their catalog rows, preserving collection
// order. Missing products are a documented degradation, not an error.
func (s *ViewService) project(ctx context.Context, col domain.Collection) ([]domain.EnrichedItem, error) {
	ids := make([]string, 0, len(col.Entries))
	for _, e := range col.Entries {
		ids = append(ids, e.ProductID)
	}
	prods, err := s.Prods.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]domain.EnrichedItem, 0, len(col.Entries))
	for _, e := range col.Entries {
		p, ok := prods[e.ProductID]
		if !ok {
			continue
		}
		items = append(items, domain.EnrichedItem{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Images:   decodeImages(p.ImagesJSON),
			Quantity: e.Quantity,
		})
	}
	return items, nil
}

func decodeImages(raw string) []string {
	if raw == "" {
		return nil
	}
	var imgs []string
	if err := json.Unmarshal([]byte(raw), &imgs); err != nil {
		return nil
	}
	return imgs
}
