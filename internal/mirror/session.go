// Package mirror keeps a session-scoped optimistic copy of the shopper's
// cart and wishlist. Mutations apply locally first for immediate
// feedback, then the authoritative call is issued and the mirror is
// replaced wholesale with the server's answer. The mirror is derived
// state: always subordinate to the next successful fetch.
package mirror

import (
	"context"
	"sync"

	"stash/internal/domain"
)

// Backend is the authoritative side of the mirror: the collection API,
// reached either in-process or over HTTP (internal/client).
type Backend interface {
	Cart(ctx context.Context) ([]domain.EnrichedItem, error)
	Wishlist(ctx context.Context) ([]domain.EnrichedItem, error)
	AddToCart(ctx context.Context, productID string) error
	SetQuantity(ctx context.Context, productID string, quantity int) error
	RemoveFromCart(ctx context.Context, productID string) error
	AddToWishlist(ctx context.Context, productID string) error
	RemoveFromWishlist(ctx context.Context, productID string) error
	BulkAddToCart(ctx context.Context, productIDs []string) error
}

// Session holds the two mirrors for one signed-in session. It is an
// explicitly scoped object passed to the interface parts that need it,
// not process-wide state; Reset on sign-out, Refresh on mount.
type Session struct {
	mu       sync.Mutex
	backend  Backend
	cart     []domain.EnrichedItem
	wishlist []domain.EnrichedItem
	notify   func(error)
}

// NewSession wires a session to its backend. notify receives every
// propagated error as a transient notice; nil disables notices.
func NewSession(b Backend, notify func(error)) *Session {
	if notify == nil {
		notify = func(error) {}
	}
	return &Session{backend: b, notify: notify}
}

// Cart returns a copy of the cart mirror.
func (s *Session) Cart() []domain.EnrichedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.EnrichedItem(nil), s.cart...)
}

// Wishlist returns a copy of the wishlist mirror.
func (s *Session) Wishlist() []domain.EnrichedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.EnrichedItem(nil), s.wishlist...)
}

// Refresh replaces both mirrors with the server's authoritative state.
func (s *Session) Refresh(ctx context.Context) error {
	cart, err := s.backend.Cart(ctx)
	if err != nil {
		s.notify(err)
		return err
	}
	wishlist, err := s.backend.Wishlist(ctx)
	if err != nil {
		s.notify(err)
		return err
	}
	s.mu.Lock()
	s.cart = cart
	s.wishlist = wishlist
	s.mu.Unlock()
	return nil
}

// Reset empties the mirrors; called when the session signs out.
func (s *Session) Reset() {
	s.mu.Lock()
	s.cart = nil
	s.wishlist = nil
	s.mu.Unlock()
}

func (s *Session) AddToCart(ctx context.Context, productID string) error {
	s.mu.Lock()
	found := false
	for i := range s.cart {
		if s.cart[i].ID == productID {
			s.cart[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		// Placeholder until the refetch fills in catalog data.
		s.cart = append(s.cart, domain.EnrichedItem{ID: productID, Quantity: 1})
	}
	s.mu.Unlock()

	return s.reconcileCart(ctx, s.backend.AddToCart(ctx, productID))
}

func (s *Session) SetQuantity(ctx context.Context, productID string, quantity int) error {
	s.mu.Lock()
	for i := range s.cart {
		if s.cart[i].ID == productID {
			s.cart[i].Quantity = quantity
			break
		}
	}
	s.mu.Unlock()

	return s.reconcileCart(ctx, s.backend.SetQuantity(ctx, productID, quantity))
}

func (s *Session) RemoveFromCart(ctx context.Context, productID string) error {
	s.mu.Lock()
	s.cart = filterOut(s.cart, productID)
	s.mu.Unlock()

	return s.reconcileCart(ctx, s.backend.RemoveFromCart(ctx, productID))
}

func (s *Session) AddToWishlist(ctx context.Context, productID string) error {
	s.mu.Lock()
	present := false
	for _, it := range s.wishlist {
		if it.ID == productID {
			present = true
			break
		}
	}
	if !present {
		s.wishlist = append(s.wishlist, domain.EnrichedItem{ID: productID})
	}
	s.mu.Unlock()

	return s.reconcileWishlist(ctx, s.backend.AddToWishlist(ctx, productID))
}

func (s *Session) RemoveFromWishlist(ctx context.Context, productID string) error {
	s.mu.Lock()
	s.wishlist = filterOut(s.wishlist, productID)
	s.mu.Unlock()

	return s.reconcileWishlist(ctx, s.backend.RemoveFromWishlist(ctx, productID))
}

func (s *Session) BulkAddToCart(ctx context.Context, productIDs []string) error {
	s.mu.Lock()
	have := make(map[string]bool, len(s.cart))
	for _, it := range s.cart {
		have[it.ID] = true
	}
	for _, id := range productIDs {
		if !have[id] {
			have[id] = true
			s.cart = append(s.cart, domain.EnrichedItem{ID: id, Quantity: 1})
		}
	}
	s.mu.Unlock()

	return s.reconcileCart(ctx, s.backend.BulkAddToCart(ctx, productIDs))
}

// reconcileCart resolves the optimistic step: on success the mirror is
// replaced with the server's answer; on failure the optimistic state is
// deliberately left in place until the next successful refresh.
func (s *Session) reconcileCart(ctx context.Context, mutErr error) error {
	if mutErr != nil {
		s.notify(mutErr)
		return mutErr
	}
	cart, err := s.backend.Cart(ctx)
	if err != nil {
		s.notify(err)
		return nil // the mutation landed; only the refetch failed
	}
	s.mu.Lock()
	s.cart = cart
	s.mu.Unlock()
	return nil
}

func (s *Session) reconcileWishlist(ctx context.Context, mutErr error) error {
	if mutErr != nil {
		s.notify(mutErr)
		return mutErr
	}
	wishlist, err := s.backend.Wishlist(ctx)
	if err != nil {
		s.notify(err)
		return nil
	}
	s.mu.Lock()
	s.wishlist = wishlist
	s.mu.Unlock()
	return nil
}

func filterOut(items []domain.EnrichedItem, productID string) []domain.EnrichedItem {
	out := items[:0]
	for _, it := range items {
		if it.ID != productID {
			out = append(out, it)
		}
	}
	return out
}
