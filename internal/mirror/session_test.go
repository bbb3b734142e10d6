package mirror

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stash/internal/domain"
)

// fakeBackend plays the authoritative server: mutations land in its own
// state and reads answer from it, so the test can check that the mirror
// converges to server truth rather than to its optimistic guess.
type fakeBackend struct {
	cart     []domain.EnrichedItem
	wishlist []domain.EnrichedItem
	failNext error
}

func (f *fakeBackend) take() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeBackend) Cart(context.Context) ([]domain.EnrichedItem, error) {
	return append([]domain.EnrichedItem(nil), f.cart...), nil
}

func (f *fakeBackend) Wishlist(context.Context) ([]domain.EnrichedItem, error) {
	return append([]domain.EnrichedItem(nil), f.wishlist...), nil
}

func (f *fakeBackend) AddToCart(_ context.Context, productID string) error {
	if err := f.take(); err != nil {
		return err
	}
	for i := range f.cart {
		if f.cart[i].ID == productID {
			f.cart[i].Quantity++
			return nil
		}
	}
	f.cart = append(f.cart, domain.EnrichedItem{ID: productID, Name: "Server Name " + productID, Quantity: 1})
	return nil
}

func (f *fakeBackend) SetQuantity(_ context.Context, productID string, quantity int) error {
	if err := f.take(); err != nil {
		return err
	}
	for i := range f.cart {
		if f.cart[i].ID == productID {
			f.cart[i].Quantity = quantity
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeBackend) RemoveFromCart(_ context.Context, productID string) error {
	if err := f.take(); err != nil {
		return err
	}
	out := f.cart[:0]
	for _, it := range f.cart {
		if it.ID != productID {
			out = append(out, it)
		}
	}
	f.cart = out
	return nil
}

func (f *fakeBackend) AddToWishlist(_ context.Context, productID string) error {
	if err := f.take(); err != nil {
		return err
	}
	f.wishlist = append(f.wishlist, domain.EnrichedItem{ID: productID})
	return nil
}

func (f *fakeBackend) RemoveFromWishlist(_ context.Context, productID string) error {
	if err := f.take(); err != nil {
		return err
	}
	out := f.wishlist[:0]
	for _, it := range f.wishlist {
		if it.ID != productID {
			out = append(out, it)
		}
	}
	f.wishlist = out
	return nil
}

func (f *fakeBackend) BulkAddToCart(ctx context.Context, productIDs []string) error {
	if err := f.take(); err != nil {
		return err
	}
	for _, id := range productIDs {
		present := false
		for _, it := range f.cart {
			if it.ID == id {
				present = true
				break
			}
		}
		if !present {
			f.cart = append(f.cart, domain.EnrichedItem{ID: id, Quantity: 1})
		}
	}
	return nil
}

func TestMirrorConvergesToServerTruth(t *testing.T) {
	backend := &fakeBackend{}
	s := NewSession(backend, nil)
	ctx := context.Background()

	require.NoError(t, s.AddToCart(ctx, "mech-kb-01"))

	cart := s.Cart()
	require.Len(t, cart, 1)
	// The refetch replaced the placeholder with the server's enrichment.
	assert.Equal(t, "Server Name mech-kb-01", cart[0].Name)
	assert.Equal(t, 1, cart[0].Quantity)
}

func TestRemoveAppliesOptimisticallyBeforeTheCall(t *testing.T) {
	backend := &fakeBackend{cart: []domain.EnrichedItem{{ID: "mech-kb-01", Quantity: 2}}}
	s := NewSession(backend, nil)
	require.NoError(t, s.Refresh(context.Background()))

	// Fail the server call: the optimistic removal must already be
	// visible, and must stay until the next successful refresh.
	backend.failNext = domain.ErrUnavailable
	err := s.RemoveFromCart(context.Background(), "mech-kb-01")
	require.Error(t, err)
	assert.Empty(t, s.Cart(), "optimistic remove not applied")

	// Server still holds the item; a refresh corrects the mirror.
	require.NoError(t, s.Refresh(context.Background()))
	assert.Len(t, s.Cart(), 1)
}

func TestFailedMutationSurfacesNotice(t *testing.T) {
	backend := &fakeBackend{}
	var notices []error
	s := NewSession(backend, func(err error) { notices = append(notices, err) })

	backend.failNext = domain.ErrAlreadyExists
	err := s.AddToWishlist(context.Background(), "trackball-7")
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
	require.Len(t, notices, 1)
	assert.ErrorIs(t, notices[0], domain.ErrAlreadyExists)
}

func TestWholesaleReplaceCorrectsBadGuess(t *testing.T) {
	// Two rapid decrements racing: the optimistic mirror may guess a
	// quantity the server never stored. The refetch wins.
	backend := &fakeBackend{cart: []domain.EnrichedItem{{ID: "mech-kb-01", Quantity: 5}}}
	s := NewSession(backend, nil)
	require.NoError(t, s.Refresh(context.Background()))

	require.NoError(t, s.SetQuantity(context.Background(), "mech-kb-01", 4))

	cart := s.Cart()
	require.Len(t, cart, 1)
	assert.Equal(t, 4, cart[0].Quantity)
	assert.Equal(t, backend.cart[0].Quantity, cart[0].Quantity, "mirror diverged from server")
}

func TestBulkAddSkipsPresentInMirror(t *testing.T) {
	backend := &fakeBackend{cart: []domain.EnrichedItem{{ID: "mech-kb-01", Quantity: 3}}}
	s := NewSession(backend, nil)
	require.NoError(t, s.Refresh(context.Background()))

	require.NoError(t, s.BulkAddToCart(context.Background(), []string{"mech-kb-01", "desk-mat-xl"}))

	cart := s.Cart()
	require.Len(t, cart, 2)
	assert.Equal(t, 3, cart[0].Quantity, "present line must not inflate")
	assert.Equal(t, 1, cart[1].Quantity)
}

func TestResetEmptiesMirrorsOnSignOut(t *testing.T) {
	backend := &fakeBackend{
		cart:     []domain.EnrichedItem{{ID: "mech-kb-01", Quantity: 1}},
		wishlist: []domain.EnrichedItem{{ID: "trackball-7"}},
	}
	s := NewSession(backend, nil)
	require.NoError(t, s.Refresh(context.Background()))
	require.NotEmpty(t, s.Cart())

	s.Reset()
	assert.Empty(t, s.Cart())
	assert.Empty(t, s.Wishlist())
}

func TestRefreshErrorLeavesMirror(t *testing.T) {
	backend := &fakeBackend{}
	s := NewSession(backend, nil)
	require.NoError(t, s.AddToCart(context.Background(), "mech-kb-01"))
	require.Len(t, s.Cart(), 1)

	errBackend := failingBackend{err: errors.New("network down")}
	s2 := NewSession(errBackend, nil)
	require.Error(t, s2.Refresh(context.Background()))
	assert.Empty(t, s2.Cart())
}

type failingBackend struct{ err error }

func (f failingBackend) Cart(context.Context) ([]domain.EnrichedItem, error)     { return nil, f.err }
func (f failingBackend) Wishlist(context.Context) ([]domain.EnrichedItem, error) { return nil, f.err }
func (f failingBackend) AddToCart(context.Context, string) error                 { return f.err }
func (f failingBackend) SetQuantity(context.Context, string, int) error          { return f.err }
func (f failingBackend) RemoveFromCart(context.Context, string) error            { return f.err }
func (f failingBackend) AddToWishlist(context.Context, string) error             { return f.err }
func (f failingBackend) RemoveFromWishlist(context.Context, string) error        { return f.err }
func (f failingBackend) BulkAddToCart(context.Context, []string) error           { return f.err }
