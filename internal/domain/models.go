package domain

// Kind names one of the two per-user collections.
type Kind string

const (
	KindCart     Kind = "cart"
	KindWishlist Kind = "wishlist"
)

func (k Kind) Valid() bool { return k == KindCart || k == KindWishlist }

type Product struct {
	ID         string  `db:"id"`
	Name       string  `db:"name"`
	Price      float64 `db:"price"`
	ImagesJSON string  `db:"images_json"`
	Active     bool    `db:"active"`
	CreatedAt  string  `db:"created_at"`
	UpdatedAt  string  `db:"updated_at"`
}

// Entry is one product reference inside a collection. Quantity is only
// meaningful for the cart kind and is always >= 1 when stored; wishlist
// entries carry quantity 0.
type Entry struct {
	ProductID string `db:"product_id"`
	Quantity  int    `db:"qty"`
}

// Collection is the ordered entry list for one (user, kind) pair, read at
// a specific version. A Replace must present the version it read to win
// the write.
type Collection struct {
	UserID  string
	Kind    Kind
	Entries []Entry
	Version int64
}

// IndexOf returns the position of productID in the entry list, or -1.
func (c Collection) IndexOf(productID string) int {
	for i, e := range c.Entries {
		if e.ProductID == productID {
			return i
		}
	}
	return -1
}

// EnrichedItem is the display projection of an entry joined with catalog
// data at read time. Never persisted.
type EnrichedItem struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Images   []string `json:"images"`
	Quantity int      `json:"quantity,omitempty"`
}
