package models

// Snapshot is the full local data set serialized as one unit for the
// file-blob backend. It has no identity of its own: it is derived fresh from
// the store at push time and fully replaces the store at pull time.
//
// WishlistLists is omitted when empty so documents written by the older
// flat-wishlist schema stay byte-compatible.
type Snapshot struct {
	Auth          AuthInfo       `json:"auth"`
	Events        []Event        `json:"events"`
	Wishlist      []WishlistItem `json:"wishlist"`
	WishlistLists []WishlistList `json:"wishlistLists,omitempty"`
	LastUpdated   string         `json:"lastUpdated"`
}
