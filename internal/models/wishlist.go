package models

// ItemStatus tracks whether a wishlist item has been bought yet.
type ItemStatus string

const (
	StatusPending   ItemStatus = "pending"
	StatusPurchased ItemStatus = "purchased"
)

// Toggle flips pending to purchased and back.
func (s ItemStatus) Toggle() ItemStatus {
	if s == StatusPurchased {
		return StatusPending
	}
	return StatusPurchased
}

// WishlistItem is a single wishlist entry, optionally scoped to a parent list.
type WishlistItem struct {
	Id          string     `json:"id"`
	ListId      string     `json:"listId,omitempty"`
	Name        string     `json:"name"`
	Url         string     `json:"url"`
	Description string     `json:"description"`
	Status      ItemStatus `json:"status"`
	DateAdded   string     `json:"dateAdded"`
}

// WishlistList groups wishlist items.
type WishlistList struct {
	Id          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt"`
}
