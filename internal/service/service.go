// Package service exposes the application-facing storage contract and its
// two interchangeable implementations: one over the local store with
// snapshot sync to a file blob, one over the per-record document store. The
// composition root picks an implementation at startup based on which backend
// is configured.
package service

import (
	"context"

	"github.com/avasilkov/giftcal/internal/bus"
	"github.com/avasilkov/giftcal/internal/models"
)

// DataService is the CRUD-plus-subscribe surface consumed by the UI layer.
// Every mutating call fires one bus notification after its durable write
// succeeds.
type DataService interface {
	Events(ctx context.Context) ([]models.Event, error)
	AddEvent(ctx context.Context, ev models.Event) (models.Event, error)
	UpdateEvent(ctx context.Context, ev models.Event) error
	DeleteEvent(ctx context.Context, id string) error

	WishlistLists(ctx context.Context) ([]models.WishlistList, error)
	AddWishlistList(ctx context.Context, list models.WishlistList) (models.WishlistList, error)
	DeleteWishlistList(ctx context.Context, id string) error

	// WishlistItems with an empty listID returns the unscoped (flat) wishlist.
	WishlistItems(ctx context.Context, listID string) ([]models.WishlistItem, error)
	AddWishlistItem(ctx context.Context, item models.WishlistItem) (models.WishlistItem, error)
	UpdateWishlistItem(ctx context.Context, item models.WishlistItem) error
	DeleteWishlistItem(ctx context.Context, id string) error

	// Subscribe registers an observer for any-data-changed notifications.
	Subscribe(fn bus.Observer) (unsubscribe func())
}
