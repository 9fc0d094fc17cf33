// Package store implements the local key-value store holding all application
// data: calendar events, wishlist lists and items, the login record and the
// sync configuration. Four logical tables plus two singletons live under
// fixed string keys in a single sqlite table; every mutation is durable
// before its call returns.
package store

import (
	"context"
	"time"

	"github.com/avasilkov/giftcal/internal/models"
)

// Fixed keys addressing the logical tables.
const (
	keyAuth          = "auth"
	keyEvents        = "events"
	keyWishlist      = "wishlist"
	keyWishlistLists = "wishlistLists"
	keySyncConfig    = "syncConfig"
)

// Store is the canonical owner of all locally persisted application data.
//
// All operations are synchronous and atomic with respect to a single caller.
// Reads of a never-written table return a well-defined default (empty slice,
// default AuthInfo, zero SyncConfig) rather than an error. Put inserts when
// the id is absent and fully replaces the stored record otherwise; records
// arriving without an id get one assigned, and it is immutable afterwards.
type Store interface {
	Events(ctx context.Context) ([]models.Event, error)
	PutEvent(ctx context.Context, ev models.Event) (models.Event, error)
	RemoveEvent(ctx context.Context, id string) error

	// WishlistItems returns the items belonging to listID. An empty listID
	// matches items that have no parent list (the flat-wishlist schema).
	WishlistItems(ctx context.Context, listID string) ([]models.WishlistItem, error)
	AllWishlistItems(ctx context.Context) ([]models.WishlistItem, error)
	PutWishlistItem(ctx context.Context, item models.WishlistItem) (models.WishlistItem, error)
	RemoveWishlistItem(ctx context.Context, id string) error

	WishlistLists(ctx context.Context) ([]models.WishlistList, error)
	PutWishlistList(ctx context.Context, list models.WishlistList) (models.WishlistList, error)
	RemoveWishlistList(ctx context.Context, id string) error

	Auth(ctx context.Context) (models.AuthInfo, error)
	SetAuth(ctx context.Context, auth models.AuthInfo) error

	SyncConfig(ctx context.Context) (models.SyncConfig, error)
	SetSyncConfig(ctx context.Context, cfg models.SyncConfig) error

	// Snapshot serializes the whole data set as one consistent unit, read
	// inside a single transaction so concurrent mutations never interleave
	// into it.
	Snapshot(ctx context.Context, now time.Time) (*models.Snapshot, error)

	// Restore replaces every table with the snapshot's contents in one
	// transaction. On error nothing is changed. This is a full overwrite,
	// not a merge: local writes made while a pull was in flight are lost,
	// which is the documented server-wins behavior.
	Restore(ctx context.Context, snap *models.Snapshot) error

	Close() error
}
