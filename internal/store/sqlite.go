package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/avasilkov/giftcal/internal/dbx"
	"github.com/avasilkov/giftcal/internal/ident"
	"github.com/avasilkov/giftcal/internal/models"
	"github.com/avasilkov/giftcal/internal/store/migrations"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists every logical table as a JSON value in a single
// key-value sqlite table. One mutation is one transaction, so a mutation is
// durable before it returns and a Snapshot read can never observe a
// half-applied write.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) the store database at dsn and applies migrations.
func Open(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open store db: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run store migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewSQLiteStore wraps an already migrated database handle. Used by tests.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// getValue reads the raw JSON stored under key. Missing keys yield nil, nil.
func getValue(ctx context.Context, q dbx.DBTX, key string) ([]byte, error) {
	var value []byte
	err := q.QueryRowContext(ctx, `SELECT value FROM store WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get store[%s]: %w", key, err)
	}
	return value, nil
}

func setValue(ctx context.Context, q dbx.DBTX, key string, value []byte) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO store (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set store[%s]: %w", key, err)
	}
	return nil
}

func readList[T any](ctx context.Context, q dbx.DBTX, key string) ([]T, error) {
	raw, err := getValue(ctx, q, key)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return []T{}, nil
	}
	var list []T
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("failed to decode store[%s]: %w", key, err)
	}
	if list == nil {
		list = []T{}
	}
	return list, nil
}

func writeList[T any](ctx context.Context, q dbx.DBTX, key string, list []T) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode store[%s]: %w", key, err)
	}
	return setValue(ctx, q, key, raw)
}

// upsert replaces the element whose id matches, or appends when absent.
func upsert[T any](list []T, item T, sameID func(T) bool) []T {
	for i := range list {
		if sameID(list[i]) {
			list[i] = item
			return list
		}
	}
	return append(list, item)
}

func removeByID[T any](list []T, sameID func(T) bool) []T {
	out := list[:0]
	for _, el := range list {
		if !sameID(el) {
			out = append(out, el)
		}
	}
	return out
}

func (s *SQLiteStore) Events(ctx context.Context) ([]models.Event, error) {
	return readList[models.Event](ctx, s.db, keyEvents)
}

func (s *SQLiteStore) PutEvent(ctx context.Context, ev models.Event) (models.Event, error) {
	if ev.Id == "" {
		ev.Id = ident.NewID()
	}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		list, err := readList[models.Event](ctx, tx, keyEvents)
		if err != nil {
			return err
		}
		list = upsert(list, ev, func(e models.Event) bool { return e.Id == ev.Id })
		return writeList(ctx, tx, keyEvents, list)
	})
	if err != nil {
		return models.Event{}, err
	}
	return ev, nil
}

func (s *SQLiteStore) RemoveEvent(ctx context.Context, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		list, err := readList[models.Event](ctx, tx, keyEvents)
		if err != nil {
			return err
		}
		list = removeByID(list, func(e models.Event) bool { return e.Id == id })
		return writeList(ctx, tx, keyEvents, list)
	})
}

func (s *SQLiteStore) AllWishlistItems(ctx context.Context) ([]models.WishlistItem, error) {
	return readList[models.WishlistItem](ctx, s.db, keyWishlist)
}

func (s *SQLiteStore) WishlistItems(ctx context.Context, listID string) ([]models.WishlistItem, error) {
	all, err := s.AllWishlistItems(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]models.WishlistItem, 0, len(all))
	for _, it := range all {
		if it.ListId == listID {
			items = append(items, it)
		}
	}
	return items, nil
}

func (s *SQLiteStore) PutWishlistItem(ctx context.Context, item models.WishlistItem) (models.WishlistItem, error) {
	if item.Id == "" {
		item.Id = ident.NewID()
	}
	if item.Status == "" {
		item.Status = models.StatusPending
	}
	if item.DateAdded == "" {
		item.DateAdded = ident.Timestamp(time.Now())
	}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		list, err := readList[models.WishlistItem](ctx, tx, keyWishlist)
		if err != nil {
			return err
		}
		list = upsert(list, item, func(i models.WishlistItem) bool { return i.Id == item.Id })
		return writeList(ctx, tx, keyWishlist, list)
	})
	if err != nil {
		return models.WishlistItem{}, err
	}
	return item, nil
}

func (s *SQLiteStore) RemoveWishlistItem(ctx context.Context, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		list, err := readList[models.WishlistItem](ctx, tx, keyWishlist)
		if err != nil {
			return err
		}
		list = removeByID(list, func(i models.WishlistItem) bool { return i.Id == id })
		return writeList(ctx, tx, keyWishlist, list)
	})
}

func (s *SQLiteStore) WishlistLists(ctx context.Context) ([]models.WishlistList, error) {
	return readList[models.WishlistList](ctx, s.db, keyWishlistLists)
}

func (s *SQLiteStore) PutWishlistList(ctx context.Context, list models.WishlistList) (models.WishlistList, error) {
	if list.Id == "" {
		list.Id = ident.NewID()
	}
	if list.CreatedAt == "" {
		list.CreatedAt = ident.Timestamp(time.Now())
	}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		lists, err := readList[models.WishlistList](ctx, tx, keyWishlistLists)
		if err != nil {
			return err
		}
		lists = upsert(lists, list, func(l models.WishlistList) bool { return l.Id == list.Id })
		return writeList(ctx, tx, keyWishlistLists, lists)
	})
	if err != nil {
		return models.WishlistList{}, err
	}
	return list, nil
}

func (s *SQLiteStore) RemoveWishlistList(ctx context.Context, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		lists, err := readList[models.WishlistList](ctx, tx, keyWishlistLists)
		if err != nil {
			return err
		}
		lists = removeByID(lists, func(l models.WishlistList) bool { return l.Id == id })
		return writeList(ctx, tx, keyWishlistLists, lists)
	})
}

func (s *SQLiteStore) Auth(ctx context.Context) (models.AuthInfo, error) {
	raw, err := getValue(ctx, s.db, keyAuth)
	if err != nil {
		return models.AuthInfo{}, err
	}
	if raw == nil {
		return models.DefaultAuth(), nil
	}
	var auth models.AuthInfo
	if err := json.Unmarshal(raw, &auth); err != nil {
		return models.AuthInfo{}, fmt.Errorf("failed to decode store[%s]: %w", keyAuth, err)
	}
	return auth, nil
}

func (s *SQLiteStore) SetAuth(ctx context.Context, auth models.AuthInfo) error {
	raw, err := json.Marshal(auth)
	if err != nil {
		return err
	}
	return setValue(ctx, s.db, keyAuth, raw)
}

func (s *SQLiteStore) SyncConfig(ctx context.Context) (models.SyncConfig, error) {
	raw, err := getValue(ctx, s.db, keySyncConfig)
	if err != nil {
		return models.SyncConfig{}, err
	}
	if raw == nil {
		return models.SyncConfig{}, nil
	}
	var cfg models.SyncConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return models.SyncConfig{}, fmt.Errorf("failed to decode store[%s]: %w", keySyncConfig, err)
	}
	return cfg, nil
}

func (s *SQLiteStore) SetSyncConfig(ctx context.Context, cfg models.SyncConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return setValue(ctx, s.db, keySyncConfig, raw)
}

func (s *SQLiteStore) Snapshot(ctx context.Context, now time.Time) (*models.Snapshot, error) {
	snap := &models.Snapshot{LastUpdated: ident.Timestamp(now)}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if snap.Events, err = readList[models.Event](ctx, tx, keyEvents); err != nil {
			return err
		}
		if snap.Wishlist, err = readList[models.WishlistItem](ctx, tx, keyWishlist); err != nil {
			return err
		}
		if snap.WishlistLists, err = readList[models.WishlistList](ctx, tx, keyWishlistLists); err != nil {
			return err
		}
		raw, err := getValue(ctx, tx, keyAuth)
		if err != nil {
			return err
		}
		if raw == nil {
			snap.Auth = models.DefaultAuth()
			return nil
		}
		return json.Unmarshal(raw, &snap.Auth)
	})
	if err != nil {
		return nil, err
	}
	// Drop the empty-lists slice so v1-shaped documents stay stable.
	if len(snap.WishlistLists) == 0 {
		snap.WishlistLists = nil
	}
	return snap, nil
}

func (s *SQLiteStore) Restore(ctx context.Context, snap *models.Snapshot) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := writeList(ctx, tx, keyEvents, snap.Events); err != nil {
			return err
		}
		if err := writeList(ctx, tx, keyWishlist, snap.Wishlist); err != nil {
			return err
		}
		if err := writeList(ctx, tx, keyWishlistLists, snap.WishlistLists); err != nil {
			return err
		}
		raw, err := json.Marshal(snap.Auth)
		if err != nil {
			return err
		}
		return setValue(ctx, tx, keyAuth, raw)
	})
}
