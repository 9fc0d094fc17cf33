package service

import (
	"context"
	"database/sql"
	stdsync "sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avasilkov/giftcal/internal/bus"
	"github.com/avasilkov/giftcal/internal/models"
	"github.com/avasilkov/giftcal/internal/store"

	_ "modernc.org/sqlite"
)

type countingPusher struct {
	mu    stdsync.Mutex
	calls int
}

func (p *countingPusher) Push(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
}

func (p *countingPusher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func setupLocal(t *testing.T) (*LocalService, *countingPusher, *bus.Bus) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE store (key TEXT PRIMARY KEY, value BLOB NOT NULL);`)
	require.NoError(t, err)

	p := &countingPusher{}
	b := bus.New()
	return NewLocalService(store.NewSQLiteStore(db), b, p), p, b
}

func TestLocalService_MutationNotifiesAndPushes(t *testing.T) {
	s, p, _ := setupLocal(t)
	ctx := context.Background()

	var notified int
	s.Subscribe(func() { notified++ })

	ev, err := s.AddEvent(ctx, models.Event{Title: "Standup", Date: "2024-06-10", Category: models.CategoryWork})
	require.NoError(t, err)
	require.NotEmpty(t, ev.Id)
	assert.Equal(t, 1, notified)
	assert.Equal(t, 1, p.count())

	require.NoError(t, s.DeleteEvent(ctx, ev.Id))
	assert.Equal(t, 2, notified)
	assert.Equal(t, 2, p.count())
}

func TestLocalService_ReadsDoNotPush(t *testing.T) {
	s, p, _ := setupLocal(t)
	ctx := context.Background()

	_, err := s.Events(ctx)
	require.NoError(t, err)
	_, err = s.WishlistItems(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, 0, p.count())
}

func TestLocalService_RejectsUnknownCategory(t *testing.T) {
	s, p, _ := setupLocal(t)

	_, err := s.AddEvent(context.Background(), models.Event{Title: "x", Category: "urgent"})
	require.Error(t, err)
	assert.Equal(t, 0, p.count())
}

func TestLocalService_UpdateRejectsUnknownCategory(t *testing.T) {
	s, p, _ := setupLocal(t)
	ctx := context.Background()

	ev, err := s.AddEvent(ctx, models.Event{Title: "x", Category: models.CategoryWork})
	require.NoError(t, err)
	pushes := p.count()

	ev.Category = "urgent"
	require.Error(t, s.UpdateEvent(ctx, ev))
	assert.Equal(t, pushes, p.count())

	// The stored record keeps its valid category.
	events, err := s.Events(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.CategoryWork, events[0].Category)
}

func TestLocalService_DefaultsCategory(t *testing.T) {
	s, _, _ := setupLocal(t)

	ev, err := s.AddEvent(context.Background(), models.Event{Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryOther, ev.Category)
}

func TestLocalService_ToggleThenDeleteExcludesItem(t *testing.T) {
	s, _, _ := setupLocal(t)
	ctx := context.Background()

	item, err := s.AddWishlistItem(ctx, models.WishlistItem{Name: "headphones"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, item.Status)

	item.Status = item.Status.Toggle()
	require.NoError(t, s.UpdateWishlistItem(ctx, item))

	require.NoError(t, s.DeleteWishlistItem(ctx, item.Id))

	items, err := s.WishlistItems(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestLocalService_NilPusherIsOfflineMode(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE store (key TEXT PRIMARY KEY, value BLOB NOT NULL);`)
	require.NoError(t, err)

	s := NewLocalService(store.NewSQLiteStore(db), bus.New(), nil)
	_, err = s.AddEvent(context.Background(), models.Event{Title: "offline"})
	require.NoError(t, err)
}
