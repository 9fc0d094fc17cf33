package service

import (
	"context"
	"fmt"

	"github.com/avasilkov/giftcal/internal/bus"
	"github.com/avasilkov/giftcal/internal/models"
	"github.com/avasilkov/giftcal/internal/store"
)

// Pusher triggers an asynchronous snapshot push. Implemented by
// sync.Orchestrator; a nil Pusher disables pushing (offline-only mode).
type Pusher interface {
	Push(ctx context.Context)
}

// LocalService serves all reads and writes from the local store. After every
// successful mutation it notifies subscribers and fires a detached push; the
// push never blocks or fails the mutation.
type LocalService struct {
	store  store.Store
	bus    *bus.Bus
	pusher Pusher
}

func NewLocalService(st store.Store, b *bus.Bus, pusher Pusher) *LocalService {
	return &LocalService{store: st, bus: b, pusher: pusher}
}

func (s *LocalService) mutated(ctx context.Context) {
	s.bus.Notify()
	if s.pusher != nil {
		s.pusher.Push(ctx)
	}
}

func (s *LocalService) Events(ctx context.Context) ([]models.Event, error) {
	return s.store.Events(ctx)
}

func (s *LocalService) AddEvent(ctx context.Context, ev models.Event) (models.Event, error) {
	if ev.Category != "" && !ev.Category.Valid() {
		return models.Event{}, fmt.Errorf("unknown category %q", ev.Category)
	}
	if ev.Category == "" {
		ev.Category = models.CategoryOther
	}
	ev, err := s.store.PutEvent(ctx, ev)
	if err != nil {
		return models.Event{}, err
	}
	s.mutated(ctx)
	return ev, nil
}

func (s *LocalService) UpdateEvent(ctx context.Context, ev models.Event) error {
	if ev.Category == "" {
		ev.Category = models.CategoryOther
	}
	if !ev.Category.Valid() {
		return fmt.Errorf("unknown category %q", ev.Category)
	}
	if _, err := s.store.PutEvent(ctx, ev); err != nil {
		return err
	}
	s.mutated(ctx)
	return nil
}

func (s *LocalService) DeleteEvent(ctx context.Context, id string) error {
	if err := s.store.RemoveEvent(ctx, id); err != nil {
		return err
	}
	s.mutated(ctx)
	return nil
}

func (s *LocalService) WishlistLists(ctx context.Context) ([]models.WishlistList, error) {
	return s.store.WishlistLists(ctx)
}

func (s *LocalService) AddWishlistList(ctx context.Context, list models.WishlistList) (models.WishlistList, error) {
	list, err := s.store.PutWishlistList(ctx, list)
	if err != nil {
		return models.WishlistList{}, err
	}
	s.mutated(ctx)
	return list, nil
}

func (s *LocalService) DeleteWishlistList(ctx context.Context, id string) error {
	if err := s.store.RemoveWishlistList(ctx, id); err != nil {
		return err
	}
	// Items keep their listId; orphans simply stop showing up in scoped views.
	s.mutated(ctx)
	return nil
}

func (s *LocalService) WishlistItems(ctx context.Context, listID string) ([]models.WishlistItem, error) {
	return s.store.WishlistItems(ctx, listID)
}

func (s *LocalService) AddWishlistItem(ctx context.Context, item models.WishlistItem) (models.WishlistItem, error) {
	item, err := s.store.PutWishlistItem(ctx, item)
	if err != nil {
		return models.WishlistItem{}, err
	}
	s.mutated(ctx)
	return item, nil
}

func (s *LocalService) UpdateWishlistItem(ctx context.Context, item models.WishlistItem) error {
	if _, err := s.store.PutWishlistItem(ctx, item); err != nil {
		return err
	}
	s.mutated(ctx)
	return nil
}

func (s *LocalService) DeleteWishlistItem(ctx context.Context, id string) error {
	if err := s.store.RemoveWishlistItem(ctx, id); err != nil {
		return err
	}
	s.mutated(ctx)
	return nil
}

func (s *LocalService) Subscribe(fn bus.Observer) func() {
	return s.bus.Subscribe(fn)
}
