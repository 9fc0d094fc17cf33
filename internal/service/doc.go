package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avasilkov/giftcal/internal/bus"
	"github.com/avasilkov/giftcal/internal/ident"
	"github.com/avasilkov/giftcal/internal/models"
	"github.com/avasilkov/giftcal/internal/remote/docstore"
)

// DocService serves reads and writes straight from the document store; each
// CRUD call is itself the remote operation and the bus fires right after
// remote success. There is no push/pull cycle and no orchestrator.
type DocService struct {
	client *docstore.Client
	bus    *bus.Bus
	now    func() time.Time
}

func NewDocService(client *docstore.Client, b *bus.Bus) *DocService {
	return &DocService{client: client, bus: b, now: time.Now}
}

// toFields flattens a record into its stored field map, dropping the id:
// the store owns identity, the fields own everything else.
func toFields(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	delete(fields, "id")
	return fields, nil
}

func fromDoc[T any](doc docstore.Document) (T, error) {
	var v T
	if doc.Fields == nil {
		doc.Fields = map[string]any{}
	}
	doc.Fields["id"] = doc.ID
	raw, err := json.Marshal(doc.Fields)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("malformed document %s: %w", doc.ID, err)
	}
	return v, nil
}

func decodeAll[T any](docs []docstore.Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := fromDoc[T](doc)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *DocService) Events(ctx context.Context) ([]models.Event, error) {
	docs, err := s.client.ListAll(ctx, docstore.CollectionEvents)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Event](docs)
}

func (s *DocService) AddEvent(ctx context.Context, ev models.Event) (models.Event, error) {
	if ev.Category == "" {
		ev.Category = models.CategoryOther
	}
	if !ev.Category.Valid() {
		return models.Event{}, fmt.Errorf("unknown category %q", ev.Category)
	}

	fields, err := toFields(ev)
	if err != nil {
		return models.Event{}, err
	}
	doc, err := s.client.Create(ctx, docstore.CollectionEvents, fields)
	if err != nil {
		return models.Event{}, err
	}
	ev.Id = doc.ID
	s.bus.Notify()
	return ev, nil
}

func (s *DocService) UpdateEvent(ctx context.Context, ev models.Event) error {
	if ev.Category == "" {
		ev.Category = models.CategoryOther
	}
	if !ev.Category.Valid() {
		return fmt.Errorf("unknown category %q", ev.Category)
	}
	fields, err := toFields(ev)
	if err != nil {
		return err
	}
	if err := s.client.Update(ctx, docstore.CollectionEvents, ev.Id, fields); err != nil {
		return err
	}
	s.bus.Notify()
	return nil
}

func (s *DocService) DeleteEvent(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, docstore.CollectionEvents, id); err != nil {
		return err
	}
	s.bus.Notify()
	return nil
}

func (s *DocService) WishlistLists(ctx context.Context) ([]models.WishlistList, error) {
	docs, err := s.client.ListAll(ctx, docstore.CollectionWishlistLists)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.WishlistList](docs)
}

func (s *DocService) AddWishlistList(ctx context.Context, list models.WishlistList) (models.WishlistList, error) {
	if list.CreatedAt == "" {
		list.CreatedAt = ident.Timestamp(s.now())
	}
	fields, err := toFields(list)
	if err != nil {
		return models.WishlistList{}, err
	}
	doc, err := s.client.Create(ctx, docstore.CollectionWishlistLists, fields)
	if err != nil {
		return models.WishlistList{}, err
	}
	list.Id = doc.ID
	s.bus.Notify()
	return list, nil
}

func (s *DocService) DeleteWishlistList(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, docstore.CollectionWishlistLists, id); err != nil {
		return err
	}
	s.bus.Notify()
	return nil
}

func (s *DocService) WishlistItems(ctx context.Context, listID string) ([]models.WishlistItem, error) {
	if listID == "" {
		docs, err := s.client.ListAll(ctx, docstore.CollectionWishlistItems)
		if err != nil {
			return nil, err
		}
		items, err := decodeAll[models.WishlistItem](docs)
		if err != nil {
			return nil, err
		}
		flat := items[:0]
		for _, it := range items {
			if it.ListId == "" {
				flat = append(flat, it)
			}
		}
		return flat, nil
	}

	docs, err := s.client.QueryByField(ctx, docstore.CollectionWishlistItems, "listId", listID)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.WishlistItem](docs)
}

func (s *DocService) AddWishlistItem(ctx context.Context, item models.WishlistItem) (models.WishlistItem, error) {
	if item.Status == "" {
		item.Status = models.StatusPending
	}
	if item.DateAdded == "" {
		item.DateAdded = ident.Timestamp(s.now())
	}
	fields, err := toFields(item)
	if err != nil {
		return models.WishlistItem{}, err
	}
	doc, err := s.client.Create(ctx, docstore.CollectionWishlistItems, fields)
	if err != nil {
		return models.WishlistItem{}, err
	}
	item.Id = doc.ID
	s.bus.Notify()
	return item, nil
}

func (s *DocService) UpdateWishlistItem(ctx context.Context, item models.WishlistItem) error {
	fields, err := toFields(item)
	if err != nil {
		return err
	}
	if err := s.client.Update(ctx, docstore.CollectionWishlistItems, item.Id, fields); err != nil {
		return err
	}
	s.bus.Notify()
	return nil
}

func (s *DocService) DeleteWishlistItem(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, docstore.CollectionWishlistItems, id); err != nil {
		return err
	}
	s.bus.Notify()
	return nil
}

func (s *DocService) Subscribe(fn bus.Observer) func() {
	return s.bus.Subscribe(fn)
}
