package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avasilkov/giftcal/internal/bus"
	"github.com/avasilkov/giftcal/internal/logging"
	"github.com/avasilkov/giftcal/internal/models"
	"github.com/avasilkov/giftcal/internal/remote/docstore"
)

func setupDoc(t *testing.T) (*DocService, sqlmock.Sqlmock, *bus.Bus) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	b := bus.New()
	return NewDocService(docstore.NewClient(db, logging.NewDiscard()), b), mock, b
}

func TestDocService_AddEventAssignsStoreID(t *testing.T) {
	s, mock, b := setupDoc(t)

	var notified int
	b.Subscribe(func() { notified++ })

	mock.ExpectQuery(`INSERT INTO documents .+ RETURNING id`).
		WithArgs(docstore.CollectionEvents, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("doc-uuid-1"))

	ev, err := s.AddEvent(context.Background(), models.Event{Title: "Dinner", Date: "2024-06-10"})
	require.NoError(t, err)

	assert.Equal(t, "doc-uuid-1", ev.Id)
	assert.Equal(t, models.CategoryOther, ev.Category)
	assert.Equal(t, 1, notified)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocService_EventsDecodeFields(t *testing.T) {
	s, mock, _ := setupDoc(t)

	rows := sqlmock.NewRows([]string{"id", "fields"}).
		AddRow("e1", []byte(`{"title":"Dinner","date":"2024-06-10","category":"personal"}`)).
		AddRow("e2", []byte(`{"title":"Standup","date":"2024-06-11","category":"work"}`))
	mock.ExpectQuery(`SELECT id, fields FROM documents WHERE collection = \$1 ORDER BY created_at`).
		WithArgs(docstore.CollectionEvents).
		WillReturnRows(rows)

	events, err := s.Events(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e1", events[0].Id)
	assert.Equal(t, models.CategoryPersonal, events[0].Category)
	assert.Equal(t, "Standup", events[1].Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocService_ScopedItemsUseFieldQuery(t *testing.T) {
	s, mock, _ := setupDoc(t)

	rows := sqlmock.NewRows([]string{"id", "fields"}).
		AddRow("i1", []byte(`{"name":"socks","listId":"list-1","status":"pending"}`))
	mock.ExpectQuery(`SELECT id, fields FROM documents WHERE collection = \$1 AND fields->>\$2 = \$3`).
		WithArgs(docstore.CollectionWishlistItems, "listId", "list-1").
		WillReturnRows(rows)

	items, err := s.WishlistItems(context.Background(), "list-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "socks", items[0].Name)
	assert.Equal(t, "list-1", items[0].ListId)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocService_FlatWishlistFiltersScopedItems(t *testing.T) {
	s, mock, _ := setupDoc(t)

	rows := sqlmock.NewRows([]string{"id", "fields"}).
		AddRow("i1", []byte(`{"name":"flat item","status":"pending"}`)).
		AddRow("i2", []byte(`{"name":"scoped item","listId":"list-1","status":"pending"}`))
	mock.ExpectQuery(`SELECT id, fields FROM documents WHERE collection = \$1 ORDER BY created_at`).
		WithArgs(docstore.CollectionWishlistItems).
		WillReturnRows(rows)

	items, err := s.WishlistItems(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "flat item", items[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocService_UpdateSendsPatchWithoutID(t *testing.T) {
	s, mock, b := setupDoc(t)

	var notified int
	b.Subscribe(func() { notified++ })

	mock.ExpectExec(`UPDATE documents SET fields = fields \|\| \$3`).
		WithArgs(docstore.CollectionWishlistItems, "i1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpdateWishlistItem(context.Background(), models.WishlistItem{
		Id: "i1", Name: "socks", Status: models.StatusPurchased,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, notified)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocService_UpdateRejectsUnknownCategory(t *testing.T) {
	s, mock, b := setupDoc(t)

	var notified int
	b.Subscribe(func() { notified++ })

	// No query expectation: the write must be rejected before it reaches the
	// store.
	err := s.UpdateEvent(context.Background(), models.Event{Id: "e1", Title: "x", Category: "urgent"})
	require.Error(t, err)
	assert.Equal(t, 0, notified)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocService_DeleteNotifies(t *testing.T) {
	s, mock, b := setupDoc(t)

	var notified int
	b.Subscribe(func() { notified++ })

	mock.ExpectExec(`DELETE FROM documents WHERE collection = \$1 AND id = \$2`).
		WithArgs(docstore.CollectionEvents, "e1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.DeleteEvent(context.Background(), "e1"))
	assert.Equal(t, 1, notified)
	require.NoError(t, mock.ExpectationsWereMet())
}
