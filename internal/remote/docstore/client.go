// Package docstore implements the per-record remote backend: every record is
// its own JSONB document in a collection, with ids assigned by the store.
// There is no push/pull cycle here; each CRUD call is the remote operation.
//
// Expected schema:
//
//	CREATE TABLE documents (
//	    id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
//	    collection text NOT NULL,
//	    fields     jsonb NOT NULL,
//	    created_at timestamptz NOT NULL DEFAULT now()
//	);
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/avasilkov/giftcal/internal/logging"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Collection names used by the application.
const (
	CollectionEvents        = "events"
	CollectionWishlistItems = "wishlistItems"
	CollectionWishlistLists = "wishlistLists"
)

// Document is one stored record: the store-assigned id plus its fields.
type Document struct {
	ID     string
	Fields map[string]any
}

// Client talks to the document store. A nil database handle means the
// backend was never configured: reads return empty results and writes are
// logged no-ops, keeping callers usable in a misconfigured state.
type Client struct {
	db  *sql.DB
	log logging.Logger
}

// Open connects to the document store at dsn. An empty dsn yields an
// unconfigured client.
func Open(dsn string, log logging.Logger) (*Client, error) {
	if dsn == "" {
		return &Client{log: log}, nil
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}
	return &Client{db: db, log: log}, nil
}

// NewClient wraps an existing handle. Used by tests.
func NewClient(db *sql.DB, log logging.Logger) *Client {
	return &Client{db: db, log: log}
}

// Configured reports whether the client has a live backend.
func (c *Client) Configured() bool {
	return c.db != nil
}

func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func scanDocuments(rows *sql.Rows) ([]Document, error) {
	defer rows.Close()

	var result []Document
	for rows.Next() {
		var doc Document
		var raw []byte
		if err := rows.Scan(&doc.ID, &raw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &doc.Fields); err != nil {
			return nil, fmt.Errorf("failed to decode document fields: %w", err)
		}
		result = append(result, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListAll returns every document in the collection, oldest first.
func (c *Client) ListAll(ctx context.Context, collection string) ([]Document, error) {
	if c.db == nil {
		return []Document{}, nil
	}

	query := `SELECT id, fields FROM documents WHERE collection = $1 ORDER BY created_at`
	rows, err := c.db.QueryContext(ctx, query, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	return scanDocuments(rows)
}

// Create inserts a new document and returns it with the store-assigned id.
func (c *Client) Create(ctx context.Context, collection string, fields map[string]any) (Document, error) {
	if c.db == nil {
		c.log.Warn(ctx, "document store not configured, dropping create", "collection", collection)
		return Document{}, nil
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return Document{}, err
	}

	query := `INSERT INTO documents (collection, fields) VALUES ($1, $2) RETURNING id`
	var id string
	if err := c.db.QueryRowContext(ctx, query, collection, raw).Scan(&id); err != nil {
		return Document{}, fmt.Errorf("failed to create document in %s: %w", collection, err)
	}
	return Document{ID: id, Fields: fields}, nil
}

// Update applies a partial-field patch. Fields absent from patch keep their
// stored values; this is not a full replace.
func (c *Client) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	if c.db == nil {
		c.log.Warn(ctx, "document store not configured, dropping update", "collection", collection, "id", id)
		return nil
	}

	raw, err := json.Marshal(patch)
	if err != nil {
		return err
	}

	query := `UPDATE documents SET fields = fields || $3 WHERE collection = $1 AND id = $2`
	if _, err := c.db.ExecContext(ctx, query, collection, id, raw); err != nil {
		return fmt.Errorf("failed to update document %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes the document. Deleting an absent id is a no-op.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	if c.db == nil {
		c.log.Warn(ctx, "document store not configured, dropping delete", "collection", collection, "id", id)
		return nil
	}

	query := `DELETE FROM documents WHERE collection = $1 AND id = $2`
	if _, err := c.db.ExecContext(ctx, query, collection, id); err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", collection, id, err)
	}
	return nil
}

// QueryByField returns documents whose field equals value, oldest first.
// Used to scope wishlist items to their parent list.
func (c *Client) QueryByField(ctx context.Context, collection, field, value string) ([]Document, error) {
	if c.db == nil {
		return []Document{}, nil
	}

	query := `SELECT id, fields FROM documents WHERE collection = $1 AND fields->>$2 = $3 ORDER BY created_at`
	rows, err := c.db.QueryContext(ctx, query, collection, field, value)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s by %s: %w", collection, field, err)
	}
	return scanDocuments(rows)
}
