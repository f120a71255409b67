package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/orderbot/pkg/logger"
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS menu_items (
	item_number    INTEGER PRIMARY KEY,
	name           TEXT    NOT NULL,
	description    TEXT    NOT NULL DEFAULT '',
	category       TEXT    NOT NULL DEFAULT '',
	price          REAL    NOT NULL DEFAULT 0,
	options_json   TEXT    NOT NULL DEFAULT '[]',
	embedding_json TEXT
)`

// SQLiteCatalogStore keeps menu items in a single SQLite table. Options and
// embeddings are stored as JSON columns.
type SQLiteCatalogStore struct {
	db *sql.DB
}

var (
	_ model.CatalogStore  = (*SQLiteCatalogStore)(nil)
	_ model.CatalogWriter = (*SQLiteCatalogStore)(nil)
)

// OpenSQLiteCatalog opens (creating if needed) the catalog database at path.
func OpenSQLiteCatalog(ctx context.Context, path string) (*SQLiteCatalogStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping catalog db: %w", err)
	}
	if _, err := db.ExecContext(ctx, catalogSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate catalog db: %w", err)
	}
	return &SQLiteCatalogStore{db: db}, nil
}

func (s *SQLiteCatalogStore) Close() error {
	return s.db.Close()
}

// LoadCatalog reads every menu item in item-number order.
func (s *SQLiteCatalogStore) LoadCatalog(ctx context.Context) ([]model.CatalogRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_number, name, description, category, price, options_json, embedding_json
		FROM menu_items ORDER BY item_number`)
	if err != nil {
		return nil, fmt.Errorf("query menu items: %w", err)
	}
	defer rows.Close()

	var records []model.CatalogRecord
	for rows.Next() {
		var (
			rec       model.CatalogRecord
			options   string
			embedding sql.NullString
		)
		if err := rows.Scan(&rec.ItemNumber, &rec.Name, &rec.Description, &rec.Category, &rec.Price, &options, &embedding); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		if err := json.Unmarshal([]byte(options), &rec.Options); err != nil {
			return nil, fmt.Errorf("decode options of %q: %w", rec.Name, err)
		}
		if embedding.Valid && embedding.String != "" {
			if err := json.Unmarshal([]byte(embedding.String), &rec.Embedding); err != nil {
				// a broken vector only costs fuzzy matching for this item
				logx.Warn().Err(err).Str("component", "catalog_store").Str("item", rec.Name).Msg("ignoring undecodable embedding")
				rec.Embedding = nil
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate menu items: %w", err)
	}
	return records, nil
}

// SaveEmbedding stores the precomputed vector of one item.
func (s *SQLiteCatalogStore) SaveEmbedding(ctx context.Context, itemNumber int, name string, vector []float32) error {
	raw, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("encode embedding: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE menu_items SET embedding_json = ? WHERE item_number = ?`, string(raw), itemNumber)
	if err != nil {
		return fmt.Errorf("save embedding of %q: %w", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("save embedding of %q: item %d not found", name, itemNumber)
	}
	return nil
}

// UpsertItems inserts or replaces items by item number. Stored embeddings
// are kept unless the record carries a new one.
func (s *SQLiteCatalogStore) UpsertItems(ctx context.Context, records []model.CatalogRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO menu_items (item_number, name, description, category, price, options_json, embedding_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(item_number) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			category = excluded.category,
			price = excluded.price,
			options_json = excluded.options_json,
			embedding_json = COALESCE(excluded.embedding_json, menu_items.embedding_json)`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		options := rec.Options
		if options == nil {
			options = []model.OptionRecord{}
		}
		optRaw, err := json.Marshal(options)
		if err != nil {
			return fmt.Errorf("encode options of %q: %w", rec.Name, err)
		}
		var embedding sql.NullString
		if len(rec.Embedding) > 0 {
			raw, err := json.Marshal(rec.Embedding)
			if err != nil {
				return fmt.Errorf("encode embedding of %q: %w", rec.Name, err)
			}
			embedding = sql.NullString{String: string(raw), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, rec.ItemNumber, rec.Name, rec.Description, rec.Category, rec.Price, string(optRaw), embedding); err != nil {
			return fmt.Errorf("upsert %q: %w", rec.Name, err)
		}
	}
	return tx.Commit()
}
