// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog keeps a local SQLite copy of product details. The
// projector resolves recommended item ids against it, and the CLI can
// search it when the remote gateway is unreachable.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/storefront/pkg/types"
)

const dbFile = "catalog.db"

// Store manages the catalog database.
type Store struct {
	db      *sql.DB
	dataDir string
}

// NewStore opens or creates the catalog at dataDir/catalog.db and ensures
// the schema exists.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dataDir: dataDir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return filepath.Join(s.dataDir, dbFile)
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			price REAL NOT NULL DEFAULT 0,
			category TEXT NOT NULL DEFAULT '',
			tags TEXT,
			image_urls TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Upsert inserts products or replaces existing rows with the same id, in a
// single transaction.
func (s *Store) Upsert(ctx context.Context, products []types.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO products (id, name, price, category, tags, image_urls)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			price = excluded.price,
			category = excluded.category,
			tags = excluded.tags,
			image_urls = excluded.image_urls`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range products {
		if p.ID == "" {
			return fmt.Errorf("product %q has no id", p.Name)
		}
		tags, _ := json.Marshal(nonNil(p.Tags))
		images, _ := json.Marshal(nonNil(p.ImageURLs))
		if _, err := stmt.ExecContext(ctx, p.ID, p.Name, p.Price, p.Category, string(tags), string(images)); err != nil {
			return fmt.Errorf("upserting product %s: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

// FindByID returns the product with the given id, or nil if the catalog
// has no such product.
func (s *Store) FindByID(ctx context.Context, id string) (*types.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, price, category, tags, image_urls FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up product %s: %w", id, err)
	}
	return &p, nil
}

// Search returns products whose name, category, or tags contain term,
// ignoring case. An empty term returns the whole catalog.
func (s *Store) Search(ctx context.Context, term string) ([]types.Product, error) {
	term = types.Normalize(term)
	if term == "" {
		return s.All(ctx)
	}
	like := "%" + escapeLike(term) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, price, category, tags, image_urls FROM products
		WHERE lower(name) LIKE ? ESCAPE '\'
			OR lower(category) LIKE ? ESCAPE '\'
			OR lower(tags) LIKE ? ESCAPE '\'
		ORDER BY id`, like, like, like)
	if err != nil {
		return nil, fmt.Errorf("searching catalog: %w", err)
	}
	return collect(rows)
}

// All returns every product ordered by id.
func (s *Store) All(ctx context.Context) ([]types.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, price, category, tags, image_urls FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing catalog: %w", err)
	}
	return collect(rows)
}

// Count returns the number of products in the catalog.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting products: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (types.Product, error) {
	var (
		p          types.Product
		tagsJSON   sql.NullString
		imagesJSON sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Category, &tagsJSON, &imagesJSON); err != nil {
		return types.Product{}, err
	}
	p.Tags = []string{}
	p.ImageURLs = []string{}
	if tagsJSON.Valid {
		json.Unmarshal([]byte(tagsJSON.String), &p.Tags)
	}
	if imagesJSON.Valid {
		json.Unmarshal([]byte(imagesJSON.String), &p.ImageURLs)
	}
	return p, nil
}

func collect(rows *sql.Rows) ([]types.Product, error) {
	defer rows.Close()
	products := []types.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
