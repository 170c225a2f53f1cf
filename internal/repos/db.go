package repos

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"greenleaf/internal/domain"
)

//go:embed seed/catalog.json
var seedCatalog []byte

// busyTimeoutMS bounds how long a writer waits on another process's lock.
const busyTimeoutMS = 5000

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, err
	}
	// SQLite takes one writer at a time; a single pooled connection queues
	// writers in process instead of failing them with SQLITE_BUSY. It also
	// keeps :memory: a single database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := seedIfEmpty(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// withPragmas adds busy_timeout and WAL to file databases unless the DSN
// already sets pragmas.
func withPragmas(dsn string) string {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", dsn, sep, busyTimeoutMS)
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
-- Catalog (read-only at runtime)
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  position INTEGER NOT NULL,
  title TEXT NOT NULL,
  description TEXT,
  brand TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL CHECK (price >= 0),
  discount NUMERIC NOT NULL DEFAULT 0 CHECK (discount >= 0 AND discount <= 100),
  rating NUMERIC NOT NULL DEFAULT 0 CHECK (rating >= 0 AND rating <= 5),
  images_json TEXT,
  benefits_json TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_position ON products(position);
CREATE INDEX IF NOT EXISTS idx_products_brand    ON products(brand);

-- Per-session key/value storage (cart, wishlist)
CREATE TABLE IF NOT EXISTS storage(
  session_id TEXT NOT NULL,
  item_key   TEXT NOT NULL,
  value      TEXT NOT NULL,
  updated_at TEXT,
  PRIMARY KEY (session_id, item_key)
);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var products []domain.Product
	if err := json.Unmarshal(seedCatalog, &products); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	log.Printf("[seed] inserting %d catalog products", len(products))
	return ReplaceCatalog(db, products)
}

// LoadCatalogFile replaces the catalog with the JSON array at path.
func LoadCatalogFile(db *sqlx.DB, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var products []domain.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return fmt.Errorf("catalog %s: %w", path, err)
	}
	log.Printf("[seed] loading %d catalog products from %s", len(products), path)
	return ReplaceCatalog(db, products)
}

// ReplaceCatalog swaps the whole catalog in one transaction, keeping slice order.
func ReplaceCatalog(db *sqlx.DB, products []domain.Product) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM products`); err != nil {
		return err
	}
	seen := map[domain.ProductID]bool{}
	for i, p := range products {
		if p.ID == "" {
			return fmt.Errorf("catalog entry %d has no id", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("catalog id %s is duplicated", p.ID)
		}
		seen[p.ID] = true
		row, err := toRow(p, i)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExec(`
			INSERT INTO products(id, position, title, description, brand, category, price, discount, rating, images_json, benefits_json, created_at)
			VALUES(:id, :position, :title, :description, :brand, :category, :price, :discount, :rating, :images_json, :benefits_json, CURRENT_TIMESTAMP)
		`, row); err != nil {
			return err
		}
	}
	return tx.Commit()
}
