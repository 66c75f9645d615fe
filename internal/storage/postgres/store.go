// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marketsnap/catalog-crawler/internal/crawler"
)

// Config controls the Postgres connection pool used by the catalog store.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store persists catalog rows into Postgres.
type Store struct {
	pool pool
}

// NewStore creates a Postgres-backed Store using the provided config.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: p}, nil
}

// NewStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewStoreWithPool(p pool) (*Store, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Store{pool: p}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

const upsertCategorySQL = `
INSERT INTO categories (id, parent_id, code, name)
VALUES ($1, $2, $3, $4)
ON CONFLICT (code) DO NOTHING`

// UpsertCategories writes a batch of categories in one transaction.
// Previously discovered codes keep the id they were first assigned.
func (s *Store) UpsertCategories(ctx context.Context, categories []crawler.Category) error {
	if len(categories) == 0 {
		return nil
	}
	return s.inTx(ctx, "categories", func(tx pgx.Tx) error {
		for _, c := range categories {
			var parent *string
			if c.ParentID != "" {
				p := c.ParentID
				parent = &p
			}
			if _, err := tx.Exec(ctx, upsertCategorySQL, c.ID, parent, c.Code, c.Name); err != nil {
				return fmt.Errorf("upsert category %q: %w", c.Code, err)
			}
		}
		return nil
	})
}

const upsertProductSQL = `
INSERT INTO products (id, src_id, category_id, name, image, rating, description, characteristics, observed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (src_id, name) DO UPDATE
SET category_id = EXCLUDED.category_id,
    image = EXCLUDED.image,
    rating = EXCLUDED.rating,
    description = EXCLUDED.description,
    characteristics = EXCLUDED.characteristics,
    observed_at = EXCLUDED.observed_at`

// UpsertProducts writes a batch of products in one transaction, keyed by
// (src_id, name) so repeated passes refresh rather than duplicate rows.
func (s *Store) UpsertProducts(ctx context.Context, products []crawler.Product) error {
	if len(products) == 0 {
		return nil
	}
	return s.inTx(ctx, "products", func(tx pgx.Tx) error {
		for _, p := range products {
			_, err := tx.Exec(ctx, upsertProductSQL,
				p.ID,
				p.SrcID,
				p.CategoryID,
				p.Name,
				p.Image,
				p.Rating,
				p.Description,
				p.Characteristics,
				p.ObservedAt,
			)
			if err != nil {
				return fmt.Errorf("upsert product %q: %w", p.SrcID, err)
			}
		}
		return nil
	})
}

const upsertSupplierSQL = `
INSERT INTO suppliers (product_id, name, price, rating)
VALUES ($1, $2, $3, $4)
ON CONFLICT (product_id, name) DO UPDATE
SET price = EXCLUDED.price,
    rating = EXCLUDED.rating`

// UpsertSuppliers writes a batch of supplier offers in one transaction,
// keyed by (product_id, name).
func (s *Store) UpsertSuppliers(ctx context.Context, offers []crawler.SupplierOffer) error {
	if len(offers) == 0 {
		return nil
	}
	return s.inTx(ctx, "suppliers", func(tx pgx.Tx) error {
		for _, o := range offers {
			if _, err := tx.Exec(ctx, upsertSupplierSQL, o.ProductID, o.Name, o.Price, o.Rating); err != nil {
				return fmt.Errorf("upsert supplier %q: %w", o.Name, err)
			}
		}
		return nil
	})
}

// CategoryCodeIndex loads the persisted code to id mapping.
func (s *Store) CategoryCodeIndex(ctx context.Context) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT code, id FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("load category index: %w", err)
	}
	defer rows.Close()

	index := make(map[string]string)
	for rows.Next() {
		var code, id string
		if err := rows.Scan(&code, &id); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		index[code] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}
	return index, nil
}

// LookupProductID returns the stored id for a (src_id, name) pair, or an
// empty string when the product has not been seen before.
func (s *Store) LookupProductID(ctx context.Context, srcID, name string) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM products WHERE src_id = $1 AND name = $2`,
		srcID, name,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup product %q: %w", srcID, err)
	}
	return id, nil
}

func (s *Store) inTx(ctx context.Context, table string, fn func(pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin %s upsert: %w", table, err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("rollback %s upsert: %w", table, rbErr))
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit %s upsert: %w", table, err)
	}
	return nil
}
