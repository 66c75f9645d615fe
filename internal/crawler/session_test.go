package crawler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsnap/catalog-crawler/internal/crawler"
	"github.com/marketsnap/catalog-crawler/internal/storage/memory"
)

// orderedStore records the order of upsert calls and can be told to fail a
// specific table.
type orderedStore struct {
	*memory.Store
	calls     []string
	failTable string
}

func (s *orderedStore) UpsertCategories(ctx context.Context, rows []crawler.Category) error {
	s.calls = append(s.calls, "categories")
	if s.failTable == "categories" {
		return errors.New("categories upsert failed")
	}
	return s.Store.UpsertCategories(ctx, rows)
}

func (s *orderedStore) UpsertProducts(ctx context.Context, rows []crawler.Product) error {
	s.calls = append(s.calls, "products")
	if s.failTable == "products" {
		return errors.New("products upsert failed")
	}
	return s.Store.UpsertProducts(ctx, rows)
}

func (s *orderedStore) UpsertSuppliers(ctx context.Context, rows []crawler.SupplierOffer) error {
	s.calls = append(s.calls, "suppliers")
	if s.failTable == "suppliers" {
		return errors.New("suppliers upsert failed")
	}
	return s.Store.UpsertSuppliers(ctx, rows)
}

func seedSession(s *crawler.Session) {
	s.AddCategory(crawler.Category{ID: "001", Code: "electronics", Name: "Electronics"})
	s.AddProduct(crawler.Product{ID: "uuid-1", SrcID: "p1", Name: "Phone X", CategoryID: "001"})
	s.AddSupplier(crawler.SupplierOffer{ProductID: "uuid-1", Name: "acme", Price: 100})
	s.AddSupplier(crawler.SupplierOffer{ProductID: "uuid-1", Name: "globex", Price: 95})
}

func TestSessionFlushOrderAndClear(t *testing.T) {
	store := &orderedStore{Store: memory.NewStore()}
	session := crawler.NewSession(store, nil)
	seedSession(session)

	cats, prods, sups := session.Pending()
	assert.Equal(t, []int{1, 1, 2}, []int{cats, prods, sups})

	require.NoError(t, session.Flush(context.Background()))
	assert.Equal(t, []string{"categories", "products", "suppliers"}, store.calls,
		"referenced tables must be written before referencing ones")

	cats, prods, sups = session.Pending()
	assert.Zero(t, cats+prods+sups, "buffers clear after a full flush")

	cats, prods, sups = session.Totals()
	assert.Equal(t, []int{1, 1, 2}, []int{cats, prods, sups})

	// A second flush with empty buffers is a no-op for totals.
	require.NoError(t, session.Flush(context.Background()))
	cats, prods, sups = session.Totals()
	assert.Equal(t, []int{1, 1, 2}, []int{cats, prods, sups})
}

func TestSessionFlushFailureKeepsBuffers(t *testing.T) {
	for _, table := range []string{"categories", "products", "suppliers"} {
		t.Run(table, func(t *testing.T) {
			store := &orderedStore{Store: memory.NewStore(), failTable: table}
			session := crawler.NewSession(store, nil)
			seedSession(session)

			require.Error(t, session.Flush(context.Background()))

			cats, prods, sups := session.Pending()
			assert.Equal(t, []int{1, 1, 2}, []int{cats, prods, sups},
				"a failed flush must leave every buffer intact")

			cats, prods, sups = session.Totals()
			assert.Zero(t, cats+prods+sups)

			// The store recovers; the retry flushes everything.
			store.failTable = ""
			require.NoError(t, session.Flush(context.Background()))
			cats, prods, sups = session.Totals()
			assert.Equal(t, []int{1, 1, 2}, []int{cats, prods, sups})
		})
	}
}
