package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsnap/catalog-crawler/internal/crawler"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	store, err := NewStoreWithPool(mock)
	require.NoError(t, err)
	return store, mock
}

func TestUpsertCategoriesInsertsRows(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	rootParent := (*string)(nil)
	childParent := "001"

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO categories").
		WithArgs("001", rootParent, "electronics", "Electronics").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO categories").
		WithArgs("001001", &childParent, "phones", "Phones").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := store.UpsertCategories(context.Background(), []crawler.Category{
		{ID: "001", Code: "electronics", Name: "Electronics"},
		{ID: "001001", ParentID: "001", Code: "phones", Name: "Phones"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertCategoriesRollsBackOnFailure(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO categories").
		WithArgs("001", (*string)(nil), "electronics", "Electronics").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := store.UpsertCategories(context.Background(), []crawler.Category{
		{ID: "001", Code: "electronics", Name: "Electronics"},
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertProductsUpdatesOnConflict(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	now := time.Unix(1700000000, 0).UTC()
	rating := 4.5

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO products").
		WithArgs("uuid-1", "src-1", "001001", "Phone X", (*string)(nil), &rating, (*string)(nil), (*string)(nil), now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := store.UpsertProducts(context.Background(), []crawler.Product{
		{
			ID:         "uuid-1",
			SrcID:      "src-1",
			CategoryID: "001001",
			Name:       "Phone X",
			Rating:     &rating,
			ObservedAt: now,
		},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertSuppliersInsertsRows(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO suppliers").
		WithArgs("uuid-1", "acme", 99.5, (*float64)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := store.UpsertSuppliers(context.Background(), []crawler.SupplierOffer{
		{ProductID: "uuid-1", Name: "acme", Price: 99.5},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertSkipsEmptyBatches(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	require.NoError(t, store.UpsertCategories(context.Background(), nil))
	require.NoError(t, store.UpsertProducts(context.Background(), nil))
	require.NoError(t, store.UpsertSuppliers(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryCodeIndex(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	rows := pgxmock.NewRows([]string{"code", "id"}).
		AddRow("electronics", "001").
		AddRow("phones", "001001")
	mock.ExpectQuery("SELECT code, id FROM categories").WillReturnRows(rows)

	index, err := store.CategoryCodeIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"electronics": "001",
		"phones":      "001001",
	}, index)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLookupProductID(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id FROM products").
		WithArgs("src-1", "Phone X").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("uuid-1"))

	id, err := store.LookupProductID(context.Background(), "src-1", "Phone X")
	require.NoError(t, err)
	assert.Equal(t, "uuid-1", id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLookupProductIDNotFound(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id FROM products").
		WithArgs("src-2", "Phone Y").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	id, err := store.LookupProductID(context.Background(), "src-2", "Phone Y")
	require.NoError(t, err)
	assert.Empty(t, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewStoreWithPoolRequiresPool(t *testing.T) {
	t.Parallel()

	_, err := NewStoreWithPool(nil)
	require.Error(t, err)
}
