package crawler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/marketsnap/catalog-crawler/internal/metrics"
)

// Session owns the in-memory record buffers of one crawl pass. It is not
// safe for concurrent use; the crawl is a single cooperative flow and the
// session is only ever touched from it.
type Session struct {
	store  Store
	logger *zap.Logger

	categories []Category
	products   []Product
	suppliers  []SupplierOffer

	// cumulative totals across flushes, reported in the pass summary
	totalCategories int
	totalProducts   int
	totalSuppliers  int
}

// NewSession creates an empty session bound to a store.
func NewSession(store Store, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{store: store, logger: logger}
}

// AddCategory buffers a category record for the next flush.
func (s *Session) AddCategory(c Category) {
	s.categories = append(s.categories, c)
}

// AddProduct buffers a product record for the next flush.
func (s *Session) AddProduct(p Product) {
	s.products = append(s.products, p)
}

// AddSupplier buffers a supplier offer for the next flush.
func (s *Session) AddSupplier(o SupplierOffer) {
	s.suppliers = append(s.suppliers, o)
}

// Pending reports the buffered row counts (categories, products, suppliers).
func (s *Session) Pending() (int, int, int) {
	return len(s.categories), len(s.products), len(s.suppliers)
}

// Totals reports the cumulative flushed row counts of the pass.
func (s *Session) Totals() (int, int, int) {
	return s.totalCategories, s.totalProducts, s.totalSuppliers
}

// Flush upserts every buffered row: categories first (products reference
// them), then products, then supplier offers. The buffers are cleared as a
// unit only after all three upserts succeed; on any failure every buffered
// row is retained for the caller to retry or abandon.
func (s *Session) Flush(ctx context.Context) error {
	if err := s.store.UpsertCategories(ctx, s.categories); err != nil {
		return fmt.Errorf("flush categories: %w", err)
	}
	if err := s.store.UpsertProducts(ctx, s.products); err != nil {
		return fmt.Errorf("flush products: %w", err)
	}
	if err := s.store.UpsertSuppliers(ctx, s.suppliers); err != nil {
		return fmt.Errorf("flush suppliers: %w", err)
	}

	metrics.ObserveFlush("categories", len(s.categories))
	metrics.ObserveFlush("products", len(s.products))
	metrics.ObserveFlush("suppliers", len(s.suppliers))
	s.logger.Debug("session flushed",
		zap.Int("categories", len(s.categories)),
		zap.Int("products", len(s.products)),
		zap.Int("suppliers", len(s.suppliers)),
	)

	s.totalCategories += len(s.categories)
	s.totalProducts += len(s.products)
	s.totalSuppliers += len(s.suppliers)
	s.categories = s.categories[:0]
	s.products = s.products[:0]
	s.suppliers = s.suppliers[:0]
	return nil
}
