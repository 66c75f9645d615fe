// Package memory provides an in-memory Store used for tests and dry runs.
package memory

import (
	"context"
	"sync"

	"github.com/marketsnap/catalog-crawler/internal/crawler"
)

type productKey struct {
	srcID string
	name  string
}

type supplierKey struct {
	productID string
	name      string
}

// Store keeps catalog rows in process memory. It mirrors the upsert
// semantics of the Postgres store: categories keep their first id per code,
// products and suppliers are replaced on natural-key conflicts.
type Store struct {
	mu         sync.RWMutex
	categories map[string]crawler.Category
	products   map[productKey]crawler.Product
	suppliers  map[supplierKey]crawler.SupplierOffer
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		categories: make(map[string]crawler.Category),
		products:   make(map[productKey]crawler.Product),
		suppliers:  make(map[supplierKey]crawler.SupplierOffer),
	}
}

// UpsertCategories stores categories, keeping the first id seen per code.
func (s *Store) UpsertCategories(_ context.Context, categories []crawler.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range categories {
		if _, ok := s.categories[c.Code]; ok {
			continue
		}
		s.categories[c.Code] = c
	}
	return nil
}

// UpsertProducts stores products keyed by (src_id, name).
func (s *Store) UpsertProducts(_ context.Context, products []crawler.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range products {
		key := productKey{srcID: p.SrcID, name: p.Name}
		if existing, ok := s.products[key]; ok {
			p.ID = existing.ID
		}
		s.products[key] = p
	}
	return nil
}

// UpsertSuppliers stores supplier offers keyed by (product_id, name).
func (s *Store) UpsertSuppliers(_ context.Context, offers []crawler.SupplierOffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range offers {
		s.suppliers[supplierKey{productID: o.ProductID, name: o.Name}] = o
	}
	return nil
}

// CategoryCodeIndex returns the stored code to id mapping.
func (s *Store) CategoryCodeIndex(_ context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	index := make(map[string]string, len(s.categories))
	for code, c := range s.categories {
		index[code] = c.ID
	}
	return index, nil
}

// LookupProductID returns the stored id for a (src_id, name) pair, or an
// empty string when the product is unknown.
func (s *Store) LookupProductID(_ context.Context, srcID, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.products[productKey{srcID: srcID, name: name}]; ok {
		return p.ID, nil
	}
	return "", nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() {}

// Categories returns a snapshot of stored categories.
func (s *Store) Categories() []crawler.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]crawler.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	return out
}

// Products returns a snapshot of stored products.
func (s *Store) Products() []crawler.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]crawler.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	return out
}

// Suppliers returns a snapshot of stored supplier offers.
func (s *Store) Suppliers() []crawler.SupplierOffer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]crawler.SupplierOffer, 0, len(s.suppliers))
	for _, o := range s.suppliers {
		out = append(out, o)
	}
	return out
}
