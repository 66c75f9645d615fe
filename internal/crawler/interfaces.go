package crawler

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// FetchRequest captures everything needed to fetch an upstream resource.
// A non-nil JSONBody turns the request into a POST with a JSON payload.
type FetchRequest struct {
	URL      string
	Query    url.Values
	Headers  http.Header
	JSONBody []byte
}

// Fetcher issues upstream requests with the fixed crawler identity and the
// fixed transient-failure retry policy. Bytes returns the raw body; JSON
// decodes the body into v.
type Fetcher interface {
	Bytes(ctx context.Context, req FetchRequest) ([]byte, error)
	JSON(ctx context.Context, req FetchRequest, v any) error
}

// Store persists crawl snapshots with idempotent natural-key upserts and
// resolves prior identifiers for re-crawls. Each upsert call is
// all-or-nothing for its table.
type Store interface {
	UpsertCategories(ctx context.Context, rows []Category) error
	UpsertProducts(ctx context.Context, rows []Product) error
	UpsertSuppliers(ctx context.Context, rows []SupplierOffer) error

	// CategoryCodeIndex returns the full code -> id mapping of previously
	// crawled categories, loaded once at crawl start.
	CategoryCodeIndex(ctx context.Context) (map[string]string, error)

	// LookupProductID resolves a prior product id by its natural key,
	// returning "" when the product has never been seen.
	LookupProductID(ctx context.Context, srcID, name string) (string, error)

	Close()
}

// ImageSink stores an image blob under a content-addressed name and returns
// a stable reference path. Re-storing an existing name must be a no-op.
type ImageSink interface {
	Store(ctx context.Context, data []byte, suggestedName string) (string, error)
}

// Notifier publishes the crawl-pass completion event for downstream readers.
type Notifier interface {
	Publish(ctx context.Context, message []byte) error
	Close() error
}

// Hasher computes digests for content-addressed image names.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces local product identifiers.
type IDGenerator interface {
	NewID() (string, error)
}

// NoOpStore discards every row; useful for dry runs that only exercise the
// traversal.
type NoOpStore struct{}

// UpsertCategories for NoOpStore does nothing.
func (NoOpStore) UpsertCategories(_ context.Context, _ []Category) error { return nil }

// UpsertProducts for NoOpStore does nothing.
func (NoOpStore) UpsertProducts(_ context.Context, _ []Product) error { return nil }

// UpsertSuppliers for NoOpStore does nothing.
func (NoOpStore) UpsertSuppliers(_ context.Context, _ []SupplierOffer) error { return nil }

// CategoryCodeIndex for NoOpStore reports no prior categories.
func (NoOpStore) CategoryCodeIndex(_ context.Context) (map[string]string, error) {
	return map[string]string{}, nil
}

// LookupProductID for NoOpStore reports every product as unknown.
func (NoOpStore) LookupProductID(_ context.Context, _, _ string) (string, error) {
	return "", nil
}

// Close for NoOpStore does nothing.
func (NoOpStore) Close() {}

// NoOpImageSink discards images; products keep a nil image reference.
type NoOpImageSink struct{}

// Store for NoOpImageSink does nothing and returns an empty reference.
func (NoOpImageSink) Store(_ context.Context, _ []byte, _ string) (string, error) {
	return "", nil
}

// NoOpNotifier drops completion events.
type NoOpNotifier struct{}

// Publish for NoOpNotifier does nothing.
func (NoOpNotifier) Publish(_ context.Context, _ []byte) error { return nil }

// Close for NoOpNotifier does nothing.
func (NoOpNotifier) Close() error { return nil }
