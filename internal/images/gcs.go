package images

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/marketsnap/catalog-crawler/internal/logging"
)

// GCSSink uploads images to a Google Cloud Storage bucket.
type GCSSink struct {
	client *storage.Client
	bucket string
}

// NewGCSSink initializes a GCS client and verifies access to the bucket.
// Authentication is handled via Application Default Credentials.
func NewGCSSink(ctx context.Context, bucketName string) (*GCSSink, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	bkt := client.Bucket(bucketName)
	if _, err := bkt.Attrs(ctx); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logging.L.Warn("Failed to close GCS client after bucket existence check failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("failed to get GCS bucket '%s' attributes: %w", bucketName, err)
	}

	return &GCSSink{client: client, bucket: bucketName}, nil
}

// Store uploads data under the suggested name and returns a gs:// reference.
// Objects are content addressed, so an existing object is not rewritten.
func (s *GCSSink) Store(ctx context.Context, data []byte, suggestedName string) (string, error) {
	obj := s.client.Bucket(s.bucket).Object(suggestedName)
	ref := fmt.Sprintf("gs://%s/%s", s.bucket, suggestedName)

	_, err := obj.Attrs(ctx)
	if err == nil {
		return ref, nil
	}
	if !errors.Is(err, storage.ErrObjectNotExist) {
		return "", fmt.Errorf("failed to check GCS object %s: %w", suggestedName, err)
	}

	wc := obj.NewWriter(ctx)
	if _, err := wc.Write(data); err != nil {
		if closeErr := wc.Close(); closeErr != nil {
			logging.L.Warn("Failed to close GCS writer after write failure", zap.Error(closeErr))
		}
		return "", fmt.Errorf("failed to write GCS object %s: %w", suggestedName, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer for object %s: %w", suggestedName, err)
	}
	return ref, nil
}

// Close releases the underlying GCS client.
func (s *GCSSink) Close() error {
	return s.client.Close()
}
