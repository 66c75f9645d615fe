// Package queue defines the interfaces for a message queue provider.
// This abstraction allows the application to be independent of a specific
// message queue implementation (e.g., GCP Pub/Sub, RabbitMQ, Kafka).
package queue

import "context"

// Provider publishes crawl pass summaries for downstream consumers.
type Provider interface {
	// Publish sends one message to the configured topic.
	Publish(ctx context.Context, payload []byte) error
	// Close releases the provider's resources.
	Close() error
}

// NoOpProvider discards all messages. It is used when no queue is configured.
type NoOpProvider struct{}

// Publish discards the payload.
func (NoOpProvider) Publish(context.Context, []byte) error { return nil }

// Close is a no-op.
func (NoOpProvider) Close() error { return nil }
