package queue

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"go.uber.org/zap"

	"github.com/marketsnap/catalog-crawler/internal/logging"
)

// PubSubProvider implements the queue.Provider interface for Google Cloud Pub/Sub.
type PubSubProvider struct {
	Client *pubsub.Client
	Topic  *pubsubpb.Topic
}

func fullTopicName(projectID, topicID string) string {
	return fmt.Sprintf("projects/%s/topics/%s", projectID, topicID)
}

// NewPubSubProvider creates a new Pub/Sub client and gets a handle to the specified topic.
// It authenticates using Google Cloud's Application Default Credentials.
func NewPubSubProvider(ctx context.Context, projectID, topicID string) (*PubSubProvider, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	request := &pubsubpb.GetTopicRequest{
		Topic: fullTopicName(projectID, topicID),
	}
	topic, err := client.TopicAdminClient.GetTopic(ctx, request)
	if err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logging.L.Warn("Failed to close pubsub client after topic retrieval failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("failed to get pubsub topic '%s': %w", topicID, err)
	}
	if topic.State != pubsubpb.Topic_ACTIVE {
		if closeErr := client.Close(); closeErr != nil {
			logging.L.Warn("Failed to close pubsub client after topic state check failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("pubsub topic '%s' is not active in project '%s'", topicID, projectID)
	}

	return &PubSubProvider{
		Client: client,
		Topic:  topic,
	}, nil
}

// Publish sends one message to the Pub/Sub topic and waits for the server
// acknowledgement. A crawl pass emits a single summary message, so blocking
// here costs nothing and surfaces delivery failures to the caller.
func (p *PubSubProvider) Publish(ctx context.Context, payload []byte) error {
	publisher := p.Client.Publisher(p.Topic.Name)
	result := publisher.Publish(ctx, &pubsub.Message{Data: payload})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish to %s: %w", p.Topic.Name, err)
	}
	return nil
}

// Close stops the publisher and closes the underlying client connection.
func (p *PubSubProvider) Close() error {
	if err := p.Client.Close(); err != nil {
		return fmt.Errorf("failed to close pubsub client: %w", err)
	}
	return nil
}
