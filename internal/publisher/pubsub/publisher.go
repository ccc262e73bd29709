// Package pubsub announces snapshots on a Google Cloud Pub/Sub topic.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub/v2"

	"github.com/JakeFAU/jobs-observatory/internal/apperr"
)

// Attributer lets a payload contribute message attributes for subscription filters.
type Attributer interface {
	Attributes() map[string]string
}

// Publisher wraps a Pub/Sub publisher client.
type Publisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topic     string
}

// New opens a client for projectID and binds a publisher to topic.
func New(ctx context.Context, projectID, topic string) (*Publisher, error) {
	if projectID == "" || topic == "" {
		return nil, apperr.Config("pubsub.project_id and pubsub.topic are required", nil)
	}
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, apperr.Config("create pubsub client", err)
	}
	return &Publisher{
		client:    client,
		publisher: client.Publisher(topic),
		topic:     topic,
	}, nil
}

// Topic reports the topic this publisher is bound to.
func (p *Publisher) Topic() string {
	return p.topic
}

// Publish marshals the payload to JSON, publishes it, and waits for the server ID.
// The topic argument must match the bound topic.
func (p *Publisher) Publish(ctx context.Context, topic string, payload any) (string, error) {
	if p == nil || p.publisher == nil {
		return "", apperr.Config("pubsub publisher is not configured", nil)
	}
	if topic != "" && topic != p.topic {
		return "", apperr.Config(fmt.Sprintf("publisher bound to %q, not %q", p.topic, topic), nil)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", apperr.Internal("marshal payload", err)
	}
	msg := &pubsub.Message{Data: data}
	if a, ok := payload.(Attributer); ok {
		msg.Attributes = a.Attributes()
	}
	id, err := p.publisher.Publish(ctx, msg).Get(ctx)
	if err != nil {
		return "", apperr.Storage("publish message", err)
	}
	return id, nil
}

// Close flushes pending messages and closes the client.
func (p *Publisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	p.publisher.Stop()
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}
