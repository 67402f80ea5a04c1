package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Publisher pushes envelopes onto the shared redis channel so every API
// instance's hub can relay them.
type Publisher struct {
	client  *redis.Client
	channel string
}

// NewPublisher builds a publisher for channel.
func NewPublisher(client *redis.Client, channel string) *Publisher {
	return &Publisher{client: client, channel: channel}
}

// Publish wraps payload in an Envelope addressed to topic.
func (p *Publisher) Publish(ctx context.Context, topic, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	raw, err := json.Marshal(Envelope{Topic: topic, Type: eventType, Data: data, At: time.Now().UTC()})
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, raw).Err()
}
