package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/avolkova/tasknotify/internal/bus"
	"github.com/avolkova/tasknotify/internal/events"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Publisher publishes event envelopes to the configured topic.
type Publisher struct {
	client *kgo.Client
	topic  string
}

// NewPublisher creates a Publisher producing to the given topic.
func NewPublisher(client *kgo.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

// Ensure Publisher implements bus.Publisher
var _ bus.Publisher = (*Publisher)(nil)

// Publish synchronously produces the envelope. The referenced task id, when
// present, becomes the record key so all events for one task land on the
// same partition and preserve their relative order.
func (p *Publisher) Publish(ctx context.Context, env *events.Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to serialize envelope: %w", err)
	}

	var key []byte
	if taskID, ok := env.TaskID(); ok {
		key = []byte(strconv.FormatInt(taskID, 10))
	}

	record := &kgo.Record{Topic: p.topic, Key: key, Value: value}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", env.Event, err)
	}

	return nil
}
