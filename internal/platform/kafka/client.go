// Package kafka provides the Kafka-backed implementation of the bus
// interfaces using franz-go. The service both produces to and consumes from
// a single topic carrying task lifecycle envelopes.
package kafka

import (
	"fmt"
	"time"

	"github.com/avolkova/tasknotify/internal/config"
	"github.com/twmb/franz-go/pkg/kgo"
)

// NewClient creates a franz-go client configured for the event topic.
// The client participates in a consumer group with automatic offset commits;
// the consumer does not need manual ack semantics because all recovery runs
// through the reconciliation job, not message redelivery.
func NewClient(cfg config.KafkaConfig) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.Group),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.AllowAutoTopicCreation(),
		kgo.FetchMaxWait(500*time.Millisecond),
		kgo.DefaultProduceTopic(cfg.Topic),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	return client, nil
}
