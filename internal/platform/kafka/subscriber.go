package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avolkova/tasknotify/internal/bus"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Subscriber delivers records from the event topic one at a time.
// Fetched batches are buffered internally so the consumer's handling stays
// strictly sequential.
type Subscriber struct {
	client  *kgo.Client
	logger  *slog.Logger
	pending []*kgo.Record
}

// NewSubscriber creates a Subscriber reading from the client's consumed topic.
func NewSubscriber(client *kgo.Client, logger *slog.Logger) *Subscriber {
	return &Subscriber{
		client: client,
		logger: logger.With("component", "kafka_subscriber"),
	}
}

// Ensure Subscriber implements bus.Subscriber
var _ bus.Subscriber = (*Subscriber)(nil)

// Receive blocks until a record is available or ctx is done.
// Fetch-level errors are logged and polling continues; only a closed client
// or cancelled context end the stream.
func (s *Subscriber) Receive(ctx context.Context) (bus.Message, error) {
	for len(s.pending) == 0 {
		if err := ctx.Err(); err != nil {
			return bus.Message{}, err
		}

		fetches := s.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return bus.Message{}, fmt.Errorf("kafka client closed")
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			s.logger.Error("fetch error",
				"topic", topic,
				"partition", partition,
				"error", err)
		})

		fetches.EachRecord(func(record *kgo.Record) {
			s.pending = append(s.pending, record)
		})
	}

	record := s.pending[0]
	s.pending = s.pending[1:]

	return bus.Message{Key: record.Key, Value: record.Value}, nil
}
