package bus

import (
	"context"

	"github.com/avolkova/tasknotify/internal/events"
)

// Message is one raw message received from the bus. The value is the JSON
// event envelope; the key, when present, is the producer's partition key.
type Message struct {
	Key   []byte
	Value []byte
}

// Publisher publishes event envelopes to the bus channel.
type Publisher interface {
	// Publish synchronously sends the envelope. It returns once the bus has
	// accepted the message or with the transport's error.
	Publish(ctx context.Context, env *events.Envelope) error
}

// Subscriber delivers bus messages one at a time. Receive blocks until a
// message is available or ctx is done. Delivery is at-least-once; any
// deduplication is the consumer's responsibility.
type Subscriber interface {
	Receive(ctx context.Context) (Message, error)
}
