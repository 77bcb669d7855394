package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DefaultMaxLen caps each stream; trimming is approximate.
const DefaultMaxLen = 10000

// Publisher appends events to Redis streams as a single "event" field holding
// the JSON-encoded Event.
type Publisher struct {
	client redis.UniversalClient
	maxLen int64
	now    func() time.Time
}

func NewPublisher(client redis.UniversalClient) *Publisher {
	return &Publisher{client: client, maxLen: DefaultMaxLen, now: time.Now}
}

// Publish writes one event of eventType to stream.
func (p *Publisher) Publish(ctx context.Context, stream, eventType string, data any) error {
	payload, err := json.Marshal(Event{
		Type:      eventType,
		Timestamp: p.now().UTC(),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{"event": payload},
	}).Result()
	if err != nil {
		return fmt.Errorf("publish %s to %s: %w", eventType, stream, err)
	}

	log.Debug().Str("stream", stream).Str("type", eventType).Str("id", id).Msg("event published")
	return nil
}
