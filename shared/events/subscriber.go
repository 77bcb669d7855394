package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Handler func(ctx context.Context, event Event) error

type Subscriber struct {
	client        redis.UniversalClient
	group         string
	consumer      string
	stream        string
	handler       Handler
	batchSize     int64
	blockDuration time.Duration
}

type SubscriberConfig struct {
	Group         string
	Consumer      string
	Stream        string
	Handler       Handler
	BatchSize     int64
	BlockDuration time.Duration
}

func NewSubscriber(client redis.UniversalClient, config SubscriberConfig) *Subscriber {
	if config.BatchSize == 0 {
		config.BatchSize = 10
	}
	if config.BlockDuration == 0 {
		config.BlockDuration = 5 * time.Second
	}

	return &Subscriber{
		client:        client,
		group:         config.Group,
		consumer:      config.Consumer,
		stream:        config.Stream,
		handler:       config.Handler,
		batchSize:     config.BatchSize,
		blockDuration: config.BlockDuration,
	}
}

// EnsureGroup creates the consumer group (and the stream) if missing.
func (s *Subscriber) EnsureGroup(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

func (s *Subscriber) Start(ctx context.Context) error {
	if err := s.EnsureGroup(ctx); err != nil {
		return err
	}

	log.Info().Str("stream", s.stream).Str("group", s.group).Str("consumer", s.consumer).Msg("subscriber started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("stream", s.stream).Msg("subscriber stopping")
			return ctx.Err()
		default:
			if _, err := s.Poll(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Error().Err(err).Str("stream", s.stream).Msg("error reading messages")
				time.Sleep(time.Second)
			}
		}
	}
}

// Poll reads one batch from the group, dispatches it to the handler and
// acknowledges the messages that were handled. It returns how many were acked.
func (s *Subscriber) Poll(ctx context.Context) (int, error) {
	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.stream, ">"},
		Count:    s.batchSize,
		Block:    s.blockDuration,
	}).Result()

	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read from stream: %w", err)
	}

	acked := 0
	for _, stream := range streams {
		for _, message := range stream.Messages {
			if err := s.processMessage(ctx, message); err != nil {
				// unacked messages stay pending and are redelivered
				log.Error().Err(err).Str("id", message.ID).Msg("failed to process message")
				continue
			}

			if err := s.client.XAck(ctx, s.stream, s.group, message.ID).Err(); err != nil {
				log.Error().Err(err).Str("id", message.ID).Msg("failed to ack message")
				continue
			}
			acked++
		}
	}

	return acked, nil
}

func (s *Subscriber) processMessage(ctx context.Context, message redis.XMessage) error {
	eventData, ok := message.Values["event"].(string)
	if !ok {
		return fmt.Errorf("invalid message format")
	}

	var event Event
	if err := json.Unmarshal([]byte(eventData), &event); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return s.handler(ctx, event)
}
