// Package events carries domain events between the review workflow and its
// asynchronous consumers over watermill.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"publazer/internal/config"
)

const (
	TopicPaperSubmitted = "paper.submitted"
	TopicPaperReviewed  = "paper.reviewed"

	consumerGroup = "publazer"
)

type PaperSubmitted struct {
	PaperID    uuid.UUID `json:"paperId"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	AuthorID   uuid.UUID `json:"authorId"`
	Department string    `json:"department"`
	Reviewers  int       `json:"reviewersNotified"`
	OccurredAt time.Time `json:"occurredAt"`
}

type PaperReviewed struct {
	PaperID       uuid.UUID `json:"paperId"`
	Title         string    `json:"title"`
	AuthorID      uuid.UUID `json:"authorId"`
	Status        string    `json:"status"`
	StatusChanged bool      `json:"statusChanged"`
	Comment       string    `json:"comment,omitempty"`
	ReviewerName  string    `json:"reviewerName"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Bus publishes JSON events and hands out the matching subscriber.
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	shared     bool
	prefix     string
	logger     watermill.LoggerAdapter
}

// NewBus uses Kafka when brokers are configured and an in-process channel
// otherwise.
func NewBus(cfg config.KafkaConfig, logger *slog.Logger) (*Bus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	if len(cfg.Brokers) == 0 {
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wmLogger)
		return &Bus{publisher: ch, subscriber: ch, shared: true, prefix: cfg.TopicPrefix, logger: wmLogger}, nil
	}

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   cfg.Brokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               cfg.Brokers,
		Unmarshaler:           kafka.DefaultMarshaler{},
		OverwriteSaramaConfig: kafka.DefaultSaramaSubscriberConfig(),
		ConsumerGroup:         consumerGroup,
	}, wmLogger)
	if err != nil {
		publisher.Close()
		return nil, fmt.Errorf("failed to create kafka subscriber: %w", err)
	}

	return &Bus{publisher: publisher, subscriber: subscriber, prefix: cfg.TopicPrefix, logger: wmLogger}, nil
}

// Topic applies the configured prefix to name.
func (b *Bus) Topic(name string) string {
	return b.prefix + name
}

func (b *Bus) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("topic", topic)
	msg.SetContext(context.WithoutCancel(ctx))
	return b.publisher.Publish(b.Topic(topic), msg)
}

// NewRouter builds a router that logs through the bus logger.
func (b *Bus) NewRouter() (*message.Router, error) {
	return message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, b.logger)
}

// Handle registers fn for topic on router.
func (b *Bus) Handle(router *message.Router, name, topic string, fn message.NoPublishHandlerFunc) {
	router.AddNoPublisherHandler(name, b.Topic(topic), b.subscriber, fn)
}

func (b *Bus) Close() error {
	pubErr := b.publisher.Close()
	if !b.shared {
		if err := b.subscriber.Close(); err != nil {
			return err
		}
	}
	return pubErr
}

// Decode unmarshals the payload of msg into T.
func Decode[T any](msg *message.Message) (T, error) {
	var v T
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("failed to decode event %s: %w", msg.UUID, err)
	}
	return v, nil
}
