package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/community-events/internal/domain"
	"github.com/prohmpiriya/community-events/pkg/kafka"
)

// EventPublisher defines the interface for publishing participation events
type EventPublisher interface {
	// PublishParticipationCreated publishes a participation created event
	PublishParticipationCreated(ctx context.Context, p *domain.Participation) error

	// PublishParticipationCancelled publishes a participation cancelled event
	PublishParticipationCancelled(ctx context.Context, p *domain.Participation) error

	// Close closes the event publisher
	Close() error
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer    messageProducer
	topic       string
	serviceName string
}

// messageProducer is the part of kafka.Producer the publisher needs
type messageProducer interface {
	Produce(ctx context.Context, msg *kafka.Message) error
	Close()
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "community-events-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return newKafkaEventPublisher(producer, cfg.Topic, cfg.ServiceName), nil
}

func newKafkaEventPublisher(producer messageProducer, topic, serviceName string) *KafkaEventPublisher {
	if topic == "" {
		topic = "participation-events"
	}
	if serviceName == "" {
		serviceName = "community-events"
	}
	return &KafkaEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}
}

// PublishParticipationCreated publishes a participation created event
func (p *KafkaEventPublisher) PublishParticipationCreated(ctx context.Context, participation *domain.Participation) error {
	return p.publishEvent(ctx, domain.ParticipationEventCreated, participation)
}

// PublishParticipationCancelled publishes a participation cancelled event
func (p *KafkaEventPublisher) PublishParticipationCancelled(ctx context.Context, participation *domain.Participation) error {
	return p.publishEvent(ctx, domain.ParticipationEventCancelled, participation)
}

// Close closes the event publisher
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

func (p *KafkaEventPublisher) publishEvent(ctx context.Context, eventType domain.ParticipationEventType, participation *domain.Participation) error {
	messageID := uuid.New().String()
	now := time.Now().UTC()
	event := domain.NewParticipationEvent(eventType, participation, messageID, now)

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.Key()),
		Value: value,
		Headers: map[string]string{
			"event_type":   string(eventType),
			"event_id":     messageID,
			"source":       p.serviceName,
			"content_type": "application/json",
		},
		Timestamp: now,
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}

// NoOpEventPublisher is a no-op implementation of EventPublisher, used when
// Kafka is disabled
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// PublishParticipationCreated is a no-op
func (p *NoOpEventPublisher) PublishParticipationCreated(ctx context.Context, participation *domain.Participation) error {
	return nil
}

// PublishParticipationCancelled is a no-op
func (p *NoOpEventPublisher) PublishParticipationCancelled(ctx context.Context, participation *domain.Participation) error {
	return nil
}

// Close is a no-op
func (p *NoOpEventPublisher) Close() error {
	return nil
}
