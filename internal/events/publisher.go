package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EventPublisher defines the interface for publishing calculation events
type EventPublisher interface {
	Publish(ctx context.Context, event *CalculationEvent) error
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Watermill with Kafka
type KafkaEventPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
	topicName string
}

// PublisherConfig holds configuration for the event publisher
type PublisherConfig struct {
	KafkaBrokers []string
	TopicName    string
	Logger       *slog.Logger
}

// NewKafkaEventPublisher creates a new Kafka-based event publisher using Watermill
func NewKafkaEventPublisher(config PublisherConfig) (*KafkaEventPublisher, error) {
	logger := watermill.NewSlogLogger(config.Logger)

	// Create Kafka publisher configuration
	publisherConfig := kafka.PublisherConfig{
		Brokers:   config.KafkaBrokers,
		Marshaler: kafka.DefaultMarshaler{},
	}

	// Create the publisher
	publisher, err := kafka.NewPublisher(publisherConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}

	return &KafkaEventPublisher{
		publisher: publisher,
		logger:    config.Logger,
		topicName: config.TopicName,
	}, nil
}

// Publish publishes an event to Kafka
func (p *KafkaEventPublisher) Publish(ctx context.Context, event *CalculationEvent) error {
	// Marshal the event to JSON
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal calculation event: %w", err)
	}

	// Create Watermill message carrying the request context
	msg := message.NewMessage(event.ID, eventBytes)
	msg.SetContext(ctx)

	// Add metadata headers
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("source", event.Source)
	msg.Metadata.Set("version", event.Version)
	msg.Metadata.Set("timestamp", event.Timestamp.Format(time.RFC3339))

	// Publish the message
	if err := p.publisher.Publish(p.topicName, msg); err != nil {
		p.logger.Error("Failed to publish calculation event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
		return fmt.Errorf("failed to publish calculation event: %w", err)
	}

	p.logger.Debug("Published calculation event",
		"event_id", event.ID,
		"event_type", event.Type,
		"topic", p.topicName)

	return nil
}

// Close closes the publisher and releases resources
func (p *KafkaEventPublisher) Close() error {
	return p.publisher.Close()
}

// mockEventHistory bounds the events a mock publisher retains; older events are dropped.
const mockEventHistory = 1000

// MockEventPublisher keeps the most recent published events in memory
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []CalculationEvent
	Logger *slog.Logger
}

// NewMockEventPublisher creates a new mock event publisher
func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{
		Events: make([]CalculationEvent, 0),
		Logger: logger,
	}
}

// Publish stores the event in memory
func (m *MockEventPublisher) Publish(ctx context.Context, event *CalculationEvent) error {
	m.mu.Lock()
	m.Events = append(m.Events, *event)
	if len(m.Events) > mockEventHistory {
		m.Events = append(m.Events[:0:0], m.Events[len(m.Events)-mockEventHistory:]...)
	}
	m.mu.Unlock()
	m.Logger.Debug("Mock: Published calculation event",
		"event_id", event.ID,
		"event_type", event.Type)
	return nil
}

// Close is a no-op for the mock publisher
func (m *MockEventPublisher) Close() error {
	return nil
}

// GetPublishedEvents returns a copy of all published events
func (m *MockEventPublisher) GetPublishedEvents() []CalculationEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CalculationEvent(nil), m.Events...)
}

// ClearEvents clears all published events
func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	m.Events = make([]CalculationEvent, 0)
	m.mu.Unlock()
}
