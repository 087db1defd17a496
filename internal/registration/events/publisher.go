// Package events publishes applicant lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"testadmin/internal/platform/kafka/producer"
	"testadmin/internal/registration/metrics"
	"testadmin/internal/registration/models"
	"testadmin/pkg/platform/circuit"
)

// ErrCircuitOpen is returned when an event is dropped because the broker
// has been failing.
var ErrCircuitOpen = errors.New("event publisher circuit open")

// Publisher delivers applicant events.
type Publisher interface {
	Publish(ctx context.Context, event models.Event) error
}

// Producer is the subset of the Kafka producer the publisher needs.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaPublisher writes events to a Kafka topic keyed by applicant ID. A
// circuit breaker sheds events while the broker is failing.
type KafkaPublisher struct {
	producer Producer
	topic    string
	breaker  *circuit.Breaker
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// Option configures a KafkaPublisher.
type Option func(*KafkaPublisher)

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(p *KafkaPublisher) {
		if b != nil {
			p.breaker = b
		}
	}
}

// WithMetrics enables event outcome metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *KafkaPublisher) {
		p.metrics = m
	}
}

// NewKafka creates a publisher for topic.
func NewKafka(p Producer, topic string, logger *slog.Logger, opts ...Option) *KafkaPublisher {
	pub := &KafkaPublisher{
		producer: p,
		topic:    topic,
		breaker:  circuit.New("applicant-events"),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(pub)
	}
	return pub
}

// Publish encodes event as JSON and produces it synchronously.
//
// Errors: ErrCircuitOpen when shedding; wrapped producer errors otherwise.
func (p *KafkaPublisher) Publish(ctx context.Context, event models.Event) error {
	if !p.breaker.Allow() {
		p.record(event.EventType, metrics.EventDropped)
		return ErrCircuitOpen
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := &producer.Message{
		Topic: p.topic,
		Key:   []byte(event.ApplicantID),
		Value: payload,
		Headers: map[string]string{
			"event_type": event.EventType,
			"event_id":   event.EventID,
		},
	}
	if event.RequestID != "" {
		msg.Headers["request_id"] = event.RequestID
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		if change := p.breaker.RecordFailure(); change.Opened {
			p.logger.WarnContext(ctx, "applicant event circuit opened",
				"breaker", p.breaker.Name(),
				"error", err,
			)
			p.setOpen(true)
		}
		p.record(event.EventType, metrics.EventFailed)
		return fmt.Errorf("publish %s: %w", event.EventType, err)
	}

	if change := p.breaker.RecordSuccess(); change.Closed {
		p.logger.InfoContext(ctx, "applicant event circuit closed", "breaker", p.breaker.Name())
		p.setOpen(false)
	}
	p.record(event.EventType, metrics.EventPublished)
	return nil
}

func (p *KafkaPublisher) record(eventType, outcome string) {
	if p.metrics != nil {
		p.metrics.RecordEvent(eventType, outcome)
	}
}

func (p *KafkaPublisher) setOpen(open bool) {
	if p.metrics != nil {
		p.metrics.SetBreakerOpen(open)
	}
}

// Noop discards events. Used when no broker is configured.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, models.Event) error { return nil }
