package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventPublisher writes order events to a Kafka topic, keyed so one order's
// events stay on one partition.
type EventPublisher struct {
	w messageWriter
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(csv string) []string {
	var out []string
	for _, b := range strings.Split(csv, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func NewEventPublisher(brokers []string, topic string) *EventPublisher {
	return &EventPublisher{w: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 5 * time.Second,
		// Send blocks the calling request until its batch is flushed.
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
	}}
}

type envelope struct {
	Kind       Kind      `json:"kind"`
	Key        string    `json:"key"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (p *EventPublisher) Name() string { return "events" }

func (p *EventPublisher) Send(ctx context.Context, m Message) error {
	if m.Event == nil {
		return ErrSkipped
	}
	data, err := json.Marshal(envelope{Kind: m.Kind, Key: m.Key, Payload: m.Event, OccurredAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("notify: encode event: %w", err)
	}
	if err := p.w.WriteMessages(ctx, kafka.Message{Key: []byte(m.Key), Value: data, Time: time.Now().UTC()}); err != nil {
		return fmt.Errorf("notify: publish event: %w", err)
	}
	return nil
}

func (p *EventPublisher) Close() error { return p.w.Close() }
