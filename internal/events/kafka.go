package events

import (
	"context"
	"fmt"
	"time"

	"cleanroom/pkg/kafka"
	"cleanroom/pkg/middleware"
)

// MessagePublisher is satisfied by *kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaPublisher struct {
	producer MessagePublisher
	timeout  time.Duration
}

// NewKafkaPublisher bounds each publish by timeout so a slow broker cannot
// hold up the request that committed the transition.
func NewKafkaPublisher(producer MessagePublisher, timeout time.Duration) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, timeout: timeout}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	msg, err := kafka.NewMessage().
		WithKey(e.DocID).
		WithValue(e).
		WithTimestamp(e.OccurredAt).
		WithEventID("").
		WithEventType(e.Type()).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		Build()
	if err != nil {
		return fmt.Errorf("build %s event: %w", e.Type(), err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", e.Type(), err)
	}
	return nil
}
