package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
)

// Publisher is the part of *amqp.Channel the producer needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// ActivitySink persists an activity synchronously.
type ActivitySink interface {
	Log(ctx context.Context, a *entity.Activity) error
}

// ActivityProducer publishes activity records for the worker to persist.
// When publishing fails and a Fallback is set, the record is written through
// the fallback instead.
type ActivityProducer struct {
	Ch       Publisher
	Fallback ActivitySink
	Logger   *zap.Logger

	mu sync.Mutex
}

func NewActivityProducer(ch Publisher, fallback ActivitySink, logger *zap.Logger) *ActivityProducer {
	return &ActivityProducer{Ch: ch, Fallback: fallback, Logger: logger}
}

func (p *ActivityProducer) Log(ctx context.Context, a *entity.Activity) error {
	err := p.publish(ctx, a)
	if err == nil {
		return nil
	}
	if p.Fallback == nil {
		return err
	}

	p.Logger.Warn("activity publish failed, writing synchronously",
		zap.String("activity_id", a.ID),
		zap.String("action", string(a.Action)),
		zap.Error(err),
	)
	return p.Fallback.Log(ctx, a)
}

func (p *ActivityProducer) publish(ctx context.Context, a *entity.Activity) error {
	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    a.ID,
			Type:         string(a.Action),
			Timestamp:    a.CreatedAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish activity: %w", err)
	}
	return nil
}
