package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
	"github.com/piyapromdee/leaniverse-crm/internal/infra/observability"
)

const storeTimeout = 10 * time.Second

// Worker drains the activity queue into the activity store.
type Worker struct {
	Channel *amqp.Channel
	Repo    entity.ActivityRepositoryInterface
	Metrics *observability.Metrics
	Logger  *zap.Logger
}

func NewWorker(ch *amqp.Channel, repo entity.ActivityRepositoryInterface, metrics *observability.Metrics, logger *zap.Logger) *Worker {
	return &Worker{Channel: ch, Repo: repo, Metrics: metrics, Logger: logger}
}

// Start consumes until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.ConsumeWithContext(ctx,
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	w.Logger.Info("activity worker started", zap.String("queue", queueName))

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("activity worker stopping")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			w.handle(ctx, d)
		}
	}
}

// handle acks on success. A malformed body goes straight to the DLQ; a store
// failure is retried once and dead-lettered on redelivery.
func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var a entity.Activity
	if err := json.Unmarshal(d.Body, &a); err != nil || a.ID == "" {
		w.Logger.Error("malformed activity message", zap.String("message_id", d.MessageId), zap.Error(err))
		w.Metrics.RecordActivityEvent("malformed")
		_ = d.Nack(false, false)
		return
	}

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := w.Repo.Create(storeCtx, &a); err != nil {
		requeue := !d.Redelivered
		w.Logger.Warn("activity store failed",
			zap.String("activity_id", a.ID),
			zap.Bool("requeue", requeue),
			zap.Error(err),
		)
		w.Metrics.RecordActivityEvent("failed")
		_ = d.Nack(false, requeue)
		return
	}

	w.Metrics.RecordActivityEvent("stored")
	_ = d.Ack(false)
}
