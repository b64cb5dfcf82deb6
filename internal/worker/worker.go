package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"weather_gateway/internal/observability"
	"weather_gateway/internal/queue"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	retryHeader = "x-retry-count"

	DefaultMaxRetries = 3
)

// Worker consumes weather query events and writes them to the log table.
type Worker struct {
	db         *sql.DB
	queue      string
	maxRetries int32
	metrics    *observability.Metrics
}

func NewWorker(db *sql.DB, queueName string, metrics *observability.Metrics) *Worker {
	if queueName == "" {
		queueName = queue.DefaultQueue
	}
	return &Worker{
		db:         db,
		queue:      queueName,
		maxRetries: DefaultMaxRetries,
		metrics:    metrics,
	}
}

func republishWithRetry(ch queue.Channel, msg *amqp.Delivery, retryCount int32) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Create new headers with incremented retry count
	headers := amqp.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[retryHeader] = retryCount

	return ch.PublishWithContext(
		ctx,
		"",             // exchange
		msg.RoutingKey, // routing key (queue name)
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  msg.ContentType,
			DeliveryMode: amqp.Persistent,
			Body:         msg.Body,
			Headers:      headers,
		},
	)
}

func retryCountOf(headers amqp.Table) int32 {
	switch v := headers[retryHeader].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	case int:
		return int32(v)
	case int16:
		return int32(v)
	case int8:
		return int32(v)
	default:
		return 0
	}
}

// Run consumes from the queue until ctx is cancelled or the channel closes.
func (w *Worker) Run(ctx context.Context, conn *amqp.Connection, id int) error {
	ch, err := queue.CreateChannel(conn)
	if err != nil {
		return fmt.Errorf("worker %d: %w", id, err)
	}
	defer ch.Close()

	if _, err := queue.DeclareQueue(ch, w.queue); err != nil {
		return fmt.Errorf("worker %d: %w", id, err)
	}

	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("worker %d failed to set QoS: %w", id, err)
	}

	msgs, err := ch.Consume(
		w.queue,
		fmt.Sprintf("weather-worker-%d", id),
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("worker %d failed to start consuming messages: %w", id, err)
	}

	logrus.Infof("Worker %d started", id)

	for {
		select {
		case <-ctx.Done():
			logrus.Infof("Worker %d stopping", id)
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("worker %d: delivery channel closed", id)
			}
			w.handleDelivery(ctx, ch, msg, id)
		}
	}
}

// handleDelivery persists one message and settles it. Malformed payloads are
// dropped. Store failures are republished with an incremented retry header
// until maxRetries is reached.
func (w *Worker) handleDelivery(ctx context.Context, ch queue.Channel, msg amqp.Delivery, id int) {
	w.metrics.MessageConsumed(w.queue)

	event, err := decodeEvent(msg.Body)
	if err != nil {
		logrus.WithError(err).Error("invalid payload")
		w.metrics.MessageFailed(w.queue, "decode_error")
		msg.Nack(false, false)
		return
	}

	retryCount := retryCountOf(msg.Headers)

	logrus.Debugf("Worker %d processing query for city=%s (retry: %d)", id, event.City, retryCount)

	err = w.persistEvent(ctx, event, id)
	if err == nil {
		msg.Ack(false)
		return
	}

	logrus.WithError(err).Error("Failed to persist weather query")
	if errors.Is(err, context.Canceled) {
		// shutting down; leave it for the next consumer
		msg.Nack(false, true)
		return
	}

	if retryCount >= w.maxRetries {
		w.metrics.MessageFailed(w.queue, "max_retries")
		msg.Nack(false, false)
		return
	}

	logrus.Infof("Worker %d: requeuing weather query (retry %d/%d)", id, retryCount+1, w.maxRetries)

	if err := republishWithRetry(ch, &msg, retryCount+1); err != nil {
		logrus.WithError(err).Error("Failed to republish message")
		w.metrics.MessageFailed(w.queue, "republish_error")
		msg.Nack(false, false)
		return
	}

	// Track republishing
	w.metrics.MessagePublished(w.queue)
	msg.Ack(false)
}
