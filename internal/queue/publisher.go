package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"weather_gateway/internal/observability"
	"weather_gateway/internal/weather"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// Channel is the subset of *amqp.Channel used for publishing.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher sends weather query events to the log queue, where the worker
// persists them. It implements weather.QueryRecorder.
type Publisher struct {
	mu      sync.Mutex // an amqp channel must not be used for concurrent publishes
	ch      Channel
	queue   string
	metrics *observability.Metrics
}

func NewPublisher(ch Channel, queueName string, metrics *observability.Metrics) *Publisher {
	if queueName == "" {
		queueName = DefaultQueue
	}
	return &Publisher{
		ch:      ch,
		queue:   queueName,
		metrics: metrics,
	}
}

func (p *Publisher) Record(ctx context.Context, event weather.QueryEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode query event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	err = p.ch.PublishWithContext(
		ctx,
		"",      // exchange
		p.queue, // routing key (queue name)
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.QueriedAt,
			Body:         body,
		},
	)
	p.mu.Unlock()
	if err != nil {
		p.metrics.MessageFailed(p.queue, "publish_error")
		return fmt.Errorf("publish query event: %w", err)
	}

	p.metrics.MessagePublished(p.queue)
	logrus.WithFields(logrus.Fields{
		"queue": p.queue,
		"city":  event.City,
	}).Debug("Weather query event published")

	return nil
}
