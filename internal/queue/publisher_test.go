package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"weather_gateway/internal/observability"
	"weather_gateway/internal/weather"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	err       error
	key       string
	published []amqp.Publishing
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.key = key
	f.published = append(f.published, msg)
	return nil
}

func TestPublisher_Record(t *testing.T) {
	ch := &fakeChannel{}
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	publisher := NewPublisher(ch, "", metrics)
	event := weather.QueryEvent{City: "Astana", Temperature: -12.5, QueriedAt: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)}

	require.NoError(t, publisher.Record(context.Background(), event))

	require.Len(t, ch.published, 1)
	assert.Equal(t, DefaultQueue, ch.key)
	assert.Equal(t, "application/json", ch.published[0].ContentType)
	assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)

	var decoded weather.QueryEvent
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &decoded))
	assert.Equal(t, "Astana", decoded.City)
	assert.Equal(t, -12.5, decoded.Temperature)
	assert.True(t, event.QueriedAt.Equal(decoded.QueriedAt))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.QueueMessagesPublished.WithLabelValues(DefaultQueue)))
}

func TestPublisher_RecordFailure(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	publisher := NewPublisher(ch, "custom_queue", metrics)

	err := publisher.Record(context.Background(), weather.QueryEvent{City: "X"})

	assert.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.QueueMessagesFailed.WithLabelValues("custom_queue", "publish_error")))
}

func TestPublisher_IsQueryRecorder(t *testing.T) {
	var _ weather.QueryRecorder = NewPublisher(&fakeChannel{}, "", nil)
}
