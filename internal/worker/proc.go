package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"weather_gateway/internal/utils"
	"weather_gateway/internal/weather"

	"github.com/sirupsen/logrus"
)

// errMalformed marks payloads that can never succeed and must not be retried.
var errMalformed = errors.New("malformed weather query event")

func decodeEvent(body []byte) (*weather.QueryEvent, error) {
	var event weather.QueryEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	event.City = strings.TrimSpace(event.City)
	if event.City == "" {
		return nil, fmt.Errorf("%w: empty city", errMalformed)
	}
	if event.QueriedAt.IsZero() {
		return nil, fmt.Errorf("%w: missing queried_at", errMalformed)
	}
	return &event, nil
}

// persistEvent stores one event as a weather log row inside a transaction.
func (w *Worker) persistEvent(ctx context.Context, event *weather.QueryEvent, workerID int) error {
	return utils.WithTransaction(ctx, w.db, func(tx *sql.Tx) error {
		log := weather.LogFromEvent(*event)
		if err := weather.NewLogRepository(tx).Create(ctx, log); err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"worker": workerID,
			"log_id": log.ID,
			"city":   log.City,
		}).Info("Weather query logged")
		return nil
	})
}
