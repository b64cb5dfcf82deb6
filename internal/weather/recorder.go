package weather

import (
	"context"
)

// QueryRecorder persists or forwards weather query events.
type QueryRecorder interface {
	Record(ctx context.Context, event QueryEvent) error
}

// RepositoryRecorder writes each event straight to the log table.
type RepositoryRecorder struct {
	logs LogRepositoryInterface
}

func NewRepositoryRecorder(logs LogRepositoryInterface) *RepositoryRecorder {
	return &RepositoryRecorder{logs: logs}
}

func (r *RepositoryRecorder) Record(ctx context.Context, event QueryEvent) error {
	return r.logs.Create(ctx, LogFromEvent(event))
}

// LogFromEvent converts a query event into the log row it is stored as.
func LogFromEvent(event QueryEvent) *WeatherLog {
	return &WeatherLog{
		City:        event.City,
		Temperature: event.Temperature,
		Timestamp:   event.QueriedAt,
	}
}
