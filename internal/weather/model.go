package weather

import (
	"encoding/json"
	"time"
)

type WeatherLog struct {
	ID          int64     `json:"id"`
	City        string    `json:"city"`
	Temperature float64   `json:"temperature"`
	Timestamp   time.Time `json:"timestamp"`
}

// QueryEvent is emitted every time live weather is fetched for a city.
type QueryEvent struct {
	City        string    `json:"city"`
	Temperature float64   `json:"temperature"`
	QueriedAt   time.Time `json:"queried_at"`
}

// Current is a live weather reading. Raw is the provider payload as received.
type Current struct {
	Raw         json.RawMessage
	Temperature float64
}

type CreateLogRequest struct {
	City        string   `json:"city" binding:"required,max=100"`
	Temperature *float64 `json:"temperature" binding:"required"`
}

type UpdateLogRequest struct {
	Temperature *float64 `json:"temperature" binding:"required"`
}
