package weather

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Provider is the live weather source.
type Provider interface {
	CurrentWeather(ctx context.Context, city string) (*Current, error)
	AirQuality(ctx context.Context, lat, lon float64) (json.RawMessage, error)
}

type WeatherService struct {
	provider Provider
	logs     LogRepositoryInterface
	recorder QueryRecorder
	now      func() time.Time
}

type WeatherServiceInterface interface {
	Current(ctx context.Context, city string) (json.RawMessage, error)
	AirQuality(ctx context.Context, lat, lon float64) (json.RawMessage, error)
	CreateLog(ctx context.Context, city string, temperature float64) (*WeatherLog, error)
	ListLogs(ctx context.Context) ([]*WeatherLog, error)
	LogsByCity(ctx context.Context, city string) ([]*WeatherLog, error)
	UpdateTemperature(ctx context.Context, id int64, temperature float64) (*WeatherLog, error)
	DeleteLog(ctx context.Context, id int64) error
}

// NewWeatherService builds the service. recorder may be nil, in which case
// live queries are not logged.
func NewWeatherService(provider Provider, logs LogRepositoryInterface, recorder QueryRecorder) *WeatherService {
	return &WeatherService{
		provider: provider,
		logs:     logs,
		recorder: recorder,
		now:      time.Now,
	}
}

// Current fetches live weather for city and records the query.
func (s *WeatherService) Current(ctx context.Context, city string) (json.RawMessage, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, ErrMissingCity
	}

	current, err := s.provider.CurrentWeather(ctx, city)
	if err != nil {
		logrus.WithError(err).WithField("city", city).Warn("Weather lookup failed")
		return nil, err
	}

	if s.recorder != nil {
		event := QueryEvent{
			City:        city,
			Temperature: current.Temperature,
			QueriedAt:   s.now().UTC(),
		}
		// the reading is already fetched, a client disconnect should not drop the log entry
		if err := s.recorder.Record(context.WithoutCancel(ctx), event); err != nil {
			logrus.WithError(err).WithField("city", city).Error("Failed to record weather query")
		}
	}

	return current.Raw, nil
}

// AirQuality validates the coordinate and fetches the pollution report.
func (s *WeatherService) AirQuality(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	if !validCoordinate(lat, 90) || !validCoordinate(lon, 180) {
		return nil, ErrInvalidCoordinates
	}

	report, err := s.provider.AirQuality(ctx, lat, lon)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"lat": lat,
			"lon": lon,
		}).Warn("Air quality lookup failed")
		return nil, err
	}

	return report, nil
}

func validCoordinate(v, limit float64) bool {
	return !math.IsNaN(v) && v >= -limit && v <= limit
}

// CreateLog stores a manually entered reading.
func (s *WeatherService) CreateLog(ctx context.Context, city string, temperature float64) (*WeatherLog, error) {
	city = strings.TrimSpace(city)
	if city == "" || math.IsNaN(temperature) || math.IsInf(temperature, 0) {
		return nil, ErrMissingLogFields
	}

	log := &WeatherLog{
		City:        city,
		Temperature: temperature,
	}
	if err := s.logs.Create(ctx, log); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"log_id": log.ID,
		"city":   log.City,
	}).Info("Weather log created")

	return log, nil
}

func (s *WeatherService) ListLogs(ctx context.Context) ([]*WeatherLog, error) {
	return s.logs.List(ctx)
}

// LogsByCity returns ErrNoLogsForCity when the city has no logs.
func (s *WeatherService) LogsByCity(ctx context.Context, city string) ([]*WeatherLog, error) {
	logs, err := s.logs.ListByCity(ctx, strings.TrimSpace(city))
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, ErrNoLogsForCity
	}
	return logs, nil
}

func (s *WeatherService) UpdateTemperature(ctx context.Context, id int64, temperature float64) (*WeatherLog, error) {
	if id <= 0 {
		return nil, ErrLogNotFound
	}
	if math.IsNaN(temperature) || math.IsInf(temperature, 0) {
		return nil, ErrMissingTemperature
	}
	return s.logs.UpdateTemperature(ctx, id, temperature)
}

func (s *WeatherService) DeleteLog(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrLogNotFound
	}
	if err := s.logs.Delete(ctx, id); err != nil {
		return err
	}

	logrus.WithField("log_id", id).Info("Weather log deleted")
	return nil
}
