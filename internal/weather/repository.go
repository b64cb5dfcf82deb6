package weather

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"weather_gateway/internal/utils"

	"github.com/sirupsen/logrus"
)

type LogRepository struct {
	db utils.DBTX
}

type LogRepositoryInterface interface {
	Create(ctx context.Context, log *WeatherLog) error
	List(ctx context.Context) ([]*WeatherLog, error)
	ListByCity(ctx context.Context, city string) ([]*WeatherLog, error)
	UpdateTemperature(ctx context.Context, id int64, temperature float64) (*WeatherLog, error)
	Delete(ctx context.Context, id int64) error
}

func NewLogRepository(db utils.DBTX) LogRepositoryInterface {
	return &LogRepository{db: db}
}

// Create inserts a weather log. A zero Timestamp is set by the database.
func (r *LogRepository) Create(ctx context.Context, log *WeatherLog) error {
	query := `
		INSERT INTO weather_logs (city, temperature, timestamp)
		VALUES ($1, $2, COALESCE($3, NOW()))
		RETURNING id, timestamp
	`

	var ts sql.NullTime
	if !log.Timestamp.IsZero() {
		ts = sql.NullTime{Time: log.Timestamp, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query, log.City, log.Temperature, ts).Scan(&log.ID, &log.Timestamp)
	if err != nil {
		logrus.WithError(err).WithField("city", log.City).Error("Failed to create weather log")
		return fmt.Errorf("insert weather log: %w", err)
	}

	return nil
}

// List returns all logs, newest first
func (r *LogRepository) List(ctx context.Context) ([]*WeatherLog, error) {
	query := `
		SELECT id, city, temperature, timestamp
		FROM weather_logs
		ORDER BY timestamp DESC, id DESC
	`
	return r.query(ctx, query)
}

// ListByCity returns the logs for one city, newest first
func (r *LogRepository) ListByCity(ctx context.Context, city string) ([]*WeatherLog, error) {
	query := `
		SELECT id, city, temperature, timestamp
		FROM weather_logs
		WHERE city = $1
		ORDER BY timestamp DESC, id DESC
	`
	return r.query(ctx, query, city)
}

func (r *LogRepository) query(ctx context.Context, query string, args ...interface{}) ([]*WeatherLog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logrus.WithError(err).Error("Failed to query weather logs")
		return nil, fmt.Errorf("select weather logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*WeatherLog, 0)
	for rows.Next() {
		log := &WeatherLog{}
		if err := rows.Scan(&log.ID, &log.City, &log.Temperature, &log.Timestamp); err != nil {
			return nil, fmt.Errorf("scan weather log: %w", err)
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate weather logs: %w", err)
	}

	return logs, nil
}

// UpdateTemperature sets the temperature of a log and returns the updated row
func (r *LogRepository) UpdateTemperature(ctx context.Context, id int64, temperature float64) (*WeatherLog, error) {
	query := `
		UPDATE weather_logs
		SET temperature = $1
		WHERE id = $2
		RETURNING id, city, temperature, timestamp
	`

	log := &WeatherLog{}
	err := r.db.QueryRowContext(ctx, query, temperature, id).Scan(
		&log.ID,
		&log.City,
		&log.Temperature,
		&log.Timestamp,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLogNotFound
		}
		logrus.WithError(err).WithField("log_id", id).Error("Failed to update weather log")
		return nil, fmt.Errorf("update weather log: %w", err)
	}

	return log, nil
}

// Delete removes a log by ID
func (r *LogRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM weather_logs WHERE id = $1`, id)
	if err != nil {
		logrus.WithError(err).WithField("log_id", id).Error("Failed to delete weather log")
		return fmt.Errorf("delete weather log: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete weather log: %w", err)
	}
	if affected == 0 {
		return ErrLogNotFound
	}

	return nil
}
