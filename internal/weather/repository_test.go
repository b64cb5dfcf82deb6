package weather

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepository(t *testing.T) (LogRepositoryInterface, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewLogRepository(db), mock
}

func TestLogRepository_Create(t *testing.T) {
	repo, mock := newMockRepository(t)
	ts := time.Date(2024, 2, 2, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO weather_logs").
		WithArgs("Tokyo", 11.2, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "timestamp"}).AddRow(int64(42), ts))

	log := &WeatherLog{City: "Tokyo", Temperature: 11.2}
	require.NoError(t, repo.Create(context.Background(), log))

	assert.Equal(t, int64(42), log.ID)
	assert.Equal(t, ts, log.Timestamp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogRepository_ListByCity(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT id, city, temperature, timestamp FROM weather_logs WHERE city").
		WithArgs("Tokyo").
		WillReturnRows(sqlmock.NewRows([]string{"id", "city", "temperature", "timestamp"}).
			AddRow(int64(2), "Tokyo", 12.0, now).
			AddRow(int64(1), "Tokyo", 10.5, now.Add(-time.Hour)))

	logs, err := repo.ListByCity(context.Background(), "Tokyo")

	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, int64(2), logs[0].ID)
	assert.Equal(t, 10.5, logs[1].Temperature)
}

func TestLogRepository_ListEmpty(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("FROM weather_logs").
		WillReturnRows(sqlmock.NewRows([]string{"id", "city", "temperature", "timestamp"}))

	logs, err := repo.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, logs)
	assert.Empty(t, logs)
}

func TestLogRepository_UpdateTemperature(t *testing.T) {
	repo, mock := newMockRepository(t)
	now := time.Now().UTC()

	mock.ExpectQuery("UPDATE weather_logs").
		WithArgs(20.0, int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "city", "temperature", "timestamp"}).
			AddRow(int64(3), "Lima", 20.0, now))
	mock.ExpectQuery("UPDATE weather_logs").
		WithArgs(1.0, int64(99)).
		WillReturnError(sql.ErrNoRows)

	log, err := repo.UpdateTemperature(context.Background(), 3, 20)
	require.NoError(t, err)
	assert.Equal(t, "Lima", log.City)

	_, err = repo.UpdateTemperature(context.Background(), 99, 1)
	assert.ErrorIs(t, err, ErrLogNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogRepository_Delete(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec("DELETE FROM weather_logs").WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM weather_logs").WithArgs(int64(6)).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), 5))
	assert.ErrorIs(t, repo.Delete(context.Background(), 6), ErrLogNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
