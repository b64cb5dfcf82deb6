package user

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepository(t *testing.T) (UserRepositoryInterface, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepository(db), mock
}

func TestUserRepository_Create(t *testing.T) {
	repo, mock := newMockRepository(t)
	createdAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	u := &User{ID: uuid.New(), Username: "alice", PasswordHash: "hash"}

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(u.ID, "alice", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	err := repo.Create(context.Background(), u)

	require.NoError(t, err)
	assert.Equal(t, createdAt, u.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_UniqueViolation(t *testing.T) {
	repo, mock := newMockRepository(t)
	u := &User{ID: uuid.New(), Username: "alice", PasswordHash: "hash"}

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	err := repo.Create(context.Background(), u)

	assert.ErrorIs(t, err, ErrDuplicateUsername)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_OtherError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("INSERT INTO users").WillReturnError(errors.New("connection reset"))

	err := repo.Create(context.Background(), &User{ID: uuid.New(), Username: "a"})

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateUsername)
}

func TestUserRepository_GetByUsername(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()
	createdAt := time.Now().UTC()

	mock.ExpectQuery("SELECT id, username, password_hash, created_at FROM users WHERE username").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
			AddRow(id.String(), "alice", "hash", createdAt))

	u, err := repo.GetByUsername(context.Background(), "alice")

	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "hash", u.PasswordHash)
}

func TestUserRepository_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("FROM users WHERE username").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("FROM users WHERE id").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
