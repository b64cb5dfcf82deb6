package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"weather_gateway/internal/auth"
	"weather_gateway/internal/observability"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// dummyPassword is hashed once so that logins for unknown usernames still pay
// for a full bcrypt comparison.
const dummyPassword = "weather-gateway-timing-equalizer"

type UserService struct {
	repo      UserRepositoryInterface
	hasher    *auth.PasswordHasher
	tokens    *auth.TokenManager
	metrics   *observability.Metrics
	dummyHash string
}

type UserServiceInterface interface {
	Register(ctx context.Context, username, password string) (uuid.UUID, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	Login(ctx context.Context, username, password string) (*auth.Token, error)
}

func NewUserService(repo UserRepositoryInterface, hasher *auth.PasswordHasher, tokens *auth.TokenManager, metrics *observability.Metrics) *UserService {
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		logrus.WithError(err).Warn("Failed to prepare dummy password hash")
	}

	return &UserService{
		repo:      repo,
		hasher:    hasher,
		tokens:    tokens,
		metrics:   metrics,
		dummyHash: dummyHash,
	}
}

// Register creates a new user with a salted password hash.
func (s *UserService) Register(ctx context.Context, username, password string) (uuid.UUID, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return uuid.Nil, ErrMissingFields
	}

	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		s.metrics.Registration("error")
		return uuid.Nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hashedPassword,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			s.metrics.Registration("duplicate")
			logrus.WithField("username", username).Info("Registration rejected: username taken")
		} else {
			s.metrics.Registration("error")
		}
		return uuid.Nil, err
	}

	s.metrics.Registration("success")
	return user.ID, nil
}

// FindByUsername returns the user or nil when no such user exists.
func (s *UserService) FindByUsername(ctx context.Context, username string) (*User, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves user by ID
func (s *UserService) GetUserByID(ctx context.Context, id string) (*User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return s.repo.GetByID(ctx, userID)
}

// Login validates credentials and issues a session token. An unknown username
// and a wrong password both return ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, username, password string) (*auth.Token, error) {
	user, err := s.FindByUsername(ctx, username)
	if err != nil {
		s.metrics.LoginAttempt("error")
		return nil, err
	}

	if user == nil {
		_ = s.hasher.Compare(s.dummyHash, password)
		s.metrics.LoginAttempt("invalid_credentials")
		logrus.Info("Login failed")
		return nil, ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.metrics.LoginAttempt("invalid_credentials")
		logrus.Info("Login failed")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID.String())
	if err != nil {
		s.metrics.LoginAttempt("error")
		return nil, err
	}

	s.metrics.LoginAttempt("success")
	logrus.WithField("username", user.Username).Info("Login successful")
	return token, nil
}
