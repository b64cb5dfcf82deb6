package auth

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-testing"

// fakeClock is a settable time source.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestManager(clock *fakeClock) *TokenManager {
	return NewTokenManager(testSecret, time.Hour, WithClock(clock.Now))
}

func TestIssue_VerifyRoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	manager := newTestManager(clock)

	token, err := manager.Issue("user-123")
	require.NoError(t, err)
	require.NotNil(t, token)

	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, int64(3600), token.ExpiresIn)
	assert.Equal(t, clock.now.Add(time.Hour), token.ExpiresAt)

	claims, err := manager.Verify(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.WithinDuration(t, clock.now, claims.IssuedAt.Time, 0)
	assert.WithinDuration(t, clock.now.Add(time.Hour), claims.ExpiresAt.Time, 0)
}

func TestIssue_EmptyUserID(t *testing.T) {
	manager := NewTokenManager(testSecret, time.Hour)

	token, err := manager.Issue("")

	assert.Error(t, err)
	assert.Nil(t, token)
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		wantErr error
	}{
		{name: "just issued", elapsed: 0},
		{name: "one second before expiry", elapsed: 3599 * time.Second},
		{name: "exactly at expiry", elapsed: 3600 * time.Second, wantErr: ErrExpiredToken},
		{name: "one second after expiry", elapsed: 3601 * time.Second, wantErr: ErrExpiredToken},
		{name: "a day later", elapsed: 24 * time.Hour, wantErr: ErrExpiredToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{now: issuedAt}
			manager := newTestManager(clock)

			token, err := manager.Issue("user-1")
			require.NoError(t, err)

			clock.Advance(tt.elapsed)
			claims, err := manager.Verify(token.AccessToken)

			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, "user-1", claims.UserID)
				return
			}
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVerify_InvalidSecret(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	token, err := newTestManager(clock).Issue("user-789")
	require.NoError(t, err)

	other := NewTokenManager("wrong-secret", time.Hour, WithClock(clock.Now))
	claims, err := other.Verify(token.AccessToken)

	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_TamperedPayload(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	manager := newTestManager(clock)

	token, err := manager.Issue("user-1")
	require.NoError(t, err)

	parts := strings.Split(token.AccessToken, ".")
	require.Len(t, parts, 3)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:           "admin",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour))},
	}).SignedString([]byte("attacker-secret"))
	require.NoError(t, err)
	forgedParts := strings.Split(forged, ".")

	// original signature over a forged payload
	tampered := parts[0] + "." + forgedParts[1] + "." + parts[2]
	claims, err := manager.Verify(tampered)

	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_MalformedToken(t *testing.T) {
	manager := NewTokenManager(testSecret, time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{name: "Empty token", token: ""},
		{name: "Random string", token: "not-a-valid-jwt-token"},
		{name: "Incomplete JWT", token: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := manager.Verify(tt.token)

			assert.Nil(t, claims)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	got, err := NewTokenManager(testSecret, time.Hour).Verify(unsigned)

	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RequiresExpiry(t *testing.T) {
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "user-1"}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	claims, err := NewTokenManager(testSecret, time.Hour).Verify(noExp)

	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RequiresUserID(t *testing.T) {
	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	claims, err := NewTokenManager(testSecret, time.Hour).Verify(noUser)

	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenManager_DefaultTTL(t *testing.T) {
	manager := NewTokenManager(testSecret, 0)

	token, err := manager.Issue("user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3600), token.ExpiresIn)
}

func TestGetUserIDFromContext_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(UserIDKey, "user-123")

	userID, err := GetUserIDFromContext(c)

	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestGetUserIDFromContext_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	userID, err := GetUserIDFromContext(c)

	assert.Error(t, err)
	assert.Empty(t, userID)
	assert.Contains(t, err.Error(), "user ID not found in context")
}

func TestGetUserIDFromContext_InvalidType(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(UserIDKey, 42)

	userID, err := GetUserIDFromContext(c)

	assert.Error(t, err)
	assert.Empty(t, userID)
	assert.Contains(t, err.Error(), "invalid user ID type")
}

// Benchmark token verification
func BenchmarkVerify(b *testing.B) {
	manager := NewTokenManager(testSecret, time.Hour)
	token, _ := manager.Issue("user-123")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		manager.Verify(token.AccessToken)
	}
}
