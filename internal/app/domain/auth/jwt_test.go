package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripboard/internal/app/models"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func newTestValidator() *SessionValidator {
	return NewSessionValidator(testSecret, "access_token", zap.NewNop())
}

func TestSessionValidator_UserFromRequest(t *testing.T) {
	v := newTestValidator()
	userID := uuid.New()

	t.Run("anonymous", func(t *testing.T) {
		user, err := v.UserFromRequest(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("cookie", func(t *testing.T) {
		token, err := v.SignToken(userID, "a@b.c", true, time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})

		user, err := v.UserFromRequest(req)
		require.NoError(t, err)
		assert.Equal(t, &models.User{ID: userID, Email: "a@b.c", EmailConfirmed: true}, user)
	})

	t.Run("bearer header", func(t *testing.T) {
		token, err := v.SignToken(userID, "a@b.c", false, time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		user, err := v.UserFromRequest(req)
		require.NoError(t, err)
		assert.False(t, user.EmailConfirmed)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := v.SignToken(userID, "a@b.c", true, -time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		user, err := v.UserFromRequest(req)
		assert.Nil(t, user)
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewSessionValidator("another-secret-another-secret-another", "access_token", zap.NewNop())
		token, err := other.SignToken(userID, "a@b.c", true, time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		_, err = v.UserFromRequest(req)
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})

	t.Run("subject must be a uuid", func(t *testing.T) {
		claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "service_role",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		_, err = v.UserFromRequest(req)
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})

	t.Run("token without expiry", func(t *testing.T) {
		claims := Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		_, err = v.UserFromRequest(req)
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})
}

func TestClaims_Confirmed(t *testing.T) {
	assert.False(t, (&Claims{}).Confirmed())
	assert.True(t, (&Claims{EmailConfirmedAt: "2025-01-01T00:00:00Z"}).Confirmed())
	assert.True(t, (&Claims{ConfirmedAt: "2025-01-01T00:00:00Z"}).Confirmed())
}

func TestSessionValidator_CookieWinsOverHeader(t *testing.T) {
	v := newTestValidator()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "from-cookie"})
	req.Header.Set("Authorization", "Bearer from-header")

	assert.Equal(t, "from-cookie", v.TokenFromRequest(req))
}
