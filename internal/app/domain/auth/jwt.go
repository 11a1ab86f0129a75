package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripboard/internal/app/middleware"
	"github.com/FACorreiaa/go-tripboard/internal/app/models"
)

// Claims are the fields of a provider-issued access token the app reads.
// The subject is the user id.
type Claims struct {
	Email            string `json:"email,omitempty"`
	EmailConfirmedAt string `json:"email_confirmed_at,omitempty"`
	ConfirmedAt      string `json:"confirmed_at,omitempty"`
	jwt.RegisteredClaims
}

// Confirmed reports whether the provider has verified the user's email.
func (c *Claims) Confirmed() bool {
	return c.EmailConfirmedAt != "" || c.ConfirmedAt != ""
}

var _ middleware.SessionReader = (*SessionValidator)(nil)

// SessionValidator checks HS256 access tokens signed with the provider's
// shared secret.
type SessionValidator struct {
	secret     []byte
	cookieName string
	logger     *zap.Logger
}

func NewSessionValidator(secret, cookieName string, logger *zap.Logger) *SessionValidator {
	return &SessionValidator{secret: []byte(secret), cookieName: cookieName, logger: logger}
}

// TokenFromRequest reads the access token from the session cookie, falling
// back to an Authorization: Bearer header for API clients.
func (v *SessionValidator) TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(v.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// UserFromRequest returns nil, nil for anonymous requests and an
// ErrUnauthenticated error for tokens that fail validation.
func (v *SessionValidator) UserFromRequest(r *http.Request) (*models.User, error) {
	token := v.TokenFromRequest(r)
	if token == "" {
		return nil, nil
	}
	claims, err := v.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", models.ErrUnauthenticated)
	}
	return &models.User{ID: id, Email: claims.Email, EmailConfirmed: claims.Confirmed()}, nil
}

func (v *SessionValidator) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrUnauthenticated, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", models.ErrUnauthenticated)
	}
	return claims, nil
}

// SignToken issues a token the validator accepts. Used by tests and the
// token command.
func (v *SessionValidator) SignToken(userID uuid.UUID, email string, confirmed bool, ttl time.Duration) (string, error) {
	if len(v.secret) == 0 {
		return "", errors.New("no signing secret configured")
	}
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	if confirmed {
		claims.EmailConfirmedAt = now.UTC().Format(time.RFC3339)
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		v.logger.Error("Failed to sign token", zap.Error(err))
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
