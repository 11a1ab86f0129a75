package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripboard/internal/app/models"
)

func TestHTTPProvider_ExchangeCode(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/auth/v1/token", r.URL.Path)
			assert.Equal(t, "pkce", r.URL.Query().Get("grant_type"))
			assert.Equal(t, "anon", r.Header.Get("apikey"))

			var body exchangeRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, exchangeRequest{AuthCode: "code-1", CodeVerifier: "verifier-1"}, body)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt","token_type":"bearer","expires_in":3600}`))
		}))
		defer server.Close()

		p := NewHTTPProvider(server.URL+"/", "anon", time.Second, zap.NewNop())
		session, err := p.ExchangeCode(context.Background(), "code-1", "verifier-1")
		require.NoError(t, err)
		assert.Equal(t, &Session{AccessToken: "at", RefreshToken: "rt", TokenType: "bearer", ExpiresIn: 3600}, session)
	})

	t.Run("provider error message is kept", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid auth code"}`))
		}))
		defer server.Close()

		p := NewHTTPProvider(server.URL, "anon", time.Second, zap.NewNop())
		_, err := p.ExchangeCode(context.Background(), "bad", "")
		var providerErr *ProviderError
		require.True(t, errors.As(err, &providerErr))
		assert.Equal(t, http.StatusBadRequest, providerErr.Status)
		assert.Equal(t, "Invalid auth code", providerErr.Message)
		assert.ErrorIs(t, err, models.ErrUpstream)
	})

	t.Run("empty error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		p := NewHTTPProvider(server.URL, "anon", time.Second, zap.NewNop())
		_, err := p.ExchangeCode(context.Background(), "code", "")
		require.Error(t, err)
		assert.Equal(t, "Code exchange failed (503)", err.Error())
	})

	t.Run("not configured", func(t *testing.T) {
		p := NewHTTPProvider("", "", time.Second, zap.NewNop())
		_, err := p.ExchangeCode(context.Background(), "code", "")
		require.Error(t, err)
		assert.Equal(t, "Auth provider not configured", err.Error())
	})
}

func TestHTTPProvider_SignOut(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/logout", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	p := NewHTTPProvider(server.URL, "anon", time.Second, zap.NewNop())
	require.NoError(t, p.SignOut(context.Background(), "at"))
	assert.Equal(t, "Bearer at", gotAuth)

	assert.NoError(t, p.SignOut(context.Background(), ""))
}

func TestHTTPProvider_AuthorizeURL(t *testing.T) {
	p := NewHTTPProvider("https://auth.test/", "anon", time.Second, zap.NewNop())
	target, err := p.AuthorizeURL("google", "http://localhost:8091/auth/callback", "chal")
	require.NoError(t, err)

	u, err := url.Parse(target)
	require.NoError(t, err)
	assert.Equal(t, "auth.test", u.Host)
	assert.Equal(t, "/auth/v1/authorize", u.Path)
	assert.Equal(t, "google", u.Query().Get("provider"))
	assert.Equal(t, "http://localhost:8091/auth/callback", u.Query().Get("redirect_to"))
	assert.Equal(t, "chal", u.Query().Get("code_challenge"))
	assert.Equal(t, "s256", u.Query().Get("code_challenge_method"))

	_, err = NewHTTPProvider("", "", time.Second, zap.NewNop()).AuthorizeURL("google", "x", "y")
	assert.ErrorIs(t, err, models.ErrUpstream)
}
