package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripboard/internal/app/models"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

type stubSessions struct {
	user *models.User
	err  error
}

func (s stubSessions) UserFromRequest(*http.Request) (*models.User, error) {
	return s.user, s.err
}

func newProtectedRouter(sessions SessionReader) *gin.Engine {
	r := gin.New()
	r.Use(Session(sessions, zap.NewNop()), Protect())
	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/", ok)
	r.GET("/my-itineraries", ok)
	r.GET("/country/:iso2", ok)
	r.GET("/search-page", ok)
	r.GET("/verify-email", ok)
	r.GET("/api/search", ok)
	r.POST("/api/itineraries", ok)
	r.DELETE("/api/items/:itemID", ok)
	return r
}

func do(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestProtect(t *testing.T) {
	confirmed := &models.User{ID: uuid.New(), Email: "a@b.c", EmailConfirmed: true}
	unconfirmed := &models.User{ID: uuid.New(), Email: "a@b.c"}

	tests := []struct {
		name       string
		user       *models.User
		method     string
		path       string
		wantStatus int
		wantLoc    string
		wantBody   string
	}{
		{"anonymous api", nil, http.MethodPost, "/api/itineraries", http.StatusUnauthorized, "", `{"error":"Unauthorized"}`},
		{"anonymous item delete", nil, http.MethodDelete, "/api/items/x", http.StatusUnauthorized, "", `{"error":"Unauthorized"}`},
		{"anonymous page", nil, http.MethodGet, "/country/FR", http.StatusFound, "/?auth=required", ""},
		{"anonymous landing", nil, http.MethodGet, "/", http.StatusOK, "", "ok"},
		{"anonymous verify page", nil, http.MethodGet, "/verify-email", http.StatusOK, "", "ok"},
		{"unconfirmed api", unconfirmed, http.MethodGet, "/api/search", http.StatusForbidden, "", `{"error":"Email not confirmed"}`},
		{"unconfirmed page", unconfirmed, http.MethodGet, "/search-page", http.StatusFound, "/verify-email", ""},
		{"confirmed page", confirmed, http.MethodGet, "/my-itineraries", http.StatusOK, "", "ok"},
		{"confirmed api", confirmed, http.MethodGet, "/api/search", http.StatusOK, "", "ok"},
		{"signed in landing", confirmed, http.MethodGet, "/", http.StatusFound, "/my-itineraries", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(newProtectedRouter(stubSessions{user: tt.user}), tt.method, tt.path)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantLoc != "" {
				assert.Equal(t, tt.wantLoc, w.Header().Get("Location"))
			}
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestSession_InvalidTokenIsAnonymous(t *testing.T) {
	r := newProtectedRouter(stubSessions{err: errors.New("token is expired")})
	w := do(r, http.MethodGet, "/api/search")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIsProtected(t *testing.T) {
	assert.True(t, isProtected("/country"))
	assert.True(t, isProtected("/country/JP"))
	assert.False(t, isProtected("/countryside"))
	assert.False(t, isProtected("/auth/callback"))
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware("https://trips.example"))
	r.POST("/api/itineraries", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := do(r, http.MethodOptions, "/api/itineraries")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://trips.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestSecurityMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(SecurityMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodGet, "/")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'self'")
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(zap.NewNop(), 1, 2, time.Minute)
	defer rl.Stop()

	r := gin.New()
	r.GET("/api/search", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/search").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/search").Code)

	w := do(r, http.MethodGet, "/api/search")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	assert.True(t, rl.Allow("other-client"))
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	rl := NewRateLimiter(zap.NewNop(), 1, 1, time.Minute)
	defer rl.Stop()

	require.True(t, rl.Allow("10.0.0.1"))
	rl.evictIdle(time.Now().Add(2 * time.Minute))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Empty(t, rl.clients)
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(zap.NewNop(), 1, 1, 0)
	rl.Stop()
	rl.Stop()
}

func TestObservabilityMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(ObservabilityMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	assert.Equal(t, http.StatusTeapot, do(r, http.MethodGet, "/ping").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/nope").Code)
}
