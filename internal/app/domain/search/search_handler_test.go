package search

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripboard/internal/app/handlers"
	"github.com/FACorreiaa/go-tripboard/internal/app/models"
)

// fakeGeoapify serves canned geocode and places responses and counts calls.
type fakeGeoapify struct {
	geocodeStatus int
	geocodeBody   string
	places        map[string]string // categories -> body
	placesStatus  int

	geocodeCalls atomic.Int32
	placesCalls  atomic.Int32
}

func (f *fakeGeoapify) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/v1/geocode/search":
		f.geocodeCalls.Add(1)
		if f.geocodeStatus != 0 {
			w.WriteHeader(f.geocodeStatus)
			return
		}
		_, _ = w.Write([]byte(f.geocodeBody))
	case "/v2/places":
		f.placesCalls.Add(1)
		if f.placesStatus != 0 {
			w.WriteHeader(f.placesStatus)
			return
		}
		body, ok := f.places[r.URL.Query().Get("categories")]
		if !ok {
			body = `{"features":[]}`
		}
		_, _ = w.Write([]byte(body))
	default:
		http.NotFound(w, r)
	}
}

const parisGeocode = `{"features":[{"geometry":{"coordinates":[2.35,48.85]}}]}`

func newSearchRouter(t *testing.T, upstream *fakeGeoapify, apiKey string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	cfg := testSearchConfig()
	cfg.APIKey = apiKey
	client := NewGeoapifyClient(server.URL, apiKey, 2*time.Second, zap.NewNop())
	svc := NewService(client, mustCategories(t), cfg, zap.NewNop())

	r := gin.New()
	NewHandler(svc, handlers.NewBaseHandler(zap.NewNop())).RegisterRoutes(r.Group("/api"), nil)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestHandler_Search_FallbackToTourism(t *testing.T) {
	upstream := &fakeGeoapify{
		geocodeBody: parisGeocode,
		places: map[string]string{
			"tourism": `{"features":[{"properties":{"place_id":"p1","name":"Louvre","formatted":"Rue de Rivoli, Paris","categories":["building","tourism.museum"],"lon":2.33,"lat":48.86}}]}`,
		},
	}
	r := newSearchRouter(t, upstream, "key")

	w := get(r, "/api/search?q=Paris&i=party")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Center.Lat)
	assert.Equal(t, 48.85, *resp.Center.Lat)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, models.Place{
		ID: "p1", Name: "Louvre", Category: "Tourism Museum",
		Lon: 2.33, Lat: 48.86, Address: "Rue de Rivoli, Paris",
	}, resp.Results[0])
	assert.Equal(t, int32(2), upstream.placesCalls.Load())
}

func TestHandler_Search_MissingQuery(t *testing.T) {
	upstream := &fakeGeoapify{geocodeBody: parisGeocode}
	r := newSearchRouter(t, upstream, "key")

	w := get(r, "/api/search?q=")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing q", errorMessage(t, w))
	assert.Zero(t, upstream.geocodeCalls.Load())
}

func TestHandler_Search_NotConfigured(t *testing.T) {
	upstream := &fakeGeoapify{geocodeBody: parisGeocode}
	r := newSearchRouter(t, upstream, "")

	w := get(r, "/api/search")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Server API key not configured", errorMessage(t, w))
	assert.Zero(t, upstream.geocodeCalls.Load())
}

func TestHandler_Search_UpstreamFailure(t *testing.T) {
	r := newSearchRouter(t, &fakeGeoapify{geocodeStatus: http.StatusUnauthorized}, "key")

	w := get(r, "/api/search?q=Paris")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Geocode failed (401)", errorMessage(t, w))

	r = newSearchRouter(t, &fakeGeoapify{geocodeBody: parisGeocode, placesStatus: http.StatusTooManyRequests}, "key")
	w = get(r, "/api/search?q=Paris")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Places failed (429)", errorMessage(t, w))
}

func TestHandler_Search_MalformedUpstreamIsInternal(t *testing.T) {
	r := newSearchRouter(t, &fakeGeoapify{geocodeBody: `not json`}, "key")

	w := get(r, "/api/search?q=Paris")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal error", errorMessage(t, w))
}

func TestHandler_Search_NoMatch(t *testing.T) {
	upstream := &fakeGeoapify{geocodeBody: `{"features":[]}`}
	r := newSearchRouter(t, upstream, "key")

	w := get(r, "/api/search?q=Nowhere")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"center":{},"results":[]}`, w.Body.String())
	assert.Zero(t, upstream.placesCalls.Load())
}

func TestHandler_Search_CachesGeocode(t *testing.T) {
	upstream := &fakeGeoapify{geocodeBody: parisGeocode}
	r := newSearchRouter(t, upstream, "key")

	for i := 0; i < 2; i++ {
		w := get(r, "/api/search?q=Paris&i=travel")
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, int32(1), upstream.geocodeCalls.Load())
	assert.Equal(t, int32(2), upstream.placesCalls.Load())
}

func TestHandler_Search_LimiterRunsFirst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := new(MockService)
	r := gin.New()
	blocked := func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, handlers.ErrorResponse{Error: "Too many requests"})
	}
	NewHandler(service, handlers.NewBaseHandler(zap.NewNop())).RegisterRoutes(r.Group("/api"), blocked)

	w := get(r, "/api/search?q=Paris")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	service.AssertNumberOfCalls(t, "Search", 0)
}
