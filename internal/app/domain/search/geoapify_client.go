package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripboard/internal/app/models"
	"github.com/FACorreiaa/go-tripboard/internal/app/observability/metrics"
)

// Point is a WGS84 coordinate.
type Point struct {
	Lon float64
	Lat float64
}

// PlaceFeature is the subset of a places result the app renders.
type PlaceFeature struct {
	PlaceID      string   `json:"place_id"`
	Name         string   `json:"name"`
	AddressLine1 string   `json:"address_line1"`
	Formatted    string   `json:"formatted"`
	Categories   []string `json:"categories"`
	Lon          float64  `json:"lon"`
	Lat          float64  `json:"lat"`
}

// PlacesQuery is one circle search.
type PlacesQuery struct {
	Categories   string
	Center       Point
	RadiusMeters int
	Limit        int
}

// Client talks to the places provider.
type Client interface {
	// Geocode returns the best match for text, or nil when there is none.
	Geocode(ctx context.Context, text string) (*Point, error)
	Places(ctx context.Context, q PlacesQuery) ([]PlaceFeature, error)
}

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

type placesResponse struct {
	Features []struct {
		Properties PlaceFeature `json:"properties"`
	} `json:"features"`
}

var _ Client = (*GeoapifyClient)(nil)

// GeoapifyClient implements Client against api.geoapify.com.
type GeoapifyClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewGeoapifyClient builds a client whose transport is traced with otelhttp.
func NewGeoapifyClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *GeoapifyClient {
	return &GeoapifyClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
}

func (c *GeoapifyClient) Geocode(ctx context.Context, text string) (*Point, error) {
	params := url.Values{}
	params.Set("text", text)
	params.Set("limit", "1")
	params.Set("apiKey", c.apiKey)

	var body geocodeResponse
	if err := c.getJSON(ctx, "Geocode", "/v1/geocode/search", params, &body); err != nil {
		return nil, err
	}
	if len(body.Features) == 0 || len(body.Features[0].Geometry.Coordinates) < 2 {
		return nil, nil
	}
	coords := body.Features[0].Geometry.Coordinates
	return &Point{Lon: coords[0], Lat: coords[1]}, nil
}

func (c *GeoapifyClient) Places(ctx context.Context, q PlacesQuery) ([]PlaceFeature, error) {
	params := url.Values{}
	params.Set("categories", q.Categories)
	params.Set("filter", fmt.Sprintf("circle:%s,%s,%d",
		strconv.FormatFloat(q.Center.Lon, 'f', -1, 64),
		strconv.FormatFloat(q.Center.Lat, 'f', -1, 64),
		q.RadiusMeters))
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("apiKey", c.apiKey)

	var body placesResponse
	if err := c.getJSON(ctx, "Places", "/v2/places", params, &body); err != nil {
		return nil, err
	}
	out := make([]PlaceFeature, 0, len(body.Features))
	for _, f := range body.Features {
		out = append(out, f.Properties)
	}
	return out, nil
}

func (c *GeoapifyClient) getJSON(ctx context.Context, op, path string, params url.Values, dest any) error {
	start := time.Now()
	status := 0
	defer func() {
		metrics.Get().UpstreamRequestDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
			attribute.String("operation", op),
			attribute.Int("status", status),
		))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Places provider unreachable", zap.String("operation", op), zap.Error(err))
		return fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		c.logger.Warn("Places provider returned an error", zap.String("operation", op), zap.Int("status", resp.StatusCode))
		return &models.UpstreamError{Op: op, Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}
