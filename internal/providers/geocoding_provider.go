package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"tourwise/backoffice/internal/common"
	"tourwise/backoffice/internal/constants"
	"tourwise/backoffice/internal/metrics"
	"tourwise/backoffice/internal/models/dtos"
)

// geocodeCacheTTL keeps resolved coordinates for a month; place coordinates
// do not move.
const geocodeCacheTTL = 30 * 24 * time.Hour

// GeocodingResolver resolves place names to coordinates
type GeocodingResolver interface {
	// Resolve resolves a single place name. Returns nil when the place
	// cannot be resolved (not an error).
	Resolve(ctx context.Context, place string) (*dtos.Coordinates, error)

	// ResolveBatch resolves a set of place names, deduplicated, returning
	// a map keyed by the input names. Unresolvable names are absent.
	ResolveBatch(ctx context.Context, places []string) (map[string]dtos.Coordinates, error)
}

// HTTPGeocodingResolver implements GeocodingResolver against the internal
// geocoding service, memoizing results through a CacheInterface.
type HTTPGeocodingResolver struct {
	BaseURL string
	APIKey  string
	Client  *http.Client

	cache   common.CacheInterface
	metrics *metrics.MetricsRegistry
}

var _ GeocodingResolver = (*HTTPGeocodingResolver)(nil)

// NewHTTPGeocodingResolver creates a geocoding resolver from environment config
func NewHTTPGeocodingResolver(cache common.CacheInterface, metricsReg *metrics.MetricsRegistry) *HTTPGeocodingResolver {
	baseURL := os.Getenv("GEOCODE_API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://geocoding.internal:8090"
	}

	return &HTTPGeocodingResolver{
		BaseURL: baseURL,
		APIKey:  os.Getenv("GEOCODE_API_KEY"),
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache:   cache,
		metrics: metricsReg,
	}
}

// Resolve resolves a single place name, consulting the cache first
func (g *HTTPGeocodingResolver) Resolve(ctx context.Context, place string) (*dtos.Coordinates, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return nil, nil
	}

	cacheKey := "geocode:" + strings.ToLower(place)
	if val, found := g.cache.Get(cacheKey); found {
		if g.metrics != nil {
			g.metrics.GeocodeCacheHitsTotal.Inc()
		}
		if coords, ok := decodeCachedCoordinates(val); ok {
			return coords, nil
		}
	}
	if g.metrics != nil {
		g.metrics.GeocodeCacheMissesTotal.Inc()
	}

	coords, err := g.lookup(ctx, place)
	if err != nil {
		return nil, err
	}
	if coords == nil {
		return nil, nil
	}

	g.cache.Set(cacheKey, *coords, geocodeCacheTTL)
	return coords, nil
}

// ResolveBatch resolves the deduplicated set of place names. One lookup per
// unique name per pass; individual failures drop the name rather than
// failing the batch.
func (g *HTTPGeocodingResolver) ResolveBatch(ctx context.Context, places []string) (map[string]dtos.Coordinates, error) {
	results := make(map[string]dtos.Coordinates)

	seen := make(map[string]bool, len(places))
	for _, place := range places {
		place = strings.TrimSpace(place)
		if place == "" || seen[place] {
			continue
		}
		seen[place] = true

		coords, err := g.Resolve(ctx, place)
		if err != nil {
			// A failed lookup costs one coordinate pair, not the batch
			continue
		}
		if coords != nil {
			results[place] = *coords
		}
	}

	return results, nil
}

func (g *HTTPGeocodingResolver) lookup(ctx context.Context, place string) (*dtos.Coordinates, error) {
	endpoint := fmt.Sprintf("%s/geocode?q=%s", g.BaseURL, url.QueryEscape(place))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create geocode request",
			Err:     err,
		}
	}
	if g.APIKey != "" {
		req.Header.Set("X-API-Key", g.APIKey)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Geocode request failed",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Code:    constants.ErrCodeServerError,
			Message: fmt.Sprintf("geocode service returned HTTP %d", resp.StatusCode),
		}
	}

	var coords dtos.Coordinates
	if err := json.NewDecoder(resp.Body).Decode(&coords); err != nil {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Failed to decode geocode response",
			Err:     err,
		}
	}

	return &coords, nil
}

// decodeCachedCoordinates handles both in-memory (typed) and Redis
// (JSON round-tripped map) cache values.
func decodeCachedCoordinates(val interface{}) (*dtos.Coordinates, bool) {
	switch v := val.(type) {
	case dtos.Coordinates:
		return &v, true
	case *dtos.Coordinates:
		return v, true
	case map[string]interface{}:
		lat, latOK := v["lat"].(float64)
		lng, lngOK := v["lng"].(float64)
		if latOK && lngOK {
			return &dtos.Coordinates{Lat: lat, Lng: lng}, true
		}
	}
	return nil, false
}
