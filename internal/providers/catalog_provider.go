package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"tourwise/backoffice/internal/constants"
	"tourwise/backoffice/internal/models/dtos"

	"golang.org/x/time/rate"
)

// CatalogClient defines the interface to the external tour operator API
type CatalogClient interface {
	// FetchCatalog fetches a brand's full product catalog, normalized
	FetchCatalog(ctx context.Context, brand string, currency string) ([]dtos.TourRecord, error)

	// FetchTourDetail fetches the richer per-tour content document.
	// Returns nil without error when the provider has no detail document.
	FetchTourDetail(ctx context.Context, brand string, tourCode string) (*dtos.TourDetail, error)
}

// HTTPCatalogClient implements CatalogClient against the operator's REST API
type HTTPCatalogClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client

	// limiter bounds our request rate against the provider; the catalog
	// feed endpoints are heavily throttled upstream.
	limiter *rate.Limiter
}

var _ CatalogClient = (*HTTPCatalogClient)(nil)

// NewHTTPCatalogClient creates a catalog client from environment config
func NewHTTPCatalogClient() *HTTPCatalogClient {
	baseURL := os.Getenv("CATALOG_API_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.tourradar-connect.example.com/v3"
	}
	apiKey := os.Getenv("CATALOG_API_KEY")

	return &HTTPCatalogClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
		limiter: rate.NewLimiter(5, 10), // 5 requests/sec, burst 10
	}
}

// FetchCatalog fetches the full catalog for a brand in one document
func (c *HTTPCatalogClient) FetchCatalog(ctx context.Context, brand string, currency string) ([]dtos.TourRecord, error) {
	if brand == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "brand cannot be empty",
		}
	}

	endpoint := fmt.Sprintf("/catalog/%s?currency=%s", url.PathEscape(brand), url.QueryEscape(currency))

	var payload struct {
		Tours []dtos.TourRecord `json:"tours"`
	}
	if err := c.doGET(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	return payload.Tours, nil
}

// FetchTourDetail fetches the per-tour content document
func (c *HTTPCatalogClient) FetchTourDetail(ctx context.Context, brand string, tourCode string) (*dtos.TourDetail, error) {
	if tourCode == "" {
		return nil, &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "tour code cannot be empty",
		}
	}

	endpoint := fmt.Sprintf("/catalog/%s/tours/%s/content", url.PathEscape(brand), url.PathEscape(tourCode))

	var detail dtos.TourDetail
	err := c.doGET(ctx, endpoint, &detail)
	if err != nil {
		var provErr *ProviderError
		if errors.As(err, &provErr) && provErr.Code == constants.ErrCodeNotFound {
			// Detail documents are optional; absence is not an error
			return nil, nil
		}
		return nil, err
	}

	return &detail, nil
}

// doGET performs a rate-limited, authenticated GET against the provider
func (c *HTTPCatalogClient) doGET(ctx context.Context, endpoint string, result interface{}) error {
	if c.APIKey == "" {
		return &ProviderError{
			Code:    constants.ErrCodeInvalidAPIKey,
			Message: "CATALOG_API_KEY environment variable is not set",
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "request cancelled while rate limited",
			Err:     err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+endpoint, nil)
	if err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}

	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if err := c.handleHTTPError(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return &ProviderError{
			Code:    constants.ErrCodeInvalidDataFormat,
			Message: "Failed to decode response",
			Err:     err,
		}
	}

	return nil
}

// handleHTTPError converts HTTP errors to ProviderError
func (c *HTTPCatalogClient) handleHTTPError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(resp.Body)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &ProviderError{
			Code:    constants.ErrCodeInvalidAPIKey,
			Message: constants.GetErrorMessage(constants.ErrCodeInvalidAPIKey),
			Details: string(body),
		}
	case http.StatusNotFound:
		return &ProviderError{
			Code:    constants.ErrCodeNotFound,
			Message: constants.GetErrorMessage(constants.ErrCodeNotFound),
			Details: string(body),
		}
	case http.StatusTooManyRequests:
		return &ProviderError{
			Code:    constants.ErrCodeRateLimited,
			Message: constants.GetErrorMessage(constants.ErrCodeRateLimited),
			Details: string(body),
		}
	default:
		return &ProviderError{
			Code:    constants.ErrCodeServerError,
			Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)),
			Details: string(body),
		}
	}
}

// BuildFallbackMediaURL synthesizes the provider's stable CDN URL for a
// tour's hero media when the catalog entry carries no explicit URLs. The
// convention is documented by the provider and part of the reconciliation
// contract, not a cosmetic default:
//
//	https://cdn.<provider-host>/media/<brand>/<season>/<tour-code>/hero.jpg
func BuildFallbackMediaURL(baseURL, brand, season, tourCode string) string {
	host := strings.TrimPrefix(baseURL, "https://")
	host = strings.TrimPrefix(host, "http://")
	if i := strings.Index(host, "/"); i >= 0 {
		host = host[:i]
	}
	host = strings.TrimPrefix(host, "api.")

	return fmt.Sprintf("https://cdn.%s/media/%s/%s/%s/hero.jpg",
		host,
		strings.ToLower(brand),
		strings.ToLower(season),
		strings.ToUpper(tourCode),
	)
}
