package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/desertthunder/soundscope/internal/shared"
	"golang.org/x/time/rate"
)

// APIClient performs authenticated requests against the Spotify Web API.
//
// A token-bucket limiter caps the request rate so a burst of dashboard
// fetches can't trip the upstream throttle on its own. Failures are wrapped
// in the shared sentinels so [shared.Classify] can map them to a kind.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewAPIClient creates an API client. The base URL defaults to the Spotify
// Web API and the HTTP client to [http.DefaultClient].
func NewAPIClient(baseURL string, httpClient *http.Client) *APIClient {
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &APIClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(10), 20),
	}
}

// Get performs an authenticated GET and decodes the JSON response into result.
func (a *APIClient) Get(ctx context.Context, endpoint, accessToken string, result any) error {
	if accessToken == "" {
		return fmt.Errorf("%w: no access token", shared.ErrNotAuthenticated)
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// statusError wraps a non-2xx status in the matching sentinel.
func statusError(status int) error {
	switch shared.ClassifyStatus(status) {
	case shared.KindSessionExpired:
		return fmt.Errorf("%w: status %d", shared.ErrTokenExpired, status)
	case shared.KindForbidden:
		return fmt.Errorf("%w: status %d", shared.ErrForbidden, status)
	case shared.KindRateLimited:
		return fmt.Errorf("%w: status %d", shared.ErrRateLimited, status)
	case shared.KindServerUnavailable:
		return fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, status)
	default:
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, status)
	}
}
