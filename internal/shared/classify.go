package shared

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Kind is the classified failure category for a provider or API error.
//
// Every failure surfaced to the user maps to exactly one Kind, and each Kind
// maps to exactly one user-facing message. Call sites branch on the tag, never
// on raw message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindSessionExpired
	KindForbidden
	KindRateLimited
	KindServerUnavailable
	KindNetwork
	KindConfiguration
	KindAuthFailed
	KindLoadingTimeout
)

func (k Kind) String() string {
	switch k {
	case KindSessionExpired:
		return "session_expired"
	case KindForbidden:
		return "forbidden"
	case KindRateLimited:
		return "rate_limited"
	case KindServerUnavailable:
		return "server_unavailable"
	case KindNetwork:
		return "network"
	case KindConfiguration:
		return "configuration"
	case KindAuthFailed:
		return "auth_failed"
	case KindLoadingTimeout:
		return "loading_timeout"
	default:
		return "unknown"
	}
}

// Message returns the single user-facing message for the kind.
func (k Kind) Message() string {
	switch k {
	case KindSessionExpired:
		return "Your session has expired. Please log in again."
	case KindForbidden:
		return "Your account doesn't have access to this data."
	case KindRateLimited:
		return "Spotify is throttling requests right now. Give it a minute and try again."
	case KindServerUnavailable:
		return "Spotify appears to be having trouble. Try again shortly."
	case KindNetwork:
		return "Couldn't reach Spotify. Check your connection and try again."
	case KindConfiguration:
		return "The app is misconfigured. Check the client credentials and redirect URI."
	case KindAuthFailed:
		return "Authorization didn't complete. You can start over from the home screen."
	case KindLoadingTimeout:
		return "Loading is taking longer than expected. Try again."
	default:
		return "Something went wrong. Try again."
	}
}

// Recoverable reports whether retrying the same action can plausibly succeed
// without re-authentication or reconfiguration.
func (k Kind) Recoverable() bool {
	switch k {
	case KindSessionExpired, KindForbidden, KindConfiguration, KindAuthFailed:
		return false
	default:
		return true
	}
}

// rate-limit markers are matched anywhere in the message, matching how the
// upstream surfaces 429s inconsistently (status line, JSON body, SDK text).
var rateLimitMarkers = []string{"429", "rate limit", "too many requests"}

// ContainsRateLimitMarker reports whether msg carries any known 429 marker.
func ContainsRateLimitMarker(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range rateLimitMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Classify maps an error from the identity provider or resource API to a [Kind].
//
// Sentinel errors are checked first, then status/substring inspection of the
// message. This is the single classification point for the whole core.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	switch {
	case errors.Is(err, ErrTokenExpired), errors.Is(err, ErrNotAuthenticated), errors.Is(err, ErrNoRefreshToken):
		return KindSessionExpired
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrServiceUnavailable):
		return KindServerUnavailable
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrMissingCredentials), errors.Is(err, ErrInvalidCredentials):
		return KindConfiguration
	case errors.Is(err, ErrAuthFailed):
		return KindAuthFailed
	case errors.Is(err, ErrLoadingTimeout):
		return KindLoadingTimeout
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindNetwork
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}

	msg := strings.ToLower(err.Error())

	if ContainsRateLimitMarker(msg) {
		return KindRateLimited
	}

	switch {
	case strings.Contains(msg, "invalid_grant"),
		strings.Contains(msg, "401"),
		strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "token expired"):
		return KindSessionExpired
	case strings.Contains(msg, "403"), strings.Contains(msg, "forbidden"):
		return KindForbidden
	case strings.Contains(msg, "invalid_client"),
		strings.Contains(msg, "invalid client"),
		strings.Contains(msg, "redirect_uri"),
		strings.Contains(msg, "redirect uri"):
		return KindConfiguration
	case strings.Contains(msg, "500"),
		strings.Contains(msg, "502"),
		strings.Contains(msg, "503"),
		strings.Contains(msg, "504"),
		strings.Contains(msg, "server error"):
		return KindServerUnavailable
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "network is unreachable"),
		strings.Contains(msg, "connection reset"):
		return KindNetwork
	}

	return KindUnknown
}

// ClassifyStatus maps an HTTP status code from the resource API to a [Kind].
func ClassifyStatus(status int) Kind {
	switch {
	case status == 401:
		return KindSessionExpired
	case status == 403:
		return KindForbidden
	case status == 429:
		return KindRateLimited
	case status >= 500:
		return KindServerUnavailable
	default:
		return KindUnknown
	}
}
