package shared

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	t.Run("sentinel errors", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
			want Kind
		}{
			{"token expired", ErrTokenExpired, KindSessionExpired},
			{"not authenticated", ErrNotAuthenticated, KindSessionExpired},
			{"no refresh token", ErrNoRefreshToken, KindSessionExpired},
			{"forbidden", ErrForbidden, KindForbidden},
			{"rate limited", ErrRateLimited, KindRateLimited},
			{"service unavailable", ErrServiceUnavailable, KindServerUnavailable},
			{"invalid config", ErrInvalidConfig, KindConfiguration},
			{"missing credentials", ErrMissingCredentials, KindConfiguration},
			{"auth failed", ErrAuthFailed, KindAuthFailed},
			{"loading timeout", ErrLoadingTimeout, KindLoadingTimeout},
			{"timeout", ErrTimeout, KindNetwork},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if got := Classify(tt.err); got != tt.want {
					t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
				}
			})
		}
	})

	t.Run("wrapped sentinels keep their kind", func(t *testing.T) {
		err := fmt.Errorf("fetching profile: %w", ErrTokenExpired)
		if got := Classify(err); got != KindSessionExpired {
			t.Errorf("Classify(wrapped) = %v, want %v", got, KindSessionExpired)
		}
	})

	t.Run("message inspection", func(t *testing.T) {
		tests := []struct {
			name string
			msg  string
			want Kind
		}{
			{"invalid_grant", "oauth2: \"invalid_grant\"", KindSessionExpired},
			{"401 status", "request failed with status 401", KindSessionExpired},
			{"unauthorized", "Unauthorized access", KindSessionExpired},
			{"403 status", "request failed with status 403", KindForbidden},
			{"429 status", "request failed with status 429", KindRateLimited},
			{"rate limit text", "Rate Limit exceeded", KindRateLimited},
			{"too many requests", "too many requests, slow down", KindRateLimited},
			{"invalid_client", "oauth2: \"invalid_client\"", KindConfiguration},
			{"redirect uri mismatch", "redirect_uri mismatch", KindConfiguration},
			{"502 status", "bad gateway: 502", KindServerUnavailable},
			{"connection refused", "dial tcp: connection refused", KindNetwork},
			{"no such host", "lookup api.spotify.com: no such host", KindNetwork},
			{"unclassifiable", "something odd happened", KindUnknown},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if got := Classify(errors.New(tt.msg)); got != tt.want {
					t.Errorf("Classify(%q) = %v, want %v", tt.msg, got, tt.want)
				}
			})
		}
	})

	t.Run("nil error", func(t *testing.T) {
		if got := Classify(nil); got != KindUnknown {
			t.Errorf("Classify(nil) = %v, want %v", got, KindUnknown)
		}
	})
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{401, KindSessionExpired},
		{403, KindForbidden},
		{429, KindRateLimited},
		{500, KindServerUnavailable},
		{503, KindServerUnavailable},
		{404, KindUnknown},
		{200, KindUnknown},
	}

	for _, tt := range tests {
		if got := ClassifyStatus(tt.status); got != tt.want {
			t.Errorf("ClassifyStatus(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestContainsRateLimitMarker(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"status 429", true},
		{"Rate Limit hit", true},
		{"TOO MANY REQUESTS", true},
		{"server error 500", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ContainsRateLimitMarker(tt.msg); got != tt.want {
			t.Errorf("ContainsRateLimitMarker(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}

func TestKind(t *testing.T) {
	t.Run("every kind has a distinct message", func(t *testing.T) {
		kinds := []Kind{
			KindUnknown, KindSessionExpired, KindForbidden, KindRateLimited,
			KindServerUnavailable, KindNetwork, KindConfiguration,
			KindAuthFailed, KindLoadingTimeout,
		}

		seen := map[string]Kind{}
		for _, k := range kinds {
			msg := k.Message()
			if msg == "" {
				t.Errorf("kind %v has empty message", k)
			}
			if prev, ok := seen[msg]; ok {
				t.Errorf("kinds %v and %v share message %q", prev, k, msg)
			}
			seen[msg] = k
		}
	})

	t.Run("recoverability", func(t *testing.T) {
		tests := []struct {
			kind Kind
			want bool
		}{
			{KindSessionExpired, false},
			{KindForbidden, false},
			{KindConfiguration, false},
			{KindAuthFailed, false},
			{KindRateLimited, true},
			{KindServerUnavailable, true},
			{KindNetwork, true},
			{KindLoadingTimeout, true},
			{KindUnknown, true},
		}

		for _, tt := range tests {
			if got := tt.kind.Recoverable(); got != tt.want {
				t.Errorf("%v.Recoverable() = %v, want %v", tt.kind, got, tt.want)
			}
		}
	})
}
