// package store provides the persistent key-value façade for session-scoped
// credential artifacts and cached profile data.
//
// The store is a pure storage layer: no validation or lifecycle logic lives
// here. The session manager decides what the values mean and when they are
// cleared.
package store

import "fmt"

// Persisted keys. Values are opaque strings; token_expiry holds epoch
// milliseconds as a decimal string, user_profile a serialized minimal user
// record.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyTokenExpiry  = "token_expiry"
	KeyUserProfile  = "user_profile"
	KeyUserImage    = "user_profile_image"
	KeyPreferences  = "app_preferences"
)

// CredentialKeys returns every key cleared on logout or detected expiry.
// KeyPreferences survives logout deliberately.
func CredentialKeys() []string {
	return []string{KeyAccessToken, KeyRefreshToken, KeyTokenExpiry, KeyUserProfile, KeyUserImage}
}

// Store is the key-value storage contract shared by all backends.
//
// Get reports presence explicitly so callers can distinguish an absent key
// from an empty value. Implementations must be safe for concurrent use: the
// session manager, callback handler, and logout all touch the store without
// any coordination between them.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	RemoveAll(keys ...string) error
	Close() error
}

// Open creates a store for the configured backend.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "sqlite", "":
		return OpenSQLite(path)
	case "bolt":
		return OpenBolt(path)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", backend)
	}
}
