package session

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/desertthunder/soundscope/internal/spotify"
)

// DemoToken is the sentinel credential for sandbox sessions. A store holding
// this value bypasses expiry checks and every network round-trip.
const DemoToken = "soundscope-demo-token"

const displayNameMax = 32

// User is the minimal identity record kept for a session.
//
// The ID is hashed and the display name truncated before anything is
// persisted; the raw provider profile (email included) is never retained.
type User struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	HasImage    bool     `json:"has_image"`
	Country     string   `json:"country"`
	Images      []string `json:"images,omitempty"`
}

// NewUser minimizes a raw provider profile into a User.
func NewUser(p *spotify.Profile) *User {
	name := p.DisplayName
	if len([]rune(name)) > displayNameMax {
		name = string([]rune(name)[:displayNameMax])
	}

	var images []string
	for _, img := range p.Images {
		images = append(images, img.URL)
	}

	return &User{
		ID:          hashID(p.ID),
		DisplayName: name,
		HasImage:    len(images) > 0,
		Country:     p.Country,
		Images:      images,
	}
}

// DemoUser returns the synthetic user for sandbox sessions.
func DemoUser() *User {
	return &User{
		ID:          hashID("demo"),
		DisplayName: "Demo Listener",
		HasImage:    false,
		Country:     "US",
	}
}

func hashID(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:16]
}

// Encode serializes the user for the store.
func (u *User) Encode() (string, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeUser parses a stored user record.
func DecodeUser(raw string) (*User, error) {
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, err
	}
	return &u, nil
}
