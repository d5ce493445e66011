// Spotify implementation of the identity-provider and resource API contracts.
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package spotify

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/soundscope/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// Token is the credential triple persisted by the session manager.
type Token struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

type followers struct {
	Total int `json:"total"`
}

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Profile represents the raw Spotify user profile as returned by /me.
//
// The session manager minimizes this into its own user record; nothing beyond
// that record is retained.
type Profile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Country     string    `json:"country"`
	Product     string    `json:"product"` // premium, free, etc.
	Followers   followers `json:"followers"`
	Images      []Image   `json:"images"`
}

// Identity is the identity-provider contract the session core consumes.
type Identity interface {
	// AuthURL returns the authorization URL for the user login redirect.
	AuthURL(state string) string
	// Exchange trades an authorization code for a token triple.
	Exchange(ctx context.Context, code string) (*Token, error)
	// Refresh trades a refresh token for a fresh access token. The returned
	// RefreshToken may be empty when the provider does not rotate it.
	Refresh(ctx context.Context, refreshToken string) (*Token, error)
	// CurrentUser fetches the authenticated profile for the given access token.
	CurrentUser(ctx context.Context, accessToken string) (*Profile, error)
}

// Client implements [Identity] against the Spotify accounts service.
// Uses [oauth2] for the authorization code and refresh grants.
type Client struct {
	config *oauth2.Config
	api    *APIClient
}

var _ Identity = (*Client)(nil)

// NewClient creates a Spotify client with the given OAuth2 credentials.
func NewClient(credentials map[string]string, api *APIClient) (*Client, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://127.0.0.1:3000/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"user-top-read",
			"user-library-read",
			"user-read-recently-played",
			"user-read-playback-state",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	if api == nil {
		api = NewAPIClient(spotifyBaseURL, nil)
	}

	return &Client{config: config, api: api}, nil
}

// AuthURL returns the OAuth2 authorization URL for user login.
func (c *Client) AuthURL(state string) string {
	return c.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// OAuthConfig exposes the underlying [oauth2.Config] for the callback server.
func (c *Client) OAuthConfig() *oauth2.Config {
	return c.config
}

// Exchange trades the authorization code for tokens.
func (c *Client) Exchange(ctx context.Context, code string) (*Token, error) {
	tok, err := c.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return fromOAuth2(tok), nil
}

// Refresh trades the refresh token for a fresh access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	if refreshToken == "" {
		return nil, shared.ErrNoRefreshToken
	}

	src := c.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	result := fromOAuth2(tok)
	if result.RefreshToken == refreshToken {
		// unrotated: report empty so callers keep the stored value
		result.RefreshToken = ""
	}
	return result, nil
}

// CurrentUser retrieves the authenticated user's profile via /me.
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (*Profile, error) {
	var profile Profile
	if err := c.api.Get(ctx, "/me", accessToken, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func fromOAuth2(tok *oauth2.Token) *Token {
	return &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
}
