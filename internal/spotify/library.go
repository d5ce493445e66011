package spotify

import (
	"context"
	"fmt"
)

// Artist represents a Spotify artist.
type Artist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
	Images []Image  `json:"images"`
	URI    string   `json:"uri"`
}

// Album represents a Spotify album.
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []Artist `json:"artists"`
	ReleaseDate string   `json:"release_date"`
	Images      []Image  `json:"images"`
	URI         string   `json:"uri"`
}

// Track represents a Spotify track.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
	DurationMS int      `json:"duration_ms"`
	Popularity int      `json:"popularity"`
	URI        string   `json:"uri"`
}

// SavedTrack represents a track saved in the user's library.
type SavedTrack struct {
	AddedAt string `json:"added_at"`
	Track   Track  `json:"track"`
}

// PaginatedTracks represents a paginated response of saved tracks.
type PaginatedTracks struct {
	Items    []SavedTrack `json:"items"`
	Total    int          `json:"total"`
	Limit    int          `json:"limit"`
	Offset   int          `json:"offset"`
	Next     *string      `json:"next"`
	Previous *string      `json:"previous"`
}

// PaginatedArtists represents a paginated top-artists response.
type PaginatedArtists struct {
	Items []Artist `json:"items"`
	Total int      `json:"total"`
}

// SavedTracks retrieves a page of the user's saved tracks.
func (a *APIClient) SavedTracks(ctx context.Context, accessToken string, limit, offset int) (*PaginatedTracks, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	endpoint := fmt.Sprintf("/me/tracks?limit=%d&offset=%d", limit, offset)

	var response PaginatedTracks
	if err := a.Get(ctx, endpoint, accessToken, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// TopArtists retrieves the user's top artists.
func (a *APIClient) TopArtists(ctx context.Context, accessToken string, limit int) (*PaginatedArtists, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	endpoint := fmt.Sprintf("/me/top/artists?limit=%d", limit)

	var response PaginatedArtists
	if err := a.Get(ctx, endpoint, accessToken, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// LibrarySummary is the aggregate the dashboard renders after the
// progressive load completes.
type LibrarySummary struct {
	SavedTrackTotal int
	TopArtists      []Artist
	RecentTracks    []SavedTrack
}
