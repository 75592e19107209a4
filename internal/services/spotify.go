// Spotify Web API client for the "currently playing" surface.
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// Endpoint is the Spotify OAuth2 endpoint pair.
var Endpoint = oauth2.Endpoint{
	AuthURL:  spotifyAuthURL,
	TokenURL: spotifyTokenURL,
}

// Scopes required for reading playback state.
var Scopes = []string{"user-read-currently-playing", "user-read-playback-state"}

// Artist represents a Spotify artist.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Album represents a Spotify album.
type Album struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Track represents a full Spotify track. ID is stable and used for change
// detection by the update loop.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
	DurationMs int      `json:"duration_ms"`
	Popularity int      `json:"popularity"`
}

// CurrentlyPlaying is the playback state returned by the player endpoint.
// Item is nil when nothing is playing; Type distinguishes full tracks from
// episodes and ads, which the companion ignores.
type CurrentlyPlaying struct {
	IsPlaying  bool   `json:"is_playing"`
	Type       string `json:"currently_playing_type"`
	ProgressMs int    `json:"progress_ms"`
	Item       *Track `json:"item"`
}

// PlayingTrack returns the full track when one is actively playing.
func (c *CurrentlyPlaying) PlayingTrack() *Track {
	if c == nil || !c.IsPlaying || c.Item == nil {
		return nil
	}
	if c.Type != "" && c.Type != "track" {
		return nil
	}
	return c.Item
}

// APIError is a non-2xx response from the Spotify API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify API error: status %d", e.Status)
}

// IsUnauthorized reports whether err is a 401 response. Unauthorized
// failures are never retried: retrying with the same stale token cannot
// succeed.
func IsUnauthorized(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusUnauthorized
}

// Client is an authenticated Spotify Web API client bound to a single
// access token. Token refresh happens in [TokenManager], which rebuilds the
// client when the token rotates.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// ClientOpt configures a [Client].
type ClientOpt func(*Client)

// WithBaseURL overrides the API base URL, used by tests.
func WithBaseURL(baseURL string) ClientOpt {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOpt {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client using the given bearer token.
func NewClient(token string, opts ...ClientOpt) *Client {
	c := &Client{
		baseURL:    spotifyBaseURL,
		httpClient: http.DefaultClient,
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurrentlyPlaying fetches the user's playback state. A 204 response means
// nothing is playing and yields an empty state, not an error.
func (c *Client) CurrentlyPlaying(ctx context.Context) (*CurrentlyPlaying, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/me/player/currently-playing", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return &CurrentlyPlaying{}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	var playing CurrentlyPlaying
	if err := json.NewDecoder(resp.Body).Decode(&playing); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &playing, nil
}
