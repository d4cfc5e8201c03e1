// Package spotify fetches playlist, artist, and audio-feature metadata
// from the Spotify Web API and flattens it into rows ready for storage.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	baseURL   = "https://api.spotify.com/v1"
	userAgent = "playlistify/1.0"
)

// APIError is returned when the Spotify API responds with a non-2xx
// status. The whole fetch is aborted when any sub-request fails.
type APIError struct {
	StatusCode int
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify API: %s returned status %d", e.Endpoint, e.StatusCode)
}

// Client is a thin Spotify Web API client. The underlying HTTP client
// is expected to attach a bearer token (an oauth2-wrapped client).
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Client on top of an authenticated HTTP client.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// getPlaylist fetches a playlist with its track listing.
func (c *Client) getPlaylist(ctx context.Context, id string) (*playlistResponse, error) {
	var resp playlistResponse
	if err := c.getJSON(ctx, "/playlists/"+id, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching playlist %s: %w", id, err)
	}
	return &resp, nil
}

// getArtists fetches several artists in one request, batched by
// joining ids with commas.
func (c *Client) getArtists(ctx context.Context, ids []string) ([]fullArtist, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	params := url.Values{"ids": {strings.Join(ids, ",")}}
	var resp artistsResponse
	if err := c.getJSON(ctx, "/artists", params, &resp); err != nil {
		return nil, fmt.Errorf("fetching artists: %w", err)
	}
	return resp.Artists, nil
}

// getAudioFeatures fetches the audio-feature tuple for one track.
func (c *Client) getAudioFeatures(ctx context.Context, trackID string) (*audioFeaturesResponse, error) {
	var resp audioFeaturesResponse
	if err := c.getJSON(ctx, "/audio-features/"+trackID, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching audio features for %s: %w", trackID, err)
	}
	return &resp, nil
}

// getJSON performs a GET request and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
