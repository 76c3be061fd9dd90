// package spotify implements the catalog service client used for record
// enrichment, playlist creation, and playback transport control.
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"

	"cdshelf/internal/models"
	"cdshelf/internal/shared"
)

const defaultBaseURL = "https://api.spotify.com/v1"

// Session yields the bearer token gating every catalog call.
// Implemented by [session.Store].
type Session interface {
	IsAuthenticated() bool
	Token() (string, error)
}

// User represents the current Spotify user profile.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Product     string `json:"product"`
}

// AlbumItem represents a Spotify album search hit.
type AlbumItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URI         string `json:"uri"`
	TotalTracks int    `json:"total_tracks"`
}

type albumsPage struct {
	Items []AlbumItem `json:"items"`
}

type searchResponse struct {
	Albums albumsPage `json:"albums"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// Playlist represents a created Spotify playlist.
type Playlist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	URI          string       `json:"uri"`
	ExternalURLs externalURLs `json:"external_urls"`
}

// URL returns the playlist's public web URL.
func (p *Playlist) URL() string { return p.ExternalURLs.Spotify }

// Client is the bearer-token HTTP client for the Spotify Web API.
type Client struct {
	baseURL    string
	session    Session
	httpClient *http.Client
	logger     *log.Logger
}

// ClientOpts contains configuration options for creating a Client.
type ClientOpts struct {
	BaseURL    string
	Session    Session
	HTTPClient *http.Client
	Logger     *log.Logger
}

// NewClient creates a Spotify client with the given options.
func NewClient(opts ClientOpts) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Client{
		baseURL:    opts.BaseURL,
		session:    opts.Session,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
	}
}

// doRequest performs an authenticated HTTP request against the Spotify API.
//
// A missing or expired credential yields [shared.ErrNotAuthenticated];
// non-2xx responses (other than 204 on bodyless calls) are errors.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	token, err := c.session.Token()
	if err != nil {
		return err
	}

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("spotify API error: status %d", resp.StatusCode)
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Me retrieves the current authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SearchAlbum searches the catalog for an album by artist and title and
// returns the first hit, or nil when nothing matches.
func (c *Client) SearchAlbum(ctx context.Context, artist, title string) (*AlbumItem, error) {
	query := url.QueryEscape(fmt.Sprintf("artist:%s album:%s", artist, title))
	endpoint := fmt.Sprintf("/search?q=%s&type=album&limit=1", query)

	var response searchResponse
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	if len(response.Albums.Items) == 0 {
		return nil, nil
	}

	item := response.Albums.Items[0]
	return &item, nil
}

// Enrich attaches the catalog URI and album id to a resolved record.
//
// Enrichment never aborts the pipeline: without an authenticated session, or
// on any search failure, the input record is returned unchanged. The record
// status is not touched either way.
func (c *Client) Enrich(ctx context.Context, album *models.Album) *models.Album {
	if !c.session.IsAuthenticated() {
		return album
	}

	item, err := c.SearchAlbum(ctx, album.Artist, album.Title)
	if err != nil {
		c.logger.Warn("catalog enrichment degraded", "barcode", album.Barcode, "error", err)
		return album
	}
	if item == nil {
		return album
	}

	enriched := *album
	enriched.CatalogURI = item.URI
	// spotify:album:<id>
	if parts := strings.Split(item.URI, ":"); len(parts) == 3 {
		enriched.CatalogID = parts[2]
	}

	return &enriched
}

// CreatePlaylist creates a public playlist for the current user from the
// playable records and returns it. Raises [shared.ErrNoPlayableEntries]
// when no record carries a catalog URI.
func (c *Client) CreatePlaylist(ctx context.Context, name string, albums []*models.Album) (*Playlist, error) {
	playable := 0
	for _, a := range albums {
		if a.Playable() {
			playable++
		}
	}
	if playable == 0 {
		return nil, shared.ErrNoPlayableEntries
	}

	user, err := c.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}

	var playlist Playlist
	body := map[string]any{
		"name":        name,
		"description": "Created by cdshelf",
		"public":      true,
	}
	endpoint := fmt.Sprintf("/users/%s/playlists", user.ID)
	if err := c.doRequest(ctx, http.MethodPost, endpoint, body, &playlist); err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}

	return &playlist, nil
}
