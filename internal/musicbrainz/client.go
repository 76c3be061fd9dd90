// package musicbrainz resolves barcodes to album metadata via the
// MusicBrainz registry and the Cover Art Archive.
//
// API shapes based on https://musicbrainz.org/doc/MusicBrainz_API
package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"cdshelf/internal/models"
	"cdshelf/internal/shared"
)

const (
	defaultBaseURL      = "https://musicbrainz.org/ws/2"
	defaultCoverArtURL  = "https://coverartarchive.org"
	defaultUserAgent    = "cdshelf/0.2.0 (https://github.com/cdshelf/cdshelf)"
	defaultFallbackName = "Unknown Artist"
	defaultFallbackALB  = "Unknown Album"
)

type artistCredit struct {
	Name string `json:"name"`
}

type mbTrack struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Length   int    `json:"length"`
	Position int    `json:"position"`
}

type mbMedia struct {
	Tracks []mbTrack `json:"tracks"`
}

// mbRelease represents a MusicBrainz release resource.
type mbRelease struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	ArtistCredit []artistCredit `json:"artist-credit"`
	Media        []mbMedia      `json:"media"`
}

type searchResponse struct {
	Releases []mbRelease `json:"releases"`
}

// Client queries the MusicBrainz registry. Every outbound registry call goes
// through the injected [Pacer]; the registry enforces a hard rate ceiling.
type Client struct {
	baseURL     string
	coverArtURL string
	userAgent   string
	pacer       Pacer
	httpClient  *http.Client
	logger      *log.Logger
}

// ClientOpts contains configuration options for creating a Client.
type ClientOpts struct {
	BaseURL     string
	CoverArtURL string
	UserAgent   string
	Pacer       Pacer
	HTTPClient  *http.Client
	Logger      *log.Logger
}

// NewClient creates a MusicBrainz client with the given options.
func NewClient(opts ClientOpts) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.CoverArtURL == "" {
		opts.CoverArtURL = defaultCoverArtURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Pacer == nil {
		opts.Pacer = NewPacer(time.Second)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Client{
		baseURL:     opts.BaseURL,
		coverArtURL: opts.CoverArtURL,
		userAgent:   opts.UserAgent,
		pacer:       opts.Pacer,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
	}
}

// get performs a paced GET against the registry and decodes the JSON response.
func (c *Client) get(ctx context.Context, endpoint string, result any) error {
	if err := c.pacer.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("musicbrainz API error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// LookupByBarcode resolves a barcode to an album record.
//
// The primary search call is fatal on any transport or HTTP failure
// ([shared.ErrLookupFailed]); a zero-result search yields
// [shared.ErrNotFound]. The follow-up track listing and cover art fetches
// degrade to an album without tracks or cover rather than failing the lookup.
func (c *Client) LookupByBarcode(ctx context.Context, barcode string) (*models.Album, error) {
	endpoint := fmt.Sprintf("/release?query=%s&fmt=json", url.QueryEscape("barcode:"+barcode))

	var search searchResponse
	if err := c.get(ctx, endpoint, &search); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrLookupFailed, err)
	}

	if len(search.Releases) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrNotFound, barcode)
	}

	release := search.Releases[0]

	artist := defaultFallbackName
	if len(release.ArtistCredit) > 0 && release.ArtistCredit[0].Name != "" {
		artist = release.ArtistCredit[0].Name
	}
	title := release.Title
	if title == "" {
		title = defaultFallbackALB
	}

	album := &models.Album{
		ID:       shared.GenerateID(),
		Barcode:  barcode,
		Artist:   artist,
		Title:    title,
		ScanTime: time.Now(),
		Status:   models.StatusFound,
	}

	tracks, err := c.ReleaseTracks(ctx, release.ID)
	if err != nil {
		c.logger.Warn("could not fetch track listing", "release", release.ID, "error", err)
	} else {
		album.Tracks = tracks
	}

	if coverURL, err := c.CoverArt(ctx, release.ID); err != nil {
		c.logger.Warn("could not fetch cover art", "release", release.ID, "error", err)
	} else if coverURL != "" {
		album.CoverURL = coverURL
	}

	return album, nil
}

// ReleaseTracks fetches the track listing for a release.
func (c *Client) ReleaseTracks(ctx context.Context, releaseID string) ([]models.Track, error) {
	endpoint := fmt.Sprintf("/release/%s?inc=recordings&fmt=json", releaseID)

	var release mbRelease
	if err := c.get(ctx, endpoint, &release); err != nil {
		return nil, err
	}

	var tracks []models.Track
	if len(release.Media) > 0 {
		for _, t := range release.Media[0].Tracks {
			tracks = append(tracks, models.Track{
				ID:          t.ID,
				Name:        t.Title,
				DurationMS:  t.Length,
				TrackNumber: t.Position,
			})
		}
	}

	return tracks, nil
}

// CoverArt resolves the front cover URL for a release via the Cover Art
// Archive. The archive answers with redirects; the final URL after following
// them is the cover location. Returns an empty URL when no cover exists.
//
// Cover art calls are not paced; the archive sits outside the registry's
// rate ceiling.
func (c *Client) CoverArt(ctx context.Context, releaseID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/release/%s/front", c.coverArtURL, releaseID), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil
	}

	return resp.Request.URL.String(), nil
}
