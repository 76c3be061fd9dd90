package spotify

import (
	"context"
	"fmt"
	"net/http"

	"cdshelf/internal/shared"
)

// Transport control over the catalog player endpoints. All calls require an
// authenticated session and target the user's currently active device.

// Play starts playback of the given context URI (e.g. spotify:album:...).
func (c *Client) Play(ctx context.Context, contextURI string) error {
	if contextURI == "" {
		return fmt.Errorf("%w: context URI", shared.ErrMissingArgument)
	}
	body := map[string]any{"context_uri": contextURI}
	return c.doRequest(ctx, http.MethodPut, "/me/player/play", body, nil)
}

// Resume continues playback of the current context.
func (c *Client) Resume(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodPut, "/me/player/play", nil, nil)
}

// Pause pauses playback.
func (c *Client) Pause(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodPut, "/me/player/pause", nil, nil)
}

// Next skips to the next track.
func (c *Client) Next(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodPost, "/me/player/next", nil, nil)
}

// Previous skips to the previous track.
func (c *Client) Previous(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodPost, "/me/player/previous", nil, nil)
}

// Seek moves the playback position, in milliseconds.
func (c *Client) Seek(ctx context.Context, positionMS int) error {
	if positionMS < 0 {
		return fmt.Errorf("%w: position must be >= 0", shared.ErrInvalidArgument)
	}
	endpoint := fmt.Sprintf("/me/player/seek?position_ms=%d", positionMS)
	return c.doRequest(ctx, http.MethodPut, endpoint, nil, nil)
}

// SetVolume sets the playback volume as a percentage (0-100).
func (c *Client) SetVolume(ctx context.Context, percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("%w: volume must be between 0 and 100", shared.ErrInvalidArgument)
	}
	endpoint := fmt.Sprintf("/me/player/volume?volume_percent=%d", percent)
	return c.doRequest(ctx, http.MethodPut, endpoint, nil, nil)
}
