package spotify

import (
	"golang.org/x/oauth2"
)

const authURL = "https://accounts.spotify.com/authorize"

// Scopes required for enrichment, playlist creation, and transport control.
var scopes = []string{
	"user-read-private",
	"user-read-email",
	"playlist-modify-public",
	"playlist-modify-private",
	"user-modify-playback-state",
	"user-read-playback-state",
}

// NewAuthConfig builds the OAuth2 config for the implicit grant flow.
// No client secret is involved; the token arrives in the redirect fragment.
func NewAuthConfig(clientID, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURI,
		Scopes:      scopes,
		Endpoint:    oauth2.Endpoint{AuthURL: authURL},
	}
}

// AuthCodeURL returns the authorization URL for user login with
// response_type=token (implicit grant).
func AuthCodeURL(config *oauth2.Config, state string) string {
	return config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("response_type", "token"),
		oauth2.SetAuthURLParam("show_dialog", "true"),
	)
}
