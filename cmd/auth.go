package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"cdshelf/internal/server"
	"cdshelf/internal/shared"
	"cdshelf/internal/spotify"
	"cdshelf/internal/ui"
)

// AuthLogin runs the implicit grant browser flow and stores the resulting
// credential. The access token arrives in the redirect fragment; a loopback
// server relays it into the session store.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	clientID := r.config.Credentials.Spotify.ClientID
	if clientID == "" {
		return fmt.Errorf("%w: Spotify client_id must be set in config.toml", shared.ErrMissingCredentials)
	}

	redirectURI := r.config.Credentials.Spotify.RedirectURI
	if redirectURI == "" {
		redirectURI = fmt.Sprintf("http://%s:%d/callback", r.config.Server.Host, r.config.Server.Port)
	}

	sess, err := r.session()
	if err != nil {
		return err
	}

	state := shared.GenerateID()
	handler := server.NewFragmentHandler(state)

	router := server.NewBasicRouter()
	router.Handler(handler)

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Error("callback server failed", "error", err)
		}
	}()
	defer srv.Shutdown(context.Background())

	authConfig := spotify.NewAuthConfig(clientID, redirectURI)
	authURL := spotify.AuthCodeURL(authConfig, state)

	r.writePlain("Opening browser for Spotify authorization...\n")
	r.writePlain("%s\n", ui.Help(authURL))
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser, visit the URL manually: %v", err)
	}

	timeout := time.Duration(cmd.Int("timeout")) * time.Second
	select {
	case result := <-handler.Result():
		if result.Error() != nil {
			return fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
		}
		if err := sess.Save(*result.Credential); err != nil {
			return err
		}
		r.logger.Info("credential stored", "expires_at", result.Credential.ExpiresAt)
		return r.writePlain("%s token valid until %s\n", ui.OK("✓ authenticated"),
			result.Credential.ExpiresAt.Format(time.RFC1123))
	case <-time.After(timeout):
		return fmt.Errorf("%w: timed out waiting for authorization", shared.ErrAuthFailed)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AuthStatus reports whether a valid credential is stored.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.session()
	if err != nil {
		return err
	}

	cred, err := sess.Get()
	if err != nil {
		return err
	}

	if cred == nil {
		return r.writePlain("%s run 'cdshelf auth login'\n", ui.Warn("✗ not authenticated:"))
	}

	r.writePlain("%s token valid until %s\n", ui.OK("✓ authenticated"), cred.ExpiresAt.Format(time.RFC1123))
	return nil
}

// AuthLogout clears the stored credential.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.session()
	if err != nil {
		return err
	}

	if err := sess.Clear(); err != nil {
		return err
	}

	r.logger.Info("credential cleared")
	return r.writePlain("%s\n", ui.OK("✓ logged out"))
}
