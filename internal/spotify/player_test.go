package spotify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cdshelf/internal/shared"
	mocks "cdshelf/internal/testing"
)

func TestPlayer(t *testing.T) {
	ctx := context.Background()

	var gotMethod, gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := newTestClient(srv, authedSession())

	t.Run("Play", func(t *testing.T) {
		if err := client.Play(ctx, "spotify:album:6dVIqQ8qmQ5GBnJ9shOYGE"); err != nil {
			t.Fatalf("play failed: %v", err)
		}
		if gotMethod != http.MethodPut || gotPath != "/me/player/play" {
			t.Errorf("expected PUT /me/player/play, got %s %s", gotMethod, gotPath)
		}
	})

	t.Run("Play Requires Context URI", func(t *testing.T) {
		if err := client.Play(ctx, ""); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Resume", func(t *testing.T) {
		if err := client.Resume(ctx); err != nil {
			t.Fatalf("resume failed: %v", err)
		}
		if gotMethod != http.MethodPut || gotPath != "/me/player/play" {
			t.Errorf("expected PUT /me/player/play, got %s %s", gotMethod, gotPath)
		}
	})

	t.Run("Pause", func(t *testing.T) {
		if err := client.Pause(ctx); err != nil {
			t.Fatalf("pause failed: %v", err)
		}
		if gotMethod != http.MethodPut || gotPath != "/me/player/pause" {
			t.Errorf("expected PUT /me/player/pause, got %s %s", gotMethod, gotPath)
		}
	})

	t.Run("Next And Previous", func(t *testing.T) {
		if err := client.Next(ctx); err != nil {
			t.Fatalf("next failed: %v", err)
		}
		if gotMethod != http.MethodPost || gotPath != "/me/player/next" {
			t.Errorf("expected POST /me/player/next, got %s %s", gotMethod, gotPath)
		}

		if err := client.Previous(ctx); err != nil {
			t.Fatalf("previous failed: %v", err)
		}
		if gotMethod != http.MethodPost || gotPath != "/me/player/previous" {
			t.Errorf("expected POST /me/player/previous, got %s %s", gotMethod, gotPath)
		}
	})

	t.Run("Seek", func(t *testing.T) {
		if err := client.Seek(ctx, 45000); err != nil {
			t.Fatalf("seek failed: %v", err)
		}
		if gotPath != "/me/player/seek" || gotQuery != "position_ms=45000" {
			t.Errorf("unexpected seek request: %s?%s", gotPath, gotQuery)
		}

		if err := client.Seek(ctx, -1); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for negative position, got %v", err)
		}
	})

	t.Run("Volume", func(t *testing.T) {
		if err := client.SetVolume(ctx, 65); err != nil {
			t.Fatalf("set volume failed: %v", err)
		}
		if gotPath != "/me/player/volume" || gotQuery != "volume_percent=65" {
			t.Errorf("unexpected volume request: %s?%s", gotPath, gotQuery)
		}

		for _, percent := range []int{-1, 101} {
			if err := client.SetVolume(ctx, percent); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument for %d, got %v", percent, err)
			}
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		unauthed := newTestClient(srv, &mocks.MockSession{})
		if err := unauthed.Pause(ctx); err == nil {
			t.Error("expected error without a session token")
		}
	})
}
