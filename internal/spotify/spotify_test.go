package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cdshelf/internal/models"
	"cdshelf/internal/shared"
	mocks "cdshelf/internal/testing"
)

func authedSession() *mocks.MockSession {
	return &mocks.MockSession{Authenticated: true, AccessToken: "test-token"}
}

func newTestClient(srv *httptest.Server, session Session) *Client {
	return NewClient(ClientOpts{
		BaseURL:    srv.URL,
		Session:    session,
		HTTPClient: srv.Client(),
	})
}

func resolvedAlbum() *models.Album {
	return &models.Album{
		ID:       "id-1",
		Barcode:  "0724384260958",
		Artist:   "Radiohead",
		Title:    "OK Computer",
		ScanTime: time.Now(),
		Status:   models.StatusFound,
	}
}

func TestSearchAlbum(t *testing.T) {
	ctx := context.Background()

	t.Run("First Hit", func(t *testing.T) {
		var gotAuth, gotQuery string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotQuery = r.URL.Query().Get("q")
			fmt.Fprint(w, `{"albums": {"items": [
				{"id": "6dVIqQ8qmQ5GBnJ9shOYGE", "name": "OK Computer", "uri": "spotify:album:6dVIqQ8qmQ5GBnJ9shOYGE", "total_tracks": 12},
				{"id": "other", "name": "OKNOTOK", "uri": "spotify:album:other"}
			]}}`)
		}))
		defer srv.Close()

		item, err := newTestClient(srv, authedSession()).SearchAlbum(ctx, "Radiohead", "OK Computer")
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}

		if gotAuth != "Bearer test-token" {
			t.Errorf("expected bearer header, got %q", gotAuth)
		}
		if gotQuery != "artist:Radiohead album:OK Computer" {
			t.Errorf("unexpected query: %q", gotQuery)
		}
		if item == nil || item.URI != "spotify:album:6dVIqQ8qmQ5GBnJ9shOYGE" {
			t.Errorf("expected first hit, got %+v", item)
		}
	})

	t.Run("No Match", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"albums": {"items": []}}`)
		}))
		defer srv.Close()

		item, err := newTestClient(srv, authedSession()).SearchAlbum(ctx, "Nobody", "Nothing")
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if item != nil {
			t.Errorf("expected nil for no match, got %+v", item)
		}
	})

	t.Run("API Error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		if _, err := newTestClient(srv, authedSession()).SearchAlbum(ctx, "a", "b"); err == nil {
			t.Error("expected error for non-2xx response")
		}
	})
}

func TestEnrich(t *testing.T) {
	ctx := context.Background()

	t.Run("Attaches Catalog Fields", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"albums": {"items": [{"id": "6dVIqQ8qmQ5GBnJ9shOYGE", "uri": "spotify:album:6dVIqQ8qmQ5GBnJ9shOYGE"}]}}`)
		}))
		defer srv.Close()

		album := resolvedAlbum()
		enriched := newTestClient(srv, authedSession()).Enrich(ctx, album)

		if enriched.CatalogURI != "spotify:album:6dVIqQ8qmQ5GBnJ9shOYGE" {
			t.Errorf("expected catalog URI, got %q", enriched.CatalogURI)
		}
		if enriched.CatalogID != "6dVIqQ8qmQ5GBnJ9shOYGE" {
			t.Errorf("expected catalog id, got %q", enriched.CatalogID)
		}
		if enriched.Status != models.StatusFound {
			t.Errorf("enrichment should not touch status, got %s", enriched.Status)
		}
		if album.CatalogURI != "" {
			t.Error("input record should not be mutated")
		}
	})

	t.Run("Unauthenticated Is A No-Op", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request should be made without a session")
		}))
		defer srv.Close()

		album := resolvedAlbum()
		enriched := newTestClient(srv, &mocks.MockSession{}).Enrich(ctx, album)
		if enriched != album {
			t.Error("unauthenticated enrichment should return the input unchanged")
		}
	})

	t.Run("Search Failure Is A No-Op", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		album := resolvedAlbum()
		enriched := newTestClient(srv, authedSession()).Enrich(ctx, album)
		if enriched != album {
			t.Error("failed enrichment should return the input unchanged")
		}
	})

	t.Run("No Match Is A No-Op", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"albums": {"items": []}}`)
		}))
		defer srv.Close()

		album := resolvedAlbum()
		enriched := newTestClient(srv, authedSession()).Enrich(ctx, album)
		if enriched != album {
			t.Error("matchless enrichment should return the input unchanged")
		}
	})
}

func TestCreatePlaylist(t *testing.T) {
	ctx := context.Background()

	playable := func() []*models.Album {
		album := resolvedAlbum()
		album.CatalogURI = "spotify:album:6dVIqQ8qmQ5GBnJ9shOYGE"
		return []*models.Album{album}
	}

	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/me":
				fmt.Fprint(w, `{"id": "user-1", "display_name": "Tester"}`)
			case "/users/user-1/playlists":
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				fmt.Fprint(w, `{"id": "pl-1", "name": "CD Import", "uri": "spotify:playlist:pl-1", "external_urls": {"spotify": "https://open.spotify.com/playlist/pl-1"}}`)
			default:
				t.Errorf("unexpected path: %s", r.URL.Path)
				http.NotFound(w, r)
			}
		}))
		defer srv.Close()

		playlist, err := newTestClient(srv, authedSession()).CreatePlaylist(ctx, "CD Import", playable())
		if err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}
		if playlist.ID != "pl-1" {
			t.Errorf("expected playlist pl-1, got %s", playlist.ID)
		}
		if playlist.URL() != "https://open.spotify.com/playlist/pl-1" {
			t.Errorf("unexpected playlist URL: %s", playlist.URL())
		}
	})

	t.Run("No Playable Entries", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request should be made without playable records")
		}))
		defer srv.Close()

		_, err := newTestClient(srv, authedSession()).CreatePlaylist(ctx, "CD Import", []*models.Album{resolvedAlbum()})
		if !errors.Is(err, shared.ErrNoPlayableEntries) {
			t.Errorf("expected ErrNoPlayableEntries, got %v", err)
		}
	})
}

func TestMe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me" {
			t.Errorf("expected /me, got %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"id": "user-1", "display_name": "Tester", "product": "premium"}`)
	}))
	defer srv.Close()

	user, err := newTestClient(srv, authedSession()).Me(context.Background())
	if err != nil {
		t.Fatalf("failed to get profile: %v", err)
	}
	if user.ID != "user-1" || user.Product != "premium" {
		t.Errorf("unexpected profile: %+v", user)
	}
}
