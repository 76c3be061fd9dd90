package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"cdshelf/internal/models"
	"cdshelf/internal/shared"
	mocks "cdshelf/internal/testing"
)

// fakeStore is an in-memory Store keyed by barcode.
type fakeStore struct {
	mu     sync.Mutex
	albums map[string]*models.Album
	addErr error
	dupErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{albums: make(map[string]*models.Album)}
}

func (s *fakeStore) IsDuplicate(barcode string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dupErr != nil {
		return false, s.dupErr
	}
	_, ok := s.albums[barcode]
	return ok, nil
}

func (s *fakeStore) Add(album *models.Album) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addErr != nil {
		return s.addErr
	}
	s.albums[album.Barcode] = album
	return nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.albums)
}

func resolvedAlbum(barcode string) *models.Album {
	return &models.Album{
		ID:       shared.GenerateID(),
		Barcode:  barcode,
		Artist:   "Massive Attack",
		Title:    "Mezzanine",
		ScanTime: time.Now(),
		Status:   models.StatusFound,
	}
}

func event(barcode string) models.ScanEvent {
	return models.ScanEvent{Code: barcode, Symbology: "ean_13", ObservedAt: time.Now()}
}

func TestCoordinatorProcess(t *testing.T) {
	ctx := context.Background()

	t.Run("Added", func(t *testing.T) {
		store := newFakeStore()
		resolver := &mocks.MockResolver{Lookup: func(_ context.Context, barcode string) (*models.Album, error) {
			return resolvedAlbum(barcode), nil
		}}
		enricher := &mocks.MockEnricher{Apply: func(_ context.Context, album *models.Album) *models.Album {
			enriched := *album
			enriched.CatalogURI = "spotify:album:49MNmJhZQewjt06rpwp6QR"
			return &enriched
		}}

		c := NewCoordinator(CoordinatorOpts{Store: store, Resolver: resolver, Enricher: enricher})
		n := c.Process(ctx, event("5099748113023"))

		if n.Kind != KindAdded {
			t.Fatalf("expected added, got %s (err: %v)", n.Kind, n.Err)
		}
		if n.Record == nil || n.Record.CatalogURI == "" {
			t.Error("added record should carry enrichment")
		}
		if store.count() != 1 {
			t.Errorf("expected 1 stored record, got %d", store.count())
		}
	})

	t.Run("Duplicate Skips Remote Calls", func(t *testing.T) {
		store := newFakeStore()
		store.albums["5099748113023"] = resolvedAlbum("5099748113023")
		resolver := &mocks.MockResolver{}

		c := NewCoordinator(CoordinatorOpts{Store: store, Resolver: resolver})
		n := c.Process(ctx, event("5099748113023"))

		if n.Kind != KindDuplicate {
			t.Fatalf("expected duplicate, got %s", n.Kind)
		}
		if resolver.Calls != 0 {
			t.Errorf("duplicate scan should make no resolver calls, got %d", resolver.Calls)
		}
	})

	t.Run("Not Found Is Not Persisted", func(t *testing.T) {
		store := newFakeStore()
		resolver := &mocks.MockResolver{Lookup: func(_ context.Context, barcode string) (*models.Album, error) {
			return nil, fmt.Errorf("%w: %s", shared.ErrNotFound, barcode)
		}}

		c := NewCoordinator(CoordinatorOpts{Store: store, Resolver: resolver})
		n := c.Process(ctx, event("9999999999999"))

		if n.Kind != KindNotFound {
			t.Fatalf("expected not_found, got %s", n.Kind)
		}
		if store.count() != 0 {
			t.Error("missed lookups must never be persisted")
		}

		// The same barcode stays eligible for a later retry.
		resolver.Lookup = func(_ context.Context, barcode string) (*models.Album, error) {
			return resolvedAlbum(barcode), nil
		}
		if n := c.Process(ctx, event("9999999999999")); n.Kind != KindAdded {
			t.Errorf("retry after miss should succeed, got %s", n.Kind)
		}
	})

	t.Run("Lookup Failure Is Fatal For The Scan", func(t *testing.T) {
		store := newFakeStore()
		resolver := &mocks.MockResolver{Lookup: func(context.Context, string) (*models.Album, error) {
			return nil, fmt.Errorf("%w: status 503", shared.ErrLookupFailed)
		}}

		c := NewCoordinator(CoordinatorOpts{Store: store, Resolver: resolver})
		n := c.Process(ctx, event("5099748113023"))

		if n.Kind != KindError {
			t.Fatalf("expected error, got %s", n.Kind)
		}
		if !errors.Is(n.Err, shared.ErrLookupFailed) {
			t.Errorf("expected ErrLookupFailed, got %v", n.Err)
		}
		if store.count() != 0 {
			t.Error("failed lookups must never be persisted")
		}
	})

	t.Run("Enrichment Failure Does Not Abort", func(t *testing.T) {
		store := newFakeStore()
		resolver := &mocks.MockResolver{Lookup: func(_ context.Context, barcode string) (*models.Album, error) {
			return resolvedAlbum(barcode), nil
		}}
		// A degrading enricher returns its input untouched.
		enricher := &mocks.MockEnricher{Apply: func(_ context.Context, album *models.Album) *models.Album {
			return album
		}}

		c := NewCoordinator(CoordinatorOpts{Store: store, Resolver: resolver, Enricher: enricher})
		n := c.Process(ctx, event("5099748113023"))

		if n.Kind != KindAdded {
			t.Fatalf("expected added despite degraded enrichment, got %s", n.Kind)
		}
		if n.Record.Status != models.StatusFound {
			t.Errorf("degraded enrichment should leave status found, got %s", n.Record.Status)
		}
		if n.Record.Playable() {
			t.Error("degraded enrichment should leave no catalog URI")
		}
	})

	t.Run("Nil Enricher", func(t *testing.T) {
		store := newFakeStore()
		resolver := &mocks.MockResolver{Lookup: func(_ context.Context, barcode string) (*models.Album, error) {
			return resolvedAlbum(barcode), nil
		}}

		c := NewCoordinator(CoordinatorOpts{Store: store, Resolver: resolver})
		if n := c.Process(ctx, event("5099748113023")); n.Kind != KindAdded {
			t.Errorf("pipeline should run without an enricher, got %s", n.Kind)
		}
	})

	t.Run("Persistence Failure", func(t *testing.T) {
		store := newFakeStore()
		store.addErr = fmt.Errorf("%w: disk full", shared.ErrPersistence)
		resolver := &mocks.MockResolver{Lookup: func(_ context.Context, barcode string) (*models.Album, error) {
			return resolvedAlbum(barcode), nil
		}}

		c := NewCoordinator(CoordinatorOpts{Store: store, Resolver: resolver})
		n := c.Process(ctx, event("5099748113023"))

		if n.Kind != KindError {
			t.Fatalf("expected error, got %s", n.Kind)
		}
		if !errors.Is(n.Err, shared.ErrPersistence) {
			t.Errorf("expected ErrPersistence, got %v", n.Err)
		}
	})

	t.Run("Dedup Check Failure", func(t *testing.T) {
		store := newFakeStore()
		store.dupErr = errors.New("database is locked")
		resolver := &mocks.MockResolver{}

		c := NewCoordinator(CoordinatorOpts{Store: store, Resolver: resolver})
		n := c.Process(ctx, event("5099748113023"))

		if n.Kind != KindError {
			t.Fatalf("expected error, got %s", n.Kind)
		}
		if resolver.Calls != 0 {
			t.Error("failed dedup check should make no resolver calls")
		}
	})

	t.Run("Concurrent Same Barcode", func(t *testing.T) {
		store := newFakeStore()
		inLookup := make(chan struct{})
		finish := make(chan struct{})
		resolver := &mocks.MockResolver{Lookup: func(_ context.Context, barcode string) (*models.Album, error) {
			close(inLookup)
			<-finish
			return resolvedAlbum(barcode), nil
		}}

		c := NewCoordinator(CoordinatorOpts{Store: store, Resolver: resolver})

		first := make(chan Notification, 1)
		go func() { first <- c.Process(ctx, event("5099748113023")) }()

		<-inLookup
		second := c.Process(ctx, event("5099748113023"))
		close(finish)

		if second.Kind != KindDuplicate {
			t.Errorf("concurrent scan of an in-flight barcode should be a duplicate, got %s", second.Kind)
		}
		if n := <-first; n.Kind != KindAdded {
			t.Errorf("first scan should complete as added, got %s", n.Kind)
		}
		if store.count() != 1 {
			t.Errorf("expected a single stored record, got %d", store.count())
		}
	})
}

func TestCoordinatorRun(t *testing.T) {
	t.Run("One Notification Per Event", func(t *testing.T) {
		store := newFakeStore()
		resolver := &mocks.MockResolver{Lookup: func(_ context.Context, barcode string) (*models.Album, error) {
			if barcode == "9999999999999" {
				return nil, fmt.Errorf("%w: %s", shared.ErrNotFound, barcode)
			}
			return resolvedAlbum(barcode), nil
		}}

		c := NewCoordinator(CoordinatorOpts{Store: store, Resolver: resolver})

		events := make(chan models.ScanEvent)
		notifications := make(chan Notification)

		go func() {
			defer close(events)
			for _, code := range []string{"5099748113023", "9999999999999", "5099748113023"} {
				events <- event(code)
			}
		}()
		go func() {
			defer close(notifications)
			c.Run(context.Background(), events, notifications)
		}()

		var kinds []Kind
		for n := range notifications {
			kinds = append(kinds, n.Kind)
		}

		want := []Kind{KindAdded, KindNotFound, KindDuplicate}
		if len(kinds) != len(want) {
			t.Fatalf("expected %d notifications, got %d", len(want), len(kinds))
		}
		for i, k := range want {
			if kinds[i] != k {
				t.Errorf("notification %d: expected %s, got %s", i, k, kinds[i])
			}
		}
	})

	t.Run("Stops On Context Cancel", func(t *testing.T) {
		store := newFakeStore()
		resolver := &mocks.MockResolver{Lookup: func(_ context.Context, barcode string) (*models.Album, error) {
			return resolvedAlbum(barcode), nil
		}}

		c := NewCoordinator(CoordinatorOpts{Store: store, Resolver: resolver})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		events := make(chan models.ScanEvent)
		notifications := make(chan Notification, 1)

		done := make(chan struct{})
		go func() {
			c.Run(ctx, events, notifications)
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Run should return once the context is cancelled")
		}
	})
}
