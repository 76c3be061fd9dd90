// package importer orchestrates the scan-to-record ingestion pipeline:
// dedup check, rate-limited metadata resolution, best-effort catalog
// enrichment, and persistence, emitting one notification per scan.
package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"cdshelf/internal/models"
	"cdshelf/internal/shared"
)

// Store is the subset of the collection repository the pipeline needs.
type Store interface {
	IsDuplicate(barcode string) (bool, error)
	Add(album *models.Album) error
}

// Resolver resolves a barcode to album metadata.
type Resolver interface {
	LookupByBarcode(ctx context.Context, barcode string) (*models.Album, error)
}

// Enricher attaches catalog data to a resolved record, best-effort.
type Enricher interface {
	Enrich(ctx context.Context, album *models.Album) *models.Album
}

// Kind classifies the outcome of a single pipeline run.
type Kind string

const (
	KindAdded     Kind = "added"
	KindDuplicate Kind = "duplicate"
	KindNotFound  Kind = "not_found"
	KindError     Kind = "error"
)

// Notification is the status event emitted for each consumed scan.
// Record is set only for KindAdded; Err only for KindError.
type Notification struct {
	Kind    Kind
	Barcode string
	Record  *models.Album
	Err     error
}

// Coordinator runs the ingestion pipeline for incoming scan events.
type Coordinator struct {
	store    Store
	resolver Resolver
	enricher Enricher
	logger   *log.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// CoordinatorOpts contains the dependencies for creating a Coordinator.
type CoordinatorOpts struct {
	Store    Store
	Resolver Resolver
	Enricher Enricher
	Logger   *log.Logger
}

// NewCoordinator creates a Coordinator with the provided dependencies.
func NewCoordinator(opts CoordinatorOpts) *Coordinator {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Coordinator{
		store:    opts.Store,
		resolver: opts.Resolver,
		enricher: opts.Enricher,
		logger:   opts.Logger,
		inFlight: make(map[string]struct{}),
	}
}

// Process runs the pipeline for one scan event and returns its outcome.
//
// Sequence: dedup check (no remote calls on a hit), metadata resolve
// (fatal on failure, stop on miss), catalog enrichment (best-effort),
// persistence, added notification. Near-simultaneous scans of the same
// barcode are serialized by a per-barcode in-flight claim so both cannot
// pass the dedup check before either persists.
func (c *Coordinator) Process(ctx context.Context, event models.ScanEvent) Notification {
	barcode := event.Code

	if !c.claim(barcode) {
		return Notification{Kind: KindDuplicate, Barcode: barcode}
	}
	defer c.release(barcode)

	dup, err := c.store.IsDuplicate(barcode)
	if err != nil {
		return Notification{Kind: KindError, Barcode: barcode, Err: fmt.Errorf("dedup check: %w", err)}
	}
	if dup {
		c.logger.Info("duplicate scan", "barcode", barcode)
		return Notification{Kind: KindDuplicate, Barcode: barcode}
	}

	album, err := c.resolver.LookupByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			c.logger.Info("no release for barcode", "barcode", barcode)
			return Notification{Kind: KindNotFound, Barcode: barcode}
		}
		c.logger.Error("metadata lookup failed", "barcode", barcode, "error", err)
		return Notification{Kind: KindError, Barcode: barcode, Err: err}
	}

	enriched := album
	if c.enricher != nil {
		enriched = c.enricher.Enrich(ctx, album)
	}

	if err := c.store.Add(enriched); err != nil {
		c.logger.Error("failed to persist record", "barcode", barcode, "error", err)
		return Notification{Kind: KindError, Barcode: barcode, Err: err}
	}

	c.logger.Info("record added", "barcode", barcode, "artist", enriched.Artist, "title", enriched.Title)
	return Notification{Kind: KindAdded, Barcode: barcode, Record: enriched}
}

// Run consumes scan events until the channel closes or the context is
// cancelled, sending one notification per event. Stopping the scan source
// does not cancel an in-flight run for an already-captured event.
func (c *Coordinator) Run(ctx context.Context, events <-chan models.ScanEvent, notifications chan<- Notification) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			notifications <- c.Process(ctx, event)
		}
	}
}

// claim marks a barcode as in flight; returns false when another run for
// the same barcode has not finished yet.
func (c *Coordinator) claim(barcode string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[barcode]; busy {
		return false
	}
	c.inFlight[barcode] = struct{}{}
	return true
}

func (c *Coordinator) release(barcode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, barcode)
}
