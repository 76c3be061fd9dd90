package models

import (
	"fmt"
	"time"
)

// Status describes the lifecycle state of an [Album] record.
type Status string

const (
	StatusPending  Status = "pending"
	StatusFound    Status = "found"
	StatusNotFound Status = "not_found"
	StatusError    Status = "error"
)

// Valid reports whether s is one of the known status values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusFound, StatusNotFound, StatusError:
		return true
	}
	return false
}

// ScanEvent is a decoded barcode emitted by the scanner collaborator.
// Consumed exactly once by the import coordinator.
type ScanEvent struct {
	Code       string
	Symbology  string
	ObservedAt time.Time
}

// Track is one entry of a resolved album track listing.
type Track struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DurationMS  int    `json:"duration_ms"`
	TrackNumber int    `json:"track_number"`
}

// Album is the persisted unit of the collection.
//
// A record is created by the import coordinator after a successful metadata
// resolve, optionally enriched with catalog fields before first persistence,
// and never mutated after being stored except explicit deletion.
type Album struct {
	ID         string    `json:"id"`
	Barcode    string    `json:"barcode"`
	Artist     string    `json:"artist"`
	Title      string    `json:"title"`
	CoverURL   string    `json:"cover_url,omitempty"`
	CatalogURI string    `json:"catalog_uri,omitempty"`
	CatalogID  string    `json:"catalog_id,omitempty"`
	ScanTime   time.Time `json:"scan_time"`
	Status     Status    `json:"status"`
	Tracks     []Track   `json:"tracks,omitempty"`
}

// Validate checks the record invariants before persistence.
//
// A found record always carries a non-empty artist and title, and pending
// records are transient and must never reach the store.
func (a *Album) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("album id is required")
	}
	if !a.Status.Valid() {
		return fmt.Errorf("invalid status %q", a.Status)
	}
	if a.Status == StatusPending {
		return fmt.Errorf("pending records are not persistable")
	}
	if a.Status == StatusFound && (a.Artist == "" || a.Title == "") {
		return fmt.Errorf("found record requires artist and title")
	}
	return nil
}

// Playable reports whether the record carries a catalog URI.
func (a *Album) Playable() bool {
	return a.CatalogURI != ""
}

// Credential is the catalog bearer token plus its expiry instant.
// Treated as absent once now >= ExpiresAt; there is no implicit renewal.
type Credential struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Expired reports whether the credential is stale at the given instant.
func (c Credential) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
