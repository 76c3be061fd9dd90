package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"cdshelf/internal/models"
	"cdshelf/internal/shared"
)

// AlbumRepository persists [models.Album] records in SQLite, keyed by id
// with secondary lookups by barcode and ordering by scan time.
type AlbumRepository struct {
	db *sql.DB
}

// NewAlbumRepository creates a new AlbumRepository with the given database connection
func NewAlbumRepository(db *sql.DB) *AlbumRepository {
	return &AlbumRepository{db: db}
}

const albumColumns = "id, barcode, artist, title, cover_url, catalog_uri, catalog_id, status, tracks, scan_time"

// Add upserts a record by id. Write failures wrap [shared.ErrPersistence].
func (r *AlbumRepository) Add(album *models.Album) error {
	if err := album.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tracks, err := encodeTracks(album.Tracks)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrPersistence, err)
	}

	query := `
		INSERT INTO albums (` + albumColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			barcode = excluded.barcode,
			artist = excluded.artist,
			title = excluded.title,
			cover_url = excluded.cover_url,
			catalog_uri = excluded.catalog_uri,
			catalog_id = excluded.catalog_id,
			status = excluded.status,
			tracks = excluded.tracks,
			scan_time = excluded.scan_time
	`

	_, err = r.db.Exec(query,
		album.ID,
		album.Barcode,
		album.Artist,
		album.Title,
		nullable(album.CoverURL),
		nullable(album.CatalogURI),
		nullable(album.CatalogID),
		string(album.Status),
		tracks,
		album.ScanTime,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrPersistence, err)
	}

	return nil
}

// Get retrieves a record by id.
func (r *AlbumRepository) Get(id string) (*models.Album, error) {
	row := r.db.QueryRow("SELECT "+albumColumns+" FROM albums WHERE id = ?", id)
	album, err := scanAlbum(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("album not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan album: %w", err)
	}
	return album, nil
}

// GetByBarcode retrieves the record for a barcode, or nil when none exists.
func (r *AlbumRepository) GetByBarcode(barcode string) (*models.Album, error) {
	row := r.db.QueryRow("SELECT "+albumColumns+" FROM albums WHERE barcode = ? LIMIT 1", barcode)
	album, err := scanAlbum(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan album: %w", err)
	}
	return album, nil
}

// All retrieves every record ordered by scan time, most recent first.
func (r *AlbumRepository) All() ([]*models.Album, error) {
	rows, err := r.db.Query("SELECT " + albumColumns + " FROM albums ORDER BY scan_time DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query albums: %w", err)
	}
	defer rows.Close()

	var albums []*models.Album
	for rows.Next() {
		album, err := scanAlbum(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan album: %w", err)
		}
		albums = append(albums, album)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return albums, nil
}

// Delete removes a record by id.
func (r *AlbumRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM albums WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrPersistence, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("album not found: %s", id)
	}

	return nil
}

// Clear removes every record.
func (r *AlbumRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM albums"); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrPersistence, err)
	}
	return nil
}

// Count returns the number of stored records.
func (r *AlbumRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM albums").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count albums: %w", err)
	}
	return count, nil
}

// IsDuplicate reports whether a record for the barcode already exists.
func (r *AlbumRepository) IsDuplicate(barcode string) (bool, error) {
	album, err := r.GetByBarcode(barcode)
	if err != nil {
		return false, err
	}
	return album != nil, nil
}

// scanAlbum scans a row into an album using the given scan function,
// covering both [sql.Row] and [sql.Rows].
func scanAlbum(scan func(dest ...any) error) (*models.Album, error) {
	var (
		id         string
		barcode    string
		artist     string
		title      string
		coverURL   sql.NullString
		catalogURI sql.NullString
		catalogID  sql.NullString
		status     string
		tracks     sql.NullString
		scanTime   time.Time
	)

	if err := scan(&id, &barcode, &artist, &title, &coverURL, &catalogURI, &catalogID, &status, &tracks, &scanTime); err != nil {
		return nil, err
	}

	album := &models.Album{
		ID:         id,
		Barcode:    barcode,
		Artist:     artist,
		Title:      title,
		CoverURL:   coverURL.String,
		CatalogURI: catalogURI.String,
		CatalogID:  catalogID.String,
		Status:     models.Status(status),
		ScanTime:   scanTime,
	}

	if tracks.Valid && tracks.String != "" {
		if err := json.Unmarshal([]byte(tracks.String), &album.Tracks); err != nil {
			return nil, fmt.Errorf("failed to decode tracks: %w", err)
		}
	}

	return album, nil
}

// encodeTracks serializes the optional track listing, NULL when absent.
func encodeTracks(tracks []models.Track) (any, error) {
	if len(tracks) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(tracks)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// nullable maps empty strings to NULL so optional fields are stored as
// absent rather than empty.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
