// package formatter provides pure transforms between record sets and their
// delimited-text (CSV) and playlist (M3U) representations.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"cdshelf/internal/models"
	"cdshelf/internal/shared"
)

// utf8BOM prefixes CSV output for spreadsheet-tool compatibility.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var csvHeader = []string{"Artist", "Album", "Barcode", "Catalog_URI", "Catalog_Id", "Cover_URL", "Date_Added", "Status"}

// ToCSV converts records to delimited text with a BOM prefix and the fixed
// header row. Fields containing delimiters, quotes, or newlines are
// quote-wrapped with doubled internal quotes.
func ToCSV(albums []*models.Album) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	writer := csv.NewWriter(&buf)
	if err := writer.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, album := range albums {
		record := []string{
			album.Artist,
			album.Title,
			album.Barcode,
			album.CatalogURI,
			album.CatalogID,
			album.CoverURL,
			album.ScanTime.UTC().Format("2006-01-02"),
			string(album.Status),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ParseCSV is the inverse of [ToCSV]. Columns are located by header name
// (case-insensitive substring match), so exports from older versions or
// hand-edited files still parse. Parsed records get fresh ids and scan times.
func ParseCSV(data []byte) ([]*models.Album, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: CSV file is empty", shared.ErrInvalidInput)
	}

	find := func(name string) int {
		for i, h := range rows[0] {
			if strings.Contains(strings.ToLower(strings.TrimSpace(h)), name) {
				return i
			}
		}
		return -1
	}

	artistIdx := find("artist")
	albumIdx := find("album")
	barcodeIdx := find("barcode")
	uriIdx := find("catalog_uri")
	coverIdx := find("cover")

	if artistIdx == -1 || albumIdx == -1 {
		return nil, fmt.Errorf("%w: CSV must contain Artist and Album columns", shared.ErrInvalidInput)
	}

	field := func(row []string, idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var albums []*models.Album
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}

		artist := field(row, artistIdx)
		title := field(row, albumIdx)
		if artist == "" {
			artist = "Unknown Artist"
		}
		if title == "" {
			title = "Unknown Album"
		}

		album := &models.Album{
			ID:         shared.GenerateID(),
			Artist:     artist,
			Title:      title,
			Barcode:    field(row, barcodeIdx),
			CatalogURI: field(row, uriIdx),
			CoverURL:   field(row, coverIdx),
			ScanTime:   time.Now(),
			Status:     models.StatusFound,
		}
		albums = append(albums, album)
	}

	return albums, nil
}

// ToM3U converts the playable records to extended M3U playlist text: the
// file-type marker line followed by one metadata/URI line pair per record.
// Raises [shared.ErrNoPlayableEntries] when no record carries a catalog URI.
func ToM3U(albums []*models.Album) ([]byte, error) {
	var buf bytes.Buffer

	count := 0
	buf.WriteString("#EXTM3U\n")
	for _, album := range albums {
		if !album.Playable() {
			continue
		}
		// Album-level entries carry no duration, -1 marks it unknown.
		buf.WriteString(fmt.Sprintf("#EXTINF:-1,%s - %s\n", album.Artist, album.Title))
		buf.WriteString(album.CatalogURI + "\n")
		count++
	}

	if count == 0 {
		return nil, shared.ErrNoPlayableEntries
	}

	return buf.Bytes(), nil
}

// Filename generates an export filename carrying the current date.
func Filename(prefix, extension string) string {
	return fmt.Sprintf("%s-%s.%s", prefix, time.Now().UTC().Format("2006-01-02"), extension)
}

// WriteCSVExport writes the CSV rendition of the records to path, defaulting
// the filename to cd-collection-<date>.csv.
func WriteCSVExport(albums []*models.Album, path string) (string, error) {
	if path == "" {
		path = Filename("cd-collection", "csv")
	}

	data, err := ToCSV(albums)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return path, nil
}

// WriteM3UExport writes the M3U rendition of the records to path, defaulting
// the filename to cd-playlist-<date>.m3u.
func WriteM3UExport(albums []*models.Album, path string) (string, error) {
	if path == "" {
		path = Filename("cd-playlist", "m3u")
	}

	data, err := ToM3U(albums)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write M3U file: %w", err)
	}

	return path, nil
}
