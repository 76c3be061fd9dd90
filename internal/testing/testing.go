// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"cdshelf/internal/models"
)

// MockResolver is a test double for the metadata resolver.
// Lookup is invoked for each call; Calls counts invocations.
type MockResolver struct {
	Lookup func(ctx context.Context, barcode string) (*models.Album, error)
	Calls  int
}

func (m *MockResolver) LookupByBarcode(ctx context.Context, barcode string) (*models.Album, error) {
	m.Calls++
	if m.Lookup == nil {
		return nil, errors.New("no lookup configured")
	}
	return m.Lookup(ctx, barcode)
}

// MockEnricher is a test double for the catalog enricher.
type MockEnricher struct {
	Apply func(ctx context.Context, album *models.Album) *models.Album
	Calls int
}

func (m *MockEnricher) Enrich(ctx context.Context, album *models.Album) *models.Album {
	m.Calls++
	if m.Apply == nil {
		return album
	}
	return m.Apply(ctx, album)
}

// MockSession is a test double for the catalog session.
type MockSession struct {
	Authenticated bool
	AccessToken   string
}

func (m *MockSession) IsAuthenticated() bool { return m.Authenticated }

func (m *MockSession) Token() (string, error) {
	if !m.Authenticated {
		return "", errors.New("not authenticated")
	}
	return m.AccessToken, nil
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
