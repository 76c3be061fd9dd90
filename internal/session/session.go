// package session holds the catalog credential and its expiry check.
//
// Authentication itself is established externally through the implicit grant
// redirect flow; this package only stores the resulting token. There is no
// token refresh: an expired credential deauthenticates the user and
// re-authentication is the only way to obtain a new one.
package session

import (
	"database/sql"
	"fmt"
	"time"

	"cdshelf/internal/models"
	"cdshelf/internal/shared"
)

// Store persists a single [models.Credential] in the durable scalar slot.
//
// Expiry is evaluated lazily on every read: reading an expired credential
// clears the stored row as a side effect.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore creates a credential store over the given database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Get returns the stored credential, or absent (nil, nil) when none exists
// or the stored one has expired. An expired credential is removed before
// returning.
func (s *Store) Get() (*models.Credential, error) {
	var (
		accessToken string
		expiresAt   time.Time
	)

	err := s.db.QueryRow("SELECT access_token, expires_at FROM credentials WHERE id = 1").
		Scan(&accessToken, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credential: %w", err)
	}

	cred := models.Credential{AccessToken: accessToken, ExpiresAt: expiresAt}
	if cred.Expired(s.now()) {
		if err := s.Clear(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return &cred, nil
}

// Save stores the credential, replacing any previous one.
func (s *Store) Save(cred models.Credential) error {
	if cred.AccessToken == "" {
		return fmt.Errorf("%w: empty access token", shared.ErrInvalidArgument)
	}

	_, err := s.db.Exec(`
		INSERT INTO credentials (id, access_token, expires_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET access_token = excluded.access_token, expires_at = excluded.expires_at
	`, cred.AccessToken, cred.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}

	return nil
}

// Clear removes the stored credential.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM credentials WHERE id = 1"); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether a valid credential is currently stored.
func (s *Store) IsAuthenticated() bool {
	cred, err := s.Get()
	return err == nil && cred != nil
}

// Token returns the bearer token for catalog calls, or
// [shared.ErrNotAuthenticated] when no valid credential exists.
func (s *Store) Token() (string, error) {
	cred, err := s.Get()
	if err != nil {
		return "", err
	}
	if cred == nil {
		return "", shared.ErrNotAuthenticated
	}
	return cred.AccessToken, nil
}
