package auth

import (
	"errors"
	"fmt"
	"time"
)

// Credentials holds the Supabase project secrets the mirror needs.
type Credentials struct {
	Project      string    `json:"project"`
	URL          string    `json:"url"`
	ServiceKey   string    `json:"service_key"`
	DSN          string    `json:"dsn"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore is the interface for storing and retrieving project credentials
type CredentialStore interface {
	// Store saves credentials for a project
	Store(creds *Credentials) error

	// Retrieve gets credentials for a project
	Retrieve(project string) (*Credentials, error)

	// Delete removes credentials for a project
	Delete(project string) error

	// Exists checks if credentials exist for a project
	Exists(project string) bool
}

// Manager handles credential storage with fallback mechanisms
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a credential manager backed by the system keychain,
// falling back to environment variables when no keychain is available.
func NewManager() *Manager {
	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}
}

// NewManagerWithStores creates a Manager with explicit stores (used in tests).
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves credentials using the first store that accepts them
func (m *Manager) Store(creds *Credentials) error {
	if creds == nil || creds.Project == "" {
		return ErrInvalidCredentials
	}
	if creds.ServiceKey == "" {
		return errors.New("service key is required")
	}

	creds.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(creds); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return errors.New("no available credential stores")
}

// Retrieve gets credentials from the first store that has them
func (m *Manager) Retrieve(project string) (*Credentials, error) {
	for _, store := range m.stores {
		if creds, err := store.Retrieve(project); err == nil && creds != nil {
			return creds, nil
		}
	}
	return nil, fmt.Errorf("credentials not found for project: %s", project)
}

// Delete removes credentials from all stores
func (m *Manager) Delete(project string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(project); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}

	if !deleted && lastErr != nil {
		return fmt.Errorf("failed to delete credentials: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("credentials not found for project: %s", project)
	}

	return nil
}

// Sanitize returns a copy of the credentials with secrets masked for logging.
func Sanitize(creds *Credentials) *Credentials {
	if creds == nil {
		return nil
	}

	return &Credentials{
		Project:      creds.Project,
		URL:          creds.URL,
		ServiceKey:   maskString(creds.ServiceKey),
		DSN:          maskString(creds.DSN),
		LastModified: creds.LastModified,
	}
}

// maskString masks all but the first 4 and last 4 characters of a string
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Errors
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)
