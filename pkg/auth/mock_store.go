package auth

import "sync"

// MockStore implements CredentialStore for testing purposes
type MockStore struct {
	creds map[string]*Credentials
	mu    sync.RWMutex

	// Error injection for testing
	StoreError    error
	RetrieveError error
	DeleteError   error
}

// NewMockStore creates a new mock credential store
func NewMockStore() *MockStore {
	return &MockStore{
		creds: make(map[string]*Credentials),
	}
}

// Store saves credentials to the mock store
func (m *MockStore) Store(creds *Credentials) error {
	if m.StoreError != nil {
		return m.StoreError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if creds == nil || creds.Project == "" {
		return ErrInvalidCredentials
	}

	credsCopy := *creds
	m.creds[creds.Project] = &credsCopy

	return nil
}

// Retrieve gets credentials from the mock store
func (m *MockStore) Retrieve(project string) (*Credentials, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if project == "" {
		return nil, ErrInvalidCredentials
	}

	creds, exists := m.creds[project]
	if !exists {
		return nil, ErrCredentialsNotFound
	}

	credsCopy := *creds
	return &credsCopy, nil
}

// Delete removes credentials from the mock store
func (m *MockStore) Delete(project string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if project == "" {
		return ErrInvalidCredentials
	}

	if _, exists := m.creds[project]; !exists {
		return ErrCredentialsNotFound
	}

	delete(m.creds, project)
	return nil
}

// Exists checks if credentials exist in the mock store
func (m *MockStore) Exists(project string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.creds[project]
	return exists
}
