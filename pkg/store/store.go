// Package store persists retrieved filings per user. The orchestrator
// uses it for its idempotency check: a filing whose accession number is
// already recorded for a user is not re-fetched or re-stored.
package store

import (
	"context"
	"sync"

	"github.com/finsight/filings/pkg/models"
)

// Store records filings keyed by user and accession number.
type Store interface {
	// Has reports whether the user already holds a filing with the given
	// accession number.
	Has(ctx context.Context, userID, accessionNumber string) (bool, error)
	// Get returns the stored filing, or false when the user does not hold
	// it.
	Get(ctx context.Context, userID, accessionNumber string) (models.Filing, bool, error)
	// Save records a filing for the user. Saving an accession number the
	// user already holds is a no-op.
	Save(ctx context.Context, userID string, f models.Filing) error
}

// Memory is an in-process Store for tests and library-only embedders.
type Memory struct {
	mu      sync.RWMutex
	filings map[string]map[string]models.Filing // userID -> accession -> filing
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{filings: make(map[string]map[string]models.Filing)}
}

func (m *Memory) Has(_ context.Context, userID, accessionNumber string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.filings[userID][accessionNumber]
	return ok, nil
}

func (m *Memory) Get(_ context.Context, userID, accessionNumber string) (models.Filing, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.filings[userID][accessionNumber]
	return f, ok, nil
}

func (m *Memory) Save(_ context.Context, userID string, f models.Filing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byAccession, ok := m.filings[userID]
	if !ok {
		byAccession = make(map[string]models.Filing)
		m.filings[userID] = byAccession
	}
	if _, exists := byAccession[f.AccessionNumber]; !exists {
		byAccession[f.AccessionNumber] = f
	}
	return nil
}

// Count returns the number of filings stored for a user.
func (m *Memory) Count(userID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.filings[userID])
}
