// Package inmemory provides a map-backed storage driver for tests and for
// servers run without a database.
package inmemory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/papercomputeco/restream/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu is a read write sync mutex for locking the mapping of transcripts
	mu sync.RWMutex

	// transcripts is the in memory map of transcripts where the key is the
	// content-addressed hash of the raw input
	transcripts map[string]*storage.Transcript
}

// NewDriver creates a new in-memory storer.
func NewDriver() *Driver {
	return &Driver{
		transcripts: make(map[string]*storage.Transcript),
	}
}

// Put stores a transcript. Returns true if it was newly inserted,
// false if it already existed (no-op due to content-addressing).
func (s *Driver) Put(_ context.Context, t *storage.Transcript) (bool, error) {
	if t == nil {
		return false, errors.New("cannot store nil transcript")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transcripts[t.Hash]; ok {
		return false, nil
	}

	s.transcripts[t.Hash] = t
	return true, nil
}

// Get retrieves a transcript by its hash.
func (s *Driver) Get(_ context.Context, hash string) (*storage.Transcript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transcripts[hash]
	if !ok {
		return nil, storage.NotFoundError{Hash: hash}
	}

	return t, nil
}

// Has checks if a transcript exists by its hash.
func (s *Driver) Has(_ context.Context, hash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.transcripts[hash]
	return ok, nil
}

// List returns transcripts newest first.
func (s *Driver) List(_ context.Context, opts storage.ListOptions) ([]*storage.Transcript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*storage.Transcript, 0, len(s.transcripts))
	for _, t := range s.transcripts {
		if opts.Provider != "" && t.Provider != opts.Provider {
			continue
		}
		result = append(result, t)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].Hash < result[j].Hash
	})

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}

	return result, nil
}

// Count returns the number of transcripts in the in-memory store.
func (s *Driver) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transcripts)
}

// Close is a no-op for the in-memory storer.
func (s *Driver) Close() error {
	return nil
}
