// Package storage persists reconstructed transcripts.
//
// Records are content-addressed: a transcript's key is the SHA-256 of its raw
// input, so storing the same transcript twice is a no-op.
package storage

import (
	"context"
)

// Driver defines the interface for persisting and retrieving transcripts in
// a storage backend.
type Driver interface {
	// Put stores a transcript. Returns true if it was newly inserted,
	// false if a transcript with the same hash already exists, in which case
	// this is a no-op.
	Put(ctx context.Context, t *Transcript) (bool, error)

	// Get retrieves a transcript by its hash. A missing transcript is a
	// NotFoundError.
	Get(ctx context.Context, hash string) (*Transcript, error)

	// Has checks if a transcript exists by its hash.
	Has(ctx context.Context, hash string) (bool, error)

	// List returns transcripts newest first, filtered by opts.
	List(ctx context.Context, opts ListOptions) ([]*Transcript, error)

	// Close closes the store and releases any resources.
	Close() error
}

// ListOptions filters and bounds List.
type ListOptions struct {
	// Provider keeps only transcripts whose detected provider matches.
	Provider string

	// Limit caps the number of results. Zero means no limit.
	Limit int
}
