// Package store persists the project collection as a single
// encrypted-at-rest document file.
package store

import (
	"errors"

	"github.com/scrumebox/scrume/internal/models"
)

// Sentinel errors for persistence failures.
var (
	// ErrCorrupt indicates the persisted blob could not be decrypted
	// or decoded (wrong key, tampering, truncation).
	ErrCorrupt = errors.New("store: corrupt or undecryptable data")

	// ErrWrite indicates the document file could not be written.
	ErrWrite = errors.New("store: write failed")
)

// KeyProvider supplies the symmetric key that seals the document file.
type KeyProvider interface {
	GetOrCreateKey() ([]byte, error)
}

// Store defines the persistence interface for the project collection.
// Implementations keep no in-memory cache: every Load re-reads durable
// storage, every Save rewrites the full collection.
type Store interface {
	// Load returns the stored collection, or an empty collection when
	// no file exists. Corruption is fail-open: logged, empty result.
	Load() ([]models.Project, error)

	// Save encrypts and atomically rewrites the full collection.
	Save(projects []models.Project) error

	// Export returns the collection as plaintext backup bytes.
	Export() ([]byte, error)

	// Import replaces the stored collection from plaintext backup
	// bytes. Storage is untouched if the bytes do not decode.
	Import(data []byte) error

	// Clear deletes the persisted file. Idempotent.
	Clear() error

	// Path returns the document file location.
	Path() string

	// Info returns the document file size in bytes (0 when absent)
	// and its location.
	Info() (int64, string)
}
