package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/scrumebox/scrume/internal/codec"
	"github.com/scrumebox/scrume/internal/models"
)

// EncryptedStore implements Store over a single AES-256-GCM sealed
// file. Writes are atomic: the new blob lands in a temp file first and
// is renamed over the old one, so a crash mid-write leaves the
// previous valid file intact.
type EncryptedStore struct {
	path string
	keys KeyProvider
	log  *zap.Logger
}

// NewEncryptedStore returns a store writing to path, sealed with the
// key from keys.
func NewEncryptedStore(path string, keys KeyProvider, log *zap.Logger) *EncryptedStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &EncryptedStore{path: path, keys: keys, log: log}
}

// Path returns the document file location.
func (s *EncryptedStore) Path() string { return s.path }

// Load reads, decrypts, and decodes the stored collection. A missing
// file is an empty collection. Corruption (wrong key, tampering,
// truncation) is fail-open: the error is logged, the prior file is
// left in place, and an empty collection is returned. Note that a
// subsequent Save from that empty state overwrites the original file.
func (s *EncryptedStore) Load() ([]models.Project, error) {
	blob, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	key, err := s.keys.GetOrCreateKey()
	if err != nil {
		return nil, fmt.Errorf("load key: %w", err)
	}

	plaintext, err := decrypt(blob, key)
	if err != nil {
		s.log.Error("stored data is undecryptable, treating as empty",
			zap.String("path", s.path), zap.Error(err))
		return nil, nil
	}

	projects, err := codec.Decode(plaintext)
	if err != nil {
		s.log.Error("stored data does not decode, treating as empty",
			zap.String("path", s.path),
			zap.Error(fmt.Errorf("%w: %v", ErrCorrupt, err)))
		return nil, nil
	}

	s.log.Debug("loaded projects", zap.Int("count", len(projects)))
	return projects, nil
}

// Save encodes, encrypts with a fresh nonce, and atomically rewrites
// the full collection.
func (s *EncryptedStore) Save(projects []models.Project) error {
	plaintext, err := codec.Encode(projects)
	if err != nil {
		return err
	}

	key, err := s.keys.GetOrCreateKey()
	if err != nil {
		return fmt.Errorf("load key: %w", err)
	}

	blob, err := encrypt(plaintext, key)
	if err != nil {
		return fmt.Errorf("encrypt projects: %w", err)
	}

	if err := s.writeAtomic(blob); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	s.log.Debug("saved projects", zap.Int("count", len(projects)),
		zap.Int("bytes", len(blob)))
	return nil
}

// writeAtomic writes blob to a temp file in the target directory and
// renames it over the destination.
func (s *EncryptedStore) writeAtomic(blob []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// Export returns the stored collection as plaintext, pretty-printed,
// deterministically ordered backup bytes. Intentionally unencrypted:
// the output is meant to leave the device.
func (s *EncryptedStore) Export() ([]byte, error) {
	projects, err := s.Load()
	if err != nil {
		return nil, err
	}
	return codec.EncodeExport(projects)
}

// Import decodes plaintext backup bytes and replaces the stored
// collection. A decode failure leaves existing storage untouched.
func (s *EncryptedStore) Import(data []byte) error {
	projects, err := codec.Decode(data)
	if err != nil {
		return err
	}
	if err := s.Save(projects); err != nil {
		return err
	}
	s.log.Info("imported projects", zap.Int("count", len(projects)))
	return nil
}

// Clear deletes the persisted file. Removing an absent file is not an
// error.
func (s *EncryptedStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", s.path, err)
	}
	return nil
}

// Info returns the document file size in bytes (0 when absent) and its
// location.
func (s *EncryptedStore) Info() (int64, string) {
	fi, err := os.Stat(s.path)
	if err != nil {
		return 0, s.path
	}
	return fi.Size(), s.path
}
