// Package legacy upgrades data from the old unencrypted sqlite
// settings store into the encrypted document store.
package legacy

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	_ "modernc.org/sqlite"

	"github.com/scrumebox/scrume/internal/codec"
	"github.com/scrumebox/scrume/internal/store"
)

// SettingsKey is the row under which the old store kept the plaintext
// project collection.
const SettingsKey = "scrume_projects"

// MigrateIfNeeded performs the one-shot upgrade from the legacy sqlite
// file at dbPath into dst. Safe to call on every launch:
//
//   - no legacy file: no-op.
//   - legacy file and the encrypted store already has data on disk:
//     the encrypted store is authoritative; the legacy file is deleted
//     without re-importing.
//   - legacy file only: its plaintext collection is decoded, saved
//     through dst, and the legacy file is deleted.
//
// After any successful run the legacy file is gone, so a second call
// is a no-op. A legacy payload that fails to decode is logged and left
// in place; that failure is non-fatal.
func MigrateIfNeeded(dbPath string, dst store.Store, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("stat legacy store: %w", err)
	}

	if _, err := os.Stat(dst.Path()); err == nil {
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("remove legacy store: %w", err)
		}
		log.Info("cleaned up legacy store, encrypted data already present",
			zap.String("path", dbPath))
		return nil
	}

	payload, err := readLegacyPayload(dbPath)
	if err != nil {
		return err
	}
	if payload == nil {
		// Empty legacy store: nothing to carry over.
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("remove legacy store: %w", err)
		}
		log.Info("removed empty legacy store", zap.String("path", dbPath))
		return nil
	}

	projects, err := codec.Decode(payload)
	if err != nil {
		log.Error("legacy data does not decode, leaving it in place",
			zap.String("path", dbPath), zap.Error(err))
		return nil
	}

	if err := dst.Save(projects); err != nil {
		return fmt.Errorf("migrate legacy projects: %w", err)
	}
	if err := os.Remove(dbPath); err != nil {
		return fmt.Errorf("remove legacy store: %w", err)
	}

	log.Info("migrated legacy projects to encrypted storage",
		zap.String("path", dbPath), zap.Int("count", len(projects)))
	return nil
}

// readLegacyPayload returns the stored plaintext collection, or nil
// when the legacy database has no settings row (or no settings table
// at all).
func readLegacyPayload(dbPath string) ([]byte, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open legacy store: %w", err)
	}
	defer db.Close()

	var value []byte
	err = db.QueryRow("SELECT value FROM settings WHERE key = ?", SettingsKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		// A legacy file without the expected table is treated as empty
		// rather than as corruption.
		var tableCount int
		if scanErr := db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='settings'",
		).Scan(&tableCount); scanErr == nil && tableCount == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("read legacy store: %w", err)
	}
	return value, nil
}
