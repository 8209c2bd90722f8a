// Package keystore manages the symmetric key that seals the document
// store, persisting it in the operating system credential store.
package keystore

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
	"go.uber.org/zap"
)

// KeySize is the symmetric key length in bytes (AES-256).
const KeySize = 32

// Default keyring coordinates for the stored key.
const (
	DefaultService = "scrume"
	DefaultAccount = "com.scrume.encryptionKey"
)

// ErrKeyStore indicates the credential store could not persist or
// return the key. Generation still succeeds in-process; a key that
// failed to persist will not survive a restart.
var ErrKeyStore = errors.New("keystore: credential store failure")

// Keychain stores one 256-bit key in the OS credential store under a
// fixed service/account pair.
type Keychain struct {
	service string
	account string
	log     *zap.Logger

	// cached holds the key for the rest of the process once resolved,
	// so a persist failure still yields a usable key.
	cached []byte
}

// New returns a Keychain using the given keyring coordinates. Empty
// service or account fall back to the defaults.
func New(service, account string, log *zap.Logger) *Keychain {
	if service == "" {
		service = DefaultService
	}
	if account == "" {
		account = DefaultAccount
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Keychain{service: service, account: account, log: log}
}

// GetOrCreateKey returns the stored encryption key, generating and
// persisting a fresh one on first use. A credential-store persist
// failure is logged but not fatal: the fresh key is kept for the
// lifetime of this process.
func (k *Keychain) GetOrCreateKey() ([]byte, error) {
	if k.cached != nil {
		return k.cached, nil
	}

	if stored, err := keyring.Get(k.service, k.account); err == nil {
		key, decErr := hex.DecodeString(stored)
		if decErr == nil && len(key) == KeySize {
			k.cached = key
			return key, nil
		}
		k.log.Error("stored encryption key is unusable, generating a new one",
			zap.String("service", k.service),
			zap.NamedError("decode_error", decErr),
			zap.Int("key_len", len(key)))
	} else if !errors.Is(err, keyring.ErrNotFound) {
		k.log.Error("credential store read failed",
			zap.String("service", k.service), zap.Error(err))
	}

	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate encryption key: %w", err)
	}

	if err := keyring.Set(k.service, k.account, hex.EncodeToString(key)); err != nil {
		// Known weak point: the key stays usable in-process but will
		// not survive a restart, leaving future stores undecryptable.
		k.log.Error("failed to persist encryption key",
			zap.String("service", k.service),
			zap.Error(fmt.Errorf("%w: %v", ErrKeyStore, err)))
	}

	k.cached = key
	return key, nil
}
